package command

import (
	"strings"
	"testing"
	"time"

	"github.com/eigenmagic/forget/internal/types"
)

func TestPolicyParamsSafetyRule(t *testing.T) {
	cmd := NewKindCmd(types.KindTweets)
	if err := cmd.Flags().Set("date-after", "2020-06-01"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	_, err := policyParams(cmd)
	if err == nil {
		t.Fatal("--date-after without --date-before must be rejected")
	}
	if !strings.Contains(err.Error(), "--date-before") {
		t.Fatalf("error should name the missing flag: %v", err)
	}
}

func TestPolicyParamsDateWindow(t *testing.T) {
	cmd := NewKindCmd(types.KindTweets)
	if err := cmd.Flags().Set("date-before", "2021-06-01"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if err := cmd.Flags().Set("date-after", "2020-06-01"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	params, err := policyParams(cmd)
	if err != nil {
		t.Fatalf("policy params: %v", err)
	}
	if params.DateBefore == nil || params.DateAfter == nil {
		t.Fatalf("params = %+v", params)
	}
	if params.Name() != "date-range" {
		t.Fatalf("policy = %q", params.Name())
	}
}

func TestPolicyParamsDeleteMaxOnlyWhenSet(t *testing.T) {
	cmd := NewKindCmd(types.KindTweets)
	params, err := policyParams(cmd)
	if err != nil {
		t.Fatalf("policy params: %v", err)
	}
	if params.DeleteMax != nil {
		t.Fatal("deletemax should be unset by default")
	}

	if err := cmd.Flags().Set("deletemax", "0"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	params, err = policyParams(cmd)
	if err != nil {
		t.Fatalf("policy params: %v", err)
	}
	if params.DeleteMax == nil || *params.DeleteMax != 0 {
		t.Fatalf("explicit deletemax 0 must be kept, params = %+v", params)
	}
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("2021-06-01")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	want := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("parsed = %v, want %v", got, want)
	}

	if _, err := parseDate("yesterday"); err == nil {
		t.Fatal("expected error for unparseable date")
	}
}

func TestParseKind(t *testing.T) {
	for _, valid := range []string{"tweets", "dms", "likes"} {
		if _, err := parseKind(valid); err != nil {
			t.Fatalf("parse kind %q: %v", valid, err)
		}
	}
	if _, err := parseKind("bookmarks"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
