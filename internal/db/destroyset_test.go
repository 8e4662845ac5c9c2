package db

import (
	"testing"

	"github.com/eigenmagic/forget/internal/types"
)

func TestDestroySetKeepNum(t *testing.T) {
	conn := openTestDB(t)
	seedItems(t, conn,
		types.Item{ID: 1}, types.Item{ID: 2}, types.Item{ID: 3},
		types.Item{ID: 4}, types.Item{ID: 5},
	)

	set, err := DestroySetKeepNum(conn, 3, nil)
	if err != nil {
		t.Fatalf("keepnum set: %v", err)
	}
	got := ids(set)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("destroy-set = %v, want [1 2]", got)
	}
}

func TestDestroySetKeepNumSkipsTombstoned(t *testing.T) {
	conn := openTestDB(t)
	seedItems(t, conn,
		types.Item{ID: 1}, types.Item{ID: 2}, types.Item{ID: 3},
		types.Item{ID: 4}, types.Item{ID: 5},
	)
	if err := MarkDeleted(conn, 1); err != nil {
		t.Fatalf("mark deleted: %v", err)
	}

	set, err := DestroySetKeepNum(conn, 3, nil)
	if err != nil {
		t.Fatalf("keepnum set: %v", err)
	}
	got := ids(set)
	if len(got) != 1 || got[0] != 2 {
		t.Fatalf("destroy-set = %v, want [2]", got)
	}
}

func TestDestroySetDates(t *testing.T) {
	conn := openTestDB(t)
	seedItems(t, conn,
		types.Item{ID: 1, CreatedAt: timePtr(day(t, "2020-01-01"))},
		types.Item{ID: 2, CreatedAt: timePtr(day(t, "2021-01-01"))},
		types.Item{ID: 3, CreatedAt: timePtr(day(t, "2022-01-01"))},
		types.Item{ID: 4}, // no created_at: date policies never match it
	)

	set, err := DestroySetDates(conn, day(t, "2021-06-01"), nil, nil)
	if err != nil {
		t.Fatalf("dates set: %v", err)
	}
	got := ids(set)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("destroy-set = %v, want [1 2]", got)
	}

	after := day(t, "2020-06-01")
	set, err = DestroySetDates(conn, day(t, "2021-06-01"), &after, nil)
	if err != nil {
		t.Fatalf("dates set with after: %v", err)
	}
	got = ids(set)
	if len(got) != 1 || got[0] != 2 {
		t.Fatalf("destroy-set = %v, want [2]", got)
	}
}

func TestDestroySetBeforeDays(t *testing.T) {
	conn := openTestDB(t)
	now := day(t, "2023-01-31")
	seedItems(t, conn,
		types.Item{ID: 1, CreatedAt: timePtr(day(t, "2023-01-01"))},
		types.Item{ID: 2, CreatedAt: timePtr(day(t, "2023-01-25"))},
		types.Item{ID: 3, CreatedAt: timePtr(day(t, "2023-01-30"))},
	)

	set, err := DestroySetBeforeDays(conn, now, 10, nil)
	if err != nil {
		t.Fatalf("beforedays set: %v", err)
	}
	got := ids(set)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("destroy-set = %v, want [1]", got)
	}
}

func TestDestroySetNoDate(t *testing.T) {
	conn := openTestDB(t)
	seedItems(t, conn,
		types.Item{ID: 1},
		types.Item{ID: 2, CreatedAt: timePtr(day(t, "2020-01-01"))},
		types.Item{ID: 3},
	)
	if err := MarkDeleted(conn, 3); err != nil {
		t.Fatalf("mark deleted: %v", err)
	}

	set, err := DestroySetNoDate(conn, nil)
	if err != nil {
		t.Fatalf("nodate set: %v", err)
	}
	got := ids(set)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("destroy-set = %v, want [1]", got)
	}
}

func TestDeleteMaxKeepsOldest(t *testing.T) {
	conn := openTestDB(t)
	var items []types.Item
	for i := 1; i <= 10; i++ {
		items = append(items, types.Item{ID: uint64(i), CreatedAt: timePtr(day(t, "2020-01-01"))})
	}
	seedItems(t, conn, items...)

	// Truncation always keeps the oldest candidates, for every policy.
	set, err := DestroySetKeepNum(conn, 0, intPtr(3))
	if err != nil {
		t.Fatalf("keepnum set: %v", err)
	}
	got := ids(set)
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("capped destroy-set = %v, want [1 2 3]", got)
	}

	set, err = DestroySetDates(conn, day(t, "2021-01-01"), nil, intPtr(3))
	if err != nil {
		t.Fatalf("dates set: %v", err)
	}
	got = ids(set)
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("capped dates destroy-set = %v, want [1 2 3]", got)
	}
}

func TestDeleteMaxZeroMeansEmpty(t *testing.T) {
	conn := openTestDB(t)
	seedItems(t, conn, types.Item{ID: 1}, types.Item{ID: 2})

	set, err := DestroySetKeepNum(conn, 0, intPtr(0))
	if err != nil {
		t.Fatalf("keepnum set: %v", err)
	}
	if len(set) != 0 {
		t.Fatalf("deletemax=0 destroy-set = %v, want empty", ids(set))
	}
}

func TestEmptyStoreEmptySets(t *testing.T) {
	conn := openTestDB(t)

	for name, query := range map[string]func() ([]types.Item, error){
		"keepnum":    func() ([]types.Item, error) { return DestroySetKeepNum(conn, 5, nil) },
		"nodate":     func() ([]types.Item, error) { return DestroySetNoDate(conn, nil) },
		"dates":      func() ([]types.Item, error) { return DestroySetDates(conn, day(t, "2021-01-01"), nil, nil) },
		"beforedays": func() ([]types.Item, error) { return DestroySetBeforeDays(conn, day(t, "2021-01-01"), 7, nil) },
	} {
		set, err := query()
		if err != nil {
			t.Fatalf("%s on empty store: %v", name, err)
		}
		if len(set) != 0 {
			t.Fatalf("%s on empty store = %v, want empty", name, ids(set))
		}
	}
}
