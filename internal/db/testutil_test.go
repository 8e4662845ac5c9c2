package db

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/eigenmagic/forget/internal/types"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

func seedItems(t *testing.T, conn *sql.DB, items ...types.Item) {
	t.Helper()
	saved, err := InsertOrIgnore(conn, "testuser", items)
	if err != nil {
		t.Fatalf("seed items: %v", err)
	}
	if saved != len(items) {
		t.Fatalf("seeded %d of %d items", saved, len(items))
	}
}

func timePtr(value time.Time) *time.Time {
	return &value
}

func intPtr(value int) *int {
	return &value
}

func int64Ptr(value int64) *int64 {
	return &value
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parse day %q: %v", value, err)
	}
	return parsed
}

func ids(items []types.Item) []uint64 {
	out := make([]uint64, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}
