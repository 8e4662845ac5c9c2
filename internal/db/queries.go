package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/eigenmagic/forget/internal/types"
)

// itemColumns is the explicit column list for SELECT queries, so that
// scan order never depends on table column order.
const itemColumns = `id, screen_name, created_at, conversation_id, sender_id, recipient_id, content_text, deleted`

// Count returns the total number of cached items, tombstoned or not.
func Count(conn *sql.DB) (int, error) {
	var n int
	if err := conn.QueryRow("SELECT count(*) FROM items").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CountDeleted returns the number of tombstoned items.
func CountDeleted(conn *sql.DB) (int, error) {
	var n int
	if err := conn.QueryRow("SELECT count(*) FROM items WHERE deleted = 1").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// InsertOrIgnore bulk-inserts items into the cache, skipping any id
// that already exists. The one exception to first-write-wins: a row
// whose created_at is still NULL picks up a created_at from a later
// insert that carries one, which is how archive backfill lands.
// Returns the number of newly inserted rows.
func InsertOrIgnore(conn *sql.DB, owner string, items []types.Item) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	insert, err := tx.Prepare(`
		INSERT OR IGNORE INTO items (id, screen_name, created_at, conversation_id, sender_id, recipient_id, content_text, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)`)
	if err != nil {
		return 0, err
	}
	defer insert.Close()

	backfill, err := tx.Prepare(`UPDATE items SET created_at = ? WHERE id = ? AND created_at IS NULL`)
	if err != nil {
		return 0, err
	}
	defer backfill.Close()

	saved := 0
	for _, item := range items {
		var createdAt any
		if item.CreatedAt != nil {
			createdAt = FormatCreatedAt(*item.CreatedAt)
		}
		res, err := insert.Exec(int64(item.ID), owner, createdAt, item.ConversationID, item.SenderID, item.RecipientID, item.Text)
		if err != nil {
			return saved, fmt.Errorf("insert item %d: %w", item.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return saved, err
		}
		saved += int(n)
		if n == 0 && createdAt != nil {
			if _, err := backfill.Exec(createdAt, int64(item.ID)); err != nil {
				return saved, fmt.Errorf("backfill item %d: %w", item.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return saved, nil
}

// MinID returns the smallest cached id. With excludeDeleted set,
// tombstoned items and any id in ignoreIDs are skipped, so the fetch
// loop's floor keeps moving past items that are already dealt with.
// The second return is false when no row matches.
func MinID(conn *sql.DB, excludeDeleted bool, ignoreIDs []uint64) (uint64, bool, error) {
	query := "SELECT min(id) FROM items"
	var params []any
	if excludeDeleted {
		query += " WHERE deleted = 0"
		if len(ignoreIDs) > 0 {
			query += " AND id NOT IN (" + placeholders(len(ignoreIDs)) + ")"
			for _, id := range ignoreIDs {
				params = append(params, int64(id))
			}
		}
	}

	var id sql.NullInt64
	if err := conn.QueryRow(query, params...).Scan(&id); err != nil {
		return 0, false, err
	}
	if !id.Valid {
		return 0, false, nil
	}
	return uint64(id.Int64), true, nil
}

// MaxID returns the largest cached id, or false when the cache is
// empty. Tombstoned items still count unless excludeDeleted is set:
// a locally tombstoned id is still a real previously-seen id and must
// not rewind the forward fetch frontier.
func MaxID(conn *sql.DB, excludeDeleted bool) (uint64, bool, error) {
	query := "SELECT max(id) FROM items"
	if excludeDeleted {
		query += " WHERE deleted = 0"
	}

	var id sql.NullInt64
	if err := conn.QueryRow(query).Scan(&id); err != nil {
		return 0, false, err
	}
	if !id.Valid {
		return 0, false, nil
	}
	return uint64(id.Int64), true, nil
}

// MarkDeleted tombstones an item. Idempotent; marking an absent id is
// a no-op, not an error.
func MarkDeleted(conn *sql.DB, id uint64) error {
	_, err := conn.Exec("UPDATE items SET deleted = 1 WHERE id = ?", int64(id))
	return err
}

// HardDelete removes an item row entirely. Maintenance only; the main
// flow never unlearns an id.
func HardDelete(conn *sql.DB, id uint64) error {
	_, err := conn.Exec("DELETE FROM items WHERE id = ?", int64(id))
	return err
}

// NoDateIDs returns the ids of live items with no created_at, oldest
// first. These are the backfill candidates after an archive import.
func NoDateIDs(conn *sql.DB) ([]uint64, error) {
	rows, err := conn.Query("SELECT id FROM items WHERE created_at IS NULL AND deleted = 0 ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, uint64(id))
	}
	return ids, rows.Err()
}

// GetItem returns one cached item, or nil when the id is unknown.
func GetItem(conn *sql.DB, id uint64) (*types.Item, error) {
	row := conn.QueryRow("SELECT "+itemColumns+" FROM items WHERE id = ?", int64(id))
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (types.Item, error) {
	var (
		id        int64
		createdAt sql.NullString
		deleted   int
		item      types.Item
	)
	err := row.Scan(&id, &item.ScreenName, &createdAt, &item.ConversationID, &item.SenderID, &item.RecipientID, &item.Text, &deleted)
	if err != nil {
		return types.Item{}, err
	}
	item.ID = uint64(id)
	item.Deleted = deleted != 0
	if createdAt.Valid {
		t, err := ParseCreatedAt(createdAt.String)
		if err != nil {
			return types.Item{}, err
		}
		item.CreatedAt = &t
	}
	return item, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
