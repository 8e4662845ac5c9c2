package db

import (
	"database/sql"
	"time"

	"github.com/eigenmagic/forget/internal/types"
)

// Destroy-set queries. Each returns live (non-tombstoned) items in
// ascending id order, fully hydrated, so a deletemax cap always keeps
// the oldest candidates. A nil deletemax means uncapped; zero means
// an empty set.

// DestroySetKeepNum selects everything except the keepnum newest items.
func DestroySetKeepNum(conn *sql.DB, keepnum int, deletemax *int) ([]types.Item, error) {
	if capped(deletemax) {
		return nil, nil
	}
	query := `
		SELECT ` + itemColumns + ` FROM items
		WHERE id NOT IN (SELECT id FROM items ORDER BY id DESC LIMIT ?)
		AND deleted = 0
		ORDER BY id ASC`
	params := []any{keepnum}
	if deletemax != nil {
		query += " LIMIT ?"
		params = append(params, *deletemax)
	}
	return queryItems(conn, query, params...)
}

// DestroySetNoDate selects live items whose creation time is unknown.
// Items the account can no longer see never get a created_at, so an
// age-based policy can never reach them; this one can.
func DestroySetNoDate(conn *sql.DB, deletemax *int) ([]types.Item, error) {
	if capped(deletemax) {
		return nil, nil
	}
	query := `
		SELECT ` + itemColumns + ` FROM items
		WHERE created_at IS NULL
		AND deleted = 0
		ORDER BY id ASC`
	var params []any
	if deletemax != nil {
		query += " LIMIT ?"
		params = append(params, *deletemax)
	}
	return queryItems(conn, query, params...)
}

// DestroySetBeforeDays selects live items created more than beforedays
// days before now.
func DestroySetBeforeDays(conn *sql.DB, now time.Time, beforedays int, deletemax *int) ([]types.Item, error) {
	before := now.AddDate(0, 0, -beforedays)
	return destroySetByDate(conn, before, nil, deletemax)
}

// DestroySetDates selects live items created strictly before
// dateBefore, and strictly after dateAfter when it is set.
func DestroySetDates(conn *sql.DB, dateBefore time.Time, dateAfter *time.Time, deletemax *int) ([]types.Item, error) {
	return destroySetByDate(conn, dateBefore, dateAfter, deletemax)
}

// destroySetByDate filters on parsed timestamps rather than in SQL:
// until MigrateDatetimes has run a cache can hold created_at values in
// two encodings, and lexicographic comparison across them is wrong.
func destroySetByDate(conn *sql.DB, before time.Time, after *time.Time, deletemax *int) ([]types.Item, error) {
	if capped(deletemax) {
		return nil, nil
	}
	all, err := queryItems(conn, `
		SELECT `+itemColumns+` FROM items
		WHERE deleted = 0
		AND created_at IS NOT NULL
		ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}

	var set []types.Item
	for _, item := range all {
		if !item.CreatedAt.Before(before) {
			continue
		}
		if after != nil && !item.CreatedAt.After(*after) {
			continue
		}
		set = append(set, item)
		if deletemax != nil && len(set) >= *deletemax {
			break
		}
	}
	return set, nil
}

func queryItems(conn *sql.DB, query string, params ...any) ([]types.Item, error) {
	rows, err := conn.Query(query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []types.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func capped(deletemax *int) bool {
	return deletemax != nil && *deletemax <= 0
}
