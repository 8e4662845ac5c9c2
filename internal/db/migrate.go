package db

import "database/sql"

// MigrateDatetimes rewrites created_at values still stored in the
// legacy API encoding to RFC3339. One-time maintenance; reads tolerate
// both encodings, so skipping it only costs the date queries a parse
// fallback. Returns the number of rows rewritten.
func MigrateDatetimes(conn *sql.DB) (int, error) {
	// Legacy values look like "Wed Aug 27 13:08:45 +0000 2008"; the
	// year following the zone offset is what the pattern keys on.
	rows, err := conn.Query(`SELECT id, created_at FROM items WHERE created_at LIKE '%+0000 2%' ORDER BY id ASC`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	type fix struct {
		id    int64
		value string
	}
	var fixes []fix
	for rows.Next() {
		var f fix
		var raw string
		if err := rows.Scan(&f.id, &raw); err != nil {
			return 0, err
		}
		t, err := ParseCreatedAt(raw)
		if err != nil {
			return 0, err
		}
		f.value = FormatCreatedAt(t)
		fixes = append(fixes, f)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	tx, err := conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	for _, f := range fixes {
		if _, err := tx.Exec("UPDATE items SET created_at = ? WHERE id = ?", f.value, f.id); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(fixes), nil
}
