package db

import "database/sql"

const schemaSQL = `
-- Cached remote items. One cache file holds one content kind
-- (tweets, dms or likes); dm-specific columns stay NULL for the rest.
CREATE TABLE IF NOT EXISTS items (
  id integer PRIMARY KEY,              -- remote id, larger means newer
  screen_name text NOT NULL,           -- owning account handle
  created_at text,                     -- RFC3339, NULL when unrecoverable
  conversation_id text,                -- dm only
  sender_id integer,                   -- dm only
  recipient_id integer,                -- dm only
  content_text text,
  deleted integer NOT NULL DEFAULT 0   -- tombstone: gone remotely, kept locally
);

CREATE INDEX IF NOT EXISTS idx_items_created_at ON items(created_at);
CREATE INDEX IF NOT EXISTS idx_items_deleted ON items(deleted);
`

// InitSchema creates the cache schema if it doesn't exist yet.
func InitSchema(conn *sql.DB) error {
	_, err := conn.Exec(schemaSQL)
	return err
}
