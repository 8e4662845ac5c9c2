package archive

import (
	"archive/zip"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/eigenmagic/forget/internal/db"
	"github.com/eigenmagic/forget/internal/types"
)

const tweetData = `window.YTD.tweets.part0 = [
  {"tweet": {"id_str": "101", "created_at": "Wed Aug 27 13:08:45 +0000 2008", "full_text": "first tweet"}},
  {"tweet": {"id_str": "102", "created_at": "Thu Aug 28 09:00:00 +0000 2008", "full_text": "second tweet"}}
]`

const likeData = `window.YTD.like.part0 = [
  {"like": {"tweetId": "201", "fullText": "a liked tweet"}},
  {"like": {"tweetId": "202", "fullText": "another liked tweet"}}
]`

const dmData = `window.YTD.direct_messages.part0 = [
  {"dmConversation": {"conversationId": "111-222", "messages": [
    {"messageCreate": {"id": "301", "senderId": "111", "recipientId": "222", "text": "hello", "createdAt": "2020-05-01T10:00:00.000Z"}},
    {"messageCreate": {"id": "302", "senderId": "222", "recipientId": "111", "text": "hi back", "createdAt": "2020-05-01T10:05:00.000Z"}}
  ]}}
]`

func TestParseTweets(t *testing.T) {
	items, err := Parse(types.KindTweets, []byte(tweetData))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("parsed %d items, want 2", len(items))
	}
	if items[0].ID != 101 || items[0].Text != "first tweet" {
		t.Fatalf("item = %+v", items[0])
	}
	if items[0].CreatedAt == nil {
		t.Fatal("tweet archive entries carry created_at")
	}
}

func TestParseLikesHaveNoCreatedAt(t *testing.T) {
	items, err := Parse(types.KindLikes, []byte(likeData))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("parsed %d items, want 2", len(items))
	}
	if items[0].ID != 201 || items[0].CreatedAt != nil {
		t.Fatalf("item = %+v, want dateless like", items[0])
	}
}

func TestParseDMsFlattensConversations(t *testing.T) {
	items, err := Parse(types.KindDMs, []byte(dmData))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("parsed %d items, want 2 flattened messages", len(items))
	}
	for _, item := range items {
		if item.ConversationID == nil || *item.ConversationID != "111-222" {
			t.Fatalf("item %d missing conversation id: %+v", item.ID, item)
		}
	}
	if items[0].SenderID == nil || *items[0].SenderID != 111 {
		t.Fatalf("sender id = %v", items[0].SenderID)
	}
	if items[0].CreatedAt == nil {
		t.Fatal("dm archive entries carry createdAt")
	}
}

func TestParseRejectsHeaderlessData(t *testing.T) {
	if _, err := Parse(types.KindTweets, []byte("window.YTD.tweets.part0 = {}")); err == nil {
		t.Fatal("expected error for data without a JSON array")
	}
}

func TestImportReadsZip(t *testing.T) {
	conn := openTestDB(t)
	zipPath := writeArchive(t, map[string]string{
		"data/like.js": likeData,
	})

	saved, err := Import(zipPath, types.KindLikes, conn, "testuser", zerolog.Nop())
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if saved != 2 {
		t.Fatalf("imported %d items, want 2", saved)
	}

	// Importing again is a no-op thanks to insert-or-ignore.
	saved, err = Import(zipPath, types.KindLikes, conn, "testuser", zerolog.Nop())
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if saved != 0 {
		t.Fatalf("re-import saved %d items, want 0", saved)
	}
}

func TestImportMissingDataFile(t *testing.T) {
	conn := openTestDB(t)
	zipPath := writeArchive(t, map[string]string{"data/other.js": "[]"})

	if _, err := Import(zipPath, types.KindLikes, conn, "testuser", zerolog.Nop()); err == nil {
		t.Fatal("expected error for archive without the kind's data file")
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func writeArchive(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	w := zip.NewWriter(f)
	for name, content := range files {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}
