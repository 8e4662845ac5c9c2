// Package archive imports a vendor-provided account export into the
// cache. The export is a zip holding one JSON-array data file per
// content kind, each prefixed with a Javascript variable assignment
// that has to be stripped before parsing. Imported items funnel
// through the same insert-or-ignore write path as live fetches.
package archive

import (
	"archive/zip"
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/eigenmagic/forget/internal/db"
	"github.com/eigenmagic/forget/internal/types"
)

// Import loads the kind's data file from the archive at zipPath into
// the cache. Returns the number of newly cached items.
func Import(zipPath string, kind types.Kind, conn *sql.DB, owner string, log zerolog.Logger) (int, error) {
	ark, err := zip.OpenReader(zipPath)
	if err != nil {
		return 0, fmt.Errorf("open archive %s: %w", zipPath, err)
	}
	defer ark.Close()

	name := kind.ArchiveFile()
	f, err := ark.Open(name)
	if err != nil {
		return 0, fmt.Errorf("archive is missing %s: %w", name, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return 0, err
	}

	items, err := Parse(kind, data)
	if err != nil {
		return 0, err
	}
	log.Info().Str("file", name).Int("count", len(items)).Msg("parsed archive data file")

	saved, err := db.InsertOrIgnore(conn, owner, items)
	if err != nil {
		return 0, err
	}
	log.Info().Int("saved", saved).Msg("imported archive items")
	return saved, nil
}

// Parse decodes one kind's archive data file into items.
func Parse(kind types.Kind, data []byte) ([]types.Item, error) {
	payload, err := stripAssignment(data)
	if err != nil {
		return nil, err
	}
	switch kind {
	case types.KindDMs:
		return parseDMs(payload)
	case types.KindLikes:
		return parseLikes(payload)
	default:
		return parseTweets(payload)
	}
}

// stripAssignment drops the "window.YTD.<kind>.part0 = " prefix,
// leaving the JSON array.
func stripAssignment(data []byte) ([]byte, error) {
	idx := bytes.IndexByte(data, '[')
	if idx < 0 {
		return nil, fmt.Errorf("archive data file has no JSON array")
	}
	return data[idx:], nil
}

func parseTweets(payload []byte) ([]types.Item, error) {
	var entries []struct {
		Tweet struct {
			ID        string `json:"id_str"`
			CreatedAt string `json:"created_at"`
			FullText  string `json:"full_text"`
		} `json:"tweet"`
	}
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("parse tweet archive: %w", err)
	}

	items := make([]types.Item, 0, len(entries))
	for _, e := range entries {
		id, err := strconv.ParseUint(e.Tweet.ID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("tweet archive id %q: %w", e.Tweet.ID, err)
		}
		item := types.Item{ID: id, Text: e.Tweet.FullText}
		if e.Tweet.CreatedAt != "" {
			t, err := db.ParseCreatedAt(e.Tweet.CreatedAt)
			if err != nil {
				return nil, err
			}
			item.CreatedAt = &t
		}
		items = append(items, item)
	}
	return items, nil
}

func parseLikes(payload []byte) ([]types.Item, error) {
	var entries []struct {
		Like struct {
			TweetID  string `json:"tweetId"`
			FullText string `json:"fullText"`
		} `json:"like"`
	}
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("parse like archive: %w", err)
	}

	// The export carries no creation time for likes; those rows stay
	// dateless until Backfill looks them up.
	items := make([]types.Item, 0, len(entries))
	for _, e := range entries {
		id, err := strconv.ParseUint(e.Like.TweetID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("like archive id %q: %w", e.Like.TweetID, err)
		}
		items = append(items, types.Item{ID: id, Text: e.Like.FullText})
	}
	return items, nil
}

func parseDMs(payload []byte) ([]types.Item, error) {
	var entries []struct {
		DMConversation struct {
			ConversationID string `json:"conversationId"`
			Messages       []struct {
				MessageCreate struct {
					ID          string `json:"id"`
					SenderID    string `json:"senderId"`
					RecipientID string `json:"recipientId"`
					Text        string `json:"text"`
					CreatedAt   string `json:"createdAt"`
				} `json:"messageCreate"`
			} `json:"messages"`
		} `json:"dmConversation"`
	}
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("parse dm archive: %w", err)
	}

	// Conversations flatten into one row per message, each decorated
	// with its conversation id.
	var items []types.Item
	for _, e := range entries {
		convID := e.DMConversation.ConversationID
		for _, m := range e.DMConversation.Messages {
			mc := m.MessageCreate
			id, err := strconv.ParseUint(mc.ID, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("dm archive id %q: %w", mc.ID, err)
			}
			item := types.Item{ID: id, Text: mc.Text, ConversationID: &convID}
			if sender, err := strconv.ParseInt(mc.SenderID, 10, 64); err == nil {
				item.SenderID = &sender
			}
			if recipient, err := strconv.ParseInt(mc.RecipientID, 10, 64); err == nil {
				item.RecipientID = &recipient
			}
			if mc.CreatedAt != "" {
				t, err := time.Parse(time.RFC3339, mc.CreatedAt)
				if err != nil {
					return nil, fmt.Errorf("dm archive createdAt %q: %w", mc.CreatedAt, err)
				}
				item.CreatedAt = &t
			}
			items = append(items, item)
		}
	}
	return items, nil
}
