package fetch

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/eigenmagic/forget/internal/db"
	"github.com/eigenmagic/forget/internal/rate"
	"github.com/eigenmagic/forget/internal/types"
)

// CursorLister is the remote listing capability for kinds that page by
// opaque cursor instead of id bounds (dms).
type CursorLister interface {
	ListPage(owner string, count int, cursor string) (items []types.Item, next string, err error)
}

// Cursor walks cursor pages until the remote stops returning one,
// writing every page through insert-or-ignore. The dm API only serves
// a trailing window, so this is both the "newer" and "older" path for
// that kind.
func Cursor(client CursorLister, conn *sql.DB, owner string, batchSize int, pacer *rate.Pacer, log zerolog.Logger) error {
	cursor := ""
	for {
		page, next, err := client.ListPage(owner, batchSize, cursor)
		if err != nil {
			return fmt.Errorf("fetch page: %w", err)
		}

		saved, err := db.InsertOrIgnore(conn, owner, page)
		if err != nil {
			return err
		}
		log.Info().Int("fetched", len(page)).Int("saved", saved).Msg("cached page")

		if next == "" {
			log.Debug().Msg("no more pages")
			return nil
		}
		cursor = next
		pacer.Wait()
	}
}
