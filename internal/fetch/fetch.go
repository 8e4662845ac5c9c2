// Package fetch grows the local cache to match remote state, paging
// backward from the oldest known id and forward from the newest.
package fetch

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/eigenmagic/forget/internal/db"
	"github.com/eigenmagic/forget/internal/rate"
	"github.com/eigenmagic/forget/internal/types"
)

// Lister is the remote listing capability the fetch loops consume.
// A zero bound means unbounded (first page / from the beginning).
type Lister interface {
	ListOlder(owner string, count int, maxID uint64) ([]types.Item, error)
	ListNewer(owner string, count int, sinceID uint64) ([]types.Item, error)
}

// Older pages backward from the oldest live cached id until the remote
// has nothing earlier. The floor excludes tombstoned and ignored ids:
// once the oldest items have been destroyed, anchoring on them would
// stall backward progress forever. A repeated floor means no progress
// was made, so the loop stops rather than spinning on the same page.
// Transport errors are not retried here; the durable cache makes a
// clean restart safe.
func Older(client Lister, conn *sql.DB, owner string, batchSize int, ignoreIDs []uint64, pacer *rate.Pacer, log zerolog.Logger) error {
	var prevFloor uint64
	havePrev := false

	for {
		total, err := db.Count(conn)
		if err != nil {
			return err
		}

		var page []types.Item
		if total == 0 {
			log.Debug().Int("batch", batchSize).Msg("fetching first page")
			page, err = client.ListOlder(owner, batchSize, 0)
		} else {
			minID, ok, qerr := db.MinID(conn, true, ignoreIDs)
			if qerr != nil {
				return qerr
			}
			if !ok {
				// Every cached item is tombstoned or ignored; there is
				// no live anchor to page back from.
				log.Debug().Msg("no live items to anchor on, stopping")
				return nil
			}
			floor := minID - 1
			if havePrev && floor == prevFloor {
				log.Debug().Uint64("floor", floor).Msg("floor unchanged, remote exhausted")
				return nil
			}
			prevFloor, havePrev = floor, true

			log.Debug().Uint64("max_id", floor).Int("batch", batchSize).Msg("fetching older page")
			page, err = client.ListOlder(owner, batchSize, floor)
		}
		if err != nil {
			return fmt.Errorf("fetch older: %w", err)
		}
		if len(page) == 0 {
			log.Debug().Msg("no more older items")
			return nil
		}

		saved, err := db.InsertOrIgnore(conn, owner, page)
		if err != nil {
			return err
		}
		log.Info().Int("fetched", len(page)).Int("saved", saved).Msg("cached older page")

		pacer.Wait()
	}
}

// Newer pages forward from the newest cached id until the remote has
// nothing later. The ceiling includes tombstoned items: a tombstone is
// still a real previously-seen id and must not rewind the frontier.
func Newer(client Lister, conn *sql.DB, owner string, batchSize int, pacer *rate.Pacer, log zerolog.Logger) error {
	for {
		var since uint64
		ceiling, ok, err := db.MaxID(conn, false)
		if err != nil {
			return err
		}
		if ok {
			since = ceiling
		}

		log.Debug().Uint64("since_id", since).Int("batch", batchSize).Msg("fetching newer page")
		page, err := client.ListNewer(owner, batchSize, since)
		if err != nil {
			return fmt.Errorf("fetch newer: %w", err)
		}
		if len(page) == 0 {
			log.Debug().Msg("no more newer items")
			return nil
		}

		saved, err := db.InsertOrIgnore(conn, owner, page)
		if err != nil {
			return err
		}
		log.Info().Int("fetched", len(page)).Int("saved", saved).Msg("cached newer page")
		if saved == 0 {
			// Nothing new despite a non-empty page: the frontier can't
			// advance, so stop instead of refetching the same items.
			return nil
		}

		pacer.Wait()
	}
}
