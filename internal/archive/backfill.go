package archive

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/eigenmagic/forget/internal/db"
	"github.com/eigenmagic/forget/internal/rate"
	"github.com/eigenmagic/forget/internal/types"
)

// lookupBatchSize is the remote lookup API's maximum ids per call.
const lookupBatchSize = 100

// Lookuper is the remote bulk-lookup capability.
type Lookuper interface {
	Lookup(ids []uint64) ([]types.Item, error)
}

// Backfill fetches creation times for cached items that have none.
// The vendor export omits created_at for some kinds, and the date
// policies can't select an item until its age is known. Items the
// lookup doesn't return (deleted, blocked, suspended authors) simply
// stay dateless; the no-date policy exists for them.
func Backfill(client Lookuper, conn *sql.DB, owner string, pacer *rate.Pacer, log zerolog.Logger) (int, error) {
	ids, err := db.NoDateIDs(conn)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	log.Info().Int("count", len(ids)).Msg("backfilling creation times")

	filled := 0
	for start := 0; start < len(ids); start += lookupBatchSize {
		end := start + lookupBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		log.Debug().Int("count", len(batch)).Msg("looking up batch")
		found, err := client.Lookup(batch)
		if err != nil {
			return filled, fmt.Errorf("lookup batch: %w", err)
		}

		// Re-inserting known ids is ignored, but rows with a NULL
		// created_at pick up the looked-up timestamp.
		if _, err := db.InsertOrIgnore(conn, owner, found); err != nil {
			return filled, err
		}
		filled += len(found)

		if end < len(ids) {
			pacer.Wait()
		}
	}

	log.Info().Int("filled", filled).Msg("backfill complete")
	return filled, nil
}
