// Package destroy walks a destroy-set, deletes each item remotely and
// reconciles the cache with the outcome.
package destroy

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/eigenmagic/forget/internal/db"
	"github.com/eigenmagic/forget/internal/rate"
	"github.com/eigenmagic/forget/internal/types"
)

// Deleter is the remote delete capability.
type Deleter interface {
	Delete(id uint64) error
}

// Options controls one destroy run.
type Options struct {
	Kind types.Kind

	// KeepList ids are never deleted, whatever the policy picked.
	KeepList []uint64

	// SelfUserID is the authenticated account's numeric id. Dms sent
	// by someone else can't be deleted by this account, only
	// tombstoned locally.
	SelfUserID int64

	// DryRun skips all remote and cache mutations but keeps the
	// bookkeeping, so a run can be previewed.
	DryRun bool
}

// Result counts what one destroy run did.
type Result struct {
	Destroyed  int // deleted remotely (or would be, under DryRun)
	Tombstoned int // tombstoned without a remote delete (stale/unowned)
	Skipped    int // protected by the keep-list
}

// Run processes the destroy-set in ascending id order. Each tombstone
// commits before the next item starts, so an interrupted run loses at
// most the in-flight call and a re-run naturally skips what is already
// tombstoned. Stale-reference errors from the remote are reconciled by
// tombstoning; any other remote error stops the loop immediately with
// the offending item left live.
func Run(client Deleter, conn *sql.DB, set []types.Item, opts Options, pacer *rate.Pacer, log zerolog.Logger) (Result, error) {
	var res Result
	keep := make(map[uint64]bool, len(opts.KeepList))
	for _, id := range opts.KeepList {
		keep[id] = true
	}

	noun := opts.Kind.Noun()
	log.Info().Int("count", len(set)).Msgf("need to destroy %d %ss", len(set), noun)

	for idx, item := range set {
		if keep[item.ID] {
			log.Debug().Uint64("id", item.ID).Msgf("%s on keep-list, skipping", noun)
			res.Skipped++
			pacer.Wait()
			continue
		}

		if opts.Kind == types.KindDMs && item.SenderID != nil && *item.SenderID != opts.SelfUserID {
			// Not our message to delete; the sender owns its fate.
			// Tombstone locally so it stops being selected.
			log.Debug().Uint64("id", item.ID).Msg("dm sent by someone else, tombstoning locally")
			if !opts.DryRun {
				if err := db.MarkDeleted(conn, item.ID); err != nil {
					return res, err
				}
			}
			res.Tombstoned++
			pacer.Wait()
			continue
		}

		log.Debug().Uint64("id", item.ID).Str("text", item.Text).Msgf("destroying %s", noun)
		if opts.DryRun {
			log.Info().Uint64("id", item.ID).Msgf("dry run: %s not actually deleted", noun)
			res.Destroyed++
			pacer.Wait()
			continue
		}

		if err := client.Delete(item.ID); err != nil {
			var apiErr *types.APIError
			if !errors.As(err, &apiErr) || !apiErr.Recoverable() {
				return res, fmt.Errorf("destroy %s %d (%s): %w", noun, item.ID, item.Text, err)
			}
			logStale(log, apiErr, noun, item)
			if err := db.MarkDeleted(conn, item.ID); err != nil {
				return res, err
			}
			res.Tombstoned++
		} else {
			if err := db.MarkDeleted(conn, item.ID); err != nil {
				return res, err
			}
			res.Destroyed++
		}

		log.Info().Uint64("id", item.ID).Msgf("%s %d of %d destroyed", noun, idx+1, len(set))
		pacer.Wait()
	}

	return res, nil
}

func logStale(log zerolog.Logger, apiErr *types.APIError, noun string, item types.Item) {
	switch apiErr.Codes[0] {
	case types.CodeNotFound:
		log.Warn().Uint64("id", item.ID).Msgf("%s doesn't exist remotely, stale cache entry, tombstoning", noun)
	case types.CodeNotAuthorized:
		log.Warn().Uint64("id", item.ID).Msgf("not authorized to delete %s, probably removed by its author, tombstoning", noun)
	case types.CodePageGone:
		log.Warn().Uint64("id", item.ID).Msgf("%s page is gone, tombstoning", noun)
	case types.CodeSuspended:
		log.Warn().Uint64("id", item.ID).Msgf("referenced user suspended, tombstoning %s", noun)
	}
}
