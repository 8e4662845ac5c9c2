package command

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eigenmagic/forget/internal/archive"
	"github.com/eigenmagic/forget/internal/config"
	"github.com/eigenmagic/forget/internal/db"
	"github.com/eigenmagic/forget/internal/destroy"
	"github.com/eigenmagic/forget/internal/fetch"
	"github.com/eigenmagic/forget/internal/policy"
	"github.com/eigenmagic/forget/internal/rate"
	"github.com/eigenmagic/forget/internal/twitter"
	"github.com/eigenmagic/forget/internal/types"
)

// NewKindCmd creates the per-kind retirement command (tweets, dms or
// likes). All three share one flow: optional archive import, fetch
// phase, policy selection, destroy phase.
func NewKindCmd(kind types.Kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(kind) + " <user>",
		Short: fmt.Sprintf("Retire old %ss for an account", kind.Noun()),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runKind(cmd, kind, args[0]); err != nil {
				return writeCommandError(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().IntP("batchsize", "b", 200, "fetch this many items per API call")
	cmd.Flags().IntP("keepnum", "K", 2000, "how many of the newest items to keep")
	cmd.Flags().Int("beforedays", 0, "delete items from before this many days ago")
	cmd.Flags().StringP("date-before", "B", "", "delete items created before this date")
	cmd.Flags().StringP("date-after", "A", "", "delete items created after this date (requires --date-before)")
	cmd.Flags().Bool("delete-nodate", false, "delete items with no known creation date")
	cmd.Flags().IntP("deletemax", "d", 0, "delete at most this many items")
	cmd.Flags().UintSliceP("keep", "k", nil, "never delete the item with this id (repeatable)")
	cmd.Flags().StringP("importfile", "i", "", "import items from a vendor archive zip")
	cmd.Flags().Bool("nofetch", false, "skip the fetch phase")
	cmd.Flags().Bool("nodelete", false, "skip the delete phase")
	cmd.Flags().Int("searchlimit", 5, "max fetch API calls per minute")
	cmd.Flags().Int("deletelimit", 60, "max delete API calls per minute")
	cmd.Flags().Bool("migrate", false, "migrate cached datetimes to the canonical format before anything else")

	return cmd
}

func runKind(cmd *cobra.Command, kind types.Kind, owner string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}

	params, err := policyParams(cmd)
	if err != nil {
		return err
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	cachePath, err := cacheLocation(cmd, kind)
	if err != nil {
		return err
	}
	conn, err := db.Open(cachePath)
	if err != nil {
		return err
	}
	defer conn.Close()

	if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
		n, err := db.MigrateDatetimes(conn)
		if err != nil {
			return err
		}
		log.Info().Int("rows", n).Msg("migrated cached datetimes")
	}

	client := twitter.New(kind, cfg.Credentials)
	batchSize, _ := cmd.Flags().GetInt("batchsize")
	searchLimit, _ := cmd.Flags().GetInt("searchlimit")
	fetchPacer := rate.NewPacer(searchLimit)

	keepList := keepListFor(cmd, cfg, kind)

	if importFile, _ := cmd.Flags().GetString("importfile"); importFile != "" {
		if _, err := archive.Import(importFile, kind, conn, owner, log); err != nil {
			return err
		}
		// The export omits creation times for likes; look them up so
		// the date policies can see those items. Dms can't be looked
		// up this way, their archive rows already carry timestamps.
		if kind != types.KindDMs {
			backfillPacer := rate.NewPacer(60) // 900 lookups per 15 min window
			if _, err := archive.Backfill(client, conn, owner, backfillPacer, log); err != nil {
				return err
			}
		}
	}

	if noFetch, _ := cmd.Flags().GetBool("nofetch"); !noFetch {
		if kind == types.KindDMs {
			if err := fetch.Cursor(client, conn, owner, batchSize, fetchPacer, log); err != nil {
				return err
			}
		} else {
			if err := fetch.Newer(client, conn, owner, batchSize, fetchPacer, log); err != nil {
				return err
			}
			if err := fetch.Older(client, conn, owner, batchSize, keepList, fetchPacer, log); err != nil {
				return err
			}
		}
	}

	if noDelete, _ := cmd.Flags().GetBool("nodelete"); noDelete {
		return nil
	}

	set, err := policy.Select(conn, params, time.Now())
	if err != nil {
		return err
	}
	log.Info().Str("policy", params.Name()).Int("count", len(set)).Msg("computed destroy-set")

	opts := destroy.Options{Kind: kind, KeepList: keepList}
	opts.DryRun, _ = cmd.Flags().GetBool("dryrun")
	if kind == types.KindDMs {
		opts.SelfUserID, err = client.UserID(owner)
		if err != nil {
			return fmt.Errorf("resolve own user id: %w", err)
		}
	}

	deleteLimit, _ := cmd.Flags().GetInt("deletelimit")
	result, err := destroy.Run(client, conn, set, opts, rate.NewPacer(deleteLimit), log)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d destroyed, %d tombstoned, %d kept\n",
		result.Destroyed, result.Tombstoned, result.Skipped)
	return nil
}

// policyParams builds the retention policy from flags, enforcing the
// safety rule before any remote interaction: an after-date bound alone
// would be an unbounded deletion window.
func policyParams(cmd *cobra.Command) (policy.Params, error) {
	var params policy.Params

	params.NoDate, _ = cmd.Flags().GetBool("delete-nodate")
	params.KeepNum, _ = cmd.Flags().GetInt("keepnum")

	if cmd.Flags().Changed("date-before") {
		raw, _ := cmd.Flags().GetString("date-before")
		t, err := parseDate(raw)
		if err != nil {
			return params, err
		}
		params.DateBefore = &t
	}
	if cmd.Flags().Changed("date-after") {
		if params.DateBefore == nil {
			return params, fmt.Errorf("safety feature: --date-after requires --date-before")
		}
		raw, _ := cmd.Flags().GetString("date-after")
		t, err := parseDate(raw)
		if err != nil {
			return params, err
		}
		params.DateAfter = &t
	}
	if cmd.Flags().Changed("beforedays") {
		days, _ := cmd.Flags().GetInt("beforedays")
		params.BeforeDays = &days
	}
	if cmd.Flags().Changed("deletemax") {
		max, _ := cmd.Flags().GetInt("deletemax")
		params.DeleteMax = &max
	}

	return params, nil
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("not a valid date: %q", value)
	}
	return t, nil
}

// keepListFor merges the config file's keep-list for this kind with
// any --keep flags.
func keepListFor(cmd *cobra.Command, cfg *config.Config, kind types.Kind) []uint64 {
	list := append([]uint64(nil), cfg.KeepLists[kind]...)
	flagged, _ := cmd.Flags().GetUintSlice("keep")
	for _, id := range flagged {
		list = append(list, uint64(id))
	}
	return list
}

// cacheLocation resolves the cache file path, defaulting to a per-kind
// file in the user's home directory.
func cacheLocation(cmd *cobra.Command, kind types.Kind) (string, error) {
	path, _ := cmd.Flags().GetString("cache")
	if path == "" {
		path = fmt.Sprintf("~/.forgetcache-%s.db", kind)
	}
	return config.ExpandHome(path)
}
