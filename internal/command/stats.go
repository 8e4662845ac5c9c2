package command

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/eigenmagic/forget/internal/db"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "stats <kind>",
		Short:     "Show cache totals for a content kind",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"tweets", "dms", "likes"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}

			cachePath, err := cacheLocation(cmd, kind)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			conn, err := db.Open(cachePath)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer conn.Close()

			total, err := db.Count(conn)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			deleted, err := db.CountDeleted(conn)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "cache: %s\n", cachePath)
			fmt.Fprintf(out, "items: %s\n", humanize.Comma(int64(total)))
			fmt.Fprintf(out, "tombstoned: %s\n", humanize.Comma(int64(deleted)))
			fmt.Fprintf(out, "live: %s\n", humanize.Comma(int64(total-deleted)))
			return nil
		},
	}
}
