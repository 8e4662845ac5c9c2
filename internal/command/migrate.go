package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eigenmagic/forget/internal/db"
	"github.com/eigenmagic/forget/internal/types"
)

// NewMigrateCmd creates the migrate command, which rewrites cached
// datetimes from the legacy encoding to the canonical one without
// touching the remote API.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate <kind>",
		Short:     "Migrate cached datetimes to the canonical format",
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

			n, err := db.MigrateDatetimes(conn)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d rows migrated\n", n)
			return nil
		},
	}
}

func parseKind(value string) (types.Kind, error) {
	switch types.Kind(value) {
	case types.KindTweets, types.KindDMs, types.KindLikes:
		return types.Kind(value), nil
	}
	return "", fmt.Errorf("unknown kind %q (want tweets, dms or likes)", value)
}
