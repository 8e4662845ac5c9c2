package command

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/eigenmagic/forget/internal/types"
)

const AppName = "forget"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

// Execute runs the root command.
func Execute() error {
	return NewRootCmd(Version).Execute()
}

// NewRootCmd creates the root command.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Forget - retire old tweets, dms and likes",
		Long: `Forget deletes your old social media content on a schedule you choose.

It keeps a local cache of everything it has seen, picks what to delete
under a retention policy, and paces deletions against the API's rate
limits. The cache survives between runs, so an interrupted run picks
up where it left off.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().StringP("config", "c", "~/.twitrc", "config file with API credentials")
	cmd.PersistentFlags().String("cache", "", "cache database file (default ~/.forgetcache-<kind>.db)")
	cmd.PersistentFlags().String("loglevel", "info", "log output level (debug, info, warn, error)")
	cmd.PersistentFlags().Bool("dryrun", false, "don't actually delete anything, but do populate the cache")

	cmd.AddCommand(
		NewKindCmd(types.KindTweets),
		NewKindCmd(types.KindDMs),
		NewKindCmd(types.KindLikes),
		NewStatsCmd(),
		NewMigrateCmd(),
	)

	return cmd
}

func writeCommandError(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
	return err
}

// newLogger builds the run's logger from the --loglevel flag. It is
// handed down explicitly into every component that reports progress.
func newLogger(cmd *cobra.Command) (zerolog.Logger, error) {
	levelName, _ := cmd.Flags().GetString("loglevel")
	level, err := zerolog.ParseLevel(strings.ToLower(levelName))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("bad loglevel %q: %w", levelName, err)
	}
	writer := zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: "15:04:05"}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger(), nil
}
