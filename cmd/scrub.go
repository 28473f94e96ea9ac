package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	logger "github.com/PolarWolf314/scrub/internal/logging"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	// Settings flags. They only override .scrub.toml and SCRUB_* values
	// when explicitly set.
	fileFlag         string
	backupFlag       string
	ignoreFileFlag   string
	remoteFlag       string
	messageFlag      string
	aggressiveFlag   bool
	pushTagsFlag     bool
	ignoreBackupFlag bool

	// ScrubCmd is the root command. Run without a subcommand it purges the
	// secrets file from history.
	ScrubCmd = &cobra.Command{
		Use:   "scrub",
		Short: "Purge a secrets file from git history",
		Long: `scrub removes a committed secrets file from every commit of a repository.

It runs, in order:
  1. backup           copy the file to <file>.backup
  2. rewrite-history  remove the file from every commit on every branch and tag
  3. ignore           add the file to .gitignore
  4. commit           commit the .gitignore change
  5. cleanup-refs     delete the refs/original/ backup refs
  6. gc               expire the reflog and prune the old objects
  7. verify           check that no reachable commit still has the file
  8. push             force-push every branch to the remote

Every check runs before the first step, and the run stops at the first
failing step. Rewriting history is irreversible: collaborators will need
to re-clone or rebase, and any credential that was committed should be
rotated regardless.

Settings are read from .scrub.toml at the repository root, then SCRUB_*
environment variables, then flags.

Examples:
  scrub --dry-run                 # Show what would run
  scrub                           # Purge .env and force-push to origin
  scrub -f config/secrets.json    # Purge another file
  scrub --no-push --restore       # Rewrite locally and put the file back`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing %s command with verbose=%t, debug=%t", cmd.Name(), verbose, debug)
		},
		Args: cobra.NoArgs,
		RunE: runPurge,
	}
)

func init() {
	flags := ScrubCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&debug, "debug", "d", false, "enable debug output")

	flags.StringVarP(&fileFlag, "file", "f", "", "secrets file to purge (default \".env\")")
	flags.StringVar(&backupFlag, "backup", "", "backup path (default \"<file>.backup\")")
	flags.StringVar(&ignoreFileFlag, "ignore-file", "", "ignore file to append to (default \".gitignore\")")
	flags.StringVar(&remoteFlag, "remote", "", "remote to force-push to (default \"origin\")")
	flags.StringVarP(&messageFlag, "message", "m", "", "commit message for the ignore change")
	flags.BoolVar(&aggressiveFlag, "aggressive", false, "run git gc with --aggressive")
	flags.BoolVar(&pushTagsFlag, "push-tags", false, "also force-push every tag")
	flags.BoolVar(&ignoreBackupFlag, "ignore-backup", true, "also add the backup file to the ignore file (--ignore-backup=false to skip)")

	ScrubCmd.AddCommand(statusCmd)
	ScrubCmd.AddCommand(verifyCmd)
	ScrubCmd.AddCommand(logCmd)
	ScrubCmd.AddCommand(ConfigCmd)
	ScrubCmd.AddCommand(versionCmd)
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	fileFlag = ""
	backupFlag = ""
	ignoreFileFlag = ""
	remoteFlag = ""
	messageFlag = ""
	aggressiveFlag = false
	pushTagsFlag = false
	ignoreBackupFlag = true

	resetPurgeCommandState()
	resetStatusCommandState()
	resetVerifyCommandState()
	resetLogCommandState()
	resetConfigCommandState()
	resetCobraFlagState(ScrubCmd)
}

// resetCobraFlagState clears the Changed marks on every flag in the tree to
// prevent test pollution.
func resetCobraFlagState(cmd *cobra.Command) {
	reset := func(flag *pflag.Flag) {
		flag.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetCobraFlagState(sub)
	}
}
