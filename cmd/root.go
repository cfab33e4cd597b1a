package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/reclaim/internal/clean"
	"github.com/lakshaymaurya-felt/reclaim/internal/config"
	"github.com/lakshaymaurya-felt/reclaim/internal/core"
	"github.com/lakshaymaurya-felt/reclaim/internal/logging"
	"github.com/lakshaymaurya-felt/reclaim/internal/store"
)

var (
	// Global flags
	cfgFile string
	dbPath  string
	debug   bool

	// Resolved in PersistentPreRunE.
	cfg      *config.Config
	closeLog = func() {}

	// Version info populated from main
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets build-time version information.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "reclaim",
	Short: "Rule-driven disk space cleanup",
	Long: `reclaim - find and remove what is safe to remove.

Scans a catalog of cleanup rules (temp folders, caches, logs, orphaned
uninstall entries and leftover application folders), reports how much
each would free, and cleans the rules you select.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if dbPath != "" {
			loaded.DBPath = dbPath
		}
		if debug {
			loaded.LogLevel = "debug"
		}
		cfg = loaded
		closeLog = logging.Setup(cfg.LogLevel, cfg.LogFile, os.Stderr)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLog()
	},
}

// Execute runs the root command. Cancelling ctx cancels any scan or clean
// in progress.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default "+config.DefaultConfigDir()+"/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Rule database path (overrides db_path)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Show detailed operation logs")

	// Register all subcommands
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(drivesCmd)
	rootCmd.AddCommand(orphansCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}

// openStore opens the rule database, seeding it on first use.
func openStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(ctx, cfg.DBPath, config.DefaultRules())
	if err != nil {
		return nil, fmt.Errorf("open rule database %s: %w", cfg.DBPath, err)
	}
	return st, nil
}

// newEngine builds an engine from the loaded config. events may be nil.
func newEngine(events chan<- clean.Event) *clean.Engine {
	l := logging.Get("clean")
	return clean.New(clean.Options{
		IsAdmin:       core.IsElevated(),
		Workers:       cfg.Workers,
		ResidueCutoff: cfg.ResidueCutoff(),
		Events:        events,
		Logger:        &l,
	})
}
