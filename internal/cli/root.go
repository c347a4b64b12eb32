package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/checkpoint/server/internal/config"
	"github.com/BrandonDHaskell/checkpoint/server/internal/logger"
)

// RootOptions holds global flags for all commands.  Values left at their
// zero value fall back to the CHECKPOINT_* environment.
type RootOptions struct {
	DBPath   string
	Env      string
	LogLevel string

	// Filled in by PersistentPreRunE.
	Config config.Config
	Logger *slog.Logger
}

// NewRootCommand creates the root command for the checkpoint CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Checkpoint - kiosk attendance check-in",
		Long: `Checkpoint records arrivals, departures and transfers from kiosk
check-ins.  A kiosk is bound to one location; each person identifies with a
4-digit short code or a scanned code.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.Config = config.FromEnv()
			if opts.DBPath != "" {
				opts.Config.DBPath = opts.DBPath
			}
			if opts.Env != "" {
				opts.Config.Env = opts.Env
			}
			if opts.LogLevel != "" {
				opts.Config.LogLevel = opts.LogLevel
			}
			opts.Logger = logger.Setup(logWriter(cmd), opts.Config.LogLevel)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to SQLite database (default $CHECKPOINT_DB_PATH)")
	cmd.PersistentFlags().StringVar(&opts.Env, "env", "", "environment: dev or prod (default $CHECKPOINT_ENV)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "debug, info, warn or error (default $CHECKPOINT_LOG_LEVEL)")

	// Add subcommands
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewScanCommand(opts))
	cmd.AddCommand(NewCheckInCommand(opts))

	return cmd
}

// logWriter sends logs to stderr so command output on stdout stays clean.
func logWriter(cmd *cobra.Command) io.Writer {
	return cmd.ErrOrStderr()
}
