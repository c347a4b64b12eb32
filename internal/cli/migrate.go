package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/checkpoint/server/internal/db"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and print the schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.Config
			conn, err := db.Open(cmd.Context(), db.Config{Path: cfg.DBPath, Env: cfg.Env})
			if err != nil {
				return err
			}
			defer conn.Close()

			v, dirty, err := db.SchemaVersion(conn)
			if err != nil {
				return fmt.Errorf("schema version: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", v, dirty)
			return nil
		},
	}
}
