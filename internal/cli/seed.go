package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/checkpoint/server/internal/db"
)

type SeedOptions struct {
	*RootOptions
	Roster string
	Dev    bool
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load persons and locations from a YAML roster",
		Long: `Upsert persons and locations into the database.

Example:
  checkpoint seed --roster ./roster.yaml
  checkpoint seed --dev`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Roster == "" && !opts.Dev {
				return errors.New("one of --roster or --dev is required")
			}

			r := db.DevRoster
			if opts.Roster != "" {
				var err error
				if r, err = db.LoadRoster(opts.Roster); err != nil {
					return err
				}
			}

			cfg := opts.Config
			conn, err := db.Open(cmd.Context(), db.Config{Path: cfg.DBPath, Env: cfg.Env})
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := db.SeedRoster(cmd.Context(), conn, r); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d persons, %d locations\n", len(r.Persons), len(r.Locations))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Roster, "roster", "", "path to YAML roster file")
	cmd.Flags().BoolVar(&opts.Dev, "dev", false, "load the built-in dev roster")

	return cmd
}
