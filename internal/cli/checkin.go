package cli

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/types"
)

// ErrCheckInFailed is returned when the check-in produced an error message.
var ErrCheckInFailed = errors.New("check-in failed")

type CheckInOptions struct {
	KioskOptions
	JSON bool
}

// NewCheckInCommand creates the checkin command.
func NewCheckInCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckInOptions{KioskOptions: KioskOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "checkin <token>",
		Short: "Submit one manual check-in",
		Long: `Submit a single token as if typed on the kiosk keypad.

Example:
  checkpoint checkin 7777 --kiosk front --location front-desk`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts.RootOptions)
			if err != nil {
				return err
			}
			defer a.Close()

			k, err := prepareKiosk(ctx, a, &opts.KioskOptions)
			if err != nil {
				return err
			}

			res := k.ProcessManual(ctx, args[0])
			out := cmd.OutOrStdout()
			if opts.JSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(types.CheckInResponse{
					OK:         !res.IsError,
					KioskID:    k.ID(),
					Message:    res.Message,
					IsError:    res.IsError,
					Suppressed: res.Suppressed,
					Code:       res.Code,
					Event:      res.Event,
					ServerTime: time.Now().UTC().Format(time.RFC3339Nano),
				}); err != nil {
					return err
				}
			} else {
				printResult(out, res)
			}

			if res.IsError {
				return ErrCheckInFailed
			}
			return nil
		},
	}
	opts.bind(cmd)
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print the full response as JSON")

	return cmd
}
