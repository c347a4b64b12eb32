package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/service"
)

type KioskOptions struct {
	*RootOptions
	Kiosk    string
	Location string
}

func (o *KioskOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Kiosk, "kiosk", "cli", "kiosk id")
	cmd.Flags().StringVar(&o.Location, "location", "", "select this location before processing (default: the kiosk's saved location)")
}

// NewScanCommand creates the scan command.
func NewScanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KioskOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Read scanned tokens from stdin, one per line",
		Long: `Treat each stdin line as a token from a continuous scanner.

Repeated tokens inside the debounce window are dropped silently.

Example:
  zbarcam --raw | checkpoint scan --kiosk front --location front-desk`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	opts.bind(cmd)

	return cmd
}

func runScan(ctx context.Context, opts *KioskOptions, in io.Reader, out io.Writer) error {
	a, err := openApp(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.Close()

	k, err := prepareKiosk(ctx, a, opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokens := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(tokens)
		sc := bufio.NewScanner(in)
		// Sent before tokens closes, on every exit path.
		defer func() { readErr <- sc.Err() }()
		for sc.Scan() {
			line := strings.TrimRight(sc.Text(), "\r")
			if line == "" {
				continue
			}
			select {
			case tokens <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	err = k.RunScanner(ctx, tokens, func(res service.Result) {
		printResult(out, res)
	})
	// Interrupted.  The reader may still be blocked on stdin, so don't wait
	// for it.
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return err
	}
	return <-readErr
}

// prepareKiosk loads the kiosk and applies --location when given.
func prepareKiosk(ctx context.Context, a *app, opts *KioskOptions) (*service.Kiosk, error) {
	k, err := a.kiosks.Kiosk(ctx, opts.Kiosk)
	if err != nil {
		return nil, err
	}
	if opts.Location != "" {
		if _, err := k.SelectLocation(ctx, opts.Location); err != nil {
			return nil, err
		}
	}
	return k, nil
}

func printResult(w io.Writer, res service.Result) {
	switch {
	case res.Suppressed:
		return
	case res.IsError:
		fmt.Fprintf(w, "error: %s\n", res.Message)
	default:
		fmt.Fprintln(w, res.Message)
	}
}
