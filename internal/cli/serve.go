package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/checkpoint/server/internal/grpcapi"
	"github.com/BrandonDHaskell/checkpoint/server/internal/httpapi"
)

type ServeOptions struct {
	*RootOptions
	HTTPAddr string
	GRPCAddr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the kiosk HTTP API (and optional gRPC health server)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.HTTPAddr != "" {
				opts.Config.HTTPAddr = opts.HTTPAddr
			}
			if opts.GRPCAddr != "" {
				opts.Config.GRPCAddr = opts.GRPCAddr
			}
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.HTTPAddr, "http-addr", "", "HTTP listen address (default $CHECKPOINT_HTTP_ADDR)")
	cmd.Flags().StringVar(&opts.GRPCAddr, "grpc-addr", "", "gRPC health listen address (default $CHECKPOINT_GRPC_ADDR)")

	return cmd
}

func runServe(parent context.Context, opts *ServeOptions) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.cfg
	log := a.logger
	log.Info("kiosk engine ready",
		"db", cfg.DBPath,
		"env", cfg.Env,
		"debounce_window", cfg.DebounceWindow.String(),
		"debounce_manual", cfg.DebounceManual,
		"strict_sequencing", a.kiosks.Strict(),
	)

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:   log,
		Addr:     cfg.HTTPAddr,
		Kiosks:   a.kiosks,
		Metrics:  a.metrics,
		Gatherer: a.promReg,
		RateLimit: httpapi.RateLimitConfig{
			PerMinute: cfg.RateLimitPerMin,
			Burst:     cfg.RateLimitBurst,
		},
		Ready: a.conn.PingContext,
	})

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
			stop()
		}
	}()

	var (
		gsrv    *grpcapi.Server
		monitor *grpcapi.HealthMonitor
	)
	if cfg.GRPCAddr != "" {
		gsrv = grpcapi.NewServer(grpcapi.Dependencies{Logger: log, Addr: cfg.GRPCAddr})
		monitor = grpcapi.NewHealthMonitor(a.conn, gsrv.Health(), grpcapi.MonitorConfig{
			Interval: cfg.HealthInterval,
		}, log)
		monitor.Start(ctx)

		go func() {
			if err := gsrv.Start(); err != nil {
				log.Error("grpc server error", "err", err)
				stop()
			}
		}()
	}

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if monitor != nil {
		monitor.Stop()
	}
	if gsrv != nil {
		_ = gsrv.Shutdown(shutdownCtx)
	}
	return srv.Shutdown(shutdownCtx)
}
