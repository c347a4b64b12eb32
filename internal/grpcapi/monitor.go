package grpcapi

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// StatusSetter is satisfied by *health.Server.
type StatusSetter interface {
	SetServingStatus(service string, status healthpb.HealthCheckResponse_ServingStatus)
}

// HealthMonitor periodically probes the store and publishes the result as
// the gRPC serving status.  It runs as a background goroutine and is safe
// to stop via its context or the Stop method.
type HealthMonitor struct {
	pinger   Pinger
	sink     StatusSetter
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger

	healthy atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// MonitorConfig holds the parameters for NewHealthMonitor.
type MonitorConfig struct {
	// Interval between probes.  Defaults to 15s.
	Interval time.Duration

	// Timeout for a single probe.  Defaults to 3s.
	Timeout time.Duration
}

// NewHealthMonitor creates a monitor but does not start it.
func NewHealthMonitor(p Pinger, sink StatusSetter, cfg MonitorConfig, logger *slog.Logger) *HealthMonitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &HealthMonitor{
		pinger:   p,
		sink:     sink,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start probes once immediately, then on every interval, until ctx is
// cancelled or Stop is called.
func (m *HealthMonitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	go m.loop(ctx)
	m.logger.Info("health monitor started", "interval", m.interval.String())
}

// Stop signals the monitor to exit and waits for it to finish.
func (m *HealthMonitor) Stop() {
	if m.cancel != nil {
		m.cancel()
		<-m.done
	}
}

// Healthy reports the result of the latest probe.
func (m *HealthMonitor) Healthy() bool {
	return m.healthy.Load()
}

func (m *HealthMonitor) loop(ctx context.Context) {
	defer close(m.done)

	m.probe(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

func (m *HealthMonitor) probe(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.pinger.PingContext(pctx)
	if ctx.Err() != nil {
		return
	}

	ok := err == nil
	if prev := m.healthy.Swap(ok); prev != ok {
		if ok {
			m.logger.Info("store reachable")
		} else {
			m.logger.Error("store unreachable", "err", err)
		}
	}

	status := healthpb.HealthCheckResponse_SERVING
	if !ok {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	m.sink.SetServingStatus("", status)
	m.sink.SetServingStatus(ServiceName, status)
}
