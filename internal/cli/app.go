package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/service"
	sqlitestore "github.com/BrandonDHaskell/checkpoint/server/internal/checkin/store/sqlite"
	"github.com/BrandonDHaskell/checkpoint/server/internal/config"
	"github.com/BrandonDHaskell/checkpoint/server/internal/db"
	"github.com/BrandonDHaskell/checkpoint/server/internal/metrics"
)

// app is the wired dependency graph shared by serve, scan and checkin.
type app struct {
	cfg    config.Config
	logger *slog.Logger

	conn   *sql.DB
	writer *db.Worker

	promReg *prometheus.Registry
	metrics *metrics.Collector
	kiosks  *service.KioskRegistry
}

func openApp(ctx context.Context, opts *RootOptions) (*app, error) {
	cfg := opts.Config
	log := opts.Logger

	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		return nil, err
	}

	if err := seedFromConfig(ctx, conn, cfg, log); err != nil {
		_ = conn.Close()
		return nil, err
	}

	writer := db.NewWorker(conn)
	sessions := sqlitestore.NewSessionStore(conn, writer)
	if err := presetKiosks(ctx, sessions, cfg.KioskLocations); err != nil {
		writer.Close()
		_ = conn.Close()
		return nil, err
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	mc := metrics.NewCollector(promReg)

	locations := sqlitestore.NewLocationDirectory(conn)
	kiosks := service.NewKioskRegistry(service.Deps{
		Persons:   sqlitestore.NewPersonDirectory(conn),
		Locations: locations,
		Events:    sqlitestore.NewEventStore(conn, writer),
		Sessions:  sessions,
		Observer:  mc,
		Logger:    log,
	}, service.KioskConfig{
		DebounceWindow:   cfg.DebounceWindow,
		DebounceManual:   cfg.DebounceManual,
		StrictSequencing: cfg.StrictSequencing,
		RejectAmbiguous:  cfg.RejectAmbiguous,
	})

	return &app{
		cfg:     cfg,
		logger:  log,
		conn:    conn,
		writer:  writer,
		promReg: promReg,
		metrics: mc,
		kiosks:  kiosks,
	}, nil
}

// Close drains pending writes before closing the database.
func (a *app) Close() {
	a.writer.Close()
	_ = a.conn.Close()
}

// seedFromConfig loads the configured roster, or the dev roster when
// running in dev without one.
func seedFromConfig(ctx context.Context, conn *sql.DB, cfg config.Config, log *slog.Logger) error {
	switch {
	case cfg.RosterPath != "":
		r, err := db.LoadRoster(cfg.RosterPath)
		if err != nil {
			return err
		}
		if err := db.SeedRoster(ctx, conn, r); err != nil {
			return err
		}
		log.Info("roster loaded", "path", cfg.RosterPath,
			"persons", len(r.Persons), "locations", len(r.Locations))
	case cfg.Env == "dev":
		if err := db.SeedDev(ctx, conn); err != nil {
			return err
		}
		log.Debug("dev roster seeded")
	}
	return nil
}

// presetKiosks applies configured kiosk locations to kiosks with no saved
// selection.
func presetKiosks(ctx context.Context, sessions *sqlitestore.SessionStore, presets map[string]string) error {
	for kioskID, locID := range presets {
		_, ok, err := sessions.LoadLocation(ctx, kioskID)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if err := sessions.SaveLocation(ctx, kioskID, locID, time.Now().UTC()); err != nil {
			return fmt.Errorf("preset kiosk %s: %w", kioskID, err)
		}
	}
	return nil
}
