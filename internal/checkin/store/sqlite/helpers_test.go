package sqlite_test

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/types"
	"github.com/BrandonDHaskell/checkpoint/server/internal/db"
)

// openTestDB returns an in-memory SQLite connection with the same PRAGMAs
// and schema as production.  The connection is closed automatically when the
// test finishes.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// Each test gets its own named in-memory database.  The shared-cache URI
	// keeps it alive for the lifetime of the pool.
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf(
		"file:test_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)",
		name,
	)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("openTestDB: sql.Open: %v", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		conn.Close()
		t.Fatalf("openTestDB: ping: %v", err)
	}

	if err := db.Migrate(context.Background(), conn); err != nil {
		conn.Close()
		t.Fatalf("openTestDB: migrate: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// newTestWriter returns a db.Worker backed by conn.  The worker is closed
// automatically when the test finishes.
func newTestWriter(t *testing.T, conn *sql.DB) *db.Worker {
	t.Helper()

	w := db.NewWorker(conn)
	t.Cleanup(func() { w.Close() })
	return w
}

var testRoster = db.Roster{
	Locations: []types.Location{
		{ID: "locA", DisplayName: "Front Desk"},
		{ID: "locB", DisplayName: "Workshop"},
	},
	Persons: []types.Person{
		{ID: "u1", DisplayName: "Kim", ShortCode: "7777", Email: "kim@example.com"},
		{ID: "u2", DisplayName: "Lee", ShortCode: "4242"},
		{ID: "u3", DisplayName: "Sam", ShortCode: "4242"},
	},
}

func seedRoster(t *testing.T, conn *sql.DB) {
	t.Helper()
	if err := db.SeedRoster(context.Background(), conn, testRoster); err != nil {
		t.Fatalf("seedRoster: %v", err)
	}
}
