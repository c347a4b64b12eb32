package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/types"
)

// Roster is the registration data the kiosk engine reads but never writes:
// the person directory and the list of locations.
type Roster struct {
	Locations []types.Location `yaml:"locations"`
	Persons   []types.Person   `yaml:"persons"`
}

// LoadRoster reads a YAML roster file.
//
//	locations:
//	  - id: front-desk
//	    name: Front Desk
//	persons:
//	  - id: u1
//	    name: Kim
//	    short_code: "7777"
func LoadRoster(path string) (Roster, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Roster{}, fmt.Errorf("read roster: %w", err)
	}
	return ParseRoster(b)
}

func ParseRoster(b []byte) (Roster, error) {
	var r Roster
	if err := yaml.Unmarshal(b, &r); err != nil {
		return Roster{}, fmt.Errorf("parse roster: %w", err)
	}
	if err := r.validate(); err != nil {
		return Roster{}, err
	}
	return r, nil
}

func (r Roster) validate() error {
	seen := make(map[string]struct{}, len(r.Locations))
	for i, l := range r.Locations {
		if strings.TrimSpace(l.ID) == "" {
			return fmt.Errorf("roster location %d: id is required", i)
		}
		if _, dup := seen[l.ID]; dup {
			return fmt.Errorf("roster location %q listed twice", l.ID)
		}
		seen[l.ID] = struct{}{}
	}

	seen = make(map[string]struct{}, len(r.Persons))
	for i, p := range r.Persons {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("roster person %d: id is required", i)
		}
		if p.ShortCode == "" {
			return fmt.Errorf("roster person %q: short_code is required", p.ID)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("roster person %q listed twice", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// SeedRoster upserts every location and person in r.  Existing attendance
// events are untouched.
func SeedRoster(ctx context.Context, db *sql.DB, r Roster) error {
	now := time.Now().UTC().UnixMilli()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, l := range r.Locations {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO locations(location_id, display_name, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?)
ON CONFLICT(location_id) DO UPDATE SET
  display_name  = excluded.display_name,
  updated_at_ms = excluded.updated_at_ms;
`, l.ID, l.DisplayName, now, now); err != nil {
			return fmt.Errorf("seed location %s: %w", l.ID, err)
		}
	}

	for _, p := range r.Persons {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO persons(person_id, display_name, short_code, email, phone, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(person_id) DO UPDATE SET
  display_name  = excluded.display_name,
  short_code    = excluded.short_code,
  email         = excluded.email,
  phone         = excluded.phone,
  updated_at_ms = excluded.updated_at_ms;
`, p.ID, p.DisplayName, p.ShortCode, nullIfEmpty(p.Email), nullIfEmpty(p.Phone), now, now); err != nil {
			return fmt.Errorf("seed person %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}
	return nil
}

// DevRoster is what SeedDev installs: two locations and a couple of people,
// enough to walk through arrive / transfer / depart by hand.
var DevRoster = Roster{
	Locations: []types.Location{
		{ID: "front-desk", DisplayName: "Front Desk"},
		{ID: "workshop", DisplayName: "Workshop"},
	},
	Persons: []types.Person{
		{ID: "dev-kim", DisplayName: "Kim", ShortCode: "7777"},
		{ID: "dev-ari", DisplayName: "Ari", ShortCode: "1234"},
	},
}

func SeedDev(ctx context.Context, db *sql.DB) error {
	return SeedRoster(ctx, db, DevRoster)
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
