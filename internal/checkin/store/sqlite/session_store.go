package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/BrandonDHaskell/checkpoint/server/internal/db"
)

// SessionStore persists each kiosk's selected location in kiosk_sessions.
type SessionStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewSessionStore(db *sql.DB, writer *dbpkg.Worker) *SessionStore {
	return &SessionStore{db: db, writer: writer}
}

func (s *SessionStore) LoadLocation(ctx context.Context, kioskID string) (string, bool, error) {
	kioskID = strings.TrimSpace(kioskID)
	if kioskID == "" {
		return "", false, nil
	}

	var loc string
	err := s.db.QueryRowContext(ctx, `
SELECT location_id FROM kiosk_sessions WHERE kiosk_id = ?;
`, kioskID).Scan(&loc)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("LoadLocation query: %w", err)
	}
	return loc, true, nil
}

func (s *SessionStore) SaveLocation(ctx context.Context, kioskID, locationID string, at time.Time) error {
	kioskID = strings.TrimSpace(kioskID)
	if kioskID == "" {
		return nil
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	ms := at.UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO kiosk_sessions(kiosk_id, location_id, selected_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?)
ON CONFLICT(kiosk_id) DO UPDATE SET
  location_id    = excluded.location_id,
  selected_at_ms = excluded.selected_at_ms,
  updated_at_ms  = excluded.updated_at_ms;
`, kioskID, locationID, ms, ms); err != nil {
			return fmt.Errorf("SaveLocation upsert: %w", err)
		}
		return nil
	})
}

func (s *SessionStore) ClearLocation(ctx context.Context, kioskID string) error {
	kioskID = strings.TrimSpace(kioskID)
	if kioskID == "" {
		return nil
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
DELETE FROM kiosk_sessions WHERE kiosk_id = ?;
`, kioskID); err != nil {
			return fmt.Errorf("ClearLocation delete: %w", err)
		}
		return nil
	})
}
