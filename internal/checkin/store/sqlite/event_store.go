package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/store"
	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/types"
	dbpkg "github.com/BrandonDHaskell/checkpoint/server/internal/db"
)

type EventStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewEventStore(db *sql.DB, writer *dbpkg.Worker) *EventStore {
	return &EventStore{db: db, writer: writer}
}

const latestEventQuery = `
SELECT event_id, person_id, location_id, kind, created_at_ms
FROM attendance_events
WHERE person_id = ?
ORDER BY created_at_ms DESC, event_seq DESC
LIMIT 1;
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*types.AttendanceEvent, error) {
	var (
		ev        types.AttendanceEvent
		kind      string
		createdMs int64
	)
	if err := row.Scan(&ev.ID, &ev.PersonID, &ev.LocationID, &kind, &createdMs); err != nil {
		return nil, err
	}
	k, err := types.ParseEventKind(kind)
	if err != nil {
		return nil, err
	}
	ev.Kind = k
	ev.CreatedAt = time.UnixMilli(createdMs).UTC()
	return &ev, nil
}

func (s *EventStore) LatestForPerson(ctx context.Context, personID string) (*types.AttendanceEvent, error) {
	ev, err := scanEvent(s.db.QueryRowContext(ctx, latestEventQuery, personID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("LatestForPerson: %w", err)
	}
	return ev, nil
}

func (s *EventStore) Insert(ctx context.Context, ev types.AttendanceEvent) (types.AttendanceEvent, error) {
	ev, err := normalise(ev)
	if err != nil {
		return types.AttendanceEvent{}, err
	}

	err = s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return insertEvent(ctx, tx, ev)
	})
	if err != nil {
		return types.AttendanceEvent{}, err
	}
	return ev, nil
}

// InsertIfLatest re-reads the person's latest event inside the writer's
// transaction and appends only if it is still prevEventID.
func (s *EventStore) InsertIfLatest(ctx context.Context, ev types.AttendanceEvent, prevEventID string) (types.AttendanceEvent, error) {
	ev, err := normalise(ev)
	if err != nil {
		return types.AttendanceEvent{}, err
	}

	err = s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		current := ""
		latest, err := scanEvent(tx.QueryRowContext(ctx, latestEventQuery, ev.PersonID))
		switch {
		case err == sql.ErrNoRows:
		case err != nil:
			return fmt.Errorf("InsertIfLatest read latest: %w", err)
		default:
			current = latest.ID
		}
		if current != prevEventID {
			return store.ErrStaleLatest
		}
		return insertEvent(ctx, tx, ev)
	})
	if err != nil {
		return types.AttendanceEvent{}, err
	}
	return ev, nil
}

func normalise(ev types.AttendanceEvent) (types.AttendanceEvent, error) {
	if !ev.Kind.Valid() {
		return types.AttendanceEvent{}, fmt.Errorf("insert event %s: invalid kind %d", ev.ID, uint8(ev.Kind))
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	// Stored at millisecond precision; hand back what a later read returns.
	ev.CreatedAt = time.UnixMilli(ev.CreatedAt.UnixMilli()).UTC()
	return ev, nil
}

func insertEvent(ctx context.Context, tx *sql.Tx, ev types.AttendanceEvent) error {
	if _, err := tx.ExecContext(ctx, `
INSERT INTO attendance_events(event_id, person_id, location_id, kind, created_at_ms)
VALUES (?, ?, ?, ?, ?);
`, ev.ID, ev.PersonID, ev.LocationID, ev.Kind.String(), ev.CreatedAt.UnixMilli()); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

var _ store.GuardedEventStore = (*EventStore)(nil)
