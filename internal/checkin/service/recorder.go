package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/store"
	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/types"
)

type RecorderConfig struct {
	// StrictSequencing makes Transition append only if the person's latest
	// event is still the one it decided against.  Ignored when the event
	// store does not implement store.GuardedEventStore.
	StrictSequencing bool

	// Now defaults to time.Now.
	Now func() time.Time
}

// Recorder appends attendance events.  Every write is attempted exactly
// once; storage errors come back wrapped in ErrPersistence.
type Recorder struct {
	events  store.EventStore
	guarded store.GuardedEventStore
	now     func() time.Time
}

func NewRecorder(es store.EventStore, cfg RecorderConfig) *Recorder {
	r := &Recorder{events: es, now: cfg.Now}
	if r.now == nil {
		r.now = time.Now
	}
	if cfg.StrictSequencing {
		if g, ok := es.(store.GuardedEventStore); ok {
			r.guarded = g
		}
	}
	return r
}

// Strict reports whether Transition uses the guarded insert.
func (r *Recorder) Strict() bool {
	return r.guarded != nil
}

func (r *Recorder) Latest(ctx context.Context, personID string) (*types.AttendanceEvent, error) {
	ev, err := r.events.LatestForPerson(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("%w: latest event: %w", ErrPersistence, err)
	}
	return ev, nil
}

// Record appends a new event of kind for person at loc.
func (r *Recorder) Record(ctx context.Context, person types.Person, loc types.Location, kind types.EventKind) (types.AttendanceEvent, error) {
	ev, err := r.newEvent(person, loc, kind)
	if err != nil {
		return types.AttendanceEvent{}, err
	}

	// Once started the write is not cancelable.
	saved, err := r.events.Insert(context.WithoutCancel(ctx), ev)
	if err != nil {
		return types.AttendanceEvent{}, fmt.Errorf("%w: insert event: %w", ErrPersistence, err)
	}
	return saved, nil
}

// Transition reads the person's latest event, decides the next kind and
// appends it.  It is the only place the read-decide-write sequence runs.
func (r *Recorder) Transition(ctx context.Context, person types.Person, loc types.Location) (types.AttendanceEvent, string, error) {
	last, err := r.Latest(ctx, person.ID)
	if err != nil {
		return types.AttendanceEvent{}, "", err
	}

	kind, label, err := NextEventKind(loc, last)
	if err != nil {
		return types.AttendanceEvent{}, "", err
	}

	if r.guarded == nil {
		ev, err := r.Record(ctx, person, loc, kind)
		return ev, label, err
	}

	ev, err := r.newEvent(person, loc, kind)
	if err != nil {
		return types.AttendanceEvent{}, "", err
	}
	prevID := ""
	if last != nil {
		prevID = last.ID
	}
	saved, err := r.guarded.InsertIfLatest(context.WithoutCancel(ctx), ev, prevID)
	if err != nil {
		// store.ErrStaleLatest stays matchable through the wrap.
		return types.AttendanceEvent{}, "", fmt.Errorf("%w: insert event: %w", ErrPersistence, err)
	}
	return saved, label, nil
}

func (r *Recorder) newEvent(person types.Person, loc types.Location, kind types.EventKind) (types.AttendanceEvent, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return types.AttendanceEvent{}, fmt.Errorf("%w: event id: %w", ErrPersistence, err)
	}
	return types.AttendanceEvent{
		ID:         id.String(),
		PersonID:   person.ID,
		LocationID: loc.ID,
		Kind:       kind,
		CreatedAt:  r.now().UTC(),
	}, nil
}
