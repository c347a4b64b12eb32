package store

import (
	"context"
	"errors"
	"time"

	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/types"
)

// ErrStaleLatest is returned by InsertIfLatest when the person's latest event
// is no longer the one the caller decided against.
var ErrStaleLatest = errors.New("latest event changed since read")

// PersonDirectory is read-only from the engine's point of view.  Lookups
// return (nil, nil) / an empty slice when nothing matches.
type PersonDirectory interface {
	// LookupByShortCode returns all persons with the code, in a stable
	// order (registration order).
	LookupByShortCode(ctx context.Context, code string) ([]types.Person, error)
	LookupByID(ctx context.Context, id string) (*types.Person, error)
}

type LocationDirectory interface {
	ListAll(ctx context.Context) ([]types.Location, error)
	LookupByID(ctx context.Context, id string) (*types.Location, error)
}

// EventStore persists attendance events as an append-only log.
type EventStore interface {
	// LatestForPerson returns the most recent event (created_at desc,
	// insertion order breaking ties), or nil when the person has none.
	LatestForPerson(ctx context.Context, personID string) (*types.AttendanceEvent, error)
	Insert(ctx context.Context, ev types.AttendanceEvent) (types.AttendanceEvent, error)
}

// GuardedEventStore is implemented by stores that can atomically check the
// person's latest event before appending.  prevEventID is "" when the caller
// saw no prior event.
type GuardedEventStore interface {
	EventStore
	InsertIfLatest(ctx context.Context, ev types.AttendanceEvent, prevEventID string) (types.AttendanceEvent, error)
}

// SessionStore remembers which location each kiosk has selected so the
// selection survives a server restart.
type SessionStore interface {
	LoadLocation(ctx context.Context, kioskID string) (locationID string, ok bool, err error)
	SaveLocation(ctx context.Context, kioskID, locationID string, at time.Time) error
	ClearLocation(ctx context.Context, kioskID string) error
}
