package memory

import (
	"context"
	"sync"

	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/store"
	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/types"
)

// EventStore is an in-memory append-only attendance log.
// It is intended for use in tests and dev environments.
type EventStore struct {
	mu     sync.Mutex
	events []types.AttendanceEvent

	// FailWith, when non-nil, is returned by every write.  Test-only hook.
	FailWith error
}

func NewEventStore() *EventStore {
	return &EventStore{}
}

func (s *EventStore) LatestForPerson(_ context.Context, personID string) (*types.AttendanceEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	latest := s.latestLocked(personID)
	if latest == nil {
		return nil, nil
	}
	ev := *latest
	return &ev, nil
}

func (s *EventStore) Insert(_ context.Context, ev types.AttendanceEvent) (types.AttendanceEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return types.AttendanceEvent{}, s.FailWith
	}
	s.events = append(s.events, ev)
	return ev, nil
}

func (s *EventStore) InsertIfLatest(_ context.Context, ev types.AttendanceEvent, prevEventID string) (types.AttendanceEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return types.AttendanceEvent{}, s.FailWith
	}

	current := ""
	if latest := s.latestLocked(ev.PersonID); latest != nil {
		current = latest.ID
	}
	if current != prevEventID {
		return types.AttendanceEvent{}, store.ErrStaleLatest
	}

	s.events = append(s.events, ev)
	return ev, nil
}

// Events returns a copy of all recorded events.  Test-only helper.
func (s *EventStore) Events() []types.AttendanceEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.AttendanceEvent, len(s.events))
	copy(out, s.events)
	return out
}

// latestLocked walks the log newest-first; a later insert wins a timestamp tie.
func (s *EventStore) latestLocked(personID string) *types.AttendanceEvent {
	var latest *types.AttendanceEvent
	for i := len(s.events) - 1; i >= 0; i-- {
		ev := &s.events[i]
		if ev.PersonID != personID {
			continue
		}
		if latest == nil || ev.CreatedAt.After(latest.CreatedAt) {
			latest = ev
		}
	}
	return latest
}

var _ store.GuardedEventStore = (*EventStore)(nil)
