package memory

import (
	"context"
	"strings"
	"sync"
	"time"
)

type kioskSession struct {
	locationID string
	selectedAt time.Time
}

type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]kioskSession
}

// NewSessionStore optionally pre-selects locations, keyed by kiosk ID.
func NewSessionStore(initial map[string]string) *SessionStore {
	s := &SessionStore{sessions: make(map[string]kioskSession, len(initial))}
	now := time.Now().UTC()
	for k, loc := range initial {
		k = strings.TrimSpace(k)
		if k != "" && loc != "" {
			s.sessions[k] = kioskSession{locationID: loc, selectedAt: now}
		}
	}
	return s
}

func (s *SessionStore) LoadLocation(_ context.Context, kioskID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[kioskID]
	return sess.locationID, ok, nil
}

func (s *SessionStore) SaveLocation(_ context.Context, kioskID, locationID string, at time.Time) error {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[kioskID] = kioskSession{locationID: locationID, selectedAt: at}
	return nil
}

func (s *SessionStore) ClearLocation(_ context.Context, kioskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, kioskID)
	return nil
}
