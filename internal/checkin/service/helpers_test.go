package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/service"
	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/store/memory"
	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/types"
)

var (
	kim   = types.Person{ID: "u1", DisplayName: "Kim", ShortCode: "7777"}
	locA  = types.Location{ID: "locA", DisplayName: "Front Desk"}
	locB  = types.Location{ID: "locB", DisplayName: "Workshop"}
	epoch = time.Date(2026, 2, 15, 9, 0, 0, 0, time.UTC)
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{t: epoch} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// spyDirectory records which lookups the resolver performed.
type spyDirectory struct {
	*memory.Directory
	byID        []string
	byShortCode []string
}

func (s *spyDirectory) LookupByID(ctx context.Context, id string) (*types.Person, error) {
	s.byID = append(s.byID, id)
	return s.Directory.LookupByID(ctx, id)
}

func (s *spyDirectory) LookupByShortCode(ctx context.Context, code string) ([]types.Person, error) {
	s.byShortCode = append(s.byShortCode, code)
	return s.Directory.LookupByShortCode(ctx, code)
}

// recordingObserver counts observer callbacks.
type recordingObserver struct {
	mu         sync.Mutex
	recorded   []types.EventKind
	failed     []string
	suppressed []string
}

func (o *recordingObserver) CheckInRecorded(k types.EventKind, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.recorded = append(o.recorded, k)
}

func (o *recordingObserver) CheckInFailed(code string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed = append(o.failed, code)
}

func (o *recordingObserver) ScanSuppressed(source string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.suppressed = append(o.suppressed, source)
}

type kioskFixture struct {
	kiosk    *service.Kiosk
	events   *memory.EventStore
	sessions *memory.SessionStore
	dir      *memory.Directory
	clock    *fakeClock
	observer *recordingObserver
}

// newTestKiosk builds a kiosk over in-memory stores holding Kim, locA and
// locB.  active may be nil.
func newTestKiosk(active *types.Location, cfg service.KioskConfig) *kioskFixture {
	dir := memory.NewDirectory([]types.Person{kim}, []types.Location{locA, locB})
	f := &kioskFixture{
		events:   memory.NewEventStore(),
		sessions: memory.NewSessionStore(nil),
		dir:      dir,
		clock:    newFakeClock(),
		observer: &recordingObserver{},
	}
	cfg.Now = f.clock.Now
	f.kiosk = service.NewKiosk("kiosk-1", active, service.Deps{
		Persons:   dir,
		Locations: dir.Locations(),
		Events:    f.events,
		Sessions:  f.sessions,
		Observer:  f.observer,
	}, cfg)
	return f
}
