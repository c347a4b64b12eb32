package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/store"
	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/types"
)

type KioskConfig struct {
	// DebounceWindow defaults to DefaultDebounceWindow.
	DebounceWindow time.Duration

	// DebounceManual applies the scan debounce to manual entry as well.
	DebounceManual bool

	StrictSequencing bool
	RejectAmbiguous  bool

	// Now defaults to time.Now.  It drives both the debouncer and event
	// timestamps.
	Now func() time.Time
}

// Deps are the collaborators shared by every kiosk.
type Deps struct {
	Persons   store.PersonDirectory
	Locations store.LocationDirectory
	Events    store.EventStore

	// Sessions may be nil, in which case selections are not persisted.
	Sessions store.SessionStore

	Observer Observer
	Logger   *slog.Logger
}

// Result is the outcome of one check-in attempt.  Suppressed results carry
// no message and must not be shown.
type Result struct {
	Message    string
	IsError    bool
	Suppressed bool
	Code       string
	Event      *types.AttendanceEvent
	Err        error
}

// Kiosk is one check-in terminal bound to at most one location.
type Kiosk struct {
	id        string
	resolver  *Resolver
	recorder  *Recorder
	locations store.LocationDirectory
	sessions  store.SessionStore
	observer  Observer
	logger    *slog.Logger

	debounce       *Debouncer
	debounceManual bool
	now            func() time.Time

	mu     sync.RWMutex
	active *types.Location
}

// NewKiosk builds a kiosk with its own resolver and recorder.  active may be
// nil for an unconfigured kiosk.
func NewKiosk(id string, active *types.Location, d Deps, cfg KioskConfig) *Kiosk {
	cfg = withDefaults(cfg)
	res := NewResolver(d.Persons)
	res.RejectAmbiguous = cfg.RejectAmbiguous
	rec := NewRecorder(d.Events, RecorderConfig{StrictSequencing: cfg.StrictSequencing, Now: cfg.Now})
	return newKiosk(id, active, d, cfg, res, rec)
}

func newKiosk(id string, active *types.Location, d Deps, cfg KioskConfig, res *Resolver, rec *Recorder) *Kiosk {
	k := &Kiosk{
		id:             id,
		resolver:       res,
		recorder:       rec,
		locations:      d.Locations,
		sessions:       d.Sessions,
		observer:       d.Observer,
		logger:         d.Logger,
		debounce:       NewDebouncer(cfg.DebounceWindow),
		debounceManual: cfg.DebounceManual,
		now:            cfg.Now,
	}
	if k.observer == nil {
		k.observer = nopObserver{}
	}
	if k.logger == nil {
		k.logger = slog.New(slog.DiscardHandler)
	}
	k.logger = k.logger.With("kiosk_id", id)
	if active != nil {
		loc := *active
		k.active = &loc
	}
	return k
}

func withDefaults(cfg KioskConfig) KioskConfig {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.DebounceWindow <= 0 {
		cfg.DebounceWindow = DefaultDebounceWindow
	}
	return cfg
}

func (k *Kiosk) ID() string { return k.id }

// ActiveLocation returns the selected location, if any.
func (k *Kiosk) ActiveLocation() (types.Location, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.active == nil {
		return types.Location{}, false
	}
	return *k.active, true
}

// SelectLocation binds the kiosk to locationID and persists the choice.
func (k *Kiosk) SelectLocation(ctx context.Context, locationID string) (types.Location, error) {
	locationID = strings.TrimSpace(locationID)
	if locationID == "" {
		return types.Location{}, ErrUnknownLocation
	}

	loc, err := k.locations.LookupByID(ctx, locationID)
	if err != nil {
		return types.Location{}, fmt.Errorf("%w: lookup location: %w", ErrPersistence, err)
	}
	if loc == nil {
		return types.Location{}, fmt.Errorf("%w: %s", ErrUnknownLocation, locationID)
	}

	if k.sessions != nil {
		if err := k.sessions.SaveLocation(ctx, k.id, loc.ID, k.now().UTC()); err != nil {
			return types.Location{}, fmt.Errorf("%w: save session: %w", ErrPersistence, err)
		}
	}

	k.mu.Lock()
	k.active = loc
	k.mu.Unlock()
	k.debounce.Reset()

	k.logger.Info("location selected", "location_id", loc.ID)
	return *loc, nil
}

// Reset returns the kiosk to the unconfigured state.
func (k *Kiosk) Reset(ctx context.Context) error {
	if k.sessions != nil {
		if err := k.sessions.ClearLocation(ctx, k.id); err != nil {
			return fmt.Errorf("%w: clear session: %w", ErrPersistence, err)
		}
	}

	k.mu.Lock()
	k.active = nil
	k.mu.Unlock()
	k.debounce.Reset()

	k.logger.Info("kiosk reset")
	return nil
}

// WouldSuppress reports whether a token from source would currently be
// dropped by the debouncer.  It does not update the debouncer.
func (k *Kiosk) WouldSuppress(source, token string) bool {
	if source != types.SourceScan && !k.debounceManual {
		return false
	}
	return k.debounce.Suppresses(token, k.now())
}

// ProcessScan runs a token from the continuous scanner through the
// debouncer, then ProcessToken.
func (k *Kiosk) ProcessScan(ctx context.Context, token string) Result {
	if !k.debounce.Accept(token, k.now()) {
		k.observer.ScanSuppressed(types.SourceScan)
		return Result{Suppressed: true, Code: CodeSuppressed}
	}
	return k.ProcessToken(ctx, token)
}

// ProcessManual handles a keypad submission.  It is debounced only when
// the kiosk was built with DebounceManual.
func (k *Kiosk) ProcessManual(ctx context.Context, token string) Result {
	if k.debounceManual && !k.debounce.Accept(token, k.now()) {
		k.observer.ScanSuppressed(types.SourceManual)
		return Result{Suppressed: true, Code: CodeSuppressed}
	}
	return k.ProcessToken(ctx, token)
}

// ProcessToken resolves token, records the next attendance event and
// returns a classified message.  Errors never escape: they are folded into
// the Result.
func (k *Kiosk) ProcessToken(ctx context.Context, token string) Result {
	start := time.Now()

	loc, ok := k.ActiveLocation()
	if !ok {
		return k.fail(ErrNoLocationSelected)
	}

	person, err := k.resolver.Resolve(ctx, token)
	if err != nil {
		return k.fail(err)
	}

	ev, label, err := k.recorder.Transition(ctx, person, loc)
	if err != nil {
		return k.fail(err)
	}

	k.observer.CheckInRecorded(ev.Kind, time.Since(start))
	k.logger.Info("check-in recorded",
		"person_id", person.ID,
		"location_id", loc.ID,
		"kind", ev.Kind.String(),
		"event_id", ev.ID,
	)

	return Result{
		Message: person.DisplayName + " " + label,
		Code:    CodeOK,
		Event:   &ev,
	}
}

func (k *Kiosk) fail(err error) Result {
	code := Classify(err)
	k.observer.CheckInFailed(code)

	msg := err.Error()
	switch code {
	case CodePersonNotFound:
		msg = ErrPersonNotFound.Error()
		k.logger.Debug("check-in rejected", "reason", code)
	case CodeNoLocation:
		msg = ErrNoLocationSelected.Error()
		k.logger.Warn("check-in rejected", "reason", code)
	default:
		k.logger.Error("check-in failed", "reason", code, "err", err)
	}
	return Result{Message: msg, IsError: true, Code: code, Err: err}
}

// RunScanner feeds every token from tokens through ProcessScan until the
// channel closes or ctx is cancelled.  Suppressed tokens are not emitted.
// The scanner source may be restarted by calling RunScanner again.
func (k *Kiosk) RunScanner(ctx context.Context, tokens <-chan string, emit func(Result)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case tok, ok := <-tokens:
			if !ok {
				return nil
			}
			res := k.ProcessScan(ctx, tok)
			if res.Suppressed {
				continue
			}
			if emit != nil {
				emit(res)
			}
		}
	}
}
