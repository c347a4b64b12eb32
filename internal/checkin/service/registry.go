package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/types"
)

// KioskRegistry hands out one Kiosk per kiosk ID.  A kiosk's saved location
// is restored from the session store the first time it is requested.
type KioskRegistry struct {
	deps     Deps
	cfg      KioskConfig
	resolver *Resolver
	recorder *Recorder

	mu     sync.Mutex
	kiosks map[string]*Kiosk
}

func NewKioskRegistry(d Deps, cfg KioskConfig) *KioskRegistry {
	cfg = withDefaults(cfg)
	res := NewResolver(d.Persons)
	res.RejectAmbiguous = cfg.RejectAmbiguous
	return &KioskRegistry{
		deps:     d,
		cfg:      cfg,
		resolver: res,
		recorder: NewRecorder(d.Events, RecorderConfig{StrictSequencing: cfg.StrictSequencing, Now: cfg.Now}),
		kiosks:   make(map[string]*Kiosk),
	}
}

// Strict reports whether check-ins use the guarded insert.
func (r *KioskRegistry) Strict() bool {
	return r.recorder.Strict()
}

// Kiosk returns the kiosk for kioskID, creating it on first use.
func (r *KioskRegistry) Kiosk(ctx context.Context, kioskID string) (*Kiosk, error) {
	kioskID = strings.TrimSpace(kioskID)
	if kioskID == "" {
		return nil, ErrInvalidKioskID
	}

	r.mu.Lock()
	k, ok := r.kiosks[kioskID]
	r.mu.Unlock()
	if ok {
		return k, nil
	}

	active, err := r.restore(ctx, kioskID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if k, ok := r.kiosks[kioskID]; ok {
		return k, nil
	}
	k = newKiosk(kioskID, active, r.deps, r.cfg, r.resolver, r.recorder)
	r.kiosks[kioskID] = k
	return k, nil
}

// restore reads the kiosk's saved location.  A saved location that no
// longer exists leaves the kiosk unconfigured and its session is cleared.
func (r *KioskRegistry) restore(ctx context.Context, kioskID string) (*types.Location, error) {
	if r.deps.Sessions == nil {
		return nil, nil
	}

	locID, ok, err := r.deps.Sessions.LoadLocation(ctx, kioskID)
	if err != nil {
		return nil, fmt.Errorf("%w: load session: %w", ErrPersistence, err)
	}
	if !ok {
		return nil, nil
	}

	loc, err := r.deps.Locations.LookupByID(ctx, locID)
	if err != nil {
		return nil, fmt.Errorf("%w: lookup location: %w", ErrPersistence, err)
	}
	if loc != nil {
		return loc, nil
	}

	if r.deps.Logger != nil {
		r.deps.Logger.Warn("saved kiosk location no longer exists",
			"kiosk_id", kioskID, "location_id", locID)
	}
	if err := r.deps.Sessions.ClearLocation(ctx, kioskID); err != nil {
		return nil, fmt.Errorf("%w: clear session: %w", ErrPersistence, err)
	}
	return nil, nil
}

func (r *KioskRegistry) Locations(ctx context.Context) ([]types.Location, error) {
	locs, err := r.deps.Locations.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list locations: %w", ErrPersistence, err)
	}
	if locs == nil {
		locs = []types.Location{}
	}
	return locs, nil
}
