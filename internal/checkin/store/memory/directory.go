package memory

import (
	"context"
	"sync"

	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/types"
)

// Directory is an in-memory person and location directory.  It is intended
// for tests and dev environments; registration order is preserved so short
// code lookups are stable.
type Directory struct {
	mu        sync.RWMutex
	persons   []types.Person
	locations []types.Location
}

func NewDirectory(persons []types.Person, locations []types.Location) *Directory {
	d := &Directory{}
	d.persons = append(d.persons, persons...)
	d.locations = append(d.locations, locations...)
	return d
}

// AddPerson registers p after any existing entries.
func (d *Directory) AddPerson(p types.Person) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.persons = append(d.persons, p)
}

func (d *Directory) AddLocation(l types.Location) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.locations = append(d.locations, l)
}

func (d *Directory) LookupByShortCode(_ context.Context, code string) ([]types.Person, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []types.Person
	for _, p := range d.persons {
		if p.ShortCode == code {
			out = append(out, p)
		}
	}
	return out, nil
}

func (d *Directory) LookupByID(_ context.Context, id string) (*types.Person, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, p := range d.persons {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

// Locations exposes the location half of the directory as a
// store.LocationDirectory.
func (d *Directory) Locations() *LocationDirectory {
	return &LocationDirectory{d: d}
}

type LocationDirectory struct {
	d *Directory
}

func (l *LocationDirectory) ListAll(_ context.Context) ([]types.Location, error) {
	l.d.mu.RLock()
	defer l.d.mu.RUnlock()
	out := make([]types.Location, len(l.d.locations))
	copy(out, l.d.locations)
	return out, nil
}

func (l *LocationDirectory) LookupByID(_ context.Context, id string) (*types.Location, error) {
	l.d.mu.RLock()
	defer l.d.mu.RUnlock()
	for _, loc := range l.d.locations {
		if loc.ID == id {
			loc := loc
			return &loc, nil
		}
	}
	return nil, nil
}
