package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/store"
	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/types"
)

// ShortCodeLen is the length of a token typed on the manual keypad.
const ShortCodeLen = 4

// Resolver maps a raw kiosk token to a single person.
//
// A token of exactly ShortCodeLen characters is looked up by short code
// only.  Any other token is tried as a person ID first, then as a short code.
// Tokens are matched exactly; no trimming or digit validation happens here.
type Resolver struct {
	persons store.PersonDirectory

	// RejectAmbiguous turns a short code shared by several persons into
	// ErrAmbiguousPerson instead of picking the first registered match.
	RejectAmbiguous bool
}

func NewResolver(persons store.PersonDirectory) *Resolver {
	return &Resolver{persons: persons}
}

func (r *Resolver) Resolve(ctx context.Context, token string) (types.Person, error) {
	if utf8.RuneCountInString(token) != ShortCodeLen {
		p, err := r.persons.LookupByID(ctx, token)
		if err != nil {
			return types.Person{}, fmt.Errorf("%w: lookup person by id: %w", ErrPersistence, err)
		}
		if p != nil {
			return *p, nil
		}
	}
	return r.byShortCode(ctx, token)
}

func (r *Resolver) byShortCode(ctx context.Context, code string) (types.Person, error) {
	matches, err := r.persons.LookupByShortCode(ctx, code)
	if err != nil {
		return types.Person{}, fmt.Errorf("%w: lookup person by short code: %w", ErrPersistence, err)
	}
	switch {
	case len(matches) == 0:
		return types.Person{}, ErrPersonNotFound
	case len(matches) > 1 && r.RejectAmbiguous:
		return types.Person{}, fmt.Errorf("%w (%d matches)", ErrAmbiguousPerson, len(matches))
	}
	return matches[0], nil
}
