package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/service"
	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/store/memory"
	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/types"
)

func newSpy(persons ...types.Person) *spyDirectory {
	return &spyDirectory{Directory: memory.NewDirectory(persons, nil)}
}

// failingDirectory errors on every lookup.
type failingDirectory struct{ err error }

func (f failingDirectory) LookupByShortCode(context.Context, string) ([]types.Person, error) {
	return nil, f.err
}

func (f failingDirectory) LookupByID(context.Context, string) (*types.Person, error) {
	return nil, f.err
}

// ── Short code path ──────────────────────────────────────────────────────────

func TestResolve_FourCharToken_UsesShortCodeOnly(t *testing.T) {
	dir := newSpy(types.Person{ID: "1234", DisplayName: "Id Collision", ShortCode: "0000"})
	r := service.NewResolver(dir)

	_, err := r.Resolve(context.Background(), "1234")

	assert.ErrorIs(t, err, service.ErrPersonNotFound)
	assert.Empty(t, dir.byID, "4-char tokens must never hit the id lookup")
	assert.Equal(t, []string{"1234"}, dir.byShortCode)
}

func TestResolve_FourCharToken_Match(t *testing.T) {
	r := service.NewResolver(newSpy(kim))

	p, err := r.Resolve(context.Background(), "7777")

	require.NoError(t, err)
	assert.Equal(t, "u1", p.ID)
}

func TestResolve_DuplicateShortCode_FirstRegisteredWins(t *testing.T) {
	first := types.Person{ID: "a", DisplayName: "Ann", ShortCode: "4242"}
	second := types.Person{ID: "b", DisplayName: "Bo", ShortCode: "4242"}
	r := service.NewResolver(newSpy(first, second))

	p, err := r.Resolve(context.Background(), "4242")

	require.NoError(t, err)
	assert.Equal(t, "a", p.ID)
}

func TestResolve_DuplicateShortCode_RejectAmbiguous(t *testing.T) {
	first := types.Person{ID: "a", DisplayName: "Ann", ShortCode: "4242"}
	second := types.Person{ID: "b", DisplayName: "Bo", ShortCode: "4242"}
	r := service.NewResolver(newSpy(first, second))
	r.RejectAmbiguous = true

	_, err := r.Resolve(context.Background(), "4242")

	assert.ErrorIs(t, err, service.ErrAmbiguousPerson)
}

func TestResolve_NoTrimming(t *testing.T) {
	r := service.NewResolver(newSpy(kim))

	_, err := r.Resolve(context.Background(), " 7777")

	assert.ErrorIs(t, err, service.ErrPersonNotFound)
}

// ── Identifier path ──────────────────────────────────────────────────────────

func TestResolve_LongToken_IDLookupFirst(t *testing.T) {
	p1 := types.Person{ID: "abc-uuid-1", DisplayName: "Scan", ShortCode: "1111"}
	dir := newSpy(p1)
	r := service.NewResolver(dir)

	p, err := r.Resolve(context.Background(), "abc-uuid-1")

	require.NoError(t, err)
	assert.Equal(t, "abc-uuid-1", p.ID)
	assert.Equal(t, []string{"abc-uuid-1"}, dir.byID)
	assert.Empty(t, dir.byShortCode)
}

func TestResolve_LongToken_FallsBackToShortCode(t *testing.T) {
	odd := types.Person{ID: "u9", DisplayName: "Odd", ShortCode: "abc-uuid-1"}
	dir := newSpy(odd)
	r := service.NewResolver(dir)

	p, err := r.Resolve(context.Background(), "abc-uuid-1")

	require.NoError(t, err)
	assert.Equal(t, "u9", p.ID)
	assert.Equal(t, []string{"abc-uuid-1"}, dir.byID)
	assert.Equal(t, []string{"abc-uuid-1"}, dir.byShortCode)
}

func TestResolve_LongToken_NotFound(t *testing.T) {
	r := service.NewResolver(newSpy(kim))

	_, err := r.Resolve(context.Background(), "nobody-here")

	assert.ErrorIs(t, err, service.ErrPersonNotFound)
}

func TestResolve_DirectoryError_IsPersistence(t *testing.T) {
	boom := errors.New("disk gone")
	r := service.NewResolver(failingDirectory{err: boom})

	_, err := r.Resolve(context.Background(), "7777")

	assert.ErrorIs(t, err, service.ErrPersistence)
	assert.ErrorIs(t, err, boom)
}
