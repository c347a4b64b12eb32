package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/service"
	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/types"
)

func lastAt(kind types.EventKind, loc types.Location) *types.AttendanceEvent {
	return &types.AttendanceEvent{ID: "prev", PersonID: kim.ID, LocationID: loc.ID, Kind: kind, CreatedAt: epoch}
}

func TestNextEventKind(t *testing.T) {
	tests := []struct {
		name      string
		active    types.Location
		last      *types.AttendanceEvent
		wantKind  types.EventKind
		wantLabel string
	}{
		{"no history at A", locA, nil, types.EventArrival, "arrived"},
		{"no history at B", locB, nil, types.EventArrival, "arrived"},
		{"departed from A, now at A", locA, lastAt(types.EventDeparture, locA), types.EventArrival, "arrived"},
		{"departed from A, now at B", locB, lastAt(types.EventDeparture, locA), types.EventArrival, "arrived"},
		{"arrived at A, now at A", locA, lastAt(types.EventArrival, locA), types.EventDeparture, "departed"},
		{"arrived at A, now at B", locB, lastAt(types.EventArrival, locA), types.EventTransfer, "transferred"},
		{"transferred to B, now at B", locB, lastAt(types.EventTransfer, locB), types.EventDeparture, "departed"},
		{"transferred to B, now at A", locA, lastAt(types.EventTransfer, locB), types.EventTransfer, "transferred"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			kind, label, err := service.NextEventKind(tc.active, tc.last)
			require.NoError(t, err)
			assert.Equal(t, tc.wantKind, kind)
			assert.Equal(t, tc.wantLabel, label)
		})
	}
}

func TestNextEventKind_CorruptKind(t *testing.T) {
	_, _, err := service.NextEventKind(locA, lastAt(types.EventKind(42), locA))
	assert.ErrorIs(t, err, service.ErrUnknownEventKind)
}
