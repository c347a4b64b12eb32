package service

import (
	"fmt"

	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/types"
)

// Status labels shown after a successful check-in.
const (
	LabelArrived     = "arrived"
	LabelDeparted    = "departed"
	LabelTransferred = "transferred"
)

// NextEventKind decides the transition for a person standing at active,
// given their most recent event (nil when they have none).  Presence is
// inferred from last alone.
func NextEventKind(active types.Location, last *types.AttendanceEvent) (types.EventKind, string, error) {
	if last == nil {
		return types.EventArrival, LabelArrived, nil
	}

	switch last.Kind {
	case types.EventDeparture:
		return types.EventArrival, LabelArrived, nil
	case types.EventArrival, types.EventTransfer:
		if last.LocationID == active.ID {
			return types.EventDeparture, LabelDeparted, nil
		}
		return types.EventTransfer, LabelTransferred, nil
	default:
		return 0, "", fmt.Errorf("%w: event %s has kind %s", ErrUnknownEventKind, last.ID, last.Kind)
	}
}
