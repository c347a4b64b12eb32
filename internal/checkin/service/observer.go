package service

import (
	"time"

	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/types"
)

// Observer receives check-in outcomes.  internal/metrics implements it.
type Observer interface {
	CheckInRecorded(kind types.EventKind, elapsed time.Duration)
	CheckInFailed(code string)
	ScanSuppressed(source string)
}

type nopObserver struct{}

func (nopObserver) CheckInRecorded(types.EventKind, time.Duration) {}
func (nopObserver) CheckInFailed(string)                           {}
func (nopObserver) ScanSuppressed(string)                          {}
