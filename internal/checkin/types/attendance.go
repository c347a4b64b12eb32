package types

import (
	"fmt"
	"time"
)

// EventKind is the closed set of attendance transitions.  The zero value is
// not a valid kind.
type EventKind uint8

const (
	EventArrival EventKind = iota + 1
	EventDeparture
	EventTransfer
)

func (k EventKind) String() string {
	switch k {
	case EventArrival:
		return "ARRIVAL"
	case EventDeparture:
		return "DEPARTURE"
	case EventTransfer:
		return "TRANSFER"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

func (k EventKind) Valid() bool {
	return k >= EventArrival && k <= EventTransfer
}

// ParseEventKind is the inverse of String.
func ParseEventKind(s string) (EventKind, error) {
	switch s {
	case "ARRIVAL":
		return EventArrival, nil
	case "DEPARTURE":
		return EventDeparture, nil
	case "TRANSFER":
		return EventTransfer, nil
	default:
		return 0, fmt.Errorf("unknown event kind %q", s)
	}
}

func (k EventKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("marshal invalid event kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *EventKind) UnmarshalText(b []byte) error {
	v, err := ParseEventKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Person is a directory entry.  ShortCode is the 4-digit code a person can
// type at the kiosk; it is not guaranteed to be unique.
type Person struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"display_name" yaml:"name"`
	ShortCode   string `json:"short_code" yaml:"short_code"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
	Phone       string `json:"phone,omitempty" yaml:"phone,omitempty"`
}

type Location struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"display_name" yaml:"name"`
}

// AttendanceEvent is immutable once recorded.
type AttendanceEvent struct {
	ID         string    `json:"id"`
	PersonID   string    `json:"person_id"`
	LocationID string    `json:"location_id"`
	Kind       EventKind `json:"kind"`
	CreatedAt  time.Time `json:"created_at"`
}
