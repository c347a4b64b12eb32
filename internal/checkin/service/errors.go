package service

import "errors"

var (
	ErrPersonNotFound     = errors.New("person not found")
	ErrAmbiguousPerson    = errors.New("short code matches more than one person")
	ErrNoLocationSelected = errors.New("no location selected")
	ErrPersistence        = errors.New("persistence failure")
	ErrUnknownLocation    = errors.New("unknown location")
	ErrInvalidKioskID     = errors.New("kiosk_id is required")
	ErrUnknownEventKind   = errors.New("unknown event kind in history")
)

// Result codes carried on check-in responses and failure metrics.
const (
	CodeOK             = "ok"
	CodeSuppressed     = "suppressed"
	CodePersonNotFound = "person_not_found"
	CodeAmbiguous      = "ambiguous_person"
	CodeNoLocation     = "no_location"
	CodePersistence    = "persistence"
	CodeInternal       = "internal"
)

// Classify maps an orchestrator error to its result code.
func Classify(err error) string {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrNoLocationSelected):
		return CodeNoLocation
	case errors.Is(err, ErrPersonNotFound):
		return CodePersonNotFound
	case errors.Is(err, ErrAmbiguousPerson):
		return CodeAmbiguous
	case errors.Is(err, ErrPersistence):
		return CodePersistence
	default:
		return CodeInternal
	}
}
