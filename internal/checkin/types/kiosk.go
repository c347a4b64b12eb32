package types

// Check-in sources accepted on the wire.
const (
	SourceManual = "manual"
	SourceScan   = "scan"
)

type CheckInRequest struct {
	Token  string `json:"token"`
	Source string `json:"source,omitempty"` // "manual" (default) or "scan"
}

type CheckInResponse struct {
	OK         bool             `json:"ok"`
	KioskID    string           `json:"kiosk_id"`
	Message    string           `json:"message,omitempty"`
	IsError    bool             `json:"is_error"`
	Suppressed bool             `json:"suppressed,omitempty"`
	Code       string           `json:"code,omitempty"`
	Event      *AttendanceEvent `json:"event,omitempty"`
	ServerTime string           `json:"server_time"`
}

type SelectLocationRequest struct {
	LocationID string `json:"location_id"`
}

type KioskStatus struct {
	KioskID    string    `json:"kiosk_id"`
	Configured bool      `json:"configured"`
	Location   *Location `json:"location,omitempty"`
	ServerTime string    `json:"server_time"`
}

type LocationList struct {
	Locations []Location `json:"locations"`
}
