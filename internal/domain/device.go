package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is the closed set of device states reported by the service.
// It is an enum rather than a raw string so switches over it can be
// checked for exhaustiveness.
type Status int

const (
	StatusUnknown Status = iota
	StatusActive
	StatusOffline
	StatusReinstalled
)

var statusNames = map[Status]string{
	StatusActive:      "ACTIVE",
	StatusOffline:     "OFFLINE",
	StatusReinstalled: "REINSTALLED",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseStatus maps a wire value onto the enum. Unrecognized values come back
// as StatusUnknown with an error so callers can decide whether to tolerate.
func ParseStatus(raw string) (Status, error) {
	for status, name := range statusNames {
		if name == raw {
			return status, nil
		}
	}
	return StatusUnknown, fmt.Errorf("unknown device status %q", raw)
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON tolerates values this client release does not know about;
// the server owns the status vocabulary and a listing must not fail because
// one device carries a newer state.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, _ := ParseStatus(raw)
	*s = parsed
	return nil
}

// GeoPoint is a plain WGS84 coordinate.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Device is the server-owned registration record. The client holds read-only
// snapshots refreshed on each list or get.
type Device struct {
	DeviceID     string     `json:"deviceId"`
	DeviceName   string     `json:"deviceName"`
	Model        string     `json:"model"`
	OSVersion    string     `json:"osVersion"`
	InstallDate  time.Time  `json:"installDate"`
	LastSeen     *time.Time `json:"lastSeen,omitempty"`
	Status       Status     `json:"status"`
	LastLocation *GeoPoint  `json:"lastLocation,omitempty"`
}

// LocationLog is one historical position report. Timestamp is event time on
// the device; CreatedAt is when the service ingested it. The server returns
// logs ordered by Timestamp descending and the client must preserve that.
type LocationLog struct {
	ID        string    `json:"id"`
	DeviceID  string    `json:"deviceId"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Address   string    `json:"address,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summary is the fleet-level counter set. Derived server-side, never mutated
// by the client.
type Summary struct {
	Total   int `json:"total"`
	Online  int `json:"online"`
	Offline int `json:"offline"`
}
