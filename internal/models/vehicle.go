// Package models defines data structures and domain types.
package models

import "time"

// Vehicle is a registered vehicle as returned by the access-control service.
type Vehicle struct {
	EntryTime    time.Time
	LicensePlate string
	ID           int64
}

// HasEntryTime reports whether the service supplied an entry time.
func (v Vehicle) HasEntryTime() bool {
	return !v.EntryTime.IsZero()
}

// AccessLogEntry is a single recorded passage of a vehicle through the gate.
type AccessLogEntry struct {
	AccessTime   time.Time
	LicensePlate string
	ID           int64
}

// Snapshot is the result of one synchronization cycle.
type Snapshot struct {
	FetchedAt  time.Time
	Vehicles   []Vehicle
	AccessLogs []AccessLogEntry
}
