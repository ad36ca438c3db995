package models

import "time"

// SyncEvent records the outcome of one poll cycle.
type SyncEvent struct {
	StartedAt  time.Time
	Error      string
	Trigger    string
	Duration   time.Duration
	ID         int64
	Vehicles   int
	AccessLogs int
}

// Failed reports whether any fetch in the cycle failed.
func (e SyncEvent) Failed() bool {
	return e.Error != ""
}

// Sync triggers.
const (
	TriggerPoll   = "poll"
	TriggerManual = "manual"
)
