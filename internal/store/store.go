// Package store holds the latest synchronized snapshot of vehicles and
// access-log entries and serves the filtered views the screens display.
package store

import (
	"strings"
	"sync"
	"time"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/models"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/timeutil"
)

// AccessLogFilter narrows the access log. Zero value matches everything.
type AccessLogFilter struct {
	From   *time.Time
	To     *time.Time
	Search string
}

// IsZero reports whether the filter matches every entry.
func (f AccessLogFilter) IsZero() bool {
	return f.Search == "" && f.From == nil && f.To == nil
}

// EventStore is the in-memory snapshot of the last poll cycle.
// Collections are only ever replaced wholesale.
type EventStore struct {
	updatedAt  time.Time
	vehicles   []models.Vehicle
	accessLogs []models.AccessLogEntry
	mu         sync.RWMutex
}

// New creates an empty store.
func New() *EventStore {
	return &EventStore{}
}

// ReplaceVehicles swaps in a new vehicle list.
func (s *EventStore) ReplaceVehicles(list []models.Vehicle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles = cloneSlice(list)
}

// ReplaceAccessLogs swaps in a new access-log list.
func (s *EventStore) ReplaceAccessLogs(list []models.AccessLogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessLogs = cloneSlice(list)
}

// ReplaceSnapshot swaps in both collections from one poll cycle.
func (s *EventStore) ReplaceSnapshot(snap models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles = cloneSlice(snap.Vehicles)
	s.accessLogs = cloneSlice(snap.AccessLogs)
	s.updatedAt = snap.FetchedAt
}

// Vehicles returns a copy of the current vehicle list.
func (s *EventStore) Vehicles() []models.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.vehicles)
}

// AccessLogs returns a copy of the current access log.
func (s *EventStore) AccessLogs() []models.AccessLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.accessLogs)
}

// Counts returns the number of vehicles and access-log entries held.
func (s *EventStore) Counts() (vehicles, accessLogs int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vehicles), len(s.accessLogs)
}

// UpdatedAt returns when the last snapshot was fetched.
func (s *EventStore) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// FilterVehicles returns vehicles whose plate contains search, ignoring
// case. An empty search returns all vehicles.
func (s *EventStore) FilterVehicles(search string) []models.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]models.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		if matchPlate(v.LicensePlate, needle) {
			out = append(out, v)
		}
	}
	return out
}

// FilterAccessLogs returns entries matching the plate search and falling
// inside the inclusive day range of f. An inverted range matches nothing.
func (s *EventStore) FilterAccessLogs(f AccessLogFilter) []models.AccessLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.AccessLogEntry, 0, len(s.accessLogs))
	for _, e := range s.accessLogs {
		if matchPlate(e.LicensePlate, needle) && timeutil.InDayRange(e.AccessTime, f.From, f.To) {
			out = append(out, e)
		}
	}
	return out
}

func matchPlate(plate, needle string) bool {
	return needle == "" || strings.Contains(strings.ToLower(plate), needle)
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
