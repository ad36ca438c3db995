// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/aggregate"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/models"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/store"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	CreatedAt time.Time
	ID        string
	Message   string
	Duration  time.Duration
	Type      NotificationType
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial  bool
	Sync     bool
	Mutation bool
}

// State is the application state shared by the root model and its tabs.
type State struct {
	lastUpdated time.Time
	now         func() time.Time
	store       *store.EventStore
	syncErr     string
	interval    time.Duration
	role        models.Role
	lastSync    models.SyncEvent
	series      models.Series
	window      models.WindowMode

	notifications []Notification
	Loading       LoadingState
	session       models.SessionState
	countdown     int
	mu            sync.RWMutex
	redirected    bool
}

// NewState creates the initial state: session unknown, empty store and the
// current month selected.
func NewState() *State {
	now := time.Now()
	return &State{
		now:           time.Now,
		store:         store.New(),
		window:        models.MonthWindow(now.Month(), now.Year()),
		series:        models.Series{Highlight: -1},
		session:       models.SessionUnknown,
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetNow replaces the time source used for aggregation.
func (s *State) SetNow(now func() time.Time) {
	if now == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Now returns the current time from the state's time source.
func (s *State) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now()
}

// SetSession records a session transition. Signing out drops the data
// held for the previous session.
func (s *State) SetSession(state models.SessionState, role models.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = state
	s.role = role

	switch state {
	case models.SessionAuthenticated:
		s.redirected = false
		s.countdown = 0
	case models.SessionUnauthenticated:
		s.store = store.New()
		s.series = models.Series{Highlight: -1}
		s.syncErr = ""
		s.interval = 0
		s.Loading = LoadingState{}
	}
}

// Session returns the session state and role.
func (s *State) Session() (models.SessionState, models.Role) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session, s.role
}

// IsAdmin reports whether the signed-in user has the admin role.
func (s *State) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session == models.SessionAuthenticated && s.role.IsAdmin()
}

// SetCountdown stores the seconds left before the login redirect.
func (s *State) SetCountdown(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.countdown = n
}

// Countdown returns the seconds left before the login redirect.
func (s *State) Countdown() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countdown
}

// SetRedirected marks whether the login form replaced the notice.
func (s *State) SetRedirected(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redirected = v
}

// Redirected reports whether the login form is showing.
func (s *State) Redirected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.redirected
}

// ApplySync replaces the store with a poll cycle's snapshot and recomputes
// the chart series.
func (s *State) ApplySync(snap models.Snapshot, event models.SyncEvent, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != models.SessionAuthenticated {
		return
	}

	s.store.ReplaceSnapshot(snap)
	s.lastSync = event
	s.lastUpdated = snap.FetchedAt
	s.syncErr = ""
	if err != nil {
		s.syncErr = err.Error()
	}
	s.Loading.Initial = false
	s.Loading.Sync = false
	s.recomputeLocked()
}

// SetPollInterval records the interval the poller is running at.
func (s *State) SetPollInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != models.SessionAuthenticated {
		return
	}
	s.interval = d
}

// PollInterval returns the active poll interval, zero when stopped.
func (s *State) PollInterval() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.interval
}

// Store returns the event store for the current session.
func (s *State) Store() *store.EventStore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// SetWindow selects the chart window. Invalid modes are ignored.
func (s *State) SetWindow(mode models.WindowMode) bool {
	if !mode.Valid() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window = mode
	s.recomputeLocked()
	return true
}

// Window returns the selected chart window.
func (s *State) Window() models.WindowMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.window
}

// Series returns the chart series for the selected window.
func (s *State) Series() models.Series {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.series
}

// RefreshSeries recomputes the series so the highlight follows the clock.
func (s *State) RefreshSeries() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recomputeLocked()
}

func (s *State) recomputeLocked() {
	s.series = aggregate.Aggregate(s.store.AccessLogs(), s.window, s.now())
}

// LastSync returns the most recent poll cycle applied to the state.
func (s *State) LastSync() models.SyncEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync
}

// SyncError returns the failure text of the last cycle, if any.
func (s *State) SyncError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.syncErr
}

// GetLastUpdated returns the fetch time of the data on screen.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "initial":
		s.Loading.Initial = loading
	case "sync":
		s.Loading.Sync = loading
	case "mutation":
		s.Loading.Mutation = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial ||
		s.Loading.Sync ||
		s.Loading.Mutation
}

// IsInitialLoading returns true if the first sync has not completed.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// GetLoadingResources returns a list of currently loading resources.
func (s *State) GetLoadingResources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var resources []string
	if s.Loading.Initial {
		resources = append(resources, "initial")
	}
	if s.Loading.Sync {
		resources = append(resources, "sync")
	}
	if s.Loading.Mutation {
		resources = append(resources, "mutation")
	}
	return resources
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// ClearAllNotifications removes all notifications.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}
