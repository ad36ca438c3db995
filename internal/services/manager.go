// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coder/quartz"
	"github.com/gen2brain/beeep"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/apperr"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/config"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/db"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/logger"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/models"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/services/poller"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/services/remote"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/services/session"
)

// syncHistoryLimit bounds the sync_events table.
const syncHistoryLimit = 500

type (
	// SessionChangedEvent is emitted on every session state transition.
	SessionChangedEvent struct {
		State models.SessionState
		Role  models.Role
	}

	// CountdownEvent carries the seconds left before the login redirect.
	CountdownEvent struct {
		Remaining int
	}

	// RedirectEvent asks the UI to show the login surface.
	RedirectEvent struct{}

	// SyncCompletedEvent is emitted after every poll cycle. Collections
	// whose fetch failed are empty and Err describes the failures.
	SyncCompletedEvent struct {
		Err      error
		Snapshot models.Snapshot
		Sync     models.SyncEvent
		// Interval is the active poll interval, zero when polling stopped
		// during the cycle.
		Interval time.Duration
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Error   error
		Service string
		Kind    apperr.Kind
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (SessionChangedEvent) isServiceEvent() {}
func (CountdownEvent) isServiceEvent()      {}
func (RedirectEvent) isServiceEvent()       {}
func (SyncCompletedEvent) isServiceEvent()  {}
func (ErrorEvent) isServiceEvent()          {}

// Notifier shows a desktop notification.
type Notifier func(title, message string) error

// Deps are the collaborators a Manager is built from.
type Deps struct {
	Database *db.DB
	Client   *remote.Client
	Clock    quartz.Clock
	Notify   Notifier
}

// Manager orchestrates services and event routing.
type Manager struct {
	ctx         context.Context
	clock       quartz.Clock
	cfg         *config.Config
	database    *db.DB
	client      *remote.Client
	gate        *session.Gate
	poller      *poller.Poller
	limiter     *rate.Limiter
	notify      Notifier
	cancel      context.CancelFunc
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
	lastSync    models.SyncEvent
	// session is the last state seen by routeEvents; only that goroutine
	// touches it.
	session models.SessionState
	mu      sync.RWMutex
	closed  bool
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	database, err := db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m := newManager(cfg, Deps{
		Database: database,
		Client:   remote.New(cfg.APIURL, cfg.RequestTimeout, database),
		Clock:    quartz.NewReal(),
		Notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	})

	if cfg.WatchCredentials {
		if err := m.gate.Watch(cfg.DatabasePath); err != nil {
			logger.Warn("credential watch disabled", "error", err)
		}
	}

	return m, nil
}

func newManager(cfg *config.Config, deps Deps) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	refreshEvery := cfg.ManualRefreshInterval
	limit := rate.Inf
	if refreshEvery > 0 {
		limit = rate.Every(refreshEvery)
	}

	m := &Manager{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		clock:    deps.Clock,
		database: deps.Database,
		client:   deps.Client,
		notify:   deps.Notify,
		poller:   poller.New(deps.Clock),
		limiter:  rate.NewLimiter(limit, 1),
		stopChan: make(chan struct{}),
	}

	m.gate = session.New(deps.Database, deps.Client, deps.Clock, session.Config{
		Countdown:   cfg.CountdownSeconds(),
		LogoutDelay: cfg.LogoutRedirectDelay,
	})

	go m.routeEvents()

	return m
}

// routeEvents routes events from the session gate to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.gate.Events():
			m.handleGateEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleGateEvent(event session.Event) {
	switch event.Type {
	case session.EventStateChanged:
		prev := m.session
		m.session = event.State
		m.broadcast(SessionChangedEvent{State: event.State, Role: event.Role})
		switch {
		case event.State != models.SessionAuthenticated:
			m.poller.Stop()
		case prev != models.SessionAuthenticated:
			m.startPolling(models.TriggerPoll)
		}

	case session.EventCountdown:
		m.broadcast(CountdownEvent{Remaining: event.Remaining})

	case session.EventRedirect:
		m.broadcast(RedirectEvent{})

	case session.EventError:
		m.broadcast(ErrorEvent{
			Service: "session",
			Kind:    apperr.KindOf(event.Error),
			Error:   event.Error,
		})
	}
}

// startPolling restarts the interval with an immediate cycle, but only while
// signed in. The check runs under the poller's lock, so the Stop that
// follows a sign-out can never be overtaken by a late restart.
func (m *Manager) startPolling(trigger string) bool {
	return m.poller.StartIf(m.ctx, m.syncFunc(trigger), m.cfg.PollInterval, m.signedIn)
}

func (m *Manager) signedIn() bool {
	return m.gate.State() == models.SessionAuthenticated
}

// syncFunc returns the poll callback. The first cycle is labelled with
// trigger and later ones as regular polls.
func (m *Manager) syncFunc(trigger string) poller.Func {
	var once sync.Once
	return func(ctx context.Context) {
		t := models.TriggerPoll
		once.Do(func() { t = trigger })
		m.syncOnce(ctx, t)
	}
}

// syncOnce fetches both collections concurrently and publishes the result.
func (m *Manager) syncOnce(ctx context.Context, trigger string) {
	if !m.signedIn() {
		logger.Debug("sync skipped, not signed in")
		return
	}

	started := m.clock.Now()

	var (
		vehicles      []models.Vehicle
		accessLogs    []models.AccessLogEntry
		vErr, logsErr error
		g             errgroup.Group
	)
	// Each collection degrades on its own, so the fetches keep their errors
	// and never fail the group.
	g.Go(func() error {
		vehicles, vErr = m.client.FetchVehicles(ctx)
		return nil
	})
	g.Go(func() error {
		accessLogs, logsErr = m.client.FetchAccessLogs(ctx)
		return nil
	})
	_ = g.Wait()

	if ctx.Err() != nil {
		return
	}

	fetchErr := errors.Join(vErr, logsErr)
	if fetchErr != nil {
		logger.Warn("sync cycle degraded", "error", fetchErr)
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	if accessLogs == nil {
		accessLogs = []models.AccessLogEntry{}
	}

	event := models.SyncEvent{
		StartedAt:  started,
		Duration:   m.clock.Since(started),
		Vehicles:   len(vehicles),
		AccessLogs: len(accessLogs),
		Trigger:    trigger,
	}
	if fetchErr != nil {
		event.Error = fetchErr.Error()
	}
	m.recordSync(&event)

	m.broadcast(SyncCompletedEvent{
		Snapshot: models.Snapshot{
			FetchedAt:  started,
			Vehicles:   vehicles,
			AccessLogs: accessLogs,
		},
		Sync:     event,
		Err:      fetchErr,
		Interval: m.pollInterval(),
	})
}

func (m *Manager) recordSync(event *models.SyncEvent) {
	if err := m.database.InsertSyncEvent(event); err != nil {
		logger.Error("failed to record sync event", "error", err)
	} else if _, err := m.database.PruneSyncEvents(syncHistoryLimit); err != nil {
		logger.Warn("failed to prune sync events", "error", err)
	}

	m.mu.Lock()
	m.lastSync = *event
	m.mu.Unlock()
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return
	}

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// alert reports a failure that needs the user's attention once.
func (m *Manager) alert(title string, err error) {
	logger.Error(title, "error", err)
	m.broadcast(ErrorEvent{Service: "manager", Kind: apperr.KindOf(err), Error: err})
	if m.cfg.DesktopNotifications && m.notify != nil {
		if nerr := m.notify(title, err.Error()); nerr != nil {
			logger.Debug("desktop notification failed", "error", nerr)
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// CheckAuth probes the stored credentials.
func (m *Manager) CheckAuth(ctx context.Context) (models.SessionState, error) {
	state, err := m.gate.CheckAuth(ctx)
	if err != nil {
		m.alert("Could not read stored credentials", err)
	}
	return state, err
}

// Login signs in. Auth failures are returned for the login form to show.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	err := m.gate.Login(ctx, username, password)
	if apperr.Is(err, apperr.StorageFailure) {
		m.alert("Could not store credentials", err)
	}
	return err
}

// Logout stops polling and signs out.
func (m *Manager) Logout(ctx context.Context) error {
	m.poller.Stop()
	err := m.gate.Logout(ctx)
	if err != nil {
		m.alert("Could not clear stored credentials", err)
	}
	return err
}

// Refresh restarts the poll interval with an immediate cycle. It reports
// false when throttled or signed out.
func (m *Manager) Refresh() bool {
	if !m.signedIn() {
		return false
	}
	if !m.limiter.Allow() {
		return false
	}
	return m.startPolling(models.TriggerManual)
}

// AddVehicle registers a plate and resynchronizes on success.
func (m *Manager) AddVehicle(ctx context.Context, plate string) error {
	if err := m.requireAuth("add vehicle"); err != nil {
		return err
	}
	if err := m.client.AddVehicle(ctx, plate); err != nil {
		m.alert("Vehicle not added", err)
		return err
	}
	logger.Info("vehicle added", "plate", plate)
	m.startPolling(models.TriggerManual)
	return nil
}

// DeleteVehicle removes a vehicle and resynchronizes on success.
func (m *Manager) DeleteVehicle(ctx context.Context, id int64) error {
	if err := m.requireAuth("delete vehicle"); err != nil {
		return err
	}
	if err := m.client.DeleteVehicle(ctx, id); err != nil {
		m.alert("Vehicle not deleted", err)
		return err
	}
	logger.Info("vehicle deleted", "id", id)
	m.startPolling(models.TriggerManual)
	return nil
}

func (m *Manager) requireAuth(op string) error {
	if !m.signedIn() {
		return apperr.New(apperr.MutationFailure, op, errors.New("not signed in"))
	}
	return nil
}

// SessionState returns the current session state.
func (m *Manager) SessionState() models.SessionState {
	return m.gate.State()
}

// Role returns the signed-in role.
func (m *Manager) Role() models.Role {
	return m.gate.Role()
}

// Polling reports whether the poll interval is active.
func (m *Manager) Polling() bool {
	return m.poller.Running()
}

func (m *Manager) pollInterval() time.Duration {
	if !m.poller.Running() {
		return 0
	}
	return m.poller.Interval()
}

// LastSync returns the most recent poll cycle.
func (m *Manager) LastSync() models.SyncEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSync
}

// RecentSyncs returns the latest recorded poll cycles, newest first.
func (m *Manager) RecentSyncs(limit int) ([]models.SyncEvent, error) {
	return m.database.RecentSyncEvents(limit)
}

// APIURL returns the service address.
func (m *Manager) APIURL() string {
	return m.client.BaseURL()
}

// Now returns the manager clock's current time.
func (m *Manager) Now() time.Time {
	return m.clock.Now()
}

// Close stops polling, the session gate and the database.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	close(m.stopChan)
	m.cancel()
	m.poller.Stop()

	var errs []error

	if err := m.gate.Close(); err != nil {
		errs = append(errs, err)
	}

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
