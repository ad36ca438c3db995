// Package session owns the authentication-presence state machine that gates
// all data access, including the redirect countdown shown to signed-out
// users.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/apperr"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/logger"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/models"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/services/remote"
)

// EventType identifies the kind of gate event.
type EventType int

const (
	// EventStateChanged is sent on every state transition.
	EventStateChanged EventType = iota
	// EventCountdown carries the seconds left before the redirect.
	EventCountdown
	// EventRedirect asks the UI to leave for the login surface.
	EventRedirect
	// EventError reports a failure from a background re-probe.
	EventError
)

// Event is a gate notification.
type Event struct {
	Error     error
	Role      models.Role
	Type      EventType
	State     models.SessionState
	Remaining int
}

// CredentialStore persists the token and role.
type CredentialStore interface {
	GetToken() (string, error)
	GetRole() (models.Role, error)
	SetRole(role models.Role) error
	SetCredentials(token string, role models.Role) error
	ClearToken() error
}

// Authenticator verifies credentials against the service.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*remote.LoginResult, error)
	CheckAdmin(ctx context.Context, token string) (bool, error)
}

// Config holds the gate timings.
type Config struct {
	// Countdown is the number of one-second steps before a signed-out
	// user is redirected.
	Countdown int
	// LogoutDelay is the pause between an explicit logout and the redirect.
	LogoutDelay time.Duration
}

// DefaultConfig returns the standard timings.
func DefaultConfig() Config {
	return Config{
		Countdown:   5,
		LogoutDelay: 100 * time.Millisecond,
	}
}

var errCountdownDone = errors.New("countdown finished")

// Gate is the session state machine. All transitions go through setState.
type Gate struct {
	clock           quartz.Clock
	store           CredentialStore
	auth            Authenticator
	countdownCancel context.CancelFunc
	redirectTimer   *quartz.Timer
	seen            storedCredentials
	debounceTimer   *quartz.Timer
	watcher         *fsnotify.Watcher
	eventChan       chan Event
	stopChan        chan struct{}
	role            models.Role
	cfg             Config
	state           models.SessionState
	remaining       int
	epoch           uint64
	mu              sync.Mutex
	closed          bool
	redirected      bool
	probed          bool
}

// storedCredentials is the token and role as last read from the store.
type storedCredentials struct {
	token string
	role  models.Role
}

// New creates a gate in the Unknown state. A nil clock uses the real clock.
func New(store CredentialStore, auth Authenticator, clock quartz.Clock, cfg Config) *Gate {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if cfg.Countdown <= 0 {
		cfg.Countdown = DefaultConfig().Countdown
	}
	return &Gate{
		clock:     clock,
		store:     store,
		auth:      auth,
		cfg:       cfg,
		state:     models.SessionUnknown,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}
}

// Events returns the channel of gate events.
func (g *Gate) Events() <-chan Event {
	return g.eventChan
}

// State returns the current session state.
func (g *Gate) State() models.SessionState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Role returns the role of the signed-in user.
func (g *Gate) Role() models.Role {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.role
}

// Redirected reports whether the redirect has fired for the current
// signed-out period.
func (g *Gate) Redirected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.redirected
}

// CheckAuth probes the stored token and resolves the state. A storage error
// resolves to Unauthenticated.
func (g *Gate) CheckAuth(ctx context.Context) (models.SessionState, error) {
	token, err := g.store.GetToken()
	if err != nil {
		err = apperr.New(apperr.StorageFailure, "read token", err)
		g.mu.Lock()
		defer g.mu.Unlock()
		g.setStateLocked(models.SessionUnauthenticated, models.RoleNone)
		return g.state, err
	}

	if token == "" {
		g.mu.Lock()
		defer g.mu.Unlock()
		g.rememberLocked(storedCredentials{})
		g.setStateLocked(models.SessionUnauthenticated, models.RoleNone)
		return g.state, nil
	}

	role, stored := g.resolveRole(ctx, token)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.rememberLocked(storedCredentials{token: token, role: stored})
	g.setStateLocked(models.SessionAuthenticated, role)
	return g.state, nil
}

// resolveRole reads the stored role, asking the service when none was
// stored. A failed probe falls back to the restricted role. The second
// result is the role left in the store.
func (g *Gate) resolveRole(ctx context.Context, token string) (models.Role, models.Role) {
	role, err := g.store.GetRole()
	if err != nil {
		logger.Warn("failed to read stored role", "error", err)
	}
	if role != models.RoleNone {
		return role, role
	}

	role = models.RoleUser
	admin, err := g.auth.CheckAdmin(ctx, token)
	if err != nil {
		logger.Warn("admin probe failed, using restricted role", "error", err)
		return role, models.RoleNone
	}
	if admin {
		role = models.RoleAdmin
	}
	if err := g.store.SetRole(role); err != nil {
		logger.Warn("failed to store probed role", "error", err)
		return role, models.RoleNone
	}
	return role, role
}

func (g *Gate) rememberLocked(c storedCredentials) {
	g.seen = c
	g.probed = true
}

// credentialsChanged reports whether the stored token or role differ from
// what the gate last resolved. Read failures count as a change.
func (g *Gate) credentialsChanged() bool {
	token, err := g.store.GetToken()
	if err != nil {
		return true
	}
	current := storedCredentials{token: token}
	if token != "" {
		if current.role, err = g.store.GetRole(); err != nil {
			return true
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.probed || g.seen != current
}

// Login verifies the credentials and, on success, stores them and moves to
// Authenticated. On failure the state is left untouched.
func (g *Gate) Login(ctx context.Context, username, password string) error {
	res, err := g.auth.Login(ctx, username, password)
	if err != nil {
		if apperr.KindOf(err) == 0 {
			err = apperr.New(apperr.AuthFailure, "login", err)
		}
		return err
	}

	if err := g.store.SetCredentials(res.Token, res.Role); err != nil {
		return apperr.New(apperr.StorageFailure, "store credentials", err)
	}

	role := res.Role
	if role == models.RoleNone {
		role = models.RoleUser
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.rememberLocked(storedCredentials{token: res.Token, role: res.Role})
	g.setStateLocked(models.SessionAuthenticated, role)
	logger.Info("signed in", "user", username, "role", role)
	return nil
}

// Logout clears the stored credentials, moves to Unauthenticated and
// schedules the redirect after the logout delay. A storage failure is
// returned but the session still ends.
func (g *Gate) Logout(_ context.Context) error {
	var storeErr error
	if err := g.store.ClearToken(); err != nil {
		storeErr = apperr.New(apperr.StorageFailure, "clear token", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return storeErr
	}

	if storeErr == nil {
		g.rememberLocked(storedCredentials{})
	}
	g.setStateLocked(models.SessionUnauthenticated, models.RoleNone)

	if g.redirectTimer != nil {
		g.redirectTimer.Stop()
	}
	epoch := g.epoch
	g.redirectTimer = g.clock.AfterFunc(g.cfg.LogoutDelay, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.epoch != epoch || g.closed {
			return
		}
		g.redirectLocked()
	}, "session", "logout")

	logger.Info("signed out")
	return storeErr
}

// setStateLocked applies a transition. Re-entering the current state only
// updates the role.
func (g *Gate) setStateLocked(state models.SessionState, role models.Role) {
	if g.closed {
		return
	}
	if g.state == state {
		if g.role != role {
			g.role = role
			g.sendEvent(Event{Type: EventStateChanged, State: state, Role: role})
		}
		return
	}

	prev := g.state
	g.state = state
	g.role = role
	g.epoch++

	if prev == models.SessionUnauthenticated {
		g.stopTimersLocked()
	}

	g.sendEvent(Event{Type: EventStateChanged, State: state, Role: role})
	logger.Debug("session state changed", "from", prev, "to", state)

	if state == models.SessionUnauthenticated {
		g.redirected = false
		g.startCountdownLocked()
	}
}

func (g *Gate) startCountdownLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	g.countdownCancel = cancel
	g.remaining = g.cfg.Countdown
	g.sendEvent(Event{Type: EventCountdown, State: g.state, Remaining: g.remaining})

	g.clock.TickerFunc(ctx, time.Second, func() error {
		g.mu.Lock()
		defer g.mu.Unlock()
		if ctx.Err() != nil {
			return ctx.Err()
		}

		g.remaining--
		g.sendEvent(Event{Type: EventCountdown, State: g.state, Remaining: g.remaining})
		if g.remaining <= 0 {
			g.redirectLocked()
			return errCountdownDone
		}
		return nil
	}, "session", "countdown")
}

// redirectLocked fires the redirect once per signed-out period.
func (g *Gate) redirectLocked() {
	g.stopTimersLocked()
	if g.redirected {
		return
	}
	g.redirected = true
	g.remaining = 0
	g.sendEvent(Event{Type: EventRedirect, State: g.state})
}

func (g *Gate) stopTimersLocked() {
	if g.countdownCancel != nil {
		g.countdownCancel()
		g.countdownCancel = nil
	}
	if g.redirectTimer != nil {
		g.redirectTimer.Stop()
		g.redirectTimer = nil
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (g *Gate) sendEvent(event Event) {
	select {
	case g.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-g.eventChan:
		default:
		}
		select {
		case g.eventChan <- event:
		default:
		}
	}
}

// Close cancels all timers and stops the credential watcher.
func (g *Gate) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	g.stopTimersLocked()
	if g.debounceTimer != nil {
		g.debounceTimer.Stop()
	}
	watcher := g.watcher
	g.mu.Unlock()

	close(g.stopChan)

	if watcher != nil {
		if err := watcher.Close(); err != nil {
			return fmt.Errorf("failed to close credential watcher: %w", err)
		}
	}
	return nil
}
