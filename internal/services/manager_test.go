package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/quartz"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/apperr"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/config"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/db"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/models"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/services/remote"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/services/session"
)

const testPollInterval = 10 * time.Second

// fakeAPI serves the access-control endpoints and counts data requests.
type fakeAPI struct {
	addStarted chan struct{}
	addRelease chan struct{}
	dataHits   atomic.Int32
	failAccess atomic.Bool
	failAdd    atomic.Bool
	holdAdd    atomic.Bool
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/auth/login":
		_, _ = io.WriteString(w, `{"role":"ADMIN"}`)
	case r.URL.Path == "/api/vehicles" && r.Method == http.MethodGet:
		f.dataHits.Add(1)
		_, _ = io.WriteString(w, `[{"id":1,"licensePlate":"B01ABC","entryTime":"2024-01-02T10:00:00"}]`)
	case r.URL.Path == "/api/vehicles" && r.Method == http.MethodPost:
		if f.failAdd.Load() {
			http.Error(w, "duplicate plate", http.StatusConflict)
			return
		}
		if f.holdAdd.Load() {
			f.addStarted <- struct{}{}
			<-f.addRelease
		}
		w.WriteHeader(http.StatusCreated)
	case r.URL.Path == "/api/access":
		f.dataHits.Add(1)
		if f.failAccess.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `[
			{"id":1,"licensePlate":"B01","accessTime":"2024-01-02T10:00"},
			{"id":2,"licensePlate":"B02","accessTime":"2024-01-15T09:00"}
		]`)
	default:
		http.NotFound(w, r)
	}
}

type notifications struct {
	mu     sync.Mutex
	titles []string
}

func (n *notifications) notify(title, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.titles = append(n.titles, title)
	return nil
}

func (n *notifications) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.titles)
}

type testEnv struct {
	mgr    *Manager
	api    *fakeAPI
	clock  *quartz.Mock
	db     *db.DB
	events chan ServiceEvent
	notes  *notifications
}

func newTestEnv(t *testing.T, token string) *testEnv {
	t.Helper()

	api := &fakeAPI{
		addStarted: make(chan struct{}, 1),
		addRelease: make(chan struct{}),
	}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	if token != "" {
		if err := database.SetCredentials(token, models.RoleAdmin); err != nil {
			t.Fatalf("SetCredentials failed: %v", err)
		}
	}

	cfg := &config.Config{
		APIURL:                srv.URL,
		PollInterval:          testPollInterval,
		RedirectCountdown:     5 * time.Second,
		LogoutRedirectDelay:   100 * time.Millisecond,
		ManualRefreshInterval: time.Hour,
		DesktopNotifications:  true,
	}

	clock := quartz.NewMock(t)
	notes := &notifications{}
	mgr := newManager(cfg, Deps{
		Database: database,
		Client:   remote.New(srv.URL, 5*time.Second, database, remote.WithLocation(time.UTC)),
		Clock:    clock,
		Notify:   notes.notify,
	})
	t.Cleanup(func() { _ = mgr.Close() })

	events, _ := mgr.Subscribe()
	return &testEnv{mgr: mgr, api: api, clock: clock, db: database, events: events, notes: notes}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// waitFor returns the next event of type T, skipping others.
func waitFor[T ServiceEvent](t *testing.T, ch <-chan ServiceEvent) T {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-ch:
			if typed, ok := ev.(T); ok {
				return typed
			}
		case <-timeout:
			var zero T
			t.Fatalf("timed out waiting for %T", zero)
			return zero
		}
	}
}

func TestManager_SyncsWhenAuthenticated(t *testing.T) {
	ctx := testContext(t)
	env := newTestEnv(t, "dG9r")
	tickerTrap := env.clock.Trap().TickerFunc("poller")
	defer tickerTrap.Close()

	state, err := env.mgr.CheckAuth(ctx)
	if err != nil {
		t.Fatalf("CheckAuth failed: %v", err)
	}
	if state != models.SessionAuthenticated {
		t.Fatalf("Expected Authenticated, got %v", state)
	}

	changed := waitFor[SessionChangedEvent](t, env.events)
	if changed.Role != models.RoleAdmin {
		t.Errorf("Expected role ADMIN, got %q", changed.Role)
	}

	first := waitFor[SyncCompletedEvent](t, env.events)
	if first.Err != nil {
		t.Errorf("Expected clean sync, got %v", first.Err)
	}
	if len(first.Snapshot.Vehicles) != 1 || len(first.Snapshot.AccessLogs) != 2 {
		t.Errorf("Unexpected snapshot: %+v", first.Snapshot)
	}
	if first.Interval != testPollInterval {
		t.Errorf("Expected interval %v, got %v", testPollInterval, first.Interval)
	}

	tickerTrap.MustWait(ctx).MustRelease(ctx)
	env.clock.Advance(testPollInterval).MustWait(ctx)

	second := waitFor[SyncCompletedEvent](t, env.events)
	if second.Sync.Trigger != models.TriggerPoll {
		t.Errorf("Expected poll trigger, got %q", second.Sync.Trigger)
	}

	syncs, err := env.mgr.RecentSyncs(10)
	if err != nil {
		t.Fatalf("RecentSyncs failed: %v", err)
	}
	if len(syncs) != 2 {
		t.Errorf("Expected 2 recorded syncs, got %d", len(syncs))
	}
	if env.mgr.LastSync().AccessLogs != 2 {
		t.Errorf("LastSync not updated: %+v", env.mgr.LastSync())
	}
}

func TestManager_NoFetchWhenUnauthenticated(t *testing.T) {
	ctx := testContext(t)
	env := newTestEnv(t, "")

	state, _ := env.mgr.CheckAuth(ctx)
	if state != models.SessionUnauthenticated {
		t.Fatalf("Expected Unauthenticated, got %v", state)
	}

	waitFor[SessionChangedEvent](t, env.events)
	countdown := waitFor[CountdownEvent](t, env.events)
	if countdown.Remaining != 5 {
		t.Errorf("Expected countdown 5, got %d", countdown.Remaining)
	}

	env.mgr.syncOnce(ctx, models.TriggerPoll)
	if env.mgr.Refresh() {
		t.Error("Refresh should be refused while signed out")
	}
	if hits := env.api.dataHits.Load(); hits != 0 {
		t.Errorf("Expected no data requests, got %d", hits)
	}
	if env.mgr.Polling() {
		t.Error("Poller should not run while signed out")
	}
}

func TestManager_FetchFailureDegrades(t *testing.T) {
	ctx := testContext(t)
	env := newTestEnv(t, "dG9r")
	env.api.failAccess.Store(true)

	_, _ = env.mgr.CheckAuth(ctx)
	ev := waitFor[SyncCompletedEvent](t, env.events)

	if ev.Err == nil || !apperr.Is(ev.Err, apperr.FetchFailure) {
		t.Errorf("Expected fetch failure, got %v", ev.Err)
	}
	if ev.Snapshot.AccessLogs == nil || len(ev.Snapshot.AccessLogs) != 0 {
		t.Errorf("Failed collection should be empty, got %+v", ev.Snapshot.AccessLogs)
	}
	if len(ev.Snapshot.Vehicles) != 1 {
		t.Errorf("Vehicles should still be delivered, got %d", len(ev.Snapshot.Vehicles))
	}
	if !ev.Sync.Failed() {
		t.Error("Sync event should record the failure")
	}
	if !env.mgr.Polling() {
		t.Error("Poller must keep running after a failed cycle")
	}
}

func TestManager_LogoutStopsPolling(t *testing.T) {
	ctx := testContext(t)
	env := newTestEnv(t, "dG9r")

	_, _ = env.mgr.CheckAuth(ctx)
	waitFor[SyncCompletedEvent](t, env.events)

	if err := env.mgr.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if env.mgr.Polling() {
		t.Error("Poller should stop on logout")
	}

	changed := waitFor[SessionChangedEvent](t, env.events)
	if changed.State != models.SessionUnauthenticated {
		t.Errorf("Expected Unauthenticated, got %v", changed.State)
	}

	token, _ := env.db.GetToken()
	if token != "" {
		t.Errorf("Token should be cleared, got %q", token)
	}

	waitFor[CountdownEvent](t, env.events)
	env.clock.Advance(100 * time.Millisecond).MustWait(ctx)
	waitFor[RedirectEvent](t, env.events)
}

func TestManager_Login(t *testing.T) {
	ctx := testContext(t)
	env := newTestEnv(t, "")

	_, _ = env.mgr.CheckAuth(ctx)
	if err := env.mgr.Login(ctx, "admin", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	for {
		ev := waitFor[SessionChangedEvent](t, env.events)
		if ev.State == models.SessionAuthenticated {
			break
		}
	}
	waitFor[SyncCompletedEvent](t, env.events)

	if env.mgr.Role() != models.RoleAdmin {
		t.Errorf("Expected ADMIN role, got %q", env.mgr.Role())
	}
	token, _ := env.db.GetToken()
	if token != remote.EncodeToken("admin", "secret") {
		t.Errorf("Unexpected stored token %q", token)
	}
}

func TestManager_AddVehicleFailureAlerts(t *testing.T) {
	ctx := testContext(t)
	env := newTestEnv(t, "dG9r")
	env.api.failAdd.Store(true)

	_, _ = env.mgr.CheckAuth(ctx)
	waitFor[SyncCompletedEvent](t, env.events)

	err := env.mgr.AddVehicle(ctx, "B99XYZ")
	if !apperr.Is(err, apperr.MutationFailure) {
		t.Fatalf("Expected mutation failure, got %v", err)
	}

	errEv := waitFor[ErrorEvent](t, env.events)
	if errEv.Kind != apperr.MutationFailure {
		t.Errorf("Expected mutation kind, got %v", errEv.Kind)
	}
	if env.notes.count() != 1 {
		t.Errorf("Expected one desktop notification, got %d", env.notes.count())
	}
}

func TestManager_MutationAfterLogoutKeepsPollingStopped(t *testing.T) {
	ctx := testContext(t)
	env := newTestEnv(t, "dG9r")
	env.api.holdAdd.Store(true)

	_, _ = env.mgr.CheckAuth(ctx)
	waitFor[SyncCompletedEvent](t, env.events)

	addErr := make(chan error, 1)
	go func() { addErr <- env.mgr.AddVehicle(ctx, "B99XYZ") }()

	select {
	case <-env.api.addStarted:
	case <-ctx.Done():
		t.Fatal("add request never reached the server")
	}

	if err := env.mgr.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	for {
		ev := waitFor[SessionChangedEvent](t, env.events)
		if ev.State == models.SessionUnauthenticated {
			break
		}
	}

	close(env.api.addRelease)
	if err := <-addErr; err != nil {
		t.Fatalf("AddVehicle failed: %v", err)
	}

	if env.mgr.Polling() {
		t.Error("A mutation finishing after logout must not restart polling")
	}
}

func TestManager_RoleChangeDoesNotRestartPolling(t *testing.T) {
	ctx := testContext(t)
	env := newTestEnv(t, "dG9r")

	_, _ = env.mgr.CheckAuth(ctx)
	waitFor[SyncCompletedEvent](t, env.events)
	hits := env.api.dataHits.Load()

	env.mgr.handleGateEvent(session.Event{
		Type:  session.EventStateChanged,
		State: models.SessionAuthenticated,
		Role:  models.RoleUser,
	})

	changed := waitFor[SessionChangedEvent](t, env.events)
	if changed.Role != models.RoleUser {
		t.Errorf("Expected USER role, got %q", changed.Role)
	}
	if got := env.api.dataHits.Load(); got != hits {
		t.Errorf("A role change should not trigger a fetch, got %d new requests", got-hits)
	}
	if !env.mgr.Polling() {
		t.Error("Polling should keep running")
	}
}

func TestManager_AddVehicleRequiresAuth(t *testing.T) {
	env := newTestEnv(t, "")
	err := env.mgr.AddVehicle(testContext(t), "B01")
	if !apperr.Is(err, apperr.MutationFailure) {
		t.Errorf("Expected mutation failure, got %v", err)
	}
}

func TestManager_RefreshThrottled(t *testing.T) {
	ctx := testContext(t)
	env := newTestEnv(t, "dG9r")

	_, _ = env.mgr.CheckAuth(ctx)
	waitFor[SyncCompletedEvent](t, env.events)

	if !env.mgr.Refresh() {
		t.Fatal("First refresh should be allowed")
	}
	manual := waitFor[SyncCompletedEvent](t, env.events)
	if manual.Sync.Trigger != models.TriggerManual {
		t.Errorf("Expected manual trigger, got %q", manual.Sync.Trigger)
	}

	if env.mgr.Refresh() {
		t.Error("Second refresh within the interval should be throttled")
	}
	if !env.mgr.Polling() {
		t.Error("Poller should still be running")
	}
}

func TestManager_Subscription(t *testing.T) {
	env := newTestEnv(t, "")

	ch, cmd := env.mgr.Subscribe()
	if cmd == nil {
		t.Fatal("Subscribe should return a command")
	}

	env.mgr.broadcast(RedirectEvent{})
	if msg := cmd(); msg != (RedirectEvent{}) {
		t.Errorf("Expected RedirectEvent, got %T", msg)
	}

	env.mgr.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Error("Channel should be closed after Unsubscribe")
	}
}

func TestManager_CloseIsIdempotent(t *testing.T) {
	env := newTestEnv(t, "")
	if err := env.mgr.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := env.mgr.Close(); err != nil {
		t.Errorf("Second Close failed: %v", err)
	}
	// Broadcasting after close must not panic.
	env.mgr.broadcast(RedirectEvent{})
}
