package vehicles

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/app"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/models"
)

func seededState(t *testing.T) *app.State {
	t.Helper()
	now := time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)
	s := app.NewState()
	s.SetNow(func() time.Time { return now })
	s.SetSession(models.SessionAuthenticated, models.RoleAdmin)
	s.ApplySync(models.Snapshot{
		FetchedAt: now,
		Vehicles: []models.Vehicle{
			{ID: 7, LicensePlate: "B01ABC", EntryTime: now.Add(-time.Hour)},
			{ID: 9, LicensePlate: "CJ22XYZ"},
			{ID: 12, LicensePlate: "b01zzz"},
		},
	}, models.SyncEvent{}, nil)
	return s
}

func newSeeded(t *testing.T) *Model {
	t.Helper()
	m := New(seededState(t))
	m.SetSize(100, 30)
	m.Update(app.DataUpdatedMsg{})
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_RowsFollowStore(t *testing.T) {
	m := newSeeded(t)
	if len(m.rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(m.rows))
	}
	if got := m.table.Rows()[0][2]; got != "2024-01-15 11:00" {
		t.Errorf("entry time = %q", got)
	}
	if got := m.table.Rows()[1][2]; got != "-" {
		t.Errorf("missing entry time = %q, want -", got)
	}
}

func TestModel_Search(t *testing.T) {
	m := newSeeded(t)

	m.Update(runes("/"))
	if !m.CapturesInput() {
		t.Fatal("search field should capture input")
	}

	m.Update(runes("b01"))
	if len(m.rows) != 2 {
		t.Fatalf("rows after search = %d, want 2 (case-insensitive)", len(m.rows))
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.CapturesInput() {
		t.Error("enter should release the keyboard")
	}
	if len(m.rows) != 2 {
		t.Error("filter should stay applied after enter")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if len(m.rows) != 3 {
		t.Errorf("esc should clear the filter, rows = %d", len(m.rows))
	}
}

func TestModel_AddVehicle(t *testing.T) {
	m := newSeeded(t)

	m.Update(runes("n"))
	if !m.adding || !m.CapturesInput() {
		t.Fatal("n should open the add form")
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("empty plate should not be submitted")
	}
	if m.formError == "" {
		t.Error("empty plate should show an error")
	}

	m.Update(runes("B03NEW"))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(app.AddVehicleMsg)
	if !ok || msg.Plate != "B03NEW" {
		t.Errorf("got %#v, want AddVehicleMsg{B03NEW}", cmd())
	}
	if m.adding {
		t.Error("form should close after submit")
	}
}

func TestModel_AddVehicleCancel(t *testing.T) {
	m := newSeeded(t)
	m.Update(runes("n"))
	m.Update(runes("X"))
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.adding || m.plateInput.Value() != "" {
		t.Error("esc should close and clear the form")
	}
}

func TestModel_DeleteVehicle(t *testing.T) {
	m := newSeeded(t)
	m.Update(tea.KeyMsg{Type: tea.KeyDown})

	m.Update(runes("d"))
	if !m.confirmDelete || m.pending.ID != 9 {
		t.Fatalf("pending = %+v, want vehicle 9", m.pending)
	}
	if !strings.Contains(m.View(), "CJ22XYZ") {
		t.Error("confirmation should name the plate")
	}

	_, cmd := m.Update(runes("y"))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(app.DeleteVehicleMsg)
	if !ok || msg.ID != 9 || msg.Plate != "CJ22XYZ" {
		t.Errorf("got %#v", cmd())
	}
}

func TestModel_DeleteVehicleDeclined(t *testing.T) {
	m := newSeeded(t)
	m.Update(runes("d"))
	if _, cmd := m.Update(runes("n")); cmd != nil {
		t.Error("declining should not delete")
	}
	if m.confirmDelete {
		t.Error("dialog should close")
	}
}

func TestModel_CopyPlate(t *testing.T) {
	m := newSeeded(t)
	_, cmd := m.Update(runes("c"))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if msg, ok := cmd().(app.CopyToClipboardMsg); !ok || msg.Text != "B01ABC" {
		t.Errorf("got %#v", cmd())
	}
}

func TestModel_EmptyStore(t *testing.T) {
	s := app.NewState()
	s.SetSession(models.SessionAuthenticated, models.RoleAdmin)
	s.SetLoading("initial", false)
	m := New(s)
	m.SetSize(100, 30)
	m.Init()

	if _, cmd := m.Update(runes("d")); cmd != nil || m.confirmDelete {
		t.Error("delete with no rows should do nothing")
	}
	if !strings.Contains(m.View(), "No vehicles registered") {
		t.Error("empty view should invite adding a vehicle")
	}
}

func TestModel_View(t *testing.T) {
	m := newSeeded(t)
	view := m.View()
	for _, want := range []string{"Registered Vehicles", "3 vehicles registered", "B01ABC"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState())
	if len(m.ShortHelp()) != 4 {
		t.Errorf("ShortHelp = %d bindings, want 4", len(m.ShortHelp()))
	}
	if len(m.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
}

func TestModel_SpinnerTicks(t *testing.T) {
	m := New(app.NewState())
	cmd := m.Init()
	if cmd == nil {
		t.Fatal("Init should start the loading spinner")
	}
	if _, next := m.Update(cmd()); next == nil {
		t.Error("spinner tick should schedule the next one")
	}
}
