package app

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second

	// recentSyncLimit is how many poll cycles the info tab lists.
	recentSyncLimit = 10
)

// clipboardWrite is replaced in tests.
var clipboardWrite = clipboard.WriteAll

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// subscribeToServicesCmd subscribes immediately so no event emitted by the
// startup probe is missed.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// checkAuthCmd probes the stored credentials.
func checkAuthCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		state, err := mgr.CheckAuth(context.Background())
		return SessionCheckedMsg{State: state, Err: err}
	}
}

func loginCmd(mgr *services.Manager, username, password string) tea.Cmd {
	return func() tea.Msg {
		return LoginResultMsg{Err: mgr.Login(context.Background(), username, password)}
	}
}

func logoutCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return LogoutResultMsg{Err: mgr.Logout(context.Background())}
	}
}

func refreshCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return RefreshResultMsg{Started: mgr.Refresh()}
	}
}

func addVehicleCmd(mgr *services.Manager, plate string) tea.Cmd {
	return func() tea.Msg {
		err := mgr.AddVehicle(context.Background(), plate)
		return MutationResultMsg{Op: "add", Plate: plate, Err: err}
	}
}

func deleteVehicleCmd(mgr *services.Manager, id int64, plate string) tea.Cmd {
	return func() tea.Msg {
		err := mgr.DeleteVehicle(context.Background(), id)
		return MutationResultMsg{Op: "delete", Plate: plate, Err: err}
	}
}

// loadSyncHistoryCmd reads the recorded poll cycles.
func loadSyncHistoryCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		events, err := mgr.RecentSyncs(recentSyncLimit)
		return SyncHistoryLoadedMsg{Events: events, Err: err}
	}
}

func copyToClipboardCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return ClipboardResultMsg{Text: text, Error: clipboardWrite(text)}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifyCmd(t NotificationType, message string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: d}
	}
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, DefaultNotificationDuration)
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, QuickNotificationDuration)
}

// Commands provides a public interface to the command functions for tabs.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// Tick returns a tick command with the specified interval.
func (c *Commands) Tick(interval time.Duration) tea.Cmd {
	return tickCmd(interval)
}

// LoadSyncHistory returns a command that reads the recorded poll cycles.
func (c *Commands) LoadSyncHistory() tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return loadSyncHistoryCmd(c.manager)
}

// CopyToClipboard returns a command that copies text to the clipboard.
func (c *Commands) CopyToClipboard(text string) tea.Cmd {
	return copyToClipboardCmd(text)
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyWarning returns a command that adds a warning notification.
func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return notifyWarningCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}

// ClearNotification returns a command that removes a notification after a delay.
func (c *Commands) ClearNotification(id string, delay time.Duration) tea.Cmd {
	return clearNotificationCmd(id, delay)
}

// Quit returns a command that quits the application.
func (c *Commands) Quit() tea.Cmd {
	return tea.Quit
}
