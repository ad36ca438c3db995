package app

import (
	"time"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/models"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// DataUpdatedMsg tells every tab that the store or series changed.
type DataUpdatedMsg struct{}

// SessionCheckedMsg carries the result of the startup credential probe.
type SessionCheckedMsg struct {
	Err   error
	State models.SessionState
}

// LoginMsg asks the services to sign in.
type LoginMsg struct {
	Username string
	Password string
}

// LoginResultMsg contains the result of a sign-in attempt.
type LoginResultMsg struct {
	Err error
}

// LogoutMsg asks the services to sign out.
type LogoutMsg struct{}

// LogoutResultMsg contains the result of a sign-out.
type LogoutResultMsg struct {
	Err error
}

// RefreshMsg requests an immediate poll cycle.
type RefreshMsg struct{}

// RefreshResultMsg reports whether a manual refresh was started.
type RefreshResultMsg struct {
	Started bool
}

// AddVehicleMsg requests registering a plate.
type AddVehicleMsg struct {
	Plate string
}

// DeleteVehicleMsg requests removing a vehicle.
type DeleteVehicleMsg struct {
	Plate string
	ID    int64
}

// MutationResultMsg contains the result of a vehicle add or delete.
type MutationResultMsg struct {
	Err   error
	Op    string
	Plate string
}

// SetWindowMsg selects the chart window.
type SetWindowMsg struct {
	Mode models.WindowMode
}

// SyncHistoryLoadedMsg carries the recorded poll cycles.
type SyncHistoryLoadedMsg struct {
	Err    error
	Events []models.SyncEvent
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Message  string
	Duration time.Duration
	Type     NotificationType
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// CopyToClipboardMsg requests copying text to clipboard.
type CopyToClipboardMsg struct {
	Text string
}

// ClipboardResultMsg contains the result of a clipboard operation.
type ClipboardResultMsg struct {
	Error error
	Text  string
}
