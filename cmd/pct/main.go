// Package main is the entry point for the ParkControl dashboard TUI.
// It initializes configuration, services, and runs the Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/app"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/config"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/db"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/logger"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/services"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/ui/tabs/history"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/ui/tabs/info"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/ui/tabs/login"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/ui/tabs/stats"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/ui/tabs/vehicles"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/version"
)

func main() {
	var err error

	switch arg := firstArg(); arg {
	case "-v", "--version":
		fmt.Println(version.Info())
		return
	case "-h", "--help":
		printUsage()
		return
	case "logout":
		err = withDatabase(func(d *db.DB) error {
			if err := d.ClearToken(); err != nil {
				return err
			}
			fmt.Println("Stored session cleared.")
			return nil
		})
	case "vacuum":
		err = withDatabase(func(d *db.DB) error {
			return d.Vacuum()
		})
	case "":
		err = run()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", arg)
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func firstArg() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	return ""
}

// withDatabase opens the configured database for a maintenance command.
func withDatabase(fn func(*db.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	d, err := db.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer d.Close()

	return fn(d)
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logFile, err := logger.Setup(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logFile.Close()

	logger.Info("starting", "version", version.GetVersion(), "api", cfg.APIURL)

	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	model := app.NewModel(svcManager)

	// Indexed by app.TabID
	state := model.GetState()
	model.SetTabs([]app.Tab{
		vehicles.New(state),
		history.New(state),
		stats.New(state),
		info.New(state, cfg, model.GetCommands()),
	})
	model.SetLoginView(login.New())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`ParkControl Dashboard TUI - vehicle access-control client

Usage:
  pct [command] [flags]

Commands:
  logout          Clear the stored session
  vacuum          Compact the local database

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-4             Switch between tabs (Vehicles, History, Stats, Info)
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Navigate lists
  /               Search plates
  r               Refresh now
  x               Sign out
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  PARKCONTROL_API_URL      Access-control service URL (default: http://localhost:8080)
  DATABASE_PATH            SQLite database path
  LOG_PATH                 Log file path
  LOG_LEVEL                debug, info, warn or error (default: info)
  POLL_INTERVAL            Synchronization interval (default: 10s)
  REDIRECT_COUNTDOWN       Delay before the sign-in screen (default: 5s)
  LOGOUT_REDIRECT_DELAY    Delay before redirecting after sign-out (default: 100ms)
  REQUEST_TIMEOUT          HTTP request timeout (default: 15s)
  MANUAL_REFRESH_INTERVAL  Minimum time between manual refreshes (default: 2s)
  WATCH_CREDENTIALS        Follow sign-in and sign-out from other instances (default: true)
  DESKTOP_NOTIFICATIONS    Desktop alerts for failed changes (default: true)

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/parkcontrol/.env
  - ~/.parkcontrol/.env
  - Parent directory`)
}
