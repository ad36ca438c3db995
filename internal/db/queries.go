package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/logger"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/models"
)

// Keys used in the kv table.
const (
	KeyAuth = "auth"
	KeyRole = "role"
)

const timeLayout = time.RFC3339Nano

// Get returns the value stored under key, or "" when absent.
func (db *DB) Get(key string) (string, error) {
	var value string
	err := db.QueryRowContext(context.Background(),
		"SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (db *DB) Set(key, value string) error {
	query := `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := db.ExecContext(context.Background(), query,
		key, value, time.Now().Format(timeLayout)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// GetToken returns the stored credential token, or "" when logged out.
func (db *DB) GetToken() (string, error) {
	return db.Get(KeyAuth)
}

// ClearToken removes the token and the role stored with it.
func (db *DB) ClearToken() error {
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if _, err := tx.ExecContext(context.Background(),
		"DELETE FROM kv WHERE key IN (?, ?)", KeyAuth, KeyRole); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return tx.Commit()
}

// GetRole returns the stored role.
func (db *DB) GetRole() (models.Role, error) {
	role, err := db.Get(KeyRole)
	if err != nil {
		return models.RoleNone, err
	}
	return models.ParseRole(role), nil
}

// SetRole stores the role reported at login.
func (db *DB) SetRole(role models.Role) error {
	return db.Set(KeyRole, string(role))
}

// SetCredentials stores token and role together.
func (db *DB) SetCredentials(token string, role models.Role) error {
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	now := time.Now().Format(timeLayout)
	query := `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	for key, value := range map[string]string{KeyAuth: token, KeyRole: string(role)} {
		if _, err := tx.ExecContext(context.Background(), query, key, value, now); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit credentials: %w", err)
	}
	return nil
}

// InsertSyncEvent records the outcome of a poll cycle.
func (db *DB) InsertSyncEvent(event *models.SyncEvent) error {
	query := `
		INSERT INTO sync_events (started_at, duration_ms, vehicles, access_logs, error, source)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	startedAt := event.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	source := event.Trigger
	if source == "" {
		source = models.TriggerPoll
	}

	result, err := db.ExecContext(context.Background(), query,
		startedAt.Format(timeLayout),
		event.Duration.Milliseconds(),
		event.Vehicles,
		event.AccessLogs,
		nullString(event.Error),
		source,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync event: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		event.ID = id
	}

	return nil
}

// RecentSyncEvents returns the latest sync events, newest first.
func (db *DB) RecentSyncEvents(limit int) ([]models.SyncEvent, error) {
	query := `
		SELECT id, started_at, duration_ms, vehicles, access_logs, error, source
		FROM sync_events
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []models.SyncEvent
	for rows.Next() {
		var (
			ev         models.SyncEvent
			startedAt  string
			durationMs int64
			errStr     sql.NullString
		)
		if err := rows.Scan(&ev.ID, &startedAt, &durationMs, &ev.Vehicles,
			&ev.AccessLogs, &errStr, &ev.Trigger); err != nil {
			return nil, fmt.Errorf("failed to scan sync event: %w", err)
		}

		ev.StartedAt, err = time.Parse(timeLayout, startedAt)
		if err != nil {
			logger.Warn("skipping sync event with bad timestamp", "id", ev.ID, "value", startedAt)
			continue
		}
		ev.Duration = time.Duration(durationMs) * time.Millisecond
		ev.Error = errStr.String
		events = append(events, ev)
	}

	return events, rows.Err()
}

// PruneSyncEvents keeps only the newest keep rows.
func (db *DB) PruneSyncEvents(keep int) (int64, error) {
	result, err := db.ExecContext(context.Background(), `
		DELETE FROM sync_events
		WHERE id NOT IN (SELECT id FROM sync_events ORDER BY id DESC LIMIT ?)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune sync events: %w", err)
	}
	return result.RowsAffected()
}

// nullString returns a sql.NullString from a string.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
