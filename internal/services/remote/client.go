// Package remote is the HTTP client for the ParkControl access-control API.
package remote

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/apperr"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/logger"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/models"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/timeutil"
)

// API paths.
const (
	loginPath     = "/api/auth/login"
	vehiclesPath  = "/api/vehicles"
	accessPath    = "/api/access"
	adminTestPath = "/api/admin/test"
)

// ErrUnauthorized is wrapped when the service rejects the stored token.
var ErrUnauthorized = errors.New("unauthorized")

// TokenSource supplies the stored credential token for each request.
type TokenSource interface {
	GetToken() (string, error)
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token string
	Role  models.Role
}

// Client talks to the access-control service.
type Client struct {
	httpClient *http.Client
	tokens     TokenSource
	location   *time.Location
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLocation sets the zone used for timestamps without an offset.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) { c.location = loc }
}

// New creates a client for baseURL.
func New(baseURL string, timeout time.Duration, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		location:   time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Role string `json:"role"`
}

type vehicleDTO struct {
	LicensePlate string `json:"licensePlate"`
	EntryTime    string `json:"entryTime"`
	ID           int64  `json:"id"`
}

type accessLogDTO struct {
	LicensePlate string `json:"licensePlate"`
	AccessTime   string `json:"accessTime"`
	ID           int64  `json:"id"`
}

type addVehicleRequest struct {
	LicensePlate string `json:"license_plate"`
}

// EncodeToken builds the Basic credential the service expects.
func EncodeToken(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}

// Login verifies the credentials and returns the token and role to store.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	const op = "login"

	if strings.TrimSpace(username) == "" || password == "" {
		return nil, apperr.New(apperr.AuthFailure, op, errors.New("username and password are required"))
	}

	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, apperr.New(apperr.AuthFailure, op, err)
	}

	resp, err := c.do(ctx, http.MethodPost, loginPath, "", body)
	if err != nil {
		return nil, apperr.New(apperr.AuthFailure, op, err)
	}

	var lr loginResponse
	if len(resp) > 0 {
		if err := json.Unmarshal(resp, &lr); err != nil {
			return nil, apperr.New(apperr.AuthFailure, op, fmt.Errorf("failed to parse login response: %w", err))
		}
	}

	return &LoginResult{
		Token: EncodeToken(username, password),
		Role:  models.ParseRole(lr.Role),
	}, nil
}

// CheckAdmin reports whether token grants admin access.
func (c *Client) CheckAdmin(ctx context.Context, token string) (bool, error) {
	_, err := c.do(ctx, http.MethodGet, adminTestPath, token, nil)
	if err == nil {
		return true, nil
	}
	var se *StatusError
	if errors.As(err, &se) && (se.Code == http.StatusForbidden || se.Code == http.StatusUnauthorized) {
		return false, nil
	}
	return false, apperr.New(apperr.FetchFailure, "check admin", err)
}

// FetchVehicles returns the registered vehicles.
func (c *Client) FetchVehicles(ctx context.Context) ([]models.Vehicle, error) {
	const op = "fetch vehicles"

	body, err := c.authorized(ctx, http.MethodGet, vehiclesPath, nil)
	if err != nil {
		return nil, apperr.New(apperr.FetchFailure, op, err)
	}

	var dtos []vehicleDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, apperr.New(apperr.FetchFailure, op, fmt.Errorf("failed to parse vehicles: %w", err))
	}

	vehicles := make([]models.Vehicle, 0, len(dtos))
	for _, d := range dtos {
		v := models.Vehicle{ID: d.ID, LicensePlate: d.LicensePlate}
		if d.EntryTime != "" {
			t, err := timeutil.ParseTimestamp(d.EntryTime, c.location)
			if err != nil {
				logger.Debug("vehicle entry time not parsed", "id", d.ID, "value", d.EntryTime)
			} else {
				v.EntryTime = t
			}
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, nil
}

// FetchAccessLogs returns the access log. Entries with an unreadable
// timestamp are dropped.
func (c *Client) FetchAccessLogs(ctx context.Context) ([]models.AccessLogEntry, error) {
	const op = "fetch access logs"

	body, err := c.authorized(ctx, http.MethodGet, accessPath, nil)
	if err != nil {
		return nil, apperr.New(apperr.FetchFailure, op, err)
	}

	var dtos []accessLogDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, apperr.New(apperr.FetchFailure, op, fmt.Errorf("failed to parse access logs: %w", err))
	}

	entries := make([]models.AccessLogEntry, 0, len(dtos))
	for _, d := range dtos {
		t, err := timeutil.ParseTimestamp(d.AccessTime, c.location)
		if err != nil {
			logger.Warn("dropping access log entry", "id", d.ID, "error", err)
			continue
		}
		entries = append(entries, models.AccessLogEntry{ID: d.ID, LicensePlate: d.LicensePlate, AccessTime: t})
	}
	return entries, nil
}

// AddVehicle registers a plate.
func (c *Client) AddVehicle(ctx context.Context, plate string) error {
	const op = "add vehicle"

	plate = strings.TrimSpace(plate)
	if plate == "" {
		return apperr.New(apperr.MutationFailure, op, errors.New("license plate is required"))
	}

	body, err := json.Marshal(addVehicleRequest{LicensePlate: plate})
	if err != nil {
		return apperr.New(apperr.MutationFailure, op, err)
	}

	if _, err := c.authorized(ctx, http.MethodPost, vehiclesPath, body); err != nil {
		return apperr.New(apperr.MutationFailure, op, err)
	}
	return nil
}

// DeleteVehicle removes a vehicle by id.
func (c *Client) DeleteVehicle(ctx context.Context, id int64) error {
	path := vehiclesPath + "/" + strconv.FormatInt(id, 10)
	if _, err := c.authorized(ctx, http.MethodDelete, path, nil); err != nil {
		return apperr.New(apperr.MutationFailure, "delete vehicle", err)
	}
	return nil
}

func (c *Client) authorized(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	token, err := c.tokens.GetToken()
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}
	if token == "" {
		return nil, ErrUnauthorized
	}
	return c.do(ctx, method, path, token, body)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Body string
	Code int
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Unwrap maps 401 responses onto ErrUnauthorized.
func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Basic "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(strings.TrimSpace(string(respBody)), 200)}
	}

	logger.Debug("request complete", "method", method, "path", path,
		"status", resp.StatusCode, "request_id", req.Header.Get("X-Request-ID"))
	return respBody, nil
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
