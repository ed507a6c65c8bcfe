// Package toggl implements ports.TogglAPI against the Toggl Track entity
// API v9 and reports API v3.
package toggl

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"toggl-sync/internal/wire"
)

const (
	// DefaultEntityBase is the entity API (v9) base URL.
	DefaultEntityBase = "https://api.track.toggl.com/api/v9"
	// DefaultReportsBase is the reports API (v3) base URL.
	DefaultReportsBase = "https://api.track.toggl.com/reports/api/v3"

	// Product identifies this client in User-Agent and created_with.
	Product = "toggl-sync"

	dateFormat = "2006-01-02"
)

// HTTPError is returned for any response with status >= 400. It carries the
// status and raw body text; user-facing messaging is the caller's problem.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("toggl: unexpected status %d: %s", e.Status, e.Body)
}

// Client is a stateless per-token request layer. It performs no network
// call at construction time and carries no business logic.
type Client struct {
	entityBase  string
	reportsBase string
	apiToken    string
	http        *http.Client
	log         *slog.Logger
}

// NewClient builds a client for the given API token. Empty base URLs fall
// back to the production Toggl endpoints.
func NewClient(entityBase, reportsBase, apiToken string, log *slog.Logger) *Client {
	if entityBase == "" {
		entityBase = DefaultEntityBase
	}
	if reportsBase == "" {
		reportsBase = DefaultReportsBase
	}
	return &Client{
		entityBase:  entityBase,
		reportsBase: reportsBase,
		apiToken:    apiToken,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// do issues one authenticated request and decodes the JSON response into
// out. An empty or literal-null body leaves out untouched, which is how the
// "no running timer" response is represented. Failures are logged here, with
// method and URL, and never suppressed.
func (c *Client) do(ctx context.Context, method, base, path string, query url.Values, body, out any) error {
	if c.apiToken == "" {
		return errors.New("toggl: missing api token")
	}
	u, err := url.Parse(base)
	if err != nil {
		return err
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.apiToken + ":api_token"))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", Product)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("toggl request failed",
			slog.String("method", method),
			slog.String("url", u.String()),
			slog.String("error", err.Error()),
		)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		herr := &HTTPError{Status: resp.StatusCode, Body: string(b)}
		c.log.Error("toggl request failed",
			slog.String("method", method),
			slog.String("url", u.String()),
			slog.Int("status", resp.StatusCode),
		)
		return herr
	}
	if out == nil {
		return nil
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("toggl: decoding %s %s: %w", method, u.String(), err)
	}
	return nil
}

func (c *Client) Workspaces(ctx context.Context) ([]wire.Workspace, error) {
	var out []wire.Workspace
	err := c.do(ctx, http.MethodGet, c.entityBase, "/workspaces", nil, nil, &out)
	return out, err
}

func (c *Client) Me(ctx context.Context) (wire.User, error) {
	var out wire.User
	err := c.do(ctx, http.MethodGet, c.entityBase, "/me", nil, nil, &out)
	return out, err
}

// TimeEntries fetches entries in [start, end], both calendar days.
func (c *Client) TimeEntries(ctx context.Context, start, end time.Time) ([]wire.TimeEntry, error) {
	q := url.Values{}
	q.Set("start_date", start.Format(dateFormat))
	q.Set("end_date", end.Format(dateFormat))
	var out []wire.TimeEntry
	err := c.do(ctx, http.MethodGet, c.entityBase, "/me/time_entries", q, nil, &out)
	return out, err
}

// CurrentTimeEntry returns nil when no timer is running; the API signals
// that with an empty or null body.
func (c *Client) CurrentTimeEntry(ctx context.Context) (*wire.TimeEntry, error) {
	var out *wire.TimeEntry
	err := c.do(ctx, http.MethodGet, c.entityBase, "/me/time_entries/current", nil, nil, &out)
	return out, err
}

// timeEntryBody is the {"time_entry": {...}} envelope of create/update calls.
type timeEntryBody struct {
	TimeEntry wire.TimeEntryRequest `json:"time_entry"`
}

func (c *Client) CreateTimeEntry(ctx context.Context, workspaceID int64, req wire.TimeEntryRequest) (wire.TimeEntry, error) {
	path := fmt.Sprintf("/workspaces/%d/time_entries", workspaceID)
	var out wire.TimeEntry
	err := c.do(ctx, http.MethodPost, c.entityBase, path, nil, timeEntryBody{TimeEntry: req}, &out)
	return out, err
}

func (c *Client) UpdateTimeEntry(ctx context.Context, workspaceID, entryID int64, req wire.TimeEntryRequest) (wire.TimeEntry, error) {
	path := fmt.Sprintf("/workspaces/%d/time_entries/%d", workspaceID, entryID)
	var out wire.TimeEntry
	err := c.do(ctx, http.MethodPut, c.entityBase, path, nil, timeEntryBody{TimeEntry: req}, &out)
	return out, err
}

func (c *Client) StopTimeEntry(ctx context.Context, workspaceID, entryID int64) (wire.TimeEntry, error) {
	path := fmt.Sprintf("/workspaces/%d/time_entries/%d/stop", workspaceID, entryID)
	var out wire.TimeEntry
	err := c.do(ctx, http.MethodPatch, c.entityBase, path, nil, nil, &out)
	return out, err
}

func (c *Client) DeleteTimeEntry(ctx context.Context, workspaceID, entryID int64) error {
	path := fmt.Sprintf("/workspaces/%d/time_entries/%d", workspaceID, entryID)
	return c.do(ctx, http.MethodDelete, c.entityBase, path, nil, nil, nil)
}

// Projects lists workspace projects. A zero workspace id falls back to the
// token-scoped /me/projects listing.
func (c *Client) Projects(ctx context.Context, workspaceID int64) ([]wire.Project, error) {
	path := "/me/projects"
	if workspaceID != 0 {
		path = fmt.Sprintf("/workspaces/%d/projects", workspaceID)
	}
	var out []wire.Project
	err := c.do(ctx, http.MethodGet, c.entityBase, path, nil, nil, &out)
	return out, err
}

// projectBody is the {"project": {...}} envelope of the create-project call.
type projectBody struct {
	Project wire.ProjectRequest `json:"project"`
}

func (c *Client) CreateProject(ctx context.Context, workspaceID int64, req wire.ProjectRequest) (wire.Project, error) {
	path := fmt.Sprintf("/workspaces/%d/projects", workspaceID)
	var out wire.Project
	err := c.do(ctx, http.MethodPost, c.entityBase, path, nil, projectBody{Project: req}, &out)
	return out, err
}

func (c *Client) Clients(ctx context.Context, workspaceID int64) ([]wire.Client, error) {
	path := "/me/clients"
	if workspaceID != 0 {
		path = fmt.Sprintf("/workspaces/%d/clients", workspaceID)
	}
	var out []wire.Client
	err := c.do(ctx, http.MethodGet, c.entityBase, path, nil, nil, &out)
	return out, err
}

func (c *Client) Tags(ctx context.Context, workspaceID int64) ([]wire.Tag, error) {
	path := fmt.Sprintf("/workspaces/%d/tags", workspaceID)
	var out []wire.Tag
	err := c.do(ctx, http.MethodGet, c.entityBase, path, nil, nil, &out)
	return out, err
}

func (c *Client) SummaryReport(ctx context.Context, workspaceID int64, q wire.ReportQuery) (wire.SummaryReport, error) {
	path := fmt.Sprintf("/workspace/%d/reports/summary", workspaceID)
	var out wire.SummaryReport
	err := c.do(ctx, http.MethodPost, c.reportsBase, path, nil, q, &out)
	return out, err
}

// DetailedReport returns the raw response body. The endpoint has shipped a
// bare array, a {"data": [...]} object, and a {"results": [...]} object over
// time; the use-case layer normalizes whichever arrives.
func (c *Client) DetailedReport(ctx context.Context, workspaceID int64, q wire.ReportQuery) (json.RawMessage, error) {
	path := fmt.Sprintf("/workspace/%d/reports/detailed", workspaceID)
	var out json.RawMessage
	err := c.do(ctx, http.MethodPost, c.reportsBase, path, nil, q, &out)
	return out, err
}
