// Package usecase holds the synchronization facade: the single entry point
// the rest of the application calls for Toggl data. It owns the wire client,
// routes burst-prone report fetches through the FIFO lane, and performs
// every wire-to-domain normalization.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"toggl-sync/internal/adapter/toggl"
	"toggl-sync/internal/domain"
	"toggl-sync/internal/ports"
	"toggl-sync/internal/queue"
	"toggl-sync/internal/wire"
)

// ErrNotInitialized is returned when an operation runs before SetToken has
// completed successfully.
var ErrNotInitialized = errors.New("usecase: not initialized, call SetToken first")

const dateOnly = "2006-01-02"

// recentDays is the window of the recent-entries fold, inclusive of today.
const recentDays = 9

// Operation names used for logging and the failure-policy table.
const (
	opWorkspaces     = "workspaces"
	opClients        = "clients"
	opProjects       = "projects"
	opTags           = "tags"
	opRecentEntries  = "recent time entries"
	opDailySummary   = "daily summary"
	opSummary        = "summary report"
	opTimeChart      = "summary time chart"
	opDetailedReport = "detailed report"
	opStartTimer     = "start timer"
	opStopTimer      = "stop timer"
	opCurrentTimer   = "current timer"
	opUpdateEntry    = "update time entry"
	opDeleteEntry    = "delete time entry"
	opCreateProject  = "create project"
	opCurrentUser    = "current user"
	opConnect        = "connect"
	opSnapshot       = "snapshot"
)

// failurePolicy declares what an operation does when its wire call fails.
type failurePolicy int

const (
	// propagate logs once, notifies the user once, and returns the error.
	propagate failurePolicy = iota
	// recoverToEmpty logs once and recovers to an empty result, with no
	// notification. Reserved for operations feeding passive displays.
	recoverToEmpty
)

// failurePolicies lists the non-default operations. Everything absent here
// propagates.
var failurePolicies = map[string]failurePolicy{
	opDailySummary: recoverToEmpty,
}

// Facade coordinates the wire client, the report lane, and normalization.
//
// SetToken must complete before any other operation is invoked; the facade
// spawns no goroutines and takes no locks, so the holder is responsible for
// not racing initialization against use. The active workspace id is re-read
// from Settings on every call, never cached.
type Facade struct {
	Log      *slog.Logger
	Settings ports.Settings
	Notify   ports.Notifier
	Reports  *queue.FIFO
	Sink     ports.Snapshot // optional, enables Snapshot

	// SerializeSummary routes summary fetches (and everything built on
	// them) through the report lane as well as detailed fetches.
	SerializeSummary bool

	// NewAPI builds the wire client for SetToken. Nil means the production
	// Toggl client.
	NewAPI func(token string) ports.TogglAPI

	// Now is the clock used for timer starts and window math. Nil means
	// time.Now.
	Now func() time.Time

	api ports.TogglAPI
}

// SetToken constructs the wire client for token and probes connectivity
// with a workspace listing. On probe failure the facade stays unusable and
// SetToken may be retried.
func (f *Facade) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("usecase: api token is required")
	}
	build := f.NewAPI
	if build == nil {
		build = func(token string) ports.TogglAPI {
			return toggl.NewClient("", "", token, f.Log)
		}
	}
	api := build(token)
	if _, err := api.Workspaces(ctx); err != nil {
		return f.fail(opConnect, fmt.Errorf("connectivity probe failed: %w", err))
	}
	f.api = api
	return nil
}

// Workspaces lists the workspaces visible to the token. Ids are re-encoded
// as decimal strings; consumers treat them as opaque selection keys.
func (f *Facade) Workspaces(ctx context.Context) ([]domain.Workspace, error) {
	api, err := f.ready()
	if err != nil {
		return nil, err
	}
	raw, err := api.Workspaces(ctx)
	if err != nil {
		return nil, f.fail(opWorkspaces, err)
	}
	out := make([]domain.Workspace, 0, len(raw))
	for _, w := range raw {
		out = append(out, domain.Workspace{ID: strconv.FormatInt(w.ID, 10), Name: w.Name})
	}
	return out, nil
}

// Clients lists clients in the active workspace, back-filling the workspace
// id when the response omits or aliases it.
func (f *Facade) Clients(ctx context.Context) ([]domain.Client, error) {
	api, wid, err := f.scoped()
	if err != nil {
		return nil, err
	}
	raw, err := api.Clients(ctx, wid)
	if err != nil {
		return nil, f.fail(opClients, err)
	}
	out := make([]domain.Client, 0, len(raw))
	for _, c := range raw {
		out = append(out, normalizeClient(c, wid))
	}
	return out, nil
}

// Projects lists the active projects of the active workspace. Inactive
// projects are never surfaced.
func (f *Facade) Projects(ctx context.Context) ([]domain.Project, error) {
	api, wid, err := f.scoped()
	if err != nil {
		return nil, err
	}
	raw, err := api.Projects(ctx, wid)
	if err != nil {
		return nil, f.fail(opProjects, err)
	}
	out := make([]domain.Project, 0, len(raw))
	for _, p := range raw {
		if !p.Active {
			continue
		}
		out = append(out, normalizeProject(p, wid))
	}
	return out, nil
}

// Tags lists tags in the active workspace.
func (f *Facade) Tags(ctx context.Context) ([]domain.Tag, error) {
	api, wid, err := f.scoped()
	if err != nil {
		return nil, err
	}
	raw, err := api.Tags(ctx, wid)
	if err != nil {
		return nil, f.fail(opTags, err)
	}
	out := make([]domain.Tag, 0, len(raw))
	for _, t := range raw {
		out = append(out, normalizeTag(t, wid))
	}
	return out, nil
}

// RecentTimeEntries fetches the last nine days of entries (inclusive of
// today) and folds entries sharing (user, project, description) into
// grouped "recent timer" aggregates.
func (f *Facade) RecentTimeEntries(ctx context.Context) ([]domain.GroupedEntry, error) {
	api, err := f.ready()
	if err != nil {
		return nil, err
	}
	end := f.now()
	start := end.AddDate(0, 0, -(recentDays - 1))
	raw, err := api.TimeEntries(ctx, start, end)
	if err != nil {
		return nil, f.fail(opRecentEntries, err)
	}
	return groupEntries(raw), nil
}

// DailySummary fetches the summary for the current calendar day. It is
// best-effort: failures are logged and recovered to an empty result, since
// this feeds a passive status display with nothing better to show.
func (f *Facade) DailySummary(ctx context.Context) ([]domain.SummaryGroup, error) {
	api, wid, err := f.scoped()
	if err != nil {
		return nil, err
	}
	today := f.now().Format(dateOnly)
	raw, err := f.summaryReport(ctx, api, wid, wire.ReportQuery{StartDate: today, EndDate: today})
	if err != nil {
		if ferr := f.fail(opDailySummary, err); ferr != nil {
			return nil, ferr
		}
		return []domain.SummaryGroup{}, nil
	}
	return normalizeSummary(raw).Groups, nil
}

// Summary fetches a summary report for the given options.
func (f *Facade) Summary(ctx context.Context, opts ReportOptions) (domain.SummaryReport, error) {
	api, wid, err := f.scoped()
	if err != nil {
		return domain.SummaryReport{}, err
	}
	raw, err := f.summaryReport(ctx, api, wid, opts.query())
	if err != nil {
		return domain.SummaryReport{}, f.fail(opSummary, err)
	}
	return normalizeSummary(raw), nil
}

// SummaryTimeChart fetches a summary report and annotates it with the chart
// resolution derived from the requested span. Unlike DailySummary this path
// propagates failures: chart consumers have no fallback rendering.
func (f *Facade) SummaryTimeChart(ctx context.Context, opts ReportOptions) (domain.TimeChart, error) {
	api, wid, err := f.scoped()
	if err != nil {
		return domain.TimeChart{}, err
	}
	raw, err := f.summaryReport(ctx, api, wid, opts.query())
	if err != nil {
		return domain.TimeChart{}, f.fail(opTimeChart, err)
	}
	return domain.TimeChart{
		SummaryReport: normalizeSummary(raw),
		Resolution:    chartResolution(opts.Start, opts.End),
	}, nil
}

// DetailedReport fetches the paginated detailed report through the FIFO
// lane and flattens whichever response envelope arrives.
func (f *Facade) DetailedReport(ctx context.Context, opts ReportOptions) ([]domain.DetailedReportItem, error) {
	api, wid, err := f.scoped()
	if err != nil {
		return nil, err
	}
	fetch := api.DetailedReport
	raw, err := func() ([]byte, error) {
		if f.Reports != nil {
			return queue.Do(f.Reports, ctx, func(ctx context.Context) ([]byte, error) {
				return fetch(ctx, wid, opts.query())
			})
		}
		return fetch(ctx, wid, opts.query())
	}()
	if err != nil {
		return nil, f.fail(opDetailedReport, err)
	}
	return normalizeDetailed(decodeDetailed(raw)), nil
}

// StartTimer creates a running entry from the supplied template. The
// running state is encoded as duration = -now in unix seconds with a null
// stop, per the remote convention. Fields the response does not echo are
// preserved from the template.
func (f *Facade) StartTimer(ctx context.Context, entry domain.TimeEntry) (domain.TimeEntry, error) {
	api, wid, err := f.scoped()
	if err != nil {
		return domain.TimeEntry{}, err
	}
	now := f.now()
	req := wire.TimeEntryRequest{
		WorkspaceID: wid,
		Description: entry.Description,
		ProjectID:   entry.ProjectID,
		TagIDs:      entry.TagIDs,
		Tags:        entry.Tags,
		Start:       now.UTC().Format(time.RFC3339),
		Stop:        nil,
		Duration:    -now.Unix(),
		Billable:    entry.Billable,
		CreatedWith: toggl.Product,
	}
	raw, err := api.CreateTimeEntry(ctx, wid, req)
	if err != nil {
		return domain.TimeEntry{}, f.fail(opStartTimer, err)
	}
	return mergeTemplate(normalizeTimeEntry(raw, wid), entry), nil
}

// StopTimer stops the entry's running timer. The workspace is resolved from
// settings, not from the entry: the configured workspace is authoritative.
func (f *Facade) StopTimer(ctx context.Context, entry domain.TimeEntry) (domain.TimeEntry, error) {
	api, wid, err := f.scoped()
	if err != nil {
		return domain.TimeEntry{}, err
	}
	raw, err := api.StopTimeEntry(ctx, wid, entry.ID)
	if err != nil {
		return domain.TimeEntry{}, f.fail(opStopTimer, err)
	}
	return mergeTemplate(normalizeTimeEntry(raw, wid), entry), nil
}

// CurrentTimer returns the running entry, or nil when nothing runs.
func (f *Facade) CurrentTimer(ctx context.Context) (*domain.TimeEntry, error) {
	api, err := f.ready()
	if err != nil {
		return nil, err
	}
	raw, err := api.CurrentTimeEntry(ctx)
	if err != nil {
		return nil, f.fail(opCurrentTimer, err)
	}
	if raw == nil {
		return nil, nil
	}
	wid, _ := f.workspace()
	entry := normalizeTimeEntry(*raw, wid)
	return &entry, nil
}

// UpdateTimeEntry pushes the entry's current field values to the service
// and returns the fresh snapshot.
func (f *Facade) UpdateTimeEntry(ctx context.Context, entry domain.TimeEntry) (domain.TimeEntry, error) {
	api, wid, err := f.scoped()
	if err != nil {
		return domain.TimeEntry{}, err
	}
	req := wire.TimeEntryRequest{
		WorkspaceID: wid,
		Description: entry.Description,
		ProjectID:   entry.ProjectID,
		TagIDs:      entry.TagIDs,
		Tags:        entry.Tags,
		Start:       entry.Start.UTC().Format(time.RFC3339),
		Duration:    entry.DurationSec,
		Billable:    entry.Billable,
	}
	if entry.Stop != nil {
		s := entry.Stop.UTC().Format(time.RFC3339)
		req.Stop = &s
	}
	raw, err := api.UpdateTimeEntry(ctx, wid, entry.ID, req)
	if err != nil {
		return domain.TimeEntry{}, f.fail(opUpdateEntry, err)
	}
	return mergeTemplate(normalizeTimeEntry(raw, wid), entry), nil
}

// DeleteTimeEntry deletes the entry in the active workspace.
func (f *Facade) DeleteTimeEntry(ctx context.Context, entryID int64) error {
	api, wid, err := f.scoped()
	if err != nil {
		return err
	}
	if err := api.DeleteTimeEntry(ctx, wid, entryID); err != nil {
		return f.fail(opDeleteEntry, err)
	}
	return nil
}

// CreateProject creates an active project in the active workspace.
func (f *Facade) CreateProject(ctx context.Context, name, color string, clientID *int64) (domain.Project, error) {
	api, wid, err := f.scoped()
	if err != nil {
		return domain.Project{}, err
	}
	raw, err := api.CreateProject(ctx, wid, wire.ProjectRequest{
		Name:     name,
		Active:   true,
		Color:    color,
		ClientID: clientID,
	})
	if err != nil {
		return domain.Project{}, f.fail(opCreateProject, err)
	}
	return normalizeProject(raw, wid), nil
}

// CurrentUser returns the authenticated account.
func (f *Facade) CurrentUser(ctx context.Context) (domain.User, error) {
	api, err := f.ready()
	if err != nil {
		return domain.User{}, err
	}
	raw, err := api.Me(ctx)
	if err != nil {
		return domain.User{}, f.fail(opCurrentUser, err)
	}
	return domain.User{
		ID:                 raw.ID,
		Email:              raw.Email,
		Fullname:           raw.Fullname,
		DefaultWorkspaceID: raw.DefaultWorkspaceID,
	}, nil
}

// ReportOptions selects the range and filters of a report fetch.
type ReportOptions struct {
	Start      time.Time
	End        time.Time
	ProjectIDs []int64
	ClientIDs  []int64
	TagIDs     []int64
}

func (o ReportOptions) query() wire.ReportQuery {
	return wire.ReportQuery{
		StartDate:  o.Start.Format(dateOnly),
		EndDate:    o.End.Format(dateOnly),
		ProjectIDs: o.ProjectIDs,
		ClientIDs:  o.ClientIDs,
		TagIDs:     o.TagIDs,
	}
}

// summaryReport fetches a summary, through the report lane when configured.
func (f *Facade) summaryReport(ctx context.Context, api ports.TogglAPI, wid int64, q wire.ReportQuery) (wire.SummaryReport, error) {
	if f.SerializeSummary && f.Reports != nil {
		return queue.Do(f.Reports, ctx, func(ctx context.Context) (wire.SummaryReport, error) {
			return api.SummaryReport(ctx, wid, q)
		})
	}
	return api.SummaryReport(ctx, wid, q)
}

// fail is the single chokepoint for surfacing wire failures: one log line,
// and for propagating operations one user notification. No other component
// may notify the user about a remote-call failure.
func (f *Facade) fail(op string, err error) error {
	f.Log.Error("toggl operation failed",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	if failurePolicies[op] == recoverToEmpty {
		return nil
	}
	if f.Notify != nil {
		f.Notify.Notify(fmt.Sprintf("Toggl %s failed: %v", op, err))
	}
	return err
}

func (f *Facade) ready() (ports.TogglAPI, error) {
	if f.api == nil {
		return nil, ErrNotInitialized
	}
	return f.api, nil
}

// scoped returns the wire client together with the active workspace id,
// parsed fresh from settings.
func (f *Facade) scoped() (ports.TogglAPI, int64, error) {
	api, err := f.ready()
	if err != nil {
		return nil, 0, err
	}
	wid, err := f.workspace()
	if err != nil {
		return nil, 0, err
	}
	return api, wid, nil
}

func (f *Facade) workspace() (int64, error) {
	raw := f.Settings.WorkspaceID()
	if raw == "" {
		return 0, errors.New("usecase: no workspace configured")
	}
	wid, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("usecase: invalid workspace id %q", raw)
	}
	return wid, nil
}

func (f *Facade) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// mergeTemplate back-fills fields the remote response did not echo from the
// caller-supplied template entry.
func mergeTemplate(got, template domain.TimeEntry) domain.TimeEntry {
	if got.Description == "" {
		got.Description = template.Description
	}
	if got.ProjectID == nil {
		got.ProjectID = template.ProjectID
	}
	if len(got.TagIDs) == 0 {
		got.TagIDs = template.TagIDs
	}
	if len(got.Tags) == 0 {
		got.Tags = template.Tags
	}
	return got
}
