package ports

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"toggl-sync/internal/domain"
	"toggl-sync/internal/wire"
)

// TogglAPI is the typed wire client over the Toggl entity API (v9) and
// reports API (v3). Implementations carry no business logic: they build
// authenticated requests, decode JSON, and surface non-2xx statuses as
// errors. Shape tolerance (alias fields, envelope drift) is the use-case
// layer's job.
type TogglAPI interface {
	Workspaces(ctx context.Context) ([]wire.Workspace, error)
	Me(ctx context.Context) (wire.User, error)

	TimeEntries(ctx context.Context, start, end time.Time) ([]wire.TimeEntry, error)
	CurrentTimeEntry(ctx context.Context) (*wire.TimeEntry, error)
	CreateTimeEntry(ctx context.Context, workspaceID int64, req wire.TimeEntryRequest) (wire.TimeEntry, error)
	UpdateTimeEntry(ctx context.Context, workspaceID, entryID int64, req wire.TimeEntryRequest) (wire.TimeEntry, error)
	StopTimeEntry(ctx context.Context, workspaceID, entryID int64) (wire.TimeEntry, error)
	DeleteTimeEntry(ctx context.Context, workspaceID, entryID int64) error

	Projects(ctx context.Context, workspaceID int64) ([]wire.Project, error)
	CreateProject(ctx context.Context, workspaceID int64, req wire.ProjectRequest) (wire.Project, error)
	Clients(ctx context.Context, workspaceID int64) ([]wire.Client, error)
	Tags(ctx context.Context, workspaceID int64) ([]wire.Tag, error)

	SummaryReport(ctx context.Context, workspaceID int64, q wire.ReportQuery) (wire.SummaryReport, error)
	// DetailedReport returns the undecoded response body: the reports API
	// has shipped several envelope shapes for this endpoint, and the
	// use-case layer owns the tolerance policy.
	DetailedReport(ctx context.Context, workspaceID int64, q wire.ReportQuery) (json.RawMessage, error)
}

// Settings supplies the externally managed configuration the facade must
// re-read on every call. The workspace id may change mid-session when the
// user edits settings; operations always use the latest value.
type Settings interface {
	WorkspaceID() string
}

// Notifier surfaces error text to the end user. The facade is the only
// component allowed to call it for remote-call failures.
type Notifier interface {
	Notify(msg string)
}

// Snapshot receives normalized entities and persists them to a
// consumer-held store. The interface is intentionally generic to support
// sinks other than the bundled MySQL one.
type Snapshot interface {
	SaveTimeEntries(ctx context.Context, entries []domain.TimeEntry) error
	SaveProjects(ctx context.Context, projects []domain.Project) error
}
