//go:build e2e

package e2e

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	msql "toggl-sync/internal/adapter/mysql"
	"toggl-sync/internal/migrate"
	"toggl-sync/internal/ports"
	"toggl-sync/internal/queue"
	"toggl-sync/internal/usecase"
	"toggl-sync/internal/wire"
)

// fakeToggl serves canned wire responses so the e2e test exercises
// normalization and the MySQL sink without a live account.
type fakeToggl struct {
	entries  []wire.TimeEntry
	projects []wire.Project
}

func (f fakeToggl) Workspaces(ctx context.Context) ([]wire.Workspace, error) {
	return []wire.Workspace{{ID: 456, Name: "Test"}}, nil
}
func (f fakeToggl) Me(ctx context.Context) (wire.User, error) { return wire.User{ID: 1}, nil }
func (f fakeToggl) TimeEntries(ctx context.Context, start, end time.Time) ([]wire.TimeEntry, error) {
	return f.entries, nil
}
func (f fakeToggl) CurrentTimeEntry(ctx context.Context) (*wire.TimeEntry, error) { return nil, nil }
func (f fakeToggl) CreateTimeEntry(ctx context.Context, wid int64, req wire.TimeEntryRequest) (wire.TimeEntry, error) {
	return wire.TimeEntry{}, nil
}
func (f fakeToggl) UpdateTimeEntry(ctx context.Context, wid, id int64, req wire.TimeEntryRequest) (wire.TimeEntry, error) {
	return wire.TimeEntry{}, nil
}
func (f fakeToggl) StopTimeEntry(ctx context.Context, wid, id int64) (wire.TimeEntry, error) {
	return wire.TimeEntry{}, nil
}
func (f fakeToggl) DeleteTimeEntry(ctx context.Context, wid, id int64) error { return nil }
func (f fakeToggl) Projects(ctx context.Context, wid int64) ([]wire.Project, error) {
	return f.projects, nil
}
func (f fakeToggl) CreateProject(ctx context.Context, wid int64, req wire.ProjectRequest) (wire.Project, error) {
	return wire.Project{}, nil
}
func (f fakeToggl) Clients(ctx context.Context, wid int64) ([]wire.Client, error) { return nil, nil }
func (f fakeToggl) Tags(ctx context.Context, wid int64) ([]wire.Tag, error)       { return nil, nil }
func (f fakeToggl) SummaryReport(ctx context.Context, wid int64, q wire.ReportQuery) (wire.SummaryReport, error) {
	return wire.SummaryReport{}, nil
}
func (f fakeToggl) DetailedReport(ctx context.Context, wid int64, q wire.ReportQuery) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

func TestSnapshotToMySQL_UpsertsEntries(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8.0",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_DATABASE":      "testdb",
			"MYSQL_ROOT_PASSWORD": "secret",
			"MYSQL_USER":          "test",
			"MYSQL_PASSWORD":      "pass",
		},
		WaitingFor: wait.ForListeningPort("3306/tcp").WithStartupTimeout(90 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start mysql container: %v", err)
	}
	t.Cleanup(func() { _ = mysqlC.Terminate(context.Background()) })

	host, err := mysqlC.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := mysqlC.MappedPort(ctx, "3306/tcp")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&multiStatements=true", "test", "pass", host, port.Port(), "testdb")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := migrate.Run(ctx, dsn, logger); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sink, err := msql.NewStore(ctx, dsn, logger)
	if err != nil {
		t.Fatalf("mysql store: %v", err)
	}
	t.Cleanup(func() { _ = sink.Close() })

	// Prepare fake wire data
	start := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	stop := start.Add(90 * time.Minute)
	projectID := int64(123)
	fake := fakeToggl{
		entries: []wire.TimeEntry{
			{ID: 1, Description: "Dev work", ProjectID: &projectID, WorkspaceID: 456, UserID: 7, Tags: []string{"dev"}, TagIDs: []int64{11}, Start: start, Stop: &stop, Duration: 5400, Billable: true, At: stop},
			{ID: 2, Description: "Meeting", Wid: 456, UserID: 7, Start: start.Add(2 * time.Hour), Stop: &stop, Duration: 3600, At: stop},
		},
		projects: []wire.Project{
			{ID: 123, WorkspaceID: 456, Name: "Platform", Active: true, Color: "#abc", At: stop},
			{ID: 124, WorkspaceID: 456, Name: "Retired", Active: false, At: stop},
		},
	}

	fc := &usecase.Facade{
		Log:      logger,
		Settings: staticSettings("456"),
		Reports:  queue.New(nil),
		Sink:     sink,
		NewAPI:   func(string) ports.TogglAPI { return fake },
	}
	if err := fc.SetToken(ctx, "token"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if err := fc.Snapshot(ctx, start.Add(-time.Hour), start.Add(4*time.Hour)); err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	// Verify rows
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("sql open: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM toggl_time_entries").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 entry rows, got %d", count)
	}
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM toggl_projects").Scan(&count); err != nil {
		t.Fatalf("project count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 project row (inactive filtered), got %d", count)
	}

	// Run again to assert idempotency (upsert)
	if err := fc.Snapshot(ctx, start.Add(-time.Hour), start.Add(4*time.Hour)); err != nil {
		t.Fatalf("snapshot 2: %v", err)
	}
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM toggl_time_entries").Scan(&count); err != nil {
		t.Fatalf("count 2: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 entry rows after upsert, got %d", count)
	}
}

type staticSettings string

func (s staticSettings) WorkspaceID() string { return string(s) }
