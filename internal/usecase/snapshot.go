package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Snapshot fetches the time entries in [start, end] plus the active
// projects of the active workspace and persists both to the configured
// sink. This is the consumer-held snapshot path; it is optional and only
// available when a Sink is wired.
func (f *Facade) Snapshot(ctx context.Context, start, end time.Time) error {
	if f.Sink == nil {
		return errors.New("usecase: no snapshot sink configured")
	}
	api, wid, err := f.scoped()
	if err != nil {
		return err
	}
	f.Log.Info("snapshotting toggl data", slog.Time("from", start), slog.Time("to", end))

	rawEntries, err := api.TimeEntries(ctx, start, end)
	if err != nil {
		return f.fail(opSnapshot, err)
	}
	normalized := normalizeEntries(rawEntries, wid)

	rawProjects, err := api.Projects(ctx, wid)
	if err != nil {
		return f.fail(opSnapshot, err)
	}
	projects := normalizeProjects(rawProjects, wid)

	if err := f.Sink.SaveTimeEntries(ctx, normalized); err != nil {
		return err
	}
	if err := f.Sink.SaveProjects(ctx, projects); err != nil {
		return err
	}
	f.Log.Info("snapshot completed",
		slog.Int("entries", len(normalized)),
		slog.Int("projects", len(projects)),
	)
	return nil
}
