// Package app wires configuration, adapters and the facade together.
package app

import (
	"context"
	"log/slog"
	"time"

	msql "toggl-sync/internal/adapter/mysql"
	tg "toggl-sync/internal/adapter/toggl"
	"toggl-sync/internal/config"
	"toggl-sync/internal/migrate"
	"toggl-sync/internal/ports"
	"toggl-sync/internal/queue"
	"toggl-sync/internal/usecase"
)

// App owns the initialized facade and its collaborators.
type App struct {
	log *slog.Logger
	fc  *usecase.Facade
}

// New builds the facade from configuration, optionally wires the MySQL
// snapshot sink, and initializes the Toggl connection (connectivity probe
// included). A probe failure fails construction.
func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	fc := &usecase.Facade{
		Log:              log,
		Settings:         cfg,
		Notify:           logNotifier{log: log},
		Reports:          queue.NewLimited(cfg.Queue.RPS, cfg.Queue.Burst),
		SerializeSummary: cfg.Queue.SerializeSummary,
		NewAPI: func(token string) ports.TogglAPI {
			return tg.NewClient(cfg.Toggl.EntityBase, cfg.Toggl.ReportsBase, token, log)
		},
	}

	if cfg.MySQL.DSN != "" {
		// Run migrations before opening the sink for use.
		if err := migrate.Run(ctx, cfg.MySQL.DSN, log); err != nil {
			return nil, err
		}
		sink, err := msql.NewStore(ctx, cfg.MySQL.DSN, log)
		if err != nil {
			return nil, err
		}
		fc.Sink = sink
	}

	if err := fc.SetToken(ctx, cfg.Toggl.APIToken); err != nil {
		return nil, err
	}
	return &App{log: log, fc: fc}, nil
}

// Facade exposes the synchronization facade to the host.
func (a *App) Facade() *usecase.Facade { return a.fc }

// SnapshotOnce runs a single snapshot over [from, to].
func (a *App) SnapshotOnce(ctx context.Context, from, to time.Time) error {
	return a.fc.Snapshot(ctx, from, to)
}

// logNotifier is the default notification capability: user-facing error
// text lands in the log under a distinct message. Hosts with a real UI
// inject their own ports.Notifier instead.
type logNotifier struct {
	log *slog.Logger
}

func (n logNotifier) Notify(msg string) {
	n.log.Warn("user notification", slog.String("text", msg))
}
