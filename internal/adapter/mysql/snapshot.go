// Package mysql implements ports.Snapshot against a MySQL schema managed by
// internal/migrate. The sink is optional: it exists for hosts that want a
// queryable local copy of fetched data, not for offline operation.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/goccy/go-json"

	"toggl-sync/internal/domain"
)

// Store writes normalized snapshots into MySQL.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// NewStore opens a MySQL connection using the provided DSN.
// Example DSN: user:pass@tcp(host:3306)/dbname?parseTime=true&multiStatements=true
func NewStore(ctx context.Context, dsn string, log *slog.Logger) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("mysql: DSN is required")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, log: log}, nil
}

// SaveTimeEntries upserts entries keyed by their Toggl id.
func (s *Store) SaveTimeEntries(ctx context.Context, entries []domain.TimeEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	const q = `
INSERT INTO toggl_time_entries
  (id, workspace_id, project_id, user_id, description, tag_ids, tags, ` + "`start`, `stop`" + `, duration_sec, billable, ` + "`at`" + `)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  workspace_id=VALUES(workspace_id),
  project_id=VALUES(project_id),
  user_id=VALUES(user_id),
  description=VALUES(description),
  tag_ids=VALUES(tag_ids),
  tags=VALUES(tags),
  ` + "`start`=VALUES(`start`), `stop`=VALUES(`stop`)" + `,
  duration_sec=VALUES(duration_sec),
  billable=VALUES(billable),
  ` + "`at`=VALUES(`at`)" + `;
`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		tagIDs, _ := json.Marshal(e.TagIDs)
		tags, _ := json.Marshal(e.Tags)
		var project any
		if e.ProjectID != nil {
			project = *e.ProjectID
		}
		var stop any
		if e.Stop != nil {
			stop = e.Stop.UTC()
		}
		if _, err := stmt.ExecContext(
			ctx,
			e.ID,
			e.WorkspaceID,
			project,
			e.UserID,
			e.Description,
			string(tagIDs),
			string(tags),
			e.Start.UTC(),
			stop,
			e.DurationSec,
			e.Billable,
			e.At.UTC(),
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.log.Info("mysql snapshot upserted entries", slog.Int("count", len(entries)))
	return nil
}

// SaveProjects upserts projects keyed by their Toggl id.
func (s *Store) SaveProjects(ctx context.Context, projects []domain.Project) error {
	if len(projects) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	const q = `
INSERT INTO toggl_projects
  (id, workspace_id, client_id, name, active, color, actual_hours, rate, ` + "`at`" + `)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  workspace_id=VALUES(workspace_id),
  client_id=VALUES(client_id),
  name=VALUES(name),
  active=VALUES(active),
  color=VALUES(color),
  actual_hours=VALUES(actual_hours),
  rate=VALUES(rate),
  ` + "`at`=VALUES(`at`)" + `;
`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, p := range projects {
		var client any
		if p.ClientID != nil {
			client = *p.ClientID
		}
		var rate any
		if p.Rate != nil {
			rate = *p.Rate
		}
		if _, err := stmt.ExecContext(
			ctx,
			p.ID,
			p.WorkspaceID,
			client,
			p.Name,
			p.Active,
			p.Color,
			p.ActualHours,
			rate,
			p.At.UTC(),
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.log.Info("mysql snapshot upserted projects", slog.Int("count", len(projects)))
	return nil
}

// Close closes the underlying DB.
func (s *Store) Close() error { return s.db.Close() }
