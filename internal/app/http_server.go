package app

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"toggl-sync/internal/domain"
	"toggl-sync/internal/usecase"
)

// HTTPServer returns a configured http.Server exposing the facade to the
// host over a small JSON surface. Call ListenAndServe on the returned server
// in a goroutine and Shutdown it on exit.
func (a *App) HTTPServer(addr string) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
		u, err := a.fc.CurrentUser(r.Context())
		respond(w, u, err)
	})
	mux.HandleFunc("GET /workspaces", func(w http.ResponseWriter, r *http.Request) {
		ws, err := a.fc.Workspaces(r.Context())
		respond(w, ws, err)
	})
	mux.HandleFunc("GET /projects", func(w http.ResponseWriter, r *http.Request) {
		ps, err := a.fc.Projects(r.Context())
		respond(w, ps, err)
	})
	mux.HandleFunc("GET /clients", func(w http.ResponseWriter, r *http.Request) {
		cs, err := a.fc.Clients(r.Context())
		respond(w, cs, err)
	})
	mux.HandleFunc("GET /tags", func(w http.ResponseWriter, r *http.Request) {
		ts, err := a.fc.Tags(r.Context())
		respond(w, ts, err)
	})
	mux.HandleFunc("GET /entries/recent", func(w http.ResponseWriter, r *http.Request) {
		gs, err := a.fc.RecentTimeEntries(r.Context())
		respond(w, gs, err)
	})

	mux.HandleFunc("GET /timer", func(w http.ResponseWriter, r *http.Request) {
		cur, err := a.fc.CurrentTimer(r.Context())
		respond(w, cur, err)
	})
	mux.HandleFunc("POST /timer/start", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Description string   `json:"description"`
			ProjectID   *int64   `json:"project_id"`
			TagIDs      []int64  `json:"tag_ids"`
			Tags        []string `json:"tags"`
			Billable    bool     `json:"billable"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		entry, err := a.fc.StartTimer(r.Context(), domain.TimeEntry{
			Description: body.Description,
			ProjectID:   body.ProjectID,
			TagIDs:      body.TagIDs,
			Tags:        body.Tags,
			Billable:    body.Billable,
		})
		respond(w, entry, err)
	})
	mux.HandleFunc("POST /timer/stop", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ID int64 `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ID == 0 {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		entry, err := a.fc.StopTimer(r.Context(), domain.TimeEntry{ID: body.ID})
		respond(w, entry, err)
	})

	mux.HandleFunc("GET /summary/daily", func(w http.ResponseWriter, r *http.Request) {
		groups, err := a.fc.DailySummary(r.Context())
		respond(w, groups, err)
	})
	mux.HandleFunc("GET /reports/summary", func(w http.ResponseWriter, r *http.Request) {
		opts, ok := reportOptions(w, r)
		if !ok {
			return
		}
		rep, err := a.fc.Summary(r.Context(), opts)
		respond(w, rep, err)
	})
	mux.HandleFunc("GET /reports/chart", func(w http.ResponseWriter, r *http.Request) {
		opts, ok := reportOptions(w, r)
		if !ok {
			return
		}
		chart, err := a.fc.SummaryTimeChart(r.Context(), opts)
		respond(w, chart, err)
	})
	mux.HandleFunc("GET /reports/detailed", func(w http.ResponseWriter, r *http.Request) {
		opts, ok := reportOptions(w, r)
		if !ok {
			return
		}
		items, err := a.fc.DetailedReport(r.Context(), opts)
		respond(w, items, err)
	})

	// /snapshot?from=...&to=...
	// from/to accept RFC3339 or YYYY-MM-DD. If omitted, defaults to [now-24h, now].
	mux.HandleFunc("POST /snapshot", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		now := time.Now().UTC()
		toTime := parseBoundary(q.Get("to"), now, true)
		fromTime := parseBoundary(q.Get("from"), toTime.Add(-24*time.Hour), false)
		err := a.fc.Snapshot(r.Context(), fromTime, toTime)
		respond(w, map[string]string{
			"status": "ok",
			"from":   fromTime.Format(time.RFC3339),
			"to":     toTime.Format(time.RFC3339),
		}, err)
	})

	srv := &http.Server{Addr: addr, Handler: loggingMiddleware(a.log, mux)}
	a.log.Info("http server configured", slog.String("addr", addr))
	return srv
}

// respond writes v as JSON, or the error as a JSON envelope. The facade has
// already logged and notified; this is transport-level plumbing only.
func respond(w http.ResponseWriter, v any, err error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err != nil {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

func reportOptions(w http.ResponseWriter, r *http.Request) (usecase.ReportOptions, bool) {
	q := r.URL.Query()
	now := time.Now().UTC()
	end := parseBoundary(q.Get("to"), now, true)
	start := parseBoundary(q.Get("from"), end.AddDate(0, 0, -7), false)
	opts := usecase.ReportOptions{Start: start, End: end}
	for _, raw := range q["project_id"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid project_id", http.StatusBadRequest)
			return opts, false
		}
		opts.ProjectIDs = append(opts.ProjectIDs, id)
	}
	return opts, true
}

// parseBoundary parses a range boundary that may be RFC3339 or YYYY-MM-DD.
// A date-only end boundary is treated as inclusive by converting to
// next-day 00:00 UTC. Invalid input falls back to defaultVal to avoid hard
// failures on a trigger surface.
func parseBoundary(val string, defaultVal time.Time, end bool) time.Time {
	if val == "" {
		return defaultVal
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t
	}
	if d, err := time.Parse("2006-01-02", val); err == nil {
		if end {
			d = d.Add(24 * time.Hour)
		}
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}
	return defaultVal
}

// loggingMiddleware provides basic request logging.
func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.Duration("dur", time.Since(start)),
		)
	})
}
