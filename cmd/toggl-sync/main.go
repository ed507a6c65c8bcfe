package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"

	"toggl-sync/internal/app"
	"toggl-sync/internal/config"
	"toggl-sync/internal/usecase"
)

func main() {
	// Flags
	snapshot := flag.Bool("snapshot", false, "Run a single snapshot and exit (requires MYSQL_DSN)")
	report := flag.Bool("report", false, "Fetch a summary report for [-from, -to] and print it as JSON")
	from := flag.String("from", "", "ISO8601 start time for -snapshot/-report (optional)")
	to := flag.String("to", "", "ISO8601 end time for -snapshot/-report (optional, default: now)")
	addr := flag.String("addr", "", "Listen address for the HTTP server (overrides HTTP_ADDR)")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	flag.Parse()

	// Logger
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// App (includes the Toggl connectivity probe)
	application, err := app.New(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to initialize app", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *snapshot {
		now := time.Now().UTC()
		toTime := parseEnd(*to, now, logger)
		fromTime := parseStart(*from, toTime.Add(-24*time.Hour), logger)
		if err := application.SnapshotOnce(ctx, fromTime, toTime); err != nil {
			logger.Error("snapshot failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("snapshot completed")
		return
	}

	if *report {
		now := time.Now().UTC()
		toTime := parseEnd(*to, now, logger)
		fromTime := parseStart(*from, toTime.AddDate(0, 0, -7), logger)
		rep, err := application.Facade().Summary(ctx, usecase.ReportOptions{Start: fromTime, End: toTime})
		if err != nil {
			// The facade has already logged the failure.
			os.Exit(1)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			logger.Error("failed to encode report", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	// Serve mode (default)
	listen := cfg.HTTP.Addr
	if *addr != "" {
		listen = *addr
	}
	srv := application.HTTPServer(listen)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.String("error", err.Error()))
			stop()
		}
	}()
	logger.Info("serving", slog.String("addr", listen))

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// parseStart parses a start boundary that may be RFC3339 or YYYY-MM-DD.
// If empty, defaultVal is returned.
func parseStart(val string, defaultVal time.Time, log *slog.Logger) time.Time {
	if val == "" {
		return defaultVal
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t
	}
	if d, err := time.Parse("2006-01-02", val); err == nil {
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}
	log.Error("invalid -from, expected RFC3339 or YYYY-MM-DD")
	os.Exit(1)
	return time.Time{}
}

// parseEnd parses an end boundary that may be RFC3339 or YYYY-MM-DD.
// Date-only form is treated as inclusive by converting to next-day 00:00 UTC.
// If empty, defaultVal is returned.
func parseEnd(val string, defaultVal time.Time, log *slog.Logger) time.Time {
	if val == "" {
		return defaultVal
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t
	}
	if d, err := time.Parse("2006-01-02", val); err == nil {
		next := d.Add(24 * time.Hour)
		return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, time.UTC)
	}
	log.Error("invalid -to, expected RFC3339 or YYYY-MM-DD")
	os.Exit(1)
	return time.Time{}
}
