// Package config loads layered configuration: struct defaults, then an
// optional YAML file, then environment variables, highest priority last.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"toggl-sync.yaml",
	"toggl-sync.yml",
	"/etc/toggl-sync/config.yaml",
}

// Config holds the full runtime configuration.
type Config struct {
	Toggl TogglConfig `koanf:"toggl"`
	Queue QueueConfig `koanf:"queue"`
	MySQL MySQLConfig `koanf:"mysql"`
	HTTP  HTTPConfig  `koanf:"http"`
}

// TogglConfig selects the account and API endpoints.
type TogglConfig struct {
	APIToken string `koanf:"api_token"`
	// WorkspaceID is the active workspace, kept as a string because it is
	// an opaque selection key edited by the user; it is parsed per call.
	WorkspaceID string `koanf:"workspace_id"`
	EntityBase  string `koanf:"entity_base"`
	ReportsBase string `koanf:"reports_base"`
}

// QueueConfig bounds the serialized report lane.
type QueueConfig struct {
	RPS   float64 `koanf:"rps"`
	Burst int     `koanf:"burst"`
	// SerializeSummary routes summary fetches through the report lane in
	// addition to detailed fetches.
	SerializeSummary bool `koanf:"serialize_summary"`
}

// MySQLConfig enables the optional snapshot sink when DSN is non-empty.
type MySQLConfig struct {
	DSN string `koanf:"dsn"`
}

// HTTPConfig configures the trigger server.
type HTTPConfig struct {
	Addr string `koanf:"addr"`
}

// WorkspaceID implements ports.Settings. The facade re-reads this on every
// call, so a host mutating the config mid-session takes effect immediately.
func (c *Config) WorkspaceID() string { return c.Toggl.WorkspaceID }

func defaultConfig() *Config {
	return &Config{
		Queue: QueueConfig{
			RPS:   1,
			Burst: 1,
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables (TOGGL_API_TOKEN, TOGGL_WORKSPACE_ID, MYSQL_DSN,
// QUEUE_RPS, HTTP_ADDR, ...).
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: loading defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: loading %s: %w", path, err)
		}
	}

	// TOGGL_API_TOKEN -> toggl.api_token, QUEUE_SERIALIZE_SUMMARY ->
	// queue.serialize_summary; unknown keys are ignored at unmarshal.
	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("config: loading environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields no mode can run without.
func (c *Config) Validate() error {
	if c.Toggl.APIToken == "" {
		return errors.New("config: toggl.api_token (TOGGL_API_TOKEN) is required")
	}
	if c.Queue.RPS <= 0 {
		return errors.New("config: queue.rps must be positive")
	}
	if c.Queue.Burst < 1 {
		return errors.New("config: queue.burst must be at least 1")
	}
	return nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func envTransform(s string) string {
	s = strings.ToLower(s)
	section, rest, ok := strings.Cut(s, "_")
	if !ok {
		return s
	}
	return section + "." + rest
}
