package project

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/newhook/flagtrack/internal/flag"
)

//go:embed templates/config.tmpl
var configTemplateText string

// DSNEnv overrides the postgres DSN from config.toml.
const DSNEnv = "FLAGTRACK_DSN"

// Storage backends.
const (
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config represents the project configuration stored in .flagtrack/config.toml.
type Config struct {
	Project   ProjectConfig   `toml:"project"`
	Storage   StorageConfig   `toml:"storage"`
	Reminders RemindersConfig `toml:"reminders"`
	Tracker   TrackerConfig   `toml:"tracker"`
	Report    ReportConfig    `toml:"report"`
	Server    ServerConfig    `toml:"server"`
}

// ProjectConfig contains project metadata.
type ProjectConfig struct {
	Name      string    `toml:"name"`
	CreatedAt time.Time `toml:"created_at"`
}

// StorageConfig selects where flags are persisted.
type StorageConfig struct {
	// Backend is "json", "sqlite" or "postgres". Defaults to "json".
	Backend string `toml:"backend"`

	// Path is the JSON document or SQLite file, relative to the project root.
	// Defaults to "flags.json" for json and ".flagtrack/flags.db" for sqlite.
	Path string `toml:"path"`

	// DSN is the postgres connection string. FLAGTRACK_DSN takes precedence.
	DSN string `toml:"dsn"`
}

// GetBackend returns the configured backend, defaulting to json.
func (s *StorageConfig) GetBackend() string {
	switch s.Backend {
	case BackendSQLite, BackendPostgres:
		return s.Backend
	default:
		return BackendJSON
	}
}

// GetPath returns the storage path relative to the project root.
func (s *StorageConfig) GetPath() string {
	if s.Path != "" {
		return s.Path
	}
	if s.GetBackend() == BackendSQLite {
		return ConfigDir + "/flags.db"
	}
	return "flags.json"
}

// GetDSN returns the postgres DSN, preferring the environment.
func (s *StorageConfig) GetDSN() string {
	if env := os.Getenv(DSNEnv); env != "" {
		return env
	}
	return s.DSN
}

// RemindersConfig holds the reminder windows, in days.
type RemindersConfig struct {
	// CheckIntervalDays is how long a flag may go unchecked. Defaults to 30.
	CheckIntervalDays *int `toml:"check_interval_days"`

	// DeadlineHorizonDays is how far ahead upcoming deadlines are shown. Defaults to 30.
	DeadlineHorizonDays *int `toml:"deadline_horizon_days"`

	// UrgentDays marks deadlines as urgent. Defaults to 7.
	UrgentDays *int `toml:"urgent_days"`

	// PressingDays marks deadlines as pressing. Defaults to 14.
	PressingDays *int `toml:"pressing_days"`

	// RecentCompletionDays is the window for recently completed flags. Defaults to 7.
	RecentCompletionDays *int `toml:"recent_completion_days"`
}

// Policy converts the configuration into a reminder policy.
func (r *RemindersConfig) Policy() flag.ReminderPolicy {
	p := flag.DefaultReminderPolicy()
	set := func(dst *int, v *int) {
		if v != nil && *v >= 0 {
			*dst = *v
		}
	}
	set(&p.CheckIntervalDays, r.CheckIntervalDays)
	set(&p.DeadlineHorizon, r.DeadlineHorizonDays)
	set(&p.UrgentDays, r.UrgentDays)
	set(&p.PressingDays, r.PressingDays)
	set(&p.RecentlyDoneWindow, r.RecentCompletionDays)
	return p
}

// TrackerConfig controls progress tracking.
type TrackerConfig struct {
	// HistoryProgress is "raw" (the requested value) or "clamped" (the stored value).
	// Defaults to "raw".
	HistoryProgress string `toml:"history_progress"`
}

// GetHistoryMode returns the history mode. Unknown values are rejected by
// Validate when the config is loaded; here they fall back to raw.
func (t *TrackerConfig) GetHistoryMode() flag.HistoryMode {
	mode, err := flag.ParseHistoryMode(t.HistoryProgress)
	if err != nil {
		return flag.HistoryRaw
	}
	return mode
}

// ReportConfig controls report generation.
type ReportConfig struct {
	// Dir is where reports are written, relative to the project root. Defaults to "reports".
	Dir string `toml:"dir"`
}

// GetDir returns the report directory.
func (r *ReportConfig) GetDir() string {
	if r.Dir == "" {
		return "reports"
	}
	return r.Dir
}

// ServerConfig controls the web shell.
type ServerConfig struct {
	// Addr is the listen address. Defaults to ":5000".
	Addr string `toml:"addr"`

	// AllowedOrigins lists CORS origins. Defaults to ["*"].
	AllowedOrigins []string `toml:"allowed_origins"`

	// CacheSeconds is how long the served store document is cached. Defaults to 5.
	CacheSeconds *int `toml:"cache_seconds"`
}

// GetAddr returns the listen address.
func (s *ServerConfig) GetAddr() string {
	if s.Addr == "" {
		return ":5000"
	}
	return s.Addr
}

// GetAllowedOrigins returns the CORS origins.
func (s *ServerConfig) GetAllowedOrigins() []string {
	if len(s.AllowedOrigins) == 0 {
		return []string{"*"}
	}
	return s.AllowedOrigins
}

// GetCacheTTL returns the document cache lifetime.
func (s *ServerConfig) GetCacheTTL() time.Duration {
	if s.CacheSeconds != nil && *s.CacheSeconds >= 0 {
		return time.Duration(*s.CacheSeconds) * time.Second
	}
	return 5 * time.Second
}

// LoadConfig reads and parses a config.toml file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects enumerated settings with unknown values. Empty values are
// allowed and take their defaults.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "", BackendJSON, BackendSQLite, BackendPostgres:
	default:
		return fmt.Errorf("invalid [storage] backend %q (valid: json, sqlite, postgres)", c.Storage.Backend)
	}
	if _, err := flag.ParseHistoryMode(c.Tracker.HistoryProgress); err != nil {
		return fmt.Errorf("invalid [tracker] history_progress: %w", err)
	}
	return nil
}

// SaveDocumentedConfig writes a fully documented config to the specified path.
func (c *Config) SaveDocumentedConfig(path string) error {
	return os.WriteFile(path, []byte(c.GenerateDocumentedConfig()), 0600)
}

// configTemplateData holds the data used to render the config template.
type configTemplateData struct {
	ProjectName    string
	CreatedAt      string
	StorageBackend string
	StoragePath    string
}

// tomlString formats a string for TOML output with proper escaping.
func tomlString(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}

var configTemplate = template.Must(template.New("config").Funcs(template.FuncMap{
	"tomlString": tomlString,
}).Parse(configTemplateText))

// GenerateDocumentedConfig renders config.toml with the project values and
// commented-out defaults for every optional setting.
func (c *Config) GenerateDocumentedConfig() string {
	data := configTemplateData{
		ProjectName:    c.Project.Name,
		CreatedAt:      c.Project.CreatedAt.Format(time.RFC3339),
		StorageBackend: c.Storage.GetBackend(),
		StoragePath:    c.Storage.GetPath(),
	}

	var buf bytes.Buffer
	if err := configTemplate.Execute(&buf, data); err != nil {
		return fmt.Sprintf("[project]\nname = %s\ncreated_at = %s\n\n[storage]\nbackend = %q\npath = %s\n",
			tomlString(c.Project.Name), data.CreatedAt, data.StorageBackend, tomlString(data.StoragePath))
	}
	return buf.String()
}
