// Package project locates a flagtrack project, loads its configuration and
// opens its flag store.
package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/newhook/flagtrack/internal/logging"
	"github.com/newhook/flagtrack/internal/store"
	"github.com/newhook/flagtrack/internal/store/sqlstore"
)

const (
	// ConfigDir is the directory name for project configuration.
	ConfigDir = logging.ConfigDir
	// ConfigFile is the name of the project config file.
	ConfigFile = "config.toml"
)

// Project is an opened flagtrack project.
type Project struct {
	Root   string       // Project directory path
	Config *Config      // Parsed config.toml
	Store  *store.Store // Flag store over the configured backend

	closer io.Closer
	sql    *sqlstore.Store
}

// ErrNoDatabase is returned by Database for projects on the json backend.
var ErrNoDatabase = errors.New("the json backend has no database schema")

// Option configures the store opened for a project.
type Option = store.Option

// Find finds a project from a flag value or current directory.
// If flagValue is non-empty, uses that path; otherwise uses cwd.
func Find(ctx context.Context, flagValue string, opts ...Option) (*Project, error) {
	if flagValue != "" {
		return find(ctx, flagValue, opts)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return find(ctx, cwd, opts)
}

// find walks up from startDir looking for a .flagtrack/ directory.
func find(ctx context.Context, startDir string, opts []Option) (*Project, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	for {
		configPath := filepath.Join(dir, ConfigDir, ConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return load(ctx, dir, opts)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, fmt.Errorf("no project found (no %s directory, run 'flagtrack init')", ConfigDir)
		}
		dir = parent
	}
}

// load loads a project from the given root directory.
func load(ctx context.Context, root string, opts []Option) (*Project, error) {
	configPath := filepath.Join(root, ConfigDir, ConfigFile)
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	if err := logging.Init(root); err != nil {
		logging.Warn("failed to initialize logging", "error", err)
	}

	proj := &Project{
		Root:   root,
		Config: cfg,
	}
	backend, closer, err := proj.openBackend(ctx)
	if err != nil {
		return nil, err
	}
	proj.closer = closer
	if s, ok := backend.(*sqlstore.Store); ok {
		proj.sql = s
	}

	base := []Option{
		store.WithHistoryMode(cfg.Tracker.GetHistoryMode()),
		store.WithReminderPolicy(cfg.Reminders.Policy()),
	}
	proj.Store = store.New(backend, append(base, opts...)...)

	logging.DebugContext(ctx, "project loaded", "root", root, "backend", cfg.Storage.GetBackend())
	return proj, nil
}

func (p *Project) openBackend(ctx context.Context) (store.Backend, io.Closer, error) {
	switch backend := p.Config.Storage.GetBackend(); backend {
	case BackendSQLite:
		path := p.StoragePath()
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
		}
		s, err := sqlstore.Open(ctx, sqlstore.DialectSQLite, path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return s, s, nil
	case BackendPostgres:
		dsn := p.Config.Storage.GetDSN()
		if dsn == "" {
			return nil, nil, fmt.Errorf("postgres backend needs storage.dsn or %s", DSNEnv)
		}
		s, err := sqlstore.Open(ctx, sqlstore.DialectPostgres, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return s, s, nil
	default:
		return store.NewJSONFile(p.StoragePath()), nil, nil
	}
}

// Create initializes a new project at dir with the given storage backend.
func Create(ctx context.Context, dir, backend string, opts ...Option) (*Project, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDir)
	configPath := filepath.Join(configDir, ConfigFile)
	if _, err := os.Stat(configPath); err == nil {
		return nil, fmt.Errorf("project already exists at %s", absDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create project directory: %w", err)
	}

	cfg := &Config{
		Project: ProjectConfig{
			Name:      filepath.Base(absDir),
			CreatedAt: time.Now().Truncate(time.Second),
		},
		Storage: StorageConfig{Backend: backend},
	}
	if err := cfg.SaveDocumentedConfig(configPath); err != nil {
		return nil, fmt.Errorf("failed to write config: %w", err)
	}

	proj, err := load(ctx, absDir, opts)
	if err != nil {
		return nil, err
	}

	// Write an empty document so the store file exists for the web shell.
	if cfg.Storage.GetBackend() == BackendJSON {
		if _, err := os.Stat(proj.StoragePath()); errors.Is(err, os.ErrNotExist) {
			if err := proj.Store.Replace(ctx, nil); err != nil {
				proj.Close()
				return nil, err
			}
		}
	}
	return proj, nil
}

// StoragePath returns the absolute path of the JSON document or SQLite file.
func (p *Project) StoragePath() string {
	path := p.Config.Storage.GetPath()
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Root, path)
}

// ReportDir returns the absolute report directory.
func (p *Project) ReportDir() string {
	dir := p.Config.Report.GetDir()
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(p.Root, dir)
}

// Database returns the SQL backend of a sqlite or postgres project.
func (p *Project) Database() (*sqlstore.Store, error) {
	if p.sql == nil {
		return nil, fmt.Errorf("%w (storage.backend = %q)", ErrNoDatabase, p.Config.Storage.GetBackend())
	}
	return p.sql, nil
}

// Close closes any open resources.
func (p *Project) Close() error {
	var errs []error
	if p.closer != nil {
		if err := p.closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing store: %w", err))
		}
	}
	if err := logging.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing log: %w", err))
	}
	return errors.Join(errs...)
}
