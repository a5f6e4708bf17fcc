package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/newhook/flagtrack/internal/logging"
	cosignal "github.com/newhook/flagtrack/internal/signal"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNoMigrations is returned by Rollback when nothing has been applied.
var ErrNoMigrations = errors.New("no migrations to roll back")

const migrationsTable = "schema_migrations"

// Migration is a single versioned schema change read from NNN_name.sql.
type Migration struct {
	Version string
	Name    string
	UpSQL   string
	DownSQL string
}

// MigrationState pairs a known migration with whether it is applied.
type MigrationState struct {
	Migration
	Applied bool
}

// Migrator applies and rolls back the migrations found in an fs.FS.
type Migrator struct {
	db      *sql.DB
	dialect Dialect
	fsys    fs.FS
}

// NewMigrator returns a Migrator for the *.sql files at the root of fsys.
func NewMigrator(db *sql.DB, dialect Dialect, fsys fs.FS) *Migrator {
	return &Migrator{db: db, dialect: dialect, fsys: fsys}
}

func embeddedMigrations() fs.FS {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Up applies every pending migration in version order and returns the ones
// it applied.
func (m *Migrator) Up(ctx context.Context) ([]Migration, error) {
	states, err := m.Status(ctx)
	if err != nil {
		return nil, err
	}

	var done []Migration
	for _, st := range states {
		if st.Applied {
			continue
		}
		logging.InfoContext(ctx, "applying migration", "version", st.Version, "name", st.Name)
		if err := m.inTx(ctx, st.UpSQL, m.record(st.Version)); err != nil {
			return done, fmt.Errorf("migration %s_%s: %w", st.Version, st.Name, err)
		}
		done = append(done, st.Migration)
	}
	return done, nil
}

// Rollback runs the down script of the newest applied migration.
func (m *Migrator) Rollback(ctx context.Context) (Migration, error) {
	states, err := m.Status(ctx)
	if err != nil {
		return Migration{}, err
	}

	for i := len(states) - 1; i >= 0; i-- {
		st := states[i]
		if !st.Applied {
			continue
		}
		if strings.TrimSpace(st.DownSQL) == "" {
			return Migration{}, fmt.Errorf("migration %s has no down script", st.Version)
		}
		logging.InfoContext(ctx, "rolling back migration", "version", st.Version, "name", st.Name)
		if err := m.inTx(ctx, st.DownSQL, m.forget(st.Version)); err != nil {
			return Migration{}, fmt.Errorf("rollback %s_%s: %w", st.Version, st.Name, err)
		}
		return st.Migration, nil
	}
	return Migration{}, ErrNoMigrations
}

// Status lists every known migration with its applied flag, oldest first.
// Versions recorded in the database without a matching file are reported
// as applied migrations with an empty name.
func (m *Migrator) Status(ctx context.Context) ([]MigrationState, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	known, err := readMigrations(m.fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	byVersion := make(map[string]bool, len(known))
	states := make([]MigrationState, 0, len(known))
	for _, mig := range known {
		byVersion[mig.Version] = true
		states = append(states, MigrationState{Migration: mig, Applied: applied[mig.Version]})
	}
	for v := range applied {
		if !byVersion[v] {
			states = append(states, MigrationState{Migration: Migration{Version: v}, Applied: true})
		}
	}
	sort.SliceStable(states, func(i, j int) bool {
		return states[i].Version < states[j].Version
	})
	return states, nil
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+migrationsTable+` (
	version TEXT PRIMARY KEY,
	applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", migrationsTable, err)
	}
	return nil
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[string]bool, error) {
	query, args, err := m.dialect.builder().Select("version").From(migrationsTable).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", migrationsTable, err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func (m *Migrator) record(version string) sq.Sqlizer {
	return m.dialect.builder().Insert(migrationsTable).Columns("version").Values(version)
}

func (m *Migrator) forget(version string) sq.Sqlizer {
	return m.dialect.builder().Delete(migrationsTable).Where(sq.Eq{"version": version})
}

// inTx runs script and then bookkeeping in one transaction, with signal
// cancellation held off until it commits or fails.
func (m *Migrator) inTx(ctx context.Context, script string, bookkeeping sq.Sqlizer) error {
	cosignal.BlockSignals()
	defer cosignal.UnblockSignals()

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitSQLStatements(script) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement failed: %w", err)
		}
	}

	query, args, err := bookkeeping.ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update %s: %w", migrationsTable, err)
	}
	return tx.Commit()
}

// readMigrations parses NNN_name.sql files with "-- +up" and "-- +down"
// sections, sorted by version.
func readMigrations(fsys fs.FS) ([]Migration, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, err
	}

	out := make([]Migration, 0, len(names))
	for _, name := range names {
		version, label, ok := strings.Cut(strings.TrimSuffix(name, ".sql"), "_")
		if !ok || version == "" || label == "" {
			return nil, fmt.Errorf("invalid migration filename: %s", name)
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		content := string(data)
		out = append(out, Migration{
			Version: version,
			Name:    label,
			UpSQL:   section(content, "-- +up", "-- +down"),
			DownSQL: section(content, "-- +down", ""),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// section returns the lines between the start marker and the end marker
// (or the end of content when end is empty).
func section(content, start, end string) string {
	var lines []string
	in := false
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, start) {
			in = true
			continue
		}
		if end != "" && strings.HasPrefix(trimmed, end) {
			break
		}
		if in {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

type scanState int

const (
	scanCode scanState = iota
	scanQuoted
	scanLineComment
	scanBlockComment
)

// splitSQLStatements splits a script on semicolons that are outside quotes
// and comments. Empty statements are dropped.
func splitSQLStatements(script string) []string {
	var (
		out   []string
		buf   strings.Builder
		state = scanCode
		quote rune
	)
	flush := func() {
		if stmt := strings.TrimSpace(buf.String()); stmt != "" {
			out = append(out, stmt)
		}
		buf.Reset()
	}

	rs := []rune(script)
	for i := 0; i < len(rs); i++ {
		c := rs[i]
		var next rune
		if i+1 < len(rs) {
			next = rs[i+1]
		}

		switch state {
		case scanLineComment:
			if c == '\n' {
				state = scanCode
			}
		case scanBlockComment:
			if c == '*' && next == '/' {
				buf.WriteRune(c)
				i++
				c = next
				state = scanCode
			}
		case scanQuoted:
			switch {
			case c == '\\' && next != 0:
				buf.WriteRune(c)
				i++
				c = next
			case c == quote:
				state = scanCode
			}
		default:
			switch {
			case c == '-' && next == '-':
				state = scanLineComment
			case c == '/' && next == '*':
				buf.WriteRune(c)
				i++
				c = next
				state = scanBlockComment
			case c == '\'' || c == '"' || c == '`':
				quote = c
				state = scanQuoted
			case c == ';':
				flush()
				continue
			}
		}
		buf.WriteRune(c)
	}
	flush()
	return out
}
