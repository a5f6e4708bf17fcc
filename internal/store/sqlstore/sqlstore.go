// Package sqlstore persists the flag collection in SQLite or PostgreSQL.
// Each flag is one row; the position column keeps store order and the check
// history is kept as a JSON text column.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/newhook/flagtrack/internal/flag"
	"github.com/newhook/flagtrack/internal/store"
)

// Dialect selects the SQL database flavour.
type Dialect string

// Supported dialects.
const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func (d Dialect) driverName() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite3"
}

func (d Dialect) builder() sq.StatementBuilderType {
	if d == DialectPostgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

var columns = []string{
	"id",
	"position",
	"schema_version",
	"title",
	"description",
	"category",
	"target_date",
	"created_date",
	"progress",
	"status",
	"check_history",
	"feasibility_score",
	"feasibility_reason",
}

// Store is a store.Backend over a SQL database.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

var _ store.Backend = (*Store)(nil)

// Open connects to the database and runs pending migrations.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Store, error) {
	switch dialect {
	case DialectSQLite, DialectPostgres:
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dialect == DialectSQLite {
		// One connection keeps :memory: databases shared and writes serialised.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db, dialect: dialect}
	if _, err := s.Migrator().Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// Migrator returns a migrator over the embedded flag schema.
func (s *Store) Migrator() *Migrator {
	return NewMigrator(s.db, s.dialect, embeddedMigrations())
}

// DB returns the underlying connection pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads every flag in position order.
func (s *Store) Load(ctx context.Context) ([]*flag.Flag, error) {
	query, args, err := s.dialect.builder().
		Select(columns...).
		From("flags").
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query flags: %w", err)
	}
	defer rows.Close()

	flags := []*flag.Flag{}
	for rows.Next() {
		var (
			f        flag.Flag
			position int
			status   string
			history  string
			score    sql.NullInt64
		)
		if err := rows.Scan(
			&f.ID,
			&position,
			&f.SchemaVersion,
			&f.Title,
			&f.Description,
			&f.Category,
			&f.TargetDate,
			&f.CreatedDate,
			&f.Progress,
			&status,
			&history,
			&score,
			&f.FeasibilityReason,
		); err != nil {
			return nil, fmt.Errorf("failed to scan flag: %w", err)
		}
		f.Status = flag.Status(status)
		if err := json.Unmarshal([]byte(history), &f.CheckHistory); err != nil {
			return nil, fmt.Errorf("failed to decode history of flag %s: %w", f.ID, err)
		}
		if score.Valid {
			v := int(score.Int64)
			f.FeasibilityScore = &v
		}
		flags = append(flags, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate flags: %w", err)
	}
	return flags, nil
}

// Save replaces every row in a single transaction.
func (s *Store) Save(ctx context.Context, flags []*flag.Flag) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	b := s.dialect.builder()

	query, args, err := b.Delete("flags").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to clear flags: %w", err)
	}

	for i, f := range flags {
		history := f.CheckHistory
		if history == nil {
			history = []flag.CheckRecord{}
		}
		historyJSON, err := json.Marshal(history)
		if err != nil {
			return fmt.Errorf("failed to encode history of flag %s: %w", f.ID, err)
		}

		var score any
		if f.FeasibilityScore != nil {
			score = *f.FeasibilityScore
		}

		query, args, err := b.Insert("flags").
			Columns(columns...).
			Values(
				f.ID,
				i,
				f.SchemaVersion,
				f.Title,
				f.Description,
				f.Category,
				f.TargetDate,
				f.CreatedDate,
				f.Progress,
				string(f.Status),
				string(historyJSON),
				score,
				f.FeasibilityReason,
			).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert flag %s: %w", f.ID, err)
		}
	}

	return tx.Commit()
}
