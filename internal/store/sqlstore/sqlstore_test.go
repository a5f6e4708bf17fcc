package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/newhook/flagtrack/internal/flag"
	"github.com/newhook/flagtrack/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/migrations/*.sql
var testMigrationsFS embed.FS

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(context.Background(), DialectSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
	require.NoError(t, err)
	return count > 0
}

func TestOpenRunsMigrations(t *testing.T) {
	s := setupTestStore(t)

	assert.True(t, tableExists(t, s.DB(), "flags"))
	states, err := s.Migrator().Status(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, "001", states[0].Version)
	assert.Equal(t, "flags", states[0].Name)
	assert.True(t, states[0].Applied)

	flags, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, flags)
}

func TestOpenUnsupportedDialect(t *testing.T) {
	_, err := Open(context.Background(), Dialect("oracle"), "")
	require.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	now := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	a := flag.New("a", "Learn Go programming", "Study Go daily for one hour", "2026-08-01", "Learning", now)
	flag.ApplyProgress(a, 130, "ahead of plan", now, flag.HistoryRaw)
	b := flag.New("b", "跑步", "每周跑步三次", "not a date", "", now)
	b.FeasibilityScore = nil
	want := []*flag.Flag{a, b}

	require.NoError(t, s.Save(ctx, want))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Saving again replaces, never duplicates.
	require.NoError(t, s.Save(ctx, want[1:]))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

func TestBackendThroughStore(t *testing.T) {
	ctx := context.Background()
	s := store.New(setupTestStore(t), store.WithClock(func() time.Time {
		return time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	}))

	f, err := s.Add(ctx, store.NewFlag{Title: "Read books", Description: "read more novel", TargetDate: "2026-02-11"})
	require.NoError(t, err)
	assert.Equal(t, 50, *f.FeasibilityScore)

	ok, err := s.UpdateProgress(ctx, f.ID, 100, "done")
	require.NoError(t, err)
	require.True(t, ok)

	stats, err := s.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Completed)
}

func TestFileDatabasePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "flags.db")

	s, err := Open(ctx, DialectSQLite, path)
	require.NoError(t, err)
	f := flag.New("persist", "Title long", "description", "2026-09-01", "", time.Now())
	require.NoError(t, s.Save(ctx, []*flag.Flag{f}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, DialectSQLite, path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "persist", got[0].ID)
}

func TestMigrator(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	sub, err := fs.Sub(testMigrationsFS, "testdata/migrations")
	require.NoError(t, err)
	m := NewMigrator(db, DialectSQLite, sub)

	_, err = m.Rollback(ctx)
	require.ErrorIs(t, err, ErrNoMigrations)

	applied, err := m.Up(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 2)
	assert.Equal(t, "first", applied[0].Name)
	assert.True(t, tableExists(t, db, "first_table"))
	assert.True(t, tableExists(t, db, "second_table"))

	var note string
	require.NoError(t, db.QueryRow("SELECT note FROM second_table WHERE id = 1").Scan(&note))
	assert.Equal(t, "semi;colon", note)

	// Running again is a no-op.
	applied, err = m.Up(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)

	rolled, err := m.Rollback(ctx)
	require.NoError(t, err)
	assert.Equal(t, "002", rolled.Version)
	assert.False(t, tableExists(t, db, "second_table"))
	assert.True(t, tableExists(t, db, "first_table"))

	states, err := m.Status(ctx)
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.True(t, states[0].Applied)
	assert.False(t, states[1].Applied)
}

func TestStatusReportsUnknownVersions(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	_, err := s.DB().Exec("INSERT INTO schema_migrations (version) VALUES ('999')")
	require.NoError(t, err)

	states, err := s.Migrator().Status(ctx)
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "999", states[1].Version)
	assert.Empty(t, states[1].Name)
	assert.True(t, states[1].Applied)
}

func TestReadMigrationsRejectsBadNames(t *testing.T) {
	fsys := fstest.MapFS{"nounderscore.sql": {Data: []byte("-- +up\nSELECT 1;")}}
	_, err := readMigrations(fsys)
	require.ErrorContains(t, err, "invalid migration filename")
}

func TestSplitSQLStatements(t *testing.T) {
	got := splitSQLStatements(`
CREATE TABLE a (x TEXT DEFAULT ';');
/* block; comment */ INSERT INTO a VALUES ('it''s; fine');
SELECT 1`)
	require.Len(t, got, 3)
	assert.Equal(t, "CREATE TABLE a (x TEXT DEFAULT ';')", got[0])
	assert.Contains(t, got[1], "INSERT INTO a")
	assert.Equal(t, "SELECT 1", got[2])
}

func TestSection(t *testing.T) {
	content := "-- +up\nCREATE TABLE t (id INT);\n-- +down\nDROP TABLE t;\n"
	assert.Equal(t, "CREATE TABLE t (id INT);", section(content, "-- +up", "-- +down"))
	assert.Equal(t, "DROP TABLE t;\n", section(content, "-- +down", ""))
}
