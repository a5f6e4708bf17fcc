package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/newhook/flagtrack/internal/flag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, backend Backend, opts ...Option) *Store {
	t.Helper()
	n := 0
	base := []Option{
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("%08d-0000-0000-0000-000000000000", n)
		}),
	}
	return New(backend, append(base, opts...)...)
}

func TestAddScoresAndPersists(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	s := newTestStore(t, mem)

	f, err := s.Add(ctx, NewFlag{Title: "Read books", Description: "read more novel", TargetDate: "2026-01-25"})
	require.NoError(t, err)
	assert.Equal(t, "00000001-0000-0000-0000-000000000000", f.ID)
	assert.Equal(t, flag.DefaultCategory, f.Category)
	assert.Equal(t, 50, *f.FeasibilityScore)
	assert.Equal(t, "target time too short (less than 30 days); description too simple, lacks specificity; lacks quantifiable metric", f.FeasibilityReason)
	assert.Equal(t, 1, mem.Saves())

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, f, all[0])
}

func TestUpdateProgressUnknownIDLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	s := newTestStore(t, mem)
	f, err := s.Add(ctx, NewFlag{Title: "Read books", Description: "read more novel", TargetDate: "2026-03-01"})
	require.NoError(t, err)

	before, err := s.All(ctx)
	require.NoError(t, err)

	ok, err := s.UpdateProgress(ctx, "missing", 50, "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, mem.Saves(), "no write for unknown id")

	after, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// Exact match only: a prefix is not an id.
	ok, err = s.UpdateProgress(ctx, f.ID[:8], 50, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateProgressClampsAndRecordsRaw(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, NewMemory())
	f, err := s.Add(ctx, NewFlag{Title: "Run a marathon", Description: "run", TargetDate: "2026-06-01"})
	require.NoError(t, err)

	ok, err := s.UpdateProgress(ctx, f.ID, 150, "crushed it")
	require.NoError(t, err)
	require.True(t, ok)

	got, err := s.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, flag.StatusCompleted, got.Status)
	require.Len(t, got.CheckHistory, 1)
	assert.Equal(t, 150, got.CheckHistory[0].Progress)
	assert.Equal(t, "2026-01-15 12:00:00", got.CheckHistory[0].Date)
	assert.Equal(t, "crushed it", got.CheckHistory[0].Notes)
}

func TestUpdateProgressClampedHistoryMode(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, NewMemory(), WithHistoryMode(flag.HistoryClamped))
	f, err := s.Add(ctx, NewFlag{Title: "Run a marathon", Description: "run", TargetDate: "2026-06-01"})
	require.NoError(t, err)

	ok, err := s.UpdateProgress(ctx, f.ID, 150, "")
	require.NoError(t, err)
	require.True(t, ok)

	got, err := s.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, 100, got.CheckHistory[0].Progress)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	s := newTestStore(t, mem)
	a, err := s.Add(ctx, NewFlag{Title: "First goal", TargetDate: "2026-06-01"})
	require.NoError(t, err)
	b, err := s.Add(ctx, NewFlag{Title: "Second goal", TargetDate: "2026-06-01"})
	require.NoError(t, err)

	ok, err := s.Delete(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, mem.Saves())

	ok, err = s.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].ID)

	_, err = s.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	s := newTestStore(t, mem)

	sample := []*flag.Flag{
		flag.New("a", "Run a 10k", "run 3 times a week", "2026-06-01", "Health", testNow),
		flag.New("b", "Read 20 books", "read 2 books every month", "2026-12-31", "Learning", testNow),
	}
	require.NoError(t, s.Seed(ctx, sample, false))

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, idsOf(all))

	err = s.Seed(ctx, sample[:1], false)
	require.ErrorIs(t, err, ErrNotEmpty)
	all, err = s.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.Seed(ctx, sample[:1], true))
	all, err = s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, idsOf(all))
}

func TestListFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	older := flag.New("old", "Older goal", "d", "2026-06-01", "Health", testNow.AddDate(0, -1, 0))
	newer := flag.New("new", "Newer goal", "d", "2026-06-01", "Health", testNow)
	other := flag.New("other", "Other goal", "d", "2026-06-01", "Study", testNow.AddDate(0, 0, -3))
	flag.ApplyProgress(other, 30, "", testNow, flag.HistoryRaw)
	s := newTestStore(t, NewMemory(older, newer, other))

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "other", "old"}, idsOf(all))

	health, err := s.List(ctx, Filter{Category: "Health"})
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "old"}, idsOf(health))

	active, err := s.List(ctx, Filter{Status: flag.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, []string{"other"}, idsOf(active))

	none, err := s.List(ctx, Filter{Category: "Study", Status: flag.StatusCompleted})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestResolvePrefix(t *testing.T) {
	ctx := context.Background()
	a := flag.New("abcd1234-aaaa", "Goal one", "d", "2026-06-01", "", testNow)
	b := flag.New("abcd9999-bbbb", "Goal two", "d", "2026-06-01", "", testNow)
	s := newTestStore(t, NewMemory(a, b))

	got, err := s.Resolve(ctx, "abcd1234")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	got, err = s.Resolve(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = s.Resolve(ctx, "abcd")
	assert.ErrorIs(t, err, ErrAmbiguousID)

	_, err = s.Resolve(ctx, "zzz")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Resolve(ctx, "  ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadNormalizesRecords(t *testing.T) {
	ctx := context.Background()
	legacy := &flag.Flag{ID: "legacy", Title: "Legacy", Progress: 250, Status: flag.StatusNotStarted, CreatedDate: "2025-01-01"}
	s := newTestStore(t, NewMemory(legacy))

	got, err := s.Get(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, flag.StatusCompleted, got.Status)
	assert.Equal(t, flag.SchemaVersion, got.SchemaVersion)
}

func TestRemindersAndStatistics(t *testing.T) {
	ctx := context.Background()
	stale := flag.New("stale", "Stale goal", "d", testNow.AddDate(0, 0, 10).Format(flag.DateLayout), "", testNow.AddDate(0, -2, 0))
	done := flag.New("done", "Done goal", "d", "2026-06-01", "", testNow.AddDate(0, -2, 0))
	flag.ApplyProgress(done, 100, "", testNow.AddDate(0, 0, -1), flag.HistoryRaw)
	s := newTestStore(t, NewMemory(stale, done))

	due, err := s.DueReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"stale"}, idsOf(due))

	deadlines, err := s.UpcomingDeadlines(ctx)
	require.NoError(t, err)
	require.Len(t, deadlines, 1)
	assert.Equal(t, flag.UrgencyPressing, deadlines[0].Urgency)

	recent, err := s.RecentlyCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"done"}, idsOf(recent))

	stats, err := s.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.InDelta(t, 50.0, stats.CompletionRate, 1e-9)
}

func TestJSONFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "flags.json")
	s := newTestStore(t, NewJSONFile(path))

	a, err := s.Add(ctx, NewFlag{Title: "学习Python编程", Description: "每天学习1小时，完成3个项目", TargetDate: "2026-12-31", Category: "学习成长"})
	require.NoError(t, err)
	_, err = s.UpdateProgress(ctx, a.ID, 20, "完成基础语法学习")
	require.NoError(t, err)
	_, err = s.Add(ctx, NewFlag{Title: "Bad date", Description: "x", TargetDate: "someday"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "学习Python编程", "non-ASCII kept literal")
	assert.Contains(t, string(data), "\n  {\n    \"schema_version\": 1,")

	before, err := s.All(ctx)
	require.NoError(t, err)

	decoded := DecodeFlags(ctx, data)
	for _, f := range decoded {
		f.Normalize()
	}
	assert.Equal(t, before, decoded)

	reencoded, err := EncodeFlags(decoded)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(reencoded))
}

func TestJSONFileMissingAndMalformed(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	missing := NewJSONFile(filepath.Join(dir, "missing.json"))
	flags, err := missing.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, flags)

	for name, content := range map[string]string{
		"empty.json":     "",
		"garbage.json":   "{not json",
		"object.json":    `{"id": "x"}`,
		"truncated.json": `[{"id": "x", "title": `,
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		flags, err := NewJSONFile(path).Load(ctx)
		require.NoError(t, err, name)
		assert.Empty(t, flags, name)
	}
}

func TestJSONFileSkipsOnlyBadRecords(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "flags.json")
	content := `[
  {"id": "good-1", "title": "Learn Go", "description": "daily", "target_date": "2030-01-01", "created_date": "2026-01-01", "progress": 30},
  {"id": "bad", "title": "Typed by hand", "progress": "50"},
  null,
  {"id": "good-2", "title": "Read books", "description": "2 books monthly", "target_date": "2030-06-01", "created_date": "2026-01-02", "progress": 0}
]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s := newTestStore(t, NewJSONFile(path))
	flags, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"good-1", "good-2"}, idsOf(flags))
	assert.Equal(t, flag.StatusInProgress, flags[0].Status)

	_, err = s.Add(ctx, NewFlag{Title: "Swim weekly", Description: "swim 2 times a week", TargetDate: "2030-09-01"})
	require.NoError(t, err)
	flags, err = s.All(ctx)
	require.NoError(t, err)
	require.Len(t, flags, 3)
	assert.Equal(t, "good-1", flags[0].ID)
	assert.Equal(t, "good-2", flags[1].ID)
}

func TestJSONFileReadsLegacyDocument(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "flags.json")
	legacy := `[
  {
    "id": "5f0c2a9e-1111-2222-3333-444455556666",
    "title": "减重10公斤",
    "description": "每周运动4次，每次1小时",
    "category": "健康生活",
    "target_date": "2024-06-30",
    "created_date": "2024-01-01",
    "progress": 60,
    "status": "进行中",
    "check_history": [
      {"date": "2024-01-31 08:15:00", "progress": 25, "notes": "减重2.5公斤"}
    ],
    "feasibility_score": 80,
    "feasibility_reason": "目标设定合理，可行性较高"
  }
]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	s := newTestStore(t, NewJSONFile(path))
	f, err := s.Resolve(ctx, "5f0c2a9e")
	require.NoError(t, err)
	assert.Equal(t, flag.StatusInProgress, f.Status)
	assert.Equal(t, 1, f.SchemaVersion)
	assert.Equal(t, 80, *f.FeasibilityScore)

	ok, err := s.UpdateProgress(ctx, f.ID, 70, "")
	require.NoError(t, err)
	require.True(t, ok)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status": "in_progress"`)
	assert.Contains(t, string(data), `"notes": "减重2.5公斤"`)
}

func idsOf(flags []*flag.Flag) []string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		out = append(out, f.ID)
	}
	return out
}
