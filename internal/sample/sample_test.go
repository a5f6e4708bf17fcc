package sample

import (
	"fmt"
	"testing"
	"time"

	"github.com/newhook/flagtrack/internal/flag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlags(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	n := 0
	flags := Flags(now, func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
	require.Len(t, flags, len(goals))

	byTitle := map[string]*flag.Flag{}
	for _, f := range flags {
		byTitle[f.Title] = f
		require.NotNil(t, f.FeasibilityScore)
		assert.Equal(t, flag.StatusFor(f.Progress), f.Status)
		if last, ok := f.LastCheck(); ok {
			assert.Equal(t, f.Progress, last.Progress)
			ts, err := flag.ParseTimestamp(last.Date, now)
			require.NoError(t, err)
			assert.False(t, ts.After(now), "check %q is in the future", last.Notes)
		}
	}
	assert.Equal(t, "id-1", flags[0].ID)

	done := byTitle["Pass the language certificate exam"]
	assert.Equal(t, flag.StatusCompleted, done.Status)
	assert.Len(t, done.CheckHistory, 4)

	guitar := byTitle["Learn guitar"]
	assert.Equal(t, flag.StatusNotStarted, guitar.Status)
	assert.Empty(t, guitar.CheckHistory)
	assert.Equal(t, 70, *guitar.FeasibilityScore)

	// A due-soon open flag gives the check summary something to warn about.
	deadlines := flag.UpcomingDeadlines(flags, now)
	require.NotEmpty(t, deadlines)
	assert.Equal(t, "Lose 10 kg", deadlines[0].Flag.Title)
	assert.Equal(t, 4, deadlines[0].DaysLeft)
	assert.Equal(t, flag.UrgencyUrgent, deadlines[0].Urgency)

	stats := flag.ComputeStatistics(flags)
	assert.Equal(t, len(goals), stats.Total)
	assert.Equal(t, 1, stats.Completed)
}
