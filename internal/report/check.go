// Package report builds the periodic check summary and the written progress
// report.
package report

import (
	"context"
	"time"

	"github.com/newhook/flagtrack/internal/flag"
	"github.com/newhook/flagtrack/internal/store"
)

// Advice is a closing remark on a check summary.
type Advice string

const (
	AdviceReconsider Advice = "Completion rate is low. Consider revisiting how feasible your goals are."
	AdvicePraise     Advice = "Great work! Your completion rate is high."
	AdviceUrgent     Advice = "Warning: some flags are due within days. Deal with them now!"
)

const (
	lowCompletionRate  = 30
	highCompletionRate = 80
)

// Summary is the result of a periodic check.
type Summary struct {
	CheckedAt         time.Time
	Reminders         []*flag.Flag
	Deadlines         []flag.Deadline
	RecentlyCompleted []*flag.Flag
	Stats             flag.Statistics
	Advice            []Advice
}

// NeedsAttention is the number of reminders plus upcoming deadlines.
func (s Summary) NeedsAttention() int {
	return len(s.Reminders) + len(s.Deadlines)
}

// Check gathers everything a periodic check reports on.
func Check(ctx context.Context, st *store.Store) (Summary, error) {
	flags, err := st.All(ctx)
	if err != nil {
		return Summary{}, err
	}
	now := st.Now()
	policy := st.Policy()

	s := Summary{
		CheckedAt:         now,
		Reminders:         policy.DueReminders(flags, now),
		Deadlines:         policy.UpcomingDeadlines(flags, now),
		RecentlyCompleted: policy.RecentlyCompleted(flags, now),
		Stats:             flag.ComputeStatistics(flags),
	}
	s.Advice = advise(s, policy)
	return s, nil
}

func advise(s Summary, policy flag.ReminderPolicy) []Advice {
	var out []Advice
	switch {
	case s.Stats.Total > 0 && s.Stats.CompletionRate < lowCompletionRate:
		out = append(out, AdviceReconsider)
	case s.Stats.CompletionRate > highCompletionRate:
		out = append(out, AdvicePraise)
	}
	for _, d := range s.Deadlines {
		if d.DaysLeft <= policy.UrgentDays {
			out = append(out, AdviceUrgent)
			break
		}
	}
	return out
}

// UrgencyNote is the one-line nudge shown beside a deadline.
func UrgencyNote(u flag.Urgency) string {
	switch u {
	case flag.UrgencyUrgent:
		return "Urgent: almost out of time!"
	case flag.UrgencyPressing:
		return "Heads up: time is tight, speed up!"
	default:
		return "Keep going: there is still time!"
	}
}
