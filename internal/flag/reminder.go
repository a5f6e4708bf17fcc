package flag

import (
	"sort"
	"time"
)

// Default reminder windows, in days.
const (
	DefaultCheckIntervalDays  = 30
	DefaultDeadlineHorizon    = 30
	DefaultUrgentDays         = 7
	DefaultPressingDays       = 14
	DefaultRecentlyDoneWindow = 7
)

// Urgency classifies how close an upcoming deadline is.
type Urgency string

// Urgency tiers.
const (
	UrgencyUrgent      Urgency = "urgent"
	UrgencyPressing    Urgency = "pressing"
	UrgencyEncouraging Urgency = "encouraging"
)

// ReminderPolicy holds the windows used by the reminder selectors.
type ReminderPolicy struct {
	CheckIntervalDays  int
	DeadlineHorizon    int
	UrgentDays         int
	PressingDays       int
	RecentlyDoneWindow int
}

// DefaultReminderPolicy returns the standard 30-day policy.
func DefaultReminderPolicy() ReminderPolicy {
	return ReminderPolicy{
		CheckIntervalDays:  DefaultCheckIntervalDays,
		DeadlineHorizon:    DefaultDeadlineHorizon,
		UrgentDays:         DefaultUrgentDays,
		PressingDays:       DefaultPressingDays,
		RecentlyDoneWindow: DefaultRecentlyDoneWindow,
	}
}

// Deadline is an open flag whose target date falls within the horizon.
type Deadline struct {
	Flag     *Flag
	DaysLeft int
	Urgency  Urgency
}

// DueReminders returns open flags that have gone at least CheckIntervalDays
// without a check. The gap is measured from the last check record, or from
// the created date when the flag has never been checked. Results keep the
// order of flags.
func (p ReminderPolicy) DueReminders(flags []*Flag, now time.Time) []*Flag {
	var due []*Flag
	for _, f := range flags {
		if !f.IsOpen() {
			continue
		}
		since, ok := lastActivity(f, now)
		if !ok {
			continue
		}
		if daysBetween(since, now) >= p.CheckIntervalDays {
			due = append(due, f)
		}
	}
	return due
}

// UpcomingDeadlines returns open flags due within DeadlineHorizon days,
// soonest first. Flags with an unparseable target date are skipped.
func (p ReminderPolicy) UpcomingDeadlines(flags []*Flag, now time.Time) []Deadline {
	var out []Deadline
	for _, f := range flags {
		if !f.IsOpen() {
			continue
		}
		target, err := ParseDate(f.TargetDate, now)
		if err != nil {
			continue
		}
		days := daysBetween(now, target)
		if days < 0 || days > p.DeadlineHorizon {
			continue
		}
		out = append(out, Deadline{Flag: f, DaysLeft: days, Urgency: p.urgency(days)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysLeft < out[j].DaysLeft
	})
	return out
}

// RecentlyCompleted returns completed flags whose last check falls within
// RecentlyDoneWindow days.
func (p ReminderPolicy) RecentlyCompleted(flags []*Flag, now time.Time) []*Flag {
	var out []*Flag
	for _, f := range flags {
		if f.Status != StatusCompleted {
			continue
		}
		last, ok := f.LastCheck()
		if !ok {
			continue
		}
		at, err := ParseTimestamp(last.Date, now)
		if err != nil {
			continue
		}
		if daysBetween(at, now) <= p.RecentlyDoneWindow {
			out = append(out, f)
		}
	}
	return out
}

func (p ReminderPolicy) urgency(days int) Urgency {
	switch {
	case days <= p.UrgentDays:
		return UrgencyUrgent
	case days <= p.PressingDays:
		return UrgencyPressing
	default:
		return UrgencyEncouraging
	}
}

// lastActivity is the time of the last check, falling back to the created date.
func lastActivity(f *Flag, now time.Time) (time.Time, bool) {
	if last, ok := f.LastCheck(); ok {
		if at, err := ParseTimestamp(last.Date, now); err == nil {
			return at, true
		}
	}
	created, err := ParseDate(f.CreatedDate, now)
	if err != nil {
		return time.Time{}, false
	}
	return created, true
}

// DueReminders applies the default policy.
func DueReminders(flags []*Flag, now time.Time) []*Flag {
	return DefaultReminderPolicy().DueReminders(flags, now)
}

// UpcomingDeadlines applies the default policy.
func UpcomingDeadlines(flags []*Flag, now time.Time) []Deadline {
	return DefaultReminderPolicy().UpcomingDeadlines(flags, now)
}
