// Package flag defines the flag (goal) record and the pure logic that operates
// on it: feasibility scoring, progress tracking, reminder selection and
// statistics. Nothing in this package performs I/O.
package flag

import (
	"time"
)

// SchemaVersion is the record schema version written with every flag.
// Records without a version are read as version 1.
const SchemaVersion = 1

// DefaultCategory is used when a flag is created without a category.
const DefaultCategory = "Other"

const (
	// DateLayout is the layout of target and created dates.
	DateLayout = "2006-01-02"
	// TimestampLayout is the layout of check history timestamps.
	TimestampLayout = "2006-01-02 15:04:05"
)

// Flag is a user-defined goal.
type Flag struct {
	SchemaVersion     int           `json:"schema_version,omitempty" yaml:"schema_version,omitempty"`
	ID                string        `json:"id" yaml:"id"`
	Title             string        `json:"title" yaml:"title"`
	Description       string        `json:"description" yaml:"description"`
	Category          string        `json:"category" yaml:"category"`
	TargetDate        string        `json:"target_date" yaml:"target_date"`
	CreatedDate       string        `json:"created_date" yaml:"created_date"`
	Progress          int           `json:"progress" yaml:"progress"`
	Status            Status        `json:"status" yaml:"status"`
	CheckHistory      []CheckRecord `json:"check_history" yaml:"check_history"`
	FeasibilityScore  *int          `json:"feasibility_score" yaml:"feasibility_score"`
	FeasibilityReason string        `json:"feasibility_reason" yaml:"feasibility_reason"`
}

// CheckRecord is a single progress snapshot. Records are never modified once
// appended to a flag's history.
type CheckRecord struct {
	Date     string `json:"date" yaml:"date"`
	Progress int    `json:"progress" yaml:"progress"`
	Notes    string `json:"notes" yaml:"notes"`
}

// New builds a flag created at now and scores it. The caller supplies the id.
func New(id, title, description, targetDate, category string, now time.Time) *Flag {
	if category == "" {
		category = DefaultCategory
	}
	f := &Flag{
		SchemaVersion: SchemaVersion,
		ID:            id,
		Title:         title,
		Description:   description,
		Category:      category,
		TargetDate:    targetDate,
		CreatedDate:   now.Format(DateLayout),
		Progress:      0,
		Status:        StatusFor(0),
		CheckHistory:  []CheckRecord{},
	}
	a := Assess(f, now)
	score := a.Score
	f.FeasibilityScore = &score
	f.FeasibilityReason = a.Reason
	return f
}

// Normalize brings a loaded record in line with the record invariants:
// progress is clamped, status is derived from progress, the history is
// non-nil and the schema version is set.
func (f *Flag) Normalize() {
	if f.SchemaVersion == 0 {
		f.SchemaVersion = SchemaVersion
	}
	if f.Category == "" {
		f.Category = DefaultCategory
	}
	f.Progress = Clamp(f.Progress)
	f.Status = StatusFor(f.Progress)
	if f.CheckHistory == nil {
		f.CheckHistory = []CheckRecord{}
	}
}

// LastCheck returns the most recent check record, if any.
func (f *Flag) LastCheck() (CheckRecord, bool) {
	if len(f.CheckHistory) == 0 {
		return CheckRecord{}, false
	}
	return f.CheckHistory[len(f.CheckHistory)-1], true
}

// IsOpen reports whether the flag is not yet completed.
func (f *Flag) IsOpen() bool {
	return f.Status == StatusNotStarted || f.Status == StatusInProgress
}

// ShortID returns the first eight characters of the id.
func (f *Flag) ShortID() string {
	if len(f.ID) <= 8 {
		return f.ID
	}
	return f.ID[:8]
}

// Clone returns a deep copy of the flag.
func (f *Flag) Clone() *Flag {
	c := *f
	if f.FeasibilityScore != nil {
		s := *f.FeasibilityScore
		c.FeasibilityScore = &s
	}
	c.CheckHistory = append([]CheckRecord(nil), f.CheckHistory...)
	if c.CheckHistory == nil {
		c.CheckHistory = []CheckRecord{}
	}
	return &c
}

// ParseDate parses a calendar date in the location of ref.
func ParseDate(s string, ref time.Time) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, ref.Location())
}

// ParseTimestamp parses a check history timestamp in the location of ref.
func ParseTimestamp(s string, ref time.Time) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, s, ref.Location())
}

// daysBetween returns the whole number of days from a to b, rounded toward
// negative infinity.
func daysBetween(a, b time.Time) int {
	d := b.Sub(a)
	days := int(d / (24 * time.Hour))
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}
	return days
}
