package flag

import (
	"fmt"
	"strings"
)

// Status is derived from a flag's progress.
type Status string

// Status values.
const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// AllStatuses lists statuses in report order.
var AllStatuses = []Status{StatusCompleted, StatusInProgress, StatusNotStarted}

// legacyStatuses maps labels written by older tools onto statuses.
var legacyStatuses = map[string]Status{
	"未开始":         StatusNotStarted,
	"进行中":         StatusInProgress,
	"已完成":         StatusCompleted,
	"not started": StatusNotStarted,
	"notstarted":  StatusNotStarted,
	"in progress": StatusInProgress,
	"inprogress":  StatusInProgress,
	"done":        StatusCompleted,
}

// StatusFor maps a progress value to its status. Values outside [0,100] are
// clamped first.
func StatusFor(progress int) Status {
	switch p := Clamp(progress); {
	case p >= 100:
		return StatusCompleted
	case p > 0:
		return StatusInProgress
	default:
		return StatusNotStarted
	}
}

// Clamp limits progress to [0,100].
func Clamp(progress int) int {
	return max(0, min(100, progress))
}

// ParseStatus parses a status name, accepting legacy labels.
func ParseStatus(s string) (Status, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch Status(key) {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return Status(key), nil
	}
	if st, ok := legacyStatuses[key]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q (valid: not_started, in_progress, completed)", s)
}

// Label returns the human-readable status name.
func (s Status) Label() string {
	switch s {
	case StatusNotStarted:
		return "Not started"
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// UnmarshalText accepts canonical and legacy status labels. Unknown labels
// decode as NotStarted; Normalize re-derives the status from progress anyway.
func (s *Status) UnmarshalText(text []byte) error {
	st, err := ParseStatus(string(text))
	if err != nil {
		*s = StatusNotStarted
		return nil
	}
	*s = st
	return nil
}
