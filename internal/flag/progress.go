package flag

import (
	"fmt"
	"time"
)

// HistoryMode selects which progress value a check record keeps.
type HistoryMode string

const (
	// HistoryRaw records the progress exactly as requested, before clamping.
	HistoryRaw HistoryMode = "raw"
	// HistoryClamped records the clamped progress that was stored.
	HistoryClamped HistoryMode = "clamped"
)

// ParseHistoryMode parses a history mode, defaulting to HistoryRaw when s is empty.
func ParseHistoryMode(s string) (HistoryMode, error) {
	switch HistoryMode(s) {
	case "":
		return HistoryRaw, nil
	case HistoryRaw, HistoryClamped:
		return HistoryMode(s), nil
	default:
		return "", fmt.Errorf("unknown history mode %q (valid: raw, clamped)", s)
	}
}

// ApplyProgress sets the flag's progress to the clamped value, appends a
// check record stamped with now and re-derives the status.
func ApplyProgress(f *Flag, progress int, notes string, now time.Time, mode HistoryMode) CheckRecord {
	clamped := Clamp(progress)
	recorded := progress
	if mode == HistoryClamped {
		recorded = clamped
	}

	rec := CheckRecord{
		Date:     now.Format(TimestampLayout),
		Progress: recorded,
		Notes:    notes,
	}
	f.Progress = clamped
	f.CheckHistory = append(f.CheckHistory, rec)
	f.Status = StatusFor(clamped)
	return rec
}
