package flag

import "math"

// Statistics summarises a set of flags.
type Statistics struct {
	Total          int     `json:"total" yaml:"total"`
	Completed      int     `json:"completed" yaml:"completed"`
	InProgress     int     `json:"in_progress" yaml:"in_progress"`
	NotStarted     int     `json:"not_started" yaml:"not_started"`
	CompletionRate float64 `json:"completion_rate" yaml:"completion_rate"`
	AvgFeasibility float64 `json:"avg_feasibility" yaml:"avg_feasibility"`
}

// ComputeStatistics counts flags by status and averages feasibility scores.
// Flags without a score are left out of the average.
func ComputeStatistics(flags []*Flag) Statistics {
	var s Statistics
	s.Total = len(flags)

	var scoreSum, scored int
	for _, f := range flags {
		switch f.Status {
		case StatusCompleted:
			s.Completed++
		case StatusInProgress:
			s.InProgress++
		case StatusNotStarted:
			s.NotStarted++
		}
		if f.FeasibilityScore != nil {
			scoreSum += *f.FeasibilityScore
			scored++
		}
	}

	if s.Total > 0 {
		s.CompletionRate = float64(s.Completed) / float64(s.Total) * 100
	}
	if scored > 0 {
		s.AvgFeasibility = math.Round(float64(scoreSum)/float64(scored)*10) / 10
	}
	return s
}
