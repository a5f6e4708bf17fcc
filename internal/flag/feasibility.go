package flag

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Reason clauses produced by Assess, in check order.
const (
	ReasonInvalidDate       = "invalid date format"
	ReasonTooShort          = "target time too short (less than 30 days)"
	ReasonShort             = "target time short (less than 3 months)"
	ReasonTooLong           = "target time too long (over 1 year)"
	ReasonDescriptionSimple = "description too simple, lacks specificity"
	ReasonDescriptionVague  = "description could be more specific"
	ReasonTitleShort        = "title too short"
	ReasonNotQuantifiable   = "lacks quantifiable metric"
	ReasonWellDefined       = "goal well-defined, high feasibility"

	// ReasonSeparator joins reason clauses.
	ReasonSeparator = "; "
)

// quantifiers are frequency and unit words that make a goal measurable.
var quantifiers = []string{
	"daily", "weekly", "monthly", "times", "hour", "minute",
	"每天", "每周", "每月", "次", "小时", "分钟",
}

// Assessment is the result of scoring a flag.
type Assessment struct {
	Score  int
	Reason string
}

// Assess scores how realistic a flag is. It starts at 100, applies
// independent deductions and bonuses and clamps the result to [0,100].
func Assess(f *Flag, now time.Time) Assessment {
	score := 100
	var reasons []string

	if target, err := ParseDate(f.TargetDate, now); err != nil {
		score -= 20
		reasons = append(reasons, ReasonInvalidDate)
	} else {
		switch days := daysBetween(now, target); {
		case days < 30:
			score -= 30
			reasons = append(reasons, ReasonTooShort)
		case days < 90:
			score -= 10
			reasons = append(reasons, ReasonShort)
		case days > 365:
			score -= 5
			reasons = append(reasons, ReasonTooLong)
		}
	}

	switch n := utf8.RuneCountInString(f.Description); {
	case n < 20:
		score -= 15
		reasons = append(reasons, ReasonDescriptionSimple)
	case n < 50:
		score -= 5
		reasons = append(reasons, ReasonDescriptionVague)
	}

	if utf8.RuneCountInString(f.Title) < 5 {
		score -= 10
		reasons = append(reasons, ReasonTitleShort)
	}

	if isQuantifiable(f.Description) {
		score += 5
	} else {
		score -= 5
		reasons = append(reasons, ReasonNotQuantifiable)
	}

	reason := ReasonWellDefined
	if len(reasons) > 0 {
		reason = strings.Join(reasons, ReasonSeparator)
	}
	return Assessment{
		Score:  max(0, min(100, score)),
		Reason: reason,
	}
}

func isQuantifiable(description string) bool {
	lower := strings.ToLower(description)
	for _, word := range quantifiers {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
