// Package dateparse turns target dates typed by people into YYYY-MM-DD.
package dateparse

import (
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/newhook/flagtrack/internal/flag"
)

// isoShaped matches text that is meant as a calendar date, valid or not.
var isoShaped = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$`)

var parser = newParser()

// newParser builds a parser over the date rules only. Time-of-day rules
// (en.Hour, en.HourMinute, en.CasualTime) are left out: a target date is a
// day, and "6 pm" or "10:30" alone must not resolve to today.
func newParser() *when.Parser {
	w := when.New(nil)
	w.Add(
		en.Weekday(rules.Override),
		en.CasualDate(rules.Override),
		en.Deadline(rules.Override),
		en.PastTime(rules.Override),
		en.ExactMonthDate(rules.Override),
	)
	w.Add(common.All...)
	return w
}

// Normalize returns text as a YYYY-MM-DD date. Text that already is one is
// returned unchanged. Natural phrases such as "in 3 months" or "next friday"
// are resolved against now when the phrase covers the whole input. Anything
// else, including malformed calendar dates like 2026-02-30, is returned
// verbatim (trimmed) so the flag keeps what the user typed and scores it as
// an invalid date.
func Normalize(text string, now time.Time) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return text
	}
	if _, err := flag.ParseDate(text, now); err == nil {
		return text
	}
	if isoShaped.MatchString(text) {
		return text
	}

	r, err := parser.Parse(text, now)
	if err != nil || r == nil {
		return text
	}
	if r.Index != 0 || len(strings.TrimSpace(r.Text)) != len(text) {
		return text
	}
	return r.Time.Format(flag.DateLayout)
}
