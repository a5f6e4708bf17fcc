// Package sample builds demonstration flags for the seed command.
package sample

import (
	"time"

	"github.com/newhook/flagtrack/internal/flag"
)

type check struct {
	after    int // days after creation
	progress int
	notes    string
}

type goal struct {
	title       string
	description string
	category    string
	createdAgo  int // days before now
	targetIn    int // days after now
	checks      []check
}

var goals = []goal{
	{
		title:       "Learn Go programming",
		description: "Study 1 hour every day, finish 3 projects and earn a certificate. Covers syntax, interfaces and web services",
		category:    "Learning",
		createdAgo:  100,
		targetIn:    260,
		checks: []check{
			{14, 20, "finished the language tour"},
			{45, 45, "finished interfaces and generics"},
			{75, 75, "shipped the web service project"},
		},
	},
	{
		title:       "Lose 10 kg",
		description: "Exercise 4 times a week for 1 hour, track calories and weight. Goal is 75 kg down to 65 kg",
		category:    "Health",
		createdAgo:  120,
		targetIn:    5,
		checks: []check{
			{30, 25, "down 2.5 kg, 72.5 kg"},
			{59, 50, "down 5 kg, 70 kg"},
			{90, 60, "down 6 kg, 69 kg"},
		},
	},
	{
		title:       "Pass the language certificate exam",
		description: "Memorize 50 words every day, do 2 practice tests every week and take a mock exam. Target score above 550",
		category:    "Learning",
		createdAgo:  170,
		targetIn:    -10,
		checks: []check{
			{31, 30, "vocabulary at 4000 words, started practice tests"},
			{60, 60, "practice average 480"},
			{105, 85, "mock exam 520"},
			{160, 100, "passed with 568!"},
		},
	},
	{
		title:       "Save for a camera",
		description: "Save 2000 every month, learn photography basics and compare models. Buy a professional camera",
		category:    "Spending",
		createdAgo:  200,
		targetIn:    40,
		checks: []check{
			{31, 25, "saved 4000"},
			{91, 50, "saved 8000"},
			{152, 75, "saved 12000"},
			{182, 80, "saved 12800, almost there"},
		},
	},
	{
		title:       "Learn guitar",
		description: "practice chords",
		category:    "Hobbies",
		createdAgo:  40,
		targetIn:    20,
	},
	{
		title:       "Read 20 books",
		description: "Read 2 books every month, write notes and share reviews. Mix novels, history and science",
		category:    "Learning",
		createdAgo:  150,
		targetIn:    215,
		checks: []check{
			{58, 20, "finished 4 books"},
			{120, 40, "finished 8 books"},
			{125, 45, "finished 9 books"},
		},
	},
}

// Flags returns the demonstration flags with dates relative to now. Each
// flag is scored as of its creation day and its checks are replayed in order.
func Flags(now time.Time, newID func() string) []*flag.Flag {
	flags := make([]*flag.Flag, 0, len(goals))
	for _, g := range goals {
		created := now.AddDate(0, 0, -g.createdAgo)
		target := now.AddDate(0, 0, g.targetIn).Format(flag.DateLayout)
		f := flag.New(newID(), g.title, g.description, target, g.category, created)
		for _, c := range g.checks {
			flag.ApplyProgress(f, c.progress, c.notes, created.AddDate(0, 0, c.after), flag.HistoryRaw)
		}
		flags = append(flags, f)
	}
	return flags
}
