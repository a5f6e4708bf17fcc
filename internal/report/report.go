package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/newhook/flagtrack/internal/flag"
	"github.com/newhook/flagtrack/internal/logging"
	"github.com/newhook/flagtrack/internal/store"
)

const (
	fileTimeLayout = "20060102_150405"
	// Width is the column descriptions are wrapped at.
	Width = 72
)

// Group is the flags sharing one status.
type Group struct {
	Status flag.Status
	Flags  []*flag.Flag
}

// Report is a point-in-time progress report.
type Report struct {
	GeneratedAt time.Time
	Stats       flag.Statistics
	Groups      []Group // completed, in progress, not started; empty groups omitted
	Reminders   []*flag.Flag
}

// Build collects a report from st.
func Build(ctx context.Context, st *store.Store) (Report, error) {
	stats, err := st.Statistics(ctx)
	if err != nil {
		return Report{}, err
	}
	r := Report{GeneratedAt: st.Now(), Stats: stats}
	for _, status := range flag.AllStatuses {
		flags, err := st.List(ctx, store.Filter{Status: status})
		if err != nil {
			return Report{}, err
		}
		if len(flags) > 0 {
			r.Groups = append(r.Groups, Group{Status: status, Flags: flags})
		}
	}
	r.Reminders, err = st.DueReminders(ctx)
	if err != nil {
		return Report{}, err
	}
	return r, nil
}

// FileName is the report file name for a report generated at t.
func FileName(t time.Time) string {
	return "flag_report_" + t.Format(fileTimeLayout) + ".txt"
}

// Write renders r as plain text.
func Write(w io.Writer, r Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Flag progress report\n")
	fmt.Fprintf(&b, "Generated: %s\n", r.GeneratedAt.Format(flag.TimestampLayout))
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	b.WriteString("Overall:\n")
	fmt.Fprintf(&b, "  Total flags: %d\n", r.Stats.Total)
	fmt.Fprintf(&b, "  Completed: %d\n", r.Stats.Completed)
	fmt.Fprintf(&b, "  In progress: %d\n", r.Stats.InProgress)
	fmt.Fprintf(&b, "  Not started: %d\n", r.Stats.NotStarted)
	fmt.Fprintf(&b, "  Completion rate: %.1f%%\n", r.Stats.CompletionRate)
	fmt.Fprintf(&b, "  Average feasibility: %.1f/100\n\n", r.Stats.AvgFeasibility)

	for _, g := range r.Groups {
		fmt.Fprintf(&b, "%s (%d):\n", g.Status.Label(), len(g.Flags))
		for _, f := range g.Flags {
			fmt.Fprintf(&b, "  * %s\n", f.Title)
			desc := wordwrap.String("Description: "+f.Description, Width-5)
			b.WriteString(indent.String(desc, 5) + "\n")
			fmt.Fprintf(&b, "     Progress: %d%%\n", f.Progress)
			fmt.Fprintf(&b, "     Target date: %s\n", f.TargetDate)
			fmt.Fprintf(&b, "     Feasibility: %s/100\n\n", scoreText(f))
		}
	}

	if len(r.Reminders) > 0 {
		fmt.Fprintf(&b, "Due for a check (%d):\n", len(r.Reminders))
		for _, f := range r.Reminders {
			fmt.Fprintf(&b, "  - %s (progress %d%%)\n", f.Title, f.Progress)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Save builds a report and writes it into dir, returning the file path.
func Save(ctx context.Context, st *store.Store, dir string) (string, error) {
	r, err := Build(ctx, st)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(dir, FileName(r.GeneratedAt))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}
	if err := Write(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	logging.InfoContext(ctx, "report written", "path", path, "flags", r.Stats.Total)
	return path, nil
}

func scoreText(f *flag.Flag) string {
	if f.FeasibilityScore == nil {
		return "-"
	}
	return fmt.Sprint(*f.FeasibilityScore)
}
