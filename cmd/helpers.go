package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/newhook/flagtrack/internal/flag"
	"github.com/newhook/flagtrack/internal/project"
	"github.com/newhook/flagtrack/internal/store"
)

// detailWidth is the wrap column for descriptions and reasons.
const detailWidth = 76

func openProject(ctx context.Context) (*project.Project, error) {
	proj, err := project.Find(ctx, flagProject)
	if err != nil {
		return nil, fmt.Errorf("not in a project directory: %w", err)
	}
	return proj, nil
}

// resolveFlag looks up a full id or unique prefix and explains failures.
func resolveFlag(ctx context.Context, st *store.Store, idOrPrefix string) (*flag.Flag, error) {
	f, err := st.Resolve(ctx, idOrPrefix)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("no flag matches %q, check the id", idOrPrefix)
	case errors.Is(err, store.ErrAmbiguousID):
		return nil, fmt.Errorf("%q matches more than one flag, use more characters", idOrPrefix)
	case err != nil:
		return nil, err
	}
	return f, nil
}

func scoreText(f *flag.Flag) string {
	if f.FeasibilityScore == nil {
		return "-"
	}
	return fmt.Sprintf("%d/100", *f.FeasibilityScore)
}

func wrapDetail(s string) string {
	return strings.TrimPrefix(indent.String(wordwrap.String(s, detailWidth-16), 16), strings.Repeat(" ", 16))
}

// printFlag writes the full detail block for one flag.
func printFlag(out io.Writer, f *flag.Flag) {
	row := func(label, value string) {
		fmt.Fprintf(out, "   %s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", label+":")), value)
	}
	fmt.Fprintf(out, "\n%s %s\n", statusIcon(f.Status), titleStyle.Render(f.Title))
	row("ID", f.ShortID()+"...")
	row("Description", wrapDetail(f.Description))
	row("Category", f.Category)
	row("Target", f.TargetDate)
	row("Progress", fmt.Sprintf("%d%%", f.Progress))
	row("Status", renderStatus(f.Status))
	row("Feasibility", scoreText(f))
	row("Analysis", wrapDetail(f.FeasibilityReason))
	row("Created", f.CreatedDate)
	if last, ok := f.LastCheck(); ok {
		row("Last check", last.Date)
	}
}

func printStats(out io.Writer, s flag.Statistics) {
	row := func(label, value string) {
		fmt.Fprintf(out, "   %s %s\n", labelStyle.Render(fmt.Sprintf("%-20s", label+":")), value)
	}
	row("Total", fmt.Sprint(s.Total))
	row("Completed", fmt.Sprint(s.Completed))
	row("In progress", fmt.Sprint(s.InProgress))
	row("Not started", fmt.Sprint(s.NotStarted))
	row("Completion rate", fmt.Sprintf("%.1f%%", s.CompletionRate))
	row("Average feasibility", fmt.Sprintf("%.1f/100", s.AvgFeasibility))
}
