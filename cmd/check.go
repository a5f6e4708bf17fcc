package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/newhook/flagtrack/internal/flag"
	"github.com/newhook/flagtrack/internal/project"
	"github.com/newhook/flagtrack/internal/report"
	"github.com/spf13/cobra"
)

var flagCheckExitCode bool

// ErrNeedsAttention is returned by check --exit-code when flags are due.
var ErrNeedsAttention = errors.New("flags need attention")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a periodic progress check",
	Long: `Show flags due for a check, deadlines in the next 30 days, recently
completed flags, overall statistics and advice. Suited to a cron job: the
output is plain when not attached to a terminal.

With --exit-code the command fails when any flag is due for a check or
close to its deadline, so a cron wrapper can alert on it.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&flagCheckExitCode, "exit-code", false, "exit with status 1 when any flag needs attention")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := GetContext()
	proj, err := openProject(ctx)
	if err != nil {
		return err
	}
	defer proj.Close()

	n, err := checkFlags(ctx, cmd.OutOrStdout(), proj)
	if err != nil {
		return err
	}
	if flagCheckExitCode && n > 0 {
		return fmt.Errorf("%w: %d", ErrNeedsAttention, n)
	}
	return nil
}

// checkFlags prints the check summary and returns how many flags need
// attention (due reminders plus upcoming deadlines).
func checkFlags(ctx context.Context, out io.Writer, proj *project.Project) (int, error) {
	s, err := report.Check(ctx, proj.Store)
	if err != nil {
		return 0, fmt.Errorf("check failed: %w", err)
	}

	fmt.Fprintf(out, "Checked at %s\n", s.CheckedAt.Format(flag.TimestampLayout))
	fmt.Fprintln(out, dimStyle.Render("=================================================="))

	if len(s.Reminders) == 0 {
		fmt.Fprintln(out, successStyle.Render("No flags need a check"))
	} else {
		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%d flags need a progress check:", len(s.Reminders))))
		for _, f := range s.Reminders {
			fmt.Fprintf(out, "\n  %s\n", titleStyle.Render(f.Title))
			fmt.Fprintf(out, "     Progress: %d%%\n", f.Progress)
			fmt.Fprintf(out, "     Target:   %s\n", f.TargetDate)
			if last, ok := f.LastCheck(); ok {
				fmt.Fprintf(out, "     Last check: %s\n", last.Date)
			}
		}
	}

	if len(s.Deadlines) > 0 {
		fmt.Fprintf(out, "\n%s\n", headerStyle.Render(fmt.Sprintf("%d flags due soon:", len(s.Deadlines))))
		for _, d := range s.Deadlines {
			fmt.Fprintf(out, "\n  %s\n", titleStyle.Render(d.Flag.Title))
			fmt.Fprintf(out, "     Days left: %d\n", d.DaysLeft)
			fmt.Fprintf(out, "     Progress:  %d%%\n", d.Flag.Progress)
			fmt.Fprintf(out, "     Target:    %s\n", d.Flag.TargetDate)
			fmt.Fprintf(out, "     %s\n", urgencyStyles[d.Urgency].Render(report.UrgencyNote(d.Urgency)))
		}
	}

	if len(s.RecentlyCompleted) > 0 {
		fmt.Fprintf(out, "\n%s\n", headerStyle.Render(fmt.Sprintf("%d flags completed recently:", len(s.RecentlyCompleted))))
		for _, f := range s.RecentlyCompleted {
			fmt.Fprintf(out, "  %s %s\n", statusIcon(f.Status), f.Title)
			if last, ok := f.LastCheck(); ok {
				fmt.Fprintf(out, "     Completed: %s\n", last.Date)
			}
		}
	}

	fmt.Fprintf(out, "\n%s\n", headerStyle.Render("Overall"))
	fmt.Fprintf(out, "   Total flags: %d\n", s.Stats.Total)
	fmt.Fprintf(out, "   Completion rate: %.1f%%\n", s.Stats.CompletionRate)
	fmt.Fprintf(out, "   Average feasibility: %.1f/100\n", s.Stats.AvgFeasibility)

	for _, a := range s.Advice {
		style := successStyle
		if a != report.AdvicePraise {
			style = warnStyle
		}
		fmt.Fprintf(out, "\n%s\n", style.Render(string(a)))
	}

	n := s.NeedsAttention()
	fmt.Fprintf(out, "\n%s\n", dimStyle.Render(fmt.Sprintf("%d flags need attention", n)))
	return n, nil
}
