package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Show flags due for a progress check",
	Long: `Show open flags that have gone a month (check_interval_days) without a
progress check.`,
	Args: cobra.NoArgs,
	RunE: runReminders,
}

func runReminders(cmd *cobra.Command, args []string) error {
	ctx := GetContext()
	proj, err := openProject(ctx)
	if err != nil {
		return err
	}
	defer proj.Close()

	due, err := proj.Store.DueReminders(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute reminders: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(due) == 0 {
		fmt.Fprintln(out, dimStyle.Render("No flags need a check"))
		return nil
	}
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%d flags need a progress check", len(due))))
	for _, f := range due {
		printFlag(out, f)
		fmt.Fprintf(out, "   %s\n", warnStyle.Render("Time to check in on this flag!"))
	}
	return nil
}
