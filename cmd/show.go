package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one flag with its check history",
	Long:  `Show one flag in full. The first 8 characters of the id are enough.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := GetContext()
	proj, err := openProject(ctx)
	if err != nil {
		return err
	}
	defer proj.Close()

	f, err := resolveFlag(ctx, proj.Store, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printFlag(out, f)
	fmt.Fprintf(out, "   %s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", "Full ID:")), f.ID)

	if len(f.CheckHistory) == 0 {
		fmt.Fprintf(out, "\n   %s\n", dimStyle.Render("No checks recorded"))
		return nil
	}
	fmt.Fprintf(out, "\n   %s\n", headerStyle.Render("History"))
	for _, c := range f.CheckHistory {
		line := fmt.Sprintf("%s  %3d%%", c.Date, c.Progress)
		if c.Notes != "" {
			line += "  " + wrapDetail(c.Notes)
		}
		fmt.Fprintf(out, "   %s\n", line)
	}
	return nil
}
