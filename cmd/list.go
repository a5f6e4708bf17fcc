package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/x/ansi"
	"github.com/newhook/flagtrack/internal/flag"
	"github.com/newhook/flagtrack/internal/project"
	"github.com/newhook/flagtrack/internal/store"
	"github.com/spf13/cobra"
)

var (
	flagListCategory string
	flagListStatus   string
)

// listTitleWidth bounds titles in list rows.
const listTitleWidth = 48

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List flags",
	Long:  `List flags, newest first, with optional category and status filters.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVarP(&flagListCategory, "category", "c", "", "filter by category")
	listCmd.Flags().StringVarP(&flagListStatus, "status", "s", "", "filter by status (not_started, in_progress, completed)")
}

func runList(cmd *cobra.Command, args []string) error {
	filter := store.Filter{Category: flagListCategory}
	if flagListStatus != "" {
		status, err := flag.ParseStatus(flagListStatus)
		if err != nil {
			return err
		}
		filter.Status = status
	}

	ctx := GetContext()
	proj, err := openProject(ctx)
	if err != nil {
		return err
	}
	defer proj.Close()

	return listFlags(ctx, cmd.OutOrStdout(), proj, filter)
}

func listFlags(ctx context.Context, out io.Writer, proj *project.Project, filter store.Filter) error {
	flags, err := proj.Store.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list flags: %w", err)
	}
	if len(flags) == 0 {
		fmt.Fprintln(out, dimStyle.Render("No flags"))
		return nil
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%d flags", len(flags))))
	for _, f := range flags {
		title := ansi.Truncate(f.Title, listTitleWidth, "...")
		fmt.Fprintf(out, "\n%s %s (%d%%)\n", statusIcon(f.Status), titleStyle.Render(title), f.Progress)
		fmt.Fprintf(out, "   %s | %s | target %s\n", f.ShortID(), renderStatus(f.Status), f.TargetDate)
		fmt.Fprintf(out, "   %s\n", dimStyle.Render(fmt.Sprintf("feasibility %s | %s", scoreText(f), f.Category)))
	}
	return nil
}
