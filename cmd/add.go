package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/newhook/flagtrack/internal/dateparse"
	"github.com/newhook/flagtrack/internal/project"
	"github.com/newhook/flagtrack/internal/store"
	"github.com/spf13/cobra"
)

var flagAddCategory string

var addCmd = &cobra.Command{
	Use:   "add <title> <description> <target-date>",
	Short: "Add a flag",
	Long: `Add a flag and score how feasible it is.

The target date is YYYY-MM-DD. Phrases such as "in 6 months", "tomorrow" or
"next friday" are converted to a date; anything else is stored as typed.

Example:
  flagtrack add "Learn Go" "Study 1 hour daily, ship 3 projects" 2026-12-31
  flagtrack add "Run a 10k" "Run 3 times a week" "in 4 months" -c Health`,
	Args: cobra.ExactArgs(3),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&flagAddCategory, "category", "c", "", "category (default: Other)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := GetContext()
	proj, err := openProject(ctx)
	if err != nil {
		return err
	}
	defer proj.Close()

	return addFlag(ctx, cmd.OutOrStdout(), proj, store.NewFlag{
		Title:       args[0],
		Description: args[1],
		TargetDate:  args[2],
		Category:    flagAddCategory,
	})
}

func addFlag(ctx context.Context, out io.Writer, proj *project.Project, nf store.NewFlag) error {
	nf.TargetDate = dateparse.Normalize(nf.TargetDate, proj.Store.Now())
	f, err := proj.Store.Add(ctx, nf)
	if err != nil {
		return fmt.Errorf("failed to add flag: %w", err)
	}
	fmt.Fprintln(out, successStyle.Render("Flag added"))
	printFlag(out, f)
	return nil
}
