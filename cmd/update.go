package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/newhook/flagtrack/internal/project"
	"github.com/spf13/cobra"
)

var (
	flagUpdateNotes    string
	flagUpdateProgress int
)

var updateCmd = &cobra.Command{
	Use:   "update <id> <progress>",
	Short: "Record progress on a flag",
	Long: `Record progress (0-100) on a flag. Values outside the range are clamped
and the status follows the progress. The first 8 characters of the id are
enough.

Negative values look like flags to the parser; pass them with --progress or
after "--".

Example:
  flagtrack update 3f2a9c1b 40 -n "halfway through the course"
  flagtrack update 3f2a9c1b --progress -5
  flagtrack update 3f2a9c1b -- -5`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().StringVarP(&flagUpdateNotes, "notes", "n", "", "notes for this check")
	updateCmd.Flags().IntVarP(&flagUpdateProgress, "progress", "p", 0, "progress value, instead of the positional argument")
}

// progressArg returns the progress from the positional argument or --progress.
func progressArg(cmd *cobra.Command, args []string) (int, error) {
	fromFlag := cmd.Flags().Changed("progress")
	switch {
	case len(args) == 2 && fromFlag:
		return 0, fmt.Errorf("give progress either as an argument or with --progress, not both")
	case fromFlag:
		return flagUpdateProgress, nil
	case len(args) == 2:
		progress, err := strconv.Atoi(args[1])
		if err != nil {
			return 0, fmt.Errorf("progress must be a whole number: %q", args[1])
		}
		return progress, nil
	default:
		return 0, fmt.Errorf("missing progress (0-100)")
	}
}

func runUpdate(cmd *cobra.Command, args []string) error {
	progress, err := progressArg(cmd, args)
	if err != nil {
		return err
	}

	ctx := GetContext()
	proj, err := openProject(ctx)
	if err != nil {
		return err
	}
	defer proj.Close()

	return updateFlag(ctx, cmd.OutOrStdout(), proj, args[0], progress, flagUpdateNotes)
}

func updateFlag(ctx context.Context, out io.Writer, proj *project.Project, idOrPrefix string, progress int, notes string) error {
	f, err := resolveFlag(ctx, proj.Store, idOrPrefix)
	if err != nil {
		return err
	}
	ok, err := proj.Store.UpdateProgress(ctx, f.ID, progress, notes)
	if err != nil {
		return fmt.Errorf("failed to update flag: %w", err)
	}
	if !ok {
		return fmt.Errorf("flag %s disappeared before it could be updated", f.ShortID())
	}

	updated, err := proj.Store.Get(ctx, f.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, successStyle.Render("Progress updated"))
	printFlag(out, updated)
	return nil
}
