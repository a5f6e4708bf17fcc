package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a flag",
	Long:  `Delete a flag. The first 8 characters of the id are enough.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
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
	ok, err := proj.Store.Delete(ctx, f.ID)
	if err != nil {
		return fmt.Errorf("failed to delete flag: %w", err)
	}
	if !ok {
		return fmt.Errorf("flag %s not found", f.ShortID())
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Deleted %s (%s)", f.ShortID(), f.Title)))
	return nil
}
