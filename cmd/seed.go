package cmd

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/newhook/flagtrack/internal/sample"
	"github.com/newhook/flagtrack/internal/store"
	"github.com/spf13/cobra"
)

var flagSeedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demonstration flags",
	Long: `Replace the store with a set of demonstration flags whose dates are
relative to today. Refuses to touch a store that already has flags unless
--force is given.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().BoolVarP(&flagSeedForce, "force", "f", false, "replace existing flags")
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := GetContext()
	proj, err := openProject(ctx)
	if err != nil {
		return err
	}
	defer proj.Close()

	flags := sample.Flags(proj.Store.Now(), uuid.NewString)
	if err := proj.Store.Seed(ctx, flags, flagSeedForce); err != nil {
		if errors.Is(err, store.ErrNotEmpty) {
			return fmt.Errorf("%w: use --force to replace them", err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("Loaded %d demonstration flags", len(flags))))
	fmt.Fprintln(out, dimStyle.Render("Try: flagtrack list, flagtrack stats, flagtrack check"))
	return nil
}
