package cmd

import (
	"fmt"

	"github.com/newhook/flagtrack/internal/project"
	"github.com/spf13/cobra"
)

var flagInitBackend string

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a flagtrack project",
	Long: `Create a flagtrack project in dir (default: current directory).

Writes .flagtrack/config.toml with every option documented and creates an
empty flag store.

Example:
  flagtrack init
  flagtrack init ~/goals --backend sqlite`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&flagInitBackend, "backend", project.BackendJSON, "storage backend (json, sqlite, postgres)")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	switch flagInitBackend {
	case project.BackendJSON, project.BackendSQLite, project.BackendPostgres:
	default:
		return fmt.Errorf("unknown backend %q (valid: json, sqlite, postgres)", flagInitBackend)
	}

	proj, err := project.Create(GetContext(), dir, flagInitBackend)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	defer proj.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", successStyle.Render(fmt.Sprintf("Project '%s' created", proj.Config.Project.Name)))
	fmt.Fprintf(out, "  Directory: %s\n", proj.Root)
	fmt.Fprintf(out, "  Backend:   %s\n", proj.Config.Storage.GetBackend())
	if proj.Config.Storage.GetBackend() != project.BackendPostgres {
		fmt.Fprintf(out, "  Store:     %s\n", proj.StoragePath())
	}
	return nil
}
