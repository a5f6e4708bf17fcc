package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/newhook/flagtrack/internal/project"
	"github.com/newhook/flagtrack/internal/report"
	"github.com/spf13/cobra"
)

var flagReportDir string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a progress report file",
	Long: `Write flag_report_YYYYMMDD_HHMMSS.txt with overall statistics, every flag
grouped by status and the flags due for a check.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&flagReportDir, "dir", "", "output directory (default: [report] dir from config)")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := GetContext()
	proj, err := openProject(ctx)
	if err != nil {
		return err
	}
	defer proj.Close()

	return writeReport(ctx, cmd.OutOrStdout(), proj, flagReportDir)
}

func writeReport(ctx context.Context, out io.Writer, proj *project.Project, dir string) error {
	if dir == "" {
		dir = proj.ReportDir()
	}
	path, err := report.Save(ctx, proj.Store, dir)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, successStyle.Render("Report written: "+path))
	return nil
}
