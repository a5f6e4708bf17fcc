package cmd

import (
	"fmt"

	"github.com/newhook/flagtrack/internal/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var flagExportFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print every flag as JSON or YAML",
	Long: `Print every flag record. JSON output is byte-for-byte the flags.json
document format, so it can seed another project's store.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportFormat, "format", "f", "json", "output format (json, yaml)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := GetContext()
	proj, err := openProject(ctx)
	if err != nil {
		return err
	}
	defer proj.Close()

	flags, err := proj.Store.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to load flags: %w", err)
	}

	var data []byte
	switch flagExportFormat {
	case "json":
		data, err = store.EncodeFlags(flags)
	case "yaml":
		data, err = yaml.Marshal(flags)
	default:
		return fmt.Errorf("unknown format %q (valid: json, yaml)", flagExportFormat)
	}
	if err != nil {
		return fmt.Errorf("failed to encode flags: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
