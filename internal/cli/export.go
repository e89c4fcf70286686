package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/flowfolio/internal/core"
)

var (
	exportFormat   string
	exportOutput   string
	exportDownload bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog as TypeScript, JSON, or YAML",
	Long: `Export the whole catalog.

The default ts format is a TypeScript data module:

  import { Workflow } from './types';

  export const WORKFLOWS: Workflow[] = [ ... ];

Without --output the dump is written to stdout for copying. --output writes
a file; --download writes it to the format's default name (data.ts,
workflows.json, workflows.yaml) in the current directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Catalog == nil {
			return fmt.Errorf("catalog not initialized")
		}

		format, err := core.ParseExportFormat(exportFormat)
		if err != nil {
			return err
		}

		data, err := core.ExportCatalog(Catalog.All(), format)
		if err != nil {
			return fmt.Errorf("exporting catalog: %w", err)
		}

		target := exportOutput
		if target == "" && exportDownload {
			target = format.Filename()
		}
		if target == "" {
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}

		if err := os.WriteFile(target, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d workflows to %s\n", Catalog.Len(), target)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "ts", "Output format: ts, json, yaml")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to this file instead of stdout")
	exportCmd.Flags().BoolVar(&exportDownload, "download", false, "Write to the format's default file name")
	_ = exportCmd.RegisterFlagCompletionFunc("format", completeExportFormats)
	rootCmd.AddCommand(exportCmd)
}
