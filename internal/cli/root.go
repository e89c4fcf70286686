package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Flowfolio - a portfolio of automation workflows with an AI assistant",
	Long: `Flowfolio (folio) keeps a portfolio of automation workflow case studies.

Visitors can browse the catalog by category, read each case study, and ask
the portfolio assistant questions about the work. In creator mode the
catalog can be edited, and it can be exported as a TypeScript data module,
JSON, or YAML.

The same catalog is served over HTTP (folio serve) and MCP (folio mcp serve).`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "folio %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// commandContext returns the command's context, falling back to Background
// when the command is invoked outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
