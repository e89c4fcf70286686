package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/flowfolio/internal/core"
	foliomcp "github.com/valter-silva-au/flowfolio/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the folio MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the folio MCP server on stdio",
	Long: `Start the folio MCP server on stdio transport.

The server exposes the portfolio as MCP tools that AI assistants can call:
list_workflows, get_workflow, list_categories, ask_assistant, get_metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Catalog == nil {
			return fmt.Errorf("catalog not initialized")
		}

		var factory foliomcp.AssistantFactory
		if NewAssistant != nil {
			factory = func() core.AssistantSession { return NewAssistant() }
		}
		srv := foliomcp.NewServer(Catalog, factory, MetricsCalc, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
