package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/flowfolio/internal/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the portfolio over HTTP",
	Long: `Serve the catalog, the export, and assistant chat sessions as a JSON API.

Endpoints that change the catalog are only enabled when creator_mode is true
in .folioconfig. Errors are RFC 7807 problem+json documents.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Catalog == nil {
			return fmt.Errorf("catalog not initialized")
		}

		addr := serveAddr
		if addr == "" {
			addr = ServerAddr
		}

		srv := api.NewServer(Catalog, api.Options{
			CreatorMode:  CreatorMode,
			NewAssistant: NewAssistant,
			Logger:       Logger,
			Version:      appVersion,
			SessionTTL:   ChatSessionTTL,
			MaxSessions:  MaxChatSessions,
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fmt.Fprintf(cmd.ErrOrStderr(), "Serving on %s (creator mode: %t)\n", addr, CreatorMode)
		return srv.Start(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from server.addr)")
	rootCmd.AddCommand(serveCmd)
}
