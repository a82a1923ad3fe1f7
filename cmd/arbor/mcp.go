package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the demo app as a Model Context Protocol (MCP) server",
	Long: `Exposes the app's inputs to AI agents as tools:

- describe_form lists the inputs, their kinds and allowed values
- submit_form fills them and completes the run
- reset_form discards the values entered so far

Supported transports: stdio (default) and sse.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, cleanup, err := setup(cmd, arbor.Headless())
		if err != nil {
			return err
		}
		defer cleanup()

		srv := mcp.NewServer(app.Dispatcher(), app.Sessions(), arbor.Version)

		transport, _ := cmd.Flags().GetString("transport")
		switch transport {
		case "stdio":
			// Logs go to stderr so they never corrupt JSON-RPC on stdout.
			log.SetOutput(os.Stderr)
			return srv.ServeStdio()
		case "sse":
			port, _ := cmd.Flags().GetInt("port")
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
