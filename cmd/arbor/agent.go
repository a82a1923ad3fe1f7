package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/arbor"
	"github.com/spf13/cobra"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run the demo app headless and print what gets submitted",
	Long: `Serves the app with a finish control and waits until it is used, the
timeout elapses or the process is interrupted. The submitted input values are
printed as JSON; on timeout an empty object is printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cfg, cleanup, err := setup(cmd, arbor.Headless())
		if err != nil {
			return err
		}
		defer cleanup()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Addr
		}
		timeout, _ := cmd.Flags().GetDuration("timeout")
		if !cmd.Flags().Changed("timeout") {
			timeout = cfg.Agent.Timeout
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := &http.Server{Addr: addr, Handler: app.Handler(), ReadHeaderTimeout: 10 * time.Second}
		serverErrors := make(chan error, 1)
		go func() {
			fmt.Fprintf(cmd.ErrOrStderr(), "Waiting for submission on http://localhost%s (timeout %v)\n", addr, timeout)
			serverErrors <- srv.ListenAndServe()
		}()

		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := <-serverErrors; err != nil && !errors.Is(err, http.ErrServerClosed) {
				fmt.Fprintf(cmd.ErrOrStderr(), "server error: %v\n", err)
				cancel()
			}
		}()

		result := app.RunAgent(runCtx, timeout)

		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	rootCmd.AddCommand(agentCmd)
	agentCmd.Flags().String("addr", "", "Address to listen on (default from config)")
	agentCmd.Flags().Duration("timeout", 5*time.Minute, "How long to wait for the submission")
}
