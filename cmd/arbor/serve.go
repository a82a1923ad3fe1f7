package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the demo app over HTTP",
	Long: `Starts the HTTP server. The root app is served at / with one State per
browser session; --mount loads additional instances under /apps/{id}.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cfg, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Addr
		}
		mounts, _ := cmd.Flags().GetStringSlice("mount")
		for _, name := range mounts {
			block, err := demo(name)
			if err != nil {
				return err
			}
			inst, err := app.Mount(name, name, block)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Mounted %s at /apps/%s/\n", name, inst.ID)
		}

		if tui.IsTerminal() {
			tui.PrintBanner(cmd.OutOrStdout(), arbor.Version)
		}
		if ttl := cfg.Session.TTL; ttl > 0 && cfg.Store == config.StoreMemory {
			stop := sweep(app, ttl/2)
			defer stop()
		}
		return serve(cmd, addr, app.Handler())
	},
}

// sweep removes expired sessions every interval until stop is called.
func sweep(app *arbor.App, interval time.Duration) (stop func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				app.Sweep()
			case <-done:
				return
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
	}
}

// serve runs srv until SIGINT or SIGTERM, then drains it.
func serve(cmd *cobra.Command, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		fmt.Fprintf(cmd.OutOrStdout(), "\nStart shutdown... Signal: %v\n", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", 5*time.Second, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Arbor server stopped gracefully")
		return nil
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default from config, :8080)")
	serveCmd.Flags().StringSlice("mount", nil, "Demo apps to mount under /apps/{name}")
}
