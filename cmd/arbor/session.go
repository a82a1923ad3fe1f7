package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persisted sessions",
	Long: `List, show and remove the sessions held by the configured store.
States are read through the configured persistence middlewares, so
encrypted stores are decrypted and masked keys stay masked.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		ids, err := app.Sessions().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
		if len(ids) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No sessions found.")
			return nil
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print the State of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		state, err := app.Sessions().Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load session %q: %w", args[0], err)
		}

		if tree, _ := cmd.Flags().GetBool("tree"); tree {
			t, resolved, err := app.Inspect(state)
			if err != nil {
				return err
			}
			out, err := tui.NewRenderer()(graph.Outline(t, resolved))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		}

		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm [session-id...]",
	Short: "Remove sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if all == (len(args) > 0) {
			return errors.New("pass session ids or --all")
		}
		app, _, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		ids := args
		if all {
			if ids, err = app.Sessions().List(cmd.Context()); err != nil {
				return fmt.Errorf("failed to list sessions: %w", err)
			}
		}
		var errs []error
		for _, id := range ids {
			if err := app.Sessions().Delete(cmd.Context(), id); err != nil {
				errs = append(errs, fmt.Errorf("remove %q: %w", id, err))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", id)
		}
		return errors.Join(errs...)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd, sessionShowCmd, sessionRmCmd)
	sessionShowCmd.Flags().Bool("tree", false, "Rebuild the app against the State and print its outline")
	sessionRmCmd.Flags().Bool("all", false, "Remove every stored session")
}
