package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the component tree of the demo app",
	Long: `Rebuilds the app for a State (empty by default, or given with --state as
JSON) and prints an outline of the tree with the values of bound inputs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := stateFlag(cmd)
		if err != nil {
			return err
		}
		app, _, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		tree, resolved, err := app.Inspect(state)
		if err != nil {
			return err
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
				"tree":  tree.Roots,
				"state": resolved,
			})
		}
		out, err := tui.NewRenderer()(graph.Outline(tree, resolved))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the component tree as a Mermaid diagram",
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := stateFlag(cmd)
		if err != nil {
			return err
		}
		app, _, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		tree, _, err := app.Inspect(state)
		if err != nil {
			return err
		}
		var overlay *graph.Overlay
		if focus, _ := cmd.Flags().GetString("focus"); focus != "" {
			overlay = &graph.Overlay{Focus: focus}
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(tree, overlay))
		return nil
	},
}

func stateFlag(cmd *cobra.Command) (domain.State, error) {
	raw, _ := cmd.Flags().GetString("state")
	if raw == "" {
		return nil, nil
	}
	var state domain.State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("error parsing --state JSON: %w", err)
	}
	return state, nil
}

func init() {
	rootCmd.AddCommand(inspectCmd, graphCmd)
	for _, c := range []*cobra.Command{inspectCmd, graphCmd} {
		c.Flags().String("state", "", "State to rebuild against, as a JSON object")
	}
	inspectCmd.Flags().Bool("json", false, "Print the tree and State as JSON")
	graphCmd.Flags().String("focus", "", "Button id or key to highlight")
}
