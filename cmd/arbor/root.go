package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Arbor serves server-rendered reactive UIs",
	Long: `Arbor rebuilds a declarative component tree on every interaction and
sends the result to a thin client runtime as HTML fragments.

The CLI runs the bundled demo apps; your own apps embed the arbor package.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "arbor.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().String("app", "hello", "Demo app to run (hello, signup, dashboard)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format override (text, json)")
}
