package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dot",
		Short: "Fine-grained reactive engine with keyed reconciliation and windowing",
		Long: `dot is a fine-grained reactive computation engine paired with an
incremental reconciler for ordered collections and a virtual window
for very long ones.

Commands:
  bench     Exercise the keyed reconciler under random reorders
  demo      Serve a live windowed list with a patch stream and metrics
  version   Print version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		benchCmd(),
		demoCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dot %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
