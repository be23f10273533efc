package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree. Commands are constructed per call so
// tests can run them without shared flag state.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mapwrap",
		Short: "Mapped-wrap deformer for point-cloud shapes",
		Long: `mapwrap binds target shapes to the vertices of a base shape they coincide with,
then pulls the base vertices along when the targets move.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "Path to a YAML or JSON config file")
	root.PersistentFlags().String("scene", "", "Scene description (YAML or JSON)")
	root.PersistentFlags().String("store", "", "Deformer store: file or redis")
	root.PersistentFlags().String("log-level", "", "debug, info, warn or error")

	root.AddCommand(
		newCreateCmd(),
		newDeleteCmd(),
		newAddTargetCmd(),
		newRemoveTargetCmd(),
		newSetEnvelopeCmd(),
		newEvaluateCmd(),
		newRenderCmd(),
		newInspectCmd(),
	)
	return root
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
