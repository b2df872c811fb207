// Package cli provides the Cobra command structure for ragged.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/ragged/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root ragged command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "ragged",
		Short: "Inspect, convert and reduce nested columnar data",
		Long: `ragged reads streams of JSON-like values into a nested columnar layout:
variable-length lists, records, options and unions stored as flat buffers.

It can rewrite the stream with configurable tokens for non-finite floats,
print the inferred schema, reduce along any axis, broadcast elementwise
operations across nested data, and preview values in the terminal.`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if debug {
				logging.FromContext(cmd.Context()).SetLevel(logging.ParseLevel("debug"))
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(newConvertCommand())
	rootCmd.AddCommand(newFormCommand())
	rootCmd.AddCommand(newReduceCommand())
	rootCmd.AddCommand(newApplyCommand())
	rootCmd.AddCommand(newShowCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	NewHelpFormatter(color, os.Stdout).ApplyToCommand(rootCmd)

	return rootCmd
}
