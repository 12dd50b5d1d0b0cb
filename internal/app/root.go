// Package app contains the Cobra command tree for blendstats.
package app

import (
	"fmt"
	"os"
	"time"

	"github.com/blackwell-systems/blendstats/internal/output"
	"github.com/spf13/cobra"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
	flagBlender string
	flagTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "blendstats",
	Short: "Scene statistics for Blender project files",
	Long: `blendstats runs Blender headless against a .blend file with a small
companion script, captures the JSON statistics block the script prints, and
shows, stores, or watches it.

When the given file does not exist, the sample file shipped with blendstats
is used instead so the pipeline can be checked end to end.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		output.AutoColor(flagNoColor)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("blendstats", appVersion)
		fmt.Println()
		fmt.Println("Use a subcommand:")
		fmt.Println("  stats     Extract and print statistics for a .blend file")
		fmt.Println("  track     Store a snapshot and compare with earlier runs")
		fmt.Println("  watch     Re-extract whenever the file is saved")
		fmt.Println("  doctor    Check that Blender and the companion script are usable")
		fmt.Println("  script    Print or install the companion Python script")
		fmt.Println("  mcp       Serve statistics to MCP clients over stdio")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/blendstats/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Log diagnostics to stderr")
	rootCmd.PersistentFlags().StringVar(&flagBlender, "blender", "", "Blender binary (overrides blender_bin)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "Per-run Blender timeout (overrides timeout)")
}
