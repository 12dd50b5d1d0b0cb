package app

import (
	"fmt"
	"os"

	"github.com/blackwell-systems/blendstats/internal/config"
	"github.com/blackwell-systems/blendstats/internal/mcp"
	"github.com/blackwell-systems/blendstats/internal/store"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve statistics to MCP clients over stdio",
	Long: `Start a Model Context Protocol stdio server. The server exposes three
tools:

  get_blend_stats   Extracted statistics for a .blend file
  get_stat_history  Last N stored snapshots for a file
  get_stat_names    Flattened numeric stat names for a file

Register it with an MCP client as:
  {"mcpServers":{"blendstats":{"command":"blendstats","args":["mcp"]}}}`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	script, err := resolveScript(cfg)
	if err != nil {
		return err
	}
	cfg.ScriptPath = script

	// History is optional; the other tools work without a database.
	db, err := store.Open(config.DBPath())
	if err != nil {
		logf("snapshot database unavailable: %v", err)
		db = nil
	} else {
		defer func() { _ = db.Close() }()
	}

	srv := mcp.NewServer(cfg, db, appVersion)
	if err := srv.Run(cmd.Context(), os.Stdin, os.Stdout); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
