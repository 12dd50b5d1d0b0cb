package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"

	"github.com/blackwell-systems/blendstats/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// defaultHistory is the snapshot count returned when n is omitted.
const defaultHistory = 5

var errNoDatabase = errors.New("snapshot history unavailable: no database")

// HistoryEntry is one stored snapshot with its numeric values.
type HistoryEntry struct {
	store.Snapshot
	Values map[string]float64 `json:"values"`
}

// HistoryResult is returned by get_stat_history.
type HistoryResult struct {
	Path      string         `json:"path"`
	Snapshots []HistoryEntry `json:"snapshots"`
}

// StatNamesResult is returned by get_stat_names.
type StatNamesResult struct {
	Path  string   `json:"path"`
	Names []string `json:"names"`
}

func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool("get_blend_stats",
				mcp.WithDescription("Run Blender headless on a .blend file and return the extracted statistics as JSON."),
				mcp.WithString("path",
					mcp.Description("Absolute path to the .blend file"),
					mcp.Required(),
				),
			),
			Handler: s.handleGetBlendStats,
		},
		{
			Tool: mcp.NewTool("get_stat_history",
				mcp.WithDescription("Last N stored snapshots for a .blend file, newest first, with their numeric values."),
				mcp.WithString("path",
					mcp.Description("Path the snapshots were recorded under"),
					mcp.Required(),
				),
				mcp.WithNumber("n",
					mcp.Description("Number of snapshots to return (default 5)"),
				),
			),
			Handler: s.handleGetStatHistory,
		},
		{
			Tool: mcp.NewTool("get_stat_names",
				mcp.WithDescription("Flattened numeric stat names available for a .blend file, e.g. geometry.vertices."),
				mcp.WithString("path",
					mcp.Description("Absolute path to the .blend file"),
					mcp.Required(),
				),
			),
			Handler: s.handleGetStatNames,
		},
	}
}

func (s *Server) handleGetBlendStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := s.reader(req.GetString("path", ""))
	if err != nil {
		return toolError(err)
	}
	stats, err := r.Stats(ctx)
	if err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText(stats.Raw()), nil
}

func (s *Server) handleGetStatHistory(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.db == nil {
		return toolError(errNoDatabase)
	}
	path := req.GetString("path", "")
	if path == "" {
		return toolError(errors.New("path is required"))
	}
	// Snapshots are keyed by absolute path.
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	n := req.GetInt("n", defaultHistory)
	if n <= 0 {
		n = defaultHistory
	}

	snaps, err := s.db.ListSnapshots(path, n)
	if err != nil {
		return toolError(err)
	}
	result := HistoryResult{Path: path, Snapshots: make([]HistoryEntry, 0, len(snaps))}
	for _, snap := range snaps {
		values, err := s.db.GetStatValues(snap.ID)
		if err != nil {
			return toolError(err)
		}
		result.Snapshots = append(result.Snapshots, HistoryEntry{Snapshot: snap, Values: values})
	}
	return jsonResult(result)
}

func (s *Server) handleGetStatNames(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", "")
	r, err := s.reader(path)
	if err != nil {
		return toolError(err)
	}
	stats, err := r.Stats(ctx)
	if err != nil {
		return toolError(err)
	}

	nums := stats.Numbers()
	names := make([]string, 0, len(nums))
	for _, k := range stats.Keys() {
		if _, ok := nums[k]; ok {
			names = append(names, k)
		}
	}
	return jsonResult(StatNamesResult{Path: path, Names: names})
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
