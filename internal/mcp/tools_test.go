package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/blendstats/internal/blend"
	"github.com/blackwell-systems/blendstats/internal/config"
	"github.com/blackwell-systems/blendstats/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

type cannedRunner struct {
	payload string
	calls   int
}

func (c *cannedRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	c.calls++
	return []byte("Blender 4.1\n" + blend.BeginMarker + c.payload + blend.EndMarker + "\n"), nil
}

// newTestServer returns a Server backed by an in-memory database and a
// canned runner, plus a real project file to point tools at.
func newTestServer(t *testing.T, payload string) (*Server, *cannedRunner, string) {
	t.Helper()
	db, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	path := filepath.Join(t.TempDir(), "scene.blend")
	if err := os.WriteFile(path, []byte("BLENDER-v401"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{BlenderBin: "blender", Timeout: config.DefaultTimeout}
	s := NewServer(cfg, db, "test")
	runner := &cannedRunner{payload: payload}
	s.runner = runner
	return s, runner, path
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("expected content in tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", res.Content[0])
	}
	return text.Text
}

func TestTools_Registered(t *testing.T) {
	s, _, _ := newTestServer(t, `{}`)

	want := map[string]bool{"get_blend_stats": false, "get_stat_history": false, "get_stat_names": false}
	for _, tool := range s.tools() {
		if _, ok := want[tool.Tool.Name]; !ok {
			t.Errorf("unexpected tool %q", tool.Tool.Name)
		}
		want[tool.Tool.Name] = true
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("tool %q not registered", name)
		}
	}
}

func TestGetBlendStats(t *testing.T) {
	s, runner, path := newTestServer(t, `{"mesh_count":3,"geometry":{"vertices":8}}`)

	res, err := s.handleGetBlendStats(context.Background(), callRequest(map[string]any{"path": path}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if got["mesh_count"] != float64(3) {
		t.Errorf("mesh_count = %v, want 3", got["mesh_count"])
	}
	if runner.calls != 1 {
		t.Errorf("expected 1 run, got %d", runner.calls)
	}
}

func TestGetBlendStats_MissingFile(t *testing.T) {
	s, runner, _ := newTestServer(t, `{}`)

	for _, args := range []map[string]any{
		{"path": "/nonexistent/scene.blend"},
		{},
	} {
		res, err := s.handleGetBlendStats(context.Background(), callRequest(args))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.IsError {
			t.Errorf("args %v: expected tool error", args)
		}
	}
	if runner.calls != 0 {
		t.Errorf("expected no Blender runs, got %d", runner.calls)
	}
}

func TestGetBlendStats_NoMarkers(t *testing.T) {
	s, _, path := newTestServer(t, `{}`)
	s.runner = runnerFunc(func() []byte { return []byte("Blender quit\n") })

	res, err := s.handleGetBlendStats(context.Background(), callRequest(map[string]any{"path": path}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool error")
	}
	if !strings.Contains(resultText(t, res), "markers") {
		t.Errorf("unexpected error text %q", resultText(t, res))
	}
}

type runnerFunc func() []byte

func (f runnerFunc) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return f(), nil
}

func TestGetStatNames(t *testing.T) {
	s, _, path := newTestServer(t, `{"blender_version":"4.1.0","mesh_count":3,"geometry":{"vertices":8,"faces":6}}`)

	res, err := s.handleGetStatNames(context.Background(), callRequest(map[string]any{"path": path}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got StatNamesResult
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}

	want := []string{"geometry.faces", "geometry.vertices", "mesh_count"}
	if strings.Join(got.Names, ",") != strings.Join(want, ",") {
		t.Errorf("Names = %v, want %v", got.Names, want)
	}
}

func TestGetStatHistory(t *testing.T) {
	s, _, path := newTestServer(t, `{}`)

	for i := 1; i <= 7; i++ {
		values := map[string]float64{"mesh_count": float64(i)}
		if _, err := s.db.RecordSnapshot(path, "track", "test", "{}", values); err != nil {
			t.Fatalf("RecordSnapshot: %v", err)
		}
	}

	tests := []struct {
		name      string
		args      map[string]any
		wantCount int
	}{
		{"default n", map[string]any{"path": path}, defaultHistory},
		{"explicit n", map[string]any{"path": path, "n": float64(2)}, 2},
		{"n beyond history", map[string]any{"path": path, "n": float64(50)}, 7},
		{"other project", map[string]any{"path": "/other.blend"}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := s.handleGetStatHistory(context.Background(), callRequest(tc.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var got HistoryResult
			if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
				t.Fatalf("result is not JSON: %v", err)
			}
			if len(got.Snapshots) != tc.wantCount {
				t.Fatalf("expected %d snapshots, got %d", tc.wantCount, len(got.Snapshots))
			}
			if tc.wantCount > 0 && got.Snapshots[0].Values["mesh_count"] != 7 {
				t.Errorf("newest mesh_count = %v, want 7", got.Snapshots[0].Values["mesh_count"])
			}
		})
	}
}

func TestGetStatHistory_NoDatabase(t *testing.T) {
	s := NewServer(&config.Config{}, nil, "test")

	res, err := s.handleGetStatHistory(context.Background(), callRequest(map[string]any{"path": "/a.blend"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error without a database")
	}
}
