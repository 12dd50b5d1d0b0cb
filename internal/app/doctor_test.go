package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/blendstats/internal/output"
	"github.com/blackwell-systems/blendstats/internal/store"
)

func TestCheckBlenderBinary_Missing(t *testing.T) {
	c, resolved := checkBlenderBinary("blendstats-no-such-blender-xyz")
	if c.Passed {
		t.Error("expected check to fail")
	}
	if resolved != "" {
		t.Errorf("expected no resolved path, got %q", resolved)
	}
}

func TestCheckBlenderVersion(t *testing.T) {
	c := checkBlenderVersion(context.Background(), stubRunner{out: "Blender 4.1.0\n\tbuild date: 2024-03-25\n"}, "blender")
	if !c.Passed || c.Message != "Blender 4.1.0" {
		t.Errorf("unexpected check %+v", c)
	}

	c = checkBlenderVersion(context.Background(), stubRunner{err: errors.New("exit status 1")}, "blender")
	if c.Passed {
		t.Error("expected failure when the version check errors")
	}
}

func TestCheckScript_Configured(t *testing.T) {
	missing := checkScript(filepath.Join(t.TempDir(), "absent.py"))
	if missing.Passed {
		t.Error("expected missing configured script to fail")
	}

	path := filepath.Join(t.TempDir(), "blend_stats.py")
	if err := os.WriteFile(path, []byte("import bpy\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if c := checkScript(path); !c.Passed {
		t.Errorf("expected configured script to pass: %+v", c)
	}
}

func TestCheckSampleFile(t *testing.T) {
	if c := checkSampleFile(writeBlend(t)); !c.Passed {
		t.Errorf("expected sample check to pass: %+v", c)
	}
	if c := checkSampleFile("/nonexistent/test.blend"); c.Passed {
		t.Error("expected missing sample to fail")
	}
}

func TestCheckDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blendstats.db")
	if c := checkDatabase(path); c.Passed {
		t.Error("expected missing database to fail")
	}

	db, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = db.Close()

	if c := checkDatabase(path); !c.Passed {
		t.Errorf("expected database check to pass: %+v", c)
	}
}

func TestCheckConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, c := checkConfig("")
	if cfg == nil || !c.Passed || !strings.Contains(c.Message, "using defaults") {
		t.Errorf("expected defaults to pass, got %+v", c)
	}

	bad := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(bad, []byte("timeout: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, c = checkConfig(bad)
	if cfg != nil || c.Passed {
		t.Errorf("expected invalid config to fail, got %+v", c)
	}
}

func TestRenderDoctor_Summary(t *testing.T) {
	output.SetNoColor(true)
	t.Cleanup(func() { output.SetNoColor(false) })

	checks := []doctorCheck{
		{Name: "Blender binary", Passed: true, Message: "/usr/bin/blender"},
		{Name: "Companion script", Passed: true, Message: "ok"},
		{Name: "Sample file", Passed: false, Message: "not found"},
	}
	var buf bytes.Buffer
	renderDoctor(&buf, checks, 2)

	got := buf.String()
	if !strings.Contains(got, "2/3 checks passed") {
		t.Errorf("expected summary line, got:\n%s", got)
	}
	if !strings.Contains(got, "Sample file") {
		t.Errorf("expected check names, got:\n%s", got)
	}
}
