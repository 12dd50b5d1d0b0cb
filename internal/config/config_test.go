package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultBlenderBin, cfg.BlenderBin)
	assert.Empty(t, cfg.ScriptPath)
	assert.Empty(t, cfg.FallbackPath)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultWatchInterval, cfg.WatchInterval)
	assert.Equal(t, DefaultOutput, cfg.Output)
}

func TestLoad_File(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `blender_bin: /Applications/Blender.app/Contents/MacOS/Blender
script_path: ~/scripts/blend_stats.py
timeout: 45s
watch_interval: 1m
output:
  color: false
  width: 120
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/Applications/Blender.app/Contents/MacOS/Blender", cfg.BlenderBin)
	assert.Equal(t, filepath.Join(home, "scripts", "blend_stats.py"), cfg.ScriptPath)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, time.Minute, cfg.WatchInterval)
	assert.False(t, cfg.Output.Color)
	assert.Equal(t, 120, cfg.Output.Width)
}

func TestLoad_DefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "blendstats")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("blender_bin: blender-4.1\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "blender-4.1", cfg.BlenderBin)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BLENDSTATS_BLENDER_BIN", "/opt/blender/blender")
	t.Setenv("BLENDSTATS_TIMEOUT", "10s")
	t.Setenv("BLENDSTATS_OUTPUT_WIDTH", "100")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/opt/blender/blender", cfg.BlenderBin)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 100, cfg.Output.Width)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultBlenderBin, cfg.BlenderBin)
}

func TestLoad_InvalidFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("blender_bin: [unclosed\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, "x", "y"), expandPath("~/x/y"))
	assert.Equal(t, "/abs/path", expandPath("/abs/path"))
	assert.Equal(t, "", expandPath(""))
}

func TestLoad_DotEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	// Registers restoration; godotenv never overrides a variable that is set.
	t.Setenv("BLENDSTATS_BLENDER_BIN", "")
	require.NoError(t, os.Unsetenv("BLENDSTATS_BLENDER_BIN"))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BLENDSTATS_BLENDER_BIN=/opt/blender-4.2/blender\n"), 0o644))
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/opt/blender-4.2/blender", cfg.BlenderBin)
}
