package blend

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

// ScriptName is the companion script's file name next to the executable.
const ScriptName = "blend_stats.py"

// sampleRelPath is the bundled sample project, relative to the install dir.
var sampleRelPath = filepath.Join("test", "test.blend")

//go:embed blend_stats.py
var companionScript string

// ScriptSource returns the embedded companion script.
func ScriptSource() string {
	return companionScript
}

// InstallScript writes the embedded companion script to path, creating the
// parent directory if needed.
func InstallScript(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating script dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(companionScript), 0o644); err != nil {
		return fmt.Errorf("writing script: %w", err)
	}
	return nil
}

// InstallDir returns the directory containing the running executable, or "."
// when it cannot be determined.
func InstallDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

// DefaultScriptPath is the companion script shipped next to the executable.
func DefaultScriptPath() string {
	return filepath.Join(InstallDir(), ScriptName)
}

// DefaultFallbackPath is the sample .blend shipped next to the executable.
// Its existence is not checked.
func DefaultFallbackPath() string {
	return filepath.Join(InstallDir(), sampleRelPath)
}
