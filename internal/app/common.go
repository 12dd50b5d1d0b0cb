package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/blackwell-systems/blendstats/internal/blend"
	"github.com/blackwell-systems/blendstats/internal/config"
	"github.com/blackwell-systems/blendstats/internal/output"
)

// logOut receives verbose diagnostics.
var logOut io.Writer = os.Stderr

// logf writes a timestamped diagnostic line when --verbose is set.
func logf(format string, args ...any) {
	if !flagVerbose {
		return
	}
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	_, _ = fmt.Fprintf(logOut, "[%s] %s\n", timestamp, msg)
}

// loadConfig loads the config file and applies the persistent flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flagBlender != "" {
		cfg.BlenderBin = flagBlender
	}
	if flagTimeout > 0 {
		cfg.Timeout = flagTimeout
	}
	applyOutputPrefs(cfg)
	return cfg, nil
}

// applyOutputPrefs applies the config's output section on top of AutoColor.
func applyOutputPrefs(cfg *config.Config) {
	if !cfg.Output.Color {
		output.SetNoColor(true)
	}
	output.SetWidth(cfg.Output.Width)
}

// resolveScript returns a companion script path that exists on disk. When
// neither the configured path nor the copy next to the executable exists,
// the embedded script is written into the config directory.
func resolveScript(cfg *config.Config) (string, error) {
	if cfg.ScriptPath != "" {
		if _, err := os.Stat(cfg.ScriptPath); err != nil {
			return "", fmt.Errorf("companion script: %w", err)
		}
		return cfg.ScriptPath, nil
	}

	if p := blend.DefaultScriptPath(); fileExists(p) {
		return p, nil
	}

	p := installedScriptPath()
	if !fileExists(p) || scriptOutdated(p) {
		logf("installing companion script to %s", p)
		if err := blend.InstallScript(p); err != nil {
			return "", err
		}
	}
	return p, nil
}

// installedScriptPath is where resolveScript writes the embedded script.
func installedScriptPath() string {
	return filepath.Join(config.ConfigDir(), blend.ScriptName)
}

// scriptOutdated reports whether the file at path differs from the embedded script.
func scriptOutdated(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return true
	}
	return string(data) != blend.ScriptSource()
}

// newReader builds a Reader for path from the loaded config.
func newReader(cfg *config.Config, path string, opts ...blend.Option) (*blend.Reader, error) {
	script, err := resolveScript(cfg)
	if err != nil {
		return nil, err
	}
	base := []blend.Option{
		blend.WithScriptPath(script),
		blend.WithFallbackPath(cfg.FallbackPath),
		blend.WithTimeout(cfg.Timeout),
	}
	r := blend.New(path, cfg.BlenderBin, append(base, opts...)...)
	logf("command: %v", r.Command())
	return r, nil
}

// projectArg returns the first positional argument, or "" when absent.
func projectArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
