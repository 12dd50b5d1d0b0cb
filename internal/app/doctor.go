package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/blackwell-systems/blendstats/internal/blend"
	"github.com/blackwell-systems/blendstats/internal/config"
	"github.com/blackwell-systems/blendstats/internal/output"
	"github.com/blackwell-systems/blendstats/internal/store"
	"github.com/spf13/cobra"
)

// versionProbeTimeout bounds the `blender --version` check.
const versionProbeTimeout = 15 * time.Second

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that Blender and the companion script are usable",
	Long: `Run a series of health checks against your blendstats setup: the
Blender binary, the companion script, the bundled sample file, the config
file, and the snapshot database. Prints a pass/fail line for each check
and a summary of how many checks passed.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorCheck holds the result of a single health check.
type doctorCheck struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// doctorOutput is the JSON-serializable result of the doctor command.
type doctorOutput struct {
	Checks      []doctorCheck `json:"checks"`
	PassedCount int           `json:"passed"`
	TotalCount  int           `json:"total"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	var checks []doctorCheck

	cfg, cfgCheck := checkConfig(flagConfig)
	checks = append(checks, cfgCheck)
	if cfg == nil {
		cfg = &config.Config{BlenderBin: config.DefaultBlenderBin}
	} else {
		applyOutputPrefs(cfg)
	}
	if flagBlender != "" {
		cfg.BlenderBin = flagBlender
	}

	binCheck, binPath := checkBlenderBinary(cfg.BlenderBin)
	checks = append(checks, binCheck)
	if binPath != "" {
		checks = append(checks, checkBlenderVersion(cmd.Context(), blend.ExecRunner{}, binPath))
	}

	checks = append(checks, checkScript(cfg.ScriptPath))
	checks = append(checks, checkSampleFile(cfg.FallbackPath))
	checks = append(checks, checkDatabase(config.DBPath()))

	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
	}

	if flagJSON {
		return writeJSON(os.Stdout, doctorOutput{
			Checks:      checks,
			PassedCount: passed,
			TotalCount:  len(checks),
		})
	}

	renderDoctor(os.Stdout, checks, passed)
	return nil
}

func renderDoctor(w io.Writer, checks []doctorCheck, passed int) {
	fmt.Fprintln(w, output.Section("Doctor"))
	fmt.Fprintln(w)

	for _, c := range checks {
		var indicator string
		if c.Passed {
			indicator = output.StyleSuccess.Render("✓")
		} else {
			indicator = output.StyleWarning.Render("✗")
		}
		label := output.StyleBold.Render(c.Name)
		detail := output.StyleMuted.Render(c.Message)
		fmt.Fprintf(w, "  %s  %-24s %s\n", indicator, label, detail)
	}

	fmt.Fprintln(w)
	score := float64(passed) / float64(len(checks)) * 100
	summary := fmt.Sprintf("%d/%d checks passed", passed, len(checks))
	if passed == len(checks) {
		summary = output.StyleSuccess.Render(summary)
	} else {
		summary = output.StyleWarning.Render(summary)
	}
	fmt.Fprintf(w, " %s  %s\n\n", output.ScoreBar(score, 20), summary)
}

// checkConfig loads the config file. A missing file passes; defaults apply.
func checkConfig(cfgFile string) (*config.Config, doctorCheck) {
	path := cfgFile
	if path == "" {
		path = config.ConfigFile()
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, doctorCheck{
			Name:    "Config file",
			Passed:  false,
			Message: err.Error(),
		}
	}
	if !fileExists(path) {
		return cfg, doctorCheck{
			Name:    "Config file",
			Passed:  true,
			Message: fmt.Sprintf("not present, using defaults (%s)", path),
		}
	}
	return cfg, doctorCheck{
		Name:    "Config file",
		Passed:  true,
		Message: path,
	}
}

// checkBlenderBinary resolves bin through $PATH and returns the resolved path
// on success.
func checkBlenderBinary(bin string) (doctorCheck, string) {
	resolved, err := exec.LookPath(bin)
	if err != nil {
		return doctorCheck{
			Name:    "Blender binary",
			Passed:  false,
			Message: fmt.Sprintf("%s not found (set blender_bin or --blender)", bin),
		}, ""
	}
	return doctorCheck{
		Name:    "Blender binary",
		Passed:  true,
		Message: resolved,
	}, resolved
}

// checkBlenderVersion runs `<bin> --version` and reports its first line.
func checkBlenderVersion(ctx context.Context, runner blend.Runner, bin string) doctorCheck {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()

	out, err := runner.Run(ctx, bin, "--version")
	if err != nil {
		return doctorCheck{
			Name:    "Blender version",
			Passed:  false,
			Message: err.Error(),
		}
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	if line == "" {
		line = "no version output"
	}
	return doctorCheck{
		Name:    "Blender version",
		Passed:  true,
		Message: strings.TrimSpace(line),
	}
}

// checkScript verifies a companion script is available on disk.
func checkScript(configured string) doctorCheck {
	if configured != "" {
		if fileExists(configured) {
			return doctorCheck{Name: "Companion script", Passed: true, Message: configured}
		}
		return doctorCheck{
			Name:    "Companion script",
			Passed:  false,
			Message: fmt.Sprintf("script_path not found: %s", configured),
		}
	}

	for _, p := range []string{blend.DefaultScriptPath(), installedScriptPath()} {
		if fileExists(p) {
			msg := p
			if scriptOutdated(p) {
				msg += " (differs from embedded copy)"
			}
			return doctorCheck{Name: "Companion script", Passed: true, Message: msg}
		}
	}
	return doctorCheck{
		Name:    "Companion script",
		Passed:  false,
		Message: "not installed (run 'blendstats script --install')",
	}
}

// checkSampleFile verifies the fallback .blend exists.
func checkSampleFile(configured string) doctorCheck {
	path := configured
	if path == "" {
		path = blend.DefaultFallbackPath()
	}
	if !fileExists(path) {
		return doctorCheck{
			Name:    "Sample file",
			Passed:  false,
			Message: fmt.Sprintf("not found: %s", path),
		}
	}
	return doctorCheck{Name: "Sample file", Passed: true, Message: path}
}

// checkDatabase opens the snapshot database if it exists and pings it.
func checkDatabase(dbPath string) doctorCheck {
	if !fileExists(dbPath) {
		return doctorCheck{
			Name:    "Snapshot database",
			Passed:  false,
			Message: fmt.Sprintf("not found at %s (run 'blendstats track' to create)", dbPath),
		}
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return doctorCheck{
			Name:    "Snapshot database",
			Passed:  false,
			Message: fmt.Sprintf("open failed: %v", err),
		}
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return doctorCheck{
			Name:    "Snapshot database",
			Passed:  false,
			Message: fmt.Sprintf("ping failed: %v", err),
		}
	}
	return doctorCheck{Name: "Snapshot database", Passed: true, Message: dbPath}
}
