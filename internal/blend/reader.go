// Package blend extracts scene statistics from .blend files by running
// Blender headless with a companion Python script and isolating the JSON
// payload the script prints between two marker lines.
package blend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"time"
)

// DefaultBinary is the Blender command used when none is given.
const DefaultBinary = "blender"

// DefaultTimeout bounds a single Blender run.
const DefaultTimeout = 2 * time.Minute

// Headless flags passed before the project path: no audio device, no
// auto-run of scripts embedded in the .blend file, no UI.
var headlessFlags = []string{"-noaudio", "--disable-autoexec", "--background"}

// Source records which branch the constructor took for the project path.
type Source int

const (
	// SourceConfigured means the caller's path existed and is in use.
	SourceConfigured Source = iota
	// SourceFallback means the bundled sample file replaced a missing path.
	SourceFallback
)

func (s Source) String() string {
	if s == SourceFallback {
		return "fallback"
	}
	return "configured"
}

// State is the extraction lifecycle of a Reader.
type State int

const (
	StateUnextracted State = iota
	StateExtracting
	StateExtracted
)

func (s State) String() string {
	switch s {
	case StateExtracting:
		return "extracting"
	case StateExtracted:
		return "extracted"
	default:
		return "unextracted"
	}
}

// Reader is one configured extraction session. It runs Blender at most once
// unless Extract is called explicitly. A Reader is not safe for concurrent
// use; separate Readers are fully independent.
type Reader struct {
	projectPath  string
	binary       string
	scriptPath   string
	fallbackPath string
	timeout      time.Duration
	runner       Runner
	source       Source

	state      State
	stats      *Stats
	err        error
	lastOutput string
}

// Option configures a Reader.
type Option func(*Reader)

// WithScriptPath sets the companion script path. Empty keeps the default.
func WithScriptPath(path string) Option {
	return func(r *Reader) {
		if path != "" {
			r.scriptPath = path
		}
	}
}

// WithFallbackPath sets the sample file substituted for a missing project
// path. Empty keeps the default.
func WithFallbackPath(path string) Option {
	return func(r *Reader) {
		if path != "" {
			r.fallbackPath = path
		}
	}
}

// WithTimeout sets the per-run timeout. Zero or negative disables it; the
// caller's context still applies.
func WithTimeout(d time.Duration) Option {
	return func(r *Reader) {
		r.timeout = d
	}
}

// WithRunner replaces the process runner, mainly for tests.
func WithRunner(runner Runner) Option {
	return func(r *Reader) {
		if runner != nil {
			r.runner = runner
		}
	}
}

// New creates a Reader for projectPath using the given Blender binary. When
// projectPath is empty or does not exist, the bundled sample file is used
// instead and Source reports SourceFallback; the invalid path is dropped.
func New(projectPath, binary string, opts ...Option) *Reader {
	if binary == "" {
		binary = DefaultBinary
	}
	r := &Reader{
		binary:       binary,
		scriptPath:   DefaultScriptPath(),
		fallbackPath: DefaultFallbackPath(),
		timeout:      DefaultTimeout,
		runner:       ExecRunner{},
	}
	for _, opt := range opts {
		opt(r)
	}

	if projectPath != "" && fileExists(projectPath) {
		r.projectPath = projectPath
		r.source = SourceConfigured
	} else {
		r.projectPath = r.fallbackPath
		r.source = SourceFallback
	}
	return r
}

// Source reports whether the reader is using the caller's path or the sample.
func (r *Reader) Source() Source {
	return r.source
}

// State reports the extraction lifecycle state.
func (r *Reader) State() State {
	return r.state
}

// Binary returns the Blender command as given.
func (r *Reader) Binary() string {
	return r.binary
}

// ScriptPath returns the companion script path passed via --python.
func (r *Reader) ScriptPath() string {
	return r.scriptPath
}

// SetProjectPath overwrites the stored project path without validation and
// reports whether the stored value equals path.
func (r *Reader) SetProjectPath(path string) bool {
	r.projectPath = path
	if path == r.fallbackPath {
		r.source = SourceFallback
	} else {
		r.source = SourceConfigured
	}
	return r.projectPath == path
}

// ProjectPath returns the stored project path. The second value is false
// when the path is the fallback sample, i.e. no real path was configured.
func (r *Reader) ProjectPath() (string, bool) {
	if r.projectPath == r.fallbackPath {
		return "", false
	}
	return r.projectPath, true
}

// Command returns the full argv used to invoke Blender.
func (r *Reader) Command() []string {
	argv := make([]string, 0, 7)
	argv = append(argv, r.binary)
	argv = append(argv, headlessFlags...)
	argv = append(argv, r.projectPath, "--python", r.scriptPath)
	return argv
}

// Output runs Blender once and returns its full stdout. The run is bounded by
// ctx and the reader timeout; the child is killed when either expires.
func (r *Reader) Output(ctx context.Context) (string, error) {
	parent := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	argv := r.Command()
	out, err := r.runner.Run(ctx, argv[0], argv[1:]...)
	r.lastOutput = string(out)
	if err == nil {
		return r.lastOutput, nil
	}

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded) && parent.Err() == nil:
		return r.lastOutput, fmt.Errorf("%w after %s", ErrTimeout, r.timeout)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		// The caller's deadline fired, not ours.
		return r.lastOutput, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	case ctx.Err() != nil:
		return r.lastOutput, ctx.Err()
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return r.lastOutput, fmt.Errorf("%w: %s", ErrBinaryNotFound, r.binary)
	default:
		return r.lastOutput, fmt.Errorf("%w: %w", ErrRunFailed, err)
	}
}

// LastOutput returns the stdout captured by the most recent run.
func (r *Reader) LastOutput() string {
	return r.lastOutput
}

// Stats returns the cached result, running the extraction on first use. A
// failed extraction is cached too; use Extract to try again.
func (r *Reader) Stats(ctx context.Context) (*Stats, error) {
	if r.state == StateExtracted {
		return r.stats, r.err
	}
	return r.Extract(ctx)
}

// Extract runs the full pipeline and replaces the cached result.
func (r *Reader) Extract(ctx context.Context) (*Stats, error) {
	r.state = StateExtracting
	r.stats, r.err = r.extract(ctx)
	r.state = StateExtracted
	return r.stats, r.err
}

func (r *Reader) extract(ctx context.Context) (*Stats, error) {
	if r.projectPath == "" {
		return nil, ErrNoProjectPath
	}

	out, runErr := r.Output(ctx)
	payload, ok := Isolate(out)
	if !ok {
		if runErr != nil {
			return nil, runErr
		}
		return nil, ErrMarkersNotFound
	}
	return Decode(payload, ok)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
