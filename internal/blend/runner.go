package blend

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner executes an external command and returns its captured stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec. The child is killed when ctx is
// done; WaitDelay bounds how long Run waits for its output pipes afterwards.
type ExecRunner struct {
	WaitDelay time.Duration
}

// Run starts name with args, blocks until it exits, and returns everything it
// wrote to stdout. Stdout is returned even when the process fails, since
// Blender can print the payload and still exit non-zero.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay == 0 {
		cmd.WaitDelay = 5 * time.Second
	}

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				return stdout.Bytes(), fmt.Errorf("exit status %d", exitErr.ExitCode())
			}
			return stdout.Bytes(), fmt.Errorf("exit status %d: %s", exitErr.ExitCode(), lastLine(msg))
		}
		return stdout.Bytes(), err
	}
	return stdout.Bytes(), nil
}

// lastLine returns the final line of s; Blender's stderr ends with the
// relevant message after pages of startup noise.
func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
