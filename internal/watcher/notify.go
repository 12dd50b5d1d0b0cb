package watcher

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
)

// LevelRank orders alert levels; unknown levels rank lowest.
func LevelRank(level string) int {
	switch level {
	case "critical":
		return 3
	case "warning":
		return 2
	case "info":
		return 1
	default:
		return 0
	}
}

// Notifier delivers alerts as desktop notifications: osascript on macOS,
// notify-send on Linux, and a plain line on Fallback everywhere else or when
// the platform tool is missing.
type Notifier struct {
	// Title prefixes every notification.
	Title string
	// MinLevel drops alerts ranked below it; empty delivers everything.
	MinLevel string
	// Fallback receives alerts that could not be shown; nil means stderr.
	Fallback io.Writer
}

// Notify sends a desktop notification for the alert if it meets MinLevel.
func (n Notifier) Notify(alert Alert) error {
	if LevelRank(alert.Level) < LevelRank(n.MinLevel) {
		return nil
	}
	switch runtime.GOOS {
	case "darwin":
		return n.notifyMacOS(alert)
	case "linux":
		return n.notifyLinux(alert)
	default:
		return n.fallback(alert)
	}
}

func (n Notifier) title() string {
	if n.Title == "" {
		return "blendstats"
	}
	return n.Title
}

func (n Notifier) notifyMacOS(alert Alert) error {
	script := fmt.Sprintf(
		`display notification %q with title %q subtitle %q`,
		alert.Message, n.title(), alert.Title,
	)
	if err := exec.Command("osascript", "-e", script).Run(); err != nil {
		return n.fallback(alert)
	}
	return nil
}

func (n Notifier) notifyLinux(alert Alert) error {
	if _, err := exec.LookPath("notify-send"); err != nil {
		return n.fallback(alert)
	}

	urgency := "normal"
	switch alert.Level {
	case "critical":
		urgency = "critical"
	case "info":
		urgency = "low"
	}
	title := fmt.Sprintf("%s: %s", n.title(), alert.Title)
	if err := exec.Command("notify-send", "-u", urgency, title, alert.Message).Run(); err != nil {
		return n.fallback(alert)
	}
	return nil
}

func (n Notifier) fallback(alert Alert) error {
	w := n.Fallback
	if w == nil {
		w = os.Stderr
	}
	_, err := fmt.Fprintf(w, "[%s] %s: %s\n", alert.Level, alert.Title, alert.Message)
	return err
}
