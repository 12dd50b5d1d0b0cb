package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"time"

	"github.com/blackwell-systems/blendstats/internal/blend"
	"github.com/blackwell-systems/blendstats/internal/output"
	"github.com/blackwell-systems/blendstats/internal/watcher"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// minWatchInterval keeps the poll from relaunching Blender in a tight loop.
const minWatchInterval = time.Second

var (
	watchInterval time.Duration
	watchQuiet    bool
	watchNotify   bool
	watchMinLevel string
)

var watchCmd = &cobra.Command{
	Use:   "watch <file.blend>",
	Short: "Re-extract statistics whenever the file is saved",
	Long: `Poll a .blend file and re-run the extraction each time its modification
time or size changes. Changed stats, extraction failures, and the file
disappearing are reported in the terminal and, with --notify, as desktop
notifications.

Examples:
  blendstats watch scene.blend                   # run in foreground (ctrl-c to stop)
  blendstats watch scene.blend --interval 30s    # poll every 30 seconds
  blendstats watch scene.blend --notify --quiet  # notifications only`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Poll interval (default: watch_interval from config)")
	watchCmd.Flags().BoolVar(&watchQuiet, "quiet", false, "Suppress terminal output")
	watchCmd.Flags().BoolVar(&watchNotify, "notify", false, "Send desktop notifications")
	watchCmd.Flags().StringVar(&watchMinLevel, "min-level", "info", "Lowest alert level to notify: info, warning, critical")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	interval := cfg.WatchInterval
	if watchInterval > 0 {
		interval = watchInterval
	}
	if interval < minWatchInterval {
		return fmt.Errorf("interval must be at least %s, got %s", minWatchInterval, interval)
	}

	r, err := newReader(cfg, args[0])
	if err != nil {
		return err
	}
	if r.Source() == blend.SourceFallback {
		return fmt.Errorf("%w: %s", watcher.ErrNoProjectFile, args[0])
	}

	notifier := newNotifier(watchQuiet, watchMinLevel)
	alertFn := func(a watcher.Alert) {
		if watchNotify {
			_ = notifier.Notify(a)
		}
		if !watchQuiet {
			printAlert(a)
		}
	}
	w := watcher.New(r, interval, alertFn)

	return runForeground(cmd.Context(), w)
}

// newNotifier builds the desktop notifier. When alerts are already printed
// to the terminal, a failed notification is dropped instead of echoed.
func newNotifier(quiet bool, minLevel string) watcher.Notifier {
	n := watcher.Notifier{MinLevel: minLevel}
	if !quiet {
		n.Fallback = io.Discard
	}
	return n
}

// runForeground runs the watcher until it fails or a shutdown signal arrives.
func runForeground(parent context.Context, w *watcher.Watcher) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, shutdownSignals...)
	defer stop()

	if !watchQuiet {
		fmt.Printf("blendstats watching %s... (ctrl-c to stop)\n", w.Path())
	}

	initial, err := w.Start(ctx)
	if err != nil {
		return fmt.Errorf("initial snapshot failed: %w", err)
	}
	if !watchQuiet {
		printBaseline(initial)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		if !watchQuiet && ctx.Err() != nil {
			fmt.Println("\nStopped.")
		}
		return nil
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printBaseline(s *watcher.WatchState) {
	ts := s.Timestamp.Format("15:04:05")
	switch {
	case s.Err != nil:
		fmt.Printf("[%s] %s Extraction failed: %v\n", ts, alertIcon("warning"), s.Err)
	default:
		fmt.Printf("[%s] %s Baseline: %d stats, %s bytes\n",
			ts, alertIcon("info"), len(s.Values), output.FormatNumber(float64(s.Size)))
	}
}

// printAlert formats and prints an alert to the terminal.
func printAlert(a watcher.Alert) {
	timestamp := a.Time.Format("15:04:05")
	icon := alertIcon(a.Level)
	fmt.Printf("[%s] %s %s\n", timestamp, icon, a.Title)
	if a.Message != "" {
		fmt.Printf("         %s\n", output.StyleMuted.Render(a.Message))
	}
}

// alertIcon returns the styled terminal indicator for an alert level.
func alertIcon(level string) string {
	switch level {
	case "critical":
		return output.StyleError.Render("✗")
	case "warning":
		return output.StyleWarning.Render("!")
	case "info":
		return output.StyleSuccess.Render("✓")
	default:
		return " "
	}
}
