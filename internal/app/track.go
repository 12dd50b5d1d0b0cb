package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/blackwell-systems/blendstats/internal/blend"
	"github.com/blackwell-systems/blendstats/internal/config"
	"github.com/blackwell-systems/blendstats/internal/output"
	"github.com/blackwell-systems/blendstats/internal/store"
	"github.com/spf13/cobra"
)

var (
	trackCompare int
	trackHistory int
	trackAll     bool
)

var errTrackNeedsFile = errors.New("track needs an existing .blend file")

var trackCmd = &cobra.Command{
	Use:   "track <file.blend>",
	Short: "Store a snapshot and compare with earlier runs",
	Long: `Extract statistics, store them as a new snapshot, and compare against a
previous snapshot of the same file to show what changed. Snapshots are kept
in ~/.config/blendstats/blendstats.db and keyed by absolute file path.

Examples:
  blendstats track scene.blend               # compare with the last run
  blendstats track scene.blend --compare 3   # compare with the 3rd-last run
  blendstats track scene.blend --history 5   # list the 5 most recent snapshots`,
	Args: cobra.ExactArgs(1),
	RunE: runTrack,
}

func init() {
	trackCmd.Flags().IntVar(&trackCompare, "compare", 1, "Compare against Nth previous snapshot (1 = most recent)")
	trackCmd.Flags().IntVar(&trackHistory, "history", 0, "Show stat trends across N most recent snapshots without extracting")
	trackCmd.Flags().BoolVar(&trackAll, "all", false, "Include unchanged stats in the comparison")
	rootCmd.AddCommand(trackCmd)
}

func runTrack(cmd *cobra.Command, args []string) error {
	if trackCompare < 1 {
		return fmt.Errorf("--compare must be at least 1, got %d", trackCompare)
	}

	project, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	db, err := store.Open(config.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if trackHistory > 0 {
		if flagJSON {
			return outputHistoryJSON(db, project, trackHistory)
		}
		return renderHistory(db, project, trackHistory)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	r, err := newReader(cfg, project)
	if err != nil {
		return err
	}
	if r.Source() == blend.SourceFallback {
		return fmt.Errorf("%w: %s", errTrackNeedsFile, args[0])
	}

	stats, err := r.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("extracting stats: %w", err)
	}

	diff, err := recordAndCompare(db, project, stats, trackCompare)
	if err != nil {
		return err
	}

	if flagJSON {
		return outputTrackJSON(diff)
	}
	renderTrackOutput(diff, trackAll)
	return nil
}

// recordAndCompare stores stats as a new snapshot for project and diffs it
// against the compare-th snapshot before it. Previous is nil on the first run.
func recordAndCompare(db *store.DB, project string, stats *blend.Stats, compare int) (*store.SnapshotDiff, error) {
	version := ""
	if v, ok := stats.Lookup("blender_version"); ok {
		version = fmt.Sprint(v)
	}
	id, err := db.RecordSnapshot(project, "track", version, stats.Raw(), stats.Numbers())
	if err != nil {
		return nil, fmt.Errorf("recording snapshot: %w", err)
	}
	logf("recorded snapshot #%d for %s", id, project)

	current, err := db.GetSnapshot(id)
	if err != nil {
		return nil, fmt.Errorf("loading current snapshot: %w", err)
	}

	// compare=1 means the immediate predecessor, which is offset 2 from newest.
	prev, err := db.GetSnapshotN(project, compare+1)
	if err != nil {
		return nil, fmt.Errorf("loading previous snapshot: %w", err)
	}

	diff, err := db.Compare(prev, current)
	if err != nil {
		return nil, fmt.Errorf("comparing snapshots: %w", err)
	}
	return diff, nil
}

func outputTrackJSON(diff *store.SnapshotDiff) error {
	result := map[string]any{
		"snapshot": diff.Current,
	}
	if diff.Previous != nil {
		result["diff"] = diff
	}
	return writeJSON(os.Stdout, result)
}

func renderTrackOutput(diff *store.SnapshotDiff, all bool) {
	current := diff.Current
	fmt.Println(output.Section("Track: Snapshot Comparison"))
	fmt.Println()
	fmt.Printf(" Snapshot #%d of %s taken at %s\n\n",
		current.ID, filepath.Base(current.Project), current.TakenAt.Local().Format("2006-01-02 15:04:05"))

	if diff.Previous == nil {
		fmt.Println(" First snapshot recorded. Run 'blendstats track' again after saving to see changes.")
		return
	}

	fmt.Printf(" Comparing against snapshot #%d (%s)\n\n",
		diff.Previous.ID, diff.Previous.TakenAt.Local().Format("2006-01-02 15:04:05"))

	tbl := output.NewTable("Stat", "Previous", "Current", "Delta", "Trend").AlignRight(1, 2, 3)
	changed := 0
	for _, d := range diff.Deltas {
		if d.Changed() {
			changed++
		} else if !all {
			continue
		}
		tbl.AddRow(
			d.Key,
			deltaCell(d.Previous, d.Direction != store.DirectionAdded),
			deltaCell(d.Current, d.Direction != store.DirectionRemoved),
			signed(d.Delta),
			output.DeltaArrow(d.Delta),
		)
	}

	if changed == 0 && !all {
		fmt.Println(" " + output.StyleSuccess.Render("No stats changed."))
		return
	}
	tbl.Print()
}

func deltaCell(v float64, present bool) string {
	if !present {
		return output.StyleMuted.Render("-")
	}
	return output.FormatNumber(v)
}

func signed(v float64) string {
	if v > 0 {
		return "+" + output.FormatNumber(v)
	}
	return output.FormatNumber(v)
}

// historyEntry is a snapshot with its values, used by both history views.
type historyEntry struct {
	Snapshot store.Snapshot     `json:"snapshot"`
	Values   map[string]float64 `json:"values"`
}

// loadHistory returns up to n snapshots for project in chronological order.
func loadHistory(db *store.DB, project string, n int) ([]historyEntry, error) {
	snapshots, err := db.ListSnapshots(project, n)
	if err != nil {
		return nil, fmt.Errorf("loading snapshots: %w", err)
	}

	// Reverse so oldest is first (left to right = chronological).
	for i, j := 0, len(snapshots)-1; i < j; i, j = i+1, j-1 {
		snapshots[i], snapshots[j] = snapshots[j], snapshots[i]
	}

	entries := make([]historyEntry, 0, len(snapshots))
	for _, s := range snapshots {
		values, err := db.GetStatValues(s.ID)
		if err != nil {
			return nil, fmt.Errorf("loading values for snapshot #%d: %w", s.ID, err)
		}
		entries = append(entries, historyEntry{Snapshot: s, Values: values})
	}
	return entries, nil
}

// renderHistory shows a multi-snapshot timeline table.
func renderHistory(db *store.DB, project string, n int) error {
	timeline, err := loadHistory(db, project, n)
	if err != nil {
		return err
	}
	if len(timeline) == 0 {
		fmt.Println(" No snapshots found. Run 'blendstats track' to create one.")
		return nil
	}

	fmt.Println(output.Section("Track: Stat History"))
	fmt.Println()
	fmt.Printf(" Showing %d most recent snapshots of %s\n\n", len(timeline), filepath.Base(project))

	// Build table: Stat | snap1 | snap2 | ... | Trend
	headers := []string{"Stat"}
	keySet := make(map[string]struct{})
	for _, e := range timeline {
		headers = append(headers, fmt.Sprintf("#%d %s", e.Snapshot.ID, e.Snapshot.TakenAt.Local().Format("Jan 02 15:04")))
		for k := range e.Values {
			keySet[k] = struct{}{}
		}
	}
	headers = append(headers, "Trend")
	tbl := output.NewTable(headers...)
	for i := range timeline {
		tbl.AlignRight(i + 1)
	}

	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		row := []string{k}
		for _, e := range timeline {
			v, ok := e.Values[k]
			row = append(row, deltaCell(v, ok))
		}

		trend := ""
		if len(timeline) >= 2 {
			first := timeline[0].Values[k]
			last := timeline[len(timeline)-1].Values[k]
			trend = output.DeltaArrow(last - first)
		}
		tbl.AddRow(append(row, trend)...)
	}

	tbl.Print()
	return nil
}

// outputHistoryJSON writes the history data as JSON.
func outputHistoryJSON(db *store.DB, project string, n int) error {
	timeline, err := loadHistory(db, project, n)
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, map[string]any{"project": project, "history": timeline})
}
