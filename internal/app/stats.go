package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blackwell-systems/blendstats/internal/blend"
	"github.com/blackwell-systems/blendstats/internal/output"
	"github.com/spf13/cobra"
)

var (
	statsGet string
	statsRaw bool
)

var statsCmd = &cobra.Command{
	Use:   "stats [file.blend]",
	Short: "Extract and print statistics for a .blend file",
	Long: `Run Blender headless on the given file and print the statistics the
companion script reports. Nested values are flattened into dotted keys such
as geometry.vertices or scenes.0.engine.

Examples:
  blendstats stats scene.blend                      # table of all stats
  blendstats stats scene.blend --json               # the raw JSON payload
  blendstats stats scene.blend --get geometry.faces # a single value
  blendstats stats scene.blend --raw                # everything Blender printed`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsGet, "get", "", "Print a single stat by dotted key")
	statsCmd.Flags().BoolVar(&statsRaw, "raw", false, "Dump Blender's captured stdout")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	r, err := newReader(cfg, projectArg(args))
	if err != nil {
		return err
	}
	if r.Source() == blend.SourceFallback && len(args) > 0 {
		fmt.Fprintf(os.Stderr, "%s %s not found, using sample file\n",
			output.StyleWarning.Render("!"), args[0])
	}

	stats, err := r.Stats(cmd.Context())
	if statsRaw {
		fmt.Print(r.LastOutput())
		return err
	}
	if err != nil {
		return fmt.Errorf("extracting stats: %w", err)
	}
	logf("extracted %d stats", len(stats.Keys()))

	switch {
	case statsGet != "":
		return printStat(os.Stdout, stats, statsGet)
	case flagJSON:
		_, err := fmt.Fprintln(os.Stdout, stats.Raw())
		return err
	default:
		fmt.Print(renderStats(r, stats))
		return nil
	}
}

// printStat writes one looked-up value. Scalars print bare, containers as JSON.
func printStat(w io.Writer, stats *blend.Stats, key string) error {
	v, ok := stats.Lookup(key)
	if !ok {
		return fmt.Errorf("stat %q not found", key)
	}
	switch val := v.(type) {
	case float64:
		_, err := fmt.Fprintln(w, output.FormatNumber(val))
		return err
	case string:
		_, err := fmt.Fprintln(w, val)
		return err
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
}

// renderStats formats the flattened stats as a two-column table under a
// short header describing the source file.
func renderStats(r *blend.Reader, stats *blend.Stats) string {
	var sb strings.Builder
	sb.WriteString(output.Section("Blend Stats"))
	sb.WriteString("\n\n")

	path, ok := r.ProjectPath()
	if !ok {
		path = "(sample file)"
	}
	fmt.Fprintf(&sb, " %s\n", output.KeyValue("File", path))
	if v, ok := stats.Lookup("blender_version"); ok {
		fmt.Fprintf(&sb, " %s\n", output.KeyValue("Blender", fmt.Sprint(v)))
	}
	sb.WriteString("\n")

	flat := stats.Flatten()
	tbl := output.NewTable("Stat", "Value").AlignRight(1)
	for _, k := range stats.Keys() {
		tbl.AddRow(k, formatValue(flat[k]))
	}
	sb.WriteString(tbl.Render())
	return sb.String()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case float64:
		return output.FormatNumber(val)
	case bool:
		if val {
			return "yes"
		}
		return "no"
	case nil:
		return output.StyleMuted.Render("null")
	default:
		return fmt.Sprint(val)
	}
}
