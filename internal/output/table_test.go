package output

import (
	"bytes"
	"strings"
	"testing"
)

// plainLines renders tbl without color and splits it into lines.
func plainLines(t *testing.T, tbl *Table) []string {
	t.Helper()
	SetNoColor(true)
	t.Cleanup(func() { SetNoColor(false) })
	return strings.Split(strings.TrimSuffix(tbl.Render(), "\n"), "\n")
}

func TestVisualLen(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"stat key", "geometry.vertices", 17},
		{"empty", "", 0},
		{"styled increase", "\x1b[33m▲ +12\x1b[0m", 5},
		{"muted placeholder", "\x1b[2m-\x1b[0m", 1},
		{"rule glyphs", "───", 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := visualLen(tc.input); got != tc.want {
				t.Errorf("visualLen(%q) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}

func TestPadding(t *testing.T) {
	tests := []struct {
		name  string
		fn    func(string, int) string
		input string
		width int
		want  string
	}{
		{"pad short", pad, "24", 5, "24   "},
		{"pad exact", pad, "CYCLES", 6, "CYCLES"},
		{"pad overflow kept", pad, "scenes.0.engine", 4, "scenes.0.engine"},
		{"padLeft short", padLeft, "24", 5, "   24"},
		{"padLeft overflow kept", padLeft, "1920", 2, "1920"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.fn(tc.input, tc.width); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTable_Render(t *testing.T) {
	tbl := NewTable("Stat", "Value")
	tbl.AddRow("mesh_count", "3")
	tbl.AddRow("geometry.vertices", "24")

	lines := plainLines(t, tbl)
	// Header, rule, two rows.
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], "Stat") || !strings.Contains(lines[0], "Value") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if strings.Trim(lines[1], "─ ") != "" {
		t.Errorf("expected rule line, got %q", lines[1])
	}
	// Stat column is as wide as its longest key.
	if got := strings.Index(lines[2], "3"); got != len("geometry.vertices")+len(columnGap) {
		t.Errorf("value column starts at %d in %q", got, lines[2])
	}
	if tbl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tbl.Len())
	}
}

func TestTable_AlignRight(t *testing.T) {
	tbl := NewTable("Stat", "Previous", "Current").AlignRight(1, 2, 9)
	tbl.AddRow("geometry.faces", "6", "1200")

	lines := plainLines(t, tbl)
	want := "geometry.faces         6     1200"
	if lines[2] != want {
		t.Errorf("got  %q\nwant %q", lines[2], want)
	}
}

func TestTable_TrimsTrailingBlanks(t *testing.T) {
	tbl := NewTable("Stat", "Trend")
	tbl.AddRow("mesh_count", "")
	tbl.AddRow("lights", "▲ +1")

	for _, line := range plainLines(t, tbl) {
		if strings.HasSuffix(line, " ") {
			t.Errorf("trailing blank in %q", line)
		}
	}
}

func TestTable_RowShape(t *testing.T) {
	tbl := NewTable("Stat", "Value")
	tbl.AddRow("objects.MESH")
	tbl.AddRow("objects.LIGHT", "2", "extra")

	if len(tbl.rows[0]) != 2 || tbl.rows[0][1] != "" {
		t.Errorf("expected missing cell to be empty, got %q", tbl.rows[0])
	}
	if len(tbl.rows[1]) != 2 {
		t.Errorf("expected extra cell to be dropped, got %q", tbl.rows[1])
	}
}

func TestTable_EmptyHeaders(t *testing.T) {
	if got := NewTable().Render(); got != "" {
		t.Errorf("expected empty output for a table without columns, got %q", got)
	}
}

func TestTable_ANSICellsAlign(t *testing.T) {
	tbl := NewTable("Stat", "Change")
	tbl.AddRow("a", "\x1b[33m▲ +4\x1b[0m")
	tbl.AddRow("b", "─")

	if tbl.widths[1] != len("Change") {
		t.Errorf("expected ANSI codes to be ignored in width, got %d", tbl.widths[1])
	}
}

func TestTable_Fprint(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("Stat", "Value")
	tbl.AddRow("scenes.0.fps", "24")

	var buf bytes.Buffer
	if err := tbl.Fprint(&buf); err != nil {
		t.Fatalf("Fprint: %v", err)
	}
	if buf.String() != tbl.String() {
		t.Errorf("Fprint wrote %q, String() is %q", buf.String(), tbl.String())
	}
}

func TestKeyValue(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	got := KeyValue("File", "/work/very/long/path/to/scene.blend")
	if !strings.Contains(got, "/work/very/long/path/to/scene.blend") {
		t.Errorf("expected value on one line, got %q", got)
	}
	if strings.Contains(got, "\n") {
		t.Errorf("expected single line, got %q", got)
	}
}

func TestSetNoColor_PlainStyles(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	for name, rendered := range map[string]string{
		"header":  StyleHeader.Render("Blend Stats"),
		"warning": StyleWarning.Render("▲ +1"),
		"muted":   StyleMuted.Render("─"),
	} {
		if strings.Contains(rendered, "\x1b[") {
			t.Errorf("%s: expected no ANSI codes, got %q", name, rendered)
		}
	}
	if !IsNoColor() {
		t.Error("expected IsNoColor after SetNoColor(true)")
	}
}
