package output

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ScoreBar renders a visual progress bar for a 0-100 score.
// Example: "████████░░ 80/100"
func ScoreBar(score float64, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := int((score / 100.0) * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	var style func(string) string
	switch {
	case score >= 70:
		style = func(s string) string { return StyleSuccess.Render(s) }
	case score >= 40:
		style = func(s string) string { return StyleWarning.Render(s) }
	default:
		style = func(s string) string { return StyleError.Render(s) }
	}

	return fmt.Sprintf("%s %s", style(bar), StyleMuted.Render(fmt.Sprintf("%.0f/100", score)))
}

// DeltaArrow returns a styled change indicator for a stat delta. Scene stats
// have no better direction, so growth and shrinkage share one style.
func DeltaArrow(delta float64) string {
	if delta == 0 {
		return StyleMuted.Render("─")
	}
	if delta > 0 {
		return StyleWarning.Render("▲ +" + FormatNumber(delta))
	}
	return StyleWarning.Render("▼ " + FormatNumber(delta))
}

// FormatNumber prints integral values without a fractional part and
// everything else in the shortest exact form.
func FormatNumber(v float64) string {
	if math.Abs(v) < 1e15 && v == math.Trunc(v) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ruleWidth is the length of the rule under section headers.
var ruleWidth = 66

// SetWidth sizes section rules for a terminal of the given width. Widths
// too narrow to be useful are ignored.
func SetWidth(width int) {
	if width >= 20 {
		ruleWidth = width - 2
	}
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", ruleWidth))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
