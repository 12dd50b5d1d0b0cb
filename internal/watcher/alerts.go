package watcher

import (
	"fmt"
	"strings"
	"time"

	"github.com/blackwell-systems/blendstats/internal/output"
	"github.com/blackwell-systems/blendstats/internal/store"
)

// maxChangeAlerts caps per-stat alerts; beyond it changes are summarized.
const maxChangeAlerts = 8

// Compare detects notable changes between two watch states and returns alerts.
func Compare(prev, curr *WatchState) []Alert {
	var alerts []Alert

	alerts = append(alerts, compareFile(prev, curr)...)
	if !curr.Exists {
		return alerts
	}
	alerts = append(alerts, compareExtraction(prev, curr)...)
	if curr.Err == nil {
		alerts = append(alerts, compareValues(prev, curr)...)
	}

	return alerts
}

// compareFile detects the project file disappearing or coming back.
func compareFile(prev, curr *WatchState) []Alert {
	now := time.Now()
	switch {
	case prev.Exists && !curr.Exists:
		return []Alert{{
			Level:   "critical",
			Title:   "Project file removed",
			Message: "The watched file no longer exists",
			Time:    now,
		}}
	case !prev.Exists && curr.Exists:
		return []Alert{{
			Level:   "info",
			Title:   "Project file appeared",
			Message: fmt.Sprintf("%d bytes", curr.Size),
			Time:    now,
		}}
	}
	return nil
}

// compareExtraction reports extraction failures and recoveries.
func compareExtraction(prev, curr *WatchState) []Alert {
	now := time.Now()
	switch {
	case curr.Err != nil:
		return []Alert{{
			Level:   "warning",
			Title:   "Extraction failed",
			Message: curr.Err.Error(),
			Time:    now,
		}}
	case prev.Err != nil:
		return []Alert{{
			Level:   "info",
			Title:   "Extraction recovered",
			Message: fmt.Sprintf("%d stats read", len(curr.Values)),
			Time:    now,
		}}
	}
	return nil
}

// compareValues reports per-stat changes, summarizing when there are many.
func compareValues(prev, curr *WatchState) []Alert {
	// Without a good baseline every stat would look new.
	if !prev.Exists || prev.Err != nil {
		return nil
	}

	var changed []store.StatDelta
	for _, d := range store.Diff(prev.Values, curr.Values) {
		if d.Changed() {
			changed = append(changed, d)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	now := time.Now()
	if len(changed) > maxChangeAlerts {
		keys := make([]string, 0, 3)
		for _, d := range changed[:3] {
			keys = append(keys, d.Key)
		}
		return []Alert{{
			Level:   "info",
			Title:   fmt.Sprintf("%d stats changed", len(changed)),
			Message: fmt.Sprintf("Including %s", strings.Join(keys, ", ")),
			Time:    now,
		}}
	}

	alerts := make([]Alert, 0, len(changed))
	for _, d := range changed {
		alerts = append(alerts, Alert{
			Level:   "info",
			Title:   deltaTitle(d),
			Message: deltaMessage(d),
			Time:    now,
		})
	}
	return alerts
}

func deltaTitle(d store.StatDelta) string {
	switch d.Direction {
	case store.DirectionAdded:
		return fmt.Sprintf("New stat: %s", d.Key)
	case store.DirectionRemoved:
		return fmt.Sprintf("Stat removed: %s", d.Key)
	default:
		return fmt.Sprintf("Stat changed: %s", d.Key)
	}
}

func deltaMessage(d store.StatDelta) string {
	switch d.Direction {
	case store.DirectionAdded:
		return fmt.Sprintf("Now %s", output.FormatNumber(d.Current))
	case store.DirectionRemoved:
		return fmt.Sprintf("Was %s", output.FormatNumber(d.Previous))
	default:
		sign := ""
		if d.Delta > 0 {
			sign = "+"
		}
		return fmt.Sprintf("%s → %s (%s%s)",
			output.FormatNumber(d.Previous), output.FormatNumber(d.Current),
			sign, output.FormatNumber(d.Delta))
	}
}
