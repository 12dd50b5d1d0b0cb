package blend

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Marker literals printed by the companion script around the JSON payload.
// They must match blend_stats.py exactly.
const (
	BeginMarker = "---STATS---BEGIN---"
	EndMarker   = "---STATS---END---"
)

// Isolate returns the trimmed text between the first begin marker and the
// first end marker that follows it. The second return value is false when
// either marker is missing or no end marker appears after the begin marker.
//
// An end marker that occurs before the begin marker (for example echoed by
// Blender while loading the script) is skipped rather than producing a
// negative slice.
func Isolate(text string) (string, bool) {
	start := strings.Index(text, BeginMarker)
	if start < 0 {
		return "", false
	}
	start += len(BeginMarker)

	end := strings.Index(text[start:], EndMarker)
	if end < 0 {
		return "", false
	}

	return strings.TrimSpace(text[start : start+end]), true
}

// Decode parses an isolated payload. When ok is false (nothing was isolated)
// it returns nil, nil so that Decode(Isolate(out)) never fails on absent
// input. Text that is present but not JSON yields ErrInvalidPayload.
func Decode(payload string, ok bool) (*Stats, error) {
	if !ok {
		return nil, nil
	}

	var v any
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return &Stats{value: v, raw: payload}, nil
}
