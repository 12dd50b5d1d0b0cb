// Package store provides SQLite persistence for extracted blend statistics,
// so numeric stats can be compared across runs.
package store

import "time"

// Snapshot is one stored extraction of a project file.
type Snapshot struct {
	ID      int64     `json:"id"`
	TakenAt time.Time `json:"taken_at"`
	Project string    `json:"project"`
	Command string    `json:"command"`
	Version string    `json:"version"`
	Payload string    `json:"-"`
}

// Delta directions.
const (
	DirectionIncreased = "increased"
	DirectionDecreased = "decreased"
	DirectionUnchanged = "unchanged"
	DirectionAdded     = "added"
	DirectionRemoved   = "removed"
)

// SnapshotDiff represents the comparison between two snapshots.
type SnapshotDiff struct {
	Previous *Snapshot   `json:"previous"`
	Current  *Snapshot   `json:"current"`
	Deltas   []StatDelta `json:"deltas"`
}

// StatDelta represents the change in a single statistic between snapshots.
type StatDelta struct {
	Key       string  `json:"key"`
	Previous  float64 `json:"previous"`
	Current   float64 `json:"current"`
	Delta     float64 `json:"delta"`
	Direction string  `json:"direction"`
}

// Changed reports whether the statistic moved between snapshots.
func (d StatDelta) Changed() bool {
	return d.Direction != DirectionUnchanged
}
