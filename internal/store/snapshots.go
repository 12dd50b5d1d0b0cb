package store

import (
	"database/sql"
	"fmt"
	"math"
	"sort"
	"time"
)

const snapshotColumns = "id, taken_at, project, command, version, payload"

// RecordSnapshot stores one extraction and its numeric values atomically and
// returns the new snapshot ID.
func (db *DB) RecordSnapshot(project, command, version, payload string, values map[string]float64) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"INSERT INTO snapshots (taken_at, project, command, version, payload) VALUES (?, ?, ?, ?, ?)",
		time.Now().UTC().Format(time.RFC3339Nano), project, command, version, payload,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting snapshot: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare("INSERT INTO stat_values (snapshot_id, stat_key, stat_value) VALUES (?, ?, ?)")
	if err != nil {
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	for key, value := range values {
		if _, err := stmt.Exec(id, key, value); err != nil {
			return 0, fmt.Errorf("inserting stat %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// GetLatestSnapshot returns the most recent snapshot for project, or nil if
// none exist.
func (db *DB) GetLatestSnapshot(project string) (*Snapshot, error) {
	return db.GetSnapshotN(project, 1)
}

// GetSnapshot returns a snapshot by ID, or nil if it does not exist.
func (db *DB) GetSnapshot(id int64) (*Snapshot, error) {
	row := db.conn.QueryRow("SELECT "+snapshotColumns+" FROM snapshots WHERE id = ?", id)
	return scanSnapshot(row)
}

// GetSnapshotN returns the Nth most recent snapshot for project (1 = latest,
// 2 = previous, etc.), or nil if there are fewer than n.
func (db *DB) GetSnapshotN(project string, n int) (*Snapshot, error) {
	if n < 1 {
		return nil, fmt.Errorf("snapshot index must be >= 1, got %d", n)
	}
	row := db.conn.QueryRow(
		"SELECT "+snapshotColumns+" FROM snapshots WHERE project = ? ORDER BY id DESC LIMIT 1 OFFSET ?",
		project, n-1,
	)
	return scanSnapshot(row)
}

// ListSnapshots returns up to limit snapshots for project, newest first.
func (db *DB) ListSnapshots(project string, limit int) ([]Snapshot, error) {
	rows, err := db.conn.Query(
		"SELECT "+snapshotColumns+" FROM snapshots WHERE project = ? ORDER BY id DESC LIMIT ?",
		project, limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var snapshots []Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *s)
	}
	return snapshots, rows.Err()
}

// GetStatValues returns the stored values for a snapshot keyed by stat name.
func (db *DB) GetStatValues(snapshotID int64) (map[string]float64, error) {
	rows, err := db.conn.Query(
		"SELECT stat_key, stat_value FROM stat_values WHERE snapshot_id = ?",
		snapshotID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	values := make(map[string]float64)
	for rows.Next() {
		var key string
		var value float64
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		values[key] = value
	}
	return values, rows.Err()
}

// Compare loads both snapshots' values and returns their diff.
func (db *DB) Compare(prev, curr *Snapshot) (*SnapshotDiff, error) {
	var prevValues map[string]float64
	if prev != nil {
		var err error
		if prevValues, err = db.GetStatValues(prev.ID); err != nil {
			return nil, err
		}
	}
	currValues, err := db.GetStatValues(curr.ID)
	if err != nil {
		return nil, err
	}
	return &SnapshotDiff{
		Previous: prev,
		Current:  curr,
		Deltas:   Diff(prevValues, currValues),
	}, nil
}

// Diff compares two value sets and returns one delta per key, sorted by key.
func Diff(prev, curr map[string]float64) []StatDelta {
	keys := make(map[string]struct{}, len(prev)+len(curr))
	for k := range prev {
		keys[k] = struct{}{}
	}
	for k := range curr {
		keys[k] = struct{}{}
	}

	deltas := make([]StatDelta, 0, len(keys))
	for k := range keys {
		p, hadPrev := prev[k]
		c, hasCurr := curr[k]
		d := StatDelta{Key: k, Previous: p, Current: c, Delta: c - p}
		switch {
		case !hadPrev:
			d.Direction = DirectionAdded
		case !hasCurr:
			d.Direction = DirectionRemoved
		case math.Abs(d.Delta) < 1e-9:
			d.Delta = 0
			d.Direction = DirectionUnchanged
		case d.Delta > 0:
			d.Direction = DirectionIncreased
		default:
			d.Direction = DirectionDecreased
		}
		deltas = append(deltas, d)
	}

	sort.Slice(deltas, func(i, j int) bool {
		return deltas[i].Key < deltas[j].Key
	})
	return deltas
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*Snapshot, error) {
	var s Snapshot
	var takenAt string
	err := row.Scan(&s.ID, &takenAt, &s.Project, &s.Command, &s.Version, &s.Payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.TakenAt, _ = time.Parse(time.RFC3339Nano, takenAt)
	return &s, nil
}
