// Package snapshot copies the compatibility API into sqlite and serves the
// copy back through the same Fetcher interface the live client implements.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ziadkadry99/compatbrowse/internal/db"
)

// ErrNoSnapshot is returned when the database holds no completed snapshot.
var ErrNoSnapshot = errors.New("no completed snapshot")

// Status is the lifecycle state of a snapshot run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Snapshot is one crawl of the API.
type Snapshot struct {
	ID         string
	Source     string // API base URL the crawl read from
	Namespace  string
	Status     Status
	StartedAt  time.Time
	FinishedAt time.Time
	Error      string
	Counts     map[string]int // records per plural type name
}

// Total returns the number of records across all types.
func (s *Snapshot) Total() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	return n
}

const selectSnapshot = `SELECT id, source, namespace, status, started_at, finished_at, error FROM snapshots`

// Latest returns the most recent completed snapshot.
func Latest(ctx context.Context, d *db.DB) (*Snapshot, error) {
	row := d.QueryRowContext(ctx, selectSnapshot+`
		WHERE status = 'completed'
		ORDER BY finished_at DESC, rowid DESC
		LIMIT 1`)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("reading latest snapshot: %w", err)
	}
	if err := loadCounts(ctx, d, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Get returns the snapshot with the given id.
func Get(ctx context.Context, d *db.DB, id string) (*Snapshot, error) {
	row := d.QueryRowContext(ctx, selectSnapshot+` WHERE id = ?`, id)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot %s: %w", id, ErrNoSnapshot)
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", id, err)
	}
	if err := loadCounts(ctx, d, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Prune deletes all but the keep newest completed snapshots, along with any
// failed runs. It returns the number of snapshots removed.
func Prune(ctx context.Context, d *db.DB, keep int) (int, error) {
	if keep < 1 {
		keep = 1
	}
	res, err := d.ExecContext(ctx, `
		DELETE FROM snapshots
		WHERE status = 'failed'
		   OR (status = 'completed' AND id NOT IN (
		        SELECT id FROM snapshots
		        WHERE status = 'completed'
		        ORDER BY finished_at DESC, rowid DESC
		        LIMIT ?))`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots: %w", err)
	}
	return int(n), nil
}

func scanSnapshot(row *sql.Row) (*Snapshot, error) {
	var (
		snap     Snapshot
		status   string
		started  sql.NullString
		finished sql.NullString
	)
	if err := row.Scan(&snap.ID, &snap.Source, &snap.Namespace, &status, &started, &finished, &snap.Error); err != nil {
		return nil, err
	}
	snap.Status = Status(status)
	snap.StartedAt = parseTime(started.String)
	snap.FinishedAt = parseTime(finished.String)
	return &snap, nil
}

func loadCounts(ctx context.Context, d *db.DB, snap *Snapshot) error {
	rows, err := d.QueryContext(ctx, `SELECT type, count FROM collections WHERE snapshot_id = ?`, snap.ID)
	if err != nil {
		return fmt.Errorf("reading snapshot %s collections: %w", snap.ID, err)
	}
	defer rows.Close()

	snap.Counts = make(map[string]int)
	for rows.Next() {
		var (
			plural string
			count  int
		)
		if err := rows.Scan(&plural, &count); err != nil {
			return fmt.Errorf("scanning collection: %w", err)
		}
		snap.Counts[plural] = count
	}
	return rows.Err()
}

// timeLayout is how snapshot timestamps are written.
const timeLayout = "2006-01-02 15:04:05"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

// parseTime accepts the written layout and the RFC 3339 form the driver
// produces when it reads a DATETIME column back as a time value.
func parseTime(s string) time.Time {
	for _, layout := range []string{timeLayout, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
