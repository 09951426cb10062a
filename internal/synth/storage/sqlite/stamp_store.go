// Package sqlite persists per-run stamp diagnostics for later analysis and
// reporting.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okomestudio/tsastro/internal/synth"
)

// RunRecord describes one synthesis run.
type RunRecord struct {
	RunID         string `json:"run_id"`
	StartedAtNs   int64  `json:"started_at_ns"`
	ImageWidth    int    `json:"image_width"`
	ImageHeight   int    `json:"image_height"`
	WorkerCount   int    `json:"worker_count"`
	FillHalfWidth int    `json:"fill_half_width"`
	MinPixel      int    `json:"min_pixel"`
	Seed          uint64 `json:"seed"`
	Notes         string `json:"notes,omitempty"`
}

// StampStore provides persistence for synthesis runs and their per-stamp
// diagnostics.
type StampStore struct {
	db *sql.DB
}

// NewStampStore creates a StampStore over an open database.
func NewStampStore(db *sql.DB) *StampStore {
	return &StampStore{db: db}
}

// InsertRun creates a run row. An empty RunID is replaced with a new UUID;
// a zero StartedAtNs is replaced with the current time.
func (s *StampStore) InsertRun(run *RunRecord) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.StartedAtNs == 0 {
		run.StartedAtNs = time.Now().UnixNano()
	}
	_, err := s.db.Exec(`
		INSERT INTO synth_runs (
			run_id, started_at_ns, image_width, image_height,
			worker_count, fill_half_width, min_pixel, seed, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.StartedAtNs, run.ImageWidth, run.ImageHeight,
		run.WorkerCount, run.FillHalfWidth, run.MinPixel, int64(run.Seed), run.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// InsertStamps stores the per-stamp diagnostics of a run in one transaction.
func (s *StampStore) InsertStamps(runID string, diags []synth.StampDiag) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin stamp insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO synth_stamps (
			run_id, grid_row, grid_col, worker_rank,
			fill_x0, fill_y0, fill_x1, fill_y1,
			sample_x0, sample_y0, sample_x1, sample_y1,
			masked_pixels, valid_pixels, rejected,
			std_empirical, std_synthetic, factor, fallback, outcome
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare stamp insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range diags {
		fallback := 0
		if d.Match.Fallback {
			fallback = 1
		}
		_, err := stmt.Exec(
			runID, d.GridRow, d.GridCol, d.WorkerRank,
			d.Fill.X0, d.Fill.Y0, d.Fill.X1, d.Fill.Y1,
			d.Sampling.X0, d.Sampling.Y0, d.Sampling.X1, d.Sampling.Y1,
			d.MaskedIn, d.Match.ValidCount, d.Match.RejectedCount,
			nullFloat(d.Match.StdEmpirical), nullFloat(d.Match.StdSynthetic),
			nullFloat(d.Match.Factor), fallback, string(d.Outcome),
		)
		if err != nil {
			return fmt.Errorf("insert stamp (%d,%d): %w", d.GridRow, d.GridCol, err)
		}
	}
	return tx.Commit()
}

// StampRow is one stored stamp diagnostic.
type StampRow struct {
	GridRow      int
	GridCol      int
	WorkerRank   int
	MaskedPixels int
	ValidPixels  int
	Rejected     int
	StdEmpirical sql.NullFloat64
	StdSynthetic sql.NullFloat64
	Factor       sql.NullFloat64
	Fallback     bool
	Outcome      string
}

// ListStamps returns the stamp diagnostics of a run in grid order.
func (s *StampStore) ListStamps(runID string) ([]StampRow, error) {
	rows, err := s.db.Query(`
		SELECT grid_row, grid_col, worker_rank, masked_pixels, valid_pixels,
		       rejected, std_empirical, std_synthetic, factor, fallback, outcome
		FROM synth_stamps
		WHERE run_id = ?
		ORDER BY grid_row, grid_col`, runID)
	if err != nil {
		return nil, fmt.Errorf("list stamps: %w", err)
	}
	defer rows.Close()

	var out []StampRow
	for rows.Next() {
		var r StampRow
		var fallback int
		if err := rows.Scan(&r.GridRow, &r.GridCol, &r.WorkerRank, &r.MaskedPixels,
			&r.ValidPixels, &r.Rejected, &r.StdEmpirical, &r.StdSynthetic,
			&r.Factor, &fallback, &r.Outcome); err != nil {
			return nil, fmt.Errorf("scan stamp: %w", err)
		}
		r.Fallback = fallback != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunSummary aggregates a run's outcomes.
type RunSummary struct {
	Stamps    int
	Filled    int
	Skipped   int
	Fallbacks int
}

// Summarize aggregates outcome counts for a run.
func (s *StampStore) Summarize(runID string) (RunSummary, error) {
	var sum RunSummary
	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN outcome = 'filled' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN outcome NOT IN ('filled', 'clean') THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(fallback), 0)
		FROM synth_stamps
		WHERE run_id = ?`, runID).
		Scan(&sum.Stamps, &sum.Filled, &sum.Skipped, &sum.Fallbacks)
	if err != nil {
		return sum, fmt.Errorf("summarize run: %w", err)
	}
	return sum, nil
}

// ListRuns returns all runs, newest first.
func (s *StampStore) ListRuns() ([]*RunRecord, error) {
	rows, err := s.db.Query(`
		SELECT run_id, started_at_ns, image_width, image_height,
		       worker_count, fill_half_width, min_pixel, seed, COALESCE(notes, '')
		FROM synth_runs
		ORDER BY started_at_ns DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []*RunRecord
	for rows.Next() {
		r := &RunRecord{}
		var seed int64
		if err := rows.Scan(&r.RunID, &r.StartedAtNs, &r.ImageWidth, &r.ImageHeight,
			&r.WorkerCount, &r.FillHalfWidth, &r.MinPixel, &seed, &r.Notes); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Seed = uint64(seed)
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullFloat(v float64) interface{} {
	if v != v { // NaN
		return nil
	}
	return v
}
