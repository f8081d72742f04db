package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const runColumns = `id, scenario_id, status, progress, metrics, timeseries, bottlenecks, error_message, started_at, completed_at, created_at`

func scanRun(row interface{ Scan(...any) error }) (SimulationRun, error) {
	var r SimulationRun
	var metrics, timeseries, bottlenecks []byte
	err := row.Scan(&r.ID, &r.ScenarioID, &r.Status, &r.Progress,
		&metrics, &timeseries, &bottlenecks,
		&r.ErrorMessage, &r.StartedAt, &r.CompletedAt, &r.CreatedAt)
	r.Metrics = metrics
	r.TimeSeries = timeseries
	r.Bottlenecks = bottlenecks
	return r, err
}

// CreateRun inserts a pending run for a scenario.
func (s *Store) CreateRun(ctx context.Context, id, scenarioID string) (*SimulationRun, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx,
		`INSERT INTO simulation_runs (id, scenario_id) VALUES ($1, $2) RETURNING `+runColumns,
		id, scenarioID))
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	return &r, nil
}

// GetRun returns one run or ErrNotFound.
func (s *Store) GetRun(ctx context.Context, id string) (*SimulationRun, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM simulation_runs WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &r, nil
}

// ListRuns returns runs newest first, optionally filtered by scenario.
func (s *Store) ListRuns(ctx context.Context, scenarioID string, limit int) ([]SimulationRun, error) {
	q := `SELECT ` + runColumns + ` FROM simulation_runs`
	var args []any
	if scenarioID != "" {
		q += ` WHERE scenario_id = $1`
		args = append(args, scenarioID)
	}
	q += ` ORDER BY created_at DESC`
	if limit > 0 {
		q += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []SimulationRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// MarkRunning transitions pending -> running and stamps started_at. A run
// in any other state is left untouched and reported via ErrNotFound.
func (s *Store) MarkRunning(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE simulation_runs SET status = $2, started_at = $3 WHERE id = $1 AND status = $4`,
		id, RunRunning, at, RunPending)
	if err != nil {
		return fmt.Errorf("mark running: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not pending: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateProgress writes the progress percentage of a running run.
func (s *Store) UpdateProgress(ctx context.Context, id string, pct int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE simulation_runs SET progress = $2 WHERE id = $1 AND status = $3`,
		id, pct, RunRunning)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

// CompleteRun stores the result blobs and transitions running -> completed.
// The update is refused if the run left the running state meanwhile (for
// example a concurrent cancel); the result is then discarded.
func (s *Store) CompleteRun(ctx context.Context, id string, metrics, timeseries, bottlenecks []byte, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE simulation_runs
		 SET status = $2, progress = 100, metrics = $3, timeseries = $4, bottlenecks = $5, completed_at = $6
		 WHERE id = $1 AND status = $7`,
		id, RunCompleted, metrics, timeseries, bottlenecks, at, RunRunning)
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not running: %w", id, ErrNotFound)
	}
	return nil
}

// FailRun transitions a non-terminal run to failed with a message.
func (s *Store) FailRun(ctx context.Context, id, message string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE simulation_runs SET status = $2, error_message = $3, completed_at = $4
		 WHERE id = $1 AND status IN ($5, $6)`,
		id, RunFailed, message, at, RunPending, RunRunning)
	if err != nil {
		return fmt.Errorf("fail run: %w", err)
	}
	return nil
}

// CancelMessage is the error_message CancelRun stamps on the run.
const CancelMessage = "Cancelled by user"

// CancelRun marks a non-terminal run failed with a cancellation message.
// Cancelling an already-terminal run returns ErrNotFound so the API can
// answer 409.
func (s *Store) CancelRun(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE simulation_runs SET status = $2, error_message = $3, completed_at = $4
		 WHERE id = $1 AND status IN ($5, $6)`,
		id, RunFailed, CancelMessage, at, RunPending, RunRunning)
	if err != nil {
		return fmt.Errorf("cancel run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s already terminal: %w", id, ErrNotFound)
	}
	return nil
}

// LatestCompletedRun returns the most recent completed run, optionally
// scoped to one scenario.
func (s *Store) LatestCompletedRun(ctx context.Context, scenarioID string) (*SimulationRun, error) {
	q := `SELECT ` + runColumns + ` FROM simulation_runs WHERE status = $1`
	args := []any{RunCompleted}
	if scenarioID != "" {
		q += ` AND scenario_id = $2`
		args = append(args, scenarioID)
	}
	q += ` ORDER BY completed_at DESC LIMIT 1`

	r, err := scanRun(s.db.QueryRowContext(ctx, q, args...))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("completed run: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("latest completed run: %w", err)
	}
	return &r, nil
}
