package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrBaselineProtected is returned when a caller tries to delete the
// baseline scenario.
var ErrBaselineProtected = errors.New("baseline scenario cannot be deleted")

const scenarioColumns = `id, name, description, is_baseline, parameters, created_at`

func scanScenario(row interface{ Scan(...any) error }) (Scenario, error) {
	var sc Scenario
	var params []byte
	err := row.Scan(&sc.ID, &sc.Name, &sc.Description, &sc.IsBaseline, &params, &sc.CreatedAt)
	sc.Parameters = params
	return sc, err
}

// CreateScenario inserts a scenario row.
func (s *Store) CreateScenario(ctx context.Context, sc Scenario) error {
	params := sc.Parameters
	if len(params) == 0 {
		params = []byte("{}")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scenarios (`+scenarioColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		sc.ID, sc.Name, sc.Description, sc.IsBaseline, []byte(params), sc.CreatedAt)
	if err != nil {
		return fmt.Errorf("create scenario: %w", err)
	}
	return nil
}

// GetScenario returns one scenario or ErrNotFound.
func (s *Store) GetScenario(ctx context.Context, id string) (*Scenario, error) {
	sc, err := scanScenario(s.db.QueryRowContext(ctx,
		`SELECT `+scenarioColumns+` FROM scenarios WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("scenario %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get scenario: %w", err)
	}
	return &sc, nil
}

// ListScenarios returns all scenarios, baseline first, then newest first.
func (s *Store) ListScenarios(ctx context.Context) ([]Scenario, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+scenarioColumns+` FROM scenarios ORDER BY is_baseline DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer rows.Close()

	var scenarios []Scenario
	for rows.Next() {
		sc, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, rows.Err()
}

// UpdateScenario rewrites a scenario's mutable fields.
func (s *Store) UpdateScenario(ctx context.Context, sc Scenario) error {
	params := sc.Parameters
	if len(params) == 0 {
		params = []byte("{}")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE scenarios SET name = $2, description = $3, parameters = $4 WHERE id = $1`,
		sc.ID, sc.Name, sc.Description, []byte(params))
	if err != nil {
		return fmt.Errorf("update scenario: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("scenario %s: %w", sc.ID, ErrNotFound)
	}
	return nil
}

// DeleteScenario removes a scenario and, via FK cascade, its events and
// runs. The baseline scenario is refused.
func (s *Store) DeleteScenario(ctx context.Context, id string) error {
	sc, err := s.GetScenario(ctx, id)
	if err != nil {
		return err
	}
	if sc.IsBaseline {
		return fmt.Errorf("scenario %s: %w", id, ErrBaselineProtected)
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM scenarios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete scenario: %w", err)
	}
	return nil
}

// BaselineScenario returns the baseline scenario or ErrNotFound.
func (s *Store) BaselineScenario(ctx context.Context) (*Scenario, error) {
	sc, err := scanScenario(s.db.QueryRowContext(ctx,
		`SELECT `+scenarioColumns+` FROM scenarios WHERE is_baseline LIMIT 1`))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("baseline scenario: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("baseline scenario: %w", err)
	}
	return &sc, nil
}
