package store

import (
	"context"
	"fmt"
)

// InsertShift creates a shift row and returns its id.
func (s *Store) InsertShift(ctx context.Context, sh Shift) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO shifts (name, start_hour, end_hour) VALUES ($1, $2, $3) RETURNING id`,
		sh.Name, sh.StartHour, sh.EndHour,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert shift %s: %w", sh.Name, err)
	}
	return id, nil
}

// ListShifts returns all shifts in start-hour order.
func (s *Store) ListShifts(ctx context.Context) ([]Shift, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, start_hour, end_hour FROM shifts ORDER BY start_hour`)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	defer rows.Close()

	var shifts []Shift
	for rows.Next() {
		var sh Shift
		if err := rows.Scan(&sh.ID, &sh.Name, &sh.StartHour, &sh.EndHour); err != nil {
			return nil, fmt.Errorf("scan shift: %w", err)
		}
		shifts = append(shifts, sh)
	}
	return shifts, rows.Err()
}

// InsertNurses bulk-creates nurse rows.
func (s *Store) InsertNurses(ctx context.Context, nurses []Nurse) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert nurses: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO nurses (id, name, unit_id, shift_id, max_patients, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return fmt.Errorf("insert nurses: %w", err)
	}
	defer stmt.Close()

	for _, n := range nurses {
		if _, err := stmt.ExecContext(ctx, n.ID, n.Name, n.UnitID, n.ShiftID,
			n.MaxPatients, n.CreatedAt); err != nil {
			return fmt.Errorf("insert nurse %s: %w", n.ID, err)
		}
	}
	return tx.Commit()
}

// ListNurses returns a unit's nurses ordered by name.
func (s *Store) ListNurses(ctx context.Context, unitID string) ([]Nurse, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, unit_id, shift_id, max_patients, created_at
		 FROM nurses WHERE unit_id = $1 ORDER BY name`, unitID)
	if err != nil {
		return nil, fmt.Errorf("list nurses: %w", err)
	}
	defer rows.Close()

	var nurses []Nurse
	for rows.Next() {
		var n Nurse
		if err := rows.Scan(&n.ID, &n.Name, &n.UnitID, &n.ShiftID, &n.MaxPatients, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan nurse: %w", err)
		}
		nurses = append(nurses, n)
	}
	return nurses, rows.Err()
}

// CountNurses returns the nurse headcount for a unit.
func (s *Store) CountNurses(ctx context.Context, unitID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM nurses WHERE unit_id = $1`, unitID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count nurses: %w", err)
	}
	return n, nil
}
