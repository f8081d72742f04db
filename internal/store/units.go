package store

import (
	"context"
	"database/sql"
	"fmt"
)

// InsertUnit creates a unit row.
func (s *Store) InsertUnit(ctx context.Context, u Unit) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO units (id, name, total_beds, created_at) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Name, u.TotalBeds, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert unit: %w", err)
	}
	return nil
}

// ListUnits returns all units ordered by name.
func (s *Store) ListUnits(ctx context.Context) ([]Unit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, total_beds, created_at FROM units ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()

	var units []Unit
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.Name, &u.TotalBeds, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// GetUnit returns one unit or ErrNotFound.
func (s *Store) GetUnit(ctx context.Context, id string) (*Unit, error) {
	var u Unit
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, total_beds, created_at FROM units WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.TotalBeds, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("unit %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get unit: %w", err)
	}
	return &u, nil
}

// InsertBeds bulk-creates bed rows.
func (s *Store) InsertBeds(ctx context.Context, beds []Bed) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert beds: %w", err)
	}
	defer tx.Rollback()

	// Ids come from the caller so event rows can reference beds before
	// anything is persisted.
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO beds (id, unit_id, number, bed_type, is_occupied, is_cleaning, current_patient_id, position_x, position_y, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`)
	if err != nil {
		return fmt.Errorf("insert beds: %w", err)
	}
	defer stmt.Close()

	for _, b := range beds {
		if _, err := stmt.ExecContext(ctx, b.ID, b.UnitID, b.Number, b.BedType,
			b.IsOccupied, b.IsCleaning, b.CurrentPatientID, b.PositionX, b.PositionY, b.CreatedAt); err != nil {
			return fmt.Errorf("insert bed %d: %w", b.Number, err)
		}
	}
	return tx.Commit()
}

// ListBeds returns a unit's beds in position order.
func (s *Store) ListBeds(ctx context.Context, unitID string) ([]Bed, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, unit_id, number, bed_type, is_occupied, is_cleaning, current_patient_id, position_x, position_y, created_at
		 FROM beds WHERE unit_id = $1 ORDER BY number`, unitID)
	if err != nil {
		return nil, fmt.Errorf("list beds: %w", err)
	}
	defer rows.Close()

	var beds []Bed
	for rows.Next() {
		var b Bed
		if err := rows.Scan(&b.ID, &b.UnitID, &b.Number, &b.BedType, &b.IsOccupied,
			&b.IsCleaning, &b.CurrentPatientID, &b.PositionX, &b.PositionY, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bed: %w", err)
		}
		beds = append(beds, b)
	}
	return beds, rows.Err()
}

// BedCounts returns occupied and total bed counts for a unit.
func (s *Store) BedCounts(ctx context.Context, unitID string) (occupied, total int, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FILTER (WHERE is_occupied), COUNT(*) FROM beds WHERE unit_id = $1`,
		unitID,
	).Scan(&occupied, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("bed counts: %w", err)
	}
	return occupied, total, nil
}

// AssignBed marks a bed occupied by a patient and mirrors the relation on
// the patient row in the same transaction. Either side of the bed/patient
// cycle is recomputable from the event log.
func (s *Store) AssignBed(ctx context.Context, bedID int64, patientID string) error {
	return s.bedTransition(ctx, bedID, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE beds SET is_occupied = TRUE, is_cleaning = FALSE, current_patient_id = $2 WHERE id = $1`,
			bedID, patientID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE patients SET current_bed_id = $2 WHERE id = $1`, patientID, bedID)
		return err
	})
}

// ReleaseBed empties a bed and clears the occupant's back-reference.
func (s *Store) ReleaseBed(ctx context.Context, bedID int64, cleaning bool) error {
	return s.bedTransition(ctx, bedID, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE patients SET current_bed_id = NULL WHERE current_bed_id = $1`, bedID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE beds SET is_occupied = FALSE, is_cleaning = $2, current_patient_id = NULL WHERE id = $1`,
			bedID, cleaning)
		return err
	})
}

func (s *Store) bedTransition(ctx context.Context, bedID int64, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("bed %d transition: %w", bedID, err)
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return fmt.Errorf("bed %d transition: %w", bedID, err)
	}
	return tx.Commit()
}
