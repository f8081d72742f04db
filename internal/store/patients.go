package store

import (
	"context"
	"database/sql"
	"fmt"
)

const patientColumns = `id, name, acuity, is_isolation, current_bed_id, admitted_at, discharged_at, created_at`

func scanPatient(row interface{ Scan(...any) error }) (Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Name, &p.Acuity, &p.IsIsolation,
		&p.CurrentBedID, &p.AdmittedAt, &p.DischargedAt, &p.CreatedAt)
	return p, err
}

// InsertPatients bulk-creates patient rows.
func (s *Store) InsertPatients(ctx context.Context, patients []Patient) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert patients: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO patients (`+patientColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return fmt.Errorf("insert patients: %w", err)
	}
	defer stmt.Close()

	for _, p := range patients {
		if _, err := stmt.ExecContext(ctx, p.ID, p.Name, p.Acuity, p.IsIsolation,
			p.CurrentBedID, p.AdmittedAt, p.DischargedAt, p.CreatedAt); err != nil {
			return fmt.Errorf("insert patient %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// GetPatient returns one patient or ErrNotFound.
func (s *Store) GetPatient(ctx context.Context, id string) (*Patient, error) {
	p, err := scanPatient(s.db.QueryRowContext(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("patient %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return &p, nil
}

// ListPatients returns patients, newest admissions first. When activeOnly
// is set, discharged patients are excluded.
func (s *Store) ListPatients(ctx context.Context, activeOnly bool, limit int) ([]Patient, error) {
	q := `SELECT ` + patientColumns + ` FROM patients`
	if activeOnly {
		q += ` WHERE discharged_at IS NULL`
	}
	q += ` ORDER BY admitted_at DESC NULLS LAST, created_at DESC`
	if limit > 0 {
		q += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	var patients []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

// CountWaitingPatients counts admitted-but-bedless, undischarged patients.
func (s *Store) CountWaitingPatients(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM patients WHERE current_bed_id IS NULL AND discharged_at IS NULL`,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count waiting patients: %w", err)
	}
	return n, nil
}
