package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// EventFilter narrows an event-log query. Zero fields are ignored.
type EventFilter struct {
	UnitID     string
	PatientID  string
	ScenarioID string
	Types      []string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// whereClause renders the filter as a WHERE fragment with positional
// arguments. From is exclusive and To inclusive, matching the replay
// window convention.
func (f EventFilter) whereClause() (string, []any) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.UnitID != "" {
		conds = append(conds, "unit_id = "+arg(f.UnitID))
	}
	if f.PatientID != "" {
		conds = append(conds, "patient_id = "+arg(f.PatientID))
	}
	if f.ScenarioID != "" {
		conds = append(conds, "scenario_id = "+arg(f.ScenarioID))
	}
	if len(f.Types) > 0 {
		ph := make([]string, len(f.Types))
		for i, t := range f.Types {
			ph[i] = arg(t)
		}
		conds = append(conds, "event_type IN ("+strings.Join(ph, ", ")+")")
	}
	if f.From != nil {
		conds = append(conds, "timestamp > "+arg(*f.From))
	}
	if f.To != nil {
		conds = append(conds, "timestamp <= "+arg(*f.To))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// InsertEvents bulk-appends event rows.
func (s *Store) InsertEvents(ctx context.Context, events []Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert events: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO events (timestamp, event_type, patient_id, unit_id, bed_id, nurse_id, data, scenario_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return fmt.Errorf("insert events: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		data := ev.Data
		if len(data) == 0 {
			data = []byte("{}")
		}
		if _, err := stmt.ExecContext(ctx, ev.Timestamp, ev.EventType, ev.PatientID,
			ev.UnitID, ev.BedID, ev.NurseID, []byte(data), ev.ScenarioID); err != nil {
			return fmt.Errorf("insert %s event: %w", ev.EventType, err)
		}
	}
	return tx.Commit()
}

// ListEvents returns matching events ascending by (timestamp, id).
func (s *Store) ListEvents(ctx context.Context, f EventFilter) ([]Event, error) {
	where, args := f.whereClause()
	q := `SELECT id, timestamp, event_type, patient_id, unit_id, bed_id, nurse_id, data, scenario_id
	      FROM events` + where + ` ORDER BY timestamp, id`
	if f.Limit > 0 {
		q += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}
	if f.Offset > 0 {
		q += fmt.Sprintf(` OFFSET %d`, f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var data []byte
		if err := rows.Scan(&ev.ID, &ev.Timestamp, &ev.EventType, &ev.PatientID,
			&ev.UnitID, &ev.BedID, &ev.NurseID, &data, &ev.ScenarioID); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Data = data
		events = append(events, ev)
	}
	return events, rows.Err()
}

// InsertSnapshot stores one whole-unit state capture.
func (s *Store) InsertSnapshot(ctx context.Context, snap StateSnapshot) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO state_snapshots (timestamp, unit_id, data) VALUES ($1, $2, $3)`,
		snap.Timestamp, snap.UnitID, []byte(snap.Data))
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}
