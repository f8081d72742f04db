package store

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// schemaStatements create the full schema in dependency order. Everything
// is idempotent so Migrate can run on every startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS units (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		total_beds INT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS shifts (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		start_hour INT NOT NULL,
		end_hour INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS patients (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		acuity TEXT NOT NULL,
		is_isolation BOOLEAN NOT NULL DEFAULT FALSE,
		current_bed_id BIGINT,
		admitted_at TIMESTAMPTZ,
		discharged_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS beds (
		id BIGSERIAL PRIMARY KEY,
		unit_id UUID NOT NULL REFERENCES units(id) ON DELETE CASCADE,
		number INT NOT NULL,
		bed_type TEXT NOT NULL DEFAULT 'standard',
		is_occupied BOOLEAN NOT NULL DEFAULT FALSE,
		is_cleaning BOOLEAN NOT NULL DEFAULT FALSE,
		current_patient_id UUID REFERENCES patients(id) ON DELETE SET NULL,
		position_x INT NOT NULL DEFAULT 0,
		position_y INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (unit_id, number)
	)`,
	`CREATE TABLE IF NOT EXISTS nurses (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		unit_id UUID NOT NULL REFERENCES units(id) ON DELETE CASCADE,
		shift_id BIGINT REFERENCES shifts(id),
		max_patients INT NOT NULL DEFAULT 4,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS scenarios (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		is_baseline BOOLEAN NOT NULL DEFAULT FALSE,
		parameters JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id BIGSERIAL PRIMARY KEY,
		timestamp TIMESTAMPTZ NOT NULL,
		event_type TEXT NOT NULL,
		patient_id UUID,
		unit_id UUID,
		bed_id BIGINT,
		nurse_id UUID,
		data JSONB NOT NULL DEFAULT '{}',
		scenario_id UUID REFERENCES scenarios(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_unit_time ON events (unit_id, timestamp, id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_patient ON events (patient_id, timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_events_type_time ON events (event_type, timestamp)`,
	`CREATE TABLE IF NOT EXISTS state_snapshots (
		id BIGSERIAL PRIMARY KEY,
		timestamp TIMESTAMPTZ NOT NULL,
		unit_id UUID NOT NULL REFERENCES units(id) ON DELETE CASCADE,
		data JSONB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS simulation_runs (
		id UUID PRIMARY KEY,
		scenario_id UUID NOT NULL REFERENCES scenarios(id) ON DELETE CASCADE,
		status TEXT NOT NULL DEFAULT 'pending',
		progress INT NOT NULL DEFAULT 0,
		metrics JSONB,
		timeseries JSONB,
		bottlenecks JSONB,
		error_message TEXT,
		started_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS policy_documents (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'general',
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS policy_embeddings (
		id BIGSERIAL PRIMARY KEY,
		document_id UUID NOT NULL REFERENCES policy_documents(id) ON DELETE CASCADE,
		chunk_index INT NOT NULL,
		chunk_text TEXT NOT NULL,
		embedding JSONB NOT NULL,
		UNIQUE (document_id, chunk_index)
	)`,
}

// Migrate creates any missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	logrus.Debug("schema migration complete")
	return nil
}

// clearTables lists everything the demo loader wipes, in FK-safe order.
var clearTables = []string{
	"policy_embeddings",
	"policy_documents",
	"state_snapshots",
	"events",
	"simulation_runs",
	"scenarios",
	"nurses",
	"beds",
	"patients",
	"shifts",
	"units",
}

// Counts reports row counts for the tables the demo status endpoint
// surfaces.
func (s *Store) Counts(ctx context.Context) (TableCounts, error) {
	var c TableCounts
	err := s.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM units),
		(SELECT COUNT(*) FROM beds),
		(SELECT COUNT(*) FROM nurses),
		(SELECT COUNT(*) FROM patients),
		(SELECT COUNT(*) FROM events),
		(SELECT COUNT(*) FROM scenarios),
		(SELECT COUNT(*) FROM policy_documents)`,
	).Scan(&c.Units, &c.Beds, &c.Nurses, &c.Patients, &c.Events, &c.Scenarios, &c.Policies)
	if err != nil {
		return TableCounts{}, fmt.Errorf("table counts: %w", err)
	}
	return c, nil
}

// TableCounts is the per-table row census returned by Counts.
type TableCounts struct {
	Units     int `json:"units"`
	Beds      int `json:"beds"`
	Nurses    int `json:"nurses"`
	Patients  int `json:"patients"`
	Events    int `json:"events"`
	Scenarios int `json:"scenarios"`
	Policies  int `json:"policies"`
}

// ClearAll removes every row from every table. Destructive; only the demo
// loader calls this, and never concurrently with other writers.
func (s *Store) ClearAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("clear all: %w", err)
	}
	defer tx.Rollback()

	for _, table := range clearTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}
