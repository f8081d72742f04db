package store

import (
	"encoding/json"
	"time"
)

// Unit is one inpatient unit.
type Unit struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TotalBeds int       `json:"total_beds"`
	CreatedAt time.Time `json:"created_at"`
}

// Bed is one physical bed. Number is the stable 1..N position within the
// unit; PositionX/Y place it on the floor-plan grid.
type Bed struct {
	ID               int64     `json:"id"`
	UnitID           string    `json:"unit_id"`
	Number           int       `json:"number"`
	BedType          string    `json:"bed_type"`
	IsOccupied       bool      `json:"is_occupied"`
	IsCleaning       bool      `json:"is_cleaning"`
	CurrentPatientID *string   `json:"current_patient_id"`
	PositionX        int       `json:"position_x"`
	PositionY        int       `json:"position_y"`
	CreatedAt        time.Time `json:"created_at"`
}

// Shift is one nursing shift with wrap-around hours (night runs 23 to 7).
type Shift struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	StartHour int    `json:"start_hour"`
	EndHour   int    `json:"end_hour"`
}

// Nurse is one staff member tied to a unit and a shift.
type Nurse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	UnitID      string    `json:"unit_id"`
	ShiftID     *int64    `json:"shift_id"`
	MaxPatients int       `json:"max_patients"`
	CreatedAt   time.Time `json:"created_at"`
}

// Patient is one admitted or waiting patient.
type Patient struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Acuity       string     `json:"acuity"`
	IsIsolation  bool       `json:"is_isolation"`
	CurrentBedID *int64     `json:"current_bed_id"`
	AdmittedAt   *time.Time `json:"admitted_at"`
	DischargedAt *time.Time `json:"discharged_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Event is one durable event-log row. Data carries kind-specific fields
// as a JSON object.
type Event struct {
	ID         int64           `json:"id"`
	Timestamp  time.Time       `json:"timestamp"`
	EventType  string          `json:"event_type"`
	PatientID  *string         `json:"patient_id,omitempty"`
	UnitID     *string         `json:"unit_id,omitempty"`
	BedID      *int64          `json:"bed_id,omitempty"`
	NurseID    *string         `json:"nurse_id,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	ScenarioID *string         `json:"scenario_id,omitempty"`
}

// StateSnapshot is a periodic whole-unit state capture.
type StateSnapshot struct {
	ID        int64           `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	UnitID    string          `json:"unit_id"`
	Data      json.RawMessage `json:"data"`
}

// Scenario is a named parameter set for simulation runs. The baseline
// scenario is protected from deletion.
type Scenario struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	IsBaseline  bool            `json:"is_baseline"`
	Parameters  json.RawMessage `json:"parameters"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Run statuses. pending -> running -> completed | failed. A user cancel is
// an external transition to failed with an explanatory error_message.
const (
	RunPending   = "pending"
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// TerminalRunStatus reports whether a status admits no further transition.
func TerminalRunStatus(status string) bool {
	return status == RunCompleted || status == RunFailed
}

// SimulationRun is one execution of a scenario. Result columns stay null
// until the run completes.
type SimulationRun struct {
	ID           string          `json:"id"`
	ScenarioID   string          `json:"scenario_id"`
	Status       string          `json:"status"`
	Progress     int             `json:"progress"`
	Metrics      json.RawMessage `json:"metrics,omitempty"`
	TimeSeries   json.RawMessage `json:"timeseries,omitempty"`
	Bottlenecks  json.RawMessage `json:"bottlenecks,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// PolicyDocument is one operational policy available to the copilot's
// retrieval queries.
type PolicyDocument struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// PolicyEmbedding is one embedded chunk of a policy document.
type PolicyEmbedding struct {
	ID         int64           `json:"id"`
	DocumentID string          `json:"document_id"`
	ChunkIndex int             `json:"chunk_index"`
	ChunkText  string          `json:"chunk_text"`
	Embedding  json.RawMessage `json:"embedding"`
}
