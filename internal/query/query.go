// Package query derives read-only views from the persisted world: unit
// state, per-patient traces, and bottleneck summaries. It is shared by
// the HTTP surface and the copilot tools.
package query

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/wardops/wardops/internal/store"
)

// slaWaitMinutes is the bed-wait threshold for a breach.
const slaWaitMinutes = 60.0

// targetPatientsPerNurse is the staffing ratio the heuristic checks.
const targetPatientsPerNurse = 4.0

// Store is the persistence slice the query layer reads.
type Store interface {
	ListBeds(ctx context.Context, unitID string) ([]store.Bed, error)
	CountWaitingPatients(ctx context.Context) (int, error)
	CountNurses(ctx context.Context, unitID string) (int, error)
	GetPatient(ctx context.Context, id string) (*store.Patient, error)
	ListEvents(ctx context.Context, f store.EventFilter) ([]store.Event, error)
}

// Service answers point-in-time queries.
type Service struct {
	store Store
}

// New builds a query service.
func New(st Store) *Service {
	return &Service{store: st}
}

// BedCounts breaks a unit's beds down by status.
type BedCounts struct {
	Total     int `json:"total"`
	Occupied  int `json:"occupied"`
	Cleaning  int `json:"cleaning"`
	Available int `json:"available"`
}

// Staffing summarizes the unit's nursing load.
type Staffing struct {
	NurseCount       int     `json:"nurse_count"`
	PatientsPerNurse float64 `json:"patients_per_nurse"`
}

// UnitState is the state view at a point in time.
type UnitState struct {
	UnitID          string    `json:"unit_id"`
	Time            time.Time `json:"time"`
	Beds            BedCounts `json:"beds"`
	WaitingPatients int       `json:"waiting_patients"`
	Staffing        Staffing  `json:"staffing"`
}

// StateAt reads the current rows as the state estimate for the requested
// time. Rows are mutated in place by writers, so the estimate is exact
// for "now" and approximate for historical times.
func (s *Service) StateAt(ctx context.Context, unitID string, at time.Time) (*UnitState, error) {
	beds, err := s.store.ListBeds(ctx, unitID)
	if err != nil {
		return nil, err
	}
	state := &UnitState{UnitID: unitID, Time: at}
	state.Beds.Total = len(beds)
	for _, b := range beds {
		switch {
		case b.IsOccupied:
			state.Beds.Occupied++
		case b.IsCleaning:
			state.Beds.Cleaning++
		default:
			state.Beds.Available++
		}
	}

	if state.WaitingPatients, err = s.store.CountWaitingPatients(ctx); err != nil {
		return nil, err
	}
	if state.Staffing.NurseCount, err = s.store.CountNurses(ctx, unitID); err != nil {
		return nil, err
	}
	if state.Staffing.NurseCount > 0 {
		state.Staffing.PatientsPerNurse = float64(state.Beds.Occupied) / float64(state.Staffing.NurseCount)
	}
	return state, nil
}

// PatientTrace is a patient's journey: the row, the ordered event log,
// and derived totals.
type PatientTrace struct {
	Patient          store.Patient `json:"patient"`
	Events           []store.Event `json:"events"`
	TotalTimeMinutes float64       `json:"total_time_minutes"`
	WaitForBed       float64       `json:"wait_for_bed_minutes"`
	Handoffs         int           `json:"handoffs"`
}

// Trace assembles the trace for one patient.
func (s *Service) Trace(ctx context.Context, patientID string) (*PatientTrace, error) {
	p, err := s.store.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	events, err := s.store.ListEvents(ctx, store.EventFilter{PatientID: patientID})
	if err != nil {
		return nil, err
	}

	trace := &PatientTrace{Patient: *p, Events: events}
	trace.TotalTimeMinutes = totalTime(p, events)
	trace.WaitForBed = waitForBed(events)
	for _, ev := range events {
		if ev.EventType == "nurse_assignment" {
			trace.Handoffs++
		}
	}
	return trace, nil
}

// totalTime prefers the admission/discharge stamps and falls back to the
// event-log span for patients still in house.
func totalTime(p *store.Patient, events []store.Event) float64 {
	if p.AdmittedAt != nil && p.DischargedAt != nil {
		return p.DischargedAt.Sub(*p.AdmittedAt).Minutes()
	}
	if len(events) > 1 {
		return events[len(events)-1].Timestamp.Sub(events[0].Timestamp).Minutes()
	}
	return 0
}

// waitForBed prefers the wait recorded on the bed_assignment event and
// falls back to the arrival-to-assignment gap.
func waitForBed(events []store.Event) float64 {
	var arrival *time.Time
	for _, ev := range events {
		switch ev.EventType {
		case "arrival", "admission_request":
			if arrival == nil {
				t := ev.Timestamp
				arrival = &t
			}
		case "bed_assignment":
			if w, ok := dataFloat(ev.Data, "wait_minutes"); ok {
				return w
			}
			if arrival != nil {
				return ev.Timestamp.Sub(*arrival).Minutes()
			}
			return 0
		}
	}
	return 0
}

func dataFloat(data json.RawMessage, key string) (float64, bool) {
	if len(data) == 0 {
		return 0, false
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return 0, false
	}
	if v, ok := m[key].(float64); ok {
		return v, true
	}
	return 0, false
}

// RankedBottleneck is one constraint in a bottleneck summary.
type RankedBottleneck struct {
	Constraint  string  `json:"constraint"`
	ImpactScore float64 `json:"impact_score"`
	Occurrences int     `json:"occurrences"`
	Description string  `json:"description"`
}

// BottleneckSummary analyzes bed assignments in a time window.
type BottleneckSummary struct {
	WindowStart    time.Time          `json:"window_start"`
	WindowEnd      time.Time          `json:"window_end"`
	Assignments    int                `json:"assignments"`
	AvgWaitMinutes float64            `json:"avg_wait_minutes"`
	MaxWaitMinutes float64            `json:"max_wait_minutes"`
	SLABreaches    int                `json:"sla_breaches"`
	Bottlenecks    []RankedBottleneck `json:"bottlenecks"`
}

// SummarizeBottlenecks folds the window's bed_assignment events into wait
// statistics and a ranked constraint list, with a staffing-ratio check on
// top of the event-derived figures.
func (s *Service) SummarizeBottlenecks(ctx context.Context, unitID string, from, to time.Time, scenarioID string) (*BottleneckSummary, error) {
	events, err := s.store.ListEvents(ctx, store.EventFilter{
		UnitID:     unitID,
		ScenarioID: scenarioID,
		Types:      []string{"bed_assignment"},
		From:       &from,
		To:         &to,
	})
	if err != nil {
		return nil, err
	}

	summary := &BottleneckSummary{WindowStart: from, WindowEnd: to, Assignments: len(events)}
	var waits []float64
	for _, ev := range events {
		if w, ok := dataFloat(ev.Data, "wait_minutes"); ok {
			waits = append(waits, w)
			if w > slaWaitMinutes {
				summary.SLABreaches++
			}
		}
	}
	if len(waits) > 0 {
		summary.AvgWaitMinutes = stat.Mean(waits, nil)
		sort.Float64s(waits)
		summary.MaxWaitMinutes = waits[len(waits)-1]
	}

	if summary.Assignments > 0 && summary.SLABreaches > 0 {
		summary.Bottlenecks = append(summary.Bottlenecks, RankedBottleneck{
			Constraint:  "bed_availability",
			ImpactScore: float64(summary.SLABreaches) / float64(summary.Assignments),
			Occurrences: summary.SLABreaches,
			Description: fmt.Sprintf("%d of %d bed assignments waited over %.0f minutes", summary.SLABreaches, summary.Assignments, slaWaitMinutes),
		})
	}
	if err := s.addStaffingHeuristic(ctx, unitID, summary); err != nil {
		return nil, err
	}

	sort.Slice(summary.Bottlenecks, func(i, j int) bool {
		if summary.Bottlenecks[i].ImpactScore != summary.Bottlenecks[j].ImpactScore {
			return summary.Bottlenecks[i].ImpactScore > summary.Bottlenecks[j].ImpactScore
		}
		return summary.Bottlenecks[i].Constraint < summary.Bottlenecks[j].Constraint
	})
	return summary, nil
}

// addStaffingHeuristic flags the unit when the live patients-per-nurse
// ratio exceeds the target.
func (s *Service) addStaffingHeuristic(ctx context.Context, unitID string, summary *BottleneckSummary) error {
	beds, err := s.store.ListBeds(ctx, unitID)
	if err != nil {
		return err
	}
	nurses, err := s.store.CountNurses(ctx, unitID)
	if err != nil {
		return err
	}
	if nurses == 0 {
		return nil
	}
	var occupied int
	for _, b := range beds {
		if b.IsOccupied {
			occupied++
		}
	}
	ratio := float64(occupied) / float64(nurses)
	if ratio > targetPatientsPerNurse {
		summary.Bottlenecks = append(summary.Bottlenecks, RankedBottleneck{
			Constraint:  "nurse_staffing",
			ImpactScore: ratio / targetPatientsPerNurse,
			Occurrences: occupied,
			Description: fmt.Sprintf("%.1f patients per nurse against a target of %.0f", ratio, targetPatientsPerNurse),
		})
	}
	return nil
}
