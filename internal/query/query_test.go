package query

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardops/wardops/internal/store"
)

type fakeStore struct {
	beds     []store.Bed
	waiting  int
	nurses   int
	patients map[string]*store.Patient
	events   []store.Event
}

func (f *fakeStore) ListBeds(context.Context, string) ([]store.Bed, error) { return f.beds, nil }
func (f *fakeStore) CountWaitingPatients(context.Context) (int, error)    { return f.waiting, nil }
func (f *fakeStore) CountNurses(context.Context, string) (int, error)     { return f.nurses, nil }

func (f *fakeStore) GetPatient(_ context.Context, id string) (*store.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) ListEvents(_ context.Context, filter store.EventFilter) ([]store.Event, error) {
	var out []store.Event
	for _, ev := range f.events {
		if filter.PatientID != "" && (ev.PatientID == nil || *ev.PatientID != filter.PatientID) {
			continue
		}
		if len(filter.Types) > 0 && ev.EventType != filter.Types[0] {
			continue
		}
		if filter.From != nil && !ev.Timestamp.After(*filter.From) {
			continue
		}
		if filter.To != nil && ev.Timestamp.After(*filter.To) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

var anchor = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

func occupiedBed(n int) store.Bed {
	return store.Bed{ID: int64(n), Number: n, IsOccupied: true}
}

func TestStateAt_BedBreakdown(t *testing.T) {
	f := &fakeStore{
		beds: []store.Bed{
			occupiedBed(1), occupiedBed(2),
			{ID: 3, Number: 3, IsCleaning: true},
			{ID: 4, Number: 4},
		},
		waiting: 5,
		nurses:  2,
	}

	state, err := New(f).StateAt(context.Background(), "u1", anchor)
	require.NoError(t, err)

	assert.Equal(t, BedCounts{Total: 4, Occupied: 2, Cleaning: 1, Available: 1}, state.Beds)
	assert.Equal(t, 5, state.WaitingPatients)
	assert.Equal(t, 2, state.Staffing.NurseCount)
	assert.InDelta(t, 1.0, state.Staffing.PatientsPerNurse, 1e-9)
}

func TestStateAt_NoNurses(t *testing.T) {
	state, err := New(&fakeStore{}).StateAt(context.Background(), "u1", anchor)
	require.NoError(t, err)
	assert.Zero(t, state.Staffing.PatientsPerNurse)
}

func TestTrace_DerivedFigures(t *testing.T) {
	pid := "p1"
	admitted := anchor.Add(45 * time.Minute)
	discharged := anchor.Add(6 * time.Hour)
	f := &fakeStore{
		patients: map[string]*store.Patient{
			pid: {ID: pid, Name: "Pat One", AdmittedAt: &admitted, DischargedAt: &discharged},
		},
		events: []store.Event{
			{ID: 1, EventType: "arrival", Timestamp: anchor, PatientID: &pid},
			{ID: 2, EventType: "bed_assignment", Timestamp: anchor.Add(45 * time.Minute), PatientID: &pid,
				Data: []byte(`{"wait_minutes": 45}`)},
			{ID: 3, EventType: "nurse_assignment", Timestamp: anchor.Add(46 * time.Minute), PatientID: &pid},
			{ID: 4, EventType: "nurse_assignment", Timestamp: anchor.Add(8 * time.Hour), PatientID: &pid},
			{ID: 5, EventType: "discharge", Timestamp: discharged, PatientID: &pid},
		},
	}

	trace, err := New(f).Trace(context.Background(), pid)
	require.NoError(t, err)

	assert.Len(t, trace.Events, 5)
	assert.InDelta(t, 315, trace.TotalTimeMinutes, 1e-9) // admitted 00:45, discharged 06:00
	assert.InDelta(t, 45, trace.WaitForBed, 1e-9)
	assert.Equal(t, 2, trace.Handoffs)
}

func TestTrace_WaitFallsBackToTimestamps(t *testing.T) {
	pid := "p1"
	f := &fakeStore{
		patients: map[string]*store.Patient{pid: {ID: pid}},
		events: []store.Event{
			{ID: 1, EventType: "arrival", Timestamp: anchor, PatientID: &pid},
			{ID: 2, EventType: "bed_assignment", Timestamp: anchor.Add(30 * time.Minute), PatientID: &pid},
		},
	}

	trace, err := New(f).Trace(context.Background(), pid)
	require.NoError(t, err)
	assert.InDelta(t, 30, trace.WaitForBed, 1e-9)
	// no admission stamps, so total time spans the event log
	assert.InDelta(t, 30, trace.TotalTimeMinutes, 1e-9)
}

func TestTrace_UnknownPatient(t *testing.T) {
	_, err := New(&fakeStore{patients: map[string]*store.Patient{}}).Trace(context.Background(), "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func assignmentEvent(id int64, at time.Time, wait float64) store.Event {
	return store.Event{
		ID: id, EventType: "bed_assignment", Timestamp: at,
		Data: []byte(`{"wait_minutes": ` + strconv.FormatFloat(wait, 'f', -1, 64) + `}`),
	}
}

func TestSummarizeBottlenecks_WaitStatistics(t *testing.T) {
	f := &fakeStore{
		nurses: 6,
		events: []store.Event{
			assignmentEvent(1, anchor.Add(10*time.Minute), 30),
			assignmentEvent(2, anchor.Add(20*time.Minute), 90),
			assignmentEvent(3, anchor.Add(30*time.Minute), 120),
		},
	}

	sum, err := New(f).SummarizeBottlenecks(context.Background(), "u1", anchor, anchor.Add(time.Hour), "")
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Assignments)
	assert.InDelta(t, 80, sum.AvgWaitMinutes, 1e-9)
	assert.InDelta(t, 120, sum.MaxWaitMinutes, 1e-9)
	assert.Equal(t, 2, sum.SLABreaches)

	require.Len(t, sum.Bottlenecks, 1)
	assert.Equal(t, "bed_availability", sum.Bottlenecks[0].Constraint)
	assert.InDelta(t, 2.0/3.0, sum.Bottlenecks[0].ImpactScore, 1e-9)
	assert.Equal(t, 2, sum.Bottlenecks[0].Occurrences)
}

func TestSummarizeBottlenecks_StaffingHeuristic(t *testing.T) {
	// GIVEN 10 occupied beds against 2 nurses
	f := &fakeStore{nurses: 2}
	for i := 1; i <= 10; i++ {
		f.beds = append(f.beds, occupiedBed(i))
	}

	sum, err := New(f).SummarizeBottlenecks(context.Background(), "u1", anchor, anchor.Add(time.Hour), "")
	require.NoError(t, err)

	require.Len(t, sum.Bottlenecks, 1)
	nb := sum.Bottlenecks[0]
	assert.Equal(t, "nurse_staffing", nb.Constraint)
	assert.InDelta(t, 5.0/4.0, nb.ImpactScore, 1e-9)
	assert.Equal(t, 10, nb.Occurrences)
}

func TestSummarizeBottlenecks_EmptyWindow(t *testing.T) {
	sum, err := New(&fakeStore{nurses: 6}).SummarizeBottlenecks(context.Background(), "u1", anchor, anchor.Add(time.Hour), "")
	require.NoError(t, err)
	assert.Zero(t, sum.Assignments)
	assert.Empty(t, sum.Bottlenecks)
}
