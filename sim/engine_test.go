package sim

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRun(t *testing.T, params Params, seed int64) (*Engine, *Result) {
	t.Helper()
	e, err := NewEngine(params, seed)
	require.NoError(t, err)
	res, err := e.Run(nil)
	require.NoError(t, err)
	return e, res
}

func TestNewEngine_RejectsInvalidParams(t *testing.T) {
	p := DefaultParams()
	p.BedsAvailable = 0
	_, err := NewEngine(p, 42)
	assert.Error(t, err)
}

func TestEngine_SameSeedSameResult(t *testing.T) {
	// GIVEN two engines with identical parameters and seed
	_, a := mustRun(t, DefaultParams(), 42)
	_, b := mustRun(t, DefaultParams(), 42)

	// THEN the full result bundles are identical
	assert.Equal(t, a, b)
}

func TestEngine_DifferentSeedDifferentResult(t *testing.T) {
	_, a := mustRun(t, DefaultParams(), 1)
	_, b := mustRun(t, DefaultParams(), 2)
	assert.NotEqual(t, a.Metrics, b.Metrics)
}

func TestEngine_TimeSeriesGrid(t *testing.T) {
	_, res := mustRun(t, DefaultParams(), 42)
	ts := res.TimeSeries

	// one sample per 15-minute grid point across the day
	require.Len(t, ts.Time, int(Horizon/metricInterval))
	require.Len(t, ts.Occupancy, len(ts.Time))
	require.Len(t, ts.BedQueue, len(ts.Time))
	require.Len(t, ts.ImagingQueue, len(ts.Time))
	require.Len(t, ts.NurseLoad, len(ts.Time))

	for i, at := range ts.Time {
		assert.Equal(t, metricInterval*float64(i+1), at)
	}
	for _, v := range ts.Occupancy {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestEngine_ProgressTicks(t *testing.T) {
	var ticks []int
	e, err := NewEngine(DefaultParams(), 42)
	require.NoError(t, err)
	_, err = e.Run(func(pct int) { ticks = append(ticks, pct) })
	require.NoError(t, err)

	require.NotEmpty(t, ticks)
	for i := 1; i < len(ticks); i++ {
		assert.Greater(t, ticks[i], ticks[i-1])
	}
	assert.GreaterOrEqual(t, ticks[0], 0)
	assert.Equal(t, 100, ticks[len(ticks)-1])
}

func TestEngine_PatientTimestampsOrdered(t *testing.T) {
	e, _ := mustRun(t, DefaultParams(), 42)

	for _, p := range e.Patients() {
		if p.TriageEnd != TimeUnset {
			assert.Greater(t, p.TriageEnd, p.ArrivalTime)
		}
		if p.BedAssigned != TimeUnset {
			assert.GreaterOrEqual(t, p.BedAssigned, p.TriageEnd)
			assert.NotZero(t, p.BedID)
		}
		if p.ImagingStart != TimeUnset {
			assert.True(t, p.RequiresImaging)
			assert.GreaterOrEqual(t, p.ImagingStart, p.BedAssigned)
		}
		if p.ImagingEnd != TimeUnset {
			assert.Greater(t, p.ImagingEnd, p.ImagingStart)
		}
		if p.ConsultStart != TimeUnset {
			assert.True(t, p.RequiresConsult)
			assert.Greater(t, p.ConsultStart, p.BedAssigned)
		}
		if p.ConsultEnd != TimeUnset {
			assert.Greater(t, p.ConsultEnd, p.ConsultStart)
		}
		if p.Discharge != TimeUnset {
			assert.Greater(t, p.Discharge, p.BedAssigned)
		}
	}
}

func TestEngine_IsolationPatientsGetIsolationBedsWhenFree(t *testing.T) {
	e, _ := mustRun(t, DefaultParams(), 42)

	// an isolation patient lands in a standard bed only if both isolation
	// rooms were unavailable at assignment time, so at minimum the flag
	// must exist for anyone placed in an isolation room early in the day
	var isolationSeen bool
	for _, p := range e.Patients() {
		if p.IsIsolation && p.BedID != 0 {
			isolationSeen = true
		}
	}
	assert.True(t, isolationSeen, "expected at least one admitted isolation patient over a full day")
}

func TestEngine_EndOfRunResourceInvariants(t *testing.T) {
	e, _ := mustRun(t, DefaultParams(), 42)

	// the event queue drains completely, so no bed is left mid-cleaning
	for _, b := range e.Beds().Beds() {
		assert.False(t, b.Cleaning, "bed %d still cleaning after queue drained", b.ID)
		if b.Occupied {
			assert.NotZero(t, b.PatientID, "occupied bed %d has no patient", b.ID)
		} else {
			assert.Zero(t, b.PatientID)
		}
	}
	for _, n := range e.Nurses().Nurses() {
		assert.LessOrEqual(t, n.Load(), n.MaxPatients)
	}
}

func TestEngine_BedQueueIsFIFO(t *testing.T) {
	e, _ := mustRun(t, DefaultParams(), 42)

	// patients admitted off the wait queue must be served in the order
	// they finished triage
	var queued []*Patient
	for _, p := range e.Patients() {
		if p.BedAssigned != TimeUnset && p.BedAssigned > p.TriageEnd {
			queued = append(queued, p)
		}
	}
	require.NotEmpty(t, queued, "a saturated day should queue admissions")

	sort.Slice(queued, func(i, j int) bool { return queued[i].BedAssigned < queued[j].BedAssigned })
	for i := 1; i < len(queued); i++ {
		if queued[i].BedAssigned > queued[i-1].BedAssigned {
			assert.GreaterOrEqual(t, queued[i].TriageEnd, queued[i-1].TriageEnd,
				"patient %d jumped the bed queue ahead of %d", queued[i].ID, queued[i-1].ID)
		}
	}
}

func TestEngine_OutcomeForEveryArrival(t *testing.T) {
	e, res := mustRun(t, DefaultParams(), 42)
	assert.Equal(t, len(e.Patients()), res.Metrics.TotalPatients)
}

func TestEngine_FaultInjectionAbortsRun(t *testing.T) {
	p := DefaultParams()
	at := 60.0
	p.FaultAt = &at

	e, err := NewEngine(p, 42)
	require.NoError(t, err)
	res, err := e.Run(nil)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "injected fault")
}
