package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Whole-day scenario runs exercising the engine end to end under the
// operational presets the planning team uses.

func runPreset(t *testing.T, seed int64, mutate func(*Params)) *Result {
	t.Helper()
	p := DefaultParams()
	if mutate != nil {
		mutate(&p)
	}
	e, err := NewEngine(p, seed)
	require.NoError(t, err)
	res, err := e.Run(nil)
	require.NoError(t, err)
	return res
}

func findBottleneck(res *Result, c Constraint) *Bottleneck {
	for i := range res.Bottlenecks {
		if res.Bottlenecks[i].Constraint == c {
			return &res.Bottlenecks[i]
		}
	}
	return nil
}

func TestScenario_Baseline(t *testing.T) {
	res := runPreset(t, 42, nil)

	// roughly 12.5 arrivals/hour over a day
	assert.GreaterOrEqual(t, res.Metrics.TotalPatients, 240)
	assert.LessOrEqual(t, res.Metrics.TotalPatients, 360)

	assert.LessOrEqual(t, res.Metrics.PeakOccupancy, 100.0)
	assert.LessOrEqual(t, res.Metrics.AvgOccupancy, 100.0)

	// a 24-bed unit cannot absorb a full day of baseline demand, so the
	// run surfaces at least one constraint
	assert.NotEmpty(t, res.Bottlenecks)
	assert.NotNil(t, findBottleneck(res, ConstraintBeds))
}

func TestScenario_BedCrunch(t *testing.T) {
	base := runPreset(t, 42, nil)
	crunch := runPreset(t, 42, func(p *Params) { p.BedsAvailable = 10 })

	// WHEN beds drop from 24 to 10
	// THEN bed availability dominates the ranking and waits grow
	require.NotEmpty(t, crunch.Bottlenecks)
	assert.Equal(t, ConstraintBeds, crunch.Bottlenecks[0].Constraint)
	assert.Greater(t, crunch.Metrics.AvgWaitTime, base.Metrics.AvgWaitTime)
	assert.Greater(t, crunch.Metrics.MaxWaitTime, base.Metrics.MaxWaitTime)
}

func TestScenario_ArrivalSurge(t *testing.T) {
	base := runPreset(t, 42, nil)
	surge := runPreset(t, 42, func(p *Params) { p.ArrivalMultiplier = 2.0 })

	assert.Greater(t, surge.Metrics.TotalPatients, base.Metrics.TotalPatients)

	// twice the arrivals against the same 24 beds means more patients blow
	// the 60-minute wait mark, most of them still queued when the day ends
	assert.Greater(t, surge.Metrics.SLABreaches, base.Metrics.SLABreaches)

	bb := findBottleneck(base, ConstraintBeds)
	sb := findBottleneck(surge, ConstraintBeds)
	require.NotNil(t, bb)
	require.NotNil(t, sb)
	assert.Greater(t, sb.Occurrences, bb.Occurrences)
}

func TestScenario_StaffingStress(t *testing.T) {
	res := runPreset(t, 42, func(p *Params) {
		p.NurseCount = map[string]int{"day": 2, "evening": 2, "night": 1}
	})

	// 2 nurses cap out at 8 concurrent patients against 24 beds
	nb := findBottleneck(res, ConstraintNurses)
	require.NotNil(t, nb, "expected nurse staffing to surface as a bottleneck")
	assert.Greater(t, nb.Occurrences, 0)
	assert.Equal(t, DescribeConstraint(ConstraintNurses), nb.Description)
}

func TestScenario_ImagingDowntime(t *testing.T) {
	res := runPreset(t, 42, func(p *Params) { p.ImagingCapacity = 0.2 })

	// capacity 0.2 scales to zero concurrent slots, so the imaging queue
	// only ever grows and nobody is scanned
	ib := findBottleneck(res, ConstraintImaging)
	require.NotNil(t, ib)
	assert.Greater(t, ib.Occurrences, 0)

	ts := res.TimeSeries.ImagingQueue
	require.NotEmpty(t, ts)
	last := ts[len(ts)-1]
	assert.Greater(t, last, 0)
	assert.LessOrEqual(t, last, ib.Occurrences)
	for i := 1; i < len(ts); i++ {
		assert.GreaterOrEqual(t, ts[i], ts[i-1], "imaging queue shrank with zero capacity")
	}
}

func TestScenario_BedCrunchHurtsAcrossSeeds(t *testing.T) {
	for _, seed := range []int64{1, 7, 42} {
		base := runPreset(t, seed, nil)
		crunch := runPreset(t, seed, func(p *Params) { p.BedsAvailable = 10 })
		assert.Greater(t, crunch.Metrics.AvgWaitTime, base.Metrics.AvgWaitTime,
			"seed %d: fewer beds should mean longer waits", seed)
	}
}
