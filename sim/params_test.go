package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParams_Validate(t *testing.T) {
	assert.NoError(t, DefaultParams().Validate())
}

func TestParams_Validate_Ranges(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"arrival multiplier too low", func(p *Params) { p.ArrivalMultiplier = 0.4 }},
		{"arrival multiplier too high", func(p *Params) { p.ArrivalMultiplier = 3.5 }},
		{"zero beds", func(p *Params) { p.BedsAvailable = 0 }},
		{"too many beds", func(p *Params) { p.BedsAvailable = 101 }},
		{"imaging capacity too low", func(p *Params) { p.ImagingCapacity = 0.1 }},
		{"imaging capacity too high", func(p *Params) { p.ImagingCapacity = 6 }},
		{"transport capacity too low", func(p *Params) { p.TransportCapacity = 0.1 }},
		{"no day nurses", func(p *Params) { p.NurseCount = map[string]int{"day": 0} }},
		{"unknown acuity level", func(p *Params) { p.AcuityMix = map[string]float64{"severe": 1.0} }},
		{"negative acuity weight", func(p *Params) {
			p.AcuityMix = map[string]float64{"low": -0.5, "medium": 1.5}
		}},
		{"acuity mix not normalized", func(p *Params) {
			p.AcuityMix = map[string]float64{"low": 0.5, "medium": 0.6}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultParams()
			tc.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestParamsFromMap_NilGivesDefaults(t *testing.T) {
	p, err := ParamsFromMap(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultParams(), p)
}

func TestParamsFromMap_Overrides(t *testing.T) {
	// GIVEN a decoded JSON document (numbers arrive as float64)
	m := map[string]any{
		"arrival_multiplier": 2.0,
		"beds_available":     float64(10),
		"imaging_capacity":   0.5,
		"transport_capacity": 1.5,
		"acuity_mix": map[string]any{
			"low": 0.25, "medium": 0.25, "high": 0.25, "critical": 0.25,
		},
		"nurse_count":             map[string]any{"day": float64(2), "evening": float64(2), "night": float64(1)},
		"seed":                    float64(7),
		"inject_fault_at_minutes": float64(120),
	}

	p, err := ParamsFromMap(m)
	require.NoError(t, err)
	assert.Equal(t, 2.0, p.ArrivalMultiplier)
	assert.Equal(t, 10, p.BedsAvailable)
	assert.Equal(t, 0.5, p.ImagingCapacity)
	assert.Equal(t, 1.5, p.TransportCapacity)
	assert.Equal(t, 2, p.DayNurses())
	require.NotNil(t, p.Seed)
	assert.Equal(t, int64(7), *p.Seed)
	require.NotNil(t, p.FaultAt)
	assert.Equal(t, 120.0, *p.FaultAt)
}

func TestParamsFromMap_PartialOverrideKeepsDefaults(t *testing.T) {
	p, err := ParamsFromMap(map[string]any{"beds_available": float64(12)})
	require.NoError(t, err)
	assert.Equal(t, 12, p.BedsAvailable)
	assert.Equal(t, 1.0, p.ArrivalMultiplier)
	assert.Nil(t, p.Seed)
}

func TestParamsFromMap_BadType(t *testing.T) {
	_, err := ParamsFromMap(map[string]any{"arrival_multiplier": "fast"})
	assert.Error(t, err)

	_, err = ParamsFromMap(map[string]any{"acuity_mix": "flat"})
	assert.Error(t, err)
}

func TestParamsFromMap_OutOfRangeRejected(t *testing.T) {
	_, err := ParamsFromMap(map[string]any{"beds_available": float64(500)})
	assert.Error(t, err)
}

func TestParamsFromMap_UnknownKeysIgnored(t *testing.T) {
	p, err := ParamsFromMap(map[string]any{"note": "evening surge drill"})
	require.NoError(t, err)
	assert.Equal(t, DefaultParams(), p)
}
