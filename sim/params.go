package sim

import (
	"fmt"
	"math"
)

// Baseline arrival intensity before the scenario multiplier.
const baseArrivalsPerHour = 12.5

// Horizon is the simulated day in virtual minutes.
const Horizon = 24 * 60.0

// Params are the immutable scenario inputs to a run.
type Params struct {
	ArrivalMultiplier float64            `json:"arrival_multiplier" yaml:"arrival_multiplier"`
	AcuityMix         map[string]float64 `json:"acuity_mix" yaml:"acuity_mix"`
	BedsAvailable     int                `json:"beds_available" yaml:"beds_available"`
	NurseCount        map[string]int     `json:"nurse_count" yaml:"nurse_count"`
	ImagingCapacity   float64            `json:"imaging_capacity" yaml:"imaging_capacity"`
	TransportCapacity float64            `json:"transport_capacity" yaml:"transport_capacity"`

	// Seed overrides the worker default when present in the scenario.
	Seed *int64 `json:"seed,omitempty" yaml:"seed,omitempty"`

	// FaultAt aborts the run when the clock reaches this virtual minute.
	// Exists for exercising the runner's failure path.
	FaultAt *float64 `json:"inject_fault_at_minutes,omitempty" yaml:"inject_fault_at_minutes,omitempty"`
}

// DefaultParams returns the baseline scenario parameters.
func DefaultParams() Params {
	return Params{
		ArrivalMultiplier: 1.0,
		AcuityMix: map[string]float64{
			"low": 0.3, "medium": 0.5, "high": 0.15, "critical": 0.05,
		},
		BedsAvailable:     24,
		NurseCount:        map[string]int{"day": 6, "evening": 5, "night": 4},
		ImagingCapacity:   1.0,
		TransportCapacity: 1.0,
	}
}

// DayNurses returns the day-shift nurse count. The engine models the day
// shift only.
func (p Params) DayNurses() int {
	return p.NurseCount["day"]
}

// Validate checks every field against its documented domain.
func (p Params) Validate() error {
	if p.ArrivalMultiplier < 0.5 || p.ArrivalMultiplier > 3.0 {
		return fmt.Errorf("arrival_multiplier %.2f outside [0.5, 3.0]", p.ArrivalMultiplier)
	}
	if p.BedsAvailable < 1 || p.BedsAvailable > 100 {
		return fmt.Errorf("beds_available %d outside [1, 100]", p.BedsAvailable)
	}
	if p.ImagingCapacity < 0.2 || p.ImagingCapacity > 5.0 {
		return fmt.Errorf("imaging_capacity %.2f outside [0.2, 5.0]", p.ImagingCapacity)
	}
	if p.TransportCapacity < 0.2 || p.TransportCapacity > 5.0 {
		return fmt.Errorf("transport_capacity %.2f outside [0.2, 5.0]", p.TransportCapacity)
	}
	if p.DayNurses() < 1 {
		return fmt.Errorf("nurse_count.day must be at least 1")
	}
	var sum float64
	for k, v := range p.AcuityMix {
		if _, ok := isolationProb[Acuity(k)]; !ok {
			return fmt.Errorf("acuity_mix has unknown level %q", k)
		}
		if v < 0 {
			return fmt.Errorf("acuity_mix[%s] is negative", k)
		}
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("acuity_mix probabilities sum to %.4f, want 1", sum)
	}
	return nil
}

// ParamsFromMap builds Params from a decoded JSON/YAML parameter document,
// applying baseline defaults for absent fields. Unknown keys are ignored so
// scenario documents can carry annotations.
func ParamsFromMap(m map[string]any) (Params, error) {
	p := DefaultParams()
	if m == nil {
		return p, nil
	}
	if v, ok := m["arrival_multiplier"]; ok {
		f, err := toFloat(v)
		if err != nil {
			return p, fmt.Errorf("arrival_multiplier: %w", err)
		}
		p.ArrivalMultiplier = f
	}
	if v, ok := m["beds_available"]; ok {
		f, err := toFloat(v)
		if err != nil {
			return p, fmt.Errorf("beds_available: %w", err)
		}
		p.BedsAvailable = int(f)
	}
	if v, ok := m["imaging_capacity"]; ok {
		f, err := toFloat(v)
		if err != nil {
			return p, fmt.Errorf("imaging_capacity: %w", err)
		}
		p.ImagingCapacity = f
	}
	if v, ok := m["transport_capacity"]; ok {
		f, err := toFloat(v)
		if err != nil {
			return p, fmt.Errorf("transport_capacity: %w", err)
		}
		p.TransportCapacity = f
	}
	if v, ok := m["acuity_mix"]; ok {
		mix, err := toFloatMap(v)
		if err != nil {
			return p, fmt.Errorf("acuity_mix: %w", err)
		}
		p.AcuityMix = mix
	}
	if v, ok := m["nurse_count"]; ok {
		counts, err := toFloatMap(v)
		if err != nil {
			return p, fmt.Errorf("nurse_count: %w", err)
		}
		p.NurseCount = make(map[string]int, len(counts))
		for k, f := range counts {
			p.NurseCount[k] = int(f)
		}
	}
	if v, ok := m["seed"]; ok {
		f, err := toFloat(v)
		if err != nil {
			return p, fmt.Errorf("seed: %w", err)
		}
		seed := int64(f)
		p.Seed = &seed
	}
	if v, ok := m["inject_fault_at_minutes"]; ok {
		f, err := toFloat(v)
		if err != nil {
			return p, fmt.Errorf("inject_fault_at_minutes: %w", err)
		}
		p.FaultAt = &f
	}
	return p, p.Validate()
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("not a number: %v", v)
}

func toFloatMap(v any) (map[string]float64, error) {
	out := make(map[string]float64)
	switch m := v.(type) {
	case map[string]any:
		for k, raw := range m {
			f, err := toFloat(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = f
		}
	case map[string]float64:
		for k, f := range m {
			out[k] = f
		}
	default:
		return nil, fmt.Errorf("not a mapping: %v", v)
	}
	return out, nil
}
