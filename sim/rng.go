package sim

import (
	"math/rand"
	"sort"
)

// RNG is the seedable random source for a single simulation run.
// Every stochastic decision in the engine routes through it, so a
// (parameters, seed) pair yields identical results within a build.
//
// The underlying generator is math/rand's default source. Cross-platform
// bit-exactness against other languages is not a goal; reproducibility for
// a fixed seed and call sequence is.
//
// Thread-safety: NOT thread-safe. Each engine owns its own RNG.
type RNG struct {
	src *rand.Rand
}

// NewRNG creates an RNG from a seed value.
func NewRNG(seed int64) *RNG {
	return &RNG{src: rand.New(rand.NewSource(seed))}
}

// Uniform returns a draw from U[0, 1).
func (r *RNG) Uniform() float64 {
	return r.src.Float64()
}

// Exp returns an exponentially distributed draw with the given mean.
func (r *RNG) Exp(mean float64) float64 {
	return r.src.ExpFloat64() * mean
}

// IntRange returns an integer in [lo, hi). Panics if hi <= lo.
func (r *RNG) IntRange(lo, hi int) int {
	if hi <= lo {
		panic("IntRange: hi must be greater than lo")
	}
	return lo + r.src.Intn(hi-lo)
}

// Bernoulli returns true with probability p.
func (r *RNG) Bernoulli(p float64) bool {
	return r.src.Float64() < p
}

// Choice returns an index into weights drawn proportionally to weight.
// Weights need not sum to 1; non-positive weights are never selected.
func (r *RNG) Choice(weights []float64) int {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return 0
	}
	u := r.src.Float64() * total
	var cum float64
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cum += w
		if u < cum {
			return i
		}
	}
	return len(weights) - 1
}

// WeightedKey draws a key from a string-weighted map. Keys are sorted
// before the draw so map iteration order cannot perturb determinism.
func (r *RNG) WeightedKey(weights map[string]float64) string {
	if len(weights) == 0 {
		return ""
	}
	keys := make([]string, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ws := make([]float64, len(keys))
	for i, k := range keys {
		ws[i] = weights[k]
	}
	return keys[r.Choice(ws)]
}
