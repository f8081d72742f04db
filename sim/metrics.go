// Aggregates per-patient outcomes, sampled time series, and the bottleneck
// log into the result bundle persisted on a simulation run.

package sim

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Constraint names a contended resource in the bottleneck log.
type Constraint string

const (
	ConstraintBeds      Constraint = "bed_availability"
	ConstraintNurses    Constraint = "nurse_staffing"
	ConstraintImaging   Constraint = "imaging_capacity"
	ConstraintTransport Constraint = "transport_capacity"
)

// constraintDescriptions are the fixed human-readable summaries attached to
// ranked bottlenecks.
var constraintDescriptions = map[Constraint]string{
	ConstraintBeds:      "Insufficient bed capacity causing patient wait times",
	ConstraintNurses:    "Nurse staffing ratios exceeded, delaying patient care",
	ConstraintImaging:   "Imaging equipment utilization at maximum capacity",
	ConstraintTransport: "Transport resources insufficient for demand",
}

// DescribeConstraint returns the fixed description for a constraint.
func DescribeConstraint(c Constraint) string {
	if d, ok := constraintDescriptions[c]; ok {
		return d
	}
	return "Constraint: " + string(c)
}

// BottleneckEvent records one denied resource acquisition.
// QueueLength is nil for nurse_staffing records, which represent ratio
// stress rather than a blocking queue.
type BottleneckEvent struct {
	Time        float64    `json:"time"`
	Constraint  Constraint `json:"constraint"`
	PatientID   int        `json:"patient_id"`
	QueueLength *int       `json:"queue_length,omitempty"`
	Description string     `json:"description,omitempty"`
}

// Outcome is the per-patient record folded into summary metrics at
// discharge. Optional figures are nil when the phase never happened.
type Outcome struct {
	PatientID    int      `json:"patient_id"`
	Acuity       Acuity   `json:"acuity"`
	WaitTime     *float64 `json:"wait_time"`
	LOS          *float64 `json:"los"`
	// WaitCensored is the wait accrued by a patient still queued for a bed
	// when the run ended. It feeds the SLA breach count only; the wait
	// averages cover admitted patients.
	WaitCensored *float64 `json:"wait_censored,omitempty"`
	HadImaging   bool     `json:"had_imaging"`
	ImagingDelay *float64 `json:"imaging_delay"`
}

// TimeSeries holds the metrics sampled every 15 virtual minutes.
// All slices share one length and Time is strictly increasing.
type TimeSeries struct {
	Time         []float64 `json:"time"`
	Occupancy    []float64 `json:"occupancy"`
	BedQueue     []int     `json:"bed_queue"`
	ImagingQueue []int     `json:"imaging_queue"`
	NurseLoad    []float64 `json:"nurse_load"`
}

// Summary is the aggregate metric block of a completed run.
type Summary struct {
	TotalPatients  int     `json:"total_patients"`
	AvgWaitTime    float64 `json:"avg_wait_time_minutes"`
	MedianWaitTime float64 `json:"median_wait_time_minutes"`
	MaxWaitTime    float64 `json:"max_wait_time_minutes"`
	AvgLOS         float64 `json:"avg_los_minutes"`
	SLABreaches    int     `json:"sla_breaches"`
	AvgOccupancy   float64 `json:"avg_occupancy"`
	PeakOccupancy  float64 `json:"peak_occupancy"`
	AvgNurseLoad   float64 `json:"avg_nurse_load"`
}

// Bottleneck is a ranked constraint in the final result.
type Bottleneck struct {
	Constraint  Constraint `json:"constraint"`
	ImpactScore float64    `json:"impact_score"`
	Occurrences int        `json:"occurrences"`
	AvgQueue    float64    `json:"avg_queue"`
	Description string     `json:"description"`
}

// Result is the bundle a run persists: summary metrics, time series, and
// the top-ranked bottlenecks.
type Result struct {
	Metrics     Summary      `json:"metrics"`
	TimeSeries  TimeSeries   `json:"timeseries"`
	Bottlenecks []Bottleneck `json:"bottlenecks"`
}

// SLAWaitMinutes is the bed-wait threshold beyond which a patient counts
// as an SLA breach.
const SLAWaitMinutes = 60.0

// aggregate folds outcomes, the bottleneck log, and the sampled series
// into a Result. Bottlenecks are grouped by constraint, scored by
// occurrences normalized over total patients, and capped at the top five.
func aggregate(outcomes []Outcome, log []BottleneckEvent, ts TimeSeries) Result {
	var waits, losTimes []float64
	breaches := 0
	for _, o := range outcomes {
		switch {
		case o.WaitTime != nil:
			waits = append(waits, *o.WaitTime)
			if *o.WaitTime > SLAWaitMinutes {
				breaches++
			}
		case o.WaitCensored != nil && *o.WaitCensored > SLAWaitMinutes:
			breaches++
		}
		if o.LOS != nil {
			losTimes = append(losTimes, *o.LOS)
		}
	}

	s := Summary{TotalPatients: len(outcomes), SLABreaches: breaches}
	if len(waits) > 0 {
		sorted := append([]float64(nil), waits...)
		sort.Float64s(sorted)
		s.AvgWaitTime = stat.Mean(sorted, nil)
		s.MedianWaitTime = stat.Quantile(0.5, stat.LinInterp, sorted, nil)
		s.MaxWaitTime = sorted[len(sorted)-1]
	}
	if len(losTimes) > 0 {
		s.AvgLOS = stat.Mean(losTimes, nil)
	}
	if len(ts.Occupancy) > 0 {
		s.AvgOccupancy = stat.Mean(ts.Occupancy, nil)
		for _, v := range ts.Occupancy {
			if v > s.PeakOccupancy {
				s.PeakOccupancy = v
			}
		}
	}
	if len(ts.NurseLoad) > 0 {
		s.AvgNurseLoad = stat.Mean(ts.NurseLoad, nil)
	}

	return Result{
		Metrics:     s,
		TimeSeries:  ts,
		Bottlenecks: rankBottlenecks(log, len(outcomes)),
	}
}

// rankBottlenecks groups the log by constraint and returns the top five by
// impact score. Equal scores order by constraint name so ranking stays
// deterministic.
func rankBottlenecks(log []BottleneckEvent, totalPatients int) []Bottleneck {
	type group struct {
		count      int
		queueSum   int
		queueCount int
	}
	groups := make(map[Constraint]*group)
	for _, ev := range log {
		g := groups[ev.Constraint]
		if g == nil {
			g = &group{}
			groups[ev.Constraint] = g
		}
		g.count++
		if ev.QueueLength != nil {
			g.queueSum += *ev.QueueLength
			g.queueCount++
		}
	}

	denom := totalPatients
	if denom < 1 {
		denom = 1
	}
	ranked := make([]Bottleneck, 0, len(groups))
	for c, g := range groups {
		b := Bottleneck{
			Constraint:  c,
			ImpactScore: float64(g.count) / float64(denom),
			Occurrences: g.count,
			Description: DescribeConstraint(c),
		}
		if g.queueCount > 0 {
			b.AvgQueue = float64(g.queueSum) / float64(g.queueCount)
		}
		ranked = append(ranked, b)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].ImpactScore != ranked[j].ImpactScore {
			return ranked[i].ImpactScore > ranked[j].ImpactScore
		}
		return ranked[i].Constraint < ranked[j].Constraint
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	return ranked
}
