// sim/engine.go
//
// Discrete-event engine for one simulated day of patient flow through a
// single inpatient unit. The engine is single-threaded over its own virtual
// clock: one handler runs to completion before the next event is popped,
// which is what makes a (params, seed) pair reproducible.

package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// metricInterval is the time-series sampling grid in virtual minutes.
const metricInterval = 15.0

// defaultMaxPatients is the nurse ratio cap.
const defaultMaxPatients = 4

// ProgressFunc receives integer percent ticks in [0, 100]. It is the only
// external call the engine makes and must return quickly; a slow callback
// stalls the virtual clock.
type ProgressFunc func(pct int)

// Engine owns all entities for the lifetime of a run. External readers
// never see its internals; results cross the boundary only as the final
// Result bundle.
type Engine struct {
	params Params
	rng    *RNG

	clock   float64
	horizon float64
	queue   EventQueue
	seq     uint64

	patients  []*Patient // arena indexed by id-1
	beds      *BedPool
	nurses    *NursePool
	imaging   *SlotPool
	transport *SlotPool

	outcomes    []Outcome
	bottlenecks []BottleneckEvent
	ts          TimeSeries
	nextSample  float64

	lastProgress int
	progress     ProgressFunc
}

// NewEngine validates the parameters and builds the resource pools.
func NewEngine(params Params, seed int64) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario parameters: %w", err)
	}
	e := &Engine{
		params:       params,
		rng:          NewRNG(seed),
		horizon:      Horizon,
		queue:        make(EventQueue, 0),
		beds:         NewBedPool(params.BedsAvailable),
		nurses:       NewNursePool(params.DayNurses(), defaultMaxPatients),
		imaging:      NewSlotPool(params.ImagingCapacity),
		transport:    NewSlotPool(params.TransportCapacity),
		nextSample:   metricInterval,
		lastProgress: -1,
	}
	return e, nil
}

// schedule pushes an event with the next insertion sequence.
func (e *Engine) schedule(t float64, kind EventKind, entityID int) {
	e.seq++
	pushEvent(&e.queue, &SimEvent{Time: t, Seq: e.seq, Kind: kind, EntityID: entityID})
}

// generateArrivals pre-generates the full day of arrivals. Inter-arrival
// gaps are Exp(60 / (12.5 * multiplier)) minutes; each arrival draws its
// acuity, imaging/consult flags, and isolation flag up front.
func (e *Engine) generateArrivals() {
	meanGap := 60.0 / (baseArrivalsPerHour * e.params.ArrivalMultiplier)
	t := 0.0
	for {
		t += e.rng.Exp(meanGap)
		if t >= e.horizon {
			break
		}
		acuity := Acuity(e.rng.WeightedKey(e.params.AcuityMix))
		imaging := e.rng.Bernoulli(0.4)
		consult := e.rng.Bernoulli(0.25)
		isolation := e.rng.Bernoulli(isolationProb[acuity])

		p := newPatient(len(e.patients)+1, acuity, t, imaging, consult, isolation)
		e.patients = append(e.patients, p)
		e.schedule(t, EventArrival, p.ID)
	}
	logrus.Debugf("generated %d arrivals over %.0f minutes", len(e.patients), e.horizon)
}

// Run advances the event queue to exhaustion and returns the result
// bundle. Events scheduled past the horizon (cleaning and imaging tails)
// are still processed; progress is clamped to 100.
func (e *Engine) Run(progress ProgressFunc) (*Result, error) {
	e.progress = progress
	e.generateArrivals()

	for e.queue.Len() > 0 {
		ev := popEvent(&e.queue)
		e.sampleUpTo(ev.Time)
		e.clock = ev.Time
		logrus.Debugf("[t=%08.1f] %s entity=%d", e.clock, ev.Kind, ev.EntityID)

		if e.params.FaultAt != nil && e.clock >= *e.params.FaultAt {
			return nil, fmt.Errorf("injected fault at %.1f minutes", e.clock)
		}
		e.dispatch(ev)
		e.reportProgress()
	}
	e.sampleUpTo(e.horizon)
	if e.progress != nil && e.lastProgress < 100 {
		e.lastProgress = 100
		e.progress(100)
	}

	// Every arrival contributes an outcome, including patients still
	// queued or in a bed when the day ends.
	for _, p := range e.patients {
		e.outcomes = append(e.outcomes, e.outcomeFor(p))
	}
	logrus.Debugf("[t=%08.1f] simulation ended, %d outcomes", e.clock, len(e.outcomes))

	res := aggregate(e.outcomes, e.bottlenecks, e.ts)
	return &res, nil
}

// dispatch routes an event to its handler. The kind set is closed.
func (e *Engine) dispatch(ev *SimEvent) {
	switch ev.Kind {
	case EventArrival:
		e.handleArrival(e.patient(ev.EntityID))
	case EventTriageEnd:
		e.handleTriageEnd(e.patient(ev.EntityID))
	case EventImagingRequest:
		e.handleImagingRequest(e.patient(ev.EntityID))
	case EventImagingEnd:
		e.handleImagingEnd(e.patient(ev.EntityID))
	case EventConsultRequest:
		e.handleConsultRequest(e.patient(ev.EntityID))
	case EventConsultStart:
		e.handleConsultStart(e.patient(ev.EntityID))
	case EventConsultEnd:
		e.handleConsultEnd(e.patient(ev.EntityID))
	case EventDischarge:
		e.handleDischarge(e.patient(ev.EntityID))
	case EventCleaningEnd:
		e.handleCleaningEnd(ev.EntityID)
	case EventTransportEnd:
		e.handleTransportEnd(e.patient(ev.EntityID))
	}
}

func (e *Engine) patient(id int) *Patient {
	return e.patients[id-1]
}

func (e *Engine) handleArrival(p *Patient) {
	e.schedule(e.clock+float64(e.rng.IntRange(5, 15)), EventTriageEnd, p.ID)
}

func (e *Engine) handleTriageEnd(p *Patient) {
	p.TriageEnd = e.clock
	e.requestBed(p)
}

// requestBed admits the patient if a bed is free, else parks them in the
// bed-wait FIFO with a bottleneck record.
func (e *Engine) requestBed(p *Patient) {
	if bed := e.beds.Select(p.IsIsolation, e.clock); bed != nil {
		e.admit(p, bed, e.clock)
		return
	}
	e.beds.Wait.Enqueue(p.ID)
	qlen := e.beds.Wait.Len()
	e.bottlenecks = append(e.bottlenecks, BottleneckEvent{
		Time:        e.clock,
		Constraint:  ConstraintBeds,
		PatientID:   p.ID,
		QueueLength: &qlen,
	})
}

// admit runs the synchronous admission sequence at bed-assignment time t:
// occupy the bed, assign a nurse, schedule imaging and consult follow-ups,
// and schedule discharge when the stay ends inside the horizon.
func (e *Engine) admit(p *Patient, bed *Bed, t float64) {
	bed.Occupied = true
	bed.PatientID = p.ID
	p.BedID = bed.ID
	p.BedAssigned = t

	e.assignNurse(p, t)

	if p.RequiresImaging {
		e.schedule(t+float64(e.rng.IntRange(15, 45)), EventImagingRequest, p.ID)
	}
	if p.RequiresConsult {
		e.schedule(t+float64(e.rng.IntRange(30, 90)), EventConsultRequest, p.ID)
	}

	r := losRanges[p.Acuity]
	los := float64(e.rng.IntRange(r[0], r[1]))
	if t+los < e.horizon {
		e.schedule(t+los, EventDischarge, p.ID)
	}
}

// assignNurse picks the least-loaded nurse under the ratio cap. When all
// are full the patient keeps flowing without an assignment; that is ratio
// stress, not blocking care, and is logged as a staffing bottleneck.
func (e *Engine) assignNurse(p *Patient, t float64) {
	if n := e.nurses.Select(); n != nil {
		e.nurses.Assign(n, p.ID)
		p.NurseID = n.ID
		return
	}
	e.bottlenecks = append(e.bottlenecks, BottleneckEvent{
		Time:        t,
		Constraint:  ConstraintNurses,
		PatientID:   p.ID,
		Description: "All nurses at max capacity",
	})
}

func (e *Engine) handleImagingRequest(p *Patient) {
	if e.imaging.TryAcquire() {
		p.ImagingStart = e.clock
		e.schedule(e.clock+float64(e.rng.IntRange(20, 60)), EventImagingEnd, p.ID)
		return
	}
	e.imaging.Wait.Enqueue(p.ID)
	qlen := e.imaging.Wait.Len()
	e.bottlenecks = append(e.bottlenecks, BottleneckEvent{
		Time:        e.clock,
		Constraint:  ConstraintImaging,
		PatientID:   p.ID,
		QueueLength: &qlen,
	})
}

func (e *Engine) handleImagingEnd(p *Patient) {
	p.ImagingEnd = e.clock
	if nextID, ok := e.imaging.Release(); ok {
		next := e.patient(nextID)
		next.ImagingStart = e.clock
		e.schedule(e.clock+float64(e.rng.IntRange(20, 60)), EventImagingEnd, next.ID)
	}
}

func (e *Engine) handleConsultRequest(p *Patient) {
	// Specialist response delay; consults hold no capacity pool.
	e.schedule(e.clock+float64(e.rng.IntRange(30, 120)), EventConsultStart, p.ID)
}

func (e *Engine) handleConsultStart(p *Patient) {
	p.ConsultStart = e.clock
	e.schedule(e.clock+float64(e.rng.IntRange(30, 90)), EventConsultEnd, p.ID)
}

func (e *Engine) handleConsultEnd(p *Patient) {
	p.ConsultEnd = e.clock
}

func (e *Engine) handleDischarge(p *Patient) {
	p.Discharge = e.clock

	if p.NurseID != 0 {
		e.nurses.Release(p.NurseID, p.ID)
	}
	if p.BedID != 0 {
		bed := e.beds.Get(p.BedID)
		bed.Occupied = false
		bed.Cleaning = true
		bed.PatientID = 0
		e.schedule(e.clock+float64(e.rng.IntRange(15, 30)), EventCleaningEnd, bed.ID)
	}
	e.requestTransport(p)
}

// requestTransport moves the discharged patient out of the unit. Bed
// release and cleaning proceed independently, so transport contention
// never delays bed turnover.
func (e *Engine) requestTransport(p *Patient) {
	if e.transport.TryAcquire() {
		e.schedule(e.clock+float64(e.rng.IntRange(10, 25)), EventTransportEnd, p.ID)
		return
	}
	e.transport.Wait.Enqueue(p.ID)
	qlen := e.transport.Wait.Len()
	e.bottlenecks = append(e.bottlenecks, BottleneckEvent{
		Time:        e.clock,
		Constraint:  ConstraintTransport,
		PatientID:   p.ID,
		QueueLength: &qlen,
	})
}

func (e *Engine) handleTransportEnd(p *Patient) {
	if nextID, ok := e.transport.Release(); ok {
		e.schedule(e.clock+float64(e.rng.IntRange(10, 25)), EventTransportEnd, nextID)
	}
}

func (e *Engine) handleCleaningEnd(bedID int) {
	bed := e.beds.Get(bedID)
	bed.Cleaning = false
	bed.AvailableAt = e.clock
	if id, ok := e.beds.Wait.Dequeue(); ok {
		e.admit(e.patient(id), bed, e.clock)
	}
}

// outcomeFor folds a patient into its per-run record. Optional figures stay
// nil when the phase never happened before the run ended. A patient still
// queued for a bed at day end gets a censored wait instead, so a long queue
// at the horizon shows up in the breach count.
func (e *Engine) outcomeFor(p *Patient) Outcome {
	o := Outcome{PatientID: p.ID, Acuity: p.Acuity, HadImaging: p.RequiresImaging}
	if p.BedAssigned != TimeUnset {
		w := p.BedAssigned - p.ArrivalTime
		o.WaitTime = &w
	} else if p.TriageEnd != TimeUnset {
		w := e.horizon - p.ArrivalTime
		o.WaitCensored = &w
	}
	if p.Discharge != TimeUnset {
		l := p.Discharge - p.ArrivalTime
		o.LOS = &l
	}
	if p.ImagingStart != TimeUnset && p.BedAssigned != TimeUnset {
		d := p.ImagingStart - p.BedAssigned
		o.ImagingDelay = &d
	}
	return o
}

// sampleUpTo emits one time-series sample per elapsed 15-minute grid point
// up to t (and never past the horizon), using the state before the event at
// t is applied. The grid keeps the series strictly increasing with a fixed
// step regardless of event spacing.
func (e *Engine) sampleUpTo(t float64) {
	limit := t
	if limit > e.horizon {
		limit = e.horizon
	}
	for e.nextSample <= limit {
		occupancy := 0.0
		if e.beds.Len() > 0 {
			occupancy = float64(e.beds.Occupied()) / float64(e.beds.Len()) * 100
		}
		e.ts.Time = append(e.ts.Time, e.nextSample)
		e.ts.Occupancy = append(e.ts.Occupancy, occupancy)
		e.ts.BedQueue = append(e.ts.BedQueue, e.beds.Wait.Len())
		e.ts.ImagingQueue = append(e.ts.ImagingQueue, e.imaging.Wait.Len())
		e.ts.NurseLoad = append(e.ts.NurseLoad, e.nurses.MeanLoad())
		e.nextSample += metricInterval
	}
}

func (e *Engine) reportProgress() {
	if e.progress == nil {
		return
	}
	pct := int(100 * e.clock / e.horizon)
	if pct > 100 {
		pct = 100
	}
	if pct > e.lastProgress {
		e.lastProgress = pct
		e.progress(pct)
	}
}

// Beds exposes the bed pool for end-of-run invariant checks.
func (e *Engine) Beds() *BedPool { return e.beds }

// Nurses exposes the nurse pool for end-of-run invariant checks.
func (e *Engine) Nurses() *NursePool { return e.nurses }

// Patients returns the entity arena in arrival order.
func (e *Engine) Patients() []*Patient { return e.patients }
