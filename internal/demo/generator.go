// Package demo builds and loads the deterministic demo dataset: one
// medical unit with a full simulated day of patient journeys, staffing,
// policies, and the baseline scenario.
package demo

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wardops/wardops/internal/store"
	"github.com/wardops/wardops/sim"
)

// Anchor is the wall-clock origin of the demo day. The replay streamer
// defaults to the same instant.
var Anchor = time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

// idNamespace makes all generated UUIDs a pure function of the seed and
// entity name, so reloading the demo yields identical ids.
var idNamespace = uuid.MustParse("7b1d3f8a-2c64-4e9b-9a07-5d1f0c6b2e41")

func demoID(kind string, n int) string {
	return uuid.NewSHA1(idNamespace, []byte(fmt.Sprintf("%s-%d", kind, n))).String()
}

// Config tunes the generated day.
type Config struct {
	Seed            int64
	UnitName        string
	UnitCode        string
	BedCount        int
	ArrivalsPerHour float64
	NursesPerShift  map[string]int
}

// DefaultConfig mirrors the baseline scenario.
func DefaultConfig() Config {
	return Config{
		Seed:            42,
		UnitName:        "Medical Unit A",
		UnitCode:        "MED-A",
		BedCount:        24,
		ArrivalsPerHour: 12.5,
		NursesPerShift:  map[string]int{"day": 6, "evening": 5, "night": 4},
	}
}

// Dataset is everything the demo loader persists.
type Dataset struct {
	Unit     store.Unit
	Beds     []store.Bed
	Shifts   []store.Shift
	Nurses   []store.Nurse
	Patients []store.Patient
	Events   []store.Event
	Policies []store.PolicyDocument
	Baseline store.Scenario
}

type generator struct {
	cfg    Config
	rng    *sim.RNG
	ds     *Dataset
	unitID string

	bedAvailableAt map[int64]time.Time
}

// Generate builds the full dataset. The same config always produces the
// same dataset, ids included.
func Generate(cfg Config) *Dataset {
	g := &generator{
		cfg:            cfg,
		rng:            sim.NewRNG(cfg.Seed),
		ds:             &Dataset{},
		bedAvailableAt: make(map[int64]time.Time),
	}
	g.buildUnit()
	g.buildBeds()
	g.buildStaff()
	g.buildJourneys()
	g.ds.Policies = policyDocuments()
	g.ds.Baseline = baselineScenario()
	return g.ds
}

func (g *generator) buildUnit() {
	g.unitID = demoID("unit", 1)
	g.ds.Unit = store.Unit{
		ID:        g.unitID,
		Name:      g.cfg.UnitName,
		TotalBeds: g.cfg.BedCount,
		CreatedAt: Anchor,
	}
}

// buildBeds lays the unit out on a 6x4 grid. Beds 1 and N are the
// isolation rooms.
func (g *generator) buildBeds() {
	const (
		cols           = 4
		spacingX       = 120
		spacingY       = 100
		startX, startY = 100, 100
	)
	for n := 1; n <= g.cfg.BedCount; n++ {
		bedType := "standard"
		if n == 1 || n == g.cfg.BedCount {
			bedType = "isolation"
		}
		row := (n - 1) / cols
		col := (n - 1) % cols
		g.ds.Beds = append(g.ds.Beds, store.Bed{
			ID:        int64(n),
			UnitID:    g.unitID,
			Number:    n,
			BedType:   bedType,
			PositionX: startX + col*spacingX,
			PositionY: startY + row*spacingY,
			CreatedAt: Anchor,
		})
		g.bedAvailableAt[int64(n)] = Anchor
	}
}

// buildStaff creates the three shifts and spreads the nursing roster
// across them.
func (g *generator) buildStaff() {
	shifts := []store.Shift{
		{ID: 1, Name: "day", StartHour: 7, EndHour: 15},
		{ID: 2, Name: "evening", StartHour: 15, EndHour: 23},
		{ID: 3, Name: "night", StartHour: 23, EndHour: 7},
	}
	g.ds.Shifts = shifts

	idx := 0
	for _, sh := range shifts {
		count := g.cfg.NursesPerShift[sh.Name]
		for i := 0; i < count && idx < len(nurseNames); i++ {
			shiftID := sh.ID
			g.ds.Nurses = append(g.ds.Nurses, store.Nurse{
				ID:          demoID("nurse", idx+1),
				Name:        nurseNames[idx],
				UnitID:      g.unitID,
				ShiftID:     &shiftID,
				MaxPatients: 4,
				CreatedAt:   Anchor,
			})
			idx++
		}
	}
}

// buildJourneys walks the demo day arrival by arrival, emitting the full
// event sequence for each patient.
func (g *generator) buildJourneys() {
	end := Anchor.Add(24 * time.Hour)
	meanGap := 60.0 / g.cfg.ArrivalsPerHour

	t := Anchor
	n := 0
	for {
		t = t.Add(minutes(g.rng.Exp(meanGap)))
		if !t.Before(end) {
			break
		}
		n++
		g.journey(n, t, end)
	}
}

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}

func (g *generator) pick(list []string) string {
	return list[g.rng.IntRange(0, len(list))]
}

func (g *generator) journey(n int, arrival, end time.Time) {
	acuity := g.rng.WeightedKey(map[string]float64{
		"low": 0.3, "medium": 0.5, "high": 0.15, "critical": 0.05,
	})
	isolationProb := map[string]float64{"low": 0.02, "medium": 0.05, "high": 0.10, "critical": 0.15}

	patient := store.Patient{
		ID:          demoID("patient", n),
		Name:        g.pick(firstNames) + " " + g.pick(lastNames),
		Acuity:      acuity,
		IsIsolation: g.rng.Bernoulli(isolationProb[acuity]),
		CreatedAt:   arrival,
	}
	complaint := g.pick(chiefComplaints)
	requiresImaging := g.rng.Bernoulli(0.4)
	requiresConsult := g.rng.Bernoulli(0.25)

	now := arrival
	g.event("arrival", &patient, now, nil, nil, map[string]any{
		"source": "ED", "chief_complaint": complaint,
	})

	triage := g.rng.IntRange(5, 15)
	now = now.Add(minutes(float64(triage)))
	g.event("triage", &patient, now, nil, nil, map[string]any{
		"acuity_assigned": acuity, "duration_minutes": triage,
	})

	now = now.Add(minutes(float64(g.rng.IntRange(5, 15))))
	g.event("admission_request", &patient, now, nil, nil, nil)

	bed := g.selectBed(patient.IsIsolation, now)
	waitStart := now
	if avail := g.bedAvailableAt[bed.ID]; avail.After(now) {
		now = avail
	}
	extra := g.rng.IntRange(5, 30)
	now = now.Add(minutes(float64(extra)))
	waitMinutes := now.Sub(waitStart).Minutes()

	admitted := now
	patient.AdmittedAt = &admitted
	bedID := bed.ID
	patient.CurrentBedID = &bedID
	g.event("bed_assignment", &patient, now, &bedID, nil, map[string]any{
		"bed_number":   fmt.Sprintf("%s-%02d", g.cfg.UnitCode, bed.Number),
		"wait_minutes": waitMinutes,
	})

	nurse := g.ds.Nurses[g.rng.IntRange(0, len(g.ds.Nurses))]
	now = now.Add(minutes(float64(g.rng.IntRange(2, 10))))
	g.event("nurse_assignment", &patient, now, nil, &nurse.ID, map[string]any{
		"nurse_name": nurse.Name,
	})

	if requiresImaging && now.Before(end) {
		now = g.imagingSequence(&patient, now)
	}
	if requiresConsult && now.Before(end) {
		now = g.consultSequence(&patient, now)
	}

	if (acuity == "high" || acuity == "critical") && g.rng.Bernoulli(0.2) {
		at := arrival.Add(minutes(float64(g.rng.IntRange(60, 300))))
		if at.Before(end) {
			g.event("escalation", &patient, at, nil, nil, map[string]any{
				"reason":       g.pick(escalationReasons),
				"escalated_to": "Rapid Response Team",
			})
		}
	}

	losHours := g.losHours(acuity)
	discharge := arrival.Add(time.Duration(losHours * float64(time.Hour)))
	if discharge.Before(end) {
		g.event("discharge", &patient, discharge, &bedID, nil, map[string]any{
			"disposition": g.pick(dispositions),
			"los_hours":   losHours,
		})
		dischargedAt := discharge
		patient.DischargedAt = &dischargedAt
		patient.CurrentBedID = nil

		cleaningStart := discharge.Add(minutes(float64(g.rng.IntRange(5, 15))))
		cleaningDur := g.rng.IntRange(15, 30)
		g.event("cleaning_start", nil, cleaningStart, &bedID, nil, map[string]any{
			"bed_number": fmt.Sprintf("%s-%02d", g.cfg.UnitCode, bed.Number),
		})
		cleaningEnd := cleaningStart.Add(minutes(float64(cleaningDur)))
		g.event("cleaning_end", nil, cleaningEnd, &bedID, nil, map[string]any{
			"duration_minutes": cleaningDur,
		})
		g.bedAvailableAt[bedID] = cleaningEnd
	} else {
		// Still in house at end of day; reflect the occupancy on the row.
		for i := range g.ds.Beds {
			if g.ds.Beds[i].ID == bedID {
				g.ds.Beds[i].IsOccupied = true
				pid := patient.ID
				g.ds.Beds[i].CurrentPatientID = &pid
			}
		}
		g.bedAvailableAt[bedID] = end
	}

	g.ds.Patients = append(g.ds.Patients, patient)
}

// selectBed picks the bed that frees up earliest, preferring isolation
// rooms for isolation patients.
func (g *generator) selectBed(isolation bool, now time.Time) store.Bed {
	best := -1
	consider := func(i int) {
		if best == -1 || g.bedAvailableAt[g.ds.Beds[i].ID].Before(g.bedAvailableAt[g.ds.Beds[best].ID]) {
			best = i
		}
	}
	if isolation {
		for i, b := range g.ds.Beds {
			if b.BedType == "isolation" && !g.bedAvailableAt[b.ID].After(now) {
				consider(i)
			}
		}
	}
	if best == -1 {
		for i := range g.ds.Beds {
			consider(i)
		}
	}
	return g.ds.Beds[best]
}

func (g *generator) imagingSequence(p *store.Patient, now time.Time) time.Time {
	now = now.Add(minutes(float64(g.rng.IntRange(15, 45))))
	g.event("imaging_request", p, now, nil, nil, map[string]any{
		"imaging_type": g.pick(imagingTypes),
	})
	now = now.Add(minutes(float64(g.rng.IntRange(10, 30))))
	g.event("transport_start", p, now, nil, nil, map[string]any{"destination": "Radiology"})
	now = now.Add(minutes(float64(g.rng.IntRange(5, 15))))
	g.event("imaging_start", p, now, nil, nil, nil)
	dur := g.rng.IntRange(20, 60)
	now = now.Add(minutes(float64(dur)))
	g.event("imaging_end", p, now, nil, nil, map[string]any{"duration_minutes": dur})
	now = now.Add(minutes(float64(g.rng.IntRange(10, 20))))
	g.event("transport_end", p, now, nil, nil, nil)
	return now
}

func (g *generator) consultSequence(p *store.Patient, now time.Time) time.Time {
	now = now.Add(minutes(float64(g.rng.IntRange(30, 90))))
	g.event("consult_request", p, now, nil, nil, map[string]any{
		"specialty": g.pick(consultSpecialties),
	})
	now = now.Add(minutes(float64(g.rng.IntRange(30, 120))))
	g.event("consult_start", p, now, nil, nil, nil)
	dur := g.rng.IntRange(30, 90)
	now = now.Add(minutes(float64(dur)))
	g.event("consult_end", p, now, nil, nil, map[string]any{"duration_minutes": dur})
	return now
}

// losHours draws length of stay in hours by acuity.
func (g *generator) losHours(acuity string) float64 {
	ranges := map[string][2]float64{
		"low": {2, 6}, "medium": {4, 12}, "high": {8, 24}, "critical": {12, 48},
	}
	r := ranges[acuity]
	return r[0] + g.rng.Uniform()*(r[1]-r[0])
}

func (g *generator) event(eventType string, p *store.Patient, at time.Time, bedID *int64, nurseID *string, data map[string]any) {
	ev := store.Event{
		Timestamp: at,
		EventType: eventType,
		UnitID:    &g.unitID,
		BedID:     bedID,
		NurseID:   nurseID,
	}
	if p != nil {
		pid := p.ID
		ev.PatientID = &pid
	}
	if data != nil {
		raw, _ := json.Marshal(data)
		ev.Data = raw
	}
	g.ds.Events = append(g.ds.Events, ev)
}

func baselineScenario() store.Scenario {
	params, _ := json.Marshal(map[string]any{
		"arrival_multiplier": 1.0,
		"acuity_mix":         map[string]float64{"low": 0.3, "medium": 0.5, "high": 0.15, "critical": 0.05},
		"beds_available":     24,
		"nurse_count":        map[string]int{"day": 6, "evening": 5, "night": 4},
		"imaging_capacity":   1.0,
		"transport_capacity": 1.0,
	})
	return store.Scenario{
		ID:          demoID("scenario", 1),
		Name:        "Baseline - Normal Operations",
		Description: "Standard day operations with typical arrival patterns and staffing",
		IsBaseline:  true,
		Parameters:  params,
		CreatedAt:   Anchor,
	}
}
