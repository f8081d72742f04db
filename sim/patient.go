package sim

// TimeUnset marks a phase timestamp that has not been stamped yet.
// Virtual time is always >= 0, so -1 is unambiguous.
const TimeUnset = -1.0

// Acuity is the categorical patient severity. It drives the
// length-of-stay distribution and the isolation probability.
type Acuity string

const (
	AcuityLow      Acuity = "low"
	AcuityMedium   Acuity = "medium"
	AcuityHigh     Acuity = "high"
	AcuityCritical Acuity = "critical"
)

// Acuities lists all levels in severity order.
var Acuities = []Acuity{AcuityLow, AcuityMedium, AcuityHigh, AcuityCritical}

// losRanges maps acuity to the uniform length-of-stay draw in minutes.
var losRanges = map[Acuity][2]int{
	AcuityLow:      {120, 360},
	AcuityMedium:   {240, 720},
	AcuityHigh:     {480, 1440},
	AcuityCritical: {720, 2880},
}

// isolationProb maps acuity to the probability an arrival needs an
// isolation bed. Higher acuity, higher chance.
var isolationProb = map[Acuity]float64{
	AcuityLow:      0.02,
	AcuityMedium:   0.05,
	AcuityHigh:     0.10,
	AcuityCritical: 0.15,
}

// Patient is an engine-owned entity. Identity is the integer assigned in
// arrival order within a run; relations to beds and nurses are stable ids,
// never pointers, so the entity arena has no back-references.
type Patient struct {
	ID          int
	Acuity      Acuity
	ArrivalTime float64

	RequiresImaging bool
	RequiresConsult bool
	IsIsolation     bool

	// Assignments. Zero means unassigned.
	BedID   int
	NurseID int

	// Phase timestamps, TimeUnset until stamped.
	TriageEnd    float64
	BedAssigned  float64
	ImagingStart float64
	ImagingEnd   float64
	ConsultStart float64
	ConsultEnd   float64
	Discharge    float64
}

func newPatient(id int, acuity Acuity, arrival float64, imaging, consult, isolation bool) *Patient {
	return &Patient{
		ID:              id,
		Acuity:          acuity,
		ArrivalTime:     arrival,
		RequiresImaging: imaging,
		RequiresConsult: consult,
		IsIsolation:     isolation,
		TriageEnd:       TimeUnset,
		BedAssigned:     TimeUnset,
		ImagingStart:    TimeUnset,
		ImagingEnd:      TimeUnset,
		ConsultStart:    TimeUnset,
		ConsultEnd:      TimeUnset,
		Discharge:       TimeUnset,
	}
}

// BedType distinguishes standard beds from the isolation rooms at the
// ends of the unit.
type BedType string

const (
	BedStandard  BedType = "standard"
	BedIsolation BedType = "isolation"
)

// Bed is an engine-owned resource with stable id 1..N.
// Invariant: at most one of Occupied and Cleaning is true, and
// Occupied implies PatientID != 0.
type Bed struct {
	ID          int
	Type        BedType
	Occupied    bool
	Cleaning    bool
	PatientID   int
	AvailableAt float64 // cleaning hold: not selectable before this time
}

// Nurse is an engine-owned resource with stable id 1..M.
// Invariant: len(Assigned) <= MaxPatients.
type Nurse struct {
	ID          int
	MaxPatients int
	Assigned    []int
}

// Load returns the current number of assigned patients.
func (n *Nurse) Load() int {
	return len(n.Assigned)
}
