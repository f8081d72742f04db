package sim

// EventKind identifies the handler for a scheduled simulation event.
// The set is closed; the engine dispatches with an exhaustive switch.
type EventKind int

const (
	EventArrival EventKind = iota
	EventTriageEnd
	EventImagingRequest
	EventImagingEnd
	EventConsultRequest
	EventConsultStart
	EventConsultEnd
	EventDischarge
	EventCleaningEnd
	EventTransportEnd
)

// String returns the wire-level name of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventArrival:
		return "arrival"
	case EventTriageEnd:
		return "triage_end"
	case EventImagingRequest:
		return "imaging_request"
	case EventImagingEnd:
		return "imaging_end"
	case EventConsultRequest:
		return "consult_request"
	case EventConsultStart:
		return "consult_start"
	case EventConsultEnd:
		return "consult_end"
	case EventDischarge:
		return "discharge"
	case EventCleaningEnd:
		return "cleaning_end"
	case EventTransportEnd:
		return "transport_end"
	}
	return "unknown"
}

// SimEvent is a scheduled state transition at a point in virtual time.
// EntityID is a patient id for every kind except EventCleaningEnd, where it
// is a bed id. Events are never cancelled once scheduled; handlers must
// guard against stale state instead.
type SimEvent struct {
	Time     float64 // virtual minutes from scenario start
	Seq      uint64  // monotonic insertion sequence, breaks time ties
	Kind     EventKind
	EntityID int
}
