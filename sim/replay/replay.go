// Package replay reconstructs a stored event log into per-minute delta
// frames for a live viewer. The streamer is transport-agnostic: it reads
// events through an EventSource, writes frames through a Sink, and takes
// inbound control through a channel, so the websocket layer stays a thin
// adapter.
package replay

import (
	"context"
	"time"
)

// Horizon bounds a stream to one day from its start.
const Horizon = 24 * time.Hour

// DefaultAnchor is the wall-clock origin used when a subscriber gives no
// start time. The demo dataset is generated against the same anchor.
var DefaultAnchor = time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

// Speed bounds for the virtual clock multiplier.
const (
	MinSpeed     = 0.1
	MaxSpeed     = 10.0
	DefaultSpeed = 1.0
)

// EventRecord is the persisted event shape the streamer consumes,
// ordered by (timestamp, id).
type EventRecord struct {
	ID        int64
	Type      string
	Timestamp time.Time
	PatientID *string
	BedID     *int64
	Data      map[string]any
}

// EventSource reads the stored world the stream replays.
type EventSource interface {
	// EventsBetween returns the unit's events with from < timestamp <= to,
	// ascending by timestamp with ties broken by id.
	EventsBetween(ctx context.Context, unitID string, from, to time.Time) ([]EventRecord, error)

	// BedSnapshot returns the unit's current occupied and total bed counts.
	BedSnapshot(ctx context.Context, unitID string) (occupied, total int, err error)
}

// Sink delivers outbound frames to the subscriber. A send error ends the
// stream; there are no retries.
type Sink interface {
	Send(Frame) error
}

// Frame types on the outbound side.
const (
	FrameTick     = "tick"
	FrameComplete = "complete"
	FrameError    = "error"
)

// Frame is one outbound message. Timestamp and Delta are set on ticks,
// Message on errors.
type Frame struct {
	Type      string     `json:"type"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Delta     *Delta     `json:"delta,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// Delta is the per-minute bundle of changes.
type Delta struct {
	BedChanges   []BedChange   `json:"bed_changes"`
	EventMarkers []EventMarker `json:"event_markers"`
	Metrics      Metrics       `json:"metrics"`
}

// BedChange is a bed status transition derived from one event.
type BedChange struct {
	BedID     int64   `json:"bed_id"`
	Status    string  `json:"status"`
	PatientID *string `json:"patient_id"`
}

// EventMarker is the serialized form of a window event.
type EventMarker struct {
	ID        int64          `json:"id"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	PatientID *string        `json:"patient_id,omitempty"`
	BedID     *int64         `json:"bed_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Metrics is the coarse snapshot attached to every tick. Occupancy comes
// from the live bed rows; the remaining figures are not derivable from a
// single window and are reported as zeros with Computed false instead of
// invented numbers.
type Metrics struct {
	OccupancyPercent        float64 `json:"occupancy_percent"`
	AverageLOSHours         float64 `json:"average_los_hours"`
	AverageTimeToBedMinutes float64 `json:"average_time_to_bed_minutes"`
	SLABreaches             int     `json:"sla_breaches"`
	ImagingQueueLength      int     `json:"imaging_queue_length"`
	EDWaitingCount          int     `json:"ed_waiting_count"`
	NurseLoadAverage        float64 `json:"nurse_load_average"`
	Computed                bool    `json:"computed"`
}

// Control actions on the inbound side.
const (
	ActionPlay  = "play"
	ActionPause = "pause"
	ActionSeek  = "seek"
	ActionSpeed = "speed"
	ActionStop  = "stop"
)

// Control is one inbound message. Time is set for seek, Speed for speed.
type Control struct {
	Action string     `json:"action"`
	Time   *time.Time `json:"time,omitempty"`
	Speed  *float64   `json:"speed,omitempty"`
}

// bedStatusFor maps an event type to the bed transition it implies.
// Event kinds outside this table change no bed.
func bedStatusFor(eventType string) (status string, keepPatient bool, ok bool) {
	switch eventType {
	case "bed_assignment":
		return "occupied", true, true
	case "discharge":
		return "empty", false, true
	case "cleaning_start":
		return "cleaning", false, true
	case "cleaning_end":
		return "empty", false, true
	}
	return "", false, false
}
