package replay

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// pauseInterval is how long a paused stream waits before rechecking its
// control channel.
const pauseInterval = 100 * time.Millisecond

// Options configure one stream. Zero values fall back to the documented
// defaults; Speed is clamped into [MinSpeed, MaxSpeed].
type Options struct {
	UnitID string
	Start  time.Time
	Speed  float64
}

// Streamer replays one unit's event log as per-minute ticks. One Streamer
// serves one subscriber; Run owns the loop until stop, disconnect, error,
// or horizon exhaustion.
type Streamer struct {
	src  EventSource
	sink Sink
	ctrl <-chan Control
	opts Options

	// sleep is swapped out in tests to run the stream at full tilt.
	sleep func(time.Duration)
}

// New builds a streamer. ctrl may be nil for a stream with no inbound
// control.
func New(src EventSource, sink Sink, ctrl <-chan Control, opts Options) *Streamer {
	if opts.Start.IsZero() {
		opts.Start = DefaultAnchor
	}
	if opts.Speed == 0 {
		opts.Speed = DefaultSpeed
	}
	opts.Speed = clampSpeed(opts.Speed)
	return &Streamer{src: src, sink: sink, ctrl: ctrl, opts: opts, sleep: time.Sleep}
}

func clampSpeed(v float64) float64 {
	if v < MinSpeed {
		return MinSpeed
	}
	if v > MaxSpeed {
		return MaxSpeed
	}
	return v
}

// Run advances the virtual cursor in 60-second steps until the horizon,
// a stop control, a send failure, or context cancellation. A source error
// emits one error frame and ends the stream.
func (s *Streamer) Run(ctx context.Context) error {
	t := s.opts.Start
	end := s.opts.Start.Add(Horizon)
	speed := s.opts.Speed
	paused := false

	log := logrus.WithFields(logrus.Fields{"unit_id": s.opts.UnitID, "start": s.opts.Start})
	log.Debug("replay stream opened")

	for {
		// Control is polled, never blocked on; the work loop keeps
		// advancing even when the subscriber sends nothing.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-s.ctrl:
			if !ok {
				return nil
			}
			switch c.Action {
			case ActionStop:
				log.Debug("replay stream stopped by subscriber")
				return nil
			case ActionPause:
				paused = true
			case ActionPlay:
				paused = false
			case ActionSeek:
				if c.Time != nil {
					t = clampTime(*c.Time, s.opts.Start, end)
				}
			case ActionSpeed:
				if c.Speed != nil {
					speed = clampSpeed(*c.Speed)
				}
			}
			continue
		default:
		}

		if paused {
			s.sleep(pauseInterval)
			continue
		}

		next := t.Add(time.Minute)
		if next.After(end) {
			_ = s.sink.Send(Frame{Type: FrameComplete})
			log.Debug("replay stream exhausted horizon")
			return nil
		}

		frame, err := s.buildTick(ctx, t, next)
		if err != nil {
			_ = s.sink.Send(Frame{Type: FrameError, Message: err.Error()})
			return err
		}
		if err := s.sink.Send(frame); err != nil {
			// Peer gone; nothing to tell it.
			return err
		}
		t = next
		s.sleep(time.Duration(float64(time.Second) / speed))
	}
}

// buildTick reads the (from, to] window and folds it into a tick frame.
// The very first window also closes over the stream anchor itself, so an
// event stamped exactly at the start is still delivered once.
func (s *Streamer) buildTick(ctx context.Context, from, to time.Time) (Frame, error) {
	if from.Equal(s.opts.Start) {
		from = from.Add(-time.Nanosecond)
	}
	events, err := s.src.EventsBetween(ctx, s.opts.UnitID, from, to)
	if err != nil {
		return Frame{}, err
	}

	delta := &Delta{
		BedChanges:   make([]BedChange, 0),
		EventMarkers: make([]EventMarker, 0, len(events)),
	}
	for _, ev := range events {
		delta.EventMarkers = append(delta.EventMarkers, EventMarker{
			ID:        ev.ID,
			Type:      ev.Type,
			Timestamp: ev.Timestamp,
			PatientID: ev.PatientID,
			BedID:     ev.BedID,
			Data:      ev.Data,
		})
		if ev.BedID == nil {
			continue
		}
		if status, keepPatient, ok := bedStatusFor(ev.Type); ok {
			change := BedChange{BedID: *ev.BedID, Status: status}
			if keepPatient {
				change.PatientID = ev.PatientID
			}
			delta.BedChanges = append(delta.BedChanges, change)
		}
	}

	occupied, total, err := s.src.BedSnapshot(ctx, s.opts.UnitID)
	if err != nil {
		return Frame{}, err
	}
	if total > 0 {
		delta.Metrics.OccupancyPercent = 100 * float64(occupied) / float64(total)
	}

	ts := to
	return Frame{Type: FrameTick, Timestamp: &ts, Delta: delta}, nil
}

func clampTime(v, lo, hi time.Time) time.Time {
	if v.Before(lo) {
		return lo
	}
	if v.After(hi) {
		return hi
	}
	return v
}
