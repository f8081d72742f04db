package api

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/wardops/wardops/internal/store"
	"github.com/wardops/wardops/sim/replay"
)

// replayWS adapts one websocket connection onto the transport-agnostic
// streamer: the store becomes its EventSource, the connection its Sink,
// and inbound messages its control channel.
func (s *Server) replayWS(c *gin.Context) {
	unitID := c.Query("unit_id")
	if unitID == "" {
		badRequest(c, "unit_id is required")
		return
	}
	opts := replay.Options{UnitID: unitID}
	if v := c.Query("start_time"); v != "" {
		start, err := time.Parse(time.RFC3339, v)
		if err != nil {
			badRequest(c, "start_time must be RFC 3339")
			return
		}
		opts.Start = start
	}
	if v := c.Query("speed"); v != "" {
		speed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			badRequest(c, "speed must be a number")
			return
		}
		opts.Speed = speed
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	replayStreams.Inc()
	defer replayStreams.Dec()

	ctrl := make(chan replay.Control, 4)
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Read pump: control frames in, disconnects end the stream by
	// cancelling the context.
	go func() {
		defer cancel()
		for {
			var msg replay.Control
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			select {
			case ctrl <- msg:
			default:
				// Slow consumer of its own controls; drop rather than
				// stall the read pump.
			}
		}
	}()

	streamer := replay.New(&replaySource{db: s.db}, &wsSink{conn: conn}, ctrl, opts)
	if err := streamer.Run(ctx); err != nil && ctx.Err() == nil {
		logrus.WithError(err).WithField("unit_id", unitID).Warn("replay stream ended with error")
	}
}

// replaySource reads the persisted event log for the streamer.
type replaySource struct {
	db Store
}

func (r *replaySource) EventsBetween(ctx context.Context, unitID string, from, to time.Time) ([]replay.EventRecord, error) {
	events, err := r.db.ListEvents(ctx, store.EventFilter{
		UnitID: unitID,
		From:   &from,
		To:     &to,
	})
	if err != nil {
		return nil, err
	}
	records := make([]replay.EventRecord, 0, len(events))
	for _, ev := range events {
		rec := replay.EventRecord{
			ID:        ev.ID,
			Type:      ev.EventType,
			Timestamp: ev.Timestamp,
			PatientID: ev.PatientID,
			BedID:     ev.BedID,
		}
		if len(ev.Data) > 0 {
			var data map[string]any
			if err := json.Unmarshal(ev.Data, &data); err == nil {
				rec.Data = data
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *replaySource) BedSnapshot(ctx context.Context, unitID string) (int, int, error) {
	return r.db.BedCounts(ctx, unitID)
}

// wsSink serializes frames onto the websocket. gorilla connections allow
// one concurrent writer, hence the mutex.
type wsSink struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *wsSink) Send(f replay.Frame) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(f)
}
