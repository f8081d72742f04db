package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/wardops/wardops/internal/runner"
	"github.com/wardops/wardops/internal/store"
)

// progressPollInterval is how often the progress websocket rereads the
// run row.
const progressPollInterval = time.Second

// startSimulation creates a pending run and hands it to the worker
// queue, or to an in-process goroutine when no queue is available.
func (s *Server) startSimulation(c *gin.Context) {
	scenarioID := c.Query("scenario_id")
	if scenarioID == "" {
		var body struct {
			ScenarioID string `json:"scenario_id"`
		}
		_ = c.ShouldBindJSON(&body)
		scenarioID = body.ScenarioID
	}
	if scenarioID == "" {
		badRequest(c, "scenario_id is required")
		return
	}
	if _, err := s.db.GetScenario(c.Request.Context(), scenarioID); err != nil {
		s.respondError(c, err)
		return
	}

	run, err := s.db.CreateRun(c.Request.Context(), uuid.NewString(), scenarioID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.dispatchRun(c.Request.Context(), run.ID, scenarioID)
	c.JSON(http.StatusAccepted, gin.H{
		"job_id":      run.ID,
		"scenario_id": scenarioID,
		"status":      run.Status,
	})
}

// dispatchRun prefers the queue and falls back to an in-process
// execution detached from the request context.
func (s *Server) dispatchRun(ctx context.Context, runID, scenarioID string) {
	if s.dispatch != nil {
		err := s.dispatch.Enqueue(ctx, runner.Job{RunID: runID, ScenarioID: scenarioID})
		if err == nil {
			return
		}
		logrus.WithError(err).WithField("run_id", runID).Warn("enqueue failed, running in-process")
	}
	go func() {
		if err := s.exec.Execute(context.Background(), runID); err != nil {
			logrus.WithError(err).WithField("run_id", runID).Error("in-process run failed")
		}
	}()
}

func (s *Server) simulationStatus(c *gin.Context) {
	run, err := s.db.GetRun(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, runStatusBody(run))
}

// cancelSimulation is advisory: the run row flips to failed with a
// cancellation message, and a worker finishing later finds the row no
// longer running and discards its result. Cancelling a terminal run
// answers 409.
func (s *Server) cancelSimulation(c *gin.Context) {
	id := c.Param("job_id")
	run, err := s.db.GetRun(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if store.TerminalRunStatus(run.Status) {
		c.JSON(http.StatusConflict, gin.H{"detail": "run " + id + " is already " + run.Status})
		return
	}
	if err := s.db.CancelRun(c.Request.Context(), id, s.now()); err != nil {
		// Lost the race with the worker's terminal transition.
		c.JSON(http.StatusConflict, gin.H{"detail": "run " + id + " finished before the cancel"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"job_id": id, "status": store.RunFailed})
}

func runStatusBody(run *store.SimulationRun) gin.H {
	body := gin.H{
		"job_id":      run.ID,
		"scenario_id": run.ScenarioID,
		"status":      run.Status,
		"progress":    run.Progress,
	}
	if run.StartedAt != nil {
		body["started_at"] = run.StartedAt
	}
	if run.CompletedAt != nil {
		body["completed_at"] = run.CompletedAt
	}
	if run.ErrorMessage != nil {
		body["error_message"] = *run.ErrorMessage
	}
	return body
}

// progressWS streams run status over a websocket once per second until
// the run turns terminal or the client goes away.
func (s *Server) progressWS(c *gin.Context) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	id := c.Param("job_id")
	log := logrus.WithField("run_id", id)

	// Read pump only notices disconnects; inbound payloads are ignored.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(progressPollInterval)
	defer ticker.Stop()
	for {
		run, err := s.db.GetRun(c.Request.Context(), id)
		if err != nil {
			_ = conn.WriteJSON(gin.H{"type": "error", "detail": err.Error()})
			return
		}
		if err := conn.WriteJSON(runStatusBody(run)); err != nil {
			return
		}
		if store.TerminalRunStatus(run.Status) {
			log.WithField("status", run.Status).Debug("progress stream closed")
			return
		}

		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The browser UI runs on another origin; CORS policy is enforced by
	// the HTTP middleware for the rest of the surface.
	CheckOrigin: func(*http.Request) bool { return true },
}
