package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wardops/wardops/internal/store"
	"github.com/wardops/wardops/sim"
)

// scenarioRequest is the create/update body. Parameters are validated
// against the engine's ranges before anything is persisted.
type scenarioRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

func (r *scenarioRequest) validate() (json.RawMessage, string) {
	if r.Name == "" {
		return nil, "name is required"
	}
	if _, err := sim.ParamsFromMap(r.Parameters); err != nil {
		return nil, "invalid parameters: " + err.Error()
	}
	params := r.Parameters
	if params == nil {
		params = map[string]any{}
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, "unencodable parameters"
	}
	return raw, ""
}

func (s *Server) listScenarios(c *gin.Context) {
	scenarios, err := s.db.ListScenarios(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scenarios)
}

func (s *Server) getScenario(c *gin.Context) {
	sc, err := s.db.GetScenario(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sc)
}

func (s *Server) createScenario(c *gin.Context) {
	var req scenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed body: "+err.Error())
		return
	}
	raw, problem := req.validate()
	if problem != "" {
		badRequest(c, problem)
		return
	}

	sc := store.Scenario{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Parameters:  raw,
		CreatedAt:   s.now(),
	}
	if err := s.db.CreateScenario(c.Request.Context(), sc); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sc)
}

func (s *Server) updateScenario(c *gin.Context) {
	var req scenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed body: "+err.Error())
		return
	}
	raw, problem := req.validate()
	if problem != "" {
		badRequest(c, problem)
		return
	}

	sc := store.Scenario{
		ID:          c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		Parameters:  raw,
	}
	if err := s.db.UpdateScenario(c.Request.Context(), sc); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sc)
}

// deleteScenario refuses the baseline scenario with 409.
func (s *Server) deleteScenario(c *gin.Context) {
	if err := s.db.DeleteScenario(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

func (s *Server) listScenarioRuns(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.db.GetScenario(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	limit, ok := intQuery(c, "limit", 50)
	if !ok {
		return
	}
	runs, err := s.db.ListRuns(c.Request.Context(), id, limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, runs)
}

// scenarioResults serves the latest completed run's result bundle.
func (s *Server) scenarioResults(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.db.GetScenario(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	run, err := s.db.LatestCompletedRun(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"run_id":       run.ID,
		"scenario_id":  run.ScenarioID,
		"completed_at": run.CompletedAt,
		"metrics":      json.RawMessage(run.Metrics),
		"timeseries":   json.RawMessage(run.TimeSeries),
		"bottlenecks":  json.RawMessage(run.Bottlenecks),
	})
}
