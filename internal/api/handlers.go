package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wardops/wardops/internal/store"
)

func (s *Server) listUnits(c *gin.Context) {
	units, err := s.db.ListUnits(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, units)
}

func (s *Server) getUnit(c *gin.Context) {
	unit, err := s.db.GetUnit(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, unit)
}

func (s *Server) listUnitBeds(c *gin.Context) {
	beds, err := s.db.ListBeds(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, beds)
}

// unitState serves the point-in-time occupancy and staffing view.
func (s *Server) unitState(c *gin.Context) {
	at := s.now()
	if v := c.Query("time"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			badRequest(c, "time must be RFC 3339")
			return
		}
		at = parsed
	}
	state, err := s.queries.StateAt(c.Request.Context(), c.Param("id"), at)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) listPatients(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	limit, ok := intQuery(c, "limit", 200)
	if !ok {
		return
	}
	patients, err := s.db.ListPatients(c.Request.Context(), activeOnly, limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, patients)
}

func (s *Server) getPatient(c *gin.Context) {
	p, err := s.db.GetPatient(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) patientTrace(c *gin.Context) {
	trace, err := s.queries.Trace(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trace)
}

func (s *Server) listEvents(c *gin.Context) {
	filter := store.EventFilter{
		UnitID:     c.Query("unit_id"),
		PatientID:  c.Query("patient_id"),
		ScenarioID: c.Query("scenario_id"),
	}
	if t := c.Query("event_type"); t != "" {
		filter.Types = []string{t}
	}
	var ok bool
	if filter.From, ok = timeQuery(c, "start_time"); !ok {
		return
	}
	if filter.To, ok = timeQuery(c, "end_time"); !ok {
		return
	}
	if filter.Limit, ok = intQuery(c, "limit", 500); !ok {
		return
	}
	if filter.Offset, ok = intQuery(c, "offset", 0); !ok {
		return
	}

	events, err := s.db.ListEvents(c.Request.Context(), filter)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// nurseView joins a nurse with their shift.
type nurseView struct {
	store.Nurse
	Shift *store.Shift `json:"shift,omitempty"`
}

func (s *Server) listNurses(c *gin.Context) {
	nurses, err := s.db.ListNurses(c.Request.Context(), c.Query("unit_id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	shifts, err := s.db.ListShifts(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	byID := make(map[int64]store.Shift, len(shifts))
	for _, sh := range shifts {
		byID[sh.ID] = sh
	}

	views := make([]nurseView, 0, len(nurses))
	for _, n := range nurses {
		v := nurseView{Nurse: n}
		if n.ShiftID != nil {
			if sh, ok := byID[*n.ShiftID]; ok {
				v.Shift = &sh
			}
		}
		views = append(views, v)
	}
	c.JSON(http.StatusOK, views)
}

// kpi serves the metrics bundle of the most recent completed run,
// optionally scoped to one scenario.
func (s *Server) kpi(c *gin.Context) {
	run, err := s.db.LatestCompletedRun(c.Request.Context(), c.Query("scenario_id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"run_id":       run.ID,
		"scenario_id":  run.ScenarioID,
		"completed_at": run.CompletedAt,
		"metrics":      json.RawMessage(run.Metrics),
	})
}

// bottlenecks serves the time-windowed bottleneck summary over recorded
// events.
func (s *Server) bottlenecks(c *gin.Context) {
	unitID := c.Query("unit_id")
	if unitID == "" {
		badRequest(c, "unit_id is required")
		return
	}
	from, ok := timeQuery(c, "start_time")
	if !ok {
		return
	}
	to, ok := timeQuery(c, "end_time")
	if !ok {
		return
	}
	end := s.now()
	if to != nil {
		end = *to
	}
	start := end.Add(-24 * time.Hour)
	if from != nil {
		start = *from
	}

	summary, err := s.queries.SummarizeBottlenecks(c.Request.Context(), unitID, start, end, c.Query("scenario_id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func timeQuery(c *gin.Context, key string) (*time.Time, bool) {
	v := c.Query(key)
	if v == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		badRequest(c, key+" must be RFC 3339")
		return nil, false
	}
	return &t, true
}

func intQuery(c *gin.Context, key string, fallback int) (int, bool) {
	v := c.Query(key)
	if v == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		badRequest(c, key+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}
