// Package api is the HTTP and WebSocket surface: gin routing over the
// query and store layers, simulation dispatch, the replay stream, and
// demo dataset operations.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/wardops/wardops/internal/config"
	"github.com/wardops/wardops/internal/demo"
	"github.com/wardops/wardops/internal/query"
	"github.com/wardops/wardops/internal/runner"
	"github.com/wardops/wardops/internal/store"
)

// Store is the persistence surface the handlers read and write.
type Store interface {
	Ping(ctx context.Context) error
	ListUnits(ctx context.Context) ([]store.Unit, error)
	GetUnit(ctx context.Context, id string) (*store.Unit, error)
	ListBeds(ctx context.Context, unitID string) ([]store.Bed, error)
	BedCounts(ctx context.Context, unitID string) (occupied, total int, err error)
	ListPatients(ctx context.Context, activeOnly bool, limit int) ([]store.Patient, error)
	GetPatient(ctx context.Context, id string) (*store.Patient, error)
	ListEvents(ctx context.Context, f store.EventFilter) ([]store.Event, error)
	ListNurses(ctx context.Context, unitID string) ([]store.Nurse, error)
	ListShifts(ctx context.Context) ([]store.Shift, error)
	ListScenarios(ctx context.Context) ([]store.Scenario, error)
	GetScenario(ctx context.Context, id string) (*store.Scenario, error)
	CreateScenario(ctx context.Context, sc store.Scenario) error
	UpdateScenario(ctx context.Context, sc store.Scenario) error
	DeleteScenario(ctx context.Context, id string) error
	ListRuns(ctx context.Context, scenarioID string, limit int) ([]store.SimulationRun, error)
	LatestCompletedRun(ctx context.Context, scenarioID string) (*store.SimulationRun, error)
	CreateRun(ctx context.Context, id, scenarioID string) (*store.SimulationRun, error)
	GetRun(ctx context.Context, id string) (*store.SimulationRun, error)
	CancelRun(ctx context.Context, id string, at time.Time) error
	Counts(ctx context.Context) (store.TableCounts, error)
	ClearAll(ctx context.Context) error
}

// Dispatcher pushes simulation jobs onto the queue.
type Dispatcher interface {
	Enqueue(ctx context.Context, job runner.Job) error
}

// Executor runs a simulation job in-process. Used when no queue is
// available.
type Executor interface {
	Execute(ctx context.Context, runID string) error
}

// DemoLoader reseeds the database with the demo dataset.
type DemoLoader interface {
	Load(ctx context.Context, cfg demo.Config) (*demo.Dataset, error)
}

// Server wires the handlers together. Construct with New, then serve its
// Router.
type Server struct {
	cfg      config.Config
	db       Store
	queries  *query.Service
	loader   DemoLoader
	dispatch Dispatcher
	exec     Executor

	now func() time.Time
}

// New builds a server. dispatch may be nil; simulation runs then execute
// in-process through exec.
func New(cfg config.Config, db Store, queries *query.Service, loader DemoLoader, dispatch Dispatcher, exec Executor) *Server {
	return &Server{
		cfg:      cfg,
		db:       db,
		queries:  queries,
		loader:   loader,
		dispatch: dispatch,
		exec:     exec,
		now:      time.Now,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	r.Use(cors(s.cfg.CORSOrigins))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", s.health)

	api := r.Group(s.cfg.APIPrefix)
	{
		api.GET("/health", s.health)

		api.GET("/units", s.listUnits)
		api.GET("/units/:id", s.getUnit)
		api.GET("/units/:id/beds", s.listUnitBeds)
		api.GET("/units/:id/state", s.unitState)

		api.GET("/patients", s.listPatients)
		api.GET("/patients/:id", s.getPatient)
		api.GET("/patients/:id/trace", s.patientTrace)

		api.GET("/events", s.listEvents)
		api.GET("/nurses", s.listNurses)
		api.GET("/metrics/kpi", s.kpi)
		api.GET("/bottlenecks", s.bottlenecks)

		api.GET("/scenarios", s.listScenarios)
		api.POST("/scenarios", s.createScenario)
		api.GET("/scenarios/:id", s.getScenario)
		api.PUT("/scenarios/:id", s.updateScenario)
		api.DELETE("/scenarios/:id", s.deleteScenario)
		api.GET("/scenarios/:id/runs", s.listScenarioRuns)
		api.GET("/scenarios/:id/results", s.scenarioResults)

		api.POST("/simulation/run", s.startSimulation)
		api.GET("/simulation/:job_id/status", s.simulationStatus)
		api.DELETE("/simulation/:job_id", s.cancelSimulation)
		api.GET("/simulation/ws/:job_id", s.progressWS)

		api.GET("/ws/replay", s.replayWS)

		api.POST("/demo/load", s.demoLoad)
		api.GET("/demo/status", s.demoStatus)
		api.DELETE("/demo/clear", s.demoClear)
	}
	return r
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.HTTPAddr, Handler: s.Router()}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", s.cfg.HTTPAddr).Info("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) health(c *gin.Context) {
	if err := s.db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "detail": "database unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError maps store error kinds onto HTTP statuses.
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
	case errors.Is(err, store.ErrBaselineProtected):
		c.JSON(http.StatusConflict, gin.H{"detail": err.Error()})
	default:
		logrus.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
	}
}

func badRequest(c *gin.Context, detail string) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": detail})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logrus.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start),
		}).Debug("request")
	}
}

// cors allows the configured origins; "*" allows everything.
func cors(origins []string) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(o, "/")] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowAll || allowed[strings.TrimRight(origin, "/")]) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
