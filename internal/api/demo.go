package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wardops/wardops/internal/demo"
)

// demoLoad wipes the database and reseeds the deterministic demo day.
func (s *Server) demoLoad(c *gin.Context) {
	cfg := demo.DefaultConfig()
	if seed, ok := intQuery(c, "seed", int(cfg.Seed)); ok {
		cfg.Seed = int64(seed)
	} else {
		return
	}

	ds, err := s.loader.Load(c.Request.Context(), cfg)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"unit_id":  ds.Unit.ID,
		"beds":     len(ds.Beds),
		"nurses":   len(ds.Nurses),
		"patients": len(ds.Patients),
		"events":   len(ds.Events),
		"policies": len(ds.Policies),
	})
}

func (s *Server) demoStatus(c *gin.Context) {
	counts, err := s.db.Counts(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"loaded": counts.Units > 0,
		"counts": counts,
	})
}

func (s *Server) demoClear(c *gin.Context) {
	if err := s.db.ClearAll(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}
