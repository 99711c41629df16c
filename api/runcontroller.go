package api

import (
	"errors"
	"io"
	"net/http"

	"clipbot/pipeline"
	"clipbot/runlog"

	"github.com/gin-gonic/gin"
)

func (s *Server) registerRunRoutes(r *gin.Engine) {
	g := r.Group("/api")
	g.GET("/status", s.handleStatus)
	g.POST("/run", s.handleRun)
	g.GET("/runs", s.handleRuns)
}

// handleStatus handles GET /api/status.
func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.state.Snapshot())
}

// handleRun handles POST /api/run. The body is optional.
func (s *Server) handleRun(c *gin.Context) {
	var req pipeline.Request
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Profile != "" && req.Profile != "short" && req.Profile != "long" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile must be short or long"})
		return
	}

	if !s.runner.Reserve() {
		c.JSON(http.StatusConflict, gin.H{
			"error": pipeline.ErrBusy.Error(),
			"state": s.state.State(),
		})
		return
	}

	s.startReserved(req)
	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

// handleRuns handles GET /api/runs?n=10 from the run log.
func (s *Server) handleRuns(c *gin.Context) {
	n := queryInt(c, "n", 10)
	records, err := runlog.Recent(s.runLogPath, n)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": records, "count": len(records)})
}
