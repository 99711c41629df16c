package api

import (
	"errors"
	"net/http"

	"clipbot/curation"

	"github.com/gin-gonic/gin"
)

func (s *Server) registerCurationRoutes(r *gin.Engine) {
	g := r.Group("/api/curation")
	g.GET("", s.handleCurationStatus)
	g.POST("/approve", s.handleCurationApprove)
	g.POST("/cancel", s.handleCurationCancel)
}

// handleCurationStatus handles GET /api/curation.
func (s *Server) handleCurationStatus(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "curation is disabled"})
		return
	}
	session, err := s.store.Load(c.Request.Context())
	if err != nil {
		s.curationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary":  session.Summary(),
		"segments": session.Segments,
	})
}

// handleCurationApprove handles POST /api/curation/approve.
func (s *Server) handleCurationApprove(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "curation is disabled"})
		return
	}
	session, err := curation.ApproveAll(c.Request.Context(), s.store)
	if err != nil {
		s.curationError(c, err)
		return
	}
	c.JSON(http.StatusOK, session.Summary())
}

// handleCurationCancel handles POST /api/curation/cancel.
func (s *Server) handleCurationCancel(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "curation is disabled"})
		return
	}
	session, err := curation.Cancel(c.Request.Context(), s.store)
	if err != nil {
		s.curationError(c, err)
		return
	}
	c.JSON(http.StatusOK, session.Summary())
}

func (s *Server) curationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, curation.ErrNoSession):
		c.JSON(http.StatusNotFound, gin.H{"error": "no curation session"})
	case errors.Is(err, curation.ErrClosed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.log.Error("❌ curation API error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
