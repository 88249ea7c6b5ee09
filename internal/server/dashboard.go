package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// statusDistribution returns engagement counts per red/yellow/green bucket.
func (s *Server) statusDistribution(c *gin.Context) {
	dist, err := s.store.StatusDistribution(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"distribution": dist})
}

// listAtRisk returns engagements currently red, most recently analyzed first.
func (s *Server) listAtRisk(c *gin.Context) {
	engagements, err := s.store.ListAtRisk(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"engagements": engagements})
}
