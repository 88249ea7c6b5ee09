package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/apphelix/engagement-tracker/internal/entity"
)

type createEngagementRequest struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
}

func (s *Server) createEngagement(c *gin.Context) {
	var req createEngagementRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer_id"})
		return
	}

	eng := entity.Engagement{
		CustomerID: customerID,
		Name:       req.Name,
	}
	if err := s.store.CreateEngagement(c.Request.Context(), &eng); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, eng)
}

func (s *Server) getEngagement(c *gin.Context) {
	id, ok := s.pathUUID(c, "id")
	if !ok {
		return
	}
	eng, err := s.store.GetEngagement(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, eng)
}

type ingestEmailRequest struct {
	Subject    string     `json:"subject"`
	Sender     string     `json:"sender"`
	Content    string     `json:"content"`
	ReceivedAt *time.Time `json:"received_at"`
}

// ingestEmail stores a customer communication. The email text only feeds the
// risk computation on the next analyze call; ingestion itself does not call
// the completion service.
func (s *Server) ingestEmail(c *gin.Context) {
	engagementID, ok := s.pathUUID(c, "id")
	if !ok {
		return
	}
	if _, err := s.store.GetEngagement(c.Request.Context(), engagementID); err != nil {
		s.respondError(c, err)
		return
	}

	var req ingestEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	receivedAt := time.Now().UTC()
	if req.ReceivedAt != nil {
		receivedAt = req.ReceivedAt.UTC()
	}

	email := entity.Email{
		EngagementID: engagementID,
		Subject:      req.Subject,
		Sender:       req.Sender,
		Content:      req.Content,
		ReceivedAt:   receivedAt,
	}
	if err := s.store.CreateEmail(c.Request.Context(), &email); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, email)
}

func (s *Server) listEngagementEmails(c *gin.Context) {
	engagementID, ok := s.pathUUID(c, "id")
	if !ok {
		return
	}
	emails, err := s.store.ListEmailsForEngagement(c.Request.Context(), engagementID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"emails": emails})
}

// analyzeEngagement recomputes the red/yellow/green status from all stored
// documents and emails and writes the outcome back.
func (s *Server) analyzeEngagement(c *gin.Context) {
	engagementID, ok := s.pathUUID(c, "id")
	if !ok {
		return
	}
	if _, err := s.store.GetEngagement(c.Request.Context(), engagementID); err != nil {
		s.respondError(c, err)
		return
	}

	assessment, err := s.processor.AssessEngagement(c.Request.Context(), engagementID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessment)
}

func (s *Server) listActionItems(c *gin.Context) {
	engagementID, ok := s.pathUUID(c, "id")
	if !ok {
		return
	}
	items, err := s.store.ListActionItemsForEngagement(c.Request.Context(), engagementID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"action_items": items})
}
