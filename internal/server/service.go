// Package server exposes the engagement pipeline over HTTP. Handlers are thin:
// they bind requests, call the store or the processor, and translate the error
// taxonomy into status codes.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/apphelix/engagement-tracker/internal/common"
	"github.com/apphelix/engagement-tracker/internal/pipeline"
	"github.com/apphelix/engagement-tracker/internal/repository"
)

// Server wires HTTP routes to the document pipeline and the engagement store.
type Server struct {
	store     *repository.Store
	processor *pipeline.Processor
	uploadDir string
	logger    *slog.Logger
}

func NewServer(store *repository.Store, processor *pipeline.Processor, uploadDir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:     store,
		processor: processor,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/healthz", s.healthz)

	api := router.Group("/api")
	api.POST("/customers", s.createCustomer)
	api.GET("/customers", s.listCustomers)
	api.GET("/customers/:id", s.getCustomer)
	api.GET("/customers/:id/engagements", s.listCustomerEngagements)

	api.POST("/engagements", s.createEngagement)
	api.GET("/engagements/:id", s.getEngagement)
	api.POST("/engagements/:id/documents", s.uploadDocument)
	api.GET("/engagements/:id/documents", s.listEngagementDocuments)
	api.POST("/engagements/:id/emails", s.ingestEmail)
	api.GET("/engagements/:id/emails", s.listEngagementEmails)
	api.POST("/engagements/:id/analyze", s.analyzeEngagement)
	api.GET("/engagements/:id/action-items", s.listActionItems)

	api.GET("/documents", s.listDocuments)
	api.GET("/documents/:id", s.getDocument)
	api.DELETE("/documents/:id", s.deleteDocument)
	api.POST("/documents/:id/process", s.processDocument)

	api.GET("/dashboard/status-distribution", s.statusDistribution)
	api.GET("/dashboard/at-risk", s.listAtRisk)

	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http.request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError maps the pipeline error taxonomy onto HTTP status codes. The
// AppError code, when present, is surfaced so clients can branch without
// parsing messages.
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrSizeExceeded):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, common.ErrUnknownType), errors.Is(err, common.ErrUnsupportedType):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, common.ErrCorruptFile),
		errors.Is(err, common.ErrInvalidInput),
		errors.Is(err, common.ErrPrecondition),
		errors.Is(err, common.ErrEmptyInput):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrServiceUnavailable):
		status = http.StatusBadGateway
	}

	body := gin.H{"error": err.Error()}
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		body["code"] = appErr.Code
		body["error"] = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("http.error", "status", status, "error", err)
	}
	c.JSON(status, body)
}
