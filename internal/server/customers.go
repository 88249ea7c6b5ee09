package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apphelix/engagement-tracker/internal/entity"
)

type createCustomerRequest struct {
	Name         string `json:"name"`
	Industry     string `json:"industry"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	Description  string `json:"description"`
}

func (s *Server) createCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	customer := entity.Customer{
		Name:         req.Name,
		Industry:     req.Industry,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Description:  req.Description,
	}
	if err := s.store.CreateCustomer(c.Request.Context(), &customer); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (s *Server) getCustomer(c *gin.Context) {
	id, ok := s.pathUUID(c, "id")
	if !ok {
		return
	}
	customer, err := s.store.GetCustomer(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// listCustomers returns all customers, or a filtered set when ?q= is present.
func (s *Server) listCustomers(c *gin.Context) {
	customers, err := s.store.SearchCustomers(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

func (s *Server) listCustomerEngagements(c *gin.Context) {
	id, ok := s.pathUUID(c, "id")
	if !ok {
		return
	}
	if _, err := s.store.GetCustomer(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	engagements, err := s.store.ListEngagementsForCustomer(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"engagements": engagements})
}
