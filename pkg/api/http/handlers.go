package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aescanero/signup/pkg/domain"
)

// ParticipantQuery carries the participant email from the query string
type ParticipantQuery struct {
	Email string `form:"email" binding:"required"`
}

// MessageResponse represents a successful roster change
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, store, code := "healthy", "ok", http.StatusOK
	if err := s.directory.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		status, store, code = "unhealthy", err.Error(), http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks": gin.H{
			"store": store,
		},
	})
}

// handleListActivities returns every activity keyed by name
func (s *Server) handleListActivities(c *gin.Context) {
	activities, err := s.directory.ListActivities(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, activities)
}

// handleSignup signs the email from the query string up for the activity
func (s *Server) handleSignup(c *gin.Context) {
	name := c.Param("name")

	var query ParticipantQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: "email query parameter is required",
			},
		})
		return
	}

	if _, err := s.directory.Signup(c.Request.Context(), name, query.Email); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Signed up %s for %s", query.Email, name),
	})
}

// handleRemoveParticipant removes the email from the activity roster
func (s *Server) handleRemoveParticipant(c *gin.Context) {
	name := c.Param("name")

	var query ParticipantQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: "email query parameter is required",
			},
		})
		return
	}

	if _, err := s.directory.RemoveParticipant(c.Request.Context(), name, query.Email); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Removed %s from %s", query.Email, name),
	})
}

// writeError maps directory errors to HTTP responses
func (s *Server) writeError(c *gin.Context, err error) {
	var (
		status int
		detail ErrorDetail
	)

	switch {
	case errors.Is(err, domain.ErrActivityNotFound):
		status, detail = http.StatusNotFound, ErrorDetail{Code: "ACTIVITY_NOT_FOUND", Message: "Activity not found"}
	case errors.Is(err, domain.ErrParticipantNotFound):
		status, detail = http.StatusNotFound, ErrorDetail{Code: "PARTICIPANT_NOT_FOUND", Message: "Participant is not signed up for this activity"}
	case errors.Is(err, domain.ErrAlreadySignedUp):
		status, detail = http.StatusBadRequest, ErrorDetail{Code: "ALREADY_SIGNED_UP", Message: "Student is already signed up"}
	case errors.Is(err, domain.ErrActivityFull):
		status, detail = http.StatusConflict, ErrorDetail{Code: "ACTIVITY_FULL", Message: "Activity is full"}
	default:
		s.logger.Error("directory operation failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		status, detail = http.StatusInternalServerError, ErrorDetail{Code: "INTERNAL_ERROR", Message: "Internal server error"}
	}

	c.JSON(status, ErrorResponse{Error: detail})
}
