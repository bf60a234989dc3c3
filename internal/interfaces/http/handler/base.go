package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/interfaces/http/dto"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getBusinessID extracts the business ID from the X-Business-ID header.
// Authentication is out of scope; the header is trusted as-is.
func getBusinessID(c *gin.Context) (uuid.UUID, error) {
	value := c.GetHeader("X-Business-ID")
	if value == "" {
		return uuid.Nil, errors.New("X-Business-ID header is required")
	}
	return uuid.Parse(value)
}

// getActorID extracts the acting user from the X-Actor-ID header
func getActorID(c *gin.Context) (uuid.UUID, error) {
	value := c.GetHeader("X-Actor-ID")
	if value == "" {
		return uuid.Nil, errors.New("X-Actor-ID header is required")
	}
	return uuid.Parse(value)
}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest, message))
}

// HandleError maps a domain error onto the HTTP response
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		c.JSON(dto.GetHTTPStatus(domainErr.Code), dto.NewErrorResponse(domainErr.Code, domainErr.Message))
		return
	}
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrCodeInternal, "Internal server error"))
}
