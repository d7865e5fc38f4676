package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zemo-rentals/service-reservation/internal/domain"
)

// Envelope is the uniform response body shape.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorBody carries a machine-readable kind alongside the message.
type ErrorBody struct {
	Kind    string                 `json:"kind"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Meta carries pagination information for list responses.
type Meta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// Success writes a 200 with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes a 200 list response with pagination meta.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    items,
		Meta:    &Meta{Total: total, Page: page, Limit: limit},
	})
}

// BadRequest writes a 400 validation error.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{
		Success: false,
		Error:   &ErrorBody{Kind: string(domain.KindValidation), Message: message},
	})
}

// Unauthorized writes a 401.
func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, Envelope{
		Success: false,
		Error:   &ErrorBody{Kind: "unauthorized", Message: message},
	})
}

// statusForKind maps domain error kinds to HTTP status codes.
var statusForKind = map[domain.ErrorKind]int{
	domain.KindValidation:         http.StatusBadRequest,
	domain.KindConflict:           http.StatusConflict,
	domain.KindInvalidTransition:  http.StatusConflict,
	domain.KindAlreadyExists:      http.StatusConflict,
	domain.KindPreconditionFailed: http.StatusUnprocessableEntity,
	domain.KindNotFound:           http.StatusNotFound,
	domain.KindForbidden:          http.StatusForbidden,
	domain.KindUnavailable:        http.StatusServiceUnavailable,
}

// Error maps a domain error to the appropriate HTTP status. Anything
// that is not a domain error becomes an opaque 500.
func Error(c *gin.Context, err error) {
	var derr *domain.Error
	if errors.As(err, &derr) {
		status, ok := statusForKind[derr.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		c.JSON(status, Envelope{
			Success: false,
			Error: &ErrorBody{
				Kind:    string(derr.Kind),
				Message: derr.Message,
				Details: derr.Details,
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, Envelope{
		Success: false,
		Error:   &ErrorBody{Kind: "internal", Message: "internal server error"},
	})
}
