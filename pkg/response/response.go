package response

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/types"
)

// Response represents a standardized API response envelope
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     *Error      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Error represents an error response
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes
const (
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeBadRequest           = "BAD_REQUEST"
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeInternalError        = "INTERNAL_ERROR"
	ErrCodeInvalidSymbol        = "INVALID_SYMBOL"
	ErrCodeMissingPrice         = "MISSING_PRICE"
	ErrCodeInsufficientHoldings = "INSUFFICIENT_HOLDINGS"
	ErrCodeAlreadyTerminal      = "ALREADY_TERMINAL"
)

// Handle translates a core error into the appropriate response.
// The core raises sentinel errors and never formats for transport;
// this is the single place they become HTTP statuses.
func Handle(c *gin.Context, data interface{}, err error) {
	if err == nil {
		Success(c, data)
		return
	}

	switch {
	case errors.Is(err, types.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, types.ErrInvalidSymbol):
		fail(c, http.StatusBadRequest, ErrCodeInvalidSymbol, err.Error())
	case errors.Is(err, types.ErrMissingPrice), errors.Is(err, types.ErrInvalidPrice):
		fail(c, http.StatusBadRequest, ErrCodeMissingPrice, err.Error())
	case errors.Is(err, types.ErrInsufficientHoldings):
		fail(c, http.StatusUnprocessableEntity, ErrCodeInsufficientHoldings, err.Error())
	case errors.Is(err, types.ErrForbidden):
		Forbidden(c, err.Error())
	case errors.Is(err, types.ErrAlreadyTerminal):
		fail(c, http.StatusConflict, ErrCodeAlreadyTerminal, err.Error())
	default:
		InternalError(c, "An unexpected error occurred")
	}
}

// Success sends a successful response
func Success(c *gin.Context, data interface{}) {
	status := http.StatusOK
	if c.Request.Method == "POST" {
		status = http.StatusCreated
	}

	c.JSON(status, Response{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// SuccessMessage sends a successful response with a human-readable message
func SuccessMessage(c *gin.Context, message string, data interface{}) {
	status := http.StatusOK
	if c.Request.Method == "POST" {
		status = http.StatusCreated
	}

	c.JSON(status, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	fail(c, http.StatusNotFound, ErrCodeNotFound, message)
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	fail(c, http.StatusForbidden, ErrCodeForbidden, message)
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	fail(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
		},
		Timestamp: time.Now(),
	})
}
