package errors

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`             // human readable message
	Code    string `json:"code"`              // stable code from codes.go
	Field   string `json:"field,omitempty"`   // first failing field, validation only
	Details string `json:"details,omitempty"` // internal error text, development only
}

var exposeInternal atomic.Bool

// ExposeInternalErrors controls whether 500 responses include the underlying error.
func ExposeInternalErrors(enabled bool) {
	exposeInternal.Store(enabled)
}

// RespondWithError writes the error body and aborts the handler chain.
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error: message,
		Code:  errorCode,
	})
}

func Unauthorized(c *gin.Context, errorCode string, message string) {
	if errorCode == "" {
		errorCode = AuthUnauthorized
	}
	if message == "" {
		message = "Access token required"
	}
	RespondWithError(c, http.StatusUnauthorized, errorCode, message)
}

func Forbidden(c *gin.Context, errorCode string, message string) {
	if errorCode == "" {
		errorCode = AuthzForbidden
	}
	if message == "" {
		message = "Insufficient permissions"
	}
	RespondWithError(c, http.StatusForbidden, errorCode, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

// InternalError responds with the generic 500 body. The cause is attached as
// details only when ExposeInternalErrors(true) was called.
func InternalError(c *gin.Context, err error) {
	resp := ErrorResponse{
		Error: "Internal server error",
		Code:  InternalServerError,
	}
	if err != nil && exposeInternal.Load() {
		resp.Details = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
}

// RespondWithValidationError reports the first failing field.
func RespondWithValidationError(c *gin.Context, field, errorCode, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Error: message,
		Code:  errorCode,
		Field: field,
	})
}
