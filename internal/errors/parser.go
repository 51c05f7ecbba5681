package errors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrorInfo is a client-safe description of a persistence error.
type ErrorInfo struct {
	Status  int
	Code    string
	Message string
}

// ParseError maps raw database errors (not found, unique, check and foreign
// key violations from postgres or sqlite) to a status, code and message.
// context names the operation, e.g. "create store".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return internalInfo()
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Status:  http.StatusNotFound,
			Code:    notFoundCode(context),
			Message: notFoundMessage(context),
		}
	}

	errLower := strings.ToLower(err.Error())

	// postgres 23505 / sqlite UNIQUE constraint failed
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(errLower, "duplicate key") ||
		strings.Contains(errLower, "unique constraint") {
		return parseDuplicateKeyError(errLower)
	}

	if strings.Contains(errLower, "check constraint") {
		if strings.Contains(errLower, "rating") {
			return ErrorInfo{
				Status:  http.StatusBadRequest,
				Code:    RatingInvalidRating,
				Message: "Rating must be between 1 and 5",
			}
		}
		return ErrorInfo{
			Status:  http.StatusBadRequest,
			Code:    ValidationInvalidInput,
			Message: "Invalid input",
		}
	}

	if strings.Contains(errLower, "foreign key constraint") {
		if strings.Contains(errLower, "store") {
			return ErrorInfo{Status: http.StatusNotFound, Code: StoreNotFound, Message: "Store not found"}
		}
		return ErrorInfo{Status: http.StatusNotFound, Code: ResourceNotFound, Message: "Referenced record not found"}
	}

	return internalInfo()
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	switch {
	case strings.Contains(errLower, "stores") && strings.Contains(errLower, "email"):
		return ErrorInfo{Status: http.StatusBadRequest, Code: StoreEmailExists, Message: "Store already exists with this email"}
	case strings.Contains(errLower, "stores") && strings.Contains(errLower, "owner_id"):
		return ErrorInfo{Status: http.StatusBadRequest, Code: StoreAlreadyOwned, Message: "Store owner already has a store"}
	case strings.Contains(errLower, "email"):
		return ErrorInfo{Status: http.StatusBadRequest, Code: AuthEmailAlreadyExists, Message: "User already exists with this email"}
	default:
		return ErrorInfo{Status: http.StatusBadRequest, Code: ResourceAlreadyExists, Message: "Record already exists"}
	}
}

func notFoundCode(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "store"):
		return StoreNotFound
	case strings.Contains(contextLower, "rating"):
		return RatingNotFound
	default:
		return ResourceNotFound
	}
}

func notFoundMessage(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "store"):
		return "Store not found"
	case strings.Contains(contextLower, "rating"):
		return "Rating not found"
	case strings.Contains(contextLower, "user"):
		return "User not found"
	default:
		return "Resource not found"
	}
}

func internalInfo() ErrorInfo {
	return ErrorInfo{
		Status:  http.StatusInternalServerError,
		Code:    InternalServerError,
		Message: "Internal server error",
	}
}

// ParseAndRespond parses err and writes the matching error response.
func ParseAndRespond(c *gin.Context, err error, context string) {
	info := ParseError(err, context)
	if info.Status == http.StatusInternalServerError {
		InternalError(c, err)
		return
	}
	RespondWithError(c, info.Status, info.Code, info.Message)
}
