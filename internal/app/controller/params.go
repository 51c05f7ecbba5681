package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	apperrors "github.com/ikkim/storerating-backend/internal/errors"
	"github.com/ikkim/storerating-backend/internal/validation"
	"github.com/ikkim/storerating-backend/pkg/query"
)

// ListQuery holds the filter, sort and paging query parameters shared by the
// listing endpoints. Filters a resource does not support are ignored.
type ListQuery struct {
	Name      string `form:"name" binding:"omitempty,max=60"`
	Email     string `form:"email" binding:"omitempty,max=255"`
	Address   string `form:"address" binding:"omitempty,max=400"`
	Role      string `form:"role" binding:"omitempty,role"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// bindListQuery binds and validates listing parameters; sortBy must be one of
// sortKeys. It responds with 400 and returns false on failure.
func bindListQuery(c *gin.Context, sortKeys []string) (repository.ListFilter, bool) {
	var q ListQuery
	if !validation.BindQuery(c, &q) {
		return repository.ListFilter{}, false
	}
	if err := validation.OneOf("sortBy", q.SortBy, sortKeys); err != nil {
		validation.Respond(c, err)
		return repository.ListFilter{}, false
	}

	return repository.ListFilter{
		Name:      q.Name,
		Email:     q.Email,
		Address:   q.Address,
		Role:      q.Role,
		SortBy:    q.SortBy,
		SortOrder: query.SortOrder(q.SortOrder),
		Page:      q.Page,
		Limit:     q.Limit,
	}, true
}

// parseID reads a positive integer path parameter, responding 400 with
// message when it is malformed.
func parseID(c *gin.Context, param, message string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		apperrors.RespondWithValidationError(c, param, apperrors.ValidationInvalidID, message)
		return 0, false
	}
	return uint(id), true
}
