package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/internal/app/service"
	apperrors "github.com/ikkim/storerating-backend/internal/errors"
	"github.com/ikkim/storerating-backend/internal/middleware"
)

type StoreController struct {
	storeService service.StoreService
}

func NewStoreController(storeService service.StoreService) *StoreController {
	return &StoreController{
		storeService: storeService,
	}
}

// List returns stores with aggregates and the caller's own rating
// GET /api/stores
func (ctrl *StoreController) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "", "")
		return
	}

	filter, ok := bindListQuery(c, repository.UserStoreSortKeys)
	if !ok {
		return
	}
	// users may only filter stores by name and address
	filter.Email = ""
	filter.Role = ""

	stores, pagination, err := ctrl.storeService.ListForUser(userID, filter)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list stores", err)
		apperrors.InternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stores":     stores,
		"pagination": pagination,
	})
}

// MyStore returns the owner's store with its rating summary
// GET /api/stores/my-store
func (ctrl *StoreController) MyStore(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "", "")
		return
	}

	store, err := ctrl.storeService.MyStore(ownerID)
	if err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
			return
		}
		middleware.GetLoggerFromContext(c).Error("Failed to load owner store", err)
		apperrors.InternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"store": store,
	})
}

// MyStoreRatings lists users who rated the owner's store, newest first
// GET /api/stores/my-store/ratings
func (ctrl *StoreController) MyStoreRatings(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "", "")
		return
	}

	raters, err := ctrl.storeService.MyStoreRatings(ownerID)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list store ratings", err)
		apperrors.InternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ratings": raters,
	})
}
