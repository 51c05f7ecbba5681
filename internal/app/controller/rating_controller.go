package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storerating-backend/internal/app/service"
	apperrors "github.com/ikkim/storerating-backend/internal/errors"
	"github.com/ikkim/storerating-backend/internal/middleware"
	"github.com/ikkim/storerating-backend/internal/validation"
)

type RatingController struct {
	ratingService service.RatingService
}

func NewRatingController(ratingService service.RatingService) *RatingController {
	return &RatingController{
		ratingService: ratingService,
	}
}

type SubmitRatingRequest struct {
	StoreID uint `json:"storeId" binding:"required,min=1"`
	Rating  int  `json:"rating" binding:"required,min=1,max=5"`
}

// Submit creates or replaces the caller's rating of a store
// POST /api/ratings
func (ctrl *RatingController) Submit(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "", "")
		return
	}

	var req SubmitRatingRequest
	if !validation.Bind(c, &req) {
		return
	}

	rating, created, err := ctrl.ratingService.Submit(userID, req.StoreID, req.Rating)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStoreNotFound):
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
		case errors.Is(err, service.ErrInvalidRating):
			apperrors.RespondWithValidationError(c, "rating", apperrors.RatingInvalidRating, "Rating must be between 1 and 5")
		default:
			log.Error("Failed to submit rating", err, map[string]interface{}{
				"store_id": req.StoreID,
			})
			apperrors.ParseAndRespond(c, err, "submit rating")
		}
		return
	}

	message := "Rating updated successfully"
	if created {
		message = "Rating submitted successfully"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"rating":  rating,
	})
}

// GetForStore returns the caller's rating of one store
// GET /api/ratings/store/:storeId
func (ctrl *RatingController) GetForStore(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "", "")
		return
	}

	storeID, ok := parseID(c, "storeId", "Invalid store ID")
	if !ok {
		return
	}

	rating, err := ctrl.ratingService.GetForStore(userID, storeID)
	if err != nil {
		if errors.Is(err, service.ErrRatingNotFound) {
			apperrors.NotFound(c, apperrors.RatingNotFound, "Rating not found")
			return
		}
		middleware.GetLoggerFromContext(c).Error("Failed to load rating", err)
		apperrors.InternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rating": rating,
	})
}
