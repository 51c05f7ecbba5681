package service

import (
	"errors"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrRatingNotFound = errors.New("rating not found")
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
)

// RatingNotifier receives every stored rating together with the owner of the
// rated store.
type RatingNotifier interface {
	NotifyRating(ownerID uint, rating *model.Rating, created bool)
}

type RatingService interface {
	Submit(userID, storeID uint, value int) (rating *model.Rating, created bool, err error)
	GetForStore(userID, storeID uint) (*model.Rating, error)
}

type ratingService struct {
	ratingRepo repository.RatingRepository
	storeRepo  repository.StoreRepository
	notifier   RatingNotifier
}

// NewRatingService builds the rating service. notifier may be nil.
func NewRatingService(
	ratingRepo repository.RatingRepository,
	storeRepo repository.StoreRepository,
	notifier RatingNotifier,
) RatingService {
	return &ratingService{
		ratingRepo: ratingRepo,
		storeRepo:  storeRepo,
		notifier:   notifier,
	}
}

// Submit stores the user's rating for the store, replacing an earlier one.
// created reports whether this was the user's first rating of the store.
func (s *ratingService) Submit(userID, storeID uint, value int) (*model.Rating, bool, error) {
	if value < model.MinRating || value > model.MaxRating {
		return nil, false, ErrInvalidRating
	}

	store, err := s.storeRepo.FindByID(storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Rating rejected: store not found", map[string]interface{}{
				"store_id": storeID,
				"user_id":  userID,
			})
			return nil, false, ErrStoreNotFound
		}
		return nil, false, err
	}

	rating := &model.Rating{
		UserID:  userID,
		StoreID: storeID,
		Rating:  value,
	}
	created, err := s.ratingRepo.Upsert(rating)
	if err != nil {
		return nil, false, err
	}

	logger.Info("Rating stored", map[string]interface{}{
		"rating_id": rating.ID,
		"store_id":  storeID,
		"user_id":   userID,
		"created":   created,
	})

	if s.notifier != nil {
		s.notifier.NotifyRating(store.OwnerID, rating, created)
	}
	return rating, created, nil
}

func (s *ratingService) GetForStore(userID, storeID uint) (*model.Rating, error) {
	rating, err := s.ratingRepo.FindByUserAndStore(userID, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, err
	}
	return rating, nil
}
