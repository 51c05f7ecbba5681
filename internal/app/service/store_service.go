package service

import (
	"errors"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrStoreNotFound = errors.New("store not found")

type StoreService interface {
	ListForUser(userID uint, filter repository.ListFilter) ([]model.StoreSummary, repository.Pagination, error)
	MyStore(ownerID uint) (*model.StoreSummary, error)
	MyStoreRatings(ownerID uint) ([]model.StoreRater, error)
}

type storeService struct {
	repo repository.StoreRepository
}

func NewStoreService(repo repository.StoreRepository) StoreService {
	return &storeService{repo: repo}
}

func (s *storeService) ListForUser(userID uint, filter repository.ListFilter) ([]model.StoreSummary, repository.Pagination, error) {
	logger.Debug("Listing stores for user", map[string]interface{}{
		"user_id": userID,
		"page":    filter.Page,
	})
	return s.repo.ListForUser(userID, filter)
}

func (s *storeService) MyStore(ownerID uint) (*model.StoreSummary, error) {
	store, err := s.repo.SummaryByOwner(ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Store owner has no store", map[string]interface{}{
				"owner_id": ownerID,
			})
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return store, nil
}

// MyStoreRatings lists the users who rated the owner's store, newest first.
// An owner without a store gets an empty list.
func (s *storeService) MyStoreRatings(ownerID uint) ([]model.StoreRater, error) {
	return s.repo.RatersByOwner(ownerID)
}
