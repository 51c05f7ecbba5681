package repository

import (
	"time"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingRepository interface {
	Upsert(rating *model.Rating) (created bool, err error)
	FindByUserAndStore(userID, storeID uint) (*model.Rating, error)
	Count() (int64, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// Upsert inserts the rating or, when the user already rated the store,
// overwrites the stored value. rating is refreshed from the stored row.
func (r *ratingRepository) Upsert(rating *model.Rating) (bool, error) {
	created := false

	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "store_id"}},
			DoNothing: true,
		}).Create(rating)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			created = true
			return nil
		}

		err := tx.Model(&model.Rating{}).
			Where("user_id = ? AND store_id = ?", rating.UserID, rating.StoreID).
			Updates(map[string]interface{}{
				"rating":     rating.Rating,
				"updated_at": time.Now(),
			}).Error
		if err != nil {
			return err
		}

		return tx.Where("user_id = ? AND store_id = ?", rating.UserID, rating.StoreID).
			First(rating).Error
	})
	if err != nil {
		logger.Error("Failed to upsert rating", err, map[string]interface{}{
			"user_id":  rating.UserID,
			"store_id": rating.StoreID,
		})
		return false, err
	}

	logger.Debug("Rating upserted", map[string]interface{}{
		"rating_id": rating.ID,
		"created":   created,
	})
	return created, nil
}

func (r *ratingRepository) FindByUserAndStore(userID, storeID uint) (*model.Rating, error) {
	var rating model.Rating
	err := r.db.Where("user_id = ? AND store_id = ?", userID, storeID).First(&rating).Error
	if err != nil {
		logFindError("Failed to find rating in database", err, map[string]interface{}{
			"user_id":  userID,
			"store_id": storeID,
		})
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Rating{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count ratings", err)
		return 0, err
	}
	return count, nil
}
