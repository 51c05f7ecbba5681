package repository

import (
	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StoreRepository interface {
	Create(store *model.Store) error
	FindByID(id uint) (*model.Store, error)
	FindByEmail(email string) (*model.Store, error)
	FindByOwnerID(ownerID uint) (*model.Store, error)
	Count() (int64, error)
	ListForAdmin(filter ListFilter) ([]model.StoreSummary, Pagination, error)
	ListForUser(userID uint, filter ListFilter) ([]model.StoreSummary, Pagination, error)
	ListAllSummaries() ([]model.StoreSummary, error)
	SummaryByOwner(ownerID uint) (*model.StoreSummary, error)
	RatersByOwner(ownerID uint) ([]model.StoreRater, error)
}

type storeRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

const ownerSummarySQL = `SELECT s.id, s.name, s.email, s.address, s.owner_id,
	COALESCE(AVG(r.rating), 0) AS average_rating, COUNT(r.id) AS total_ratings, s.created_at
FROM stores s
LEFT JOIN ratings r ON r.store_id = s.id
WHERE s.owner_id = ?
GROUP BY s.id, s.name, s.email, s.address, s.owner_id, s.created_at`

const allSummariesSQL = `SELECT s.id, s.name, s.email, s.address, s.owner_id, u.name AS owner_name,
	COALESCE(AVG(r.rating), 0) AS average_rating, COUNT(r.id) AS total_ratings, s.created_at
FROM stores s
JOIN users u ON u.id = s.owner_id
LEFT JOIN ratings r ON r.store_id = s.id
GROUP BY s.id, s.name, s.email, s.address, s.owner_id, u.name, s.created_at
ORDER BY s.id`

const ratersByOwnerSQL = `SELECT u.id, u.name, u.email, r.rating, r.created_at
FROM ratings r
JOIN users u ON u.id = r.user_id
JOIN stores s ON s.id = r.store_id
WHERE s.owner_id = ?
ORDER BY r.created_at DESC, r.id DESC`

const distributionSQL = `SELECT rating, COUNT(*) AS count FROM ratings WHERE store_id = ? GROUP BY rating`

func (r *storeRepository) Create(store *model.Store) error {
	logger.Debug("Creating store in database", map[string]interface{}{
		"name":     store.Name,
		"email":    store.Email,
		"owner_id": store.OwnerID,
	})

	if err := r.db.Create(store).Error; err != nil {
		logger.Error("Failed to create store in database", err, map[string]interface{}{
			"email":    store.Email,
			"owner_id": store.OwnerID,
		})
		return err
	}

	logger.Debug("Store created in database", map[string]interface{}{
		"store_id": store.ID,
		"owner_id": store.OwnerID,
	})
	return nil
}

func (r *storeRepository) FindByID(id uint) (*model.Store, error) {
	var store model.Store
	if err := r.db.First(&store, id).Error; err != nil {
		logFindError("Failed to find store by ID in database", err, map[string]interface{}{
			"store_id": id,
		})
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) FindByEmail(email string) (*model.Store, error) {
	var store model.Store
	if err := r.db.Where("email = ?", email).First(&store).Error; err != nil {
		logFindError("Failed to find store by email in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) FindByOwnerID(ownerID uint) (*model.Store, error) {
	var store model.Store
	if err := r.db.Where("owner_id = ?", ownerID).First(&store).Error; err != nil {
		logFindError("Failed to find store by owner in database", err, map[string]interface{}{
			"owner_id": ownerID,
		})
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Store{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count stores", err)
		return 0, err
	}
	return count, nil
}

func (r *storeRepository) ListForAdmin(filter ListFilter) ([]model.StoreSummary, Pagination, error) {
	b := newBuilder(adminStoreListing, filter).
		Contains("s.name", filter.Name).
		Contains("s.email", filter.Email).
		Contains("s.address", filter.Address)

	stores, pagination, err := runListing[model.StoreSummary](r.db, b)
	if err != nil {
		logger.Error("Failed to list stores for admin", err)
		return nil, pagination, err
	}
	roundAverages(stores)
	return stores, pagination, nil
}

func (r *storeRepository) ListForUser(userID uint, filter ListFilter) ([]model.StoreSummary, Pagination, error) {
	b := newBuilder(userStoreListing, filter).
		JoinArgs(userID).
		Contains("s.name", filter.Name).
		Contains("s.address", filter.Address)

	stores, pagination, err := runListing[model.StoreSummary](r.db, b)
	if err != nil {
		logger.Error("Failed to list stores for user", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, pagination, err
	}
	roundAverages(stores)
	return stores, pagination, nil
}

func (r *storeRepository) ListAllSummaries() ([]model.StoreSummary, error) {
	stores := []model.StoreSummary{}
	if err := r.db.Raw(allSummariesSQL).Scan(&stores).Error; err != nil {
		logger.Error("Failed to load store summaries", err)
		return nil, err
	}
	roundAverages(stores)
	return stores, nil
}

// SummaryByOwner returns the owner's store with aggregates and the per-star
// rating distribution, or gorm.ErrRecordNotFound.
func (r *storeRepository) SummaryByOwner(ownerID uint) (*model.StoreSummary, error) {
	var stores []model.StoreSummary
	if err := r.db.Raw(ownerSummarySQL, ownerID).Scan(&stores).Error; err != nil {
		logger.Error("Failed to load store summary", err, map[string]interface{}{
			"owner_id": ownerID,
		})
		return nil, err
	}
	if len(stores) == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	store := stores[0]
	store.AverageRating = roundRating(store.AverageRating)

	distribution, err := r.distribution(store.ID)
	if err != nil {
		return nil, err
	}
	store.RatingDistribution = distribution
	return &store, nil
}

func (r *storeRepository) distribution(storeID uint) (map[int]int64, error) {
	var rows []struct {
		Rating int
		Count  int64
	}
	if err := r.db.Raw(distributionSQL, storeID).Scan(&rows).Error; err != nil {
		logger.Error("Failed to load rating distribution", err, map[string]interface{}{
			"store_id": storeID,
		})
		return nil, err
	}

	distribution := make(map[int]int64, model.MaxRating)
	for star := model.MinRating; star <= model.MaxRating; star++ {
		distribution[star] = 0
	}
	for _, row := range rows {
		distribution[row.Rating] = row.Count
	}
	return distribution, nil
}

func (r *storeRepository) RatersByOwner(ownerID uint) ([]model.StoreRater, error) {
	raters := []model.StoreRater{}
	if err := r.db.Raw(ratersByOwnerSQL, ownerID).Scan(&raters).Error; err != nil {
		logger.Error("Failed to load store raters", err, map[string]interface{}{
			"owner_id": ownerID,
		})
		return nil, err
	}
	return raters, nil
}

func roundRating(avg float64) float64 {
	return decimal.NewFromFloat(avg).Round(2).InexactFloat64()
}

func roundAverages(stores []model.StoreSummary) {
	for i := range stores {
		stores[i].AverageRating = roundRating(stores[i].AverageRating)
	}
}
