package service

import (
	"errors"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrStoreEmailExists   = errors.New("store already exists with this email")
	ErrOwnerNotFound      = errors.New("owner not found")
	ErrOwnerNotStoreOwner = errors.New("user must be a store owner")
	ErrOwnerHasStore      = errors.New("store owner already has a store")
)

type DashboardStats struct {
	TotalUsers   int64 `json:"totalUsers"`
	TotalStores  int64 `json:"totalStores"`
	TotalRatings int64 `json:"totalRatings"`
}

// UserDetail is a user as seen by an admin. Store is set for store owners
// that own a store.
type UserDetail struct {
	model.User
	Store *model.StoreSummary `json:"store,omitempty"`
}

type AdminService interface {
	Dashboard() (*DashboardStats, error)
	CreateUser(name, email, password, address string, role model.UserRole) (*model.User, error)
	ListUsers(filter repository.ListFilter) ([]model.User, repository.Pagination, error)
	GetUser(id uint) (*UserDetail, error)
	CreateStore(name, email, address string, ownerID uint) (*model.Store, error)
	ListStores(filter repository.ListFilter) ([]model.StoreSummary, repository.Pagination, error)
}

type adminService struct {
	userRepo   repository.UserRepository
	storeRepo  repository.StoreRepository
	ratingRepo repository.RatingRepository
}

func NewAdminService(
	userRepo repository.UserRepository,
	storeRepo repository.StoreRepository,
	ratingRepo repository.RatingRepository,
) AdminService {
	return &adminService{
		userRepo:   userRepo,
		storeRepo:  storeRepo,
		ratingRepo: ratingRepo,
	}
}

func (s *adminService) Dashboard() (*DashboardStats, error) {
	users, err := s.userRepo.Count()
	if err != nil {
		return nil, err
	}
	stores, err := s.storeRepo.Count()
	if err != nil {
		return nil, err
	}
	ratings, err := s.ratingRepo.Count()
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalUsers:   users,
		TotalStores:  stores,
		TotalRatings: ratings,
	}, nil
}

func (s *adminService) CreateUser(name, email, password, address string, role model.UserRole) (*model.User, error) {
	logger.Info("Admin creating user", map[string]interface{}{
		"email": email,
		"role":  role,
	})

	user, err := createUser(s.userRepo, name, email, password, address, role)
	if err != nil {
		return nil, err
	}

	logger.Info("User created by admin", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, nil
}

func (s *adminService) ListUsers(filter repository.ListFilter) ([]model.User, repository.Pagination, error) {
	return s.userRepo.List(filter)
}

func (s *adminService) GetUser(id uint) (*UserDetail, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	detail := &UserDetail{User: *user}

	switch user.Role {
	case model.RoleStoreOwner:
		summary, err := s.storeRepo.SummaryByOwner(user.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		detail.Store = summary
	case model.RoleAdmin, model.RoleUser:
		// no store to summarise
	}

	return detail, nil
}

// CreateStore validates the owner before persisting: the owner must exist,
// have the store_owner role and not own a store yet.
func (s *adminService) CreateStore(name, email, address string, ownerID uint) (*model.Store, error) {
	logger.Info("Admin creating store", map[string]interface{}{
		"email":    email,
		"owner_id": ownerID,
	})

	existing, err := s.storeRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		logger.Warn("Store creation failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, ErrStoreEmailExists
	}

	owner, err := s.userRepo.FindByID(ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}
	if owner.Role != model.RoleStoreOwner {
		logger.Warn("Store creation failed: owner is not a store owner", map[string]interface{}{
			"owner_id": ownerID,
			"role":     owner.Role,
		})
		return nil, ErrOwnerNotStoreOwner
	}

	owned, err := s.storeRepo.FindByOwnerID(ownerID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if owned != nil {
		return nil, ErrOwnerHasStore
	}

	store := &model.Store{
		Name:    name,
		Email:   email,
		Address: address,
		OwnerID: ownerID,
	}
	if err := s.storeRepo.Create(store); err != nil {
		return nil, err
	}

	logger.Info("Store created", map[string]interface{}{
		"store_id": store.ID,
		"owner_id": ownerID,
	})
	return store, nil
}

func (s *adminService) ListStores(filter repository.ListFilter) ([]model.StoreSummary, repository.Pagination, error) {
	return s.storeRepo.ListForAdmin(filter)
}
