package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-jwt-secret"

type testEnv struct {
	db         *gorm.DB
	userRepo   repository.UserRepository
	storeRepo  repository.StoreRepository
	ratingRepo repository.RatingRepository
}

func setupServiceTest(t *testing.T) *testEnv {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return &testEnv{
		db:         testDB,
		userRepo:   repository.NewUserRepository(testDB),
		storeRepo:  repository.NewStoreRepository(testDB),
		ratingRepo: repository.NewRatingRepository(testDB),
	}
}

func (e *testEnv) createUser(t *testing.T, name, email string, role model.UserRole) *model.User {
	t.Helper()
	user, err := createUser(e.userRepo, name, email, "Abcdefg!", "1 Test Street", role)
	require.NoError(t, err)
	return user
}

func (e *testEnv) createStore(t *testing.T, name, email string, ownerID uint) *model.Store {
	t.Helper()
	store := &model.Store{Name: name, Email: email, Address: "1 Store Street", OwnerID: ownerID}
	require.NoError(t, e.storeRepo.Create(store))
	return store
}

type memoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newMemoryRevoker() *memoryRevoker {
	return &memoryRevoker{revoked: map[string]time.Duration{}}
}

func (m *memoryRevoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = ttl
	return nil
}

type notification struct {
	ownerID uint
	rating  model.Rating
	created bool
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification
}

func (r *recordingNotifier) NotifyRating(ownerID uint, rating *model.Rating, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, notification{ownerID: ownerID, rating: *rating, created: created})
}
