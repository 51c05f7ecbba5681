package repository

import (
	"fmt"
	"testing"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func createUser(t *testing.T, testDB *gorm.DB, name, email string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: "hashed",
		Address:      fmt.Sprintf("%s street", name),
		Role:         role,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func createStore(t *testing.T, testDB *gorm.DB, name, email, address string, ownerID uint) *model.Store {
	t.Helper()
	store := &model.Store{
		Name:    name,
		Email:   email,
		Address: address,
		OwnerID: ownerID,
	}
	require.NoError(t, testDB.Create(store).Error)
	return store
}

func createRating(t *testing.T, testDB *gorm.DB, userID, storeID uint, value int) {
	t.Helper()
	require.NoError(t, testDB.Create(&model.Rating{UserID: userID, StoreID: storeID, Rating: value}).Error)
}
