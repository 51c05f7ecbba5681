package service

import (
	"testing"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingService_Submit(t *testing.T) {
	env := setupServiceTest(t)
	notifier := &recordingNotifier{}
	ratings := NewRatingService(env.ratingRepo, env.storeRepo, notifier)

	owner := env.createUser(t, "Store Owner Full Name", "owner@example.com", model.RoleStoreOwner)
	rater := env.createUser(t, "Regular Rating User", "user@example.com", model.RoleUser)
	store := env.createStore(t, "Existing Coffee Roasters", "store@stores.com", owner.ID)

	rating, created, err := ratings.Submit(rater.ID, store.ID, 4)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 4, rating.Rating)

	rating, created, err = ratings.Submit(rater.ID, store.ID, 5)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 5, rating.Rating)

	found, err := ratings.GetForStore(rater.ID, store.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, found.Rating)

	require.Len(t, notifier.events, 2)
	assert.Equal(t, owner.ID, notifier.events[0].ownerID)
	assert.True(t, notifier.events[0].created)
	assert.False(t, notifier.events[1].created)
	assert.Equal(t, 5, notifier.events[1].rating.Rating)
}

func TestRatingService_Errors(t *testing.T) {
	env := setupServiceTest(t)
	ratings := NewRatingService(env.ratingRepo, env.storeRepo, nil)
	rater := env.createUser(t, "Regular Rating User", "user@example.com", model.RoleUser)

	_, _, err := ratings.Submit(rater.ID, 9999, 3)
	assert.ErrorIs(t, err, ErrStoreNotFound)

	_, _, err = ratings.Submit(rater.ID, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, _, err = ratings.Submit(rater.ID, 1, 6)
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = ratings.GetForStore(rater.ID, 9999)
	assert.ErrorIs(t, err, ErrRatingNotFound)
}
