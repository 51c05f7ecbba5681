package repository

import (
	"fmt"
	"testing"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type storeFixture struct {
	db     *gorm.DB
	repo   StoreRepository
	owners []*model.User
	raters []*model.User
	stores []*model.Store
}

// newStoreFixture creates three stores: Alpha rated 5 and 4, Bravo rated 2,
// Charlie unrated.
func newStoreFixture(t *testing.T) *storeFixture {
	testDB := setupTestDB(t)
	f := &storeFixture{db: testDB, repo: NewStoreRepository(testDB)}

	for i, name := range []string{"Alpha", "Bravo", "Charlie"} {
		owner := createUser(t, testDB, name+" Owner Full Name", fmt.Sprintf("owner%d@example.com", i), model.RoleStoreOwner)
		f.owners = append(f.owners, owner)
		f.stores = append(f.stores, createStore(t, testDB,
			name+" Coffee Roasters Store",
			fmt.Sprintf("%s@stores.com", name),
			fmt.Sprintf("%d %s Avenue", i+1, name),
			owner.ID))
	}
	for i := 0; i < 2; i++ {
		f.raters = append(f.raters, createUser(t, testDB, fmt.Sprintf("Regular Rating User %d", i), fmt.Sprintf("rater%d@example.com", i), model.RoleUser))
	}

	createRating(t, testDB, f.raters[0].ID, f.stores[0].ID, 5)
	createRating(t, testDB, f.raters[1].ID, f.stores[0].ID, 4)
	createRating(t, testDB, f.raters[0].ID, f.stores[1].ID, 2)
	return f
}

func TestStoreRepository_ListForAdmin(t *testing.T) {
	f := newStoreFixture(t)

	stores, pagination, err := f.repo.ListForAdmin(ListFilter{})
	require.NoError(t, err)
	require.Len(t, stores, 3)
	assert.Equal(t, int64(3), pagination.Total)
	assert.Equal(t, 1, pagination.TotalPages)

	alpha := stores[0]
	assert.Equal(t, "Alpha Coffee Roasters Store", alpha.Name)
	assert.Equal(t, "Alpha Owner Full Name", alpha.OwnerName)
	assert.Equal(t, 4.5, alpha.AverageRating)
	assert.Equal(t, int64(2), alpha.TotalRatings)

	charlie := stores[2]
	assert.Equal(t, float64(0), charlie.AverageRating)
	assert.Equal(t, int64(0), charlie.TotalRatings)
}

func TestStoreRepository_ListForAdmin_SortAndFilter(t *testing.T) {
	f := newStoreFixture(t)

	stores, _, err := f.repo.ListForAdmin(ListFilter{SortBy: "average_rating", SortOrder: query.Desc})
	require.NoError(t, err)
	require.Len(t, stores, 3)
	assert.Equal(t, []uint{f.stores[0].ID, f.stores[1].ID, f.stores[2].ID},
		[]uint{stores[0].ID, stores[1].ID, stores[2].ID})

	stores, pagination, err := f.repo.ListForAdmin(ListFilter{Address: "bravo avenue"})
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, f.stores[1].ID, stores[0].ID)
	assert.Equal(t, int64(1), pagination.Total)
}

func TestStoreRepository_ListForUser(t *testing.T) {
	f := newStoreFixture(t)

	stores, pagination, err := f.repo.ListForUser(f.raters[0].ID, ListFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, stores, 2)
	assert.Equal(t, int64(3), pagination.Total)
	assert.Equal(t, 2, pagination.TotalPages)

	require.NotNil(t, stores[0].UserRating)
	assert.Equal(t, 5, *stores[0].UserRating)
	assert.Equal(t, 4.5, stores[0].AverageRating)
	assert.Equal(t, int64(2), stores[0].TotalRatings)

	require.NotNil(t, stores[1].UserRating)
	assert.Equal(t, 2, *stores[1].UserRating)

	page2, _, err := f.repo.ListForUser(f.raters[0].ID, ListFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Nil(t, page2[0].UserRating)
	assert.Equal(t, int64(0), page2[0].TotalRatings)
}

func TestStoreRepository_ListForUser_OtherUserRatingsNotLeaked(t *testing.T) {
	f := newStoreFixture(t)

	stores, _, err := f.repo.ListForUser(f.raters[1].ID, ListFilter{Name: "bravo"})
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Nil(t, stores[0].UserRating)
	assert.Equal(t, int64(1), stores[0].TotalRatings)
}

func TestStoreRepository_SummaryByOwner(t *testing.T) {
	f := newStoreFixture(t)

	summary, err := f.repo.SummaryByOwner(f.owners[0].ID)
	require.NoError(t, err)
	assert.Equal(t, f.stores[0].ID, summary.ID)
	assert.Equal(t, 4.5, summary.AverageRating)
	assert.Equal(t, int64(2), summary.TotalRatings)
	assert.Equal(t, map[int]int64{1: 0, 2: 0, 3: 0, 4: 1, 5: 1}, summary.RatingDistribution)

	unrated, err := f.repo.SummaryByOwner(f.owners[2].ID)
	require.NoError(t, err)
	assert.Equal(t, float64(0), unrated.AverageRating)
	assert.Equal(t, int64(0), unrated.TotalRatings)

	_, err = f.repo.SummaryByOwner(f.raters[0].ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestStoreRepository_RatersByOwner(t *testing.T) {
	f := newStoreFixture(t)

	raters, err := f.repo.RatersByOwner(f.owners[0].ID)
	require.NoError(t, err)
	require.Len(t, raters, 2)
	// newest rating first
	assert.Equal(t, f.raters[1].ID, raters[0].ID)
	assert.Equal(t, 4, raters[0].Rating)
	assert.Equal(t, f.raters[1].Email, raters[0].Email)

	none, err := f.repo.RatersByOwner(f.owners[2].ID)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestStoreRepository_LookupsAndCounts(t *testing.T) {
	f := newStoreFixture(t)

	store, err := f.repo.FindByID(f.stores[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Alpha@stores.com", store.Email)

	_, err = f.repo.FindByID(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	store, err = f.repo.FindByOwnerID(f.owners[1].ID)
	require.NoError(t, err)
	assert.Equal(t, f.stores[1].ID, store.ID)

	_, err = f.repo.FindByEmail("nobody@stores.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	count, err := f.repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	all, err := f.repo.ListAllSummaries()
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "Alpha Owner Full Name", all[0].OwnerName)
}

func TestStoreRepository_OneStorePerOwner(t *testing.T) {
	f := newStoreFixture(t)

	err := f.repo.Create(&model.Store{
		Name:    "Second Store Same Owner",
		Email:   "second@stores.com",
		Address: "1 Elsewhere Road",
		OwnerID: f.owners[0].ID,
	})
	assert.Error(t, err)
}
