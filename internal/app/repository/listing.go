package repository

import (
	"github.com/ikkim/storerating-backend/pkg/logger"
	"github.com/ikkim/storerating-backend/pkg/query"
	"gorm.io/gorm"
)

// ListFilter is a validated listing request. Empty fields are ignored.
type ListFilter struct {
	Name      string
	Email     string
	Address   string
	Role      string
	SortBy    string
	SortOrder query.SortOrder
	Page      int
	Limit     int
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

var userListing = query.Resource{
	Table:   "users",
	Columns: "id, name, email, address, role, created_at, updated_at",
	SortColumns: map[string]string{
		"name":       "name",
		"email":      "email",
		"address":    "address",
		"role":       "role",
		"created_at": "created_at",
	},
	DefaultSort: "name",
	TieBreaker:  "id",
}

var adminStoreListing = query.Resource{
	Table:          "stores s",
	Joins:          []string{"JOIN users u ON u.id = s.owner_id"},
	AggregateJoins: "LEFT JOIN ratings r ON r.store_id = s.id",
	Columns: "s.id, s.name, s.email, s.address, s.owner_id, u.name AS owner_name, " +
		"COALESCE(AVG(r.rating), 0) AS average_rating, COUNT(r.id) AS total_ratings, s.created_at",
	GroupBy: "s.id, s.name, s.email, s.address, s.owner_id, u.name, s.created_at",
	SortColumns: map[string]string{
		"name":           "s.name",
		"email":          "s.email",
		"address":        "s.address",
		"average_rating": "average_rating",
		"created_at":     "s.created_at",
	},
	DefaultSort: "name",
	TieBreaker:  "s.id",
}

// userStoreListing binds the acting user id into the ur join.
var userStoreListing = query.Resource{
	Table: "stores s",
	AggregateJoins: "LEFT JOIN ratings r ON r.store_id = s.id " +
		"LEFT JOIN ratings ur ON ur.store_id = s.id AND ur.user_id = ?",
	Columns: "s.id, s.name, s.address, COALESCE(AVG(r.rating), 0) AS average_rating, " +
		"COUNT(r.id) AS total_ratings, ur.rating AS user_rating",
	GroupBy: "s.id, s.name, s.address, ur.rating",
	SortColumns: map[string]string{
		"name":           "s.name",
		"address":        "s.address",
		"average_rating": "average_rating",
	},
	DefaultSort: "name",
	TieBreaker:  "s.id",
}

// Sort keys accepted by each listing, default first.
var (
	UserSortKeys       = []string{"name", "email", "address", "role", "created_at"}
	AdminStoreSortKeys = []string{"name", "email", "address", "average_rating", "created_at"}
	UserStoreSortKeys  = []string{"name", "address", "average_rating"}
)

func newBuilder(res query.Resource, f ListFilter) *query.Builder {
	return query.New(res).
		SortBy(f.SortBy, f.SortOrder).
		Paginate(f.Page, f.Limit)
}

// runListing counts the matching rows and loads the requested page.
func runListing[T any](db *gorm.DB, b *query.Builder) ([]T, Pagination, error) {
	pagination := Pagination{Page: b.Page(), Limit: b.Limit()}

	if err := b.CountQuery(db).Count(&pagination.Total).Error; err != nil {
		return nil, pagination, err
	}
	pagination.TotalPages = query.TotalPages(pagination.Total, b.Limit())

	logger.Debug("Running listing query", map[string]interface{}{
		"page":   b.Page(),
		"limit":  b.Limit(),
		"offset": b.Offset(),
		"total":  pagination.Total,
	})

	items := make([]T, 0, b.Limit())
	if err := b.RowsQuery(db).Scan(&items).Error; err != nil {
		return nil, pagination, err
	}
	return items, pagination, nil
}
