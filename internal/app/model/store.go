package model

import (
	"time"
)

type Store struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(60);not null" json:"name"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Address   string    `gorm:"type:varchar(400)" json:"address"`
	OwnerID   uint      `gorm:"not null;uniqueIndex" json:"owner_id"`
	Owner     *User     `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Store) TableName() string {
	return "stores"
}

// StoreSummary is a store row joined with its rating aggregates.
type StoreSummary struct {
	ID            uint       `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email,omitempty"`
	Address       string     `json:"address"`
	OwnerID       uint       `json:"owner_id,omitempty"`
	OwnerName     string     `json:"owner_name,omitempty"`
	AverageRating float64    `json:"average_rating"`
	TotalRatings  int64      `json:"total_ratings"`
	UserRating    *int       `json:"user_rating,omitempty"` // acting user's own rating, user listing only
	CreatedAt     *time.Time `json:"created_at,omitempty"`

	RatingDistribution map[int]int64 `gorm:"-" json:"rating_distribution,omitempty"` // count per star, my-store only
}

// StoreRater is one rating on an owner's store together with the rating user.
type StoreRater struct {
	ID        uint      `json:"id"` // user id
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}
