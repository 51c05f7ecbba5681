package model

import (
	"time"
)

type UserRole string

const (
	RoleAdmin      UserRole = "admin"       // system administrator
	RoleUser       UserRole = "user"        // normal user, submits ratings
	RoleStoreOwner UserRole = "store_owner" // owns exactly one store
)

// Roles lists every valid role in display order.
var Roles = []UserRole{RoleAdmin, RoleUser, RoleStoreOwner}

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleStoreOwner:
		return true
	default:
		return false
	}
}

func (r UserRole) String() string {
	return string(r)
}

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Name         string    `gorm:"type:varchar(60);not null" json:"name"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password;not null" json:"-"`
	Address      string    `gorm:"type:varchar(400)" json:"address"`
	Role         UserRole  `gorm:"type:varchar(20);not null;default:'user';index" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
