// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User is a registered account. Email and username are globally unique.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Username  string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	FirstName string    `gorm:"size:150;not null" json:"first_name"`
	LastName  string    `gorm:"size:150;not null" json:"last_name"`
	Password  string    `gorm:"not null" json:"-"`
	Avatar    string    `json:"avatar"`
	IsAdmin   bool      `gorm:"default:false" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"-"`
	UpdatedAt time.Time `json:"-"`

	// IsSubscribed reports whether the requesting user follows this user (computed)
	IsSubscribed bool `gorm:"->;-:migration" json:"is_subscribed"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
