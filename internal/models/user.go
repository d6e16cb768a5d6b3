// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents an account in the Glimpse application.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"unique;not null" json:"username"`
	Name      string    `json:"name"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Bio       string    `json:"bio"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Counts are not persisted; computed at query time.
	PostsCount     int `gorm:"->" json:"posts_count,omitempty"`
	FollowersCount int `gorm:"->" json:"followers_count,omitempty"`
	FollowingCount int `gorm:"->" json:"following_count,omitempty"`
}

// UserSummary is the compact user shape embedded in feed items, stories,
// chat participant lists and notifications.
type UserSummary struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Image    string `json:"image"`
}

// Summary returns the compact embeddable shape of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		Image:    u.Image,
	}
}

// DisplayName returns the user's name, falling back to the username.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
