package models

import (
	"time"
)

// StoryLifetime is how long a story stays visible after creation.
const StoryLifetime = 24 * time.Hour

// Story is an ephemeral image post. A story is active while now < ExpiresAt;
// expiry is a read-side filter, expired rows are only removed by an explicit
// owner delete.
type Story struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ImageURL  string    `gorm:"not null" json:"image_url"`
	Text      string    `json:"text,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`

	User User `gorm:"foreignKey:UserID" json:"user"`
}

// Active reports whether the story is still visible at the given instant.
// The boundary is strict: a story whose ExpiresAt equals now is expired.
func (s *Story) Active(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// AuthorStoryGroup is one rail entry: an author and their active stories.
// The story rail paginates over these groups, not over individual stories.
type AuthorStoryGroup struct {
	User    UserSummary `json:"user"`
	Stories []*Story    `json:"stories"`
}
