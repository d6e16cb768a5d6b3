package models

import (
	"time"
)

// Post represents a feed post. A post always owns at least one PostImage;
// creation of the post and its images is a single transaction.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	Caption   string    `gorm:"type:text" json:"caption"`
	Location  string    `json:"location"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// LikesCount is not persisted; computed at query time.
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time.
	CommentsCount int `gorm:"->" json:"comments_count"`

	// Images and IsLiked are assembled by the feed aggregator from batch
	// queries, never preloaded row-by-row.
	Images  []PostImage `gorm:"-" json:"images"`
	IsLiked bool        `gorm:"-" json:"is_liked"`
}

// PostImage is one image of a post. Images are immutable once created.
type PostImage struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PostID          uint      `gorm:"not null;index" json:"post_id"`
	UserID          uint      `gorm:"not null" json:"user_id"`
	ImageURL        string    `gorm:"not null" json:"image_url"`
	ExternalMediaID string    `json:"external_media_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
