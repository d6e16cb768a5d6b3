package models

import (
	"time"
)

// NotificationType enumerates the fan-out notification kinds.
type NotificationType string

const (
	NotificationFollow    NotificationType = "FOLLOW"
	NotificationPostLiked NotificationType = "POST_LIKED"
	NotificationCommented NotificationType = "COMMENTED"
	NotificationMentioned NotificationType = "MENTIONED"
)

// Notification bucket labels, computed from wall-clock time at read time.
const (
	BucketToday     = "today"
	BucketThisMonth = "this_month"
	BucketEarlier   = "earlier"
)

// Notification is a derived side effect of a mutating action (follow, like,
// comment). It is only ever mutated by its receiver (read state) and deleted
// explicitly by its receiver.
type Notification struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	NotificationType NotificationType `gorm:"size:20;not null" json:"notification_type"`
	Message          string           `gorm:"not null" json:"message"`
	IsRead           bool             `gorm:"default:false;index" json:"is_read"`
	ReceiverID       uint             `gorm:"not null;index" json:"receiver_id"`
	SenderID         uint             `gorm:"not null" json:"sender_id"`
	PostID           *uint            `gorm:"index" json:"post_id,omitempty"`
	CreatedAt        time.Time        `gorm:"index" json:"created_at"`

	Sender User  `gorm:"foreignKey:SenderID" json:"sender"`
	Post   *Post `gorm:"foreignKey:PostID" json:"-"`

	// Bucket is the read-time grouping label (today / this_month / earlier);
	// never stored.
	Bucket string `gorm:"-" json:"bucket,omitempty"`
	// PreviewImageURL is the referenced post's cover image, assembled at read
	// time for deep-link previews.
	PreviewImageURL string `gorm:"-" json:"preview_image_url,omitempty"`
}
