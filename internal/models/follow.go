package models

import (
	"time"
)

// Follow represents a follower -> following edge.
// The (FollowerID, FollowingID) pair must be unique and self-follows are
// rejected before any write. Accepted defaults to true; private-account
// approval is not part of this system.
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_follower_following" json:"follower_id"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_follower_following" json:"following_id"`
	Accepted    bool      `gorm:"default:true" json:"accepted"`
	CreatedAt   time.Time `json:"created_at"`

	Follower  User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Following User `gorm:"foreignKey:FollowingID" json:"following,omitempty"`
}
