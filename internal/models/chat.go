package models

import (
	"time"
)

// Chat is a direct (1:1) or group conversation. Direct chats have exactly two
// members and at most one direct chat exists per unordered pair of users.
type Chat struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	IsGroup    bool      `gorm:"default:false" json:"is_group"`
	GroupName  string    `json:"group_name,omitempty"`
	GroupImage string    `json:"group_image,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Members []ChatUser `gorm:"foreignKey:ChatID" json:"members,omitempty"`

	// MessagesCount is not persisted; computed at query time. It drives the
	// chat list ordering (most-messaged first).
	MessagesCount int `gorm:"->" json:"-"`
}

// ChatUser is a chat membership row. There are no roles; every member has the
// same capabilities.
type ChatUser struct {
	ChatID    uint      `gorm:"primaryKey" json:"chat_id"`
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	CreatedAt time.Time `json:"joined_at"`

	User User `gorm:"foreignKey:UserID" json:"user"`
}

// Message is a single chat message. The sender must be a member of the chat
// at send time.
type Message struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ChatID      uint      `gorm:"not null;index" json:"chat_id"`
	SenderID    uint      `gorm:"not null;index" json:"sender_id"`
	MessageText string    `gorm:"type:text;not null" json:"message_text"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`

	Sender User `gorm:"foreignKey:SenderID" json:"sender"`

	// IsOwnMessage is relative to the requesting user; set by the
	// conversation aggregator, never stored.
	IsOwnMessage bool `gorm:"-" json:"is_own_message"`
}
