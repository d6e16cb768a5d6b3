package repository

import (
	"context"

	"glimpse/internal/models"
	"glimpse/internal/pagination"

	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id uint) (*models.Notification, error)
	ByReceiver(ctx context.Context, receiverID uint, onlyUnread bool, key *pagination.Key, limit int) ([]*models.Notification, error)
	KeyOf(ctx context.Context, id uint) (*pagination.Key, error)
	MarkAsRead(ctx context.Context, id uint) error
	MarkAllAsRead(ctx context.Context, receiverID uint) error
	Delete(ctx context.Context, id uint) error
	UnreadCount(ctx context.Context, receiverID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).First(&notification, id).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// ByReceiver returns one overfetched page of a user's notifications with
// their senders preloaded, newest first.
func (r *notificationRepository) ByReceiver(ctx context.Context, receiverID uint, onlyUnread bool, key *pagination.Key, limit int) ([]*models.Notification, error) {
	db := r.db.WithContext(ctx).
		Preload("Sender").
		Where("receiver_id = ?", receiverID)
	if onlyUnread {
		db = db.Where("NOT is_read")
	}
	var notifications []*models.Notification
	err := db.
		Scopes(pagination.Scope("notifications.created_at", key)).
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) KeyOf(ctx context.Context, id uint) (*pagination.Key, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).Select("id", "created_at").First(&notification, id).Error; err != nil {
		return nil, err
	}
	return &pagination.Key{CreatedAt: notification.CreatedAt, ID: notification.ID}, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, receiverID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("receiver_id = ? AND NOT is_read", receiverID).
		Update("is_read", true).Error
}

func (r *notificationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Notification{}, id).Error
}

func (r *notificationRepository) UnreadCount(ctx context.Context, receiverID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("receiver_id = ? AND NOT is_read", receiverID).
		Count(&count).Error
	return count, err
}
