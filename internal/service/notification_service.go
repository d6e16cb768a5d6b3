package service

import (
	"context"
	"errors"
	"time"

	"glimpse/internal/models"
	"glimpse/internal/pagination"
	"glimpse/internal/repository"

	"gorm.io/gorm"
)

const maxNotificationsLimit = 50

type NotificationService struct {
	notificationRepo repository.NotificationRepository
	postRepo         repository.PostRepository

	// now is swappable so bucket boundaries can be pinned in tests.
	now func() time.Time
}

type MyNotificationsInput struct {
	UserID     uint
	Limit      int
	Cursor     uint
	OnlyUnread bool
}

type NotificationsPage struct {
	Notifications []*models.Notification `json:"notifications"`
	NextCursor    uint                   `json:"next_cursor,omitempty"`
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	postRepo repository.PostRepository,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		postRepo:         postRepo,
		now:              time.Now,
	}
}

// GetMyNotifications pages the user's notifications newest-first, tagging
// each with its read-time bucket and, for post-linked notifications, the
// post's cover image for the thumbnail.
func (s *NotificationService) GetMyNotifications(ctx context.Context, in MyNotificationsInput) (*NotificationsPage, error) {
	limit, err := pagination.Normalize(in.Limit, pagination.DefaultLimit, maxNotificationsLimit)
	if err != nil {
		return nil, err
	}
	key, err := resolveCursor(ctx, s.notificationRepo.KeyOf, in.Cursor)
	if err != nil {
		return nil, err
	}
	rows, err := s.notificationRepo.ByReceiver(ctx, in.UserID, in.OnlyUnread, key, limit+1)
	if err != nil {
		return nil, err
	}
	notifications, next := pagination.Cut(rows, limit, func(n *models.Notification) uint { return n.ID })

	now := s.now()
	for _, n := range notifications {
		n.Bucket = bucketFor(n.CreatedAt, now)
	}
	if err := s.attachPreviews(ctx, notifications); err != nil {
		return nil, err
	}
	return &NotificationsPage{Notifications: notifications, NextCursor: next}, nil
}

// bucketFor assigns the display bucket from wall-clock now. Buckets are
// computed at read time, never stored, so a notification migrates between
// buckets as time passes.
func bucketFor(createdAt, now time.Time) string {
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	switch {
	case !createdAt.Before(startOfToday):
		return models.BucketToday
	case !createdAt.Before(startOfMonth):
		return models.BucketThisMonth
	default:
		return models.BucketEarlier
	}
}

// attachPreviews batch-loads the cover image for every post-linked
// notification on the page in one query.
func (s *NotificationService) attachPreviews(ctx context.Context, notifications []*models.Notification) error {
	var postIDs []uint
	seen := map[uint]struct{}{}
	for _, n := range notifications {
		if n.PostID == nil {
			continue
		}
		if _, ok := seen[*n.PostID]; ok {
			continue
		}
		seen[*n.PostID] = struct{}{}
		postIDs = append(postIDs, *n.PostID)
	}
	if len(postIDs) == 0 {
		return nil
	}
	grouped, err := s.postRepo.ImagesByPostIDs(ctx, postIDs)
	if err != nil {
		return err
	}
	for _, n := range notifications {
		if n.PostID == nil {
			continue
		}
		if images := grouped[*n.PostID]; len(images) > 0 {
			n.PreviewImageURL = images[0].ImageURL
		} else {
			n.PreviewImageURL = PlaceholderImageURL
		}
	}
	return nil
}

// getOwned loads a notification and hides other users' notifications behind
// a not-found, so ids cannot be probed.
func (s *NotificationService) getOwned(ctx context.Context, userID, id uint) (*models.Notification, error) {
	notification, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Notification", id)
		}
		return nil, err
	}
	if notification.ReceiverID != userID {
		return nil, models.NewNotFoundError("Notification", id)
	}
	return notification, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID, id uint) (*models.Notification, error) {
	notification, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.notificationRepo.MarkAsRead(ctx, id); err != nil {
		return nil, err
	}
	notification.IsRead = true
	return notification, nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uint) error {
	return s.notificationRepo.MarkAllAsRead(ctx, userID)
}

func (s *NotificationService) DeleteNotification(ctx context.Context, userID, id uint) error {
	if _, err := s.getOwned(ctx, userID, id); err != nil {
		return err
	}
	return s.notificationRepo.Delete(ctx, id)
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.notificationRepo.UnreadCount(ctx, userID)
}
