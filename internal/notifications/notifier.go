// Package notifications derives and persists the notification side effects
// of mutating actions. The fan-out runs synchronously inside the mutation
// that triggers it, after the primary write has succeeded; a failed fan-out
// never fails the action that caused it.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"glimpse/internal/cache"
	"glimpse/internal/middleware"
	"glimpse/internal/models"
	"glimpse/internal/repository"

	"github.com/redis/go-redis/v9"
)

// Notifier fans notifications out to the store and, best-effort, to the
// receiver's Redis channel for any live delivery layer listening on it.
type Notifier struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
}

// NewNotifier creates a new fan-out notifier.
func NewNotifier(notificationRepo repository.NotificationRepository, userRepo repository.UserRepository) *Notifier {
	return &Notifier{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
	}
}

// UserChannel derives the Redis channel a user's notifications publish to.
func UserChannel(userID uint) string {
	return "notifications:user:" + strconv.FormatUint(uint64(userID), 10)
}

// FollowStarted records a FOLLOW notification for the newly followed user.
// Callers invoke it only on the not-following -> following transition, so a
// toggle flapped off and on produces one notification per true transition.
func (n *Notifier) FollowStarted(ctx context.Context, actorID, targetID uint) {
	if actorID == targetID {
		return
	}
	n.fanOut(ctx, &models.Notification{
		NotificationType: models.NotificationFollow,
		ReceiverID:       targetID,
		SenderID:         actorID,
	}, "%s started following you")
}

// PostLiked records a POST_LIKED notification for the post's author. Likes
// on one's own post are suppressed.
func (n *Notifier) PostLiked(ctx context.Context, actorID uint, post *models.Post) {
	if actorID == post.UserID {
		return
	}
	n.fanOut(ctx, &models.Notification{
		NotificationType: models.NotificationPostLiked,
		ReceiverID:       post.UserID,
		SenderID:         actorID,
		PostID:           &post.ID,
	}, "%s liked your post")
}

// PostCommented records a COMMENTED notification for the post's author.
// Comments on one's own post are suppressed.
func (n *Notifier) PostCommented(ctx context.Context, actorID uint, post *models.Post) {
	if actorID == post.UserID {
		return
	}
	n.fanOut(ctx, &models.Notification{
		NotificationType: models.NotificationCommented,
		ReceiverID:       post.UserID,
		SenderID:         actorID,
		PostID:           &post.ID,
	}, "%s commented on your post")
}

func (n *Notifier) fanOut(ctx context.Context, notification *models.Notification, format string) {
	sender, err := n.userRepo.GetByID(ctx, notification.SenderID)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "Notification fan-out: sender lookup failed",
			"sender_id", notification.SenderID,
			"error", err,
		)
		middleware.FanoutNotifications.WithLabelValues(string(notification.NotificationType), "error").Inc()
		return
	}
	notification.Message = fmt.Sprintf(format, sender.DisplayName())

	if err := n.notificationRepo.Create(ctx, notification); err != nil {
		middleware.Logger.ErrorContext(ctx, "Notification fan-out: persist failed",
			"receiver_id", notification.ReceiverID,
			"type", notification.NotificationType,
			"error", err,
		)
		middleware.FanoutNotifications.WithLabelValues(string(notification.NotificationType), "error").Inc()
		return
	}
	middleware.FanoutNotifications.WithLabelValues(string(notification.NotificationType), "ok").Inc()

	n.publish(ctx, notification)
}

// publish pushes the stored notification onto the receiver's channel. Purely
// best-effort: no Redis, no delivery.
func (n *Notifier) publish(ctx context.Context, notification *models.Notification) {
	rdb := cache.GetClient()
	if rdb == nil {
		return
	}
	payload, err := json.Marshal(notification)
	if err != nil {
		return
	}
	if err := rdb.Publish(ctx, UserChannel(notification.ReceiverID), payload).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "Notification fan-out: publish failed",
			"receiver_id", notification.ReceiverID,
			"error", err,
		)
	}
}

// StartSubscriber subscribes to every user notification channel and invokes
// onMessage per delivery. A live delivery layer (push, SSE) hangs off this.
func StartSubscriber(ctx context.Context, rdb *redis.Client, onMessage func(channel, payload string)) error {
	if rdb == nil {
		return nil
	}
	sub := rdb.PSubscribe(ctx, "notifications:user:*")
	ch := sub.Channel()
	go func() {
		for msg := range ch {
			onMessage(msg.Channel, msg.Payload)
		}
	}()
	return nil
}
