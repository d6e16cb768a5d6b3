package service

import (
	"context"
	"errors"

	"glimpse/internal/cache"
	"glimpse/internal/models"
	"glimpse/internal/notifications"
	"glimpse/internal/pagination"
	"glimpse/internal/repository"

	"gorm.io/gorm"
)

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	notifier   *notifications.Notifier
}

func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	notifier *notifications.Notifier,
) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		notifier:   notifier,
	}
}

// ToggleFollow flips whether userID follows targetID and reports the
// resulting state. Following yourself is rejected outright rather than
// silently suppressed.
func (s *FollowService) ToggleFollow(ctx context.Context, userID, targetID uint) (bool, error) {
	if userID == targetID {
		return false, models.NewValidationError("You cannot follow yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, models.NewNotFoundError("User", targetID)
		}
		return false, err
	}

	created, err := s.followRepo.Follow(ctx, userID, targetID)
	if err != nil {
		return false, err
	}
	if created {
		// One notification per not-following -> following transition.
		if s.notifier != nil {
			s.notifier.FollowStarted(ctx, userID, targetID)
		}
		cache.InvalidateUser(ctx, targetID)
		cache.InvalidateUser(ctx, userID)
		return true, nil
	}

	// Edge already existed: this toggle unfollows. No notification.
	if _, err := s.followRepo.Unfollow(ctx, userID, targetID); err != nil {
		return false, err
	}
	cache.InvalidateUser(ctx, targetID)
	cache.InvalidateUser(ctx, userID)
	return false, nil
}

func (s *FollowService) IsFollowing(ctx context.Context, userID, targetID uint) (bool, error) {
	return s.followRepo.IsFollowing(ctx, userID, targetID)
}

const maxFollowListLimit = 50

// FollowListEntry pairs a user with whether the viewer follows them.
type FollowListEntry struct {
	models.UserSummary
	IsFollowing bool `json:"is_following"`
}

// FollowListPage is one page of a followers or following list. NextCursor
// is zero when the list is exhausted.
type FollowListPage struct {
	Users      []*FollowListEntry `json:"users"`
	NextCursor uint               `json:"next_cursor,omitempty"`
}

type FollowListInput struct {
	UserID   uint
	ViewerID uint
	Limit    int
	Cursor   uint
}

func (s *FollowService) GetFollowers(ctx context.Context, in FollowListInput) (*FollowListPage, error) {
	return s.listPage(ctx, in, s.followRepo.Followers)
}

func (s *FollowService) GetFollowing(ctx context.Context, in FollowListInput) (*FollowListPage, error) {
	return s.listPage(ctx, in, s.followRepo.Following)
}

func (s *FollowService) listPage(
	ctx context.Context,
	in FollowListInput,
	fetch func(context.Context, uint, int, uint) ([]*models.User, error),
) (*FollowListPage, error) {
	limit, err := pagination.Normalize(in.Limit, pagination.DefaultLimit, maxFollowListLimit)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, in.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", in.UserID)
		}
		return nil, err
	}

	rows, err := fetch(ctx, in.UserID, limit+1, in.Cursor)
	if err != nil {
		return nil, err
	}
	users, next := pagination.Cut(rows, limit, func(u *models.User) uint { return u.ID })

	// One batch query resolves the viewer's follow state for the whole page.
	followed := make(map[uint]bool)
	if in.ViewerID != 0 {
		ids := make([]uint, 0, len(users))
		for _, u := range users {
			if u.ID != in.ViewerID {
				ids = append(ids, u.ID)
			}
		}
		followedIDs, err := s.followRepo.FollowingAmong(ctx, in.ViewerID, ids)
		if err != nil {
			return nil, err
		}
		for _, id := range followedIDs {
			followed[id] = true
		}
	}

	entries := make([]*FollowListEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, &FollowListEntry{
			UserSummary: u.Summary(),
			IsFollowing: followed[u.ID],
		})
	}
	return &FollowListPage{Users: entries, NextCursor: next}, nil
}
