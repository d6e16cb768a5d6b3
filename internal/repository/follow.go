package repository

import (
	"context"

	"glimpse/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines the interface for follow-graph data operations
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followingID uint) (bool, error)
	Unfollow(ctx context.Context, followerID, followingID uint) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	FollowingIDs(ctx context.Context, followerID uint) ([]uint, error)
	FollowingAmong(ctx context.Context, followerID uint, ids []uint) ([]uint, error)
	Followers(ctx context.Context, userID uint, limit int, cursor uint) ([]*models.User, error)
	Following(ctx context.Context, userID uint, limit int, cursor uint) ([]*models.User, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Follow inserts the edge if absent; the unique index on
// (follower_id, following_id) absorbs concurrent duplicates. Returns whether
// this call created the edge.
func (r *followRepository) Follow(ctx context.Context, followerID, followingID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Follow{FollowerID: followerID, FollowingID: followingID, Accepted: true})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *followRepository) Unfollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ? AND accepted", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

// FollowingIDs returns the ids of everyone the user follows. The story rail
// derives its visibility set from this plus the user's own id.
func (r *followRepository) FollowingIDs(ctx context.Context, followerID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND accepted", followerID).
		Pluck("following_id", &ids).Error
	return ids, err
}

// FollowingAmong narrows ids down to the ones followerID follows. Used to
// batch-resolve the viewer's follow state over one page of users.
func (r *followRepository) FollowingAmong(ctx context.Context, followerID uint, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []uint
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id IN ? AND accepted", followerID, ids).
		Pluck("following_id", &out).Error
	return out, err
}

func (r *followRepository) Followers(ctx context.Context, userID uint, limit int, cursor uint) ([]*models.User, error) {
	q := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.following_id = ? AND follows.accepted", userID).
		Order("users.id DESC").
		Limit(limit)
	if cursor > 0 {
		q = q.Where("users.id <= ?", cursor)
	}
	var users []*models.User
	err := q.Find(&users).Error
	return users, err
}

func (r *followRepository) Following(ctx context.Context, userID uint, limit int, cursor uint) ([]*models.User, error) {
	q := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.following_id = users.id").
		Where("follows.follower_id = ? AND follows.accepted", userID).
		Order("users.id DESC").
		Limit(limit)
	if cursor > 0 {
		q = q.Where("users.id <= ?", cursor)
	}
	var users []*models.User
	err := q.Find(&users).Error
	return users, err
}
