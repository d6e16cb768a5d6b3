// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"strings"

	"glimpse/internal/cache"
	"glimpse/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Search(ctx context.Context, query string, limit int, key *SearchKey) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// applyUserCounts adds subqueries for the profile counters in a single query.
func applyUserCounts(db *gorm.DB) *gorm.DB {
	return db.Select("users.*, " +
		"(SELECT COUNT(*) FROM posts WHERE posts.user_id = users.id) as posts_count, " +
		"(SELECT COUNT(*) FROM follows WHERE follows.following_id = users.id AND follows.accepted) as followers_count, " +
		"(SELECT COUNT(*) FROM follows WHERE follows.follower_id = users.id AND follows.accepted) as following_count")
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		return applyUserCounts(r.db.WithContext(ctx).Model(&models.User{})).
			First(&user, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []uint) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []*models.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := applyUserCounts(r.db.WithContext(ctx).Model(&models.User{})).
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchKey is the position of a search cursor in the (username ASC, id ASC)
// order. Usernames are unique, so the id only breaks ties defensively.
type SearchKey struct {
	Username string
	ID       uint
}

// Search matches username or display name, case-insensitively. LOWER/LIKE
// instead of ILIKE so the same query runs on the sqlite test database.
// A non-nil key resumes at the cursor row inclusively.
func (r *userRepository) Search(ctx context.Context, query string, limit int, key *SearchKey) ([]*models.User, error) {
	like := "%" + strings.ToLower(query) + "%"
	q := r.db.WithContext(ctx).
		Where("LOWER(username) LIKE ? OR LOWER(name) LIKE ?", like, like).
		Order("username ASC, id ASC").
		Limit(limit)
	if key != nil {
		q = q.Where("username > ? OR (username = ? AND id >= ?)", key.Username, key.Username, key.ID)
	}
	var users []*models.User
	err := q.Find(&users).Error
	return users, err
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return err
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}
