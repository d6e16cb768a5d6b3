package repository

import (
	"context"
	"time"

	"glimpse/internal/models"

	"gorm.io/gorm"
)

// StoryRepository defines the interface for story data operations
type StoryRepository interface {
	Create(ctx context.Context, story *models.Story) error
	GetByID(ctx context.Context, id uint) (*models.Story, error)
	Delete(ctx context.Context, id uint) error
	ActiveByUserIDs(ctx context.Context, userIDs []uint, now time.Time) ([]*models.Story, error)
	AllActive(ctx context.Context, now time.Time) ([]*models.Story, error)
	ActiveByUserID(ctx context.Context, userID uint, now time.Time) ([]*models.Story, error)
	ByUserID(ctx context.Context, userID uint) ([]*models.Story, error)
}

type storyRepository struct {
	db *gorm.DB
}

// NewStoryRepository creates a new story repository
func NewStoryRepository(db *gorm.DB) StoryRepository {
	return &storyRepository{db: db}
}

func (r *storyRepository) Create(ctx context.Context, story *models.Story) error {
	return r.db.WithContext(ctx).Create(story).Error
}

func (r *storyRepository) GetByID(ctx context.Context, id uint) (*models.Story, error) {
	var story models.Story
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&story, id).Error
	if err != nil {
		return nil, err
	}
	return &story, nil
}

func (r *storyRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Story{}, id).Error
}

// ActiveByUserIDs returns the non-expired stories of the given authors,
// newest first. Expiry is strict: a story whose expires_at equals now is
// already inactive.
func (r *storyRepository) ActiveByUserIDs(ctx context.Context, userIDs []uint, now time.Time) ([]*models.Story, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var stories []*models.Story
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id IN ? AND expires_at > ?", userIDs, now).
		Order("created_at DESC, id DESC").
		Find(&stories).Error
	return stories, err
}

// AllActive returns every non-expired story, newest first. Serves the
// anonymous explore rail, which has no visibility filter.
func (r *storyRepository) AllActive(ctx context.Context, now time.Time) ([]*models.Story, error) {
	var stories []*models.Story
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("expires_at > ?", now).
		Order("created_at DESC, id DESC").
		Find(&stories).Error
	return stories, err
}

// ActiveByUserID returns one author's non-expired stories, oldest first, the
// order a story viewer plays them in.
func (r *storyRepository) ActiveByUserID(ctx context.Context, userID uint, now time.Time) ([]*models.Story, error) {
	var stories []*models.Story
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ? AND expires_at > ?", userID, now).
		Order("created_at ASC, id ASC").
		Find(&stories).Error
	return stories, err
}

// ByUserID returns all of an author's stories, expired included. Used by the
// author's own archive view.
func (r *storyRepository) ByUserID(ctx context.Context, userID uint) ([]*models.Story, error) {
	var stories []*models.Story
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&stories).Error
	return stories, err
}
