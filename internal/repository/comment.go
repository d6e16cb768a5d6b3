package repository

import (
	"context"

	"glimpse/internal/models"
	"glimpse/internal/pagination"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	KeyOf(ctx context.Context, id uint) (*pagination.Key, error)
	ByPostID(ctx context.Context, postID uint, key *pagination.Key, limit int) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return err
	}
	// Reload the author so callers can render the comment without a second
	// round trip.
	return r.db.WithContext(ctx).First(&comment.User, comment.UserID).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&comment, id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// KeyOf resolves a cursor id into its keyset position.
func (r *commentRepository) KeyOf(ctx context.Context, id uint) (*pagination.Key, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Select("id", "created_at").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &pagination.Key{CreatedAt: comment.CreatedAt, ID: comment.ID}, nil
}

// ByPostID returns one page of a post's comments, newest first.
func (r *commentRepository) ByPostID(ctx context.Context, postID uint, key *pagination.Key, limit int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Scopes(pagination.Scope("created_at", key)).
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).
		Model(&models.Comment{ID: comment.ID}).
		Update("content", comment.Content).Error
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error
}
