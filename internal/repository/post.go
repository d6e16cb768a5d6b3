package repository

import (
	"context"

	"glimpse/internal/cache"
	"glimpse/internal/models"
	"glimpse/internal/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post, images []models.PostImage) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Feed(ctx context.Context, key *pagination.Key, limit int) ([]*models.Post, error)
	ByUserID(ctx context.Context, userID uint, key *pagination.Key, limit int) ([]*models.Post, error)
	KeyOf(ctx context.Context, id uint) (*pagination.Key, error)
	ImagesByPostIDs(ctx context.Context, postIDs []uint) (map[uint][]models.PostImage, error)
	LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	Like(ctx context.Context, userID, postID uint) (bool, error)
	Unlike(ctx context.Context, userID, postID uint) (bool, error)
	LikeKeyOf(ctx context.Context, id uint) (*pagination.Key, error)
	LikesByPost(ctx context.Context, postID uint, key *pagination.Key, limit int) ([]*models.Like, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// applyPostCounts adds subqueries to fetch both counters in the page query
// itself, so a page never fans out into per-post COUNT round trips.
func applyPostCounts(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) as comments_count")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post, images []models.PostImage) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		if len(images) == 0 {
			return nil
		}
		for i := range images {
			images[i].PostID = post.ID
			images[i].UserID = post.UserID
		}
		return tx.Create(&images).Error
	})
	if err != nil {
		return err
	}
	post.Images = images
	cache.InvalidateFeed(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := applyPostCounts(r.db.WithContext(ctx).Model(&models.Post{})).
		Preload("User").
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Feed returns one overfetched page of the global feed. Callers pass
// limit+1 through Cut to derive the next cursor.
func (r *postRepository) Feed(ctx context.Context, key *pagination.Key, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	err := applyPostCounts(r.db.WithContext(ctx).Model(&models.Post{})).
		Preload("User").
		Scopes(pagination.Scope("posts.created_at", key)).
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ByUserID(ctx context.Context, userID uint, key *pagination.Key, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	err := applyPostCounts(r.db.WithContext(ctx).Model(&models.Post{})).
		Preload("User").
		Where("posts.user_id = ?", userID).
		Scopes(pagination.Scope("posts.created_at", key)).
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// KeyOf resolves a cursor id into its keyset position. A cursor pointing at
// a since-deleted row is indistinguishable from a bogus one; both surface
// gorm.ErrRecordNotFound.
func (r *postRepository) KeyOf(ctx context.Context, id uint) (*pagination.Key, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Select("id", "created_at").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &pagination.Key{CreatedAt: post.CreatedAt, ID: post.ID}, nil
}

// ImagesByPostIDs batch-loads the images for a page of posts in one query,
// grouped by post and ordered oldest-first so index 0 is the cover image.
func (r *postRepository) ImagesByPostIDs(ctx context.Context, postIDs []uint) (map[uint][]models.PostImage, error) {
	if len(postIDs) == 0 {
		return map[uint][]models.PostImage{}, nil
	}
	var images []models.PostImage
	err := r.db.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Order("post_id ASC, id ASC").
		Find(&images).Error
	if err != nil {
		return nil, err
	}
	grouped := make(map[uint][]models.PostImage, len(postIDs))
	for _, img := range images {
		grouped[img.PostID] = append(grouped[img.PostID], img)
	}
	return grouped, nil
}

func (r *postRepository) LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var likedPostIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &likedPostIDs).Error
	return likedPostIDs, err
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).
		Model(&models.Post{ID: post.ID}).
		Updates(map[string]any{"caption": post.Caption, "location": post.Location}).Error
	if err == nil {
		cache.InvalidateFeed(ctx)
	}
	return err
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.PostImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err == nil {
		cache.InvalidateFeed(ctx)
	}
	return err
}

// Like inserts the like if absent. The unique index plus DO NOTHING makes
// concurrent likes collapse into one row; the return reports whether this
// call created it.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Like{UserID: userID, PostID: postID})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// LikeKeyOf resolves a like-list cursor into its keyset position.
func (r *postRepository) LikeKeyOf(ctx context.Context, id uint) (*pagination.Key, error) {
	var like models.Like
	if err := r.db.WithContext(ctx).Select("id", "created_at").First(&like, id).Error; err != nil {
		return nil, err
	}
	return &pagination.Key{CreatedAt: like.CreatedAt, ID: like.ID}, nil
}

func (r *postRepository) LikesByPost(ctx context.Context, postID uint, key *pagination.Key, limit int) ([]*models.Like, error) {
	var likes []*models.Like
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Scopes(pagination.Scope("created_at", key)).
		Limit(limit).
		Find(&likes).Error
	return likes, err
}
