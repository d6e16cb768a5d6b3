// Package service implements the application's business logic between the
// HTTP handlers and the repositories.
package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"glimpse/internal/cache"
	"glimpse/internal/models"
	"glimpse/internal/notifications"
	"glimpse/internal/pagination"
	"glimpse/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlaceholderImageURL is substituted as the cover wherever a post somehow
// has zero images. Creation requires at least one, so this only shows up if
// a post's images were deleted out from under it.
const PlaceholderImageURL = "https://placehold.co/600x600/black/white?text=No+Image"

const (
	maxFeedLimit     = 50
	maxLikesPage     = 100
	maxCaptionLen    = 2200
	maxImagesPerPost = 10
	commentPreview   = 10
)

type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	notifier    *notifications.Notifier
}

type FeedInput struct {
	Limit    int
	Cursor   uint
	ViewerID uint
}

// FeedPage is one page of view-ready posts. NextCursor is zero when the
// feed is exhausted.
type FeedPage struct {
	Posts      []*models.Post `json:"posts"`
	NextCursor uint           `json:"next_cursor,omitempty"`
}

type CreatePostInput struct {
	UserID    uint
	Caption   string
	Location  string
	ImageURLs []string
}

type UpdatePostInput struct {
	UserID   uint
	PostID   uint
	Caption  *string
	Location *string
}

func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	notifier *notifications.Notifier,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		notifier:    notifier,
	}
}

// resolveCursor turns a cursor id into a keyset position. A cursor that no
// longer resolves is a caller error, not a 404.
func resolveCursor(ctx context.Context, keyOf func(context.Context, uint) (*pagination.Key, error), cursor uint) (*pagination.Key, error) {
	if cursor == 0 {
		return nil, nil
	}
	key, err := keyOf(ctx, cursor)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewValidationError("Invalid cursor")
		}
		return nil, err
	}
	return key, nil
}

// Feed returns one page of the global feed with images and the viewer's
// like-state merged in. The first anonymous page is served cache-aside.
func (s *PostService) Feed(ctx context.Context, in FeedInput) (*FeedPage, error) {
	limit, err := pagination.Normalize(in.Limit, pagination.DefaultLimit, maxFeedLimit)
	if err != nil {
		return nil, err
	}
	key, err := resolveCursor(ctx, s.postRepo.KeyOf, in.Cursor)
	if err != nil {
		return nil, err
	}

	var page FeedPage
	if in.Cursor == 0 && limit == pagination.DefaultLimit {
		err = cache.Aside(ctx, cache.FeedFirstPageKey(), &page, cache.FeedTTL, func() error {
			return s.buildFeedPage(ctx, nil, limit, &page)
		})
	} else {
		err = s.buildFeedPage(ctx, key, limit, &page)
	}
	if err != nil {
		return nil, err
	}

	// Viewer context is layered on after the cache so cached pages stay
	// viewer-neutral.
	if in.ViewerID != 0 {
		if err := s.markLiked(ctx, in.ViewerID, page.Posts); err != nil {
			return nil, err
		}
	}
	return &page, nil
}

func (s *PostService) buildFeedPage(ctx context.Context, key *pagination.Key, limit int, page *FeedPage) error {
	rows, err := s.postRepo.Feed(ctx, key, limit+1)
	if err != nil {
		return err
	}
	posts, next := pagination.Cut(rows, limit, func(p *models.Post) uint { return p.ID })
	if err := s.attachImages(ctx, posts); err != nil {
		return err
	}
	page.Posts = posts
	page.NextCursor = next
	return nil
}

// attachImages batch-loads every image for the page in a single query and
// merges them onto their posts. A post deleted mid-flight simply ends up
// with the placeholder cover.
func (s *PostService) attachImages(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	grouped, err := s.postRepo.ImagesByPostIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, p := range posts {
		p.Images = grouped[p.ID]
		if len(p.Images) == 0 {
			p.Images = []models.PostImage{{PostID: p.ID, ImageURL: PlaceholderImageURL}}
		}
	}
	return nil
}

func (s *PostService) markLiked(ctx context.Context, viewerID uint, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	likedIDs, err := s.postRepo.LikedPostIDs(ctx, viewerID, ids)
	if err != nil {
		return err
	}
	liked := make(map[uint]bool, len(likedIDs))
	for _, id := range likedIDs {
		liked[id] = true
	}
	for _, p := range posts {
		p.IsLiked = liked[p.ID]
	}
	return nil
}

// PostView is the full single-post payload.
type PostView struct {
	*models.Post
	Comments []*models.Comment `json:"comments"`
}

// GetPost returns the full post view: images, the most recent comments and
// the viewer's like-state.
func (s *PostService) GetPost(ctx context.Context, id uint, viewerID uint) (*PostView, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}
	if err := s.attachImages(ctx, []*models.Post{post}); err != nil {
		return nil, err
	}
	if viewerID != 0 {
		if err := s.markLiked(ctx, viewerID, []*models.Post{post}); err != nil {
			return nil, err
		}
	}
	comments, err := s.commentRepo.ByPostID(ctx, id, nil, commentPreview)
	if err != nil {
		return nil, err
	}
	return &PostView{Post: post, Comments: comments}, nil
}

func (s *PostService) GetUserPosts(ctx context.Context, userID uint, in FeedInput) (*FeedPage, error) {
	limit, err := pagination.Normalize(in.Limit, pagination.DefaultLimit, maxFeedLimit)
	if err != nil {
		return nil, err
	}
	key, err := resolveCursor(ctx, s.postRepo.KeyOf, in.Cursor)
	if err != nil {
		return nil, err
	}
	rows, err := s.postRepo.ByUserID(ctx, userID, key, limit+1)
	if err != nil {
		return nil, err
	}
	posts, next := pagination.Cut(rows, limit, func(p *models.Post) uint { return p.ID })
	if err := s.attachImages(ctx, posts); err != nil {
		return nil, err
	}
	if in.ViewerID != 0 {
		if err := s.markLiked(ctx, in.ViewerID, posts); err != nil {
			return nil, err
		}
	}
	return &FeedPage{Posts: posts, NextCursor: next}, nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*PostView, error) {
	if len(in.ImageURLs) == 0 {
		return nil, models.NewValidationError("At least one image is required")
	}
	if len(in.ImageURLs) > maxImagesPerPost {
		return nil, models.NewValidationError("A post cannot have more than 10 images")
	}
	if utf8.RuneCountInString(in.Caption) > maxCaptionLen {
		return nil, models.NewValidationError("Caption too long (max 2200 characters)")
	}
	images := make([]models.PostImage, 0, len(in.ImageURLs))
	for _, rawURL := range in.ImageURLs {
		trimmed := strings.TrimSpace(rawURL)
		if trimmed == "" {
			return nil, models.NewValidationError("Image URL cannot be empty")
		}
		images = append(images, models.PostImage{
			ImageURL:        trimmed,
			ExternalMediaID: uuid.NewString(),
		})
	}

	post := &models.Post{
		UserID:   in.UserID,
		Caption:  in.Caption,
		Location: in.Location,
	}
	if err := s.postRepo.Create(ctx, post, images); err != nil {
		return nil, err
	}
	return s.GetPost(ctx, post.ID, in.UserID)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*PostView, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}
	if in.Caption != nil {
		if utf8.RuneCountInString(*in.Caption) > maxCaptionLen {
			return nil, models.NewValidationError("Caption too long (max 2200 characters)")
		}
		post.Caption = *in.Caption
	}
	if in.Location != nil {
		post.Location = *in.Location
	}
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.GetPost(ctx, post.ID, in.UserID)
}

func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", postID)
		}
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, postID)
}

// ToggleLike flips the viewer's like on a post and reports the resulting
// state. The unique index makes concurrent toggles converge: a create that
// lost its race reads as "already liked" and is answered by removing the
// like, never by surfacing a conflict.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (bool, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, models.NewNotFoundError("Post", postID)
		}
		return false, err
	}

	created, err := s.postRepo.Like(ctx, userID, postID)
	if err != nil {
		return false, err
	}
	if created {
		// Fan-out only on the not-liked -> liked transition.
		if s.notifier != nil {
			s.notifier.PostLiked(ctx, userID, post)
		}
		return true, nil
	}

	// The like already existed: this toggle removes it. No notification on
	// unlike.
	if _, err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
		return false, err
	}
	return false, nil
}

// GetLikes lists the users who liked a post, newest first.
// LikePage is one page of a post's likers. NextCursor is zero when the
// list is exhausted.
type LikePage struct {
	Likes      []*models.Like `json:"likes"`
	NextCursor uint           `json:"next_cursor,omitempty"`
}

func (s *PostService) GetLikes(ctx context.Context, postID uint, limit int, cursor uint) (*LikePage, error) {
	limit, err := pagination.Normalize(limit, pagination.DefaultLimit, maxLikesPage)
	if err != nil {
		return nil, err
	}
	key, err := resolveCursor(ctx, s.postRepo.LikeKeyOf, cursor)
	if err != nil {
		return nil, err
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, err
	}
	rows, err := s.postRepo.LikesByPost(ctx, postID, key, limit+1)
	if err != nil {
		return nil, err
	}
	likes, next := pagination.Cut(rows, limit, func(l *models.Like) uint { return l.ID })
	return &LikePage{Likes: likes, NextCursor: next}, nil
}
