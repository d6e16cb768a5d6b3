package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"glimpse/internal/models"
	"glimpse/internal/notifications"
	"glimpse/internal/pagination"
	"glimpse/internal/repository"

	"gorm.io/gorm"
)

const (
	maxCommentLen   = 500
	maxCommentsPage = 100
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	notifier    *notifications.Notifier
}

type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	notifier *notifications.Notifier,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		notifier:    notifier,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if utf8.RuneCountInString(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 500 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, err
	}

	comment := &models.Comment{
		PostID:  in.PostID,
		UserID:  in.UserID,
		Content: in.Content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	// Commenting always succeeds; the notification is a side effect that
	// self-suppresses when the commenter owns the post.
	if s.notifier != nil {
		s.notifier.PostCommented(ctx, in.UserID, post)
	}
	return comment, nil
}

// CommentPage is one page of a post's comments. NextCursor is zero when
// the thread is exhausted.
type CommentPage struct {
	Comments   []*models.Comment `json:"comments"`
	NextCursor uint              `json:"next_cursor,omitempty"`
}

func (s *CommentService) GetComments(ctx context.Context, postID uint, limit int, cursor uint) (*CommentPage, error) {
	limit, err := pagination.Normalize(limit, pagination.DefaultLimit, maxCommentsPage)
	if err != nil {
		return nil, err
	}
	key, err := resolveCursor(ctx, s.commentRepo.KeyOf, cursor)
	if err != nil {
		return nil, err
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, err
	}
	rows, err := s.commentRepo.ByPostID(ctx, postID, key, limit+1)
	if err != nil {
		return nil, err
	}
	comments, next := pagination.Cut(rows, limit, func(c *models.Comment) uint { return c.ID })
	return &CommentPage{Comments: comments, NextCursor: next}, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if utf8.RuneCountInString(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 500 characters)")
	}
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", in.CommentID)
		}
		return nil, err
	}
	// Only the author can edit; the post owner can delete but not rewrite.
	if comment.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own comments")
	}
	comment.Content = in.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment. Allowed for the comment's author and for
// the owner of the post it sits on.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment", commentID)
		}
		return err
	}
	if comment.UserID != userID {
		post, err := s.postRepo.GetByID(ctx, comment.PostID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", comment.PostID)
			}
			return err
		}
		if post.UserID != userID {
			return models.NewForbiddenError("You can only delete your own comments or comments on your posts")
		}
	}
	return s.commentRepo.Delete(ctx, commentID)
}
