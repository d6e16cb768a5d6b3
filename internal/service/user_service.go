package service

import (
	"context"
	"errors"
	"strings"

	"glimpse/internal/models"
	"glimpse/internal/pagination"
	"glimpse/internal/repository"

	"gorm.io/gorm"
)

const maxUserSearchLimit = 50

type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

func NewUserService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
	}
}

// GetProfile returns a user with their profile counters and, when a viewer
// is present, whether the viewer follows them.
func (s *UserService) GetProfile(ctx context.Context, userID, viewerID uint) (*models.User, bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, models.NewNotFoundError("User", userID)
		}
		return nil, false, err
	}
	var isFollowing bool
	if viewerID != 0 && viewerID != userID {
		isFollowing, err = s.followRepo.IsFollowing(ctx, viewerID, userID)
		if err != nil {
			return nil, false, err
		}
	}
	return user, isFollowing, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", username)
		}
		return nil, err
	}
	return user, nil
}

// UserSearchPage is one page of search matches, ordered by username.
// NextCursor is zero when the matches are exhausted.
type UserSearchPage struct {
	Users      []*models.User `json:"users"`
	NextCursor uint           `json:"next_cursor,omitempty"`
}

func (s *UserService) Search(ctx context.Context, query string, limit int, cursor uint) (*UserSearchPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	limit, err := pagination.Normalize(limit, pagination.DefaultLimit, maxUserSearchLimit)
	if err != nil {
		return nil, err
	}

	// Search is ordered by username, so the cursor id has to be resolved
	// into its username position first.
	var key *repository.SearchKey
	if cursor != 0 {
		row, err := s.userRepo.GetByID(ctx, cursor)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewValidationError("Invalid cursor")
			}
			return nil, err
		}
		key = &repository.SearchKey{Username: row.Username, ID: row.ID}
	}

	rows, err := s.userRepo.Search(ctx, query, limit+1, key)
	if err != nil {
		return nil, err
	}
	users, next := pagination.Cut(rows, limit, func(u *models.User) uint { return u.ID })
	return &UserSearchPage{Users: users, NextCursor: next}, nil
}

type UpdateProfileInput struct {
	UserID uint
	Name   *string
	Bio    *string
	Image  *string
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", in.UserID)
		}
		return nil, err
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if in.Image != nil {
		user.Image = *in.Image
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
