package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"glimpse/internal/cache"
	"glimpse/internal/models"
	"glimpse/internal/pagination"
	"glimpse/internal/repository"

	"gorm.io/gorm"
)

const maxStoryRailLimit = 50

type StoryService struct {
	storyRepo  repository.StoryRepository
	followRepo repository.FollowRepository

	// now is swappable so expiry boundaries can be pinned in tests.
	now func() time.Time
}

type StoryRailInput struct {
	Limit    int
	Cursor   uint // author id of the last group on the previous page
	ViewerID uint
}

// StoryRail is one page of author groups. NextCursor is the last returned
// author's id, zero when exhausted.
type StoryRail struct {
	Stories    []models.AuthorStoryGroup `json:"stories"`
	NextCursor uint                      `json:"next_cursor,omitempty"`
}

type CreateStoryInput struct {
	UserID   uint
	ImageURL string
	Text     string
}

func NewStoryService(storyRepo repository.StoryRepository, followRepo repository.FollowRepository) *StoryService {
	return &StoryService{
		storyRepo:  storyRepo,
		followRepo: followRepo,
		now:        time.Now,
	}
}

// GetActiveStories computes the story rail: active stories of the viewer and
// everyone they follow (all authors when anonymous), grouped per author,
// most recently active author first. Pagination is over authors, not
// stories, so one author's rail entry never splits across pages.
func (s *StoryService) GetActiveStories(ctx context.Context, in StoryRailInput) (*StoryRail, error) {
	limit, err := pagination.Normalize(in.Limit, pagination.DefaultLimit, maxStoryRailLimit)
	if err != nil {
		return nil, err
	}

	var rail StoryRail
	if in.Cursor == 0 && limit == pagination.DefaultLimit {
		err = cache.Aside(ctx, cache.StoryRailKey(in.ViewerID), &rail, cache.StoryRailTTL, func() error {
			return s.buildRail(ctx, in, limit, &rail)
		})
	} else {
		err = s.buildRail(ctx, in, limit, &rail)
	}
	if err != nil {
		return nil, err
	}
	return &rail, nil
}

func (s *StoryService) buildRail(ctx context.Context, in StoryRailInput, limit int, rail *StoryRail) error {
	now := s.now()

	var stories []*models.Story
	var err error
	if in.ViewerID != 0 {
		visible, ferr := s.followRepo.FollowingIDs(ctx, in.ViewerID)
		if ferr != nil {
			return ferr
		}
		visible = append(visible, in.ViewerID)
		stories, err = s.storyRepo.ActiveByUserIDs(ctx, visible, now)
	} else {
		stories, err = s.storyRepo.AllActive(ctx, now)
	}
	if err != nil {
		return err
	}

	// Stories arrive newest-first, so grouping by first appearance orders
	// the groups by each author's most recent story already.
	var groups []models.AuthorStoryGroup
	index := map[uint]int{}
	for _, story := range stories {
		i, ok := index[story.UserID]
		if !ok {
			i = len(groups)
			index[story.UserID] = i
			groups = append(groups, models.AuthorStoryGroup{User: story.User.Summary()})
		}
		groups[i].Stories = append(groups[i].Stories, story)
	}

	page, next := pagination.SliceAfter(groups, in.Cursor, limit, func(g models.AuthorStoryGroup) uint { return g.User.ID })
	rail.Stories = page
	rail.NextCursor = next
	return nil
}

func (s *StoryService) CreateStory(ctx context.Context, in CreateStoryInput) (*models.Story, error) {
	imageURL := strings.TrimSpace(in.ImageURL)
	if imageURL == "" {
		return nil, models.NewValidationError("Image URL is required")
	}

	now := s.now()
	story := &models.Story{
		UserID:    in.UserID,
		ImageURL:  imageURL,
		Text:      in.Text,
		CreatedAt: now,
		ExpiresAt: now.Add(models.StoryLifetime),
	}
	if err := s.storyRepo.Create(ctx, story); err != nil {
		return nil, err
	}
	cache.InvalidateStoryRail(ctx, in.UserID)
	return s.storyRepo.GetByID(ctx, story.ID)
}

func (s *StoryService) DeleteStory(ctx context.Context, userID, storyID uint) error {
	story, err := s.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Story", storyID)
		}
		return err
	}
	if story.UserID != userID {
		return models.NewForbiddenError("You can only delete your own stories")
	}
	if err := s.storyRepo.Delete(ctx, storyID); err != nil {
		return err
	}
	cache.InvalidateStoryRail(ctx, userID)
	return nil
}

// GetUserStories returns one author's active stories in playback order.
func (s *StoryService) GetUserStories(ctx context.Context, userID uint) ([]*models.Story, error) {
	return s.storyRepo.ActiveByUserID(ctx, userID, s.now())
}

// GetMyStories returns the caller's full story archive, expired included.
func (s *StoryService) GetMyStories(ctx context.Context, userID uint) ([]*models.Story, error) {
	return s.storyRepo.ByUserID(ctx, userID)
}
