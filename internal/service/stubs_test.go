package service

import (
	"context"
	"testing"
	"time"

	"glimpse/internal/models"
	"glimpse/internal/pagination"
	"glimpse/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, "VALIDATION_ERROR")
}

func assertForbidden(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, "FORBIDDEN")
}

func assertNotFound(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, "NOT_FOUND")
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn          func(context.Context, *models.Post, []models.PostImage) error
	getByIDFn         func(context.Context, uint) (*models.Post, error)
	feedFn            func(context.Context, *pagination.Key, int) ([]*models.Post, error)
	byUserIDFn        func(context.Context, uint, *pagination.Key, int) ([]*models.Post, error)
	keyOfFn           func(context.Context, uint) (*pagination.Key, error)
	imagesByPostIDsFn func(context.Context, []uint) (map[uint][]models.PostImage, error)
	likedPostIDsFn    func(context.Context, uint, []uint) ([]uint, error)
	updateFn          func(context.Context, *models.Post) error
	deleteFn          func(context.Context, uint) error
	likeFn            func(context.Context, uint, uint) (bool, error)
	unlikeFn          func(context.Context, uint, uint) (bool, error)
	likeKeyOfFn       func(context.Context, uint) (*pagination.Key, error)
	likesByPostFn     func(context.Context, uint, *pagination.Key, int) ([]*models.Like, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post, images []models.PostImage) error {
	return s.createFn(ctx, post, images)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Feed(ctx context.Context, key *pagination.Key, limit int) ([]*models.Post, error) {
	return s.feedFn(ctx, key, limit)
}
func (s *postRepoStub) ByUserID(ctx context.Context, userID uint, key *pagination.Key, limit int) ([]*models.Post, error) {
	return s.byUserIDFn(ctx, userID, key, limit)
}
func (s *postRepoStub) KeyOf(ctx context.Context, id uint) (*pagination.Key, error) {
	return s.keyOfFn(ctx, id)
}
func (s *postRepoStub) ImagesByPostIDs(ctx context.Context, postIDs []uint) (map[uint][]models.PostImage, error) {
	return s.imagesByPostIDsFn(ctx, postIDs)
}
func (s *postRepoStub) LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	return s.likedPostIDsFn(ctx, userID, postIDs)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) (bool, error) {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	return s.unlikeFn(ctx, userID, postID)
}
func (s *postRepoStub) LikeKeyOf(ctx context.Context, id uint) (*pagination.Key, error) {
	return s.likeKeyOfFn(ctx, id)
}
func (s *postRepoStub) LikesByPost(ctx context.Context, postID uint, key *pagination.Key, limit int) ([]*models.Like, error) {
	return s.likesByPostFn(ctx, postID, key, limit)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:  func(_ context.Context, _ *models.Post, _ []models.PostImage) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		feedFn: func(_ context.Context, _ *pagination.Key, _ int) ([]*models.Post, error) {
			return nil, nil
		},
		byUserIDFn: func(_ context.Context, _ uint, _ *pagination.Key, _ int) ([]*models.Post, error) {
			return nil, nil
		},
		keyOfFn: func(_ context.Context, _ uint) (*pagination.Key, error) {
			return nil, gorm.ErrRecordNotFound
		},
		imagesByPostIDsFn: func(_ context.Context, _ []uint) (map[uint][]models.PostImage, error) {
			return map[uint][]models.PostImage{}, nil
		},
		likedPostIDsFn: func(_ context.Context, _ uint, _ []uint) ([]uint, error) { return nil, nil },
		updateFn:       func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:       func(_ context.Context, _ uint) error { return nil },
		likeFn:         func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unlikeFn:       func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		likeKeyOfFn: func(_ context.Context, _ uint) (*pagination.Key, error) {
			return nil, gorm.ErrRecordNotFound
		},
		likesByPostFn: func(_ context.Context, _ uint, _ *pagination.Key, _ int) ([]*models.Like, error) {
			return nil, nil
		},
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn   func(context.Context, *models.Comment) error
	getByIDFn  func(context.Context, uint) (*models.Comment, error)
	keyOfFn    func(context.Context, uint) (*pagination.Key, error)
	byPostIDFn func(context.Context, uint, *pagination.Key, int) ([]*models.Comment, error)
	updateFn   func(context.Context, *models.Comment) error
	deleteFn   func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) KeyOf(ctx context.Context, id uint) (*pagination.Key, error) {
	return s.keyOfFn(ctx, id)
}
func (s *commentRepoStub) ByPostID(ctx context.Context, postID uint, key *pagination.Key, limit int) ([]*models.Comment, error) {
	return s.byPostIDFn(ctx, postID, key, limit)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id}, nil
		},
		keyOfFn: func(_ context.Context, _ uint) (*pagination.Key, error) {
			return nil, gorm.ErrRecordNotFound
		},
		byPostIDFn: func(_ context.Context, _ uint, _ *pagination.Key, _ int) ([]*models.Comment, error) {
			return nil, nil
		},
		updateFn: func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	followFn         func(context.Context, uint, uint) (bool, error)
	unfollowFn       func(context.Context, uint, uint) (bool, error)
	isFollowingFn    func(context.Context, uint, uint) (bool, error)
	followingIDsFn   func(context.Context, uint) ([]uint, error)
	followingAmongFn func(context.Context, uint, []uint) ([]uint, error)
	followersFn      func(context.Context, uint, int, uint) ([]*models.User, error)
	followingFn      func(context.Context, uint, int, uint) ([]*models.User, error)
}

func (s *followRepoStub) Follow(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.followFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Unfollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.unfollowFn(ctx, followerID, followingID)
}
func (s *followRepoStub) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.isFollowingFn(ctx, followerID, followingID)
}
func (s *followRepoStub) FollowingIDs(ctx context.Context, followerID uint) ([]uint, error) {
	return s.followingIDsFn(ctx, followerID)
}
func (s *followRepoStub) FollowingAmong(ctx context.Context, followerID uint, ids []uint) ([]uint, error) {
	return s.followingAmongFn(ctx, followerID, ids)
}
func (s *followRepoStub) Followers(ctx context.Context, userID uint, limit int, cursor uint) ([]*models.User, error) {
	return s.followersFn(ctx, userID, limit, cursor)
}
func (s *followRepoStub) Following(ctx context.Context, userID uint, limit int, cursor uint) ([]*models.User, error) {
	return s.followingFn(ctx, userID, limit, cursor)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		followFn:         func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unfollowFn:       func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		isFollowingFn:    func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		followingIDsFn:   func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
		followingAmongFn: func(_ context.Context, _ uint, _ []uint) ([]uint, error) { return nil, nil },
		followersFn:      func(_ context.Context, _ uint, _ int, _ uint) ([]*models.User, error) { return nil, nil },
		followingFn:      func(_ context.Context, _ uint, _ int, _ uint) ([]*models.User, error) { return nil, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByIDsFn      func(context.Context, []uint) ([]*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	searchFn        func(context.Context, string, int, *repository.SearchKey) ([]*models.User, error)
	updateFn        func(context.Context, *models.User) error
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByIDs(ctx context.Context, ids []uint) ([]*models.User, error) {
	return s.getByIDsFn(ctx, ids)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Search(ctx context.Context, query string, limit int, key *repository.SearchKey) ([]*models.User, error) {
	return s.searchFn(ctx, query, limit, key)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}

// notFoundUserRepo is a user store where every lookup misses.
func notFoundUserRepo() *userRepoStub {
	repo := noopUserRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.User, error) {
		return nil, gorm.ErrRecordNotFound
	}
	repo.getByUsernameFn = func(_ context.Context, _ string) (*models.User, error) {
		return nil, gorm.ErrRecordNotFound
	}
	return repo
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn: func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "user"}, nil
		},
		getByIDsFn: func(_ context.Context, ids []uint) ([]*models.User, error) {
			users := make([]*models.User, len(ids))
			for i, id := range ids {
				users[i] = &models.User{ID: id}
			}
			return users, nil
		},
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
		searchFn: func(_ context.Context, _ string, _ int, _ *repository.SearchKey) ([]*models.User, error) {
			return nil, nil
		},
		updateFn: func(_ context.Context, _ *models.User) error { return nil },
	}
}

// storyRepoStub is a stub for repository.StoryRepository.
type storyRepoStub struct {
	createFn          func(context.Context, *models.Story) error
	getByIDFn         func(context.Context, uint) (*models.Story, error)
	deleteFn          func(context.Context, uint) error
	activeByUserIDsFn func(context.Context, []uint, time.Time) ([]*models.Story, error)
	allActiveFn       func(context.Context, time.Time) ([]*models.Story, error)
	activeByUserIDFn  func(context.Context, uint, time.Time) ([]*models.Story, error)
	byUserIDFn        func(context.Context, uint) ([]*models.Story, error)
}

func (s *storyRepoStub) Create(ctx context.Context, story *models.Story) error {
	return s.createFn(ctx, story)
}
func (s *storyRepoStub) GetByID(ctx context.Context, id uint) (*models.Story, error) {
	return s.getByIDFn(ctx, id)
}
func (s *storyRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *storyRepoStub) ActiveByUserIDs(ctx context.Context, userIDs []uint, now time.Time) ([]*models.Story, error) {
	return s.activeByUserIDsFn(ctx, userIDs, now)
}
func (s *storyRepoStub) AllActive(ctx context.Context, now time.Time) ([]*models.Story, error) {
	return s.allActiveFn(ctx, now)
}
func (s *storyRepoStub) ActiveByUserID(ctx context.Context, userID uint, now time.Time) ([]*models.Story, error) {
	return s.activeByUserIDFn(ctx, userID, now)
}
func (s *storyRepoStub) ByUserID(ctx context.Context, userID uint) ([]*models.Story, error) {
	return s.byUserIDFn(ctx, userID)
}

func noopStoryRepo() *storyRepoStub {
	return &storyRepoStub{
		createFn: func(_ context.Context, _ *models.Story) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Story, error) {
			return &models.Story{ID: id}, nil
		},
		deleteFn: func(_ context.Context, _ uint) error { return nil },
		activeByUserIDsFn: func(_ context.Context, _ []uint, _ time.Time) ([]*models.Story, error) {
			return nil, nil
		},
		allActiveFn: func(_ context.Context, _ time.Time) ([]*models.Story, error) { return nil, nil },
		activeByUserIDFn: func(_ context.Context, _ uint, _ time.Time) ([]*models.Story, error) {
			return nil, nil
		},
		byUserIDFn: func(_ context.Context, _ uint) ([]*models.Story, error) { return nil, nil },
	}
}

// chatRepoStub is a stub for repository.ChatRepository.
type chatRepoStub struct {
	memberChatIDsFn     func(context.Context, uint) ([]uint, error)
	listByIDsFn         func(context.Context, []uint) ([]*models.Chat, error)
	getByIDFn           func(context.Context, uint) (*models.Chat, error)
	latestMessagesFn    func(context.Context, []uint) (map[uint]*models.Message, error)
	directChatBetweenFn func(context.Context, uint, uint) (*models.Chat, error)
	createWithMembersFn func(context.Context, *models.Chat, []uint) error
	removeMemberFn      func(context.Context, uint, uint) error
	isMemberFn          func(context.Context, uint, uint) (bool, error)
	messagesFn          func(context.Context, uint, *pagination.Key, int) ([]*models.Message, error)
	messageKeyOfFn      func(context.Context, uint) (*pagination.Key, error)
	createMessageFn     func(context.Context, *models.Message) error
}

func (s *chatRepoStub) MemberChatIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.memberChatIDsFn(ctx, userID)
}
func (s *chatRepoStub) ListByIDs(ctx context.Context, chatIDs []uint) ([]*models.Chat, error) {
	return s.listByIDsFn(ctx, chatIDs)
}
func (s *chatRepoStub) GetByID(ctx context.Context, chatID uint) (*models.Chat, error) {
	return s.getByIDFn(ctx, chatID)
}
func (s *chatRepoStub) LatestMessages(ctx context.Context, chatIDs []uint) (map[uint]*models.Message, error) {
	return s.latestMessagesFn(ctx, chatIDs)
}
func (s *chatRepoStub) DirectChatBetween(ctx context.Context, userA, userB uint) (*models.Chat, error) {
	return s.directChatBetweenFn(ctx, userA, userB)
}
func (s *chatRepoStub) CreateWithMembers(ctx context.Context, chat *models.Chat, memberIDs []uint) error {
	return s.createWithMembersFn(ctx, chat, memberIDs)
}
func (s *chatRepoStub) RemoveMember(ctx context.Context, chatID, userID uint) error {
	return s.removeMemberFn(ctx, chatID, userID)
}
func (s *chatRepoStub) IsMember(ctx context.Context, chatID, userID uint) (bool, error) {
	return s.isMemberFn(ctx, chatID, userID)
}
func (s *chatRepoStub) Messages(ctx context.Context, chatID uint, key *pagination.Key, limit int) ([]*models.Message, error) {
	return s.messagesFn(ctx, chatID, key, limit)
}
func (s *chatRepoStub) MessageKeyOf(ctx context.Context, id uint) (*pagination.Key, error) {
	return s.messageKeyOfFn(ctx, id)
}
func (s *chatRepoStub) CreateMessage(ctx context.Context, message *models.Message) error {
	return s.createMessageFn(ctx, message)
}

func noopChatRepo() *chatRepoStub {
	return &chatRepoStub{
		memberChatIDsFn: func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
		listByIDsFn:     func(_ context.Context, _ []uint) ([]*models.Chat, error) { return nil, nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Chat, error) {
			return &models.Chat{ID: id}, nil
		},
		latestMessagesFn: func(_ context.Context, _ []uint) (map[uint]*models.Message, error) {
			return map[uint]*models.Message{}, nil
		},
		directChatBetweenFn: func(_ context.Context, _, _ uint) (*models.Chat, error) { return nil, nil },
		createWithMembersFn: func(_ context.Context, _ *models.Chat, _ []uint) error { return nil },
		removeMemberFn:      func(_ context.Context, _, _ uint) error { return nil },
		isMemberFn:          func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		messagesFn: func(_ context.Context, _ uint, _ *pagination.Key, _ int) ([]*models.Message, error) {
			return nil, nil
		},
		messageKeyOfFn: func(_ context.Context, _ uint) (*pagination.Key, error) {
			return nil, gorm.ErrRecordNotFound
		},
		createMessageFn: func(_ context.Context, _ *models.Message) error { return nil },
	}
}

// notificationRepoStub is a stub for repository.NotificationRepository.
type notificationRepoStub struct {
	created []*models.Notification

	createFn        func(context.Context, *models.Notification) error
	getByIDFn       func(context.Context, uint) (*models.Notification, error)
	byReceiverFn    func(context.Context, uint, bool, *pagination.Key, int) ([]*models.Notification, error)
	keyOfFn         func(context.Context, uint) (*pagination.Key, error)
	markAsReadFn    func(context.Context, uint) error
	markAllAsReadFn func(context.Context, uint) error
	deleteFn        func(context.Context, uint) error
	unreadCountFn   func(context.Context, uint) (int64, error)
}

func (s *notificationRepoStub) Create(ctx context.Context, n *models.Notification) error {
	if s.createFn != nil {
		return s.createFn(ctx, n)
	}
	s.created = append(s.created, n)
	return nil
}
func (s *notificationRepoStub) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	return s.getByIDFn(ctx, id)
}
func (s *notificationRepoStub) ByReceiver(ctx context.Context, receiverID uint, onlyUnread bool, key *pagination.Key, limit int) ([]*models.Notification, error) {
	return s.byReceiverFn(ctx, receiverID, onlyUnread, key, limit)
}
func (s *notificationRepoStub) KeyOf(ctx context.Context, id uint) (*pagination.Key, error) {
	return s.keyOfFn(ctx, id)
}
func (s *notificationRepoStub) MarkAsRead(ctx context.Context, id uint) error {
	return s.markAsReadFn(ctx, id)
}
func (s *notificationRepoStub) MarkAllAsRead(ctx context.Context, receiverID uint) error {
	return s.markAllAsReadFn(ctx, receiverID)
}
func (s *notificationRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *notificationRepoStub) UnreadCount(ctx context.Context, receiverID uint) (int64, error) {
	return s.unreadCountFn(ctx, receiverID)
}

func noopNotificationRepo() *notificationRepoStub {
	return &notificationRepoStub{
		getByIDFn: func(_ context.Context, _ uint) (*models.Notification, error) {
			return nil, gorm.ErrRecordNotFound
		},
		byReceiverFn: func(_ context.Context, _ uint, _ bool, _ *pagination.Key, _ int) ([]*models.Notification, error) {
			return nil, nil
		},
		keyOfFn: func(_ context.Context, _ uint) (*pagination.Key, error) {
			return nil, gorm.ErrRecordNotFound
		},
		markAsReadFn:    func(_ context.Context, _ uint) error { return nil },
		markAllAsReadFn: func(_ context.Context, _ uint) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
		unreadCountFn:   func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}
