package server

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"glimpse/internal/config"
	"glimpse/internal/database"
	"glimpse/internal/models"
	"glimpse/internal/notifications"
	"glimpse/internal/repository"
	"glimpse/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "handler-test-secret"

var testDBSeq atomic.Int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:servertest%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// newTestServer wires a Server over an in-memory sqlite store, bypassing
// the metrics middleware so tests can construct servers repeatedly.
func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	cfg := &config.Config{
		JWTSecret: testJWTSecret,
		Env:       "test",
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)
	storyRepo := repository.NewStoryRepository(db)
	chatRepo := repository.NewChatRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	s := &Server{
		config: cfg,
		db:     db,
	}
	s.notifier = notifications.NewNotifier(notificationRepo, userRepo)
	s.postService = service.NewPostService(postRepo, commentRepo, s.notifier)
	s.commentService = service.NewCommentService(commentRepo, postRepo, s.notifier)
	s.followService = service.NewFollowService(followRepo, userRepo, s.notifier)
	s.storyService = service.NewStoryService(storyRepo, followRepo)
	s.chatService = service.NewChatService(chatRepo, userRepo)
	s.notificationService = service.NewNotificationService(notificationRepo, postRepo)
	s.userService = service.NewUserService(userRepo, followRepo)
	return s, db
}

// authToken signs a bearer token the way the auth collaborator would.
func authToken(t *testing.T, userID uint) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": fmt.Sprintf("%d", userID),
		"iss": tokenIssuer,
		"aud": tokenAudience,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

func addID(prefix string, id uint) string {
	return fmt.Sprintf("%s%d", prefix, id)
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedPost(t *testing.T, db *gorm.DB, userID uint, caption string) *models.Post {
	t.Helper()
	post := &models.Post{UserID: userID, Caption: caption}
	require.NoError(t, db.Create(post).Error)
	return post
}
