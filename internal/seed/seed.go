// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"glimpse/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Seeder populates the database with generated development data.
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll deletes all seeded data, children before parents.
func (s *Seeder) ClearAll() error {
	tables := []any{
		&models.Notification{},
		&models.Message{},
		&models.ChatUser{},
		&models.Chat{},
		&models.Story{},
		&models.Comment{},
		&models.Like{},
		&models.PostImage{},
		&models.Post{},
		&models.Follow{},
		&models.User{},
	}
	for _, table := range tables {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
			return fmt.Errorf("clear %T: %w", table, err)
		}
	}
	slog.Info("cleared existing data")
	return nil
}

// SeedSocialMesh creates users and a follow graph between them.
func (s *Seeder) SeedSocialMesh(numUsers int) ([]*models.User, error) {
	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		username := fmt.Sprintf("%s%d", gofakeit.Username(), i)
		user := &models.User{
			Username: username,
			Name:     gofakeit.Name(),
			Email:    fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
			Bio:      gofakeit.Sentence(8),
			Image:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
		}
		if err := s.db.Create(user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}

	// Each user follows roughly a third of the others.
	follows := 0
	for _, follower := range users {
		for _, target := range users {
			if follower.ID == target.ID || s.rng.Intn(3) != 0 {
				continue
			}
			follow := &models.Follow{FollowerID: follower.ID, FollowingID: target.ID, Accepted: true}
			if err := s.db.Create(follow).Error; err != nil {
				return nil, fmt.Errorf("create follow: %w", err)
			}
			follows++
		}
	}
	slog.Info("seeded social mesh", "users", len(users), "follows", follows)
	return users, nil
}

// SeedContent creates posts with images, then likes and comments on them.
func (s *Seeder) SeedContent(users []*models.User, numPosts int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}
	posts := make([]*models.Post, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		author := users[s.rng.Intn(len(users))]
		post := &models.Post{
			UserID:   author.ID,
			Caption:  gofakeit.Sentence(s.rng.Intn(12) + 3),
			Location: gofakeit.City(),
		}
		if err := s.db.Create(post).Error; err != nil {
			return nil, fmt.Errorf("create post: %w", err)
		}
		for j := 0; j < s.rng.Intn(3)+1; j++ {
			image := &models.PostImage{
				PostID:   post.ID,
				ImageURL: fmt.Sprintf("https://picsum.photos/seed/%d-%d/600/600", post.ID, j),
			}
			if err := s.db.Create(image).Error; err != nil {
				return nil, fmt.Errorf("create post image: %w", err)
			}
		}
		posts = append(posts, post)
	}

	likes, comments := 0, 0
	for _, post := range posts {
		for _, user := range users {
			if s.rng.Intn(4) == 0 {
				like := &models.Like{PostID: post.ID, UserID: user.ID}
				if err := s.db.Create(like).Error; err != nil {
					return nil, fmt.Errorf("create like: %w", err)
				}
				likes++
			}
			if s.rng.Intn(8) == 0 {
				comment := &models.Comment{
					PostID:  post.ID,
					UserID:  user.ID,
					Content: gofakeit.Sentence(s.rng.Intn(10) + 2),
				}
				if err := s.db.Create(comment).Error; err != nil {
					return nil, fmt.Errorf("create comment: %w", err)
				}
				comments++
			}
		}
	}
	slog.Info("seeded content", "posts", len(posts), "likes", likes, "comments", comments)
	return posts, nil
}

// SeedStories gives about half the users an active story and some an
// already-expired one, so the rail and the archive both have data.
func (s *Seeder) SeedStories(users []*models.User) error {
	now := time.Now()
	count := 0
	for _, user := range users {
		if s.rng.Intn(2) == 0 {
			continue
		}
		active := &models.Story{
			UserID:    user.ID,
			ImageURL:  fmt.Sprintf("https://picsum.photos/seed/story-%d/400/700", user.ID),
			Text:      gofakeit.HipsterWord(),
			ExpiresAt: now.Add(models.StoryLifetime),
		}
		if err := s.db.Create(active).Error; err != nil {
			return fmt.Errorf("create story: %w", err)
		}
		count++
		if s.rng.Intn(3) == 0 {
			expired := &models.Story{
				UserID:    user.ID,
				ImageURL:  fmt.Sprintf("https://picsum.photos/seed/story-old-%d/400/700", user.ID),
				ExpiresAt: now.Add(-time.Hour),
				CreatedAt: now.Add(-25 * time.Hour),
			}
			if err := s.db.Create(expired).Error; err != nil {
				return fmt.Errorf("create expired story: %w", err)
			}
		}
	}
	slog.Info("seeded stories", "active", count)
	return nil
}

// SeedChats creates direct chats with short message histories.
func (s *Seeder) SeedChats(users []*models.User, numChats int) error {
	if len(users) < 2 {
		return nil
	}
	for i := 0; i < numChats; i++ {
		a := users[s.rng.Intn(len(users))]
		b := users[s.rng.Intn(len(users))]
		if a.ID == b.ID {
			continue
		}
		chat := &models.Chat{}
		if err := s.db.Create(chat).Error; err != nil {
			return fmt.Errorf("create chat: %w", err)
		}
		for _, u := range []*models.User{a, b} {
			member := &models.ChatUser{ChatID: chat.ID, UserID: u.ID}
			if err := s.db.Create(member).Error; err != nil {
				return fmt.Errorf("create chat member: %w", err)
			}
		}
		pair := []*models.User{a, b}
		for j := 0; j < s.rng.Intn(10)+1; j++ {
			message := &models.Message{
				ChatID:      chat.ID,
				SenderID:    pair[j%2].ID,
				MessageText: gofakeit.Sentence(s.rng.Intn(8) + 1),
			}
			if err := s.db.Create(message).Error; err != nil {
				return fmt.Errorf("create message: %w", err)
			}
		}
	}
	slog.Info("seeded chats", "chats", numChats)
	return nil
}
