package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"glimpse/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Username: "alice", Email: "alice@example.com"}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, user)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_Counts(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	seedPost(t, db, alice.ID, time.Now())
	seedPost(t, db, alice.ID, time.Now())
	followRepo := NewFollowRepository(db)
	_, err := followRepo.Follow(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	_, err = followRepo.Follow(ctx, carol.ID, alice.ID)
	require.NoError(t, err)
	_, err = followRepo.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.PostsCount)
	assert.Equal(t, 2, got.FollowersCount)
	assert.Equal(t, 1, got.FollowingCount)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	_, err := repo.GetByID(context.Background(), 999)
	assert.Error(t, err)
}

func TestUserRepository_Search(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedUser(t, db, "alice")
	annie := seedUser(t, db, "annie")
	annie.Name = "Annie Lee"
	require.NoError(t, repo.Update(ctx, annie))
	seedUser(t, db, "bob")

	users, err := repo.Search(ctx, "AN", 10, nil)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "annie", users[0].Username)

	users, err = repo.Search(ctx, "li", 10, nil)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
}

func TestUserRepository_Search_Cursor(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedUser(t, db, "ana")
	bella := seedUser(t, db, "bella")
	seedUser(t, db, "carla")
	seedUser(t, db, "nadia")

	// "a" matches everyone; the cursor resumes mid-list, inclusively.
	users, err := repo.Search(ctx, "a", 10, &SearchKey{Username: bella.Username, ID: bella.ID})
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "bella", users[0].Username)
	assert.Equal(t, "carla", users[1].Username)
	assert.Equal(t, "nadia", users[2].Username)
}

func TestUserRepository_GetByIDs(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	seedUser(t, db, "bob")

	users, err := repo.GetByIDs(ctx, []uint{alice.ID})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)

	users, err = repo.GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, users)
}
