package relation

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"foodgram/entities"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&entities.User{}, &entities.Subscription{}))
	return db
}

func TestRelationAddRemoveCycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRelationRepository(db, "subscriptions", "user_id", "author_id")
	ctx := context.Background()

	userID := uuid.New()
	authorID := uuid.New()

	exists, err := repo.Exists(ctx, userID, authorID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Add(ctx, userID, authorID))

	exists, err = repo.Exists(ctx, userID, authorID)
	require.NoError(t, err)
	assert.True(t, exists)

	assert.ErrorIs(t, repo.Add(ctx, userID, authorID), ErrAlreadyExists)

	require.NoError(t, repo.Remove(ctx, userID, authorID))
	assert.ErrorIs(t, repo.Remove(ctx, userID, authorID), ErrNotFound)

	exists, err = repo.Exists(ctx, userID, authorID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRelationPairsAreDirectional(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRelationRepository(db, "subscriptions", "user_id", "author_id")
	ctx := context.Background()

	a := uuid.New()
	b := uuid.New()

	require.NoError(t, repo.Add(ctx, a, b))

	// The reverse direction is a distinct pair.
	exists, err := repo.Exists(ctx, b, a)
	require.NoError(t, err)
	assert.False(t, exists)
	require.NoError(t, repo.Add(ctx, b, a))
}

func TestRelationIsolatedPerSubject(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRelationRepository(db, "subscriptions", "user_id", "author_id")
	ctx := context.Background()

	author := uuid.New()
	first := uuid.New()
	second := uuid.New()

	require.NoError(t, repo.Add(ctx, first, author))

	exists, err := repo.Exists(ctx, second, author)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorIs(t, repo.Remove(ctx, second, author), ErrNotFound)
}
