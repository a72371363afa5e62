package ingredient

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"foodgram/entities"

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

	require.NoError(t, db.AutoMigrate(&entities.Ingredient{}))
	return db
}

func seedIngredients(t *testing.T, db *gorm.DB, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, db.Create(&entities.Ingredient{
			Name:            name,
			MeasurementUnit: "g",
		}).Error)
	}
}

func TestSearchIngredientsPrefixPriority(t *testing.T) {
	db := setupTestDB(t)
	repo := NewIngredientRepository(db)
	ctx := context.Background()

	seedIngredients(t, db, "Apricot", "Rice", "Ricotta", "Turmeric", "Salt")

	got, err := repo.SearchIngredients(ctx, "ric")
	require.NoError(t, err)
	require.Len(t, got, 4)

	// Prefix matches rank first, substring matches follow alphabetically.
	assert.Equal(t, "Rice", got[0].Name)
	assert.Equal(t, "Ricotta", got[1].Name)
	assert.Equal(t, "Apricot", got[2].Name)
	assert.Equal(t, "Turmeric", got[3].Name)
}

func TestSearchIngredientsCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewIngredientRepository(db)
	ctx := context.Background()

	seedIngredients(t, db, "Sugar")

	got, err := repo.SearchIngredients(ctx, "SUG")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Sugar", got[0].Name)
}

func TestSearchIngredientsEmptyQueryReturnsAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewIngredientRepository(db)
	ctx := context.Background()

	seedIngredients(t, db, "Salt", "Flour", "Egg")

	got, err := repo.SearchIngredients(ctx, "")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Egg", got[0].Name)
	assert.Equal(t, "Flour", got[1].Name)
	assert.Equal(t, "Salt", got[2].Name)
}

func TestSearchIngredientsNoMatch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewIngredientRepository(db)

	seedIngredients(t, db, "Salt")

	got, err := repo.SearchIngredients(context.Background(), "pepper")
	require.NoError(t, err)
	assert.Empty(t, got)
}
