package recipe

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"foodgram/domain"
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

	require.NoError(t, db.AutoMigrate(
		&entities.User{},
		&entities.Subscription{},
		&entities.Tag{},
		&entities.Ingredient{},
		&entities.Recipe{},
		&entities.IngredientInRecipe{},
		&entities.Favorite{},
		&entities.ShoppingCart{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *entities.User {
	t.Helper()
	user := &entities.User{
		Email:    email,
		Username: strings.Split(email, "@")[0],
		Password: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestTag(t *testing.T, db *gorm.DB, name, slug string) *entities.Tag {
	t.Helper()
	tag := &entities.Tag{Name: name, Slug: slug}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

func createTestIngredient(t *testing.T, db *gorm.DB, name, unit string) *entities.Ingredient {
	t.Helper()
	ing := &entities.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ing).Error)
	return ing
}

func createTestRecipe(t *testing.T, repo RecipeRepository, author *entities.User, name string, tags []entities.Tag, rows []entities.IngredientInRecipe) *entities.Recipe {
	t.Helper()
	recipe := &entities.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		ImageURL:    "https://example.com/" + name + ".jpg",
		Text:        "steps for " + name,
		CookingTime: 10,
	}
	require.NoError(t, repo.CreateRecipe(context.Background(), recipe, rows, tags))
	return recipe
}

func defaultFilter() domain.RecipeFilter {
	return domain.RecipeFilter{Page: 1, Limit: 10}
}

func TestCreateAndGetRecipe(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author@example.com")
	tag := createTestTag(t, db, "Breakfast", "breakfast")
	flour := createTestIngredient(t, db, "Flour", "g")

	created := createTestRecipe(t, repo, author, "Pancakes", []entities.Tag{*tag}, []entities.IngredientInRecipe{
		{IngredientID: flour.ID, Amount: 200},
	})

	got, err := repo.GetRecipeByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", got.Name)
	require.NotNil(t, got.Author)
	assert.Equal(t, author.ID, got.Author.ID)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "breakfast", got.Tags[0].Slug)
	require.Len(t, got.Ingredients, 1)
	require.NotNil(t, got.Ingredients[0].Ingredient)
	assert.Equal(t, "Flour", got.Ingredients[0].Ingredient.Name)
	assert.Equal(t, 200, got.Ingredients[0].Amount)
}

func TestGetRecipesFilterByTags(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author@example.com")
	breakfast := createTestTag(t, db, "Breakfast", "breakfast")
	dinner := createTestTag(t, db, "Dinner", "dinner")
	flour := createTestIngredient(t, db, "Flour", "g")
	rows := func() []entities.IngredientInRecipe {
		return []entities.IngredientInRecipe{{IngredientID: flour.ID, Amount: 1}}
	}

	createTestRecipe(t, repo, author, "Pancakes", []entities.Tag{*breakfast}, rows())
	createTestRecipe(t, repo, author, "Stew", []entities.Tag{*dinner}, rows())
	both := createTestRecipe(t, repo, author, "Omelette", []entities.Tag{*breakfast, *dinner}, rows())

	filter := defaultFilter()
	filter.TagSlugs = []string{"breakfast"}
	recipes, total, err := repo.GetRecipes(ctx, filter)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, recipes, 2)

	// A recipe carrying both tags must not be duplicated when both slugs
	// are requested.
	filter.TagSlugs = []string{"breakfast", "dinner"}
	recipes, total, err = repo.GetRecipes(ctx, filter)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, recipes, 3)

	found := 0
	for _, r := range recipes {
		if r.ID == both.ID {
			found++
		}
	}
	assert.Equal(t, 1, found)
}

func TestGetRecipesFilterByAuthor(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	tag := createTestTag(t, db, "Lunch", "lunch")
	flour := createTestIngredient(t, db, "Flour", "g")
	rows := func() []entities.IngredientInRecipe {
		return []entities.IngredientInRecipe{{IngredientID: flour.ID, Amount: 1}}
	}

	createTestRecipe(t, repo, alice, "Soup", []entities.Tag{*tag}, rows())
	createTestRecipe(t, repo, bob, "Salad", []entities.Tag{*tag}, rows())

	filter := defaultFilter()
	filter.AuthorID = alice.ID
	recipes, total, err := repo.GetRecipes(ctx, filter)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, recipes, 1)
	assert.Equal(t, "Soup", recipes[0].Name)
}

func TestGetRecipesFavoritedFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author@example.com")
	viewer := createTestUser(t, db, "viewer@example.com")
	tag := createTestTag(t, db, "Lunch", "lunch")
	flour := createTestIngredient(t, db, "Flour", "g")
	rows := func() []entities.IngredientInRecipe {
		return []entities.IngredientInRecipe{{IngredientID: flour.ID, Amount: 1}}
	}

	liked := createTestRecipe(t, repo, author, "Soup", []entities.Tag{*tag}, rows())
	createTestRecipe(t, repo, author, "Salad", []entities.Tag{*tag}, rows())

	require.NoError(t, db.Create(&entities.Favorite{
		ID:       uuid.New(),
		UserID:   viewer.ID,
		RecipeID: liked.ID,
	}).Error)

	filter := defaultFilter()
	filter.IsFavorited = true
	filter.UserID = viewer.ID
	recipes, total, err := repo.GetRecipes(ctx, filter)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, recipes, 1)
	assert.Equal(t, liked.ID, recipes[0].ID)
}

func TestGetRecipesAnonymousBooleanFilterIsEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author@example.com")
	tag := createTestTag(t, db, "Lunch", "lunch")
	flour := createTestIngredient(t, db, "Flour", "g")
	createTestRecipe(t, repo, author, "Soup", []entities.Tag{*tag},
		[]entities.IngredientInRecipe{{IngredientID: flour.ID, Amount: 1}})

	filter := defaultFilter()
	filter.Anonymous = true
	filter.IsInShoppingCart = true
	recipes, total, err := repo.GetRecipes(ctx, filter)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, recipes)
}

func TestGetRecipesOrderedNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author@example.com")
	tag := createTestTag(t, db, "Lunch", "lunch")
	flour := createTestIngredient(t, db, "Flour", "g")
	rows := func() []entities.IngredientInRecipe {
		return []entities.IngredientInRecipe{{IngredientID: flour.ID, Amount: 1}}
	}

	old := createTestRecipe(t, repo, author, "Old", []entities.Tag{*tag}, rows())
	recent := createTestRecipe(t, repo, author, "Recent", []entities.Tag{*tag}, rows())

	base := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&entities.Recipe{}).Where("id = ?", old.ID).
		Update("created_at", base).Error)
	require.NoError(t, db.Model(&entities.Recipe{}).Where("id = ?", recent.ID).
		Update("created_at", base.Add(time.Minute)).Error)

	recipes, _, err := repo.GetRecipes(ctx, defaultFilter())
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, "Recent", recipes[0].Name)
	assert.Equal(t, "Old", recipes[1].Name)
}

func TestUpdateRecipeReplacesIngredientsAndTags(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author@example.com")
	breakfast := createTestTag(t, db, "Breakfast", "breakfast")
	dinner := createTestTag(t, db, "Dinner", "dinner")
	flour := createTestIngredient(t, db, "Flour", "g")
	egg := createTestIngredient(t, db, "Egg", "pcs")

	recipe := createTestRecipe(t, repo, author, "Pancakes", []entities.Tag{*breakfast},
		[]entities.IngredientInRecipe{{IngredientID: flour.ID, Amount: 200}})

	recipe.Name = "Crepes"
	recipe.CookingTime = 25
	err := repo.UpdateRecipe(ctx, recipe,
		[]entities.IngredientInRecipe{{IngredientID: egg.ID, Amount: 3}},
		[]entities.Tag{*dinner})
	require.NoError(t, err)

	got, err := repo.GetRecipeByID(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Crepes", got.Name)
	assert.Equal(t, 25, got.CookingTime)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, egg.ID, got.Ingredients[0].IngredientID)
	assert.Equal(t, 3, got.Ingredients[0].Amount)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "dinner", got.Tags[0].Slug)
}

func TestDeleteRecipeRemovesDependentRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author@example.com")
	viewer := createTestUser(t, db, "viewer@example.com")
	tag := createTestTag(t, db, "Lunch", "lunch")
	flour := createTestIngredient(t, db, "Flour", "g")

	recipe := createTestRecipe(t, repo, author, "Soup", []entities.Tag{*tag},
		[]entities.IngredientInRecipe{{IngredientID: flour.ID, Amount: 1}})

	require.NoError(t, db.Create(&entities.Favorite{
		ID: uuid.New(), UserID: viewer.ID, RecipeID: recipe.ID,
	}).Error)
	require.NoError(t, db.Create(&entities.ShoppingCart{
		ID: uuid.New(), UserID: viewer.ID, RecipeID: recipe.ID,
	}).Error)

	require.NoError(t, repo.DeleteRecipe(ctx, recipe.ID))

	_, err := repo.GetRecipeByID(ctx, recipe.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var joinRows int64
	db.Model(&entities.IngredientInRecipe{}).Where("recipe_id = ?", recipe.ID).Count(&joinRows)
	assert.EqualValues(t, 0, joinRows)
	db.Model(&entities.Favorite{}).Where("recipe_id = ?", recipe.ID).Count(&joinRows)
	assert.EqualValues(t, 0, joinRows)
	db.Model(&entities.ShoppingCart{}).Where("recipe_id = ?", recipe.ID).Count(&joinRows)
	assert.EqualValues(t, 0, joinRows)
}

func TestClaimShortCode(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author@example.com")
	tag := createTestTag(t, db, "Lunch", "lunch")
	flour := createTestIngredient(t, db, "Flour", "g")
	rows := func() []entities.IngredientInRecipe {
		return []entities.IngredientInRecipe{{IngredientID: flour.ID, Amount: 1}}
	}

	first := createTestRecipe(t, repo, author, "Soup", []entities.Tag{*tag}, rows())
	second := createTestRecipe(t, repo, author, "Salad", []entities.Tag{*tag}, rows())

	claimed, err := repo.ClaimShortCode(ctx, first.ID, "abc123")
	require.NoError(t, err)
	assert.True(t, claimed)

	// The code is immutable once assigned.
	claimed, err = repo.ClaimShortCode(ctx, first.ID, "zzz999")
	require.NoError(t, err)
	assert.False(t, claimed)

	// A colliding code on another recipe surfaces as a duplicate key.
	_, err = repo.ClaimShortCode(ctx, second.ID, "abc123")
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	got, err := repo.GetRecipeByShortCode(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestAggregateShoppingCart(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author@example.com")
	viewer := createTestUser(t, db, "viewer@example.com")
	other := createTestUser(t, db, "other@example.com")
	tag := createTestTag(t, db, "Lunch", "lunch")
	flour := createTestIngredient(t, db, "Flour", "g")
	egg := createTestIngredient(t, db, "Egg", "pcs")

	pancakes := createTestRecipe(t, repo, author, "Pancakes", []entities.Tag{*tag},
		[]entities.IngredientInRecipe{
			{IngredientID: flour.ID, Amount: 200},
			{IngredientID: egg.ID, Amount: 2},
		})
	bread := createTestRecipe(t, repo, author, "Bread", []entities.Tag{*tag},
		[]entities.IngredientInRecipe{{IngredientID: flour.ID, Amount: 300}})
	omelette := createTestRecipe(t, repo, author, "Omelette", []entities.Tag{*tag},
		[]entities.IngredientInRecipe{{IngredientID: egg.ID, Amount: 4}})

	for _, recipeID := range []uuid.UUID{pancakes.ID, bread.ID} {
		require.NoError(t, db.Create(&entities.ShoppingCart{
			ID: uuid.New(), UserID: viewer.ID, RecipeID: recipeID,
		}).Error)
	}
	// Another user's cart must not leak into the aggregation.
	require.NoError(t, db.Create(&entities.ShoppingCart{
		ID: uuid.New(), UserID: other.ID, RecipeID: omelette.ID,
	}).Error)

	items, err := repo.AggregateShoppingCart(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Egg", items[0].Name)
	assert.Equal(t, 2, items[0].TotalAmount)
	assert.Equal(t, "Flour", items[1].Name)
	assert.Equal(t, 500, items[1].TotalAmount)

	empty, err := repo.AggregateShoppingCart(ctx, author.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetRecipesByAuthorLimit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author@example.com")
	tag := createTestTag(t, db, "Lunch", "lunch")
	flour := createTestIngredient(t, db, "Flour", "g")
	for i := 0; i < 3; i++ {
		createTestRecipe(t, repo, author, fmt.Sprintf("Recipe %d", i), []entities.Tag{*tag},
			[]entities.IngredientInRecipe{{IngredientID: flour.ID, Amount: 1}})
	}

	limited, err := repo.GetRecipesByAuthor(ctx, author.ID, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	all, err := repo.GetRecipesByAuthor(ctx, author.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	count, err := repo.CountRecipesByAuthor(ctx, author.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}
