package recipe

import (
	"context"

	"foodgram/domain"
	"foodgram/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	RecipeRepository interface {
		CreateRecipe(ctx context.Context, recipe *entities.Recipe, ingredients []entities.IngredientInRecipe, tags []entities.Tag) error
		UpdateRecipe(ctx context.Context, recipe *entities.Recipe, ingredients []entities.IngredientInRecipe, tags []entities.Tag) error
		DeleteRecipe(ctx context.Context, id uuid.UUID) error
		GetRecipeByID(ctx context.Context, id uuid.UUID) (*entities.Recipe, error)
		GetRecipes(ctx context.Context, filter domain.RecipeFilter) ([]*entities.Recipe, int64, error)
		GetRecipesByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]*entities.Recipe, error)
		CountRecipesByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error)
		GetRecipeByShortCode(ctx context.Context, code string) (*entities.Recipe, error)
		ClaimShortCode(ctx context.Context, recipeID uuid.UUID, code string) (bool, error)
		AggregateShoppingCart(ctx context.Context, userID uuid.UUID) ([]domain.ShoppingItem, error)
	}

	recipeRepository struct {
		db *gorm.DB
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe, ingredients []entities.IngredientInRecipe, tags []entities.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Append(&tags); err != nil {
			return err
		}
		for i := range ingredients {
			ingredients[i].RecipeID = recipe.ID
		}
		return tx.Create(&ingredients).Error
	})
}

// UpdateRecipe replaces the ingredient and tag sets wholesale rather than
// diffing them; everything happens inside one transaction so a half-written
// recipe is never observable.
func (r *recipeRepository) UpdateRecipe(ctx context.Context, recipe *entities.Recipe, ingredients []entities.IngredientInRecipe, tags []entities.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(recipe).Updates(map[string]interface{}{
			"name":         recipe.Name,
			"image_url":    recipe.ImageURL,
			"text":         recipe.Text,
			"cooking_time": recipe.CookingTime,
		}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&entities.IngredientInRecipe{}).Error; err != nil {
			return err
		}
		for i := range ingredients {
			ingredients[i].RecipeID = recipe.ID
		}
		if err := tx.Create(&ingredients).Error; err != nil {
			return err
		}
		return tx.Model(recipe).Association("Tags").Replace(&tags)
	})
}

func (r *recipeRepository) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.IngredientInRecipe{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.ShoppingCart{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entities.Recipe{}).Error
	})
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id uuid.UUID) (*entities.Recipe, error) {
	var recipe entities.Recipe
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Where("id = ?", id).
		First(&recipe).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) GetRecipes(ctx context.Context, filter domain.RecipeFilter) ([]*entities.Recipe, int64, error) {
	// Boolean filters require an identity; for anonymous requesters they
	// short-circuit to an empty page instead of failing.
	if filter.Anonymous && (filter.IsFavorited || filter.IsInShoppingCart) {
		return []*entities.Recipe{}, 0, nil
	}

	query := r.db.WithContext(ctx).Model(&entities.Recipe{})

	if len(filter.TagSlugs) > 0 {
		tagged := r.db.
			Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}
	if filter.AuthorID != uuid.Nil {
		query = query.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if filter.IsFavorited {
		query = query.
			Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
			Where("favorites.user_id = ?", filter.UserID)
	}
	if filter.IsInShoppingCart {
		query = query.
			Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipes.id").
			Where("shopping_carts.user_id = ?", filter.UserID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var ids []uuid.UUID
	err := query.
		Order("recipes.created_at DESC, recipes.id DESC").
		Offset(offset).
		Limit(filter.Limit).
		Pluck("recipes.id", &ids).Error
	if err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return []*entities.Recipe{}, count, nil
	}

	var recipes []*entities.Recipe
	err = r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Where("id IN ?", ids).
		Order("created_at DESC, id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, count, nil
}

func (r *recipeRepository) GetRecipesByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]*entities.Recipe, error) {
	var recipes []*entities.Recipe
	query := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *recipeRepository) CountRecipesByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}

func (r *recipeRepository) GetRecipeByShortCode(ctx context.Context, code string) (*entities.Recipe, error) {
	var recipe entities.Recipe
	err := r.db.WithContext(ctx).Where("short_code = ?", code).First(&recipe).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// ClaimShortCode sets the code only while it is still unassigned. A false
// return with nil error means another request won the race; the caller
// re-reads the winning code. A unique violation on the code column surfaces
// as gorm.ErrDuplicatedKey so the caller can draw a fresh candidate.
func (r *recipeRepository) ClaimShortCode(ctx context.Context, recipeID uuid.UUID, code string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Where("id = ? AND short_code IS NULL", recipeID).
		Update("short_code", code)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *recipeRepository) AggregateShoppingCart(ctx context.Context, userID uuid.UUID) ([]domain.ShoppingItem, error) {
	var items []domain.ShoppingItem
	err := r.db.WithContext(ctx).
		Table("ingredient_in_recipes").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(ingredient_in_recipes.amount) AS total_amount").
		Joins("JOIN ingredients ON ingredients.id = ingredient_in_recipes.ingredient_id").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = ingredient_in_recipes.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
