package ingredient

import (
	"context"
	"strings"

	"foodgram/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	IngredientRepository interface {
		GetIngredientByID(ctx context.Context, id uuid.UUID) (*entities.Ingredient, error)
		GetIngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Ingredient, error)
		SearchIngredients(ctx context.Context, name string) ([]*entities.Ingredient, error)
	}

	ingredientRepository struct {
		db *gorm.DB
	}
)

func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

func (r *ingredientRepository) GetIngredientByID(ctx context.Context, id uuid.UUID) (*entities.Ingredient, error) {
	var ingredient entities.Ingredient
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ingredient).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (r *ingredientRepository) GetIngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Ingredient, error) {
	var ingredients []*entities.Ingredient
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// SearchIngredients matches the query case-insensitively anywhere in the
// name, ranking prefix matches above the rest; within a rank the order is
// alphabetical. An empty query returns the whole catalog alphabetically.
func (r *ingredientRepository) SearchIngredients(ctx context.Context, name string) ([]*entities.Ingredient, error) {
	var ingredients []*entities.Ingredient
	if name == "" {
		if err := r.db.WithContext(ctx).Order("name").Find(&ingredients).Error; err != nil {
			return nil, err
		}
		return ingredients, nil
	}

	pattern := strings.ToLower(name)
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", "%"+pattern+"%").
		Select("*, CASE WHEN LOWER(name) LIKE ? THEN 1 ELSE 0 END AS match_priority", pattern+"%").
		Order("match_priority DESC, name").
		Find(&ingredients).Error
	if err != nil {
		return nil, err
	}
	return ingredients, nil
}
