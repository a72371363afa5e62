package domain

import (
	"errors"

	"github.com/google/uuid"
)

var (
	MessageSuccessGetRecipes         = "success get recipes"
	MessageSuccessGetRecipeDetail    = "success get recipe detail"
	MessageSuccessCreateRecipe       = "recipe created successfully"
	MessageSuccessUpdateRecipe       = "recipe updated successfully"
	MessageSuccessDeleteRecipe       = "recipe deleted successfully"
	MessageSuccessAddFavorite        = "recipe added to favorites"
	MessageSuccessRemoveFavorite     = "recipe removed from favorites"
	MessageSuccessAddToCart          = "recipe added to shopping cart"
	MessageSuccessRemoveFromCart     = "recipe removed from shopping cart"
	MessageSuccessGetShortLink       = "success get short link"

	MessageFailedGetRecipes      = "failed to get recipes"
	MessageFailedGetRecipeDetail = "failed to get recipe detail"
	MessageFailedCreateRecipe    = "failed to create recipe"
	MessageFailedUpdateRecipe    = "failed to update recipe"
	MessageFailedDeleteRecipe    = "failed to delete recipe"
	MessageFailedAddFavorite     = "failed to add recipe to favorites"
	MessageFailedRemoveFavorite  = "failed to remove recipe from favorites"
	MessageFailedAddToCart       = "failed to add recipe to shopping cart"
	MessageFailedRemoveFromCart  = "failed to remove recipe from shopping cart"
	MessageFailedDownloadCart    = "failed to download shopping list"
	MessageFailedGetShortLink    = "failed to get short link"

	ErrRecipeNotFound      = errors.New("recipe not found")
	ErrNotRecipeAuthor     = errors.New("only the author can modify this recipe")
	ErrNoIngredients       = errors.New("recipe must have at least one ingredient")
	ErrNoTags              = errors.New("recipe must have at least one tag")
	ErrDuplicateIngredient = errors.New("ingredients must not repeat")
	ErrDuplicateTag        = errors.New("tags must not repeat")
	ErrIngredientNotFound  = errors.New("ingredient not found")
	ErrTagNotFound         = errors.New("tag not found")
	ErrImageRequired       = errors.New("image must not be empty")
	ErrImageInvalid        = errors.New("image payload is not valid base64")
	ErrAlreadyFavorited    = errors.New("recipe already in favorites")
	ErrNotFavorited        = errors.New("recipe is not in favorites")
	ErrAlreadyInCart       = errors.New("recipe already in shopping cart")
	ErrNotInCart           = errors.New("recipe is not in shopping cart")
	ErrEmptyCart           = errors.New("shopping cart is empty")
)

type (
	IngredientAmountRequest struct {
		ID     string `json:"id" validate:"required,uuid"`
		Amount int    `json:"amount" validate:"required,min=1"`
	}

	CreateRecipeRequest struct {
		Name        string                    `json:"name" validate:"required"`
		Image       string                    `json:"image" validate:"required"`
		Text        string                    `json:"text" validate:"required"`
		CookingTime int                       `json:"cooking_time" validate:"required,min=1"`
		Ingredients []IngredientAmountRequest `json:"ingredients" validate:"required,min=1,dive"`
		Tags        []string                  `json:"tags" validate:"required,min=1,dive,uuid"`
	}

	UpdateRecipeRequest struct {
		Name        string                    `json:"name" validate:"required"`
		Image       string                    `json:"image"`
		Text        string                    `json:"text" validate:"required"`
		CookingTime int                       `json:"cooking_time" validate:"required,min=1"`
		Ingredients []IngredientAmountRequest `json:"ingredients" validate:"required,min=1,dive"`
		Tags        []string                  `json:"tags" validate:"required,min=1,dive,uuid"`
	}

	IngredientInRecipeResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	RecipeResponse struct {
		ID               string                       `json:"id"`
		Author           UserResponse                 `json:"author"`
		Name             string                       `json:"name"`
		Image            string                       `json:"image"`
		Text             string                       `json:"text"`
		Ingredients      []IngredientInRecipeResponse `json:"ingredients"`
		Tags             []TagResponse                `json:"tags"`
		IsFavorited      bool                         `json:"is_favorited"`
		IsInShoppingCart bool                         `json:"is_in_shopping_cart"`
		CookingTime      int                          `json:"cooking_time"`
	}

	ShortRecipeResponse struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Image       string `json:"image"`
		CookingTime int    `json:"cooking_time"`
	}

	ShortLinkResponse struct {
		ShortLink string `json:"short-link"`
	}

	// RecipeFilter composes the list predicates. Unset fields are no-ops;
	// TagSlugs is OR'd internally, everything else ANDs.
	RecipeFilter struct {
		TagSlugs         []string
		AuthorID         uuid.UUID
		IsFavorited      bool
		IsInShoppingCart bool
		UserID           uuid.UUID
		Anonymous        bool
		Page             int
		Limit            int
	}

	// ShoppingItem is one aggregated row of the shopping list: a distinct
	// (name, unit) pair with amounts summed across every recipe in the cart.
	ShoppingItem struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		TotalAmount     int    `json:"total_amount"`
	}
)
