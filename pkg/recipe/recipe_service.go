package recipe

import (
	"context"
	"errors"
	"fmt"

	"foodgram/domain"
	"foodgram/entities"
	"foodgram/internal/utils"
	"foodgram/internal/utils/cache"
	"foodgram/internal/utils/storage"
	"foodgram/pkg/ingredient"
	"foodgram/pkg/relation"
	"foodgram/pkg/tag"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const shortCodeAttempts = 5

type (
	RecipeService interface {
		GetRecipes(ctx context.Context, filter domain.RecipeFilter) ([]domain.RecipeResponse, domain.PaginationResponse, error)
		GetRecipeDetail(ctx context.Context, recipeID uuid.UUID, userID uuid.UUID, anonymous bool) (domain.RecipeResponse, error)
		CreateRecipe(ctx context.Context, userID uuid.UUID, req domain.CreateRecipeRequest) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, userID uuid.UUID, recipeID uuid.UUID, req domain.UpdateRecipeRequest) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, userID uuid.UUID, recipeID uuid.UUID) error
		AddFavorite(ctx context.Context, userID uuid.UUID, recipeID uuid.UUID) (domain.ShortRecipeResponse, error)
		RemoveFavorite(ctx context.Context, userID uuid.UUID, recipeID uuid.UUID) error
		AddToCart(ctx context.Context, userID uuid.UUID, recipeID uuid.UUID) (domain.ShortRecipeResponse, error)
		RemoveFromCart(ctx context.Context, userID uuid.UUID, recipeID uuid.UUID) error
		DownloadShoppingCart(ctx context.Context, userID uuid.UUID) (string, error)
		GetShortLink(ctx context.Context, recipeID uuid.UUID, baseURL string) (domain.ShortLinkResponse, error)
		ResolveShortCode(ctx context.Context, code string) (uuid.UUID, error)
	}

	recipeService struct {
		recipeRepository       RecipeRepository
		ingredientRepository   ingredient.IngredientRepository
		tagRepository          tag.TagRepository
		favoriteRepository     relation.RelationRepository
		cartRepository         relation.RelationRepository
		subscriptionRepository relation.RelationRepository
		awsS3                  storage.AwsS3
		cache                  cache.Cache
	}
)

func NewRecipeService(
	recipeRepository RecipeRepository,
	ingredientRepository ingredient.IngredientRepository,
	tagRepository tag.TagRepository,
	favoriteRepository relation.RelationRepository,
	cartRepository relation.RelationRepository,
	subscriptionRepository relation.RelationRepository,
	awsS3 storage.AwsS3,
	cache cache.Cache,
) RecipeService {
	return &recipeService{
		recipeRepository:       recipeRepository,
		ingredientRepository:   ingredientRepository,
		tagRepository:          tagRepository,
		favoriteRepository:     favoriteRepository,
		cartRepository:         cartRepository,
		subscriptionRepository: subscriptionRepository,
		awsS3:                  awsS3,
		cache:                  cache,
	}
}

// resolveIngredients validates the requested ingredient set and maps it to
// join rows. Duplicates and unknown ids are rejected before anything is
// written.
func (s *recipeService) resolveIngredients(ctx context.Context, reqs []domain.IngredientAmountRequest) ([]entities.IngredientInRecipe, error) {
	if len(reqs) == 0 {
		return nil, domain.ErrNoIngredients
	}

	seen := make(map[uuid.UUID]bool, len(reqs))
	ids := make([]uuid.UUID, 0, len(reqs))
	for _, req := range reqs {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			return nil, domain.ErrParseUUID
		}
		if seen[id] {
			return nil, domain.ErrDuplicateIngredient
		}
		seen[id] = true
		ids = append(ids, id)
	}

	found, err := s.ingredientRepository.GetIngredientsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(found) != len(ids) {
		return nil, domain.ErrIngredientNotFound
	}

	rows := make([]entities.IngredientInRecipe, 0, len(reqs))
	for i, req := range reqs {
		rows = append(rows, entities.IngredientInRecipe{
			IngredientID: ids[i],
			Amount:       req.Amount,
		})
	}
	return rows, nil
}

func (s *recipeService) resolveTags(ctx context.Context, tagIDs []string) ([]entities.Tag, error) {
	if len(tagIDs) == 0 {
		return nil, domain.ErrNoTags
	}

	seen := make(map[uuid.UUID]bool, len(tagIDs))
	ids := make([]uuid.UUID, 0, len(tagIDs))
	for _, raw := range tagIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, domain.ErrParseUUID
		}
		if seen[id] {
			return nil, domain.ErrDuplicateTag
		}
		seen[id] = true
		ids = append(ids, id)
	}

	found, err := s.tagRepository.GetTagsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(found) != len(ids) {
		return nil, domain.ErrTagNotFound
	}

	tags := make([]entities.Tag, 0, len(found))
	for _, t := range found {
		tags = append(tags, *t)
	}
	return tags, nil
}

func (s *recipeService) uploadImage(ctx context.Context, payload string) (string, error) {
	data, contentType, ext, err := utils.DecodeBase64Image(payload)
	if err != nil {
		return "", domain.ErrImageInvalid
	}
	key := fmt.Sprintf("recipes/%s.%s", uuid.New().String(), ext)
	return s.awsS3.UploadFile(ctx, key, data, contentType)
}

func (s *recipeService) toRecipeResponse(ctx context.Context, recipe *entities.Recipe, userID uuid.UUID, anonymous bool) (domain.RecipeResponse, error) {
	res := domain.RecipeResponse{
		ID:          recipe.ID.String(),
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		Text:        recipe.Text,
		CookingTime: recipe.CookingTime,
		Ingredients: make([]domain.IngredientInRecipeResponse, 0, len(recipe.Ingredients)),
		Tags:        make([]domain.TagResponse, 0, len(recipe.Tags)),
	}

	if recipe.Author != nil {
		res.Author = domain.UserResponse{
			ID:        recipe.Author.ID.String(),
			Email:     recipe.Author.Email,
			Username:  recipe.Author.Username,
			FirstName: recipe.Author.FirstName,
			LastName:  recipe.Author.LastName,
			AvatarURL: recipe.Author.AvatarURL,
		}
	}

	for _, row := range recipe.Ingredients {
		item := domain.IngredientInRecipeResponse{
			ID:     row.IngredientID.String(),
			Amount: row.Amount,
		}
		if row.Ingredient != nil {
			item.Name = row.Ingredient.Name
			item.MeasurementUnit = row.Ingredient.MeasurementUnit
		}
		res.Ingredients = append(res.Ingredients, item)
	}
	for _, t := range recipe.Tags {
		res.Tags = append(res.Tags, domain.TagResponse{
			ID:   t.ID.String(),
			Name: t.Name,
			Slug: t.Slug,
		})
	}

	if anonymous {
		return res, nil
	}

	favorited, err := s.favoriteRepository.Exists(ctx, userID, recipe.ID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	inCart, err := s.cartRepository.Exists(ctx, userID, recipe.ID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	res.IsFavorited = favorited
	res.IsInShoppingCart = inCart

	if recipe.Author != nil && recipe.Author.ID != userID {
		subscribed, err := s.subscriptionRepository.Exists(ctx, userID, recipe.Author.ID)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		res.Author.IsSubscribed = subscribed
	}
	return res, nil
}

func toShortRecipeResponse(recipe *entities.Recipe) domain.ShortRecipeResponse {
	return domain.ShortRecipeResponse{
		ID:          recipe.ID.String(),
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter) ([]domain.RecipeResponse, domain.PaginationResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}

	recipes, total, err := s.recipeRepository.GetRecipes(ctx, filter)
	if err != nil {
		return nil, domain.PaginationResponse{}, err
	}

	result := make([]domain.RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		res, err := s.toRecipeResponse(ctx, r, filter.UserID, filter.Anonymous)
		if err != nil {
			return nil, domain.PaginationResponse{}, err
		}
		result = append(result, res)
	}

	totalPages := total / int64(filter.Limit)
	if total%int64(filter.Limit) != 0 {
		totalPages++
	}
	return result, domain.PaginationResponse{
		Page:       filter.Page,
		Limit:      filter.Limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

func (s *recipeService) GetRecipeDetail(ctx context.Context, recipeID uuid.UUID, userID uuid.UUID, anonymous bool) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}
	return s.toRecipeResponse(ctx, recipe, userID, anonymous)
}

func (s *recipeService) CreateRecipe(ctx context.Context, userID uuid.UUID, req domain.CreateRecipeRequest) (domain.RecipeResponse, error) {
	ingredients, err := s.resolveIngredients(ctx, req.Ingredients)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	tags, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	if req.Image == "" {
		return domain.RecipeResponse{}, domain.ErrImageRequired
	}
	imageURL, err := s.uploadImage(ctx, req.Image)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe := &entities.Recipe{
		AuthorID:    userID,
		Name:        req.Name,
		ImageURL:    imageURL,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}
	if err := s.recipeRepository.CreateRecipe(ctx, recipe, ingredients, tags); err != nil {
		return domain.RecipeResponse{}, err
	}
	return s.GetRecipeDetail(ctx, recipe.ID, userID, false)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, userID uuid.UUID, recipeID uuid.UUID, req domain.UpdateRecipeRequest) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}
	if recipe.AuthorID != userID {
		return domain.RecipeResponse{}, domain.ErrNotRecipeAuthor
	}

	ingredients, err := s.resolveIngredients(ctx, req.Ingredients)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	tags, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe.Name = req.Name
	recipe.Text = req.Text
	recipe.CookingTime = req.CookingTime
	if req.Image != "" {
		imageURL, err := s.uploadImage(ctx, req.Image)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		recipe.ImageURL = imageURL
	}

	if err := s.recipeRepository.UpdateRecipe(ctx, recipe, ingredients, tags); err != nil {
		return domain.RecipeResponse{}, err
	}
	return s.GetRecipeDetail(ctx, recipe.ID, userID, false)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, userID uuid.UUID, recipeID uuid.UUID) error {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}
	if recipe.AuthorID != userID {
		return domain.ErrNotRecipeAuthor
	}
	return s.recipeRepository.DeleteRecipe(ctx, recipeID)
}

func (s *recipeService) AddFavorite(ctx context.Context, userID uuid.UUID, recipeID uuid.UUID) (domain.ShortRecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ShortRecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.ShortRecipeResponse{}, err
	}

	if err := s.favoriteRepository.Add(ctx, userID, recipeID); err != nil {
		if errors.Is(err, relation.ErrAlreadyExists) {
			return domain.ShortRecipeResponse{}, domain.ErrAlreadyFavorited
		}
		return domain.ShortRecipeResponse{}, err
	}
	return toShortRecipeResponse(recipe), nil
}

func (s *recipeService) RemoveFavorite(ctx context.Context, userID uuid.UUID, recipeID uuid.UUID) error {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}
	if err := s.favoriteRepository.Remove(ctx, userID, recipeID); err != nil {
		if errors.Is(err, relation.ErrNotFound) {
			return domain.ErrNotFavorited
		}
		return err
	}
	return nil
}

func (s *recipeService) AddToCart(ctx context.Context, userID uuid.UUID, recipeID uuid.UUID) (domain.ShortRecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ShortRecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.ShortRecipeResponse{}, err
	}

	if err := s.cartRepository.Add(ctx, userID, recipeID); err != nil {
		if errors.Is(err, relation.ErrAlreadyExists) {
			return domain.ShortRecipeResponse{}, domain.ErrAlreadyInCart
		}
		return domain.ShortRecipeResponse{}, err
	}
	return toShortRecipeResponse(recipe), nil
}

func (s *recipeService) RemoveFromCart(ctx context.Context, userID uuid.UUID, recipeID uuid.UUID) error {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}
	if err := s.cartRepository.Remove(ctx, userID, recipeID); err != nil {
		if errors.Is(err, relation.ErrNotFound) {
			return domain.ErrNotInCart
		}
		return err
	}
	return nil
}

func (s *recipeService) DownloadShoppingCart(ctx context.Context, userID uuid.UUID) (string, error) {
	items, err := s.recipeRepository.AggregateShoppingCart(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", domain.ErrEmptyCart
	}
	return RenderShoppingList(items), nil
}

// GetShortLink returns the recipe's share link, minting the code on first
// use. Minting retries on alphabet collisions; losing the claim race to a
// concurrent request is fine, the winner's code is reused.
func (s *recipeService) GetShortLink(ctx context.Context, recipeID uuid.UUID, baseURL string) (domain.ShortLinkResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ShortLinkResponse{}, domain.ErrRecipeNotFound
		}
		return domain.ShortLinkResponse{}, err
	}

	if recipe.ShortCode != nil {
		return domain.ShortLinkResponse{ShortLink: shortLinkURL(baseURL, *recipe.ShortCode)}, nil
	}

	for attempt := 0; attempt < shortCodeAttempts; attempt++ {
		code := randomShortCode()
		claimed, err := s.recipeRepository.ClaimShortCode(ctx, recipeID, code)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		if err != nil {
			return domain.ShortLinkResponse{}, err
		}
		if !claimed {
			break
		}
		s.cache.SetShortLink(ctx, code, recipeID)
		return domain.ShortLinkResponse{ShortLink: shortLinkURL(baseURL, code)}, nil
	}

	// Either someone else claimed first or every candidate collided; in both
	// cases the row holds the answer now.
	recipe, err = s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return domain.ShortLinkResponse{}, err
	}
	if recipe.ShortCode == nil {
		return domain.ShortLinkResponse{}, errors.New("failed to assign short code")
	}
	return domain.ShortLinkResponse{ShortLink: shortLinkURL(baseURL, *recipe.ShortCode)}, nil
}

func (s *recipeService) ResolveShortCode(ctx context.Context, code string) (uuid.UUID, error) {
	if id, ok := s.cache.GetShortLink(ctx, code); ok {
		return id, nil
	}

	recipe, err := s.recipeRepository.GetRecipeByShortCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, domain.ErrRecipeNotFound
		}
		return uuid.Nil, err
	}
	s.cache.SetShortLink(ctx, code, recipe.ID)
	return recipe.ID, nil
}

func shortLinkURL(baseURL string, code string) string {
	return fmt.Sprintf("%s/s/%s", baseURL, code)
}
