package config

import (
	"os"
	"time"

	"foodgram/internal/api/handlers"
	"foodgram/internal/api/routes"
	"foodgram/internal/middleware"
	"foodgram/internal/utils"
	"foodgram/internal/utils/cache"
	"foodgram/internal/utils/storage"
	"foodgram/pkg/ingredient"
	"foodgram/pkg/jwt"
	"foodgram/pkg/recipe"
	"foodgram/pkg/relation"
	"foodgram/pkg/tag"
	"foodgram/pkg/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

func NewApp(db *gorm.DB) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Europe/Moscow",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// utils
	s3 := storage.NewAwsS3()
	redisCache := cache.NewRedisCache(
		utils.GetConfig("REDIS_ADDR"),
		utils.GetConfig("REDIS_PASSWORD"),
	)

	// Repository
	userRepository := user.NewUserRepository(db)
	recipeRepository := recipe.NewRecipeRepository(db)
	ingredientRepository := ingredient.NewIngredientRepository(db)
	tagRepository := tag.NewTagRepository(db)
	favoriteRepository := relation.NewRelationRepository(db, "favorites", "user_id", "recipe_id")
	cartRepository := relation.NewRelationRepository(db, "shopping_carts", "user_id", "recipe_id")
	subscriptionRepository := relation.NewRelationRepository(db, "subscriptions", "user_id", "author_id")

	// Service
	jwtService := jwt.NewJWTService()
	userService := user.NewUserService(
		userRepository,
		recipeRepository,
		subscriptionRepository,
		jwtService,
		s3,
	)
	recipeService := recipe.NewRecipeService(
		recipeRepository,
		ingredientRepository,
		tagRepository,
		favoriteRepository,
		cartRepository,
		subscriptionRepository,
		s3,
		redisCache,
	)
	ingredientService := ingredient.NewIngredientService(ingredientRepository)
	tagService := tag.NewTagService(tagRepository)

	// Handler
	userHandler := handlers.NewUserHandler(userService, validator)
	recipeHandler := handlers.NewRecipeHandler(recipeService, validator)
	ingredientHandler := handlers.NewIngredientHandler(ingredientService)
	tagHandler := handlers.NewTagHandler(tagService)

	// routes
	routesConfig := routes.Config{
		App:               app,
		UserHandler:       userHandler,
		RecipeHandler:     recipeHandler,
		IngredientHandler: ingredientHandler,
		TagHandler:        tagHandler,
		Middleware:        middlewares,
		JWTService:        jwtService,
	}
	routesConfig.Setup()
	return app, nil
}
