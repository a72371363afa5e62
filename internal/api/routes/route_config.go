package routes

import (
	"foodgram/internal/api/handlers"
	"foodgram/internal/middleware"
	"foodgram/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App               *fiber.App
	UserHandler       handlers.UserHandler
	RecipeHandler     handlers.RecipeHandler
	IngredientHandler handlers.IngredientHandler
	TagHandler        handlers.TagHandler
	Middleware        middleware.Middleware
	JWTService        jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.Users()
	c.Recipes()
	c.Catalogs()
	c.ShortLinks()
	c.GuestRoute()
}

func (c *Config) Users() {
	auth := c.Middleware.AuthMiddleware(c.JWTService)
	optional := c.Middleware.OptionalAuthMiddleware(c.JWTService)

	users := c.App.Group("/api/v1/users")
	{
		users.Post("/register", c.UserHandler.Register)
		users.Post("/login", c.UserHandler.Login)
		users.Post("/forgot_password", c.UserHandler.ForgotPassword)
		users.Post("/reset_password", c.UserHandler.ResetPassword)
		users.Get("/me", auth, c.UserHandler.Me)
		users.Put("/me/avatar", auth, c.UserHandler.UpdateAvatar)
		users.Delete("/me/avatar", auth, c.UserHandler.DeleteAvatar)
		users.Post("/set_password", auth, c.UserHandler.SetPassword)
		users.Get("/subscriptions", auth, c.UserHandler.GetSubscriptions)
		users.Get("", optional, c.UserHandler.GetUsers)
		users.Get("/:id", optional, c.UserHandler.GetUserDetail)
		users.Post("/:id/subscribe", auth, c.UserHandler.Subscribe)
		users.Delete("/:id/subscribe", auth, c.UserHandler.Unsubscribe)
	}
}

func (c *Config) Recipes() {
	auth := c.Middleware.AuthMiddleware(c.JWTService)
	optional := c.Middleware.OptionalAuthMiddleware(c.JWTService)

	recipes := c.App.Group("/api/v1/recipes")
	{
		recipes.Get("/download_shopping_cart", auth, c.RecipeHandler.DownloadShoppingCart)
		recipes.Get("", optional, c.RecipeHandler.GetRecipes)
		recipes.Post("", auth, c.RecipeHandler.CreateRecipe)
		recipes.Get("/:id", optional, c.RecipeHandler.GetRecipeDetail)
		recipes.Patch("/:id", auth, c.RecipeHandler.UpdateRecipe)
		recipes.Delete("/:id", auth, c.RecipeHandler.DeleteRecipe)
		recipes.Get("/:id/get-link", c.RecipeHandler.GetShortLink)
		recipes.Post("/:id/favorite", auth, c.RecipeHandler.AddFavorite)
		recipes.Delete("/:id/favorite", auth, c.RecipeHandler.RemoveFavorite)
		recipes.Post("/:id/shopping_cart", auth, c.RecipeHandler.AddToCart)
		recipes.Delete("/:id/shopping_cart", auth, c.RecipeHandler.RemoveFromCart)
	}
}

func (c *Config) Catalogs() {
	tags := c.App.Group("/api/v1/tags")
	{
		tags.Get("", c.TagHandler.GetTags)
		tags.Get("/:id", c.TagHandler.GetTagDetail)
	}

	ingredients := c.App.Group("/api/v1/ingredients")
	{
		ingredients.Get("", c.IngredientHandler.GetIngredients)
		ingredients.Get("/:id", c.IngredientHandler.GetIngredientDetail)
	}
}

func (c *Config) ShortLinks() {
	c.App.Get("/s/:shortCode", c.RecipeHandler.ResolveShortLink)
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
}
