package handlers

import (
	"errors"

	"foodgram/domain"

	"github.com/gofiber/fiber/v2"
)

// statusForError maps service errors onto HTTP statuses. Missing resources
// are 404, author-only mutations by someone else are 403, everything the
// client got wrong (validation, duplicate toggles, empty cart) is 400.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrRecipeNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrIngredientNotFound),
		errors.Is(err, domain.ErrTagNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrNotRecipeAuthor):
		return fiber.StatusForbidden
	default:
		return fiber.StatusBadRequest
	}
}
