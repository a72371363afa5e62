package domain

import (
	"errors"
)

var (
	MessageSuccessRegister         = "user registered successfully"
	MessageSuccessLogin            = "login success"
	MessageSuccessGetMe            = "success get profile"
	MessageSuccessGetUsers         = "success get users"
	MessageSuccessUpdateAvatar     = "avatar updated successfully"
	MessageSuccessDeleteAvatar     = "avatar deleted successfully"
	MessageSuccessSetPassword      = "password changed successfully"
	MessageSuccessForgotPassword   = "reset password email sent"
	MessageSuccessResetPassword    = "password reset successfully"
	MessageSuccessSubscribe        = "subscribed successfully"
	MessageSuccessUnsubscribe      = "unsubscribed successfully"
	MessageSuccessGetSubscriptions = "success get subscriptions"

	MessageFailedRegister         = "failed to register user"
	MessageFailedLogin            = "failed to login"
	MessageFailedGetMe            = "failed to get profile"
	MessageFailedGetUsers         = "failed to get users"
	MessageFailedUpdateAvatar     = "failed to update avatar"
	MessageFailedDeleteAvatar     = "failed to delete avatar"
	MessageFailedSetPassword      = "failed to change password"
	MessageFailedForgotPassword   = "failed to send reset password email"
	MessageFailedResetPassword    = "failed to reset password"
	MessageFailedSubscribe        = "failed to subscribe"
	MessageFailedUnsubscribe      = "failed to unsubscribe"
	MessageFailedGetSubscriptions = "failed to get subscriptions"

	ErrUserNotFound         = errors.New("user not found")
	ErrEmailAlreadyExists   = errors.New("email already registered")
	ErrCredentialsInvalid   = errors.New("wrong email or password")
	ErrPasswordWrong        = errors.New("current password is wrong")
	ErrSelfSubscription     = errors.New("cannot subscribe to yourself")
	ErrAlreadySubscribed    = errors.New("already subscribed to this author")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

type (
	RegisterRequest struct {
		Email     string `json:"email" validate:"required,email"`
		Username  string `json:"username" validate:"required"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Password  string `json:"password" validate:"required,min=8"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string       `json:"token"`
		User  UserResponse `json:"user"`
	}

	UserResponse struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		Username     string `json:"username"`
		FirstName    string `json:"first_name"`
		LastName     string `json:"last_name"`
		AvatarURL    string `json:"avatar,omitempty"`
		IsSubscribed bool   `json:"is_subscribed"`
	}

	UpdateAvatarRequest struct {
		// Avatar is a base64 payload, optionally with a data-url prefix.
		Avatar string `json:"avatar" validate:"required"`
	}

	SetPasswordRequest struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=8"`
	}

	ForgotPasswordRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	ResetPasswordRequest struct {
		Token       string `json:"token" validate:"required"`
		NewPassword string `json:"new_password" validate:"required,min=8"`
	}

	SubscriptionResponse struct {
		UserResponse
		RecipesCount int64                 `json:"recipes_count"`
		Recipes      []ShortRecipeResponse `json:"recipes"`
	}
)
