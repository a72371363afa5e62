package user

import (
	"context"
	"errors"
	"fmt"

	"foodgram/domain"
	"foodgram/entities"
	"foodgram/internal/utils"
	"foodgram/internal/utils/mailing"
	"foodgram/internal/utils/storage"
	"foodgram/pkg/jwt"
	"foodgram/pkg/recipe"
	"foodgram/pkg/relation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.UserResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
		Me(ctx context.Context, userID uuid.UUID) (domain.UserResponse, error)
		GetUsers(ctx context.Context, page int, limit int, viewerID uuid.UUID, anonymous bool) ([]domain.UserResponse, domain.PaginationResponse, error)
		GetUserDetail(ctx context.Context, id uuid.UUID, viewerID uuid.UUID, anonymous bool) (domain.UserResponse, error)
		UpdateAvatar(ctx context.Context, userID uuid.UUID, req domain.UpdateAvatarRequest) (string, error)
		DeleteAvatar(ctx context.Context, userID uuid.UUID) error
		SetPassword(ctx context.Context, userID uuid.UUID, req domain.SetPasswordRequest) error
		ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error
		ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error
		Subscribe(ctx context.Context, userID uuid.UUID, authorID uuid.UUID, recipesLimit int) (domain.SubscriptionResponse, error)
		Unsubscribe(ctx context.Context, userID uuid.UUID, authorID uuid.UUID) error
		GetSubscriptions(ctx context.Context, userID uuid.UUID, page int, limit int, recipesLimit int) ([]domain.SubscriptionResponse, domain.PaginationResponse, error)
	}

	userService struct {
		userRepository         UserRepository
		recipeRepository       recipe.RecipeRepository
		subscriptionRepository relation.RelationRepository
		jwtService             jwt.JWTService
		awsS3                  storage.AwsS3
	}
)

func NewUserService(
	userRepository UserRepository,
	recipeRepository recipe.RecipeRepository,
	subscriptionRepository relation.RelationRepository,
	jwtService jwt.JWTService,
	awsS3 storage.AwsS3,
) UserService {
	return &userService{
		userRepository:         userRepository,
		recipeRepository:       recipeRepository,
		subscriptionRepository: subscriptionRepository,
		jwtService:             jwtService,
		awsS3:                  awsS3,
	}
}

func toUserResponse(user *entities.User, subscribed bool) domain.UserResponse {
	return domain.UserResponse{
		ID:           user.ID.String(),
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		AvatarURL:    user.AvatarURL,
		IsSubscribed: subscribed,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.UserResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserResponse{}, err
	}

	user := &entities.User{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashed),
	}
	if err := s.userRepository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.UserResponse{}, domain.ErrEmailAlreadyExists
		}
		return domain.UserResponse{}, err
	}
	return toUserResponse(user, false), nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LoginResponse{}, domain.ErrCredentialsInvalid
		}
		return domain.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return domain.LoginResponse{}, domain.ErrCredentialsInvalid
	}

	token := s.jwtService.GenerateTokenUser(user.ID.String())
	return domain.LoginResponse{
		Token: token,
		User:  toUserResponse(user, false),
	}, nil
}

func (s *userService) Me(ctx context.Context, userID uuid.UUID) (domain.UserResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		return domain.UserResponse{}, err
	}
	return toUserResponse(user, false), nil
}

func (s *userService) GetUsers(ctx context.Context, page int, limit int, viewerID uuid.UUID, anonymous bool) ([]domain.UserResponse, domain.PaginationResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	users, total, err := s.userRepository.GetUsers(ctx, page, limit)
	if err != nil {
		return nil, domain.PaginationResponse{}, err
	}

	result := make([]domain.UserResponse, 0, len(users))
	for _, u := range users {
		subscribed := false
		if !anonymous && u.ID != viewerID {
			subscribed, err = s.subscriptionRepository.Exists(ctx, viewerID, u.ID)
			if err != nil {
				return nil, domain.PaginationResponse{}, err
			}
		}
		result = append(result, toUserResponse(u, subscribed))
	}

	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}
	return result, domain.PaginationResponse{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

func (s *userService) GetUserDetail(ctx context.Context, id uuid.UUID, viewerID uuid.UUID, anonymous bool) (domain.UserResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		return domain.UserResponse{}, err
	}

	subscribed := false
	if !anonymous && user.ID != viewerID {
		subscribed, err = s.subscriptionRepository.Exists(ctx, viewerID, user.ID)
		if err != nil {
			return domain.UserResponse{}, err
		}
	}
	return toUserResponse(user, subscribed), nil
}

func (s *userService) UpdateAvatar(ctx context.Context, userID uuid.UUID, req domain.UpdateAvatarRequest) (string, error) {
	if _, err := s.userRepository.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrUserNotFound
		}
		return "", err
	}

	data, contentType, ext, err := utils.DecodeBase64Image(req.Avatar)
	if err != nil {
		return "", domain.ErrImageInvalid
	}

	key := fmt.Sprintf("avatars/%s.%s", userID.String(), ext)
	url, err := s.awsS3.UploadFile(ctx, key, data, contentType)
	if err != nil {
		return "", err
	}
	if err := s.userRepository.UpdateAvatar(ctx, userID, url); err != nil {
		return "", err
	}
	return url, nil
}

func (s *userService) DeleteAvatar(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}
	if user.AvatarURL == "" {
		return nil
	}
	return s.userRepository.UpdateAvatar(ctx, userID, "")
}

func (s *userService) SetPassword(ctx context.Context, userID uuid.UUID, req domain.SetPasswordRequest) error {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return domain.ErrPasswordWrong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepository.UpdatePassword(ctx, userID, string(hashed))
}

func (s *userService) ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	token := s.jwtService.GenerateTokenForgetPassword(user.Email)
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", utils.GetConfig("APP_URL"), token)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Follow the link below to reset your Foodgram password. The link expires in 15 minutes.</p><p><a href=%q>Reset password</a></p>",
		user.Username, resetLink,
	)
	return mailing.SendMail(user.Email, "Reset your Foodgram password", body)
}

func (s *userService) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	email, err := s.jwtService.ValidateTokenForgetPassword(req.Token)
	if err != nil {
		return err
	}

	user, err := s.userRepository.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepository.UpdatePassword(ctx, user.ID, string(hashed))
}

// buildSubscriptionResponse decorates an author with their recipe count and
// a recent-recipes preview, truncated to recipesLimit when it is positive.
func (s *userService) buildSubscriptionResponse(ctx context.Context, author *entities.User, recipesLimit int) (domain.SubscriptionResponse, error) {
	count, err := s.recipeRepository.CountRecipesByAuthor(ctx, author.ID)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}
	recipes, err := s.recipeRepository.GetRecipesByAuthor(ctx, author.ID, recipesLimit)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}

	preview := make([]domain.ShortRecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		preview = append(preview, domain.ShortRecipeResponse{
			ID:          r.ID.String(),
			Name:        r.Name,
			Image:       r.ImageURL,
			CookingTime: r.CookingTime,
		})
	}
	return domain.SubscriptionResponse{
		UserResponse: toUserResponse(author, true),
		RecipesCount: count,
		Recipes:      preview,
	}, nil
}

func (s *userService) Subscribe(ctx context.Context, userID uuid.UUID, authorID uuid.UUID, recipesLimit int) (domain.SubscriptionResponse, error) {
	if userID == authorID {
		return domain.SubscriptionResponse{}, domain.ErrSelfSubscription
	}

	author, err := s.userRepository.GetUserByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.SubscriptionResponse{}, domain.ErrUserNotFound
		}
		return domain.SubscriptionResponse{}, err
	}

	if err := s.subscriptionRepository.Add(ctx, userID, authorID); err != nil {
		if errors.Is(err, relation.ErrAlreadyExists) {
			return domain.SubscriptionResponse{}, domain.ErrAlreadySubscribed
		}
		return domain.SubscriptionResponse{}, err
	}
	return s.buildSubscriptionResponse(ctx, author, recipesLimit)
}

func (s *userService) Unsubscribe(ctx context.Context, userID uuid.UUID, authorID uuid.UUID) error {
	if _, err := s.userRepository.GetUserByID(ctx, authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}
	if err := s.subscriptionRepository.Remove(ctx, userID, authorID); err != nil {
		if errors.Is(err, relation.ErrNotFound) {
			return domain.ErrSubscriptionNotFound
		}
		return err
	}
	return nil
}

func (s *userService) GetSubscriptions(ctx context.Context, userID uuid.UUID, page int, limit int, recipesLimit int) ([]domain.SubscriptionResponse, domain.PaginationResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	authors, total, err := s.userRepository.GetSubscribedAuthors(ctx, userID, page, limit)
	if err != nil {
		return nil, domain.PaginationResponse{}, err
	}

	result := make([]domain.SubscriptionResponse, 0, len(authors))
	for _, author := range authors {
		res, err := s.buildSubscriptionResponse(ctx, author, recipesLimit)
		if err != nil {
			return nil, domain.PaginationResponse{}, err
		}
		result = append(result, res)
	}

	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}
	return result, domain.PaginationResponse{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}
