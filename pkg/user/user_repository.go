package user

import (
	"context"

	"foodgram/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	UserRepository interface {
		CreateUser(ctx context.Context, user *entities.User) error
		GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
		GetUserByEmail(ctx context.Context, email string) (*entities.User, error)
		GetUsers(ctx context.Context, page int, limit int) ([]*entities.User, int64, error)
		UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error
		UpdatePassword(ctx context.Context, id uuid.UUID, hashed string) error
		GetSubscribedAuthors(ctx context.Context, userID uuid.UUID, page int, limit int) ([]*entities.User, int64, error)
	}

	userRepository struct {
		db *gorm.DB
	}
)

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUsers(ctx context.Context, page int, limit int) ([]*entities.User, int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.User{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var users []*entities.User
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, count, nil
}

func (r *userRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	return r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("id = ?", id).
		Update("avatar_url", avatarURL).Error
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hashed string) error {
	return r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("id = ?", id).
		Update("password", hashed).Error
}

// GetSubscribedAuthors pages through the authors the user follows, newest
// subscription first.
func (r *userRepository) GetSubscribedAuthors(ctx context.Context, userID uuid.UUID, page int, limit int) ([]*entities.User, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&entities.User{}).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", userID)

	var count int64
	if err := base.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var authors []*entities.User
	err := base.
		Order("subscriptions.created_at DESC, users.id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&authors).Error
	if err != nil {
		return nil, 0, err
	}
	return authors, count, nil
}
