package repository

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/CodeCraftStudio/auth_service/internal/domain"
	"github.com/CodeCraftStudio/auth_service/internal/helper"
	"gorm.io/gorm"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByPhone(ctx context.Context, phone string) (*domain.User, error)
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	SetProviderID(ctx context.Context, userID string, providerID string) error
	UpdateImage(ctx context.Context, userID string, imageURL string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("nil user")
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, domain.ErrConflict
		}
		log.Printf("create user error: %v", err)
		return nil, fmt.Errorf("%w: create user", domain.ErrUnavailable)
	}

	return user, nil
}

func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user := &domain.User{}

	if err := r.db.WithContext(ctx).First(user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		log.Printf("find user by email error: %v", err)
		return nil, fmt.Errorf("%w: find user by email", domain.ErrUnavailable)
	}

	return user, nil
}

func (r *userRepository) FindUserByPhone(ctx context.Context, phone string) (*domain.User, error) {
	user := &domain.User{}

	if err := r.db.WithContext(ctx).First(user, "phone = ?", phone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		log.Printf("find user by phone error: %v", err)
		return nil, fmt.Errorf("%w: find user by phone", domain.ErrUnavailable)
	}

	return user, nil
}

func (r *userRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user := &domain.User{}

	if err := r.db.WithContext(ctx).First(user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		log.Printf("find user by id error: %v", err)
		return nil, fmt.Errorf("%w: find user by id", domain.ErrUnavailable)
	}

	return user, nil
}

// SetProviderID backfills provider_id on an existing account. It touches
// no other column, and only writes when the column is still empty so an
// already-linked account is never overwritten.
func (r *userRepository) SetProviderID(ctx context.Context, userID string, providerID string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ? AND provider_id IS NULL", userID).
		Update("provider_id", providerID)

	if res.Error != nil {
		if helper.IsUniqueViolation(res.Error) {
			return domain.ErrConflict
		}
		log.Printf("set provider id error: %v", res.Error)
		return fmt.Errorf("%w: set provider id", domain.ErrUnavailable)
	}
	return nil
}

func (r *userRepository) UpdateImage(ctx context.Context, userID string, imageURL string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", userID).
		Update("image", imageURL)

	if res.Error != nil {
		log.Printf("update image error: %v", res.Error)
		return fmt.Errorf("%w: update image", domain.ErrUnavailable)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
