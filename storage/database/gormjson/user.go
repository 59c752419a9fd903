package gormjson

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/nexusalpri/academy/core/user"
)

func (m userModel) user() user.User {
	usr := user.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		Role:         m.Role,
		IsActive:     m.IsActive,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
	if m.LastLogin != nil {
		usr.LastLogin = m.LastLogin.UTC()
	}
	return usr
}

type userRepository struct {
	db *gorm.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	m := userModel{
		ID:           uuid.New().String(),
		Name:         usr.Name,
		Email:        usr.Email,
		Role:         usr.Role,
		IsActive:     usr.IsActive,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt,
		UpdatedAt:    usr.UpdatedAt,
	}
	if err := repo.db.WithContext(ctx).Create(&m).Error; err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return m.user(), nil
}

func (repo userRepository) get(ctx context.Context, query string, arg string) (user.User, error) {
	var m userModel
	if err := repo.db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "finding user")
	}
	return m.user(), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.get(ctx, "id = ?", id)
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.get(ctx, "email = ?", email)
}

func (repo userRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	at = at.UTC()
	res := repo.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", id).UpdateColumn("last_login", &at)
	if res.Error != nil {
		return errors.Wrap(res.Error, "updating last login")
	}
	if res.RowsAffected == 0 {
		return user.ErrNotFound
	}
	return nil
}
