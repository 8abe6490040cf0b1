package repositories

import (
	"context"

	"gorm.io/gorm"

	"pos-api/models"
)

type UserRepository struct {
	db *gorm.DB
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FirstOrCreate inserts u unless a user with the same username exists.
func (r *UserRepository) FirstOrCreate(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Where(models.User{Username: u.Username}).FirstOrCreate(u).Error
}
