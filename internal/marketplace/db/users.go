package db

import (
	"context"

	dbmodels "github.com/sanayimarketi/marketplace/internal/marketplace/db/models"
	"github.com/sanayimarketi/marketplace/internal/marketplace/models"
)

func (r *Repository) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var row dbmodels.User
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return userFromRow(&row), nil
}

// CreateUser inserts a user account. Accounts are owned by the
// authentication service; this exists for seeding and tests.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	row := dbmodels.User{
		ID:        user.ID,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translateError(err)
	}
	user.ID = row.ID
	user.CreatedAt = row.CreatedAt
	return nil
}
