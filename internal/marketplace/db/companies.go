package db

import (
	"context"

	dbmodels "github.com/sanayimarketi/marketplace/internal/marketplace/db/models"
	"github.com/sanayimarketi/marketplace/internal/marketplace/models"
	"gorm.io/gorm/clause"
)

func (r *Repository) GetCompany(ctx context.Context, id int64) (*models.Company, error) {
	var row dbmodels.Company
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return companyFromRow(&row), nil
}

func (r *Repository) CreateCompany(ctx context.Context, company *models.Company) error {
	row := dbmodels.Company{
		Name:      company.Name,
		Status:    string(company.Status),
		CreatedAt: company.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translateError(err)
	}
	company.ID = row.ID
	company.CreatedAt = row.CreatedAt
	return nil
}

// GetCompanyUser returns the link held by userID, or ErrNotFound.
func (r *Repository) GetCompanyUser(ctx context.Context, userID int64) (*models.CompanyUser, error) {
	var row dbmodels.CompanyUser
	if err := r.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error; err != nil {
		return nil, translateError(err)
	}
	return &models.CompanyUser{
		UserID:    row.UserID,
		CompanyID: row.CompanyID,
		CreatedAt: row.CreatedAt,
	}, nil
}

// CreateCompanyUser inserts the link unless the user already holds one.
// It reports whether a row was inserted; an existing link is not an error.
func (r *Repository) CreateCompanyUser(ctx context.Context, link *models.CompanyUser) (bool, error) {
	row := dbmodels.CompanyUser{
		UserID:    link.UserID,
		CompanyID: link.CompanyID,
		CreatedAt: link.CreatedAt,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&row)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
