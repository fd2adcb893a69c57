package db

import (
	"context"

	dbmodels "github.com/sanayimarketi/marketplace/internal/marketplace/db/models"
	e "github.com/sanayimarketi/marketplace/internal/marketplace/errors"
	"github.com/sanayimarketi/marketplace/internal/marketplace/models"
	"gorm.io/gorm/clause"
)

func (r *Repository) CreateApplication(ctx context.Context, app *models.Application) error {
	row := dbmodels.Application{
		UserID:              app.UserID,
		ApplicationType:     string(app.Type),
		TargetCompanyID:     app.TargetCompanyID,
		ProposedCompanyName: app.ProposedCompanyName,
		Status:              string(app.Status),
		CreatedAt:           app.CreatedAt,
		UpdatedAt:           app.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return translateError(err)
	}
	app.ID = row.ID
	app.CreatedAt = row.CreatedAt
	app.UpdatedAt = row.UpdatedAt
	return nil
}

// GetApplication loads an application together with its user and target company.
func (r *Repository) GetApplication(ctx context.Context, id int64) (*models.Application, error) {
	var row dbmodels.Application
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("TargetCompany").
		First(&row, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return applicationFromRow(&row), nil
}

// LockApplication loads an application with SELECT ... FOR UPDATE. It only
// serializes anything when called inside WithTransaction.
func (r *Repository) LockApplication(ctx context.Context, id int64) (*models.Application, error) {
	var row dbmodels.Application
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&row, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return applicationFromRow(&row), nil
}

// ResolveApplication moves a PENDING application to res.Status. The update
// is guarded on the current status; if another transaction already resolved
// the row, ErrInvalidState is returned.
func (r *Repository) ResolveApplication(ctx context.Context, res *models.Resolution) error {
	updates := map[string]interface{}{
		"status":      string(res.Status),
		"resolved_at": res.ResolvedAt,
		"resolved_by": res.ResolvedBy,
		"updated_at":  res.ResolvedAt,
	}
	if res.TargetCompanyID != nil {
		updates["target_company_id"] = *res.TargetCompanyID
	}

	result := r.db.WithContext(ctx).
		Model(&dbmodels.Application{}).
		Where("id = ? AND status = ?", res.ApplicationID, string(models.StatusPending)).
		Updates(updates)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return e.ErrInvalidState
	}
	return nil
}

// ListApplicationsByStatus returns applications in status, oldest first.
func (r *Repository) ListApplicationsByStatus(ctx context.Context, status models.ApplicationStatus) ([]*models.Application, error) {
	var rows []dbmodels.Application
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("TargetCompany").
		Where("status = ?", string(status)).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	return applicationsFromRows(rows), nil
}

// ListApplicationsByUser returns the applications submitted by userID, newest first.
func (r *Repository) ListApplicationsByUser(ctx context.Context, userID int64) ([]*models.Application, error) {
	var rows []dbmodels.Application
	err := r.db.WithContext(ctx).
		Preload("TargetCompany").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	return applicationsFromRows(rows), nil
}
