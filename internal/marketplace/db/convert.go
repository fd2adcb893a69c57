package db

import (
	dbmodels "github.com/sanayimarketi/marketplace/internal/marketplace/db/models"
	"github.com/sanayimarketi/marketplace/internal/marketplace/models"
)

func userFromRow(row *dbmodels.User) *models.User {
	if row == nil {
		return nil
	}
	return &models.User{
		ID:        row.ID,
		Email:     row.Email,
		Role:      models.Role(row.Role),
		CreatedAt: row.CreatedAt,
	}
}

func companyFromRow(row *dbmodels.Company) *models.Company {
	if row == nil {
		return nil
	}
	return &models.Company{
		ID:        row.ID,
		Name:      row.Name,
		Status:    models.CompanyStatus(row.Status),
		CreatedAt: row.CreatedAt,
	}
}

func applicationFromRow(row *dbmodels.Application) *models.Application {
	return &models.Application{
		ID:                  row.ID,
		UserID:              row.UserID,
		Type:                models.ApplicationType(row.ApplicationType),
		TargetCompanyID:     row.TargetCompanyID,
		ProposedCompanyName: row.ProposedCompanyName,
		Status:              models.ApplicationStatus(row.Status),
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
		ResolvedAt:          row.ResolvedAt,
		ResolvedBy:          row.ResolvedBy,
		User:                userFromRow(row.User),
		TargetCompany:       companyFromRow(row.TargetCompany),
	}
}

func applicationsFromRows(rows []dbmodels.Application) []*models.Application {
	apps := make([]*models.Application, 0, len(rows))
	for i := range rows {
		apps = append(apps, applicationFromRow(&rows[i]))
	}
	return apps
}
