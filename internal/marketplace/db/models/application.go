package models

import (
	"time"
)

// Application is a row of company_applications.
type Application struct {
	ID                  int64     `gorm:"primaryKey"`
	UserID              int64     `gorm:"not null;index"`
	ApplicationType     string    `gorm:"size:20;not null"`
	TargetCompanyID     *int64    `gorm:"index"`
	ProposedCompanyName *string   `gorm:"size:255"`
	Status              string    `gorm:"size:20;not null;default:PENDING;index:idx_company_applications_status_created,priority:1;check:chk_company_applications_status,status IN ('PENDING','APPROVED','REJECTED')"`
	CreatedAt           time.Time `gorm:"not null;index:idx_company_applications_status_created,priority:2"`
	UpdatedAt           time.Time `gorm:"not null"`
	ResolvedAt          *time.Time
	ResolvedBy          *int64

	User          *User    `gorm:"foreignKey:UserID"`
	TargetCompany *Company `gorm:"foreignKey:TargetCompanyID"`
}

func (Application) TableName() string {
	return "company_applications"
}

// All returns every row type in migration order.
func All() []interface{} {
	return []interface{}{&User{}, &Company{}, &CompanyUser{}, &Application{}}
}
