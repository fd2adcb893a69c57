// Package models contains the table rows of the marketplace database,
// configured to work using GORM as the ORM.
package models

import (
	"time"
)

// Company represents a company listing row.
type Company struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:company_name;size:255;not null;index"`
	Status    string    `gorm:"size:20;not null;default:INACTIVE;check:chk_companies_status,status IN ('ACTIVE','INACTIVE')"`
	CreatedAt time.Time `gorm:"not null"`
}

func (Company) TableName() string {
	return "companies"
}

// CompanyUser links one user to one company. The primary key on UserID is
// the authoritative at-most-one-company-per-user guard.
type CompanyUser struct {
	UserID    int64     `gorm:"primaryKey;autoIncrement:false"`
	CompanyID int64     `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null"`
	Company   *Company  `gorm:"foreignKey:CompanyID"`
}

func (CompanyUser) TableName() string {
	return "company_users"
}

// User represents the account columns the workflow reads.
type User struct {
	ID        int64     `gorm:"primaryKey"`
	Email     string    `gorm:"size:255;not null;uniqueIndex"`
	Role      string    `gorm:"size:20;not null;default:USER"`
	CreatedAt time.Time `gorm:"not null"`
}

func (User) TableName() string {
	return "users"
}
