// Package models defines the core domain models of the marketplace
// application workflow: companies, users, their exclusive company link and
// the applications that create or join companies.
package models

import (
	"time"
)

// CompanyStatus represents the listing status of a company.
type CompanyStatus string

const (
	// CompanyActive marks a company visible in the marketplace.
	CompanyActive   CompanyStatus = "ACTIVE"
	CompanyInactive CompanyStatus = "INACTIVE"
)

// Company defines the domain model for a company listing.
type Company struct {
	// ID is the unique identifier for the company.
	ID int64 `json:"id"`
	// Name is the company’s display name.
	Name string `json:"name"`
	// Status is the listing status.
	Status CompanyStatus `json:"status"`
	// CreatedAt records the timestamp when the company was created.
	CreatedAt time.Time `json:"created_at"`
}

// CompanyUser is the exclusive ownership association between one user and
// one company. A user holds at most one.
type CompanyUser struct {
	UserID    int64
	CompanyID int64
	CreatedAt time.Time
}
