package models

import (
	"time"
)

// ApplicationType governs which fields an application requires and how a
// company comes into existence on approval.
type ApplicationType string

const (
	// AutoImported applications are submitted by the importer for a scraped company.
	AutoImported ApplicationType = "AUTO_IMPORTED"
	// ManualNew asks for a brand new company named by the proposed name.
	ManualNew ApplicationType = "MANUAL_NEW"
	// ManualExisting asks to be linked to an already listed company.
	ManualExisting ApplicationType = "MANUAL_EXISTING"
)

// Valid reports whether t is a known application type.
func (t ApplicationType) Valid() bool {
	switch t {
	case AutoImported, ManualNew, ManualExisting:
		return true
	}
	return false
}

// CreatesCompany reports whether approving an application of this type
// materializes a new company.
func (t ApplicationType) CreatesCompany() bool {
	return t == ManualNew || t == AutoImported
}

// ApplicationStatus is the state of an application.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "PENDING"
	StatusApproved ApplicationStatus = "APPROVED"
	StatusRejected ApplicationStatus = "REJECTED"
)

// Terminal reports whether no further transition is possible from s.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransitionTo reports whether s may move to next. Only PENDING has
// outgoing transitions, and only to APPROVED or REJECTED.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	return s == StatusPending && next.Terminal()
}

// Application is a user-submitted request to create or join a company listing.
type Application struct {
	ID                  int64             `json:"id"`
	UserID              int64             `json:"user_id"`
	Type                ApplicationType   `json:"type"`
	TargetCompanyID     *int64            `json:"target_company_id,omitempty"`
	ProposedCompanyName *string           `json:"proposed_company_name,omitempty"`
	Status              ApplicationStatus `json:"status"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
	// ResolvedAt and ResolvedBy are set when the application leaves PENDING.
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy *int64     `json:"resolved_by,omitempty"`

	// User and TargetCompany are populated on reads when available.
	User          *User    `json:"user,omitempty"`
	TargetCompany *Company `json:"target_company,omitempty"`
}

// Resolution carries the fields written when an application is approved
// or rejected.
type Resolution struct {
	ApplicationID   int64
	Status          ApplicationStatus
	TargetCompanyID *int64
	ResolvedBy      int64
	ResolvedAt      time.Time
}
