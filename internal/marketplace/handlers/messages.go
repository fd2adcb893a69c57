package handlers

import "time"

// SubmitApplicationRequest is the wire form of a new application. UserID may
// be left zero: the caller's own id is used.
type SubmitApplicationRequest struct {
	UserID              int64   `json:"user_id,omitempty" validate:"gte=0"`
	Type                string  `json:"type" validate:"required,oneof=AUTO_IMPORTED MANUAL_NEW MANUAL_EXISTING"`
	TargetCompanyID     *int64  `json:"target_company_id,omitempty" validate:"omitempty,gt=0"`
	ProposedCompanyName *string `json:"proposed_company_name,omitempty"`
}

// ApplicationIDRequest addresses a single application.
type ApplicationIDRequest struct {
	ID int64 `json:"id" validate:"gt=0"`
}

// Company is the wire form of a company.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Application is the wire form of an application.
type Application struct {
	ID                  int64      `json:"id"`
	UserID              int64      `json:"user_id"`
	UserEmail           string     `json:"user_email,omitempty"`
	Type                string     `json:"type"`
	Status              string     `json:"status"`
	TargetCompanyID     *int64     `json:"target_company_id,omitempty"`
	ProposedCompanyName *string    `json:"proposed_company_name,omitempty"`
	TargetCompany       *Company   `json:"target_company,omitempty"`
	TargetCompanyName   string     `json:"target_company_name,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	ResolvedAt          *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy          *int64     `json:"resolved_by,omitempty"`
}

// ApplicationResponse wraps a single application.
type ApplicationResponse struct {
	Application *Application `json:"application"`
}

// ListApplicationsResponse wraps a list of applications.
type ListApplicationsResponse struct {
	Applications []*Application `json:"applications"`
}
