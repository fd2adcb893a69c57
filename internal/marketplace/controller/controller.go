// Package controller implements the application workflow engine: the
// submission, approval and rejection of company applications, and the
// company materialization that approval triggers.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sanayimarketi/marketplace/internal/marketplace/db"
	e "github.com/sanayimarketi/marketplace/internal/marketplace/errors"
	"github.com/sanayimarketi/marketplace/internal/marketplace/events"
	"github.com/sanayimarketi/marketplace/internal/marketplace/models"
	"github.com/sanayimarketi/marketplace/internal/pkg/utils"
	"go.uber.org/zap"
)

// MaxCompanyNameLength bounds proposed company names, in characters.
const MaxCompanyNameLength = 255

// EventProducer publishes workflow events. Implementations must not block.
type EventProducer interface {
	Produce(eventType events.EventType, app *models.Application)
}

// SubmitRequest carries the fields of a new application.
type SubmitRequest struct {
	// UserID is the submitting user. End users may leave it zero to mean
	// themselves.
	UserID              int64
	Type                models.ApplicationType
	TargetCompanyID     *int64
	ProposedCompanyName *string
}

// ApplicationService orchestrates the application lifecycle over a Store.
type ApplicationService struct {
	repo     db.Store
	producer EventProducer
	logger   *zap.Logger
	now      func() time.Time
}

// NewApplicationService constructs an ApplicationService with a store,
// an event producer, and a logger.
func NewApplicationService(repo db.Store, producer EventProducer, logger *zap.Logger) *ApplicationService {
	return &ApplicationService{
		repo:     repo,
		producer: producer,
		logger:   logger.Named("application_service"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates and persists a new PENDING application.
func (s *ApplicationService) Submit(ctx context.Context, actor models.Actor, req SubmitRequest) (*models.Application, error) {
	userID, err := submittingUser(actor, req)
	if err != nil {
		return nil, err
	}

	name, err := validateSubmission(req)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, fmt.Errorf("user %d: %w", userID, err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.IsAdmin() {
		return nil, fmt.Errorf("%w: administrators cannot hold a company", e.ErrInvalidInput)
	}

	app := &models.Application{
		UserID:              user.ID,
		Type:                req.Type,
		ProposedCompanyName: name,
		Status:              models.StatusPending,
		CreatedAt:           s.now(),
		User:                user,
	}

	if req.TargetCompanyID != nil {
		company, err := s.repo.GetCompany(ctx, *req.TargetCompanyID)
		if err != nil {
			if errors.Is(err, e.ErrNotFound) {
				return nil, fmt.Errorf("company %d: %w", *req.TargetCompanyID, err)
			}
			return nil, fmt.Errorf("failed to get company: %w", err)
		}
		app.TargetCompanyID = &company.ID
		app.TargetCompany = company
	}

	if err := s.repo.CreateApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	s.logger.Info("Application submitted",
		zap.Int64("application_id", app.ID),
		zap.Int64("user_id", app.UserID),
		zap.String("type", string(app.Type)),
	)
	s.producer.Produce(events.ApplicationSubmitted, app)
	return app, nil
}

// Approve resolves a PENDING application as APPROVED. Company creation, the
// company-user link and the status change commit together or not at all.
func (s *ApplicationService) Approve(ctx context.Context, actor models.Actor, id int64) (*models.Application, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: approving applications requires the admin role", e.ErrPermissionDenied)
	}

	err := s.repo.WithTransaction(ctx, func(tx db.Store) error {
		app, err := lockPending(ctx, tx, id)
		if err != nil {
			return err
		}

		user, err := tx.GetUser(ctx, app.UserID)
		if err != nil {
			return fmt.Errorf("failed to get applicant: %w", err)
		}
		if user.IsAdmin() {
			return fmt.Errorf("%w: administrators cannot hold a company", e.ErrInvalidInput)
		}

		if app.Type == models.ManualExisting {
			existing, err := tx.GetCompanyUser(ctx, app.UserID)
			if err != nil && !errors.Is(err, e.ErrNotFound) {
				return fmt.Errorf("failed to get company link: %w", err)
			}
			if existing != nil && !linksTo(existing, app.TargetCompanyID) {
				return fmt.Errorf("%w: user %d is already linked to company %d", e.ErrConflict, app.UserID, existing.CompanyID)
			}
		}

		targetID := app.TargetCompanyID
		if app.Type.CreatesCompany() {
			company := &models.Company{
				Name:      *app.ProposedCompanyName,
				Status:    models.CompanyActive,
				CreatedAt: s.now(),
			}
			if err := tx.CreateCompany(ctx, company); err != nil {
				return fmt.Errorf("failed to create company: %w", err)
			}
			targetID = &company.ID
		}

		if targetID != nil {
			if err := s.link(ctx, tx, app, *targetID); err != nil {
				return err
			}
		}

		return tx.ResolveApplication(ctx, &models.Resolution{
			ApplicationID:   app.ID,
			Status:          models.StatusApproved,
			TargetCompanyID: targetID,
			ResolvedBy:      actor.UserID,
			ResolvedAt:      s.now(),
		})
	})
	if err != nil {
		return nil, err
	}

	return s.resolved(ctx, events.ApplicationApproved, id, actor)
}

// Reject resolves a PENDING application as REJECTED without other side effects.
func (s *ApplicationService) Reject(ctx context.Context, actor models.Actor, id int64) (*models.Application, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: rejecting applications requires the admin role", e.ErrPermissionDenied)
	}

	err := s.repo.WithTransaction(ctx, func(tx db.Store) error {
		app, err := lockPending(ctx, tx, id)
		if err != nil {
			return err
		}
		return tx.ResolveApplication(ctx, &models.Resolution{
			ApplicationID: app.ID,
			Status:        models.StatusRejected,
			ResolvedBy:    actor.UserID,
			ResolvedAt:    s.now(),
		})
	})
	if err != nil {
		return nil, err
	}

	return s.resolved(ctx, events.ApplicationRejected, id, actor)
}

// ListPending returns every PENDING application, oldest first.
func (s *ApplicationService) ListPending(ctx context.Context, actor models.Actor) ([]*models.Application, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: listing pending applications requires the admin role", e.ErrPermissionDenied)
	}
	apps, err := s.repo.ListApplicationsByStatus(ctx, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending applications: %w", err)
	}
	return apps, nil
}

// Get returns one application to an admin or to the user who submitted it.
// Other callers see ErrNotFound, so foreign ids look the same as missing ones.
func (s *ApplicationService) Get(ctx context.Context, actor models.Actor, id int64) (*models.Application, error) {
	app, err := s.repo.GetApplication(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, fmt.Errorf("application %d: %w", id, err)
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	if !actor.IsAdmin() && app.UserID != actor.UserID {
		return nil, fmt.Errorf("application %d: %w", id, e.ErrNotFound)
	}
	return app, nil
}

// ListMine returns the actor's own applications, newest first.
func (s *ApplicationService) ListMine(ctx context.Context, actor models.Actor) ([]*models.Application, error) {
	if actor.UserID == 0 {
		return nil, fmt.Errorf("%w: caller has no user identity", e.ErrPermissionDenied)
	}
	apps, err := s.repo.ListApplicationsByUser(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// link creates the company-user link for app. An existing link is kept as
// is, except that MANUAL_EXISTING cannot be approved while the user belongs
// to a different company.
func (s *ApplicationService) link(ctx context.Context, tx db.Store, app *models.Application, companyID int64) error {
	userID := app.UserID
	created, err := tx.CreateCompanyUser(ctx, &models.CompanyUser{
		UserID:    userID,
		CompanyID: companyID,
		CreatedAt: s.now(),
	})
	if err != nil {
		return fmt.Errorf("failed to link user to company: %w", err)
	}
	if created {
		return nil
	}

	existing, err := tx.GetCompanyUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get company link: %w", err)
	}
	if app.Type == models.ManualExisting && existing.CompanyID != companyID {
		return fmt.Errorf("%w: user %d is already linked to company %d", e.ErrConflict, userID, existing.CompanyID)
	}
	s.logger.Info("Company link already present",
		zap.Int64("user_id", userID),
		zap.Int64("company_id", companyID),
		zap.Int64("linked_company_id", existing.CompanyID),
	)
	return nil
}

// resolved reloads an application after commit and publishes its event.
func (s *ApplicationService) resolved(ctx context.Context, eventType events.EventType, id int64, actor models.Actor) (*models.Application, error) {
	app, err := s.repo.GetApplication(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload application: %w", err)
	}
	s.logger.Info("Application resolved",
		zap.Int64("application_id", app.ID),
		zap.String("status", string(app.Status)),
		zap.Int64("admin_id", actor.UserID),
	)
	s.producer.Produce(eventType, app)
	return app, nil
}

// lockPending locks the application row and checks it can still transition.
func lockPending(ctx context.Context, tx db.Store, id int64) (*models.Application, error) {
	app, err := tx.LockApplication(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, fmt.Errorf("application %d: %w", id, err)
		}
		return nil, fmt.Errorf("failed to lock application: %w", err)
	}
	if app.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: application %d is %s", e.ErrInvalidState, id, app.Status)
	}
	return app, nil
}

// linksTo reports whether an existing link already points at target.
func linksTo(link *models.CompanyUser, target *int64) bool {
	return target != nil && link.CompanyID == *target
}

// submittingUser decides whose application this is and whether actor may
// file it.
func submittingUser(actor models.Actor, req SubmitRequest) (int64, error) {
	switch {
	case actor.IsSystem():
		if req.UserID == 0 {
			return 0, fmt.Errorf("%w: user id is required", e.ErrInvalidInput)
		}
		return req.UserID, nil
	case actor.IsAdmin():
		return 0, fmt.Errorf("%w: administrators cannot submit applications", e.ErrPermissionDenied)
	case actor.UserID == 0:
		return 0, fmt.Errorf("%w: caller has no user identity", e.ErrPermissionDenied)
	case req.UserID != 0 && req.UserID != actor.UserID:
		return 0, fmt.Errorf("%w: cannot submit on behalf of another user", e.ErrPermissionDenied)
	case req.Type == models.AutoImported:
		return 0, fmt.Errorf("%w: %s applications are created by the importer", e.ErrInvalidInput, models.AutoImported)
	}
	return actor.UserID, nil
}

// validateSubmission checks the field combination for the application type
// and returns the normalized proposed name.
func validateSubmission(req SubmitRequest) (*string, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown application type %q", e.ErrInvalidInput, req.Type)
	}

	var name *string
	if req.ProposedCompanyName != nil {
		n := normalizeName(*req.ProposedCompanyName)
		if utf8.RuneCountInString(n) > MaxCompanyNameLength {
			return nil, fmt.Errorf("%w: proposed company name exceeds %d characters", e.ErrInvalidInput, MaxCompanyNameLength)
		}
		if n != "" {
			name = &n
		}
	}

	switch req.Type {
	case models.ManualNew, models.AutoImported:
		if name == nil {
			return nil, fmt.Errorf("%w: %s requires a proposed company name", e.ErrInvalidInput, req.Type)
		}
		if req.TargetCompanyID != nil {
			return nil, fmt.Errorf("%w: %s must not reference a target company", e.ErrInvalidInput, req.Type)
		}
	case models.ManualExisting:
		if req.TargetCompanyID == nil {
			return nil, fmt.Errorf("%w: %s requires a target company", e.ErrInvalidInput, req.Type)
		}
	}
	return name, nil
}

// normalizeName trims the name and collapses inner whitespace runs.
func normalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// HandleImport submits an AUTO_IMPORTED application for a company found by
// the importer. Requests that can never succeed are reported as
// events.ErrMalformedImport so the consumer skips them.
func (s *ApplicationService) HandleImport(ctx context.Context, req events.ImportRequest) error {
	app, err := s.Submit(ctx, models.SystemActor(), SubmitRequest{
		UserID:              req.UserID,
		Type:                models.AutoImported,
		ProposedCompanyName: utils.Ptr(req.CompanyName),
	})
	if err != nil {
		if errors.Is(err, e.ErrInvalidInput) || errors.Is(err, e.ErrNotFound) {
			return fmt.Errorf("%w: %v", events.ErrMalformedImport, err)
		}
		return err
	}
	s.logger.Info("Imported company queued for approval",
		zap.Int64("application_id", app.ID),
		zap.String("source", req.Source),
	)
	return nil
}
