package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sanayimarketi/marketplace/internal/marketplace/controller"
	e "github.com/sanayimarketi/marketplace/internal/marketplace/errors"
	"github.com/sanayimarketi/marketplace/internal/marketplace/models"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// wireToSubmit converts a wire submission into a controller request.
func wireToSubmit(req *SubmitApplicationRequest) controller.SubmitRequest {
	return controller.SubmitRequest{
		UserID:              req.UserID,
		Type:                models.ApplicationType(req.Type),
		TargetCompanyID:     req.TargetCompanyID,
		ProposedCompanyName: req.ProposedCompanyName,
	}
}

// applicationToWire converts a domain Application into its wire form.
func applicationToWire(app *models.Application) *Application {
	if app == nil {
		return nil
	}
	out := &Application{
		ID:                  app.ID,
		UserID:              app.UserID,
		Type:                string(app.Type),
		Status:              string(app.Status),
		TargetCompanyID:     app.TargetCompanyID,
		ProposedCompanyName: app.ProposedCompanyName,
		CreatedAt:           app.CreatedAt,
		UpdatedAt:           app.UpdatedAt,
		ResolvedAt:          app.ResolvedAt,
		ResolvedBy:          app.ResolvedBy,
	}
	if app.User != nil {
		out.UserEmail = app.User.Email
	}
	if c := app.TargetCompany; c != nil {
		out.TargetCompanyName = c.Name
		out.TargetCompany = &Company{
			ID:        c.ID,
			Name:      c.Name,
			Status:    string(c.Status),
			CreatedAt: c.CreatedAt,
		}
	}
	return out
}

func applicationsToWire(apps []*models.Application) *ListApplicationsResponse {
	out := make([]*Application, 0, len(apps))
	for _, app := range apps {
		out = append(out, applicationToWire(app))
	}
	return &ListApplicationsResponse{Applications: out}
}

// validationError turns validator output into an InvalidArgument status.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+" failed "+fe.Tag())
	}
	return status.Error(codes.InvalidArgument, "invalid request: "+strings.Join(fields, ", "))
}

// mapServiceError maps domain or repository errors to appropriate gRPC status codes.
func (h *ApplicationHandler) mapServiceError(err error) error {
	switch {
	case errors.Is(err, e.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, e.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, e.ErrInvalidState):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, e.ErrConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, e.ErrPermissionDenied):
		return status.Error(codes.PermissionDenied, err.Error())
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		return status.Error(codes.Internal, "internal server error")
	}
}
