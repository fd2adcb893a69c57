package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/sanayimarketi/marketplace/internal/marketplace/auth"
	"github.com/sanayimarketi/marketplace/internal/marketplace/controller"
	"github.com/sanayimarketi/marketplace/internal/marketplace/models"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// ApplicationController defines the workflow operations the gRPC and HTTP
// handlers invoke.
type ApplicationController interface {
	Submit(ctx context.Context, actor models.Actor, req controller.SubmitRequest) (*models.Application, error)
	Approve(ctx context.Context, actor models.Actor, id int64) (*models.Application, error)
	Reject(ctx context.Context, actor models.Actor, id int64) (*models.Application, error)
	Get(ctx context.Context, actor models.Actor, id int64) (*models.Application, error)
	ListPending(ctx context.Context, actor models.Actor) ([]*models.Application, error)
	ListMine(ctx context.Context, actor models.Actor) ([]*models.Application, error)
}

// ApplicationHandler implements ApplicationServiceServer on top of an
// ApplicationController.
type ApplicationHandler struct {
	service  ApplicationController
	validate *validator.Validate
	logger   *zap.Logger
}

// NewApplicationHandler constructs a new ApplicationHandler with the given service and logger.
func NewApplicationHandler(service ApplicationController, logger *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.Named("grpc_handler"),
	}
}

// SubmitApplication files a new PENDING application for the caller.
func (h *ApplicationHandler) SubmitApplication(ctx context.Context, req *SubmitApplicationRequest) (*ApplicationResponse, error) {
	actor, err := h.actor(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	app, err := h.service.Submit(ctx, actor, wireToSubmit(req))
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return &ApplicationResponse{Application: applicationToWire(app)}, nil
}

// ApproveApplication approves a PENDING application.
func (h *ApplicationHandler) ApproveApplication(ctx context.Context, req *ApplicationIDRequest) (*ApplicationResponse, error) {
	return h.byID(ctx, req, h.service.Approve)
}

// RejectApplication rejects a PENDING application.
func (h *ApplicationHandler) RejectApplication(ctx context.Context, req *ApplicationIDRequest) (*ApplicationResponse, error) {
	return h.byID(ctx, req, h.service.Reject)
}

// GetApplication fetches one application.
func (h *ApplicationHandler) GetApplication(ctx context.Context, req *ApplicationIDRequest) (*ApplicationResponse, error) {
	return h.byID(ctx, req, h.service.Get)
}

// ListPendingApplications lists the review queue, oldest first.
func (h *ApplicationHandler) ListPendingApplications(ctx context.Context, _ *emptypb.Empty) (*ListApplicationsResponse, error) {
	return h.list(ctx, h.service.ListPending)
}

// ListMyApplications lists the caller's applications, newest first.
func (h *ApplicationHandler) ListMyApplications(ctx context.Context, _ *emptypb.Empty) (*ListApplicationsResponse, error) {
	return h.list(ctx, h.service.ListMine)
}

func (h *ApplicationHandler) byID(
	ctx context.Context,
	req *ApplicationIDRequest,
	op func(context.Context, models.Actor, int64) (*models.Application, error),
) (*ApplicationResponse, error) {
	actor, err := h.actor(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	app, err := op(ctx, actor, req.ID)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return &ApplicationResponse{Application: applicationToWire(app)}, nil
}

func (h *ApplicationHandler) list(
	ctx context.Context,
	op func(context.Context, models.Actor) ([]*models.Application, error),
) (*ListApplicationsResponse, error) {
	actor, err := h.actor(ctx)
	if err != nil {
		return nil, err
	}

	apps, err := op(ctx, actor)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return applicationsToWire(apps), nil
}

func (h *ApplicationHandler) actor(ctx context.Context) (models.Actor, error) {
	actor, ok := auth.ActorFromContext(ctx)
	if !ok {
		return models.Actor{}, status.Error(codes.Unauthenticated, "caller is not authenticated")
	}
	return actor, nil
}

var _ ApplicationServiceServer = (*ApplicationHandler)(nil)
