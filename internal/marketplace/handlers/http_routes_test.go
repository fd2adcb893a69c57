package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/sanayimarketi/marketplace/internal/marketplace/auth"
	"github.com/sanayimarketi/marketplace/internal/marketplace/controller"
	e "github.com/sanayimarketi/marketplace/internal/marketplace/errors"
	"github.com/sanayimarketi/marketplace/internal/marketplace/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testSecret = "test-secret"

func newGateway(t *testing.T, ctrl ApplicationController) http.Handler {
	t.Helper()
	mux := runtime.NewServeMux()
	require.NoError(t, registerRoutes(mux, NewApplicationHandler(ctrl, zaptest.NewLogger(t))))
	return auth.HTTPMiddleware(mux, testSecret)
}

func bearer(t *testing.T, actor models.Actor) string {
	t.Helper()
	token, err := auth.GenerateToken(actor.UserID, actor.Role, testSecret)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestGatewayRoutes(t *testing.T) {
	var hits []string
	ctrl := &mockApplicationController{
		submitFunc: func(_ context.Context, _ models.Actor, req controller.SubmitRequest) (*models.Application, error) {
			hits = append(hits, "submit")
			if req.ProposedCompanyName == nil {
				return nil, e.ErrInvalidInput
			}
			return pendingApp(10), nil
		},
		getFunc: func(_ context.Context, _ models.Actor, id int64) (*models.Application, error) {
			hits = append(hits, "get")
			return pendingApp(id), nil
		},
		approveFunc: func(_ context.Context, _ models.Actor, id int64) (*models.Application, error) {
			hits = append(hits, "approve")
			return nil, e.ErrConflict
		},
		rejectFunc: func(_ context.Context, _ models.Actor, id int64) (*models.Application, error) {
			hits = append(hits, "reject")
			return nil, e.ErrPermissionDenied
		},
		listPendingFunc: func(context.Context, models.Actor) ([]*models.Application, error) {
			hits = append(hits, "pending")
			return []*models.Application{pendingApp(1)}, nil
		},
		listMineFunc: func(context.Context, models.Actor) ([]*models.Application, error) {
			hits = append(hits, "mine")
			return nil, nil
		},
	}
	gateway := newGateway(t, ctrl)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantHit    string
	}{
		{"submit", http.MethodPost, "/v1/applications", `{"type":"MANUAL_NEW","proposed_company_name":"Acme"}`, http.StatusCreated, "submit"},
		{"submit domain error", http.MethodPost, "/v1/applications", `{"type":"MANUAL_NEW"}`, http.StatusBadRequest, "submit"},
		{"submit malformed body", http.MethodPost, "/v1/applications", `{"type":`, http.StatusBadRequest, ""},
		{"submit invalid type", http.MethodPost, "/v1/applications", `{"type":"OTHER"}`, http.StatusBadRequest, ""},
		{"get", http.MethodGet, "/v1/applications/42", "", http.StatusOK, "get"},
		{"get bad id", http.MethodGet, "/v1/applications/abc", "", http.StatusBadRequest, ""},
		{"pending is not an id", http.MethodGet, "/v1/applications/pending", "", http.StatusOK, "pending"},
		{"mine is not an id", http.MethodGet, "/v1/applications/mine", "", http.StatusOK, "mine"},
		{"approve conflict", http.MethodPut, "/v1/applications/42/approve", "", http.StatusConflict, "approve"},
		{"reject forbidden", http.MethodPut, "/v1/applications/42/reject", "", http.StatusForbidden, "reject"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits = nil
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Authorization", bearer(t, userActor))
			rec := httptest.NewRecorder()

			gateway.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantHit == "" {
				assert.Empty(t, hits)
			} else {
				assert.Equal(t, []string{tt.wantHit}, hits)
			}
		})
	}
}

func TestGatewayRoutes_ResponseBody(t *testing.T) {
	ctrl := &mockApplicationController{
		getFunc: func(_ context.Context, _ models.Actor, id int64) (*models.Application, error) {
			return pendingApp(id), nil
		},
		listMineFunc: func(context.Context, models.Actor) ([]*models.Application, error) {
			return nil, nil
		},
	}
	gateway := newGateway(t, ctrl)

	req := httptest.NewRequest(http.MethodGet, "/v1/applications/42", nil)
	req.Header.Set("Authorization", bearer(t, userActor))
	rec := httptest.NewRecorder()
	gateway.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var resp ApplicationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.Application.ID)
	assert.Equal(t, "MANUAL_NEW", resp.Application.Type)
	assert.Equal(t, "Acme Metal", *resp.Application.ProposedCompanyName)

	req = httptest.NewRequest(http.MethodGet, "/v1/applications/mine", nil)
	req.Header.Set("Authorization", bearer(t, userActor))
	rec = httptest.NewRecorder()
	gateway.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"applications":[]}`, rec.Body.String())
}

func TestGatewayRoutes_RequiresToken(t *testing.T) {
	gateway := newGateway(t, &mockApplicationController{})

	req := httptest.NewRequest(http.MethodGet, "/v1/applications/pending", nil)
	rec := httptest.NewRecorder()
	gateway.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
