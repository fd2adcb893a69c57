package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// gatewayRoutes exposes an ApplicationServiceServer over HTTP on a
// grpc-gateway ServeMux, sharing the gRPC handler code path.
type gatewayRoutes struct {
	mux       *runtime.ServeMux
	srv       ApplicationServiceServer
	marshaler runtime.Marshaler
}

// registerRoutes binds the HTTP API on mux. The mux tries the most recently
// registered pattern first, so the literal /pending and /mine routes are
// added after /{id}.
func registerRoutes(mux *runtime.ServeMux, srv ApplicationServiceServer) error {
	r := &gatewayRoutes{
		mux:       mux,
		srv:       srv,
		marshaler: &runtime.JSONPb{},
	}

	routes := []struct {
		method  string
		pattern string
		h       runtime.HandlerFunc
	}{
		{http.MethodPost, "/v1/applications", r.submit},
		{http.MethodGet, "/v1/applications/{id}", r.byID(srv.GetApplication)},
		{http.MethodPut, "/v1/applications/{id}/approve", r.byID(srv.ApproveApplication)},
		{http.MethodPut, "/v1/applications/{id}/reject", r.byID(srv.RejectApplication)},
		{http.MethodGet, "/v1/applications/pending", r.list(srv.ListPendingApplications)},
		{http.MethodGet, "/v1/applications/mine", r.list(srv.ListMyApplications)},
	}
	for _, route := range routes {
		if err := mux.HandlePath(route.method, route.pattern, route.h); err != nil {
			return err
		}
	}
	return nil
}

func (r *gatewayRoutes) submit(w http.ResponseWriter, req *http.Request, _ map[string]string) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		r.fail(w, req, status.Errorf(codes.InvalidArgument, "read body: %v", err))
		return
	}
	in := new(SubmitApplicationRequest)
	if err := r.marshaler.Unmarshal(body, in); err != nil {
		r.fail(w, req, status.Errorf(codes.InvalidArgument, "malformed request body: %v", err))
		return
	}

	resp, err := r.srv.SubmitApplication(req.Context(), in)
	r.respondWith(w, req, http.StatusCreated, resp, err)
}

func (r *gatewayRoutes) byID(
	call func(context.Context, *ApplicationIDRequest) (*ApplicationResponse, error),
) runtime.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request, params map[string]string) {
		id, err := strconv.ParseInt(params["id"], 10, 64)
		if err != nil {
			r.fail(w, req, status.Errorf(codes.InvalidArgument, "invalid application id %q", params["id"]))
			return
		}
		resp, err := call(req.Context(), &ApplicationIDRequest{ID: id})
		r.respond(w, req, resp, err)
	}
}

func (r *gatewayRoutes) list(
	call func(context.Context, *emptypb.Empty) (*ListApplicationsResponse, error),
) runtime.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request, _ map[string]string) {
		resp, err := call(req.Context(), &emptypb.Empty{})
		r.respond(w, req, resp, err)
	}
}

func (r *gatewayRoutes) respond(w http.ResponseWriter, req *http.Request, resp interface{}, err error) {
	r.respondWith(w, req, http.StatusOK, resp, err)
}

func (r *gatewayRoutes) respondWith(w http.ResponseWriter, req *http.Request, code int, resp interface{}, err error) {
	if err != nil {
		r.fail(w, req, err)
		return
	}
	data, err := r.marshaler.Marshal(resp)
	if err != nil {
		r.fail(w, req, status.Error(codes.Internal, "failed to encode response"))
		return
	}
	w.Header().Set("Content-Type", r.marshaler.ContentType(resp))
	w.WriteHeader(code)
	_, _ = w.Write(data)
}

// fail writes err as a google.rpc.Status body with the HTTP status given by
// runtime.HTTPStatusFromCode.
func (r *gatewayRoutes) fail(w http.ResponseWriter, req *http.Request, err error) {
	runtime.HTTPError(req.Context(), r.mux, r.marshaler, w, req, err)
}
