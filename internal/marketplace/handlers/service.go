package handlers

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "marketplace.v1.ApplicationService"

// ApplicationServiceServer is the server API for ApplicationService.
type ApplicationServiceServer interface {
	SubmitApplication(context.Context, *SubmitApplicationRequest) (*ApplicationResponse, error)
	ApproveApplication(context.Context, *ApplicationIDRequest) (*ApplicationResponse, error)
	RejectApplication(context.Context, *ApplicationIDRequest) (*ApplicationResponse, error)
	GetApplication(context.Context, *ApplicationIDRequest) (*ApplicationResponse, error)
	ListPendingApplications(context.Context, *emptypb.Empty) (*ListApplicationsResponse, error)
	ListMyApplications(context.Context, *emptypb.Empty) (*ListApplicationsResponse, error)
}

// ApplicationServiceDesc describes ApplicationService for grpc.Server.RegisterService.
var ApplicationServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ApplicationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SubmitApplication", Handler: unaryHandler("SubmitApplication", ApplicationServiceServer.SubmitApplication)},
		{MethodName: "ApproveApplication", Handler: unaryHandler("ApproveApplication", ApplicationServiceServer.ApproveApplication)},
		{MethodName: "RejectApplication", Handler: unaryHandler("RejectApplication", ApplicationServiceServer.RejectApplication)},
		{MethodName: "GetApplication", Handler: unaryHandler("GetApplication", ApplicationServiceServer.GetApplication)},
		{MethodName: "ListPendingApplications", Handler: unaryHandler("ListPendingApplications", ApplicationServiceServer.ListPendingApplications)},
		{MethodName: "ListMyApplications", Handler: unaryHandler("ListMyApplications", ApplicationServiceServer.ListMyApplications)},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterApplicationServiceServer registers srv on s.
func RegisterApplicationServiceServer(s grpc.ServiceRegistrar, srv ApplicationServiceServer) {
	s.RegisterService(&ApplicationServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// unaryHandler adapts a typed server method to grpc.MethodHandler, running
// the server's interceptor chain when one is installed.
func unaryHandler[Req any, Resp any](
	method string,
	call func(ApplicationServiceServer, context.Context, *Req) (*Resp, error),
) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	name := fullMethod(method)
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		server := srv.(ApplicationServiceServer)
		if interceptor == nil {
			return call(server, ctx, in)
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(server, ctx, req.(*Req))
		}
		return interceptor(ctx, in, &grpc.UnaryServerInfo{Server: srv, FullMethod: name}, handler)
	}
}

// ApplicationServiceClient is the client API for ApplicationService. Calls
// use the JSON content subtype.
type ApplicationServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewApplicationServiceClient wraps a client connection.
func NewApplicationServiceClient(cc grpc.ClientConnInterface) *ApplicationServiceClient {
	return &ApplicationServiceClient{cc: cc}
}

func (c *ApplicationServiceClient) invoke(ctx context.Context, method string, in, out interface{}, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	return c.cc.Invoke(ctx, fullMethod(method), in, out, opts...)
}

func (c *ApplicationServiceClient) SubmitApplication(ctx context.Context, in *SubmitApplicationRequest, opts ...grpc.CallOption) (*ApplicationResponse, error) {
	out := new(ApplicationResponse)
	if err := c.invoke(ctx, "SubmitApplication", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ApplicationServiceClient) ApproveApplication(ctx context.Context, in *ApplicationIDRequest, opts ...grpc.CallOption) (*ApplicationResponse, error) {
	out := new(ApplicationResponse)
	if err := c.invoke(ctx, "ApproveApplication", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ApplicationServiceClient) RejectApplication(ctx context.Context, in *ApplicationIDRequest, opts ...grpc.CallOption) (*ApplicationResponse, error) {
	out := new(ApplicationResponse)
	if err := c.invoke(ctx, "RejectApplication", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ApplicationServiceClient) GetApplication(ctx context.Context, in *ApplicationIDRequest, opts ...grpc.CallOption) (*ApplicationResponse, error) {
	out := new(ApplicationResponse)
	if err := c.invoke(ctx, "GetApplication", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ApplicationServiceClient) ListPendingApplications(ctx context.Context, opts ...grpc.CallOption) (*ListApplicationsResponse, error) {
	out := new(ListApplicationsResponse)
	if err := c.invoke(ctx, "ListPendingApplications", &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ApplicationServiceClient) ListMyApplications(ctx context.Context, opts ...grpc.CallOption) (*ListApplicationsResponse, error) {
	out := new(ListApplicationsResponse)
	if err := c.invoke(ctx, "ListMyApplications", &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
