// Package auth verifies JWT bearer tokens on the gRPC and HTTP surfaces and
// turns their claims into the caller identity used for authorization.
package auth

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// protectedService prefixes every method of the application service.
const protectedService = "/marketplace.v1.ApplicationService/"

type Interceptor struct {
	jwtSecret string
}

func NewAuthInterceptor(jwtSecret string) *Interceptor {
	return &Interceptor{jwtSecret: jwtSecret}
}

// Protects reports whether fullMethod requires a token.
func (i *Interceptor) Protects(fullMethod string) bool {
	return strings.HasPrefix(fullMethod, protectedService)
}

// Unary authenticates application service calls and puts the caller in the
// handler context. Other services pass through.
func (i *Interceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if !i.Protects(info.FullMethod) {
			return handler(ctx, req)
		}

		header := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get("authorization"); len(values) > 0 {
				header = values[0]
			}
		}
		token, err := bearerToken(header)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}

		actor, err := authenticate(token, i.jwtSecret)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
		}
		return handler(WithActor(ctx, actor), req)
	}
}
