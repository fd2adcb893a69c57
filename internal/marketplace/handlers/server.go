// Package handlers serves ApplicationService over gRPC and HTTP, bridging the
// transport layer and the workflow engine and translating between wire
// messages and domain models.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/sanayimarketi/marketplace/internal/marketplace/auth"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

// Server runs ApplicationService on a gRPC listener and, through the gateway
// mux, on an HTTP listener.
type Server struct {
	grpcServer   *grpc.Server
	httpServer   *http.Server
	logger       *zap.Logger
	grpcEndpoint string
	httpEndpoint string
	stopping     chan struct{}
	stopOnce     sync.Once
}

func NewServer(grpcPort, httpPort int, logger *zap.Logger, grpcOpts ...grpc.ServerOption) *Server {
	return &Server{
		grpcServer:   grpc.NewServer(grpcOpts...),
		httpServer:   &http.Server{ReadHeaderTimeout: 10 * time.Second},
		logger:       logger.Named("server"),
		grpcEndpoint: fmt.Sprintf(":%d", grpcPort),
		httpEndpoint: fmt.Sprintf(":%d", httpPort),
		stopping:     make(chan struct{}),
	}
}

func (s *Server) RegisterGRPCHandler(h ApplicationServiceServer) {
	RegisterApplicationServiceServer(s.grpcServer, h)
}

// RegisterHTTPGateway mounts the HTTP routes for h behind the JWT middleware.
func (s *Server) RegisterHTTPGateway(h ApplicationServiceServer, jwtSecret string) error {
	mux := runtime.NewServeMux()
	if err := registerRoutes(mux, h); err != nil {
		return fmt.Errorf("register HTTP routes: %w", err)
	}

	s.httpServer.Handler = auth.HTTPMiddleware(mux, jwtSecret)
	s.httpServer.Addr = s.httpEndpoint
	return nil
}

// Start binds both endpoints and serves until Stop. If either server fails
// the other is closed and the first error is returned.
func (s *Server) Start() error {
	grpcLis, err := net.Listen("tcp", s.grpcEndpoint)
	if err != nil {
		return fmt.Errorf("listen gRPC on %s: %w", s.grpcEndpoint, err)
	}
	httpLis, err := net.Listen("tcp", s.httpEndpoint)
	if err != nil {
		grpcLis.Close()
		return fmt.Errorf("listen HTTP on %s: %w", s.httpEndpoint, err)
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		s.logger.Info("Serving gRPC", zap.String("endpoint", s.grpcEndpoint))
		if err := s.grpcServer.Serve(grpcLis); err != nil {
			return fmt.Errorf("serve gRPC: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		s.logger.Info("Serving HTTP", zap.String("endpoint", s.httpEndpoint))
		if err := s.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve HTTP: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-ctx.Done():
			s.grpcServer.Stop()
			_ = s.httpServer.Close()
		case <-s.stopping:
		}
		return nil
	})
	return g.Wait()
}

// Stop drains in-flight calls on both servers, waiting at most five seconds
// for HTTP.
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.stopping) })
	s.logger.Info("Shutting down servers")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.grpcServer.GracefulStop()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
	}
}
