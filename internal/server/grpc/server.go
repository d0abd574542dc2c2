// Package grpc serves the operational gRPC endpoint: the standard health
// service behind an access-token interceptor.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/rms/internal/logging"
	"github.com/dmitrijs2005/rms/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// TokenVerifier resolves a bearer access token to the calling principal.
type TokenVerifier interface {
	VerifyAccess(ctx context.Context, accessToken string) (auth.Principal, error)
}

type GRPCServer struct {
	address  string
	verifier TokenVerifier
	health   *health.Server
	logger   logging.Logger
}

func NewGRPCServer(a string, v TokenVerifier, l logging.Logger) *GRPCServer {
	return &GRPCServer{
		address:  a,
		verifier: v,
		health:   health.NewServer(),
		logger:   l.With("module", "grpc_server"),
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.streamAccessTokenInterceptor),
	)

	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
