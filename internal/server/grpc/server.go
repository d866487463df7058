// Package grpc exposes the enrollment and authentication services over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/faceauth/internal/descriptor"
	"github.com/dmitrijs2005/faceauth/internal/logging"
	pb "github.com/dmitrijs2005/faceauth/internal/proto"
	"github.com/dmitrijs2005/faceauth/internal/server/models"
	"github.com/dmitrijs2005/faceauth/internal/server/services"
	"google.golang.org/grpc"
)

// EnrollmentService is the part of services.EnrollmentService used here.
type EnrollmentService interface {
	Register(ctx context.Context, username string, d descriptor.Descriptor) (*models.User, error)
}

// AuthenticationService is the part of services.AuthenticationService used
// here.
type AuthenticationService interface {
	Login(ctx context.Context, d descriptor.Descriptor) (*services.LoginResult, error)
	WhoAmI(ctx context.Context, token string) (string, error)
}

type GRPCServer struct {
	pb.UnimplementedFaceAuthServiceServer
	address        string
	enrollment     EnrollmentService
	authentication AuthenticationService
	logger         logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, es EnrollmentService, as AuthenticationService) *GRPCServer {
	return &GRPCServer{
		address:        a,
		logger:         l.With("module", "grpc_server"),
		enrollment:     es,
		authentication: as,
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))

	pb.RegisterFaceAuthServiceServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
