package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/faceauth/internal/common"
	"github.com/dmitrijs2005/faceauth/internal/descriptor"
	pb "github.com/dmitrijs2005/faceauth/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.FaceAuthServiceClient

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if token := s.token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}

	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewFaceAuthClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.initGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) initGRPCClient(opts ...grpc.DialOption) error {

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, dialOpts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewFaceAuthServiceClient(conn)
	return nil
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) setToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

// Register enrolls username and returns the new user's id.
func (s *GRPCClient) Register(ctx context.Context, userName string, d descriptor.Descriptor) (string, error) {

	resp, err := s.client.Register(ctx, &pb.RegisterRequest{Username: userName, Descriptor: d})
	if err != nil {
		return "", s.mapError(err)
	}

	return resp.Id, nil
}

// Login authenticates with d and keeps the returned access token for later
// calls.
func (s *GRPCClient) Login(ctx context.Context, d descriptor.Descriptor) (*LoginInfo, error) {

	resp, err := s.client.Login(ctx, &pb.LoginRequest{Descriptor: d})
	if err != nil {
		return nil, s.mapError(err)
	}

	s.setToken(resp.AccessToken)

	return &LoginInfo{UserName: resp.Username, Distance: resp.Distance}, nil
}

func (s *GRPCClient) WhoAmI(ctx context.Context) (string, error) {

	if s.token() == "" {
		return "", ErrNotLoggedIn
	}

	resp, err := s.client.WhoAmI(ctx, &pb.WhoAmIRequest{})
	if err != nil {
		return "", s.mapError(err)
	}

	return resp.Username, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	_, err := s.client.Ping(ctx, &pb.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}

	return nil
}

// Logout forgets the access token.
func (s *GRPCClient) Logout() {
	s.setToken("")
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.Unauthenticated:
		if st.Message() == common.NotRecognizedMessage {
			return ErrNotRecognized
		}
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.AlreadyExists:
		return ErrUsernameTaken
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidRequest, st.Message())
	default:
		return err
	}
}
