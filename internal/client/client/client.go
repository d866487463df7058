package client

import (
	"context"

	"github.com/dmitrijs2005/faceauth/internal/descriptor"
)

// LoginInfo describes a successful face login.
type LoginInfo struct {
	UserName string
	Distance float64
}

type Client interface {
	Close() error
	Register(ctx context.Context, username string, d descriptor.Descriptor) (string, error)
	Login(ctx context.Context, d descriptor.Descriptor) (*LoginInfo, error)
	WhoAmI(ctx context.Context) (string, error)
	Ping(ctx context.Context) error
	Logout()
}
