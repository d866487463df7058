// Package client talks to the faceauth server over gRPC.
//
// GRPCClient keeps the access token returned by Login and attaches it to
// later calls through a unary interceptor. gRPC status codes are mapped to
// the sentinel errors in errors.go so callers can match them with
// errors.Is.
package client
