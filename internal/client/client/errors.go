package client

import "errors"

var (
	ErrUnavailable    = errors.New("server unavailable")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotRecognized  = errors.New("face not recognized")
	ErrUsernameTaken  = errors.New("username already taken")
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotLoggedIn    = errors.New("not logged in")
)
