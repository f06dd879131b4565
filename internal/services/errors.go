package services

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means there is no usable session. The cause (missing
	// cookie, bad token, expired token) is wrapped for logs only.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrMalformedSession is a session cookie that is not "Bearer <token>".
	ErrMalformedSession = fmt.Errorf("%w: malformed session cookie", ErrUnauthenticated)
	// ErrInvalidCredentials covers both an unknown username and a wrong password.
	ErrInvalidCredentials = errors.New("incorrect username or password")
	// ErrUserNotFound means the session is valid but its user no longer exists.
	ErrUserNotFound = errors.New("user not found")
	// ErrForbidden means the user is authenticated but lacks the admin flag.
	ErrForbidden = errors.New("access forbidden")
	// ErrInvalidInput wraps request validation failures.
	ErrInvalidInput = errors.New("invalid input")
)
