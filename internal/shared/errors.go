package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrOwnerRequired occurs when a request reached a protected handler
	// without an authenticated owner in context.
	ErrOwnerRequired = errors.New("owner not authenticated")
)
