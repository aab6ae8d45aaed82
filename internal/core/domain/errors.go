package domain

import "errors"

// Core error kinds. Callers wrap them with context using fmt.Errorf("%w: ...")
// and the transport layer maps them with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

var ErrForbidden = errors.New("access forbidden")

// Auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
)
