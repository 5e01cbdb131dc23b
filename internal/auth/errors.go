package auth

import "errors"

var (
	ErrNotAuthenticated = errors.New("Not authenticated")
	ErrInvalidRole      = errors.New("Invalid role")
	ErrStaffKeyRequired = errors.New("Staff key required")
)
