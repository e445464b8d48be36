package common

import "errors"

// Token errors (malformed or expired session token).
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
