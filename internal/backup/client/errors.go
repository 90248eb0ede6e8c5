package client

import "errors"

var (
	ErrUnavailable  = errors.New("backup service unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)
