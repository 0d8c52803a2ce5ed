package core

import "errors"

// Common errors
var (
	ErrInvalidPair   = errors.New("invalid currency pair")
	ErrUnknownPair   = errors.New("pair is not monitored")
	ErrNotConfigured = errors.New("service is not configured")
)
