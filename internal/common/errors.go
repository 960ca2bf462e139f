// Package common defines shared constants and sentinel errors used across
// the MissionSet server layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// repository specific errors
	ErrorNotFound = errors.New("not found")

	// service specific errors
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// session specific errors
	ErrSessionExpired = errors.New("session expired")
)
