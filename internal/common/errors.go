// Package common defines sentinel errors and small helpers shared by the
// NanoFi stores and the command-line client. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrVersionConflict is returned by compare-and-set writes when the stored
	// value changed since it was read.
	ErrVersionConflict = errors.New("version conflict")
)
