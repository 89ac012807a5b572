package coordinator

import "errors"

var (
	// ErrMissingDependency is returned by New when a required collaborator is nil.
	ErrMissingDependency = errors.New("coordinator: missing dependency")

	// ErrInvalidOptions is returned by New for an unusable configuration.
	ErrInvalidOptions = errors.New("coordinator: invalid options")

	// ErrNoSnapshot is returned when no refresh cycle has completed yet.
	ErrNoSnapshot = errors.New("coordinator: no refresh cycle has run")
)
