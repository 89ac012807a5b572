package registry

import "errors"

var (
	// ErrEntityNotFound is returned when an identifier is not registered.
	ErrEntityNotFound = errors.New("registry: not found")

	// ErrEntityExists is returned when adding an identifier that is already
	// registered.
	ErrEntityExists = errors.New("registry: already exists")

	// ErrInvalidEntity is returned when an entity is missing its identifier,
	// scope or key.
	ErrInvalidEntity = errors.New("registry: invalid entity")
)
