package catalog

import "errors"

var (
	// ErrDuplicateKey is returned by New when two descriptors share a key.
	ErrDuplicateKey = errors.New("catalog: duplicate descriptor key")

	// ErrInvalidDescriptor is returned by New for a descriptor without a
	// key, category or path.
	ErrInvalidDescriptor = errors.New("catalog: invalid descriptor")

	// ErrUnknownCategory is returned when parsing an unrecognised category.
	ErrUnknownCategory = errors.New("catalog: unknown category")
)
