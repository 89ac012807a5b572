package firmware

import "errors"

var (
	// ErrUnsupportedVersion is returned when the stored document was written
	// with a schema version this build does not understand.
	ErrUnsupportedVersion = errors.New("firmware: unsupported store version")

	// ErrCorruptStore is returned when the stored document cannot be decoded.
	ErrCorruptStore = errors.New("firmware: corrupt store document")

	// ErrSaverStopped is returned by SaveNow after Stop.
	ErrSaverStopped = errors.New("firmware: saver stopped")
)
