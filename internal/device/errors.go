package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrInvalidSnapshot) {
//	    // handle malformed input
//	}
var (
	// ErrInvalidSnapshot is returned when a snapshot file cannot be decoded.
	ErrInvalidSnapshot = errors.New("device: invalid snapshot")

	// ErrInvalidFragment is returned when a fragment payload is not a JSON object.
	ErrInvalidFragment = errors.New("device: invalid fragment")

	// ErrInvalidID is returned for an empty device id or one containing
	// "_", which separates the device id from the observation key.
	ErrInvalidID = errors.New("device: invalid id")

	// ErrSourceUnavailable is returned when a source cannot produce devices.
	ErrSourceUnavailable = errors.New("device: source unavailable")
)
