package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrOffline) {
//	    // show the outcome message to the user
//	}
var (
	// ErrDeviceNotFound is returned when a device ID does not exist or cannot be parsed.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrOffline is returned when a power or parameter change targets an offline device.
	ErrOffline = errors.New("device: offline")

	// ErrNoAdjustable is returned when adjusting a device that has no adjustable parameter.
	ErrNoAdjustable = errors.New("device: no adjustable parameter")

	// ErrInvalidValue is returned when an adjustable value is not a number.
	ErrInvalidValue = errors.New("device: invalid value")

	// ErrInvalidName is returned when a device name is empty or too long.
	ErrInvalidName = errors.New("device: invalid name")

	// ErrInvalidDeviceType is returned when a device type is not recognised.
	ErrInvalidDeviceType = errors.New("device: invalid type")

	// ErrInvalidConnectivity is returned when a connectivity value is not recognised.
	ErrInvalidConnectivity = errors.New("device: invalid connectivity")
)
