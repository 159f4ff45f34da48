package device

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Validation constants.
const (
	maxNameLength = 100
)

// Pre-computed validation sets for O(1) lookups instead of O(n) linear search.
var (
	validDeviceTypes    map[DeviceType]struct{}
	validConnectivities map[Connectivity]struct{}
)

func init() {
	validDeviceTypes = make(map[DeviceType]struct{}, len(AllDeviceTypes()))
	for _, t := range AllDeviceTypes() {
		validDeviceTypes[t] = struct{}{}
	}

	validConnectivities = make(map[Connectivity]struct{}, len(AllConnectivities()))
	for _, c := range AllConnectivities() {
		validConnectivities[c] = struct{}{}
	}
}

// ValidateName checks that a device name is non-empty after trimming and not too long.
//
// The Registry does not call this itself: name validation is the caller's
// responsibility and happens before AddDevice is reached.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if utf8.RuneCountInString(trimmed) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

// ValidateDeviceType checks that a device type is one of the known values.
func ValidateDeviceType(t DeviceType) error {
	if _, ok := validDeviceTypes[t]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidDeviceType, t)
	}
	return nil
}

// ParseConnectivity normalises a connectivity string. Empty input means online.
func ParseConnectivity(s string) (Connectivity, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ConnectivityOnline, nil
	}
	c := Connectivity(s)
	if _, ok := validConnectivities[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidConnectivity, s)
	}
	return c, nil
}

// ParseDeviceType normalises a device type string.
// Unknown types are kept as given; the Registry assigns them the generic profile.
func ParseDeviceType(s string) DeviceType {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DeviceTypeOther
	}
	return DeviceType(s)
}

// ParseID converts a textual identifier (path segment, form value) to an ID.
// Anything that is not a positive integer is reported as ErrDeviceNotFound.
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: %q", ErrDeviceNotFound, s)
	}
	return ID(n), nil
}
