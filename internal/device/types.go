package device

import (
	"math"
	"time"
)

// ID identifies a device for the lifetime of its registry.
// IDs are issued from a monotonically increasing counter and never reused.
type ID uint64

// Device represents one simulated appliance.
type Device struct {
	// Identity
	ID   ID         `json:"id"`
	Name string     `json:"name"`
	Type DeviceType `json:"type"`

	// Current state
	Power        bool         `json:"power_state"`
	Connectivity Connectivity `json:"connectivity"`

	// Adjustable is nil for device types without a tunable setting (security).
	Adjustable *AdjustableParam `json:"adjustable,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Clone returns an independent copy of the Device.
func (d *Device) Clone() *Device {
	if d == nil {
		return nil
	}
	cpy := *d
	if d.Adjustable != nil {
		param := *d.Adjustable
		cpy.Adjustable = &param
	}
	return &cpy
}

// AdjustableParam is the single bounded numeric setting of a device
// (brightness, fan speed, target temperature, ...).
// Value always lies within [Min, Max].
type AdjustableParam struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Clamp bounds v to [Min, Max]. NaN maps to Min.
func (p AdjustableParam) Clamp(v float64) float64 {
	if math.IsNaN(v) || v < p.Min {
		return p.Min
	}
	if v > p.Max {
		return p.Max
	}
	return v
}

// Status is the display summary returned by Device.Status.
type Status struct {
	Name         string       `json:"name"`
	Type         DeviceType   `json:"type"`
	Power        string       `json:"power"`
	Connectivity Connectivity `json:"connectivity"`
}

// Outcome reports the result of a state-changing device operation.
// Failed operations carry a user-facing Message and leave the device untouched.
type Outcome struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Power   bool    `json:"power_state"`
	Value   float64 `json:"value,omitempty"`
}

// DeviceType is the kind of appliance being simulated.
type DeviceType string //nolint:revive // device.DeviceType is clearer than device.Type in calling code

// DeviceType constants.
const (
	DeviceTypeLight      DeviceType = "light"
	DeviceTypeFan        DeviceType = "fan"
	DeviceTypeAC         DeviceType = "ac"
	DeviceTypeThermostat DeviceType = "thermostat"
	DeviceTypeSecurity   DeviceType = "security"
	DeviceTypeOther      DeviceType = "other"
)

// AllDeviceTypes returns all valid device type values.
func AllDeviceTypes() []DeviceType {
	return []DeviceType{
		DeviceTypeLight, DeviceTypeFan, DeviceTypeAC,
		DeviceTypeThermostat, DeviceTypeSecurity, DeviceTypeOther,
	}
}

// Connectivity is the link state of a device. It is fixed at creation.
type Connectivity string

// Connectivity constants.
const (
	ConnectivityOnline  Connectivity = "online"
	ConnectivityOffline Connectivity = "offline"
)

// AllConnectivities returns all valid connectivity values.
func AllConnectivities() []Connectivity {
	return []Connectivity{ConnectivityOnline, ConnectivityOffline}
}

// Power labels used in Status and activity messages.
const (
	PowerOn  = "ON"
	PowerOff = "OFF"
)

func powerLabel(on bool) string {
	if on {
		return PowerOn
	}
	return PowerOff
}
