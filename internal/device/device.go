package device

import (
	"fmt"
	"math"
	"strconv"
)

// TogglePower flips the power state of an online device.
//
// Offline devices are left untouched: the returned Outcome is unsuccessful and
// the error wraps ErrOffline.
func (d *Device) TogglePower() (Outcome, error) {
	if d.Connectivity == ConnectivityOffline {
		return Outcome{
			Success: false,
			Message: fmt.Sprintf("Cannot toggle %s: device is offline", d.Name),
			Power:   d.Power,
		}, fmt.Errorf("%w: %s", ErrOffline, d.Name)
	}

	d.Power = !d.Power
	return Outcome{
		Success: true,
		Message: fmt.Sprintf("%s turned %s", d.Name, powerLabel(d.Power)),
		Power:   d.Power,
	}, nil
}

// UpdateAdjustable stores requested, clamped into the parameter's range.
// The Outcome reports the value actually stored, not the requested one.
// NaN is rejected with ErrInvalidValue; infinities clamp to the nearest bound.
func (d *Device) UpdateAdjustable(requested float64) (Outcome, error) {
	if d.Connectivity == ConnectivityOffline {
		return Outcome{
			Success: false,
			Message: fmt.Sprintf("Cannot adjust %s: device is offline", d.Name),
			Power:   d.Power,
		}, fmt.Errorf("%w: %s", ErrOffline, d.Name)
	}
	if d.Adjustable == nil {
		return Outcome{
			Success: false,
			Message: fmt.Sprintf("%s has no adjustable setting", d.Name),
			Power:   d.Power,
		}, fmt.Errorf("%w: %s", ErrNoAdjustable, d.Name)
	}

	if math.IsNaN(requested) {
		return Outcome{
			Success: false,
			Message: fmt.Sprintf("Cannot adjust %s: value is not a number", d.Name),
			Power:   d.Power,
		}, fmt.Errorf("%w: %s", ErrInvalidValue, d.Name)
	}

	d.Adjustable.Value = d.Adjustable.Clamp(requested)
	return Outcome{
		Success: true,
		Message: fmt.Sprintf("%s %s set to %s", d.Name, d.Adjustable.Label, formatValue(d.Adjustable.Value)),
		Power:   d.Power,
		Value:   d.Adjustable.Value,
	}, nil
}

// Status returns the display summary of the device. It has no side effects.
func (d *Device) Status() Status {
	return Status{
		Name:         d.Name,
		Type:         d.Type,
		Power:        powerLabel(d.Power),
		Connectivity: d.Connectivity,
	}
}

// formatValue renders a parameter value without trailing zeros ("100", "22.5").
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
