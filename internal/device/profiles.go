package device

// defaultProfiles holds the adjustable parameter a new device starts with.
var defaultProfiles = map[DeviceType]AdjustableParam{
	DeviceTypeLight:      {Label: "Brightness", Value: 50, Min: 0, Max: 100},
	DeviceTypeFan:        {Label: "Speed", Value: 3, Min: 0, Max: 5},
	DeviceTypeAC:         {Label: "Temperature", Value: 24, Min: 16, Max: 30},
	DeviceTypeThermostat: {Label: "Temperature", Value: 22, Min: 16, Max: 30},
}

// genericProfile applies to security, other and unrecognised types.
var genericProfile = AdjustableParam{Label: "Level", Value: 50, Min: 0, Max: 100}

// DefaultProfile returns the adjustable parameter profile for a device type.
// Unknown types get the generic Level profile rather than an error.
func DefaultProfile(t DeviceType) AdjustableParam {
	if p, ok := defaultProfiles[t]; ok {
		return p
	}
	return genericProfile
}

// newAdjustable returns the starting parameter for a new device, or nil for
// security devices, which expose no adjustable setting.
func newAdjustable(t DeviceType) *AdjustableParam {
	if t == DeviceTypeSecurity {
		return nil
	}
	p := DefaultProfile(t)
	return &p
}
