// Package device provides the simulated device model and the Registry that
// owns it.
//
// A Device is one simulated appliance: a light, fan, air conditioner,
// thermostat, security camera or anything else. It has a power state, a
// connectivity flag fixed at creation, and an optional adjustable parameter
// (brightness, speed, temperature) bounded by a min/max range.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────┐
//	│                        Device Registry                       │
//	│                                                              │
//	│  ┌──────────────────┐   ┌──────────────────┐   ┌───────────┐ │
//	│  │     Registry     │   │      Device      │   │ Activity  │ │
//	│  │  (registry.go)   │──▶│   (device.go)    │   │    Log    │ │
//	│  │                  │   │                  │   │           │ │
//	│  │ • ordered list   │   │ • toggle power   │   │ • newest  │ │
//	│  │ • id counter     │   │ • clamp value    │   │   first   │ │
//	│  │ • type defaults  │   │ • offline guard  │   │ • cap 50  │ │
//	│  └──────────────────┘   └──────────────────┘   └───────────┘ │
//	│           │                                                  │
//	└───────────│──────────────────────────────────────────────────┘
//	            ▼
//	   Notifiers (WebSocket hub, MQTT mirror)
//
// # Key Types
//
//   - Device: one simulated appliance
//   - DeviceType: light, fan, ac, thermostat, security, other
//   - Connectivity: online or offline; offline devices reject every change
//   - AdjustableParam: label, value, min, max; writes are clamped
//   - Outcome: success flag plus a user-facing message
//
// # Usage
//
//	registry := device.NewRegistry(activity.NewLog(activity.DefaultCapacity))
//	registry.SetLogger(log)
//
//	lamp := registry.AddDevice("Living Room Light", device.DeviceTypeLight, device.ConnectivityOnline)
//	outcome, err := registry.TogglePower(lamp.ID)
//	outcome, err = registry.UpdateAdjustable(lamp.ID, 150) // stored as 100
//	if errors.Is(err, device.ErrOffline) {
//	    // outcome.Message is suitable for display
//	}
//
// # Thread Safety
//
// The Registry is safe for concurrent use. Every operation holds a single
// mutex for its full duration, so operations never interleave.
package device
