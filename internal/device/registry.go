package device

import (
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/homesim-core/internal/activity"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Notifier is told about every change the Registry makes, after the change
// has been applied. Calls arrive one at a time, in the order the changes were
// made. Implementations must not call back into the Registry.
type Notifier interface {
	DeviceChanged(d Device)
	DeviceRemoved(id ID)
	ActivityLogged(e activity.Entry)
}

// Registry owns the ordered device collection and the activity log, and is the
// only path through which devices are created, changed or removed.
//
// Device order is insertion order and is the display order.
//
// All public methods are thread-safe. Each call runs to completion while holding
// the registry lock, so callers observe one operation at a time.
type Registry struct {
	mu sync.Mutex
	// notifyMu is taken before mu is released and held for the fan-out, so
	// notifiers see changes in commit order.
	notifyMu sync.Mutex

	devices   []*Device
	lastID    ID
	activity  *activity.Log
	logger    Logger
	notifiers []Notifier
	now       func() time.Time
}

// NewRegistry creates an empty registry recording into log.
// A nil log is replaced by one with activity.DefaultCapacity.
func NewRegistry(log *activity.Log) *Registry {
	if log == nil {
		log = activity.NewLog(activity.DefaultCapacity)
	}
	return &Registry{
		activity: log,
		logger:   noopLogger{},
		now:      time.Now,
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// AddNotifier registers n to receive change notifications.
func (r *Registry) AddNotifier(n Notifier) {
	r.mu.Lock()
	r.notifiers = append(r.notifiers, n)
	r.mu.Unlock()
}

// AddDevice creates a device with a fresh ID and the default adjustable
// parameter for its type, and appends it to the end of the collection.
//
// The name is not validated here; callers check it with ValidateName first.
// Unknown types are accepted and receive the generic Level profile.
func (r *Registry) AddDevice(name string, typ DeviceType, conn Connectivity) *Device {
	r.mu.Lock()
	r.lastID++
	dev := &Device{
		ID:           r.lastID,
		Name:         name,
		Type:         typ,
		Connectivity: conn,
		Adjustable:   newAdjustable(typ),
		CreatedAt:    r.now().UTC(),
	}
	r.devices = append(r.devices, dev)
	snapshot := *dev.Clone()
	entry := r.activity.Add(fmt.Sprintf("Added new %s: %s (%s)", typ, name, conn))

	r.unlockAndNotify(func(n Notifier) {
		n.DeviceChanged(snapshot)
		n.ActivityLogged(entry)
	})
	r.logger.Info("device added", "id", snapshot.ID, "name", name, "type", typ, "connectivity", conn)
	return &snapshot
}

// RemoveDevice deletes the device with the given ID, preserving the order of
// the remaining devices. It reports false, and logs nothing, if no such device exists.
func (r *Registry) RemoveDevice(id ID) bool {
	r.mu.Lock()
	idx := r.indexOf(id)
	if idx < 0 {
		r.mu.Unlock()
		r.logger.Debug("remove of unknown device ignored", "id", id)
		return false
	}

	removed := r.devices[idx]
	r.devices = append(r.devices[:idx], r.devices[idx+1:]...)
	entry := r.activity.Add("Removed device: " + removed.Name)

	r.unlockAndNotify(func(n Notifier) {
		n.DeviceRemoved(id)
		n.ActivityLogged(entry)
	})
	r.logger.Info("device removed", "id", id, "name", removed.Name)
	return true
}

// GetDevice retrieves a device by ID.
// Returns ErrDeviceNotFound if the device does not exist.
// The returned device is a copy; changes to it do not affect the registry.
func (r *Registry) GetDevice(id ID) (*Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %d", ErrDeviceNotFound, id)
	}
	return r.devices[idx].Clone(), nil
}

// ListDevices returns every device in display order.
// The returned devices are copies; callers can safely modify them.
func (r *Registry) ListDevices() []Device {
	r.mu.Lock()
	defer r.mu.Unlock()

	devices := make([]Device, 0, len(r.devices))
	for _, d := range r.devices {
		devices = append(devices, *d.Clone())
	}
	return devices
}

// TogglePower flips the power state of the device with the given ID.
//
// Returns ErrDeviceNotFound for an unknown ID. For an offline device the
// Outcome is unsuccessful, the error wraps ErrOffline and a failed-action
// entry is added to the activity log.
func (r *Registry) TogglePower(id ID) (Outcome, error) {
	return r.mutate(id, "toggle", func(d *Device) (Outcome, error) {
		return d.TogglePower()
	})
}

// UpdateAdjustable sets the adjustable parameter of the device with the given
// ID, clamping value into range. Failure semantics match TogglePower.
func (r *Registry) UpdateAdjustable(id ID, value float64) (Outcome, error) {
	return r.mutate(id, "adjust", func(d *Device) (Outcome, error) {
		return d.UpdateAdjustable(value)
	})
}

// mutate applies op to the device with the given ID under the registry lock
// and records the outcome in the activity log.
func (r *Registry) mutate(id ID, action string, op func(*Device) (Outcome, error)) (Outcome, error) {
	r.mu.Lock()
	idx := r.indexOf(id)
	if idx < 0 {
		r.mu.Unlock()
		return Outcome{Success: false, Message: "Device not found"}, fmt.Errorf("%w: %d", ErrDeviceNotFound, id)
	}

	dev := r.devices[idx]
	outcome, err := op(dev)

	message := outcome.Message
	if !outcome.Success {
		message = "Failed: " + message
	}
	entry := r.activity.Add(message)
	snapshot := *dev.Clone()

	r.unlockAndNotify(func(n Notifier) {
		if err == nil {
			n.DeviceChanged(snapshot)
		}
		n.ActivityLogged(entry)
	})

	if err != nil {
		r.logger.Warn("device "+action+" rejected", "id", id, "name", snapshot.Name, "error", err)
	} else {
		r.logger.Debug("device "+action+" applied", "id", id, "name", snapshot.Name)
	}
	return outcome, err
}

// LogActivity adds a timestamped entry to the front of the activity log.
func (r *Registry) LogActivity(message string) activity.Entry {
	r.mu.Lock()
	entry := r.activity.Add(message)

	r.unlockAndNotify(func(n Notifier) {
		n.ActivityLogged(entry)
	})
	return entry
}

// unlockAndNotify releases r.mu and runs fn for every notifier. The caller
// must hold r.mu. Other operations may proceed while the fan-out runs, but
// their own fan-out waits for this one to finish.
func (r *Registry) unlockAndNotify(fn func(Notifier)) {
	notifiers := r.notifiers
	r.notifyMu.Lock()
	r.mu.Unlock()
	defer r.notifyMu.Unlock()

	for _, n := range notifiers {
		fn(n)
	}
}

// Activity returns the activity log, most recent first.
func (r *Registry) Activity() []activity.Entry {
	return r.activity.Entries()
}

// ActivityLines returns the activity log formatted for display, most recent first.
func (r *Registry) ActivityLines() []string {
	return r.activity.Lines()
}

// GetDeviceCount returns the number of devices in the registry.
func (r *Registry) GetDeviceCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.devices)
}

// indexOf returns the position of the device with the given ID, or -1.
// The caller must hold r.mu.
func (r *Registry) indexOf(id ID) int {
	for i, d := range r.devices {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// Stats returns registry statistics for monitoring.
type Stats struct {
	TotalDevices   int                  `json:"total_devices"`
	PoweredOn      int                  `json:"powered_on"`
	ByType         map[DeviceType]int   `json:"by_type"`
	ByConnectivity map[Connectivity]int `json:"by_connectivity"`
}

// GetStats returns current registry statistics.
func (r *Registry) GetStats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := Stats{
		TotalDevices:   len(r.devices),
		ByType:         make(map[DeviceType]int),
		ByConnectivity: make(map[Connectivity]int),
	}

	for _, d := range r.devices {
		stats.ByType[d.Type]++
		stats.ByConnectivity[d.Connectivity]++
		if d.Power {
			stats.PoweredOn++
		}
	}

	return stats
}
