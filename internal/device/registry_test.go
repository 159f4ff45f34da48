package device

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/homesim-core/internal/activity"
)

// recordingNotifier is a test implementation of Notifier.
type recordingNotifier struct {
	mu       sync.Mutex
	changed  []Device
	removed  []ID
	activity []activity.Entry
}

func (n *recordingNotifier) DeviceChanged(d Device) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, d)
}

func (n *recordingNotifier) DeviceRemoved(id ID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.removed = append(n.removed, id)
}

func (n *recordingNotifier) ActivityLogged(e activity.Entry) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.activity = append(n.activity, e)
}

// gatedNotifier blocks inside its first DeviceChanged call until release is
// closed, and records the power state of every snapshot it receives.
type gatedNotifier struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once

	mu     sync.Mutex
	powers []bool
}

func (n *gatedNotifier) DeviceChanged(d Device) {
	n.mu.Lock()
	n.powers = append(n.powers, d.Power)
	n.mu.Unlock()

	n.once.Do(func() {
		close(n.entered)
		<-n.release
	})
}

func (n *gatedNotifier) DeviceRemoved(ID)              {}
func (n *gatedNotifier) ActivityLogged(activity.Entry) {}

func newTestRegistry() *Registry {
	return NewRegistry(activity.NewLog(activity.DefaultCapacity))
}

func TestRegistry_AddDeviceDefaults(t *testing.T) {
	tests := []struct {
		typ  DeviceType
		want *AdjustableParam
	}{
		{typ: DeviceTypeLight, want: &AdjustableParam{Label: "Brightness", Value: 50, Min: 0, Max: 100}},
		{typ: DeviceTypeFan, want: &AdjustableParam{Label: "Speed", Value: 3, Min: 0, Max: 5}},
		{typ: DeviceTypeAC, want: &AdjustableParam{Label: "Temperature", Value: 24, Min: 16, Max: 30}},
		{typ: DeviceTypeThermostat, want: &AdjustableParam{Label: "Temperature", Value: 22, Min: 16, Max: 30}},
		{typ: DeviceTypeOther, want: &AdjustableParam{Label: "Level", Value: 50, Min: 0, Max: 100}},
		{typ: DeviceType("toaster"), want: &AdjustableParam{Label: "Level", Value: 50, Min: 0, Max: 100}},
		{typ: DeviceTypeSecurity, want: nil},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			registry := newTestRegistry()
			dev := registry.AddDevice("Device", tt.typ, ConnectivityOnline)

			if dev.Power {
				t.Error("new device should be powered off")
			}
			if tt.want == nil {
				if dev.Adjustable != nil {
					t.Errorf("Adjustable = %+v, want nil", dev.Adjustable)
				}
				return
			}
			if dev.Adjustable == nil {
				t.Fatal("Adjustable = nil, want profile")
			}
			if *dev.Adjustable != *tt.want {
				t.Errorf("Adjustable = %+v, want %+v", *dev.Adjustable, *tt.want)
			}
		})
	}
}

func TestRegistry_AddDeviceOrderAndIDs(t *testing.T) {
	registry := newTestRegistry()
	names := []string{"Lamp", "Fan", "Heater", "Camera"}
	seen := make(map[ID]bool)

	for _, name := range names {
		dev := registry.AddDevice(name, DeviceTypeOther, ConnectivityOnline)
		if seen[dev.ID] {
			t.Fatalf("duplicate ID %d", dev.ID)
		}
		seen[dev.ID] = true
	}

	devices := registry.ListDevices()
	if len(devices) != len(names) {
		t.Fatalf("len(ListDevices()) = %d, want %d", len(devices), len(names))
	}
	for i, name := range names {
		if devices[i].Name != name {
			t.Errorf("ListDevices()[%d].Name = %q, want %q", i, devices[i].Name, name)
		}
	}
}

func TestRegistry_IDsNotReusedAfterRemoval(t *testing.T) {
	registry := newTestRegistry()
	first := registry.AddDevice("First", DeviceTypeLight, ConnectivityOnline)
	second := registry.AddDevice("Second", DeviceTypeLight, ConnectivityOnline)

	if !registry.RemoveDevice(second.ID) {
		t.Fatal("RemoveDevice() = false, want true")
	}
	third := registry.AddDevice("Third", DeviceTypeLight, ConnectivityOnline)

	if third.ID == first.ID || third.ID == second.ID {
		t.Errorf("ID %d reused", third.ID)
	}
}

func TestRegistry_AddDeviceLogs(t *testing.T) {
	registry := newTestRegistry()
	registry.AddDevice("Living Room Light", DeviceTypeLight, ConnectivityOnline)

	entries := registry.Activity()
	if len(entries) != 1 {
		t.Fatalf("len(Activity()) = %d, want 1", len(entries))
	}
	if want := "Added new light: Living Room Light (online)"; entries[0].Message != want {
		t.Errorf("Activity()[0].Message = %q, want %q", entries[0].Message, want)
	}
}

func TestRegistry_RemoveDevice(t *testing.T) {
	registry := newTestRegistry()
	a := registry.AddDevice("A", DeviceTypeLight, ConnectivityOnline)
	b := registry.AddDevice("B", DeviceTypeFan, ConnectivityOnline)
	c := registry.AddDevice("C", DeviceTypeAC, ConnectivityOnline)

	if !registry.RemoveDevice(b.ID) {
		t.Fatal("RemoveDevice() = false, want true")
	}

	devices := registry.ListDevices()
	if len(devices) != 2 {
		t.Fatalf("len(ListDevices()) = %d, want 2", len(devices))
	}
	if devices[0].ID != a.ID || devices[1].ID != c.ID {
		t.Errorf("order after removal = [%d %d], want [%d %d]", devices[0].ID, devices[1].ID, a.ID, c.ID)
	}

	if _, err := registry.GetDevice(b.ID); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("GetDevice() after removal error = %v, want ErrDeviceNotFound", err)
	}

	if got := registry.Activity()[0].Message; got != "Removed device: B" {
		t.Errorf("latest activity = %q, want %q", got, "Removed device: B")
	}
}

func TestRegistry_RemoveDeviceNotFound(t *testing.T) {
	registry := newTestRegistry()
	registry.AddDevice("A", DeviceTypeLight, ConnectivityOnline)
	logged := len(registry.Activity())

	if registry.RemoveDevice(999) {
		t.Error("RemoveDevice(999) = true, want false")
	}
	if registry.GetDeviceCount() != 1 {
		t.Errorf("GetDeviceCount() = %d, want 1", registry.GetDeviceCount())
	}
	if len(registry.Activity()) != logged {
		t.Error("failed removal should not be logged")
	}
}

func TestRegistry_GetDeviceReturnsCopy(t *testing.T) {
	registry := newTestRegistry()
	dev := registry.AddDevice("Lamp", DeviceTypeLight, ConnectivityOnline)

	got, err := registry.GetDevice(dev.ID)
	if err != nil {
		t.Fatalf("GetDevice() error = %v", err)
	}
	got.Power = true
	got.Adjustable.Value = 1

	again, err := registry.GetDevice(dev.ID)
	if err != nil {
		t.Fatalf("GetDevice() error = %v", err)
	}
	if again.Power || again.Adjustable.Value != 50 {
		t.Error("registry state modified through returned copy")
	}
}

func TestRegistry_TogglePowerScenario(t *testing.T) {
	registry := newTestRegistry()
	dev := registry.AddDevice("Living Room Light", DeviceTypeLight, ConnectivityOnline)

	want := AdjustableParam{Label: "Brightness", Value: 50, Min: 0, Max: 100}
	if *dev.Adjustable != want || dev.Power {
		t.Fatalf("new device = %+v / %+v, want power off with %+v", dev, *dev.Adjustable, want)
	}

	outcome, err := registry.TogglePower(dev.ID)
	if err != nil {
		t.Fatalf("TogglePower() error = %v", err)
	}
	if !outcome.Success || !outcome.Power {
		t.Errorf("TogglePower() = %+v, want success with power on", outcome)
	}

	outcome, err = registry.UpdateAdjustable(dev.ID, 150)
	if err != nil {
		t.Fatalf("UpdateAdjustable() error = %v", err)
	}
	if !outcome.Success || !strings.Contains(outcome.Message, "100") {
		t.Errorf("UpdateAdjustable() = %+v, want success referencing 100", outcome)
	}

	got, err := registry.GetDevice(dev.ID)
	if err != nil {
		t.Fatalf("GetDevice() error = %v", err)
	}
	if got.Adjustable.Value != 100 {
		t.Errorf("stored value = %v, want 100", got.Adjustable.Value)
	}
	if !got.Power {
		t.Error("device should still be powered on")
	}
}

func TestRegistry_OfflineScenario(t *testing.T) {
	registry := newTestRegistry()
	dev := registry.AddDevice("Main Thermostat", DeviceTypeThermostat, ConnectivityOffline)

	outcome, err := registry.TogglePower(dev.ID)
	if !errors.Is(err, ErrOffline) {
		t.Errorf("TogglePower() error = %v, want ErrOffline", err)
	}
	if outcome.Success {
		t.Error("TogglePower() reported success on offline device")
	}

	if _, err := registry.UpdateAdjustable(dev.ID, 28); !errors.Is(err, ErrOffline) {
		t.Errorf("UpdateAdjustable() error = %v, want ErrOffline", err)
	}

	got, err := registry.GetDevice(dev.ID)
	if err != nil {
		t.Fatalf("GetDevice() error = %v", err)
	}
	if got.Power || got.Adjustable.Value != 22 || got.Connectivity != ConnectivityOffline {
		t.Errorf("offline device changed: %+v / %+v", got, *got.Adjustable)
	}

	latest := registry.Activity()[0].Message
	if !strings.HasPrefix(latest, "Failed: ") {
		t.Errorf("latest activity = %q, want a failed-action entry", latest)
	}
}

func TestRegistry_MutateUnknownDevice(t *testing.T) {
	registry := newTestRegistry()
	logged := len(registry.Activity())

	if _, err := registry.TogglePower(42); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("TogglePower(42) error = %v, want ErrDeviceNotFound", err)
	}
	if _, err := registry.UpdateAdjustable(42, 1); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("UpdateAdjustable(42) error = %v, want ErrDeviceNotFound", err)
	}
	if len(registry.Activity()) != logged {
		t.Error("operations on unknown devices should not be logged")
	}
}

func TestRegistry_LogActivityCap(t *testing.T) {
	registry := newTestRegistry()
	for i := 1; i <= 60; i++ {
		registry.LogActivity(fmt.Sprintf("event %d", i))
	}

	entries := registry.Activity()
	if len(entries) != 50 {
		t.Fatalf("len(Activity()) = %d, want 50", len(entries))
	}
	if entries[0].Message != "event 60" {
		t.Errorf("newest entry = %q, want %q", entries[0].Message, "event 60")
	}
	if entries[49].Message != "event 11" {
		t.Errorf("oldest entry = %q, want %q", entries[49].Message, "event 11")
	}
	if lines := registry.ActivityLines(); !strings.HasSuffix(lines[0], " - event 60") {
		t.Errorf("ActivityLines()[0] = %q", lines[0])
	}
}

func TestRegistry_Notifiers(t *testing.T) {
	registry := newTestRegistry()
	n := &recordingNotifier{}
	registry.AddNotifier(n)

	dev := registry.AddDevice("Lamp", DeviceTypeLight, ConnectivityOnline)
	offline := registry.AddDevice("Cam", DeviceTypeSecurity, ConnectivityOffline)
	if _, err := registry.TogglePower(dev.ID); err != nil {
		t.Fatalf("TogglePower() error = %v", err)
	}
	//nolint:errcheck // failure path is what is being observed
	registry.TogglePower(offline.ID)
	registry.RemoveDevice(dev.ID)

	if len(n.changed) != 3 {
		t.Errorf("DeviceChanged calls = %d, want 3 (two adds, one toggle)", len(n.changed))
	}
	if len(n.removed) != 1 || n.removed[0] != dev.ID {
		t.Errorf("DeviceRemoved calls = %v, want [%d]", n.removed, dev.ID)
	}
	if len(n.activity) != 5 {
		t.Errorf("ActivityLogged calls = %d, want 5", len(n.activity))
	}
}

func TestRegistry_NotifiersSeeCommitOrder(t *testing.T) {
	registry := newTestRegistry()
	dev := registry.AddDevice("Lamp", DeviceTypeLight, ConnectivityOnline)

	n := &gatedNotifier{entered: make(chan struct{}), release: make(chan struct{})}
	registry.AddNotifier(n)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		registry.TogglePower(dev.ID) //nolint:errcheck // device is online
	}()

	<-n.entered
	go func() {
		defer wg.Done()
		registry.TogglePower(dev.ID) //nolint:errcheck // device is online
	}()

	// Give the second toggle time to commit before the first fan-out resumes.
	time.Sleep(50 * time.Millisecond)
	close(n.release)
	wg.Wait()

	got, err := registry.GetDevice(dev.ID)
	if err != nil {
		t.Fatalf("GetDevice() error = %v", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.powers) != 2 {
		t.Fatalf("DeviceChanged calls = %d, want 2", len(n.powers))
	}
	if last := n.powers[len(n.powers)-1]; last != got.Power {
		t.Errorf("last notified power = %v, registry power = %v", last, got.Power)
	}
	if n.powers[0] != true || n.powers[1] != false {
		t.Errorf("notified powers = %v, want [true false]", n.powers)
	}
}

func TestRegistry_UpdateAdjustableNaN(t *testing.T) {
	registry := newTestRegistry()
	n := &recordingNotifier{}
	dev := registry.AddDevice("Lamp", DeviceTypeLight, ConnectivityOnline)
	registry.AddNotifier(n)

	outcome, err := registry.UpdateAdjustable(dev.ID, math.NaN())
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("UpdateAdjustable(NaN) error = %v, want ErrInvalidValue", err)
	}
	if outcome.Success {
		t.Error("UpdateAdjustable(NaN) reported success")
	}

	got, err := registry.GetDevice(dev.ID)
	if err != nil {
		t.Fatalf("GetDevice() error = %v", err)
	}
	if v := got.Adjustable.Value; v != 50 {
		t.Errorf("stored value = %v, want unchanged 50", v)
	}
	if len(n.changed) != 0 {
		t.Errorf("DeviceChanged calls = %d, want 0 for a rejected change", len(n.changed))
	}

	latest := registry.Activity()[0].Message
	if latest != "Failed: Cannot adjust Lamp: value is not a number" {
		t.Errorf("latest activity = %q", latest)
	}
}

func TestRegistry_GetStats(t *testing.T) {
	registry := newTestRegistry()
	lamp := registry.AddDevice("Lamp", DeviceTypeLight, ConnectivityOnline)
	registry.AddDevice("Porch Light", DeviceTypeLight, ConnectivityOffline)
	registry.AddDevice("Cam", DeviceTypeSecurity, ConnectivityOnline)
	if _, err := registry.TogglePower(lamp.ID); err != nil {
		t.Fatalf("TogglePower() error = %v", err)
	}

	stats := registry.GetStats()
	if stats.TotalDevices != 3 {
		t.Errorf("TotalDevices = %d, want 3", stats.TotalDevices)
	}
	if stats.PoweredOn != 1 {
		t.Errorf("PoweredOn = %d, want 1", stats.PoweredOn)
	}
	if stats.ByType[DeviceTypeLight] != 2 {
		t.Errorf("ByType[light] = %d, want 2", stats.ByType[DeviceTypeLight])
	}
	if stats.ByConnectivity[ConnectivityOffline] != 1 {
		t.Errorf("ByConnectivity[offline] = %d, want 1", stats.ByConnectivity[ConnectivityOffline])
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	registry := newTestRegistry()
	dev := registry.AddDevice("Lamp", DeviceTypeLight, ConnectivityOnline)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			//nolint:errcheck // concurrency smoke test
			registry.UpdateAdjustable(dev.ID, float64(v))
			registry.ListDevices()
			registry.Activity()
		}(i)
	}
	wg.Wait()

	got, err := registry.GetDevice(dev.ID)
	if err != nil {
		t.Fatalf("GetDevice() error = %v", err)
	}
	if got.Adjustable.Value < 0 || got.Adjustable.Value > 100 {
		t.Errorf("value %v out of range", got.Adjustable.Value)
	}
}
