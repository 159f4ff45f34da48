package mqtt

import "fmt"

// DefaultTopicPrefix is used when no prefix is configured.
const DefaultTopicPrefix = "homesim"

// Topics provides builders for the mirror's MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{Prefix: "homesim"}
//	topics.Device(3) // "homesim/devices/3"
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	if t.Prefix == "" {
		return DefaultTopicPrefix
	}
	return t.Prefix
}

// Device returns the retained snapshot topic for one device.
//
// Example: homesim/devices/3
func (t Topics) Device(id uint64) string {
	return fmt.Sprintf("%s/devices/%d", t.prefix(), id)
}

// AllDevices returns a wildcard subscription matching every device topic.
//
// Example: homesim/devices/+
func (t Topics) AllDevices() string {
	return t.prefix() + "/devices/+"
}

// Activity returns the topic activity entries are published on.
//
// Example: homesim/activity
func (t Topics) Activity() string {
	return t.prefix() + "/activity"
}

// SystemStatus returns the retained online/offline status topic.
//
// Example: homesim/system/status
func (t Topics) SystemStatus() string {
	return t.prefix() + "/system/status"
}
