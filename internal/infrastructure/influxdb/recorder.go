package influxdb

import (
	"strconv"
	"strings"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/homesim-core/internal/activity"
	"github.com/nerrad567/homesim-core/internal/device"
)

// Measurement names written by the Recorder.
const (
	MeasurementDeviceState = "device_state"
	MeasurementDeviceEvent = "device_event"
	MeasurementActivity    = "activity"
)

// failedPrefix marks activity entries for rejected actions.
const failedPrefix = "Failed: "

// PointWriter accepts points for delivery. *Client implements it.
type PointWriter interface {
	Write(p *write.Point)
}

// Recorder implements device.Notifier by writing a point for every registry
// change, giving a time series of device power and parameter values.
//
// Writes never block: the client batches them in the background.
type Recorder struct {
	w   PointWriter
	now func() time.Time
}

// NewRecorder creates a Recorder writing to w.
func NewRecorder(w PointWriter) *Recorder {
	return &Recorder{w: w, now: time.Now}
}

// DeviceChanged writes the device's current power and parameter value.
func (r *Recorder) DeviceChanged(d device.Device) {
	fields := map[string]interface{}{
		"power": d.Power,
	}
	if d.Adjustable != nil {
		fields["value"] = d.Adjustable.Value
	}

	r.w.Write(write.NewPoint(MeasurementDeviceState, deviceTags(d), fields, r.now()))
}

// DeviceRemoved records the removal as an event so the series has an end marker.
func (r *Recorder) DeviceRemoved(id device.ID) {
	r.w.Write(write.NewPoint(
		MeasurementDeviceEvent,
		map[string]string{
			"device_id": formatID(id),
			"event":     "removed",
		},
		map[string]interface{}{"count": 1},
		r.now(),
	))
}

// ActivityLogged writes the entry at its own timestamp, tagged by outcome.
func (r *Recorder) ActivityLogged(e activity.Entry) {
	outcome := "ok"
	if strings.HasPrefix(e.Message, failedPrefix) {
		outcome = "failed"
	}

	r.w.Write(write.NewPoint(
		MeasurementActivity,
		map[string]string{"outcome": outcome},
		map[string]interface{}{"message": e.Message},
		e.Time,
	))
}

func deviceTags(d device.Device) map[string]string {
	tags := map[string]string{
		"device_id":    formatID(d.ID),
		"type":         string(d.Type),
		"connectivity": string(d.Connectivity),
	}
	if d.Adjustable != nil {
		tags["parameter"] = d.Adjustable.Label
	}
	return tags
}

func formatID(id device.ID) string {
	return strconv.FormatUint(uint64(id), 10)
}
