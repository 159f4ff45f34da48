// Package influxdb records simulator telemetry in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library for connection
// management, batched writes and health monitoring, and provides Recorder,
// a device.Notifier that turns registry changes into points:
//
//	device_state   tags device_id, type, connectivity, parameter; fields power, value
//	device_event   tags device_id, event=removed
//	activity       tag outcome (ok|failed); field message
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	registry.AddNotifier(influxdb.NewRecorder(client))
//
// The recorder is optional and export-only. The simulator never reads the
// data back, so a restart still begins from the configured seed devices.
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// Write errors are delivered asynchronously via SetOnError.
package influxdb
