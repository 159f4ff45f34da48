package influxdb

import "errors"

// Sentinel errors for telemetry export. Write failures are asynchronous and
// arrive through SetOnError instead.
var (
	// ErrNotConnected is returned by HealthCheck before Connect or after Close.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed wraps the ping failure seen by Connect.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled is returned by Connect when telemetry is turned off.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
