// Package logging configures log/slog for the simulator.
//
// Entries are JSON by default or text for local runs, carry service and
// version fields, and are timestamped in UTC:
//
//	logging:
//	  level: info     # debug, info, warn, error
//	  format: json    # json, text
//	  output: stdout  # stdout, stderr
//
// Components take a child logger tagged with their name:
//
//	log := logging.New(cfg.Logging, version)
//	registry.SetLogger(log.With("component", "registry"))
//
// Broker and InfluxDB credentials must never be logged.
package logging
