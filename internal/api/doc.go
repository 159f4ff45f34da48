// Package api implements the HTTP REST API and WebSocket server for the home
// device simulator.
//
// This package provides:
//   - REST endpoints for adding, listing, toggling, adjusting and removing devices
//   - The activity log as formatted display lines
//   - WebSocket hub for real-time change broadcasts
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//   - The embedded browser panel under /panel/
//
// # Architecture
//
// Handlers translate HTTP into device.Registry calls. The registry is the only
// path that changes devices; the Hub is registered as a registry notifier and
// relays every change to clients subscribed on the matching channel:
//
//	device.changed   device snapshot after add, toggle or adjust
//	device.removed   {"id": N}
//	activity.logged  {"entry": "3:04:05 PM - ...", "message": "...", "time": "..."}
//
// Subscribing to "*" receives every channel.
//
// # Failed actions
//
// Toggling or adjusting an offline device returns 409 with the unsuccessful
// outcome as the body, so the panel can show the message as-is. The failure is
// also recorded in the activity log.
package api
