// Package panel serves the browser control panel as an embedded asset.
//
// The panel is a single static page (index.html, app.js, style.css) embedded
// into the binary with go:embed. It talks to the REST API under /api/v1 and
// refreshes when the WebSocket hub reports a change.
//
// Handler serves the assets with SPA fallback: a request for a file that does
// not exist returns index.html. Every response is sent with no-cache so an
// edited panel is picked up without a hard reload.
package panel
