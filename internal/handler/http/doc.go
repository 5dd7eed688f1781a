// Package http implements the HTTP transport layer of the sync engine.
//
// It exposes route wiring, request handlers, and middleware for the REST
// API. One route group serves the device-facing surface (trigger syncs,
// inspect status, record local edits); a second group serves the remote
// surface that peer devices pull changesets and snapshots from.
// Authentication, request tracing, access logging, and response compression
// are handled in this package before requests are delegated to the service
// layer.
package http
