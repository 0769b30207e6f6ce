// Package timeouts defines the HTTP server durations shared by taskboard processes.
package timeouts

import "time"

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Read caps reading an entire request, body included.
const Read = 10 * time.Second

// Write caps writing a response.
const Write = 10 * time.Second

// Idle bounds keep-alive connections between requests.
const Idle = 60 * time.Second

// Shutdown limits how long the HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 15 * time.Second
