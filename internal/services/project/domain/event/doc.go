// Package event defines the canonical event envelope and event-type registry used by
// the project write path.
//
// Events are immutable facts emitted by accepted decisions. The registry enforces
// addressing and payload validity before the journal assigns sequence and
// integrity fields.
package event
