// Package engine runs project commands end to end: validate, load, decide,
// append, apply.
//
// Serializability per project comes from the journal's optimistic check on the
// expected sequence. When an append loses the race the handler reloads state and
// decides again, up to MaxAttempts times. The decider has no side effects, so a
// retry is indistinguishable from a first attempt.
package engine
