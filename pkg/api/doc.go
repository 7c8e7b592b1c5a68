// Package api defines the identifiers and collaborator contracts shared by
// the timer subsystem and its hosts
//
// Work items and channels are consumed by process instances outside of the
// timer core; they live here so hosts and timers agree on one vocabulary
package api
