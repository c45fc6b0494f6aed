// Package history records entity state changes into local SQLite.
//
// The hub keeps its own recorder, but that history disappears behind
// every outage. Recording locally gives the dashboard its own answer
// to "what happened overnight" with a bounded retention window.
//
// Entries are append-only; a periodic pruner enforces retention.
package history
