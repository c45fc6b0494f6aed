// Package dashboard manages the user-authored layout document.
//
// The document lives inside the hub itself, parked on a text holder
// entity, so the dashboard needs no storage backend of its own. That
// choice makes saving a round trip through the state stream, which is
// why the manager carries a self-echo window.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────┐
//	│                          Manager                              │
//	│                                                               │
//	│  Load ──▶ detect format ──▶ migrate legacy ──▶ backfill       │
//	│                                                               │
//	│  Save ──▶ strip legacy keys ──▶ Persister ──▶ arm echo window │
//	│                                                               │
//	│  HandleHolderChange ──▶ inside window?  drop (own echo)       │
//	│                         outside window? reload                │
//	└──────────────────────────────────────────────────────────────┘
//
// Absent, empty and malformed documents all resolve to the default
// layout; a broken document must never take the dashboard down.
//
// The echo window is wall-clock based and covers the common case. A
// genuinely concurrent external edit landing inside the window is lost
// until the next change; accepted as a non-goal of this design.
package dashboard
