// Package controls maps entity domains to card summaries and detail
// panels.
//
// Each domain gets an Adapter: Summarize for the card tile,
// BuildDetail/RefreshDetail for the open panel. The Registry routes by
// the entity id's domain prefix and falls back to a passive adapter,
// so an unknown domain renders instead of crashing.
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                         Registry                             │
//	│                                                              │
//	│  light ─ switch ─ cover ─ climate ─ media_player ─ sensor   │
//	│  binary_sensor ─ weather ─ camera ─ (default fallback)      │
//	│                                                              │
//	│  Summarize ──▶ Summary            card tile, every change    │
//	│  BuildDetail ─▶ Panel{Controls}   once per open              │
//	│  RefreshDetail ─▶ value updates   every change while open    │
//	└─────────────────────────────────────────────────────────────┘
//
// Commands are optimistic and fire-and-forget; the hub's next state
// report is the authoritative outcome. Two rules keep the loop stable:
// refreshes never touch a control the user currently holds (focus
// guard), and chatty controls debounce so a drag or tap burst becomes
// one trailing command.
//
// Unit conversions live at this boundary: wire brightness 0..255 shows
// as percent, mireds show as Kelvin, volume fraction 0..1 shows as
// percent.
package controls
