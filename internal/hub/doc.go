// Package hub is the transport adapter for the hub's websocket protocol.
//
// It owns the single duplex connection, translates protocol envelopes
// into three abstract event kinds, and exposes the one outbound
// primitive the rest of the core uses.
//
// # Architecture
//
//	┌───────────────────────────────────────────────────────────┐
//	│                        hub.Client                          │
//	│                                                            │
//	│  ┌────────────┐   ┌──────────────┐   ┌────────────────┐   │
//	│  │  readPump  │──▶│   dispatch   │──▶│    Handler     │   │
//	│  │ (client.go)│   │ (dispatch.go)│   │ (subscriber)   │   │
//	│  └────────────┘   └──────────────┘   └────────────────┘   │
//	│        ▲                                                   │
//	│        │ 5s fixed-delay reconnect (no backoff)             │
//	│  ┌────────────┐          ┌─────────────────────────────┐  │
//	│  │  Connect   │          │ CallService (fire-and-forget)│  │
//	│  └────────────┘          └─────────────────────────────┘  │
//	└───────────────────────────────────────────────────────────┘
//
// Inbound frames reduce to {connection-state-changed, entity-changed,
// bulk-snapshot-ready}; everything else is dropped with a log line.
// An auth rejection is terminal: transport-level drops retry, invalid
// credentials do not.
//
// # Ordering
//
// The handler is invoked from the read pump, so events arrive in strict
// wire order with no coalescing. Handlers that need to do real work
// should hand events to their own loop (see internal/session).
package hub
