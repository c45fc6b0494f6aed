// Package session runs the single consumer loop between the hub
// transport and the rest of the core.
//
// # Architecture
//
//	hub read pump ──▶ events chan (ordered) ──▶ Session loop
//	                                               │
//	                        ┌──────────────────────┼─────────────────┐
//	                        ▼                      ▼                 ▼
//	                  entity.Store         dashboard.Manager   view.Engine
//	                        │                                        │
//	                  StateSinks (history, telemetry)          RenderSink
//
// The loop is the sole mutator of the store, the manager and the
// engine; events apply in wire order with no coalescing. The one
// routing special case lives here: state changes on the holder entity
// go to the document manager instead of the store, which is where the
// save-echo suppression decision gets made.
package session
