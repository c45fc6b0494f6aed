// Package entity provides the in-memory mirror of remote entity state.
//
// The Store maps entity identifiers ("domain.object_id") to their latest
// Snapshot. It is populated by the hub transport: a bulk result on first
// connect, then one snapshot per state-changed event. Replacement is
// whole-snapshot and last-write-wins; the store keeps no history and
// performs no merging.
//
// # Key Types
//
//   - Snapshot: state + open attribute mapping + last-updated instant
//   - Attributes: typed accessors over the raw JSON attribute values
//   - Store: the mirror itself; single writer, many readers
//
// # Usage
//
//	store := entity.NewStore()
//	store.ApplyBulk(initial)
//	store.Apply(&changed)
//
//	if snap, ok := store.Get("light.kitchen"); ok {
//	    level, _ := snap.Attributes.Float("brightness")
//	    _ = level
//	}
//
// # Thread Safety
//
// All Store methods are safe for concurrent use. Snapshots handed out
// are deep copies; callers can never mutate the mirror through them.
package entity
