// Package view reconciles entity state and the layout document into an
// abstract render tree.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────┐
//	│                           Engine                              │
//	│                                                               │
//	│  RenderApp      full rebuild: status, nav, views, bindings    │
//	│  UpdateEntity   bound fragments only ──▶ []Mutation           │
//	│  OpenDetail     eligibility check ──▶ controls.Panel          │
//	│                                                               │
//	│  bindings: entity id ──▶ fragments showing it                 │
//	└──────────────────────────────────────────────────────────────┘
//
// Full renders happen on the rare structural events (startup, document
// reload, view switch); everything else flows through UpdateEntity,
// whose cost is bound to the changed entity's own cards. The fragment
// tree is toolkit-agnostic; the presentation layer maps kinds and
// mutations onto real widgets.
//
// Cards for entities the store has not seen render as placeholders and
// resolve in place once the first state report lands.
package view
