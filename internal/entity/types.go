package entity

import (
	"strings"
	"time"
)

// Attributes is the open attribute mapping carried by every snapshot.
// Values are whatever the hub sent: strings, numbers, booleans, arrays
// and nested objects as decoded from JSON.
type Attributes map[string]any

// Snapshot is the latest known state of one entity.
//
// A snapshot is immutable once stored: a new snapshot for the same
// identifier fully replaces the old one, attributes are never merged.
type Snapshot struct {
	// EntityID is the stable identifier, format "domain.object_id".
	EntityID string `json:"entity_id"`

	// State is the primary state value (domain-dependent enum or free text).
	State string `json:"state"`

	// Attributes is the open key/value mapping reported by the hub.
	Attributes Attributes `json:"attributes"`

	// LastUpdated is the instant the hub last updated this entity.
	LastUpdated time.Time `json:"last_updated"`
}

// DomainOf returns the domain prefix of an entity identifier without
// needing a snapshot, for routing on ids that may not be in the store.
func DomainOf(entityID string) string {
	if i := strings.IndexByte(entityID, '.'); i >= 0 {
		return entityID[:i]
	}
	return entityID
}

// Domain returns the category prefix of the entity identifier
// (the part before the first "."). An identifier without a separator
// is returned whole.
func (s *Snapshot) Domain() string {
	if i := strings.IndexByte(s.EntityID, '.'); i >= 0 {
		return s.EntityID[:i]
	}
	return s.EntityID
}

// ObjectID returns the part of the identifier after the first ".".
func (s *Snapshot) ObjectID() string {
	if i := strings.IndexByte(s.EntityID, '.'); i >= 0 {
		return s.EntityID[i+1:]
	}
	return ""
}

// FriendlyName returns the human-readable name advertised by the hub,
// falling back to the object id when absent.
func (s *Snapshot) FriendlyName() string {
	if name, ok := s.Attributes.String("friendly_name"); ok && name != "" {
		return name
	}
	if oid := s.ObjectID(); oid != "" {
		return oid
	}
	return s.EntityID
}

// DeepCopy returns a copy of the snapshot whose attribute map is
// independent of the original. Nested maps and slices are copied too.
func (s *Snapshot) DeepCopy() *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	out.Attributes = deepCopyAttributes(s.Attributes)
	return &out
}

// String returns the attribute as a string.
func (a Attributes) String(key string) (string, bool) {
	v, ok := a[key].(string)
	return v, ok
}

// Float returns the attribute as a float64. Integers decoded from JSON
// arrive as float64 already; int values set in tests are accepted too.
func (a Attributes) Float(key string) (float64, bool) {
	switch v := a[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Bool returns the attribute as a bool.
func (a Attributes) Bool(key string) (bool, bool) {
	v, ok := a[key].(bool)
	return v, ok
}

// StringSlice returns the attribute as a slice of strings. JSON arrays
// decode as []any; both that and []string are accepted.
func (a Attributes) StringSlice(key string) []string {
	switch v := a[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// FloatSlice returns the attribute as a slice of float64.
func (a Attributes) FloatSlice(key string) []float64 {
	switch v := a[key].(type) {
	case []float64:
		return v
	case []any:
		out := make([]float64, 0, len(v))
		for _, item := range v {
			if f, ok := item.(float64); ok {
				out = append(out, f)
			}
		}
		return out
	}
	return nil
}

// deepCopyAttributes copies an attribute map including nested maps and slices.
func deepCopyAttributes(in Attributes) Attributes {
	if in == nil {
		return nil
	}
	out := make(Attributes, len(in))
	for k, v := range in {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = deepCopyValue(item)
		}
		return out
	case Attributes:
		return map[string]any(deepCopyAttributes(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}
