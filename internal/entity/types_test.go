package entity

import "testing"

func TestSnapshotIdentifierParts(t *testing.T) {
	s := &Snapshot{EntityID: "light.soggiorno", Attributes: Attributes{}}
	if s.Domain() != "light" {
		t.Errorf("Domain() = %q", s.Domain())
	}
	if s.ObjectID() != "soggiorno" {
		t.Errorf("ObjectID() = %q", s.ObjectID())
	}
	if DomainOf("climate.studio") != "climate" {
		t.Errorf("DomainOf = %q", DomainOf("climate.studio"))
	}
	if DomainOf("nodot") != "nodot" {
		t.Errorf("DomainOf without separator = %q", DomainOf("nodot"))
	}
}

func TestFriendlyNameFallbacks(t *testing.T) {
	s := &Snapshot{EntityID: "light.sala", Attributes: Attributes{"friendly_name": "Sala"}}
	if s.FriendlyName() != "Sala" {
		t.Errorf("FriendlyName() = %q", s.FriendlyName())
	}

	s = &Snapshot{EntityID: "light.sala", Attributes: Attributes{}}
	if s.FriendlyName() != "sala" {
		t.Errorf("FriendlyName() fallback = %q, want object id", s.FriendlyName())
	}
}

func TestAttributeAccessors(t *testing.T) {
	a := Attributes{
		"text":   "hello",
		"num":    float64(3.5),
		"flag":   true,
		"modes":  []any{"heat", "cool"},
		"hs":     []any{float64(120), float64(50)},
		"nested": map[string]any{"k": "v"},
	}

	if v, ok := a.String("text"); !ok || v != "hello" {
		t.Errorf("String = %q, %v", v, ok)
	}
	if v, ok := a.Float("num"); !ok || v != 3.5 {
		t.Errorf("Float = %v, %v", v, ok)
	}
	if v, ok := a.Bool("flag"); !ok || !v {
		t.Errorf("Bool = %v, %v", v, ok)
	}
	if got := a.StringSlice("modes"); len(got) != 2 || got[0] != "heat" {
		t.Errorf("StringSlice = %v", got)
	}
	if got := a.FloatSlice("hs"); len(got) != 2 || got[0] != 120 {
		t.Errorf("FloatSlice = %v", got)
	}
	if _, ok := a.Float("text"); ok {
		t.Error("Float on string reported ok")
	}
	if _, ok := a.String("missing"); ok {
		t.Error("String on missing key reported ok")
	}
}

func TestDeepCopyIsolatesNestedValues(t *testing.T) {
	orig := &Snapshot{
		EntityID: "weather.casa",
		State:    "sunny",
		Attributes: Attributes{
			"forecast": []any{map[string]any{"temp": float64(20)}},
		},
	}

	cp := orig.DeepCopy()
	inner := cp.Attributes["forecast"].([]any)[0].(map[string]any)
	inner["temp"] = float64(99)

	origInner := orig.Attributes["forecast"].([]any)[0].(map[string]any)
	if origInner["temp"] != float64(20) {
		t.Error("nested mutation leaked into the original")
	}
}
