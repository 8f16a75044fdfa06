package redact

import (
	"reflect"
	"testing"
)

func TestMapMasksKeyMaterial(t *testing.T) {
	input := map[string]any{
		"suite":      "INOP-38",
		"master_key": "HELLO/",
		"Plugs":      []string{"AB", "CD"},
		"symbols":    42,
		"note":       "rotated master_key=QWERTY on shift change",
	}
	masked := Map(input)

	if masked["suite"] != "INOP-38" {
		t.Fatalf("suite should pass through, got %#v", masked["suite"])
	}
	if masked["symbols"] != 42 {
		t.Fatalf("non-string values should pass through, got %#v", masked["symbols"])
	}
	for _, key := range []string{"master_key", "Plugs"} {
		if masked[key] != "[REDACTED_SECRET]" {
			t.Fatalf("expected %s to be masked, got %#v", key, masked[key])
		}
	}
	if got := masked["note"]; got != "rotated master_key=[REDACTED_SECRET] on shift change" {
		t.Fatalf("unexpected note redaction: %q", got)
	}
}

func TestMapAppliesNeverPersistMask(t *testing.T) {
	input := map[string]any{
		"operator":      "night shift",
		"nested":        []any{"marker: QXZAB"},
		"never_persist": []any{"operator", "missing"},
	}
	masked := Map(input)
	if _, exists := masked["never_persist"]; exists {
		t.Fatalf("never_persist key should be removed")
	}
	if val, ok := masked["operator"].(string); !ok || val != "[REDACTED_SECRET]" {
		t.Fatalf("expected operator to be masked, got %#v", masked["operator"])
	}
	nested, ok := masked["nested"].([]any)
	if !ok || len(nested) != 1 {
		t.Fatalf("expected nested slice to be preserved, got %#v", masked["nested"])
	}
	if item, _ := nested[0].(string); item != "marker: [REDACTED_SECRET]" {
		t.Fatalf("expected nested value to be redacted, got %q", item)
	}
}

func TestMapStringAppliesNeverPersistMask(t *testing.T) {
	input := map[string]string{
		"profile":       "daily",
		"another_field": "ok",
		"ring_set":      "1,2,3",
		"never_persist": "profile, missing",
	}
	masked := MapString(input)
	if _, exists := masked["never_persist"]; exists {
		t.Fatalf("never_persist key should be removed")
	}
	if val := masked["profile"]; val != "[REDACTED_SECRET]" {
		t.Fatalf("expected profile to be masked, got %q", val)
	}
	if val := masked["ring_set"]; val != "[REDACTED_SECRET]" {
		t.Fatalf("expected ring_set to be masked, got %q", val)
	}
	if val := masked["another_field"]; val != "ok" {
		t.Fatalf("unexpected value for another_field: %q", val)
	}
}

func TestMapNilAndEmpty(t *testing.T) {
	if got := Map(nil); got != nil {
		t.Fatalf("expected nil input to return nil, got %#v", got)
	}
	if got := Map(map[string]any{}); got != nil {
		t.Fatalf("expected empty map to return nil, got %#v", got)
	}
	if got := MapString(nil); got != nil {
		t.Fatalf("expected nil string map to return nil, got %#v", got)
	}
}

func TestStringRedactsSettings(t *testing.T) {
	tests := map[string]string{
		`master-key: "AB£€"`:          `master-key: "[REDACTED_SECRET]"`,
		"plugs=AB,CD":                 "plugs=[REDACTED_SECRET]",
		"ring set = 12":               "ring set = [REDACTED_SECRET]",
		"rotors=I,II,III reflector=B": "rotors=I,II,III reflector=B",
		"   ":                         "   ",
	}
	for in, want := range tests {
		if got := String(in); got != want {
			t.Fatalf("String(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSliceRedactsValues(t *testing.T) {
	out := Slice([]string{"marker=ZZTOP", "  "})
	expected := []string{"marker=[REDACTED_SECRET]", "  "}
	if !reflect.DeepEqual(out, expected) {
		t.Fatalf("expected %v, got %v", expected, out)
	}
}
