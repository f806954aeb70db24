package bridge

import "testing"

func TestKindForName(t *testing.T) {
	cases := map[string]EventKind{
		"triggerConfigurationUpdate":           TriggerConfigurationUpdate,
		"updateRequirement":                    UpdateRequirement,
		"updateRequirements":                   UpdateRequirements,
		"updateImageValue":                     UpdateImageValue,
		"updateTextValue":                      UpdateTextValue,
		"updateLinkedConfigurationCardinality": UpdateLinkedConfigurationCardinality,
		"removeLinkedConfiguration":            RemoveLinkedConfiguration,
		"dragStarted":                          DragStarted,
	}
	if len(cases) != int(numEventKinds) {
		t.Fatalf("test covers %d kinds, taxonomy has %d", len(cases), numEventKinds)
	}
	for name, want := range cases {
		got, ok := KindForName(name)
		if !ok || got != want {
			t.Fatalf("KindForName(%q) = %v, %v", name, got, ok)
		}
		if got.String() != name {
			t.Fatalf("String(%v) = %q", got, got.String())
		}
	}
	if _, ok := KindForName("elfsquad.configurationUpdated"); ok {
		t.Fatalf("outbound name must not map to an inbound kind")
	}
	if _, ok := KindForName(""); ok {
		t.Fatalf("empty name must not map to a kind")
	}
}

func TestSanitizeConfiguration(t *testing.T) {
	cfg := map[string]any{"a": 1, "configurator": struct{}{}}
	out := sanitizeConfiguration(cfg)
	if _, ok := out["configurator"]; ok {
		t.Fatalf("configurator not removed")
	}
	if out["a"] != 1 {
		t.Fatalf("unrelated field lost")
	}
	if _, ok := cfg["configurator"]; !ok {
		t.Fatalf("input map mutated")
	}
	if sanitizeConfiguration(nil) != nil {
		t.Fatalf("nil input should stay nil")
	}
}
