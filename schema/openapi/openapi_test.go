package openapi

import (
	"reflect"
	"testing"
	"time"
)

func TestSchemaFromValues(t *testing.T) {
	got, err := Schema(map[string]any{
		"hosts":        map[string]any{"domain": "example.com"},
		"channelLastN": 4.0,
		"toolbar":      []any{"microphone"},
		"empty":        []any{},
		"muted":        true,
		"unset":        nil,
	})
	if err != nil {
		t.Fatalf("schema: %v", err)
	}

	want := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"hosts": map[string]any{
				"type":       "object",
				"properties": map[string]any{"domain": map[string]any{"type": "string"}},
			},
			"channelLastN": map[string]any{"type": "number"},
			"toolbar":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"empty":        map[string]any{"type": "array", "items": map[string]any{}},
			"muted":        map[string]any{"type": "boolean"},
			"unset":        map[string]any{"nullable": true},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected schema:\nwant: %#v\n got: %#v", want, got)
	}
}

func TestSchemaFromStruct(t *testing.T) {
	type hosts struct {
		Domain string `json:"domain"`
	}
	type config struct {
		Hosts   hosts          `json:"hosts"`
		LastN   *int           `json:"channelLastN,omitempty"`
		At      time.Time      `json:"at"`
		Extra   map[string]any `json:"-"`
		private string
	}

	got, err := Schema(config{})
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	properties := got["properties"].(map[string]any)
	if len(properties) != 3 {
		t.Fatalf("expected 3 properties, got %#v", properties)
	}
	if !reflect.DeepEqual(properties["at"], map[string]any{"type": "string", "format": "date-time"}) {
		t.Fatalf("unexpected time schema: %#v", properties["at"])
	}
	if !reflect.DeepEqual(properties["channelLastN"], map[string]any{"nullable": true}) {
		t.Fatalf("unexpected pointer schema: %#v", properties["channelLastN"])
	}
}

func TestSchemaRejectsUnsupportedKinds(t *testing.T) {
	if _, err := Schema(map[string]any{"fn": func() {}}); err == nil {
		t.Fatalf("expected error for func value")
	}
	if _, err := Schema(map[int]string{1: "a"}); err == nil {
		t.Fatalf("expected error for non-string keys")
	}
}

func TestDocument(t *testing.T) {
	doc, err := Document([]Surface{
		{Name: "config", Value: map[string]any{"bosh": "//example.com/http-bind"}},
		{Name: "interfaceConfig", Value: map[string]any{"TOOLBAR_TIMEOUT": 4000.0}},
	}, WithInfo(Info{Title: "meet.example.com", Description: "standup"}), WithPath("meet/config"))
	if err != nil {
		t.Fatalf("document: %v", err)
	}

	if doc["openapi"] != "3.0.3" {
		t.Fatalf("unexpected version: %v", doc["openapi"])
	}
	info := doc["info"].(map[string]any)
	if info["title"] != "meet.example.com" || info["version"] != "1.0.0" || info["description"] != "standup" {
		t.Fatalf("unexpected info: %#v", info)
	}

	schemas := doc["components"].(map[string]any)["schemas"].(map[string]any)
	if _, ok := schemas["Config"]; !ok {
		t.Fatalf("missing Config component: %#v", schemas)
	}
	if _, ok := schemas["InterfaceConfig"]; !ok {
		t.Fatalf("missing InterfaceConfig component: %#v", schemas)
	}

	get := doc["paths"].(map[string]any)["/meet/config"].(map[string]any)["get"].(map[string]any)
	if get["operationId"] != "get:/meet/config" {
		t.Fatalf("unexpected operation id: %v", get["operationId"])
	}
	schema := get["responses"].(map[string]any)["200"].(map[string]any)["content"].(map[string]any)["application/json"].(map[string]any)["schema"].(map[string]any)
	ref := schema["properties"].(map[string]any)["interfaceConfig"]
	if !reflect.DeepEqual(ref, map[string]any{"$ref": "#/components/schemas/InterfaceConfig"}) {
		t.Fatalf("unexpected ref: %#v", ref)
	}
}

func TestDocumentRejectsBadSurfaces(t *testing.T) {
	if _, err := Document([]Surface{{Name: " "}}); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if _, err := Document([]Surface{{Name: "config"}, {Name: "config"}}); err == nil {
		t.Fatalf("expected error for duplicate surface")
	}

	doc, err := Document(nil, WithOpenAPIVersion("3.1.0"))
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if _, ok := doc["components"]; ok {
		t.Fatalf("expected no components for empty document")
	}
	if doc["openapi"] != "3.1.0" {
		t.Fatalf("unexpected version: %v", doc["openapi"])
	}
}

func TestComponentName(t *testing.T) {
	cases := map[string]string{
		"config":          "Config",
		"interfaceConfig": "InterfaceConfig",
		"logging-config":  "LoggingConfig",
	}
	for in, want := range cases {
		if got := componentName(in); got != want {
			t.Fatalf("componentName(%q) = %q, want %q", in, got, want)
		}
	}
}
