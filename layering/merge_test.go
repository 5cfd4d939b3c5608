package layering

import (
	"reflect"
	"testing"
	"time"
)

type tree = map[string]any

func TestMergeTrees(t *testing.T) {
	cases := []struct {
		name   string
		strong tree
		weak   tree
		expect tree
	}{
		{
			name:   "scalar override wins",
			strong: tree{"channelLastN": 5.0},
			weak:   tree{"channelLastN": -1.0, "bosh": "//meet/http-bind"},
			expect: tree{"channelLastN": 5.0, "bosh": "//meet/http-bind"},
		},
		{
			name:   "nested maps merge key by key",
			strong: tree{"hosts": tree{"muc": "conference.meet"}},
			weak:   tree{"hosts": tree{"domain": "meet", "muc": "muc.meet"}},
			expect: tree{"hosts": tree{"domain": "meet", "muc": "conference.meet"}},
		},
		{
			name:   "map replaces scalar",
			strong: tree{"p2p": tree{"enabled": false}},
			weak:   tree{"p2p": true},
			expect: tree{"p2p": tree{"enabled": false}},
		},
		{
			name:   "scalar replaces map",
			strong: tree{"p2p": false},
			weak:   tree{"p2p": tree{"enabled": true}},
			expect: tree{"p2p": false},
		},
		{
			name:   "slices are replaced not appended",
			strong: tree{"toolbar": []any{"chat"}},
			weak:   tree{"toolbar": []any{"camera", "microphone"}},
			expect: tree{"toolbar": []any{"chat"}},
		},
		{
			name:   "nil strong keeps weak",
			strong: nil,
			weak:   tree{"x": 1.0},
			expect: tree{"x": 1.0},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Merge(tc.strong, tc.weak)
			if !reflect.DeepEqual(tc.expect, got) {
				t.Fatalf("merged tree mismatch:\nwant: %#v\n got: %#v", tc.expect, got)
			}
		})
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	strong := tree{"hosts": tree{"muc": "conference.meet"}}
	weak := tree{"hosts": tree{"domain": "meet"}}

	merged := Merge(strong, weak)
	merged["hosts"].(tree)["domain"] = "changed"

	if weak["hosts"].(tree)["domain"] != "meet" {
		t.Fatalf("weak layer mutated: %#v", weak)
	}
	if _, ok := strong["hosts"].(tree)["domain"]; ok {
		t.Fatalf("strong layer mutated: %#v", strong)
	}
}

func TestMergeLayersZeroInput(t *testing.T) {
	type sample struct {
		Value int
	}
	var zero sample
	if got := MergeLayers[sample](); got != zero {
		t.Fatalf("expected MergeLayers() to return zero value, got %+v", got)
	}
}

func TestMergeLayersStructPointers(t *testing.T) {
	type settings struct {
		Enabled *bool
		Limit   *int
		Labels  map[string]string
	}
	on := true
	limit := 7

	got := MergeLayers(
		settings{Labels: map[string]string{"team": "core"}},
		settings{Limit: &limit},
		settings{Enabled: &on, Labels: map[string]string{"env": "prod"}},
	)
	if got.Enabled == nil || !*got.Enabled {
		t.Fatalf("Enabled = %v, want true from weakest layer", got.Enabled)
	}
	if got.Limit == nil || *got.Limit != 7 {
		t.Fatalf("Limit = %v, want 7", got.Limit)
	}
	if got.Labels["team"] != "core" || got.Labels["env"] != "prod" {
		t.Fatalf("Labels = %v, want merged labels", got.Labels)
	}
	if got.Limit == &limit {
		t.Fatalf("expected pointer to be cloned")
	}
}

func TestCloneDetachesNestedValues(t *testing.T) {
	original := tree{
		"hosts":   tree{"domain": "meet"},
		"toolbar": []any{"chat"},
	}
	clone := Clone(original)

	clone["hosts"].(tree)["domain"] = "other"
	clone["toolbar"].([]any)[0] = "camera"

	if original["hosts"].(tree)["domain"] != "meet" {
		t.Fatalf("clone shares nested map: %#v", original)
	}
	if original["toolbar"].([]any)[0] != "chat" {
		t.Fatalf("clone shares nested slice: %#v", original)
	}
}

func TestCloneKeepsOpaqueStructs(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	clone := Clone(tree{"at": at})
	if got, ok := clone["at"].(time.Time); !ok || !got.Equal(at) {
		t.Fatalf("clone[at] = %v, want %v", clone["at"], at)
	}
}
