package activity

import (
	"reflect"
	"testing"
	"time"
)

func TestBuildLoadEventsObjectIDFallbacks(t *testing.T) {
	cases := []struct {
		name  string
		event Event
		want  string
	}{
		{name: "load id", event: Event{LoadID: " abc ", Location: "https://meet.example.com/room"}, want: "abc"},
		{name: "location", event: Event{Location: "https://meet.example.com/room"}, want: "https://meet.example.com/room"},
		{name: "object type", event: Event{}, want: ObjectTypeLoad},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event := BuildLoadStartedEvent(tc.event)
			if event.ObjectID != tc.want {
				t.Fatalf("expected object id %q, got %q", tc.want, event.ObjectID)
			}
			if event.ObjectType != ObjectTypeLoad || event.Verb != VerbLoadStarted {
				t.Fatalf("unexpected event identity: %+v", event)
			}
		})
	}
}

func TestBuildLoadSucceededEvent(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	overrides := []string{"config.startWithAudioMuted"}
	meta := map[string]any{"source": "http"}

	event := BuildLoadSucceededEvent(Event{
		LoadID:     "load-1",
		Epoch:      3,
		Location:   "https://meet.example.com/standup",
		Room:       " standup ",
		Overrides:  overrides,
		Error:      "ignored",
		Metadata:   meta,
		OccurredAt: at,
	})

	if event.Verb != VerbLoadSucceeded || event.ObjectID != "load-1" {
		t.Fatalf("unexpected identity: %+v", event)
	}
	if event.Epoch != 3 || event.Room != "standup" || event.Error != "" {
		t.Fatalf("unexpected load fields: %+v", event)
	}
	event.Overrides[0] = "changed"
	if overrides[0] != "config.startWithAudioMuted" {
		t.Fatalf("expected input overrides untouched")
	}
	event.Metadata["source"] = "file"
	if meta["source"] != "http" {
		t.Fatalf("expected input metadata untouched: %+v", meta)
	}
	if !event.OccurredAt.Equal(at) {
		t.Fatalf("expected occurred_at preserved, got %v", event.OccurredAt)
	}
}

func TestBuildLoadFailedAndDiscardedEvents(t *testing.T) {
	failed := BuildLoadFailedEvent(Event{LoadID: "load-2", Error: "network down", Overrides: []string{"config.x"}})
	if failed.Verb != VerbLoadFailed || failed.Error != "network down" || failed.Overrides != nil {
		t.Fatalf("unexpected failed event: %+v", failed)
	}

	discarded := BuildLoadDiscardedEvent(Event{LoadID: "load-1", Epoch: 1, Reason: " stale epoch ", Error: "late"})
	if discarded.Verb != VerbLoadDiscarded || discarded.Reason != "stale epoch" || discarded.Error != "" {
		t.Fatalf("unexpected discarded event: %+v", discarded)
	}
}

func TestEventData(t *testing.T) {
	event := Event{
		Epoch:     2,
		Location:  "https://meet.example.com/standup",
		Room:      "standup",
		Overrides: []string{"config.channelLastN"},
		Reason:    "stale epoch",
		Metadata:  map[string]any{"kind": "load_failed", "room": "shadowed"},
	}

	want := map[string]any{
		"epoch":     uint64(2),
		"location":  "https://meet.example.com/standup",
		"room":      "standup",
		"overrides": []string{"config.channelLastN"},
		"reason":    "stale epoch",
		"kind":      "load_failed",
	}
	data := event.Data()
	if !reflect.DeepEqual(data, want) {
		t.Fatalf("unexpected data:\nwant: %#v\n got: %#v", want, data)
	}
	data["overrides"].([]string)[0] = "changed"
	if event.Overrides[0] != "config.channelLastN" {
		t.Fatalf("expected event overrides untouched")
	}

	if (Event{LoadID: "load-3"}).Data() != nil {
		t.Fatalf("expected nil data for bare event")
	}
}
