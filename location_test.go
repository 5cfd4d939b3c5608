package confres

import "testing"

func TestParseLocation(t *testing.T) {
	loc, err := ParseLocation("  https://meet.example.com/team/standup#config.x=1  ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if loc.Scheme() != "https" || loc.Host() != "meet.example.com" || loc.Path() != "/team/standup" {
		t.Fatalf("unexpected parts: %s %s %s", loc.Scheme(), loc.Host(), loc.Path())
	}
	if loc.Room() != "standup" {
		t.Fatalf("expected room standup, got %q", loc.Room())
	}
	if loc.Fragment() != "config.x=1" {
		t.Fatalf("unexpected fragment %q", loc.Fragment())
	}
	if loc.String() != "https://meet.example.com/team/standup#config.x=1" {
		t.Fatalf("unexpected string %q", loc.String())
	}
}

func TestParseLocationRejectsRelative(t *testing.T) {
	for _, raw := range []string{"", "   ", "/room", "meet.example.com/room", "https://"} {
		if _, err := ParseLocation(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestLocationKeepsEscapedFragment(t *testing.T) {
	loc := MustParseLocation(`https://meet.example.com/room#interfaceConfig.APP_NAME="A\%26B"&config.x=1`)
	if got := loc.Fragment(); got != `interfaceConfig.APP_NAME="A\%26B"&config.x=1` {
		t.Fatalf("fragment re-escaped: %q", got)
	}
}

func TestNilLocation(t *testing.T) {
	var loc *Location
	if loc.String() != "" || loc.Room() != "" || loc.Fragment() != "" || loc.URL() != nil {
		t.Fatalf("nil location should be empty")
	}
	binding := loc.binding()
	if binding["host"] != "" || binding["room"] != "" {
		t.Fatalf("unexpected binding %#v", binding)
	}
}

func TestLocationURLIsCopy(t *testing.T) {
	loc := MustParseLocation("https://meet.example.com/room")
	u := loc.URL()
	u.Host = "evil.example.com"
	if loc.Host() != "meet.example.com" {
		t.Fatalf("location mutated through URL()")
	}
}

func TestRoomWithoutPath(t *testing.T) {
	if room := MustParseLocation("https://meet.example.com").Room(); room != "" {
		t.Fatalf("expected empty room, got %q", room)
	}
	if room := MustParseLocation("https://meet.example.com/standup/").Room(); room != "standup" {
		t.Fatalf("expected standup, got %q", room)
	}
}
