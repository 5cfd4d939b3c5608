package confres

import (
	"fmt"
	"net/url"
	"strings"
)

// Location identifies the session a client is joining. The fragment carries
// the override parameters applied on top of the loaded configuration.
type Location struct {
	url *url.URL
	// fragment is kept as written; re-escaping the parsed URL would turn an
	// escaped "%26" inside a value into a separator.
	fragment string
	raw      string
}

// ParseLocation parses raw into a Location. Only absolute URLs are accepted.
func ParseLocation(raw string) (*Location, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("confres: location is empty")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("confres: parse location %q: %w", trimmed, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("confres: location %q must be an absolute URL", trimmed)
	}
	_, fragment, _ := strings.Cut(trimmed, "#")
	return &Location{url: parsed, fragment: fragment, raw: trimmed}, nil
}

// MustParseLocation is like ParseLocation but panics on error.
func MustParseLocation(raw string) *Location {
	loc, err := ParseLocation(raw)
	if err != nil {
		panic(err)
	}
	return loc
}

// URL returns a copy of the underlying URL.
func (l *Location) URL() *url.URL {
	if l == nil || l.url == nil {
		return nil
	}
	clone := *l.url
	return &clone
}

func (l *Location) Scheme() string {
	if l == nil || l.url == nil {
		return ""
	}
	return l.url.Scheme
}

func (l *Location) Host() string {
	if l == nil || l.url == nil {
		return ""
	}
	return l.url.Host
}

func (l *Location) Path() string {
	if l == nil || l.url == nil {
		return ""
	}
	return l.url.Path
}

// Room returns the last non-empty path segment, which names the session.
func (l *Location) Room() string {
	path := strings.Trim(l.Path(), "/")
	if path == "" {
		return ""
	}
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

// Fragment returns the fragment as written, still escaped, without the
// leading '#'.
func (l *Location) Fragment() string {
	if l == nil {
		return ""
	}
	return l.fragment
}

// String returns the location as it was parsed, or "" for a nil Location.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	return l.raw
}

func (l *Location) binding() map[string]any {
	return map[string]any{
		"scheme": l.Scheme(),
		"host":   l.Host(),
		"path":   l.Path(),
		"room":   l.Room(),
	}
}
