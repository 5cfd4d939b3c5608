package activity

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Event describes a configuration load transition fanned out to hooks.
// IDs are strings so call sites do not depend on a UUID type.
type Event struct {
	Verb       string
	ActorID    string
	UserID     string
	TenantID   string
	ObjectType string
	ObjectID   string
	Channel    string

	LoadID   string
	Epoch    uint64
	Location string
	Room     string
	// Overrides lists the fragment keys applied by a successful load.
	Overrides []string
	// Error is set on failed loads.
	Error string
	// Reason explains why a record was discarded.
	Reason string

	Metadata   map[string]any
	OccurredAt time.Time
}

// Data flattens the load fields and Metadata into one map for sinks that
// store free-form payloads. Load fields win over Metadata keys. Nil when
// there is nothing to report.
func (e Event) Data() map[string]any {
	data := cloneMap(e.Metadata)
	set := func(key string, value any) {
		if data == nil {
			data = map[string]any{}
		}
		data[key] = value
	}
	if e.Epoch != 0 {
		set("epoch", e.Epoch)
	}
	if e.Location != "" {
		set("location", e.Location)
	}
	if e.Room != "" {
		set("room", e.Room)
	}
	if len(e.Overrides) > 0 {
		set("overrides", append([]string(nil), e.Overrides...))
	}
	if e.Error != "" {
		set("error", e.Error)
	}
	if e.Reason != "" {
		set("reason", e.Reason)
	}
	return data
}

// ActivityHook receives normalized activity events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

// Notify dispatches to the underlying function.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans out events to zero or more hooks.
type Hooks []ActivityHook

// Enabled reports whether there are any hooks to notify.
func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// Notify forwards the event to every hook and joins their errors. Events
// missing a verb or object are dropped.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}

	normalized := NormalizeEvent(event)
	if normalized.Verb == "" || normalized.ObjectType == "" || normalized.ObjectID == "" {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, normalized); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NormalizeEvent trims identifiers, copies metadata and overrides, and stamps
// the time when missing. An event carrying a load ID or location and no
// object is attributed to that load.
func NormalizeEvent(event Event) Event {
	normalized := event
	normalized.Verb = strings.TrimSpace(event.Verb)
	normalized.ActorID = strings.TrimSpace(event.ActorID)
	normalized.UserID = strings.TrimSpace(event.UserID)
	normalized.TenantID = strings.TrimSpace(event.TenantID)
	normalized.ObjectType = strings.TrimSpace(event.ObjectType)
	normalized.ObjectID = strings.TrimSpace(event.ObjectID)
	normalized.Channel = strings.TrimSpace(event.Channel)
	normalized.LoadID = strings.TrimSpace(event.LoadID)
	normalized.Location = strings.TrimSpace(event.Location)
	normalized.Room = strings.TrimSpace(event.Room)
	normalized.Error = strings.TrimSpace(event.Error)
	normalized.Reason = strings.TrimSpace(event.Reason)
	if len(event.Overrides) > 0 {
		normalized.Overrides = append([]string(nil), event.Overrides...)
	}
	if normalized.ObjectID == "" {
		normalized.ObjectID = normalized.LoadID
	}
	if normalized.ObjectID == "" {
		normalized.ObjectID = normalized.Location
	}
	if normalized.ObjectType == "" && (normalized.LoadID != "" || normalized.Location != "") {
		normalized.ObjectType = ObjectTypeLoad
	}
	normalized.Metadata = cloneMap(event.Metadata)
	if normalized.OccurredAt.IsZero() {
		normalized.OccurredAt = time.Now()
	}
	return normalized
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
