package confres

import (
	"slices"
	"strings"
)

// Surface names a configuration object that URL overrides may target.
type Surface int

const (
	SurfaceUnknown Surface = iota
	// SurfaceConfig is the primary configuration returned by retrieval.
	SurfaceConfig
	// SurfaceInterface is the interface customisation object.
	SurfaceInterface
	// SurfaceLogging is the logging policy object.
	SurfaceLogging
)

func (s Surface) String() string {
	switch s {
	case SurfaceConfig:
		return "config"
	case SurfaceInterface:
		return "interfaceConfig"
	case SurfaceLogging:
		return "loggingConfig"
	default:
		return "unknown"
	}
}

// ParseSurface maps a surface name back to its Surface. Unrecognised names
// return SurfaceUnknown.
func ParseSurface(name string) Surface {
	switch name {
	case "config":
		return SurfaceConfig
	case "interfaceConfig":
		return SurfaceInterface
	case "loggingConfig":
		return SurfaceLogging
	default:
		return SurfaceUnknown
	}
}

// Route sends fragment keys whose first segment equals Prefix to Surface.
type Route struct {
	Prefix  string
	Surface Surface
	// Allow, when non-empty, lists the top-level fields below Prefix that may
	// be overridden. Other fields are dropped.
	Allow []string
	// When is an optional guard expression evaluated against the location.
	// The route only applies when it evaluates to true.
	When string
}

func (r Route) allows(field string) bool {
	if len(r.Allow) == 0 {
		return true
	}
	return slices.Contains(r.Allow, field)
}

// RoutingTable is an ordered list of routes; the first match wins.
type RoutingTable []Route

// DefaultRoutes routes `config.*`, `interfaceConfig.*` and `loggingConfig.*`
// to their surfaces without field restrictions.
func DefaultRoutes() RoutingTable {
	return RoutingTable{
		{Prefix: SurfaceConfig.String(), Surface: SurfaceConfig},
		{Prefix: SurfaceInterface.String(), Surface: SurfaceInterface},
		{Prefix: SurfaceLogging.String(), Surface: SurfaceLogging},
	}
}

// Clone returns a copy safe to modify.
func (t RoutingTable) Clone() RoutingTable {
	if t == nil {
		return nil
	}
	out := make(RoutingTable, len(t))
	for i, route := range t {
		route.Allow = slices.Clone(route.Allow)
		out[i] = route
	}
	return out
}

// WithAllow returns a copy of t where the route for surface only accepts the
// listed fields.
func (t RoutingTable) WithAllow(surface Surface, fields ...string) RoutingTable {
	out := t.Clone()
	for i := range out {
		if out[i].Surface == surface {
			out[i].Allow = slices.Clone(fields)
		}
	}
	return out
}

// Route resolves key to a surface and the path inside it. ok is false when no
// route matches, when the key has no field below its prefix, or when the
// route's allow list rejects the field.
func (t RoutingTable) Route(key string) (Route, []string, bool) {
	return t.route(key, func(Route) bool { return true })
}

func (t RoutingTable) route(key string, guard func(Route) bool) (Route, []string, bool) {
	segments := strings.Split(key, ".")
	if len(segments) < 2 {
		return Route{}, nil, false
	}
	for _, segment := range segments {
		if segment == "" {
			return Route{}, nil, false
		}
	}
	for _, route := range t {
		if route.Prefix != segments[0] || route.Surface == SurfaceUnknown {
			continue
		}
		if !guard(route) {
			continue
		}
		path := segments[1:]
		if !route.allows(path[0]) {
			return Route{}, nil, false
		}
		return route, path, true
	}
	return Route{}, nil, false
}
