package confres

import (
	"slices"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-confres/layering"
)

// MergeInput groups the surfaces a merge operates on. A nil Interface or
// Logging means the surface is absent: overrides routed to it are discarded.
type MergeInput struct {
	Base      Values
	Interface Values
	Logging   Values
	Location  *Location
}

// Override records one fragment parameter applied to a surface.
type Override struct {
	Surface  Surface
	Key      string
	Path     []string
	Value    any
	Previous any
	Found    bool
}

// MergeResult holds new surfaces with overrides applied. Absent input surfaces
// stay nil. Applied lists effective overrides in fragment order; a key that
// repeats is reported once, at its last position.
type MergeResult struct {
	Config    Values
	Interface Values
	Logging   Values
	Applied   []Override
}

func (r *MergeResult) surface(s Surface) Values {
	switch s {
	case SurfaceConfig:
		return r.Config
	case SurfaceInterface:
		return r.Interface
	case SurfaceLogging:
		return r.Logging
	default:
		return nil
	}
}

func (r *MergeResult) setSurface(s Surface, v Values) {
	switch s {
	case SurfaceConfig:
		r.Config = v
	case SurfaceInterface:
		r.Interface = v
	case SurfaceLogging:
		r.Logging = v
	}
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRoutes replaces the default routing table.
func WithRoutes(routes RoutingTable) EngineOption {
	return func(e *Engine) {
		e.routes = routes.Clone()
	}
}

// WithFragmentDecoder replaces the default fragment decoder.
func WithFragmentDecoder(decoder FragmentDecoder) EngineOption {
	return func(e *Engine) {
		if decoder != nil {
			e.decoder = decoder
		}
	}
}

// WithGuardEvaluator sets the evaluator used for routes carrying a When guard.
func WithGuardEvaluator(evaluator Evaluator) EngineOption {
	return func(e *Engine) {
		if evaluator != nil {
			e.evaluator = evaluator
		}
	}
}

// WithEngineLogger attaches a logger to the engine.
func WithEngineLogger(logger zerolog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// Engine applies location overrides to configuration surfaces. It is safe for
// concurrent use once constructed.
type Engine struct {
	routes    RoutingTable
	decoder   FragmentDecoder
	evaluator Evaluator
	logger    zerolog.Logger
}

// NewEngine builds an Engine with the default routes, fragment decoder and
// expr guard evaluator unless overridden.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		routes:  DefaultRoutes(),
		decoder: DefaultFragmentDecoder(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.evaluator == nil {
		e.evaluator = NewExprEvaluator(ExprWithProgramCache(NewProgramCache()))
	}
	return e
}

var defaultEngine = NewEngine()

// Merge applies in.Location's overrides using the default engine.
func Merge(in MergeInput) MergeResult {
	return defaultEngine.Merge(in)
}

// Routes returns a copy of the engine's routing table.
func (e *Engine) Routes() RoutingTable {
	return e.routes.Clone()
}

// Overrides decodes loc's fragment and routes each parameter. Parameters that
// match no route are dropped. Previous and Found are left unset.
func (e *Engine) Overrides(loc *Location) []Override {
	if loc == nil {
		return nil
	}
	params := e.decoder.Decode(loc)
	if len(params) == 0 {
		return nil
	}

	overrides := make([]Override, 0, len(params))
	for _, param := range params {
		route, path, ok := e.routes.route(param.Key, func(route Route) bool {
			return e.guard(loc, param.Key, route)
		})
		if !ok {
			e.logger.Debug().Str("key", param.Key).Msg("dropping unrouted location override")
			continue
		}
		overrides = append(overrides, Override{
			Surface: route.Surface,
			Key:     param.Key,
			Path:    path,
			Value:   param.Value,
		})
	}
	return overrides
}

func (e *Engine) guard(loc *Location, key string, route Route) bool {
	if route.When == "" {
		return true
	}
	ok, err := e.evaluator.Evaluate(GuardContext{Location: loc, Key: key, Surface: route.Surface}, route.When)
	if err != nil {
		e.logger.Warn().Err(err).Str("key", key).Str("surface", route.Surface.String()).
			Msg("route guard failed; skipping route")
		return false
	}
	return ok
}

// Merge returns new surfaces with the overrides from in.Location applied.
// Location values take precedence over the input surfaces; maps are merged
// recursively, any other value is replaced. Inputs are never modified.
func (e *Engine) Merge(in MergeInput) MergeResult {
	result := MergeResult{
		Config:    in.Base.Clone(),
		Interface: in.Interface.Clone(),
		Logging:   in.Logging.Clone(),
	}
	if result.Config == nil {
		result.Config = Values{}
	}

	overrides := e.Overrides(in.Location)
	if len(overrides) == 0 {
		return result
	}

	trees := map[Surface]Values{}
	applied := make([]Override, 0, len(overrides))
	for _, override := range overrides {
		before := result.surface(override.Surface)
		if before == nil {
			e.logger.Debug().Str("key", override.Key).Str("surface", override.Surface.String()).
				Msg("surface absent; discarding location override")
			continue
		}
		tree, ok := trees[override.Surface]
		if !ok {
			tree = Values{}
			trees[override.Surface] = tree
		}
		tree.Set(layering.Clone(override.Value), override.Path...)

		override.Path = slices.Clone(override.Path)
		override.Previous, override.Found = before.Lookup(override.Path...)
		applied = appendOverride(applied, override)
	}

	for _, surface := range []Surface{SurfaceConfig, SurfaceInterface, SurfaceLogging} {
		tree, ok := trees[surface]
		if !ok {
			continue
		}
		e.logger.Info().Str("surface", surface.String()).Interface("overrides", tree).
			Msg("extending configuration from location")
		result.setSurface(surface, layering.Merge(tree, result.surface(surface)))
	}

	if len(applied) > 0 {
		result.Applied = applied
	}
	return result
}

func appendOverride(applied []Override, override Override) []Override {
	for i := range applied {
		if applied[i].Key == override.Key {
			applied = slices.Delete(applied, i, i+1)
			break
		}
	}
	return append(applied, override)
}
