package confres

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Retriever fetches the raw configuration for a location.
type Retriever interface {
	Retrieve(ctx context.Context, loc *Location) (Values, error)
}

// RetrieverFunc adapts a function to Retriever.
type RetrieverFunc func(ctx context.Context, loc *Location) (Values, error)

// Retrieve implements Retriever.
func (f RetrieverFunc) Retrieve(ctx context.Context, loc *Location) (Values, error) {
	return f(ctx, loc)
}

// Dispatcher applies transition records. It reports whether the record was
// accepted; stale records are rejected.
type Dispatcher interface {
	Dispatch(Record) bool
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(Record) bool

// Dispatch implements Dispatcher.
func (f DispatcherFunc) Dispatch(record Record) bool {
	return f(record)
}

// Environment holds the ambient surfaces that location overrides may target
// besides the configuration itself. A nil surface is treated as absent.
type Environment struct {
	Interface Values
	Logging   Values
}

// Clone returns a deep copy of env.
func (env Environment) Clone() Environment {
	return Environment{
		Interface: env.Interface.Clone(),
		Logging:   env.Logging.Clone(),
	}
}

// LocationSource reports the location the session is currently at.
type LocationSource func() *Location

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithEnvironment sets the ambient surfaces merged alongside the configuration.
func WithEnvironment(env Environment) Option {
	return func(c *Coordinator) {
		c.env = env.Clone()
	}
}

// WithLocationSource sets where Apply reads the current location from.
func WithLocationSource(source LocationSource) Option {
	return func(c *Coordinator) {
		c.locationSource = source
	}
}

// WithEngine replaces the default merge engine.
func WithEngine(engine *Engine) Option {
	return func(c *Coordinator) {
		if engine != nil {
			c.engine = engine
		}
	}
}

// WithLogger attaches a logger to the coordinator.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithClock overrides the time source used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLoadIDGenerator overrides how load identifiers are generated.
func WithLoadIDGenerator(next func() string) Option {
	return func(c *Coordinator) {
		if next != nil {
			c.newID = next
		}
	}
}

// Coordinator runs configuration loads and reports their progress to a
// Dispatcher as transition records.
type Coordinator struct {
	retriever      Retriever
	dispatcher     Dispatcher
	engine         *Engine
	env            Environment
	locationSource LocationSource
	logger         zerolog.Logger
	now            func() time.Time
	newID          func() string

	epoch atomic.Uint64
}

// NewCoordinator wires a retriever to a dispatcher.
func NewCoordinator(retriever Retriever, dispatcher Dispatcher, opts ...Option) (*Coordinator, error) {
	if retriever == nil {
		return nil, ErrNoRetriever
	}
	if dispatcher == nil {
		return nil, ErrNoDispatcher
	}
	c := &Coordinator{
		retriever:  retriever,
		dispatcher: dispatcher,
		engine:     defaultEngine,
		logger:     zerolog.Nop(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Environment returns a copy of the ambient surfaces.
func (c *Coordinator) Environment() Environment {
	return c.env.Clone()
}

// Pending tracks a load started by BeginLoad.
type Pending struct {
	Epoch  Epoch
	LoadID string

	done     chan struct{}
	record   Record
	accepted bool
}

// Done is closed once the completion record has been dispatched.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the load completes or ctx ends, and returns the
// completion record (LoadSucceeded or LoadFailed).
func (p *Pending) Wait(ctx context.Context) (Record, error) {
	select {
	case <-p.done:
		return p.record, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Accepted reports whether the dispatcher applied the completion record. It
// is false until Done is closed.
func (p *Pending) Accepted() bool {
	select {
	case <-p.done:
		return p.accepted
	default:
		return false
	}
}

// BeginLoad dispatches LoadStarted for loc and retrieves its configuration on
// a new goroutine. Exactly one completion record follows. A nil loc loads the
// configuration without applying overrides. Superseded loads are not
// cancelled; the dispatcher discards their completions by epoch.
func (c *Coordinator) BeginLoad(ctx context.Context, loc *Location) *Pending {
	pending := &Pending{
		Epoch:  c.nextEpoch(),
		LoadID: c.newID(),
		done:   make(chan struct{}),
	}

	c.logger.Debug().Uint64("epoch", uint64(pending.Epoch)).Str("load_id", pending.LoadID).
		Str("location", loc.String()).Msg("config load started")
	c.dispatcher.Dispatch(LoadStarted{
		Epoch:    pending.Epoch,
		LoadID:   pending.LoadID,
		Location: loc,
		At:       c.now(),
	})

	go c.complete(ctx, pending, loc)
	return pending
}

func (c *Coordinator) complete(ctx context.Context, pending *Pending, loc *Location) {
	defer close(pending.done)

	record := c.load(ctx, pending, loc)
	pending.record = record
	pending.accepted = c.dispatcher.Dispatch(record)
	if !pending.accepted {
		c.logger.Debug().Uint64("epoch", uint64(pending.Epoch)).Str("load_id", pending.LoadID).
			Msg("config load completion discarded")
	}
}

func (c *Coordinator) load(ctx context.Context, pending *Pending, loc *Location) (record Record) {
	defer func() {
		if r := recover(); r != nil {
			record = c.failed(pending, loc, OpRetrieve, fmt.Errorf("retriever panic: %v", r))
		}
	}()

	values, err := c.retriever.Retrieve(ctx, loc)
	if err != nil {
		return c.failed(pending, loc, OpRetrieve, err)
	}
	resolution := c.resolve(pending, loc, values)

	c.logger.Info().Uint64("epoch", uint64(pending.Epoch)).Str("load_id", pending.LoadID).
		Str("location", loc.String()).Int("overrides", len(resolution.Overrides)).
		Msg("config load succeeded")
	return LoadSucceeded{
		Epoch:      pending.Epoch,
		LoadID:     pending.LoadID,
		Resolution: resolution,
		At:         c.now(),
	}
}

func (c *Coordinator) failed(pending *Pending, loc *Location, op string, err error) LoadFailed {
	loadErr := newConfigLoadError(loc, op, err)
	c.logger.Warn().Err(loadErr).Uint64("epoch", uint64(pending.Epoch)).
		Str("load_id", pending.LoadID).Msg("config load failed")
	return LoadFailed{
		Epoch:    pending.Epoch,
		LoadID:   pending.LoadID,
		Err:      loadErr,
		Location: loc,
		At:       c.now(),
	}
}

// Apply resolves an already retrieved configuration against the current
// location and dispatches LoadStarted followed by LoadSucceeded.
func (c *Coordinator) Apply(cfg Values) Resolution {
	var loc *Location
	if c.locationSource != nil {
		loc = c.locationSource()
	}
	pending := &Pending{Epoch: c.nextEpoch(), LoadID: c.newID()}
	c.dispatcher.Dispatch(LoadStarted{
		Epoch:    pending.Epoch,
		LoadID:   pending.LoadID,
		Location: loc,
		At:       c.now(),
	})

	resolution := c.resolve(pending, loc, cfg)
	c.dispatcher.Dispatch(LoadSucceeded{
		Epoch:      pending.Epoch,
		LoadID:     pending.LoadID,
		Resolution: resolution,
		At:         c.now(),
	})
	return resolution.Clone()
}

// resolve merges the location's overrides into values and types the result.
// It cannot fail: a typing error is recorded on the Resolution.
func (c *Coordinator) resolve(pending *Pending, loc *Location, values Values) Resolution {
	merged := c.engine.Merge(MergeInput{
		Base:      values,
		Interface: c.env.Interface,
		Logging:   c.env.Logging,
		Location:  loc,
	})
	resolution := Resolution{
		Location:  loc,
		Values:    merged.Config,
		Interface: merged.Interface,
		Logging:   merged.Logging,
		Overrides: merged.Applied,
	}

	typed, err := DecodeConfig(loc, merged.Config)
	if err == nil {
		resolution.Config = typed
		return resolution
	}
	resolution.ConfigErr = err
	c.logger.Warn().Err(err).Uint64("epoch", uint64(pending.Epoch)).Str("load_id", pending.LoadID).
		Str("location", loc.String()).Msg("merged config has no typed view")

	if len(merged.Applied) > 0 {
		if base, baseErr := DecodeConfig(loc, values); baseErr == nil {
			resolution.Config = base
		}
	}
	return resolution
}

func (c *Coordinator) nextEpoch() Epoch {
	return Epoch(c.epoch.Add(1))
}
