package state

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-confres"
	"github.com/goliatone/go-confres/pkg/activity"
)

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a logger; discarded records are logged at debug level.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithEmitter emits an activity event for every applied or discarded record.
func WithEmitter(emitter *activity.Emitter) Option {
	return func(s *Store) {
		s.emitter = emitter
	}
}

// WithActor stamps emitted activity events with the given identifiers.
func WithActor(actorID, tenantID string) Option {
	return func(s *Store) {
		s.actorID = actorID
		s.tenantID = tenantID
	}
}

// WithClock overrides the time source used for State.UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store keeps the current State and applies transition records to it. It
// implements confres.Dispatcher and is safe for concurrent use.
type Store struct {
	// dispatchMu serializes Dispatch so subscribers observe transitions in
	// the order they were applied.
	dispatchMu sync.Mutex
	mu         sync.RWMutex
	state      State

	subscribers map[int]func(State)
	nextSub     int

	logger   zerolog.Logger
	emitter  *activity.Emitter
	actorID  string
	tenantID string
	now      func() time.Time
}

var _ confres.Dispatcher = (*Store)(nil)

// NewStore returns a store in PhaseIdle.
func NewStore(opts ...Option) *Store {
	s := &Store{
		subscribers: map[int]func(State){},
		logger:      zerolog.Nop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers fn to receive the state after every applied record.
// fn must not call Dispatch. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

// Dispatch applies record and reports whether it changed the state.
func (s *Store) Dispatch(record confres.Record) bool {
	if record == nil {
		return false
	}
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	next, reason, ok := s.transition(s.state, record)
	if !ok {
		current := s.state
		s.mu.Unlock()
		s.discard(current, record, reason)
		return false
	}
	next.UpdatedAt = s.now()
	s.state = next
	subscribers := make([]func(State), 0, len(s.subscribers))
	for id := 0; id < s.nextSub; id++ {
		if fn, ok := s.subscribers[id]; ok {
			subscribers = append(subscribers, fn)
		}
	}
	s.mu.Unlock()

	s.emit(record, next, "")
	for _, fn := range subscribers {
		fn(next.clone())
	}
	return true
}

func (s *Store) transition(current State, record confres.Record) (State, string, bool) {
	switch r := record.(type) {
	case confres.LoadStarted:
		if r.Epoch != 0 && r.Epoch <= current.Epoch {
			return current, "stale epoch", false
		}
		next := State{
			Phase:      PhaseLoading,
			Epoch:      current.Epoch,
			LoadID:     r.LoadID,
			Location:   r.Location,
			Resolution: current.Resolution,
		}
		if r.Epoch != 0 {
			next.Epoch = r.Epoch
		}
		return next, "", true

	case confres.LoadSucceeded:
		if reason, ok := acceptsCompletion(current, r.Epoch); !ok {
			return current, reason, false
		}
		resolution := r.Resolution.Clone()
		return State{
			Phase:      PhaseResolved,
			Epoch:      current.Epoch,
			LoadID:     r.LoadID,
			Location:   resolution.Location,
			Resolution: &resolution,
		}, "", true

	case confres.LoadFailed:
		if reason, ok := acceptsCompletion(current, r.Epoch); !ok {
			return current, reason, false
		}
		return State{
			Phase:      PhaseFailed,
			Epoch:      current.Epoch,
			LoadID:     r.LoadID,
			Location:   r.Location,
			Resolution: current.Resolution,
			Err:        r.Err,
		}, "", true

	default:
		return current, "unknown record", false
	}
}

func acceptsCompletion(current State, epoch confres.Epoch) (string, bool) {
	if current.Phase != PhaseLoading {
		return "not loading", false
	}
	if epoch != 0 && epoch != current.Epoch {
		return "stale epoch", false
	}
	return "", true
}

func (s *Store) discard(current State, record confres.Record, reason string) {
	s.logger.Debug().
		Str("kind", string(record.Kind())).
		Uint64("record_epoch", uint64(record.RecordEpoch())).
		Uint64("epoch", uint64(current.Epoch)).
		Str("phase", current.Phase.String()).
		Str("reason", reason).
		Msg("discarding config record")
	s.emit(record, current, reason)
}

func (s *Store) emit(record confres.Record, state State, discardReason string) {
	if !s.emitter.Enabled() {
		return
	}

	event := activity.Event{
		ActorID:    s.actorID,
		TenantID:   s.tenantID,
		Epoch:      uint64(record.RecordEpoch()),
		OccurredAt: state.UpdatedAt,
	}

	build := activity.BuildLoadStartedEvent
	switch r := record.(type) {
	case confres.LoadStarted:
		event.LoadID = r.LoadID
		event.Location = r.Location.String()
		event.Room = r.Location.Room()
	case confres.LoadSucceeded:
		event.LoadID = r.LoadID
		event.Location = r.Resolution.Location.String()
		event.Room = r.Resolution.Location.Room()
		for _, override := range r.Resolution.Overrides {
			event.Overrides = append(event.Overrides, override.Key)
		}
		if r.Resolution.ConfigErr != nil {
			event.Metadata = map[string]any{"config_error": r.Resolution.ConfigErr.Error()}
		}
		build = activity.BuildLoadSucceededEvent
	case confres.LoadFailed:
		event.LoadID = r.LoadID
		event.Location = r.Location.String()
		event.Room = r.Location.Room()
		if r.Err != nil {
			event.Error = r.Err.Error()
		}
		build = activity.BuildLoadFailedEvent
	default:
		return
	}

	if discardReason != "" {
		event.Reason = discardReason
		event.Metadata = map[string]any{"kind": string(record.Kind())}
		event.OccurredAt = s.now()
		build = activity.BuildLoadDiscardedEvent
	}
	event = build(event)

	if err := s.emitter.Emit(context.Background(), event); err != nil {
		s.logger.Warn().Err(err).Str("verb", event.Verb).Msg("activity hook failed")
	}
}
