package state

import (
	"time"

	"github.com/goliatone/go-confres"
)

// Phase is the lifecycle position of the store.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseResolved
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseResolved:
		return "resolved"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a snapshot of the store. Resolution is the last successful result
// and survives later failures; Err is set only in PhaseFailed.
type State struct {
	Phase      Phase
	Epoch      confres.Epoch
	LoadID     string
	Location   *confres.Location
	Resolution *confres.Resolution
	Err        error
	UpdatedAt  time.Time
}

// Loading reports whether a load is in progress.
func (s State) Loading() bool {
	return s.Phase == PhaseLoading
}

func (s State) clone() State {
	out := s
	if s.Resolution != nil {
		resolution := s.Resolution.Clone()
		out.Resolution = &resolution
	}
	return out
}
