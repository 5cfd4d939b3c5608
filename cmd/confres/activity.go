package main

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/goliatone/go-confres/pkg/activity"
	"github.com/goliatone/go-confres/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
)

// jsonSink writes each activity record as one JSON line.
type jsonSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func (s *jsonSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(record)
}

func newActivityEmitter(w io.Writer) *activity.Emitter {
	sink := &jsonSink{enc: json.NewEncoder(w)}
	return activity.NewEmitter(activity.Hooks{usersink.Hook{Sink: sink}}, activity.Config{Enabled: true})
}
