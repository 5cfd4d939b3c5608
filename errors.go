package confres

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRetriever is returned when a coordinator is built without a Retriever.
	ErrNoRetriever = errors.New("confres: retriever is required")
	// ErrNoDispatcher is returned when a coordinator is built without a Dispatcher.
	ErrNoDispatcher = errors.New("confres: dispatcher is required")
)

// OpRetrieve marks a failure of the retriever.
const OpRetrieve = "retrieve"

// ConfigLoadError reports a failed load. Merging and typing never fail a load,
// so Op is always OpRetrieve.
type ConfigLoadError struct {
	Location string
	Op       string
	Err      error
}

func (e *ConfigLoadError) Error() string {
	if e == nil {
		return "<nil>"
	}
	location := e.Location
	if location == "" {
		location = "<no location>"
	}
	return fmt.Sprintf("confres: %s config for %s: %v", e.Op, location, e.Err)
}

func (e *ConfigLoadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newConfigLoadError(loc *Location, op string, err error) *ConfigLoadError {
	return &ConfigLoadError{Location: loc.String(), Op: op, Err: err}
}
