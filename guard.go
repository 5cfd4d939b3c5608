package confres

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// GuardContext carries the inputs a route guard is evaluated against.
type GuardContext struct {
	Location *Location
	Key      string
	Surface  Surface
}

func (ctx GuardContext) environment() map[string]any {
	return map[string]any{
		"location": ctx.Location.binding(),
		"key":      ctx.Key,
		"surface":  ctx.Surface.String(),
	}
}

// Evaluator decides whether a guarded route applies.
type Evaluator interface {
	Evaluate(ctx GuardContext, expr string) (bool, error)
}

// ProgramCache stores compiled guard programs keyed by expression.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// NewProgramCache returns a ProgramCache safe for concurrent use.
func NewProgramCache() ProgramCache {
	return &programCache{}
}

type programCache struct {
	programs sync.Map
}

func (c *programCache) Get(key string) (any, bool) {
	return c.programs.Load(key)
}

func (c *programCache) Set(key string, value any) {
	c.programs.Store(key, value)
}

// GuardError captures evaluator metadata alongside the originating error.
type GuardError struct {
	Engine string
	Expr   string
	Err    error
}

func (e *GuardError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("confres: %s guard %s: %v", e.Engine, describeExpression(e.Expr), e.Err)
}

func (e *GuardError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

var errGuardNotBool = errors.New("guard must evaluate to a bool")

func wrapGuardError(engine, expr string, err error) error {
	if err == nil {
		return nil
	}

	var guardErr *GuardError
	if errors.As(err, &guardErr) {
		if guardErr.Engine == "" {
			guardErr.Engine = engine
		}
		if guardErr.Expr == "" {
			guardErr.Expr = expr
		}
		return guardErr
	}
	return &GuardError{Engine: engine, Expr: strings.TrimSpace(expr), Err: err}
}

func guardResult(engine, expr string, value any) (bool, error) {
	result, ok := value.(bool)
	if !ok {
		return false, wrapGuardError(engine, expr, fmt.Errorf("%w, got %T", errGuardNotBool, value))
	}
	return result, nil
}
