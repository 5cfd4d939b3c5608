package confres

import (
	"fmt"

	celgo "github.com/google/cel-go/cel"
)

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

type celEvaluator struct {
	cache ProgramCache
}

// NewCELEvaluator constructs an Evaluator backed by cel-go. The environment is
// the same as the expr evaluator, e.g. `location.room.startsWith("test-")`.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Evaluate(ctx GuardContext, expression string) (bool, error) {
	if expression == "" {
		return false, wrapGuardError("cel", expression, fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return false, err
	}
	out, _, err := program.Eval(ctx.environment())
	if err != nil {
		return false, wrapGuardError("cel", expression, err)
	}
	return guardResult("cel", expression, out.Value())
}

func (e *celEvaluator) loadOrCompile(expression string) (celgo.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(celCacheKey(expression)); ok {
			if program, ok := cached.(celgo.Program); ok {
				return program, nil
			}
		}
	}

	env, err := celgo.NewEnv(
		celgo.Variable("location", celgo.MapType(celgo.StringType, celgo.StringType)),
		celgo.Variable("key", celgo.StringType),
		celgo.Variable("surface", celgo.StringType),
	)
	if err != nil {
		return nil, wrapGuardError("cel", expression, err)
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, wrapGuardError("cel", expression, issues.Err())
	}
	if !ast.OutputType().IsExactType(celgo.BoolType) {
		return nil, wrapGuardError("cel", expression, fmt.Errorf("%w, got %s", errGuardNotBool, ast.OutputType()))
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, wrapGuardError("cel", expression, err)
	}
	if e.cache != nil {
		e.cache.Set(celCacheKey(expression), program)
	}
	return program, nil
}

func celCacheKey(expression string) string {
	return "cel:" + expression
}
