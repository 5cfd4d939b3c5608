package confres

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprEvaluatorOption configures an expr evaluator instance.
type ExprEvaluatorOption func(*exprEvaluator)

// ExprWithProgramCache wires a ProgramCache into the expr evaluator.
func ExprWithProgramCache(cache ProgramCache) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		e.cache = cache
	}
}

// exprEvaluator runs guards with github.com/expr-lang/expr.
type exprEvaluator struct {
	cache ProgramCache
}

// NewExprEvaluator constructs an Evaluator backed by expr-lang/expr. Guards
// see `location` (scheme, host, path, room), `key` and `surface`, e.g.
// `location.host endsWith ".example.com"`.
func NewExprEvaluator(opts ...ExprEvaluatorOption) Evaluator {
	e := &exprEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *exprEvaluator) Evaluate(ctx GuardContext, expression string) (bool, error) {
	if expression == "" {
		return false, wrapGuardError("expr", expression, fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return false, err
	}
	result, err := exprlang.Run(program, ctx.environment())
	if err != nil {
		return false, wrapGuardError("expr", expression, err)
	}
	return guardResult("expr", expression, result)
}

func (e *exprEvaluator) loadOrCompile(expression string) (*exprvm.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(exprCacheKey(expression)); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	program, err := exprlang.Compile(expression,
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
		exprlang.AsBool(),
	)
	if err != nil {
		return nil, wrapGuardError("expr", expression, err)
	}
	if e.cache != nil {
		e.cache.Set(exprCacheKey(expression), program)
	}
	return program, nil
}

func exprCacheKey(expression string) string {
	return "expr:" + expression
}
