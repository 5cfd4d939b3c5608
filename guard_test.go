package confres

import (
	"errors"
	"testing"
)

func guardContext(raw string) GuardContext {
	return GuardContext{Location: MustParseLocation(raw), Key: "config.x", Surface: SurfaceConfig}
}

func TestGuardEvaluators(t *testing.T) {
	evaluators := map[string]struct {
		evaluator Evaluator
		match     string
		miss      string
	}{
		"expr": {
			evaluator: NewExprEvaluator(ExprWithProgramCache(NewProgramCache())),
			match:     `location.room startsWith "test-" && surface == "config"`,
			miss:      `location.host endsWith ".internal"`,
		},
		"cel": {
			evaluator: NewCELEvaluator(CELWithProgramCache(NewProgramCache())),
			match:     `location.room.startsWith("test-") && surface == "config"`,
			miss:      `location.host.endsWith(".internal")`,
		},
	}

	for name, tc := range evaluators {
		t.Run(name, func(t *testing.T) {
			ctx := guardContext("https://meet.example.com/test-room")
			for i := 0; i < 2; i++ {
				ok, err := tc.evaluator.Evaluate(ctx, tc.match)
				if err != nil || !ok {
					t.Fatalf("expected match, got %v %v", ok, err)
				}
			}
			ok, err := tc.evaluator.Evaluate(ctx, tc.miss)
			if err != nil || ok {
				t.Fatalf("expected miss, got %v %v", ok, err)
			}
		})
	}
}

func TestGuardErrors(t *testing.T) {
	evaluators := map[string]Evaluator{
		"expr": NewExprEvaluator(),
		"cel":  NewCELEvaluator(),
	}
	for name, evaluator := range evaluators {
		t.Run(name, func(t *testing.T) {
			ctx := guardContext("https://meet.example.com/room")
			for _, expression := range []string{"", "location.room +", `key`} {
				_, err := evaluator.Evaluate(ctx, expression)
				var guardErr *GuardError
				if !errors.As(err, &guardErr) {
					t.Fatalf("expected GuardError for %q, got %v", expression, err)
				}
				if guardErr.Engine != name {
					t.Fatalf("expected engine %q, got %q", name, guardErr.Engine)
				}
			}
		})
	}
}

func TestGuardErrorFormatting(t *testing.T) {
	inner := errors.New("boom")
	err := wrapGuardError("expr", " a == b ", inner)
	if err.Error() != `confres: expr guard expr="a == b": boom` {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Fatalf("expected unwrap to inner error")
	}
	if wrapGuardError("expr", "x", nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
	var nilErr *GuardError
	if nilErr.Error() != "<nil>" || nilErr.Unwrap() != nil {
		t.Fatalf("nil GuardError should be safe")
	}
	if describeExpression("") != "expr=<empty>" {
		t.Fatalf("unexpected empty description")
	}
}

func TestProgramCache(t *testing.T) {
	cache := NewProgramCache()
	if _, ok := cache.Get("missing"); ok {
		t.Fatalf("expected miss")
	}
	cache.Set("k", 1)
	if value, ok := cache.Get("k"); !ok || value != 1 {
		t.Fatalf("expected cached value, got %v %v", value, ok)
	}
}
