// internal/engine/ruleeval/evaluator.go
package ruleeval

import (
	"fmt"

	"github.com/jborgese/benefit-finder-sub003/internal/models"
)

// Context is the flat evaluation context: profile fields plus derived
// values, keyed by variable name. Missing keys resolve to nil.
type Context map[string]interface{}

// Result is the non-panicking outcome of evaluating one expression
// tree. A malformed tree yields Success=false with a diagnostic; a
// well-formed tree whose outcome is unknowable yields Success=true with
// a nil Value.
type Result struct {
	Success    bool        `json:"success"`
	Value      interface{} `json:"result"`
	Diagnostic string      `json:"error,omitempty"`
}

// MultiplyResolver intercepts multiplication nodes. When it recognizes
// a "household size times base amount" shape it returns the substituted
// threshold and true; otherwise false and the evaluator multiplies
// naively.
type MultiplyResolver interface {
	ResolveHouseholdMultiplication(node *models.Expression, ctx Context, rule *models.Rule) (float64, bool)
}

const maxDepth = 64

// Evaluator evaluates declarative rule expression trees. It holds no
// per-evaluation state and is safe for concurrent use.
type Evaluator struct {
	multiply MultiplyResolver
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithMultiplyResolver installs a threshold resolver for household
// multiplication nodes.
func WithMultiplyResolver(r MultiplyResolver) Option {
	return func(e *Evaluator) { e.multiply = r }
}

func New(opts ...Option) *Evaluator {
	e := &Evaluator{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs the expression against the context. The rule argument
// is optional; it is only consulted by the multiply resolver for
// free-text threshold inference.
func (e *Evaluator) Evaluate(expr *models.Expression, ctx Context, rule *models.Rule) Result {
	value, err := e.eval(expr, ctx, rule, 0)
	if err != nil {
		return Result{Success: false, Diagnostic: err.Error()}
	}
	return Result{Success: true, Value: value}
}

func (e *Evaluator) eval(expr *models.Expression, ctx Context, rule *models.Rule, depth int) (interface{}, error) {
	if expr == nil {
		return nil, fmt.Errorf("nil expression node")
	}
	if depth > maxDepth {
		return nil, fmt.Errorf("expression exceeds max depth %d", maxDepth)
	}

	if expr.IsVar() {
		// Missing variables resolve to nil, never an error.
		return normalize(ctx[expr.Var]), nil
	}
	if expr.IsLiteral() {
		return normalize(expr.Value), nil
	}

	switch expr.Op {
	case "and":
		return e.evalAnd(expr, ctx, rule, depth)
	case "or":
		return e.evalOr(expr, ctx, rule, depth)
	case "not":
		return e.evalNot(expr, ctx, rule, depth)
	case "if":
		return e.evalIf(expr, ctx, rule, depth)
	case "==", "!=", ">", ">=", "<", "<=":
		return e.evalComparison(expr, ctx, rule, depth)
	case "+", "-", "*", "/":
		return e.evalArithmetic(expr, ctx, rule, depth)
	default:
		return nil, fmt.Errorf("unsupported operator %q", expr.Op)
	}
}

// evalAnd applies three-valued conjunction: any false wins, otherwise
// any unknown makes the result unknown.
func (e *Evaluator) evalAnd(expr *models.Expression, ctx Context, rule *models.Rule, depth int) (interface{}, error) {
	if len(expr.Args) == 0 {
		return nil, fmt.Errorf("operator \"and\" requires at least one argument")
	}
	unknown := false
	for _, arg := range expr.Args {
		v, err := e.eval(arg, ctx, rule, depth+1)
		if err != nil {
			return nil, err
		}
		switch b := v.(type) {
		case nil:
			unknown = true
		case bool:
			if !b {
				return false, nil
			}
		default:
			return nil, fmt.Errorf("operator \"and\" expects boolean arguments, got %T", v)
		}
	}
	if unknown {
		return nil, nil
	}
	return true, nil
}

func (e *Evaluator) evalOr(expr *models.Expression, ctx Context, rule *models.Rule, depth int) (interface{}, error) {
	if len(expr.Args) == 0 {
		return nil, fmt.Errorf("operator \"or\" requires at least one argument")
	}
	unknown := false
	for _, arg := range expr.Args {
		v, err := e.eval(arg, ctx, rule, depth+1)
		if err != nil {
			return nil, err
		}
		switch b := v.(type) {
		case nil:
			unknown = true
		case bool:
			if b {
				return true, nil
			}
		default:
			return nil, fmt.Errorf("operator \"or\" expects boolean arguments, got %T", v)
		}
	}
	if unknown {
		return nil, nil
	}
	return false, nil
}

func (e *Evaluator) evalNot(expr *models.Expression, ctx Context, rule *models.Rule, depth int) (interface{}, error) {
	if len(expr.Args) != 1 {
		return nil, fmt.Errorf("operator \"not\" requires exactly one argument, got %d", len(expr.Args))
	}
	v, err := e.eval(expr.Args[0], ctx, rule, depth+1)
	if err != nil {
		return nil, err
	}
	switch b := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return !b, nil
	default:
		return nil, fmt.Errorf("operator \"not\" expects a boolean argument, got %T", v)
	}
}

func (e *Evaluator) evalIf(expr *models.Expression, ctx Context, rule *models.Rule, depth int) (interface{}, error) {
	if len(expr.Args) != 3 {
		return nil, fmt.Errorf("operator \"if\" requires condition, then, else, got %d arguments", len(expr.Args))
	}
	cond, err := e.eval(expr.Args[0], ctx, rule, depth+1)
	if err != nil {
		return nil, err
	}
	switch b := cond.(type) {
	case nil:
		return nil, nil
	case bool:
		if b {
			return e.eval(expr.Args[1], ctx, rule, depth+1)
		}
		return e.eval(expr.Args[2], ctx, rule, depth+1)
	default:
		return nil, fmt.Errorf("operator \"if\" expects a boolean condition, got %T", cond)
	}
}

// evalComparison propagates unknown: a comparison against a nil operand
// yields nil, distinct from false.
func (e *Evaluator) evalComparison(expr *models.Expression, ctx Context, rule *models.Rule, depth int) (interface{}, error) {
	left, right, err := e.evalPair(expr, ctx, rule, depth)
	if err != nil {
		return nil, err
	}
	if left == nil || right == nil {
		return nil, nil
	}

	ln, lok := toNumber(left)
	rn, rok := toNumber(right)
	if lok && rok {
		return compareNumbers(expr.Op, ln, rn)
	}

	switch expr.Op {
	case "==", "!=":
		ls, lsOK := left.(string)
		rs, rsOK := right.(string)
		if lsOK && rsOK {
			return (ls == rs) == (expr.Op == "=="), nil
		}
		lb, lbOK := left.(bool)
		rb, rbOK := right.(bool)
		if lbOK && rbOK {
			return (lb == rb) == (expr.Op == "=="), nil
		}
	}
	return nil, fmt.Errorf("operator %q cannot compare %T with %T", expr.Op, left, right)
}

func (e *Evaluator) evalArithmetic(expr *models.Expression, ctx Context, rule *models.Rule, depth int) (interface{}, error) {
	if expr.Op == "*" && e.multiply != nil {
		if v, ok := e.multiply.ResolveHouseholdMultiplication(expr, ctx, rule); ok {
			return v, nil
		}
	}

	left, right, err := e.evalPair(expr, ctx, rule, depth)
	if err != nil {
		return nil, err
	}
	if left == nil || right == nil {
		return nil, nil
	}
	ln, lok := toNumber(left)
	rn, rok := toNumber(right)
	if !lok || !rok {
		return nil, fmt.Errorf("operator %q expects numeric arguments, got %T and %T", expr.Op, left, right)
	}

	switch expr.Op {
	case "+":
		return ln + rn, nil
	case "-":
		return ln - rn, nil
	case "*":
		return ln * rn, nil
	case "/":
		if rn == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return ln / rn, nil
	}
	return nil, fmt.Errorf("unsupported arithmetic operator %q", expr.Op)
}

func (e *Evaluator) evalPair(expr *models.Expression, ctx Context, rule *models.Rule, depth int) (interface{}, interface{}, error) {
	if len(expr.Args) != 2 {
		return nil, nil, fmt.Errorf("operator %q requires exactly two arguments, got %d", expr.Op, len(expr.Args))
	}
	left, err := e.eval(expr.Args[0], ctx, rule, depth+1)
	if err != nil {
		return nil, nil, err
	}
	right, err := e.eval(expr.Args[1], ctx, rule, depth+1)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func compareNumbers(op string, l, r float64) (interface{}, error) {
	switch op {
	case "==":
		return l == r, nil
	case "!=":
		return l != r, nil
	case ">":
		return l > r, nil
	case ">=":
		return l >= r, nil
	case "<":
		return l < r, nil
	case "<=":
		return l <= r, nil
	}
	return nil, fmt.Errorf("unsupported comparison operator %q", op)
}

// normalize maps the integer types JSON decoding and callers can
// produce onto float64 so comparisons see one numeric type.
func normalize(v interface{}) interface{} {
	n, ok := toNumber(v)
	if ok {
		return n
	}
	return v
}

func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
