package hparams

import (
	"errors"
	"fmt"
	"strings"
)

var errEmptyExpression = errors.New("expression must not be empty")

// EvaluationError reports a derive or rule expression that failed to compile
// or run. It is a configuration error: errors.Is(err, ErrConfiguration)
// holds.
type EvaluationError struct {
	Param  string
	Kind   CallKind
	Engine string
	Expr   string
	Scope  string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("hparams: ")
	if e.Kind != "" {
		b.WriteString(string(e.Kind))
		b.WriteByte(' ')
	}
	if e.Param != "" {
		fmt.Fprintf(&b, "%q: ", e.Param)
	}
	fmt.Fprintf(&b, "%s expression", e.Engine)
	if e.Expr != "" {
		fmt.Fprintf(&b, " %q", e.Expr)
	}
	if e.Scope != "" {
		fmt.Fprintf(&b, " in config %q", e.Scope)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Is matches ErrConfiguration.
func (e *EvaluationError) Is(target error) bool {
	return target == ErrConfiguration
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func evaluationError(engine, expr, scope string, err error) *EvaluationError {
	var existing *EvaluationError
	if errors.As(err, &existing) {
		out := *existing
		if out.Scope == "" {
			out.Scope = scope
		}
		return &out
	}
	return &EvaluationError{Engine: engine, Expr: expr, Scope: scope, Err: err}
}

// nodeEvaluationError attributes an evaluator failure to the node that owns
// the expression. The evaluator's error is copied, never modified.
func nodeEvaluationError(kind CallKind, param, engine, expr string, err error) error {
	out := evaluationError(engine, expr, "", err)
	out.Kind = kind
	out.Param = param
	if out.Expr == "" {
		out.Expr = expr
	}
	return out
}
