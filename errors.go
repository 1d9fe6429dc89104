package hparams

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration classifies failures caused by the parameter graph itself
	// (names, options, defaults, bounds, disabled overrides, nested conflicts).
	// These are fixed by the configuration author, never by retrying.
	ErrConfiguration = errors.New("hparams: configuration error")
	// ErrInvalidInput classifies failures caused by the selections or overrides
	// handed to a single resolution. Callers may retry with corrected inputs.
	ErrInvalidInput = errors.New("hparams: invalid input")
)

// ParamError reports a failure tied to a named parameter. Use errors.Is with
// ErrConfiguration or ErrInvalidInput to branch on the error class.
type ParamError struct {
	Param  string
	Kind   CallKind
	Class  error
	Reason string
	Value  any
	Valid  []any
	Err    error
}

func (e *ParamError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("hparams: ")
	if e.Kind != "" {
		b.WriteString(string(e.Kind))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%q: %s", e.Param, e.Reason)
	if len(e.Valid) > 0 {
		fmt.Fprintf(&b, " (valid: %v)", e.Valid)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both the class sentinel and the underlying cause.
func (e *ParamError) Unwrap() []error {
	if e == nil {
		return nil
	}
	out := make([]error, 0, 2)
	if e.Class != nil {
		out = append(out, e.Class)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

func configError(kind CallKind, name, format string, args ...any) *ParamError {
	return &ParamError{
		Param:  name,
		Kind:   kind,
		Class:  ErrConfiguration,
		Reason: fmt.Sprintf(format, args...),
	}
}

func inputError(kind CallKind, name, format string, args ...any) *ParamError {
	return &ParamError{
		Param:  name,
		Kind:   kind,
		Class:  ErrInvalidInput,
		Reason: fmt.Sprintf(format, args...),
	}
}

func (e *ParamError) withValue(value any) *ParamError {
	e.Value = value
	return e
}

func (e *ParamError) withValid(valid []any) *ParamError {
	e.Valid = valid
	return e
}

func (e *ParamError) wrap(err error) *ParamError {
	e.Err = err
	return e
}

// IsConfigurationError reports whether err was caused by the parameter graph.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsInputError reports whether err was caused by resolution inputs.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
