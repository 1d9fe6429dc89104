package hparams

import (
	"math"
	"reflect"
)

// CallKind labels a parameter variant. It is fixed at construction and used in
// error messages, logs, traces and descriptors.
type CallKind string

const (
	KindSelect      CallKind = "select"
	KindMultiSelect CallKind = "multi_select"
	KindTextInput   CallKind = "text_input"
	KindMultiText   CallKind = "multi_text"
	KindBoolInput   CallKind = "bool_input"
	KindMultiBool   CallKind = "multi_bool"
	KindNumberInput CallKind = "number_input"
	KindMultiNumber CallKind = "multi_number"
	KindIntInput    CallKind = "int_input"
	KindMultiInt    CallKind = "multi_int"
	KindPropagate   CallKind = "propagate"
	KindDerive      CallKind = "derive"
	KindRule        CallKind = "rule"
	KindConfig      CallKind = "config"
)

// Source records which input produced a resolved value.
type Source string

const (
	SourceUnknown   Source = "unknown"
	SourceOverride  Source = "override"
	SourceSelection Source = "selection"
	SourceDefault   Source = "default"
	SourceDerived   Source = "derived"
	SourceNested    Source = "nested"
)

// Call is a named parameter that resolves to one value per execution.
// Execute must not mutate selections or overrides and keeps no state between
// executions.
type Call interface {
	Name() string
	Kind() CallKind
	Execute(selections, overrides map[string]any) (any, error)
}

// sourcedCall is implemented by the built-in calls so Config can trace where
// each value came from.
type sourcedCall interface {
	Call
	resolve(selections, overrides map[string]any) (any, Source, error)
}

type baseCall struct {
	name string
	kind CallKind
}

func newBaseCall(kind CallKind, name string) (baseCall, error) {
	if name == "" {
		return baseCall{}, configError(kind, name, "name is required")
	}
	return baseCall{name: name, kind: kind}, nil
}

// Name returns the parameter name.
func (c baseCall) Name() string { return c.name }

// Kind returns the variant label.
func (c baseCall) Kind() CallKind { return c.kind }

// sequenceOf reports whether value is a slice or array and returns its
// elements as a fresh []any. Strings are scalars.
func sequenceOf(value any) ([]any, bool) {
	switch typed := value.(type) {
	case nil:
		return nil, false
	case []any:
		out := make([]any, len(typed))
		copy(out, typed)
		return out, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// mappingOf reports whether value is a map keyed by strings and returns a
// fresh map[string]any view of it.
func mappingOf(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case nil:
		return nil, false
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = item
		}
		return out, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// numberOf converts integer and float kinds to float64 for bounds checks.
func numberOf(value any) (float64, bool) {
	if value == nil {
		return 0, false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
