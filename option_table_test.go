package hparams

import (
	"errors"
	"reflect"
	"testing"
)

func TestNormalizeOptionsSequenceIsIdentity(t *testing.T) {
	table, err := NormalizeOptions("opt", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(table.Keys(), []any{"a", "b", "c"}) {
		t.Fatalf("expected keys in declaration order, got %v", table.Keys())
	}
	for _, key := range []string{"a", "b", "c"} {
		value, ok := table.Lookup(key)
		if !ok || value != key {
			t.Fatalf("expected identity mapping for %q, got %v (%v)", key, value, ok)
		}
	}
}

func TestNormalizeOptionsMapSortsKeys(t *testing.T) {
	table, err := NormalizeOptions("opt", map[any]any{"z": 3, 2: "two", true: "yes", 1.5: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []any{true, 1.5, 2, "z"}
	if !reflect.DeepEqual(table.Keys(), want) {
		t.Fatalf("expected keys %v, got %v", want, table.Keys())
	}
}

func TestNormalizeOptionsIsIdempotent(t *testing.T) {
	first, err := NormalizeOptions("opt", map[string]int{"x": 1, "y": 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := NormalizeOptions("opt", first)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.Equal(first) {
		t.Fatalf("expected normalize to be idempotent, got %v vs %v", second.Map(), first.Map())
	}
	third, err := NormalizeOptions("opt", first.Map())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !third.Equal(first) {
		t.Fatalf("expected map round trip to be stable, got %v", third.Map())
	}
}

func TestNormalizeOptionsCanonicalKeys(t *testing.T) {
	table, err := NormalizeOptions("n", []any{1, "1", true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cases := []struct {
		key  any
		want any
		ok   bool
	}{
		{key: int64(1), want: 1, ok: true},
		{key: 1.0, want: 1, ok: true},
		{key: uint8(1), want: 1, ok: true},
		{key: "1", want: "1", ok: true},
		{key: true, want: true, ok: true},
		{key: 1.5, ok: false},
		{key: false, ok: false},
	}
	for _, tc := range cases {
		got, ok := table.Lookup(tc.key)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("lookup %#v: expected %v (%v), got %v (%v)", tc.key, tc.want, tc.ok, got, ok)
		}
	}
}

func TestNormalizeOptionsErrors(t *testing.T) {
	cases := []struct {
		name    string
		options any
	}{
		{name: "nil", options: nil},
		{name: "empty sequence", options: []string{}},
		{name: "empty map", options: map[string]int{}},
		{name: "composite key", options: []any{"a", []int{1}}},
		{name: "nil key", options: []any{nil}},
		{name: "scalar", options: 42},
		{name: "duplicate canonical key", options: duplicateCanonicalKeys()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NormalizeOptions("opt", tc.options)
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
			var pe *ParamError
			if !errors.As(err, &pe) || pe.Param != "opt" {
				t.Fatalf("expected error naming opt, got %#v", err)
			}
		})
	}
}

func TestNormalizeOptionsListsInvalidKeys(t *testing.T) {
	_, err := NormalizeOptions("opt", []any{"a", struct{}{}, []int{1}})
	var pe *ParamError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParamError, got %v", err)
	}
	invalid, ok := pe.Value.([]any)
	if !ok || len(invalid) != 2 {
		t.Fatalf("expected both invalid items reported, got %#v", pe.Value)
	}
}

func duplicateCanonicalKeys() map[any]any {
	options := map[any]any{}
	options[int32(1)] = "one"
	options[float64(1)] = "uno"
	return options
}
