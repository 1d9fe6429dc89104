package hparams

import (
	"errors"
	"reflect"
	"testing"
)

func mustPropagate(t *testing.T, name string) *PropagateCall {
	t.Helper()
	call, err := NewPropagate(name)
	if err != nil {
		t.Fatalf("NewPropagate(%q): %v", name, err)
	}
	return call
}

func TestExtractMergesDottedAndMapping(t *testing.T) {
	call := mustPropagate(t, "model")

	cases := []struct {
		name   string
		config map[string]any
		want   map[string]any
	}{
		{
			name:   "disjoint union",
			config: map[string]any{"model": map[string]any{"size": "small"}, "model.depth": 3, "other": 1},
			want:   map[string]any{"size": "small", "depth": 3},
		},
		{
			name:   "equal overlap",
			config: map[string]any{"model": map[string]any{"size": "small"}, "model.size": "small"},
			want:   map[string]any{"size": "small"},
		},
		{
			name:   "non-mapping direct value ignored",
			config: map[string]any{"model": "resnet", "model.depth": 3},
			want:   map[string]any{"depth": 3},
		},
		{
			name:   "prefix must include dot",
			config: map[string]any{"modelx.depth": 3, "model.a.b": 1},
			want:   map[string]any{"a.b": 1},
		},
		{
			name:   "empty",
			config: nil,
			want:   map[string]any{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := call.Extract(tc.config)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestExtractConflict(t *testing.T) {
	call := mustPropagate(t, "model")
	_, err := call.Extract(map[string]any{
		"model":       map[string]any{"size": "small", "depth": 2},
		"model.size":  "large",
		"model.depth": 2,
	})
	if !IsConfigurationError(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	var pe *ParamError
	if !errors.As(err, &pe) || pe.Param != "model" {
		t.Fatalf("expected error naming model, got %v", err)
	}
	conflicts, ok := pe.Value.(map[string][2]any)
	if !ok || len(conflicts) != 1 || conflicts["size"] != [2]any{"small", "large"} {
		t.Fatalf("expected size conflict with both values, got %#v", pe.Value)
	}
}

func TestExtractNumericEquality(t *testing.T) {
	call := mustPropagate(t, "model")
	cases := []struct {
		name     string
		config   map[string]any
		conflict bool
	}{
		{name: "int64 vs int", config: map[string]any{"model": map[string]any{"depth": int64(4)}, "model.depth": 4}},
		{name: "float64 vs int", config: map[string]any{"model": map[string]any{"lr": float64(1)}, "model.lr": 1}},
		{name: "int32 vs uint8", config: map[string]any{"model": map[string]any{"depth": int32(8)}, "model.depth": uint8(8)}},
		{name: "nested sequence", config: map[string]any{"model": map[string]any{"layers": []any{int64(64), 32.0}}, "model.layers": []int{64, 32}}},
		{name: "different numbers", config: map[string]any{"model": map[string]any{"depth": int64(4)}, "model.depth": 5}, conflict: true},
		{name: "bool vs int", config: map[string]any{"model": map[string]any{"flag": true}, "model.flag": 1}, conflict: true},
		{name: "fraction vs int", config: map[string]any{"model": map[string]any{"lr": 1.5}, "model.lr": 1}, conflict: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := call.Extract(tc.config)
			if tc.conflict != IsConfigurationError(err) {
				t.Fatalf("expected conflict=%v, got %v", tc.conflict, err)
			}
		})
	}
}

func TestScopeFinalVars(t *testing.T) {
	call := mustPropagate(t, "outer")

	scoped, err := call.Scope(PropagateRequest{
		FinalVars:         []string{"local"},
		OriginalFinalVars: []string{"outer.a", "other.b", "outer.inner.c"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(scoped.FinalVars, []string{"a", "inner.c"}) {
		t.Fatalf("expected prefixed vars stripped, got %v", scoped.FinalVars)
	}

	scoped, err = call.Scope(PropagateRequest{FinalVars: []string{"local"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(scoped.FinalVars, []string{"local"}) {
		t.Fatalf("expected current vars passed through, got %v", scoped.FinalVars)
	}
}

func TestScopeOriginalWinsOverCurrent(t *testing.T) {
	call := mustPropagate(t, "outer")
	current := map[string]any{"x": 1, "y": 2}
	original := map[string]any{"outer.x": 10, "outer": map[string]any{"z": 30}}

	scoped, err := call.Scope(PropagateRequest{
		Selections:         current,
		OriginalSelections: original,
		Overrides:          map[string]any{"o": true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"x": 10, "y": 2, "z": 30}
	if !reflect.DeepEqual(scoped.Selections, want) {
		t.Fatalf("expected %v, got %v", want, scoped.Selections)
	}
	if !reflect.DeepEqual(scoped.Overrides, map[string]any{"o": true}) {
		t.Fatalf("expected overrides carried, got %v", scoped.Overrides)
	}

	scoped.Selections["x"] = 99
	if current["x"] != 1 || original["outer.x"] != 10 {
		t.Fatalf("expected caller maps untouched, got %v %v", current, original)
	}
}

func TestPropagateExecute(t *testing.T) {
	call := mustPropagate(t, "outer")

	if _, err := call.Execute(nil, PropagateRequest{}); !IsConfigurationError(err) {
		t.Fatalf("expected configuration error for nil resolve, got %v", err)
	}

	want := map[string]any{"flag": true}
	var seen Request
	got, err := call.Execute(func(req Request) (map[string]any, error) {
		seen = req
		return want, nil
	}, PropagateRequest{OriginalSelections: map[string]any{"outer.flag": true}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected result verbatim, got %v", got)
	}
	if seen.Selections["flag"] != true {
		t.Fatalf("expected scoped selections, got %v", seen.Selections)
	}

	sentinel := errors.New("boom")
	_, err = call.Execute(func(Request) (map[string]any, error) { return nil, sentinel }, PropagateRequest{})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected nested error returned, got %v", err)
	}
}

func TestNestedScopeUnwrapsEachLevel(t *testing.T) {
	outer := mustPropagate(t, "outer")
	inner := mustPropagate(t, "inner")
	flag := mustSelect(t, "flag", []bool{true, false}, WithDefault(false))

	innerResolve := func(req Request) (map[string]any, error) {
		if _, ok := req.Selections["inner.flag"]; ok {
			t.Fatalf("expected innermost level to see plain keys, got %v", req.Selections)
		}
		value, err := flag.Execute(req.Selections, nil)
		if err != nil {
			return nil, err
		}
		return map[string]any{"flag": value}, nil
	}
	outerResolve := func(req Request) (map[string]any, error) {
		if req.Selections["inner.flag"] != true {
			t.Fatalf("expected outer extraction to yield inner.flag, got %v", req.Selections)
		}
		nested, err := inner.Execute(innerResolve, PropagateRequest{Selections: map[string]any{}, OriginalSelections: req.Selections})
		if err != nil {
			return nil, err
		}
		return map[string]any{"inner": nested}, nil
	}

	got, err := outer.Execute(outerResolve, PropagateRequest{OriginalSelections: map[string]any{"outer.inner.flag": true}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"inner": map[string]any{"flag": true}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
