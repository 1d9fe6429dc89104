package hparams

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Request is what a configuration's resolve function receives.
type Request struct {
	FinalVars  []string
	Selections map[string]any
	Overrides  map[string]any
}

// ResolveFunc is a nested configuration's resolution entry point.
type ResolveFunc func(Request) (map[string]any, error)

// PropagateRequest carries the current level's inputs and the outermost
// caller's inputs into a PropagateCall.
type PropagateRequest struct {
	FinalVars          []string
	OriginalFinalVars  []string
	Selections         map[string]any
	OriginalSelections map[string]any
	Overrides          map[string]any
	OriginalOverrides  map[string]any
}

// PropagateCall scopes inputs to a nested configuration named by its
// namespace. Inputs address the scope either with dotted keys ("name.param")
// or with a mapping stored under "name".
type PropagateCall struct {
	baseCall
	prefix string
}

// NewPropagate builds a propagator for the given namespace.
func NewPropagate(name string) (*PropagateCall, error) {
	base, err := newBaseCall(KindPropagate, name)
	if err != nil {
		return nil, err
	}
	return &PropagateCall{baseCall: base, prefix: name + "."}, nil
}

// Execute scopes req to the namespace and returns resolve's result verbatim.
func (c *PropagateCall) Execute(resolve ResolveFunc, req PropagateRequest) (map[string]any, error) {
	if resolve == nil {
		return nil, configError(c.kind, c.name, "nested resolve function is required")
	}
	nested, err := c.Scope(req)
	if err != nil {
		return nil, err
	}
	return resolve(nested)
}

// Scope computes the nested request without resolving it. Values extracted
// from the original maps are applied over the current maps. Every returned
// map and slice is freshly allocated.
func (c *PropagateCall) Scope(req PropagateRequest) (Request, error) {
	var finalVars []string
	if len(req.OriginalFinalVars) > 0 {
		finalVars = c.FinalVars(req.OriginalFinalVars)
	} else {
		finalVars = append([]string{}, req.FinalVars...)
	}

	selections, err := c.overlay(req.Selections, req.OriginalSelections)
	if err != nil {
		return Request{}, err
	}
	overrides, err := c.overlay(req.Overrides, req.OriginalOverrides)
	if err != nil {
		return Request{}, err
	}
	return Request{FinalVars: finalVars, Selections: selections, Overrides: overrides}, nil
}

// FinalVars keeps the entries addressed to this namespace, prefix stripped.
func (c *PropagateCall) FinalVars(vars []string) []string {
	out := []string{}
	for _, name := range vars {
		if strings.HasPrefix(name, c.prefix) {
			out = append(out, name[len(c.prefix):])
		}
	}
	return out
}

func (c *PropagateCall) overlay(current, original map[string]any) (map[string]any, error) {
	extracted, err := c.Extract(original)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(current)+len(extracted))
	for key, value := range current {
		out[key] = value
	}
	for key, value := range extracted {
		out[key] = value
	}
	return out, nil
}

// Extract collects the entries of config addressed to this namespace: the
// keys of a mapping stored under the namespace name, then every dotted key
// with the prefix stripped. A key present in both with different values is a
// configuration error. Non-mapping values under the bare name are ignored.
func (c *PropagateCall) Extract(config map[string]any) (map[string]any, error) {
	out := map[string]any{}
	if len(config) == 0 {
		return out, nil
	}

	dotted := map[string]any{}
	for key, value := range config {
		if strings.HasPrefix(key, c.prefix) {
			dotted[key[len(c.prefix):]] = value
		}
	}
	direct, _ := mappingOf(config[c.name])

	if err := c.checkConflicts(direct, dotted); err != nil {
		return nil, err
	}
	for key, value := range direct {
		out[key] = value
	}
	for key, value := range dotted {
		out[key] = value
	}
	return out, nil
}

func (c *PropagateCall) checkConflicts(direct, dotted map[string]any) error {
	var keys []string
	for key, value := range dotted {
		if existing, ok := direct[key]; ok && !valuesEqual(existing, value) {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	conflicts := make([]string, len(keys))
	values := make(map[string][2]any, len(keys))
	for i, key := range keys {
		conflicts[i] = fmt.Sprintf("%s: %v (mapping) vs %v (dotted)", key, direct[key], dotted[key])
		values[key] = [2]any{direct[key], dotted[key]}
	}
	return configError(c.kind, c.name, "conflicting values in nested configuration for %q: %s",
		c.name, strings.Join(conflicts, "; ")).withValue(values)
}

// valuesEqual compares parameter values the way option keys are compared:
// integer widths and integral floats are equal when numerically equal.
// Mappings and sequences compare element-wise.
func valuesEqual(a, b any) bool {
	if ca, ok := canonicalKey(a); ok {
		cb, ok := canonicalKey(b)
		return ok && ca == cb
	}
	if ma, ok := mappingOf(a); ok {
		mb, ok := mappingOf(b)
		if !ok || len(ma) != len(mb) {
			return false
		}
		for key, value := range ma {
			other, ok := mb[key]
			if !ok || !valuesEqual(value, other) {
				return false
			}
		}
		return true
	}
	if sa, ok := sequenceOf(a); ok {
		sb, ok := sequenceOf(b)
		if !ok || len(sa) != len(sb) {
			return false
		}
		for i := range sa {
			if !valuesEqual(sa[i], sb[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}
