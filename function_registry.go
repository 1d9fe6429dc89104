package hparams

import (
	"sort"
	"sync"
	"unicode"
)

// Function is a custom callable exposed to derived expressions and rules.
type Function func(args ...any) (any, error)

// reservedFunctionNames are bound by every evaluator environment.
var reservedFunctionNames = map[string]bool{"scope": true, "call": true}

// FunctionRegistry holds the custom functions a Config exposes to its Derive
// and Require expressions. Names are case sensitive identifiers and share the
// expression namespace with the config's node names.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{functions: make(map[string]Function)}
}

// Register adds fn under name. Names must be identifiers, unique and not one
// of the reserved names scope or call.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	switch {
	case !isIdentifier(name):
		return configError(KindConfig, name, "function name must be an identifier")
	case reservedFunctionNames[name]:
		return configError(KindConfig, name, "function name is reserved")
	case fn == nil:
		return configError(KindConfig, name, "function is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	if _, exists := r.functions[name]; exists {
		return configError(KindConfig, name, "function already registered")
	}
	r.functions[name] = fn
	return nil
}

// Clone returns a copy that later registrations on r do not affect.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{functions: make(map[string]Function, len(r.functions))}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	fn := r.lookup(name)
	if fn == nil {
		return nil, configError(KindConfig, name, "function not registered")
	}
	return fn(args...)
}

// Names returns registered function names sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *FunctionRegistry) lookup(name string) Function {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.functions[name]
}

// shadows reports the first registered function named like a config node.
func (r *FunctionRegistry) shadows(nodes map[string]int) (string, bool) {
	for _, name := range r.Names() {
		if _, ok := nodes[name]; ok {
			return name, true
		}
	}
	return "", false
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}
