package hparams

import (
	"fmt"
	"sort"
)

// EvalContext is the environment an expression sees: the parameter values
// resolved so far and the name of the configuration evaluating it.
type EvalContext struct {
	Values map[string]any
	Scope  string
}

func (ctx EvalContext) scopeLabel() string {
	if ctx.Scope == "" {
		return "unknown"
	}
	return ctx.Scope
}

func (ctx EvalContext) sortedNames() []string {
	names := make([]string, 0, len(ctx.Values))
	for name := range ctx.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Evaluator executes expressions for derived parameters and rules.
type Evaluator interface {
	Evaluate(ctx EvalContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule is a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx EvalContext) (any, error)
}

// EngineOption configures any of the built-in evaluators.
type EngineOption func(*engineConfig)

type engineConfig struct {
	cache     ProgramCache
	functions *FunctionRegistry
}

// EngineCache shares compiled programs between evaluations and configs.
func EngineCache(cache ProgramCache) EngineOption {
	return func(cfg *engineConfig) {
		cfg.cache = cache
	}
}

// EngineFunctions exposes registry functions to expressions. expr and JS
// call them by name; CEL calls them through call("name", [args]).
func EngineFunctions(registry *FunctionRegistry) EngineOption {
	return func(cfg *engineConfig) {
		cfg.functions = registry.Clone()
	}
}

func applyEngineOptions(opts []EngineOption) engineConfig {
	cfg := engineConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (cfg engineConfig) cached(key string) (any, bool) {
	if cfg.cache == nil {
		return nil, false
	}
	return cfg.cache.Get(key)
}

func (cfg engineConfig) store(key string, program any) {
	if cfg.cache != nil {
		cfg.cache.Set(key, program)
	}
}

func evaluatorEngineName(e Evaluator) string {
	switch e.(type) {
	case nil:
		return "unknown"
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	default:
		if name := jsEngineName(e); name != "" {
			return name
		}
		return fmt.Sprintf("custom(%T)", e)
	}
}
