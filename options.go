package hparams

import "github.com/goliatone/go-hparams/pkg/activity"

// Option configures a Config.
type Option func(*configOptions)

type configOptions struct {
	evaluator       Evaluator
	programCache    ProgramCache
	functions       *FunctionRegistry
	functionErrs    []error
	logger          Logger
	activityHooks   activity.Hooks
	activityChannel string
}

func applyOptions(opts []Option) configOptions {
	cfg := configOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithEvaluator sets the engine used by Derive and Require nodes. The default
// is the expr evaluator.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *configOptions) {
		cfg.evaluator = e
	}
}

// WithProgramCache shares compiled programs with the default evaluator.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *configOptions) {
		cfg.programCache = cache
	}
}

// WithFunctionRegistry exposes custom functions to the default evaluator.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *configOptions) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for the default evaluator.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *configOptions) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		if err := cfg.functions.Register(name, fn); err != nil {
			cfg.functionErrs = append(cfg.functionErrs, err)
		}
	}
}

// WithLogger attaches a resolution logger.
func WithLogger(logger Logger) Option {
	return func(cfg *configOptions) {
		cfg.logger = logger
	}
}

// WithActivityHooks emits one activity event per top-level resolution.
// Hooks are cloned and nil entries dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := activity.CloneHooks(hooks)
	return func(cfg *configOptions) {
		cfg.activityHooks = normalized
	}
}

// WithActivityChannel overrides the channel stamped on activity events.
func WithActivityChannel(channel string) Option {
	return func(cfg *configOptions) {
		cfg.activityChannel = channel
	}
}

func (cfg configOptions) resolveEvaluator() Evaluator {
	if cfg.evaluator != nil {
		return cfg.evaluator
	}
	return NewExprEvaluator(EngineCache(cfg.programCache), EngineFunctions(cfg.functions))
}

func (cfg configOptions) resolveLogger() Logger {
	if cfg.logger != nil {
		return cfg.logger
	}
	return noopLogger{}
}
