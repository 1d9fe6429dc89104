package hparams

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-hparams/pkg/activity"
	"github.com/google/uuid"
)

// Config is a named, ordered graph of parameter nodes and the resolution
// entry point nested configurations delegate to. A Config is immutable after
// NewConfig and safe for concurrent resolutions.
type Config struct {
	name      string
	steps     []step
	rules     []step
	index     map[string]int
	evaluator Evaluator
	logger    Logger
	emitter   *activity.Emitter
}

// NewConfig binds nodes into a Config. Node names must be unique within the
// config. Expressions are compiled here so syntax errors fail fast.
func NewConfig(name string, nodes []Node, opts ...Option) (*Config, error) {
	if name == "" {
		return nil, configError(KindConfig, name, "config name is required")
	}
	cfg := applyOptions(opts)
	if len(cfg.functionErrs) > 0 {
		return nil, configError(KindConfig, name, "invalid custom functions").wrap(errors.Join(cfg.functionErrs...))
	}
	c := &Config{
		name:      name,
		index:     make(map[string]int, len(nodes)),
		evaluator: cfg.resolveEvaluator(),
		logger:    cfg.resolveLogger(),
	}
	if len(cfg.activityHooks) > 0 {
		c.emitter = activity.NewEmitter(cfg.activityHooks, activity.Config{
			Enabled: true,
			Channel: cfg.activityChannel,
		})
	}

	for i, node := range nodes {
		if node == nil {
			return nil, configError(KindConfig, name, "node %d is nil", i)
		}
		bound, err := node.bind(c)
		if err != nil {
			return nil, err
		}
		if bound.kind() == KindRule {
			c.rules = append(c.rules, bound)
			continue
		}
		if _, exists := c.index[bound.name()]; exists {
			return nil, configError(bound.kind(), bound.name(), "duplicate node name in config %q", name)
		}
		c.index[bound.name()] = len(c.steps)
		c.steps = append(c.steps, bound)
	}
	if fn, ok := cfg.functions.shadows(c.index); ok {
		return nil, configError(KindConfig, fn, "custom function shadows a node of config %q", name)
	}
	return c, nil
}

// MustConfig is NewConfig that panics on error, for package-level graphs.
func MustConfig(name string, nodes []Node, opts ...Option) *Config {
	c, err := NewConfig(name, nodes, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the config name.
func (c *Config) Name() string { return c.name }

// Params returns the node names in declaration order.
func (c *Config) Params() []string {
	out := make([]string, len(c.steps))
	for i, s := range c.steps {
		out[i] = s.name()
	}
	return out
}

// Resolve runs every node against req and returns name → value, narrowed to
// req.FinalVars when set. req maps are never modified.
func (c *Config) Resolve(req Request) (map[string]any, error) {
	return c.ResolveContext(context.Background(), req)
}

// ResolveContext is Resolve with a context that carries the activity actor.
// Resolution itself never blocks.
func (c *Config) ResolveContext(ctx context.Context, req Request) (map[string]any, error) {
	values, _, err := c.resolve(ctx, req, uuid.NewString(), true)
	return values, err
}

// ResolveTraced is Resolve plus the provenance of every resolved node.
func (c *Config) ResolveTraced(ctx context.Context, req Request) (map[string]any, Trace, error) {
	return c.resolve(ctx, req, uuid.NewString(), true)
}

// ResolveFunc adapts the config for use as a nested configuration.
func (c *Config) ResolveFunc() ResolveFunc {
	return func(req Request) (map[string]any, error) {
		values, _, err := c.resolve(context.Background(), req, uuid.NewString(), false)
		return values, err
	}
}

type resolution struct {
	ctx     context.Context
	config  *Config
	runID   string
	request Request
	values  map[string]any
	trace   *Trace
}

func (c *Config) resolve(ctx context.Context, req Request, runID string, emit bool) (map[string]any, Trace, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	trace := Trace{Config: c.name, RunID: runID}
	rc := &resolution{
		ctx:    ctx,
		config: c,
		runID:  runID,
		request: Request{
			FinalVars:  append([]string{}, req.FinalVars...),
			Selections: copyMap(req.Selections),
			Overrides:  copyMap(req.Overrides),
		},
		values: make(map[string]any, len(c.steps)),
		trace:  &trace,
	}

	values, err := c.run(rc)
	c.logger.LogResolution(ResolutionEvent{
		Config:   c.name,
		RunID:    runID,
		Kind:     KindConfig,
		Duration: time.Since(start),
		Err:      err,
	})
	if emit {
		c.emitActivity(ctx, rc, time.Since(start), err)
	}
	if err != nil {
		return nil, trace, err
	}
	return values, trace, nil
}

func (c *Config) run(rc *resolution) (map[string]any, error) {
	if err := c.checkFinalVars(rc.request.FinalVars); err != nil {
		return nil, err
	}
	for _, s := range c.steps {
		start := time.Now()
		value, source, err := s.run(rc)
		c.logger.LogResolution(ResolutionEvent{
			Config:   c.name,
			RunID:    rc.runID,
			Param:    s.name(),
			Kind:     s.kind(),
			Source:   source,
			Duration: time.Since(start),
			Err:      err,
		})
		if err != nil {
			return nil, err
		}
		rc.values[s.name()] = value
		if s.kind() != KindPropagate {
			rc.trace.add(TraceEntry{Param: s.name(), Kind: s.kind(), Source: source, Value: value})
		}
	}
	for _, rule := range c.rules {
		if _, _, err := rule.run(rc); err != nil {
			return nil, err
		}
	}
	return c.selectFinal(rc.values, rc.request.FinalVars), nil
}

// checkFinalVars requires every requested variable to address a node; a
// dotted entry addresses the node named by its first segment.
func (c *Config) checkFinalVars(finalVars []string) error {
	for _, name := range finalVars {
		head, _, _ := strings.Cut(name, ".")
		if _, ok := c.index[head]; !ok {
			valid := make([]any, 0, len(c.steps))
			for _, param := range c.Params() {
				valid = append(valid, param)
			}
			return inputError(KindConfig, name, "unknown final variable in config %q", c.name).withValid(valid)
		}
	}
	return nil
}

func (c *Config) selectFinal(values map[string]any, finalVars []string) map[string]any {
	if len(finalVars) == 0 {
		return values
	}
	out := make(map[string]any, len(finalVars))
	for _, name := range finalVars {
		head, _, _ := strings.Cut(name, ".")
		out[head] = values[head]
	}
	return out
}

func (c *Config) emitActivity(ctx context.Context, rc *resolution, duration time.Duration, err error) {
	if !c.emitter.Enabled() {
		return
	}
	sources := make(map[string]string, len(rc.trace.Entries))
	for param, source := range rc.trace.Sources() {
		sources[param] = string(source)
	}
	actorID, tenantID := activity.ActorFromContext(ctx)
	event := activity.BuildResolutionEvent(activity.ResolutionInput{
		ActorID:   actorID,
		TenantID:  tenantID,
		RunID:     rc.runID,
		Config:    c.name,
		FinalVars: rc.request.FinalVars,
		Sources:   sources,
		Err:       err,
		Duration:  duration,
	})
	if emitErr := c.emitter.Emit(ctx, event); emitErr != nil {
		c.logger.LogResolution(ResolutionEvent{
			Config: c.name,
			RunID:  rc.runID,
			Kind:   KindConfig,
			Err:    emitErr,
		})
	}
}

func copyMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}
