package hparams

import (
	"errors"
	"fmt"
)

// Node is one entry of a Config graph. Build nodes with Param, Nest,
// NestConfig, Derive and Require.
type Node interface {
	Name() string
	Kind() CallKind
	bind(c *Config) (step, error)
}

// step is a node bound to its owning Config.
type step interface {
	name() string
	kind() CallKind
	run(rc *resolution) (any, Source, error)
}

// Param wraps a leaf call as a config node.
func Param(call Call) Node {
	return paramNode{call: call}
}

type paramNode struct {
	call Call
}

func (n paramNode) Name() string {
	if n.call == nil {
		return ""
	}
	return n.call.Name()
}

func (n paramNode) Kind() CallKind {
	if n.call == nil {
		return ""
	}
	return n.call.Kind()
}

func (n paramNode) bind(c *Config) (step, error) {
	if n.call == nil {
		return nil, configError(KindConfig, c.name, "param node has no call")
	}
	if n.call.Name() == "" {
		return nil, configError(n.call.Kind(), "", "name is required")
	}
	return paramStep{call: n.call}, nil
}

type paramStep struct {
	call Call
}

func (s paramStep) name() string   { return s.call.Name() }
func (s paramStep) kind() CallKind { return s.call.Kind() }

func (s paramStep) run(rc *resolution) (any, Source, error) {
	if sourced, ok := s.call.(sourcedCall); ok {
		return sourced.resolve(rc.request.Selections, rc.request.Overrides)
	}
	value, err := s.call.Execute(rc.request.Selections, rc.request.Overrides)
	return value, SourceUnknown, err
}

// NestOption sets the author-specified inputs of a nested node. Caller
// inputs addressed to the namespace are applied over them.
type NestOption func(*nestNode)

// NestSelections sets selections handed to the nested configuration.
func NestSelections(selections map[string]any) NestOption {
	return func(n *nestNode) {
		n.selections = copyMap(selections)
	}
}

// NestOverrides sets overrides handed to the nested configuration.
func NestOverrides(overrides map[string]any) NestOption {
	return func(n *nestNode) {
		n.overrides = copyMap(overrides)
	}
}

// NestFinalVars narrows the nested result when the caller requests no
// variables inside the namespace.
func NestFinalVars(vars ...string) NestOption {
	return func(n *nestNode) {
		n.finalVars = append([]string{}, vars...)
	}
}

// Nest binds a nested resolve function under name.
func Nest(name string, child ResolveFunc, opts ...NestOption) Node {
	n := &nestNode{nodeName: name, resolve: child}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// NestConfig binds a child Config under name. Unlike Nest with
// child.ResolveFunc(), the child's trace entries are kept under dotted paths.
func NestConfig(name string, child *Config, opts ...NestOption) Node {
	n := &nestNode{nodeName: name, child: child}
	if child != nil {
		n.resolve = child.ResolveFunc()
	}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

type nestNode struct {
	nodeName   string
	resolve    ResolveFunc
	child      *Config
	selections map[string]any
	overrides  map[string]any
	finalVars  []string
}

func (n *nestNode) Name() string   { return n.nodeName }
func (n *nestNode) Kind() CallKind { return KindPropagate }

func (n *nestNode) bind(c *Config) (step, error) {
	propagate, err := NewPropagate(n.nodeName)
	if err != nil {
		return nil, err
	}
	if n.resolve == nil {
		return nil, configError(KindPropagate, n.nodeName, "nested resolve function is required")
	}
	return &nestStep{node: n, propagate: propagate}, nil
}

type nestStep struct {
	node      *nestNode
	propagate *PropagateCall
}

func (s *nestStep) name() string   { return s.node.nodeName }
func (s *nestStep) kind() CallKind { return KindPropagate }

func (s *nestStep) run(rc *resolution) (any, Source, error) {
	nested, err := s.propagate.Scope(PropagateRequest{
		FinalVars:          s.node.finalVars,
		OriginalFinalVars:  rc.request.FinalVars,
		Selections:         s.node.selections,
		OriginalSelections: rc.request.Selections,
		Overrides:          s.node.overrides,
		OriginalOverrides:  rc.request.Overrides,
	})
	if err != nil {
		return nil, SourceNested, err
	}

	if s.node.child != nil {
		values, trace, err := s.node.child.resolve(rc.ctx, nested, rc.runID, false)
		if err != nil {
			return nil, SourceNested, qualify(s.node.nodeName, err)
		}
		rc.trace.addNested(s.node.nodeName, trace)
		return values, SourceNested, nil
	}

	values, err := s.node.resolve(nested)
	if err != nil {
		return nil, SourceNested, qualify(s.node.nodeName, err)
	}
	rc.trace.add(TraceEntry{Param: s.node.nodeName, Kind: KindPropagate, Source: SourceNested, Value: values})
	return values, SourceNested, nil
}

// qualify returns err with the namespace prefixed to its parameter so the
// caller sees the dotted path it would use to address it. The nested error is
// copied; the same error value may come back from every resolution.
func qualify(prefix string, err error) error {
	switch typed := err.(type) {
	case *ParamError:
		out := *typed
		out.Param = joinPath(prefix, typed.Param)
		return &out
	case *EvaluationError:
		out := *typed
		out.Param = joinPath(prefix, typed.Param)
		return &out
	}
	var pe *ParamError
	if errors.As(err, &pe) {
		return &ParamError{
			Param:  joinPath(prefix, pe.Param),
			Kind:   pe.Kind,
			Class:  pe.Class,
			Reason: "nested resolution failed",
			Err:    err,
		}
	}
	return err
}

func joinPath(prefix, name string) string {
	if name == "" {
		return prefix
	}
	return prefix + "." + name
}

// Derive computes name from the values resolved before it. An override for
// name replaces the computed value; selections are rejected.
func Derive(name, expression string) Node {
	return deriveNode{nodeName: name, expression: expression}
}

type deriveNode struct {
	nodeName   string
	expression string
}

func (n deriveNode) Name() string   { return n.nodeName }
func (n deriveNode) Kind() CallKind { return KindDerive }

func (n deriveNode) bind(c *Config) (step, error) {
	if n.nodeName == "" {
		return nil, configError(KindDerive, "", "name is required")
	}
	program, err := c.evaluator.Compile(n.expression)
	if err != nil {
		return nil, nodeEvaluationError(KindDerive, n.nodeName, evaluatorEngineName(c.evaluator), n.expression, err)
	}
	return deriveStep{node: n, program: program, engine: evaluatorEngineName(c.evaluator)}, nil
}

type deriveStep struct {
	node    deriveNode
	program CompiledRule
	engine  string
}

func (s deriveStep) name() string   { return s.node.nodeName }
func (s deriveStep) kind() CallKind { return KindDerive }

func (s deriveStep) run(rc *resolution) (any, Source, error) {
	if _, ok := rc.request.Selections[s.node.nodeName]; ok {
		return nil, SourceSelection, selectionsUnsupported(KindDerive, s.node.nodeName)
	}
	if override, ok := rc.request.Overrides[s.node.nodeName]; ok {
		return override, SourceOverride, nil
	}
	value, err := s.program.Evaluate(rc.evalContext())
	if err != nil {
		return nil, SourceDerived, nodeEvaluationError(KindDerive, s.node.nodeName, s.engine, s.node.expression, err)
	}
	return value, SourceDerived, nil
}

// Require adds a constraint checked after every node has resolved. A false
// result fails the resolution with message as an input error.
func Require(expression, message string) Node {
	return ruleNode{expression: expression, message: message}
}

type ruleNode struct {
	expression string
	message    string
}

func (n ruleNode) Name() string   { return n.expression }
func (n ruleNode) Kind() CallKind { return KindRule }

func (n ruleNode) bind(c *Config) (step, error) {
	program, err := c.evaluator.Compile(n.expression)
	if err != nil {
		return nil, nodeEvaluationError(KindRule, n.expression, evaluatorEngineName(c.evaluator), n.expression, err)
	}
	message := n.message
	if message == "" {
		message = fmt.Sprintf("constraint %q not satisfied", n.expression)
	}
	return ruleStep{expression: n.expression, message: message, program: program, engine: evaluatorEngineName(c.evaluator)}, nil
}

type ruleStep struct {
	expression string
	message    string
	program    CompiledRule
	engine     string
}

func (s ruleStep) name() string   { return s.expression }
func (s ruleStep) kind() CallKind { return KindRule }

func (s ruleStep) run(rc *resolution) (any, Source, error) {
	result, err := s.program.Evaluate(rc.evalContext())
	if err != nil {
		return nil, SourceDerived, nodeEvaluationError(KindRule, s.expression, s.engine, s.expression, err)
	}
	ok, isBool := result.(bool)
	if !isBool {
		return nil, SourceDerived, configError(KindRule, s.expression, "constraint must evaluate to a bool, got %T", result).withValue(result)
	}
	if !ok {
		return nil, SourceDerived, inputError(KindRule, s.expression, "%s", s.message)
	}
	return true, SourceDerived, nil
}

func (rc *resolution) evalContext() EvalContext {
	return EvalContext{Values: copyMap(rc.values), Scope: rc.config.name}
}
