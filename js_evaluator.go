//go:build js_eval

package hparams

import (
	"github.com/dop251/goja"
)

type jsEvaluator struct {
	engineConfig
}

// NewJSEvaluator constructs an Evaluator backed by goja. Each evaluation runs
// in a fresh runtime so concurrent resolutions never share VM state.
func NewJSEvaluator(opts ...EngineOption) Evaluator {
	return &jsEvaluator{engineConfig: applyEngineOptions(opts)}
}

func (e *jsEvaluator) Evaluate(ctx EvalContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *jsEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, evaluationError("js", expression, "", errEmptyExpression)
	}
	if cached, ok := e.cached("js:" + expression); ok {
		if program, ok := cached.(*goja.Program); ok {
			return jsRule{evaluator: e, expression: expression, program: program}, nil
		}
	}
	program, err := goja.Compile("", "(function(){ return ("+expression+"); })()", false)
	if err != nil {
		return nil, evaluationError("js", expression, "", err)
	}
	e.store("js:"+expression, program)
	return jsRule{evaluator: e, expression: expression, program: program}, nil
}

type jsRule struct {
	evaluator  *jsEvaluator
	expression string
	program    *goja.Program
}

func (r jsRule) Evaluate(ctx EvalContext) (any, error) {
	vm := goja.New()
	if err := r.evaluator.bind(vm, ctx); err != nil {
		return nil, evaluationError("js", r.expression, ctx.scopeLabel(), err)
	}
	value, err := vm.RunProgram(r.program)
	if err != nil {
		return nil, evaluationError("js", r.expression, ctx.scopeLabel(), err)
	}
	return value.Export(), nil
}

func (e *jsEvaluator) bind(vm *goja.Runtime, ctx EvalContext) error {
	for name, value := range ctx.Values {
		if err := vm.Set(name, value); err != nil {
			return err
		}
	}
	if err := vm.Set("scope", ctx.scopeLabel()); err != nil {
		return err
	}
	for _, name := range e.functions.Names() {
		fn := e.functions.lookup(name)
		if err := vm.Set(name, func(args ...any) (any, error) { return fn(args...) }); err != nil {
			return err
		}
	}
	return nil
}

func jsEvaluatorAvailable() bool {
	return true
}

func jsEngineName(e Evaluator) string {
	if _, ok := e.(*jsEvaluator); ok {
		return "js"
	}
	return ""
}
