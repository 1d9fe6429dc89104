package hparams

import (
	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// exprEvaluator is the default engine. Resolved values are bound as
// top-level variables; registry functions are compiled in by name.
type exprEvaluator struct {
	engineConfig
	compileOpts []exprlang.Option
}

// NewExprEvaluator constructs an Evaluator backed by expr-lang/expr.
func NewExprEvaluator(opts ...EngineOption) Evaluator {
	e := &exprEvaluator{engineConfig: applyEngineOptions(opts)}
	e.compileOpts = []exprlang.Option{exprlang.AllowUndefinedVariables()}
	for _, name := range e.functions.Names() {
		fn := e.functions.lookup(name)
		e.compileOpts = append(e.compileOpts, exprlang.Function(name, func(args ...any) (any, error) {
			return fn(args...)
		}))
	}
	return e
}

func (e *exprEvaluator) Evaluate(ctx EvalContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *exprEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, evaluationError("expr", expression, "", errEmptyExpression)
	}
	if cached, ok := e.cached("expr:" + expression); ok {
		if program, ok := cached.(*exprvm.Program); ok {
			return exprRule{program: program, expression: expression}, nil
		}
	}
	program, err := exprlang.Compile(expression, e.compileOpts...)
	if err != nil {
		return nil, evaluationError("expr", expression, "", err)
	}
	e.store("expr:"+expression, program)
	return exprRule{program: program, expression: expression}, nil
}

type exprRule struct {
	program    *exprvm.Program
	expression string
}

func (r exprRule) Evaluate(ctx EvalContext) (any, error) {
	env := make(map[string]any, len(ctx.Values)+1)
	for name, value := range ctx.Values {
		env[name] = value
	}
	env["scope"] = ctx.scopeLabel()
	result, err := exprvm.Run(r.program, env)
	if err != nil {
		return nil, evaluationError("expr", r.expression, ctx.scopeLabel(), err)
	}
	return result, nil
}
