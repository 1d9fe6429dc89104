package hparams

import (
	"reflect"
	"strings"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

type celEvaluator struct {
	engineConfig
}

// NewCELEvaluator constructs an Evaluator backed by cel-go. Every resolved
// parameter is declared as a dyn variable; registry functions are reached
// through call("name", [args...]).
func NewCELEvaluator(opts ...EngineOption) Evaluator {
	return &celEvaluator{engineConfig: applyEngineOptions(opts)}
}

func (e *celEvaluator) Evaluate(ctx EvalContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

// Compile only parses: declarations depend on the values resolved when the
// rule runs, so type checking happens per variable set in Evaluate.
func (e *celEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, evaluationError("cel", expression, "", errEmptyExpression)
	}
	env, err := e.env(nil)
	if err != nil {
		return nil, evaluationError("cel", expression, "", err)
	}
	if _, issues := env.Parse(expression); issues != nil && issues.Err() != nil {
		return nil, evaluationError("cel", expression, "", issues.Err())
	}
	return celRule{evaluator: e, expression: expression}, nil
}

type celRule struct {
	evaluator  *celEvaluator
	expression string
}

func (r celRule) Evaluate(ctx EvalContext) (any, error) {
	program, err := r.evaluator.program(r.expression, ctx.sortedNames())
	if err != nil {
		return nil, evaluationError("cel", r.expression, ctx.scopeLabel(), err)
	}
	activation := make(map[string]any, len(ctx.Values)+1)
	for name, value := range ctx.Values {
		activation[name] = value
	}
	activation["scope"] = ctx.scopeLabel()
	out, _, err := program.Eval(activation)
	if err != nil {
		return nil, evaluationError("cel", r.expression, ctx.scopeLabel(), err)
	}
	return out.Value(), nil
}

func (e *celEvaluator) program(expression string, names []string) (celgo.Program, error) {
	key := "cel:" + strings.Join(names, ",") + ":" + expression
	if cached, ok := e.cached(key); ok {
		if program, ok := cached.(celgo.Program); ok {
			return program, nil
		}
	}
	env, err := e.env(names)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	e.store(key, program)
	return program, nil
}

func (e *celEvaluator) env(names []string) (*celgo.Env, error) {
	opts := []celgo.EnvOption{celgo.Variable("scope", celgo.StringType)}
	if len(e.functions.Names()) > 0 {
		opts = append(opts, celgo.Function("call",
			celgo.Overload("call_string_list",
				[]*celgo.Type{celgo.StringType, celgo.ListType(celgo.DynType)},
				celgo.DynType,
				celgo.BinaryBinding(e.call),
			),
		))
	}
	for _, name := range names {
		opts = append(opts, celgo.Variable(name, celgo.DynType))
	}
	return celgo.NewEnv(opts...)
}

func (e *celEvaluator) call(nameVal, argsVal ref.Val) ref.Val {
	name, ok := nameVal.Value().(string)
	if !ok {
		return types.NewErr("call: function name must be a string")
	}
	native, err := argsVal.ConvertToNative(reflect.TypeOf([]any{}))
	if err != nil {
		return types.NewErr("call %s: %v", name, err)
	}
	args, _ := native.([]any)
	for i, arg := range args {
		if val, ok := arg.(ref.Val); ok {
			args[i] = val.Value()
		}
	}
	result, err := e.functions.Call(name, args...)
	if err != nil {
		return types.NewErr("call %s: %v", name, err)
	}
	if result == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(result)
}
