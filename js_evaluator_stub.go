//go:build !js_eval

package hparams

// NewJSEvaluator is unavailable without the js_eval build tag and returns nil.
func NewJSEvaluator(...EngineOption) Evaluator {
	return nil
}

func jsEvaluatorAvailable() bool {
	return false
}

func jsEngineName(Evaluator) string {
	return ""
}
