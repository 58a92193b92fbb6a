package visibility

// Evaluator decides whether a section or field that depends on another item
// should be shown. dependsOn is the id of the dependee and condition the rule
// attached to the dependent item.
type Evaluator interface {
	Eval(dependsOn, condition string, ctx Context) (bool, error)
}

// Context provides inputs to an Evaluator. Value holds the dependee's current
// value, Values the whole form data keyed by field id, and Extras anything the
// caller wants to expose (feature flags, roles).
type Context struct {
	Value  any
	Values map[string]any
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(dependsOn, condition string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(dependsOn, condition string, ctx Context) (bool, error) {
	return fn(dependsOn, condition, ctx)
}

// Always reports every item as visible.
var Always Evaluator = EvaluatorFunc(func(string, string, Context) (bool, error) {
	return true, nil
})
