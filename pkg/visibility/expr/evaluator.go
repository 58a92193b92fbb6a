package expr

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

// Evaluator evaluates rule strings against the dependee's value.
//
// Rules reference values by name and compare them with literals:
//
//	value                          truthiness of the dependee
//	!value                         negation
//	value == "yes", value != 'US'  equality; a checkbox selection equals a
//	                               string when it contains it
//	value >= "2024-01-01"          ordering; dates compare chronologically
//	value > 3                      numeric ordering
//	value in ["US", "IN"]          membership
//	a && b, a || b, (a)            composition
//
// `value` reads visibility.Context.Value, falling back to the dependee entry
// of Context.Values. `values.<id>` reaches other fields and `extras.<key>`
// the caller supplied extras. A bare name is looked up in Values.
type Evaluator struct{}

// New returns an Evaluator. It is stateless and safe for concurrent use.
func New() *Evaluator { return &Evaluator{} }

var _ visibility.Evaluator = (*Evaluator)(nil)

// Eval reports whether condition holds. A blank condition is always true.
func (e *Evaluator) Eval(dependsOn, condition string, ctx visibility.Context) (bool, error) {
	if ctx.Value == nil && dependsOn != "" {
		ctx.Value = ctx.Values[dependsOn]
	}
	root, err := parse(condition)
	if err != nil {
		return false, err
	}
	if root == nil {
		return true, nil
	}
	return root.eval(scope{ctx: ctx})
}

type scope struct {
	ctx visibility.Context
}

func (s scope) resolve(ref string) (any, bool) {
	lower := strings.ToLower(ref)
	switch {
	case lower == "value":
		return s.ctx.Value, s.ctx.Value != nil
	case strings.HasPrefix(lower, "extras."):
		return lookupPath(s.ctx.Extras, ref[len("extras."):])
	case strings.HasPrefix(lower, "values."):
		return lookupPath(s.ctx.Values, ref[len("values."):])
	default:
		return lookupPath(s.ctx.Values, ref)
	}
}

// lookupPath prefers an exact key, then walks nested maps split on dots.
func lookupPath(values map[string]any, path string) (any, bool) {
	if len(values) == 0 || path == "" {
		return nil, false
	}
	if v, ok := values[path]; ok {
		return v, true
	}
	var current any = values
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = m[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

func (n logical) eval(s scope) (bool, error) {
	left, err := n.left.eval(s)
	if err != nil {
		return false, err
	}
	if n.op == tokOr && left {
		return true, nil
	}
	if n.op == tokAnd && !left {
		return false, nil
	}
	return n.right.eval(s)
}

func (n negation) eval(s scope) (bool, error) {
	ok, err := n.inner.eval(s)
	return !ok, err
}

func (n presence) eval(s scope) (bool, error) {
	got, _ := s.resolve(n.ref)
	return truthy(got), nil
}

func (n comparison) eval(s scope) (bool, error) {
	got, _ := s.resolve(n.ref)
	return match(got, n.op, n.want)
}

func (n membership) eval(s scope) (bool, error) {
	got, _ := s.resolve(n.ref)
	for _, want := range n.set {
		ok, err := match(got, tokEq, want)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

func match(got any, op tokenKind, want operand) (bool, error) {
	switch want.kind {
	case tokNull:
		return holds(op, boolCmp(got == nil)), nil
	case tokTrue, tokFalse:
		b, _ := coerceBool(got)
		return holds(op, boolCmp(b == (want.kind == tokTrue))), nil
	case tokNumber:
		w, err := strconv.ParseFloat(want.text, 64)
		if err != nil {
			return false, fmt.Errorf("visibility/expr: invalid number %q", want.text)
		}
		g, ok := coerceNumber(got)
		if !ok {
			// Missing or non-numeric values only satisfy !=.
			return op == tokNeq, nil
		}
		return holds(op, compareFloat(g, w)), nil
	default:
		return matchString(got, op, want.text)
	}
}

func matchString(got any, op tokenKind, want string) (bool, error) {
	switch v := got.(type) {
	case []string:
		if isOrdering(op) {
			return false, fmt.Errorf("visibility/expr: a selection cannot be compared with %q", want)
		}
		return holds(op, boolCmp(slices.Contains(v, want))), nil
	case time.Time:
		if !isOrdering(op) {
			break
		}
		w, err := model.ParseDate(want)
		if err != nil {
			return false, fmt.Errorf("visibility/expr: %w", err)
		}
		return holds(op, v.Compare(w)), nil
	}

	text := coerceString(got)
	if isOrdering(op) {
		g, gerr := strconv.ParseFloat(strings.TrimSpace(text), 64)
		w, werr := strconv.ParseFloat(strings.TrimSpace(want), 64)
		if gerr == nil && werr == nil {
			return holds(op, compareFloat(g, w)), nil
		}
	}
	return holds(op, strings.Compare(text, want)), nil
}

// holds applies op to a three way comparison result.
func holds(op tokenKind, cmp int) bool {
	switch op {
	case tokEq:
		return cmp == 0
	case tokNeq:
		return cmp != 0
	case tokLt:
		return cmp < 0
	case tokLte:
		return cmp <= 0
	case tokGt:
		return cmp > 0
	case tokGte:
		return cmp >= 0
	}
	return false
}

// boolCmp maps an equality outcome onto holds' three way convention.
func boolCmp(equal bool) int {
	if equal {
		return 0
	}
	return 1
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case []string:
		return len(v) > 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	case time.Time:
		return !v.IsZero()
	case model.FileRef:
		return v.Name != ""
	}
	if n, ok := coerceNumber(value); ok {
		return n != 0
	}
	return true
}

func coerceBool(value any) (bool, bool) {
	switch v := value.(type) {
	case nil:
		return false, false
	case bool:
		return v, true
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed, true
		}
	}
	return truthy(value), true
}

func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// coerceString renders stored form values the way users type them.
func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.Format(model.DateLayout)
	case model.FileRef:
		return v.Name
	}
	return fmt.Sprint(value)
}
