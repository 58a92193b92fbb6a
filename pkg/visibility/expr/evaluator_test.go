package expr

import (
	"testing"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

func TestEvaluatorDependeeValue(t *testing.T) {
	t.Parallel()

	eval := New()

	ok, err := eval.Eval("4", `value == "yes"`, visibility.Context{
		Values: map[string]any{"4": "yes"},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected true when dependee matches")
	}

	ok, err = eval.Eval("4", `value == "yes"`, visibility.Context{
		Values: map[string]any{"4": "no"},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected false when dependee differs")
	}
}

func TestEvaluatorSingleQuotedStrings(t *testing.T) {
	t.Parallel()

	values := map[string]any{"4": `it's "ok"`}
	ok, err := New().Eval("4", `value == 'it\'s "ok"'`, visibility.Context{Values: values})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected single quoted literal to match")
	}
}

func TestEvaluatorSingleQuotedEscapedDoubleQuotes(t *testing.T) {
	t.Parallel()

	values := map[string]any{"4": `say "hi"`}
	ok, err := New().Eval("4", `value == 'say \"hi\"'`, visibility.Context{Values: values})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected escaped double quotes inside single quotes to match")
	}
}

func TestEvaluatorExplicitValueWins(t *testing.T) {
	t.Parallel()

	ok, err := New().Eval("4", `value != "US"`, visibility.Context{
		Value:  "IN",
		Values: map[string]any{"4": "US"},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected Context.Value to take precedence")
	}
}

func TestEvaluatorTruthyAndNot(t *testing.T) {
	t.Parallel()

	eval := New()

	ok, err := eval.Eval("2", "value", visibility.Context{
		Values: map[string]any{"2": "hello"},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected non-empty string to be truthy")
	}

	ok, err = eval.Eval("2", "!value", visibility.Context{})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected missing dependee to be falsy")
	}

	ok, err = eval.Eval("2", "value", visibility.Context{
		Values: map[string]any{"2": time.Time{}},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected zero date to be falsy")
	}
}

func TestEvaluatorCheckboxContains(t *testing.T) {
	t.Parallel()

	ctx := visibility.Context{Values: map[string]any{"5": []string{"red", "blue"}}}

	ok, err := New().Eval("5", `value == "blue"`, ctx)
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected selection to contain blue")
	}

	ok, err = New().Eval("5", `value != "green"`, ctx)
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected selection not to contain green")
	}
}

func TestEvaluatorOtherFieldsAndExtras(t *testing.T) {
	t.Parallel()

	ok, err := New().Eval("1", `value == "US" && values.9 == "2024-05-17" && extras.beta`, visibility.Context{
		Values: map[string]any{
			"1": "US",
			"9": time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC),
		},
		Extras: map[string]any{"beta": true},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected composite rule to pass")
	}
}

func TestEvaluatorFileRef(t *testing.T) {
	t.Parallel()

	ok, err := New().Eval("3", `value == "cv.pdf"`, visibility.Context{
		Values: map[string]any{"3": model.FileRef{Name: "cv.pdf"}},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected file name comparison to pass")
	}
}

func TestEvaluatorNullLiteral(t *testing.T) {
	t.Parallel()

	ok, err := New().Eval("8", "value == null", visibility.Context{Values: map[string]any{}})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected true for missing == null")
	}
}

func TestEvaluatorEmptyConditionIsVisible(t *testing.T) {
	t.Parallel()

	ok, err := New().Eval("8", "   ", visibility.Context{})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected empty condition to be visible")
	}
}

func TestEvaluatorSyntaxErrors(t *testing.T) {
	t.Parallel()

	for _, rule := range []string{`value = "x"`, `value & other`, `value | other`, `(value`, `value == "open`, `value ==`, `"x" == value`, `value == "a" value`, `value # 1`} {
		if _, err := New().Eval("1", rule, visibility.Context{}); err == nil {
			t.Fatalf("expected error for %q", rule)
		}
	}
}

func TestEvaluatorOrdering(t *testing.T) {
	t.Parallel()

	born := time.Date(2001, 3, 9, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		rule  string
		value any
		want  bool
	}{
		{`value >= "2000-01-01"`, born, true},
		{`value < "2000-01-01"`, born, false},
		{`value > 17`, "18", true},
		{`value <= 17`, 18, false},
		{`value > "10"`, "9", false},
		{`value < "b"`, "a", true},
		{`value < 5`, nil, false},
		{`value < 5`, "", false},
		{`value >= 0`, "abc", false},
		{`value == 0`, nil, false},
		{`value == 0`, "hello", false},
		{`value != 0`, "abc", true},
		{`value != 0`, nil, true},
		{`value == 0`, "0", true},
	}
	for _, tc := range cases {
		got, err := New().Eval("1", tc.rule, visibility.Context{Values: map[string]any{"1": tc.value}})
		if err != nil {
			t.Fatalf("%s: Eval returned error: %v", tc.rule, err)
		}
		if got != tc.want {
			t.Errorf("%s with %v = %v, want %v", tc.rule, tc.value, got, tc.want)
		}
	}
}

func TestEvaluatorOrderingErrors(t *testing.T) {
	t.Parallel()

	ctx := visibility.Context{Values: map[string]any{
		"1": time.Date(2001, 3, 9, 0, 0, 0, 0, time.UTC),
		"2": []string{"red"},
	}}
	for _, rule := range []string{`value > "soon"`, `values.2 < "z"`, `value < true`, `value >= null`} {
		if _, err := New().Eval("1", rule, ctx); err == nil {
			t.Errorf("expected error for %q", rule)
		}
	}
}

func TestEvaluatorMembership(t *testing.T) {
	t.Parallel()

	eval := New()
	cases := []struct {
		rule  string
		value any
		want  bool
	}{
		{`value in ["US", "IN"]`, "IN", true},
		{`value in ['US', 'IN']`, "UK", false},
		{`value in [3, 4]`, 4, true},
		{`value in []`, "US", false},
		{`!(value in ["green"])`, []string{"red", "blue"}, true},
		{`value in ["blue"]`, []string{"red", "blue"}, true},
	}
	for _, tc := range cases {
		got, err := eval.Eval("1", tc.rule, visibility.Context{Values: map[string]any{"1": tc.value}})
		if err != nil {
			t.Fatalf("%s: Eval returned error: %v", tc.rule, err)
		}
		if got != tc.want {
			t.Errorf("%s with %v = %v, want %v", tc.rule, tc.value, got, tc.want)
		}
	}

	for _, rule := range []string{`value in "US"`, `value in ["US"`, `value in ["US" "IN"]`} {
		if _, err := eval.Eval("1", rule, visibility.Context{}); err == nil {
			t.Errorf("expected error for %q", rule)
		}
	}
}

func TestEvaluatorNestedExtras(t *testing.T) {
	t.Parallel()

	ok, err := New().Eval("1", `extras.user.role == "admin" || value`, visibility.Context{
		Extras: map[string]any{"user": map[string]any{"role": "admin"}},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected nested extras lookup to match")
	}
}

func TestAlwaysEvaluator(t *testing.T) {
	t.Parallel()

	ok, err := visibility.Always.Eval("1", "value == false", visibility.Context{})
	if err != nil || !ok {
		t.Fatalf("Always should report visible, got %v %v", ok, err)
	}
}
