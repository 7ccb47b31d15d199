package filter

import "testing"

func TestEvaluateStartsWithEndsWith(t *testing.T) {
	starts := compileJSON(t, `["starts-with", ["tag","ref"], "NW"]`)
	ends := compileJSON(t, `["ends-with", ["tag","ref"], "42"]`)
	ctx := &Context{Properties: map[string]Value{"ref": String("NW-42")}}

	if !EvaluateBool(starts, ctx) {
		t.Error("expected starts-with NW to be true")
	}
	if !EvaluateBool(ends, ctx) {
		t.Error("expected ends-with 42 to be true")
	}
}

func TestEvaluateRegexMatch(t *testing.T) {
	expr := compileJSON(t, `["regex-match", ["tag","ref"], "^[A-Z]{2}-\\d+$"]`)
	ctx := &Context{Properties: map[string]Value{"ref": String("NW-42")}}
	if !EvaluateBool(expr, ctx) {
		t.Error("expected regex-match to be true")
	}
	ctx.Properties["ref"] = String("nw-42")
	if EvaluateBool(expr, ctx) {
		t.Error("expected regex-match to be case-sensitive and false here")
	}
}

func TestEvaluateMissingTagIsNull(t *testing.T) {
	expr := compileJSON(t, `["tag", "missing"]`)
	ctx := &Context{Properties: map[string]Value{}}
	got := Evaluate(expr, ctx)
	if got.Kind != KindNull {
		t.Errorf("missing tag should evaluate to Null, got %#v", got)
	}
}

func TestEvaluateBooleanCoercionOperator(t *testing.T) {
	expr := compileJSON(t, `["boolean", ["tag","flag"]]`)
	ctx := &Context{Properties: map[string]Value{"flag": String("")}}
	if EvaluateBool(expr, ctx) {
		t.Error("empty string should coerce to false")
	}
	ctx.Properties["flag"] = String("yes")
	if !EvaluateBool(expr, ctx) {
		t.Error("non-empty string should coerce to true")
	}
}
