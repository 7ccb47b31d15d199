package filter

import (
	"encoding/json"
	"testing"
)

func compileJSON(t *testing.T, src string) *Expr {
	t.Helper()
	var raw interface{}
	if err := json.Unmarshal([]byte(src), &raw); err != nil {
		t.Fatalf("invalid JSON fixture: %v", err)
	}
	expr, err := Compile(raw)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	return expr
}

func TestCompileAndEvaluateComparison(t *testing.T) {
	expr := compileJSON(t, `["==", ["tag","kind"], "park"]`)
	ctx := &Context{Properties: map[string]Value{"kind": String("park")}}
	if !EvaluateBool(expr, ctx) {
		t.Error("expected kind==park to evaluate true")
	}
	ctx.Properties["kind"] = String("house")
	if EvaluateBool(expr, ctx) {
		t.Error("expected kind==park to evaluate false for house")
	}
}

func TestCompileInRequiresLiteralArray(t *testing.T) {
	_, err := Compile(mustJSON(t, `["in", ["tag","kind"], ["tag","other"]]`))
	if err == nil {
		t.Fatal("expected error when in's second argument is not a literal array")
	}
}

func TestCompileInMembership(t *testing.T) {
	expr := compileJSON(t, `["in", ["tag","kind"], ["literal", ["park","school"]]]`)
	ctx := &Context{Properties: map[string]Value{"kind": String("school")}}
	if !EvaluateBool(expr, ctx) {
		t.Error("expected school to be a member of [park, school]")
	}
	ctx.Properties["kind"] = String("house")
	if EvaluateBool(expr, ctx) {
		t.Error("expected house not to be a member of [park, school]")
	}
}

func TestCompileNotInViaNotAndIn(t *testing.T) {
	expr := compileJSON(t, `["not", ["in", ["tag","kind"], ["literal", ["park"]]]]`)
	ctx := &Context{Properties: map[string]Value{"kind": String("house")}}
	if !EvaluateBool(expr, ctx) {
		t.Error("house should satisfy not-in [park]")
	}
}

func TestEvaluateAnyAllNone(t *testing.T) {
	truthy := &Expr{Kind: ELiteral, Literal: Boolean(true)}
	falsy := &Expr{Kind: ELiteral, Literal: Boolean(false)}
	ctx := &Context{}

	any := &Expr{Kind: EAny, Children: []*Expr{falsy, truthy}}
	if !EvaluateBool(any, ctx) {
		t.Error("any should be true when one child is true")
	}
	all := &Expr{Kind: EAll, Children: []*Expr{truthy, falsy}}
	if EvaluateBool(all, ctx) {
		t.Error("all should be false when one child is false")
	}
	none := &Expr{Kind: ENone, Children: []*Expr{falsy, falsy}}
	if !EvaluateBool(none, ctx) {
		t.Error("none should be true when every child is false")
	}
}

func TestCompileRegexCaptureGroup(t *testing.T) {
	expr := compileJSON(t, `["regex-capture", ["tag","ref"], "^([A-Z]+)-(\\d+)$", 2]`)
	ctx := &Context{Properties: map[string]Value{"ref": String("NW-42")}}
	got := Evaluate(expr, ctx)
	if got.Kind != KindString || got.Str() != "42" {
		t.Errorf("regex-capture group 2 = %#v, want String(42)", got)
	}
}

func TestCompileRegexCaptureArity(t *testing.T) {
	_, err := Compile(mustJSON(t, `["regex-capture", ["tag","ref"], "^(\\d+)$"]`))
	if err == nil {
		t.Fatal("expected arity error for regex-capture with fewer than 3 args")
	}
}

func TestCompileTypeAndKeyTerminals(t *testing.T) {
	typeExpr := compileJSON(t, `["type"]`)
	keyName := "height"
	ctx := &Context{Geometry: "Polygon", Key: &keyName}
	if got := Evaluate(typeExpr, ctx); got.Str() != "Polygon" {
		t.Errorf("type terminal = %q, want Polygon", got.Str())
	}
	keyExpr := compileJSON(t, `["key"]`)
	if got := Evaluate(keyExpr, ctx); got.Str() != "height" {
		t.Errorf("key terminal = %q, want height", got.Str())
	}
}

func TestCompileUnknownOperator(t *testing.T) {
	_, err := Compile(mustJSON(t, `["bogus", 1]`))
	if err == nil {
		t.Fatal("expected error for unknown operator")
	}
}

func mustJSON(t *testing.T, src string) interface{} {
	t.Helper()
	var raw interface{}
	if err := json.Unmarshal([]byte(src), &raw); err != nil {
		t.Fatalf("invalid JSON fixture: %v", err)
	}
	return raw
}
