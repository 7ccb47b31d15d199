package filter

import (
	"fmt"
	"math"
	"regexp"

	"github.com/valpere/mvtfilter/internal/errs"
)

func parseErr(format string, args ...interface{}) *errs.Error {
	return errs.New(errs.CodeFilterParse, fmt.Sprintf(format, args...), nil)
}

// Compile compiles a decoded JSON value (as produced by encoding/json, so
// numbers arrive as float64) into an expression AST.
func Compile(raw interface{}) (*Expr, error) {
	switch v := raw.(type) {
	case []interface{}:
		return compileArray(v)
	case string:
		return &Expr{Kind: ELiteral, Literal: String(v)}, nil
	case float64:
		return &Expr{Kind: ELiteral, Literal: numberLiteral(v)}, nil
	case bool:
		return &Expr{Kind: ELiteral, Literal: Boolean(v)}, nil
	case nil:
		return &Expr{Kind: ELiteral, Literal: Null()}, nil
	case map[string]interface{}:
		return nil, parseErr("object cannot be compiled as an expression")
	default:
		return nil, parseErr("unsupported JSON value type %T", raw)
	}
}

func numberLiteral(v float64) Value {
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return Number(int64(v))
	}
	return Float(CanonicalFloat(v))
}

// jsonToValue converts an arbitrary JSON value (as decoded by encoding/json)
// directly into a Value, preserving arrays. Used by the `literal` operator.
func jsonToValue(raw interface{}) (Value, error) {
	switch v := raw.(type) {
	case string:
		return String(v), nil
	case float64:
		return numberLiteral(v), nil
	case bool:
		return Boolean(v), nil
	case nil:
		return Null(), nil
	case []interface{}:
		elems := make([]Value, len(v))
		for i, e := range v {
			ev, err := jsonToValue(e)
			if err != nil {
				return Value{}, err
			}
			elems[i] = ev
		}
		return Array(elems), nil
	default:
		return Value{}, parseErr("literal cannot hold a JSON object")
	}
}

func compileArray(arr []interface{}) (*Expr, error) {
	if len(arr) == 0 {
		return nil, parseErr("expression array must not be empty")
	}
	head, ok := arr[0].(string)
	if !ok {
		return nil, parseErr("expression head must be a string operator")
	}
	args := arr[1:]

	switch head {
	case "==":
		return compileCompare(EEqual, args)
	case "!=":
		return compileCompare(ENotEqual, args)
	case "<":
		return compileCompare(ELessThan, args)
	case "<=":
		return compileCompare(ELessOrEqual, args)
	case ">":
		return compileCompare(EGreaterThan, args)
	case ">=":
		return compileCompare(EGreaterOrEqual, args)
	case "any":
		return compileVariadic(EAny, args)
	case "all":
		return compileVariadic(EAll, args)
	case "none":
		return compileVariadic(ENone, args)
	case "not", "!":
		return compileUnary(ENot, args)
	case "in":
		return compileIn(args)
	case "starts-with":
		return compileStringLiteralOp(EStartsWith, args)
	case "ends-with":
		return compileStringLiteralOp(EEndsWith, args)
	case "regex-match":
		return compileRegexMatch(args)
	case "regex-capture":
		return compileRegexCapture(args)
	case "boolean":
		return compileUnary(EBoolean, args)
	case "literal":
		return compileLiteral(args)
	case "tag":
		return compileTag(args)
	case "key":
		return compileNoArg(EKey, args)
	case "type":
		return compileNoArg(EType, args)
	default:
		return nil, parseErr("unknown operator %q", head)
	}
}

func compileCompare(kind exprKind, args []interface{}) (*Expr, error) {
	if len(args) != 2 {
		return nil, parseErr("operator requires exactly 2 arguments, got %d", len(args))
	}
	lhs, err := Compile(args[0])
	if err != nil {
		return nil, err
	}
	rhs, err := Compile(args[1])
	if err != nil {
		return nil, err
	}
	return &Expr{Kind: kind, Children: []*Expr{lhs, rhs}}, nil
}

func compileVariadic(kind exprKind, args []interface{}) (*Expr, error) {
	children := make([]*Expr, len(args))
	for i, a := range args {
		c, err := Compile(a)
		if err != nil {
			return nil, err
		}
		children[i] = c
	}
	return &Expr{Kind: kind, Children: children}, nil
}

func compileUnary(kind exprKind, args []interface{}) (*Expr, error) {
	if len(args) != 1 {
		return nil, parseErr("operator requires exactly 1 argument, got %d", len(args))
	}
	child, err := Compile(args[0])
	if err != nil {
		return nil, err
	}
	return &Expr{Kind: kind, Children: []*Expr{child}}, nil
}

func compileNoArg(kind exprKind, args []interface{}) (*Expr, error) {
	if len(args) != 0 {
		return nil, parseErr("operator takes no arguments, got %d", len(args))
	}
	return &Expr{Kind: kind}, nil
}

func compileIn(args []interface{}) (*Expr, error) {
	if len(args) != 2 {
		return nil, parseErr("in requires exactly 2 arguments, got %d", len(args))
	}
	child, err := Compile(args[0])
	if err != nil {
		return nil, err
	}
	set, err := Compile(args[1])
	if err != nil {
		return nil, err
	}
	if set.Kind != ELiteral || set.Literal.Kind != KindArray {
		return nil, parseErr("in's second argument must compile to a literal array")
	}
	return &Expr{Kind: EIn, Children: []*Expr{child}, set: newSet(set.Literal.Elems())}, nil
}

func compileStringLiteralOp(kind exprKind, args []interface{}) (*Expr, error) {
	if len(args) != 2 {
		return nil, parseErr("operator requires exactly 2 arguments, got %d", len(args))
	}
	child, err := Compile(args[0])
	if err != nil {
		return nil, err
	}
	lit, ok := args[1].(string)
	if !ok {
		return nil, parseErr("operator's second argument must be a string literal")
	}
	return &Expr{Kind: kind, Children: []*Expr{child}, Prefix: lit}, nil
}

func compileRegexMatch(args []interface{}) (*Expr, error) {
	if len(args) != 2 {
		return nil, parseErr("regex-match requires exactly 2 arguments, got %d", len(args))
	}
	child, err := Compile(args[0])
	if err != nil {
		return nil, err
	}
	pattern, ok := args[1].(string)
	if !ok {
		return nil, parseErr("regex-match's second argument must be a string literal")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errs.New(errs.CodeFilterParse, fmt.Sprintf("invalid regex %q", pattern), err)
	}
	return &Expr{Kind: ERegexMatch, Children: []*Expr{child}, Regex: re}, nil
}

func compileRegexCapture(args []interface{}) (*Expr, error) {
	if len(args) < 3 {
		return nil, parseErr("regex-capture requires at least 3 arguments, got %d", len(args))
	}
	child, err := Compile(args[0])
	if err != nil {
		return nil, err
	}
	pattern, ok := args[1].(string)
	if !ok {
		return nil, parseErr("regex-capture's second argument must be a string literal")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errs.New(errs.CodeFilterParse, fmt.Sprintf("invalid regex %q", pattern), err)
	}
	groupF, ok := args[2].(float64)
	if !ok || groupF < 0 || groupF != math.Trunc(groupF) {
		return nil, parseErr("regex-capture's third argument must be a non-negative integer group index")
	}
	return &Expr{Kind: ERegexCapture, Children: []*Expr{child}, Regex: re, Group: int(groupF)}, nil
}

func compileLiteral(args []interface{}) (*Expr, error) {
	if len(args) != 1 {
		return nil, parseErr("literal requires exactly 1 argument, got %d", len(args))
	}
	v, err := jsonToValue(args[0])
	if err != nil {
		return nil, err
	}
	return &Expr{Kind: ELiteral, Literal: v}, nil
}

func compileTag(args []interface{}) (*Expr, error) {
	if len(args) != 1 {
		return nil, parseErr("tag requires exactly 1 argument, got %d", len(args))
	}
	name, ok := args[0].(string)
	if !ok {
		return nil, parseErr("tag's argument must be a string")
	}
	return &Expr{Kind: ETag, TagName: name}, nil
}
