package filter

import "strings"

// Context is the immutable evaluation context for one expression evaluation:
// the feature's materialized property map, the current layer name, the
// geometry kind, and the current key (set only during per-tag evaluation).
type Context struct {
	Properties map[string]Value
	Layer      string
	Geometry   string
	Key        *string
}

// Evaluate walks the AST against ctx and returns its expression value.
func Evaluate(e *Expr, ctx *Context) Value {
	switch e.Kind {
	case ELiteral:
		return e.Literal
	case ETag:
		if v, ok := ctx.Properties[e.TagName]; ok {
			return v
		}
		return Null()
	case EKey:
		if ctx.Key != nil {
			return String(*ctx.Key)
		}
		return Null()
	case EType:
		if ctx.Geometry != "" {
			return String(ctx.Geometry)
		}
		return Null()
	case EEqual:
		return Boolean(Compare(Evaluate(e.Children[0], ctx), Evaluate(e.Children[1], ctx)) == 0)
	case ENotEqual:
		return Boolean(Compare(Evaluate(e.Children[0], ctx), Evaluate(e.Children[1], ctx)) != 0)
	case ELessThan:
		return Boolean(Compare(Evaluate(e.Children[0], ctx), Evaluate(e.Children[1], ctx)) < 0)
	case ELessOrEqual:
		return Boolean(Compare(Evaluate(e.Children[0], ctx), Evaluate(e.Children[1], ctx)) <= 0)
	case EGreaterThan:
		return Boolean(Compare(Evaluate(e.Children[0], ctx), Evaluate(e.Children[1], ctx)) > 0)
	case EGreaterOrEqual:
		return Boolean(Compare(Evaluate(e.Children[0], ctx), Evaluate(e.Children[1], ctx)) >= 0)
	case EAny:
		for _, c := range e.Children {
			if EvaluateBool(c, ctx) {
				return Boolean(true)
			}
		}
		return Boolean(false)
	case EAll:
		for _, c := range e.Children {
			if !EvaluateBool(c, ctx) {
				return Boolean(false)
			}
		}
		return Boolean(true)
	case ENone:
		for _, c := range e.Children {
			if EvaluateBool(c, ctx) {
				return Boolean(false)
			}
		}
		return Boolean(true)
	case ENot:
		return Boolean(!EvaluateBool(e.Children[0], ctx))
	case EIn:
		return Boolean(e.inSet(Evaluate(e.Children[0], ctx)))
	case EStartsWith:
		return Boolean(strings.HasPrefix(Evaluate(e.Children[0], ctx).Render(), e.Prefix))
	case EEndsWith:
		return Boolean(strings.HasSuffix(Evaluate(e.Children[0], ctx).Render(), e.Prefix))
	case ERegexMatch:
		return Boolean(e.Regex.MatchString(Evaluate(e.Children[0], ctx).Render()))
	case ERegexCapture:
		m := e.Regex.FindStringSubmatch(Evaluate(e.Children[0], ctx).Render())
		if m == nil || e.Group >= len(m) {
			return Null()
		}
		return String(m[e.Group])
	case EBoolean:
		return Boolean(Evaluate(e.Children[0], ctx).CoerceBool())
	default:
		return Null()
	}
}

// EvaluateBool evaluates e and coerces the result via the boolean cast rules.
func EvaluateBool(e *Expr, ctx *Context) bool {
	return Evaluate(e, ctx).CoerceBool()
}
