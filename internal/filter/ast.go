package filter

import "regexp"

// exprKind identifies the operator a compiled expression node represents. Expr
// is a tagged union over every variant rather than an interface hierarchy:
// the AST is closed and immutable after compile, so a single struct with a
// kind tag avoids an allocation per node for a vtable that is never needed.
type exprKind int

const (
	EEqual exprKind = iota
	ENotEqual
	ELessThan
	ELessOrEqual
	EGreaterThan
	EGreaterOrEqual
	EAny
	EAll
	ENone
	ENot
	EIn
	EStartsWith
	EEndsWith
	ERegexMatch
	ERegexCapture
	EBoolean
	ELiteral
	ETag
	EKey
	EType
)

// Expr is a single node of the compiled expression AST.
type Expr struct {
	Kind     exprKind
	Children []*Expr

	Literal Value // ELiteral

	Prefix string         // EStartsWith, EEndsWith
	Regex  *regexp.Regexp // ERegexMatch, ERegexCapture
	Group  int            // ERegexCapture

	TagName string // ETag

	set map[string]struct{} // EIn: precompiled membership set, keyed by setKey
}

// newSet builds the precompiled membership set for an In node from the
// elements of a Literal(Array).
func newSet(elems []Value) map[string]struct{} {
	set := make(map[string]struct{}, len(elems))
	for _, e := range elems {
		set[setKey(e)] = struct{}{}
	}
	return set
}

func (e *Expr) inSet(v Value) bool {
	_, ok := e.set[setKey(v)]
	return ok
}
