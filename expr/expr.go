// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

// Package expr provides the expressions attached to logical plan nodes.
//
// Expressions produced from a query are mostly unresolved:
// column references are [*UnresolvedAttribute] values
// and function calls are [*UnresolvedFunction] values
// until an analyzer binds them to a schema and a function registry.
package expr

import (
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/runreveal/esql/parser"
)

// Expression is a node in an expression tree.
type Expression interface {
	// Source returns the part of the query the expression was built from.
	Source() Source
	Children() []Expression
	// ReplaceChildren returns a copy of the expression
	// with its children replaced, in the order Children returns them.
	// It panics if the number of children differs.
	// The receiver is not modified.
	ReplaceChildren(children []Expression) Expression
	// DataType returns the type of the value the expression produces.
	// It returns [Unsupported] if the expression is not resolved.
	DataType() DataType
	Nullable() Nullability
	// Foldable reports whether the expression's value
	// can be computed without any input row.
	Foldable() bool
	// Resolved reports whether the expression and all its children
	// have been bound and type checked.
	Resolved() bool
	String() string
}

// NamedExpression is an expression that produces a named column.
type NamedExpression interface {
	Expression
	Name() string
	ID() NameID
	// ToAttribute returns a reference to the column the expression produces.
	ToAttribute() Attribute
}

// Attribute is a reference to a column.
type Attribute interface {
	NamedExpression
	// WithNullability returns a copy of the attribute
	// with the same identity and the given nullability.
	WithNullability(n Nullability) Attribute
}

// Source is the location of an expression in a query.
type Source struct {
	Span parser.Span
	Text string
}

// NewSource returns the source for the given span of query.
func NewSource(query string, span parser.Span) Source {
	return Source{Span: span, Text: span.Text(query)}
}

// EmptySource returns a source that refers to no part of a query.
func EmptySource() Source {
	return Source{Span: parser.NullSpan()}
}

// NameID is the identity of a column.
// Two attributes refer to the same column if and only if their IDs are equal.
type NameID int64

var lastNameID atomic.Int64

// NewNameID returns a NameID that has not been returned before
// in the lifetime of the process.
func NewNameID() NameID {
	return NameID(lastNameID.Add(1))
}

// Nullability describes whether an expression can produce null.
type Nullability int

// Nullability values.
const (
	NullabilityUnknown Nullability = iota
	NullabilityTrue
	NullabilityFalse
)

func (n Nullability) String() string {
	switch n {
	case NullabilityTrue:
		return "nullable"
	case NullabilityFalse:
		return "not-null"
	default:
		return "unknown-nullability"
	}
}

// nullableOf combines the nullability of expressions
// that produce null if any of their inputs is null.
func nullableOf(exprs ...Expression) Nullability {
	result := NullabilityFalse
	for _, e := range exprs {
		switch e.Nullable() {
		case NullabilityTrue:
			return NullabilityTrue
		case NullabilityUnknown:
			result = NullabilityUnknown
		}
	}
	return result
}

func allResolved(exprs ...Expression) bool {
	for _, e := range exprs {
		if !e.Resolved() {
			return false
		}
	}
	return true
}

func allFoldable(exprs ...Expression) bool {
	for _, e := range exprs {
		if !e.Foldable() {
			return false
		}
	}
	return true
}

// Walk calls f for e and then for each of its descendants in depth-first order.
// If f returns false, Walk does not visit the expression's children.
func Walk(e Expression, f func(Expression) bool) {
	if !f(e) {
		return
	}
	for _, child := range e.Children() {
		Walk(child, f)
	}
}

// Transform rewrites e from the leaves up.
// f is called with each expression after its children have been rewritten,
// and its result replaces the expression.
// Expressions whose children are unchanged are not copied.
func Transform(e Expression, f func(Expression) Expression) Expression {
	children := e.Children()
	if len(children) > 0 {
		changed := false
		replaced := make([]Expression, len(children))
		for i, c := range children {
			replaced[i] = Transform(c, f)
			changed = changed || replaced[i] != c
		}
		if changed {
			e = e.ReplaceChildren(replaced)
		}
	}
	return f(e)
}

func checkChildren(e Expression, children []Expression, n int) {
	if len(children) != n {
		panic(fmt.Sprintf("%T has %d children, got %d", e, n, len(children)))
	}
}

// References returns the attributes referenced by e in the order they appear.
func References(e Expression) []Attribute {
	var refs []Attribute
	Walk(e, func(e Expression) bool {
		if attr, ok := e.(Attribute); ok {
			refs = append(refs, attr)
			return false
		}
		return true
	})
	return refs
}

// Equal reports whether two expressions are semantically equal.
func Equal(a, b Expression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if eq, ok := a.(interface{ Equal(Expression) bool }); ok {
		return eq.Equal(b)
	}
	return reflect.TypeOf(a) == reflect.TypeOf(b) && a.String() == b.String()
}

// binaryOperator is implemented by infix expressions
// so that they can be parenthesized when nested.
type binaryOperator interface {
	Expression
	binaryOperator()
}

func operandString(e Expression) string {
	if _, ok := e.(binaryOperator); ok {
		return "(" + e.String() + ")"
	}
	return e.String()
}

func joinExpressions(exprs []Expression, sep string) string {
	var sb strings.Builder
	for i, e := range exprs {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(e.String())
	}
	return sb.String()
}
