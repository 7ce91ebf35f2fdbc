// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ArithmeticOp is a binary arithmetic operator.
type ArithmeticOp int

// Arithmetic operators.
const (
	OpAdd ArithmeticOp = 1 + iota
	OpSub
	OpMul
	OpDiv
	OpMod
)

func (op ArithmeticOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	default:
		return fmt.Sprintf("ArithmeticOp(%d)", int(op))
	}
}

// Arithmetic is a binary arithmetic operation.
type Arithmetic struct {
	source Source
	Op     ArithmeticOp
	Left   Expression
	Right  Expression
}

// NewArithmetic returns a new arithmetic operation.
func NewArithmetic(source Source, op ArithmeticOp, left, right Expression) *Arithmetic {
	return &Arithmetic{source: source, Op: op, Left: left, Right: right}
}

func (a *Arithmetic) binaryOperator()        {}
func (a *Arithmetic) Source() Source         { return a.source }
func (a *Arithmetic) Children() []Expression { return []Expression{a.Left, a.Right} }
func (a *Arithmetic) Nullable() Nullability  { return nullableOf(a.Left, a.Right) }
func (a *Arithmetic) Foldable() bool         { return allFoldable(a.Left, a.Right) }

func (a *Arithmetic) ReplaceChildren(children []Expression) Expression {
	checkChildren(a, children, 2)
	a2 := *a
	a2.Left, a2.Right = children[0], children[1]
	return &a2
}

func (a *Arithmetic) Resolved() bool {
	return allResolved(a.Left, a.Right) && a.DataType() != Unsupported
}

// DataType returns the type of the operation's result.
// Numbers are widened to a common type.
// Adding or subtracting a date period or time duration
// to a datetime produces a datetime.
func (a *Arithmetic) DataType() DataType {
	l, r := a.Left.DataType(), a.Right.DataType()
	switch {
	case l == Null:
		return r
	case r == Null:
		return l
	case l.IsNumeric() && r.IsNumeric():
		return commonNumericType(l, r)
	case a.Op != OpAdd && a.Op != OpSub:
		return Unsupported
	case l == Datetime && r.IsTemporalAmount():
		return Datetime
	case l.IsTemporalAmount() && r == Datetime && a.Op == OpAdd:
		return Datetime
	case l.IsTemporalAmount() && l == r:
		return l
	default:
		return Unsupported
	}
}

func (a *Arithmetic) String() string {
	return operandString(a.Left) + " " + a.Op.String() + " " + operandString(a.Right)
}

// Neg negates a number or a temporal amount.
type Neg struct {
	source Source
	Child  Expression
}

// NewNeg returns a new negation.
func NewNeg(source Source, child Expression) *Neg {
	return &Neg{source: source, Child: child}
}

func (n *Neg) Source() Source         { return n.source }
func (n *Neg) Children() []Expression { return []Expression{n.Child} }
func (n *Neg) DataType() DataType     { return n.Child.DataType() }
func (n *Neg) Nullable() Nullability  { return n.Child.Nullable() }
func (n *Neg) Foldable() bool         { return n.Child.Foldable() }
func (n *Neg) String() string         { return "-" + operandString(n.Child) }

func (n *Neg) ReplaceChildren(children []Expression) Expression {
	checkChildren(n, children, 1)
	n2 := *n
	n2.Child = children[0]
	return &n2
}

func (n *Neg) Resolved() bool {
	t := n.Child.DataType()
	return n.Child.Resolved() && (t.IsNumeric() || t.IsTemporalAmount() || t == Null)
}

// ComparisonOp is a binary comparison operator.
type ComparisonOp int

// Comparison operators.
const (
	OpEq ComparisonOp = 1 + iota
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
)

func (op ComparisonOp) String() string {
	switch op {
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	default:
		return fmt.Sprintf("ComparisonOp(%d)", int(op))
	}
}

// Comparison compares two values.
type Comparison struct {
	source Source
	Op     ComparisonOp
	Left   Expression
	Right  Expression
}

// NewComparison returns a new comparison.
func NewComparison(source Source, op ComparisonOp, left, right Expression) *Comparison {
	return &Comparison{source: source, Op: op, Left: left, Right: right}
}

func (c *Comparison) binaryOperator()        {}
func (c *Comparison) Source() Source         { return c.source }
func (c *Comparison) Children() []Expression { return []Expression{c.Left, c.Right} }
func (c *Comparison) DataType() DataType     { return Boolean }
func (c *Comparison) Nullable() Nullability  { return nullableOf(c.Left, c.Right) }
func (c *Comparison) Foldable() bool         { return allFoldable(c.Left, c.Right) }
func (c *Comparison) Resolved() bool         { return allResolved(c.Left, c.Right) }

func (c *Comparison) ReplaceChildren(children []Expression) Expression {
	checkChildren(c, children, 2)
	c2 := *c
	c2.Left, c2.Right = children[0], children[1]
	return &c2
}

func (c *Comparison) String() string {
	return operandString(c.Left) + " " + c.Op.String() + " " + operandString(c.Right)
}

// InsensitiveEquals compares two strings ignoring case.
type InsensitiveEquals struct {
	source Source
	Left   Expression
	Right  Expression
}

// NewInsensitiveEquals returns a new case-insensitive string comparison.
func NewInsensitiveEquals(source Source, left, right Expression) *InsensitiveEquals {
	return &InsensitiveEquals{source: source, Left: left, Right: right}
}

func (c *InsensitiveEquals) binaryOperator()        {}
func (c *InsensitiveEquals) Source() Source         { return c.source }
func (c *InsensitiveEquals) Children() []Expression { return []Expression{c.Left, c.Right} }
func (c *InsensitiveEquals) DataType() DataType     { return Boolean }
func (c *InsensitiveEquals) Nullable() Nullability  { return nullableOf(c.Left, c.Right) }
func (c *InsensitiveEquals) Foldable() bool         { return allFoldable(c.Left, c.Right) }

func (c *InsensitiveEquals) ReplaceChildren(children []Expression) Expression {
	checkChildren(c, children, 2)
	c2 := *c
	c2.Left, c2.Right = children[0], children[1]
	return &c2
}

func (c *InsensitiveEquals) Resolved() bool {
	return allResolved(c.Left, c.Right) &&
		IsString(c.Left, c.source.Text, FirstOrdinal).And(IsString(c.Right, c.source.Text, SecondOrdinal)).Resolved()
}

func (c *InsensitiveEquals) String() string {
	return operandString(c.Left) + " =~ " + operandString(c.Right)
}

// LogicOp is a binary boolean operator.
type LogicOp int

// Boolean operators.
const (
	OpAnd LogicOp = 1 + iota
	OpOr
)

func (op LogicOp) String() string {
	if op == OpOr {
		return "OR"
	}
	return "AND"
}

// BinaryLogic is a conjunction or a disjunction.
type BinaryLogic struct {
	source Source
	Op     LogicOp
	Left   Expression
	Right  Expression
}

// NewAnd returns the conjunction of two conditions.
func NewAnd(source Source, left, right Expression) *BinaryLogic {
	return &BinaryLogic{source: source, Op: OpAnd, Left: left, Right: right}
}

// NewOr returns the disjunction of two conditions.
func NewOr(source Source, left, right Expression) *BinaryLogic {
	return &BinaryLogic{source: source, Op: OpOr, Left: left, Right: right}
}

func (b *BinaryLogic) binaryOperator()        {}
func (b *BinaryLogic) Source() Source         { return b.source }
func (b *BinaryLogic) Children() []Expression { return []Expression{b.Left, b.Right} }
func (b *BinaryLogic) DataType() DataType     { return Boolean }
func (b *BinaryLogic) Nullable() Nullability  { return nullableOf(b.Left, b.Right) }
func (b *BinaryLogic) Foldable() bool         { return allFoldable(b.Left, b.Right) }
func (b *BinaryLogic) Resolved() bool         { return allResolved(b.Left, b.Right) }

func (b *BinaryLogic) ReplaceChildren(children []Expression) Expression {
	checkChildren(b, children, 2)
	b2 := *b
	b2.Left, b2.Right = children[0], children[1]
	return &b2
}

func (b *BinaryLogic) String() string {
	return operandString(b.Left) + " " + b.Op.String() + " " + operandString(b.Right)
}

// Not negates a condition.
type Not struct {
	source Source
	Child  Expression
}

// NewNot returns the negation of a condition.
func NewNot(source Source, child Expression) *Not {
	return &Not{source: source, Child: child}
}

func (n *Not) Source() Source         { return n.source }
func (n *Not) Children() []Expression { return []Expression{n.Child} }
func (n *Not) DataType() DataType     { return Boolean }
func (n *Not) Nullable() Nullability  { return n.Child.Nullable() }
func (n *Not) Foldable() bool         { return n.Child.Foldable() }
func (n *Not) Resolved() bool         { return n.Child.Resolved() }
func (n *Not) String() string         { return "NOT " + operandString(n.Child) }

func (n *Not) ReplaceChildren(children []Expression) Expression {
	checkChildren(n, children, 1)
	n2 := *n
	n2.Child = children[0]
	return &n2
}

// In tests whether a value is equal to any value in a list.
type In struct {
	source Source
	Value  Expression
	List   []Expression
}

// NewIn returns a new membership test.
func NewIn(source Source, value Expression, list []Expression) *In {
	return &In{source: source, Value: value, List: list}
}

func (in *In) Source() Source        { return in.source }
func (in *In) DataType() DataType    { return Boolean }
func (in *In) Nullable() Nullability { return nullableOf(in.Children()...) }
func (in *In) Foldable() bool        { return allFoldable(in.Children()...) }
func (in *In) Resolved() bool        { return allResolved(in.Children()...) }

func (in *In) Children() []Expression {
	children := make([]Expression, 0, len(in.List)+1)
	children = append(children, in.Value)
	return append(children, in.List...)
}

// ReplaceChildren returns a membership test of children[0]
// in the list of the remaining children.
func (in *In) ReplaceChildren(children []Expression) Expression {
	if len(children) == 0 {
		panic("In has at least one child, got 0")
	}
	return &In{source: in.source, Value: children[0], List: slices.Clone(children[1:])}
}

func (in *In) String() string {
	return operandString(in.Value) + " IN (" + joinExpressions(in.List, ", ") + ")"
}

// IsNull tests whether a value is null.
type IsNull struct {
	source Source
	Child  Expression
}

// NewIsNull returns a new null test.
func NewIsNull(source Source, child Expression) *IsNull {
	return &IsNull{source: source, Child: child}
}

func (n *IsNull) Source() Source         { return n.source }
func (n *IsNull) Children() []Expression { return []Expression{n.Child} }
func (n *IsNull) DataType() DataType     { return Boolean }
func (n *IsNull) Nullable() Nullability  { return NullabilityFalse }
func (n *IsNull) Foldable() bool         { return n.Child.Foldable() }
func (n *IsNull) Resolved() bool         { return n.Child.Resolved() }
func (n *IsNull) String() string         { return operandString(n.Child) + " IS NULL" }

func (n *IsNull) ReplaceChildren(children []Expression) Expression {
	checkChildren(n, children, 1)
	n2 := *n
	n2.Child = children[0]
	return &n2
}

// IsNotNull tests whether a value is not null.
type IsNotNull struct {
	source Source
	Child  Expression
}

// NewIsNotNull returns a new non-null test.
func NewIsNotNull(source Source, child Expression) *IsNotNull {
	return &IsNotNull{source: source, Child: child}
}

func (n *IsNotNull) Source() Source         { return n.source }
func (n *IsNotNull) Children() []Expression { return []Expression{n.Child} }
func (n *IsNotNull) DataType() DataType     { return Boolean }
func (n *IsNotNull) Nullable() Nullability  { return NullabilityFalse }
func (n *IsNotNull) Foldable() bool         { return n.Child.Foldable() }
func (n *IsNotNull) Resolved() bool         { return n.Child.Resolved() }
func (n *IsNotNull) String() string         { return operandString(n.Child) + " IS NOT NULL" }

func (n *IsNotNull) ReplaceChildren(children []Expression) Expression {
	checkChildren(n, children, 1)
	n2 := *n
	n2.Child = children[0]
	return &n2
}

// Like matches a string against a wildcard pattern,
// where * matches any sequence of characters
// and ? matches a single character.
// A backslash escapes the character that follows it.
type Like struct {
	source  Source
	Child   Expression
	Pattern string
	re      *regexp.Regexp
}

// NewLike returns a new wildcard match.
func NewLike(source Source, child Expression, pattern string) (*Like, error) {
	re, err := wildcardToRegexp(pattern)
	if err != nil {
		return nil, err
	}
	return &Like{source: source, Child: child, Pattern: pattern, re: re}, nil
}

func (l *Like) Source() Source         { return l.source }
func (l *Like) Children() []Expression { return []Expression{l.Child} }
func (l *Like) DataType() DataType     { return Boolean }
func (l *Like) Nullable() Nullability  { return l.Child.Nullable() }
func (l *Like) Foldable() bool         { return l.Child.Foldable() }
func (l *Like) Match(s string) bool    { return l.re.MatchString(s) }

func (l *Like) ReplaceChildren(children []Expression) Expression {
	checkChildren(l, children, 1)
	l2 := *l
	l2.Child = children[0]
	return &l2
}

func (l *Like) Resolved() bool {
	return l.Child.Resolved() && IsString(l.Child, l.source.Text, DefaultOrdinal).Resolved()
}

func (l *Like) String() string {
	return operandString(l.Child) + " LIKE " + formatValue(l.Pattern)
}

func wildcardToRegexp(pattern string) (*regexp.Regexp, error) {
	sb := new(strings.Builder)
	sb.WriteString(`(?s)\A`)
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		case '\\':
			if i+1 >= len(pattern) {
				return nil, fmt.Errorf("invalid pattern [%s]: escape character at end of pattern", pattern)
			}
			i++
			sb.WriteString(regexp.QuoteMeta(pattern[i : i+1]))
		default:
			sb.WriteString(regexp.QuoteMeta(pattern[i : i+1]))
		}
	}
	sb.WriteString(`\z`)
	return regexp.Compile(sb.String())
}

// RLike matches a string against a regular expression.
// The regular expression must match the whole string.
type RLike struct {
	source  Source
	Child   Expression
	Pattern string
	re      *regexp.Regexp
}

// NewRLike returns a new regular expression match.
func NewRLike(source Source, child Expression, pattern string) (*RLike, error) {
	re, err := regexp.Compile(`(?s)\A(?:` + pattern + `)\z`)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern for RLIKE [%s]: %v", pattern, err)
	}
	return &RLike{source: source, Child: child, Pattern: pattern, re: re}, nil
}

func (l *RLike) Source() Source         { return l.source }
func (l *RLike) Children() []Expression { return []Expression{l.Child} }
func (l *RLike) DataType() DataType     { return Boolean }
func (l *RLike) Nullable() Nullability  { return l.Child.Nullable() }
func (l *RLike) Foldable() bool         { return l.Child.Foldable() }
func (l *RLike) Match(s string) bool    { return l.re.MatchString(s) }

func (l *RLike) ReplaceChildren(children []Expression) Expression {
	checkChildren(l, children, 1)
	l2 := *l
	l2.Child = children[0]
	return &l2
}

func (l *RLike) Resolved() bool {
	return l.Child.Resolved() && IsString(l.Child, l.source.Text, DefaultOrdinal).Resolved()
}

func (l *RLike) String() string {
	return operandString(l.Child) + " RLIKE " + formatValue(l.Pattern)
}

// Cast converts a value to another type.
type Cast struct {
	source Source
	Child  Expression
	To     DataType
}

// NewCast returns a new conversion.
func NewCast(source Source, child Expression, to DataType) *Cast {
	return &Cast{source: source, Child: child, To: to}
}

func (c *Cast) Source() Source         { return c.source }
func (c *Cast) Children() []Expression { return []Expression{c.Child} }
func (c *Cast) DataType() DataType     { return c.To }
func (c *Cast) Nullable() Nullability  { return c.Child.Nullable() }
func (c *Cast) Foldable() bool         { return c.Child.Foldable() }
func (c *Cast) Resolved() bool         { return c.Child.Resolved() }
func (c *Cast) String() string         { return operandString(c.Child) + "::" + c.To.String() }

func (c *Cast) ReplaceChildren(children []Expression) Expression {
	checkChildren(c, children, 1)
	c2 := *c
	c2.Child = children[0]
	return &c2
}

// Direction is a sort direction.
type Direction int

// Sort directions.
const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "DESC"
	}
	return "ASC"
}

// NullsPosition is where nulls are placed in a sort.
type NullsPosition int

// Null positions.
const (
	NullsLast NullsPosition = iota
	NullsFirst
)

func (p NullsPosition) String() string {
	if p == NullsFirst {
		return "NULLS FIRST"
	}
	return "NULLS LAST"
}

// DefaultNullsPosition returns the position of nulls for the given direction
// when a query does not specify one:
// nulls sort as if they were larger than any other value.
func DefaultNullsPosition(d Direction) NullsPosition {
	if d == Descending {
		return NullsFirst
	}
	return NullsLast
}

// Order is a sort key.
type Order struct {
	source    Source
	Child     Expression
	Direction Direction
	Nulls     NullsPosition
}

// NewOrder returns a new sort key.
func NewOrder(source Source, child Expression, d Direction, nulls NullsPosition) *Order {
	return &Order{source: source, Child: child, Direction: d, Nulls: nulls}
}

func (o *Order) Source() Source         { return o.source }
func (o *Order) Children() []Expression { return []Expression{o.Child} }
func (o *Order) DataType() DataType     { return o.Child.DataType() }
func (o *Order) Nullable() Nullability  { return o.Child.Nullable() }
func (o *Order) Foldable() bool         { return false }
func (o *Order) Resolved() bool         { return o.Child.Resolved() }

func (o *Order) ReplaceChildren(children []Expression) Expression {
	checkChildren(o, children, 1)
	o2 := *o
	o2.Child = children[0]
	return &o2
}

func (o *Order) String() string {
	return operandString(o.Child) + " " + o.Direction.String() + " " + o.Nulls.String()
}
