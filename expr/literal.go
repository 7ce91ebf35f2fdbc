// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Literal is a constant value.
//
// Value holds a Go value that depends on the data type:
// nil for [Null], bool for [Boolean], int32 for [Integer], int64 for [Long],
// uint64 for [UnsignedLong], float64 for [Double], string for [Keyword],
// [time.Time] for [Datetime], [Period] for [DatePeriod],
// and [time.Duration] for [TimeDuration].
// A multi-valued literal holds a []any of element values.
type Literal struct {
	source Source
	Value  any
	Type   DataType
}

// NewLiteral returns a new literal.
func NewLiteral(source Source, value any, typ DataType) *Literal {
	return &Literal{source: source, Value: value, Type: typ}
}

// NullLiteral returns a literal null.
func NullLiteral(source Source) *Literal {
	return &Literal{source: source, Type: Null}
}

func (lit *Literal) Source() Source          { return lit.source }
func (lit *Literal) Children() []Expression  { return nil }
func (lit *Literal) DataType() DataType      { return lit.Type }
func (lit *Literal) Foldable() bool          { return true }
func (lit *Literal) Resolved() bool          { return true }
func (lit *Literal) IsNull() bool            { return lit.Value == nil }
func (lit *Literal) Equal(e Expression) bool { return literalEqual(lit, e) }

func (lit *Literal) Nullable() Nullability {
	if lit.Value == nil {
		return NullabilityTrue
	}
	return NullabilityFalse
}

func (lit *Literal) ReplaceChildren(children []Expression) Expression {
	checkChildren(lit, children, 0)
	return lit
}

func literalEqual(lit *Literal, e Expression) bool {
	other, ok := e.(*Literal)
	return ok && lit.Type == other.Type && lit.String() == other.String()
}

func (lit *Literal) String() string {
	return formatValue(lit.Value)
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case []any:
		parts := make([]string, 0, len(v))
		for _, elem := range v {
			parts = append(parts, formatValue(elem))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}

// Fold computes the value of a foldable expression.
func Fold(e Expression) (any, error) {
	if !e.Foldable() {
		return nil, fmt.Errorf("%v is not a constant", e)
	}
	switch e := e.(type) {
	case *Literal:
		return e.Value, nil
	case interface{ Fold() (any, error) }:
		return e.Fold()
	default:
		return nil, fmt.Errorf("cannot fold %v", e)
	}
}

// FoldString returns the value of a foldable string expression.
func FoldString(e Expression) (string, bool) {
	v, err := Fold(e)
	if err != nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
