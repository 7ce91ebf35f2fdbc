// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package esql

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/runreveal/esql/expr"
	"github.com/runreveal/esql/parser"
)

// expression converts a parse tree expression into an expression tree.
func (b *builder) expression(x parser.BooleanExpr) (expr.Expression, error) {
	switch x := x.(type) {
	case *parser.LogicalNot:
		child, err := b.expression(x.X)
		if err != nil {
			return nil, err
		}
		return expr.NewNot(b.source(x), child), nil
	case *parser.LogicalBinary:
		left, err := b.expression(x.X)
		if err != nil {
			return nil, err
		}
		right, err := b.expression(x.Y)
		if err != nil {
			return nil, err
		}
		if x.Op == parser.TokenOr {
			return expr.NewOr(b.source(x), left, right), nil
		}
		return expr.NewAnd(b.source(x), left, right), nil
	case *parser.LogicalIn:
		value, err := b.expression(x.X)
		if err != nil {
			return nil, err
		}
		list := make([]expr.Expression, 0, len(x.Vals))
		for _, v := range x.Vals {
			e, err := b.expression(v)
			if err != nil {
				return nil, err
			}
			list = append(list, e)
		}
		in := expr.NewIn(b.source(x), value, list)
		if x.Negated() {
			return expr.NewNot(b.source(x), in), nil
		}
		return in, nil
	case *parser.IsNull:
		child, err := b.expression(x.X)
		if err != nil {
			return nil, err
		}
		if x.Negated() {
			return expr.NewIsNotNull(b.source(x), child), nil
		}
		return expr.NewIsNull(b.source(x), child), nil
	case *parser.RegexMatch:
		return b.regexMatch(x)
	case *parser.MatchPredicate:
		field, err := b.expression(x.X)
		if err != nil {
			return nil, err
		}
		query, err := b.stringLiteral(x.Query)
		if err != nil {
			return nil, err
		}
		m := expr.NewMatch(b.source(x), field, query)
		if err := m.ResolveQuery().Err(); err != nil {
			return nil, b.error(x.Query.Span(), err)
		}
		return m, nil
	case *parser.Comparison:
		return b.comparison(x)
	case *parser.ArithmeticUnary:
		child, err := b.expression(x.X)
		if err != nil {
			return nil, err
		}
		if x.Op == parser.TokenMinus {
			return expr.NewNeg(b.source(x), child), nil
		}
		return child, nil
	case *parser.ArithmeticBinary:
		return b.arithmetic(x)
	case *parser.ParenExpr:
		return b.expression(x.X)
	case *parser.InlineCast:
		child, err := b.expression(x.X)
		if err != nil {
			return nil, err
		}
		typeName, err := b.identifier(x.Type)
		if err != nil {
			return nil, err
		}
		to, ok := expr.DataTypeByName(typeName)
		if !ok {
			return nil, b.errorf(x.Type.Span(), "Unsupported conversion to type [%s]", typeName)
		}
		return expr.NewCast(b.source(x), child, to), nil
	case *parser.FunctionCall:
		return b.functionCall(x)
	case *parser.QualifiedName:
		return b.attribute(x)
	case *parser.Param:
		p, err := b.param(x)
		if err != nil {
			return nil, err
		}
		switch p.Kind {
		case ParamIdentifier:
			return expr.NewUnresolvedAttribute(b.source(x), p.Value.(string)), nil
		case ParamPattern:
			return nil, b.error(x.Span(), paramErrorf(ErrParamPatternAsIdentifier,
				"Query parameter [?%s][%v] declared as a pattern, cannot be used as an identifier", x.Name, p.Value))
		default:
			return expr.NewLiteral(b.source(x), p.Value, p.Type), nil
		}
	case parser.Constant:
		return b.constant(x)
	default:
		return nil, b.errorf(x.Span(), "unsupported expression %T", x)
	}
}

func (b *builder) regexMatch(x *parser.RegexMatch) (expr.Expression, error) {
	child, err := b.expression(x.X)
	if err != nil {
		return nil, err
	}
	pattern, err := unquoteString(x.Pattern.Raw)
	if err != nil {
		return nil, b.error(x.Pattern.Span(), err)
	}
	var e expr.Expression
	if x.Op == parser.TokenRLike {
		e, err = expr.NewRLike(b.source(x), child, pattern)
	} else {
		e, err = expr.NewLike(b.source(x), child, pattern)
	}
	if err != nil {
		return nil, b.error(x.Pattern.Span(), err)
	}
	if x.Negated() {
		return expr.NewNot(b.source(x), e), nil
	}
	return e, nil
}

var comparisonOps = map[parser.TokenKind]expr.ComparisonOp{
	parser.TokenEq: expr.OpEq,
	parser.TokenNE: expr.OpNeq,
	parser.TokenLT: expr.OpLt,
	parser.TokenLE: expr.OpLte,
	parser.TokenGT: expr.OpGt,
	parser.TokenGE: expr.OpGte,
}

func (b *builder) comparison(x *parser.Comparison) (expr.Expression, error) {
	left, err := b.expression(x.X)
	if err != nil {
		return nil, err
	}
	right, err := b.expression(x.Y)
	if err != nil {
		return nil, err
	}
	if x.Op == parser.TokenCaseInsensitiveEq {
		return expr.NewInsensitiveEquals(b.source(x), left, right), nil
	}
	op, ok := comparisonOps[x.Op]
	if !ok {
		return nil, b.errorf(x.OpSpan, "unknown comparison operator %v", x.Op)
	}
	return expr.NewComparison(b.source(x), op, left, right), nil
}

var arithmeticOps = map[parser.TokenKind]expr.ArithmeticOp{
	parser.TokenPlus:  expr.OpAdd,
	parser.TokenMinus: expr.OpSub,
	parser.TokenStar:  expr.OpMul,
	parser.TokenSlash: expr.OpDiv,
	parser.TokenMod:   expr.OpMod,
}

func (b *builder) arithmetic(x *parser.ArithmeticBinary) (expr.Expression, error) {
	left, err := b.expression(x.X)
	if err != nil {
		return nil, err
	}
	right, err := b.expression(x.Y)
	if err != nil {
		return nil, err
	}
	op, ok := arithmeticOps[x.Op]
	if !ok {
		return nil, b.errorf(x.OpSpan, "unknown arithmetic operator %v", x.Op)
	}
	return expr.NewArithmetic(b.source(x), op, left, right), nil
}

func (b *builder) functionCall(call *parser.FunctionCall) (expr.Expression, error) {
	name, err := b.identifier(call.Name)
	if err != nil {
		return nil, err
	}
	var args []expr.Expression
	if call.Star.IsValid() {
		args = append(args, expr.NewUnresolvedStar(expr.NewSource(b.query, call.Star)))
	}
	for _, arg := range call.Args {
		e, err := b.expression(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, e)
	}
	f, err := b.funcs.Build(b.source(call), name, args)
	if err != nil {
		return nil, b.error(call.Span(), err)
	}
	return f, nil
}

// constant converts a literal into a constant expression.
func (b *builder) constant(c parser.Constant) (*expr.Literal, error) {
	source := b.source(c)
	switch c := c.(type) {
	case *parser.NullLit:
		return expr.NullLiteral(source), nil
	case *parser.BoolLit:
		return expr.NewLiteral(source, c.Value, expr.Boolean), nil
	case *parser.NumberLit:
		v, typ, err := numberValue(c)
		if err != nil {
			return nil, b.error(c.Span(), err)
		}
		return expr.NewLiteral(source, v, typ), nil
	case *parser.QualifiedIntegerLit:
		v, typ, err := b.temporalAmount(c)
		if err != nil {
			return nil, err
		}
		return expr.NewLiteral(source, v, typ), nil
	case *parser.StringLit:
		return b.stringLiteral(c)
	case *parser.ArrayLit:
		return b.arrayLiteral(c)
	case *parser.Param:
		p, err := b.param(c)
		if err != nil {
			return nil, err
		}
		if p.Kind != ParamConstant {
			return nil, b.errorf(c.Span(), "Query parameter [?%s] declared as %s [%v], expected a constant", c.Name, aOrAn(p.Kind.String()), p.Value)
		}
		return expr.NewLiteral(source, p.Value, p.Type), nil
	default:
		return nil, b.errorf(c.Span(), "unsupported constant %T", c)
	}
}

func aOrAn(noun string) string {
	if strings.ContainsRune("aeiou", rune(noun[0])) {
		return "an " + noun
	}
	return "a " + noun
}

func (b *builder) stringLiteral(lit *parser.StringLit) (*expr.Literal, error) {
	s, err := unquoteString(lit.Raw)
	if err != nil {
		return nil, b.error(lit.Span(), err)
	}
	return expr.NewLiteral(b.source(lit), s, expr.Keyword), nil
}

func (b *builder) arrayLiteral(lit *parser.ArrayLit) (*expr.Literal, error) {
	values := make([]any, 0, len(lit.Elems))
	typ := expr.Null
	for _, elem := range lit.Elems {
		e, err := b.constant(elem)
		if err != nil {
			return nil, err
		}
		switch {
		case typ == expr.Null:
			typ = e.Type
		case typ.IsNumeric() && e.Type.IsNumeric():
			typ = widenNumeric(typ, e.Type)
		}
		values = append(values, e.Value)
	}
	if typ.IsNumeric() {
		for i, v := range values {
			values[i] = convertNumber(v, typ)
		}
	}
	return expr.NewLiteral(b.source(lit), values, typ), nil
}

func widenNumeric(a, b expr.DataType) expr.DataType {
	switch {
	case a == expr.Double || b == expr.Double:
		return expr.Double
	case a == expr.UnsignedLong || b == expr.UnsignedLong:
		return expr.UnsignedLong
	case a == expr.Long || b == expr.Long:
		return expr.Long
	default:
		return expr.Integer
	}
}

func convertNumber(v any, to expr.DataType) any {
	switch to {
	case expr.Long:
		if i, ok := v.(int32); ok {
			return int64(i)
		}
	case expr.UnsignedLong:
		switch v := v.(type) {
		case int32:
			return uint64(v)
		case int64:
			return uint64(v)
		}
	case expr.Double:
		switch v := v.(type) {
		case int32:
			return float64(v)
		case int64:
			return float64(v)
		case uint64:
			return float64(v)
		}
	}
	return v
}

// numberValue returns the value and type of a numeric literal.
func numberValue(lit *parser.NumberLit) (any, expr.DataType, error) {
	text := lit.Text()
	if lit.Kind == parser.TokenDecimal {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsInf(f, 0) {
			return nil, expr.Unsupported, fmt.Errorf("Number [%s] is too large", text)
		}
		return f, expr.Double, nil
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		if math.MinInt32 <= i && i <= math.MaxInt32 {
			return int32(i), expr.Integer, nil
		}
		return i, expr.Long, nil
	}
	if u, err := strconv.ParseUint(text, 10, 64); err == nil {
		return u, expr.UnsignedLong, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) {
		return nil, expr.Unsupported, fmt.Errorf("Number [%s] is too large", text)
	}
	return f, expr.Double, nil
}

// temporalUnits maps the unit of a qualified integer to a constructor
// for its value and type.
var temporalUnits = map[string]func(n int) (any, expr.DataType){
	"millisecond": duration(time.Millisecond),
	"ms":          duration(time.Millisecond),
	"second":      duration(time.Second),
	"sec":         duration(time.Second),
	"s":           duration(time.Second),
	"minute":      duration(time.Minute),
	"min":         duration(time.Minute),
	"hour":        duration(time.Hour),
	"h":           duration(time.Hour),
	"day":         period(func(n int) expr.Period { return expr.Period{Days: n} }),
	"d":           period(func(n int) expr.Period { return expr.Period{Days: n} }),
	"week":        period(func(n int) expr.Period { return expr.Period{Days: 7 * n} }),
	"w":           period(func(n int) expr.Period { return expr.Period{Days: 7 * n} }),
	"month":       period(func(n int) expr.Period { return expr.Period{Months: n} }),
	"mo":          period(func(n int) expr.Period { return expr.Period{Months: n} }),
	"quarter":     period(func(n int) expr.Period { return expr.Period{Months: 3 * n} }),
	"q":           period(func(n int) expr.Period { return expr.Period{Months: 3 * n} }),
	"year":        period(func(n int) expr.Period { return expr.Period{Years: n} }),
	"yr":          period(func(n int) expr.Period { return expr.Period{Years: n} }),
	"y":           period(func(n int) expr.Period { return expr.Period{Years: n} }),
}

func duration(unit time.Duration) func(n int) (any, expr.DataType) {
	return func(n int) (any, expr.DataType) {
		return time.Duration(n) * unit, expr.TimeDuration
	}
}

func period(f func(n int) expr.Period) func(n int) (any, expr.DataType) {
	return func(n int) (any, expr.DataType) {
		return f(n), expr.DatePeriod
	}
}

// temporalAmount returns the value of a literal like "1 day".
func (b *builder) temporalAmount(lit *parser.QualifiedIntegerLit) (any, expr.DataType, error) {
	unit, err := b.identifier(lit.Unit)
	if err != nil {
		return nil, expr.Unsupported, err
	}
	text := lit.Number.Text()
	n, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		return nil, expr.Unsupported, b.errorf(lit.Number.Span(), "Number [%s] is too large for a time interval", text)
	}
	key := strings.ToLower(unit)
	f := temporalUnits[key]
	if f == nil {
		// Plural forms, like "days".
		f = temporalUnits[strings.TrimSuffix(key, "s")]
		if len(strings.TrimSuffix(key, "s")) <= 2 {
			f = nil
		}
	}
	if f == nil {
		return nil, expr.Unsupported, b.errorf(lit.Unit.Span(), "Unexpected time interval qualifier: '%s'", unit)
	}
	v, typ := f(int(n))
	return v, typ, nil
}
