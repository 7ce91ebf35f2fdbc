// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/runreveal/esql/parser"
	"github.com/runreveal/esql/querydsl"
	"github.com/stretchr/testify/require"
)

func src(text string) Source {
	return Source{Span: parser.NullSpan(), Text: text}
}

func TestFullTextFunctionResolveType(t *testing.T) {
	message := NewFieldAttribute(src("message"), "message", Text, NullabilityTrue)
	host := NewFieldAttribute(src("host"), "host", Keyword, NullabilityTrue)
	status := NewFieldAttribute(src("status"), "status", Integer, NullabilityTrue)

	tests := []struct {
		name string
		f    Expression
		want string
	}{
		{
			name: "MatchNotFoldable",
			f:    NewMatch(src("MATCH(message, host)"), message, host),
			want: "second argument of [MATCH(message, host)] must be a constant, received [host]",
		},
		{
			name: "MatchNotString",
			f:    NewMatch(src("MATCH(message, 42)"), message, NewLiteral(src("42"), int32(42), Integer)),
			want: "second argument of [MATCH(message, 42)] must be [string], found value [42] type [integer]",
		},
		{
			name: "MatchNull",
			f:    NewMatch(src("MATCH(message, null)"), message, NullLiteral(src("null"))),
			want: "second argument of [MATCH(message, null)] cannot be null, received [null]",
		},
		{
			name: "MatchFieldNotString",
			f:    NewMatch(src(`MATCH(status, "500")`), status, NewLiteral(src(`"500"`), "500", Keyword)),
			want: `first argument of [MATCH(status, "500")] must be [string], found value [status] type [integer]`,
		},
		{
			name: "MatchOK",
			f:    NewMatch(src(`MATCH(message, "refused")`), message, NewLiteral(src(`"refused"`), "refused", Keyword)),
			want: "",
		},
		{
			name: "QueryStringNotString",
			f:    NewQueryString(src("QSTR(true)"), NewLiteral(src("true"), true, Boolean)),
			want: "argument of [QSTR(true)] must be [string], found value [true] type [boolean]",
		},
		{
			name: "QueryStringOK",
			f:    NewQueryString(src(`QSTR("a:b")`), NewLiteral(src(`"a:b"`), "a:b", Keyword)),
			want: "",
		},
		{
			name: "UnresolvedChildren",
			f:    NewMatch(src(`MATCH(message, "x")`), NewUnresolvedAttribute(src("message"), "message"), NewLiteral(src(`"x"`), "x", Keyword)),
			want: "Unresolved children",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := test.f.(interface{ ResolveType() TypeResolution }).ResolveType()
			require.Equal(t, test.want, r.Message())
			require.Equal(t, test.want == "", test.f.Resolved())
			require.Equal(t, Boolean, test.f.DataType())
			require.False(t, test.f.Foldable())
		})
	}
}

func TestFullTextFunctionAsQuery(t *testing.T) {
	message := NewFieldAttribute(src("message"), "message", Text, NullabilityTrue)
	m := NewMatch(src(`MATCH(message, "refused")`), message, NewLiteral(src(`"refused"`), "refused", Keyword))
	got, err := m.AsQuery()
	require.NoError(t, err)
	if diff := cmp.Diff(querydsl.Query(&querydsl.MatchQuery{Field: "message", Text: "refused"}), got); diff != "" {
		t.Errorf("Match.AsQuery() (-want +got):\n%s", diff)
	}
	require.Equal(t, []Expression{message, m.Query()}, m.Children())

	q := NewQueryString(src(`QSTR("status:5*")`), NewLiteral(src(`"status:5*"`), "status:5*", Keyword))
	got, err = q.AsQuery()
	require.NoError(t, err)
	if diff := cmp.Diff(querydsl.Query(&querydsl.QueryStringQuery{Text: "status:5*"}), got); diff != "" {
		t.Errorf("QueryString.AsQuery() (-want +got):\n%s", diff)
	}

	bad := NewQueryString(src("QSTR(host)"), NewUnresolvedAttribute(src("host"), "host"))
	_, err = bad.AsQuery()
	require.EqualError(t, err, "argument of [QSTR(host)] must be a constant, received [host]")
}

func TestFullTextFunctions(t *testing.T) {
	tests := []struct {
		caps parser.Capabilities
		want []string
	}{
		{caps: nil, want: nil},
		{caps: parser.CapabilitySet{parser.CapabilityQstrFunction: true}, want: []string{"qstr"}},
		{caps: parser.DevCapabilities(), want: []string{"match", "qstr"}},
	}
	for _, test := range tests {
		got := FullTextFunctions(test.caps)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("FullTextFunctions(%v) (-want +got):\n%s", test.caps, diff)
		}
	}
}

func TestBinaryDateTimeFunction(t *testing.T) {
	interval := NewLiteral(src("1 hour"), time.Hour, TimeDuration)
	ts := NewFieldAttribute(src("@timestamp"), "@timestamp", Datetime, NullabilityFalse)
	f := NewDateTrunc(src("DATE_TRUNC(1 hour, @timestamp)"), interval, ts)

	require.Same(t, Expression(ts), f.TimestampField())
	require.Same(t, Expression(interval), f.Interval())
	require.Equal(t, time.UTC, f.ZoneID())
	require.Equal(t, Datetime, f.DataType())
	require.True(t, f.Resolved())
	require.True(t, Equal(f, NewDateTrunc(src("x"), interval, ts)))
	require.False(t, Equal(f, NewDateTrunc(src("x"), ts, interval)))

	swapped := NewDateTrunc(src("DATE_TRUNC(@timestamp, 1 hour)"), ts, interval)
	require.Equal(t,
		"first argument of [DATE_TRUNC(@timestamp, 1 hour)] must be [date_period or time_duration], found value [@timestamp] type [datetime]",
		swapped.ResolveType().Message())
}

func TestDateTruncFold(t *testing.T) {
	ts := time.Date(2024, time.August, 17, 13, 45, 12, 0, time.UTC)
	tests := []struct {
		interval any
		typ      DataType
		ts       time.Time
		want     time.Time
	}{
		{interval: time.Hour, typ: TimeDuration, ts: ts, want: time.Date(2024, time.August, 17, 13, 0, 0, 0, time.UTC)},
		{interval: 15 * time.Minute, typ: TimeDuration, ts: ts, want: time.Date(2024, time.August, 17, 13, 45, 0, 0, time.UTC)},
		{interval: Period{Days: 1}, typ: DatePeriod, ts: ts, want: time.Date(2024, time.August, 17, 0, 0, 0, 0, time.UTC)},
		{interval: Period{Months: 1}, typ: DatePeriod, ts: ts, want: time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC)},
		{interval: Period{Months: 3}, typ: DatePeriod, ts: ts, want: time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)},
		{interval: Period{Years: 1}, typ: DatePeriod, ts: ts, want: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)},
		// Buckets are aligned to the Unix epoch.
		{
			interval: 5 * time.Hour,
			typ:      TimeDuration,
			ts:       time.Date(1970, time.January, 1, 3, 0, 0, 0, time.UTC),
			want:     time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			interval: 5 * time.Hour,
			typ:      TimeDuration,
			ts:       time.Date(1969, time.December, 31, 23, 0, 0, 0, time.UTC),
			want:     time.Date(1969, time.December, 31, 19, 0, 0, 0, time.UTC),
		},
		{
			interval: Period{Days: 2},
			typ:      DatePeriod,
			ts:       time.Date(1969, time.December, 31, 12, 0, 0, 0, time.UTC),
			want:     time.Date(1969, time.December, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			interval: Period{Days: 2},
			typ:      DatePeriod,
			ts:       time.Date(1970, time.January, 2, 12, 0, 0, 0, time.UTC),
			want:     time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, test := range tests {
		t.Run(fmt.Sprint(test.interval, "/", test.ts.Format(time.RFC3339)), func(t *testing.T) {
			f := NewDateTrunc(src("DATE_TRUNC"), NewLiteral(EmptySource(), test.interval, test.typ), NewLiteral(EmptySource(), test.ts, Datetime))
			require.True(t, f.Foldable())
			got, err := Fold(f)
			require.NoError(t, err)
			require.Equal(t, test.want, got)
		})
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct {
		a, b, want int64
	}{
		{7, 2, 3},
		{-7, 2, -4},
		{-8, 2, -4},
		{0, 5, 0},
		{-1, 5, -1},
	}
	for _, test := range tests {
		if got := floorDiv(test.a, test.b); got != test.want {
			t.Errorf("floorDiv(%d, %d) = %d; want %d", test.a, test.b, got, test.want)
		}
	}
}

func TestDateExtractFold(t *testing.T) {
	ts := NewLiteral(EmptySource(), time.Date(2024, time.August, 18, 13, 45, 12, 0, time.UTC), Datetime)
	tests := []struct {
		part string
		want int64
	}{
		{"year", 2024},
		{"MONTH_OF_YEAR", 8},
		{"hour_of_day", 13},
		{"day_of_week", 7},
	}
	for _, test := range tests {
		f := NewDateExtract(src("DATE_EXTRACT"), NewLiteral(EmptySource(), test.part, Keyword), ts)
		require.Equal(t, Long, f.DataType())
		require.Same(t, Expression(ts), f.TimestampField())
		got, err := Fold(f)
		require.NoError(t, err)
		require.Equal(t, test.want, got, test.part)
	}

	bad := NewDateExtract(src(`DATE_EXTRACT("fortnight", x)`), NewLiteral(EmptySource(), "fortnight", Keyword), ts)
	require.Equal(t, `first argument of [DATE_EXTRACT("fortnight", x)] has invalid value [fortnight]`, bad.ResolveType().Message())
}

func TestReplaceChildren(t *testing.T) {
	a := NewUnresolvedAttribute(src("a"), "a")
	b := NewUnresolvedAttribute(src("b"), "b")
	one := NewLiteral(src("1"), int32(1), Integer)
	like, err := NewLike(src("a LIKE \"x*\""), a, "x*")
	require.NoError(t, err)
	rlike, err := NewRLike(src("a RLIKE \"x.*\""), a, "x.*")
	require.NoError(t, err)

	tests := []struct {
		e    Expression
		want string
	}{
		{NewArithmetic(src("a + b"), OpAdd, a, b), "?c0 + ?c1"},
		{NewComparison(src("a == b"), OpEq, a, b), "?c0 == ?c1"},
		{NewInsensitiveEquals(src("a =~ b"), a, b), "?c0 =~ ?c1"},
		{NewAnd(src("a AND b"), a, b), "?c0 AND ?c1"},
		{NewNeg(src("-a"), a), "-?c0"},
		{NewNot(src("NOT a"), a), "NOT ?c0"},
		{NewIn(src("a IN (1, b)"), a, []Expression{one, b}), "?c0 IN (?c1, ?c2)"},
		{NewIsNull(src("a IS NULL"), a), "?c0 IS NULL"},
		{NewIsNotNull(src("a IS NOT NULL"), a), "?c0 IS NOT NULL"},
		{like, `?c0 LIKE "x*"`},
		{rlike, `?c0 RLIKE "x.*"`},
		{NewCast(src("a::integer"), a, Integer), "?c0::integer"},
		{NewOrder(src("a"), a, Ascending, NullsLast), "?c0 ASC NULLS LAST"},
		{NewAlias(src("x = a"), "x", a), "?c0 AS x"},
		{NewUnresolvedFunction(src("count(a, b)"), "count", []Expression{a, b}), "?count(?c0, ?c1)"},
		{NewMatch(src("MATCH(a, b)"), a, b), "MATCH(?c0, ?c1)"},
		{NewQueryString(src("QSTR(a)"), a), "QSTR(?c0)"},
		{NewDateTrunc(src("DATE_TRUNC(a, b)"), a, b), "DATE_TRUNC(?c0, ?c1)"},
		{NewDateExtract(src("DATE_EXTRACT(a, b)"), a, b), "DATE_EXTRACT(?c0, ?c1)"},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%T", test.e), func(t *testing.T) {
			before := test.e.String()
			children := make([]Expression, len(test.e.Children()))
			for i := range children {
				children[i] = NewUnresolvedAttribute(src(""), fmt.Sprintf("c%d", i))
			}
			got := test.e.ReplaceChildren(children)
			require.IsType(t, test.e, got)
			require.NotSame(t, test.e, got)
			require.Equal(t, test.want, got.String())
			require.Equal(t, test.e.Source(), got.Source())
			require.Equal(t, before, test.e.String())
			if named, ok := test.e.(NamedExpression); ok {
				require.Equal(t, named.ID(), got.(NamedExpression).ID())
			}
			switch test.e.(type) {
			case *UnresolvedFunction, *In:
			default:
				require.Panics(t, func() { test.e.ReplaceChildren(append(children, one)) })
			}
		})
	}

	for _, leaf := range []Expression{a, one, NewUnresolvedStar(src("*")), NewFieldAttribute(src("f"), "f", Keyword, NullabilityFalse)} {
		require.Same(t, leaf, leaf.ReplaceChildren(nil))
		require.Panics(t, func() { leaf.ReplaceChildren([]Expression{b}) })
	}
}

func TestTransform(t *testing.T) {
	a := NewUnresolvedAttribute(src("a"), "a")
	b := NewUnresolvedAttribute(src("b"), "b")
	cond := NewAnd(src("a > 1 AND NOT b"),
		NewComparison(src("a > 1"), OpGt, a, NewLiteral(src("1"), int32(1), Integer)),
		NewNot(src("NOT b"), b))

	got := Transform(cond, func(e Expression) Expression {
		if attr, ok := e.(*UnresolvedAttribute); ok && attr.Name() == "b" {
			return NewUnresolvedAttribute(attr.Source(), "c")
		}
		return e
	})
	require.Equal(t, "(?a > 1) AND NOT ?c", got.String())
	require.Equal(t, "(?a > 1) AND NOT ?b", cond.String())
	// The unchanged branch is shared.
	require.Same(t, cond.Left, got.(*BinaryLogic).Left)

	require.Same(t, cond, Transform(cond, func(e Expression) Expression { return e }))
}

func TestString(t *testing.T) {
	a := NewUnresolvedAttribute(src("a"), "a")
	b := NewUnresolvedAttribute(src("b"), "b")
	one := NewLiteral(src("1"), int32(1), Integer)
	two := NewLiteral(src("2"), int32(2), Integer)
	like, err := NewLike(src(""), a, "foo*")
	require.NoError(t, err)

	tests := []struct {
		e    Expression
		want string
	}{
		{e: a, want: "?a"},
		{e: NewArithmetic(src(""), OpAdd, one, NewArithmetic(src(""), OpMul, two, a)), want: "1 + (2 * ?a)"},
		{e: NewOr(src(""), a, NewAnd(src(""), b, a)), want: "?a OR (?b AND ?a)"},
		{e: NewNot(src(""), NewComparison(src(""), OpGte, a, one)), want: "NOT (?a >= 1)"},
		{e: NewIn(src(""), a, []Expression{one, two}), want: "?a IN (1, 2)"},
		{e: NewIsNotNull(src(""), a), want: "?a IS NOT NULL"},
		{e: like, want: `?a LIKE "foo*"`},
		{e: NewCast(src(""), a, Long), want: "?a::long"},
		{e: NewAlias(src(""), "x", NewNeg(src(""), a)), want: "-?a AS x"},
		{e: NewUnresolvedFunction(src(""), "COUNT", []Expression{NewUnresolvedStar(src(""))}), want: "?COUNT(*)"},
		{e: NewOrder(src(""), a, Descending, DefaultNullsPosition(Descending)), want: "?a DESC NULLS FIRST"},
		{e: NewLiteral(src(""), []any{"x", "y"}, Keyword), want: `["x", "y"]`},
		{e: NewLiteral(src(""), Period{Years: 1, Days: 2}, DatePeriod), want: "P1Y2D"},
		{e: NullLiteral(src("")), want: "null"},
	}
	for _, test := range tests {
		if got := test.e.String(); got != test.want {
			t.Errorf("String() = %q; want %q", got, test.want)
		}
	}
}

func TestArithmeticDataType(t *testing.T) {
	lit := func(v any, typ DataType) Expression { return NewLiteral(EmptySource(), v, typ) }
	tests := []struct {
		op          ArithmeticOp
		left, right Expression
		want        DataType
	}{
		{OpAdd, lit(int32(1), Integer), lit(int64(2), Long), Long},
		{OpMul, lit(int32(1), Integer), lit(2.5, Double), Double},
		{OpAdd, lit(time.Time{}, Datetime), lit(time.Hour, TimeDuration), Datetime},
		{OpSub, lit(time.Time{}, Datetime), lit(Period{Days: 1}, DatePeriod), Datetime},
		{OpMul, lit(time.Time{}, Datetime), lit(time.Hour, TimeDuration), Unsupported},
		{OpAdd, lit("a", Keyword), lit(int32(1), Integer), Unsupported},
	}
	for _, test := range tests {
		a := NewArithmetic(EmptySource(), test.op, test.left, test.right)
		if got := a.DataType(); got != test.want {
			t.Errorf("(%v).DataType() = %v; want %v", a, got, test.want)
		}
	}
}

func TestLike(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
	}{
		{`foo*`, "foobar", true},
		{`foo*`, "barfoo", false},
		{`f?o`, "fxo", true},
		{`a.b`, "axb", false},
		{`a\*`, "a*", true},
		{`a\*`, "ab", false},
	}
	for _, test := range tests {
		like, err := NewLike(EmptySource(), NewUnresolvedAttribute(EmptySource(), "x"), test.pattern)
		require.NoError(t, err)
		if got := like.Match(test.input); got != test.want {
			t.Errorf("LIKE %q matches %q = %t; want %t", test.pattern, test.input, got, test.want)
		}
	}

	_, err := NewLike(EmptySource(), NewUnresolvedAttribute(EmptySource(), "x"), `abc\`)
	require.Error(t, err)
	_, err = NewRLike(EmptySource(), NewUnresolvedAttribute(EmptySource(), "x"), `(`)
	require.Error(t, err)
}

func TestUnresolvedNamePattern(t *testing.T) {
	p := NewUnresolvedNamePattern(EmptySource(), regexp.MustCompile(`\Afirst.*\z`), "first*")
	require.True(t, p.Match("first_name"))
	require.False(t, p.Match("last_name"))
	require.Equal(t, "?first*", p.String())
}

func TestAttributeIdentity(t *testing.T) {
	f := NewFieldAttribute(EmptySource(), "a", Keyword, NullabilityFalse)
	ref := f.ToReference()
	require.Equal(t, f.ID(), ref.ID())
	require.Equal(t, fmt.Sprintf("a{r}#%d", f.ID()), ref.String())

	nullable := f.WithNullability(NullabilityTrue)
	require.Equal(t, f.ID(), nullable.ID())
	require.Equal(t, NullabilityTrue, nullable.Nullable())
	require.Equal(t, NullabilityFalse, f.Nullable())

	alias := NewAlias(EmptySource(), "x", NewLiteral(EmptySource(), int32(1), Integer))
	attr := alias.ToAttribute()
	require.Equal(t, alias.ID(), attr.ID())
	require.Equal(t, Integer, attr.DataType())
	require.NotEqual(t, NewFieldAttribute(EmptySource(), "a", Keyword, NullabilityFalse).ID(), f.ID())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Lookup("match")
	require.Error(t, err)
	_, err = r.Lookup("cont")
	require.EqualError(t, err, "Unknown function [cont], did you mean [count]?")
	_, err = r.Lookup("to_lowr")
	require.EqualError(t, err, "Unknown function [to_lowr], did you mean [to_lower]?")
	_, err = r.Lookup("frobnicate")
	require.EqualError(t, err, "Unknown function [frobnicate]")

	def, err := r.Lookup("TO_STR")
	require.NoError(t, err)
	require.Equal(t, "to_string", def.Name)

	_, err = r.Build(EmptySource(), "abs", nil)
	require.EqualError(t, err, "error building [abs]: expects exactly one argument, received 0")
	_, err = r.Build(EmptySource(), "concat", []Expression{NewUnresolvedStar(EmptySource())})
	require.EqualError(t, err, "error building [concat]: expects at least 2 arguments, received 1")

	e, err := r.Build(EmptySource(), "COUNT", []Expression{NewUnresolvedStar(EmptySource())})
	require.NoError(t, err)
	require.True(t, r.IsAggregate(e))
	require.Equal(t, "?COUNT(*)", e.String())

	dev := NewRegistry(parser.DevCapabilities())
	require.Contains(t, dev.Names(), "match")
	require.Contains(t, dev.Names(), "qstr")
	require.NotContains(t, r.Names(), "qstr")

	e, err = dev.Build(src(`MATCH(msg, "x")`), "match", []Expression{
		NewUnresolvedAttribute(EmptySource(), "msg"),
		NewLiteral(EmptySource(), "x", Keyword),
	})
	require.NoError(t, err)
	require.IsType(t, (*Match)(nil), e)

	_, err = dev.Build(src("QSTR(msg)"), "qstr", []Expression{NewUnresolvedAttribute(src("msg"), "msg")})
	require.EqualError(t, err, "argument of [QSTR(msg)] must be a constant, received [msg]")
}
