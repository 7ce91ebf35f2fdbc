// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParse(t *testing.T) {
	tests := []struct {
		query string
		want  *Query
	}{
		{
			query: "FROM logs-*",
			want: &Query{
				Source: &FromCommand{
					Keyword: newSpan(0, 4),
					Patterns: []*IndexPattern{
						{
							Index: &SourceName{Text: "logs-*", TextSpan: newSpan(5, 11)},
							Colon: nullSpan(),
						},
					},
				},
			},
		},
		{
			query: `FROM c1:idx*, "idx2" METADATA _id`,
			want: &Query{
				Source: &FromCommand{
					Keyword: newSpan(0, 4),
					Patterns: []*IndexPattern{
						{
							Cluster: &SourceName{Text: "c1", TextSpan: newSpan(5, 7)},
							Colon:   newSpan(7, 8),
							Index:   &SourceName{Text: "idx*", TextSpan: newSpan(8, 12)},
						},
						{
							Index: &SourceName{Text: `"idx2"`, TextSpan: newSpan(14, 20), Quoted: true},
							Colon: nullSpan(),
						},
					},
					Metadata: &MetadataOption{
						Lbracket: nullSpan(),
						Keyword:  newSpan(21, 29),
						Fields: []*SourceName{
							{Text: "_id", TextSpan: newSpan(30, 33)},
						},
						Rbracket: nullSpan(),
					},
				},
			},
		},
		{
			query: "FROM logs-* | WHERE status >= 400 AND status < 500 | STATS count = COUNT(*) BY status",
			want: &Query{
				Source: &FromCommand{
					Keyword: newSpan(0, 4),
					Patterns: []*IndexPattern{
						{
							Index: &SourceName{Text: "logs-*", TextSpan: newSpan(5, 11)},
							Colon: nullSpan(),
						},
					},
				},
				Commands: []ProcessingCommand{
					&WhereCommand{
						Pipe:    newSpan(12, 13),
						Keyword: newSpan(14, 19),
						Condition: &LogicalBinary{
							X: &Comparison{
								X: &QualifiedName{Parts: []IdentOrParam{
									&Ident{Name: "status", NameSpan: newSpan(20, 26)},
								}},
								OpSpan: newSpan(27, 29),
								Op:     TokenGE,
								Y: &NumberLit{
									Kind:      TokenInteger,
									Value:     "400",
									ValueSpan: newSpan(30, 33),
									SignSpan:  nullSpan(),
								},
							},
							OpSpan: newSpan(34, 37),
							Op:     TokenAnd,
							Y: &Comparison{
								X: &QualifiedName{Parts: []IdentOrParam{
									&Ident{Name: "status", NameSpan: newSpan(38, 44)},
								}},
								OpSpan: newSpan(45, 46),
								Op:     TokenLT,
								Y: &NumberLit{
									Kind:      TokenInteger,
									Value:     "500",
									ValueSpan: newSpan(47, 50),
									SignSpan:  nullSpan(),
								},
							},
						},
					},
					&StatsCommand{
						Pipe:    newSpan(51, 52),
						Keyword: newSpan(53, 58),
						Stats: []*Field{
							{
								Name: &QualifiedName{Parts: []IdentOrParam{
									&Ident{Name: "count", NameSpan: newSpan(59, 64)},
								}},
								Assign: newSpan(65, 66),
								X: &FunctionCall{
									Name:   &Ident{Name: "COUNT", NameSpan: newSpan(67, 72)},
									Lparen: newSpan(72, 73),
									Star:   newSpan(73, 74),
									Rparen: newSpan(74, 75),
								},
							},
						},
						By: newSpan(76, 78),
						Grouping: []*Field{
							{
								X: &QualifiedName{Parts: []IdentOrParam{
									&Ident{Name: "status", NameSpan: newSpan(79, 85)},
								}},
								Assign: nullSpan(),
							},
						},
					},
				},
			},
		},
		{
			query: "FROM a | STATS",
			want: &Query{
				Source: &FromCommand{
					Keyword: newSpan(0, 4),
					Patterns: []*IndexPattern{
						{
							Index: &SourceName{Text: "a", TextSpan: newSpan(5, 6)},
							Colon: nullSpan(),
						},
					},
				},
				Commands: []ProcessingCommand{
					&StatsCommand{
						Pipe:    newSpan(7, 8),
						Keyword: newSpan(9, 14),
						By:      nullSpan(),
					},
				},
			},
		},
		{
			query: "ROW `a``b` = -1",
			want: &Query{
				Source: &RowCommand{
					Keyword: newSpan(0, 3),
					Fields: []*Field{
						{
							Name: &QualifiedName{Parts: []IdentOrParam{
								&Ident{Name: "`a``b`", NameSpan: newSpan(4, 10), Quoted: true},
							}},
							Assign: newSpan(11, 12),
							X: &NumberLit{
								Sign:      TokenMinus,
								SignSpan:  newSpan(13, 14),
								Kind:      TokenInteger,
								Value:     "1",
								ValueSpan: newSpan(14, 15),
							},
						},
					},
				},
			},
		},
		{
			query: "FROM a | RENAME b AS c | DROP d*",
			want: &Query{
				Source: &FromCommand{
					Keyword: newSpan(0, 4),
					Patterns: []*IndexPattern{
						{
							Index: &SourceName{Text: "a", TextSpan: newSpan(5, 6)},
							Colon: nullSpan(),
						},
					},
				},
				Commands: []ProcessingCommand{
					&RenameCommand{
						Pipe:    newSpan(7, 8),
						Keyword: newSpan(9, 15),
						Clauses: []*RenameClause{
							{
								Old: &QualifiedNamePattern{Parts: []PatternOrParam{
									&IdentPattern{Text: "b", TextSpan: newSpan(16, 17)},
								}},
								As: newSpan(18, 20),
								New: &QualifiedNamePattern{Parts: []PatternOrParam{
									&IdentPattern{Text: "c", TextSpan: newSpan(21, 22)},
								}},
							},
						},
					},
					&DropCommand{
						Pipe:    newSpan(23, 24),
						Keyword: newSpan(25, 29),
						Patterns: []*QualifiedNamePattern{
							{Parts: []PatternOrParam{
								&IdentPattern{Text: "d*", TextSpan: newSpan(30, 32)},
							}},
						},
					},
				},
			},
		},
		{
			query: "SHOW INFO",
			want: &Query{
				Source: &ShowCommand{Keyword: newSpan(0, 4), Info: newSpan(5, 9)},
			},
		},
	}
	for _, test := range tests {
		got, err := Parse(test.query, nil)
		if err != nil {
			t.Errorf("Parse(%q, nil): %v", test.query, err)
			continue
		}
		if diff := cmp.Diff(test.want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("Parse(%q, nil) (-want +got):\n%s", test.query, diff)
		}
		if got, want := got.Span(), newSpan(0, len(test.query)); got != want {
			t.Errorf("Parse(%q, nil).Span() = %v; want %v", test.query, got, want)
		}
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{expr: "a OR b AND c", want: "(a OR (b AND c))"},
		{expr: "a AND b OR c", want: "((a AND b) OR c)"},
		{expr: "a OR b OR c", want: "((a OR b) OR c)"},
		{expr: "NOT a AND b", want: "((NOT a) AND b)"},
		{expr: "NOT a == 1", want: "(NOT (a == 1))"},
		{expr: "NOT NOT a", want: "(NOT (NOT a))"},
		{expr: "(a OR b) AND c", want: "((a OR b) AND c)"},
		{expr: "1 + 2 * 3", want: "(1 + (2 * 3))"},
		{expr: "1 * 2 + 3", want: "((1 * 2) + 3)"},
		{expr: "1 - 2 - 3", want: "((1 - 2) - 3)"},
		{expr: "8 / 4 % 3", want: "((8 / 4) % 3)"},
		{expr: "-a * b", want: "((-a) * b)"},
		{expr: "-2 * 3", want: "(-2 * 3)"},
		{expr: "a - -1", want: "(a - -1)"},
		{expr: "--a", want: "(-(-a))"},
		{expr: "a + b > c * 2", want: "((a + b) > (c * 2))"},
		{expr: "x::long + 1", want: "((x::long) + 1)"},
		{expr: "x::long::string", want: "((x::long)::string)"},
		{expr: "a NOT IN (1, 2)", want: "(a NOT IN (1, 2))"},
		{expr: "a + 1 IN (b)", want: "((a + 1) IN (b))"},
		{expr: "a IS NOT NULL OR b IS NULL", want: "((a IS NOT NULL) OR (b IS NULL))"},
		{expr: `a NOT LIKE "x*"`, want: `(a NOT LIKE "x*")`},
		{expr: `a RLIKE "x.*" AND b`, want: `((a RLIKE "x.*") AND b)`},
		{expr: "f(a, b + 1) > 0", want: "(f(a, (b + 1)) > 0)"},
		{expr: "ts > NOW() - 1 day", want: "(ts > (NOW() - 1 day))"},
		{expr: "a.b.`c` == ?x", want: "(a.b.`c` == ?x)"},
		{expr: "a =~ \"X\"", want: "(a =~ \"X\")"},
		{expr: "a == [1, 2.5]", want: "(a == [1, 2.5])"},
		{expr: "a == null OR b == true", want: "((a == null) OR (b == true))"},
	}
	for _, test := range tests {
		query := "FROM t | WHERE " + test.expr
		q, err := Parse(query, nil)
		if err != nil {
			t.Errorf("Parse(%q, nil): %v", query, err)
			continue
		}
		where := q.Commands[0].(*WhereCommand)
		if got := exprString(where.Condition); got != test.want {
			t.Errorf("Parse(%q, nil) condition = %s; want %s", query, got, test.want)
		}
	}
}

func TestParsePipelineOrder(t *testing.T) {
	q, err := Parse("FROM t | WHERE a | LIMIT 10 | KEEP b", nil)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, cmd := range q.Commands {
		got = append(got, fmt.Sprintf("%T", cmd))
	}
	want := []string{"*parser.WhereCommand", "*parser.LimitCommand", "*parser.KeepCommand"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("commands (-want +got):\n%s", diff)
	}
}

func TestParseCommands(t *testing.T) {
	tests := []string{
		"ROW a = 1, b = \"x\", c",
		"FROM a [METADATA _id, _index]",
		"FROM a | EVAL x = a + 1, y = CONCAT(b, \"!\")",
		"FROM a | SORT x DESC NULLS FIRST, y ASC, z NULLS LAST",
		"FROM a | KEEP a, b*, `c`.d",
		"FROM a | DISSECT msg \"%{a} %{b}\" append_separator = \",\"",
		"FROM a | GROK msg \"%{IP:ip}\"",
		"FROM a | ENRICH _remote:policy ON key WITH n = f, g",
		"FROM a | ENRICH policy",
		"FROM a | MV_EXPAND tags",
		"FROM a | MV_EXPAND `host`.name",
		"FROM a | STATS BY host",
		"FROM a | STATS c = COUNT(*) | LIMIT 1",
		"FROM a | EVAL d = DATE_TRUNC(1 hour, @timestamp)",
		"EXPLAIN [FROM a | LIMIT 1] | LIMIT 2",
		"EXPLAIN [ROW a = 1]",
		"META FUNCTIONS",
		"FROM a // trailing comment",
		"FROM a /* block */ | LIMIT 1",
		"FROM a | WHERE ?fn(x) > ?1",
		"from a | where x::ip == \"127.0.0.1\"",
	}
	for _, query := range tests {
		if _, err := Parse(query, nil); err != nil {
			t.Errorf("Parse(%q, nil): %v", query, err)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{query: "", want: "1:1: empty query"},
		{query: "// only a comment", want: "empty query"},
		{query: "FROM", want: "expected index pattern, got EOF"},
		{query: "FROM a | WHER x", want: `1:10: unknown command "WHER", did you mean "WHERE"?`},
		{query: "FROM a | FROM b", want: "FROM cannot be used as a processing command"},
		{query: "WHERE x", want: "WHERE cannot be used as a source command"},
		{query: "FROM a |", want: "expected processing command, got EOF"},
		{query: "FROM a | LIMIT x", want: "expected integer, got 'x'"},
		{query: "FROM a | WHERE a < b < c", want: "unexpected '<' (expected '|' or end of query)"},
		{query: "FROM a | WHERE (a", want: "expected ')', got EOF"},
		{query: "FROM a | WHERE a NOT b", want: "expected IN, LIKE, or RLIKE, got 'b'"},
		{query: "FROM a | WHERE a IS 1", want: "expected NULL, got '1'"},
		{query: `ROW x = [1, "a"]`, want: "array elements must all be numeric literals"},
		{query: "FROM a | SORT x NULLS", want: "expected FIRST or LAST, got EOF"},
		{query: `ROW "a\q"`, want: "invalid escape sequence"},
		{query: "FROM a | RENAME a b", want: "expected AS, got 'b'"},
		{query: "SHOW FUNCTIONS", want: "expected INFO, got 'FUNCTIONS'"},
		{query: "EXPLAIN [FROM a", want: "expected ']', got EOF"},
		{query: `FROM "c":a`, want: `cluster name "c" must not be quoted`},
		{query: "FROM a | INLINESTATS x = 1", want: "INLINESTATS is a preview feature and requires the [inlinestats] capability"},
		{query: "ROW 1; ROW 2", want: "unrecognized character"},
		{query: "FROM a | MV_EXPAND b*", want: "unexpected '*' (expected '|' or end of query)"},
	}
	for _, test := range tests {
		_, err := Parse(test.query, nil)
		if err == nil {
			t.Errorf("Parse(%q, nil) did not return an error", test.query)
			continue
		}
		if !strings.Contains(err.Error(), test.want) {
			t.Errorf("Parse(%q, nil) = _, %v; want error containing %q", test.query, err, test.want)
		}
		var perr *Error
		if !errors.As(err, &perr) {
			t.Errorf("Parse(%q, nil) error %v is not a *parser.Error", test.query, err)
		} else if !perr.Span.IsValid() {
			t.Errorf("Parse(%q, nil) error span %v is invalid", test.query, perr.Span)
		}
	}
}

func TestParseCapabilities(t *testing.T) {
	tests := []struct {
		query      string
		capability string
	}{
		{query: "FROM a | LOOKUP t ON k", capability: CapabilityLookupCommand},
		{query: "FROM a | INLINESTATS c = COUNT(*) BY x", capability: CapabilityInlineStats},
		{query: `FROM a | MATCH "foo"`, capability: CapabilityMatchCommand},
		{query: "METRICS k8s max(cpu) BY host", capability: CapabilityMetricsCommand},
		{query: `FROM a | WHERE x MATCH "foo"`, capability: CapabilityMatchOperator},
		{query: `FROM a | WHERE MATCH(x, "foo")`, capability: CapabilityMatchFunction},
	}
	for _, test := range tests {
		_, err := Parse(test.query, nil)
		if !errors.Is(err, ErrCapabilityDisabled) {
			t.Errorf("Parse(%q, nil) = _, %v; want %v", test.query, err, ErrCapabilityDisabled)
		}
		opts := &Options{Capabilities: CapabilitySet{test.capability: true}}
		if _, err := Parse(test.query, opts); err != nil {
			t.Errorf("Parse(%q, {%s}): %v", test.query, test.capability, err)
		}
	}
}

func TestParseMatchCommand(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{query: `"foo bar"`, want: `unparsed("foo bar")`},
		{query: `"foo" | LIMIT 1`, want: `unparsed("foo")`},
		{query: "foo", want: "foo"},
		{query: `"foo" AND bar`, want: `("foo" AND bar)`},
		{query: "a:1 OR b:2 AND NOT c", want: "(a:1 OR (b:2 AND (NOT c)))"},
		{query: "(a:1 OR b:2) AND c", want: "((a:1 OR b:2) AND c)"},
		{query: `status:>=400 AND host.name:"web 1"`, want: `(status:>=400 AND host.name:"web 1")`},
	}
	opts := &Options{Capabilities: CapabilitySet{CapabilityMatchCommand: true}}
	for _, test := range tests {
		query := "FROM a | MATCH " + test.query
		q, err := Parse(query, opts)
		if err != nil {
			t.Errorf("Parse(%q): %v", query, err)
			continue
		}
		cmd := q.Commands[0].(*MatchCommand)
		if got := matchString(cmd.Query); got != test.want {
			t.Errorf("Parse(%q) match query = %s; want %s", query, got, test.want)
		}
	}

	if _, err := Parse("FROM a | MATCH a:", opts); err == nil || !strings.Contains(err.Error(), "expected search value, got EOF") {
		t.Errorf("Parse(%q) = _, %v; want missing value error", "FROM a | MATCH a:", err)
	}
}

func exprString(x Node) string {
	switch x := x.(type) {
	case *QualifiedName:
		parts := make([]string, 0, len(x.Parts))
		for _, part := range x.Parts {
			parts = append(parts, exprString(part))
		}
		return strings.Join(parts, ".")
	case *Ident:
		return x.Name
	case *Param:
		return "?" + x.Name
	case *NullLit:
		return "null"
	case *BoolLit:
		return fmt.Sprint(x.Value)
	case *NumberLit:
		return x.Text()
	case *StringLit:
		return x.Raw
	case *QualifiedIntegerLit:
		return x.Number.Text() + " " + x.Unit.Name
	case *ArrayLit:
		elems := make([]string, 0, len(x.Elems))
		for _, elem := range x.Elems {
			elems = append(elems, exprString(elem))
		}
		return "[" + strings.Join(elems, ", ") + "]"
	case *ParenExpr:
		return exprString(x.X)
	case *LogicalNot:
		return "(NOT " + exprString(x.X) + ")"
	case *LogicalBinary:
		return "(" + exprString(x.X) + " " + x.Op.String() + " " + exprString(x.Y) + ")"
	case *Comparison:
		return "(" + exprString(x.X) + " " + x.Op.String() + " " + exprString(x.Y) + ")"
	case *ArithmeticBinary:
		return "(" + exprString(x.X) + " " + x.Op.String() + " " + exprString(x.Y) + ")"
	case *ArithmeticUnary:
		return "(" + x.Op.String() + exprString(x.X) + ")"
	case *InlineCast:
		return "(" + exprString(x.X) + "::" + x.Type.Name + ")"
	case *LogicalIn:
		vals := make([]string, 0, len(x.Vals))
		for _, v := range x.Vals {
			vals = append(vals, exprString(v))
		}
		op := " IN "
		if x.Negated() {
			op = " NOT IN "
		}
		return "(" + exprString(x.X) + op + "(" + strings.Join(vals, ", ") + "))"
	case *IsNull:
		if x.Negated() {
			return "(" + exprString(x.X) + " IS NOT NULL)"
		}
		return "(" + exprString(x.X) + " IS NULL)"
	case *RegexMatch:
		op := " " + x.Op.String() + " "
		if x.Negated() {
			op = " NOT" + op
		}
		return "(" + exprString(x.X) + op + x.Pattern.Raw + ")"
	case *MatchPredicate:
		return "(" + exprString(x.X) + " MATCH " + x.Query.Raw + ")"
	case *FunctionCall:
		if x.Star.IsValid() {
			return exprString(x.Name) + "(*)"
		}
		args := make([]string, 0, len(x.Args))
		for _, arg := range x.Args {
			args = append(args, exprString(arg))
		}
		return exprString(x.Name) + "(" + strings.Join(args, ", ") + ")"
	default:
		return fmt.Sprintf("<%T>", x)
	}
}

func matchString(q MatchQueryExpr) string {
	switch q := q.(type) {
	case *MatchUnparsed:
		return "unparsed(" + q.Query.Raw + ")"
	case *MatchBinary:
		return "(" + matchString(q.X) + " " + q.Op.String() + " " + matchString(q.Y) + ")"
	case *MatchNot:
		return "(NOT " + matchString(q.X) + ")"
	case *MatchParen:
		return matchString(q.X)
	case *MatchTerm:
		var sb strings.Builder
		if q.Field != nil {
			sb.WriteString(q.Field.Text)
			sb.WriteString(":")
		}
		if q.Op != 0 {
			sb.WriteString(q.Op.String())
		}
		switch v := q.Value.(type) {
		case *MatchWord:
			sb.WriteString(v.Text)
		case *StringLit:
			sb.WriteString(v.Raw)
		}
		return sb.String()
	default:
		return fmt.Sprintf("<%T>", q)
	}
}
