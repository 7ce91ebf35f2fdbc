// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"fmt"
	"strings"

	"github.com/runreveal/esql/parser"
	"github.com/runreveal/esql/querydsl"
)

// FullTextFunction is embedded by functions that search text.
//
// Full-text functions are never evaluated row by row.
// Their query argument must be a constant string,
// and the function is rewritten into a search query with AsQuery.
type FullTextFunction struct {
	source   Source
	name     string
	query    Expression
	nonQuery []Expression

	// queryOrdinal identifies the query in type resolution messages.
	queryOrdinal ParamOrdinal
	// resolveNonQuery type checks the arguments other than the query.
	// If nil, they are always accepted.
	resolveNonQuery func() TypeResolution
}

func (f *FullTextFunction) Source() Source        { return f.source }
func (f *FullTextFunction) DataType() DataType    { return Boolean }
func (f *FullTextFunction) Nullable() Nullability { return NullabilityFalse }
func (f *FullTextFunction) Foldable() bool        { return false }

// Query returns the argument holding the search text.
func (f *FullTextFunction) Query() Expression { return f.query }

// Children returns the arguments other than the query
// in order followed by the query.
func (f *FullTextFunction) Children() []Expression {
	children := make([]Expression, 0, len(f.nonQuery)+1)
	children = append(children, f.nonQuery...)
	return append(children, f.query)
}

func (f *FullTextFunction) Resolved() bool {
	return f.ResolveType().Resolved()
}

// ResolveType type checks the function's arguments.
func (f *FullTextFunction) ResolveType() TypeResolution {
	if !allResolved(f.Children()...) {
		return NewTypeResolution("Unresolved children")
	}
	r := TypeResolved
	if f.resolveNonQuery != nil {
		r = f.resolveNonQuery()
	}
	return r.And(f.ResolveQuery())
}

// ResolveQuery type checks the query argument.
// The query must be a constant string other than null.
func (f *FullTextFunction) ResolveQuery() TypeResolution {
	if !f.query.Resolved() {
		return IsFoldable(f.query, f.source.Text, f.queryOrdinal)
	}
	return IsString(f.query, f.source.Text, f.queryOrdinal).
		And(IsNotNullAndFoldable(f.query, f.source.Text, f.queryOrdinal))
}

// QueryText returns the value of the query argument.
func (f *FullTextFunction) QueryText() (string, error) {
	if err := f.ResolveQuery().Err(); err != nil {
		return "", err
	}
	text, ok := FoldString(f.query)
	if !ok {
		return "", fmt.Errorf("%s: query is not a constant string", f.source.Text)
	}
	return text, nil
}

func (f *FullTextFunction) String() string {
	return strings.ToUpper(f.name) + "(" + joinExpressions(f.Children(), ", ") + ")"
}

func (f *FullTextFunction) equal(other *FullTextFunction) bool {
	a, b := f.Children(), other.Children()
	if f.name != other.name || len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func (f *FullTextFunction) checkChildren(e Expression, children []Expression) {
	checkChildren(e, children, len(f.nonQuery)+1)
}

// Match searches a single field for the analyzed terms of a query.
type Match struct {
	FullTextFunction
}

// NewMatch returns a new MATCH(field, query) call.
func NewMatch(source Source, field, query Expression) *Match {
	m := &Match{FullTextFunction{
		source:       source,
		name:         "match",
		query:        query,
		nonQuery:     []Expression{field},
		queryOrdinal: SecondOrdinal,
	}}
	m.resolveNonQuery = m.resolveField
	return m
}

// ReplaceChildren returns a MATCH of children[0] for the query children[1].
func (m *Match) ReplaceChildren(children []Expression) Expression {
	m.checkChildren(m, children)
	return NewMatch(m.source, children[0], children[1])
}

// Field returns the searched field.
func (m *Match) Field() Expression { return m.nonQuery[0] }

func (m *Match) resolveField() TypeResolution {
	return IsString(m.Field(), m.source.Text, FirstOrdinal)
}

// AsQuery returns the search query for the function.
func (m *Match) AsQuery() (querydsl.Query, error) {
	field, ok := m.Field().(NamedExpression)
	if !ok {
		return nil, fmt.Errorf("%s: field must be a column, found [%v]", m.source.Text, m.Field())
	}
	text, err := m.QueryText()
	if err != nil {
		return nil, err
	}
	return &querydsl.MatchQuery{Field: field.Name(), Text: text}, nil
}

// Equal reports whether e searches the same field for the same query.
func (m *Match) Equal(e Expression) bool {
	other, ok := e.(*Match)
	return ok && m.equal(&other.FullTextFunction)
}

// QueryString searches using the search engine's query string syntax.
type QueryString struct {
	FullTextFunction
}

// NewQueryString returns a new QSTR(query) call.
func NewQueryString(source Source, query Expression) *QueryString {
	return &QueryString{FullTextFunction{
		source:       source,
		name:         "qstr",
		query:        query,
		queryOrdinal: DefaultOrdinal,
	}}
}

func (q *QueryString) ReplaceChildren(children []Expression) Expression {
	q.checkChildren(q, children)
	return NewQueryString(q.source, children[0])
}

// AsQuery returns the search query for the function.
func (q *QueryString) AsQuery() (querydsl.Query, error) {
	text, err := q.QueryText()
	if err != nil {
		return nil, err
	}
	return &querydsl.QueryStringQuery{Text: text}, nil
}

// Equal reports whether e is the same query.
func (q *QueryString) Equal(e Expression) bool {
	other, ok := e.(*QueryString)
	return ok && q.equal(&other.FullTextFunction)
}

// PushDownQuery is implemented by expressions
// that are evaluated as a search query.
type PushDownQuery interface {
	Expression
	AsQuery() (querydsl.Query, error)
}

var fullTextFunctions = []struct {
	name       string
	capability string
}{
	{"match", parser.CapabilityMatchFunction},
	{"qstr", parser.CapabilityQstrFunction},
}

// FullTextFunctions returns the names of the full-text functions
// available with the given capabilities.
func FullTextFunctions(caps parser.Capabilities) []string {
	var names []string
	for _, f := range fullTextFunctions {
		if caps != nil && caps.Enabled(f.capability) {
			names = append(names, f.name)
		}
	}
	return names
}
