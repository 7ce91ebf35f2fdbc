// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

// Package querydsl provides the search queries that full-text functions
// are pushed down to, encoded in the Elasticsearch query DSL.
package querydsl

import (
	"encoding/json"
	"fmt"
)

// Query is a search query that is executed by the search engine
// instead of being evaluated row by row.
type Query interface {
	json.Marshaler
	fmt.Stringer
	query()
}

// Operator is the boolean operator used to combine the terms of a query.
type Operator int

// Operators.
const (
	OperatorOr Operator = iota
	OperatorAnd
)

func (op Operator) String() string {
	if op == OperatorAnd {
		return "AND"
	}
	return "OR"
}

func (op Operator) MarshalJSON() ([]byte, error) {
	return json.Marshal(op.String())
}

// MatchQuery is a "match" query against a single field.
type MatchQuery struct {
	Field string
	Text  string
	// Operator is how the analyzed terms of Text are combined.
	Operator Operator
}

func (q *MatchQuery) query() {}

func (q *MatchQuery) String() string {
	return fmt.Sprintf("match{%s:%s}", q.Field, q.Text)
}

func (q *MatchQuery) MarshalJSON() ([]byte, error) {
	type matchOptions struct {
		Query    string   `json:"query"`
		Operator Operator `json:"operator"`
	}
	return json.Marshal(map[string]any{
		"match": map[string]matchOptions{
			q.Field: {Query: q.Text, Operator: q.Operator},
		},
	})
}

// QueryStringQuery is a "query_string" query
// whose syntax is interpreted by the search engine.
type QueryStringQuery struct {
	Text string
	// Fields restricts the query to the given fields.
	// If empty, all fields are searched.
	Fields          []string
	DefaultOperator Operator
}

func (q *QueryStringQuery) query() {}

func (q *QueryStringQuery) String() string {
	return fmt.Sprintf("query_string{%s}", q.Text)
}

func (q *QueryStringQuery) MarshalJSON() ([]byte, error) {
	type options struct {
		Query           string   `json:"query"`
		Fields          []string `json:"fields,omitempty"`
		DefaultOperator Operator `json:"default_operator"`
	}
	return json.Marshal(map[string]options{
		"query_string": {
			Query:           q.Text,
			Fields:          q.Fields,
			DefaultOperator: q.DefaultOperator,
		},
	})
}

// RangeQuery is a "range" query against a single field.
// Unset bounds are empty strings.
type RangeQuery struct {
	Field string
	GT    string
	GTE   string
	LT    string
	LTE   string
}

func (q *RangeQuery) query() {}

func (q *RangeQuery) String() string {
	return fmt.Sprintf("range{%s gt=%s gte=%s lt=%s lte=%s}", q.Field, q.GT, q.GTE, q.LT, q.LTE)
}

func (q *RangeQuery) MarshalJSON() ([]byte, error) {
	type bounds struct {
		GT  string `json:"gt,omitempty"`
		GTE string `json:"gte,omitempty"`
		LT  string `json:"lt,omitempty"`
		LTE string `json:"lte,omitempty"`
	}
	return json.Marshal(map[string]any{
		"range": map[string]bounds{
			q.Field: {GT: q.GT, GTE: q.GTE, LT: q.LT, LTE: q.LTE},
		},
	})
}

// BoolQuery combines queries.
type BoolQuery struct {
	Must    []Query
	Should  []Query
	MustNot []Query
}

func (q *BoolQuery) query() {}

func (q *BoolQuery) String() string {
	return fmt.Sprintf("bool{must=%v should=%v must_not=%v}", q.Must, q.Should, q.MustNot)
}

func (q *BoolQuery) MarshalJSON() ([]byte, error) {
	type clauses struct {
		Must    []Query `json:"must,omitempty"`
		Should  []Query `json:"should,omitempty"`
		MustNot []Query `json:"must_not,omitempty"`
	}
	return json.Marshal(map[string]clauses{
		"bool": {Must: q.Must, Should: q.Should, MustNot: q.MustNot},
	})
}
