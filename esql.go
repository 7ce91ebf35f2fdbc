// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

// Package esql builds unresolved logical plans
// from Elasticsearch Query Language (ESQL) statements.
package esql

import (
	"fmt"

	"github.com/runreveal/esql/expr"
	"github.com/runreveal/esql/parser"
	"github.com/runreveal/esql/plan"
)

// Options controls how a query is parsed and built.
// A nil *Options is treated the same as a zero value.
type Options struct {
	// Capabilities selects the preview commands and functions that are available.
	// If nil, none are.
	Capabilities parser.Capabilities
	// Params holds the values of the query's parameters.
	Params *Params
}

func (opts *Options) capabilities() parser.Capabilities {
	if opts == nil {
		return nil
	}
	return opts.Capabilities
}

func (opts *Options) params() *Params {
	if opts == nil {
		return nil
	}
	return opts.Params
}

// Parse converts an ESQL statement into an unresolved logical plan.
// Errors are positioned in the query;
// use [errors.As] with a [*parser.Error] to find where.
func Parse(query string, opts *Options) (plan.LogicalPlan, error) {
	tree, err := parser.Parse(query, &parser.Options{Capabilities: opts.capabilities()})
	if err != nil {
		return nil, err
	}
	b := &builder{
		query:  query,
		caps:   opts.capabilities(),
		funcs:  expr.NewRegistry(opts.capabilities()),
		params: newParamResolver(query, opts.params()),
	}
	p, err := b.buildQuery(tree)
	if err != nil {
		return nil, fmt.Errorf("build esql: %w", err)
	}
	return p, nil
}

// Compile converts an ESQL statement into the text form of its logical plan.
// Column identities are numbered in order of appearance,
// so compiling the same statement always gives the same text.
func Compile(query string, opts *Options) (string, error) {
	p, err := Parse(query, opts)
	if err != nil {
		return "", err
	}
	return plan.NormalizeIDs(plan.TreeString(p)), nil
}

// builder converts a parse tree into a logical plan.
type builder struct {
	query  string
	caps   parser.Capabilities
	funcs  *expr.Registry
	params paramResolver
}

func (b *builder) error(span parser.Span, err error) error {
	return parser.NewError(b.query, span, err)
}

func (b *builder) errorf(span parser.Span, format string, args ...any) error {
	return parser.NewError(b.query, span, fmt.Errorf(format, args...))
}

func (b *builder) source(node parser.Node) expr.Source {
	return expr.NewSource(b.query, node.Span())
}

// param returns the value of a query parameter.
func (b *builder) param(p *parser.Param) (*Param, error) {
	v, err := b.params.resolve(p.Name, p.Span().Start)
	if err != nil {
		return nil, b.error(p.Span(), err)
	}
	return v, nil
}
