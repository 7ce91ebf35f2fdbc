// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"strconv"
	"strings"

	"github.com/runreveal/esql/expr"
)

type unary struct {
	source expr.Source
	child  LogicalPlan
}

func (u *unary) Source() expr.Source     { return u.source }
func (u *unary) Child() LogicalPlan      { return u.child }
func (u *unary) Children() []LogicalPlan { return []LogicalPlan{u.child} }

// Filter keeps the rows for which a condition is true.
type Filter struct {
	unary
	Condition expr.Expression
}

// NewFilter returns a new WHERE node.
func NewFilter(source expr.Source, child LogicalPlan, condition expr.Expression) *Filter {
	return &Filter{unary{source, child}, condition}
}

func (f *Filter) Output() []expr.Attribute { return f.child.Output() }
func (f *Filter) Resolved() bool           { return childrenResolved(f) && f.Condition.Resolved() }
func (f *Filter) String() string           { return "Filter[" + f.Condition.String() + "]" }

func (f *Filter) ReplaceChildren(children []LogicalPlan) LogicalPlan {
	f2 := *f
	f2.child = onlyChild(f, children)
	return &f2
}

// Eval adds computed columns to each row.
type Eval struct {
	unary
	Fields []*expr.Alias
}

// NewEval returns a new EVAL node.
func NewEval(source expr.Source, child LogicalPlan, fields []*expr.Alias) *Eval {
	return &Eval{unary{source, child}, fields}
}

func (e *Eval) Output() []expr.Attribute {
	return MergeOutputAttributes(e.child.Output(), attributes(e.Fields))
}

func (e *Eval) Resolved() bool { return childrenResolved(e) && expressionsResolved(e.Fields) }
func (e *Eval) String() string { return "Eval" + formatList(e.Fields) }

func (e *Eval) ReplaceChildren(children []LogicalPlan) LogicalPlan {
	e2 := *e
	e2.child = onlyChild(e, children)
	return &e2
}

// Limit keeps at most a number of rows.
type Limit struct {
	unary
	Limit expr.Expression
}

// NewLimit returns a new LIMIT node.
func NewLimit(source expr.Source, child LogicalPlan, limit expr.Expression) *Limit {
	return &Limit{unary{source, child}, limit}
}

func (l *Limit) Output() []expr.Attribute { return l.child.Output() }
func (l *Limit) Resolved() bool           { return childrenResolved(l) && l.Limit.Resolved() }
func (l *Limit) String() string           { return "Limit[" + l.Limit.String() + "]" }

func (l *Limit) ReplaceChildren(children []LogicalPlan) LogicalPlan {
	l2 := *l
	l2.child = onlyChild(l, children)
	return &l2
}

// Keep keeps the columns matching a list of names and patterns
// in the order they are listed.
type Keep struct {
	unary
	Projections []expr.NamedExpression
}

// NewKeep returns a new KEEP node.
func NewKeep(source expr.Source, child LogicalPlan, projections []expr.NamedExpression) *Keep {
	return &Keep{unary{source, child}, projections}
}

func (k *Keep) Output() []expr.Attribute { return attributes(k.Projections) }
func (k *Keep) Resolved() bool           { return childrenResolved(k) && expressionsResolved(k.Projections) }
func (k *Keep) String() string           { return "Keep" + formatList(k.Projections) }

func (k *Keep) ReplaceChildren(children []LogicalPlan) LogicalPlan {
	k2 := *k
	k2.child = onlyChild(k, children)
	return &k2
}

// Drop removes the columns matching a list of names and patterns.
type Drop struct {
	unary
	Removals []expr.NamedExpression
}

// NewDrop returns a new DROP node.
func NewDrop(source expr.Source, child LogicalPlan, removals []expr.NamedExpression) *Drop {
	return &Drop{unary{source, child}, removals}
}

func (d *Drop) Output() []expr.Attribute {
	var out []expr.Attribute
	for _, a := range d.child.Output() {
		if !d.drops(a.Name()) {
			out = append(out, a)
		}
	}
	return out
}

func (d *Drop) drops(name string) bool {
	for _, r := range d.Removals {
		switch r := r.(type) {
		case *expr.UnresolvedNamePattern:
			if r.Match(name) {
				return true
			}
		case *expr.UnresolvedStar:
			return true
		default:
			if r.Name() == name {
				return true
			}
		}
	}
	return false
}

func (d *Drop) Resolved() bool { return childrenResolved(d) && expressionsResolved(d.Removals) }
func (d *Drop) String() string { return "Drop" + formatList(d.Removals) }

func (d *Drop) ReplaceChildren(children []LogicalPlan) LogicalPlan {
	d2 := *d
	d2.child = onlyChild(d, children)
	return &d2
}

// Rename renames columns.
// Each alias names the new column and refers to the old column.
type Rename struct {
	unary
	Renamings []*expr.Alias
}

// NewRename returns a new RENAME node.
func NewRename(source expr.Source, child LogicalPlan, renamings []*expr.Alias) *Rename {
	return &Rename{unary{source, child}, renamings}
}

func (r *Rename) Output() []expr.Attribute {
	out := make([]expr.Attribute, 0, len(r.child.Output()))
	for _, a := range r.child.Output() {
		renamed := expr.Attribute(a)
		for _, alias := range r.Renamings {
			if named, ok := alias.Child().(expr.NamedExpression); ok && named.Name() == a.Name() {
				renamed = alias.ToAttribute()
			}
		}
		out = append(out, renamed)
	}
	return out
}

func (r *Rename) Resolved() bool { return childrenResolved(r) && expressionsResolved(r.Renamings) }
func (r *Rename) String() string { return "Rename" + formatList(r.Renamings) }

func (r *Rename) ReplaceChildren(children []LogicalPlan) LogicalPlan {
	r2 := *r
	r2.child = onlyChild(r, children)
	return &r2
}

// OrderBy sorts rows.
type OrderBy struct {
	unary
	Order []*expr.Order
}

// NewOrderBy returns a new SORT node.
func NewOrderBy(source expr.Source, child LogicalPlan, order []*expr.Order) *OrderBy {
	return &OrderBy{unary{source, child}, order}
}

func (o *OrderBy) Output() []expr.Attribute { return o.child.Output() }
func (o *OrderBy) Resolved() bool           { return childrenResolved(o) && expressionsResolved(o.Order) }
func (o *OrderBy) String() string           { return "OrderBy" + formatList(o.Order) }

func (o *OrderBy) ReplaceChildren(children []LogicalPlan) LogicalPlan {
	o2 := *o
	o2.child = onlyChild(o, children)
	return &o2
}

// AggregateKind is the kind of rows an aggregation summarizes.
type AggregateKind int

// Aggregation kinds.
const (
	StandardAggregate AggregateKind = iota
	MetricsAggregate
)

// Aggregate groups rows by key and summarizes each group.
// The grouping keys are also part of Aggregates,
// so the output is exactly the aggregates' columns.
type Aggregate struct {
	unary
	Kind       AggregateKind
	Groupings  []expr.Expression
	Aggregates []expr.NamedExpression
}

// NewAggregate returns a new STATS node.
func NewAggregate(source expr.Source, child LogicalPlan, kind AggregateKind, groupings []expr.Expression, aggregates []expr.NamedExpression) *Aggregate {
	return &Aggregate{unary{source, child}, kind, groupings, aggregates}
}

func (a *Aggregate) Output() []expr.Attribute { return attributes(a.Aggregates) }

func (a *Aggregate) ReplaceChildren(children []LogicalPlan) LogicalPlan {
	a2 := *a
	a2.child = onlyChild(a, children)
	return &a2
}

func (a *Aggregate) Resolved() bool {
	return childrenResolved(a) && expressionsResolved(a.Groupings) && expressionsResolved(a.Aggregates)
}

func (a *Aggregate) String() string {
	name := "Aggregate"
	if a.Kind == MetricsAggregate {
		name = "MetricsAggregate"
	}
	return name + "[" + formatList(a.Groupings) + ", " + formatList(a.Aggregates) + "]"
}

// InlineStats adds the summary of each row's group to the row.
type InlineStats struct {
	unary
	Groupings  []expr.Expression
	Aggregates []expr.NamedExpression
}

// NewInlineStats returns a new INLINESTATS node.
func NewInlineStats(source expr.Source, child LogicalPlan, groupings []expr.Expression, aggregates []expr.NamedExpression) *InlineStats {
	return &InlineStats{unary{source, child}, groupings, aggregates}
}

func (s *InlineStats) Output() []expr.Attribute {
	return MergeOutputAttributes(s.child.Output(), attributes(s.Aggregates))
}

func (s *InlineStats) Resolved() bool {
	return childrenResolved(s) && expressionsResolved(s.Groupings) && expressionsResolved(s.Aggregates)
}

func (s *InlineStats) String() string {
	return "InlineStats[" + formatList(s.Groupings) + ", " + formatList(s.Aggregates) + "]"
}

func (s *InlineStats) ReplaceChildren(children []LogicalPlan) LogicalPlan {
	s2 := *s
	s2.child = onlyChild(s, children)
	return &s2
}

// DissectParser splits a string into fields using a pattern of delimiters.
type DissectParser struct {
	Pattern         string
	AppendSeparator string
}

// Dissect extracts columns from a string using a dissect pattern.
type Dissect struct {
	unary
	Input     expr.Expression
	Parser    DissectParser
	Extracted []expr.Attribute
}

// NewDissect returns a new DISSECT node.
func NewDissect(source expr.Source, child LogicalPlan, input expr.Expression, parser DissectParser, extracted []expr.Attribute) *Dissect {
	return &Dissect{unary{source, child}, input, parser, extracted}
}

func (d *Dissect) Output() []expr.Attribute {
	return MergeOutputAttributes(d.child.Output(), d.Extracted)
}

func (d *Dissect) Resolved() bool { return childrenResolved(d) && d.Input.Resolved() }

func (d *Dissect) ReplaceChildren(children []LogicalPlan) LogicalPlan {
	d2 := *d
	d2.child = onlyChild(d, children)
	return &d2
}

func (d *Dissect) String() string {
	s := "Dissect[" + d.Input.String() + ", " + strconv.Quote(d.Parser.Pattern)
	if d.Parser.AppendSeparator != "" {
		s += ", append_separator=" + strconv.Quote(d.Parser.AppendSeparator)
	}
	return s + ", " + formatList(d.Extracted) + "]"
}

// Grok extracts columns from a string using a grok pattern.
type Grok struct {
	unary
	Input     expr.Expression
	Pattern   string
	Extracted []expr.Attribute
}

// NewGrok returns a new GROK node.
func NewGrok(source expr.Source, child LogicalPlan, input expr.Expression, pattern string, extracted []expr.Attribute) *Grok {
	return &Grok{unary{source, child}, input, pattern, extracted}
}

func (g *Grok) Output() []expr.Attribute {
	return MergeOutputAttributes(g.child.Output(), g.Extracted)
}

func (g *Grok) Resolved() bool { return childrenResolved(g) && g.Input.Resolved() }

func (g *Grok) ReplaceChildren(children []LogicalPlan) LogicalPlan {
	g2 := *g
	g2.child = onlyChild(g, children)
	return &g2
}

func (g *Grok) String() string {
	return "Grok[" + g.Input.String() + ", " + strconv.Quote(g.Pattern) + ", " + formatList(g.Extracted) + "]"
}

// EnrichMode is where an enrich policy is executed.
type EnrichMode int

// Enrich modes.
const (
	EnrichAny EnrichMode = iota
	EnrichCoordinator
	EnrichRemote
)

var enrichModeNames = [...]string{
	EnrichAny:         "_any",
	EnrichCoordinator: "_coordinator",
	EnrichRemote:      "_remote",
}

func (m EnrichMode) String() string {
	if m < 0 || int(m) >= len(enrichModeNames) {
		return enrichModeNames[EnrichAny]
	}
	return enrichModeNames[m]
}

// EnrichModeByName returns the mode with the given name, ignoring case.
func EnrichModeByName(name string) (EnrichMode, bool) {
	for m, n := range enrichModeNames {
		if strings.EqualFold(n, name) {
			return EnrichMode(m), true
		}
	}
	return EnrichAny, false
}

// Enrich adds columns from an enrich policy's index
// to each row whose match field matches the policy.
type Enrich struct {
	unary
	Mode         EnrichMode
	PolicyName   expr.Expression
	// MatchField is nil if the policy's own match field is used.
	MatchField   expr.NamedExpression
	EnrichFields []expr.NamedExpression
}

// NewEnrich returns a new ENRICH node.
func NewEnrich(source expr.Source, child LogicalPlan, mode EnrichMode, policy expr.Expression, matchField expr.NamedExpression, fields []expr.NamedExpression) *Enrich {
	return &Enrich{unary{source, child}, mode, policy, matchField, fields}
}

func (e *Enrich) Output() []expr.Attribute {
	return MergeOutputAttributes(e.child.Output(), attributes(e.EnrichFields))
}

func (e *Enrich) ReplaceChildren(children []LogicalPlan) LogicalPlan {
	e2 := *e
	e2.child = onlyChild(e, children)
	return &e2
}

func (e *Enrich) Resolved() bool {
	if e.MatchField != nil && !e.MatchField.Resolved() {
		return false
	}
	return childrenResolved(e) && expressionsResolved(e.EnrichFields)
}

func (e *Enrich) String() string {
	match := "_match_field"
	if e.MatchField != nil {
		match = e.MatchField.String()
	}
	return "Enrich[" + e.Mode.String() + ", " + e.PolicyName.String() + ", " + match + ", " + formatList(e.EnrichFields) + "]"
}

// MvExpand produces a row for each value of a multi-valued column.
type MvExpand struct {
	unary
	Target   expr.NamedExpression
	Expanded expr.Attribute
}

// NewMvExpand returns a new MV_EXPAND node.
func NewMvExpand(source expr.Source, child LogicalPlan, target expr.NamedExpression, expanded expr.Attribute) *MvExpand {
	return &MvExpand{unary{source, child}, target, expanded}
}

func (m *MvExpand) Output() []expr.Attribute {
	return MergeOutputAttributes(m.child.Output(), []expr.Attribute{m.Expanded})
}

func (m *MvExpand) Resolved() bool { return childrenResolved(m) && m.Target.Resolved() }

func (m *MvExpand) ReplaceChildren(children []LogicalPlan) LogicalPlan {
	m2 := *m
	m2.child = onlyChild(m, children)
	return &m2
}
func (m *MvExpand) String() string { return "MvExpand[" + m.Target.String() + ", " + m.Expanded.String() + "]" }
