// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"fmt"
	"sync"

	"github.com/runreveal/esql/expr"
)

// JoinType is the kind of a join.
type JoinType int

// Join types.
const (
	InnerJoin JoinType = iota
	LeftJoin
	RightJoin
	FullJoin
)

func (t JoinType) String() string {
	switch t {
	case InnerJoin:
		return "INNER"
	case LeftJoin:
		return "LEFT"
	case RightJoin:
		return "RIGHT"
	case FullJoin:
		return "FULL"
	default:
		return fmt.Sprintf("JoinType(%d)", int(t))
	}
}

// JoinConfig describes how the rows of a join's inputs are matched.
type JoinConfig struct {
	Type JoinType
	// MatchFields are the columns whose values must be equal
	// for two rows to match.
	MatchFields []expr.Attribute
	// LeftFields and RightFields are the match fields
	// as they appear in the left and right inputs.
	LeftFields  []expr.Attribute
	RightFields []expr.Attribute
}

func (c JoinConfig) String() string {
	return c.Type.String() + ", " + formatList(c.MatchFields) + ", " + formatList(c.LeftFields) + ", " + formatList(c.RightFields)
}

// Join combines the rows of two inputs.
// Its output is computed once on first use.
type Join struct {
	source expr.Source
	left   LogicalPlan
	right  LogicalPlan
	Config JoinConfig

	outputOnce sync.Once
	output     []expr.Attribute
}

// NewJoin returns a new join.
func NewJoin(source expr.Source, left, right LogicalPlan, config JoinConfig) *Join {
	return &Join{source: source, left: left, right: right, Config: config}
}

func (j *Join) Source() expr.Source     { return j.source }
func (j *Join) Left() LogicalPlan       { return j.left }
func (j *Join) Right() LogicalPlan      { return j.right }
func (j *Join) Children() []LogicalPlan { return []LogicalPlan{j.left, j.right} }
func (j *Join) String() string          { return "Join[" + j.Config.String() + "]" }

// ReplaceChildren returns a new join of the given left and right inputs
// with the same configuration.
func (j *Join) ReplaceChildren(children []LogicalPlan) LogicalPlan {
	checkChildren(j, children, 2)
	return NewJoin(j.source, children[0], children[1], j.Config)
}

// Output returns the columns of both inputs.
// The right input's columns become references,
// since the join produces them rather than reading them from an index.
// The columns of an input whose rows may be absent from a result row
// become nullable: the right input for a LEFT join,
// the left input for a RIGHT join, and both inputs for a FULL join.
// If both inputs have a column with the same name,
// the right input's column is kept.
func (j *Join) Output() []expr.Attribute {
	j.outputOnce.Do(func() {
		j.output = j.computeOutput()
	})
	return j.output
}

func (j *Join) computeOutput() []expr.Attribute {
	left := j.left.Output()
	right := make([]expr.Attribute, 0, len(j.right.Output()))
	for _, a := range j.right.Output() {
		right = append(right, expr.ToReference(a))
	}
	switch j.Config.Type {
	case LeftJoin:
		right = makeNullable(right)
	case RightJoin:
		left = makeNullable(left)
	case FullJoin:
		left = makeNullable(left)
		right = makeNullable(right)
	}
	return MergeOutputAttributes(left, right)
}

func makeNullable(attrs []expr.Attribute) []expr.Attribute {
	out := make([]expr.Attribute, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, a.WithNullability(expr.NullabilityTrue))
	}
	return out
}

// DuplicatesResolved reports whether no column identity
// appears in the output of both inputs.
func (j *Join) DuplicatesResolved() bool {
	ids := make(map[expr.NameID]struct{})
	for _, a := range j.left.Output() {
		ids[a.ID()] = struct{}{}
	}
	for _, a := range j.right.Output() {
		if _, dup := ids[a.ID()]; dup {
			return false
		}
	}
	return true
}

// Resolved reports whether both inputs are resolved
// and they do not share any column identity.
// The join condition is resolved before the join is built.
func (j *Join) Resolved() bool {
	return childrenResolved(j) && j.DuplicatesResolved()
}

// Lookup joins each row with the rows of a table
// whose match fields are equal.
type Lookup struct {
	unary
	TableName   expr.Expression
	MatchFields []expr.Attribute

	localRelation *LocalRelation
	join          *Join
}

// NewLookup returns a new LOOKUP node.
// rel is the content of the table, or nil if it has not been loaded.
func NewLookup(source expr.Source, child LogicalPlan, table expr.Expression, matchFields []expr.Attribute, rel *LocalRelation) *Lookup {
	l := &Lookup{unary: unary{source, child}, TableName: table, MatchFields: matchFields, localRelation: rel}
	if rel != nil {
		l.join = l.Join(rel)
	}
	return l
}

// LocalRelation returns the content of the table
// or nil if the table has not been loaded.
func (l *Lookup) LocalRelation() *LocalRelation { return l.localRelation }

// WithLocalRelation returns a copy of l that reads the given table.
func (l *Lookup) WithLocalRelation(rel *LocalRelation) *Lookup {
	return NewLookup(l.source, l.child, l.TableName, l.MatchFields, rel)
}

func (l *Lookup) ReplaceChildren(children []LogicalPlan) LogicalPlan {
	return NewLookup(l.source, onlyChild(l, children), l.TableName, l.MatchFields, l.localRelation)
}

// Output returns the input's columns, followed by the table's columns
// once the table has been loaded.
func (l *Lookup) Output() []expr.Attribute {
	if l.join == nil {
		return l.child.Output()
	}
	return l.join.Output()
}

func (l *Lookup) Resolved() bool {
	return childrenResolved(l) && l.localRelation != nil && expressionsResolved(l.MatchFields)
}

func (l *Lookup) String() string {
	return "Lookup[" + l.TableName.String() + ", " + formatList(l.MatchFields) + "]"
}

// Join returns the LEFT join of the input with table on the match fields.
func (l *Lookup) Join(table *LocalRelation) *Join {
	var rightFields []expr.Attribute
	for _, m := range l.MatchFields {
		for _, a := range table.Output() {
			if a.Name() == m.Name() {
				rightFields = append(rightFields, a)
				break
			}
		}
	}
	return NewJoin(l.source, l.child, table, JoinConfig{
		Type:        LeftJoin,
		MatchFields: l.MatchFields,
		LeftFields:  l.MatchFields,
		RightFields: rightFields,
	})
}
