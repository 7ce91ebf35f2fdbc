// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

// Package plan provides the nodes of a logical query plan.
//
// A plan is a tree evaluated from the leaves up:
// the leaf is the source command of a query,
// and each processing command wraps the plan of the commands before it.
package plan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/runreveal/esql/expr"
)

// LogicalPlan is a node in a logical plan.
type LogicalPlan interface {
	// Source returns the part of the query the node was built from.
	Source() expr.Source
	// Children returns the node's inputs.
	Children() []LogicalPlan
	// ReplaceChildren returns a copy of the node with new inputs,
	// in the order Children returns them.
	// It panics if the number of inputs differs.
	// The receiver is not modified.
	ReplaceChildren(children []LogicalPlan) LogicalPlan
	// Output returns the columns the node produces.
	// The result must not be modified.
	Output() []expr.Attribute
	// Resolved reports whether the node and all of its inputs
	// have been bound and type checked.
	Resolved() bool
	// String returns a single-line description of the node
	// without its inputs.
	String() string
}

// UnaryPlan is a plan node with a single input.
type UnaryPlan interface {
	LogicalPlan
	Child() LogicalPlan
}

func checkChildren(p LogicalPlan, children []LogicalPlan, n int) {
	if len(children) != n {
		panic(fmt.Sprintf("%T has %d children, got %d", p, n, len(children)))
	}
}

func onlyChild(p LogicalPlan, children []LogicalPlan) LogicalPlan {
	checkChildren(p, children, 1)
	return children[0]
}

// Transform rewrites the plan rooted at p from the leaves up.
// f is called with each node after its inputs have been rewritten,
// and its result replaces the node.
// Nodes whose inputs are unchanged are not copied.
func Transform(p LogicalPlan, f func(LogicalPlan) LogicalPlan) LogicalPlan {
	children := p.Children()
	if len(children) > 0 {
		changed := false
		replaced := make([]LogicalPlan, len(children))
		for i, c := range children {
			replaced[i] = Transform(c, f)
			changed = changed || replaced[i] != c
		}
		if changed {
			p = p.ReplaceChildren(replaced)
		}
	}
	return f(p)
}

func childrenResolved(p LogicalPlan) bool {
	for _, c := range p.Children() {
		if !c.Resolved() {
			return false
		}
	}
	return true
}

func expressionsResolved[E expr.Expression](exprs []E) bool {
	for _, e := range exprs {
		if !e.Resolved() {
			return false
		}
	}
	return true
}

// attributes returns the columns produced by named expressions.
func attributes[E expr.NamedExpression](exprs []E) []expr.Attribute {
	attrs := make([]expr.Attribute, 0, len(exprs))
	for _, e := range exprs {
		attrs = append(attrs, e.ToAttribute())
	}
	return attrs
}

// MergeOutputAttributes combines two lists of columns.
// If both lists contain a column with the same name,
// the column from right replaces the column from left.
// The columns of left that remain keep their order
// and are followed by the columns of right.
func MergeOutputAttributes(left, right []expr.Attribute) []expr.Attribute {
	names := make(map[string]struct{}, len(right))
	for _, a := range right {
		names[a.Name()] = struct{}{}
	}
	merged := make([]expr.Attribute, 0, len(left)+len(right))
	for _, a := range left {
		if _, overridden := names[a.Name()]; !overridden {
			merged = append(merged, a)
		}
	}
	return append(merged, right...)
}

// TreeString returns a multi-line rendering of the plan rooted at p.
// Each node is on its own line below its parent.
func TreeString(p LogicalPlan) string {
	sb := new(strings.Builder)
	writeTree(sb, p, nil)
	return sb.String()
}

func writeTree(sb *strings.Builder, p LogicalPlan, hasMore []bool) {
	for i, more := range hasMore {
		last := i == len(hasMore)-1
		switch {
		case last && more:
			sb.WriteString("|_")
		case last:
			sb.WriteString(`\_`)
		case more:
			sb.WriteString("| ")
		default:
			sb.WriteString("  ")
		}
	}
	sb.WriteString(p.String())
	sb.WriteString("\n")
	children := p.Children()
	for i, c := range children {
		writeTree(sb, c, append(hasMore[:len(hasMore):len(hasMore)], i < len(children)-1))
	}
}

// Equal reports whether two plans have the same structure
// and the same expressions.
func Equal(a, b LogicalPlan) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return TreeString(a) == TreeString(b)
}

var nameIDPattern = regexp.MustCompile(`#[0-9]+\b`)

// NormalizeIDs renumbers the column identities in a rendered plan
// in order of first appearance, starting from zero.
// The result is the same for plans built from the same query.
func NormalizeIDs(s string) string {
	ids := make(map[string]string)
	return nameIDPattern.ReplaceAllStringFunc(s, func(id string) string {
		if renumbered, ok := ids[id]; ok {
			return renumbered
		}
		renumbered := "#" + strconv.Itoa(len(ids))
		ids[id] = renumbered
		return renumbered
	})
}

func formatList[E expr.Expression](exprs []E) string {
	sb := new(strings.Builder)
	sb.WriteString("[")
	for i, e := range exprs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.String())
	}
	sb.WriteString("]")
	return sb.String()
}
