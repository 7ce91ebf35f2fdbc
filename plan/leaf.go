// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"strings"

	"github.com/runreveal/esql/expr"
)

// IndexMode is how a relation reads its indices.
type IndexMode int

// Index modes.
const (
	// StandardMode reads documents as rows, like FROM.
	StandardMode IndexMode = iota
	// TimeSeriesMode reads time series, like METRICS.
	TimeSeriesMode
)

func (m IndexMode) String() string {
	if m == TimeSeriesMode {
		return "time_series"
	}
	return "standard"
}

// UnresolvedRelation reads the indices matching a pattern.
// Its columns are not known until the indices' mappings are consulted,
// so only the requested metadata fields are part of its output.
type UnresolvedRelation struct {
	source expr.Source
	// Table is the comma-separated list of index patterns.
	Table    string
	Metadata []expr.Attribute
	Mode     IndexMode
	// Command is the name of the command that reads the relation.
	Command string
}

// NewUnresolvedRelation returns a new relation.
func NewUnresolvedRelation(source expr.Source, table string, metadata []expr.Attribute, mode IndexMode, command string) *UnresolvedRelation {
	return &UnresolvedRelation{source: source, Table: table, Metadata: metadata, Mode: mode, Command: command}
}

func (r *UnresolvedRelation) Source() expr.Source      { return r.source }
func (r *UnresolvedRelation) Children() []LogicalPlan  { return nil }
func (r *UnresolvedRelation) Output() []expr.Attribute { return r.Metadata }
func (r *UnresolvedRelation) Resolved() bool           { return false }

func (r *UnresolvedRelation) ReplaceChildren(children []LogicalPlan) LogicalPlan {
	checkChildren(r, children, 0)
	return r
}

func (r *UnresolvedRelation) String() string {
	sb := new(strings.Builder)
	sb.WriteString("UnresolvedRelation[")
	sb.WriteString(r.Table)
	sb.WriteString("]")
	if r.Mode != StandardMode {
		sb.WriteString("[")
		sb.WriteString(r.Mode.String())
		sb.WriteString("]")
	}
	if len(r.Metadata) > 0 {
		sb.WriteString(formatList(r.Metadata))
	}
	return sb.String()
}

// metadataTypes is the type of each metadata field that can be requested with FROM.
var metadataTypes = map[string]expr.DataType{
	"_id":      expr.Keyword,
	"_ignored": expr.Keyword,
	"_index":   expr.Keyword,
	"_score":   expr.Double,
	"_version": expr.Long,
}

// MetadataAttribute returns a column for the named metadata field.
// It returns false if name is not a metadata field.
func MetadataAttribute(source expr.Source, name string) (expr.Attribute, bool) {
	typ, ok := metadataTypes[name]
	if !ok {
		return nil, false
	}
	return expr.NewFieldAttribute(source, name, typ, expr.NullabilityFalse), true
}

// Row produces a single row from constant expressions.
type Row struct {
	source expr.Source
	Fields []*expr.Alias
}

// NewRow returns a new single-row relation.
func NewRow(source expr.Source, fields []*expr.Alias) *Row {
	return &Row{source: source, Fields: fields}
}

func (r *Row) Source() expr.Source      { return r.source }
func (r *Row) Children() []LogicalPlan  { return nil }
func (r *Row) Output() []expr.Attribute { return attributes(r.Fields) }
func (r *Row) Resolved() bool           { return expressionsResolved(r.Fields) }
func (r *Row) String() string           { return "Row" + formatList(r.Fields) }

func (r *Row) ReplaceChildren(children []LogicalPlan) LogicalPlan {
	checkChildren(r, children, 0)
	return r
}

// LocalRelation is a relation whose rows are held in memory.
type LocalRelation struct {
	source     expr.Source
	Attributes []expr.Attribute
	Rows       [][]any
}

// NewLocalRelation returns a new in-memory relation.
func NewLocalRelation(source expr.Source, attrs []expr.Attribute, rows [][]any) *LocalRelation {
	return &LocalRelation{source: source, Attributes: attrs, Rows: rows}
}

func (r *LocalRelation) Source() expr.Source      { return r.source }
func (r *LocalRelation) Children() []LogicalPlan  { return nil }
func (r *LocalRelation) Output() []expr.Attribute { return r.Attributes }
func (r *LocalRelation) Resolved() bool           { return expressionsResolved(r.Attributes) }
func (r *LocalRelation) String() string           { return "LocalRelation" + formatList(r.Attributes) }

func (r *LocalRelation) ReplaceChildren(children []LogicalPlan) LogicalPlan {
	checkChildren(r, children, 0)
	return r
}

func keywordAttributes(source expr.Source, names ...string) []expr.Attribute {
	attrs := make([]expr.Attribute, 0, len(names))
	for _, name := range names {
		attrs = append(attrs, expr.NewReferenceAttribute(source, name, expr.Keyword, expr.NullabilityTrue))
	}
	return attrs
}

// ShowInfo produces information about the server.
type ShowInfo struct {
	source     expr.Source
	attributes []expr.Attribute
}

// NewShowInfo returns a new SHOW INFO relation.
func NewShowInfo(source expr.Source) *ShowInfo {
	return &ShowInfo{source: source, attributes: keywordAttributes(source, "version", "date", "hash")}
}

func (s *ShowInfo) Source() expr.Source      { return s.source }
func (s *ShowInfo) Children() []LogicalPlan  { return nil }
func (s *ShowInfo) Output() []expr.Attribute { return s.attributes }
func (s *ShowInfo) Resolved() bool           { return true }
func (s *ShowInfo) String() string           { return "ShowInfo" + formatList(s.attributes) }

func (s *ShowInfo) ReplaceChildren(children []LogicalPlan) LogicalPlan {
	checkChildren(s, children, 0)
	return s
}

// MetaFunctions produces a row for each function available to queries.
type MetaFunctions struct {
	source     expr.Source
	Functions  []*expr.FunctionDefinition
	attributes []expr.Attribute
}

// NewMetaFunctions returns a new META FUNCTIONS relation.
func NewMetaFunctions(source expr.Source, functions []*expr.FunctionDefinition) *MetaFunctions {
	return &MetaFunctions{
		source:     source,
		Functions:  functions,
		attributes: keywordAttributes(source, "name", "synopsis", "kind"),
	}
}

func (m *MetaFunctions) Source() expr.Source      { return m.source }
func (m *MetaFunctions) Children() []LogicalPlan  { return nil }
func (m *MetaFunctions) Output() []expr.Attribute { return m.attributes }
func (m *MetaFunctions) Resolved() bool           { return true }
func (m *MetaFunctions) String() string           { return "MetaFunctions" + formatList(m.attributes) }

func (m *MetaFunctions) ReplaceChildren(children []LogicalPlan) LogicalPlan {
	checkChildren(m, children, 0)
	return m
}

// Rows returns the relation's rows: the name, synopsis, and kind of each function.
func (m *MetaFunctions) Rows() [][]any {
	rows := make([][]any, 0, len(m.Functions))
	for _, def := range m.Functions {
		kind := "scalar"
		if def.Aggregate {
			kind = "aggregate"
		}
		rows = append(rows, []any{def.Name, synopsis(def), kind})
	}
	return rows
}

func synopsis(def *expr.FunctionDefinition) string {
	sb := new(strings.Builder)
	sb.WriteString(def.Name)
	sb.WriteString("(")
	for i := 0; i < def.MinArgs; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("arg")
		sb.WriteString(string(rune('1' + i%9)))
	}
	switch {
	case def.MaxArgs < 0:
		if def.MinArgs > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("...")
	case def.MaxArgs > def.MinArgs:
		if def.MinArgs > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("?")
	}
	sb.WriteString(")")
	return sb.String()
}

// Explain produces a description of a query's plan.
type Explain struct {
	source     expr.Source
	Query      LogicalPlan
	attributes []expr.Attribute
}

// NewExplain returns a new EXPLAIN relation for a query.
func NewExplain(source expr.Source, query LogicalPlan) *Explain {
	return &Explain{source: source, Query: query, attributes: keywordAttributes(source, "plan", "type")}
}

func (e *Explain) Source() expr.Source      { return e.source }
func (e *Explain) Children() []LogicalPlan  { return []LogicalPlan{e.Query} }
func (e *Explain) Output() []expr.Attribute { return e.attributes }
func (e *Explain) Resolved() bool           { return true }
func (e *Explain) String() string           { return "Explain" + formatList(e.attributes) }

// ReplaceChildren returns an EXPLAIN of the new query.
func (e *Explain) ReplaceChildren(children []LogicalPlan) LogicalPlan {
	e2 := *e
	e2.Query = onlyChild(e, children)
	return &e2
}
