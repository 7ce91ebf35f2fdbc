// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"fmt"
	"regexp"
)

// UnresolvedAttribute is a reference to a column by name
// that has not been bound to a schema.
type UnresolvedAttribute struct {
	source Source
	name   string
	id     NameID
}

// NewUnresolvedAttribute returns a new unresolved reference to the named column.
func NewUnresolvedAttribute(source Source, name string) *UnresolvedAttribute {
	return &UnresolvedAttribute{source: source, name: name, id: NewNameID()}
}

func (a *UnresolvedAttribute) Source() Source                         { return a.source }
func (a *UnresolvedAttribute) Children() []Expression                 { return nil }
func (a *UnresolvedAttribute) DataType() DataType                     { return Unsupported }
func (a *UnresolvedAttribute) Nullable() Nullability                  { return NullabilityUnknown }
func (a *UnresolvedAttribute) Foldable() bool                         { return false }
func (a *UnresolvedAttribute) Resolved() bool                         { return false }
func (a *UnresolvedAttribute) Name() string                           { return a.name }
func (a *UnresolvedAttribute) ID() NameID                             { return a.id }
func (a *UnresolvedAttribute) ToAttribute() Attribute                 { return a }
func (a *UnresolvedAttribute) WithNullability(Nullability) Attribute { return a }
func (a *UnresolvedAttribute) String() string                         { return "?" + a.name }

func (a *UnresolvedAttribute) ReplaceChildren(children []Expression) Expression {
	checkChildren(a, children, 0)
	return a
}

// Equal reports whether e is an unresolved reference to the same name.
func (a *UnresolvedAttribute) Equal(e Expression) bool {
	other, ok := e.(*UnresolvedAttribute)
	return ok && a.name == other.name
}

// UnresolvedNamePattern matches the names of zero or more columns.
type UnresolvedNamePattern struct {
	source  Source
	pattern string
	re      *regexp.Regexp
}

// NewUnresolvedNamePattern returns a pattern that matches the column names
// fully matched by re. pattern is the pattern as it is displayed.
func NewUnresolvedNamePattern(source Source, re *regexp.Regexp, pattern string) *UnresolvedNamePattern {
	return &UnresolvedNamePattern{source: source, pattern: pattern, re: re}
}

func (p *UnresolvedNamePattern) Source() Source                         { return p.source }
func (p *UnresolvedNamePattern) Children() []Expression                 { return nil }
func (p *UnresolvedNamePattern) DataType() DataType                     { return Unsupported }
func (p *UnresolvedNamePattern) Nullable() Nullability                  { return NullabilityUnknown }
func (p *UnresolvedNamePattern) Foldable() bool                         { return false }
func (p *UnresolvedNamePattern) Resolved() bool                         { return false }
func (p *UnresolvedNamePattern) Name() string                           { return p.pattern }
func (p *UnresolvedNamePattern) ID() NameID                             { return 0 }
func (p *UnresolvedNamePattern) ToAttribute() Attribute                 { return p }
func (p *UnresolvedNamePattern) WithNullability(Nullability) Attribute { return p }
func (p *UnresolvedNamePattern) String() string                         { return "?" + p.pattern }

func (p *UnresolvedNamePattern) ReplaceChildren(children []Expression) Expression {
	checkChildren(p, children, 0)
	return p
}

// Match reports whether the pattern matches the column name.
func (p *UnresolvedNamePattern) Match(name string) bool {
	return p.re.MatchString(name)
}

// UnresolvedStar matches every column.
type UnresolvedStar struct {
	source Source
}

// NewUnresolvedStar returns a new star.
func NewUnresolvedStar(source Source) *UnresolvedStar {
	return &UnresolvedStar{source: source}
}

func (s *UnresolvedStar) Source() Source                         { return s.source }
func (s *UnresolvedStar) Children() []Expression                 { return nil }
func (s *UnresolvedStar) DataType() DataType                     { return Unsupported }
func (s *UnresolvedStar) Nullable() Nullability                  { return NullabilityUnknown }
func (s *UnresolvedStar) Foldable() bool                         { return false }
func (s *UnresolvedStar) Resolved() bool                         { return false }
func (s *UnresolvedStar) Name() string                           { return "*" }
func (s *UnresolvedStar) ID() NameID                             { return 0 }
func (s *UnresolvedStar) ToAttribute() Attribute                 { return s }
func (s *UnresolvedStar) WithNullability(Nullability) Attribute { return s }
func (s *UnresolvedStar) String() string                         { return "*" }

func (s *UnresolvedStar) ReplaceChildren(children []Expression) Expression {
	checkChildren(s, children, 0)
	return s
}

// FieldAttribute is a column read from an index.
type FieldAttribute struct {
	source   Source
	name     string
	typ      DataType
	nullable Nullability
	id       NameID
}

// NewFieldAttribute returns a reference to a new index column.
func NewFieldAttribute(source Source, name string, typ DataType, nullable Nullability) *FieldAttribute {
	return &FieldAttribute{source: source, name: name, typ: typ, nullable: nullable, id: NewNameID()}
}

func (a *FieldAttribute) Source() Source         { return a.source }
func (a *FieldAttribute) Children() []Expression { return nil }
func (a *FieldAttribute) DataType() DataType     { return a.typ }
func (a *FieldAttribute) Nullable() Nullability  { return a.nullable }
func (a *FieldAttribute) Foldable() bool         { return false }
func (a *FieldAttribute) Resolved() bool         { return true }
func (a *FieldAttribute) Name() string           { return a.name }
func (a *FieldAttribute) ID() NameID             { return a.id }
func (a *FieldAttribute) ToAttribute() Attribute { return a }

// ReplaceChildren returns a: attributes have no children.
func (a *FieldAttribute) ReplaceChildren(children []Expression) Expression {
	checkChildren(a, children, 0)
	return a
}

func (a *FieldAttribute) WithNullability(n Nullability) Attribute {
	a2 := *a
	a2.nullable = n
	return &a2
}

// ToReference returns a reference attribute for the same column.
func (a *FieldAttribute) ToReference() *ReferenceAttribute {
	return &ReferenceAttribute{source: a.source, name: a.name, typ: a.typ, nullable: a.nullable, id: a.id}
}

func (a *FieldAttribute) String() string {
	return fmt.Sprintf("%s{f}#%d", a.name, a.id)
}

// ReferenceAttribute is a column computed by a plan node
// rather than read from an index.
type ReferenceAttribute struct {
	source   Source
	name     string
	typ      DataType
	nullable Nullability
	id       NameID
}

// NewReferenceAttribute returns a reference to a new computed column.
func NewReferenceAttribute(source Source, name string, typ DataType, nullable Nullability) *ReferenceAttribute {
	return &ReferenceAttribute{source: source, name: name, typ: typ, nullable: nullable, id: NewNameID()}
}

func (a *ReferenceAttribute) Source() Source         { return a.source }
func (a *ReferenceAttribute) Children() []Expression { return nil }
func (a *ReferenceAttribute) DataType() DataType     { return a.typ }
func (a *ReferenceAttribute) Nullable() Nullability  { return a.nullable }
func (a *ReferenceAttribute) Foldable() bool         { return false }
func (a *ReferenceAttribute) Resolved() bool         { return a.typ != Unsupported }
func (a *ReferenceAttribute) Name() string           { return a.name }
func (a *ReferenceAttribute) ID() NameID             { return a.id }
func (a *ReferenceAttribute) ToAttribute() Attribute { return a }

func (a *ReferenceAttribute) ReplaceChildren(children []Expression) Expression {
	checkChildren(a, children, 0)
	return a
}

func (a *ReferenceAttribute) WithNullability(n Nullability) Attribute {
	a2 := *a
	a2.nullable = n
	return &a2
}

func (a *ReferenceAttribute) String() string {
	return fmt.Sprintf("%s{r}#%d", a.name, a.id)
}

// ToReference converts an attribute into a reference attribute
// with the same name, type, nullability, and identity.
// Unresolved attributes are returned unchanged.
func ToReference(a Attribute) Attribute {
	switch a := a.(type) {
	case *FieldAttribute:
		return a.ToReference()
	default:
		return a
	}
}

// Alias names the value of an expression.
type Alias struct {
	source Source
	name   string
	child  Expression
	id     NameID
}

// NewAlias returns a new alias for child.
func NewAlias(source Source, name string, child Expression) *Alias {
	return &Alias{source: source, name: name, child: child, id: NewNameID()}
}

func (a *Alias) Source() Source         { return a.source }
func (a *Alias) Children() []Expression { return []Expression{a.child} }
func (a *Alias) Child() Expression      { return a.child }
func (a *Alias) DataType() DataType     { return a.child.DataType() }
func (a *Alias) Nullable() Nullability  { return a.child.Nullable() }
func (a *Alias) Foldable() bool         { return false }
func (a *Alias) Resolved() bool         { return a.child.Resolved() }
func (a *Alias) Name() string           { return a.name }
func (a *Alias) ID() NameID             { return a.id }

// ReplaceChildren returns an alias of the new child
// with the same name and identity.
func (a *Alias) ReplaceChildren(children []Expression) Expression {
	checkChildren(a, children, 1)
	return &Alias{source: a.source, name: a.name, child: children[0], id: a.id}
}

// ToAttribute returns a reference attribute with the alias's identity.
func (a *Alias) ToAttribute() Attribute {
	if !a.child.Resolved() {
		return NewUnresolvedAttribute(a.source, a.name)
	}
	return &ReferenceAttribute{
		source:   a.source,
		name:     a.name,
		typ:      a.child.DataType(),
		nullable: a.child.Nullable(),
		id:       a.id,
	}
}

func (a *Alias) String() string {
	return operandString(a.child) + " AS " + a.name
}
