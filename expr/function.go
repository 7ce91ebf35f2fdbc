// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/runreveal/esql/parser"
)

// UnresolvedFunction is a call to a function
// that has not been bound to an implementation.
type UnresolvedFunction struct {
	source Source
	Name   string
	Args   []Expression
}

// NewUnresolvedFunction returns a new unresolved function call.
func NewUnresolvedFunction(source Source, name string, args []Expression) *UnresolvedFunction {
	return &UnresolvedFunction{source: source, Name: name, Args: args}
}

func (f *UnresolvedFunction) Source() Source         { return f.source }
func (f *UnresolvedFunction) Children() []Expression { return f.Args }
func (f *UnresolvedFunction) DataType() DataType     { return Unsupported }
func (f *UnresolvedFunction) Nullable() Nullability  { return NullabilityUnknown }
func (f *UnresolvedFunction) Foldable() bool         { return false }
func (f *UnresolvedFunction) Resolved() bool         { return false }

// ReplaceChildren returns a call to the same function with new arguments.
func (f *UnresolvedFunction) ReplaceChildren(children []Expression) Expression {
	return &UnresolvedFunction{source: f.source, Name: f.Name, Args: slices.Clone(children)}
}

func (f *UnresolvedFunction) String() string {
	return "?" + f.Name + "(" + joinExpressions(f.Args, ", ") + ")"
}

// FunctionBuilder constructs a call to a function from its arguments.
type FunctionBuilder func(source Source, args []Expression) (Expression, error)

// FunctionDefinition describes a function that can be called from a query.
type FunctionDefinition struct {
	// Name is the lowercase name of the function.
	Name    string
	Aliases []string
	MinArgs int
	// MaxArgs is the maximum number of arguments
	// or -1 if the function is variadic.
	MaxArgs int
	// Capability is the capability the function requires, if any.
	Capability string
	// Aggregate is true for functions that summarize many rows.
	Aggregate bool
	// Builder constructs calls to the function.
	// If nil, calls are left unresolved.
	Builder FunctionBuilder
}

// Registry is a set of functions available to queries.
type Registry struct {
	caps  parser.Capabilities
	defs  []*FunctionDefinition
	names map[string]*FunctionDefinition
}

// NewRegistry returns a registry of the built-in functions
// available with the given capabilities.
func NewRegistry(caps parser.Capabilities) *Registry {
	r := &Registry{
		caps:  caps,
		names: make(map[string]*FunctionDefinition),
	}
	for _, def := range builtinFunctions {
		if def.Capability != "" && (caps == nil || !caps.Enabled(def.Capability)) {
			continue
		}
		r.Register(def)
	}
	return r
}

// Register adds a function to the registry,
// replacing any function with the same name.
func (r *Registry) Register(def *FunctionDefinition) {
	r.defs = slices.DeleteFunc(r.defs, func(d *FunctionDefinition) bool { return d.Name == def.Name })
	r.defs = append(r.defs, def)
	r.names[strings.ToLower(def.Name)] = def
	for _, alias := range def.Aliases {
		r.names[strings.ToLower(alias)] = def
	}
}

// Names returns the names of the registered functions in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for _, def := range r.defs {
		names = append(names, def.Name)
	}
	slices.Sort(names)
	return names
}

// Definitions returns the registered functions sorted by name.
func (r *Registry) Definitions() []*FunctionDefinition {
	defs := slices.Clone(r.defs)
	slices.SortFunc(defs, func(a, b *FunctionDefinition) int { return strings.Compare(a.Name, b.Name) })
	return defs
}

// Lookup returns the function with the given name or alias, ignoring case.
func (r *Registry) Lookup(name string) (*FunctionDefinition, error) {
	if def := r.names[strings.ToLower(name)]; def != nil {
		return def, nil
	}
	if suggestion := r.closest(name); suggestion != "" {
		return nil, fmt.Errorf("Unknown function [%s], did you mean [%s]?", name, suggestion)
	}
	return nil, fmt.Errorf("Unknown function [%s]", name)
}

func (r *Registry) closest(name string) string {
	name = strings.ToLower(name)
	best, bestDistance := "", 3
	for candidate := range r.names {
		if d := levenshtein.ComputeDistance(name, candidate); d < bestDistance || (d == bestDistance && candidate < best) {
			best, bestDistance = candidate, d
		}
	}
	return best
}

// Build returns a call to the named function with the given arguments.
func (r *Registry) Build(source Source, name string, args []Expression) (Expression, error) {
	def, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	if err := def.checkArity(len(args)); err != nil {
		return nil, err
	}
	if def.Builder == nil {
		return NewUnresolvedFunction(source, name, args), nil
	}
	return def.Builder(source, args)
}

func (def *FunctionDefinition) checkArity(n int) error {
	switch {
	case def.MinArgs == def.MaxArgs && n != def.MinArgs:
		return fmt.Errorf("error building [%s]: expects exactly %s, received %d", def.Name, pluralArgs(def.MinArgs), n)
	case n < def.MinArgs:
		return fmt.Errorf("error building [%s]: expects at least %s, received %d", def.Name, pluralArgs(def.MinArgs), n)
	case def.MaxArgs >= 0 && n > def.MaxArgs:
		return fmt.Errorf("error building [%s]: expects at most %s, received %d", def.Name, pluralArgs(def.MaxArgs), n)
	}
	return nil
}

func pluralArgs(n int) string {
	if n == 1 {
		return "one argument"
	}
	return fmt.Sprintf("%d arguments", n)
}

// IsAggregate reports whether e is a call to an aggregate function.
func (r *Registry) IsAggregate(e Expression) bool {
	f, ok := e.(*UnresolvedFunction)
	if !ok {
		return false
	}
	def := r.names[strings.ToLower(f.Name)]
	return def != nil && def.Aggregate
}

func aggregate(name string, min, max int) *FunctionDefinition {
	return &FunctionDefinition{Name: name, MinArgs: min, MaxArgs: max, Aggregate: true}
}

func scalar(name string, min, max int, aliases ...string) *FunctionDefinition {
	return &FunctionDefinition{Name: name, Aliases: aliases, MinArgs: min, MaxArgs: max}
}

var builtinFunctions = []*FunctionDefinition{
	aggregate("avg", 1, 1),
	aggregate("count", 0, 1),
	aggregate("count_distinct", 1, 2),
	aggregate("max", 1, 1),
	aggregate("median", 1, 1),
	aggregate("median_absolute_deviation", 1, 1),
	aggregate("min", 1, 1),
	aggregate("percentile", 2, 2),
	aggregate("rate", 1, 1),
	aggregate("st_centroid_agg", 1, 1),
	aggregate("sum", 1, 1),
	aggregate("top", 3, 3),
	aggregate("values", 1, 1),
	aggregate("weighted_avg", 2, 2),

	scalar("abs", 1, 1),
	scalar("bucket", 2, 4),
	scalar("case", 2, -1),
	scalar("ceil", 1, 1),
	scalar("cidr_match", 2, -1),
	scalar("coalesce", 1, -1),
	scalar("concat", 2, -1),
	scalar("date_diff", 3, 3),
	scalar("date_format", 1, 2),
	scalar("date_parse", 1, 2),
	scalar("ends_with", 2, 2),
	scalar("floor", 1, 1),
	scalar("greatest", 1, -1),
	scalar("least", 1, -1),
	scalar("left", 2, 2),
	scalar("length", 1, 1),
	scalar("locate", 2, 3),
	scalar("log10", 1, 1),
	scalar("ltrim", 1, 1),
	scalar("mv_avg", 1, 1),
	scalar("mv_concat", 2, 2),
	scalar("mv_count", 1, 1),
	scalar("mv_dedupe", 1, 1),
	scalar("mv_first", 1, 1),
	scalar("mv_last", 1, 1),
	scalar("mv_max", 1, 1),
	scalar("mv_min", 1, 1),
	scalar("mv_sum", 1, 1),
	scalar("now", 0, 0),
	scalar("pow", 2, 2),
	scalar("replace", 3, 3),
	scalar("right", 2, 2),
	scalar("round", 1, 2),
	scalar("rtrim", 1, 1),
	scalar("split", 2, 2),
	scalar("sqrt", 1, 1),
	scalar("starts_with", 2, 2),
	scalar("substring", 2, 3),
	scalar("to_boolean", 1, 1, "to_bool"),
	scalar("to_datetime", 1, 1, "to_dt"),
	scalar("to_double", 1, 1, "to_dbl"),
	scalar("to_integer", 1, 1, "to_int"),
	scalar("to_ip", 1, 1),
	scalar("to_long", 1, 1),
	scalar("to_lower", 1, 1),
	scalar("to_string", 1, 1, "to_str"),
	scalar("to_upper", 1, 1),
	scalar("to_version", 1, 1, "to_ver"),
	scalar("trim", 1, 1),

	{
		Name:    "date_extract",
		MinArgs: 2,
		MaxArgs: 2,
		Builder: func(source Source, args []Expression) (Expression, error) {
			return NewDateExtract(source, args[0], args[1]), nil
		},
	},
	{
		Name:    "date_trunc",
		MinArgs: 2,
		MaxArgs: 2,
		Builder: func(source Source, args []Expression) (Expression, error) {
			return NewDateTrunc(source, args[0], args[1]), nil
		},
	},
	{
		Name:       "match",
		MinArgs:    2,
		MaxArgs:    2,
		Capability: parser.CapabilityMatchFunction,
		Builder: func(source Source, args []Expression) (Expression, error) {
			m := NewMatch(source, args[0], args[1])
			if err := m.ResolveQuery().Err(); err != nil {
				return nil, err
			}
			return m, nil
		},
	},
	{
		Name:       "qstr",
		MinArgs:    1,
		MaxArgs:    1,
		Capability: parser.CapabilityQstrFunction,
		Builder: func(source Source, args []Expression) (Expression, error) {
			q := NewQueryString(source, args[0])
			if err := q.ResolveQuery().Err(); err != nil {
				return nil, err
			}
			return q, nil
		},
	},
}
