// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package esql

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/runreveal/esql/expr"
	"github.com/runreveal/esql/parser"
	"github.com/tailscale/hujson"
	"golang.org/x/exp/maps"
)

// Errors wrapped by query parameter errors.
var (
	ErrUnknownParam              = errors.New("unknown query parameter")
	ErrParamConstantAsIdentifier = errors.New("constant query parameter used as an identifier")
	ErrParamPatternAsIdentifier  = errors.New("pattern query parameter used as an identifier")
	ErrInconsistentParams        = errors.New("inconsistent query parameters")
)

// ParamKind is the way a query parameter's value is interpreted.
type ParamKind int

// Parameter kinds.
const (
	// ParamConstant is a literal value.
	ParamConstant ParamKind = iota
	// ParamIdentifier is the name of a column or function.
	ParamIdentifier
	// ParamPattern is a column name pattern.
	ParamPattern
)

func (k ParamKind) String() string {
	switch k {
	case ParamIdentifier:
		return "identifier"
	case ParamPattern:
		return "pattern"
	default:
		return "constant"
	}
}

// Param is the value of a query parameter.
type Param struct {
	// Name is the parameter's name, or empty if it is only positional.
	Name string
	Kind ParamKind
	// Value is the parameter's value.
	// For identifiers and patterns, it is a string.
	// For constants, it is a value of the form held by [expr.Literal].
	Value any
	Type  expr.DataType
}

func (p *Param) String() string {
	if p.Kind == ParamConstant {
		return expr.NewLiteral(expr.EmptySource(), p.Value, p.Type).String()
	}
	s, _ := p.Value.(string)
	return s
}

// Params is the set of values substituted for the parameters of a query.
// Parameters are referred to by position ("?" or "?1") or by name ("?name").
type Params struct {
	List []*Param
}

// ByName returns the parameter with the given name.
func (params *Params) ByName(name string) *Param {
	if params == nil {
		return nil
	}
	for _, p := range params.List {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// ByPosition returns the parameter at the given 1-based position.
func (params *Params) ByPosition(pos int) *Param {
	if params == nil || pos < 1 || pos > len(params.List) {
		return nil
	}
	return params.List[pos-1]
}

func (params *Params) names() []string {
	if params == nil {
		return nil
	}
	set := make(map[string]struct{})
	for _, p := range params.List {
		if p.Name != "" {
			set[p.Name] = struct{}{}
		}
	}
	names := maps.Keys(set)
	slices.Sort(names)
	return names
}

// ParamError is an error caused by a query parameter.
type ParamError struct {
	// Kind is one of the ErrParam variables.
	Kind    error
	Message string
}

func (e *ParamError) Error() string { return e.Message }
func (e *ParamError) Unwrap() error { return e.Kind }

func paramErrorf(kind error, format string, args ...any) *ParamError {
	return &ParamError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ParseParams parses query parameters from a JSON array.
// Comments and trailing commas are permitted.
//
// Each element of the array is either a value,
// which defines a positional parameter,
// or an object with a single key,
// which defines a parameter with the key as its name.
// A parameter's value is a JSON string, number, boolean, or null,
// or an object of the form {"identifier": "name"} or {"pattern": "name*"}.
func ParseParams(data []byte) (*Params, error) {
	data, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("parse params: %v", err)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse params: %v", err)
	}
	params := new(Params)
	for i, item := range items {
		p, err := parseParamItem(item)
		if err != nil {
			return nil, fmt.Errorf("parse params: item %d: %v", i+1, err)
		}
		if p.Name != "" && params.ByName(p.Name) != nil {
			return nil, fmt.Errorf("parse params: item %d: duplicate parameter %q", i+1, p.Name)
		}
		params.List = append(params.List, p)
	}
	return params, nil
}

func parseParamItem(item json.RawMessage) (*Param, error) {
	item = bytes.TrimSpace(item)
	if len(item) == 0 || item[0] != '{' {
		return parseParamValue("", item)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(item, &obj); err != nil {
		return nil, err
	}
	if len(obj) != 1 {
		return nil, fmt.Errorf("named parameter must have exactly one key, found %d", len(obj))
	}
	for name, value := range obj {
		if !isParamName(name) {
			return nil, fmt.Errorf("invalid parameter name %q", name)
		}
		return parseParamValue(name, value)
	}
	panic("unreachable")
}

func isParamName(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		ok := c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || i > 0 && '0' <= c && c <= '9'
		if !ok {
			return false
		}
	}
	return true
}

func parseParamValue(name string, value json.RawMessage) (*Param, error) {
	value = bytes.TrimSpace(value)
	if len(value) > 0 && value[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(value, &obj); err != nil {
			return nil, err
		}
		if len(obj) != 1 {
			return nil, fmt.Errorf("parameter %q: expected an object with an %q or %q key", name, "identifier", "pattern")
		}
		for key, raw := range obj {
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, fmt.Errorf("parameter %q: %s must be a string", name, key)
			}
			switch key {
			case "identifier":
				return &Param{Name: name, Kind: ParamIdentifier, Value: s, Type: expr.Keyword}, nil
			case "pattern":
				if !strings.Contains(s, "*") {
					return nil, fmt.Errorf("parameter %q: pattern %q must contain a wildcard", name, s)
				}
				return &Param{Name: name, Kind: ParamPattern, Value: s, Type: expr.Keyword}, nil
			default:
				return nil, fmt.Errorf("parameter %q: unknown key %q (expected %q or %q)", name, key, "identifier", "pattern")
			}
		}
	}

	dec := json.NewDecoder(bytes.NewReader(value))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	p := &Param{Name: name, Kind: ParamConstant}
	switch v := v.(type) {
	case nil:
		p.Type = expr.Null
	case bool:
		p.Value, p.Type = v, expr.Boolean
	case string:
		p.Value, p.Type = v, expr.Keyword
	case json.Number:
		var err error
		p.Value, p.Type, err = parseNumber(string(v))
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported parameter value %s", value)
	}
	return p, nil
}

// parseNumber returns the value and type of a numeric literal.
// Integers are typed by the smallest of integer, long, or unsigned_long
// that holds them and fall back to double.
func parseNumber(s string) (any, expr.DataType, error) {
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			if math.MinInt32 <= i && i <= math.MaxInt32 {
				return int32(i), expr.Integer, nil
			}
			return i, expr.Long, nil
		}
		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return u, expr.UnsignedLong, nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, expr.Unsupported, fmt.Errorf("invalid number %q", s)
	}
	return f, expr.Double, nil
}

// paramResolver looks up the parameters referred to by a query
// and checks that the query refers to them in a consistent style.
type paramResolver struct {
	params *Params
	// anonymous holds the offsets of the query's "?" markers in ascending order.
	// The marker at anonymous[i] refers to the parameter at position i+1.
	anonymous []int
	style     string
}

func newParamResolver(query string, params *Params) paramResolver {
	r := paramResolver{params: params}
	for _, tok := range parser.Scan(query) {
		if tok.Kind == parser.TokenParam {
			r.anonymous = append(r.anonymous, tok.Span.Start)
		}
	}
	return r
}

const (
	anonymousStyle  = "anonymous"
	positionalStyle = "positional"
	namedStyle      = "named"
)

// resolve returns the parameter referred to by "?" + name
// written at the given offset in the query.
// An empty name is an anonymous parameter.
func (r *paramResolver) resolve(name string, offset int) (*Param, error) {
	style := namedStyle
	switch {
	case name == "":
		style = anonymousStyle
	case name[0] >= '0' && name[0] <= '9':
		style = positionalStyle
	}
	if r.style == "" {
		r.style = style
	} else if r.style != style {
		return nil, paramErrorf(ErrInconsistentParams,
			"Inconsistent parameter declaration, use one of positional, named or anonymous params but not a combination of %s and %s",
			r.style, style)
	}

	switch style {
	case anonymousStyle:
		if i, found := slices.BinarySearch(r.anonymous, offset); found {
			if p := r.params.ByPosition(i + 1); p != nil {
				return p, nil
			}
		}
		return nil, paramErrorf(ErrUnknownParam,
			"Not enough actual parameters %d", len(r.paramList()))
	case positionalStyle:
		pos, err := strconv.Atoi(name)
		if err == nil {
			if p := r.params.ByPosition(pos); p != nil {
				return p, nil
			}
		}
		n := len(r.paramList())
		if n == 0 {
			return nil, paramErrorf(ErrUnknownParam, "No parameter is defined for position %s", name)
		}
		return nil, paramErrorf(ErrUnknownParam,
			"No parameter is defined for position %s, did you mean any position between 1 and %d?", name, n)
	default:
		if p := r.params.ByName(name); p != nil {
			return p, nil
		}
		best, bestDistance := "", 3
		for _, candidate := range r.params.names() {
			if d := levenshtein.ComputeDistance(name, candidate); d < bestDistance {
				best, bestDistance = candidate, d
			}
		}
		if best != "" {
			return nil, paramErrorf(ErrUnknownParam, "Unknown query parameter [%s], did you mean [%s]?", name, best)
		}
		return nil, paramErrorf(ErrUnknownParam, "Unknown query parameter [%s]", name)
	}
}

func (r *paramResolver) paramList() []*Param {
	if r.params == nil {
		return nil
	}
	return r.params.List
}
