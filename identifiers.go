// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package esql

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/runreveal/esql/expr"
	"github.com/runreveal/esql/parser"
)

// clusterSeparator separates a cluster name from an index pattern.
const clusterSeparator = ":"

// unquoteIdString removes the backticks around a quoted identifier
// and collapses each doubled backtick inside it to a single backtick.
func unquoteIdString(s string) string {
	if len(s) < 2 {
		return s
	}
	return strings.ReplaceAll(s[1:len(s)-1], "``", "`")
}

var unquotedIdentPattern = regexp.MustCompile(`\A(?:[A-Za-z][A-Za-z0-9_]*|[_@][A-Za-z0-9_]+)\z`)

// quoteIdString returns s as an identifier,
// adding backticks only if s cannot be written without them.
func quoteIdString(s string) string {
	if unquotedIdentPattern.MatchString(s) {
		return s
	}
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// quoteQualifiedName returns a dotted column name as it would be written in a query,
// quoting each part that needs it.
func quoteQualifiedName(name string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = quoteIdString(part)
	}
	return strings.Join(parts, ".")
}

// identifier returns the name an identifier or parameter refers to.
func (b *builder) identifier(id parser.IdentOrParam) (string, error) {
	switch id := id.(type) {
	case *parser.Ident:
		if id.Quoted {
			return unquoteIdString(id.Name), nil
		}
		return id.Name, nil
	case *parser.Param:
		p, err := b.param(id)
		if err != nil {
			return "", err
		}
		switch p.Kind {
		case ParamIdentifier:
			return p.Value.(string), nil
		case ParamPattern:
			return "", b.error(id.Span(), paramErrorf(ErrParamPatternAsIdentifier,
				"Query parameter [?%s][%v] declared as a pattern, cannot be used as an identifier", id.Name, p.Value))
		default:
			return "", b.error(id.Span(), paramErrorf(ErrParamConstantAsIdentifier,
				"Query parameter [?%s] with value [%v] declared as a constant, cannot be used as an identifier or pattern", id.Name, p))
		}
	default:
		return "", b.errorf(id.Span(), "unsupported identifier %T", id)
	}
}

// qualifiedName returns the dotted name of a column.
func (b *builder) qualifiedName(name *parser.QualifiedName) (string, error) {
	parts := make([]string, 0, len(name.Parts))
	for _, part := range name.Parts {
		s, err := b.identifier(part)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "."), nil
}

// attribute returns a reference to the named column.
func (b *builder) attribute(name *parser.QualifiedName) (*expr.UnresolvedAttribute, error) {
	s, err := b.qualifiedName(name)
	if err != nil {
		return nil, err
	}
	return expr.NewUnresolvedAttribute(b.source(name), s), nil
}

// namePattern is a column name that may contain wildcards.
type namePattern struct {
	// display is the pattern without quoting.
	display string
	// regexp matches the names the pattern refers to.
	regexp   string
	wildcard bool
}

func (pat *namePattern) append(text string, literal bool) {
	if literal {
		pat.display += text
		pat.regexp += regexp.QuoteMeta(text)
		return
	}
	for _, c := range text {
		if c == '*' {
			pat.wildcard = true
			pat.display += "*"
			pat.regexp += ".*"
			continue
		}
		pat.display += string(c)
		pat.regexp += regexp.QuoteMeta(string(c))
	}
}

// appendIdentPattern adds a pattern token's text to pat.
// Backtick-quoted runs are literal, and unquoted runs may contain wildcards.
func (pat *namePattern) appendIdentPattern(text string) {
	for text != "" {
		if text[0] != '`' {
			end := strings.IndexByte(text, '`')
			if end < 0 {
				end = len(text)
			}
			pat.append(text[:end], false)
			text = text[end:]
			continue
		}
		// Find the closing backtick, skipping doubled backticks.
		end := 1
		for end < len(text) {
			if text[end] == '`' {
				if end+1 < len(text) && text[end+1] == '`' {
					end += 2
					continue
				}
				break
			}
			end++
		}
		if end >= len(text) {
			end = len(text) - 1
		}
		pat.append(unquoteIdString(text[:end+1]), true)
		text = text[end+1:]
	}
}

// qualifiedNamePattern returns the column reference a name pattern refers to:
// a star for "*", a name pattern if it contains wildcards,
// or an attribute otherwise.
func (b *builder) qualifiedNamePattern(name *parser.QualifiedNamePattern) (expr.NamedExpression, error) {
	pat := new(namePattern)
	for i, part := range name.Parts {
		if i > 0 {
			pat.append(".", true)
		}
		switch part := part.(type) {
		case *parser.IdentPattern:
			pat.appendIdentPattern(part.Text)
		case *parser.Param:
			p, err := b.param(part)
			if err != nil {
				return nil, err
			}
			switch p.Kind {
			case ParamIdentifier:
				pat.append(p.Value.(string), true)
			case ParamPattern:
				pat.append(p.Value.(string), false)
			default:
				return nil, b.error(part.Span(), paramErrorf(ErrParamConstantAsIdentifier,
					"Query parameter [?%s] with value [%v] declared as a constant, cannot be used as an identifier or pattern", part.Name, p))
			}
		default:
			return nil, b.errorf(part.Span(), "unsupported name pattern %T", part)
		}
	}

	source := b.source(name)
	switch {
	case pat.display == "*":
		return expr.NewUnresolvedStar(source), nil
	case pat.wildcard:
		re, err := regexp.Compile(`\A` + pat.regexp + `\z`)
		if err != nil {
			return nil, b.errorf(name.Span(), "invalid pattern %s: %v", pat.display, err)
		}
		return expr.NewUnresolvedNamePattern(source, re, pat.display), nil
	default:
		return expr.NewUnresolvedAttribute(source, pat.display), nil
	}
}

// indexString returns the name of an index or cluster.
func (b *builder) indexString(name *parser.SourceName) (string, error) {
	if !name.Quoted {
		return name.Text, nil
	}
	s, err := unquoteString(name.Text)
	if err != nil {
		return "", b.error(name.Span(), err)
	}
	return s, nil
}

// indexPattern returns a single index pattern, qualified by its cluster if present.
func (b *builder) indexPattern(pat *parser.IndexPattern) (string, error) {
	index, err := b.indexString(pat.Index)
	if err != nil {
		return "", err
	}
	if pat.Cluster == nil {
		return index, nil
	}
	cluster, err := b.indexString(pat.Cluster)
	if err != nil {
		return "", err
	}
	return cluster + clusterSeparator + index, nil
}

// indexPatterns returns a comma-separated list of index patterns.
func (b *builder) indexPatterns(patterns []*parser.IndexPattern) (string, error) {
	parts := make([]string, 0, len(patterns))
	for _, pat := range patterns {
		s, err := b.indexPattern(pat)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ","), nil
}

// unquoteString returns the value of a string literal.
// Triple-quoted strings are taken verbatim.
// Other strings may contain the escapes \t, \n, \r, \", and \\.
func unquoteString(raw string) (string, error) {
	if strings.HasPrefix(raw, `"""`) {
		if len(raw) < 6 || !strings.HasSuffix(raw, `"""`) {
			return "", fmt.Errorf("unterminated string %s", raw)
		}
		return raw[3 : len(raw)-3], nil
	}
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return "", fmt.Errorf("invalid string %s", raw)
	}
	body := raw[1 : len(raw)-1]
	if !strings.Contains(body, `\`) {
		return body, nil
	}
	sb := new(strings.Builder)
	sb.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("invalid escape at end of string %s", raw)
		}
		switch body[i] {
		case 't':
			sb.WriteByte('\t')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case '"':
			sb.WriteByte('"')
		case '\\':
			sb.WriteByte('\\')
		default:
			return "", fmt.Errorf("invalid escape sequence \\%c in string %s", body[i], raw)
		}
	}
	return sb.String(), nil
}
