// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package esql

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/runreveal/esql/expr"
)

// grokPatterns is the dictionary of named patterns
// that a grok pattern can refer to with %{NAME}.
var grokPatterns = map[string]string{
	"USERNAME":          `[a-zA-Z0-9._-]+`,
	"USER":              `%{USERNAME}`,
	"EMAILLOCALPART":    `[a-zA-Z0-9!#$%&'*+/=?^_{|}~-]+(?:\.[a-zA-Z0-9!#$%&'*+/=?^_{|}~-]+)*`,
	"EMAILADDRESS":      `%{EMAILLOCALPART}@%{HOSTNAME}`,
	"INT":               `(?:[+-]?(?:[0-9]+))`,
	"BASE10NUM":         `[+-]?(?:[0-9]+(?:\.[0-9]+)?|\.[0-9]+)`,
	"NUMBER":            `(?:%{BASE10NUM})`,
	"BASE16NUM":         `(?:0[xX])?[0-9A-Fa-f]+`,
	"POSINT":            `\b(?:[1-9][0-9]*)\b`,
	"NONNEGINT":         `\b(?:[0-9]+)\b`,
	"WORD":              `\b\w+\b`,
	"NOTSPACE":          `\S+`,
	"SPACE":             `\s*`,
	"DATA":              `.*?`,
	"GREEDYDATA":        `.*`,
	"QUOTEDSTRING":      `"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'`,
	"UUID":              `[A-Fa-f0-9]{8}-(?:[A-Fa-f0-9]{4}-){3}[A-Fa-f0-9]{12}`,
	"MAC":               `(?:[A-Fa-f0-9]{2}[:-]){5}[A-Fa-f0-9]{2}|(?:[A-Fa-f0-9]{4}\.){2}[A-Fa-f0-9]{4}`,
	"IPV4":              `(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)`,
	"IPV6":              `(?:[0-9A-Fa-f]{0,4}:){2,7}[0-9A-Fa-f]{0,4}`,
	"IP":                `(?:%{IPV6}|%{IPV4})`,
	"HOSTNAME":          `\b(?:[0-9A-Za-z][0-9A-Za-z-]{0,62})(?:\.(?:[0-9A-Za-z][0-9A-Za-z-]{0,62}))*(?:\.?|\b)`,
	"IPORHOST":          `(?:%{IP}|%{HOSTNAME})`,
	"HOSTPORT":          `%{IPORHOST}:%{POSINT}`,
	"UNIXPATH":          `(?:/[\w_%!$@:.,+~-]*)+`,
	"WINPATH":           `(?:[A-Za-z]+:|\\)(?:\\[^\\?*]*)+`,
	"PATH":              `(?:%{UNIXPATH}|%{WINPATH})`,
	"URIPROTO":          `[A-Za-z](?:[A-Za-z0-9+\-.]+)+`,
	"URIHOST":           `%{IPORHOST}(?::%{POSINT})?`,
	"URIPATH":           `(?:/[A-Za-z0-9$.+!*'(){},~:;=@#%&_\-]*)+`,
	"URIPARAM":          `\?[A-Za-z0-9$.+!*'|(){},~@#%&/=:;_?\-\[\]<>]*`,
	"URIPATHPARAM":      `%{URIPATH}(?:%{URIPARAM})?`,
	"URI":               `%{URIPROTO}://(?:%{USER}(?::[^@]*)?@)?(?:%{URIHOST})?(?:%{URIPATHPARAM})?`,
	"MONTH":             `\b(?:[Jj]an(?:uary)?|[Ff]eb(?:ruary)?|[Mm]ar(?:ch)?|[Aa]pr(?:il)?|[Mm]ay|[Jj]un(?:e)?|[Jj]ul(?:y)?|[Aa]ug(?:ust)?|[Ss]ep(?:tember)?|[Oo]ct(?:ober)?|[Nn]ov(?:ember)?|[Dd]ec(?:ember)?)\b`,
	"MONTHNUM":          `(?:0?[1-9]|1[0-2])`,
	"MONTHDAY":          `(?:(?:0[1-9])|(?:[12][0-9])|(?:3[01])|[1-9])`,
	"DAY":               `(?:Mon(?:day)?|Tue(?:sday)?|Wed(?:nesday)?|Thu(?:rsday)?|Fri(?:day)?|Sat(?:urday)?|Sun(?:day)?)`,
	"YEAR":              `(?:\d\d){1,2}`,
	"HOUR":              `(?:2[0123]|[01]?[0-9])`,
	"MINUTE":            `(?:[0-5][0-9])`,
	"SECOND":            `(?:(?:[0-5]?[0-9]|60)(?:[:.,][0-9]+)?)`,
	"TIME":              `%{HOUR}:%{MINUTE}(?::%{SECOND})?`,
	"ISO8601_TIMEZONE":  `(?:Z|[+-]%{HOUR}(?::?%{MINUTE}))`,
	"TIMESTAMP_ISO8601": `%{YEAR}-%{MONTHNUM}-%{MONTHDAY}[T ]%{HOUR}:?%{MINUTE}(?::?%{SECOND})?%{ISO8601_TIMEZONE}?`,
	"DATE_US":           `%{MONTHNUM}[/-]%{MONTHDAY}[/-]%{YEAR}`,
	"DATE_EU":           `%{MONTHDAY}[./-]%{MONTHNUM}[./-]%{YEAR}`,
	"DATE":              `%{DATE_US}|%{DATE_EU}`,
	"HTTPDATE":          `%{MONTHDAY}/%{MONTH}/%{YEAR}:%{TIME} %{INT}`,
	"LOGLEVEL":          `(?:[Aa]lert|ALERT|[Tt]race|TRACE|[Dd]ebug|DEBUG|[Nn]otice|NOTICE|[Ii]nfo|INFO|[Ww]arn(?:ing)?|WARN(?:ING)?|[Ee]rr(?:or)?|ERR(?:OR)?|[Cc]rit(?:ical)?|CRIT(?:ICAL)?|[Ff]atal|FATAL|[Ss]evere|SEVERE|EMERG(?:ENCY)?|[Ee]merg(?:ency)?)`,
}

// maxGrokDepth bounds the nesting of pattern references.
const maxGrokDepth = 16

var (
	grokReference  = regexp.MustCompile(`%\{(\w+)(?::([\w.@\[\]-]+))?(?::(\w+))?\}`)
	grokNamedGroup = regexp.MustCompile(`\(\?P?<([A-Za-z_@][\w.@]*)>`)
)

// grokField is a column extracted by a grok pattern.
type grokField struct {
	name string
	typ  expr.DataType
}

// grokPattern is a compiled grok pattern.
type grokPattern struct {
	re *regexp.Regexp
	// fields is sorted by name.
	fields []grokField
	// groups maps each capture group's name to the field it extracts.
	groups map[string]string
}

// compileGrok expands the pattern references in a grok pattern
// and compiles the result.
func compileGrok(pattern string) (*grokPattern, error) {
	c := &grokCompiler{
		pattern: pattern,
		types:   make(map[string]expr.DataType),
		groups:  make(map[string]string),
	}
	var err error
	// Inline named groups are always keywords.
	rewritten := grokNamedGroup.ReplaceAllStringFunc(pattern, func(group string) string {
		name := grokNamedGroup.FindStringSubmatch(group)[1]
		g, fieldErr := c.field(name, expr.Keyword)
		if fieldErr != nil && err == nil {
			err = fieldErr
		}
		return "(?P<" + g + ">"
	})
	if err != nil {
		return nil, err
	}
	expanded, err := c.expand(rewritten, 0)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(expanded)
	if err != nil {
		return nil, fmt.Errorf("Invalid pattern [%s] for grok: %v", pattern, err)
	}
	fields := make([]grokField, 0, len(c.types))
	for name, typ := range c.types {
		fields = append(fields, grokField{name: name, typ: typ})
	}
	slices.SortFunc(fields, func(a, b grokField) int { return strings.Compare(a.name, b.name) })
	return &grokPattern{re: re, fields: fields, groups: c.groups}, nil
}

// match returns the values extracted from s,
// or nil if s does not match.
func (g *grokPattern) match(s string) map[string]string {
	m := g.re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	values := make(map[string]string)
	for i, group := range g.re.SubexpNames() {
		name, ok := g.groups[group]
		if !ok || m[i] == "" {
			continue
		}
		values[name] = m[i]
	}
	return values
}

type grokCompiler struct {
	pattern string
	types   map[string]expr.DataType
	groups  map[string]string
}

// field records an extracted column and returns a new capture group name for it.
func (c *grokCompiler) field(name string, typ expr.DataType) (string, error) {
	if prev, ok := c.types[name]; ok && prev != typ {
		return "", fmt.Errorf("Invalid GROK pattern [%s]: the attribute [%s] is defined multiple times with different types", c.pattern, name)
	}
	c.types[name] = typ
	group := "g" + strconv.Itoa(len(c.groups))
	c.groups[group] = name
	return group, nil
}

func (c *grokCompiler) expand(pattern string, depth int) (string, error) {
	if depth > maxGrokDepth {
		return "", fmt.Errorf("Invalid pattern [%s] for grok: pattern references are nested too deeply", c.pattern)
	}
	sb := new(strings.Builder)
	last := 0
	for _, m := range grokReference.FindAllStringSubmatchIndex(pattern, -1) {
		sb.WriteString(pattern[last:m[0]])
		last = m[1]
		syntax := pattern[m[2]:m[3]]
		def, ok := grokPatterns[syntax]
		if !ok {
			return "", fmt.Errorf("Invalid pattern [%s] for grok: Unable to find pattern [%s] in Grok's pattern dictionary", c.pattern, syntax)
		}
		sub, err := c.expand(def, depth+1)
		if err != nil {
			return "", err
		}
		if m[4] < 0 {
			sb.WriteString("(?:" + sub + ")")
			continue
		}
		typ := expr.Keyword
		if m[6] >= 0 {
			typ = grokType(pattern[m[6]:m[7]])
		}
		group, err := c.field(pattern[m[4]:m[5]], typ)
		if err != nil {
			return "", err
		}
		sb.WriteString("(?P<" + group + ">" + sub + ")")
	}
	sb.WriteString(pattern[last:])
	return sb.String(), nil
}

// grokType returns the type of a column converted with %{SYNTAX:NAME:TYPE}.
func grokType(name string) expr.DataType {
	switch strings.ToLower(name) {
	case "int":
		return expr.Integer
	case "long":
		return expr.Long
	case "float", "double":
		return expr.Double
	case "boolean":
		return expr.Boolean
	default:
		return expr.Keyword
	}
}
