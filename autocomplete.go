// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package esql

import (
	"cmp"
	"path"
	"slices"
	"strings"

	"github.com/runreveal/esql/expr"
	"github.com/runreveal/esql/parser"
)

// AnalysisContext describes the indices available to a query.
type AnalysisContext struct {
	Indices map[string]*AnalysisIndex
	// Capabilities selects the preview commands to suggest.
	Capabilities parser.Capabilities
}

// AnalysisIndex describes an index.
type AnalysisIndex struct {
	Columns []*AnalysisColumn
}

// AnalysisColumn describes a column of an index.
type AnalysisColumn struct {
	Name string
}

// Completion is a suggested edit at the cursor.
type Completion struct {
	// Label is the text to show to the user.
	Label string
	// Text is the text to insert.
	Text string
	// Span is the part of the query the text replaces.
	Span parser.Span
}

// SuggestCompletions returns the completions for the text at the cursor:
// index names in FROM, METRICS, and LOOKUP,
// command names at the start of a command,
// and column names elsewhere.
func (ctx *AnalysisContext) SuggestCompletions(source string, cursor parser.Span) []*Completion {
	pos := cursor.End
	tokens := parser.Scan(source)
	prefix, replaceStart := completionPrefix(source, tokens, pos)
	replace := parser.Span{Start: replaceStart, End: pos}

	// Find the command that contains the cursor.
	before := tokens[:tokenIndex(tokens, replaceStart)]
	stageStart := 0
	for i, tok := range before {
		if tok.Kind == parser.TokenPipe {
			stageStart = i + 1
		}
	}
	stage := before[stageStart:]
	if len(stage) == 0 {
		if stageStart == 0 {
			return commandCompletions(parser.SourceCommands(ctx.Capabilities), prefix, replace)
		}
		return commandCompletions(parser.ProcessingCommands(ctx.Capabilities), prefix, replace)
	}
	keyword := stage[0]
	if keyword.Kind != parser.TokenCommand {
		return nil
	}
	switch keyword.Value {
	case "from", "metrics":
		if containsToken(stage, parser.TokenMetadata) {
			return nil
		}
		return ctx.indexCompletions(prefix, replace)
	case "lookup":
		if !containsToken(stage, parser.TokenOn) {
			return ctx.indexCompletions(prefix, replace)
		}
	case "show", "meta", "explain", "enrich", "match":
		return nil
	}
	columns := ctx.columns(source, tokens, stageStart)
	result := make([]*Completion, 0, len(columns))
	for _, name := range columns {
		if strings.HasPrefix(name, prefix) {
			result = append(result, &Completion{
				Label: name,
				Text:  quoteQualifiedName(name),
				Span:  replace,
			})
		}
	}
	return result
}

// completionPrefix returns the part of the word at pos that precedes pos
// and the position at which the word starts.
func completionPrefix(source string, tokens []parser.Token, pos int) (string, int) {
	if len(tokens) == 0 {
		return "", pos
	}
	i, _ := slices.BinarySearchFunc(tokens, pos, func(tok parser.Token, pos int) int {
		return cmp.Compare(tok.Span.End, pos)
	})
	if i >= len(tokens) {
		return "", pos
	}
	tok := tokens[i]
	if tok.Span.Start >= pos || tok.Span.End < pos || !isCompletableToken(tok.Kind) {
		// Cursor is not adjacent to token. Assume there's whitespace.
		return "", pos
	}
	start := tok.Span.Start
	if tok.Kind == parser.TokenQuotedIdentifier {
		// Skip past initial backtick.
		return source[start+len("`") : pos], start
	}
	return source[start:pos], start
}

// tokenIndex returns the number of tokens that end at or before pos.
func tokenIndex(tokens []parser.Token, pos int) int {
	i, _ := slices.BinarySearchFunc(tokens, pos, func(tok parser.Token, pos int) int {
		if tok.Span.End <= pos {
			return -1
		}
		return 1
	})
	return i
}

func isCompletableToken(kind parser.TokenKind) bool {
	return kind == parser.TokenIdentifier ||
		kind == parser.TokenQuotedIdentifier ||
		kind == parser.TokenIdentifierPattern ||
		kind == parser.TokenSource ||
		kind == parser.TokenCommand ||
		kind == parser.TokenAnd ||
		kind == parser.TokenOr ||
		kind == parser.TokenIn ||
		kind == parser.TokenBy
}

func containsToken(tokens []parser.Token, kind parser.TokenKind) bool {
	return slices.ContainsFunc(tokens, func(tok parser.Token) bool { return tok.Kind == kind })
}

func commandCompletions(names []string, prefix string, replace parser.Span) []*Completion {
	var result []*Completion
	for _, name := range names {
		if strings.HasPrefix(name, strings.ToLower(prefix)) {
			keyword := strings.ToUpper(name)
			result = append(result, &Completion{
				Label: keyword,
				Text:  keyword,
				Span:  replace,
			})
		}
	}
	return result
}

func (ctx *AnalysisContext) indexCompletions(prefix string, replace parser.Span) []*Completion {
	result := make([]*Completion, 0, len(ctx.Indices))
	for name := range ctx.Indices {
		if strings.HasPrefix(name, prefix) {
			result = append(result, &Completion{
				Label: name,
				Text:  name,
				Span:  replace,
			})
		}
	}
	return result
}

// columns returns the names of the columns available to the command
// that starts at tokens[stageStart]:
// the columns of the indices the query reads
// and the columns defined by the commands before it.
func (ctx *AnalysisContext) columns(source string, tokens []parser.Token, stageStart int) []string {
	set := make(map[string]struct{})
	for _, pattern := range queryIndexPatterns(tokens) {
		for name, index := range ctx.Indices {
			if ok, _ := path.Match(pattern, name); !ok {
				continue
			}
			for _, col := range index.Columns {
				set[col.Name] = struct{}{}
			}
		}
	}
	if stageStart > 0 {
		// Parse the commands before the current one for the columns they define.
		end := tokens[stageStart-1].Span.Start
		if p, err := Parse(source[:end], &Options{Capabilities: ctx.Capabilities}); err == nil {
			for _, a := range p.Output() {
				switch a.(type) {
				case *expr.UnresolvedStar, *expr.UnresolvedNamePattern:
				default:
					set[a.Name()] = struct{}{}
				}
			}
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// queryIndexPatterns returns the index patterns read by the query's source command.
func queryIndexPatterns(tokens []parser.Token) []string {
	if len(tokens) == 0 || tokens[0].Kind != parser.TokenCommand {
		return nil
	}
	if cmd := tokens[0].Value; cmd != "from" && cmd != "metrics" {
		return nil
	}
	var patterns []string
	for _, tok := range tokens[1:] {
		switch tok.Kind {
		case parser.TokenSource:
			patterns = append(patterns, tok.Value)
		case parser.TokenString:
			if s, err := unquoteString(tok.Value); err == nil {
				patterns = append(patterns, s)
			}
		case parser.TokenColon:
			// Drop the cluster name.
			if len(patterns) > 0 {
				patterns = patterns[:len(patterns)-1]
			}
		case parser.TokenComma:
		default:
			return patterns
		}
	}
	return patterns
}
