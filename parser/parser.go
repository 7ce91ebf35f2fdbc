// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

// Package parser provides a lexer, a parser, and a parse tree
// for the Elasticsearch Query Language (ESQL).
package parser

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Options controls optional parser behavior.
// A nil *Options is treated the same as a zero value.
type Options struct {
	// Capabilities selects the preview syntax that is available.
	// If nil, no preview syntax is accepted.
	Capabilities Capabilities
}

func (opts *Options) capabilities() Capabilities {
	if opts == nil {
		return nil
	}
	return opts.Capabilities
}

type parser struct {
	source string
	tokens []Token
	pos    int
	caps   Capabilities
}

// Parse converts an ESQL query into a parse tree.
// Parsing stops at the first error, which will be an [*Error].
func Parse(query string, opts *Options) (*Query, error) {
	p := &parser{
		source: query,
		tokens: Scan(query),
		caps:   opts.capabilities(),
	}
	q, err := p.query()
	if err == nil && p.pos < len(p.tokens) {
		trailingToken := p.tokens[p.pos]
		if trailingToken.Kind == TokenError {
			err = p.error(trailingToken.Span, errors.New(trailingToken.Value))
		} else {
			err = p.errorf(trailingToken.Span, "unexpected %s (expected '|' or end of query)", formatToken(p.source, trailingToken))
		}
	}
	if err != nil {
		return q, fmt.Errorf("parse esql: %w", err)
	}
	return q, nil
}

func (p *parser) query() (*Query, error) {
	src, err := p.sourceCommand()
	if err != nil {
		return nil, err
	}
	q := &Query{Source: src}
	for {
		pipe, ok := p.next()
		if !ok {
			break
		}
		if pipe.Kind != TokenPipe {
			p.prev()
			break
		}
		cmd, err := p.processingCommand(pipe)
		if err != nil {
			return q, err
		}
		q.Commands = append(q.Commands, cmd)
	}
	return q, nil
}

var sourceCommandNames = []string{"explain", "from", "meta", "metrics", "row", "show"}

var processingCommandNames = []string{
	"dissect",
	"drop",
	"enrich",
	"eval",
	"grok",
	"inlinestats",
	"keep",
	"limit",
	"lookup",
	"match",
	"mv_expand",
	"rename",
	"sort",
	"stats",
	"where",
}

var commandCapabilities = map[string]string{
	"inlinestats": CapabilityInlineStats,
	"lookup":      CapabilityLookupCommand,
	"match":       CapabilityMatchCommand,
	"metrics":     CapabilityMetricsCommand,
}

// SourceCommands returns the lowercase names of the commands
// that can start a query with the given capabilities, in sorted order.
func SourceCommands(caps Capabilities) []string {
	return availableCommands(caps, sourceCommandNames)
}

// ProcessingCommands returns the lowercase names of the commands
// that can follow a pipe with the given capabilities, in sorted order.
func ProcessingCommands(caps Capabilities) []string {
	return availableCommands(caps, processingCommandNames)
}

// availableCommands filters names to the commands
// whose capability (if any) is enabled.
func availableCommands(caps Capabilities, names []string) []string {
	return slices.DeleteFunc(slices.Clone(names), func(name string) bool {
		capability, gated := commandCapabilities[name]
		return gated && !enabled(caps, capability)
	})
}

// checkCapability returns an error if the named capability is not enabled.
func (p *parser) checkCapability(span Span, feature, capability string) error {
	if enabled(p.caps, capability) {
		return nil
	}
	return p.error(span, &capabilityError{feature: feature, capability: capability})
}

func (p *parser) commandKeyword(names []string, role string) (Token, error) {
	tok, ok := p.next()
	if !ok {
		return tok, p.errorf(tok.Span, "expected %s, got EOF", role)
	}
	switch tok.Kind {
	case TokenCommand:
		if !slices.Contains(names, tok.Value) {
			return tok, p.errorf(tok.Span, "%s cannot be used as a %s", strings.ToUpper(tok.Value), role)
		}
		if capability, gated := commandCapabilities[tok.Value]; gated {
			if err := p.checkCapability(tok.Span, strings.ToUpper(tok.Value), capability); err != nil {
				return tok, err
			}
		}
		return tok, nil
	case TokenIdentifier:
		msg := fmt.Sprintf("unknown command %q", tok.Value)
		if suggestion := closestName(strings.ToLower(tok.Value), availableCommands(p.caps, names)); suggestion != "" {
			msg += fmt.Sprintf(", did you mean %q?", strings.ToUpper(suggestion))
		}
		return tok, p.error(tok.Span, errors.New(msg))
	default:
		return tok, p.unexpected(tok, role)
	}
}

func (p *parser) sourceCommand() (SourceCommand, error) {
	if p.pos >= len(p.tokens) {
		return nil, p.errorf(indexSpan(len(p.source)), "empty query")
	}
	keyword, err := p.commandKeyword(sourceCommandNames, "source command")
	if err != nil {
		return nil, err
	}
	switch keyword.Value {
	case "explain":
		return p.explainCommand(keyword)
	case "from":
		return p.fromCommand(keyword)
	case "meta":
		return p.metaCommand(keyword)
	case "metrics":
		return p.metricsCommand(keyword)
	case "row":
		return p.rowCommand(keyword)
	case "show":
		return p.showCommand(keyword)
	default:
		panic("unhandled source command " + keyword.Value)
	}
}

func (p *parser) processingCommand(pipe Token) (ProcessingCommand, error) {
	keyword, err := p.commandKeyword(processingCommandNames, "processing command")
	if err != nil {
		return nil, err
	}
	switch keyword.Value {
	case "dissect":
		return p.dissectCommand(pipe, keyword)
	case "drop":
		patterns, err := p.qualifiedNamePatterns()
		return &DropCommand{Pipe: pipe.Span, Keyword: keyword.Span, Patterns: patterns}, err
	case "enrich":
		return p.enrichCommand(pipe, keyword)
	case "eval":
		fields, err := p.fields()
		return &EvalCommand{Pipe: pipe.Span, Keyword: keyword.Span, Fields: fields}, err
	case "grok":
		return p.grokCommand(pipe, keyword)
	case "inlinestats":
		return p.inlineStatsCommand(pipe, keyword)
	case "keep":
		patterns, err := p.qualifiedNamePatterns()
		return &KeepCommand{Pipe: pipe.Span, Keyword: keyword.Span, Patterns: patterns}, err
	case "limit":
		return p.limitCommand(pipe, keyword)
	case "lookup":
		return p.lookupCommand(pipe, keyword)
	case "match":
		q, err := p.matchQuery()
		return &MatchCommand{Pipe: pipe.Span, Keyword: keyword.Span, Query: q}, err
	case "mv_expand":
		name, err := p.qualifiedName()
		return &MvExpandCommand{Pipe: pipe.Span, Keyword: keyword.Span, Field: name}, err
	case "rename":
		return p.renameCommand(pipe, keyword)
	case "sort":
		return p.sortCommand(pipe, keyword)
	case "stats":
		return p.statsCommand(pipe, keyword)
	case "where":
		cond, err := p.booleanExpr()
		return &WhereCommand{Pipe: pipe.Span, Keyword: keyword.Span, Condition: cond}, err
	default:
		panic("unhandled processing command " + keyword.Value)
	}
}

func (p *parser) explainCommand(keyword Token) (*ExplainCommand, error) {
	cmd := &ExplainCommand{Keyword: keyword.Span}
	lbracket, err := p.expect(TokenLBracket, "'['")
	if err != nil {
		return cmd, err
	}
	cmd.Lbracket = lbracket.Span
	cmd.Query, err = p.query()
	if err != nil {
		return cmd, err
	}
	rbracket, err := p.expect(TokenRBracket, "']'")
	if err != nil {
		return cmd, err
	}
	cmd.Rbracket = rbracket.Span
	return cmd, nil
}

func (p *parser) fromCommand(keyword Token) (*FromCommand, error) {
	cmd := &FromCommand{Keyword: keyword.Span}
	var err error
	cmd.Patterns, err = p.indexPatterns()
	if err != nil {
		return cmd, err
	}
	cmd.Metadata, err = p.metadataOption()
	return cmd, err
}

func (p *parser) indexPatterns() ([]*IndexPattern, error) {
	var patterns []*IndexPattern
	for {
		pat, err := p.indexPattern()
		if err != nil {
			return patterns, err
		}
		patterns = append(patterns, pat)
		if !p.consume(TokenComma) {
			return patterns, nil
		}
	}
}

func (p *parser) indexPattern() (*IndexPattern, error) {
	first, err := p.sourceName()
	if err != nil {
		return nil, err
	}
	colon, ok := p.next()
	if !ok {
		return &IndexPattern{Index: first, Colon: nullSpan()}, nil
	}
	if colon.Kind != TokenColon {
		p.prev()
		return &IndexPattern{Index: first, Colon: nullSpan()}, nil
	}
	if first.Quoted {
		return nil, p.errorf(first.Span(), "cluster name %s must not be quoted", first.Text)
	}
	index, err := p.sourceName()
	if err != nil {
		return nil, err
	}
	return &IndexPattern{Cluster: first, Colon: colon.Span, Index: index}, nil
}

func (p *parser) sourceName() (*SourceName, error) {
	tok, _ := p.next()
	switch tok.Kind {
	case TokenSource:
		return &SourceName{Text: tok.Value, TextSpan: tok.Span}, nil
	case TokenString:
		return &SourceName{Text: tok.Value, TextSpan: tok.Span, Quoted: true}, nil
	default:
		return nil, p.unexpected(tok, "index pattern")
	}
}

func (p *parser) metadataOption() (*MetadataOption, error) {
	tok, ok := p.next()
	if !ok {
		return nil, nil
	}
	opt := &MetadataOption{Lbracket: nullSpan(), Rbracket: nullSpan()}
	switch tok.Kind {
	case TokenMetadata:
		opt.Keyword = tok.Span
	case TokenLBracket:
		opt.Lbracket = tok.Span
		keyword, err := p.expect(TokenMetadata, "METADATA")
		if err != nil {
			return nil, err
		}
		opt.Keyword = keyword.Span
	default:
		p.prev()
		return nil, nil
	}
	for {
		tok, _ := p.next()
		if tok.Kind != TokenSource {
			return nil, p.unexpected(tok, "metadata field name")
		}
		opt.Fields = append(opt.Fields, &SourceName{Text: tok.Value, TextSpan: tok.Span})
		if !p.consume(TokenComma) {
			break
		}
	}
	if opt.Lbracket.IsValid() {
		rbracket, err := p.expect(TokenRBracket, "']'")
		if err != nil {
			return nil, err
		}
		opt.Rbracket = rbracket.Span
	}
	return opt, nil
}

func (p *parser) rowCommand(keyword Token) (*RowCommand, error) {
	fields, err := p.fields()
	return &RowCommand{Keyword: keyword.Span, Fields: fields}, err
}

func (p *parser) showCommand(keyword Token) (*ShowCommand, error) {
	info, err := p.expect(TokenInfo, "INFO")
	if err != nil {
		return nil, err
	}
	return &ShowCommand{Keyword: keyword.Span, Info: info.Span}, nil
}

func (p *parser) metaCommand(keyword Token) (*MetaCommand, error) {
	functions, err := p.expect(TokenFunctions, "FUNCTIONS")
	if err != nil {
		return nil, err
	}
	return &MetaCommand{Keyword: keyword.Span, Functions: functions.Span}, nil
}

func (p *parser) metricsCommand(keyword Token) (*MetricsCommand, error) {
	cmd := &MetricsCommand{Keyword: keyword.Span}
	var err error
	cmd.Patterns, err = p.indexPatterns()
	if err != nil {
		return cmd, err
	}
	cmd.Aggregates, cmd.By, cmd.Grouping, err = p.aggregation(false)
	return cmd, err
}

func (p *parser) statsCommand(pipe, keyword Token) (*StatsCommand, error) {
	cmd := &StatsCommand{Pipe: pipe.Span, Keyword: keyword.Span}
	var err error
	cmd.Stats, cmd.By, cmd.Grouping, err = p.aggregation(false)
	return cmd, err
}

func (p *parser) inlineStatsCommand(pipe, keyword Token) (*InlineStatsCommand, error) {
	cmd := &InlineStatsCommand{Pipe: pipe.Span, Keyword: keyword.Span}
	var err error
	cmd.Stats, cmd.By, cmd.Grouping, err = p.aggregation(true)
	return cmd, err
}

// aggregation parses the `[fields] [BY fields]` tail
// shared by STATS, INLINESTATS, and METRICS.
func (p *parser) aggregation(requireStats bool) (stats []*Field, by Span, grouping []*Field, err error) {
	by = nullSpan()
	if requireStats || !p.atCommandEnd() && p.peek().Kind != TokenBy {
		stats, err = p.fields()
		if err != nil {
			return stats, by, nil, err
		}
	}
	if tok, ok := p.next(); ok && tok.Kind == TokenBy {
		by = tok.Span
		grouping, err = p.fields()
		return stats, by, grouping, err
	} else if ok {
		p.prev()
	}
	return stats, by, nil, nil
}

// atCommandEnd reports whether the next token ends the current command.
func (p *parser) atCommandEnd() bool {
	if p.pos >= len(p.tokens) {
		return true
	}
	switch p.tokens[p.pos].Kind {
	case TokenPipe, TokenRBracket:
		return true
	default:
		return false
	}
}

func (p *parser) limitCommand(pipe, keyword Token) (*LimitCommand, error) {
	tok, _ := p.next()
	if tok.Kind != TokenInteger {
		return nil, p.unexpected(tok, "integer")
	}
	return &LimitCommand{
		Pipe:    pipe.Span,
		Keyword: keyword.Span,
		Count: &NumberLit{
			Kind:      TokenInteger,
			Value:     tok.Value,
			ValueSpan: tok.Span,
			SignSpan:  nullSpan(),
		},
	}, nil
}

func (p *parser) renameCommand(pipe, keyword Token) (*RenameCommand, error) {
	cmd := &RenameCommand{Pipe: pipe.Span, Keyword: keyword.Span}
	for {
		clause := new(RenameClause)
		var err error
		clause.Old, err = p.qualifiedNamePattern()
		if err != nil {
			return cmd, err
		}
		as, err := p.expect(TokenAs, "AS")
		if err != nil {
			return cmd, err
		}
		clause.As = as.Span
		clause.New, err = p.qualifiedNamePattern()
		if err != nil {
			return cmd, err
		}
		cmd.Clauses = append(cmd.Clauses, clause)
		if !p.consume(TokenComma) {
			return cmd, nil
		}
	}
}

func (p *parser) sortCommand(pipe, keyword Token) (*SortCommand, error) {
	cmd := &SortCommand{Pipe: pipe.Span, Keyword: keyword.Span}
	for {
		order, err := p.orderExpr()
		if err != nil {
			return cmd, err
		}
		cmd.Orders = append(cmd.Orders, order)
		if !p.consume(TokenComma) {
			return cmd, nil
		}
	}
}

func (p *parser) orderExpr() (*OrderExpr, error) {
	x, err := p.booleanExpr()
	if err != nil {
		return nil, err
	}
	order := &OrderExpr{
		X:            x,
		OrderingSpan: nullSpan(),
		NullsSpan:    nullSpan(),
	}
	if tok, ok := p.next(); ok && (tok.Kind == TokenAsc || tok.Kind == TokenDesc) {
		order.Ordering = tok.Kind
		order.OrderingSpan = tok.Span
	} else if ok {
		p.prev()
	}
	nulls, ok := p.next()
	if !ok {
		return order, nil
	}
	if nulls.Kind != TokenNulls {
		p.prev()
		return order, nil
	}
	tok, _ := p.next()
	if tok.Kind != TokenFirst && tok.Kind != TokenLast {
		return nil, p.unexpected(tok, "FIRST or LAST")
	}
	order.NullOrdering = tok.Kind
	order.NullsSpan = newSpan(nulls.Span.Start, tok.Span.End)
	return order, nil
}

func (p *parser) dissectCommand(pipe, keyword Token) (*DissectCommand, error) {
	cmd := &DissectCommand{Pipe: pipe.Span, Keyword: keyword.Span}
	var err error
	cmd.Input, err = p.primaryExpr()
	if err != nil {
		return cmd, err
	}
	cmd.Pattern, err = p.stringLit()
	if err != nil {
		return cmd, err
	}
	if tok, ok := p.next(); !ok || tok.Kind != TokenIdentifier {
		if ok {
			p.prev()
		}
		return cmd, nil
	}
	p.prev()
	for {
		opt, err := p.commandOption()
		if err != nil {
			return cmd, err
		}
		cmd.Options = append(cmd.Options, opt)
		if !p.consume(TokenComma) {
			return cmd, nil
		}
	}
}

func (p *parser) commandOption() (*CommandOption, error) {
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	assign, err := p.expect(TokenAssign, "'='")
	if err != nil {
		return nil, err
	}
	value, err := p.constant()
	if err != nil {
		return nil, err
	}
	return &CommandOption{Name: name, Assign: assign.Span, Value: value}, nil
}

func (p *parser) grokCommand(pipe, keyword Token) (*GrokCommand, error) {
	cmd := &GrokCommand{Pipe: pipe.Span, Keyword: keyword.Span}
	var err error
	cmd.Input, err = p.primaryExpr()
	if err != nil {
		return cmd, err
	}
	cmd.Pattern, err = p.stringLit()
	return cmd, err
}

func (p *parser) enrichCommand(pipe, keyword Token) (*EnrichCommand, error) {
	cmd := &EnrichCommand{
		Pipe:    pipe.Span,
		Keyword: keyword.Span,
		On:      nullSpan(),
		With:    nullSpan(),
	}
	tok, _ := p.next()
	if tok.Kind != TokenPolicyName {
		return nil, p.unexpected(tok, "enrich policy name")
	}
	cmd.Policy = &PolicyName{Text: tok.Value, TextSpan: tok.Span}

	if on, ok := p.next(); ok && on.Kind == TokenOn {
		cmd.On = on.Span
		var err error
		cmd.MatchField, err = p.qualifiedNamePattern()
		if err != nil {
			return cmd, err
		}
	} else if ok {
		p.prev()
	}

	with, ok := p.next()
	if !ok {
		return cmd, nil
	}
	if with.Kind != TokenWith {
		p.prev()
		return cmd, nil
	}
	cmd.With = with.Span
	for {
		clause, err := p.enrichWithClause()
		if err != nil {
			return cmd, err
		}
		cmd.Clauses = append(cmd.Clauses, clause)
		if !p.consume(TokenComma) {
			return cmd, nil
		}
	}
}

func (p *parser) enrichWithClause() (*EnrichWithClause, error) {
	first, err := p.qualifiedNamePattern()
	if err != nil {
		return nil, err
	}
	assign, ok := p.next()
	if !ok {
		return &EnrichWithClause{Field: first, Assign: nullSpan()}, nil
	}
	if assign.Kind != TokenAssign {
		p.prev()
		return &EnrichWithClause{Field: first, Assign: nullSpan()}, nil
	}
	field, err := p.qualifiedNamePattern()
	if err != nil {
		return nil, err
	}
	return &EnrichWithClause{NewName: first, Assign: assign.Span, Field: field}, nil
}

func (p *parser) lookupCommand(pipe, keyword Token) (*LookupCommand, error) {
	cmd := &LookupCommand{Pipe: pipe.Span, Keyword: keyword.Span}
	var err error
	cmd.Table, err = p.indexPattern()
	if err != nil {
		return cmd, err
	}
	on, err := p.expect(TokenOn, "ON")
	if err != nil {
		return cmd, err
	}
	cmd.On = on.Span
	cmd.MatchFields, err = p.qualifiedNamePatterns()
	return cmd, err
}

// fields parses one or more comma-separated fields.
func (p *parser) fields() ([]*Field, error) {
	var fields []*Field
	for {
		f, err := p.field()
		if err != nil {
			return fields, err
		}
		fields = append(fields, f)
		if !p.consume(TokenComma) {
			return fields, nil
		}
	}
}

// field parses either `qualifiedName = booleanExpr` or a bare booleanExpr.
func (p *parser) field() (*Field, error) {
	start := p.pos
	if tok := p.peek(); tok.Kind == TokenIdentifier || tok.Kind == TokenQuotedIdentifier || isParam(tok.Kind) {
		name, err := p.qualifiedName()
		if err == nil {
			if assign, ok := p.next(); ok && assign.Kind == TokenAssign {
				x, err := p.booleanExpr()
				if err != nil {
					return nil, err
				}
				return &Field{Name: name, Assign: assign.Span, X: x}, nil
			}
		}
		p.pos = start
	}
	x, err := p.booleanExpr()
	if err != nil {
		return nil, err
	}
	return &Field{X: x, Assign: nullSpan()}, nil
}

func (p *parser) booleanExpr() (BooleanExpr, error) {
	return p.orExpr()
}

func (p *parser) orExpr() (BooleanExpr, error) {
	x, err := p.andExpr()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.next()
		if !ok {
			return x, nil
		}
		if op.Kind != TokenOr {
			p.prev()
			return x, nil
		}
		y, err := p.andExpr()
		if err != nil {
			return nil, err
		}
		x = &LogicalBinary{X: x, OpSpan: op.Span, Op: TokenOr, Y: y}
	}
}

func (p *parser) andExpr() (BooleanExpr, error) {
	x, err := p.notExpr()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.next()
		if !ok {
			return x, nil
		}
		if op.Kind != TokenAnd {
			p.prev()
			return x, nil
		}
		y, err := p.notExpr()
		if err != nil {
			return nil, err
		}
		x = &LogicalBinary{X: x, OpSpan: op.Span, Op: TokenAnd, Y: y}
	}
}

func (p *parser) notExpr() (BooleanExpr, error) {
	not, ok := p.next()
	if !ok || not.Kind != TokenNot {
		if ok {
			p.prev()
		}
		return p.predicate()
	}
	x, err := p.notExpr()
	if err != nil {
		return nil, err
	}
	return &LogicalNot{Not: not.Span, X: x}, nil
}

// predicate parses a value expression
// followed by an optional IN, IS NULL, LIKE, RLIKE, or MATCH suffix.
func (p *parser) predicate() (BooleanExpr, error) {
	x, err := p.valueExpr()
	if err != nil {
		return nil, err
	}
	tok, ok := p.next()
	if !ok {
		return x, nil
	}
	not := nullSpan()
	if tok.Kind == TokenNot {
		not = tok.Span
		tok, _ = p.next()
		switch tok.Kind {
		case TokenIn, TokenLike, TokenRLike:
		default:
			return nil, p.unexpected(tok, "IN, LIKE, or RLIKE")
		}
	}
	switch tok.Kind {
	case TokenIn:
		return p.inList(x, not, tok)
	case TokenIs:
		return p.isNull(x, tok)
	case TokenLike, TokenRLike:
		pattern, err := p.stringLit()
		if err != nil {
			return nil, err
		}
		return &RegexMatch{X: x, Not: not, OpSpan: tok.Span, Op: tok.Kind, Pattern: pattern}, nil
	case TokenMatch:
		if err := p.checkCapability(tok.Span, "MATCH operator", CapabilityMatchOperator); err != nil {
			return nil, err
		}
		q, err := p.stringLit()
		if err != nil {
			return nil, err
		}
		return &MatchPredicate{X: x, Match: tok.Span, Query: q}, nil
	default:
		p.prev()
		return x, nil
	}
}

func (p *parser) inList(x ValueExpr, not Span, in Token) (*LogicalIn, error) {
	expr := &LogicalIn{X: x, Not: not, In: in.Span}
	lparen, err := p.expect(TokenLParen, "'('")
	if err != nil {
		return nil, err
	}
	expr.Lparen = lparen.Span
	for {
		val, err := p.valueExpr()
		if err != nil {
			return nil, err
		}
		expr.Vals = append(expr.Vals, val)
		if !p.consume(TokenComma) {
			break
		}
	}
	rparen, err := p.expect(TokenRParen, "')'")
	if err != nil {
		return nil, err
	}
	expr.Rparen = rparen.Span
	return expr, nil
}

func (p *parser) isNull(x ValueExpr, is Token) (*IsNull, error) {
	expr := &IsNull{X: x, Is: is.Span, Not: nullSpan()}
	tok, _ := p.next()
	if tok.Kind == TokenNot {
		expr.Not = tok.Span
		tok, _ = p.next()
	}
	if tok.Kind != TokenNull {
		return nil, p.unexpected(tok, "NULL")
	}
	expr.Null = tok.Span
	return expr, nil
}

func isComparison(kind TokenKind) bool {
	switch kind {
	case TokenEq, TokenNE, TokenLT, TokenLE, TokenGT, TokenGE, TokenCaseInsensitiveEq:
		return true
	default:
		return false
	}
}

// valueExpr parses an arithmetic expression
// optionally compared with a second arithmetic expression.
// Comparisons do not chain.
func (p *parser) valueExpr() (ValueExpr, error) {
	x, err := p.operatorExpr()
	if err != nil {
		return nil, err
	}
	op, ok := p.next()
	if !ok {
		return x, nil
	}
	if !isComparison(op.Kind) {
		p.prev()
		return x, nil
	}
	y, err := p.operatorExpr()
	if err != nil {
		return nil, err
	}
	return &Comparison{X: x, OpSpan: op.Span, Op: op.Kind, Y: y}, nil
}

func arithmeticPrecedence(kind TokenKind) int {
	switch kind {
	case TokenPlus, TokenMinus:
		return 1
	case TokenStar, TokenSlash, TokenMod:
		return 2
	default:
		return 0
	}
}

func (p *parser) operatorExpr() (OperatorExpr, error) {
	return p.binaryArithmetic(1)
}

// binaryArithmetic parses a left-associative chain of binary operators
// whose precedence is at least minPrecedence.
func (p *parser) binaryArithmetic(minPrecedence int) (OperatorExpr, error) {
	x, err := p.unaryExpr()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.next()
		if !ok {
			return x, nil
		}
		prec := arithmeticPrecedence(op.Kind)
		if prec == 0 || prec < minPrecedence {
			p.prev()
			return x, nil
		}
		y, err := p.binaryArithmetic(prec + 1)
		if err != nil {
			return nil, err
		}
		x = &ArithmeticBinary{X: x, OpSpan: op.Span, Op: op.Kind, Y: y}
	}
}

// unaryExpr parses a primary expression preceded by any number of signs.
// A sign directly before a number literal is folded into the literal.
func (p *parser) unaryExpr() (OperatorExpr, error) {
	sign, ok := p.next()
	if !ok || (sign.Kind != TokenPlus && sign.Kind != TokenMinus) {
		if ok {
			p.prev()
		}
		return p.primaryExpr()
	}
	if next := p.peek(); next.Kind == TokenInteger || next.Kind == TokenDecimal {
		p.prev()
		return p.primaryExpr()
	}
	x, err := p.unaryExpr()
	if err != nil {
		return nil, err
	}
	return &ArithmeticUnary{OpSpan: sign.Span, Op: sign.Kind, X: x}, nil
}

// primaryExpr parses a primary expression followed by any number of inline casts.
func (p *parser) primaryExpr() (PrimaryExpr, error) {
	x, err := p.primaryBase()
	if err != nil {
		return nil, err
	}
	for {
		cast, ok := p.next()
		if !ok {
			return x, nil
		}
		if cast.Kind != TokenCast {
			p.prev()
			return x, nil
		}
		typ, err := p.ident()
		if err != nil {
			return nil, err
		}
		x = &InlineCast{X: x, Cast: cast.Span, Type: typ}
	}
}

func (p *parser) primaryBase() (PrimaryExpr, error) {
	tok, ok := p.next()
	if !ok {
		return nil, p.errorf(tok.Span, "expected expression, got EOF")
	}
	switch tok.Kind {
	case TokenNull, TokenTrue, TokenFalse, TokenInteger, TokenDecimal, TokenString, TokenPlus, TokenMinus, TokenLBracket:
		p.prev()
		return p.constant()
	case TokenParam, TokenNamedParam:
		switch p.peek().Kind {
		case TokenLParen:
			return p.functionCall(p.paramNode(tok))
		case TokenDot:
			p.prev()
			return p.qualifiedName()
		default:
			return p.paramNode(tok), nil
		}
	case TokenIdentifier, TokenQuotedIdentifier:
		if p.peek().Kind == TokenLParen {
			return p.functionCall(identNode(tok))
		}
		p.prev()
		return p.qualifiedName()
	case TokenMatch:
		if p.peek().Kind != TokenLParen {
			return nil, p.unexpected(tok, "expression")
		}
		if err := p.checkCapability(tok.Span, "MATCH function", CapabilityMatchFunction); err != nil {
			return nil, err
		}
		name := &Ident{Name: spanString(p.source, tok.Span), NameSpan: tok.Span}
		return p.functionCall(name)
	case TokenLParen:
		x, err := p.booleanExpr()
		if err != nil {
			return nil, err
		}
		rparen, err := p.expect(TokenRParen, "')'")
		if err != nil {
			return nil, err
		}
		return &ParenExpr{Lparen: tok.Span, X: x, Rparen: rparen.Span}, nil
	default:
		return nil, p.unexpected(tok, "expression")
	}
}

// functionCall parses an argument list. The function name has already been consumed.
func (p *parser) functionCall(name IdentOrParam) (*FunctionCall, error) {
	call := &FunctionCall{Name: name, Star: nullSpan()}
	lparen, err := p.expect(TokenLParen, "'('")
	if err != nil {
		return nil, err
	}
	call.Lparen = lparen.Span
	switch p.peek().Kind {
	case TokenRParen:
	case TokenStar:
		star, _ := p.next()
		call.Star = star.Span
	default:
		for {
			arg, err := p.booleanExpr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			if !p.consume(TokenComma) {
				break
			}
		}
	}
	rparen, err := p.expect(TokenRParen, "')'")
	if err != nil {
		return nil, err
	}
	call.Rparen = rparen.Span
	return call, nil
}

// constant parses a literal or a query parameter.
func (p *parser) constant() (Constant, error) {
	tok, ok := p.next()
	if !ok {
		return nil, p.errorf(tok.Span, "expected constant, got EOF")
	}
	switch tok.Kind {
	case TokenNull:
		return &NullLit{NullSpan: tok.Span}, nil
	case TokenTrue, TokenFalse:
		return &BoolLit{Value: tok.Kind == TokenTrue, ValueSpan: tok.Span}, nil
	case TokenString:
		return &StringLit{Raw: tok.Value, RawSpan: tok.Span}, nil
	case TokenParam, TokenNamedParam:
		return p.paramNode(tok), nil
	case TokenLBracket:
		p.prev()
		return p.arrayLit()
	case TokenInteger, TokenDecimal, TokenPlus, TokenMinus:
		p.prev()
		lit, err := p.numberLit()
		if err != nil {
			return nil, err
		}
		if lit.Kind != TokenInteger {
			return lit, nil
		}
		unit, ok := p.next()
		if !ok {
			return lit, nil
		}
		if unit.Kind != TokenIdentifier {
			p.prev()
			return lit, nil
		}
		return &QualifiedIntegerLit{Number: lit, Unit: identNode(unit)}, nil
	default:
		return nil, p.unexpected(tok, "constant")
	}
}

func (p *parser) numberLit() (*NumberLit, error) {
	lit := &NumberLit{SignSpan: nullSpan()}
	tok, _ := p.next()
	if tok.Kind == TokenPlus || tok.Kind == TokenMinus {
		lit.Sign = tok.Kind
		lit.SignSpan = tok.Span
		tok, _ = p.next()
	}
	if tok.Kind != TokenInteger && tok.Kind != TokenDecimal {
		return nil, p.unexpected(tok, "number")
	}
	lit.Kind = tok.Kind
	lit.Value = tok.Value
	lit.ValueSpan = tok.Span
	return lit, nil
}

// arrayLit parses a bracketed list of numbers, booleans, or strings.
// All elements must be of the same kind.
func (p *parser) arrayLit() (*ArrayLit, error) {
	lbracket, err := p.expect(TokenLBracket, "'['")
	if err != nil {
		return nil, err
	}
	lit := &ArrayLit{Lbracket: lbracket.Span}
	var kind string
	for {
		var elem Constant
		var elemKind string
		switch tok := p.peek(); tok.Kind {
		case TokenInteger, TokenDecimal, TokenPlus, TokenMinus:
			elem, err = p.numberLit()
			elemKind = "numeric"
		case TokenTrue, TokenFalse:
			p.next()
			elem = &BoolLit{Value: tok.Kind == TokenTrue, ValueSpan: tok.Span}
			elemKind = "boolean"
		case TokenString:
			p.next()
			elem = &StringLit{Raw: tok.Value, RawSpan: tok.Span}
			elemKind = "string"
		default:
			p.next()
			return nil, p.unexpected(tok, "numeric, boolean, or string literal")
		}
		if err != nil {
			return nil, err
		}
		if kind == "" {
			kind = elemKind
		} else if elemKind != kind {
			return nil, p.errorf(elem.Span(), "array elements must all be %s literals", kind)
		}
		lit.Elems = append(lit.Elems, elem)
		if !p.consume(TokenComma) {
			break
		}
	}
	rbracket, err := p.expect(TokenRBracket, "']'")
	if err != nil {
		return nil, err
	}
	lit.Rbracket = rbracket.Span
	return lit, nil
}

func (p *parser) stringLit() (*StringLit, error) {
	tok, _ := p.next()
	if tok.Kind != TokenString {
		return nil, p.unexpected(tok, "string")
	}
	return &StringLit{Raw: tok.Value, RawSpan: tok.Span}, nil
}

// qualifiedName parses a dot-separated sequence of identifiers or parameters.
func (p *parser) qualifiedName() (*QualifiedName, error) {
	name := new(QualifiedName)
	for {
		tok, _ := p.next()
		switch {
		case tok.Kind == TokenIdentifier || tok.Kind == TokenQuotedIdentifier:
			name.Parts = append(name.Parts, identNode(tok))
		case isParam(tok.Kind):
			name.Parts = append(name.Parts, p.paramNode(tok))
		default:
			return nil, p.unexpected(tok, "identifier")
		}
		if !p.consume(TokenDot) {
			return name, nil
		}
	}
}

func (p *parser) qualifiedNamePatterns() ([]*QualifiedNamePattern, error) {
	var patterns []*QualifiedNamePattern
	for {
		pat, err := p.qualifiedNamePattern()
		if err != nil {
			return patterns, err
		}
		patterns = append(patterns, pat)
		if !p.consume(TokenComma) {
			return patterns, nil
		}
	}
}

func (p *parser) qualifiedNamePattern() (*QualifiedNamePattern, error) {
	name := new(QualifiedNamePattern)
	for {
		tok, _ := p.next()
		switch {
		case tok.Kind == TokenIdentifierPattern:
			name.Parts = append(name.Parts, &IdentPattern{Text: tok.Value, TextSpan: tok.Span})
		case isParam(tok.Kind):
			name.Parts = append(name.Parts, p.paramNode(tok))
		default:
			return nil, p.unexpected(tok, "identifier or pattern")
		}
		if !p.consume(TokenDot) {
			return name, nil
		}
	}
}

func (p *parser) ident() (*Ident, error) {
	tok, _ := p.next()
	if tok.Kind != TokenIdentifier && tok.Kind != TokenQuotedIdentifier {
		return nil, p.unexpected(tok, "identifier")
	}
	return identNode(tok), nil
}

func identNode(tok Token) *Ident {
	return &Ident{
		Name:     tok.Value,
		NameSpan: tok.Span,
		Quoted:   tok.Kind == TokenQuotedIdentifier,
	}
}

func isParam(kind TokenKind) bool {
	return kind == TokenParam || kind == TokenNamedParam
}

func (p *parser) paramNode(tok Token) *Param {
	return &Param{Kind: tok.Kind, Name: tok.Value, ParamSpan: tok.Span}
}

// expect consumes the next token if it is of the given kind
// or returns an error mentioning want otherwise.
func (p *parser) expect(kind TokenKind, want string) (Token, error) {
	tok, _ := p.next()
	if tok.Kind != kind {
		return tok, p.unexpected(tok, want)
	}
	return tok, nil
}

// consume advances past the next token if it is of the given kind.
func (p *parser) consume(kind TokenKind) bool {
	if p.pos < len(p.tokens) && p.tokens[p.pos].Kind == kind {
		p.pos++
		return true
	}
	return false
}

// next returns the next token and advances.
// At the end of the query, next returns a zero-length error token
// positioned at the end of the query and false.
func (p *parser) next() (Token, bool) {
	if p.pos >= len(p.tokens) {
		return p.eof(), false
	}
	tok := p.tokens[p.pos]
	p.pos++
	return tok, true
}

func (p *parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return p.eof()
	}
	return p.tokens[p.pos]
}

func (p *parser) prev() {
	p.pos--
}

func (p *parser) eof() Token {
	return Token{
		Kind:  TokenError,
		Span:  indexSpan(len(p.source)),
		Value: "EOF",
	}
}

// unexpected returns an error for tok, which did not match want.
// Scan errors are reported as-is.
func (p *parser) unexpected(tok Token, want string) error {
	if tok.Kind == TokenError && tok.Span.Len() > 0 {
		return p.error(tok.Span, errors.New(tok.Value))
	}
	return p.errorf(tok.Span, "expected %s, got %s", want, formatToken(p.source, tok))
}

func (p *parser) error(span Span, err error) *Error {
	return &Error{source: p.source, Span: span, Err: err}
}

func (p *parser) errorf(span Span, format string, args ...any) *Error {
	return p.error(span, fmt.Errorf(format, args...))
}

func formatToken(source string, tok Token) string {
	if tok.Span.Start == len(source) && tok.Span.End == len(source) {
		return "EOF"
	}
	if tok.Span.Len() == 0 {
		if tok.Kind == TokenError {
			return "<scan error>"
		}
		return "''"
	}
	return "'" + spanString(source, tok.Span) + "'"
}

// closestName returns the candidate closest to name
// if it is within a small edit distance.
func closestName(name string, candidates []string) string {
	const maxDistance = 2
	best, bestDistance := "", maxDistance+1
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(name, c); d < bestDistance {
			best, bestDistance = c, d
		}
	}
	return best
}

// Error is a parse error positioned in the query.
type Error struct {
	source string
	// Span is the location of the error in the query.
	Span Span
	// Err is the underlying error.
	Err error
}

// NewError returns an error for the given span of query.
func NewError(query string, span Span, err error) *Error {
	return &Error{source: query, Span: span, Err: err}
}

// Error formats the error as "line:col: message".
func (e *Error) Error() string {
	line, col := Position(e.source, e.Span.Start)
	return fmt.Sprintf("%d:%d: %s", line, col, e.Err.Error())
}

// Message returns the error's text without its position.
func (e *Error) Message() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
