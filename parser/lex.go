//go:generate stringer -type=TokenKind -linecomment

// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenKind is an enumeration of types of [Token]
// that can be returned by [Scan].
type TokenKind int

// Token kinds.
const (
	// TokenCommand is a command keyword like "from" or "where".
	// The Value will be the lowercased keyword.
	TokenCommand TokenKind = 1 + iota // command
	// TokenIdentifier is an unquoted identifier.
	// The Value will be the identifier itself.
	TokenIdentifier // identifier
	// TokenQuotedIdentifier is an identifier surrounded by backticks.
	// A backtick inside the identifier is written as two backticks.
	// The Value will be the raw text, including the backticks.
	TokenQuotedIdentifier // quoted identifier
	// TokenIdentifierPattern is a column name pattern used by KEEP, DROP, RENAME, ENRICH and LOOKUP.
	// It is a mix of unquoted runs (which may contain "*" wildcards)
	// and backtick-quoted runs.
	// The Value will be the raw text.
	TokenIdentifierPattern // identifier pattern
	// TokenInteger is an unsigned integer literal like "123".
	// The Value will be the raw text.
	TokenInteger // integer
	// TokenDecimal is a decimal literal like "3.14", ".5", or "1e-9".
	// The Value will be the raw text.
	TokenDecimal // decimal
	// TokenString is a string literal enclosed by double quotes
	// or by triple double quotes.
	// The Value will be the raw text, including the quotes.
	TokenString // string
	// TokenSource is an unquoted index or cluster name in a FROM, METRICS, or LOOKUP command.
	// The Value will be the name itself.
	TokenSource // source name
	// TokenPolicyName is the policy name of an ENRICH command,
	// optionally prefixed by a mode and a colon.
	// The Value will be the raw text.
	TokenPolicyName // policy name
	// TokenWord is a bare term in a MATCH command query.
	// The Value will be the word itself.
	TokenWord // word
	// TokenParam is an anonymous query parameter ("?").
	// The Value will be the empty string.
	TokenParam // ?
	// TokenNamedParam is a named ("?name") or positional ("?1") query parameter.
	// The Value will be the text after the question mark.
	TokenNamedParam // parameter

	// TokenAnd is the keyword "and".
	TokenAnd // AND
	// TokenOr is the keyword "or".
	TokenOr // OR
	// TokenNot is the keyword "not".
	TokenNot // NOT
	// TokenIn is the keyword "in".
	TokenIn // IN
	// TokenIs is the keyword "is".
	TokenIs // IS
	// TokenNull is the keyword "null".
	TokenNull // NULL
	// TokenLike is the keyword "like".
	TokenLike // LIKE
	// TokenRLike is the keyword "rlike".
	TokenRLike // RLIKE
	// TokenTrue is the keyword "true".
	TokenTrue // TRUE
	// TokenFalse is the keyword "false".
	TokenFalse // FALSE
	// TokenAsc is the keyword "asc".
	TokenAsc // ASC
	// TokenDesc is the keyword "desc".
	TokenDesc // DESC
	// TokenNulls is the keyword "nulls".
	TokenNulls // NULLS
	// TokenFirst is the keyword "first".
	TokenFirst // FIRST
	// TokenLast is the keyword "last".
	TokenLast // LAST
	// TokenBy is the keyword "by".
	TokenBy // BY
	// TokenMatch is the full-text "match" operator keyword.
	TokenMatch // MATCH
	// TokenAs is the keyword "as" in a RENAME command.
	TokenAs // AS
	// TokenOn is the keyword "on" in an ENRICH or LOOKUP command.
	TokenOn // ON
	// TokenWith is the keyword "with" in an ENRICH command.
	TokenWith // WITH
	// TokenMetadata is the keyword "metadata" in a FROM command.
	TokenMetadata // METADATA
	// TokenInfo is the keyword "info" in a SHOW command.
	TokenInfo // INFO
	// TokenFunctions is the keyword "functions" in a META command.
	TokenFunctions // FUNCTIONS

	// TokenPipe is a single pipe character ("|").
	TokenPipe // |
	// TokenComma is a single comma character (",").
	TokenComma // ,
	// TokenDot is a period character (".").
	TokenDot // .
	// TokenColon is a single colon character (":").
	TokenColon // :
	// TokenCast is the sequence "::".
	TokenCast // ::
	// TokenPlus is a single plus character ("+").
	TokenPlus // +
	// TokenMinus is a single hyphen character ("-").
	TokenMinus // -
	// TokenStar is a single asterisk character ("*").
	TokenStar // *
	// TokenSlash is a single forward slash character ("/").
	TokenSlash // /
	// TokenMod is a single percent sign character ("%").
	TokenMod // %
	// TokenAssign is a single equals sign character ("=").
	TokenAssign // =
	// TokenEq is a sequence of two equals sign characters ("==").
	TokenEq // ==
	// TokenNE is the sequence "!=", representing an inequality test.
	TokenNE // !=
	// TokenLT is the less than symbol ("<").
	TokenLT // <
	// TokenLE is the less than or equal sequence "<=".
	TokenLE // <=
	// TokenGT is the greater than symbol (">").
	TokenGT // >
	// TokenGE is the greater than or equal sequence ">=".
	TokenGE // >=
	// TokenCaseInsensitiveEq is the sequence "=~".
	TokenCaseInsensitiveEq // =~
	// TokenLParen is a left parenthesis.
	TokenLParen // (
	// TokenRParen is a right parenthesis.
	TokenRParen // )
	// TokenLBracket is a left square bracket.
	TokenLBracket // [
	// TokenRBracket is a right square bracket.
	TokenRBracket // ]

	// TokenError is a marker for a scan error.
	// The Value will contain the error message.
	TokenError TokenKind = -1 // error
)

// Token is a syntactical element in a query.
type Token struct {
	// Kind is the token's type.
	Kind TokenKind
	// Span holds the location of the token.
	Span Span
	// Value contains kind-specific information about the token.
	// See the docs for [TokenKind] for what Value represents.
	Value string
}

func errorToken(span Span, format string, args ...any) Token {
	return Token{
		Kind:  TokenError,
		Span:  span,
		Value: fmt.Sprintf(format, args...),
	}
}

// lexMode selects the token rules used for the next token.
// Each command keyword switches the scanner into the mode for its arguments
// and a pipe switches back to modeCommand.
type lexMode int

const (
	modeCommand lexMode = iota
	modeExpression
	modeSource
	modePattern
	modePolicy
	modeKeyword
	modeMatch
	modeExplain
)

var commandModes = map[string]lexMode{
	"dissect":     modeExpression,
	"drop":        modePattern,
	"enrich":      modePolicy,
	"eval":        modeExpression,
	"explain":     modeExplain,
	"from":        modeSource,
	"grok":        modeExpression,
	"inlinestats": modeExpression,
	"keep":        modePattern,
	"limit":       modeExpression,
	"lookup":      modeSource,
	"match":       modeMatch,
	"meta":        modeKeyword,
	"metrics":     modeSource,
	"mv_expand":   modeExpression,
	"rename":      modePattern,
	"row":         modeExpression,
	"show":        modeKeyword,
	"sort":        modeExpression,
	"stats":       modeExpression,
	"where":       modeExpression,
}

var expressionKeywords = map[string]TokenKind{
	"and":   TokenAnd,
	"or":    TokenOr,
	"not":   TokenNot,
	"in":    TokenIn,
	"is":    TokenIs,
	"null":  TokenNull,
	"like":  TokenLike,
	"rlike": TokenRLike,
	"true":  TokenTrue,
	"false": TokenFalse,
	"asc":   TokenAsc,
	"desc":  TokenDesc,
	"nulls": TokenNulls,
	"first": TokenFirst,
	"last":  TokenLast,
	"by":    TokenBy,
	"match": TokenMatch,
}

// commandKeywords holds the keywords recognized in the argument modes
// that are not expression mode, keyed by command.
var commandKeywords = map[string]map[string]TokenKind{
	"from":   {"metadata": TokenMetadata},
	"lookup": {"on": TokenOn},
	"rename": {"as": TokenAs},
	"enrich": {"on": TokenOn, "with": TokenWith},
	"show":   {"info": TokenInfo},
	"meta":   {"functions": TokenFunctions},
	"match":  {"and": TokenAnd, "or": TokenOr, "not": TokenNot},
}

type lexFrame struct {
	mode lexMode
	// command is the lowercased keyword of the command that selected mode.
	command string
}

type scanner struct {
	s      string
	pos    int
	last   int
	frames []lexFrame
}

// Scan turns an ESQL statement into a sequence of [Token] values.
// Errors will be indicated with the [TokenError] kind.
func Scan(query string) []Token {
	s := scanner{
		s:      query,
		frames: []lexFrame{{mode: modeCommand}},
	}
	var tokens []Token
	for {
		if tok, ok := s.skipInsignificant(); !ok {
			tokens = append(tokens, tok)
			continue
		}
		if s.pos >= len(s.s) {
			break
		}
		tokens = append(tokens, s.token())
	}
	return tokens
}

func (s *scanner) top() *lexFrame {
	return &s.frames[len(s.frames)-1]
}

func (s *scanner) setMode(mode lexMode, command string) {
	f := s.top()
	f.mode = mode
	f.command = command
}

// skipInsignificant advances past whitespace and comments.
// It returns an error token and false for an unterminated block comment.
func (s *scanner) skipInsignificant() (Token, bool) {
	for {
		c, ok := s.next()
		if !ok {
			return Token{}, true
		}
		switch {
		case unicode.IsSpace(c):
			// Skip insignificant whitespace.
		case c == '/' && strings.HasPrefix(s.s[s.pos:], "/"):
			// It's a comment, consume to end of line.
			for {
				c, ok = s.next()
				if !ok || c == '\n' {
					break
				}
			}
		case c == '/' && strings.HasPrefix(s.s[s.pos:], "*"):
			start := s.last
			if !s.blockComment() {
				return errorToken(newSpan(start, s.pos), "unterminated comment"), false
			}
		default:
			s.prev()
			return Token{}, true
		}
	}
}

// blockComment consumes a possibly nested block comment.
// The scanner must be positioned after the opening slash.
func (s *scanner) blockComment() bool {
	s.setPos(s.pos + len("*"))
	depth := 1
	for depth > 0 {
		tail := s.s[s.pos:]
		switch {
		case tail == "":
			return false
		case strings.HasPrefix(tail, "/*"):
			depth++
			s.setPos(s.pos + 2)
		case strings.HasPrefix(tail, "*/"):
			depth--
			s.setPos(s.pos + 2)
		default:
			s.next()
		}
	}
	return true
}

func (s *scanner) token() Token {
	start := s.pos
	c, _ := s.next()
	switch c {
	case '|':
		s.setMode(modeCommand, "")
		return Token{Kind: TokenPipe, Span: newSpan(start, s.pos)}
	case ',':
		return Token{Kind: TokenComma, Span: newSpan(start, s.pos)}
	case '[':
		f := *s.top()
		if f.mode == modeExplain {
			f = lexFrame{mode: modeCommand}
		}
		s.frames = append(s.frames, f)
		return Token{Kind: TokenLBracket, Span: newSpan(start, s.pos)}
	case ']':
		if len(s.frames) > 1 {
			s.frames = s.frames[:len(s.frames)-1]
		}
		return Token{Kind: TokenRBracket, Span: newSpan(start, s.pos)}
	}
	s.prev()

	switch s.top().mode {
	case modeCommand:
		return s.commandToken()
	case modeExpression:
		return s.expressionToken()
	case modeSource:
		return s.sourceToken()
	case modePattern:
		return s.patternToken()
	case modePolicy:
		return s.policyToken()
	case modeKeyword:
		return s.keywordToken()
	case modeMatch:
		return s.matchToken()
	default:
		return s.unrecognized()
	}
}

func (s *scanner) unrecognized() Token {
	start := s.pos
	s.next()
	span := newSpan(start, s.pos)
	return errorToken(span, "unrecognized character %q", spanString(s.s, span))
}

func (s *scanner) commandToken() Token {
	start := s.pos
	c, _ := s.next()
	s.prev()
	if !isAlpha(c) && c != '_' {
		return s.unrecognized()
	}
	word := s.word()
	span := newSpan(start, s.pos)
	lower := strings.ToLower(word)
	if mode, ok := commandModes[lower]; ok {
		s.setMode(mode, lower)
		return Token{Kind: TokenCommand, Span: span, Value: lower}
	}
	// Unknown command. Scan the rest of the command as an expression
	// so the parser can report the command name.
	s.setMode(modeExpression, "")
	return Token{Kind: TokenIdentifier, Span: span, Value: word}
}

func (s *scanner) expressionToken() Token {
	start := s.pos
	c, _ := s.next()
	switch {
	case isAlpha(c) || c == '_' || c == '@':
		s.prev()
		return s.ident()
	case c == '`':
		s.prev()
		return s.quotedIdent()
	case isDigit(c):
		s.prev()
		return s.number()
	case c == '.':
		if next, ok := s.peek(); ok && isDigit(next) {
			s.prev()
			return s.number()
		}
		return Token{Kind: TokenDot, Span: newSpan(start, s.pos)}
	case c == '"':
		s.prev()
		return s.string()
	case c == '?':
		return s.param(start)
	case c == '(':
		return Token{Kind: TokenLParen, Span: newSpan(start, s.pos)}
	case c == ')':
		return Token{Kind: TokenRParen, Span: newSpan(start, s.pos)}
	case c == '+':
		return Token{Kind: TokenPlus, Span: newSpan(start, s.pos)}
	case c == '-':
		return Token{Kind: TokenMinus, Span: newSpan(start, s.pos)}
	case c == '*':
		return Token{Kind: TokenStar, Span: newSpan(start, s.pos)}
	case c == '/':
		return Token{Kind: TokenSlash, Span: newSpan(start, s.pos)}
	case c == '%':
		return Token{Kind: TokenMod, Span: newSpan(start, s.pos)}
	case c == ':':
		if s.consume(':') {
			return Token{Kind: TokenCast, Span: newSpan(start, s.pos)}
		}
		return errorToken(newSpan(start, s.pos), "unrecognized token ':'")
	case c == '=':
		switch {
		case s.consume('='):
			return Token{Kind: TokenEq, Span: newSpan(start, s.pos)}
		case s.consume('~'):
			return Token{Kind: TokenCaseInsensitiveEq, Span: newSpan(start, s.pos)}
		default:
			return Token{Kind: TokenAssign, Span: newSpan(start, s.pos)}
		}
	case c == '!':
		if s.consume('=') {
			return Token{Kind: TokenNE, Span: newSpan(start, s.pos)}
		}
		return errorToken(newSpan(start, s.pos), "unrecognized token '!'")
	case c == '<':
		if s.consume('=') {
			return Token{Kind: TokenLE, Span: newSpan(start, s.pos)}
		}
		return Token{Kind: TokenLT, Span: newSpan(start, s.pos)}
	case c == '>':
		if s.consume('=') {
			return Token{Kind: TokenGE, Span: newSpan(start, s.pos)}
		}
		return Token{Kind: TokenGT, Span: newSpan(start, s.pos)}
	default:
		s.prev()
		return s.unrecognized()
	}
}

func (s *scanner) ident() Token {
	start := s.pos
	first, _ := s.next()
	s.prev()
	word := s.word()
	span := newSpan(start, s.pos)
	if (first == '_' || first == '@') && len(word) == 1 {
		return errorToken(span, "unrecognized character %q", word)
	}
	if kind, ok := expressionKeywords[strings.ToLower(word)]; ok {
		return Token{Kind: kind, Span: span}
	}
	return Token{Kind: TokenIdentifier, Span: span, Value: word}
}

// word consumes a run of identifier characters.
func (s *scanner) word() string {
	start := s.pos
	s.next() // assume that the caller validated first character
	for {
		c, ok := s.next()
		if !ok {
			break
		}
		if !isIdentChar(c) {
			s.prev()
			break
		}
	}
	return s.s[start:s.pos]
}

func (s *scanner) quotedIdent() Token {
	start := s.pos
	if c, ok := s.next(); !ok || c != '`' {
		return errorToken(newSpan(start, s.pos), "parse quoted identifier: expected '`', found %q", c)
	}
	if !s.quotedRun() {
		return errorToken(newSpan(start, s.pos), "parse quoted identifier: unexpected EOF")
	}
	span := newSpan(start, s.pos)
	return Token{
		Kind:  TokenQuotedIdentifier,
		Span:  span,
		Value: spanString(s.s, span),
	}
}

// quotedRun consumes the rest of a backtick-quoted run,
// treating a doubled backtick as an escaped backtick.
// It reports false if the run is unterminated.
func (s *scanner) quotedRun() bool {
	for {
		c, ok := s.next()
		if !ok {
			return false
		}
		if c != '`' {
			continue
		}
		if !s.consume('`') {
			return true
		}
	}
}

func (s *scanner) number() Token {
	start := s.pos
	isDecimal := false
	if s.consume('.') {
		isDecimal = true
	}
	s.digits()
	if !isDecimal && s.consume('.') {
		isDecimal = true
		s.digits()
	}
	if s.numberExponent() {
		isDecimal = true
	}
	span := newSpan(start, s.pos)
	kind := TokenInteger
	if isDecimal {
		kind = TokenDecimal
	}
	return Token{Kind: kind, Span: span, Value: spanString(s.s, span)}
}

func (s *scanner) digits() {
	for {
		c, ok := s.next()
		if !ok {
			return
		}
		if !isDigit(c) {
			s.prev()
			return
		}
	}
}

func (s *scanner) numberExponent() (found bool) {
	start := s.pos
	defer func() {
		if !found {
			s.setPos(start)
		}
	}()

	c, ok := s.next()
	if !ok {
		return false
	}
	if c != 'e' && c != 'E' {
		return false
	}

	// Must have at least one digit.
	c, ok = s.next()
	if !ok {
		return false
	}
	if c == '+' || c == '-' {
		c, ok = s.next()
		if !ok {
			return false
		}
	}
	if !isDigit(c) {
		return false
	}
	s.digits()
	return true
}

// string scans a double-quoted or triple-quoted string literal.
// Escape sequences are validated but not evaluated.
func (s *scanner) string() Token {
	start := s.pos
	if strings.HasPrefix(s.s[s.pos:], `"""`) {
		end := strings.Index(s.s[s.pos+3:], `"""`)
		if end < 0 {
			s.setPos(len(s.s))
			return errorToken(newSpan(start, s.pos), "unterminated string")
		}
		s.setPos(s.pos + 3 + end + 3)
		// Up to two more quotes belong to the string's content.
		for i := 0; i < 2 && strings.HasPrefix(s.s[s.pos:], `"`); i++ {
			s.setPos(s.pos + 1)
		}
		span := newSpan(start, s.pos)
		return Token{Kind: TokenString, Span: span, Value: spanString(s.s, span)}
	}

	if c, ok := s.next(); !ok || c != '"' {
		return errorToken(indexSpan(start), "unexpected %q (expected string)", c)
	}
	badEscape := ""
	for {
		c, ok := s.next()
		if !ok {
			return errorToken(newSpan(start, s.pos), "unterminated string")
		}
		switch c {
		case '"':
			span := newSpan(start, s.pos)
			if badEscape != "" {
				return errorToken(span, "invalid escape sequence %q in string", badEscape)
			}
			return Token{Kind: TokenString, Span: span, Value: spanString(s.s, span)}
		case '\n', '\r':
			s.prev()
			return errorToken(newSpan(start, s.pos), "unterminated string")
		case '\\':
			c, ok := s.next()
			if !ok {
				return errorToken(newSpan(start, s.pos), "unterminated string")
			}
			switch c {
			case 't', 'n', 'r', '"', '\\':
			case '\n', '\r':
				s.prev()
				return errorToken(newSpan(start, s.pos), "unterminated string")
			default:
				if badEscape == "" {
					badEscape = `\` + string(c)
				}
			}
		}
	}
}

func (s *scanner) param(start int) Token {
	c, ok := s.peek()
	switch {
	case ok && (isAlpha(c) || c == '_'):
		name := s.word()
		return Token{Kind: TokenNamedParam, Span: newSpan(start, s.pos), Value: name}
	case ok && isDigit(c):
		digitStart := s.pos
		s.digits()
		return Token{Kind: TokenNamedParam, Span: newSpan(start, s.pos), Value: s.s[digitStart:s.pos]}
	default:
		return Token{Kind: TokenParam, Span: newSpan(start, s.pos)}
	}
}

func (s *scanner) sourceToken() Token {
	start := s.pos
	c, _ := s.next()
	var tok Token
	switch {
	case c == ':':
		return Token{Kind: TokenColon, Span: newSpan(start, s.pos)}
	case c == '"':
		s.prev()
		tok = s.string()
	case s.isSourceChar(c):
		for {
			c, ok := s.next()
			if !ok {
				break
			}
			if !s.isSourceChar(c) {
				s.prev()
				break
			}
		}
		span := newSpan(start, s.pos)
		name := spanString(s.s, span)
		f := s.top()
		if kind, ok := commandKeywords[f.command][strings.ToLower(name)]; ok {
			if kind == TokenOn {
				s.setMode(modePattern, f.command)
			}
			return Token{Kind: kind, Span: span}
		}
		tok = Token{Kind: TokenSource, Span: span, Value: name}
	default:
		s.prev()
		return s.unrecognized()
	}
	if s.top().command == "metrics" {
		s.leaveMetricsSources()
	}
	return tok
}

// isSourceChar reports whether c can appear in an unquoted index name.
// The scanner must be positioned after c.
func (s *scanner) isSourceChar(c rune) bool {
	switch c {
	case ':', '"', '=', '|', ',', '[', ']':
		return false
	case '/':
		next, ok := s.peek()
		return !ok || (next != '*' && next != '/')
	default:
		return !unicode.IsSpace(c)
	}
}

// leaveMetricsSources switches from index patterns to aggregate expressions
// once the last index pattern of a METRICS command has been read.
func (s *scanner) leaveMetricsSources() {
	lookahead := *s
	lookahead.frames = nil
	if _, ok := lookahead.skipInsignificant(); !ok {
		return
	}
	c, ok := lookahead.peek()
	if !ok || c == ',' || c == ':' || c == '|' {
		return
	}
	s.setMode(modeExpression, "metrics")
}

func (s *scanner) patternToken() Token {
	start := s.pos
	c, _ := s.next()
	switch {
	case c == '.':
		return Token{Kind: TokenDot, Span: newSpan(start, s.pos)}
	case c == '=':
		return Token{Kind: TokenAssign, Span: newSpan(start, s.pos)}
	case c == '?':
		return s.param(start)
	case c == '`' || isPatternChar(c):
		s.prev()
	default:
		s.prev()
		return s.unrecognized()
	}

	quoted := false
	for {
		c, ok := s.next()
		if !ok {
			break
		}
		if c == '`' {
			quoted = true
			if !s.quotedRun() {
				return errorToken(newSpan(start, s.pos), "parse quoted identifier: unexpected EOF")
			}
			continue
		}
		if !isPatternChar(c) {
			s.prev()
			break
		}
	}
	span := newSpan(start, s.pos)
	text := spanString(s.s, span)
	if !quoted {
		if kind, ok := commandKeywords[s.top().command][strings.ToLower(text)]; ok {
			return Token{Kind: kind, Span: span}
		}
	}
	return Token{Kind: TokenIdentifierPattern, Span: span, Value: text}
}

func (s *scanner) policyToken() Token {
	start := s.pos
	for {
		c, ok := s.next()
		if !ok {
			break
		}
		if !isPolicyChar(c) && c != ':' {
			s.prev()
			break
		}
	}
	if s.pos == start {
		return s.unrecognized()
	}
	span := newSpan(start, s.pos)
	s.setMode(modePattern, s.top().command)
	return Token{Kind: TokenPolicyName, Span: span, Value: spanString(s.s, span)}
}

func (s *scanner) keywordToken() Token {
	start := s.pos
	c, _ := s.next()
	s.prev()
	if !isAlpha(c) && c != '_' {
		return s.unrecognized()
	}
	word := s.word()
	span := newSpan(start, s.pos)
	if kind, ok := commandKeywords[s.top().command][strings.ToLower(word)]; ok {
		return Token{Kind: kind, Span: span}
	}
	return Token{Kind: TokenIdentifier, Span: span, Value: word}
}

func (s *scanner) matchToken() Token {
	start := s.pos
	c, _ := s.next()
	switch c {
	case '"':
		s.prev()
		return s.string()
	case '(':
		return Token{Kind: TokenLParen, Span: newSpan(start, s.pos)}
	case ')':
		return Token{Kind: TokenRParen, Span: newSpan(start, s.pos)}
	case ':':
		return Token{Kind: TokenColon, Span: newSpan(start, s.pos)}
	case '<':
		if s.consume('=') {
			return Token{Kind: TokenLE, Span: newSpan(start, s.pos)}
		}
		return Token{Kind: TokenLT, Span: newSpan(start, s.pos)}
	case '>':
		if s.consume('=') {
			return Token{Kind: TokenGE, Span: newSpan(start, s.pos)}
		}
		return Token{Kind: TokenGT, Span: newSpan(start, s.pos)}
	}
	if !isMatchWordChar(c) {
		s.prev()
		return s.unrecognized()
	}
	for {
		c, ok := s.next()
		if !ok {
			break
		}
		if !isMatchWordChar(c) {
			s.prev()
			break
		}
	}
	span := newSpan(start, s.pos)
	word := spanString(s.s, span)
	if kind, ok := commandKeywords["match"][strings.ToLower(word)]; ok {
		return Token{Kind: kind, Span: span}
	}
	return Token{Kind: TokenWord, Span: span, Value: word}
}

func (s *scanner) next() (rune, bool) {
	if s.pos >= len(s.s) {
		return 0, false
	}
	c, n := utf8.DecodeRuneInString(s.s[s.pos:])
	s.last = s.pos
	s.pos += n
	return c, true
}

func (s *scanner) peek() (rune, bool) {
	if s.pos >= len(s.s) {
		return 0, false
	}
	c, _ := utf8.DecodeRuneInString(s.s[s.pos:])
	return c, true
}

// consume advances past c if it is the next character.
func (s *scanner) consume(c rune) bool {
	if next, ok := s.peek(); ok && next == c {
		s.next()
		return true
	}
	return false
}

func (s *scanner) prev() {
	s.pos = s.last
}

func (s *scanner) setPos(pos int) {
	s.pos = pos
	s.last = pos
}

func isAlpha(c rune) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

func isIdentChar(c rune) bool {
	return isAlpha(c) || isDigit(c) || c == '_'
}

func isPatternChar(c rune) bool {
	return isIdentChar(c) || c == '*' || c == '@'
}

func isPolicyChar(c rune) bool {
	switch c {
	case '\\', '/', '?', '"', '<', '>', '|', ',', '#', ':', '[', ']':
		return false
	default:
		return !unicode.IsSpace(c)
	}
}

func isMatchWordChar(c rune) bool {
	switch c {
	case ':', '(', ')', '"', '<', '>', '=', '|', ',', '[', ']':
		return false
	default:
		return !unicode.IsSpace(c)
	}
}
