// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package parser

// MatchQueryExpr is the interface implemented by
// the nodes of a MATCH command's query.
type MatchQueryExpr interface {
	Node
	matchQueryExpr()
}

// MatchUnparsed is a MATCH query given as a single string,
// passed through as-is to a query string query.
type MatchUnparsed struct {
	Query *StringLit
}

func (q *MatchUnparsed) Span() Span {
	if q == nil {
		return nullSpan()
	}
	return q.Query.Span()
}

func (q *MatchUnparsed) matchQueryExpr() {}

// MatchBinary represents `x AND y` or `x OR y` in a MATCH query.
type MatchBinary struct {
	X      MatchQueryExpr
	OpSpan Span
	// Op is [TokenAnd] or [TokenOr].
	Op TokenKind
	Y  MatchQueryExpr
}

func (q *MatchBinary) Span() Span {
	if q == nil {
		return nullSpan()
	}
	return unionSpans(nodeSpan(q.X), q.OpSpan, nodeSpan(q.Y))
}

func (q *MatchBinary) matchQueryExpr() {}

// MatchNot represents `NOT x` in a MATCH query.
type MatchNot struct {
	Not Span
	X   MatchQueryExpr
}

func (q *MatchNot) Span() Span {
	if q == nil {
		return nullSpan()
	}
	return unionSpans(q.Not, nodeSpan(q.X))
}

func (q *MatchNot) matchQueryExpr() {}

// MatchParen represents a parenthesized MATCH query.
type MatchParen struct {
	Lparen Span
	X      MatchQueryExpr
	Rparen Span
}

func (q *MatchParen) Span() Span {
	if q == nil {
		return nullSpan()
	}
	return unionSpans(q.Lparen, nodeSpan(q.X), q.Rparen)
}

func (q *MatchParen) matchQueryExpr() {}

// MatchWord is a bare word in a MATCH query.
type MatchWord struct {
	Text     string
	TextSpan Span
}

func (w *MatchWord) Span() Span {
	if w == nil {
		return nullSpan()
	}
	return w.TextSpan
}

func (w *MatchWord) matchValue() {}

func (lit *StringLit) matchValue() {}

// MatchValue is either a [*MatchWord] or a [*StringLit].
type MatchValue interface {
	Node
	matchValue()
}

// MatchTerm is a single search term: `value`, `field:value`,
// or a range like `field:>=value`.
type MatchTerm struct {
	// Field is nil for a term that searches all fields.
	Field *MatchWord
	Colon Span
	// Op is one of [TokenLT], [TokenLE], [TokenGT], [TokenGE],
	// or zero for an equality term.
	Op     TokenKind
	OpSpan Span
	Value  MatchValue
}

func (q *MatchTerm) Span() Span {
	if q == nil {
		return nullSpan()
	}
	return unionSpans(q.Field.Span(), q.Colon, q.OpSpan, nodeSpan(q.Value))
}

func (q *MatchTerm) matchQueryExpr() {}

// matchQuery parses the argument of a MATCH command.
// A lone string is kept unparsed.
func (p *parser) matchQuery() (MatchQueryExpr, error) {
	if tok := p.peek(); tok.Kind == TokenString {
		p.next()
		if p.atCommandEnd() {
			return &MatchUnparsed{Query: &StringLit{Raw: tok.Value, RawSpan: tok.Span}}, nil
		}
		p.prev()
	}
	return p.matchOr()
}

func (p *parser) matchOr() (MatchQueryExpr, error) {
	x, err := p.matchAnd()
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
		y, err := p.matchAnd()
		if err != nil {
			return nil, err
		}
		x = &MatchBinary{X: x, OpSpan: op.Span, Op: TokenOr, Y: y}
	}
}

func (p *parser) matchAnd() (MatchQueryExpr, error) {
	x, err := p.matchNot()
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
		y, err := p.matchNot()
		if err != nil {
			return nil, err
		}
		x = &MatchBinary{X: x, OpSpan: op.Span, Op: TokenAnd, Y: y}
	}
}

func (p *parser) matchNot() (MatchQueryExpr, error) {
	not, ok := p.next()
	if !ok || not.Kind != TokenNot {
		if ok {
			p.prev()
		}
		return p.matchPrimary()
	}
	x, err := p.matchNot()
	if err != nil {
		return nil, err
	}
	return &MatchNot{Not: not.Span, X: x}, nil
}

func (p *parser) matchPrimary() (MatchQueryExpr, error) {
	tok, _ := p.next()
	switch tok.Kind {
	case TokenLParen:
		x, err := p.matchOr()
		if err != nil {
			return nil, err
		}
		rparen, err := p.expect(TokenRParen, "')'")
		if err != nil {
			return nil, err
		}
		return &MatchParen{Lparen: tok.Span, X: x, Rparen: rparen.Span}, nil
	case TokenString:
		return &MatchTerm{
			Colon:  nullSpan(),
			OpSpan: nullSpan(),
			Value:  &StringLit{Raw: tok.Value, RawSpan: tok.Span},
		}, nil
	case TokenWord:
		word := &MatchWord{Text: tok.Value, TextSpan: tok.Span}
		colon, ok := p.next()
		if !ok || colon.Kind != TokenColon {
			if ok {
				p.prev()
			}
			return &MatchTerm{Colon: nullSpan(), OpSpan: nullSpan(), Value: word}, nil
		}
		term := &MatchTerm{Field: word, Colon: colon.Span, OpSpan: nullSpan()}
		if op := p.peek(); op.Kind == TokenLT || op.Kind == TokenLE || op.Kind == TokenGT || op.Kind == TokenGE {
			p.next()
			term.Op = op.Kind
			term.OpSpan = op.Span
		}
		value, _ := p.next()
		switch value.Kind {
		case TokenWord:
			term.Value = &MatchWord{Text: value.Value, TextSpan: value.Span}
		case TokenString:
			term.Value = &StringLit{Raw: value.Value, RawSpan: value.Span}
		default:
			return nil, p.unexpected(value, "search value")
		}
		return term, nil
	default:
		return nil, p.unexpected(tok, "search term")
	}
}
