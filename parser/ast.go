// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package parser

// Node is the interface implemented by all parse tree node types.
type Node interface {
	Span() Span
}

func nodeSpan(n Node) Span {
	if n == nil {
		return nullSpan()
	}
	return n.Span()
}

func nodeSliceSpan[T Node](nodes []T) Span {
	spans := make([]Span, 0, len(nodes))
	for _, n := range nodes {
		if span := nodeSpan(n); span.IsValid() {
			spans = append(spans, span)
		}
	}
	return unionSpans(spans...)
}

// Query is a pipeline: a source command
// followed by zero or more processing commands.
type Query struct {
	Source   SourceCommand
	Commands []ProcessingCommand
}

func (q *Query) Span() Span {
	if q == nil {
		return nullSpan()
	}
	return unionSpans(nodeSpan(q.Source), nodeSliceSpan(q.Commands))
}

// SourceCommand is the interface implemented by the commands
// that can start a [Query].
type SourceCommand interface {
	Node
	sourceCommand()
}

// ProcessingCommand is the interface implemented by the commands
// that can follow a pipe in a [Query].
type ProcessingCommand interface {
	Node
	processingCommand()
}

// An Ident node represents an identifier.
type Ident struct {
	// Name is the identifier as written.
	// Quoted identifiers include their backticks.
	Name     string
	NameSpan Span

	// Quoted is true if the identifier is quoted.
	Quoted bool
}

func (id *Ident) Span() Span {
	if id == nil {
		return nullSpan()
	}
	return id.NameSpan
}

func (id *Ident) identOrParam() {}

// A Param node represents a query parameter placeholder.
type Param struct {
	// Kind is [TokenParam] for an anonymous "?"
	// or [TokenNamedParam] for "?name" and "?1".
	Kind TokenKind
	// Name is the text after the question mark.
	Name      string
	ParamSpan Span
}

func (param *Param) Span() Span {
	if param == nil {
		return nullSpan()
	}
	return param.ParamSpan
}

func (param *Param) identOrParam()   {}
func (param *Param) patternOrParam() {}
func (param *Param) booleanExpr()    {}
func (param *Param) valueExpr()      {}
func (param *Param) operatorExpr()   {}
func (param *Param) primaryExpr()    {}
func (param *Param) constant()       {}

// IdentOrParam is either an [*Ident] or a [*Param].
type IdentOrParam interface {
	Node
	identOrParam()
}

// QualifiedName is a dot-separated sequence of identifiers.
// As an expression, it is a column reference.
type QualifiedName struct {
	Parts []IdentOrParam
}

func (name *QualifiedName) Span() Span {
	if name == nil {
		return nullSpan()
	}
	return nodeSliceSpan(name.Parts)
}

func (name *QualifiedName) booleanExpr()  {}
func (name *QualifiedName) valueExpr()    {}
func (name *QualifiedName) operatorExpr() {}
func (name *QualifiedName) primaryExpr()  {}

// An IdentPattern is a single identifier pattern token.
type IdentPattern struct {
	// Text is the pattern as written,
	// including the backticks of any quoted runs.
	Text     string
	TextSpan Span
}

func (pat *IdentPattern) Span() Span {
	if pat == nil {
		return nullSpan()
	}
	return pat.TextSpan
}

func (pat *IdentPattern) patternOrParam() {}

// PatternOrParam is either an [*IdentPattern] or a [*Param].
type PatternOrParam interface {
	Node
	patternOrParam()
}

// QualifiedNamePattern is a dot-separated sequence of identifier patterns.
type QualifiedNamePattern struct {
	Parts []PatternOrParam
}

func (name *QualifiedNamePattern) Span() Span {
	if name == nil {
		return nullSpan()
	}
	return nodeSliceSpan(name.Parts)
}

// SourceName is an index or cluster name.
type SourceName struct {
	// Text is the name as written.
	// Quoted names include their double quotes.
	Text     string
	TextSpan Span
	Quoted   bool
}

func (name *SourceName) Span() Span {
	if name == nil {
		return nullSpan()
	}
	return name.TextSpan
}

// IndexPattern is an index name, optionally qualified by a remote cluster name.
type IndexPattern struct {
	Cluster *SourceName
	Colon   Span
	Index   *SourceName
}

func (pat *IndexPattern) Span() Span {
	if pat == nil {
		return nullSpan()
	}
	return unionSpans(pat.Cluster.Span(), pat.Colon, pat.Index.Span())
}

// A Field is an expression in a ROW, EVAL, or STATS field list,
// optionally preceded by a column name.
type Field struct {
	Name   *QualifiedName
	Assign Span
	X      BooleanExpr
}

func (f *Field) Span() Span {
	if f == nil {
		return nullSpan()
	}
	return unionSpans(f.Name.Span(), f.Assign, nodeSpan(f.X))
}

// FromCommand represents a `FROM` source command.
type FromCommand struct {
	Keyword  Span
	Patterns []*IndexPattern
	Metadata *MetadataOption
}

func (cmd *FromCommand) sourceCommand() {}

func (cmd *FromCommand) Span() Span {
	if cmd == nil {
		return nullSpan()
	}
	return unionSpans(cmd.Keyword, nodeSliceSpan(cmd.Patterns), cmd.Metadata.Span())
}

// MetadataOption is the `METADATA` clause of a [FromCommand].
// The bracketed form is deprecated but still accepted.
type MetadataOption struct {
	Lbracket Span
	Keyword  Span
	Fields   []*SourceName
	Rbracket Span
}

func (opt *MetadataOption) Span() Span {
	if opt == nil {
		return nullSpan()
	}
	return unionSpans(opt.Lbracket, opt.Keyword, nodeSliceSpan(opt.Fields), opt.Rbracket)
}

// RowCommand represents a `ROW` source command.
type RowCommand struct {
	Keyword Span
	Fields  []*Field
}

func (cmd *RowCommand) sourceCommand() {}

func (cmd *RowCommand) Span() Span {
	if cmd == nil {
		return nullSpan()
	}
	return unionSpans(cmd.Keyword, nodeSliceSpan(cmd.Fields))
}

// ShowCommand represents a `SHOW INFO` source command.
type ShowCommand struct {
	Keyword Span
	Info    Span
}

func (cmd *ShowCommand) sourceCommand() {}

func (cmd *ShowCommand) Span() Span {
	if cmd == nil {
		return nullSpan()
	}
	return unionSpans(cmd.Keyword, cmd.Info)
}

// MetaCommand represents a `META FUNCTIONS` source command.
type MetaCommand struct {
	Keyword   Span
	Functions Span
}

func (cmd *MetaCommand) sourceCommand() {}

func (cmd *MetaCommand) Span() Span {
	if cmd == nil {
		return nullSpan()
	}
	return unionSpans(cmd.Keyword, cmd.Functions)
}

// ExplainCommand represents an `EXPLAIN [ query ]` source command.
type ExplainCommand struct {
	Keyword  Span
	Lbracket Span
	Query    *Query
	Rbracket Span
}

func (cmd *ExplainCommand) sourceCommand() {}

func (cmd *ExplainCommand) Span() Span {
	if cmd == nil {
		return nullSpan()
	}
	return unionSpans(cmd.Keyword, cmd.Lbracket, cmd.Query.Span(), cmd.Rbracket)
}

// MetricsCommand represents a `METRICS` source command.
type MetricsCommand struct {
	Keyword    Span
	Patterns   []*IndexPattern
	Aggregates []*Field
	By         Span
	Grouping   []*Field
}

func (cmd *MetricsCommand) sourceCommand() {}

func (cmd *MetricsCommand) Span() Span {
	if cmd == nil {
		return nullSpan()
	}
	return unionSpans(
		cmd.Keyword,
		nodeSliceSpan(cmd.Patterns),
		nodeSliceSpan(cmd.Aggregates),
		cmd.By,
		nodeSliceSpan(cmd.Grouping),
	)
}

// EvalCommand represents a `| EVAL` command.
type EvalCommand struct {
	Pipe    Span
	Keyword Span
	Fields  []*Field
}

func (cmd *EvalCommand) processingCommand() {}

func (cmd *EvalCommand) Span() Span {
	if cmd == nil {
		return nullSpan()
	}
	return unionSpans(cmd.Pipe, cmd.Keyword, nodeSliceSpan(cmd.Fields))
}

// LimitCommand represents a `| LIMIT` command.
type LimitCommand struct {
	Pipe    Span
	Keyword Span
	Count   *NumberLit
}

func (cmd *LimitCommand) processingCommand() {}

func (cmd *LimitCommand) Span() Span {
	if cmd == nil {
		return nullSpan()
	}
	return unionSpans(cmd.Pipe, cmd.Keyword, cmd.Count.Span())
}

// KeepCommand represents a `| KEEP` command.
type KeepCommand struct {
	Pipe     Span
	Keyword  Span
	Patterns []*QualifiedNamePattern
}

func (cmd *KeepCommand) processingCommand() {}

func (cmd *KeepCommand) Span() Span {
	if cmd == nil {
		return nullSpan()
	}
	return unionSpans(cmd.Pipe, cmd.Keyword, nodeSliceSpan(cmd.Patterns))
}

// DropCommand represents a `| DROP` command.
type DropCommand struct {
	Pipe     Span
	Keyword  Span
	Patterns []*QualifiedNamePattern
}

func (cmd *DropCommand) processingCommand() {}

func (cmd *DropCommand) Span() Span {
	if cmd == nil {
		return nullSpan()
	}
	return unionSpans(cmd.Pipe, cmd.Keyword, nodeSliceSpan(cmd.Patterns))
}

// RenameCommand represents a `| RENAME` command.
type RenameCommand struct {
	Pipe    Span
	Keyword Span
	Clauses []*RenameClause
}

func (cmd *RenameCommand) processingCommand() {}

func (cmd *RenameCommand) Span() Span {
	if cmd == nil {
		return nullSpan()
	}
	return unionSpans(cmd.Pipe, cmd.Keyword, nodeSliceSpan(cmd.Clauses))
}

// RenameClause is a single `old AS new` term in a [RenameCommand].
type RenameClause struct {
	Old *QualifiedNamePattern
	As  Span
	New *QualifiedNamePattern
}

func (clause *RenameClause) Span() Span {
	if clause == nil {
		return nullSpan()
	}
	return unionSpans(clause.Old.Span(), clause.As, clause.New.Span())
}

// SortCommand represents a `| SORT` command.
type SortCommand struct {
	Pipe    Span
	Keyword Span
	Orders  []*OrderExpr
}

func (cmd *SortCommand) processingCommand() {}

func (cmd *SortCommand) Span() Span {
	if cmd == nil {
		return nullSpan()
	}
	return unionSpans(cmd.Pipe, cmd.Keyword, nodeSliceSpan(cmd.Orders))
}

// OrderExpr is a single sort key in a [SortCommand].
type OrderExpr struct {
	X BooleanExpr
	// Ordering is [TokenAsc], [TokenDesc], or zero if omitted.
	Ordering     TokenKind
	OrderingSpan Span
	// NullOrdering is [TokenFirst], [TokenLast], or zero if omitted.
	NullOrdering TokenKind
	NullsSpan    Span
}

func (order *OrderExpr) Span() Span {
	if order == nil {
		return nullSpan()
	}
	return unionSpans(nodeSpan(order.X), order.OrderingSpan, order.NullsSpan)
}

// StatsCommand represents a `| STATS` command.
// Both the aggregates and the grouping are optional.
type StatsCommand struct {
	Pipe     Span
	Keyword  Span
	Stats    []*Field
	By       Span
	Grouping []*Field
}

func (cmd *StatsCommand) processingCommand() {}

func (cmd *StatsCommand) Span() Span {
	if cmd == nil {
		return nullSpan()
	}
	return unionSpans(cmd.Pipe, cmd.Keyword, nodeSliceSpan(cmd.Stats), cmd.By, nodeSliceSpan(cmd.Grouping))
}

// InlineStatsCommand represents a `| INLINESTATS` command.
type InlineStatsCommand struct {
	Pipe     Span
	Keyword  Span
	Stats    []*Field
	By       Span
	Grouping []*Field
}

func (cmd *InlineStatsCommand) processingCommand() {}

func (cmd *InlineStatsCommand) Span() Span {
	if cmd == nil {
		return nullSpan()
	}
	return unionSpans(cmd.Pipe, cmd.Keyword, nodeSliceSpan(cmd.Stats), cmd.By, nodeSliceSpan(cmd.Grouping))
}

// WhereCommand represents a `| WHERE` command.
type WhereCommand struct {
	Pipe      Span
	Keyword   Span
	Condition BooleanExpr
}

func (cmd *WhereCommand) processingCommand() {}

func (cmd *WhereCommand) Span() Span {
	if cmd == nil {
		return nullSpan()
	}
	return unionSpans(cmd.Pipe, cmd.Keyword, nodeSpan(cmd.Condition))
}

// DissectCommand represents a `| DISSECT` command.
type DissectCommand struct {
	Pipe    Span
	Keyword Span
	Input   PrimaryExpr
	Pattern *StringLit
	Options []*CommandOption
}

func (cmd *DissectCommand) processingCommand() {}

func (cmd *DissectCommand) Span() Span {
	if cmd == nil {
		return nullSpan()
	}
	return unionSpans(cmd.Pipe, cmd.Keyword, nodeSpan(cmd.Input), cmd.Pattern.Span(), nodeSliceSpan(cmd.Options))
}

// CommandOption is a `name = constant` option of a [DissectCommand].
type CommandOption struct {
	Name   *Ident
	Assign Span
	Value  Constant
}

func (opt *CommandOption) Span() Span {
	if opt == nil {
		return nullSpan()
	}
	return unionSpans(opt.Name.Span(), opt.Assign, nodeSpan(opt.Value))
}

// GrokCommand represents a `| GROK` command.
type GrokCommand struct {
	Pipe    Span
	Keyword Span
	Input   PrimaryExpr
	Pattern *StringLit
}

func (cmd *GrokCommand) processingCommand() {}

func (cmd *GrokCommand) Span() Span {
	if cmd == nil {
		return nullSpan()
	}
	return unionSpans(cmd.Pipe, cmd.Keyword, nodeSpan(cmd.Input), cmd.Pattern.Span())
}

// EnrichCommand represents a `| ENRICH` command.
type EnrichCommand struct {
	Pipe       Span
	Keyword    Span
	Policy     *PolicyName
	On         Span
	MatchField *QualifiedNamePattern
	With       Span
	Clauses    []*EnrichWithClause
}

func (cmd *EnrichCommand) processingCommand() {}

func (cmd *EnrichCommand) Span() Span {
	if cmd == nil {
		return nullSpan()
	}
	return unionSpans(
		cmd.Pipe,
		cmd.Keyword,
		cmd.Policy.Span(),
		cmd.On,
		cmd.MatchField.Span(),
		cmd.With,
		nodeSliceSpan(cmd.Clauses),
	)
}

// PolicyName is the `[mode:]name` policy reference of an [EnrichCommand].
type PolicyName struct {
	Text     string
	TextSpan Span
}

func (name *PolicyName) Span() Span {
	if name == nil {
		return nullSpan()
	}
	return name.TextSpan
}

// EnrichWithClause is a single `[newName =] field` term in an [EnrichCommand].
type EnrichWithClause struct {
	NewName *QualifiedNamePattern
	Assign  Span
	Field   *QualifiedNamePattern
}

func (clause *EnrichWithClause) Span() Span {
	if clause == nil {
		return nullSpan()
	}
	return unionSpans(clause.NewName.Span(), clause.Assign, clause.Field.Span())
}

// MvExpandCommand represents a `| MV_EXPAND` command.
type MvExpandCommand struct {
	Pipe    Span
	Keyword Span
	Field   *QualifiedName
}

func (cmd *MvExpandCommand) processingCommand() {}

func (cmd *MvExpandCommand) Span() Span {
	if cmd == nil {
		return nullSpan()
	}
	return unionSpans(cmd.Pipe, cmd.Keyword, cmd.Field.Span())
}

// LookupCommand represents a `| LOOKUP` command.
type LookupCommand struct {
	Pipe        Span
	Keyword     Span
	Table       *IndexPattern
	On          Span
	MatchFields []*QualifiedNamePattern
}

func (cmd *LookupCommand) processingCommand() {}

func (cmd *LookupCommand) Span() Span {
	if cmd == nil {
		return nullSpan()
	}
	return unionSpans(cmd.Pipe, cmd.Keyword, cmd.Table.Span(), cmd.On, nodeSliceSpan(cmd.MatchFields))
}

// MatchCommand represents a `| MATCH` full-text search command.
type MatchCommand struct {
	Pipe    Span
	Keyword Span
	Query   MatchQueryExpr
}

func (cmd *MatchCommand) processingCommand() {}

func (cmd *MatchCommand) Span() Span {
	if cmd == nil {
		return nullSpan()
	}
	return unionSpans(cmd.Pipe, cmd.Keyword, nodeSpan(cmd.Query))
}

// BooleanExpr is the interface implemented by all expression node types.
// Expressions form a hierarchy of precedence levels:
// every [ValueExpr] is a BooleanExpr,
// every [OperatorExpr] is a ValueExpr,
// and every [PrimaryExpr] is an OperatorExpr.
type BooleanExpr interface {
	Node
	booleanExpr()
}

// ValueExpr is an expression that can be the operand of a predicate.
type ValueExpr interface {
	BooleanExpr
	valueExpr()
}

// OperatorExpr is an arithmetic expression.
type OperatorExpr interface {
	ValueExpr
	operatorExpr()
}

// PrimaryExpr is an expression that binds tighter than any operator.
type PrimaryExpr interface {
	OperatorExpr
	primaryExpr()
}

// Constant is a literal or a query parameter.
type Constant interface {
	PrimaryExpr
	constant()
}

// A LogicalNot represents `NOT x`.
type LogicalNot struct {
	Not Span
	X   BooleanExpr
}

func (expr *LogicalNot) Span() Span {
	if expr == nil {
		return nullSpan()
	}
	return unionSpans(expr.Not, nodeSpan(expr.X))
}

func (expr *LogicalNot) booleanExpr() {}

// A LogicalBinary represents `x AND y` or `x OR y`.
type LogicalBinary struct {
	X      BooleanExpr
	OpSpan Span
	// Op is [TokenAnd] or [TokenOr].
	Op TokenKind
	Y  BooleanExpr
}

func (expr *LogicalBinary) Span() Span {
	if expr == nil {
		return nullSpan()
	}
	return unionSpans(nodeSpan(expr.X), expr.OpSpan, nodeSpan(expr.Y))
}

func (expr *LogicalBinary) booleanExpr() {}

// A LogicalIn represents `x [NOT] IN (a, b, ...)`.
type LogicalIn struct {
	X      ValueExpr
	Not    Span
	In     Span
	Lparen Span
	Vals   []ValueExpr
	Rparen Span
}

// Negated reports whether the expression is `NOT IN`.
func (expr *LogicalIn) Negated() bool {
	return expr.Not.IsValid()
}

func (expr *LogicalIn) Span() Span {
	if expr == nil {
		return nullSpan()
	}
	return unionSpans(nodeSpan(expr.X), expr.Not, expr.In, expr.Lparen, nodeSliceSpan(expr.Vals), expr.Rparen)
}

func (expr *LogicalIn) booleanExpr() {}

// An IsNull represents `x IS [NOT] NULL`.
type IsNull struct {
	X    ValueExpr
	Is   Span
	Not  Span
	Null Span
}

// Negated reports whether the expression is `IS NOT NULL`.
func (expr *IsNull) Negated() bool {
	return expr.Not.IsValid()
}

func (expr *IsNull) Span() Span {
	if expr == nil {
		return nullSpan()
	}
	return unionSpans(nodeSpan(expr.X), expr.Is, expr.Not, expr.Null)
}

func (expr *IsNull) booleanExpr() {}

// A RegexMatch represents `x [NOT] LIKE "pattern"` or `x [NOT] RLIKE "pattern"`.
type RegexMatch struct {
	X      ValueExpr
	Not    Span
	OpSpan Span
	// Op is [TokenLike] or [TokenRLike].
	Op      TokenKind
	Pattern *StringLit
}

// Negated reports whether the expression is preceded by NOT.
func (expr *RegexMatch) Negated() bool {
	return expr.Not.IsValid()
}

func (expr *RegexMatch) Span() Span {
	if expr == nil {
		return nullSpan()
	}
	return unionSpans(nodeSpan(expr.X), expr.Not, expr.OpSpan, expr.Pattern.Span())
}

func (expr *RegexMatch) booleanExpr() {}

// A MatchPredicate represents the full-text `x MATCH "query"` predicate.
type MatchPredicate struct {
	X     ValueExpr
	Match Span
	Query *StringLit
}

func (expr *MatchPredicate) Span() Span {
	if expr == nil {
		return nullSpan()
	}
	return unionSpans(nodeSpan(expr.X), expr.Match, expr.Query.Span())
}

func (expr *MatchPredicate) booleanExpr() {}

// A Comparison represents a binary comparison like `x < y`.
type Comparison struct {
	X      OperatorExpr
	OpSpan Span
	// Op is one of [TokenEq], [TokenNE], [TokenLT], [TokenLE], [TokenGT],
	// [TokenGE], or [TokenCaseInsensitiveEq].
	Op TokenKind
	Y  OperatorExpr
}

func (expr *Comparison) Span() Span {
	if expr == nil {
		return nullSpan()
	}
	return unionSpans(nodeSpan(expr.X), expr.OpSpan, nodeSpan(expr.Y))
}

func (expr *Comparison) booleanExpr() {}
func (expr *Comparison) valueExpr()   {}

// An ArithmeticUnary represents `-x` or `+x`.
type ArithmeticUnary struct {
	OpSpan Span
	Op     TokenKind
	X      OperatorExpr
}

func (expr *ArithmeticUnary) Span() Span {
	if expr == nil {
		return nullSpan()
	}
	return unionSpans(expr.OpSpan, nodeSpan(expr.X))
}

func (expr *ArithmeticUnary) booleanExpr()  {}
func (expr *ArithmeticUnary) valueExpr()    {}
func (expr *ArithmeticUnary) operatorExpr() {}

// An ArithmeticBinary represents an arithmetic operation like `x + y`.
type ArithmeticBinary struct {
	X      OperatorExpr
	OpSpan Span
	// Op is one of [TokenPlus], [TokenMinus], [TokenStar], [TokenSlash], or [TokenMod].
	Op TokenKind
	Y  OperatorExpr
}

func (expr *ArithmeticBinary) Span() Span {
	if expr == nil {
		return nullSpan()
	}
	return unionSpans(nodeSpan(expr.X), expr.OpSpan, nodeSpan(expr.Y))
}

func (expr *ArithmeticBinary) booleanExpr()  {}
func (expr *ArithmeticBinary) valueExpr()    {}
func (expr *ArithmeticBinary) operatorExpr() {}

// A ParenExpr represents a parenthesized expression.
type ParenExpr struct {
	Lparen Span
	X      BooleanExpr
	Rparen Span
}

func (expr *ParenExpr) Span() Span {
	if expr == nil {
		return nullSpan()
	}
	return unionSpans(expr.Lparen, nodeSpan(expr.X), expr.Rparen)
}

func (expr *ParenExpr) booleanExpr()  {}
func (expr *ParenExpr) valueExpr()    {}
func (expr *ParenExpr) operatorExpr() {}
func (expr *ParenExpr) primaryExpr()  {}

// An InlineCast represents `x::type`.
type InlineCast struct {
	X    PrimaryExpr
	Cast Span
	Type *Ident
}

func (expr *InlineCast) Span() Span {
	if expr == nil {
		return nullSpan()
	}
	return unionSpans(nodeSpan(expr.X), expr.Cast, expr.Type.Span())
}

func (expr *InlineCast) booleanExpr()  {}
func (expr *InlineCast) valueExpr()    {}
func (expr *InlineCast) operatorExpr() {}
func (expr *InlineCast) primaryExpr()  {}

// A FunctionCall represents a function name followed by an argument list.
// `f(*)` is recorded with a valid Star span and no Args.
type FunctionCall struct {
	Name   IdentOrParam
	Lparen Span
	Star   Span
	Args   []BooleanExpr
	Rparen Span
}

func (call *FunctionCall) Span() Span {
	if call == nil {
		return nullSpan()
	}
	return unionSpans(nodeSpan(call.Name), call.Lparen, call.Star, nodeSliceSpan(call.Args), call.Rparen)
}

func (call *FunctionCall) booleanExpr()  {}
func (call *FunctionCall) valueExpr()    {}
func (call *FunctionCall) operatorExpr() {}
func (call *FunctionCall) primaryExpr()  {}

// A NullLit represents the `null` literal.
type NullLit struct {
	NullSpan Span
}

func (lit *NullLit) Span() Span {
	if lit == nil {
		return nullSpan()
	}
	return lit.NullSpan
}

func (lit *NullLit) booleanExpr()  {}
func (lit *NullLit) valueExpr()    {}
func (lit *NullLit) operatorExpr() {}
func (lit *NullLit) primaryExpr()  {}
func (lit *NullLit) constant()     {}

// A BoolLit represents `true` or `false`.
type BoolLit struct {
	Value     bool
	ValueSpan Span
}

func (lit *BoolLit) Span() Span {
	if lit == nil {
		return nullSpan()
	}
	return lit.ValueSpan
}

func (lit *BoolLit) booleanExpr()  {}
func (lit *BoolLit) valueExpr()    {}
func (lit *BoolLit) operatorExpr() {}
func (lit *BoolLit) primaryExpr()  {}
func (lit *BoolLit) constant()     {}

// A NumberLit represents an integer or decimal literal with an optional sign.
type NumberLit struct {
	// Sign is [TokenPlus], [TokenMinus], or zero if the literal is unsigned.
	Sign     TokenKind
	SignSpan Span
	// Kind is [TokenInteger] or [TokenDecimal].
	Kind      TokenKind
	Value     string
	ValueSpan Span
}

// Text returns the literal's text including its sign.
func (lit *NumberLit) Text() string {
	if lit.Sign == TokenMinus {
		return "-" + lit.Value
	}
	return lit.Value
}

func (lit *NumberLit) Span() Span {
	if lit == nil {
		return nullSpan()
	}
	return unionSpans(lit.SignSpan, lit.ValueSpan)
}

func (lit *NumberLit) booleanExpr()  {}
func (lit *NumberLit) valueExpr()    {}
func (lit *NumberLit) operatorExpr() {}
func (lit *NumberLit) primaryExpr()  {}
func (lit *NumberLit) constant()     {}

// A QualifiedIntegerLit represents an integer followed by a unit, like `1 day`.
type QualifiedIntegerLit struct {
	Number *NumberLit
	Unit   *Ident
}

func (lit *QualifiedIntegerLit) Span() Span {
	if lit == nil {
		return nullSpan()
	}
	return unionSpans(lit.Number.Span(), lit.Unit.Span())
}

func (lit *QualifiedIntegerLit) booleanExpr()  {}
func (lit *QualifiedIntegerLit) valueExpr()    {}
func (lit *QualifiedIntegerLit) operatorExpr() {}
func (lit *QualifiedIntegerLit) primaryExpr()  {}
func (lit *QualifiedIntegerLit) constant()     {}

// A StringLit represents a string literal.
type StringLit struct {
	// Raw is the literal as written, including quotes.
	Raw     string
	RawSpan Span
}

func (lit *StringLit) Span() Span {
	if lit == nil {
		return nullSpan()
	}
	return lit.RawSpan
}

func (lit *StringLit) booleanExpr()  {}
func (lit *StringLit) valueExpr()    {}
func (lit *StringLit) operatorExpr() {}
func (lit *StringLit) primaryExpr()  {}
func (lit *StringLit) constant()     {}

// An ArrayLit represents a bracketed list of numeric, boolean, or string literals.
type ArrayLit struct {
	Lbracket Span
	Elems    []Constant
	Rbracket Span
}

func (lit *ArrayLit) Span() Span {
	if lit == nil {
		return nullSpan()
	}
	return unionSpans(lit.Lbracket, nodeSliceSpan(lit.Elems), lit.Rbracket)
}

func (lit *ArrayLit) booleanExpr()  {}
func (lit *ArrayLit) valueExpr()    {}
func (lit *ArrayLit) operatorExpr() {}
func (lit *ArrayLit) primaryExpr()  {}
func (lit *ArrayLit) constant()     {}
