// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package esql

import (
	"regexp"
	"strings"

	"github.com/runreveal/esql/expr"
	"github.com/runreveal/esql/parser"
	"github.com/runreveal/esql/plan"
)

// query builds the plan for a whole query.
// Each processing command takes the plan built so far as its input,
// so the last command is the root of the plan.
func (b *builder) buildQuery(q *parser.Query) (plan.LogicalPlan, error) {
	p, err := b.sourceCommand(q.Source)
	if err != nil {
		return nil, err
	}
	for _, cmd := range q.Commands {
		p, err = b.processingCommand(p, cmd)
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (b *builder) sourceCommand(cmd parser.SourceCommand) (plan.LogicalPlan, error) {
	switch cmd := cmd.(type) {
	case *parser.FromCommand:
		return b.from(cmd)
	case *parser.RowCommand:
		fields, err := b.aliases(cmd.Fields)
		if err != nil {
			return nil, err
		}
		return plan.NewRow(b.source(cmd), fields), nil
	case *parser.ShowCommand:
		return plan.NewShowInfo(b.source(cmd)), nil
	case *parser.MetaCommand:
		return plan.NewMetaFunctions(b.source(cmd), b.funcs.Definitions()), nil
	case *parser.ExplainCommand:
		q, err := b.buildQuery(cmd.Query)
		if err != nil {
			return nil, err
		}
		return plan.NewExplain(b.source(cmd), q), nil
	case *parser.MetricsCommand:
		return b.metrics(cmd)
	default:
		return nil, b.errorf(cmd.Span(), "unsupported source command %T", cmd)
	}
}

func (b *builder) processingCommand(child plan.LogicalPlan, cmd parser.ProcessingCommand) (plan.LogicalPlan, error) {
	source := b.source(cmd)
	switch cmd := cmd.(type) {
	case *parser.EvalCommand:
		fields, err := b.aliases(cmd.Fields)
		if err != nil {
			return nil, err
		}
		return plan.NewEval(source, child, fields), nil
	case *parser.WhereCommand:
		cond, err := b.expression(cmd.Condition)
		if err != nil {
			return nil, err
		}
		return plan.NewFilter(source, child, cond), nil
	case *parser.LimitCommand:
		return b.limit(child, cmd)
	case *parser.KeepCommand:
		return b.keep(child, cmd)
	case *parser.DropCommand:
		return b.drop(child, cmd)
	case *parser.RenameCommand:
		return b.rename(child, cmd)
	case *parser.SortCommand:
		return b.sort(child, cmd)
	case *parser.StatsCommand:
		groupings, aggregates, err := b.aggregates(cmd.Stats, cmd.Grouping)
		if err != nil {
			return nil, err
		}
		return plan.NewAggregate(source, child, plan.StandardAggregate, groupings, aggregates), nil
	case *parser.InlineStatsCommand:
		groupings, aggregates, err := b.aggregates(cmd.Stats, cmd.Grouping)
		if err != nil {
			return nil, err
		}
		return plan.NewInlineStats(source, child, groupings, aggregates), nil
	case *parser.DissectCommand:
		return b.dissect(child, cmd)
	case *parser.GrokCommand:
		return b.grok(child, cmd)
	case *parser.EnrichCommand:
		return b.enrich(child, cmd)
	case *parser.MvExpandCommand:
		target, err := b.attribute(cmd.Field)
		if err != nil {
			return nil, err
		}
		expanded := expr.NewReferenceAttribute(b.source(cmd.Field), target.Name(), expr.Unsupported, expr.NullabilityUnknown)
		return plan.NewMvExpand(source, child, target, expanded), nil
	case *parser.LookupCommand:
		return b.lookup(child, cmd)
	case *parser.MatchCommand:
		cond, err := b.matchQuery(cmd.Query)
		if err != nil {
			return nil, err
		}
		return plan.NewFilter(source, child, cond), nil
	default:
		return nil, b.errorf(cmd.Span(), "unsupported command %T", cmd)
	}
}

func (b *builder) from(cmd *parser.FromCommand) (plan.LogicalPlan, error) {
	table, err := b.indexPatterns(cmd.Patterns)
	if err != nil {
		return nil, err
	}
	var metadata []expr.Attribute
	if cmd.Metadata != nil {
		seen := make(map[string]struct{})
		for _, f := range cmd.Metadata.Fields {
			name, err := b.indexString(f)
			if err != nil {
				return nil, err
			}
			a, ok := plan.MetadataAttribute(b.source(f), name)
			if !ok {
				return nil, b.errorf(f.Span(), "unsupported metadata field [%s]", name)
			}
			if _, dup := seen[name]; dup {
				return nil, b.errorf(f.Span(), "metadata field [%s] already declared", name)
			}
			seen[name] = struct{}{}
			metadata = append(metadata, a)
		}
	}
	return plan.NewUnresolvedRelation(b.source(cmd), table, metadata, plan.StandardMode, "FROM"), nil
}

func (b *builder) metrics(cmd *parser.MetricsCommand) (plan.LogicalPlan, error) {
	table, err := b.indexPatterns(cmd.Patterns)
	if err != nil {
		return nil, err
	}
	rel := plan.NewUnresolvedRelation(b.source(cmd), table, nil, plan.TimeSeriesMode, "METRICS")
	if len(cmd.Aggregates) == 0 && len(cmd.Grouping) == 0 {
		return rel, nil
	}
	groupings, aggregates, err := b.aggregates(cmd.Aggregates, cmd.Grouping)
	if err != nil {
		return nil, err
	}
	return plan.NewAggregate(b.source(cmd), rel, plan.MetricsAggregate, groupings, aggregates), nil
}

// namedField returns the column a field defines.
// A field without a name is named by its source text,
// unless it is a column reference.
func (b *builder) namedField(f *parser.Field) (expr.NamedExpression, error) {
	var name string
	if f.Name != nil {
		var err error
		name, err = b.qualifiedName(f.Name)
		if err != nil {
			return nil, err
		}
	}
	x, err := b.expression(f.X)
	if err != nil {
		return nil, err
	}
	if f.Name != nil {
		return expr.NewAlias(b.source(f), name, x), nil
	}
	if attr, ok := x.(*expr.UnresolvedAttribute); ok {
		return attr, nil
	}
	return expr.NewAlias(b.source(f), b.source(f.X).Text, x), nil
}

// aliases returns the columns defined by the fields of ROW or EVAL.
func (b *builder) aliases(fields []*parser.Field) ([]*expr.Alias, error) {
	aliases := make([]*expr.Alias, 0, len(fields))
	for _, f := range fields {
		named, err := b.namedField(f)
		if err != nil {
			return nil, err
		}
		alias, ok := named.(*expr.Alias)
		if !ok {
			alias = expr.NewAlias(b.source(f), named.Name(), named)
		}
		aliases = append(aliases, alias)
	}
	return aliases, nil
}

// aggregates returns the grouping keys and the output columns
// of STATS, INLINESTATS, or METRICS.
// The output columns are the aggregates followed by the grouping keys.
func (b *builder) aggregates(stats, grouping []*parser.Field) ([]expr.Expression, []expr.NamedExpression, error) {
	// Fields are built in the order they are written.
	aggregates := make([]expr.NamedExpression, 0, len(stats)+len(grouping))
	for _, f := range stats {
		agg, err := b.namedField(f)
		if err != nil {
			return nil, nil, err
		}
		aggregates = append(aggregates, agg)
	}
	groupings := make([]expr.Expression, 0, len(grouping))
	keys := make([]expr.NamedExpression, 0, len(grouping))
	keyNames := make(map[string]struct{})
	for _, f := range grouping {
		key, err := b.namedField(f)
		if err != nil {
			return nil, nil, err
		}
		groupings = append(groupings, key)
		keys = append(keys, key)
		keyNames[key.Name()] = struct{}{}
	}
	for i, agg := range aggregates {
		if _, dup := keyNames[agg.Name()]; dup {
			return nil, nil, b.errorf(stats[i].Span(), "grouping key [%s] already specified in the STATS BY clause", agg.Name())
		}
	}
	for _, key := range keys {
		aggregates = append(aggregates, key.ToAttribute())
	}
	return groupings, aggregates, nil
}

func (b *builder) limit(child plan.LogicalPlan, cmd *parser.LimitCommand) (plan.LogicalPlan, error) {
	v, typ, err := numberValue(cmd.Count)
	n, ok := v.(int32)
	if err != nil || typ != expr.Integer || !ok || n < 0 {
		return nil, b.errorf(cmd.Count.Span(), "Invalid value for LIMIT [%s], expecting a non negative integer", cmd.Count.Text())
	}
	limit := expr.NewLiteral(b.source(cmd.Count), n, expr.Integer)
	return plan.NewLimit(b.source(cmd), child, limit), nil
}

func (b *builder) keep(child plan.LogicalPlan, cmd *parser.KeepCommand) (plan.LogicalPlan, error) {
	projections := make([]expr.NamedExpression, 0, len(cmd.Patterns))
	hasStar := false
	for _, pat := range cmd.Patterns {
		ne, err := b.qualifiedNamePattern(pat)
		if err != nil {
			return nil, err
		}
		if _, ok := ne.(*expr.UnresolvedStar); ok {
			if hasStar {
				return nil, b.errorf(pat.Span(), "Cannot specify [*] more than once")
			}
			hasStar = true
		}
		projections = append(projections, ne)
	}
	return plan.NewKeep(b.source(cmd), child, projections), nil
}

func (b *builder) drop(child plan.LogicalPlan, cmd *parser.DropCommand) (plan.LogicalPlan, error) {
	removals := make([]expr.NamedExpression, 0, len(cmd.Patterns))
	for _, pat := range cmd.Patterns {
		ne, err := b.qualifiedNamePattern(pat)
		if err != nil {
			return nil, err
		}
		if _, ok := ne.(*expr.UnresolvedStar); ok {
			text := parser.Span{Start: cmd.Keyword.Start, End: cmd.Span().End}.Text(b.query)
			return nil, b.errorf(pat.Span(), "Removing all fields is not allowed [%s]", text)
		}
		removals = append(removals, ne)
	}
	return plan.NewDrop(b.source(cmd), child, removals), nil
}

// plainName returns the column a pattern names,
// or an error mentioning command if the pattern has wildcards.
func (b *builder) plainName(pat *parser.QualifiedNamePattern, command string) (*expr.UnresolvedAttribute, error) {
	ne, err := b.qualifiedNamePattern(pat)
	if err != nil {
		return nil, err
	}
	attr, ok := ne.(*expr.UnresolvedAttribute)
	if !ok {
		return nil, b.errorf(pat.Span(), "Using wildcards [*] in %s is not allowed [%s]", command, b.source(pat).Text)
	}
	return attr, nil
}

func (b *builder) rename(child plan.LogicalPlan, cmd *parser.RenameCommand) (plan.LogicalPlan, error) {
	renamings := make([]*expr.Alias, 0, len(cmd.Clauses))
	for _, clause := range cmd.Clauses {
		old, err := b.plainName(clause.Old, "RENAME")
		if err != nil {
			return nil, err
		}
		name, err := b.plainName(clause.New, "RENAME")
		if err != nil {
			return nil, err
		}
		renamings = append(renamings, expr.NewAlias(b.source(clause), name.Name(), old))
	}
	return plan.NewRename(b.source(cmd), child, renamings), nil
}

func (b *builder) sort(child plan.LogicalPlan, cmd *parser.SortCommand) (plan.LogicalPlan, error) {
	orders := make([]*expr.Order, 0, len(cmd.Orders))
	for _, o := range cmd.Orders {
		x, err := b.expression(o.X)
		if err != nil {
			return nil, err
		}
		dir := expr.Ascending
		if o.Ordering == parser.TokenDesc {
			dir = expr.Descending
		}
		var nulls expr.NullsPosition
		switch o.NullOrdering {
		case parser.TokenFirst:
			nulls = expr.NullsFirst
		case parser.TokenLast:
			nulls = expr.NullsLast
		default:
			nulls = expr.DefaultNullsPosition(dir)
		}
		orders = append(orders, expr.NewOrder(b.source(o), x, dir, nulls))
	}
	return plan.NewOrderBy(b.source(cmd), child, orders), nil
}

func (b *builder) dissect(child plan.LogicalPlan, cmd *parser.DissectCommand) (plan.LogicalPlan, error) {
	input, err := b.expression(cmd.Input)
	if err != nil {
		return nil, err
	}
	pattern, err := unquoteString(cmd.Pattern.Raw)
	if err != nil {
		return nil, b.error(cmd.Pattern.Span(), err)
	}
	dp := plan.DissectParser{Pattern: pattern}
	for _, opt := range cmd.Options {
		name, err := b.identifier(opt.Name)
		if err != nil {
			return nil, err
		}
		if !strings.EqualFold(name, "append_separator") {
			return nil, b.errorf(opt.Name.Span(), "Invalid option for dissect: [%s]", name)
		}
		value, err := b.constant(opt.Value)
		if err != nil {
			return nil, err
		}
		sep, ok := expr.FoldString(value)
		if !ok {
			return nil, b.errorf(opt.Value.Span(), "Invalid value for dissect append_separator: expected a string, but was [%s]", value)
		}
		dp.AppendSeparator = sep
	}
	keys, err := parseDissectKeys(pattern)
	if err != nil {
		return nil, b.error(cmd.Pattern.Span(), err)
	}
	extracted := make([]expr.Attribute, 0, len(keys))
	for _, key := range keys {
		extracted = append(extracted, expr.NewReferenceAttribute(b.source(cmd.Pattern), key, expr.Keyword, expr.NullabilityTrue))
	}
	return plan.NewDissect(b.source(cmd), child, input, dp, extracted), nil
}

func (b *builder) grok(child plan.LogicalPlan, cmd *parser.GrokCommand) (plan.LogicalPlan, error) {
	input, err := b.expression(cmd.Input)
	if err != nil {
		return nil, err
	}
	pattern, err := unquoteString(cmd.Pattern.Raw)
	if err != nil {
		return nil, b.error(cmd.Pattern.Span(), err)
	}
	g, err := compileGrok(pattern)
	if err != nil {
		return nil, b.error(cmd.Pattern.Span(), err)
	}
	extracted := make([]expr.Attribute, 0, len(g.fields))
	for _, f := range g.fields {
		extracted = append(extracted, expr.NewReferenceAttribute(b.source(cmd.Pattern), f.name, f.typ, expr.NullabilityTrue))
	}
	return plan.NewGrok(b.source(cmd), child, input, pattern, extracted), nil
}

func (b *builder) enrich(child plan.LogicalPlan, cmd *parser.EnrichCommand) (plan.LogicalPlan, error) {
	mode, policy, err := b.policyName(cmd.Policy)
	if err != nil {
		return nil, err
	}
	var matchField expr.NamedExpression
	if cmd.MatchField != nil {
		matchField, err = b.plainName(cmd.MatchField, "ENRICH ON")
		if err != nil {
			return nil, err
		}
	}
	fields := make([]expr.NamedExpression, 0, len(cmd.Clauses))
	for _, clause := range cmd.Clauses {
		field, err := b.plainName(clause.Field, "ENRICH WITH projections")
		if err != nil {
			return nil, err
		}
		if clause.NewName == nil {
			fields = append(fields, field)
			continue
		}
		name, err := b.plainName(clause.NewName, "ENRICH WITH projections")
		if err != nil {
			return nil, err
		}
		fields = append(fields, expr.NewAlias(b.source(clause), name.Name(), field))
	}
	return plan.NewEnrich(b.source(cmd), child, mode, policy, matchField, fields), nil
}

// policyName splits an enrich policy reference into its mode and name.
func (b *builder) policyName(name *parser.PolicyName) (plan.EnrichMode, expr.Expression, error) {
	mode := plan.EnrichAny
	text := name.Text
	if prefix, rest, ok := strings.Cut(text, ":"); ok {
		m, known := plan.EnrichModeByName(prefix)
		if !known {
			return mode, nil, b.errorf(name.Span(),
				"Unrecognized value [%s], ENRICH policy qualifier needs to be one of [_ANY, _COORDINATOR, _REMOTE]", prefix)
		}
		mode, text = m, rest
	}
	if strings.Contains(text, "*") {
		return mode, nil, b.errorf(name.Span(), "Using wildcards [*] in ENRICH policy names is not allowed [%s]", text)
	}
	return mode, expr.NewLiteral(b.source(name), text, expr.Keyword), nil
}

func (b *builder) lookup(child plan.LogicalPlan, cmd *parser.LookupCommand) (plan.LogicalPlan, error) {
	table, err := b.indexPattern(cmd.Table)
	if err != nil {
		return nil, err
	}
	if strings.Contains(table, "*") {
		return nil, b.errorf(cmd.Table.Span(), "Using wildcards [*] in LOOKUP is not allowed [%s]", table)
	}
	matchFields := make([]expr.Attribute, 0, len(cmd.MatchFields))
	for _, pat := range cmd.MatchFields {
		attr, err := b.plainName(pat, "LOOKUP ON")
		if err != nil {
			return nil, err
		}
		matchFields = append(matchFields, attr)
	}
	tableName := expr.NewLiteral(b.source(cmd.Table), table, expr.Keyword)
	return plan.NewLookup(b.source(cmd), child, tableName, matchFields, nil), nil
}

// matchQuery converts the query of a MATCH command into a filter condition.
func (b *builder) matchQuery(q parser.MatchQueryExpr) (expr.Expression, error) {
	switch q := q.(type) {
	case *parser.MatchUnparsed:
		query, err := b.stringLiteral(q.Query)
		if err != nil {
			return nil, err
		}
		return b.queryString(q, query)
	case *parser.MatchBinary:
		left, err := b.matchQuery(q.X)
		if err != nil {
			return nil, err
		}
		right, err := b.matchQuery(q.Y)
		if err != nil {
			return nil, err
		}
		if q.Op == parser.TokenOr {
			return expr.NewOr(b.source(q), left, right), nil
		}
		return expr.NewAnd(b.source(q), left, right), nil
	case *parser.MatchNot:
		x, err := b.matchQuery(q.X)
		if err != nil {
			return nil, err
		}
		return expr.NewNot(b.source(q), x), nil
	case *parser.MatchParen:
		return b.matchQuery(q.X)
	case *parser.MatchTerm:
		return b.matchTerm(q)
	default:
		return nil, b.errorf(q.Span(), "unsupported match query %T", q)
	}
}

func (b *builder) queryString(node parser.Node, query *expr.Literal) (expr.Expression, error) {
	qs := expr.NewQueryString(b.source(node), query)
	if err := qs.ResolveQuery().Err(); err != nil {
		return nil, b.error(node.Span(), err)
	}
	return qs, nil
}

func (b *builder) matchTerm(term *parser.MatchTerm) (expr.Expression, error) {
	value, err := b.matchValue(term.Value)
	if err != nil {
		return nil, err
	}
	if term.Field == nil {
		return b.queryString(term, value)
	}
	field := expr.NewUnresolvedAttribute(b.source(term.Field), term.Field.Text)
	if term.Op == 0 {
		m := expr.NewMatch(b.source(term), field, value)
		if err := m.ResolveQuery().Err(); err != nil {
			return nil, b.error(term.Value.Span(), err)
		}
		return m, nil
	}
	op, ok := comparisonOps[term.Op]
	if !ok {
		return nil, b.errorf(term.OpSpan, "unknown range operator %v", term.Op)
	}
	// Numeric bounds compare as numbers.
	bound := value
	if s, isString := value.Value.(string); isString && !isQuoted(term.Value) && numericWord.MatchString(s) {
		if v, typ, err := parseNumber(s); err == nil {
			bound = expr.NewLiteral(value.Source(), v, typ)
		}
	}
	return expr.NewComparison(b.source(term), op, field, bound), nil
}

func (b *builder) matchValue(v parser.MatchValue) (*expr.Literal, error) {
	switch v := v.(type) {
	case *parser.MatchWord:
		return expr.NewLiteral(b.source(v), v.Text, expr.Keyword), nil
	case *parser.StringLit:
		return b.stringLiteral(v)
	default:
		return nil, b.errorf(v.Span(), "unsupported match value %T", v)
	}
}

var numericWord = regexp.MustCompile(`\A[+-]?[0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?\z`)

func isQuoted(v parser.MatchValue) bool {
	_, ok := v.(*parser.StringLit)
	return ok
}
