// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/runreveal/esql/expr"
	"github.com/stretchr/testify/require"
)

func field(name string, nullable expr.Nullability) *expr.FieldAttribute {
	return expr.NewFieldAttribute(expr.EmptySource(), name, expr.Keyword, nullable)
}

type attrSummary struct {
	Name      string
	ID        expr.NameID
	Nullable  expr.Nullability
	Reference bool
}

func summarize(attrs []expr.Attribute) []attrSummary {
	var out []attrSummary
	for _, a := range attrs {
		_, ref := a.(*expr.ReferenceAttribute)
		out = append(out, attrSummary{Name: a.Name(), ID: a.ID(), Nullable: a.Nullable(), Reference: ref})
	}
	return out
}

func TestJoinOutput(t *testing.T) {
	a := field("a", expr.NullabilityFalse)
	b := field("b", expr.NullabilityFalse)
	c := field("c", expr.NullabilityFalse)
	left := NewLocalRelation(expr.EmptySource(), []expr.Attribute{a, b}, nil)
	right := NewLocalRelation(expr.EmptySource(), []expr.Attribute{c}, nil)

	tests := []struct {
		typ  JoinType
		want []attrSummary
	}{
		{
			typ: LeftJoin,
			want: []attrSummary{
				{Name: "a", ID: a.ID(), Nullable: expr.NullabilityFalse},
				{Name: "b", ID: b.ID(), Nullable: expr.NullabilityFalse},
				{Name: "c", ID: c.ID(), Nullable: expr.NullabilityTrue, Reference: true},
			},
		},
		{
			typ: RightJoin,
			want: []attrSummary{
				{Name: "a", ID: a.ID(), Nullable: expr.NullabilityTrue},
				{Name: "b", ID: b.ID(), Nullable: expr.NullabilityTrue},
				{Name: "c", ID: c.ID(), Nullable: expr.NullabilityFalse, Reference: true},
			},
		},
		{
			typ: FullJoin,
			want: []attrSummary{
				{Name: "a", ID: a.ID(), Nullable: expr.NullabilityTrue},
				{Name: "b", ID: b.ID(), Nullable: expr.NullabilityTrue},
				{Name: "c", ID: c.ID(), Nullable: expr.NullabilityTrue, Reference: true},
			},
		},
		{
			typ: InnerJoin,
			want: []attrSummary{
				{Name: "a", ID: a.ID(), Nullable: expr.NullabilityFalse},
				{Name: "b", ID: b.ID(), Nullable: expr.NullabilityFalse},
				{Name: "c", ID: c.ID(), Nullable: expr.NullabilityFalse, Reference: true},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.typ.String(), func(t *testing.T) {
			j := NewJoin(expr.EmptySource(), left, right, JoinConfig{Type: test.typ})
			if diff := cmp.Diff(test.want, summarize(j.Output())); diff != "" {
				t.Errorf("Output() (-want +got):\n%s", diff)
			}
			require.True(t, j.DuplicatesResolved())
			require.True(t, j.Resolved())
			// Inputs are unchanged.
			require.Equal(t, expr.NullabilityFalse, a.Nullable())
			require.Equal(t, expr.NullabilityFalse, c.Nullable())
		})
	}
}

func TestJoinOutputMemoized(t *testing.T) {
	left := NewLocalRelation(expr.EmptySource(), []expr.Attribute{field("a", expr.NullabilityFalse)}, nil)
	right := NewLocalRelation(expr.EmptySource(), []expr.Attribute{field("b", expr.NullabilityFalse)}, nil)
	j := NewJoin(expr.EmptySource(), left, right, JoinConfig{Type: LeftJoin})

	var wg sync.WaitGroup
	outputs := make([][]expr.Attribute, 8)
	for i := range outputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outputs[i] = j.Output()
		}(i)
	}
	wg.Wait()
	for _, out := range outputs[1:] {
		require.Same(t, &outputs[0][0], &out[0])
	}
}

func TestJoinDuplicates(t *testing.T) {
	shared := field("a", expr.NullabilityFalse)
	left := NewLocalRelation(expr.EmptySource(), []expr.Attribute{shared, field("b", expr.NullabilityFalse)}, nil)
	right := NewLocalRelation(expr.EmptySource(), []expr.Attribute{shared}, nil)
	j := NewJoin(expr.EmptySource(), left, right, JoinConfig{Type: LeftJoin})
	require.True(t, left.Resolved())
	require.True(t, right.Resolved())
	require.False(t, j.DuplicatesResolved())
	require.False(t, j.Resolved())

	// Same names with different identities are not duplicates.
	other := NewLocalRelation(expr.EmptySource(), []expr.Attribute{field("a", expr.NullabilityFalse)}, nil)
	require.True(t, NewJoin(expr.EmptySource(), left, other, JoinConfig{}).DuplicatesResolved())

	// Unresolved inputs make the join unresolved.
	unresolved := NewUnresolvedRelation(expr.EmptySource(), "idx", nil, StandardMode, "FROM")
	require.False(t, NewJoin(expr.EmptySource(), unresolved, other, JoinConfig{}).Resolved())
}

func TestMergeOutputAttributes(t *testing.T) {
	a, b, c := field("a", expr.NullabilityFalse), field("b", expr.NullabilityFalse), field("c", expr.NullabilityFalse)
	b2 := field("b", expr.NullabilityTrue)
	got := MergeOutputAttributes([]expr.Attribute{a, b, c}, []expr.Attribute{b2})
	want := []expr.Attribute{a, c, b2}
	require.Equal(t, want, got)

	j := NewJoin(expr.EmptySource(),
		NewLocalRelation(expr.EmptySource(), []expr.Attribute{a, b}, nil),
		NewLocalRelation(expr.EmptySource(), []expr.Attribute{b2}, nil),
		JoinConfig{Type: InnerJoin})
	out := j.Output()
	require.Len(t, out, 2)
	require.Equal(t, a.ID(), out[0].ID())
	require.Equal(t, b2.ID(), out[1].ID())
}

func TestLookupJoin(t *testing.T) {
	key := field("key", expr.NullabilityFalse)
	child := NewLocalRelation(expr.EmptySource(), []expr.Attribute{key, field("x", expr.NullabilityFalse)}, nil)
	tableKey := field("key", expr.NullabilityFalse)
	table := NewLocalRelation(expr.EmptySource(), []expr.Attribute{tableKey, field("name", expr.NullabilityFalse)}, [][]any{{"1", "one"}})

	l := NewLookup(expr.EmptySource(), child, expr.NewLiteral(expr.EmptySource(), "codes", expr.Keyword), []expr.Attribute{key}, nil)
	require.False(t, l.Resolved())
	require.Equal(t, child.Output(), l.Output())

	j := l.Join(table)
	require.Equal(t, LeftJoin, j.Config.Type)
	require.Equal(t, []expr.Attribute{tableKey}, j.Config.RightFields)
	names := make([]string, 0)
	for _, a := range j.Output() {
		names = append(names, a.Name())
	}
	require.Equal(t, []string{"x", "key", "name"}, names)

	loaded := l.WithLocalRelation(table)
	require.True(t, loaded.Resolved())
	require.False(t, l.Resolved())
	require.Same(t, table, loaded.LocalRelation())
	out := loaded.Output()
	require.Len(t, out, 3)
	require.Same(t, &out[0], &loaded.Output()[0])
}

func TestJoinReplaceChildren(t *testing.T) {
	a := field("a", expr.NullabilityFalse)
	b := field("b", expr.NullabilityFalse)
	c := field("c", expr.NullabilityFalse)
	left := NewLocalRelation(expr.EmptySource(), []expr.Attribute{a}, nil)
	right := NewLocalRelation(expr.EmptySource(), []expr.Attribute{b}, nil)
	j := NewJoin(expr.EmptySource(), left, right, JoinConfig{Type: LeftJoin})
	before := summarize(j.Output())

	replacement := NewLocalRelation(expr.EmptySource(), []expr.Attribute{c}, nil)
	got := j.ReplaceChildren([]LogicalPlan{left, replacement})
	j2, ok := got.(*Join)
	require.True(t, ok)
	require.NotSame(t, j, j2)
	require.Same(t, left, j2.Left())
	require.Same(t, replacement, j2.Right())
	require.Equal(t, j.Config, j2.Config)

	// The original join and its cached output are unchanged.
	require.Same(t, right, j.Right())
	if diff := cmp.Diff(before, summarize(j.Output())); diff != "" {
		t.Errorf("original Output() (-want +got):\n%s", diff)
	}
	want := []attrSummary{
		{Name: "a", ID: a.ID(), Nullable: expr.NullabilityFalse},
		{Name: "c", ID: c.ID(), Nullable: expr.NullabilityTrue, Reference: true},
	}
	if diff := cmp.Diff(want, summarize(j2.Output())); diff != "" {
		t.Errorf("replaced Output() (-want +got):\n%s", diff)
	}

	require.Panics(t, func() { j.ReplaceChildren([]LogicalPlan{left}) })
}

func TestReplaceChildren(t *testing.T) {
	src := expr.EmptySource()
	rel := NewUnresolvedRelation(src, "t", nil, StandardMode, "FROM")
	other := NewUnresolvedRelation(src, "u", nil, StandardMode, "FROM")
	cond := expr.NewUnresolvedAttribute(src, "a")
	key := field("k", expr.NullabilityFalse)
	table := NewLocalRelation(src, []expr.Attribute{field("k", expr.NullabilityFalse)}, nil)

	tests := []LogicalPlan{
		NewFilter(src, rel, cond),
		NewEval(src, rel, []*expr.Alias{expr.NewAlias(src, "x", cond)}),
		NewLimit(src, rel, expr.NewLiteral(src, int32(1), expr.Integer)),
		NewKeep(src, rel, []expr.NamedExpression{cond}),
		NewDrop(src, rel, []expr.NamedExpression{cond}),
		NewRename(src, rel, []*expr.Alias{expr.NewAlias(src, "b", cond)}),
		NewOrderBy(src, rel, []*expr.Order{expr.NewOrder(src, cond, expr.Ascending, expr.NullsLast)}),
		NewAggregate(src, rel, StandardAggregate, nil, []expr.NamedExpression{cond}),
		NewInlineStats(src, rel, nil, []expr.NamedExpression{cond}),
		NewDissect(src, rel, cond, DissectParser{Pattern: "%{x}"}, nil),
		NewGrok(src, rel, cond, "%{WORD:x}", nil),
		NewEnrich(src, rel, EnrichAny, expr.NewLiteral(src, "p", expr.Keyword), nil, nil),
		NewMvExpand(src, rel, cond, cond),
		NewLookup(src, rel, expr.NewLiteral(src, "codes", expr.Keyword), []expr.Attribute{key}, table),
		NewExplain(src, rel),
	}
	for _, p := range tests {
		t.Run(p.String(), func(t *testing.T) {
			before := TreeString(p)
			got := p.ReplaceChildren([]LogicalPlan{other})
			require.NotSame(t, p, got)
			require.Equal(t, p.String(), got.String())
			require.Len(t, got.Children(), 1)
			require.Same(t, other, got.Children()[0])
			require.Equal(t, before, TreeString(p))
			require.Panics(t, func() { p.ReplaceChildren(nil) })
		})
	}

	require.Same(t, rel, rel.ReplaceChildren(nil))
	require.Panics(t, func() { rel.ReplaceChildren([]LogicalPlan{other}) })
}

func TestTransform(t *testing.T) {
	src := expr.EmptySource()
	rel := NewUnresolvedRelation(src, "t", nil, StandardMode, "FROM")
	cond := expr.NewUnresolvedAttribute(src, "a")
	filter := NewFilter(src, rel, cond)
	limit := NewLimit(src, filter, expr.NewLiteral(src, int32(10), expr.Integer))

	got := Transform(limit, func(p LogicalPlan) LogicalPlan {
		if r, ok := p.(*UnresolvedRelation); ok && r.Table == "t" {
			return NewUnresolvedRelation(src, "logs", nil, StandardMode, "FROM")
		}
		return p
	})
	want := "Limit[10]\n" +
		"\\_Filter[?a]\n" +
		"  \\_UnresolvedRelation[logs]\n"
	require.Equal(t, want, TreeString(got))
	require.Equal(t, "Limit[10]\n\\_Filter[?a]\n  \\_UnresolvedRelation[t]\n", TreeString(limit))

	same := Transform(limit, func(p LogicalPlan) LogicalPlan { return p })
	require.Same(t, limit, same)
}

func TestTreeString(t *testing.T) {
	rel := NewUnresolvedRelation(expr.EmptySource(), "t", nil, StandardMode, "FROM")
	cond := expr.NewUnresolvedAttribute(expr.EmptySource(), "a")
	filter := NewFilter(expr.EmptySource(), rel, cond)
	limit := NewLimit(expr.EmptySource(), filter, expr.NewLiteral(expr.EmptySource(), int32(10), expr.Integer))

	want := "Limit[10]\n" +
		"\\_Filter[?a]\n" +
		"  \\_UnresolvedRelation[t]\n"
	require.Equal(t, want, TreeString(limit))

	left := NewLocalRelation(expr.EmptySource(), nil, nil)
	right := NewUnresolvedRelation(expr.EmptySource(), "u", nil, StandardMode, "FROM")
	j := NewJoin(expr.EmptySource(), NewFilter(expr.EmptySource(), left, cond), right, JoinConfig{Type: LeftJoin})
	want = "Join[LEFT, [], [], []]\n" +
		"|_Filter[?a]\n" +
		"| \\_LocalRelation[]\n" +
		"\\_UnresolvedRelation[u]\n"
	require.Equal(t, want, TreeString(j))

	require.True(t, Equal(limit, NewLimit(expr.EmptySource(), filter, expr.NewLiteral(expr.EmptySource(), int32(10), expr.Integer))))
	require.False(t, Equal(limit, filter))
}

func TestNormalizeIDs(t *testing.T) {
	got := NormalizeIDs("Eval[a{r}#42, b{r}#7]\n\\_Keep[a{r}#42]")
	require.Equal(t, "Eval[a{r}#0, b{r}#1]\n\\_Keep[a{r}#0]", got)
}
