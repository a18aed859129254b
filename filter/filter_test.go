package filter

import (
	"testing"

	"github.com/corestash/queryplan/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func path(s string) model.PropertyPath { return model.ParsePropertyPath(s) }

func TestCombineFlattensNestedSameKind(t *testing.T) {
	a := PropertyConst(path("a"), EQ, 1)
	b := PropertyConst(path("b"), EQ, 2)
	c := PropertyConst(path("c"), EQ, 3)

	nested := And(And(a, b), c)
	assert.Equal(t, KindAnd, nested.Kind())
	require.Len(t, nested.Children(), 3)
}

func TestCombineSingletonCollapses(t *testing.T) {
	a := PropertyConst(path("a"), EQ, 1)
	assert.Equal(t, KindProperty, And(a).Kind())
	assert.Equal(t, KindProperty, Or(a).Kind())
}

func TestNotDeMorgan(t *testing.T) {
	a := PropertyConst(path("a"), EQ, 1)
	b := PropertyConst(path("b"), GT, 2)

	conj := And(a, b)
	neg := conj.Not()

	require.Equal(t, KindOr, neg.Kind())
	require.Len(t, neg.Children(), 2)
	assert.Equal(t, NE, neg.Children()[0].Operator())
	assert.Equal(t, LE, neg.Children()[1].Operator())
}

func TestNotOpenClosed(t *testing.T) {
	assert.True(t, Open().Not().IsClosed())
	assert.True(t, Closed().Not().IsOpen())
}

func TestNotExistsPanics(t *testing.T) {
	e := Exists(path("a"))
	assert.Panics(t, func() { e.Not() })
}

func TestIsBound(t *testing.T) {
	bound := PropertyConst(path("a"), EQ, 1)
	assert.True(t, bound.IsBound())

	unbound := PropertyParam(path("a"), EQ, "x")
	assert.False(t, unbound.IsBound())

	conj := And(bound, unbound)
	assert.False(t, conj.IsBound())
}

func TestBindResolvesPlaceholders(t *testing.T) {
	f := And(
		PropertyParam(path("a"), EQ, "x"),
		PropertyConst(path("b"), GT, 5),
	)
	values := NewFilterValues().With("x", 42)

	bound, err := f.Bind(values)
	require.NoError(t, err)
	assert.True(t, bound.IsBound())
	v, ok := bound.Children()[0].Value()
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestBindMissingPlaceholderErrors(t *testing.T) {
	f := PropertyParam(path("a"), EQ, "missing")
	_, err := f.Bind(NewFilterValues())
	require.Error(t, err)
	var uerr *UnboundParameterError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "missing", uerr.Placeholder)
}

func TestMustBindPanicsOnError(t *testing.T) {
	f := PropertyParam(path("a"), EQ, "missing")
	assert.Panics(t, func() { f.MustBind(NewFilterValues()) })
}

func TestInitialFilterValuesCollectsConstants(t *testing.T) {
	f := And(
		PropertyConst(path("a"), EQ, 1),
		PropertyParam(path("b"), EQ, "y"),
	)
	fv := f.InitialFilterValues()
	v, ok := fv.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = fv.Get("b")
	assert.False(t, ok)
}

func TestReduceCollapsesIdentities(t *testing.T) {
	a := PropertyConst(path("a"), EQ, 1)
	r := And(a, Open()).Reduce()
	assert.Equal(t, KindProperty, r.Kind())

	r2 := Or(a, Closed()).Reduce()
	assert.Equal(t, KindProperty, r2.Kind())

	assert.True(t, And(a, Closed()).Reduce().IsClosed())
	assert.True(t, Or(a, Open()).Reduce().IsOpen())
}

func TestDisjunctiveNormalFormSplitDistributesAndOverOr(t *testing.T) {
	a := PropertyConst(path("a"), EQ, 1)
	b := PropertyConst(path("b"), EQ, 2)
	c := PropertyConst(path("c"), EQ, 3)

	f := And(Or(a, b), c)
	conjuncts := f.DisjunctiveNormalFormSplit()
	require.Len(t, conjuncts, 2)
	for _, cj := range conjuncts {
		assert.Equal(t, KindAnd, cj.Kind())
	}
}

func TestDisjunctiveNormalFormSplitClosedYieldsNone(t *testing.T) {
	assert.Empty(t, Closed().DisjunctiveNormalFormSplit())
}

func TestConjunctiveNormalFormSplitIsDualOfDNF(t *testing.T) {
	a := PropertyConst(path("a"), EQ, 1)
	b := PropertyConst(path("b"), EQ, 2)

	f := Or(a, b)
	disjuncts := f.ConjunctiveNormalFormSplit()
	require.Len(t, disjuncts, 1)
	assert.Equal(t, KindOr, disjuncts[0].Kind())
}

func TestNotJoinedFromKeepsLocalAtoms(t *testing.T) {
	local := PropertyConst(path("name"), EQ, "x")
	joined := PropertyConst(path("customer.city"), EQ, "NYC")
	f := And(local, joined)

	notJoined := f.NotJoinedFrom("customer")
	assert.Equal(t, KindProperty, notJoined.Kind())
	assert.Equal(t, "name", notJoined.Path().String())
}

func TestAsJoinedFromStripsPrefixAndKeepsOnlyMatching(t *testing.T) {
	local := PropertyConst(path("name"), EQ, "x")
	joined := PropertyConst(path("customer.city"), EQ, "NYC")
	f := And(local, joined)

	translated := f.AsJoinedFrom("customer")
	assert.Equal(t, KindProperty, translated.Kind())
	assert.Equal(t, "city", translated.Path().String())
}

func TestStringFormatsReadably(t *testing.T) {
	f := And(
		PropertyConst(path("a"), EQ, 1),
		PropertyParam(path("b"), GT, "x"),
	)
	s := f.String()
	assert.Contains(t, s, "a = 1")
	assert.Contains(t, s, "b > ?x")
	assert.Contains(t, s, " AND ")
}
