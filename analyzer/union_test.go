package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corestash/queryplan/analyzer"
	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/internal/testsupport"
	"github.com/corestash/queryplan/model"
	"github.com/corestash/queryplan/ordering"
	"github.com/corestash/queryplan/scoring"
)

func TestUnionMergesDisjunctsOnSameIndexShape(t *testing.T) {
	typeInfo, store := widgetFixture()
	indexed := analyzer.New[testsupport.Widget](typeInfo, store, testsupport.RecordAccess{}, nil, nil, nil)
	u := analyzer.NewUnion[testsupport.Widget](typeInfo, store, testsupport.RecordAccess{}, indexed, nil, nil)

	// Both disjuncts score identically against ix_name (an equality
	// match on the same single property), differing only in the literal,
	// so mergeFixedPoint should fuse them into one subplan instead of
	// building a Union of two.
	f := filter.Or(
		filter.PropertyConst(model.ParsePropertyPath("name"), filter.EQ, "Alice"),
		filter.PropertyConst(model.ParsePropertyPath("name"), filter.EQ, "Bob"),
	)

	node, err := u.Plan(f, ordering.Of("Widget"), scoring.Hints{})
	require.NoError(t, err)
	assert.NotContains(t, node.PrintPlan(0), "union")

	cur, err := node.Fetch(filter.NewFilterValues())
	require.NoError(t, err)
	recs, err := testsupport.Drain(cur)
	require.NoError(t, err)

	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.Name
	}
	assert.ElementsMatch(t, []string{"Alice", "Bob"}, names)
}

func TestUnionAssemblesDistinctSubplansForUnrelatedDisjuncts(t *testing.T) {
	typeInfo, store := widgetFixture()
	indexed := analyzer.New[testsupport.Widget](typeInfo, store, testsupport.RecordAccess{}, nil, nil, nil)
	u := analyzer.NewUnion[testsupport.Widget](typeInfo, store, testsupport.RecordAccess{}, indexed, nil, nil)

	// id=1 hits pk_id (a key match); age=30 hits ix_age_name on a
	// different shape entirely, so the two can't merge and must survive
	// as distinct Union children.
	f := filter.Or(
		filter.PropertyConst(model.ParsePropertyPath("id"), filter.EQ, 1),
		filter.PropertyConst(model.ParsePropertyPath("age"), filter.EQ, 30),
	)

	node, err := u.Plan(f, ordering.Of("Widget"), scoring.Hints{})
	require.NoError(t, err)
	assert.Contains(t, node.PrintPlan(0), "union")

	cur, err := node.Fetch(filter.NewFilterValues())
	require.NoError(t, err)
	recs, err := testsupport.Drain(cur)
	require.NoError(t, err)

	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.Name
	}
	assert.ElementsMatch(t, []string{"Alice", "Carol"}, names)
}

func TestUnionCollapsesToFullScanWhenAnyDisjunctHandlesNothing(t *testing.T) {
	typeInfo, store := widgetFixture()
	indexed := analyzer.New[testsupport.Widget](typeInfo, store, testsupport.RecordAccess{}, nil, nil, nil)
	u := analyzer.NewUnion[testsupport.Widget](typeInfo, store, testsupport.RecordAccess{}, indexed, nil, nil)

	// id=1 is indexed, but ownerId EXISTS matches no index at all, so the
	// whole disjunction collapses into a single full scan carrying the
	// original OR as its remainder.
	f := filter.Or(
		filter.PropertyConst(model.ParsePropertyPath("id"), filter.EQ, 1),
		filter.Exists(model.ParsePropertyPath("ownerId")),
	)

	node, err := u.Plan(f, ordering.Of("Widget"), scoring.Hints{})
	require.NoError(t, err)
	assert.Contains(t, node.PrintPlan(0), "full scan:")

	cur, err := node.Fetch(filter.NewFilterValues())
	require.NoError(t, err)
	recs, err := testsupport.Drain(cur)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestUnionClosedFilterYieldsEmpty(t *testing.T) {
	typeInfo, store := widgetFixture()
	indexed := analyzer.New[testsupport.Widget](typeInfo, store, testsupport.RecordAccess{}, nil, nil, nil)
	u := analyzer.NewUnion[testsupport.Widget](typeInfo, store, testsupport.RecordAccess{}, indexed, nil, nil)

	node, err := u.Plan(filter.Closed(), ordering.Of("Widget"), scoring.Hints{})
	require.NoError(t, err)

	cur, err := node.Fetch(filter.NewFilterValues())
	require.NoError(t, err)
	recs, err := testsupport.Drain(cur)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
