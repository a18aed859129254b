package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corestash/queryplan/analyzer"
	"github.com/corestash/queryplan/exec"
	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/internal/testsupport"
	"github.com/corestash/queryplan/model"
	"github.com/corestash/queryplan/ordering"
	"github.com/corestash/queryplan/scoring"
)

// staticForeignPlanner wraps a testsupport-backed IndexedQueryAnalyzer as
// the ForeignPlanner facade the join planner needs, the way an embedder
// would wrap each record type's own analyzer via analyzer.Erase.
type staticForeignPlanner struct {
	typeInfo *testsupport.TypeInfo
	inner    *analyzer.IndexedQueryAnalyzer[testsupport.Widget]
}

func (p *staticForeignPlanner) TypeInfo() model.TypeInfo { return p.typeInfo }

func (p *staticForeignPlanner) Plan(conjunct filter.Filter, requested *ordering.List, hints scoring.Hints) (analyzer.ForeignPlan, bool) {
	result, err := p.inner.Analyze(conjunct, requested, hints)
	if err != nil {
		return analyzer.ForeignPlan{}, false
	}
	return analyzer.ForeignPlan{
		KeyMatch:  result.KeyMatch,
		Ordering:  requested,
		Score:     result.Score,
		IndexName: result.Index.Name,
		Build: func() (exec.Node[any], error) {
			node, err := result.CreateExecutor()
			if err != nil {
				return nil, err
			}
			return analyzer.Erase[testsupport.Widget](node), nil
		},
	}, true
}

func (p *staticForeignPlanner) RecordAccess() exec.RecordAccess[any] {
	return analyzer.EraseRecordAccess[testsupport.Widget](testsupport.RecordAccess{})
}

// ownerJoinFixture builds a Widget type referencing an Owner type by
// "ownerId" -> "id", with ownerId itself indexed so the synthetic
// join-equality the planner derives can actually seek rather than scan.
func ownerJoinFixture() (*testsupport.TypeInfo, *testsupport.Store, analyzer.ForeignCatalog) {
	widgetType := testsupport.NewTypeInfo("Widget")
	widgetType.WithIndex(model.IndexDescriptor{
		Name:       "ix_owner",
		Properties: []model.OrderingEntry{{Property: model.ParsePropertyPath("ownerId"), Direction: model.Ascending}},
	})
	widgetType.WithReference("owner", "Owner", "ownerId", "id")
	widgetStore := testsupport.NewStore(widgetType, []testsupport.Widget{
		{ID: 1, Name: "Alice", OwnerID: 1},
		{ID: 2, Name: "Bob", OwnerID: 2},
		{ID: 3, Name: "Carol", OwnerID: 1},
	})

	ownerType := testsupport.NewTypeInfo("Owner")
	ownerStore := testsupport.NewStore(ownerType, []testsupport.Widget{
		{ID: 1, Name: "OwnerA"},
		{ID: 2, Name: "OwnerB"},
	})
	ownerAnalyzer := analyzer.New[testsupport.Widget](ownerType, ownerStore, testsupport.RecordAccess{}, nil, nil, nil)

	catalog := analyzer.StaticForeignCatalog{
		"Owner": &staticForeignPlanner{typeInfo: ownerType, inner: ownerAnalyzer},
	}
	return widgetType, widgetStore, catalog
}

func TestAnalyzePlansJoinThroughChainedReference(t *testing.T) {
	widgetType, widgetStore, catalog := ownerJoinFixture()
	a := analyzer.New[testsupport.Widget](widgetType, widgetStore, testsupport.RecordAccess{}, catalog, nil, nil)

	// No local index covers "owner.id" directly (it isn't even a local
	// property), so the planner must reach it through the "owner"
	// reference: a key match on Owner.id supplies owner 1's identity,
	// which joins back to Widget.ownerId via ix_owner.
	conjunct := filter.PropertyConst(model.ParsePropertyPath("owner.id"), filter.EQ, 1)
	result, err := a.Analyze(conjunct, ordering.Of("Widget"), scoring.Hints{})
	require.NoError(t, err)
	assert.True(t, result.Foreign)
	assert.Equal(t, "owner", result.JoinProperty)

	node, err := result.CreateExecutor()
	require.NoError(t, err)
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
