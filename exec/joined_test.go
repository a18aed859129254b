package exec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corestash/queryplan/exec"
	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/internal/testsupport"
	"github.com/corestash/queryplan/model"
	"github.com/corestash/queryplan/ordering"
)

// anyNode type-erases a Node[testsupport.Widget] to Node[any], the same
// boundary analyzer/erase.go crosses for a foreign-type analyzer —
// exercised here directly against the executor rather than through the
// full join planner.
type anyNode struct {
	inner exec.Node[testsupport.Widget]
}

func (a anyNode) Fetch(values filter.FilterValues) (exec.Cursor[any], error) {
	cur, err := a.inner.Fetch(values)
	if err != nil {
		return nil, err
	}
	return anyCursor{inner: cur}, nil
}
func (a anyNode) Count(values filter.FilterValues) (int64, error) { return a.inner.Count(values) }
func (a anyNode) Filter() filter.Filter                           { return a.inner.Filter() }
func (a anyNode) Ordering() *ordering.List                        { return a.inner.Ordering() }
func (a anyNode) PrintPlan(indent int) string                     { return a.inner.PrintPlan(indent) }

type anyCursor struct {
	inner exec.Cursor[testsupport.Widget]
}

func (c anyCursor) Next() (any, bool, error) {
	rec, ok, err := c.inner.Next()
	return rec, ok, err
}
func (c anyCursor) Close() error { return c.inner.Close() }

func TestJoinedNestedLoopBindsOuterRowIntoInner(t *testing.T) {
	owners := testsupport.NewStore(testsupport.NewTypeInfo("Owner"), []testsupport.Widget{
		{ID: 10, Name: "OwnerA"},
		{ID: 20, Name: "OwnerB"},
	})
	targets := testsupport.NewStore(testsupport.NewTypeInfo("Widget"), []testsupport.Widget{
		{ID: 1, Name: "Alice", OwnerID: 10},
		{ID: 2, Name: "Bob", OwnerID: 20},
		{ID: 3, Name: "Carol", OwnerID: 10},
	})

	outer := anyNode{inner: exec.NewFullScan[testsupport.Widget](owners)}

	innerFactory := func(outerRow any, base filter.FilterValues) (exec.Node[testsupport.Widget], filter.FilterValues, error) {
		ownerRow := outerRow.(testsupport.Widget)
		scan := exec.NewFullScan[testsupport.Widget](targets)
		remainder := filter.PropertyConst(model.ParsePropertyPath("ownerId"), filter.EQ, ownerRow.ID)
		return exec.NewFiltered[testsupport.Widget](scan, remainder, testsupport.RecordAccess{}), base, nil
	}

	join := exec.NewJoined[testsupport.Widget](outer, innerFactory, "owner", ordering.Of("Widget"), false, false, nil, "Widget")

	cur, err := join.Fetch(filter.NewFilterValues())
	require.NoError(t, err)
	recs, err := testsupport.Drain(cur)
	require.NoError(t, err)

	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.Name
	}
	assert.ElementsMatch(t, []string{"Alice", "Carol", "Bob"}, names)
}
