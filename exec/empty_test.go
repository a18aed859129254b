package exec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corestash/queryplan/exec"
	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/internal/testsupport"
)

func TestEmptyFetchYieldsNothing(t *testing.T) {
	store := testsupport.NewStore(testsupport.NewTypeInfo("Widget"), []testsupport.Widget{{ID: 1}})
	node := exec.NewEmpty[testsupport.Widget](store)

	cur, err := node.Fetch(filter.NewFilterValues())
	require.NoError(t, err)
	recs, err := testsupport.Drain(cur)
	require.NoError(t, err)
	assert.Empty(t, recs)

	count, err := node.Count(filter.NewFilterValues())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
	assert.True(t, node.Filter().IsClosed())
}
