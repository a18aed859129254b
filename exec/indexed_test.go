package exec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corestash/queryplan/exec"
	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/internal/testsupport"
	"github.com/corestash/queryplan/model"
)

// renderingStore wraps a testsupport.Store with exec.NativeRenderer, so
// tests can exercise the "support implements it" branch of PrintNative
// without standing up a real pgstore/s3store backend.
type renderingStore struct {
	*testsupport.Store
	rendered string
}

func (r renderingStore) RenderNative(model.IndexDescriptor, exec.IndexBound, bool) string {
	return r.rendered
}

func TestIndexedPrintNativeRendersWhenSupportIsARenderer(t *testing.T) {
	store := testsupport.NewStore(testsupport.NewTypeInfo("Widget"), widgets())
	support := renderingStore{Store: store, rendered: "SELECT * FROM widgets WHERE age = 30"}

	idx := support.AllIndexes()[2] // ix_age_name
	identity := []filter.Filter{filter.PropertyConst(model.ParsePropertyPath("age"), filter.EQ, 30)}
	node := exec.NewIndexed[testsupport.Widget](idx, identity, nil, nil, false, nil, false, nil, support)

	assert.Equal(t, "SELECT * FROM widgets WHERE age = 30", node.PrintNative())
}

func TestIndexedPrintNativeEmptyWhenSupportIsNotARenderer(t *testing.T) {
	store := testsupport.NewStore(testsupport.NewTypeInfo("Widget"), widgets())
	idx := store.AllIndexes()[2]
	identity := []filter.Filter{filter.PropertyConst(model.ParsePropertyPath("age"), filter.EQ, 30)}
	node := exec.NewIndexed[testsupport.Widget](idx, identity, nil, nil, false, nil, false, nil, store)

	assert.Equal(t, "", node.PrintNative())
}

func TestIndexedPrintNativeReturnsEmptyOnUnresolvableBound(t *testing.T) {
	store := testsupport.NewStore(testsupport.NewTypeInfo("Widget"), widgets())
	support := renderingStore{Store: store, rendered: "unreachable"}

	idx := support.AllIndexes()[2]
	unresolved := filter.PropertyParam(model.ParsePropertyPath("age"), filter.EQ, "missing")
	node := exec.NewIndexed[testsupport.Widget](idx, []filter.Filter{unresolved}, nil, nil, false, nil, false, nil, support)

	assert.Equal(t, "", node.PrintNative())
}

func TestIndexedFilterExcludesCoveringAtoms(t *testing.T) {
	store := testsupport.NewStore(testsupport.NewTypeInfo("Widget"), widgets())
	idx := store.AllIndexes()[2]
	identity := []filter.Filter{filter.PropertyConst(model.ParsePropertyPath("age"), filter.EQ, 30)}
	covering := []filter.Filter{filter.PropertyConst(model.ParsePropertyPath("name"), filter.EQ, "Carol")}
	node := exec.NewIndexed[testsupport.Widget](idx, identity, nil, nil, false, nil, false, covering, store)

	got := node.Filter()
	require.NotEmpty(t, got.String())
	assert.NotContains(t, got.String(), "Carol")
}
