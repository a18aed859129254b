package s3store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corestash/queryplan/exec"
	"github.com/corestash/queryplan/model"
)

func TestRenderNativeIgnoresIndexAndReportsBucketPrefix(t *testing.T) {
	s := &Store[int]{bucket: "widgets-archive", prefix: "widgets/"}
	got := s.RenderNative(model.IndexDescriptor{Name: "anything"}, exec.IndexBound{IdentityValues: []any{1}}, true)
	assert.Equal(t, "s3://widgets-archive/widgets/", got)
}

func TestInsertionSortOrdersAscending(t *testing.T) {
	items := []int{5, 3, 4, 1, 2}
	insertionSort(items, func(a, b int) bool { return a < b })
	assert.Equal(t, []int{1, 2, 3, 4, 5}, items)
}

func TestInsertionSortStableOnEqualKeys(t *testing.T) {
	type pair struct {
		key, seq int
	}
	items := []pair{{1, 0}, {1, 1}, {0, 2}, {1, 3}}
	insertionSort(items, func(a, b pair) bool { return a.key < b.key })

	assert.Equal(t, 0, items[0].key)
	// the three key=1 entries must keep their original relative order
	var seqs []int
	for _, p := range items[1:] {
		seqs = append(seqs, p.seq)
	}
	assert.Equal(t, []int{0, 1, 3}, seqs)
}

func TestInsertionSortEmptyAndSingleton(t *testing.T) {
	empty := []int{}
	insertionSort(empty, func(a, b int) bool { return a < b })
	assert.Empty(t, empty)

	single := []int{7}
	insertionSort(single, func(a, b int) bool { return a < b })
	assert.Equal(t, []int{7}, single)
}
