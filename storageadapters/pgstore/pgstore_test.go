package pgstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackc/pgx/v5"

	"github.com/corestash/queryplan/exec"
	"github.com/corestash/queryplan/model"
)

type fakeMapper struct{}

func (fakeMapper) Columns() []string                    { return []string{"age", "name"} }
func (fakeMapper) ScanRow(pgx.Rows) (int, error)         { return 0, nil }
func (fakeMapper) ColumnValue(rec int, column string) any { return nil }

func testIndex() model.IndexDescriptor {
	return model.IndexDescriptor{
		Name: "ix_age_name",
		Properties: []model.OrderingEntry{
			{Property: model.ParsePropertyPath("age"), Direction: model.Ascending},
			{Property: model.ParsePropertyPath("name"), Direction: model.Descending},
		},
	}
}

func TestColumnForReadsLeafOfIndexPosition(t *testing.T) {
	idx := testIndex()
	assert.Equal(t, "age", columnFor(idx, 0))
	assert.Equal(t, "name", columnFor(idx, 1))
}

func TestBoundaryOpMapsInclusiveExclusiveByPosition(t *testing.T) {
	op, ok := boundaryOp(exec.BoundaryInclusive, true)
	require.True(t, ok)
	assert.Equal(t, ">=", op)

	op, ok = boundaryOp(exec.BoundaryInclusive, false)
	require.True(t, ok)
	assert.Equal(t, "<=", op)

	op, ok = boundaryOp(exec.BoundaryExclusive, true)
	require.True(t, ok)
	assert.Equal(t, ">", op)

	op, ok = boundaryOp(exec.BoundaryExclusive, false)
	require.True(t, ok)
	assert.Equal(t, "<", op)

	_, ok = boundaryOp(exec.BoundaryOpen, true)
	assert.False(t, ok)
}

func TestOrderByRendersEachColumnDirectionReversedOnRequest(t *testing.T) {
	idx := testIndex()

	clause := orderBy(idx, false)
	assert.Equal(t, "ORDER BY age ASC, name DESC", clause)

	reversed := orderBy(idx, true)
	assert.Equal(t, "ORDER BY age DESC, name ASC", reversed)
}

func TestOrderByEmptyForIndexWithNoProperties(t *testing.T) {
	assert.Equal(t, "", orderBy(model.IndexDescriptor{Name: "empty"}, false))
}

func TestRenderNativeBuildsWhereAndOrderByFromBound(t *testing.T) {
	s := &Store[int]{table: "widgets", mapper: fakeMapper{}}
	idx := testIndex()

	bound := exec.IndexBound{
		IdentityValues: []any{7},
		StartBoundary:  exec.BoundaryInclusive,
		StartValue:     "m",
	}
	got := s.RenderNative(idx, bound, false)
	assert.Equal(t,
		`SELECT age, name FROM widgets WHERE age = 7 AND name >= m ORDER BY age ASC, name DESC`,
		got,
	)
}

func TestRenderNativeOmitsWhereWithNoBoundValues(t *testing.T) {
	s := &Store[int]{table: "widgets", mapper: fakeMapper{}}
	got := s.RenderNative(model.IndexDescriptor{}, exec.IndexBound{}, false)
	assert.Equal(t, `SELECT age, name FROM widgets`, got)
}

func TestMemSortBufferSortsAndDrains(t *testing.T) {
	buf := &memSortBuffer[int]{}
	buf.Add(3)
	buf.Add(1)
	buf.Add(2)

	cur := buf.Sorted(func(a, b int) bool { return a < b })
	defer cur.Close()

	var got []int
	for {
		v, ok, err := cur.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2, 3}, got)
}
