package scoring

import (
	"testing"

	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prop(s string) model.PropertyPath { return model.ParsePropertyPath(s) }

func idx(unique, clustered bool, props ...model.OrderingEntry) model.IndexDescriptor {
	return model.IndexDescriptor{Name: "idx", Properties: props, Unique: unique, Clustered: clustered}
}

func oe(p string, d model.Direction) model.OrderingEntry {
	return model.OrderingEntry{Property: prop(p), Direction: d}
}

func TestEvaluateFilteringIdentityMatch(t *testing.T) {
	index := idx(false, false, oe("age", model.Ascending), oe("name", model.Ascending))
	conjunct := filter.PropertyConst(prop("age"), filter.EQ, 30)

	s := EvaluateFiltering(index, conjunct)
	assert.Equal(t, 1, s.IdentityCount)
	assert.Equal(t, 0, s.RemainderCount)
	assert.True(t, s.HasAnyMatch())
}

func TestEvaluateFilteringRangeMatch(t *testing.T) {
	index := idx(false, false, oe("age", model.Ascending), oe("name", model.Ascending))
	conjunct := filter.And(
		filter.PropertyConst(prop("age"), filter.GT, 18),
		filter.PropertyConst(prop("age"), filter.LT, 65),
	)
	s := EvaluateFiltering(index, conjunct)
	assert.True(t, s.HasRangeStart)
	assert.True(t, s.HasRangeEnd)
	assert.Equal(t, 0, s.IdentityCount)
}

func TestEvaluateFilteringKeyMatch(t *testing.T) {
	index := idx(true, true, oe("id", model.Ascending))
	conjunct := filter.PropertyConst(prop("id"), filter.EQ, 1)
	s := EvaluateFiltering(index, conjunct)
	assert.True(t, s.KeyMatch)
}

func TestEvaluateFilteringRemainderAndCovering(t *testing.T) {
	index := idx(false, false, oe("age", model.Ascending), oe("name", model.Ascending))
	conjunct := filter.And(
		filter.PropertyConst(prop("age"), filter.EQ, 30),
		filter.PropertyConst(prop("name"), filter.NE, "Bob"),
		filter.PropertyConst(prop("other"), filter.EQ, "x"),
	)
	s := EvaluateFiltering(index, conjunct)
	require.Equal(t, 1, s.IdentityCount)
	// "name" is an index property so its NE remainder atom is covering;
	// "other" is not an index property so it's a plain remainder atom.
	assert.Equal(t, 1, s.CoveringCount)
	assert.Equal(t, 1, s.RemainderCount)
}

func TestEvaluateFilteringDescendingRangeReverses(t *testing.T) {
	index := idx(false, false, oe("age", model.Descending))
	conjunct := filter.PropertyConst(prop("age"), filter.GT, 18)
	s := EvaluateFiltering(index, conjunct)
	assert.True(t, s.ShouldReverseRange)
}

func TestCompareRangePrefersMoreIdentity(t *testing.T) {
	index := idx(false, false, oe("a", model.Ascending), oe("b", model.Ascending))
	twoEq := filter.And(filter.PropertyConst(prop("a"), filter.EQ, 1), filter.PropertyConst(prop("b"), filter.EQ, 2))
	oneEq := filter.PropertyConst(prop("a"), filter.EQ, 1)

	sTwo := EvaluateFiltering(index, twoEq)
	sOne := EvaluateFiltering(index, oneEq)

	assert.Equal(t, 1, CompareRange(sTwo, sOne))
	assert.Equal(t, -1, CompareRange(sOne, sTwo))
}

func TestCompareFilteringPrefersFewerRemainder(t *testing.T) {
	index := idx(false, false, oe("a", model.Ascending))
	withRemainder := filter.And(
		filter.PropertyConst(prop("a"), filter.EQ, 1),
		filter.PropertyConst(prop("z"), filter.EQ, 2),
	)
	without := filter.PropertyConst(prop("a"), filter.EQ, 1)

	sWith := EvaluateFiltering(index, withRemainder)
	sWithout := EvaluateFiltering(index, without)

	assert.Equal(t, 1, CompareFiltering(sWithout, sWith, false, false))
}
