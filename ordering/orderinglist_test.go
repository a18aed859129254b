package ordering

import (
	"testing"

	"github.com/corestash/queryplan/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(prop string, dir model.Direction) model.OrderingEntry {
	return model.OrderingEntry{Property: model.ParsePropertyPath(prop), Direction: dir}
}

func TestOfInternsByIdentity(t *testing.T) {
	a := Of("Order", entry("age", model.Ascending), entry("name", model.Descending))
	b := Of("Order", entry("age", model.Ascending), entry("name", model.Descending))
	assert.Same(t, a, b)
}

func TestOfDifferentSequencesAreDistinct(t *testing.T) {
	a := Of("Order", entry("age", model.Ascending))
	b := Of("Order", entry("age", model.Descending))
	assert.NotSame(t, a, b)
}

func TestOfDeduplicatesRepeatedProperty(t *testing.T) {
	l := Of("Order", entry("age", model.Ascending), entry("age", model.Descending))
	require.Equal(t, 1, l.Len())
	assert.Equal(t, model.Ascending, l.At(0).Direction)
}

func TestConcatAppendsAndDedups(t *testing.T) {
	base := Of("Order", entry("age", model.Ascending))
	extended := base.Concat(entry("name", model.Ascending), entry("age", model.Descending))

	require.Equal(t, 2, extended.Len())
	assert.Equal(t, "age", extended.At(0).Property.String())
	assert.Equal(t, "name", extended.At(1).Property.String())
}

func TestPrefixWalksParents(t *testing.T) {
	full := Of("Order", entry("a", model.Ascending), entry("b", model.Ascending), entry("c", model.Ascending))
	p := full.Prefix(2)
	require.Equal(t, 2, p.Len())
	assert.Equal(t, "a", p.At(0).Property.String())
	assert.Equal(t, "b", p.At(1).Property.String())
}

func TestPrefixFullAndEmpty(t *testing.T) {
	full := Of("Order", entry("a", model.Ascending))
	assert.Same(t, full, full.Prefix(1))
	assert.Equal(t, 0, full.Prefix(0).Len())
}

func TestIsTotalDetectsPrimaryKeyCoverage(t *testing.T) {
	ti := &model.StaticTypeInfo{
		TypeName: "Order",
		Primary:  model.KeyDescriptor{Name: "pk", Primary: true, Properties: []model.PropertyPath{model.ParsePropertyPath("id")}},
	}
	notTotal := Of("Order", entry("age", model.Ascending))
	assert.False(t, notTotal.IsTotal(ti))

	total := Of("Order", entry("age", model.Ascending), entry("id", model.Ascending))
	assert.True(t, total.IsTotal(ti))
}

func TestWithTotalOrderingAppendsKeyWhenMissing(t *testing.T) {
	ti := &model.StaticTypeInfo{
		TypeName: "Order",
		Primary:  model.KeyDescriptor{Name: "pk", Primary: true, Properties: []model.PropertyPath{model.ParsePropertyPath("id")}},
	}
	l := Of("Order", entry("age", model.Ascending))
	total := l.WithTotalOrdering(ti)

	assert.True(t, total.IsTotal(ti))
	assert.Equal(t, 2, total.Len())
}

func TestWithTotalOrderingPrefersAlternateKeyAlreadyPartlyRequested(t *testing.T) {
	ti := &model.StaticTypeInfo{
		TypeName: "Order",
		Primary:  model.KeyDescriptor{Name: "pk", Primary: true, Properties: []model.PropertyPath{model.ParsePropertyPath("id")}},
		Alternates: []model.KeyDescriptor{
			{Name: "ak_region", Properties: []model.PropertyPath{
				model.ParsePropertyPath("region"), model.ParsePropertyPath("code"),
			}},
		},
	}
	// "region" is already requested, "id" is not: ak_region covers one of
	// its two properties against the requested set, the primary key none
	// of its one, so ak_region is the better match even though neither is
	// fully contained yet.
	l := Of("Order", entry("region", model.Ascending))
	total := l.WithTotalOrdering(ti)

	assert.True(t, total.IsTotal(ti))
	require.Equal(t, 2, total.Len())
	assert.Equal(t, "code", total.At(1).Property.String())
}

func TestWithTotalOrderingNoOpWhenAlreadyTotal(t *testing.T) {
	ti := &model.StaticTypeInfo{
		TypeName: "Order",
		Primary:  model.KeyDescriptor{Name: "pk", Primary: true, Properties: []model.PropertyPath{model.ParsePropertyPath("id")}},
	}
	l := Of("Order", entry("id", model.Ascending))
	assert.Same(t, l, l.WithTotalOrdering(ti))
}
