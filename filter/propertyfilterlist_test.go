package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyFilterListOrdersEqualityRangeThenInequality(t *testing.T) {
	rangeAtom := PropertyConst(path("age"), GT, 18)
	eqAtom := PropertyConst(path("status"), EQ, "active")
	neAtom := PropertyConst(path("name"), NE, "banned")

	conj := And(rangeAtom, eqAtom, neAtom)
	list := conj.ToPropertyFilterList()

	require.Equal(t, 3, list.Len())
	assert.Equal(t, EQ, list.At(0).Operator())
	assert.Equal(t, GT, list.At(1).Operator())
	assert.Equal(t, NE, list.At(2).Operator())
}

func TestPropertyFilterListPreservesSourceOrderWithinRank(t *testing.T) {
	eq1 := PropertyConst(path("a"), EQ, 1)
	eq2 := PropertyConst(path("b"), EQ, 2)
	conj := And(eq2, eq1)

	list := conj.ToPropertyFilterList()
	assert.Equal(t, "b", list.At(0).Path().String())
	assert.Equal(t, "a", list.At(1).Path().String())
}

func TestPropertyFilterListIsMemoizedByStructure(t *testing.T) {
	conjA := And(PropertyConst(path("x"), EQ, 1), PropertyConst(path("y"), GT, 2))
	conjB := And(PropertyConst(path("x"), EQ, 1), PropertyConst(path("y"), GT, 2))

	listA := conjA.ToPropertyFilterList()
	listB := conjB.ToPropertyFilterList()

	assert.Equal(t, listA.Len(), listB.Len())
	for i := range listA.atoms {
		assert.Equal(t, listA.At(i).String(), listB.At(i).String())
	}
}

func TestPropertyFilterListSingleAtom(t *testing.T) {
	conj := PropertyConst(path("solo"), EQ, 1)
	list := conj.ToPropertyFilterList()
	require.Equal(t, 1, list.Len())
}
