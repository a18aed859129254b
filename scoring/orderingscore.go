package scoring

import (
	"math"

	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/model"
	"github.com/corestash/queryplan/ordering"
)

// Ordering is the result of scoring one index against an optional
// conjunct and an optional requested ordering (spec §4.3).
type Ordering struct {
	Handled            []model.OrderingEntry
	Remainder          []model.OrderingEntry
	Free               []model.OrderingEntry
	Unused             []model.OrderingEntry
	ShouldReverseOrder bool
	IndexPropertyCount int
	Clustered          bool
}

// HandledRatio is handled/(handled+remainder), NaN when both are zero
// (spec: "NaN treated as no ordering requested").
func (s Ordering) HandledRatio() float64 {
	total := len(s.Handled) + len(s.Remainder)
	if total == 0 {
		return math.NaN()
	}
	return float64(len(s.Handled)) / float64(total)
}

// EvaluateOrdering scores index against an optional conjunct (nil/open
// treated as no predicate) and an optional requested ordering list (nil
// treated as "no ordering requested").
func EvaluateOrdering(index model.IndexDescriptor, conjunct *filter.Filter, requested *ordering.List) Ordering {
	identitySet := map[string]bool{}
	if conjunct != nil {
		conjunct.Walk(func(f filter.Filter) {
			if f.Operator() == filter.EQ {
				identitySet[f.Path().String()] = true
			}
		})
	}

	if index.Unique && allIndexPropsInSet(index, identitySet) {
		return Ordering{IndexPropertyCount: index.Len(), Clustered: index.Clustered}
	}

	var requestedEntries []model.OrderingEntry
	if requested != nil {
		requestedEntries = requested.Entries()
	}

	seen := map[string]bool{}
	var handled, remainder []model.OrderingEntry
	reverse := false
	reverseSet := false
	indexPos := 0
	gapClosed := false

	for _, e := range requestedEntries {
		key := e.Property.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		if identitySet[key] {
			continue
		}
		if gapClosed {
			remainder = append(remainder, e)
			continue
		}

		// Advance through index positions, bridging identity-matched
		// positions (the "identity gap bridging" step).
		matched := false
		for indexPos < index.Len() {
			ip := index.Properties[indexPos]
			if identitySet[ip.Property.String()] {
				indexPos++
				continue
			}
			if !ip.Property.Equal(e.Property) {
				break
			}
			dir := e.Direction
			if dir == model.Unspecified {
				dir = ip.Direction
			} else if dir != ip.Direction {
				want := ip.Direction.Reverse()
				if !reverseSet {
					reverseSet = true
					reverse = true
					handled = reverseAll(handled)
					dir = want
				} else if reverse {
					dir = want
				} else {
					break
				}
			} else if reverseSet && reverse {
				break
			}
			handled = append(handled, model.OrderingEntry{Property: e.Property, Direction: dir})
			indexPos++
			matched = true
			break
		}
		if !matched {
			gapClosed = true
			remainder = append(remainder, e)
		}
	}

	var free, unused []model.OrderingEntry
	for i := indexPos; i < index.Len(); i++ {
		ip := index.Properties[i]
		if identitySet[ip.Property.String()] {
			unused = append(unused, ip)
			continue
		}
		free = append(free, ip)
	}

	return Ordering{
		Handled:            handled,
		Remainder:          remainder,
		Free:               free,
		Unused:             unused,
		ShouldReverseOrder: reverse,
		IndexPropertyCount: index.Len(),
		Clustered:          index.Clustered,
	}
}

func allIndexPropsInSet(index model.IndexDescriptor, set map[string]bool) bool {
	for _, e := range index.Properties {
		if !set[e.Property.String()] {
			return false
		}
	}
	return true
}

func reverseAll(entries []model.OrderingEntry) []model.OrderingEntry {
	out := make([]model.OrderingEntry, len(entries))
	for i, e := range entries {
		out[i] = model.OrderingEntry{Property: e.Property, Direction: e.Direction.Reverse()}
	}
	return out
}

// CompareOrdering is the "full comparator" from spec §4.3: handled
// ratio (NaN treated as lowest/no-ordering-requested, i.e. neutral);
// then clustered; then fewer index properties; then non-reversed
// preferred.
func CompareOrdering(a, b Ordering) int {
	ar, br := a.HandledRatio(), b.HandledRatio()
	aNaN, bNaN := math.IsNaN(ar), math.IsNaN(br)
	if !aNaN || !bNaN {
		if aNaN != bNaN {
			// A NaN ratio means no ordering was requested of this index;
			// that's neutral, not a loss, so only compare when both sides
			// actually computed a ratio.
		} else if ar != br {
			return cmpFloat(ar, br)
		}
	}
	if a.Clustered != b.Clustered {
		return cmpBool(a.Clustered, b.Clustered)
	}
	if a.IndexPropertyCount != b.IndexPropertyCount {
		return cmpInt(b.IndexPropertyCount, a.IndexPropertyCount)
	}
	if a.ShouldReverseOrder != b.ShouldReverseOrder {
		return cmpBool(!a.ShouldReverseOrder, !b.ShouldReverseOrder)
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
