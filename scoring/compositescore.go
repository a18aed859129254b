package scoring

// Hints is the closed enumeration of query hints a caller may pass to
// bias planning (spec §6).
type Hints struct {
	ConsumeSlice bool
}

// Composite pairs a Filtering and an Ordering score for one candidate
// index, plus the clustered flag the comparators need (duplicated here
// off the index descriptor so the comparators don't need the index
// itself).
type Composite struct {
	Filtering Filtering
	Ordering  Ordering
	Clustered bool
}

// CompareFull is the "Full" composite comparator (spec §4.4), used to
// rank candidate indexes within a single record type.
func CompareFull(a, b Composite, hints Hints) int {
	rangeVerdict := CompareRange(a.Filtering, b.Filtering)
	orderVerdict := cmpInt(len(a.Ordering.Handled), len(b.Ordering.Handled))

	if !hints.ConsumeSlice {
		if rangeVerdict != 0 {
			if sameSign(rangeVerdict, orderVerdict) {
				return rangeVerdict
			}
			if orderVerdict != 0 {
				return comparePreference(a.Filtering, b.Filtering)
			}
		}
		if a.Filtering.RemainderCount == b.Filtering.RemainderCount && rangeVerdict == 0 {
			if c := orderingConsideredVerdict(a, b, orderVerdict, hints); c != 0 {
				return c
			}
		} else if rangeVerdict != 0 {
			return rangeVerdict
		}
	} else {
		if c := orderingConsideredVerdict(a, b, orderVerdict, hints); c != 0 {
			return c
		}
		if rangeVerdict != 0 {
			return rangeVerdict
		}
	}

	if c := cmpBool(a.Filtering.HasAnyMatch(), b.Filtering.HasAnyMatch()); c != 0 {
		return c
	}
	if c := CompareFiltering(a.Filtering, b.Filtering, a.Clustered, b.Clustered); c != 0 {
		return c
	}
	if c := CompareOrdering(a.Ordering, b.Ordering); c != 0 {
		return c
	}
	return cmpInt(b.Filtering.IndexPropertyCount, a.Filtering.IndexPropertyCount)
}

// CompareLocalVsForeign is the comparator used to break a tie between a
// local candidate and one reached through a join: same sequence as
// CompareFull but stops before the final "fewer index properties"
// tie-break, which would otherwise overly favor the foreign path.
func CompareLocalVsForeign(local, foreign Composite, hints Hints) int {
	rangeVerdict := CompareRange(local.Filtering, foreign.Filtering)
	if rangeVerdict != 0 {
		return rangeVerdict
	}
	if c := cmpBool(local.Filtering.HasAnyMatch(), foreign.Filtering.HasAnyMatch()); c != 0 {
		return c
	}
	if c := CompareFiltering(local.Filtering, foreign.Filtering, local.Clustered, foreign.Clustered); c != 0 {
		return c
	}
	return CompareOrdering(local.Ordering, foreign.Ordering)
}

func orderingConsideredVerdict(a, b Composite, orderVerdict int, hints Hints) int {
	if !shouldConsiderOrdering(a, hints) && !shouldConsiderOrdering(b, hints) {
		return 0
	}
	return orderVerdict
}

// shouldConsiderOrdering implements: "consider ordering only if at least
// one of: hints request slice mode, clustered, any identity matches, or
// a range match." Under CONSUME_SLICE, ordering is always considered
// regardless of the candidate's own shape, so a requested sort can still
// win a tie-break between two otherwise-unremarkable candidates.
func shouldConsiderOrdering(c Composite, hints Hints) bool {
	if hints.ConsumeSlice {
		return true
	}
	return c.Clustered || c.Filtering.IdentityCount > 0 || c.Filtering.HasRangeStart || c.Filtering.HasRangeEnd
}

func comparePreference(a, b Filtering) int {
	if a.PreferenceScore == nil || b.PreferenceScore == nil {
		return 0
	}
	return a.PreferenceScore.Cmp(b.PreferenceScore)
}

func sameSign(a, b int) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}
