package exec

import (
	"fmt"

	"github.com/corestash/queryplan/filter"
)

// resolveAtomValue returns the concrete value for a property-comparison
// atom, whether it's already a bound constant or a placeholder the
// caller supplies via values.
func resolveAtomValue(atom filter.Filter, values filter.FilterValues) (any, error) {
	if v, ok := atom.Value(); ok {
		return v, nil
	}
	if ph := atom.Placeholder(); ph != "" {
		if v, ok := values.Get(ph); ok {
			return v, nil
		}
		return nil, fmt.Errorf("exec: unbound parameter %q", ph)
	}
	return nil, fmt.Errorf("exec: atom %s has neither a bound value nor a placeholder", atom)
}

func resolveAtomValues(atoms []filter.Filter, values filter.FilterValues) ([]any, error) {
	out := make([]any, len(atoms))
	for i, a := range atoms {
		v, err := resolveAtomValue(a, values)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
