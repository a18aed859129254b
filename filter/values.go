package filter

// FilterValues carries the runtime bind values supplied by a caller for
// a filter's placeholders. It is immutable; With returns a new instance.
type FilterValues struct {
	values map[string]any
}

// NewFilterValues builds an empty binding vector.
func NewFilterValues() FilterValues {
	return FilterValues{values: make(map[string]any)}
}

// With returns a copy of fv with name bound to v.
func (fv FilterValues) With(name string, v any) FilterValues {
	next := make(map[string]any, len(fv.values)+1)
	for k, val := range fv.values {
		next[k] = val
	}
	next[name] = v
	return FilterValues{values: next}
}

// Get returns the bound value for name, if any.
func (fv FilterValues) Get(name string) (any, bool) {
	v, ok := fv.values[name]
	return v, ok
}

// InitialFilterValues returns the FilterValues implied by the filter's
// own constants — a starting point the caller extends with bind values
// for any remaining placeholders before calling Bind.
func (f Filter) InitialFilterValues() FilterValues {
	fv := NewFilterValues()
	f.collectConstants(&fv)
	return fv
}

func (f Filter) collectConstants(fv *FilterValues) {
	switch f.kind {
	case KindProperty:
		if f.placeholder != "" || !f.isBound {
			return
		}
		*fv = fv.With(f.path.String(), f.constant)
	case KindAnd, KindOr:
		for _, c := range f.children {
			c.collectConstants(fv)
		}
	}
}

// Bind resolves every placeholder atom in the tree against values,
// producing a fully concrete filter. It fails (via the returned error)
// if any placeholder has no matching binding — a usage error per spec
// §7: "unbound filter passed to the planner".
func (f Filter) Bind(values FilterValues) (Filter, error) {
	switch f.kind {
	case KindOpen, KindClosed:
		return f, nil
	case KindProperty:
		if f.placeholder == "" {
			return f, nil
		}
		v, ok := values.Get(f.placeholder)
		if !ok {
			return Filter{}, &UnboundParameterError{Placeholder: f.placeholder}
		}
		nf := f
		nf.value = v
		nf.isBound = true
		return nf, nil
	case KindAnd, KindOr:
		children := make([]Filter, len(f.children))
		for i, c := range f.children {
			bc, err := c.Bind(values)
			if err != nil {
				return Filter{}, err
			}
			children[i] = bc
		}
		nf := f
		nf.children = children
		return nf, nil
	default:
		return Filter{}, &UnboundParameterError{Placeholder: "<invalid filter>"}
	}
}

// MustBind is Bind but panics on error; useful in tests and examples
// where the binding is known complete.
func (f Filter) MustBind(values FilterValues) Filter {
	bf, err := f.Bind(values)
	if err != nil {
		panic(err)
	}
	return bf
}

// UnboundParameterError reports a placeholder with no supplied value.
type UnboundParameterError struct {
	Placeholder string
}

func (e *UnboundParameterError) Error() string {
	return "filter: unbound parameter " + e.Placeholder
}
