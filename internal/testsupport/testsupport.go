// Package testsupport is a small in-memory record type and
// StorageAccess/RecordAccess pair shared by this module's package tests,
// grounded the same way the teacher's own tests build in-memory
// storage.GraphStorage fixtures rather than mocking.
package testsupport

import (
	"fmt"
	"sort"

	"github.com/corestash/queryplan/exec"
	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/model"
)

// Widget is the fixture record type: an id, a name, an age, and an
// ownerId. NewTypeInfo declares no reference property; tests that need
// one (e.g. "owner" via ownerId) add it with WithReference.
type Widget struct {
	ID      int
	Name    string
	Age     int
	OwnerID int
}

// TypeInfo is the model.TypeInfo for Widget: primary key "id", secondary
// indexes on name and on (age, name), and whatever references
// WithReference has added (none by default).
type TypeInfo struct {
	name    string
	indexes []model.IndexDescriptor
	refs    map[string]model.ReferenceProperty
}

// NewTypeInfo builds a TypeInfo named typeName with the standard Widget
// index set (primary key id, secondary index on name, composite index on
// age+name).
func NewTypeInfo(typeName string) *TypeInfo {
	return &TypeInfo{
		name: typeName,
		indexes: []model.IndexDescriptor{
			{Name: "pk_id", Properties: []model.OrderingEntry{{Property: p("id"), Direction: model.Ascending}}, Unique: true, Clustered: true},
			{Name: "ix_name", Properties: []model.OrderingEntry{{Property: p("name"), Direction: model.Ascending}}},
			{Name: "ix_age_name", Properties: []model.OrderingEntry{
				{Property: p("age"), Direction: model.Ascending},
				{Property: p("name"), Direction: model.Ascending},
			}},
		},
	}
}

// WithIndex appends an extra secondary index beyond the standard
// pk_id/ix_name/ix_age_name set, for tests that need a type whose join
// or foreign-key property is actually indexed.
func (t *TypeInfo) WithIndex(idx model.IndexDescriptor) *TypeInfo {
	t.indexes = append(t.indexes, idx)
	return t
}

// WithReference adds a reference property (e.g. "owner" -> another
// Widget's "id" via "ownerId").
func (t *TypeInfo) WithReference(name, targetType string, internal, external string) *TypeInfo {
	if t.refs == nil {
		t.refs = make(map[string]model.ReferenceProperty)
	}
	t.refs[name] = model.ReferenceProperty{
		Name:       name,
		TargetType: targetType,
		Equalities: []model.RefEquality{{Internal: p(internal), External: p(external)}},
	}
	return t
}

func p(s string) model.PropertyPath { return model.ParsePropertyPath(s) }

func (t *TypeInfo) Name() string { return t.name }
func (t *TypeInfo) PrimaryKey() model.KeyDescriptor {
	return model.KeyDescriptor{Name: "pk_id", Properties: []model.PropertyPath{p("id")}, Primary: true}
}
func (t *TypeInfo) AlternateKeys() []model.KeyDescriptor       { return nil }
func (t *TypeInfo) Indexes() []model.IndexDescriptor           { return t.indexes }
func (t *TypeInfo) References() map[string]model.ReferenceProperty { return t.refs }
func (t *TypeInfo) HasProperty(path model.PropertyPath) bool {
	switch path.String() {
	case "id", "name", "age", "ownerId":
		return true
	default:
		return false
	}
}

// RecordAccess is the exec.RecordAccess[Widget] fixture.
type RecordAccess struct{}

func (RecordAccess) Matches(rec Widget, f filter.Filter, values filter.FilterValues) (bool, error) {
	bound, err := f.Bind(values)
	if err != nil {
		return false, err
	}
	return evalFilter(rec, bound), nil
}

func evalFilter(rec Widget, f filter.Filter) bool {
	switch f.Kind() {
	case filter.KindOpen:
		return true
	case filter.KindClosed:
		return false
	case filter.KindAnd:
		for _, c := range f.Children() {
			if !evalFilter(rec, c) {
				return false
			}
		}
		return true
	case filter.KindOr:
		for _, c := range f.Children() {
			if evalFilter(rec, c) {
				return true
			}
		}
		return false
	case filter.KindProperty:
		v, ok := f.Value()
		if !ok {
			return false
		}
		return evalOp(fieldValue(rec, f.Path()), f.Operator(), v)
	default:
		return false
	}
}

func evalOp(have any, op filter.Op, want any) bool {
	if op == filter.EXISTS {
		return true
	}
	hi, hok := have.(int)
	wi, wok := want.(int)
	if hok && wok {
		switch op {
		case filter.EQ:
			return hi == wi
		case filter.NE:
			return hi != wi
		case filter.LT:
			return hi < wi
		case filter.LE:
			return hi <= wi
		case filter.GT:
			return hi > wi
		case filter.GE:
			return hi >= wi
		}
	}
	hs, hsok := have.(string)
	ws, wsok := want.(string)
	if hsok && wsok {
		switch op {
		case filter.EQ:
			return hs == ws
		case filter.NE:
			return hs != ws
		case filter.LT:
			return hs < ws
		case filter.LE:
			return hs <= ws
		case filter.GT:
			return hs > ws
		case filter.GE:
			return hs >= ws
		}
	}
	return false
}

func fieldValue(rec Widget, path model.PropertyPath) any {
	switch path.String() {
	case "id":
		return rec.ID
	case "name":
		return rec.Name
	case "age":
		return rec.Age
	case "ownerId":
		return rec.OwnerID
	default:
		return nil
	}
}

func (RecordAccess) Compare(a, b Widget, path model.PropertyPath) int {
	av, bv := fieldValue(a, path), fieldValue(b, path)
	switch av := av.(type) {
	case int:
		bv := bv.(int)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case string:
		bv := bv.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}

func (RecordAccess) Identity(rec Widget) any { return rec.ID }

func (RecordAccess) Value(rec Widget, path model.PropertyPath) any { return fieldValue(rec, path) }

func (RecordAccess) Stash(rec Widget, joinProp string, outerRow any) Widget { return rec }

// Store is an in-memory exec.StorageAccess[Widget] fixture, natural order
// by insertion.
type Store struct {
	typeInfo *TypeInfo
	records  []Widget
}

// NewStore builds a Store over records, exposing typeInfo's indexes.
func NewStore(typeInfo *TypeInfo, records []Widget) *Store {
	return &Store{typeInfo: typeInfo, records: append([]Widget{}, records...)}
}

func (s *Store) StorableType() model.TypeInfo        { return s.typeInfo }
func (s *Store) AllIndexes() []model.IndexDescriptor { return s.typeInfo.Indexes() }
func (s *Store) StorageDelegate(model.IndexDescriptor) (exec.Node[Widget], bool) {
	return nil, false
}
func (s *Store) CountAll() int64 { return int64(len(s.records)) }

func (s *Store) FetchAll() (exec.Cursor[Widget], error) {
	return &sliceCursor{items: append([]Widget{}, s.records...)}, nil
}

func (s *Store) FetchSubset(index model.IndexDescriptor, identityValues []any,
	startBoundary exec.Boundary, startValue any,
	endBoundary exec.Boundary, endValue any,
	reverseRange, reverseOrder bool) (exec.Cursor[Widget], error) {

	matched := make([]Widget, 0, len(s.records))
	for _, rec := range s.records {
		ok := true
		for i, v := range identityValues {
			if fieldValue(rec, index.Properties[i].Property) != v {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if len(identityValues) < index.Len() {
			rv := fieldValue(rec, index.Properties[len(identityValues)].Property)
			if iv, ok := rv.(int); ok {
				if startValue != nil {
					sv := startValue.(int)
					if startBoundary == exec.BoundaryInclusive && iv < sv {
						continue
					}
					if startBoundary == exec.BoundaryExclusive && iv <= sv {
						continue
					}
				}
				if endValue != nil {
					ev := endValue.(int)
					if endBoundary == exec.BoundaryInclusive && iv > ev {
						continue
					}
					if endBoundary == exec.BoundaryExclusive && iv >= ev {
						continue
					}
				}
			}
		}
		matched = append(matched, rec)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		for _, e := range index.Properties {
			cmp := RecordAccess{}.Compare(matched[i], matched[j], e.Property)
			if cmp != 0 {
				if e.Direction == model.Descending {
					cmp = -cmp
				}
				return cmp < 0
			}
		}
		return false
	})
	if reverseOrder {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}

	return &sliceCursor{items: matched}, nil
}

func (s *Store) IndexEntryQuery(model.IndexDescriptor) (exec.IndexEntryQuery, bool) { return nil, false }
func (s *Store) FetchFromIndexEntryQuery(index model.IndexDescriptor, _ exec.BoundQuery) (exec.Cursor[Widget], error) {
	return nil, fmt.Errorf("testsupport: no index-entry query support for %s", index.Name)
}
func (s *Store) CreateSortBuffer() exec.SortBuffer[Widget] { return &memSortBuffer{} }

type sliceCursor struct {
	items []Widget
	pos   int
}

func (c *sliceCursor) Next() (Widget, bool, error) {
	if c.pos >= len(c.items) {
		return Widget{}, false, nil
	}
	rec := c.items[c.pos]
	c.pos++
	return rec, true, nil
}
func (c *sliceCursor) Close() error { return nil }

type memSortBuffer struct {
	items []Widget
}

func (b *memSortBuffer) Add(s Widget) { b.items = append(b.items, s) }
func (b *memSortBuffer) Sorted(less func(a, b Widget) bool) exec.Cursor[Widget] {
	sort.SliceStable(b.items, func(i, j int) bool { return less(b.items[i], b.items[j]) })
	return &sliceCursor{items: b.items}
}
func (b *memSortBuffer) Close() error { b.items = nil; return nil }

// Drain reads every record off a cursor, closing it unconditionally.
func Drain(c exec.Cursor[Widget]) ([]Widget, error) {
	defer c.Close()
	var out []Widget
	for {
		rec, ok, err := c.Next()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, rec)
	}
}
