package model

// StaticTypeInfo is a plain-data TypeInfo for tests, examples, and small
// embedders that don't need reflection-driven introspection.
type StaticTypeInfo struct {
	TypeName   string
	Primary    KeyDescriptor
	Alternates []KeyDescriptor
	IndexList  []IndexDescriptor
	Refs       map[string]ReferenceProperty
	Properties map[string]bool
}

func (s *StaticTypeInfo) Name() string                         { return s.TypeName }
func (s *StaticTypeInfo) PrimaryKey() KeyDescriptor             { return s.Primary }
func (s *StaticTypeInfo) AlternateKeys() []KeyDescriptor        { return s.Alternates }
func (s *StaticTypeInfo) Indexes() []IndexDescriptor            { return s.IndexList }
func (s *StaticTypeInfo) References() map[string]ReferenceProperty { return s.Refs }

func (s *StaticTypeInfo) HasProperty(path PropertyPath) bool {
	if s.Properties == nil {
		return true
	}
	return s.Properties[path.Leaf()]
}

var _ TypeInfo = (*StaticTypeInfo)(nil)
