package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func key(name string, primary bool, props ...string) KeyDescriptor {
	paths := make([]PropertyPath, len(props))
	for i, p := range props {
		paths[i] = ParsePropertyPath(p)
	}
	return KeyDescriptor{Name: name, Primary: primary, Properties: paths}
}

func paths(props ...string) []PropertyPath {
	out := make([]PropertyPath, len(props))
	for i, p := range props {
		out[i] = ParsePropertyPath(p)
	}
	return out
}

func TestBestMatchingKeyPrefersPrimaryWhenFullyCovered(t *testing.T) {
	ti := &StaticTypeInfo{
		TypeName:   "Order",
		Primary:    key("pk", true, "id"),
		Alternates: []KeyDescriptor{key("ak_email", false, "email")},
	}
	got := BestMatchingKey(ti, paths("id", "email"))
	assert.Equal(t, "pk", got.Name)
}

func TestBestMatchingKeyPrefersFullyCoveredAlternateOverUncoveredPrimary(t *testing.T) {
	ti := &StaticTypeInfo{
		TypeName:   "Order",
		Primary:    key("pk", true, "id"),
		Alternates: []KeyDescriptor{key("ak_email", false, "email")},
	}
	got := BestMatchingKey(ti, paths("email"))
	assert.Equal(t, "ak_email", got.Name)
}

func TestBestMatchingKeyFallsBackToMostCoveredAlternate(t *testing.T) {
	ti := &StaticTypeInfo{
		TypeName: "Order",
		Primary:  key("pk", true, "id"),
		Alternates: []KeyDescriptor{
			key("ak_one", false, "region", "code"),
			key("ak_two", false, "region", "code", "variant"),
		},
	}
	// Neither alternate is fully contained in paths, and the primary key
	// ("id") isn't present at all: ak_two covers two of its three
	// properties against paths, more than ak_one's one of two or the
	// primary key's zero of one, so it wins the fallback.
	got := BestMatchingKey(ti, paths("region", "variant"))
	assert.Equal(t, "ak_two", got.Name)
}

func TestBestMatchingKeyFallsBackToPrimaryWhenNoKeyIsCovered(t *testing.T) {
	ti := &StaticTypeInfo{
		TypeName:   "Order",
		Primary:    key("pk", true, "id"),
		Alternates: []KeyDescriptor{key("ak_email", false, "email")},
	}
	got := BestMatchingKey(ti, paths("unrelated"))
	assert.Equal(t, "pk", got.Name)
}
