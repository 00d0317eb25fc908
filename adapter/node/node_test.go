package node

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/docmap/domain"
)

type M = map[string]any

type NodeTestSuite struct {
	suite.Suite
}

// Nested maps should become embeds-one children and arrays of maps should
// become embeds-many children.
func (s *NodeTestSuite) TestAdoptSplitsFieldsAndChildren() {
	root, err := NewRoot("people", M{
		"_id":  "p1",
		"name": "Ana",
		"profile": M{
			"bio": "hi",
		},
		"addresses": []any{
			M{"street": "First"},
			M{"street": "Second"},
		},
		"tags": []any{"a", "b"},
	})
	s.Require().NoError(err)

	s.Equal("p1", root.Identity())
	v, ok := root.Get("name")
	s.True(ok)
	s.Equal("Ana", v)
	_, ok = root.Get("profile")
	s.False(ok)

	profile := root.Child("profile")
	s.Require().Len(profile, 1)
	s.Equal(domain.KindEmbedsOne, profile[0].Association().Kind)

	addresses := root.Child("addresses")
	s.Require().Len(addresses, 2)
	s.Equal(domain.KindEmbedsMany, addresses[0].Association().Kind)

	// scalar arrays stay plain fields
	tags, ok := root.Get("tags")
	s.True(ok)
	s.Equal([]any{"a", "b"}, tags)
}

// Structs should be read through the docmap tag.
func (s *NodeTestSuite) TestStructValue() {
	type address struct {
		Street string `docmap:"street"`
	}
	type person struct {
		Name      string    `docmap:"name"`
		Ignored   string    `docmap:"-"`
		Addresses []address `docmap:"addresses"`
	}

	root, err := NewRoot("people", person{
		Name:      "Ana",
		Ignored:   "nope",
		Addresses: []address{{Street: "First"}},
	})
	s.Require().NoError(err)

	v, ok := root.Get("name")
	s.True(ok)
	s.Equal("Ana", v)
	_, ok = root.Get("-")
	s.False(ok)
	_, ok = root.Get("Ignored")
	s.False(ok)

	addresses := root.Child("addresses")
	s.Require().Len(addresses, 1)
	street, ok := addresses[0].Get("street")
	s.True(ok)
	s.Equal("First", street)
}

// Values that are neither maps nor structs should be rejected.
func (s *NodeTestSuite) TestInvalidValue() {
	_, err := NewRoot("people", 42)
	s.ErrorAs(err, &domain.ErrValueType{})
}

// Set and Remove should log changes preserving the original old value across
// repeated mutations.
func (s *NodeTestSuite) TestChangeLog() {
	root, err := NewRoot("people", M{"name": "Ana"}, AsPersisted())
	s.Require().NoError(err)
	s.False(root.Dirty())

	root.Set("name", "Bia")
	root.Set("name", "Carla")
	changes := root.Changes()
	s.Require().Contains(changes, "name")
	s.Equal("Ana", changes["name"].Old)
	s.Equal("Carla", changes["name"].New)

	root.Remove("name")
	changes = root.Changes()
	s.Equal("Ana", changes["name"].Old)
	s.Equal(domain.Unset, changes["name"].New)
	_, ok := root.Get("name")
	s.False(ok)
	s.True(root.Dirty())
}

// Replacing an embeds-one child should queue the previous child for removal.
func (s *NodeTestSuite) TestEmbedOneReplacement() {
	root, err := NewRoot("people", M{"profile": M{"bio": "old"}}, AsPersisted())
	s.Require().NoError(err)
	old := root.Child("profile")[0]

	fresh, err := root.EmbedOne("profile", M{"bio": "new"})
	s.Require().NoError(err)

	added := root.Added()
	s.Require().Len(added["profile"], 1)
	s.Same(fresh, added["profile"][0])

	removed := root.Removed()
	s.Require().Len(removed["profile"], 1)
	s.Same(old, removed["profile"][0])

	s.Equal([]domain.Node{fresh}, root.Child("profile"))
}

// Removing a child that was queued for insertion in the same unit of work
// should discard it instead of queueing a pull.
func (s *NodeTestSuite) TestRemoveUnsavedChild() {
	root, err := NewRoot("people", nil, AsPersisted())
	s.Require().NoError(err)

	child, err := root.Append("addresses", M{"street": "First"})
	s.Require().NoError(err)
	s.True(root.Dirty())

	root.RemoveChild(child)
	s.Empty(root.Added())
	s.Empty(root.Removed())
	s.False(root.Dirty())
}

// Removing a persisted child should queue it for an atomic pull.
func (s *NodeTestSuite) TestRemovePersistedChild() {
	root, err := NewRoot("people", M{
		"addresses": []any{M{"_id": "a1", "street": "First"}},
	}, AsPersisted())
	s.Require().NoError(err)

	child := root.Child("addresses")[0]
	root.RemoveChild(child)

	removed := root.Removed()
	s.Require().Len(removed["addresses"], 1)
	s.Same(child, removed["addresses"][0])
	s.Empty(root.Child("addresses"))
}

// MarkPersisted should assign array slots in document order and clear every
// dirty marker.
func (s *NodeTestSuite) TestMarkPersisted() {
	root, err := NewRoot("people", M{
		"addresses": []any{
			M{"street": "First"},
			M{"street": "Second"},
		},
	})
	s.Require().NoError(err)

	first := root.Child("addresses")[0]
	_, ok := first.Index()
	s.False(ok)
	s.False(first.Persisted())

	root.Set("name", "Ana")
	root.MarkPersisted()

	s.True(root.Persisted())
	s.Empty(root.Changes())
	for i, c := range root.Child("addresses") {
		idx, ok := c.Index()
		s.True(ok)
		s.Equal(i, idx)
		s.True(c.Persisted())
	}
}

// Raw should rebuild the full storable representation including children and
// identity.
func (s *NodeTestSuite) TestRaw() {
	root, err := NewRoot("people", M{
		"_id":     "p1",
		"name":    "Ana",
		"profile": M{"bio": "hi"},
		"addresses": []any{
			M{"street": "First"},
		},
	})
	s.Require().NoError(err)

	raw := root.Raw()
	s.Equal("p1", raw["_id"])
	s.Equal("Ana", raw["name"])
	s.Equal(M{"bio": "hi"}, raw["profile"])
	s.Equal([]any{M{"street": "First"}}, raw["addresses"])
}

// Embedded nodes should report their root's collection.
func (s *NodeTestSuite) TestCollectionDelegation() {
	root, err := NewRoot("people", M{"profile": M{"bio": "hi"}})
	s.Require().NoError(err)
	s.Equal("people", root.Child("profile")[0].Collection())
}

func TestNodeTestSuite(t *testing.T) {
	suite.Run(t, new(NodeTestSuite))
}
