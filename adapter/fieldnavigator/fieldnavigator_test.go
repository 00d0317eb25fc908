package fieldnavigator

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type M = map[string]any

type FieldNavigatorTestSuite struct {
	suite.Suite
	fn *FieldNavigator
}

func (s *FieldNavigatorTestSuite) SetupTest() {
	s.fn = NewFieldNavigator()
}

// Get should follow keys and numeric array indices.
func (s *FieldNavigatorTestSuite) TestGet() {
	doc := M{
		"name":    "Ana",
		"profile": M{"bio": "hi"},
		"addresses": []any{
			M{"street": "First"},
			M{"street": "Second"},
		},
	}

	v, ok := s.fn.Get(doc, "name")
	s.True(ok)
	s.Equal("Ana", v)

	v, ok = s.fn.Get(doc, "profile.bio")
	s.True(ok)
	s.Equal("hi", v)

	v, ok = s.fn.Get(doc, "addresses.1.street")
	s.True(ok)
	s.Equal("Second", v)
}

// Unset keys, out-of-range indices and paths through primitives should be
// undefined, not errors.
func (s *FieldNavigatorTestSuite) TestGetUndefined() {
	doc := M{"name": "Ana", "addresses": []any{M{"street": "First"}}}

	_, ok := s.fn.Get(doc, "missing")
	s.False(ok)
	_, ok = s.fn.Get(doc, "addresses.7.street")
	s.False(ok)
	_, ok = s.fn.Get(doc, "name.inner")
	s.False(ok)
}

// Set should create intermediate documents for unset keys.
func (s *FieldNavigatorTestSuite) TestSetEnsuresPath() {
	doc := M{}
	s.Require().NoError(s.fn.Set(doc, "profile.bio", "hi"))
	s.Equal(M{"profile": M{"bio": "hi"}}, doc)
}

// Set through a numeric index should reach existing array members only.
func (s *FieldNavigatorTestSuite) TestSetArrayMember() {
	doc := M{"addresses": []any{M{"street": "First"}}}

	s.Require().NoError(s.fn.Set(doc, "addresses.0.street", "Main"))
	v, _ := s.fn.Get(doc, "addresses.0.street")
	s.Equal("Main", v)

	s.Error(s.fn.Set(doc, "addresses.3.street", "Nope"))
}

// Unset should delete keys but null array members, keeping sibling indices
// stable.
func (s *FieldNavigatorTestSuite) TestUnset() {
	doc := M{
		"name": "Ana",
		"addresses": []any{
			M{"street": "First"},
			M{"street": "Second"},
		},
	}

	s.Require().NoError(s.fn.Unset(doc, "name"))
	s.NotContains(doc, "name")

	s.Require().NoError(s.fn.Unset(doc, "addresses.0"))
	arr := doc["addresses"].([]any)
	s.Len(arr, 2)
	s.Nil(arr[0])
	s.Equal(M{"street": "Second"}, arr[1])

	// unsetting an unset address is a no-op
	s.NoError(s.fn.Unset(doc, "missing.deep"))
}

// Push should create the array when the address is unset and append
// otherwise.
func (s *FieldNavigatorTestSuite) TestPush() {
	doc := M{}
	s.Require().NoError(s.fn.Push(doc, "addresses", M{"street": "First"}))
	s.Require().NoError(s.fn.Push(doc, "addresses", M{"street": "Second"}, M{"street": "Third"}))

	arr := doc["addresses"].([]any)
	s.Len(arr, 3)

	s.Error(s.fn.Push(doc, "addresses.0.street", M{}), "cannot push to a string")
}

// Pull should drop the members the predicate rejects.
func (s *FieldNavigatorTestSuite) TestPull() {
	doc := M{"addresses": []any{
		M{"_id": "a1"},
		M{"_id": "a2"},
		M{"_id": "a3"},
	}}

	err := s.fn.Pull(doc, "addresses", func(member any) bool {
		return member.(M)["_id"] != "a2"
	})
	s.Require().NoError(err)

	arr := doc["addresses"].([]any)
	s.Equal([]any{M{"_id": "a1"}, M{"_id": "a3"}}, arr)

	// pulling from an unset address is a no-op
	s.NoError(s.fn.Pull(doc, "phones", func(any) bool { return true }))
}

func TestFieldNavigatorTestSuite(t *testing.T) {
	suite.Run(t, new(FieldNavigatorTestSuite))
}
