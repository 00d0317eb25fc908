package querycache

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/docmap/domain"
)

type M = map[string]any

// countingLoader streams fixed documents and counts invocations.
type countingLoader struct {
	docs  []M
	calls int
	fail  error
}

func (l *countingLoader) load(context.Context) iter.Seq2[map[string]any, error] {
	l.calls++
	return func(yield func(map[string]any, error) bool) {
		for _, d := range l.docs {
			if !yield(d, nil) {
				return
			}
		}
		if l.fail != nil {
			yield(nil, l.fail)
		}
	}
}

func drain(seq iter.Seq2[map[string]any, error]) ([]M, error) {
	var res []M
	for doc, err := range seq {
		if err != nil {
			return res, err
		}
		res = append(res, doc)
	}
	return res, nil
}

type QueryCacheTestSuite struct {
	suite.Suite
	cache *QueryCache
	ctx   context.Context
}

func (s *QueryCacheTestSuite) SetupTest() {
	s.cache = NewQueryCache()
	s.ctx = context.Background()
}

func fp(collection string, sum uint64) domain.Fingerprint {
	return domain.Fingerprint{Collection: collection, Sum: sum}
}

// Two full fetches of the same fingerprint should invoke the loader exactly
// once and return equal sequences.
func (s *QueryCacheTestSuite) TestLoaderInvokedOnce() {
	loader := &countingLoader{docs: []M{{"n": 1}, {"n": 2}}}
	key := fp("people", 1)

	first, err := drain(s.cache.Fetch(s.ctx, key, loader.load))
	s.Require().NoError(err)
	second, err := drain(s.cache.Fetch(s.ctx, key, loader.load))
	s.Require().NoError(err)

	s.Equal(1, loader.calls)
	s.Equal(first, second)
	s.Equal([]M{{"n": 1}, {"n": 2}}, first)
}

// A partially consumed fetch should keep the buffered prefix and extend it
// on the next access.
func (s *QueryCacheTestSuite) TestPartialThenResume() {
	loader := &countingLoader{docs: []M{{"n": 1}, {"n": 2}, {"n": 3}}}
	key := fp("people", 1)

	var got []M
	for doc, err := range s.cache.Fetch(s.ctx, key, loader.load) {
		s.Require().NoError(err)
		got = append(got, doc)
		break
	}
	s.Equal([]M{{"n": 1}}, got)
	s.Equal(1, loader.calls)

	_, ok := s.cache.Count(s.ctx, key)
	s.False(ok, "partial entry cannot answer counts")

	all, err := drain(s.cache.Fetch(s.ctx, key, loader.load))
	s.Require().NoError(err)
	s.Equal([]M{{"n": 1}, {"n": 2}, {"n": 3}}, all)
	s.Equal(2, loader.calls)

	size, ok := s.cache.Count(s.ctx, key)
	s.True(ok)
	s.Equal(3, size)
}

// Invalidation should remove only entries referencing the written
// collection.
func (s *QueryCacheTestSuite) TestInvalidateByCollection() {
	people := &countingLoader{docs: []M{{"n": 1}}}
	pets := &countingLoader{docs: []M{{"n": 2}}}
	peopleKey := fp("people", 1)
	petsKey := fp("pets", 2)

	_, err := drain(s.cache.Fetch(s.ctx, peopleKey, people.load))
	s.Require().NoError(err)
	_, err = drain(s.cache.Fetch(s.ctx, petsKey, pets.load))
	s.Require().NoError(err)
	s.Equal(2, s.cache.Len())

	s.Require().NoError(s.cache.Invalidate(s.ctx, "people"))
	s.Equal(1, s.cache.Len())

	// pets still hits without its loader
	_, err = drain(s.cache.Fetch(s.ctx, petsKey, pets.load))
	s.Require().NoError(err)
	s.Equal(1, pets.calls)

	// people misses and loads again
	_, err = drain(s.cache.Fetch(s.ctx, peopleKey, people.load))
	s.Require().NoError(err)
	s.Equal(2, people.calls)
}

// Clearing the table while a load is in flight must discard the in-flight
// buffer instead of re-inserting it.
func (s *QueryCacheTestSuite) TestClearAllDuringLoad() {
	loader := &countingLoader{docs: []M{{"n": 1}, {"n": 2}}}
	key := fp("people", 1)

	cleared := false
	for _, err := range s.cache.Fetch(s.ctx, key, loader.load) {
		s.Require().NoError(err)
		if !cleared {
			s.cache.ClearAll()
			cleared = true
		}
	}

	s.Equal(0, s.cache.Len(), "stale partial must not be reused")

	_, err := drain(s.cache.Fetch(s.ctx, key, loader.load))
	s.Require().NoError(err)
	s.Equal(2, loader.calls)
}

// A failing loader should propagate its error unchanged and leave the entry
// absent.
func (s *QueryCacheTestSuite) TestLoaderFailure() {
	boom := errors.New("store unavailable")
	loader := &countingLoader{docs: []M{{"n": 1}}, fail: boom}
	key := fp("people", 1)

	_, err := drain(s.cache.Fetch(s.ctx, key, loader.load))
	s.ErrorIs(err, boom)
	s.Equal(0, s.cache.Len())

	loader.fail = nil
	all, err := drain(s.cache.Fetch(s.ctx, key, loader.load))
	s.Require().NoError(err)
	s.Equal([]M{{"n": 1}}, all)
	s.Equal(2, loader.calls)
}

// A cancelled context should interrupt the fetch before touching the table.
func (s *QueryCacheTestSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	loader := &countingLoader{docs: []M{{"n": 1}}}
	_, err := drain(s.cache.Fetch(ctx, fp("people", 1), loader.load))
	s.ErrorIs(err, context.Canceled)
	s.Equal(0, loader.calls)
}

func TestQueryCacheTestSuite(t *testing.T) {
	suite.Run(t, new(QueryCacheTestSuite))
}
