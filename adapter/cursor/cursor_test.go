package cursor

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/vinicius-lino-figueiredo/docmap/domain"
)

type CursorTestSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *CursorTestSuite) SetupTest() {
	s.ctx = context.Background()
}

func docSeq(docs []map[string]any, err error) iter.Seq2[map[string]any, error] {
	return func(yield func(map[string]any, error) bool) {
		for _, d := range docs {
			if !yield(d, nil) {
				return
			}
		}
		if err != nil {
			yield(nil, err)
		}
	}
}

type city struct {
	Name string `docmap:"name"`
}

// TestNextAndScan checks that documents come out one at a time in sequence
// order.
func (s *CursorTestSuite) TestNextAndScan() {
	docs := []map[string]any{{"name": "Lisboa"}, {"name": "Porto"}}
	cur, err := NewCursor(s.ctx, docSeq(docs, nil))
	s.Require().NoError(err)
	defer cur.Close()

	var got []string
	for cur.Next() {
		var c city
		s.Require().NoError(cur.Scan(s.ctx, &c))
		got = append(got, c.Name)
	}

	s.Require().NoError(cur.Err())
	s.Equal([]string{"Lisboa", "Porto"}, got)
}

// TestScanBeforeNext checks that scanning before the first Next is rejected.
func (s *CursorTestSuite) TestScanBeforeNext() {
	cur, err := NewCursor(s.ctx, docSeq(nil, nil))
	s.Require().NoError(err)
	defer cur.Close()

	var c city
	s.ErrorIs(cur.Scan(s.ctx, &c), domain.ErrScanBeforeNext)
}

// TestAll checks that the remaining documents decode into a slice and the
// cursor closes afterwards.
func (s *CursorTestSuite) TestAll() {
	docs := []map[string]any{{"name": "Lisboa"}, {"name": "Porto"}}
	cur, err := NewCursor(s.ctx, docSeq(docs, nil))
	s.Require().NoError(err)

	var cities []city
	s.Require().NoError(cur.All(s.ctx, &cities))

	s.Equal([]city{{Name: "Lisboa"}, {Name: "Porto"}}, cities)
	s.ErrorIs(cur.Err(), domain.ErrCursorClosed)
}

// TestAllNonSliceTarget checks that All rejects targets that are not slice
// pointers.
func (s *CursorTestSuite) TestAllNonSliceTarget() {
	cur, err := NewCursor(s.ctx, docSeq(nil, nil))
	s.Require().NoError(err)
	defer cur.Close()

	var c city
	s.ErrorIs(cur.All(s.ctx, &c), domain.ErrNonPointer)
}

// TestSequenceError checks that a mid-stream error stops iteration and is
// reported by Err.
func (s *CursorTestSuite) TestSequenceError() {
	boom := errors.New("boom")
	docs := []map[string]any{{"name": "Lisboa"}}
	cur, err := NewCursor(s.ctx, docSeq(docs, boom))
	s.Require().NoError(err)
	defer cur.Close()

	s.True(cur.Next())
	s.False(cur.Next())
	s.ErrorIs(cur.Err(), boom)
}

// TestClosed checks that a closed cursor stops iterating and reports the
// closure on Scan.
func (s *CursorTestSuite) TestClosed() {
	docs := []map[string]any{{"name": "Lisboa"}}
	cur, err := NewCursor(s.ctx, docSeq(docs, nil))
	s.Require().NoError(err)

	s.True(cur.Next())
	s.Require().NoError(cur.Close())

	s.False(cur.Next())
	var c city
	s.ErrorIs(cur.Scan(s.ctx, &c), domain.ErrCursorClosed)
}

// TestCancelledContext checks that construction fails fast under a cancelled
// context.
func (s *CursorTestSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := NewCursor(ctx, docSeq(nil, nil))

	s.ErrorIs(err, context.Canceled)
}

func TestCursorTestSuite(t *testing.T) {
	suite.Run(t, new(CursorTestSuite))
}
