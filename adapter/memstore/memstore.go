// Package memstore contains an in-memory [domain.Store] implementation. It
// supports dotted-path addressing with numeric array indices, the atomic
// update operators produced by the compiler, and streaming queries over a
// primary-key ordered index. Identities must be comparable values.
package memstore

import (
	"context"
	"fmt"
	"iter"
	"slices"

	"github.com/google/uuid"
	"github.com/vinicius-lino-figueiredo/bst"
	"github.com/vinicius-lino-figueiredo/bst/adapter/avl"

	"github.com/vinicius-lino-figueiredo/docmap/adapter/fieldnavigator"
	"github.com/vinicius-lino-figueiredo/docmap/domain"
	"github.com/vinicius-lino-figueiredo/docmap/pkg/ctxsync"
)

// IdentityKey is the storage key of the primary-key value.
const IdentityKey = "_id"

// collection holds the documents of one collection plus an ordered index of
// their identities, so full scans are deterministic.
type collection struct {
	docs map[any]map[string]any
	ids  bst.BST[any, any]
}

// MemStore implements [domain.Store].
type MemStore struct {
	mu          *ctxsync.Mutex
	collections map[string]*collection
	fn          *fieldnavigator.FieldNavigator
	journal     domain.Journal
	identity    func() any
}

// NewMemStore returns a new in-memory implementation of [domain.Store].
func NewMemStore(options ...Option) *MemStore {
	m := &MemStore{
		mu:          ctxsync.NewMutex(),
		collections: map[string]*collection{},
		fn:          fieldnavigator.NewFieldNavigator(),
	}
	for _, option := range options {
		option(m)
	}
	if m.identity == nil {
		m.identity = func() any { return uuid.NewString() }
	}
	return m
}

func (m *MemStore) collection(name string) *collection {
	c := m.collections[name]
	if c == nil {
		c = &collection{
			docs: map[any]map[string]any{},
			ids:  avl.NewBST(true, 8, newIDComparer()),
		}
		m.collections[name] = c
	}
	return c
}

// Insert implements [domain.Store]. Documents without an identity are
// assigned a generated one.
func (m *MemStore) Insert(ctx context.Context, name string, doc map[string]any) (any, error) {
	stored := clone(doc).(map[string]any)
	id := stored[IdentityKey]
	if id == nil {
		id = m.identity()
		stored[IdentityKey] = id
	}

	err := m.mu.WithLock(ctx, func() error {
		c := m.collection(name)
		if err := c.ids.Insert(id, id); err != nil {
			return fmt.Errorf("indexing %v: %w", id, err)
		}
		c.docs[id] = stored
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := m.record(ctx, domain.JournalEntry{
		Op:         domain.JournalInsert,
		Collection: name,
		Identity:   id,
		Document:   stored,
	}); err != nil {
		return nil, err
	}
	return id, nil
}

// Delete implements [domain.Store]. Deleting an absent document is a no-op.
func (m *MemStore) Delete(ctx context.Context, name string, identity any) error {
	var existed bool
	err := m.mu.WithLock(ctx, func() error {
		c := m.collection(name)
		if _, existed = c.docs[identity]; !existed {
			return nil
		}
		delete(c.docs, identity)
		v := identity
		if err := c.ids.Delete(identity, &v); err != nil {
			return fmt.Errorf("unindexing %v: %w", identity, err)
		}
		return nil
	})
	if err != nil || !existed {
		return err
	}

	return m.record(ctx, domain.JournalEntry{
		Op:         domain.JournalDelete,
		Collection: name,
		Identity:   identity,
	})
}

// Query implements [domain.Store]. Documents stream in identity order unless
// sort criteria apply; every yielded document is a deep copy.
func (m *MemStore) Query(ctx context.Context, q domain.Query) iter.Seq2[map[string]any, error] {
	return func(yield func(map[string]any, error) bool) {
		var matched []map[string]any
		err := m.mu.WithLock(ctx, func() error {
			c := m.collection(q.Collection)
			for id := range c.ids.GetAll() {
				doc := c.docs[id]
				ok, err := m.matchFilter(doc, q.Filter)
				if err != nil {
					return fmt.Errorf("matching document: %w", err)
				}
				if ok {
					matched = append(matched, clone(doc).(map[string]any))
				}
			}
			return nil
		})
		if err != nil {
			yield(nil, err)
			return
		}

		if len(q.Sort) > 0 {
			m.sort(matched, q.Sort)
		}
		for _, doc := range matched {
			if len(q.Projection) > 0 {
				doc = project(doc, q.Projection)
			}
			if !yield(doc, nil) {
				return
			}
		}
	}
}

// matchFilter applies equality over dotted addresses, with $in support.
func (m *MemStore) matchFilter(doc map[string]any, filter map[string]any) (bool, error) {
	for address, expected := range filter {
		actual, _ := m.fn.Get(doc, address)
		if in, ok := inCriterion(expected); ok {
			if !slices.ContainsFunc(in, func(v any) bool { return valueEqual(actual, v) }) {
				return false, nil
			}
			continue
		}
		if !valueEqual(actual, expected) {
			return false, nil
		}
	}
	return true, nil
}

func (m *MemStore) sort(docs []map[string]any, criteria []domain.SortKey) {
	slices.SortStableFunc(docs, func(a, b map[string]any) int {
		for _, crit := range criteria {
			av, _ := m.fn.Get(a, crit.Key)
			bv, _ := m.fn.Get(b, crit.Key)
			if comp := compare(av, bv); comp != 0 {
				return comp * int(crit.Order)
			}
		}
		return 0
	})
}

// project keeps only the listed top-level fields. The identity always
// survives projection.
func project(doc map[string]any, fields []string) map[string]any {
	res := make(map[string]any, len(fields)+1)
	if id, ok := doc[IdentityKey]; ok {
		res[IdentityKey] = id
	}
	for _, f := range fields {
		if v, ok := doc[f]; ok {
			res[f] = v
		}
	}
	return res
}

func (m *MemStore) record(ctx context.Context, entry domain.JournalEntry) error {
	if m.journal == nil {
		return nil
	}
	if err := m.journal.Record(ctx, entry); err != nil {
		return fmt.Errorf("journaling %s: %w", entry.Op, err)
	}
	return nil
}

// Load replays a journal into the store, rebuilding the state the journaled
// mutations produced.
func (m *MemStore) Load(ctx context.Context, journal domain.Journal) error {
	for entry, err := range journal.Replay(ctx) {
		if err != nil {
			return fmt.Errorf("replaying journal: %w", err)
		}
		switch entry.Op {
		case domain.JournalInsert:
			if err := m.loadInsert(ctx, entry); err != nil {
				return err
			}
		case domain.JournalUpdate:
			if err := m.applyUpdate(ctx, entry.Collection, entry.Identity, entry.Command); err != nil {
				return err
			}
		case domain.JournalDelete:
			if err := m.loadDelete(ctx, entry); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown journal op %q", entry.Op)
		}
	}
	return nil
}

func (m *MemStore) loadInsert(ctx context.Context, entry domain.JournalEntry) error {
	return m.mu.WithLock(ctx, func() error {
		c := m.collection(entry.Collection)
		if err := c.ids.Insert(entry.Identity, entry.Identity); err != nil {
			return fmt.Errorf("indexing %v: %w", entry.Identity, err)
		}
		c.docs[entry.Identity] = clone(entry.Document).(map[string]any)
		return nil
	})
}

func (m *MemStore) loadDelete(ctx context.Context, entry domain.JournalEntry) error {
	return m.mu.WithLock(ctx, func() error {
		c := m.collection(entry.Collection)
		if _, ok := c.docs[entry.Identity]; !ok {
			return nil
		}
		delete(c.docs, entry.Identity)
		v := entry.Identity
		return c.ids.Delete(entry.Identity, &v)
	})
}

// clone deep-copies raw document values so callers never alias stored state.
func clone(value any) any {
	switch t := value.(type) {
	case map[string]any:
		res := make(map[string]any, len(t))
		for k, v := range t {
			res[k] = clone(v)
		}
		return res
	case []any:
		res := make([]any, len(t))
		for i, v := range t {
			res[i] = clone(v)
		}
		return res
	default:
		return value
	}
}
