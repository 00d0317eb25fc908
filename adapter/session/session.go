// Package session contains the orchestration layer tying nodes, the update
// compiler, the query cache and the store together.
package session

import (
	"context"
	"fmt"
	"iter"

	"github.com/vinicius-lino-figueiredo/docmap/adapter/compiler"
	"github.com/vinicius-lino-figueiredo/docmap/adapter/cursor"
	"github.com/vinicius-lino-figueiredo/docmap/adapter/decoder"
	"github.com/vinicius-lino-figueiredo/docmap/adapter/fingerprint"
	"github.com/vinicius-lino-figueiredo/docmap/adapter/querycache"
	"github.com/vinicius-lino-figueiredo/docmap/domain"
)

// Session coordinates saves and reads over one store. Persisted roots are
// saved with compiled minimal update commands, new roots are inserted whole,
// and reads inside a unit of work are memoized by the query cache.
type Session struct {
	store    domain.Store
	cache    domain.Cache
	compiler domain.Compiler
	fper     domain.Fingerprinter
	dec      domain.Decoder
}

// NewSession returns a new Session backed by the given store.
func NewSession(store domain.Store, options ...Option) *Session {
	cfg := config{
		cache:    querycache.NewQueryCache(),
		compiler: compiler.NewCompiler(),
		fper:     fingerprint.NewFingerprinter(),
		dec:      decoder.NewDecoder(),
	}
	for _, option := range options {
		option(&cfg)
	}

	return &Session{
		store:    store,
		cache:    cfg.cache,
		compiler: cfg.compiler,
		fper:     cfg.fper,
		dec:      cfg.dec,
	}
}

// Save persists the pending changes of a document graph. New roots are
// inserted whole; persisted roots are updated with the minimal compiled
// command. A compile error aborts the save before any store call. Saves
// invalidate every cache entry of the root's collection.
func (s *Session) Save(ctx context.Context, root domain.Node) error {
	if !root.Persisted() {
		id, err := s.store.Insert(ctx, root.Collection(), root.Raw())
		if err != nil {
			return fmt.Errorf("inserting document: %w", err)
		}
		root.SetIdentity(id)
		root.MarkPersisted()
		return s.cache.Invalidate(ctx, root.Collection())
	}

	cmd, err := s.compiler.Compile(root)
	if err != nil {
		return err
	}
	if cmd.Empty() {
		return nil
	}
	if err := s.store.ApplyUpdate(ctx, root.Collection(), root.Identity(), cmd); err != nil {
		return fmt.Errorf("applying update: %w", err)
	}
	root.MarkPersisted()
	return s.cache.Invalidate(ctx, root.Collection())
}

// Delete removes a persisted root from the store and invalidates its
// collection's cache entries.
func (s *Session) Delete(ctx context.Context, root domain.Node) error {
	if !root.Persisted() {
		return domain.ErrNotPersisted
	}
	if err := s.store.Delete(ctx, root.Collection(), root.Identity()); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return s.cache.Invalidate(ctx, root.Collection())
}

// Find returns a cursor over the documents matching the query. Inside a unit
// of work results are served and recorded through the query cache; outside
// one they stream straight from the store.
func (s *Session) Find(ctx context.Context, collection string, options ...domain.QueryOption) (domain.Cursor, error) {
	query := s.query(collection, options...)

	seq, err := s.results(ctx, query)
	if err != nil {
		return nil, err
	}
	return cursor.NewCursor(ctx, seq, cursor.WithDecoder(s.dec))
}

// FindOne decodes the first document matching the query into target.
// [domain.ErrNotFound] is returned when nothing matches.
func (s *Session) FindOne(ctx context.Context, collection string, target any, options ...domain.QueryOption) error {
	cur, err := s.Find(ctx, collection, options...)
	if err != nil {
		return err
	}
	defer cur.Close()

	if !cur.Next() {
		if err := cur.Err(); err != nil {
			return err
		}
		return domain.ErrNotFound
	}
	return cur.Scan(ctx, target)
}

// Count returns the number of documents matching the query. Inside a unit of
// work, a fully loaded cache entry answers without touching the store.
func (s *Session) Count(ctx context.Context, collection string, options ...domain.QueryOption) (int, error) {
	query := s.query(collection, options...)

	if Enabled(ctx) {
		fp, err := s.fper.Fingerprint(query)
		if err != nil {
			return 0, err
		}
		if n, ok := s.cache.Count(ctx, fp); ok {
			return n, nil
		}
	}

	seq, err := s.results(ctx, query)
	if err != nil {
		return 0, err
	}
	var n int
	for _, err := range seq {
		if err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}

// Exists reports whether at least one document matches the query.
func (s *Session) Exists(ctx context.Context, collection string, options ...domain.QueryOption) (bool, error) {
	query := s.query(collection, options...)

	if Enabled(ctx) {
		fp, err := s.fper.Fingerprint(query)
		if err != nil {
			return false, err
		}
		if n, ok := s.cache.Count(ctx, fp); ok {
			return n > 0, nil
		}
	}

	seq, err := s.results(ctx, query)
	if err != nil {
		return false, err
	}
	for _, err := range seq {
		if err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (s *Session) query(collection string, options ...domain.QueryOption) domain.Query {
	opts := domain.QueryOptions{}
	for _, option := range options {
		option(&opts)
	}
	return domain.Query{
		Collection: collection,
		Filter:     opts.Filter,
		Sort:       opts.Sort,
		Projection: opts.Projection,
	}
}

func (s *Session) results(ctx context.Context, query domain.Query) (iter.Seq2[map[string]any, error], error) {
	if !Enabled(ctx) {
		return s.store.Query(ctx, query), nil
	}
	fp, err := s.fper.Fingerprint(query)
	if err != nil {
		return nil, err
	}
	return s.cache.Fetch(ctx, fp, s.loader(query)), nil
}

func (s *Session) loader(query domain.Query) domain.Loader {
	return func(ctx context.Context) iter.Seq2[map[string]any, error] {
		return s.store.Query(ctx, query)
	}
}
