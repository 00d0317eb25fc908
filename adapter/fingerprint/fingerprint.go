// Package fingerprint contains the default [domain.Fingerprinter]
// implementation. A query is canonicalized into a deterministic JSON form,
// order independent for filter keys, and hashed with FNV-64a. The resulting
// fingerprint keeps the collection name so writes can invalidate by
// collection.
package fingerprint

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"slices"

	"github.com/vinicius-lino-figueiredo/docmap/domain"
)

// Fingerprinter implements [domain.Fingerprinter].
type Fingerprinter struct{}

// NewFingerprinter returns a new implementation of [domain.Fingerprinter].
func NewFingerprinter() domain.Fingerprinter {
	return &Fingerprinter{}
}

// Fingerprint implements [domain.Fingerprinter].
func (f *Fingerprinter) Fingerprint(q domain.Query) (domain.Fingerprint, error) {
	canonical := canonicalize(q)

	b, err := json.Marshal(canonical)
	if err != nil {
		return domain.Fingerprint{}, fmt.Errorf("canonicalizing query: %w", err)
	}

	hasher := fnv.New64a()
	_, _ = hasher.Write(b) // fnv.sum64a.Write never returns error

	return domain.Fingerprint{
		Collection: q.Collection,
		Sum:        hasher.Sum64(),
	}, nil
}

// canonicalize produces a structure whose JSON encoding is deterministic:
// encoding/json already sorts map keys at every level, sort criteria keep
// their order because ordering is significant, and the projection is sorted
// because it is a set. Nil filter and projection take their empty forms, so
// an unfiltered query hashes the same whether the caller passed nil or an
// empty value.
func canonicalize(q domain.Query) any {
	sortKeys := make([][2]any, len(q.Sort))
	for i, s := range q.Sort {
		sortKeys[i] = [2]any{s.Key, int(s.Order)}
	}
	filter := q.Filter
	if filter == nil {
		filter = map[string]any{}
	}
	projection := make([]string, 0, len(q.Projection))
	projection = append(projection, q.Projection...)
	slices.Sort(projection)

	return map[string]any{
		"collection": q.Collection,
		"filter":     filter,
		"sort":       sortKeys,
		"projection": projection,
	}
}
