package memstore

import "github.com/vinicius-lino-figueiredo/docmap/domain"

// WithJournal records every applied mutation to the given journal.
func WithJournal(j domain.Journal) Option {
	return func(m *MemStore) {
		m.journal = j
	}
}

// WithIdentityFunc sets the generator used when inserted documents carry no
// identity.
func WithIdentityFunc(fn func() any) Option {
	return func(m *MemStore) {
		m.identity = fn
	}
}

// Option configures the store through the functional options pattern.
type Option func(*MemStore)
