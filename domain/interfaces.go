// Package domain contains domain-specific interfaces and option types for
// docmap.
//
// This package defines the core interfaces that must be implemented by
// adapters, the entities exchanged between them (nodes, update commands,
// queries, cache fingerprints) and the functional options shared across
// component boundaries.
package domain

import (
	"context"
	"iter"
)

// Node represents one persisted entity, root or embedded. A node's atomic
// address is computable solely from its ancestor chain plus its own
// association metadata. Nodes are single-writer: a document graph must not be
// mutated concurrently during a save.
type Node interface {
	// Identity returns the primary-key value, or nil for a new unsaved
	// node.
	Identity() any
	// SetIdentity assigns the primary-key value, usually after an insert.
	SetIdentity(any)
	// Collection returns the collection of the node's root.
	Collection() string
	// Parent returns the owning node, or nil for roots.
	Parent() Node
	// Association describes how the node is attached to its parent.
	Association() Association
	// Index returns the node's ordinal position in its parent's array
	// and whether that position has been assigned. It is meaningful only
	// for persisted embeds-many members.
	Index() (int, bool)
	// Persisted reports whether the node has been saved at least once.
	Persisted() bool

	// Get returns the current value of a field.
	Get(field string) (any, bool)
	// Set assigns a field value and records the change.
	Set(field string, value any)
	// Remove clears a field and records the change with [Unset].
	Remove(field string)

	// EmbedOne attaches a singular child under the given storage key,
	// replacing any current child. The replaced child is queued for
	// removal.
	EmbedOne(key string, value any) (Node, error)
	// Append attaches a new array-member child under the given storage
	// key and queues it for an atomic push.
	Append(key string, value any) (Node, error)
	// RemoveChild detaches a live child and queues it for an atomic
	// removal.
	RemoveChild(child Node)

	// Changes returns the field change log, field name to old/new pair.
	Changes() map[string]Change
	// Added returns children queued for insertion, per storage key.
	Added() map[string][]Node
	// Removed returns children queued for removal, per storage key.
	Removed() map[string][]Node
	// Children iterates the live (not queued) children of the node.
	Children() iter.Seq[Node]
	// Dirty reports whether the node or any descendant has pending
	// changes.
	Dirty() bool
	// Raw produces the full storable representation of the node,
	// including descendants.
	Raw() map[string]any
	// MarkPersisted clears all dirty markers, promotes queued children
	// to live ones and assigns array slots. Callers invoke it only after
	// the store confirmed the write.
	MarkPersisted()
}

// Strategy produces the address contribution and the operator pair for one
// association kind. Exactly one strategy applies to a node at any time.
type Strategy interface {
	// Position returns the node's own dotted address inside its root
	// document. Roots yield the empty string.
	Position(Node) (string, error)
	// InsertOperator names the operator used to attach a new node of
	// this kind, or an empty string for roots.
	InsertOperator() string
	// DeleteOperator names the operator used to detach a node of this
	// kind, or an empty string for roots.
	DeleteOperator() string
}

// Resolver computes atomic addresses for nodes by walking ancestor links.
type Resolver interface {
	// Resolve returns the node's dotted address within its root
	// document, or [ErrAddressing] for detached structures.
	Resolve(Node) (string, error)
}

// Compiler aggregates the dirty state reachable from a root into one minimal
// multi-operator update command. Compile never mutates the graph.
type Compiler interface {
	Compile(root Node) (UpdateCommand, error)
}

// Loader streams raw documents from the store boundary. It is the only
// suspension point of a cache fetch.
type Loader func(ctx context.Context) iter.Seq2[map[string]any, error]

// Cache memoizes query results per unit of work, keyed by fingerprint.
type Cache interface {
	// Fetch returns the cached sequence for the fingerprint, invoking
	// loader only for data not already buffered. Loader errors propagate
	// unchanged and leave no entry behind.
	Fetch(ctx context.Context, fp Fingerprint, loader Loader) iter.Seq2[map[string]any, error]
	// Count returns the result size for a fully loaded entry. The bool
	// reports whether the entry could answer without a round trip.
	Count(ctx context.Context, fp Fingerprint) (int, bool)
	// Invalidate removes every entry whose fingerprint references the
	// collection.
	Invalidate(ctx context.Context, collection string) error
	// ClearAll resets the whole table. It is called unconditionally at
	// the unit-of-work boundary and cannot fail.
	ClearAll()
	// Len returns the number of live entries.
	Len() int
}

// Fingerprinter normalizes queries into cache keys.
type Fingerprinter interface {
	Fingerprint(Query) (Fingerprint, error)
}

// Store is the boundary to the underlying hierarchical document store. It
// must support dotted-path addressing with numeric array indices and atomic
// document-level operators.
type Store interface {
	// ApplyUpdate executes one compiled command against a document.
	ApplyUpdate(ctx context.Context, collection string, identity any, command UpdateCommand) error
	// Insert stores a whole document and returns its assigned identity.
	Insert(ctx context.Context, collection string, doc map[string]any) (any, error)
	// Delete removes a document by primary key.
	Delete(ctx context.Context, collection string, identity any) error
	// Query streams the raw documents matching the query.
	Query(ctx context.Context, query Query) iter.Seq2[map[string]any, error]
}

// Decoder converts raw documents into user-defined types.
type Decoder interface {
	// Decode converts from one data representation to another.
	Decode(source any, target any) error
}

// Cursor provides iteration over a result sequence.
type Cursor interface {
	// Next advances the cursor to the next document, returning true if
	// available.
	Next() bool
	// Scan decodes the current document into the target.
	Scan(ctx context.Context, target any) error
	// All drains the cursor and decodes every document into the target
	// slice.
	All(ctx context.Context, target any) error
	// Err returns any error that occurred during iteration.
	Err() error
	// Close releases cursor resources.
	Close() error
}

// Journal records applied store mutations for crash recovery.
type Journal interface {
	// Record appends one entry to the journal.
	Record(ctx context.Context, entry JournalEntry) error
	// Replay streams the journaled entries back in append order.
	Replay(ctx context.Context) iter.Seq2[JournalEntry, error]
	// Drop removes the journal datafile.
	Drop() error
	// Close releases the datafile lock.
	Close() error
}
