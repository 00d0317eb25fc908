// Package docmap maps in-memory document graphs onto a hierarchical document
// store with atomic, minimal updates.
//
// A document graph starts at a root [Node] created with [NewRoot]. Embedded
// documents hang off their parent as singular (embeds-one) or array-member
// (embeds-many) children, and every node knows its dotted address inside the
// root document. Saving a persisted graph compiles only the pending changes
// into one multi-operator update command instead of rewriting the whole
// document.
//
// The basic usage starts with creating a [Session] over a [Store] by calling
// [NewSession]. Reads performed inside [Session.Run] are memoized by a query
// cache scoped to that unit of work; writes invalidate the written
// collection's entries.
package docmap

import (
	"github.com/vinicius-lino-figueiredo/docmap/adapter/journal"
	"github.com/vinicius-lino-figueiredo/docmap/adapter/memstore"
	"github.com/vinicius-lino-figueiredo/docmap/adapter/node"
	"github.com/vinicius-lino-figueiredo/docmap/adapter/session"
	"github.com/vinicius-lino-figueiredo/docmap/domain"
)

var (
	// ErrTargetNil is returned when user provides a nil value as a target
	// to decode data, for example, calling [Cursor.Scan].
	ErrTargetNil = domain.ErrTargetNil
	// ErrNonPointer is returned when a decode target is passed by value.
	ErrNonPointer = domain.ErrNonPointer
	// ErrCursorClosed is returned when trying to perform operations on a
	// closed [Cursor].
	ErrCursorClosed = domain.ErrCursorClosed
	// ErrScanBeforeNext is returned when calling [Cursor.Scan] before
	// calling [Cursor.Next].
	ErrScanBeforeNext = domain.ErrScanBeforeNext
	// ErrNotFound is returned when [Session.FindOne] cannot find any
	// matching result for the given query.
	ErrNotFound = domain.ErrNotFound
	// ErrNotPersisted is returned when an atomic update or delete is
	// requested for a root that was never saved.
	ErrNotPersisted = domain.ErrNotPersisted
)

// ErrAddressing is returned when an atomic address is requested for a node
// detached from any root.
type ErrAddressing = domain.ErrAddressing

// ErrConflictingOperator is returned when one save would target the same
// address with two different update operators.
type ErrConflictingOperator = domain.ErrConflictingOperator

// ErrDecode is returned by [Decoder.Decode] to easily wrap third party
// decoding errors.
type ErrDecode = domain.ErrDecode

// ErrValueType is returned when a value cannot be adopted into a document
// node.
type ErrValueType = domain.ErrValueType

// ErrUnknownOperator is returned by the store when a command carries an
// operator it cannot apply.
type ErrUnknownOperator = domain.ErrUnknownOperator

// Node represents one persisted entity, root or embedded.
type Node = domain.Node

// Store is the boundary to the underlying hierarchical document store.
type Store = domain.Store

// Cache memoizes query results per unit of work.
type Cache = domain.Cache

// Compiler aggregates pending changes into one minimal update command.
type Compiler = domain.Compiler

// Resolver computes atomic addresses for nodes.
type Resolver = domain.Resolver

// Decoder converts raw documents into user-defined types.
type Decoder = domain.Decoder

// Cursor provides iteration over query results.
type Cursor = domain.Cursor

// Journal records applied store mutations for crash recovery.
type Journal = domain.Journal

// UpdateCommand is one compiled multi-operator update.
type UpdateCommand = domain.UpdateCommand

// Query describes one normalized read.
type Query = domain.Query

// SortKey represents a single field and the order which should be used to
// sort it.
type SortKey = domain.SortKey

// Change holds the old and new value of one modified field.
type Change = domain.Change

// Session coordinates saves and reads over one store.
type Session = session.Session

// NewSession returns a new [Session] backed by the given store. The following
// options can be provided to replace defaults:
//
// - [WithCache]: sets the query cache used inside units of work.
//
// - [WithCompiler]: sets the update compiler used by [Session.Save].
//
// - [WithFingerprinter]: sets the fingerprinter used to key cache entries.
//
// - [WithDecoder]: sets the decoder handed to cursors.
func NewSession(store Store, options ...SessionOption) *Session {
	return session.NewSession(store, options...)
}

// NewRoot creates the root node of a new document graph from a struct or
// map value.
func NewRoot(collection string, value any, options ...NodeOption) (*node.Node, error) {
	return node.NewRoot(collection, value, options...)
}

// NewMemStore returns an in-memory [Store] with optional journaling.
func NewMemStore(options ...memstore.Option) *memstore.MemStore {
	return memstore.NewMemStore(options...)
}

// NewJournal returns a file-backed [Journal] suitable for
// [memstore.WithJournal] and [memstore.MemStore.Load].
func NewJournal(path string, options ...journal.Option) (*journal.Journal, error) {
	return journal.NewJournal(path, options...)
}

// SessionOption configures session behavior through the functional options
// pattern.
type SessionOption = session.Option

// WithCache sets the query cache used inside units of work.
func WithCache(cache Cache) SessionOption {
	return session.WithCache(cache)
}

// WithCompiler sets the update compiler used by [Session.Save].
func WithCompiler(compiler Compiler) SessionOption {
	return session.WithCompiler(compiler)
}

// WithFingerprinter sets the fingerprinter used to key cache entries.
func WithFingerprinter(fper domain.Fingerprinter) SessionOption {
	return session.WithFingerprinter(fper)
}

// WithDecoder sets the decoder handed to cursors.
func WithDecoder(dec Decoder) SessionOption {
	return session.WithDecoder(dec)
}

// NodeOption configures root creation through the functional options pattern.
type NodeOption = node.Option

// WithIdentity sets the primary-key value of a root loaded from the store.
func WithIdentity(id any) NodeOption {
	return node.WithIdentity(id)
}

// AsPersisted marks a root as already stored, so saves compile updates
// instead of inserting.
func AsPersisted() NodeOption {
	return node.AsPersisted()
}

// QueryOption configures query behavior through the functional options
// pattern.
type QueryOption = domain.QueryOption

// WithFilter sets the equality filter over dotted addresses.
func WithFilter(filter map[string]any) QueryOption {
	return domain.WithFilter(filter)
}

// WithSort specifies the sort order for query results.
func WithSort(keys ...SortKey) QueryOption {
	return domain.WithSort(keys...)
}

// WithProjection specifies which top-level fields to keep in query results.
func WithProjection(fields ...string) QueryOption {
	return domain.WithProjection(fields...)
}
