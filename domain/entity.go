package domain

import "fmt"

// Kind identifies how a node is attached to the persisted document tree.
type Kind int

const (
	// KindRoot marks an independent top-level document.
	KindRoot Kind = iota
	// KindEmbedsOne marks a child stored as a single subdocument of its
	// parent.
	KindEmbedsOne
	// KindEmbedsMany marks a child stored as a member of an array in its
	// parent.
	KindEmbedsMany
)

// String implements [fmt.Stringer].
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindEmbedsOne:
		return "embeds-one"
	case KindEmbedsMany:
		return "embeds-many"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Association describes the attachment of a node to its parent: the kind of
// embedding and the storage key the node lives under.
type Association struct {
	Kind Kind
	Key  string
}

// Change records a single field mutation as an old/new value pair. A removal
// is recorded with [Unset] as the new value.
type Change struct {
	Old any
	New any
}

type unsetValue struct{}

// String implements [fmt.Stringer].
func (unsetValue) String() string { return "<unset>" }

// Unset is the removal sentinel stored as [Change.New] when a field is
// removed rather than assigned.
var Unset unsetValue

// Update operator names understood by the store boundary.
const (
	// OpSet assigns the value at the address.
	OpSet = "$set"
	// OpUnset clears the address.
	OpUnset = "$unset"
	// OpPush appends to the array at the address.
	OpPush = "$push"
	// OpPull removes matching members from the array at the address.
	OpPull = "$pull"
	// OpEach wraps multiple pushed values inside a single OpPush entry.
	OpEach = "$each"
)

// UpdateCommand is the compiled result of one save: a mapping from operator
// name to a mapping from dotted address to value. Within one command each
// address belongs to at most one operator.
type UpdateCommand map[string]map[string]any

// Merge records value under the given operator and address. It returns
// [ErrConflictingOperator] if the address is already targeted by a different
// operator in this command.
func (c UpdateCommand) Merge(op, address string, value any) error {
	for other, addresses := range c {
		if other == op {
			continue
		}
		if _, ok := addresses[address]; ok {
			return ErrConflictingOperator{
				Address:  address,
				Previous: other,
				Next:     op,
			}
		}
	}
	addresses := c[op]
	if addresses == nil {
		addresses = make(map[string]any)
		c[op] = addresses
	}
	addresses[address] = value
	return nil
}

// Empty reports whether the command contains no operations.
func (c UpdateCommand) Empty() bool { return len(c) == 0 }

// Order is the direction of one sort criterion.
type Order int

const (
	// Ascending sorts smallest value first.
	Ascending Order = 1
	// Descending sorts greatest value first.
	Descending Order = -1
)

// SortKey represents a single field and the order which should be used to
// sort it.
type SortKey struct {
	Key   string
	Order Order
}

// Query represents one read against a collection: an equality filter over
// dotted addresses, an ordered list of sort criteria and an optional
// projection of the fields to keep.
type Query struct {
	Collection string
	Filter     map[string]any
	Sort       []SortKey
	Projection []string
}

// Fingerprint is the normalized identity of a [Query], used as the query
// cache key. Two queries that differ only in filter key order produce the
// same fingerprint. It retains the collection name so writes can invalidate
// every entry that touches the collection.
type Fingerprint struct {
	Collection string
	Sum        uint64
}

// String implements [fmt.Stringer].
func (f Fingerprint) String() string {
	return fmt.Sprintf("%s/%016x", f.Collection, f.Sum)
}

// JournalOp names one journaled store mutation.
type JournalOp string

const (
	// JournalInsert records a whole-document insert.
	JournalInsert JournalOp = "insert"
	// JournalUpdate records an applied update command.
	JournalUpdate JournalOp = "update"
	// JournalDelete records a document removal.
	JournalDelete JournalOp = "delete"
)

// JournalEntry is one line of the append-only mutation journal.
type JournalEntry struct {
	Op         JournalOp      `json:"op"`
	Collection string         `json:"collection"`
	Identity   any            `json:"id"`
	Document   map[string]any `json:"doc,omitempty"`
	Command    UpdateCommand  `json:"command,omitempty"`
}
