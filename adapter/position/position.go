// Package position contains the default [domain.Resolver] implementation and
// the path strategy set: one [domain.Strategy] per association kind, each
// producing the address contribution and operator pair for that topology.
package position

import (
	"strconv"

	"github.com/vinicius-lino-figueiredo/docmap/domain"
)

// For returns the strategy for an association kind. The set is a closed
// tagged union: exactly one strategy applies to a node at any time.
func For(kind domain.Kind) domain.Strategy {
	switch kind {
	case domain.KindEmbedsOne:
		return embedsOne{}
	case domain.KindEmbedsMany:
		return embedsMany{}
	default:
		return root{}
	}
}

// root is the strategy for top-level documents. Roots are inserted and
// deleted whole, so they carry no operator pair and their position is empty:
// updates for root fields use unqualified field names.
type root struct{}

// Position implements [domain.Strategy].
func (root) Position(domain.Node) (string, error) { return "", nil }

// InsertOperator implements [domain.Strategy].
func (root) InsertOperator() string { return "" }

// DeleteOperator implements [domain.Strategy].
func (root) DeleteOperator() string { return "" }

// embedsOne is the strategy for singular subdocuments: attaching overwrites
// a single subfield and detaching clears it.
type embedsOne struct{}

// Position implements [domain.Strategy].
func (embedsOne) Position(n domain.Node) (string, error) {
	parent, err := parentPosition(n)
	if err != nil {
		return "", err
	}
	return join(parent, n.Association().Key), nil
}

// InsertOperator implements [domain.Strategy].
func (embedsOne) InsertOperator() string { return domain.OpSet }

// DeleteOperator implements [domain.Strategy].
func (embedsOne) DeleteOperator() string { return domain.OpUnset }

// embedsMany is the strategy for array members: attaching pushes an element
// and detaching pulls it, never disturbing siblings. Persisted members carry
// their array slot as a numeric suffix; a not-yet-persisted member resolves
// to the array itself, the address a brand-new element is pushed to.
type embedsMany struct{}

// Position implements [domain.Strategy].
func (embedsMany) Position(n domain.Node) (string, error) {
	parent, err := parentPosition(n)
	if err != nil {
		return "", err
	}
	pos := join(parent, n.Association().Key)
	if idx, ok := n.Index(); ok {
		pos = join(pos, strconv.Itoa(idx))
	}
	return pos, nil
}

// InsertOperator implements [domain.Strategy].
func (embedsMany) InsertOperator() string { return domain.OpPush }

// DeleteOperator implements [domain.Strategy].
func (embedsMany) DeleteOperator() string { return domain.OpPull }

func parentPosition(n domain.Node) (string, error) {
	parent := n.Parent()
	if parent == nil {
		return "", domain.ErrAddressing{Key: n.Association().Key, Kind: n.Association().Kind}
	}
	return For(parent.Association().Kind).Position(parent)
}

// join concatenates address segments, skipping empty contributions so root
// positions never produce a leading separator.
func join(parent, segment string) string {
	if parent == "" {
		return segment
	}
	return parent + "." + segment
}

// Resolver implements [domain.Resolver] by delegating to the strategy of the
// node's association kind.
type Resolver struct{}

// NewResolver returns a new implementation of [domain.Resolver].
func NewResolver() domain.Resolver {
	return &Resolver{}
}

// Resolve implements [domain.Resolver]. Addressing is purely structural, so
// nodes under unsaved ancestors still resolve as long as the chain reaches a
// root.
func (r *Resolver) Resolve(n domain.Node) (string, error) {
	return For(n.Association().Kind).Position(n)
}
