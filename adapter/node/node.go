// Package node contains the default [domain.Node] implementation: a document
// graph node with field-level change tracking and queued child insertions and
// removals.
package node

import (
	"iter"
	"maps"

	"github.com/vinicius-lino-figueiredo/docmap/domain"
)

// IdentityKey is the storage key of the primary-key value in raw documents.
const IdentityKey = "_id"

// Node implements [domain.Node].
type Node struct {
	identity   any
	collection string
	assoc      domain.Association
	parent     domain.Node
	index      int
	hasIndex   bool
	persisted  bool

	// current scalar values, kept apart from the change log so compiling
	// can be tested in isolation.
	fields   map[string]any
	changes  map[string]domain.Change
	children map[string][]domain.Node
	added    map[string][]domain.Node
	removed  map[string][]domain.Node
}

// NewRoot returns a new root [domain.Node] for the given collection. The
// value may be nil, a map or a struct; nested maps become embeds-one
// children and arrays of maps become embeds-many children.
func NewRoot(collection string, value any, options ...Option) (*Node, error) {
	n := newNode(nil, domain.Association{Kind: domain.KindRoot})
	n.collection = collection

	fields, err := valueFields(value)
	if err != nil {
		return nil, err
	}
	n.adopt(fields)

	var opts config
	for _, option := range options {
		option(&opts)
	}
	if opts.identity != nil {
		n.identity = opts.identity
	}
	if opts.persisted {
		n.MarkPersisted()
	}
	return n, nil
}

func newNode(parent domain.Node, assoc domain.Association) *Node {
	return &Node{
		assoc:    assoc,
		parent:   parent,
		fields:   map[string]any{},
		changes:  map[string]domain.Change{},
		children: map[string][]domain.Node{},
		added:    map[string][]domain.Node{},
		removed:  map[string][]domain.Node{},
	}
}

// adopt splits parsed fields into scalar values and embedded children.
// Called only during construction, so nothing is logged as a change.
func (n *Node) adopt(fields map[string]any) {
	for k, v := range fields {
		if k == IdentityKey {
			n.identity = v
			continue
		}
		switch t := v.(type) {
		case map[string]any:
			child := newNode(n, domain.Association{Kind: domain.KindEmbedsOne, Key: k})
			child.adopt(t)
			n.children[k] = []domain.Node{child}
		case []any:
			members, ok := memberFields(t)
			if !ok {
				n.fields[k] = v
				continue
			}
			nodes := make([]domain.Node, len(members))
			for i, m := range members {
				child := newNode(n, domain.Association{Kind: domain.KindEmbedsMany, Key: k})
				child.adopt(m)
				nodes[i] = child
			}
			n.children[k] = nodes
		default:
			n.fields[k] = v
		}
	}
}

// memberFields reports whether every member of a raw array is a document,
// meaning the array holds embeds-many children rather than scalar values.
func memberFields(values []any) ([]map[string]any, bool) {
	if len(values) == 0 {
		return nil, false
	}
	members := make([]map[string]any, len(values))
	for i, v := range values {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		members[i] = m
	}
	return members, true
}

// Identity implements [domain.Node].
func (n *Node) Identity() any { return n.identity }

// SetIdentity implements [domain.Node].
func (n *Node) SetIdentity(id any) { n.identity = id }

// Collection implements [domain.Node].
func (n *Node) Collection() string {
	if n.assoc.Kind == domain.KindRoot || n.parent == nil {
		return n.collection
	}
	return n.parent.Collection()
}

// Parent implements [domain.Node].
func (n *Node) Parent() domain.Node { return n.parent }

// Association implements [domain.Node].
func (n *Node) Association() domain.Association { return n.assoc }

// Index implements [domain.Node].
func (n *Node) Index() (int, bool) { return n.index, n.hasIndex }

// Persisted implements [domain.Node].
func (n *Node) Persisted() bool { return n.persisted }

// Get implements [domain.Node].
func (n *Node) Get(field string) (any, bool) {
	v, ok := n.fields[field]
	return v, ok
}

// Set implements [domain.Node].
func (n *Node) Set(field string, value any) {
	old := n.originalValue(field)
	n.changes[field] = domain.Change{Old: old, New: value}
	n.fields[field] = value
}

// Remove implements [domain.Node].
func (n *Node) Remove(field string) {
	old := n.originalValue(field)
	n.changes[field] = domain.Change{Old: old, New: domain.Unset}
	delete(n.fields, field)
}

// originalValue returns the value a field had before the first pending
// change, so repeated mutations keep reporting the persisted old value.
func (n *Node) originalValue(field string) any {
	if prev, ok := n.changes[field]; ok {
		return prev.Old
	}
	return n.fields[field]
}

// EmbedOne implements [domain.Node].
func (n *Node) EmbedOne(key string, value any) (domain.Node, error) {
	fields, err := valueFields(value)
	if err != nil {
		return nil, err
	}
	child := newNode(n, domain.Association{Kind: domain.KindEmbedsOne, Key: key})
	child.adopt(fields)

	for _, current := range n.children[key] {
		n.queueRemoval(key, current)
	}
	n.children[key] = []domain.Node{child}
	n.added[key] = []domain.Node{child}
	return child, nil
}

// Append implements [domain.Node].
func (n *Node) Append(key string, value any) (domain.Node, error) {
	fields, err := valueFields(value)
	if err != nil {
		return nil, err
	}
	child := newNode(n, domain.Association{Kind: domain.KindEmbedsMany, Key: key})
	child.adopt(fields)

	n.children[key] = append(n.children[key], child)
	n.added[key] = append(n.added[key], child)
	return child, nil
}

// RemoveChild implements [domain.Node].
func (n *Node) RemoveChild(child domain.Node) {
	key := child.Association().Key
	live := n.children[key]
	for i, c := range live {
		if c == child {
			n.children[key] = append(live[:i:i], live[i+1:]...)
			if len(n.children[key]) == 0 {
				delete(n.children, key)
			}
			n.queueRemoval(key, child)
			return
		}
	}
}

// queueRemoval records a detached child for an atomic removal. A child that
// was queued for insertion in the same unit of work is discarded instead:
// the store never saw it, so there is nothing to pull.
func (n *Node) queueRemoval(key string, child domain.Node) {
	queued := n.added[key]
	for i, c := range queued {
		if c == child {
			n.added[key] = append(queued[:i:i], queued[i+1:]...)
			if len(n.added[key]) == 0 {
				delete(n.added, key)
			}
			return
		}
	}
	n.removed[key] = append(n.removed[key], child)
}

// Changes implements [domain.Node].
func (n *Node) Changes() map[string]domain.Change { return maps.Clone(n.changes) }

// Added implements [domain.Node].
func (n *Node) Added() map[string][]domain.Node { return cloneChildMap(n.added) }

// Removed implements [domain.Node].
func (n *Node) Removed() map[string][]domain.Node { return cloneChildMap(n.removed) }

func cloneChildMap(m map[string][]domain.Node) map[string][]domain.Node {
	res := make(map[string][]domain.Node, len(m))
	for k, v := range m {
		res[k] = append([]domain.Node(nil), v...)
	}
	return res
}

// Children implements [domain.Node].
func (n *Node) Children() iter.Seq[domain.Node] {
	return func(yield func(domain.Node) bool) {
		for _, nodes := range n.children {
			for _, c := range nodes {
				if !yield(c) {
					return
				}
			}
		}
	}
}

// Child returns the live children under the given storage key.
func (n *Node) Child(key string) []domain.Node {
	return append([]domain.Node(nil), n.children[key]...)
}

// Dirty implements [domain.Node].
func (n *Node) Dirty() bool {
	if len(n.changes) > 0 || len(n.added) > 0 || len(n.removed) > 0 {
		return true
	}
	for c := range n.Children() {
		if c.Dirty() {
			return true
		}
	}
	return false
}

// Raw implements [domain.Node].
func (n *Node) Raw() map[string]any {
	res := make(map[string]any, len(n.fields)+len(n.children)+1)
	if n.identity != nil {
		res[IdentityKey] = n.identity
	}
	maps.Copy(res, n.fields)
	for key, nodes := range n.children {
		first := nodes[0]
		if first.Association().Kind == domain.KindEmbedsOne {
			res[key] = first.Raw()
			continue
		}
		members := make([]any, len(nodes))
		for i, c := range nodes {
			members[i] = c.Raw()
		}
		res[key] = members
	}
	return res
}

// MarkPersisted implements [domain.Node].
func (n *Node) MarkPersisted() {
	n.persisted = true
	clear(n.changes)
	clear(n.added)
	clear(n.removed)
	for _, nodes := range n.children {
		for i, c := range nodes {
			child, ok := c.(*Node)
			if !ok {
				c.MarkPersisted()
				continue
			}
			if child.assoc.Kind == domain.KindEmbedsMany {
				child.index = i
				child.hasIndex = true
			}
			child.MarkPersisted()
		}
	}
}
