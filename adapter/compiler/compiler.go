// Package compiler contains the default [domain.Compiler] implementation: it
// aggregates the dirty state reachable from a root into one minimal
// multi-operator update command.
package compiler

import (
	"github.com/vinicius-lino-figueiredo/docmap/adapter/position"
	"github.com/vinicius-lino-figueiredo/docmap/domain"
)

// Compiler implements [domain.Compiler].
type Compiler struct {
	resolver domain.Resolver
}

// NewCompiler returns a new implementation of [domain.Compiler].
func NewCompiler(options ...Option) domain.Compiler {
	c := &Compiler{}
	for _, option := range options {
		option(c)
	}
	if c.resolver == nil {
		c.resolver = position.NewResolver()
	}
	return c
}

// Compile implements [domain.Compiler]. It never mutates the graph: dirty
// markers are cleared by the caller once the store confirms the write, which
// keeps the command at-most-once-applied.
func (c *Compiler) Compile(root domain.Node) (domain.UpdateCommand, error) {
	cmd := domain.UpdateCommand{}
	if err := c.compileNode(root, cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

func (c *Compiler) compileNode(n domain.Node, cmd domain.UpdateCommand) error {
	addr, err := c.resolver.Resolve(n)
	if err != nil {
		return err
	}

	for field, change := range n.Changes() {
		path := join(addr, field)
		if change.New == domain.Unset {
			if err := cmd.Merge(domain.OpUnset, path, true); err != nil {
				return err
			}
			continue
		}
		if err := cmd.Merge(domain.OpSet, path, change.New); err != nil {
			return err
		}
	}

	added := n.Added()
	if err := c.compileAdded(addr, added, cmd); err != nil {
		return err
	}
	if err := c.compileRemoved(addr, n.Removed(), added, cmd); err != nil {
		return err
	}

	// Children queued for insertion travel whole inside their push or
	// set value, so only persisted children are walked for their own
	// dirty state.
	for child := range n.Children() {
		if !child.Persisted() {
			continue
		}
		if err := c.compileNode(child, cmd); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileAdded(addr string, added map[string][]domain.Node, cmd domain.UpdateCommand) error {
	for key, children := range added {
		assoc := children[0].Association()
		strategy := position.For(assoc.Kind)
		target := join(addr, key)

		if assoc.Kind == domain.KindEmbedsOne {
			// reassignments collapse to the last attached child
			child := children[len(children)-1]
			if err := cmd.Merge(strategy.InsertOperator(), target, child.Raw()); err != nil {
				return err
			}
			continue
		}

		// several pushes to one array batch into a single $each entry,
		// a store forbids two operators touching the same path in one
		// command
		if len(children) == 1 {
			if err := cmd.Merge(strategy.InsertOperator(), target, children[0].Raw()); err != nil {
				return err
			}
			continue
		}
		members := make([]any, len(children))
		for i, child := range children {
			members[i] = child.Raw()
		}
		each := map[string]any{domain.OpEach: members}
		if err := cmd.Merge(strategy.InsertOperator(), target, each); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileRemoved(addr string, removed, added map[string][]domain.Node, cmd domain.UpdateCommand) error {
	for key, children := range removed {
		assoc := children[0].Association()
		strategy := position.For(assoc.Kind)
		target := join(addr, key)

		if assoc.Kind == domain.KindEmbedsOne {
			if _, replaced := added[key]; replaced {
				// the replacement's set supersedes the unset
				continue
			}
			if err := cmd.Merge(strategy.DeleteOperator(), target, true); err != nil {
				return err
			}
			continue
		}

		criterion := pullCriterion(children)
		if err := cmd.Merge(strategy.DeleteOperator(), target, criterion); err != nil {
			return err
		}
	}
	return nil
}

// pullCriterion builds the match document for removed array members: by
// identity when every member has one, by full value otherwise.
func pullCriterion(children []domain.Node) map[string]any {
	ids := make([]any, 0, len(children))
	for _, child := range children {
		id := child.Identity()
		if id == nil {
			ids = nil
			break
		}
		ids = append(ids, id)
	}

	if ids != nil {
		if len(ids) == 1 {
			return map[string]any{"_id": ids[0]}
		}
		return map[string]any{"_id": map[string]any{"$in": ids}}
	}

	members := make([]any, len(children))
	for i, child := range children {
		members[i] = child.Raw()
	}
	return map[string]any{"$in": members}
}

func join(parent, segment string) string {
	if parent == "" {
		return segment
	}
	return parent + "." + segment
}
