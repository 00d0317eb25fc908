package memstore

import (
	"context"
	"fmt"
	"slices"

	"github.com/vinicius-lino-figueiredo/docmap/domain"
)

// ApplyUpdate implements [domain.Store]. The command runs against a copy of
// the stored document and the copy is swapped in only when every operator
// applied, so a failing command leaves the document untouched.
func (m *MemStore) ApplyUpdate(ctx context.Context, name string, identity any, command domain.UpdateCommand) error {
	if err := m.applyUpdate(ctx, name, identity, command); err != nil {
		return err
	}
	return m.record(ctx, domain.JournalEntry{
		Op:         domain.JournalUpdate,
		Collection: name,
		Identity:   identity,
		Command:    command,
	})
}

func (m *MemStore) applyUpdate(ctx context.Context, name string, identity any, command domain.UpdateCommand) error {
	return m.mu.WithLock(ctx, func() error {
		c := m.collection(name)
		doc, ok := c.docs[identity]
		if !ok {
			return fmt.Errorf("updating %v: %w", identity, domain.ErrNotFound)
		}

		next := clone(doc).(map[string]any)
		if err := m.applyCommand(next, command); err != nil {
			return err
		}
		c.docs[identity] = next
		return nil
	})
}

// operatorOrder fixes the application sequence of a command's operators.
// Field writes go first and pulls last, so a pull shrinking an array cannot
// invalidate the member indices that a set or unset in the same command
// addresses.
var operatorOrder = []string{domain.OpSet, domain.OpUnset, domain.OpPush, domain.OpPull}

func (m *MemStore) applyCommand(doc map[string]any, command domain.UpdateCommand) error {
	for _, op := range commandOperators(command) {
		for address, value := range command[op] {
			if err := m.applyOperator(doc, op, address, value); err != nil {
				return fmt.Errorf("applying %s at %q: %w", op, address, err)
			}
		}
	}
	return nil
}

// commandOperators lists a command's operators in application order, with
// unrecognized names sorted last so they surface deterministically.
func commandOperators(command domain.UpdateCommand) []string {
	ops := make([]string, 0, len(command))
	for _, op := range operatorOrder {
		if _, ok := command[op]; ok {
			ops = append(ops, op)
		}
	}
	if len(ops) == len(command) {
		return ops
	}
	var unknown []string
	for op := range command {
		if !slices.Contains(operatorOrder, op) {
			unknown = append(unknown, op)
		}
	}
	slices.Sort(unknown)
	return append(ops, unknown...)
}

func (m *MemStore) applyOperator(doc map[string]any, op, address string, value any) error {
	switch op {
	case domain.OpSet:
		return m.fn.Set(doc, address, clone(value))
	case domain.OpUnset:
		return m.fn.Unset(doc, address)
	case domain.OpPush:
		values := []any{clone(value)}
		if each, ok := eachValues(value); ok {
			values = make([]any, len(each))
			for i, v := range each {
				values[i] = clone(v)
			}
		}
		return m.fn.Push(doc, address, values...)
	case domain.OpPull:
		return m.fn.Pull(doc, address, func(member any) bool {
			return !matchMember(member, value)
		})
	default:
		return domain.ErrUnknownOperator{Name: op}
	}
}

// eachValues unwraps the $each batching envelope of a push value.
func eachValues(value any) ([]any, bool) {
	envelope, ok := value.(map[string]any)
	if !ok || len(envelope) != 1 {
		return nil, false
	}
	each, ok := envelope[domain.OpEach].([]any)
	return each, ok
}

// inCriterion unwraps a {"$in": [...]} criterion.
func inCriterion(value any) ([]any, bool) {
	criterion, ok := value.(map[string]any)
	if !ok || len(criterion) != 1 {
		return nil, false
	}
	in, ok := criterion["$in"].([]any)
	return in, ok
}

// matchMember reports whether an array member satisfies a pull criterion:
// element membership for a top-level $in, field equality (with nested $in)
// for criterion documents, plain equality otherwise.
func matchMember(member any, criterion any) bool {
	crit, ok := criterion.(map[string]any)
	if !ok {
		return valueEqual(member, criterion)
	}
	if in, ok := inCriterion(crit); ok {
		for _, v := range in {
			if valueEqual(member, v) {
				return true
			}
		}
		return false
	}

	fields, ok := member.(map[string]any)
	if !ok {
		return false
	}
	for k, expected := range crit {
		actual := fields[k]
		if in, ok := inCriterion(expected); ok {
			found := false
			for _, v := range in {
				if valueEqual(actual, v) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
			continue
		}
		if !valueEqual(actual, expected) {
			return false
		}
	}
	return true
}
