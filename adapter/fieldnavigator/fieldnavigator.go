// Package fieldnavigator provides dotted-path navigation with numeric array
// indices over raw documents, the addressing scheme update commands use.
package fieldnavigator

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldNavigator reads and writes raw document fields by dotted address.
type FieldNavigator struct{}

// NewFieldNavigator returns a new FieldNavigator.
func NewFieldNavigator() *FieldNavigator {
	return &FieldNavigator{}
}

// Split parses a dotted address into its parts.
func (fn *FieldNavigator) Split(address string) []string {
	return strings.Split(address, ".")
}

// Get returns the value at the address and whether it is defined. Addresses
// through unset keys, out-of-range indices or primitive values are
// undefined.
func (fn *FieldNavigator) Get(doc map[string]any, address string) (any, bool) {
	slot, err := fn.navigate(doc, fn.Split(address), false)
	if err != nil || slot == nil {
		return nil, false
	}
	return slot.get()
}

// Set assigns the value at the address, creating intermediate documents for
// unset keys. Numeric segments address existing array members only.
func (fn *FieldNavigator) Set(doc map[string]any, address string, value any) error {
	slot, err := fn.navigate(doc, fn.Split(address), true)
	if err != nil {
		return err
	}
	slot.set(value)
	return nil
}

// Unset clears the address: keys are deleted, array members are nulled so
// sibling positions are not disturbed. Unset addresses are left alone.
func (fn *FieldNavigator) Unset(doc map[string]any, address string) error {
	slot, err := fn.navigate(doc, fn.Split(address), false)
	if err != nil || slot == nil {
		return err
	}
	slot.unset()
	return nil
}

// Push appends values to the array at the address, creating the array if the
// address is unset.
func (fn *FieldNavigator) Push(doc map[string]any, address string, values ...any) error {
	slot, err := fn.navigate(doc, fn.Split(address), true)
	if err != nil {
		return err
	}
	current, defined := slot.get()
	if !defined || current == nil {
		slot.set(append([]any{}, values...))
		return nil
	}
	arr, ok := current.([]any)
	if !ok {
		return fmt.Errorf("cannot push to %T at %q", current, address)
	}
	slot.set(append(arr, values...))
	return nil
}

// Pull removes every array member at the address for which keep returns
// false. A missing array is a no-op.
func (fn *FieldNavigator) Pull(doc map[string]any, address string, keep func(any) bool) error {
	slot, err := fn.navigate(doc, fn.Split(address), false)
	if err != nil || slot == nil {
		return err
	}
	current, defined := slot.get()
	if !defined || current == nil {
		return nil
	}
	arr, ok := current.([]any)
	if !ok {
		return fmt.Errorf("cannot pull from %T at %q", current, address)
	}
	kept := make([]any, 0, len(arr))
	for _, member := range arr {
		if keep(member) {
			kept = append(kept, member)
		}
	}
	slot.set(kept)
	return nil
}

// navigate walks the document down to the slot holding the last address
// part. With ensure set, missing intermediate keys become new documents;
// without it, an undefined address returns a nil slot and no error.
func (fn *FieldNavigator) navigate(doc map[string]any, parts []string, ensure bool) (slot, error) {
	if len(parts) == 0 || parts[0] == "" {
		return nil, fmt.Errorf("empty address")
	}

	var current any = doc
	for i, part := range parts {
		last := i == len(parts)-1
		switch container := current.(type) {
		case map[string]any:
			if last {
				return docSlot{doc: container, key: part}, nil
			}
			next, ok := container[part]
			if !ok {
				if !ensure {
					return nil, nil
				}
				next = map[string]any{}
				container[part] = next
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("non-numeric index %q in array address", part)
			}
			if idx < 0 || idx >= len(container) {
				if !ensure {
					return nil, nil
				}
				return nil, fmt.Errorf("index %d out of range", idx)
			}
			if last {
				return listSlot{list: container, index: idx}, nil
			}
			current = container[idx]
		default:
			if !ensure {
				return nil, nil
			}
			return nil, fmt.Errorf("cannot navigate through %T", current)
		}
	}
	return nil, nil
}
