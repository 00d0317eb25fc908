package fieldnavigator

// slot is one addressable location in a raw document: a key in a document or
// an index in an array.
type slot interface {
	get() (value any, defined bool)
	set(any)
	unset()
}

// docSlot addresses a key in a document.
type docSlot struct {
	doc map[string]any
	key string
}

func (s docSlot) get() (any, bool) {
	v, ok := s.doc[s.key]
	return v, ok
}

func (s docSlot) set(value any) { s.doc[s.key] = value }

func (s docSlot) unset() { delete(s.doc, s.key) }

// listSlot addresses an index in an array. Unsetting nulls the member so
// sibling indices stay stable.
type listSlot struct {
	list  []any
	index int
}

func (s listSlot) get() (any, bool) {
	if s.index < 0 || s.index >= len(s.list) {
		return nil, false
	}
	return s.list[s.index], true
}

func (s listSlot) set(value any) {
	if s.index >= 0 && s.index < len(s.list) {
		s.list[s.index] = value
	}
}

func (s listSlot) unset() { s.set(nil) }
