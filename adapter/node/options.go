package node

type config struct {
	identity  any
	persisted bool
}

// WithIdentity sets the root's primary-key value, overriding any identity
// present in the source value.
func WithIdentity(id any) Option {
	return func(c *config) {
		c.identity = id
	}
}

// AsPersisted marks the whole graph as already saved, assigning array slots
// to embeds-many members in document order. Used when hydrating nodes from
// documents read back from the store.
func AsPersisted() Option {
	return func(c *config) {
		c.persisted = true
	}
}

// Option configures root construction through the functional options pattern.
type Option func(*config)
