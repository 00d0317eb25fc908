package compiler

import "github.com/vinicius-lino-figueiredo/docmap/domain"

// WithResolver sets the resolver used to address dirty nodes.
func WithResolver(r domain.Resolver) Option {
	return func(c *Compiler) {
		c.resolver = r
	}
}

// Option configures compiler behavior through the functional options pattern.
type Option func(*Compiler)
