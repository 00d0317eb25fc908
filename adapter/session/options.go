package session

import "github.com/vinicius-lino-figueiredo/docmap/domain"

type config struct {
	cache    domain.Cache
	compiler domain.Compiler
	fper     domain.Fingerprinter
	dec      domain.Decoder
}

// Option configures a [Session].
type Option func(*config)

// WithCache sets the query cache used inside units of work.
func WithCache(cache domain.Cache) Option {
	return func(c *config) {
		c.cache = cache
	}
}

// WithCompiler sets the update compiler used by Save.
func WithCompiler(compiler domain.Compiler) Option {
	return func(c *config) {
		c.compiler = compiler
	}
}

// WithFingerprinter sets the fingerprinter used to key cache entries.
func WithFingerprinter(fper domain.Fingerprinter) Option {
	return func(c *config) {
		c.fper = fper
	}
}

// WithDecoder sets the decoder handed to cursors.
func WithDecoder(dec domain.Decoder) Option {
	return func(c *config) {
		c.dec = dec
	}
}
