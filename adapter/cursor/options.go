package cursor

import "github.com/vinicius-lino-figueiredo/docmap/domain"

type config struct {
	decoder domain.Decoder
}

// Option configures a [Cursor].
type Option func(*config)

// WithDecoder sets the decoder used by Scan and All.
func WithDecoder(dec domain.Decoder) Option {
	return func(c *config) {
		c.decoder = dec
	}
}
