// Package cursor contains the default [domain.Cursor] implementation.
package cursor

import (
	"context"
	"iter"

	"github.com/goccy/go-reflect"

	"github.com/vinicius-lino-figueiredo/docmap/adapter/decoder"
	"github.com/vinicius-lino-figueiredo/docmap/domain"
)

// Cursor implements [domain.Cursor]. It consumes a raw document sequence
// lazily, one document per Next call.
type Cursor struct {
	ctx     context.Context
	cancel  context.CancelCauseFunc
	next    func() (map[string]any, error, bool)
	stop    func()
	dec     domain.Decoder
	current map[string]any
	started bool
}

// NewCursor returns a new implementation of [domain.Cursor] over the given
// document sequence.
func NewCursor(ctx context.Context, seq iter.Seq2[map[string]any, error], options ...Option) (domain.Cursor, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	cfg := config{
		decoder: decoder.NewDecoder(),
	}
	for _, option := range options {
		option(&cfg)
	}

	ctx, cancel := context.WithCancelCause(ctx)
	next, stop := iter.Pull2(seq)
	cur := &Cursor{
		ctx:    ctx,
		cancel: cancel,
		next:   next,
		stop:   stop,
		dec:    cfg.decoder,
	}

	return cur, nil
}

// Next implements [domain.Cursor].
func (c *Cursor) Next() bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
	}

	doc, err, ok := c.next()
	if !ok {
		return false
	}
	if err != nil {
		c.cancel(err)
		return false
	}
	c.current = doc
	c.started = true
	return true
}

// Scan implements [domain.Cursor].
func (c *Cursor) Scan(ctx context.Context, target any) error {
	select {
	case <-c.ctx.Done():
		return context.Cause(c.ctx)
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if !c.started {
		return domain.ErrScanBeforeNext
	}
	return c.dec.Decode(c.current, target)
}

// All implements [domain.Cursor]. It drains the remaining documents into the
// slice pointed to by target and closes the cursor.
func (c *Cursor) All(ctx context.Context, target any) error {
	if target == nil {
		return domain.ErrTargetNil
	}
	value := reflect.ValueOf(target)
	if value.Kind() != reflect.Ptr || value.Elem().Kind() != reflect.Slice {
		return domain.ErrNonPointer
	}

	slice := value.Elem()
	for c.Next() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		elem := reflect.New(slice.Type().Elem())
		if err := c.dec.Decode(c.current, elem.Interface()); err != nil {
			return err
		}
		slice = reflect.Append(slice, elem.Elem())
	}
	if err := context.Cause(c.ctx); err != nil {
		return err
	}
	value.Elem().Set(slice)
	return c.Close()
}

// Err implements [domain.Cursor].
func (c *Cursor) Err() error {
	return context.Cause(c.ctx)
}

// Close implements [domain.Cursor].
func (c *Cursor) Close() error {
	select {
	case <-c.ctx.Done():
		return context.Cause(c.ctx)
	default:
	}
	c.cancel(domain.ErrCursorClosed)
	c.stop()
	c.current = nil
	return nil
}
