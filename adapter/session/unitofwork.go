package session

import "context"

type unitOfWorkKey struct{}

// Enable returns a context under which reads are memoized by the query
// cache.
func Enable(ctx context.Context) context.Context {
	return context.WithValue(ctx, unitOfWorkKey{}, true)
}

// Enabled reports whether the context belongs to a unit of work.
func Enabled(ctx context.Context) bool {
	on, _ := ctx.Value(unitOfWorkKey{}).(bool)
	return on
}

// Run executes fn as one unit of work. The query cache is active for the
// duration of fn and cleared when it returns, whether normally, with an
// error or by panicking.
func (s *Session) Run(ctx context.Context, fn func(context.Context) error) error {
	defer s.cache.ClearAll()
	return fn(Enable(ctx))
}
