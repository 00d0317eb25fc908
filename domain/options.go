package domain

// QueryOptions aggregates the settings accepted by [Store.Query] through the
// session's Find operations.
type QueryOptions struct {
	Filter     map[string]any
	Sort       []SortKey
	Projection []string
}

// QueryOption configures one read through the functional options pattern.
type QueryOption func(*QueryOptions)

// WithFilter sets the equality filter over dotted addresses.
func WithFilter(filter map[string]any) QueryOption {
	return func(o *QueryOptions) {
		o.Filter = filter
	}
}

// WithSort sets the sort criteria, applied in sequence.
func WithSort(keys ...SortKey) QueryOption {
	return func(o *QueryOptions) {
		o.Sort = keys
	}
}

// WithProjection keeps only the given top-level fields in results.
func WithProjection(fields ...string) QueryOption {
	return func(o *QueryOptions) {
		o.Projection = fields
	}
}
