package toolctx

import "context"

type contextKey struct{}

// NewContext returns a context carrying the turn's tool context store.
func NewContext(ctx context.Context, store *Store) context.Context {
	return context.WithValue(ctx, contextKey{}, store)
}

// FromContext returns the store attached to ctx, or nil when absent. Tools
// that run outside a turn should treat a nil store as "no shared state".
func FromContext(ctx context.Context) *Store {
	store, _ := ctx.Value(contextKey{}).(*Store)
	return store
}
