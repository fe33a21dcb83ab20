package handlers

import (
	"context"
	"net/http"
	"sync"
)

type areaMemoKey struct{}

type areaMemo struct {
	once  sync.Once
	names []string
	err   error
}

// WithAreaMemo gives each request its own area-name slot, so the navigation
// list is loaded at most once per request.
func WithAreaMemo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), areaMemoKey{}, &areaMemo{})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func memoAreaNames(ctx context.Context, load func(context.Context) ([]string, error)) ([]string, error) {
	memo, ok := ctx.Value(areaMemoKey{}).(*areaMemo)
	if !ok {
		return load(ctx)
	}

	memo.once.Do(func() {
		memo.names, memo.err = load(ctx)
	})
	return memo.names, memo.err
}
