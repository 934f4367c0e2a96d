package ctxutil

import (
	"context"
	"time"
)

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// Detached keeps the values of ctx (trace ids, request data) but drops its
// cancellation, so follow-up work outlives the request that triggered it.
func Detached(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(Default(ctx))
	if timeout <= 0 {
		return base, func() {}
	}
	return context.WithTimeout(base, timeout)
}
