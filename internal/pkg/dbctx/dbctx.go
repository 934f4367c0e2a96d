package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// WithCtx keeps the transaction and swaps the context, for fan-out
// goroutines and detached work that must stay on the caller's Tx.
func (c Context) WithCtx(ctx context.Context) Context {
	return Context{Ctx: ctx, Tx: c.Tx}
}
