package dbctx

import (
	"context"
	"testing"

	"gorm.io/gorm"
)

type ctxKey struct{}

func TestWithCtxKeepsTx(t *testing.T) {
	tx := &gorm.DB{}
	base := Context{Ctx: context.Background(), Tx: tx}
	ctx := context.WithValue(context.Background(), ctxKey{}, "fan-out")

	got := base.WithCtx(ctx)
	if got.Tx != tx {
		t.Fatalf("tx: want=%p got=%p", tx, got.Tx)
	}
	if got.Ctx.Value(ctxKey{}) != "fan-out" {
		t.Fatalf("ctx: want swapped got=%v", got.Ctx.Value(ctxKey{}))
	}
	if base.Ctx.Value(ctxKey{}) != nil {
		t.Fatalf("base ctx mutated")
	}
}
