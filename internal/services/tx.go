package services

import (
	"gorm.io/gorm"

	"github.com/MAximeXX/AIEval/internal/pkg/ctxutil"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
)

// inTx runs fn inside dbc's transaction when the caller already opened one,
// otherwise inside a fresh transaction on db.
func inTx(db *gorm.DB, dbc dbctx.Context, fn func(dbc dbctx.Context) error) error {
	if dbc.Tx != nil {
		return fn(dbc)
	}
	ctx := ctxutil.Default(dbc.Ctx)
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}
