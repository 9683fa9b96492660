package database

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// WithTx stashes tx in ctx so repositories sharing that ctx join the same
// database transaction instead of each opening their own, letting a
// multi-repository write commit or roll back as a unit.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// Resolve returns the transaction WithTx stashed in ctx, or fallback if
// none is present. Repositories call this instead of referencing their own
// db field directly, so a plain ctx behaves exactly as before and a ctx
// produced inside db.Transaction transparently joins it.
func Resolve(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}
