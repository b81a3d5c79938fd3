// Package repokit holds the seams repos are written against
package repokit

import (
	"context"

	"tiba/internal/platform/store"
)

type (
	// Queryer is what a sql repo runs statements on
	Queryer = store.Querier

	// Transactor is a Queryer that can open transactions
	Transactor = store.Transactor

	Rows       = store.Rows
	Row        = store.Row
	CommandTag = store.CommandTag
)

// WithTx runs fn in a transaction when q supports one and directly on q otherwise
func WithTx(ctx context.Context, q Queryer, fn func(q Queryer) error) error {
	if tx, ok := q.(Transactor); ok {
		return tx.Tx(ctx, fn)
	}
	return fn(q)
}
