package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle; its concrete type is infra-defined
// (pgx.Tx for Postgres). Repositories MUST accept NoTX and fall back to the pool.
type Tx interface{}

var NoTX interface{}

// TransactionManager executes fn inside a single database transaction.
// If fn returns an error the transaction is rolled back, otherwise committed.
//
// USAGE
//
//	tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx Tx) error {
//		code, err := codes.MarkUsed(ctx, tx, "ABC123", userID, now)
//		...
//		_, err = enrollments.Create(ctx, tx, userID, code.ClassID, now)
//		return err
//	})
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
