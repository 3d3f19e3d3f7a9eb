package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

// TransactionManager provides a thin abstraction to execute a function
// within a database transaction, passing the underlying transaction
// handle via the `tx` argument.
//
// Keeping the handle opaque keeps use-case interfaces clean: repository
// methods accept `tx Tx`, detect a concrete pgx.Tx implementation-side,
// and must gracefully accept nil (non-transactional path).
//
// The reconciliation orchestrator runs its whole mutation sequence
// under one WithTx call so a partial failure after payment capture
// rolls back everything except the gateway-side charge.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
