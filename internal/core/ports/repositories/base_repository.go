package repositories

import (
	"context"
)

// LedgerTx is the set of repository operations bound to one unit of work.
type LedgerTx interface {
	AccountTxRepository
	JournalTxRepository
}

// TransactionManager runs a function inside a unit of work.
// The work commits when fn returns nil and rolls back entirely otherwise.
type TransactionManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}
