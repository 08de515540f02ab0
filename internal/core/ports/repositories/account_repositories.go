package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledgerbook/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its human-readable code.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs. Unknown IDs are absent from the map.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves accounts ordered by code.
	ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error)

	// ListChildAccounts retrieves the direct children of an account.
	ListChildAccounts(ctx context.Context, parentAccountID string) ([]domain.Account, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces.
// Account writes go through AccountTxRepository inside a unit of work.
type AccountRepositoryFacade interface {
	AccountReader
}

// AccountTxRepository defines account operations available inside a unit of work.
type AccountTxRepository interface {
	// LockAccountsForUpdate selects accounts and locks them until the unit of work ends.
	// Unknown IDs are absent from the map.
	LockAccountsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ApplyBalanceDelta atomically adds delta to an account balance and returns the updated account.
	ApplyBalanceDelta(ctx context.Context, accountID string, delta decimal.Decimal, actorID string, now time.Time) (domain.Account, error)

	// InsertAccount persists a new account. A clashing code yields apperrors.ErrDuplicate.
	InsertAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount rewrites an existing account's details. Balance is never written here.
	UpdateAccount(ctx context.Context, account domain.Account) error
}
