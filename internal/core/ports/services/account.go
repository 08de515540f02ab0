package services

import (
	"context"

	"github.com/SscSPs/ledgerbook/internal/core/domain"
	"github.com/SscSPs/ledgerbook/internal/dto"
)

// AccountReaderSvc defines read operations for the chart of accounts
type AccountReaderSvc interface {
	// GetAccountByID retrieves a single account.
	GetAccountByID(ctx context.Context, accountID string, actor domain.Actor) (*domain.Account, error)

	// ListAccounts retrieves accounts ordered by code.
	ListAccounts(ctx context.Context, filter domain.AccountFilter, actor domain.Actor) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for the chart of accounts
type AccountWriterSvc interface {
	// CreateAccount registers a new active account.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actor domain.Actor) (*domain.Account, error)

	// UpdateAccount applies a patch to an account. The account type is immutable.
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, actor domain.Actor) (*domain.Account, error)

	// DeactivateAccount soft-deletes an account that has no active children.
	DeactivateAccount(ctx context.Context, accountID string, actor domain.Actor) error
}

// AccountSvcFacade combines all account service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
