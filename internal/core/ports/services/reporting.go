package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledgerbook/internal/core/domain"
)

// ReportingService defines the reports derived from posted journal entries
type ReportingService interface {
	// GetTrialBalance nets every account's postings dated on or before asOf onto debit and credit columns.
	GetTrialBalance(ctx context.Context, asOf time.Time, filter domain.TrialBalanceFilter, actor domain.Actor) (*domain.TrialBalanceReport, error)

	// GetProfitAndLoss summarizes income and expense postings dated in [from, to].
	GetProfitAndLoss(ctx context.Context, from, to time.Time, actor domain.Actor) (*domain.ProfitAndLossReport, error)

	// GetBalanceSheet lists assets, liabilities and equity cumulative through asOf.
	GetBalanceSheet(ctx context.Context, asOf time.Time, actor domain.Actor) (*domain.BalanceSheetReport, error)

	// GetAccountLedger lists the postings of one account with a running balance.
	GetAccountLedger(ctx context.Context, accountID string, from, to *time.Time, actor domain.Actor) (*domain.LedgerReport, error)
}
