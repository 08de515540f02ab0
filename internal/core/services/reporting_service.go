package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/ledgerbook/internal/apperrors"
	"github.com/SscSPs/ledgerbook/internal/core/domain"
	portsrepo "github.com/SscSPs/ledgerbook/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledgerbook/internal/core/ports/services"
	"github.com/SscSPs/ledgerbook/internal/platform/metrics"
	"github.com/SscSPs/ledgerbook/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var errOrphanPosting = errors.New("postings reference an unknown account")

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	accountRepo   portsrepo.AccountReader
	reportingRepo portsrepo.ReportingRepository
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(accountRepo portsrepo.AccountReader, reportingRepo portsrepo.ReportingRepository, opts ...ServiceOption) portssvc.ReportingService {
	return &reportingService{
		BaseService:   newBaseService(opts...),
		accountRepo:   accountRepo,
		reportingRepo: reportingRepo,
	}
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// loadTotals fetches the chart of accounts and the posted totals in [from, to] concurrently.
func (s *reportingService) loadTotals(ctx context.Context, from *time.Time, to time.Time) ([]domain.Account, map[string]domain.AccountTotals, error) {
	var (
		accounts []domain.Account
		totals   []domain.AccountTotals
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = s.accountRepo.ListAccounts(gctx, domain.AccountFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = s.reportingRepo.SumPostedByAccount(gctx, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("failed to load report data: %w", err)
	}

	byAccount := make(map[string]domain.AccountTotals, len(totals))
	for _, t := range totals {
		byAccount[t.AccountID] = t
	}
	known := make(map[string]struct{}, len(accounts))
	for _, acc := range accounts {
		known[acc.AccountID] = struct{}{}
	}
	var unseen []string
	for id := range byAccount {
		if _, ok := known[id]; !ok {
			unseen = append(unseen, id)
		}
	}
	if len(unseen) > 0 {
		// An account created after the chart was read can already carry postings.
		late, err := s.accountRepo.FindAccountsByIDs(ctx, unseen)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load report data: %w", err)
		}
		for _, id := range unseen {
			acc, ok := late[id]
			if !ok {
				return nil, nil, fmt.Errorf("%w: %s", errOrphanPosting, id)
			}
			accounts = append(accounts, acc)
		}
		sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
	}
	return accounts, byAccount, nil
}

// inconsistent logs, counts and wraps a report whose figures do not close.
func (s *reportingService) inconsistent(ctx context.Context, report string, err error) error {
	s.LogError(ctx, err, "Ledger is inconsistent", slog.String("report", report))
	metrics.LedgerInconsistencies.WithLabelValues(report).Inc()
	return apperrors.Wrap(apperrors.KindInternal, apperrors.CodeLedgerInconsistent, report+" does not balance", err)
}

func (s *reportingService) GetTrialBalance(ctx context.Context, asOf time.Time, filter domain.TrialBalanceFilter, actor domain.Actor) (*domain.TrialBalanceReport, error) {
	if err := s.AuthorizeActor(ctx, actor, domain.PermissionRead); err != nil {
		return nil, err
	}
	if filter.AccountType != "" && !filter.AccountType.IsValid() {
		return nil, apperrors.Validationf(apperrors.CodeInvalidInput, "unknown account type '%s'", filter.AccountType)
	}
	asOf = truncateToDate(asOf)

	accounts, totals, err := s.loadTotals(ctx, nil, asOf)
	if err != nil {
		return nil, s.loadFailure(ctx, "trial_balance", err)
	}

	report := &domain.TrialBalanceReport{
		AsOf:         asOf,
		AccountType:  filter.AccountType,
		Rows:         make([]domain.TrialBalanceRow, 0, len(accounts)),
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
		GeneratedAt:  s.now(),
	}
	for _, acc := range accounts {
		if filter.AccountType != "" && acc.AccountType != filter.AccountType {
			continue
		}
		t := totals[acc.AccountID]
		debitBalance, creditBalance, err := accounting.NetToColumns(acc.AccountType, t.Debit, t.Credit)
		if err != nil {
			return nil, apperrors.NewInternal("failed to net account totals", err)
		}
		zero := debitBalance.IsZero() && creditBalance.IsZero()
		if zero && (!acc.IsActive || !filter.IncludeZero) {
			continue
		}
		report.Rows = append(report.Rows, domain.TrialBalanceRow{
			AccountID:     acc.AccountID,
			AccountCode:   acc.Code,
			AccountName:   acc.Name,
			AccountType:   acc.AccountType,
			DebitTotal:    t.Debit,
			CreditTotal:   t.Credit,
			DebitBalance:  debitBalance,
			CreditBalance: creditBalance,
		})
		report.TotalDebits = report.TotalDebits.Add(debitBalance)
		report.TotalCredits = report.TotalCredits.Add(creditBalance)
	}
	report.IsBalanced = accounting.WithinTolerance(report.TotalDebits, report.TotalCredits, s.Settings.BalanceTolerance)

	if !report.IsBalanced && filter.AccountType == "" {
		return nil, s.inconsistent(ctx, "trial_balance",
			fmt.Errorf("debits %s, credits %s", report.TotalDebits.StringFixed(2), report.TotalCredits.StringFixed(2)))
	}

	s.LogDebug(ctx, "Trial balance generated",
		slog.String("as_of", asOf.Format(time.DateOnly)),
		slog.Int("row_count", len(report.Rows)))
	return report, nil
}

func (s *reportingService) GetProfitAndLoss(ctx context.Context, from, to time.Time, actor domain.Actor) (*domain.ProfitAndLossReport, error) {
	if err := s.AuthorizeActor(ctx, actor, domain.PermissionRead); err != nil {
		return nil, err
	}
	from, to = truncateToDate(from), truncateToDate(to)
	if from.After(to) {
		return nil, apperrors.Validationf(apperrors.CodeInvalidInput, "from date must not be after to date")
	}

	accounts, totals, err := s.loadTotals(ctx, &from, to)
	if err != nil {
		return nil, s.loadFailure(ctx, "profit_and_loss", err)
	}

	report := &domain.ProfitAndLossReport{
		DateFrom:      from,
		DateTo:        to,
		Revenue:       []domain.AccountAmount{},
		Expenses:      []domain.AccountAmount{},
		TotalRevenue:  decimal.Zero,
		TotalExpenses: decimal.Zero,
		GeneratedAt:   s.now(),
	}
	for _, acc := range accounts {
		if acc.AccountType != domain.Income && acc.AccountType != domain.Expense {
			continue
		}
		t, ok := totals[acc.AccountID]
		if !ok {
			continue
		}
		amount, err := accounting.SignedDelta(acc.AccountType, t.Debit, t.Credit)
		if err != nil {
			return nil, apperrors.NewInternal("failed to net account totals", err)
		}
		if amount.IsZero() {
			continue
		}
		line := toAccountAmount(acc, amount)
		if acc.AccountType == domain.Income {
			report.Revenue = append(report.Revenue, line)
			report.TotalRevenue = report.TotalRevenue.Add(amount)
		} else {
			report.Expenses = append(report.Expenses, line)
			report.TotalExpenses = report.TotalExpenses.Add(amount)
		}
	}
	report.NetIncome = report.TotalRevenue.Sub(report.TotalExpenses)
	return report, nil
}

func (s *reportingService) GetBalanceSheet(ctx context.Context, asOf time.Time, actor domain.Actor) (*domain.BalanceSheetReport, error) {
	if err := s.AuthorizeActor(ctx, actor, domain.PermissionRead); err != nil {
		return nil, err
	}
	asOf = truncateToDate(asOf)

	accounts, totals, err := s.loadTotals(ctx, nil, asOf)
	if err != nil {
		return nil, s.loadFailure(ctx, "balance_sheet", err)
	}

	report := &domain.BalanceSheetReport{
		AsOf:             asOf,
		Assets:           []domain.AccountAmount{},
		Liabilities:      []domain.AccountAmount{},
		Equity:           []domain.AccountAmount{},
		CurrentEarnings:  decimal.Zero,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
		GeneratedAt:      s.now(),
	}
	for _, acc := range accounts {
		t, ok := totals[acc.AccountID]
		if !ok {
			continue
		}
		amount, err := accounting.SignedDelta(acc.AccountType, t.Debit, t.Credit)
		if err != nil {
			return nil, apperrors.NewInternal("failed to net account totals", err)
		}
		switch acc.AccountType {
		case domain.Income:
			report.CurrentEarnings = report.CurrentEarnings.Add(amount)
			continue
		case domain.Expense:
			report.CurrentEarnings = report.CurrentEarnings.Sub(amount)
			continue
		}
		if amount.IsZero() {
			continue
		}
		line := toAccountAmount(acc, amount)
		switch acc.AccountType {
		case domain.Asset:
			report.Assets = append(report.Assets, line)
			report.TotalAssets = report.TotalAssets.Add(amount)
		case domain.Liability:
			report.Liabilities = append(report.Liabilities, line)
			report.TotalLiabilities = report.TotalLiabilities.Add(amount)
		case domain.Equity:
			report.Equity = append(report.Equity, line)
			report.TotalEquity = report.TotalEquity.Add(amount)
		}
	}
	report.TotalEquity = report.TotalEquity.Add(report.CurrentEarnings)
	report.IsBalanced = accounting.WithinTolerance(report.TotalAssets,
		report.TotalLiabilities.Add(report.TotalEquity), s.Settings.BalanceTolerance)

	if !report.IsBalanced {
		return nil, s.inconsistent(ctx, "balance_sheet",
			fmt.Errorf("assets %s, liabilities and equity %s",
				report.TotalAssets.StringFixed(2), report.TotalLiabilities.Add(report.TotalEquity).StringFixed(2)))
	}
	return report, nil
}

func (s *reportingService) GetAccountLedger(ctx context.Context, accountID string, from, to *time.Time, actor domain.Actor) (*domain.LedgerReport, error) {
	if err := s.AuthorizeActor(ctx, actor, domain.PermissionRead); err != nil {
		return nil, err
	}
	if from != nil {
		d := truncateToDate(*from)
		from = &d
	}
	if to != nil {
		d := truncateToDate(*to)
		to = &d
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, apperrors.Validationf(apperrors.CodeInvalidInput, "from date must not be after to date")
	}

	var (
		account *domain.Account
		lines   []domain.PostedLine
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		account, err = s.accountRepo.FindAccountByID(gctx, accountID)
		return err
	})
	g.Go(func() error {
		var err error
		lines, err = s.reportingRepo.ListPostedLinesForAccount(gctx, accountID, to)
		return err
	})
	if err := g.Wait(); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load account ledger", slog.String("account_id", accountID))
		}
		return nil, err
	}

	report := &domain.LedgerReport{
		Account:        *account,
		DateFrom:       from,
		DateTo:         to,
		OpeningBalance: account.OpeningBalance,
		Rows:           []domain.LedgerRow{},
		TotalDebit:     decimal.Zero,
		TotalCredit:    decimal.Zero,
	}
	balance := account.OpeningBalance
	for _, l := range lines {
		delta, err := accounting.SignedDelta(account.AccountType, l.Debit, l.Credit)
		if err != nil {
			return nil, apperrors.NewInternal("failed to replay account ledger", err)
		}
		balance = balance.Add(delta)
		if from != nil && l.Date.Before(*from) {
			report.OpeningBalance = balance
			continue
		}
		report.Rows = append(report.Rows, domain.LedgerRow{
			Date:          l.Date,
			JournalID:     l.JournalID,
			JournalNumber: l.JournalNumber,
			Narration:     l.Narration,
			Reference:     l.Reference,
			Description:   l.Description,
			Debit:         l.Debit,
			Credit:        l.Credit,
			Balance:       balance,
		})
		report.TotalDebit = report.TotalDebit.Add(l.Debit)
		report.TotalCredit = report.TotalCredit.Add(l.Credit)
	}
	report.ClosingBalance = balance
	return report, nil
}

// loadFailure reports a failure to load report data, treating orphaned postings as an inconsistency.
func (s *reportingService) loadFailure(ctx context.Context, report string, err error) error {
	if errors.Is(err, errOrphanPosting) {
		return s.inconsistent(ctx, report, err)
	}
	s.LogError(ctx, err, "Failed to load report data", slog.String("report", report))
	return err
}

func toAccountAmount(acc domain.Account, amount decimal.Decimal) domain.AccountAmount {
	return domain.AccountAmount{
		AccountID:   acc.AccountID,
		AccountCode: acc.Code,
		AccountName: acc.Name,
		SubType:     acc.SubType,
		Amount:      amount,
	}
}
