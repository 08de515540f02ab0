package dto

import (
	"time"

	"github.com/SscSPs/ledgerbook/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TrialBalanceParams defines query parameters for the trial balance.
type TrialBalanceParams struct {
	AsOf        string `form:"asOf" binding:"omitempty,datetime=2006-01-02"` // Defaults to today
	AccountType string `form:"accountType" binding:"omitempty,account_type"`
	IncludeZero bool   `form:"includeZero"`
}

// ProfitAndLossParams defines query parameters for the profit and loss report.
type ProfitAndLossParams struct {
	From string `form:"from" binding:"required,datetime=2006-01-02"`
	To   string `form:"to" binding:"required,datetime=2006-01-02"`
}

// BalanceSheetParams defines query parameters for the balance sheet.
type BalanceSheetParams struct {
	AsOf string `form:"asOf" binding:"omitempty,datetime=2006-01-02"`
}

// LedgerParams defines query parameters for an account ledger.
type LedgerParams struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// TrialBalanceRowResponse represents a row in the trial balance report response
type TrialBalanceRowResponse struct {
	AccountID     string             `json:"accountID"`
	AccountCode   string             `json:"accountCode"`
	AccountName   string             `json:"accountName"`
	AccountType   domain.AccountType `json:"accountType"`
	DebitTotal    decimal.Decimal    `json:"debitTotal"`
	CreditTotal   decimal.Decimal    `json:"creditTotal"`
	DebitBalance  decimal.Decimal    `json:"debitBalance"`
	CreditBalance decimal.Decimal    `json:"creditBalance"`
}

// TrialBalanceResponse represents the trial balance report response
type TrialBalanceResponse struct {
	AsOf        string                    `json:"asOf"`
	AccountType domain.AccountType        `json:"accountType,omitempty"`
	Rows        []TrialBalanceRowResponse `json:"rows"`
	Totals      struct {
		Debit  decimal.Decimal `json:"debit"`
		Credit decimal.Decimal `json:"credit"`
	} `json:"totals"`
	IsBalanced  bool      `json:"isBalanced"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// ToTrialBalanceResponse converts a domain trial balance.
func ToTrialBalanceResponse(r *domain.TrialBalanceReport) TrialBalanceResponse {
	res := TrialBalanceResponse{
		AsOf:        r.AsOf.Format(DateLayout),
		AccountType: r.AccountType,
		Rows:        make([]TrialBalanceRowResponse, len(r.Rows)),
		IsBalanced:  r.IsBalanced,
		GeneratedAt: r.GeneratedAt,
	}
	for i, row := range r.Rows {
		res.Rows[i] = TrialBalanceRowResponse(row)
	}
	res.Totals.Debit = r.TotalDebits
	res.Totals.Credit = r.TotalCredits
	return res
}

// AccountAmountResponse represents an account with its amount in a financial report
type AccountAmountResponse struct {
	AccountID   string                `json:"accountID"`
	AccountCode string                `json:"accountCode"`
	Name        string                `json:"name"`
	SubType     domain.AccountSubType `json:"subType,omitempty"`
	Amount      decimal.Decimal       `json:"amount"`
}

func toAccountAmounts(lines []domain.AccountAmount) []AccountAmountResponse {
	res := make([]AccountAmountResponse, len(lines))
	for i, l := range lines {
		res[i] = AccountAmountResponse{
			AccountID:   l.AccountID,
			AccountCode: l.AccountCode,
			Name:        l.AccountName,
			SubType:     l.SubType,
			Amount:      l.Amount,
		}
	}
	return res
}

// ProfitAndLossResponse represents the profit and loss report response
type ProfitAndLossResponse struct {
	FromDate string                  `json:"fromDate"`
	ToDate   string                  `json:"toDate"`
	Revenue  []AccountAmountResponse `json:"revenue"`
	Expenses []AccountAmountResponse `json:"expenses"`
	Summary  struct {
		TotalRevenue  decimal.Decimal `json:"totalRevenue"`
		TotalExpenses decimal.Decimal `json:"totalExpenses"`
		NetIncome     decimal.Decimal `json:"netIncome"`
	} `json:"summary"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// ToProfitAndLossResponse converts a domain profit and loss report.
func ToProfitAndLossResponse(r *domain.ProfitAndLossReport) ProfitAndLossResponse {
	res := ProfitAndLossResponse{
		FromDate:    r.DateFrom.Format(DateLayout),
		ToDate:      r.DateTo.Format(DateLayout),
		Revenue:     toAccountAmounts(r.Revenue),
		Expenses:    toAccountAmounts(r.Expenses),
		GeneratedAt: r.GeneratedAt,
	}
	res.Summary.TotalRevenue = r.TotalRevenue
	res.Summary.TotalExpenses = r.TotalExpenses
	res.Summary.NetIncome = r.NetIncome
	return res
}

// BalanceSheetResponse represents the balance sheet report response
type BalanceSheetResponse struct {
	AsOf        string                  `json:"asOf"`
	Assets      []AccountAmountResponse `json:"assets"`
	Liabilities []AccountAmountResponse `json:"liabilities"`
	Equity      []AccountAmountResponse `json:"equity"`
	Summary     struct {
		TotalAssets      decimal.Decimal `json:"totalAssets"`
		TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
		TotalEquity      decimal.Decimal `json:"totalEquity"`
		CurrentEarnings  decimal.Decimal `json:"currentEarnings"`
	} `json:"summary"`
	IsBalanced  bool      `json:"isBalanced"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// ToBalanceSheetResponse converts a domain balance sheet.
// The current earnings line is listed last under equity.
func ToBalanceSheetResponse(r *domain.BalanceSheetReport) BalanceSheetResponse {
	equity := append(toAccountAmounts(r.Equity), AccountAmountResponse{
		AccountCode: domain.CurrentEarningsCode,
		Name:        "Current Earnings",
		Amount:      r.CurrentEarnings,
	})
	res := BalanceSheetResponse{
		AsOf:        r.AsOf.Format(DateLayout),
		Assets:      toAccountAmounts(r.Assets),
		Liabilities: toAccountAmounts(r.Liabilities),
		Equity:      equity,
		IsBalanced:  r.IsBalanced,
		GeneratedAt: r.GeneratedAt,
	}
	res.Summary.TotalAssets = r.TotalAssets
	res.Summary.TotalLiabilities = r.TotalLiabilities
	res.Summary.TotalEquity = r.TotalEquity
	res.Summary.CurrentEarnings = r.CurrentEarnings
	return res
}

// LedgerRowResponse is one posting in an account ledger.
type LedgerRowResponse struct {
	Date          string          `json:"date"`
	JournalID     string          `json:"journalID"`
	JournalNumber string          `json:"journalNumber"`
	Narration     string          `json:"narration"`
	Reference     string          `json:"reference"`
	Description   string          `json:"description"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Balance       decimal.Decimal `json:"balance"`
}

// LedgerResponse represents an account ledger with its running balance.
type LedgerResponse struct {
	Account        AccountResponse     `json:"account"`
	FromDate       string              `json:"fromDate,omitempty"`
	ToDate         string              `json:"toDate,omitempty"`
	OpeningBalance decimal.Decimal     `json:"openingBalance"`
	Rows           []LedgerRowResponse `json:"rows"`
	TotalDebit     decimal.Decimal     `json:"totalDebit"`
	TotalCredit    decimal.Decimal     `json:"totalCredit"`
	ClosingBalance decimal.Decimal     `json:"closingBalance"`
}

// ToLedgerResponse converts a domain ledger report.
func ToLedgerResponse(r *domain.LedgerReport) LedgerResponse {
	res := LedgerResponse{
		Account:        ToAccountResponse(&r.Account),
		OpeningBalance: r.OpeningBalance,
		Rows:           make([]LedgerRowResponse, len(r.Rows)),
		TotalDebit:     r.TotalDebit,
		TotalCredit:    r.TotalCredit,
		ClosingBalance: r.ClosingBalance,
	}
	if r.DateFrom != nil {
		res.FromDate = r.DateFrom.Format(DateLayout)
	}
	if r.DateTo != nil {
		res.ToDate = r.DateTo.Format(DateLayout)
	}
	for i, row := range r.Rows {
		res.Rows[i] = LedgerRowResponse{
			Date:          row.Date.Format(DateLayout),
			JournalID:     row.JournalID,
			JournalNumber: row.JournalNumber,
			Narration:     row.Narration,
			Reference:     row.Reference,
			Description:   row.Description,
			Debit:         row.Debit,
			Credit:        row.Credit,
			Balance:       row.Balance,
		}
	}
	return res
}
