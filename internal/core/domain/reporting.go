package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountTotals holds the summed debit and credit columns of postings against one account.
type AccountTotals struct {
	AccountID string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// TrialBalanceRow is one account line in a trial balance.
// Exactly one of DebitBalance and CreditBalance is non-zero for a non-zero net.
type TrialBalanceRow struct {
	AccountID     string          `json:"accountID"`
	AccountCode   string          `json:"accountCode"`
	AccountName   string          `json:"accountName"`
	AccountType   AccountType     `json:"accountType"`
	DebitTotal    decimal.Decimal `json:"debitTotal"`
	CreditTotal   decimal.Decimal `json:"creditTotal"`
	DebitBalance  decimal.Decimal `json:"debitBalance"`
	CreditBalance decimal.Decimal `json:"creditBalance"`
}

// TrialBalanceReport lists net balances per account as of a date.
type TrialBalanceReport struct {
	AsOf         time.Time         `json:"asOf"`
	AccountType  AccountType       `json:"accountType,omitempty"` // Filter, empty for all types
	Rows         []TrialBalanceRow `json:"rows"`
	TotalDebits  decimal.Decimal   `json:"totalDebits"`
	TotalCredits decimal.Decimal   `json:"totalCredits"`
	IsBalanced   bool              `json:"isBalanced"`
	GeneratedAt  time.Time         `json:"generatedAt"`
}

// AccountAmount is a single account line of a financial statement.
type AccountAmount struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	SubType     AccountSubType  `json:"subType,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

// ProfitAndLossReport summarizes income and expenses for a period.
type ProfitAndLossReport struct {
	DateFrom      time.Time       `json:"dateFrom"`
	DateTo        time.Time       `json:"dateTo"`
	Revenue       []AccountAmount `json:"revenue"`
	Expenses      []AccountAmount `json:"expenses"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetIncome     decimal.Decimal `json:"netIncome"`
	GeneratedAt   time.Time       `json:"generatedAt"`
}

// CurrentEarningsCode is the code of the synthetic equity line carrying undistributed net income.
const CurrentEarningsCode = "CURRENT_EARNINGS"

// BalanceSheetReport lists assets, liabilities and equity as of a date.
// Equity includes a Current Earnings line so the accounting equation holds mid-period.
type BalanceSheetReport struct {
	AsOf             time.Time       `json:"asOf"`
	Assets           []AccountAmount `json:"assets"`
	Liabilities      []AccountAmount `json:"liabilities"`
	Equity           []AccountAmount `json:"equity"`
	CurrentEarnings  decimal.Decimal `json:"currentEarnings"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
	IsBalanced       bool            `json:"isBalanced"`
	GeneratedAt      time.Time       `json:"generatedAt"`
}

// PostedLine is a journal line joined with its entry header, used to replay an account ledger.
type PostedLine struct {
	JournalID     string
	JournalNumber string
	Date          time.Time
	Narration     string
	Reference     string
	Description   string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
}

// LedgerRow is one posting in an account ledger with the balance after it.
type LedgerRow struct {
	Date          time.Time       `json:"date"`
	JournalID     string          `json:"journalID"`
	JournalNumber string          `json:"journalNumber"`
	Narration     string          `json:"narration"`
	Reference     string          `json:"reference,omitempty"`
	Description   string          `json:"description,omitempty"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Balance       decimal.Decimal `json:"balance"`
}

// LedgerReport is the chronological posting history of one account.
type LedgerReport struct {
	Account        Account         `json:"account"`
	DateFrom       *time.Time      `json:"dateFrom,omitempty"`
	DateTo         *time.Time      `json:"dateTo,omitempty"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Rows           []LedgerRow     `json:"rows"`
	TotalDebit     decimal.Decimal `json:"totalDebit"`
	TotalCredit    decimal.Decimal `json:"totalCredit"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
}

// TrialBalanceFilter narrows a trial balance.
type TrialBalanceFilter struct {
	AccountType AccountType // Empty for all types
	IncludeZero bool
}
