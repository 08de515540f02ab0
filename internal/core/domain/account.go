package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "asset"
	Liability AccountType = "liability"
	Equity    AccountType = "equity"
	Income    AccountType = "income"
	Expense   AccountType = "expense"
)

// AccountTypes lists every account type in reporting order.
var AccountTypes = []AccountType{Asset, Liability, Equity, Income, Expense}

// Side is one of the two columns of a double-entry posting.
type Side string

const (
	DebitSide  Side = "debit"
	CreditSide Side = "credit"
)

// IsValid reports whether t is one of the known account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Income, Expense:
		return true
	}
	return false
}

// NormalSide returns the side on which balances of this type increase.
func (t AccountType) NormalSide() Side {
	switch t {
	case Asset, Expense:
		return DebitSide
	default:
		return CreditSide
	}
}

// AccountSubType refines an AccountType. Every subtype belongs to exactly one type.
type AccountSubType string

const (
	CurrentAsset AccountSubType = "current_asset"
	FixedAsset   AccountSubType = "fixed_asset"
	OtherAsset   AccountSubType = "other_asset"

	CurrentLiability  AccountSubType = "current_liability"
	LongTermLiability AccountSubType = "long_term_liability"
	OtherLiability    AccountSubType = "other_liability"

	OwnerEquity      AccountSubType = "owner_equity"
	RetainedEarnings AccountSubType = "retained_earnings"

	Revenue     AccountSubType = "revenue"
	OtherIncome AccountSubType = "other_income"

	CostOfGoodsSold  AccountSubType = "cost_of_goods_sold"
	OperatingExpense AccountSubType = "operating_expense"
	OtherExpense     AccountSubType = "other_expense"
)

var subTypeOwners = map[AccountSubType]AccountType{
	CurrentAsset:      Asset,
	FixedAsset:        Asset,
	OtherAsset:        Asset,
	CurrentLiability:  Liability,
	LongTermLiability: Liability,
	OtherLiability:    Liability,
	OwnerEquity:       Equity,
	RetainedEarnings:  Equity,
	Revenue:           Income,
	OtherIncome:       Income,
	CostOfGoodsSold:   Expense,
	OperatingExpense:  Expense,
	OtherExpense:      Expense,
}

// Type returns the account type owning the subtype, or "" when unknown.
func (s AccountSubType) Type() AccountType {
	return subTypeOwners[s]
}

// IsValid reports whether s is a known subtype.
func (s AccountSubType) IsValid() bool {
	_, ok := subTypeOwners[s]
	return ok
}

// BelongsTo reports whether s refines t.
func (s AccountSubType) BelongsTo(t AccountType) bool {
	return s.Type() == t
}

// MaxAccountLevel is the deepest level allowed in the account hierarchy.
const MaxAccountLevel = 10

// Account represents an entry of the chart of accounts.
type Account struct {
	AccountID       string          `json:"accountID"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	AccountType     AccountType     `json:"accountType"`
	SubType         AccountSubType  `json:"subType"`
	ParentAccountID string          `json:"parentAccountID"` // Empty when root
	Level           int             `json:"level"`
	Description     string          `json:"description"`
	CurrencyCode    string          `json:"currencyCode"`
	IsActive        bool            `json:"isActive"`
	OpeningBalance  decimal.Decimal `json:"openingBalance"`
	Balance         decimal.Decimal `json:"balance"`
	AuditFields
}

// ApplyDelta adds a signed amount to the balance.
func (a *Account) ApplyDelta(delta decimal.Decimal) {
	a.Balance = a.Balance.Add(delta)
}

// AccountFilter narrows account listings.
type AccountFilter struct {
	AccountType AccountType // Empty for any
	ActiveOnly  bool
	Limit       int // Zero for no limit
	Offset      int
}
