package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Account is the row shape of the accounts table.
type Account struct {
	AccountID       string          `db:"account_id"`
	Code            string          `db:"code"`
	Name            string          `db:"name"`
	AccountType     string          `db:"account_type"`
	SubType         string          `db:"sub_type"`
	ParentAccountID sql.NullString  `db:"parent_account_id"`
	Level           int             `db:"level"`
	Description     string          `db:"description"`
	CurrencyCode    string          `db:"currency_code"`
	IsActive        bool            `db:"is_active"`
	OpeningBalance  decimal.Decimal `db:"opening_balance"`
	Balance         decimal.Decimal `db:"balance"` // Persisted running balance
	AuditFields                     // Embed common audit fields
}
