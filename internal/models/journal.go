package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is the row shape of the journal_entries table.
type JournalEntry struct {
	JournalID       string          `db:"journal_id"`
	JournalNumber   string          `db:"journal_number"`
	Sequence        int64           `db:"sequence"`
	JournalDate     time.Time       `db:"journal_date"`
	Reference       string          `db:"reference"`
	Narration       string          `db:"narration"`
	Status          string          `db:"status"`
	TotalDebit      decimal.Decimal `db:"total_debit"`
	TotalCredit     decimal.Decimal `db:"total_credit"`
	PostedAt        sql.NullTime    `db:"posted_at"`
	PostedBy        sql.NullString  `db:"posted_by"`
	ReversalEntryID sql.NullString  `db:"reversal_entry_id"`
	OriginalEntryID sql.NullString  `db:"original_entry_id"`
	AuditFields
}

// JournalLine is the row shape of the journal_lines table.
type JournalLine struct {
	JournalID    string          `db:"journal_id"`
	LineNo       int             `db:"line_no"` // Position within the entry, from 1
	AccountID    string          `db:"account_id"`
	AccountCode  string          `db:"account_code"`
	AccountName  string          `db:"account_name"`
	Description  string          `db:"description"`
	DebitAmount  decimal.Decimal `db:"debit_amount"`
	CreditAmount decimal.Decimal `db:"credit_amount"`
}
