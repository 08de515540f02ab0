package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	JournalDraft    JournalStatus = "draft"
	JournalPosted   JournalStatus = "posted"
	JournalReversed JournalStatus = "reversed"
)

// IsValid reports whether s is a known journal status.
func (s JournalStatus) IsValid() bool {
	switch s {
	case JournalDraft, JournalPosted, JournalReversed:
		return true
	}
	return false
}

// AffectsBalances reports whether entries in this status have been applied to account balances.
func (s JournalStatus) AffectsBalances() bool {
	return s == JournalPosted || s == JournalReversed
}

// MinJournalLines is the minimum number of lines in a journal entry.
const MinJournalLines = 2

// JournalLine is one debit or credit leg of a journal entry.
// AccountCode and AccountName are snapshots taken when the line is validated or posted.
type JournalLine struct {
	AccountID    string          `json:"accountID"`
	AccountCode  string          `json:"accountCode"`
	AccountName  string          `json:"accountName"`
	Description  string          `json:"description"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
}

// JournalEntry is an ordered, balanced set of lines.
type JournalEntry struct {
	JournalID       string          `json:"journalID"`
	JournalNumber   string          `json:"journalNumber"`
	Sequence        int64           `json:"-"` // Counter value behind JournalNumber, used for ordering
	Date            time.Time       `json:"date"`
	Reference       string          `json:"reference"`
	Narration       string          `json:"narration"`
	Status          JournalStatus   `json:"status"`
	Lines           []JournalLine   `json:"lines"`
	TotalDebit      decimal.Decimal `json:"totalDebit"`
	TotalCredit     decimal.Decimal `json:"totalCredit"`
	PostedAt        *time.Time      `json:"postedAt,omitempty"`
	PostedBy        string          `json:"postedBy,omitempty"`
	ReversalEntryID string          `json:"reversalEntryID,omitempty"` // Set on the original once reversed
	OriginalEntryID string          `json:"originalEntryID,omitempty"` // Set on a reversal entry
	AuditFields
}

// Totals sums the debit and credit columns of the lines.
func (j *JournalEntry) Totals() (decimal.Decimal, decimal.Decimal) {
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range j.Lines {
		debit = debit.Add(l.DebitAmount)
		credit = credit.Add(l.CreditAmount)
	}
	return debit, credit
}

// RecalculateTotals refreshes the cached TotalDebit and TotalCredit.
func (j *JournalEntry) RecalculateTotals() {
	j.TotalDebit, j.TotalCredit = j.Totals()
}

// IsBalanced reports whether debits and credits differ by less than tolerance.
// It recomputes from the lines rather than trusting the cached totals.
func (j *JournalEntry) IsBalanced(tolerance decimal.Decimal) bool {
	debit, credit := j.Totals()
	return debit.Sub(credit).Abs().LessThan(tolerance)
}

// IsReversal reports whether the entry was created by reversing another entry.
func (j *JournalEntry) IsReversal() bool {
	return j.OriginalEntryID != ""
}

// AccountIDs returns the distinct account ids referenced by the lines, in line order.
func (j *JournalEntry) AccountIDs() []string {
	seen := make(map[string]struct{}, len(j.Lines))
	ids := make([]string, 0, len(j.Lines))
	for _, l := range j.Lines {
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		ids = append(ids, l.AccountID)
	}
	return ids
}

// MirrorLines returns copies of the lines with debit and credit swapped.
func (j *JournalEntry) MirrorLines(descriptionPrefix string) []JournalLine {
	mirrored := make([]JournalLine, len(j.Lines))
	for i, l := range j.Lines {
		mirrored[i] = JournalLine{
			AccountID:    l.AccountID,
			AccountCode:  l.AccountCode,
			AccountName:  l.AccountName,
			Description:  descriptionPrefix + l.Description,
			DebitAmount:  l.CreditAmount,
			CreditAmount: l.DebitAmount,
		}
	}
	return mirrored
}

// JournalFilter narrows journal listings.
type JournalFilter struct {
	Status   JournalStatus // Empty for any
	Search   string        // Matches journal number or narration, case-insensitive
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	// NextToken is an opaque cursor from a previous page.
	NextToken *string
}
