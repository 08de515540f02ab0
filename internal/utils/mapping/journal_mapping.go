package mapping

import (
	"database/sql"
	"time"

	"github.com/SscSPs/ledgerbook/internal/core/domain"
	"github.com/SscSPs/ledgerbook/internal/models"
)

// ToModelJournal converts a domain JournalEntry to its header row and line rows.
func ToModelJournal(d domain.JournalEntry) (models.JournalEntry, []models.JournalLine) {
	m := models.JournalEntry{
		JournalID:       d.JournalID,
		JournalNumber:   d.JournalNumber,
		Sequence:        d.Sequence,
		JournalDate:     d.Date,
		Reference:       d.Reference,
		Narration:       d.Narration,
		Status:          string(d.Status),
		TotalDebit:      d.TotalDebit,
		TotalCredit:     d.TotalCredit,
		PostedBy:        nullString(d.PostedBy),
		ReversalEntryID: nullString(d.ReversalEntryID),
		OriginalEntryID: nullString(d.OriginalEntryID),
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
	if d.PostedAt != nil {
		m.PostedAt = sql.NullTime{Time: *d.PostedAt, Valid: true}
	}

	lines := make([]models.JournalLine, len(d.Lines))
	for i, l := range d.Lines {
		lines[i] = models.JournalLine{
			JournalID:    d.JournalID,
			LineNo:       i + 1,
			AccountID:    l.AccountID,
			AccountCode:  l.AccountCode,
			AccountName:  l.AccountName,
			Description:  l.Description,
			DebitAmount:  l.DebitAmount,
			CreditAmount: l.CreditAmount,
		}
	}
	return m, lines
}

// ToDomainJournal converts a header row and its line rows, already ordered by line number.
func ToDomainJournal(m models.JournalEntry, lines []models.JournalLine) domain.JournalEntry {
	d := domain.JournalEntry{
		JournalID:       m.JournalID,
		JournalNumber:   m.JournalNumber,
		Sequence:        m.Sequence,
		Date:            m.JournalDate,
		Reference:       m.Reference,
		Narration:       m.Narration,
		Status:          domain.JournalStatus(m.Status),
		TotalDebit:      m.TotalDebit,
		TotalCredit:     m.TotalCredit,
		PostedBy:        m.PostedBy.String,
		ReversalEntryID: m.ReversalEntryID.String,
		OriginalEntryID: m.OriginalEntryID.String,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
		Lines:           make([]domain.JournalLine, len(lines)),
	}
	if m.PostedAt.Valid {
		t := m.PostedAt.Time.In(time.UTC)
		d.PostedAt = &t
	}
	for i, l := range lines {
		d.Lines[i] = domain.JournalLine{
			AccountID:    l.AccountID,
			AccountCode:  l.AccountCode,
			AccountName:  l.AccountName,
			Description:  l.Description,
			DebitAmount:  l.DebitAmount,
			CreditAmount: l.CreditAmount,
		}
	}
	return d
}
