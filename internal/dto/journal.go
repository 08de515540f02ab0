package dto

import (
	"time"

	"github.com/SscSPs/ledgerbook/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format accepted and returned by the API.
const DateLayout = "2006-01-02"

// ParseDate parses a calendar date in DateLayout as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// ParseOptionalDate parses s when non-empty and returns nil otherwise.
func ParseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// JournalLineRequest is one debit or credit line of a journal request.
type JournalLineRequest struct {
	AccountID    string          `json:"accountID" binding:"required"`
	Description  string          `json:"description" binding:"max=200"`
	DebitAmount  decimal.Decimal `json:"debitAmount" binding:"decimal_gte0"`
	CreditAmount decimal.Decimal `json:"creditAmount" binding:"decimal_gte0"`
}

// CreateJournalRequest defines the data needed to create a draft journal entry.
type CreateJournalRequest struct {
	Date      string               `json:"date" binding:"required,datetime=2006-01-02"`
	Reference string               `json:"reference" binding:"max=100"`
	Narration string               `json:"narration" binding:"required,max=500"`
	Lines     []JournalLineRequest `json:"lines" binding:"dive"`
}

// UpdateJournalRequest replaces the header and lines of a draft journal entry.
type UpdateJournalRequest struct {
	Date      string               `json:"date" binding:"required,datetime=2006-01-02"`
	Reference string               `json:"reference" binding:"max=100"`
	Narration string               `json:"narration" binding:"required,max=500"`
	Lines     []JournalLineRequest `json:"lines" binding:"dive"`
}

// ReverseJournalRequest carries the optional overrides of a reversal.
type ReverseJournalRequest struct {
	Narration string `json:"narration" binding:"max=500"`                  // Defaults to the original narration
	Date      string `json:"date" binding:"omitempty,datetime=2006-01-02"` // Defaults to today
}

// ToDomainLines converts request lines to domain lines.
func ToDomainLines(lines []JournalLineRequest) []domain.JournalLine {
	res := make([]domain.JournalLine, len(lines))
	for i, l := range lines {
		res[i] = domain.JournalLine{
			AccountID:    l.AccountID,
			Description:  l.Description,
			DebitAmount:  l.DebitAmount,
			CreditAmount: l.CreditAmount,
		}
	}
	return res
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	AccountID    string          `json:"accountID"`
	AccountCode  string          `json:"accountCode"`
	AccountName  string          `json:"accountName"`
	Description  string          `json:"description"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
}

// JournalResponse defines the data returned for a journal entry.
type JournalResponse struct {
	JournalID       string                `json:"journalID"`
	JournalNumber   string                `json:"journalNumber"`
	Date            string                `json:"date"`
	Reference       string                `json:"reference"`
	Narration       string                `json:"narration"`
	Status          domain.JournalStatus  `json:"status"`
	Lines           []JournalLineResponse `json:"lines"`
	TotalDebit      decimal.Decimal       `json:"totalDebit"`
	TotalCredit     decimal.Decimal       `json:"totalCredit"`
	PostedAt        *time.Time            `json:"postedAt,omitempty"`
	PostedBy        string                `json:"postedBy,omitempty"`
	ReversalEntryID string                `json:"reversalEntryID,omitempty"`
	OriginalEntryID string                `json:"originalEntryID,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	CreatedBy       string                `json:"createdBy"`
	LastUpdatedAt   time.Time             `json:"lastUpdatedAt"`
	LastUpdatedBy   string                `json:"lastUpdatedBy"`
}

// ToJournalResponse converts a domain.JournalEntry to JournalResponse DTO.
func ToJournalResponse(j *domain.JournalEntry) JournalResponse {
	lines := make([]JournalLineResponse, len(j.Lines))
	for i, l := range j.Lines {
		lines[i] = JournalLineResponse(l)
	}
	return JournalResponse{
		JournalID:       j.JournalID,
		JournalNumber:   j.JournalNumber,
		Date:            j.Date.Format(DateLayout),
		Reference:       j.Reference,
		Narration:       j.Narration,
		Status:          j.Status,
		Lines:           lines,
		TotalDebit:      j.TotalDebit,
		TotalCredit:     j.TotalCredit,
		PostedAt:        j.PostedAt,
		PostedBy:        j.PostedBy,
		ReversalEntryID: j.ReversalEntryID,
		OriginalEntryID: j.OriginalEntryID,
		CreatedAt:       j.CreatedAt,
		CreatedBy:       j.CreatedBy,
		LastUpdatedAt:   j.LastUpdatedAt,
		LastUpdatedBy:   j.LastUpdatedBy,
	}
}

// ListJournalsParams defines query parameters for listing journal entries.
type ListJournalsParams struct {
	Status    string  `form:"status" binding:"omitempty,oneof=draft posted reversed"`
	Search    string  `form:"q" binding:"max=100"`
	From      string  `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string  `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Limit     int     `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListJournalsResponse wraps a page of journal entries.
type ListJournalsResponse struct {
	Journals  []JournalResponse `json:"journals"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToListJournalsResponse converts a page of journal entries.
func ToListJournalsResponse(journals []domain.JournalEntry, nextToken *string) ListJournalsResponse {
	res := make([]JournalResponse, len(journals))
	for i := range journals {
		res[i] = ToJournalResponse(&journals[i])
	}
	return ListJournalsResponse{Journals: res, NextToken: nextToken}
}
