package services

import (
	"context"

	"github.com/SscSPs/ledgerbook/internal/core/domain"
	"github.com/SscSPs/ledgerbook/internal/dto"
)

// JournalReaderSvc defines read operations for journal entries
type JournalReaderSvc interface {
	GetJournal(ctx context.Context, journalID string, actor domain.Actor) (*domain.JournalEntry, error)
	ListJournals(ctx context.Context, filter domain.JournalFilter, actor domain.Actor) ([]domain.JournalEntry, *string, error)
}

// JournalWriterSvc defines operations on draft journal entries
type JournalWriterSvc interface {
	// CreateJournal validates the lines and stores a new draft with the next journal number.
	CreateJournal(ctx context.Context, req dto.CreateJournalRequest, actor domain.Actor) (*domain.JournalEntry, error)

	// UpdateJournal replaces a draft's header and lines after re-validating them.
	UpdateJournal(ctx context.Context, journalID string, req dto.UpdateJournalRequest, actor domain.Actor) (*domain.JournalEntry, error)

	// DeleteJournal removes a draft. Its journal number is not reused.
	DeleteJournal(ctx context.Context, journalID string, actor domain.Actor) error
}

// PostingSvc defines the balance-changing transitions of a journal entry
type PostingSvc interface {
	// PostJournal applies a draft's deltas to account balances and marks it posted, all or nothing.
	PostJournal(ctx context.Context, journalID string, actor domain.Actor) (*domain.JournalEntry, error)

	// ReverseJournal creates and posts a mirrored entry and marks the original reversed.
	// It returns the new reversal entry.
	ReverseJournal(ctx context.Context, journalID string, req dto.ReverseJournalRequest, actor domain.Actor) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal service interfaces
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
	PostingSvc
}
