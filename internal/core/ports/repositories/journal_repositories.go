package repositories

import (
	"context"

	"github.com/SscSPs/ledgerbook/internal/core/domain"
)

// JournalReader defines read operations for journal data
type JournalReader interface {
	// FindJournalByID retrieves a journal entry with its lines.
	FindJournalByID(ctx context.Context, journalID string) (*domain.JournalEntry, error)

	// ListJournals retrieves a page of journal entries, newest first, and the token of the next page.
	ListJournals(ctx context.Context, filter domain.JournalFilter) ([]domain.JournalEntry, *string, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
}

// JournalTxRepository defines journal operations available inside a unit of work.
type JournalTxRepository interface {
	// NextJournalSequence returns the next journal counter value. Values are never handed out twice,
	// even when the unit of work rolls back.
	NextJournalSequence(ctx context.Context) (int64, error)

	// FindJournalForUpdate retrieves a journal entry and locks it until the unit of work ends.
	FindJournalForUpdate(ctx context.Context, journalID string) (*domain.JournalEntry, error)

	// InsertJournal persists a new journal entry with its lines.
	InsertJournal(ctx context.Context, journal domain.JournalEntry) error

	// UpdateJournal rewrites the header and lines of an existing journal entry.
	UpdateJournal(ctx context.Context, journal domain.JournalEntry) error

	// DeleteJournal removes a journal entry and its lines.
	DeleteJournal(ctx context.Context, journalID string) error
}
