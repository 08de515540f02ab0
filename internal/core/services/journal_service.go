package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/ledgerbook/internal/apperrors"
	"github.com/SscSPs/ledgerbook/internal/core/domain"
	portsrepo "github.com/SscSPs/ledgerbook/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledgerbook/internal/core/ports/services"
	"github.com/SscSPs/ledgerbook/internal/dto"
	"github.com/SscSPs/ledgerbook/internal/utils/accounting"
	"github.com/google/uuid"
)

const (
	defaultJournalPageSize = 20
	maxJournalPageSize     = 100
)

// journalService provides the journal entry lifecycle and the posting engine.
type journalService struct {
	BaseService
	accountRepo portsrepo.AccountReader
	journalRepo portsrepo.JournalRepositoryFacade
	txManager   portsrepo.TransactionManager
}

// NewJournalService creates a new JournalService.
func NewJournalService(accountRepo portsrepo.AccountReader, journalRepo portsrepo.JournalRepositoryFacade, txManager portsrepo.TransactionManager, opts ...ServiceOption) portssvc.JournalSvcFacade {
	return &journalService{
		BaseService: newBaseService(opts...),
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		txManager:   txManager,
	}
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// prepareLines validates line shape, resolves the referenced accounts and checks the balance.
// The returned lines carry code and name snapshots of their accounts.
func (s *journalService) prepareLines(ctx context.Context, reqLines []dto.JournalLineRequest) ([]domain.JournalLine, error) {
	lines := dto.ToDomainLines(reqLines)
	if err := accounting.ValidateShape(lines); err != nil {
		return nil, err
	}

	entry := domain.JournalEntry{Lines: lines}
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, entry.AccountIDs())
	if err != nil {
		s.LogError(ctx, err, "Failed to resolve journal line accounts")
		return nil, fmt.Errorf("failed to resolve accounts: %w", err)
	}
	for i := range lines {
		acc, ok := accounts[lines[i].AccountID]
		if !ok {
			return nil, apperrors.NotFoundf(apperrors.CodeUnknownAccount, "line %d: account %s does not exist", i+1, lines[i].AccountID)
		}
		if !acc.IsActive {
			return nil, apperrors.Validationf(apperrors.CodeInactiveAccount, "line %d: account %s is inactive", i+1, acc.Code)
		}
		lines[i].AccountCode = acc.Code
		lines[i].AccountName = acc.Name
	}

	if err := accounting.ValidateBalance(lines, s.Settings.BalanceTolerance); err != nil {
		return nil, err
	}
	return lines, nil
}

// parseHeader parses the entry date and trims the narration.
func parseHeader(rawDate, rawNarration string) (time.Time, string, error) {
	date, err := dto.ParseDate(rawDate)
	if err != nil {
		return time.Time{}, "", apperrors.Validationf(apperrors.CodeInvalidInput, "date must be formatted as %s", dto.DateLayout)
	}
	narration := strings.TrimSpace(rawNarration)
	if narration == "" {
		return time.Time{}, "", apperrors.Validationf(apperrors.CodeInvalidInput, "narration is required")
	}
	return date, narration, nil
}

func (s *journalService) CreateJournal(ctx context.Context, req dto.CreateJournalRequest, actor domain.Actor) (*domain.JournalEntry, error) {
	if err := s.AuthorizeActor(ctx, actor, domain.PermissionWrite); err != nil {
		return nil, err
	}
	date, narration, err := parseHeader(req.Date, req.Narration)
	if err != nil {
		return nil, err
	}
	lines, err := s.prepareLines(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	now := s.now()
	journal := domain.JournalEntry{
		JournalID: uuid.NewString(),
		Date:      date,
		Reference: strings.TrimSpace(req.Reference),
		Narration: narration,
		Status:    domain.JournalDraft,
		Lines:     lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.ID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.ID,
		},
	}
	journal.RecalculateTotals()

	err = s.txManager.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		seq, err := tx.NextJournalSequence(ctx)
		if err != nil {
			return err
		}
		journal.Sequence = seq
		journal.JournalNumber = s.Settings.FormatJournalNumber(seq)
		return tx.InsertJournal(ctx, journal)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create journal", slog.String("journal_id", journal.JournalID))
		return nil, err
	}

	s.LogInfo(ctx, "Journal created successfully",
		slog.String("journal_id", journal.JournalID),
		slog.String("journal_number", journal.JournalNumber))
	return &journal, nil
}

func (s *journalService) GetJournal(ctx context.Context, journalID string, actor domain.Actor) (*domain.JournalEntry, error) {
	if err := s.AuthorizeActor(ctx, actor, domain.PermissionRead); err != nil {
		return nil, err
	}
	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal", slog.String("journal_id", journalID))
		}
		return nil, err
	}
	return journal, nil
}

func (s *journalService) ListJournals(ctx context.Context, filter domain.JournalFilter, actor domain.Actor) ([]domain.JournalEntry, *string, error) {
	if err := s.AuthorizeActor(ctx, actor, domain.PermissionRead); err != nil {
		return nil, nil, err
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultJournalPageSize
	}
	if filter.Limit > maxJournalPageSize {
		filter.Limit = maxJournalPageSize
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, nil, apperrors.Validationf(apperrors.CodeInvalidInput, "unknown journal status '%s'", filter.Status)
	}

	journals, nextToken, err := s.journalRepo.ListJournals(ctx, filter)
	if err != nil {
		if apperrors.KindOf(err) != apperrors.KindValidation {
			s.LogError(ctx, err, "Failed to list journals")
		}
		return nil, nil, err
	}
	return journals, nextToken, nil
}

func (s *journalService) UpdateJournal(ctx context.Context, journalID string, req dto.UpdateJournalRequest, actor domain.Actor) (*domain.JournalEntry, error) {
	if err := s.AuthorizeActor(ctx, actor, domain.PermissionWrite); err != nil {
		return nil, err
	}
	// The status check comes first so a posted entry reports NOT_DRAFT whatever the payload holds.
	var updated domain.JournalEntry
	err := s.txManager.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		journal, err := tx.FindJournalForUpdate(ctx, journalID)
		if err != nil {
			return err
		}
		if journal.Status != domain.JournalDraft {
			return apperrors.Conflictf(apperrors.CodeNotDraft, "journal %s is %s; only drafts can be edited", journal.JournalNumber, journal.Status)
		}
		date, narration, err := parseHeader(req.Date, req.Narration)
		if err != nil {
			return err
		}
		lines, err := s.prepareLines(ctx, req.Lines)
		if err != nil {
			return err
		}
		journal.Date = date
		journal.Reference = strings.TrimSpace(req.Reference)
		journal.Narration = narration
		journal.Lines = lines
		journal.RecalculateTotals()
		journal.LastUpdatedAt = s.now()
		journal.LastUpdatedBy = actor.ID
		updated = *journal
		return tx.UpdateJournal(ctx, updated)
	})
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindInternal {
			s.LogError(ctx, err, "Failed to update journal", slog.String("journal_id", journalID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Journal updated successfully", slog.String("journal_id", journalID))
	return &updated, nil
}

func (s *journalService) DeleteJournal(ctx context.Context, journalID string, actor domain.Actor) error {
	if err := s.AuthorizeActor(ctx, actor, domain.PermissionWrite); err != nil {
		return err
	}
	err := s.txManager.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		journal, err := tx.FindJournalForUpdate(ctx, journalID)
		if err != nil {
			return err
		}
		if journal.Status != domain.JournalDraft {
			return apperrors.Conflictf(apperrors.CodeNotDraft, "journal %s is %s; only drafts can be deleted", journal.JournalNumber, journal.Status)
		}
		return tx.DeleteJournal(ctx, journalID)
	})
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindInternal {
			s.LogError(ctx, err, "Failed to delete journal", slog.String("journal_id", journalID))
		}
		return err
	}

	s.LogInfo(ctx, "Journal deleted successfully", slog.String("journal_id", journalID))
	return nil
}
