package services

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/ledgerbook/internal/apperrors"
	"github.com/SscSPs/ledgerbook/internal/core/domain"
	portsrepo "github.com/SscSPs/ledgerbook/internal/core/ports/repositories"
	"github.com/SscSPs/ledgerbook/internal/dto"
	"github.com/SscSPs/ledgerbook/internal/platform/metrics"
	"github.com/SscSPs/ledgerbook/internal/utils/accounting"
	"github.com/google/uuid"
)

const reversalPrefix = "Reversal: "

// PostJournal applies a draft's deltas to account balances and marks it posted.
// Every step runs inside one unit of work; a failure leaves balances and the draft untouched.
func (s *journalService) PostJournal(ctx context.Context, journalID string, actor domain.Actor) (*domain.JournalEntry, error) {
	if err := s.AuthorizeActor(ctx, actor, domain.PermissionWrite); err != nil {
		return nil, err
	}

	var posted domain.JournalEntry
	err := s.txManager.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		journal, err := tx.FindJournalForUpdate(ctx, journalID)
		if err != nil {
			return err
		}
		if journal.Status != domain.JournalDraft {
			return apperrors.Conflictf(apperrors.CodeNotDraft, "journal %s is already %s", journal.JournalNumber, journal.Status)
		}
		if err := accounting.ValidateLines(journal.Lines, s.Settings.BalanceTolerance); err != nil {
			return err
		}

		now := s.now()
		if err := s.applyEntry(ctx, tx, journal, actor, now, false); err != nil {
			return err
		}
		journal.Status = domain.JournalPosted
		journal.PostedAt = &now
		journal.PostedBy = actor.ID
		journal.LastUpdatedAt = now
		journal.LastUpdatedBy = actor.ID
		if err := tx.UpdateJournal(ctx, *journal); err != nil {
			return err
		}
		posted = *journal
		return nil
	})
	if err != nil {
		s.recordFailure(ctx, "post", journalID, err)
		return nil, err
	}

	metrics.JournalsPosted.Inc()
	s.LogInfo(ctx, "Journal posted successfully",
		slog.String("journal_id", posted.JournalID),
		slog.String("journal_number", posted.JournalNumber))
	return &posted, nil
}

// ReverseJournal creates and posts a mirror image of a posted entry and marks the original reversed.
func (s *journalService) ReverseJournal(ctx context.Context, journalID string, req dto.ReverseJournalRequest, actor domain.Actor) (*domain.JournalEntry, error) {
	if err := s.AuthorizeActor(ctx, actor, domain.PermissionWrite); err != nil {
		return nil, err
	}
	date := s.today()
	if req.Date != "" {
		parsed, err := dto.ParseDate(req.Date)
		if err != nil {
			return nil, apperrors.Validationf(apperrors.CodeInvalidInput, "date must be formatted as %s", dto.DateLayout)
		}
		date = parsed
	}

	var reversal domain.JournalEntry
	err := s.txManager.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		original, err := tx.FindJournalForUpdate(ctx, journalID)
		if err != nil {
			return err
		}
		if original.IsReversal() {
			return apperrors.Conflictf(apperrors.CodeReversalNotReversible, "journal %s is a reversal and cannot be reversed", original.JournalNumber)
		}
		if original.Status != domain.JournalPosted {
			return apperrors.Conflictf(apperrors.CodeNotPosted, "journal %s is %s; only posted entries can be reversed", original.JournalNumber, original.Status)
		}

		seq, err := tx.NextJournalSequence(ctx)
		if err != nil {
			return err
		}
		narration := strings.TrimSpace(req.Narration)
		if narration == "" {
			narration = original.Narration
		}
		now := s.now()
		reversal = domain.JournalEntry{
			JournalID:       uuid.NewString(),
			JournalNumber:   s.Settings.FormatJournalNumber(seq),
			Sequence:        seq,
			Date:            date,
			Reference:       original.JournalNumber,
			Narration:       reversalPrefix + narration,
			Status:          domain.JournalPosted,
			Lines:           original.MirrorLines(reversalPrefix),
			PostedAt:        &now,
			PostedBy:        actor.ID,
			OriginalEntryID: original.JournalID,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actor.ID,
				LastUpdatedAt: now,
				LastUpdatedBy: actor.ID,
			},
		}
		reversal.RecalculateTotals()

		if err := s.applyEntry(ctx, tx, &reversal, actor, now, true); err != nil {
			return err
		}
		if err := tx.InsertJournal(ctx, reversal); err != nil {
			return err
		}

		original.Status = domain.JournalReversed
		original.ReversalEntryID = reversal.JournalID
		original.LastUpdatedAt = now
		original.LastUpdatedBy = actor.ID
		return tx.UpdateJournal(ctx, *original)
	})
	if err != nil {
		s.recordFailure(ctx, "reverse", journalID, err)
		return nil, err
	}

	metrics.JournalsReversed.Inc()
	s.LogInfo(ctx, "Journal reversed successfully",
		slog.String("journal_id", journalID),
		slog.String("reversal_id", reversal.JournalID),
		slog.String("reversal_number", reversal.JournalNumber))
	return &reversal, nil
}

// applyEntry locks the entry's accounts, applies the aggregated deltas in account id order
// and refreshes the line snapshots. Reversals may touch accounts deactivated since the original post.
func (s *journalService) applyEntry(ctx context.Context, tx portsrepo.LedgerTx, journal *domain.JournalEntry, actor domain.Actor, now time.Time, allowInactive bool) error {
	accounts, err := tx.LockAccountsForUpdate(ctx, journal.AccountIDs())
	if err != nil {
		return err
	}
	for i := range journal.Lines {
		line := &journal.Lines[i]
		acc, ok := accounts[line.AccountID]
		if !ok {
			return apperrors.NotFoundf(apperrors.CodeAccountNotFound, "line %d: account %s does not exist", i+1, line.AccountID)
		}
		if !acc.IsActive && !allowInactive {
			return apperrors.Validationf(apperrors.CodeInactiveAccount, "line %d: account %s is inactive", i+1, acc.Code)
		}
		line.AccountCode = acc.Code
		line.AccountName = acc.Name
	}

	deltas, err := accounting.AggregateDeltas(journal.Lines, accounts)
	if err != nil {
		return apperrors.NewInternal("failed to compute balance deltas", err)
	}
	ids := make([]string, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if deltas[id].IsZero() {
			continue
		}
		if _, err := tx.ApplyBalanceDelta(ctx, id, deltas[id], actor.ID, now); err != nil {
			return err
		}
	}
	journal.RecalculateTotals()
	return nil
}

func (s *journalService) recordFailure(ctx context.Context, operation, journalID string, err error) {
	code := apperrors.CodeOf(err)
	metrics.PostingFailures.WithLabelValues(operation, code).Inc()
	if apperrors.KindOf(err) == apperrors.KindInternal {
		s.LogError(ctx, err, "Journal "+operation+" failed", slog.String("journal_id", journalID))
		return
	}
	s.LogDebug(ctx, "Journal "+operation+" rejected",
		slog.String("journal_id", journalID),
		slog.String("code", code))
}
