package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/ledgerbook/internal/apperrors"
	"github.com/SscSPs/ledgerbook/internal/core/domain"
	portsrepo "github.com/SscSPs/ledgerbook/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertAccount(s *Store, account domain.Account) error {
	return s.WithTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.InsertAccount(ctx, account)
	})
}

func seedAccount(t *testing.T, s *Store, id, code string, typ domain.AccountType) {
	t.Helper()
	require.NoError(t, insertAccount(s, domain.Account{
		AccountID:   id,
		Code:        code,
		Name:        "Account " + code,
		AccountType: typ,
		IsActive:    true,
	}))
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestInsertAccountDuplicateCode(t *testing.T) {
	s := NewStore()
	seedAccount(t, s, "a1", "1001", domain.Asset)

	err := insertAccount(s, domain.Account{AccountID: "a2", Code: "1001"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	err = insertAccount(s, domain.Account{AccountID: "a1", Code: "1002"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestInsertAccountCodeClashAtCommit(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	inside := make(chan struct{})
	proceed := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- s.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
			if err := tx.InsertAccount(ctx, domain.Account{AccountID: "a1", Code: "1001"}); err != nil {
				return err
			}
			close(inside)
			<-proceed
			return nil
		})
	}()
	<-inside
	require.NoError(t, insertAccount(s, domain.Account{AccountID: "a2", Code: "1001"}))
	close(proceed)

	assert.ErrorIs(t, <-done, apperrors.ErrDuplicate)
	_, err := s.FindAccountByID(ctx, "a1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "a failed commit applies nothing")
}

func TestUpdateAccountKeepsBalance(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "a1", "1001", domain.Asset)
	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		_, err := tx.ApplyBalanceDelta(ctx, "a1", decimal.NewFromInt(50), "u1", day(1))
		return err
	}))

	stale, err := s.FindAccountByID(ctx, "a1")
	require.NoError(t, err)
	stale.Balance = decimal.Zero
	stale.Code = "1002"
	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.UpdateAccount(ctx, *stale)
	}))

	acc, err := s.FindAccountByCode(ctx, "1002")
	require.NoError(t, err)
	assert.True(t, acc.Balance.Equal(decimal.NewFromInt(50)))
	_, err = s.FindAccountByCode(ctx, "1001")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateAccountSwapsCodes(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "a1", "1001", domain.Asset)
	seedAccount(t, s, "a2", "1002", domain.Asset)

	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		accounts, err := tx.LockAccountsForUpdate(ctx, []string{"a1", "a2"})
		if err != nil {
			return err
		}
		a1, a2 := accounts["a1"], accounts["a2"]
		a1.Code, a2.Code = a2.Code, a1.Code
		if err := tx.UpdateAccount(ctx, a1); err != nil {
			return err
		}
		return tx.UpdateAccount(ctx, a2)
	}))

	acc, err := s.FindAccountByCode(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, "a2", acc.AccountID)

	err = s.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.UpdateAccount(ctx, domain.Account{AccountID: "a1", Code: "1001"})
	})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	err = s.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.UpdateAccount(ctx, domain.Account{AccountID: "missing", Code: "9999"})
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestWithTxRollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "a1", "1001", domain.Asset)
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if _, err := tx.ApplyBalanceDelta(ctx, "a1", decimal.NewFromInt(10), "u1", day(1)); err != nil {
			return err
		}
		if err := tx.InsertJournal(ctx, domain.JournalEntry{JournalID: "j1"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	acc, err := s.FindAccountByID(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, acc.Balance.IsZero())
	_, err = s.FindJournalByID(ctx, "j1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestWithTxStagedReadsSeeOwnWrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "a1", "1001", domain.Asset)

	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		_, err := tx.ApplyBalanceDelta(ctx, "a1", decimal.NewFromInt(7), "u1", day(1))
		require.NoError(t, err)
		accounts, err := tx.LockAccountsForUpdate(ctx, []string{"a1", "missing"})
		require.NoError(t, err)
		assert.Len(t, accounts, 1)
		assert.True(t, accounts["a1"].Balance.Equal(decimal.NewFromInt(7)))
		return nil
	}))
}

func TestConcurrentDeltasSerialize(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "a1", "1001", domain.Asset)
	seedAccount(t, s, "a2", "3001", domain.Equity)

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids := []string{"a1", "a2"}
			if i%2 == 0 {
				ids = []string{"a2", "a1"}
			}
			err := s.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
				if _, err := tx.LockAccountsForUpdate(ctx, ids); err != nil {
					return err
				}
				for _, id := range ids {
					if _, err := tx.ApplyBalanceDelta(ctx, id, decimal.NewFromInt(1), "u1", day(1)); err != nil {
						return err
					}
				}
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	for _, id := range []string{"a1", "a2"} {
		acc, err := s.FindAccountByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, acc.Balance.Equal(decimal.NewFromInt(workers)), "account %s balance %s", id, acc.Balance)
	}
}

func TestNextJournalSequenceNeverReused(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	var first int64
	_ = s.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		first, _ = tx.NextJournalSequence(ctx)
		return errors.New("rollback")
	})
	var second int64
	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		var err error
		second, err = tx.NextJournalSequence(ctx)
		return err
	}))
	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
}

func insertJournal(t *testing.T, s *Store, j domain.JournalEntry) {
	t.Helper()
	require.NoError(t, s.WithTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.InsertJournal(ctx, j)
	}))
}

func TestListJournalsPagination(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	insertJournal(t, s, domain.JournalEntry{JournalID: "j1", JournalNumber: "JE000001", Sequence: 1, Date: day(1), Narration: "rent", Status: domain.JournalPosted})
	insertJournal(t, s, domain.JournalEntry{JournalID: "j2", JournalNumber: "JE000002", Sequence: 2, Date: day(2), Narration: "sales", Status: domain.JournalDraft})
	insertJournal(t, s, domain.JournalEntry{JournalID: "j3", JournalNumber: "JE000003", Sequence: 3, Date: day(2), Narration: "Rent deposit", Status: domain.JournalPosted})

	page, next, err := s.ListJournals(ctx, domain.JournalFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "j3", page[0].JournalID)
	assert.Equal(t, "j2", page[1].JournalID)
	require.NotNil(t, next)

	page, next, err = s.ListJournals(ctx, domain.JournalFilter{Limit: 2, NextToken: next})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "j1", page[0].JournalID)
	assert.Nil(t, next)

	page, _, err = s.ListJournals(ctx, domain.JournalFilter{Search: "RENT", Status: domain.JournalPosted})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	bad := "%%%"
	_, _, err = s.ListJournals(ctx, domain.JournalFilter{NextToken: &bad})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestReportingReadsSkipDrafts(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	lines := func(amount int64) []domain.JournalLine {
		return []domain.JournalLine{
			{AccountID: "a1", DebitAmount: decimal.NewFromInt(amount)},
			{AccountID: "a2", CreditAmount: decimal.NewFromInt(amount)},
		}
	}
	insertJournal(t, s, domain.JournalEntry{JournalID: "j1", Sequence: 1, Date: day(3), Status: domain.JournalPosted, Lines: lines(100)})
	insertJournal(t, s, domain.JournalEntry{JournalID: "j2", Sequence: 2, Date: day(1), Status: domain.JournalReversed, Lines: lines(30)})
	insertJournal(t, s, domain.JournalEntry{JournalID: "j3", Sequence: 3, Date: day(2), Status: domain.JournalDraft, Lines: lines(999)})

	totals, err := s.SumPostedByAccount(ctx, nil, day(31))
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "a1", totals[0].AccountID)
	assert.True(t, totals[0].Debit.Equal(decimal.NewFromInt(130)))
	assert.True(t, totals[1].Credit.Equal(decimal.NewFromInt(130)))

	from := day(2)
	totals, err = s.SumPostedByAccount(ctx, &from, day(3))
	require.NoError(t, err)
	assert.True(t, totals[0].Debit.Equal(decimal.NewFromInt(100)))

	posted, err := s.ListPostedLinesForAccount(ctx, "a1", nil)
	require.NoError(t, err)
	require.Len(t, posted, 2)
	assert.Equal(t, "j2", posted[0].JournalID, "ordered by date")
	assert.Equal(t, "j1", posted[1].JournalID)
}
