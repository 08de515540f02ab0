// Package memory provides an in-process implementation of the ledger repositories.
// It keeps the same locking contract as the Postgres repositories: rows touched by a
// unit of work are locked until it ends and writes are invisible until commit.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SscSPs/ledgerbook/internal/apperrors"
	"github.com/SscSPs/ledgerbook/internal/core/domain"
	portsrepo "github.com/SscSPs/ledgerbook/internal/core/ports/repositories"
	"github.com/SscSPs/ledgerbook/internal/utils/pagination"
)

// Store holds accounts and journal entries in memory.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
	codes    map[string]string // code -> account id
	journals map[string]domain.JournalEntry
	sequence atomic.Int64
	locks    *lockTable
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]domain.Account),
		codes:    make(map[string]string),
		journals: make(map[string]domain.JournalEntry),
		locks:    newLockTable(),
	}
}

// Provider exposes the store through every repository port.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:   s,
		JournalRepo:   s,
		ReportingRepo: s,
		TxManager:     s,
	}
}

var (
	_ portsrepo.AccountRepositoryFacade = (*Store)(nil)
	_ portsrepo.JournalRepositoryFacade = (*Store)(nil)
	_ portsrepo.ReportingRepository     = (*Store)(nil)
	_ portsrepo.TransactionManager      = (*Store)(nil)
)

func accountKey(id string) string { return "account:" + id }
func journalKey(id string) string { return "journal:" + id }

func copyJournal(j domain.JournalEntry) domain.JournalEntry {
	j.Lines = append([]domain.JournalLine(nil), j.Lines...)
	if j.PostedAt != nil {
		t := *j.PostedAt
		j.PostedAt = &t
	}
	return j
}

// FindAccountByID implements portsrepo.AccountReader.
func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &acc, nil
}

// FindAccountByCode implements portsrepo.AccountReader.
func (s *Store) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.codes[code]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	acc := s.accounts[id]
	return &acc, nil
}

// FindAccountsByIDs implements portsrepo.AccountReader.
func (s *Store) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if acc, ok := s.accounts[id]; ok {
			res[id] = acc
		}
	}
	return res, nil
}

// ListAccounts implements portsrepo.AccountReader.
func (s *Store) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	s.mu.RLock()
	res := make([]domain.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		if filter.AccountType != "" && acc.AccountType != filter.AccountType {
			continue
		}
		if filter.ActiveOnly && !acc.IsActive {
			continue
		}
		res = append(res, acc)
	}
	s.mu.RUnlock()

	sort.Slice(res, func(i, j int) bool { return res[i].Code < res[j].Code })
	if filter.Offset > 0 {
		if filter.Offset >= len(res) {
			return []domain.Account{}, nil
		}
		res = res[filter.Offset:]
	}
	if filter.Limit > 0 && len(res) > filter.Limit {
		res = res[:filter.Limit]
	}
	return res, nil
}

// ListChildAccounts implements portsrepo.AccountReader.
func (s *Store) ListChildAccounts(ctx context.Context, parentAccountID string) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []domain.Account
	for _, acc := range s.accounts {
		if acc.ParentAccountID == parentAccountID {
			res = append(res, acc)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Code < res[j].Code })
	return res, nil
}

// FindJournalByID implements portsrepo.JournalReader.
func (s *Store) FindJournalByID(ctx context.Context, journalID string) (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.journals[journalID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	j = copyJournal(j)
	return &j, nil
}

// ListJournals implements portsrepo.JournalReader.
func (s *Store) ListJournals(ctx context.Context, filter domain.JournalFilter) ([]domain.JournalEntry, *string, error) {
	var cursor *pagination.Cursor
	if filter.NextToken != nil && *filter.NextToken != "" {
		c, err := pagination.DecodeCursor(*filter.NextToken)
		if err != nil {
			return nil, nil, apperrors.Wrap(apperrors.KindValidation, apperrors.CodeInvalidInput, "invalid nextToken", err)
		}
		cursor = &c
	}
	search := strings.ToLower(filter.Search)

	s.mu.RLock()
	matches := make([]domain.JournalEntry, 0)
	for _, j := range s.journals {
		if filter.Status != "" && j.Status != filter.Status {
			continue
		}
		if filter.DateFrom != nil && j.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && j.Date.After(*filter.DateTo) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(j.JournalNumber), search) &&
			!strings.Contains(strings.ToLower(j.Narration), search) {
			continue
		}
		if cursor != nil && !cursor.After(j.Date, j.Sequence) {
			continue
		}
		matches = append(matches, copyJournal(j))
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(a, b int) bool {
		if !matches[a].Date.Equal(matches[b].Date) {
			return matches[a].Date.After(matches[b].Date)
		}
		return matches[a].Sequence > matches[b].Sequence
	})

	var nextToken *string
	if filter.Limit > 0 && len(matches) > filter.Limit {
		matches = matches[:filter.Limit]
		last := matches[len(matches)-1]
		token := pagination.EncodeCursor(last.Date, last.Sequence)
		nextToken = &token
	}
	return matches, nextToken, nil
}

func inRange(d time.Time, from *time.Time, to time.Time) bool {
	if from != nil && d.Before(*from) {
		return false
	}
	return !d.After(to)
}

// SumPostedByAccount implements portsrepo.ReportingRepository.
func (s *Store) SumPostedByAccount(ctx context.Context, from *time.Time, to time.Time) ([]domain.AccountTotals, error) {
	s.mu.RLock()
	sums := make(map[string]*domain.AccountTotals)
	for _, j := range s.journals {
		if !j.Status.AffectsBalances() || !inRange(j.Date, from, to) {
			continue
		}
		for _, l := range j.Lines {
			t, ok := sums[l.AccountID]
			if !ok {
				t = &domain.AccountTotals{AccountID: l.AccountID}
				sums[l.AccountID] = t
			}
			t.Debit = t.Debit.Add(l.DebitAmount)
			t.Credit = t.Credit.Add(l.CreditAmount)
		}
	}
	s.mu.RUnlock()

	res := make([]domain.AccountTotals, 0, len(sums))
	for _, t := range sums {
		res = append(res, *t)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].AccountID < res[j].AccountID })
	return res, nil
}

// ListPostedLinesForAccount implements portsrepo.ReportingRepository.
func (s *Store) ListPostedLinesForAccount(ctx context.Context, accountID string, to *time.Time) ([]domain.PostedLine, error) {
	type ordered struct {
		line     domain.PostedLine
		sequence int64
	}
	var rows []ordered
	s.mu.RLock()
	for _, j := range s.journals {
		if !j.Status.AffectsBalances() || (to != nil && j.Date.After(*to)) {
			continue
		}
		for _, l := range j.Lines {
			if l.AccountID != accountID {
				continue
			}
			rows = append(rows, ordered{
				line: domain.PostedLine{
					JournalID:     j.JournalID,
					JournalNumber: j.JournalNumber,
					Date:          j.Date,
					Narration:     j.Narration,
					Reference:     j.Reference,
					Description:   l.Description,
					Debit:         l.DebitAmount,
					Credit:        l.CreditAmount,
				},
				sequence: j.Sequence,
			})
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(rows, func(a, b int) bool {
		if !rows[a].line.Date.Equal(rows[b].line.Date) {
			return rows[a].line.Date.Before(rows[b].line.Date)
		}
		return rows[a].sequence < rows[b].sequence
	})
	res := make([]domain.PostedLine, len(rows))
	for i, r := range rows {
		res[i] = r.line
	}
	return res, nil
}
