package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/ledgerbook/internal/apperrors"
	"github.com/SscSPs/ledgerbook/internal/core/domain"
	portsrepo "github.com/SscSPs/ledgerbook/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// memTx is one unit of work. Locks are held until commit or rollback; writes are staged
// and applied to the store only on commit.
type memTx struct {
	store    *Store
	held     map[string]*sync.Mutex
	order    []string
	balances map[string]domain.Account // staged balance changes
	accounts map[string]domain.Account // staged inserts and detail updates
	journals map[string]domain.JournalEntry
	deleted  map[string]struct{}
}

var _ portsrepo.LedgerTx = (*memTx)(nil)

// WithTx implements portsrepo.TransactionManager.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) error {
	tx := &memTx{
		store:    s,
		held:     make(map[string]*sync.Mutex),
		balances: make(map[string]domain.Account),
		accounts: make(map[string]domain.Account),
		journals: make(map[string]domain.JournalEntry),
		deleted:  make(map[string]struct{}),
	}
	defer tx.release()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return tx.commit()
}

func (tx *memTx) lock(key string) {
	if _, ok := tx.held[key]; ok {
		return
	}
	m := tx.store.locks.get(key)
	m.Lock()
	tx.held[key] = m
	tx.order = append(tx.order, key)
}

func (tx *memTx) release() {
	for i := len(tx.order) - 1; i >= 0; i-- {
		tx.held[tx.order[i]].Unlock()
	}
	tx.held = nil
	tx.order = nil
}

func (tx *memTx) commit() error {
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := tx.checkCodes(); err != nil {
		return err
	}

	for id, staged := range tx.accounts {
		if current, ok := s.accounts[id]; ok && s.codes[current.Code] == id {
			delete(s.codes, current.Code)
		}
		s.accounts[id] = staged
	}
	for id, staged := range tx.accounts {
		s.codes[staged.Code] = id
	}
	for id, staged := range tx.balances {
		acc := s.accounts[id]
		acc.Balance = staged.Balance
		acc.LastUpdatedAt = staged.LastUpdatedAt
		acc.LastUpdatedBy = staged.LastUpdatedBy
		s.accounts[id] = acc
	}
	for id := range tx.deleted {
		delete(s.journals, id)
	}
	for id, j := range tx.journals {
		s.journals[id] = j
	}
	return nil
}

// checkCodes reports a staged account code that would clash after commit. Callers hold s.mu.
func (tx *memTx) checkCodes() error {
	s := tx.store
	staged := make(map[string]string, len(tx.accounts))
	for id, acc := range tx.accounts {
		if other, ok := staged[acc.Code]; ok && other != id {
			return fmt.Errorf("%w: account code %s already exists", apperrors.ErrDuplicate, acc.Code)
		}
		staged[acc.Code] = id
	}
	for code, id := range staged {
		owner, ok := s.codes[code]
		if !ok || owner == id {
			continue
		}
		if moved, ok := tx.accounts[owner]; ok && moved.Code != code {
			continue
		}
		return fmt.Errorf("%w: account code %s already exists", apperrors.ErrDuplicate, code)
	}
	return nil
}

// current returns the account as this unit of work sees it. Callers hold s.mu for reading.
func (tx *memTx) current(id string) (domain.Account, bool) {
	acc, ok := tx.accounts[id]
	if !ok {
		acc, ok = tx.store.accounts[id]
	}
	if !ok {
		return domain.Account{}, false
	}
	if staged, ok := tx.balances[id]; ok {
		acc.Balance = staged.Balance
	}
	return acc, true
}

// LockAccountsForUpdate implements portsrepo.AccountTxRepository.
func (tx *memTx) LockAccountsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	ids := append([]string(nil), accountIDs...)
	sort.Strings(ids)
	for _, id := range ids {
		tx.lock(accountKey(id))
	}

	res := make(map[string]domain.Account, len(ids))
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	for _, id := range ids {
		if acc, ok := tx.current(id); ok {
			res[id] = acc
		}
	}
	return res, nil
}

// ApplyBalanceDelta implements portsrepo.AccountTxRepository.
func (tx *memTx) ApplyBalanceDelta(ctx context.Context, accountID string, delta decimal.Decimal, actorID string, now time.Time) (domain.Account, error) {
	tx.lock(accountKey(accountID))

	tx.store.mu.RLock()
	acc, ok := tx.current(accountID)
	tx.store.mu.RUnlock()
	if !ok {
		return domain.Account{}, apperrors.ErrNotFound
	}
	acc.ApplyDelta(delta)
	acc.LastUpdatedAt = now
	acc.LastUpdatedBy = actorID
	tx.balances[accountID] = acc
	return acc, nil
}

// InsertAccount implements portsrepo.AccountTxRepository. A clashing code is reported
// here when already committed and again at commit for concurrent inserts.
func (tx *memTx) InsertAccount(ctx context.Context, account domain.Account) error {
	tx.lock(accountKey(account.AccountID))

	tx.store.mu.RLock()
	_, exists := tx.current(account.AccountID)
	_, taken := tx.store.codes[account.Code]
	tx.store.mu.RUnlock()
	if exists {
		return fmt.Errorf("%w: account id %s already exists", apperrors.ErrDuplicate, account.AccountID)
	}
	if taken {
		return fmt.Errorf("%w: account code %s already exists", apperrors.ErrDuplicate, account.Code)
	}
	tx.accounts[account.AccountID] = account
	return nil
}

// UpdateAccount implements portsrepo.AccountTxRepository. It never overwrites the balance,
// opening balance, type or creation audit fields.
func (tx *memTx) UpdateAccount(ctx context.Context, account domain.Account) error {
	tx.lock(accountKey(account.AccountID))

	tx.store.mu.RLock()
	current, ok := tx.current(account.AccountID)
	tx.store.mu.RUnlock()
	if !ok {
		return apperrors.ErrNotFound
	}
	account.Balance = current.Balance
	account.OpeningBalance = current.OpeningBalance
	account.AccountType = current.AccountType
	account.CreatedAt = current.CreatedAt
	account.CreatedBy = current.CreatedBy
	tx.accounts[account.AccountID] = account
	return nil
}

// NextJournalSequence implements portsrepo.JournalTxRepository.
func (tx *memTx) NextJournalSequence(ctx context.Context) (int64, error) {
	return tx.store.sequence.Add(1), nil
}

// FindJournalForUpdate implements portsrepo.JournalTxRepository.
func (tx *memTx) FindJournalForUpdate(ctx context.Context, journalID string) (*domain.JournalEntry, error) {
	tx.lock(journalKey(journalID))
	if _, gone := tx.deleted[journalID]; gone {
		return nil, apperrors.ErrNotFound
	}
	if j, ok := tx.journals[journalID]; ok {
		j = copyJournal(j)
		return &j, nil
	}
	return tx.store.FindJournalByID(ctx, journalID)
}

// InsertJournal implements portsrepo.JournalTxRepository.
func (tx *memTx) InsertJournal(ctx context.Context, journal domain.JournalEntry) error {
	tx.store.mu.RLock()
	_, exists := tx.store.journals[journal.JournalID]
	tx.store.mu.RUnlock()
	if _, staged := tx.journals[journal.JournalID]; exists || staged {
		return apperrors.ErrDuplicate
	}
	tx.journals[journal.JournalID] = copyJournal(journal)
	return nil
}

// UpdateJournal implements portsrepo.JournalTxRepository.
func (tx *memTx) UpdateJournal(ctx context.Context, journal domain.JournalEntry) error {
	if _, err := tx.FindJournalForUpdate(ctx, journal.JournalID); err != nil {
		return err
	}
	tx.journals[journal.JournalID] = copyJournal(journal)
	return nil
}

// DeleteJournal implements portsrepo.JournalTxRepository.
func (tx *memTx) DeleteJournal(ctx context.Context, journalID string) error {
	if _, err := tx.FindJournalForUpdate(ctx, journalID); err != nil {
		return err
	}
	delete(tx.journals, journalID)
	tx.deleted[journalID] = struct{}{}
	return nil
}
