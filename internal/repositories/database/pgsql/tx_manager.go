package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/ledgerbook/internal/apperrors"
	"github.com/SscSPs/ledgerbook/internal/core/domain"
	portsrepo "github.com/SscSPs/ledgerbook/internal/core/ports/repositories"
	"github.com/SscSPs/ledgerbook/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxTransactionManager runs units of work in READ COMMITTED transactions.
// Rows that must not change underneath a unit of work are locked with SELECT ... FOR UPDATE.
type PgxTransactionManager struct {
	BaseRepository
}

func newPgxTransactionManager(pool *pgxpool.Pool) *PgxTransactionManager {
	return &PgxTransactionManager{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionManager = (*PgxTransactionManager)(nil)

// WithTx implements portsrepo.TransactionManager.
func (m *PgxTransactionManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) error {
	tx, err := m.Begin(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	// Will be ignored if transaction is committed successfully
	defer func() { _ = m.Rollback(ctx, tx) }()

	if err := fn(ctx, &pgxLedgerTx{tx: tx}); err != nil {
		return err
	}
	return m.Commit(ctx, tx)
}

// pgxLedgerTx binds the ledger repository operations to one pgx transaction.
type pgxLedgerTx struct {
	tx pgx.Tx
}

var _ portsrepo.LedgerTx = (*pgxLedgerTx)(nil)

// LockAccountsForUpdate locks the rows in id order so concurrent units of work cannot deadlock.
func (t *pgxLedgerTx) LockAccountsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	return findAccountsByIDs(ctx, t.tx, accountIDs, true)
}

// ApplyBalanceDelta adds delta in a single statement so the database performs the read-modify-write.
func (t *pgxLedgerTx) ApplyBalanceDelta(ctx context.Context, accountID string, delta decimal.Decimal, actorID string, now time.Time) (domain.Account, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1
		RETURNING ` + accountColumns
	acc, err := scanAccount(t.tx.QueryRow(ctx, query, accountID, delta, now, actorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, apperrors.ErrNotFound
		}
		return domain.Account{}, fmt.Errorf("failed to update balance of account %s: %w", accountID, err)
	}
	return acc, nil
}

// InsertAccount inserts a new account. A clashing code yields apperrors.ErrDuplicate.
func (t *pgxLedgerTx) InsertAccount(ctx context.Context, account domain.Account) error {
	return insertAccount(ctx, t.tx, account)
}

// UpdateAccount rewrites the account's details. The caller must hold the row lock.
func (t *pgxLedgerTx) UpdateAccount(ctx context.Context, account domain.Account) error {
	return updateAccount(ctx, t.tx, account)
}

// NextJournalSequence draws from a database sequence; sequence values are not returned on rollback.
func (t *pgxLedgerTx) NextJournalSequence(ctx context.Context) (int64, error) {
	var seq int64
	if err := t.tx.QueryRow(ctx, `SELECT nextval('journal_number_seq')`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to draw journal number: %w", err)
	}
	return seq, nil
}

// FindJournalForUpdate implements portsrepo.JournalTxRepository.
func (t *pgxLedgerTx) FindJournalForUpdate(ctx context.Context, journalID string) (*domain.JournalEntry, error) {
	return findJournal(ctx, t.tx, journalID, true)
}

func queueLines(batch *pgx.Batch, journal domain.JournalEntry) {
	_, lines := mapping.ToModelJournal(journal)
	lineQuery := `
		INSERT INTO journal_lines (` + journalLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	for _, l := range lines {
		batch.Queue(lineQuery,
			l.JournalID,
			l.LineNo,
			l.AccountID,
			l.AccountCode,
			l.AccountName,
			l.Description,
			l.DebitAmount,
			l.CreditAmount,
		)
	}
}

// InsertJournal implements portsrepo.JournalTxRepository.
func (t *pgxLedgerTx) InsertJournal(ctx context.Context, journal domain.JournalEntry) error {
	m, _ := mapping.ToModelJournal(journal)
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO journal_entries (`+journalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`,
		m.JournalID,
		m.JournalNumber,
		m.Sequence,
		m.JournalDate,
		m.Reference,
		m.Narration,
		m.Status,
		m.TotalDebit,
		m.TotalCredit,
		m.PostedAt,
		m.PostedBy,
		m.ReversalEntryID,
		m.OriginalEntryID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	queueLines(batch, journal)

	br := t.tx.SendBatch(ctx, batch)
	// Close the batch results to check for errors in each command
	if err := br.Close(); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: journal %s already exists", apperrors.ErrDuplicate, m.JournalNumber)
		}
		return fmt.Errorf("failed to insert journal %s: %w", m.JournalID, err)
	}
	return nil
}

// UpdateJournal rewrites the header and replaces all lines.
func (t *pgxLedgerTx) UpdateJournal(ctx context.Context, journal domain.JournalEntry) error {
	m, _ := mapping.ToModelJournal(journal)
	batch := &pgx.Batch{}
	batch.Queue(`
		UPDATE journal_entries
		SET journal_date = $2, reference = $3, narration = $4, status = $5, total_debit = $6, total_credit = $7,
			posted_at = $8, posted_by = $9, reversal_entry_id = $10, original_entry_id = $11,
			last_updated_at = $12, last_updated_by = $13
		WHERE journal_id = $1;
	`,
		m.JournalID,
		m.JournalDate,
		m.Reference,
		m.Narration,
		m.Status,
		m.TotalDebit,
		m.TotalCredit,
		m.PostedAt,
		m.PostedBy,
		m.ReversalEntryID,
		m.OriginalEntryID,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	batch.Queue(`DELETE FROM journal_lines WHERE journal_id = $1;`, m.JournalID)
	queueLines(batch, journal)

	if err := t.tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to update journal %s: %w", m.JournalID, err)
	}
	return nil
}

// DeleteJournal removes a journal entry; its lines cascade.
func (t *pgxLedgerTx) DeleteJournal(ctx context.Context, journalID string) error {
	cmdTag, err := t.tx.Exec(ctx, `DELETE FROM journal_entries WHERE journal_id = $1`, journalID)
	if err != nil {
		return fmt.Errorf("failed to delete journal %s: %w", journalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
