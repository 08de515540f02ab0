package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/ledgerbook/internal/apperrors"
	"github.com/SscSPs/ledgerbook/internal/core/domain"
	portsrepo "github.com/SscSPs/ledgerbook/internal/core/ports/repositories"
	"github.com/SscSPs/ledgerbook/internal/models"
	"github.com/SscSPs/ledgerbook/internal/utils/mapping"
	"github.com/SscSPs/ledgerbook/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const journalColumns = `journal_id, journal_number, sequence, journal_date, reference, narration, status,
	total_debit, total_credit, posted_at, posted_by, reversal_entry_id, original_entry_id,
	created_at, created_by, last_updated_at, last_updated_by`

const journalLineColumns = `journal_id, line_no, account_id, account_code, account_name, description, debit_amount, credit_amount`

// PgxJournalRepository reads journal entries from Postgres.
type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal data.
func newPgxJournalRepository(pool *pgxpool.Pool) *PgxJournalRepository {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

func scanJournalHeader(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.JournalID,
		&m.JournalNumber,
		&m.Sequence,
		&m.JournalDate,
		&m.Reference,
		&m.Narration,
		&m.Status,
		&m.TotalDebit,
		&m.TotalCredit,
		&m.PostedAt,
		&m.PostedBy,
		&m.ReversalEntryID,
		&m.OriginalEntryID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// loadLines fetches the lines of the given journals keyed by journal id, in line order.
func loadLines(ctx context.Context, q querier, journalIDs []string) (map[string][]models.JournalLine, error) {
	res := make(map[string][]models.JournalLine, len(journalIDs))
	if len(journalIDs) == 0 {
		return res, nil
	}
	query := `SELECT ` + journalLineColumns + ` FROM journal_lines WHERE journal_id = ANY($1) ORDER BY journal_id, line_no`
	rows, err := q.Query(ctx, query, journalIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l models.JournalLine
		if err := rows.Scan(
			&l.JournalID,
			&l.LineNo,
			&l.AccountID,
			&l.AccountCode,
			&l.AccountName,
			&l.Description,
			&l.DebitAmount,
			&l.CreditAmount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan journal line: %w", err)
		}
		res[l.JournalID] = append(res[l.JournalID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal lines: %w", err)
	}
	return res, nil
}

func findJournal(ctx context.Context, q querier, journalID string, forUpdate bool) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE journal_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	header, err := scanJournalHeader(q.QueryRow(ctx, query, journalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find journal %s: %w", journalID, err)
	}

	lines, err := loadLines(ctx, q, []string{journalID})
	if err != nil {
		return nil, err
	}
	j := mapping.ToDomainJournal(header, lines[journalID])
	return &j, nil
}

// FindJournalByID retrieves a journal entry with its lines.
func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.JournalEntry, error) {
	return findJournal(ctx, r.Pool, journalID, false)
}

// ListJournals retrieves a page of journal entries ordered by date and journal number, newest first.
func (r *PgxJournalRepository) ListJournals(ctx context.Context, filter domain.JournalFilter) ([]domain.JournalEntry, *string, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		where = append(where, "status = "+arg(string(filter.Status)))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		where = append(where, fmt.Sprintf("(journal_number ILIKE %s OR narration ILIKE %s)", p, p))
	}
	if filter.DateFrom != nil {
		where = append(where, "journal_date >= "+arg(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		where = append(where, "journal_date <= "+arg(*filter.DateTo))
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		cursor, err := pagination.DecodeCursor(*filter.NextToken)
		if err != nil {
			return nil, nil, apperrors.Wrap(apperrors.KindValidation, apperrors.CodeInvalidInput, "invalid nextToken", err)
		}
		where = append(where, fmt.Sprintf("(journal_date, sequence) < (%s, %s)", arg(cursor.Date), arg(cursor.Sequence)))
	}

	query := `SELECT ` + journalColumns + ` FROM journal_entries`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY journal_date DESC, sequence DESC`
	if filter.Limit > 0 {
		// Fetch one extra row to know whether another page exists.
		query += ` LIMIT ` + arg(filter.Limit+1)
	}

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query journals: %w", err)
	}
	var headers []models.JournalEntry
	for rows.Next() {
		h, err := scanJournalHeader(rows)
		if err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		headers = append(headers, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating journal rows: %w", err)
	}

	var nextToken *string
	if filter.Limit > 0 && len(headers) > filter.Limit {
		headers = headers[:filter.Limit]
		last := headers[len(headers)-1]
		token := pagination.EncodeCursor(last.JournalDate, last.Sequence)
		nextToken = &token
	}

	ids := make([]string, len(headers))
	for i, h := range headers {
		ids[i] = h.JournalID
	}
	lines, err := loadLines(ctx, r.Pool, ids)
	if err != nil {
		return nil, nil, err
	}

	journals := make([]domain.JournalEntry, len(headers))
	for i, h := range headers {
		journals[i] = mapping.ToDomainJournal(h, lines[h.JournalID])
	}
	return journals, nextToken, nil
}
