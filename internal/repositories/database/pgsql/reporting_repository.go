package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/ledgerbook/internal/core/domain"
	portsrepo "github.com/SscSPs/ledgerbook/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// SumPostedByAccount sums debit and credit per account over entries that affected balances.
func (r *reportingRepository) SumPostedByAccount(ctx context.Context, from *time.Time, to time.Time) ([]domain.AccountTotals, error) {
	query := `
		SELECT
			l.account_id,
			COALESCE(SUM(l.debit_amount), 0) AS total_debit,
			COALESCE(SUM(l.credit_amount), 0) AS total_credit
		FROM journal_lines l
		JOIN journal_entries j ON l.journal_id = j.journal_id
		WHERE j.status IN ('posted', 'reversed')
			AND j.journal_date <= $1
			AND ($2::date IS NULL OR j.journal_date >= $2::date)
		GROUP BY l.account_id
		ORDER BY l.account_id
	`
	rows, err := r.Pool.Query(ctx, query, to, from)
	if err != nil {
		return nil, fmt.Errorf("error querying posted totals: %w", err)
	}
	defer rows.Close()

	result := []domain.AccountTotals{}
	for rows.Next() {
		var t domain.AccountTotals
		if err := rows.Scan(&t.AccountID, &t.Debit, &t.Credit); err != nil {
			return nil, fmt.Errorf("error scanning posted totals row: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posted totals rows: %w", err)
	}
	return result, nil
}

// ListPostedLinesForAccount lists an account's posted lines in (date, journal number) order.
func (r *reportingRepository) ListPostedLinesForAccount(ctx context.Context, accountID string, to *time.Time) ([]domain.PostedLine, error) {
	query := `
		SELECT j.journal_id, j.journal_number, j.journal_date, j.narration, j.reference,
			l.description, l.debit_amount, l.credit_amount
		FROM journal_lines l
		JOIN journal_entries j ON l.journal_id = j.journal_id
		WHERE l.account_id = $1
			AND j.status IN ('posted', 'reversed')
			AND ($2::date IS NULL OR j.journal_date <= $2::date)
		ORDER BY j.journal_date, j.sequence, l.line_no
	`
	rows, err := r.Pool.Query(ctx, query, accountID, to)
	if err != nil {
		return nil, fmt.Errorf("error querying ledger lines for account %s: %w", accountID, err)
	}
	defer rows.Close()

	result := []domain.PostedLine{}
	for rows.Next() {
		var l domain.PostedLine
		if err := rows.Scan(
			&l.JournalID,
			&l.JournalNumber,
			&l.Date,
			&l.Narration,
			&l.Reference,
			&l.Description,
			&l.Debit,
			&l.Credit,
		); err != nil {
			return nil, fmt.Errorf("error scanning ledger line: %w", err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger lines: %w", err)
	}
	return result, nil
}
