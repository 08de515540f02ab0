package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledgerbook/internal/core/domain"
)

// ReportingRepository defines the aggregate reads used by the reporters.
// Only lines of entries that affected balances (posted or reversed) are included.
type ReportingRepository interface {
	// SumPostedByAccount sums debit and credit per account for entries dated in [from, to].
	// A nil from means since inception.
	SumPostedByAccount(ctx context.Context, from *time.Time, to time.Time) ([]domain.AccountTotals, error)

	// ListPostedLinesForAccount lists the lines touching an account for entries dated on or before to,
	// ordered by entry date then journal number. A nil to means no upper bound.
	ListPostedLinesForAccount(ctx context.Context, accountID string, to *time.Time) ([]domain.PostedLine, error)
}
