package accounting

import (
	"fmt"

	"github.com/SscSPs/ledgerbook/internal/apperrors"
	"github.com/SscSPs/ledgerbook/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AmountScale is the number of decimal places a line amount may carry.
const AmountScale int32 = 2

// SignedDelta returns the change a debit/credit pair makes to the balance of an account of type t.
// Balances are kept on the account type's normal side:
// ASSET/EXPENSE -> debit - credit
// LIABILITY/EQUITY/INCOME -> credit - debit
func SignedDelta(t domain.AccountType, debit, credit decimal.Decimal) (decimal.Decimal, error) {
	switch t {
	case domain.Asset, domain.Expense:
		return debit.Sub(credit), nil
	case domain.Liability, domain.Equity, domain.Income:
		return credit.Sub(debit), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s'", t)
	}
}

// NetToColumns nets debit and credit totals onto a single trial balance column.
// A net on the normal side lands in that side's column; a flipped net shows its magnitude on the other side.
func NetToColumns(t domain.AccountType, debitTotal, creditTotal decimal.Decimal) (debitBalance, creditBalance decimal.Decimal, err error) {
	net, err := SignedDelta(t, debitTotal, creditTotal)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	debitBalance, creditBalance = decimal.Zero, decimal.Zero
	switch {
	case net.IsZero():
	case (t.NormalSide() == domain.DebitSide) == net.IsPositive():
		debitBalance = net.Abs()
	default:
		creditBalance = net.Abs()
	}
	return debitBalance, creditBalance, nil
}

// WithinTolerance reports whether a and b differ by strictly less than tolerance.
func WithinTolerance(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(tolerance)
}

// ValidateLine checks that a line carries exactly one positive, non-negative amount.
func ValidateLine(index int, line domain.JournalLine) error {
	if line.AccountID == "" {
		return apperrors.Validationf(apperrors.CodeInvalidLine, "line %d: account is required", index+1)
	}
	if line.DebitAmount.IsNegative() || line.CreditAmount.IsNegative() {
		return apperrors.Validationf(apperrors.CodeInvalidLine, "line %d: amounts must not be negative", index+1)
	}
	hasDebit, hasCredit := line.DebitAmount.IsPositive(), line.CreditAmount.IsPositive()
	if hasDebit == hasCredit {
		return apperrors.Validationf(apperrors.CodeInvalidLine, "line %d: exactly one of debit or credit must be positive", index+1)
	}
	if !line.DebitAmount.Equal(line.DebitAmount.Round(AmountScale)) || !line.CreditAmount.Equal(line.CreditAmount.Round(AmountScale)) {
		return apperrors.Validationf(apperrors.CodeInvalidLine, "line %d: amounts may have at most %d decimal places", index+1, AmountScale)
	}
	return nil
}

// ValidateShape checks the line count and each line's shape.
func ValidateShape(lines []domain.JournalLine) error {
	if len(lines) < domain.MinJournalLines {
		return apperrors.Validationf(apperrors.CodeTooFewLines, "journal entry must have at least %d lines", domain.MinJournalLines)
	}
	for i, line := range lines {
		if err := ValidateLine(i, line); err != nil {
			return err
		}
	}
	return nil
}

// ValidateBalance checks that debits and credits differ by less than tolerance.
func ValidateBalance(lines []domain.JournalLine, tolerance decimal.Decimal) error {
	debit, credit := decimal.Zero, decimal.Zero
	for _, line := range lines {
		debit = debit.Add(line.DebitAmount)
		credit = credit.Add(line.CreditAmount)
	}
	if !WithinTolerance(debit, credit, tolerance) {
		return Unbalanced(debit, credit)
	}
	return nil
}

// ValidateLines checks the line count, each line's shape and the debit/credit balance.
func ValidateLines(lines []domain.JournalLine, tolerance decimal.Decimal) error {
	if err := ValidateShape(lines); err != nil {
		return err
	}
	return ValidateBalance(lines, tolerance)
}

// Unbalanced builds the error returned when debits and credits differ.
func Unbalanced(debit, credit decimal.Decimal) error {
	return apperrors.Integrityf(apperrors.CodeUnbalanced,
		"journal entry is not balanced: total debit %s, total credit %s", debit.StringFixed(2), credit.StringFixed(2))
}

// AggregateDeltas sums the signed balance change per account for a set of lines.
// accounts must contain every account referenced by the lines.
func AggregateDeltas(lines []domain.JournalLine, accounts map[string]domain.Account) (map[string]decimal.Decimal, error) {
	deltas := make(map[string]decimal.Decimal, len(accounts))
	for _, line := range lines {
		acc, ok := accounts[line.AccountID]
		if !ok {
			return nil, fmt.Errorf("account %s not resolved", line.AccountID)
		}
		delta, err := SignedDelta(acc.AccountType, line.DebitAmount, line.CreditAmount)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", line.AccountID, err)
		}
		deltas[line.AccountID] = deltas[line.AccountID].Add(delta)
	}
	return deltas, nil
}
