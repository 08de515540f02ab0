package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LedgerSettings carries the tunables of the posting engine and reporters.
// It is built from configuration and passed in explicitly.
type LedgerSettings struct {
	BalanceTolerance    decimal.Decimal
	JournalNumberPrefix string
	JournalNumberWidth  int
	DefaultCurrency     string
}

// DefaultLedgerSettings returns the settings used when nothing is configured.
func DefaultLedgerSettings() LedgerSettings {
	return LedgerSettings{
		BalanceTolerance:    decimal.New(1, -2),
		JournalNumberPrefix: "JE",
		JournalNumberWidth:  6,
		DefaultCurrency:     "USD",
	}
}

// FormatJournalNumber renders a sequence value as a human-readable journal number.
func (s LedgerSettings) FormatJournalNumber(seq int64) string {
	return fmt.Sprintf("%s%0*d", s.JournalNumberPrefix, s.JournalNumberWidth, seq)
}
