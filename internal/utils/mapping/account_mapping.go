package mapping

import (
	"database/sql"

	"github.com/SscSPs/ledgerbook/internal/core/domain"
	"github.com/SscSPs/ledgerbook/internal/models"
)

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:       d.AccountID,
		Code:            d.Code,
		Name:            d.Name,
		AccountType:     string(d.AccountType),
		SubType:         string(d.SubType),
		ParentAccountID: nullString(d.ParentAccountID),
		Level:           d.Level,
		Description:     d.Description,
		CurrencyCode:    d.CurrencyCode,
		IsActive:        d.IsActive,
		OpeningBalance:  d.OpeningBalance,
		Balance:         d.Balance,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:       m.AccountID,
		Code:            m.Code,
		Name:            m.Name,
		AccountType:     domain.AccountType(m.AccountType),
		SubType:         domain.AccountSubType(m.SubType),
		ParentAccountID: m.ParentAccountID.String,
		Level:           m.Level,
		Description:     m.Description,
		CurrencyCode:    m.CurrencyCode,
		IsActive:        m.IsActive,
		OpeningBalance:  m.OpeningBalance,
		Balance:         m.Balance,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
