package dto

import (
	"time"

	"github.com/SscSPs/ledgerbook/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Code            string                `json:"code" binding:"required,max=20"`
	Name            string                `json:"name" binding:"required,max=200"`
	AccountType     domain.AccountType    `json:"accountType" binding:"required,account_type"`
	SubType         domain.AccountSubType `json:"subType" binding:"required,account_subtype"`
	ParentAccountID *string               `json:"parentAccountID"` // Optional, use pointer for nullability
	Description     string                `json:"description" binding:"max=500"`
	CurrencyCode    string                `json:"currencyCode" binding:"omitempty,len=3"` // Defaults to the configured currency
	OpeningBalance  decimal.Decimal       `json:"openingBalance" binding:"decimal_gte0"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
// The account type cannot be changed.
type UpdateAccountRequest struct {
	Code            *string                `json:"code" binding:"omitempty,min=1,max=20"`
	Name            *string                `json:"name" binding:"omitempty,min=1,max=200"`
	SubType         *domain.AccountSubType `json:"subType" binding:"omitempty,account_subtype"`
	ParentAccountID *string                `json:"parentAccountID"` // Empty string moves the account to the root
	Description     *string                `json:"description" binding:"omitempty,max=500"`
}

// AccountResponse defines the data returned for an account.
// Mirrors domain.Account.
type AccountResponse struct {
	AccountID       string                `json:"accountID"`
	Code            string                `json:"code"`
	Name            string                `json:"name"`
	AccountType     domain.AccountType    `json:"accountType"`
	SubType         domain.AccountSubType `json:"subType"`
	ParentAccountID string                `json:"parentAccountID"` // Note: Empty string if root
	Level           int                   `json:"level"`
	Description     string                `json:"description"`
	CurrencyCode    string                `json:"currencyCode"`
	IsActive        bool                  `json:"isActive"`
	OpeningBalance  decimal.Decimal       `json:"openingBalance"`
	Balance         decimal.Decimal       `json:"balance"`
	CreatedAt       time.Time             `json:"createdAt"`
	CreatedBy       string                `json:"createdBy"`
	LastUpdatedAt   time.Time             `json:"lastUpdatedAt"`
	LastUpdatedBy   string                `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       acc.AccountID,
		Code:            acc.Code,
		Name:            acc.Name,
		AccountType:     acc.AccountType,
		SubType:         acc.SubType,
		ParentAccountID: acc.ParentAccountID,
		Level:           acc.Level,
		Description:     acc.Description,
		CurrencyCode:    acc.CurrencyCode,
		IsActive:        acc.IsActive,
		OpeningBalance:  acc.OpeningBalance,
		Balance:         acc.Balance,
		CreatedAt:       acc.CreatedAt,
		CreatedBy:       acc.CreatedBy,
		LastUpdatedAt:   acc.LastUpdatedAt,
		LastUpdatedBy:   acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	AccountType string `form:"accountType" binding:"omitempty,account_type"`
	ActiveOnly  bool   `form:"activeOnly"`
	Limit       int    `form:"limit,default=100" binding:"min=0,max=1000"`
	Offset      int    `form:"offset,default=0" binding:"min=0"`
}

// ToFilter converts the query parameters to a domain filter.
func (p ListAccountsParams) ToFilter() domain.AccountFilter {
	return domain.AccountFilter{
		AccountType: domain.AccountType(p.AccountType),
		ActiveOnly:  p.ActiveOnly,
		Limit:       p.Limit,
		Offset:      p.Offset,
	}
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}
