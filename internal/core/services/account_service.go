package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/ledgerbook/internal/apperrors"
	"github.com/SscSPs/ledgerbook/internal/core/domain"
	portsrepo "github.com/SscSPs/ledgerbook/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledgerbook/internal/core/ports/services"
	"github.com/SscSPs/ledgerbook/internal/dto"
	"github.com/google/uuid"
	"golang.org/x/text/currency"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	txManager   portsrepo.TransactionManager
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, txManager portsrepo.TransactionManager, opts ...ServiceOption) portssvc.AccountSvcFacade {
	return &accountService{
		BaseService: newBaseService(opts...),
		accountRepo: repo,
		txManager:   txManager,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actor domain.Actor) (*domain.Account, error) {
	if err := s.AuthorizeActor(ctx, actor, domain.PermissionWrite); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	if code == "" || name == "" {
		return nil, apperrors.Validationf(apperrors.CodeInvalidInput, "account code and name are required")
	}
	if !req.AccountType.IsValid() {
		return nil, apperrors.Validationf(apperrors.CodeInvalidInput, "unknown account type '%s'", req.AccountType)
	}
	if !req.SubType.BelongsTo(req.AccountType) {
		return nil, apperrors.Validationf(apperrors.CodeInvalidSubType, "sub type '%s' does not belong to account type '%s'", req.SubType, req.AccountType)
	}
	if req.OpeningBalance.IsNegative() {
		return nil, apperrors.Validationf(apperrors.CodeInvalidInput, "opening balance must not be negative")
	}
	currencyCode, err := s.normalizeCurrency(req.CurrencyCode)
	if err != nil {
		return nil, err
	}

	parentID := ""
	if req.ParentAccountID != nil {
		parentID = *req.ParentAccountID
	}

	now := s.now()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		Code:            code,
		Name:            name,
		AccountType:     req.AccountType,
		SubType:         req.SubType,
		ParentAccountID: parentID,
		Description:     req.Description,
		CurrencyCode:    currencyCode,
		IsActive:        true,
		OpeningBalance:  req.OpeningBalance,
		Balance:         req.OpeningBalance,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.ID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.ID,
		},
	}

	// The parent row stays locked until the insert commits, so it cannot be
	// deactivated or moved underneath the new child.
	err = s.txManager.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if parentID != "" {
			locked, err := tx.LockAccountsForUpdate(ctx, []string{parentID})
			if err != nil {
				return err
			}
			parent, ok := locked[parentID]
			if !ok {
				return apperrors.NotFoundf(apperrors.CodeInvalidParent, "parent account %s does not exist", parentID)
			}
			if !parent.IsActive {
				return apperrors.Validationf(apperrors.CodeInactiveAccount, "parent account %s is inactive", parent.Code)
			}
			if parent.AccountType != account.AccountType {
				return apperrors.Integrityf(apperrors.CodeTypeMismatch,
					"parent account %s is %s, not %s", parent.Code, parent.AccountType, account.AccountType)
			}
			account.Level = parent.Level + 1
			if account.Level > domain.MaxAccountLevel {
				return apperrors.Integrityf(apperrors.CodeMaxDepthExceeded,
					"account hierarchy may not be deeper than %d levels", domain.MaxAccountLevel)
			}
		}
		return tx.InsertAccount(ctx, account)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.Wrap(apperrors.KindConflict, apperrors.CodeDuplicateCode,
				fmt.Sprintf("account code '%s' already exists", code), err)
		}
		if apperrors.KindOf(err) == apperrors.KindInternal {
			s.LogError(ctx, err, "Failed to save account", slog.String("account_id", account.AccountID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", account.AccountID),
		slog.String("code", account.Code))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string, actor domain.Actor) (*domain.Account, error) {
	if err := s.AuthorizeActor(ctx, actor, domain.PermissionRead); err != nil {
		return nil, err
	}
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, filter domain.AccountFilter, actor domain.Actor) ([]domain.Account, error) {
	if err := s.AuthorizeActor(ctx, actor, domain.PermissionRead); err != nil {
		return nil, err
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, actor domain.Actor) (*domain.Account, error) {
	if err := s.AuthorizeActor(ctx, actor, domain.PermissionWrite); err != nil {
		return nil, err
	}
	var code, name string
	if req.Code != nil {
		if code = strings.TrimSpace(*req.Code); code == "" {
			return nil, apperrors.Validationf(apperrors.CodeInvalidInput, "account code must not be empty")
		}
	}
	if req.Name != nil {
		if name = strings.TrimSpace(*req.Name); name == "" {
			return nil, apperrors.Validationf(apperrors.CodeInvalidInput, "account name must not be empty")
		}
	}

	// The snapshot only plans which rows to lock; every write is built from the locked rows.
	snapshot, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	moving := req.ParentAccountID != nil && *req.ParentAccountID != snapshot.ParentAccountID
	lockIDs := []string{accountID}
	var planned []domain.Account
	if moving {
		if *req.ParentAccountID != "" {
			lockIDs = append(lockIDs, *req.ParentAccountID)
		}
		if planned, err = s.descendants(ctx, accountID); err != nil {
			return nil, err
		}
		for _, d := range planned {
			lockIDs = append(lockIDs, d.AccountID)
		}
	}

	var updated domain.Account
	err = s.txManager.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		locked, err := tx.LockAccountsForUpdate(ctx, lockIDs)
		if err != nil {
			return err
		}
		account, ok := locked[accountID]
		if !ok {
			return apperrors.ErrNotFound
		}

		if req.Code != nil {
			account.Code = code
		}
		if req.Name != nil {
			account.Name = name
		}
		if req.Description != nil {
			account.Description = *req.Description
		}
		if req.SubType != nil {
			if !req.SubType.BelongsTo(account.AccountType) {
				return apperrors.Validationf(apperrors.CodeInvalidSubType,
					"sub type '%s' does not belong to account type '%s'", *req.SubType, account.AccountType)
			}
			account.SubType = *req.SubType
		}

		var descendants []domain.Account
		levelShift := 0
		if req.ParentAccountID != nil && *req.ParentAccountID != account.ParentAccountID {
			if !moving {
				return hierarchyChanged(account)
			}
			if descendants, err = s.descendants(ctx, accountID); err != nil {
				return err
			}
			if !sameAccounts(planned, descendants) {
				return hierarchyChanged(account)
			}
			newLevel, err := validateReparent(account, *req.ParentAccountID, locked, descendants)
			if err != nil {
				return err
			}
			levelShift = newLevel - account.Level
			account.ParentAccountID = *req.ParentAccountID
			account.Level = newLevel
		}
		for _, d := range descendants {
			if locked[d.AccountID].Level+levelShift > domain.MaxAccountLevel {
				return apperrors.Integrityf(apperrors.CodeMaxDepthExceeded,
					"moving %s would place %s deeper than %d levels", account.Code, d.Code, domain.MaxAccountLevel)
			}
		}

		now := s.now()
		account.LastUpdatedAt = now
		account.LastUpdatedBy = actor.ID
		if err := tx.UpdateAccount(ctx, account); err != nil {
			return err
		}
		if levelShift != 0 {
			for _, d := range descendants {
				row := locked[d.AccountID]
				row.Level += levelShift
				row.LastUpdatedAt = now
				row.LastUpdatedBy = actor.ID
				if err := tx.UpdateAccount(ctx, row); err != nil {
					return fmt.Errorf("failed to update level of %s: %w", row.AccountID, err)
				}
			}
		}
		updated = account
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.Wrap(apperrors.KindConflict, apperrors.CodeDuplicateCode,
				fmt.Sprintf("account code '%s' already exists", code), err)
		}
		if apperrors.KindOf(err) == apperrors.KindInternal {
			s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Account updated successfully", slog.String("account_id", accountID))
	return &updated, nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, actor domain.Actor) error {
	if err := s.AuthorizeActor(ctx, actor, domain.PermissionWrite); err != nil {
		return err
	}

	// Creating a child locks its parent, so no child can appear between the check and the write.
	changed := false
	err := s.txManager.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		locked, err := tx.LockAccountsForUpdate(ctx, []string{accountID})
		if err != nil {
			return err
		}
		account, ok := locked[accountID]
		if !ok {
			return apperrors.ErrNotFound
		}
		if !account.IsActive {
			return nil
		}

		children, err := s.accountRepo.ListChildAccounts(ctx, accountID)
		if err != nil {
			return fmt.Errorf("failed to list child accounts: %w", err)
		}
		for _, child := range children {
			if child.IsActive {
				return apperrors.Conflictf(apperrors.CodeHasActiveChildren,
					"account %s has active child account %s", account.Code, child.Code)
			}
		}

		account.IsActive = false
		account.LastUpdatedAt = s.now()
		account.LastUpdatedBy = actor.ID
		changed = true
		return tx.UpdateAccount(ctx, account)
	})
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindInternal {
			s.LogError(ctx, err, "Failed to deactivate account", slog.String("account_id", accountID))
		}
		return err
	}

	if changed {
		s.LogInfo(ctx, "Account deactivated successfully", slog.String("account_id", accountID))
	}
	return nil
}

func hierarchyChanged(account domain.Account) error {
	return apperrors.Conflictf(apperrors.CodeConflict,
		"account hierarchy around %s changed during the update, retry", account.Code)
}

// sameAccounts reports whether both lists hold the same account ids in the same order.
func sameAccounts(a, b []domain.Account) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].AccountID != b[i].AccountID {
			return false
		}
	}
	return true
}

// normalizeCurrency upper-cases an ISO 4217 code, falling back to the configured default.
func (s *accountService) normalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = s.Settings.DefaultCurrency
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", apperrors.Validationf(apperrors.CodeInvalidCurrency, "'%s' is not an ISO 4217 currency code", code)
	}
	return unit.String(), nil
}

// validateReparent checks a move under newParentID and returns the account's new level.
// locked holds the new parent and descendants holds the account's current subtree.
func validateReparent(account domain.Account, newParentID string, locked map[string]domain.Account, descendants []domain.Account) (int, error) {
	if newParentID == "" {
		return 0, nil
	}
	if newParentID == account.AccountID {
		return 0, apperrors.Integrityf(apperrors.CodeCircularParent, "account %s cannot be its own parent", account.Code)
	}
	parent, ok := locked[newParentID]
	if !ok {
		return 0, apperrors.NotFoundf(apperrors.CodeInvalidParent, "parent account %s does not exist", newParentID)
	}
	for _, d := range descendants {
		if d.AccountID == newParentID {
			return 0, apperrors.Integrityf(apperrors.CodeCircularParent,
				"account %s cannot be moved under its own descendant %s", account.Code, parent.Code)
		}
	}
	if parent.AccountType != account.AccountType {
		return 0, apperrors.Integrityf(apperrors.CodeTypeMismatch,
			"parent account %s is %s, not %s", parent.Code, parent.AccountType, account.AccountType)
	}
	if !parent.IsActive {
		return 0, apperrors.Validationf(apperrors.CodeInactiveAccount, "parent account %s is inactive", parent.Code)
	}

	level := parent.Level + 1
	if level > domain.MaxAccountLevel {
		return 0, apperrors.Integrityf(apperrors.CodeMaxDepthExceeded,
			"account hierarchy may not be deeper than %d levels", domain.MaxAccountLevel)
	}
	return level, nil
}

// descendants returns every account below rootID, breadth first.
func (s *accountService) descendants(ctx context.Context, rootID string) ([]domain.Account, error) {
	var result []domain.Account
	queue := []string{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		children, err := s.accountRepo.ListChildAccounts(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			result = append(result, child)
			queue = append(queue, child.AccountID)
		}
	}
	return result, nil
}
