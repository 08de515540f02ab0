package services

import (
	"context"

	"github.com/SscSPs/ledgerbook/internal/apperrors"
	"github.com/SscSPs/ledgerbook/internal/core/domain"
	portssvc "github.com/SscSPs/ledgerbook/internal/core/ports/services"
)

type roleAuthorizer struct{}

// NewRoleAuthorizer returns an Authorizer that grants permissions from the actor's role.
func NewRoleAuthorizer() portssvc.Authorizer {
	return roleAuthorizer{}
}

func (roleAuthorizer) Authorize(_ context.Context, actor domain.Actor, perm domain.Permission) error {
	if actor.ID == "" {
		return apperrors.Forbiddenf("an authenticated actor is required")
	}
	if !actor.Role.Allows(perm) {
		return apperrors.Forbiddenf("role '%s' may not %s the ledger", actor.Role, perm)
	}
	return nil
}
