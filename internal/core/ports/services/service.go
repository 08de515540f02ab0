package services

import (
	"context"

	"github.com/SscSPs/ledgerbook/internal/core/domain"
)

// Authorizer checks whether an actor may perform an operation
type Authorizer interface {
	Authorize(ctx context.Context, actor domain.Actor, perm domain.Permission) error
}

// ServiceContainer holds all service interfaces
type ServiceContainer struct {
	Account   AccountSvcFacade
	Journal   JournalSvcFacade
	Reporting ReportingService
}
