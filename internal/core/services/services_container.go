package services

import (
	portsrepo "github.com/SscSPs/ledgerbook/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledgerbook/internal/core/ports/services"
	"github.com/SscSPs/ledgerbook/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	// Every service shares one authorizer and the configured ledger settings
	opts := []ServiceOption{
		WithAuthorizer(NewRoleAuthorizer()),
		WithLedgerSettings(cfg.Ledger()),
	}

	return &portssvc.ServiceContainer{
		Account:   NewAccountService(repos.AccountRepo, repos.TxManager, opts...),
		Journal:   NewJournalService(repos.AccountRepo, repos.JournalRepo, repos.TxManager, opts...),
		Reporting: NewReportingService(repos.AccountRepo, repos.ReportingRepo, opts...),
	}
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade = (*accountService)(nil)
	_ portssvc.JournalSvcFacade = (*journalService)(nil)
	_ portssvc.ReportingService = (*reportingService)(nil)
)
