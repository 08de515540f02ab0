package main

import (
	"os"

	"github.com/SscSPs/ledgerbook/cmd/ledgerbook_backend/cmd"
)

// @title Ledgerbook API
// @version 1.0
// @description Double-entry general ledger: chart of accounts, journal entries and financial reports.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
