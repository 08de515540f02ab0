package cmd

import (
	"fmt"
	"time"

	"github.com/SscSPs/ledgerbook/internal/core/domain"
	"github.com/SscSPs/ledgerbook/internal/middleware"
	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenRole    string
	tokenTTL     time.Duration
)

// tokenCmd mints a bearer token signed with the configured secret, for local use.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a signed bearer token for an actor",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		role := domain.Role(tokenRole)
		if !role.Allows(domain.PermissionRead) {
			return fmt.Errorf("unknown role %q", tokenRole)
		}
		ttl := tokenTTL
		if ttl == 0 {
			ttl = cfg.JWTExpiryDuration
		}

		token, err := middleware.NewToken(cfg.JWTSecret, cfg.JWTIssuer, domain.Actor{ID: tokenSubject, Role: role}, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "sub", "", "actor id to place in the subject claim")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(domain.RoleAccountant), "actor role (admin, accountant, manager, auditor)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (defaults to JWT_EXPIRY_DURATION)")
	_ = tokenCmd.MarkFlagRequired("sub")
}
