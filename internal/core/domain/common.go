package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // Actor ID
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // Actor ID
}

// Role is the role carried by an authenticated actor.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleAccountant Role = "accountant"
	RoleManager    Role = "manager"
	RoleAuditor    Role = "auditor"
)

// Permission is a coarse capability checked before ledger operations.
type Permission string

const (
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
)

// Allows reports whether the role grants the permission.
func (r Role) Allows(p Permission) bool {
	switch r {
	case RoleAdmin, RoleAccountant:
		return true
	case RoleManager, RoleAuditor:
		return p == PermissionRead
	default:
		return false
	}
}

// Actor identifies who is performing an operation.
type Actor struct {
	ID   string
	Role Role
}
