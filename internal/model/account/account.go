package account

import "time"

// Role distinguishes administrators from regular staff.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Status tracks the approval lifecycle of a self-registered account.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Account is the persisted account row. PasswordHash never leaves the server.
type Account struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Role         Role       `json:"role"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	ApprovedBy   *string    `json:"approved_by,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	LastLogin    *time.Time `json:"last_login,omitempty"`

	// ApprovedByName is joined in for admin listings, not stored.
	ApprovedByName string `json:"approved_by_name,omitempty"`
}

// CanUseConsole reports whether the account may reach protected data routes.
// Admin accounts are always treated as approved regardless of stored status.
func (a *Account) CanUseConsole() bool {
	return a.Role == RoleAdmin || a.Status == StatusApproved
}

// EffectiveStatus is the status surfaced to authorization failures; admins
// never report pending or rejected.
func (a *Account) EffectiveStatus() Status {
	if a.Role == RoleAdmin {
		return StatusApproved
	}
	return a.Status
}
