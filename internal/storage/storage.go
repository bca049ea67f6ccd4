// Package storage defines the persistence interfaces consumed by services.
// Implementations live in subpackages; sqlite is the only one today.
package storage

import (
	"context"
	"time"

	"github.com/alexiscpa/legal-consultant/internal/model/account"
	"github.com/alexiscpa/legal-consultant/internal/model/chat"
	"github.com/alexiscpa/legal-consultant/internal/model/contract"
	"github.com/alexiscpa/legal-consultant/internal/model/scenario"
)

// AccountStore persists account rows. Email uniqueness is enforced by the
// store itself (unique constraint), never by check-then-insert in callers.
type AccountStore interface {
	// Create inserts a new account. Returns ErrDuplicateEmail when the
	// normalized email is already taken.
	Create(ctx context.Context, a *account.Account) error

	// GetByEmail looks up an account by normalized email.
	// Returns ErrNotFound when absent.
	GetByEmail(ctx context.Context, email string) (*account.Account, error)

	// GetByID looks up an account by identifier.
	// Returns ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*account.Account, error)

	// List returns all accounts, newest first, with approver names joined in.
	List(ctx context.Context) ([]account.Account, error)

	// ListByStatus returns accounts in the given status, oldest first.
	ListByStatus(ctx context.Context, status account.Status) ([]account.Account, error)

	// UpdateStatus records an approve/reject decision. Only pending rows
	// transition; a row in any other status returns ErrNotPending so
	// concurrent decisions cannot overwrite each other.
	UpdateStatus(ctx context.Context, id string, status account.Status, approvedBy string, at time.Time) error

	// UpdateLastLogin stamps a successful authentication.
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error

	// Delete removes an account permanently. Returns ErrNotFound when absent.
	Delete(ctx context.Context, id string) error
}

// ContractStore persists reviewed contracts.
type ContractStore interface {
	CreateContract(ctx context.Context, c *contract.Contract) error
	ListContracts(ctx context.Context) ([]contract.Contract, error)
	DeleteContract(ctx context.Context, id string) error
}

// ScenarioStore persists saved scenario consultations.
type ScenarioStore interface {
	CreateScenario(ctx context.Context, s *scenario.Scenario) error
	ListScenarios(ctx context.Context) ([]scenario.Scenario, error)
	DeleteScenario(ctx context.Context, id string) error
}

// ChatStore persists the advisor transcript.
type ChatStore interface {
	AppendTurn(ctx context.Context, t *chat.Turn) error
	ListTurns(ctx context.Context) ([]chat.Turn, error)
	ClearTurns(ctx context.Context) error
}
