// Package auth orchestrates account registration, credential verification,
// and the pending/approved/rejected lifecycle driven by administrators.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/alexiscpa/legal-consultant/internal/apperr"
	"github.com/alexiscpa/legal-consultant/internal/model/account"
	"github.com/alexiscpa/legal-consultant/internal/storage"
	"github.com/alexiscpa/legal-consultant/internal/token"
)

const minPasswordLen = 6

// Generic credential failure. Never distinguish unknown email from wrong
// password, to resist account enumeration.
const invalidCredentials = "invalid email or password"

// Service is the access-control authority.
type Service struct {
	log      *slog.Logger
	accounts storage.AccountStore
	tokens   *token.Codec
	cost     int
}

// NewService wires the authority with its credential store and token codec.
// bcryptCost of zero falls back to the bcrypt default.
func NewService(log *slog.Logger, accounts storage.AccountStore, tokens *token.Codec, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{log: log, accounts: accounts, tokens: tokens, cost: bcryptCost}
}

// Register creates a pending user account. Role is always user; nobody
// self-registers as admin.
func (s *Service) Register(ctx context.Context, email, password, name string) (*account.Account, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" || strings.TrimSpace(name) == "" {
		return nil, apperr.Validation("email, password and name are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.Validation("invalid email address")
	}
	if len(password) < minPasswordLen {
		return nil, apperr.Validation(fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	a := &account.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
		Role:         account.RoleUser,
		Status:       account.StatusPending,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.accounts.Create(ctx, a); err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return nil, apperr.Conflict("email already registered")
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.log.InfoContext(ctx, "account registered", slog.String("account_id", a.ID), slog.String("email", a.Email))
	return a, nil
}

// Login verifies credentials and issues a bearer token on success.
func (s *Service) Login(ctx context.Context, email, password string) (string, *account.Account, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, apperr.Validation("email and password are required")
	}

	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.WarnContext(ctx, "login for unknown email", slog.String("email", email))
			return "", nil, apperr.Authentication(invalidCredentials)
		}
		return "", nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		s.log.WarnContext(ctx, "password mismatch", slog.String("account_id", a.ID))
		return "", nil, apperr.Authentication(invalidCredentials)
	}

	now := time.Now().UTC()
	if err := s.accounts.UpdateLastLogin(ctx, a.ID, now); err != nil {
		return "", nil, fmt.Errorf("failed to update last login: %w", err)
	}
	a.LastLogin = &now

	signed, err := s.tokens.Issue(a.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.log.InfoContext(ctx, "login succeeded", slog.String("account_id", a.ID))
	return signed, a, nil
}

// CurrentSession resolves a bearer token to its account.
func (s *Service) CurrentSession(ctx context.Context, raw string) (*account.Account, error) {
	subject, err := s.tokens.Verify(raw)
	if err != nil {
		s.log.WarnContext(ctx, "token verification failed", slog.Any("error", err))
		return nil, apperr.Authentication("invalid or expired token")
	}

	a, err := s.accounts.GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.Authentication("invalid or expired token")
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return a, nil
}

// Approve transitions a pending account to approved, recording the approver.
func (s *Service) Approve(ctx context.Context, admin *account.Account, targetID string) (*account.Account, error) {
	return s.decide(ctx, admin, targetID, account.StatusApproved)
}

// Reject transitions a pending account to rejected. Rejected is terminal.
func (s *Service) Reject(ctx context.Context, admin *account.Account, targetID string) (*account.Account, error) {
	return s.decide(ctx, admin, targetID, account.StatusRejected)
}

func (s *Service) decide(ctx context.Context, admin *account.Account, targetID string, next account.Status) (*account.Account, error) {
	if admin.Role != account.RoleAdmin {
		return nil, apperr.Authorization("admin access required", string(admin.EffectiveStatus()))
	}

	target, err := s.accounts.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("account not found")
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if target.Status != account.StatusPending {
		return nil, apperr.State("account is not in pending status")
	}

	now := time.Now().UTC()
	if err := s.accounts.UpdateStatus(ctx, target.ID, next, admin.ID, now); err != nil {
		// A concurrent decision can win between the read above and this write.
		if errors.Is(err, storage.ErrNotPending) {
			return nil, apperr.State("account is not in pending status")
		}
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("account not found")
		}
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	target.Status = next
	target.ApprovedBy = &admin.ID
	target.ApprovedAt = &now

	s.log.InfoContext(ctx, "lifecycle decision",
		slog.String("account_id", target.ID),
		slog.String("status", string(next)),
		slog.String("decided_by", admin.ID))
	return target, nil
}

// DeleteAccount removes an account permanently. Admin accounts and the acting
// admin's own account are protected.
func (s *Service) DeleteAccount(ctx context.Context, admin *account.Account, targetID string) error {
	if admin.Role != account.RoleAdmin {
		return apperr.Authorization("admin access required", string(admin.EffectiveStatus()))
	}
	if targetID == admin.ID {
		return apperr.State("cannot delete your own account")
	}

	target, err := s.accounts.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound("account not found")
		}
		return fmt.Errorf("failed to load account: %w", err)
	}
	if target.Role == account.RoleAdmin {
		return apperr.State("cannot delete admin accounts")
	}

	if err := s.accounts.Delete(ctx, targetID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound("account not found")
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}

	s.log.InfoContext(ctx, "account deleted", slog.String("account_id", targetID), slog.String("deleted_by", admin.ID))
	return nil
}

// ListAccounts returns all accounts for the admin console.
func (s *Service) ListAccounts(ctx context.Context) ([]account.Account, error) {
	return s.accounts.List(ctx)
}

// ListPending returns accounts awaiting a decision.
func (s *Service) ListPending(ctx context.Context) ([]account.Account, error) {
	return s.accounts.ListByStatus(ctx, account.StatusPending)
}

// SeedAdmin creates the administrator account at first boot. It is a no-op
// when the configured admin email already exists; this is the only path that
// ever creates an admin or an approved account directly.
func (s *Service) SeedAdmin(ctx context.Context, email, password, name string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return fmt.Errorf("admin email and password must be configured")
	}

	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to check admin account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	a := &account.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         account.RoleAdmin,
		Status:       account.StatusApproved,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	s.log.InfoContext(ctx, "admin account seeded", slog.String("account_id", a.ID), slog.String("email", a.Email))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
