package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexiscpa/legal-consultant/internal/model/account"
	"github.com/alexiscpa/legal-consultant/internal/storage"
)

// Create inserts a new account row.
func (s *Storage) Create(ctx context.Context, a *account.Account) error {
	query := `
		INSERT INTO accounts (id, email, password_hash, name, role, status, created_at, approved_by, approved_at, last_login)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		a.ID,
		a.Email,
		a.PasswordHash,
		a.Name,
		string(a.Role),
		string(a.Status),
		a.CreatedAt,
		a.ApprovedBy,
		a.ApprovedAt,
		a.LastLogin,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: accounts.email") {
			return storage.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

const accountColumns = `id, email, password_hash, name, role, status, created_at, approved_by, approved_at, last_login`

func scanAccount(row *sql.Row) (*account.Account, error) {
	a := &account.Account{}
	var approvedBy sql.NullString
	var approvedAt, lastLogin sql.NullTime

	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.Name,
		&a.Role,
		&a.Status,
		&a.CreatedAt,
		&approvedBy,
		&approvedAt,
		&lastLogin,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if approvedBy.Valid {
		a.ApprovedBy = &approvedBy.String
	}
	if approvedAt.Valid {
		a.ApprovedAt = &approvedAt.Time
	}
	if lastLogin.Valid {
		a.LastLogin = &lastLogin.Time
	}
	return a, nil
}

// GetByEmail retrieves an account by normalized email.
func (s *Storage) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = ?`
	return scanAccount(s.db.QueryRowContext(ctx, query, email))
}

// GetByID retrieves an account by identifier.
func (s *Storage) GetByID(ctx context.Context, id string) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`
	return scanAccount(s.db.QueryRowContext(ctx, query, id))
}

// List returns all accounts newest first, with the approver name joined in.
func (s *Storage) List(ctx context.Context) ([]account.Account, error) {
	query := `
		SELECT a.id, a.email, a.name, a.role, a.status, a.created_at,
		       a.approved_at, a.last_login, approver.name
		FROM accounts a
		LEFT JOIN accounts approver ON a.approved_by = approver.id
		ORDER BY a.created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []account.Account
	for rows.Next() {
		var a account.Account
		var approvedAt, lastLogin sql.NullTime
		var approverName sql.NullString

		if err := rows.Scan(&a.ID, &a.Email, &a.Name, &a.Role, &a.Status,
			&a.CreatedAt, &approvedAt, &lastLogin, &approverName); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		if approvedAt.Valid {
			a.ApprovedAt = &approvedAt.Time
		}
		if lastLogin.Valid {
			a.LastLogin = &lastLogin.Time
		}
		if approverName.Valid {
			a.ApprovedByName = approverName.String
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// ListByStatus returns accounts in the given status, oldest first.
func (s *Storage) ListByStatus(ctx context.Context, status account.Status) ([]account.Account, error) {
	query := `
		SELECT id, email, name, role, status, created_at
		FROM accounts
		WHERE status = ?
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts by status: %w", err)
	}
	defer rows.Close()

	var accounts []account.Account
	for rows.Next() {
		var a account.Account
		if err := rows.Scan(&a.ID, &a.Email, &a.Name, &a.Role, &a.Status, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpdateStatus records an approve/reject decision. The pending guard lives in
// the UPDATE itself so two concurrent decisions cannot both win.
func (s *Storage) UpdateStatus(ctx context.Context, id string, status account.Status, approvedBy string, at time.Time) error {
	query := `UPDATE accounts SET status = ?, approved_by = ?, approved_at = ? WHERE id = ? AND status = ?`

	result, err := s.db.ExecContext(ctx, query, string(status), approvedBy, at, id, string(account.StatusPending))
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		if _, err := s.GetByID(ctx, id); errors.Is(err, storage.ErrNotFound) {
			return storage.ErrNotFound
		}
		return storage.ErrNotPending
	}
	return nil
}

// UpdateLastLogin stamps a successful authentication.
func (s *Storage) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE accounts SET last_login = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return requireRow(result)
}

// Delete removes an account permanently.
func (s *Storage) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}
