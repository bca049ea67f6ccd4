package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/alexiscpa/legal-consultant/internal/model/chat"
	"github.com/alexiscpa/legal-consultant/internal/model/contract"
	"github.com/alexiscpa/legal-consultant/internal/model/scenario"
)

// CreateContract stores a reviewed contract; the review result is kept as JSON.
func (s *Storage) CreateContract(ctx context.Context, c *contract.Contract) error {
	result, err := json.Marshal(c.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal review result: %w", err)
	}

	query := `INSERT INTO contracts (id, title, content, result, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, c.ID, c.Title, c.Content, string(result), c.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert contract: %w", err)
	}
	return nil
}

// ListContracts returns saved contracts newest first.
func (s *Storage) ListContracts(ctx context.Context) ([]contract.Contract, error) {
	query := `SELECT id, title, content, result, created_at FROM contracts ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	defer rows.Close()

	var contracts []contract.Contract
	for rows.Next() {
		var c contract.Contract
		var result string
		if err := rows.Scan(&c.ID, &c.Title, &c.Content, &result, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		if err := json.Unmarshal([]byte(result), &c.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal review result: %w", err)
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

// DeleteContract removes a saved contract.
func (s *Storage) DeleteContract(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM contracts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contract: %w", err)
	}
	return requireRow(result)
}

// CreateScenario stores a saved consultation.
func (s *Storage) CreateScenario(ctx context.Context, sc *scenario.Scenario) error {
	query := `INSERT INTO scenarios (id, title, category, description, advice, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, sc.ID, sc.Title, sc.Category, sc.Description, sc.Advice, sc.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert scenario: %w", err)
	}
	return nil
}

// ListScenarios returns saved consultations newest first.
func (s *Storage) ListScenarios(ctx context.Context) ([]scenario.Scenario, error) {
	query := `SELECT id, title, category, description, advice, created_at FROM scenarios ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	defer rows.Close()

	var scenarios []scenario.Scenario
	for rows.Next() {
		var sc scenario.Scenario
		if err := rows.Scan(&sc.ID, &sc.Title, &sc.Category, &sc.Description, &sc.Advice, &sc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, rows.Err()
}

// DeleteScenario removes a saved consultation.
func (s *Storage) DeleteScenario(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM scenarios WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}
	return requireRow(result)
}

// AppendTurn stores one transcript entry.
func (s *Storage) AppendTurn(ctx context.Context, t *chat.Turn) error {
	var sources sql.NullString
	if len(t.Sources) > 0 {
		data, err := json.Marshal(t.Sources)
		if err != nil {
			return fmt.Errorf("failed to marshal sources: %w", err)
		}
		sources = sql.NullString{String: string(data), Valid: true}
	}

	query := `INSERT INTO chats (id, role, text, sources, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, t.ID, t.Role, t.Text, sources, t.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert chat turn: %w", err)
	}
	return nil
}

// ListTurns returns the transcript in chronological order. The rowid
// tie-break keeps same-timestamp turns in insertion order.
func (s *Storage) ListTurns(ctx context.Context) ([]chat.Turn, error) {
	query := `SELECT id, role, text, sources, created_at FROM chats ORDER BY created_at ASC, rowid ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat turns: %w", err)
	}
	defer rows.Close()

	var turns []chat.Turn
	for rows.Next() {
		var t chat.Turn
		var sources sql.NullString
		if err := rows.Scan(&t.ID, &t.Role, &t.Text, &sources, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat turn: %w", err)
		}
		if sources.Valid {
			if err := json.Unmarshal([]byte(sources.String), &t.Sources); err != nil {
				return nil, fmt.Errorf("failed to unmarshal sources: %w", err)
			}
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// ClearTurns wipes the transcript.
func (s *Storage) ClearTurns(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chats`); err != nil {
		return fmt.Errorf("failed to clear chat turns: %w", err)
	}
	return nil
}
