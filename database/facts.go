package database

import (
	"context"
	"database/sql"
	"fmt"

	"evidence-agent/analysis"
	apperrors "evidence-agent/errors"

	"github.com/google/uuid"
)

func (s *PostgresStore) CreateFact(ctx context.Context, fact analysis.Fact) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO facts (id, text, created_at) VALUES ($1, $2, $3)`,
		fact.ID, fact.Text, fact.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create fact: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListFacts(ctx context.Context) ([]analysis.Fact, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, text, created_at FROM facts ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list facts: %w", err)
	}
	defer rows.Close()

	var facts []analysis.Fact
	for rows.Next() {
		var fact analysis.Fact
		var id uuid.UUID
		if err := rows.Scan(&id, &fact.Text, &fact.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		fact.ID = id.String()
		facts = append(facts, fact)
	}
	return facts, rows.Err()
}

// UpdateFact replaces a fact's free text; facts are mutable and live
// independently of evidence and reports.
func (s *PostgresStore) UpdateFact(ctx context.Context, id uuid.UUID, text string) error {
	res, err := s.DB.ExecContext(ctx, `UPDATE facts SET text = $2 WHERE id = $1`, id, text)
	if err != nil {
		return fmt.Errorf("failed to update fact: %w", err)
	}
	return ensureRowAffected(res)
}

func (s *PostgresStore) DeleteFact(ctx context.Context, id uuid.UUID) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM facts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete fact: %w", err)
	}
	return nil
}

func ensureRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
