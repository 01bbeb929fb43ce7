package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

type PostgresStore struct {
	DB     *sql.DB
	logger *zap.Logger
}

func NewPostgresStore(connStr string, logger *zap.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	logger.Info("Successfully connected to the database")
	return &PostgresStore{DB: db, logger: logger}, nil
}

// EnsureSchema creates the required tables if they do not already exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS evidence_files (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            category TEXT NOT NULL,
            path TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            uploaded_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_evidence_files_uploaded_at ON evidence_files(uploaded_at)`,
		`CREATE TABLE IF NOT EXISTS processed_content (
            file_id UUID PRIMARY KEY REFERENCES evidence_files(id) ON DELETE CASCADE,
            file_name TEXT NOT NULL,
            segments JSONB NOT NULL DEFAULT '[]'::jsonb,
            full_text TEXT NOT NULL DEFAULT '',
            processed_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS facts (
            id UUID PRIMARY KEY,
            text TEXT NOT NULL,
            created_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS reports (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            general_conclusion TEXT NOT NULL DEFAULT '',
            results JSONB NOT NULL DEFAULT '[]'::jsonb,
            generated_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_reports_generated_at ON reports(generated_at DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}
