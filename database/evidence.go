package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	apperrors "evidence-agent/errors"
	"evidence-agent/transcript"
	"evidence-agent/web/types"

	"github.com/google/uuid"
)

// CreateEvidenceFile inserts a newly uploaded evidence file record.
func (s *PostgresStore) CreateEvidenceFile(ctx context.Context, file types.EvidenceFile) error {
	query := `
        INSERT INTO evidence_files (id, name, category, path, status, uploaded_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := s.DB.ExecContext(ctx, query, file.ID, file.Name, file.Category, file.Path, file.Status, file.UploadedAt)
	if err != nil {
		return fmt.Errorf("failed to create evidence file: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetEvidenceFile(ctx context.Context, id uuid.UUID) (types.EvidenceFile, error) {
	query := `
        SELECT id, name, category, path, status, uploaded_at
        FROM evidence_files WHERE id = $1
    `
	var file types.EvidenceFile
	err := s.DB.QueryRowContext(ctx, query, id).Scan(
		&file.ID, &file.Name, &file.Category, &file.Path, &file.Status, &file.UploadedAt)
	if err == sql.ErrNoRows {
		return types.EvidenceFile{}, apperrors.ErrNotFound
	}
	if err != nil {
		return types.EvidenceFile{}, fmt.Errorf("failed to get evidence file: %w", err)
	}
	return file, nil
}

func (s *PostgresStore) ListEvidenceFiles(ctx context.Context) ([]types.EvidenceFile, error) {
	query := `
        SELECT id, name, category, path, status, uploaded_at
        FROM evidence_files ORDER BY uploaded_at
    `
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list evidence files: %w", err)
	}
	defer rows.Close()

	var files []types.EvidenceFile
	for rows.Next() {
		var file types.EvidenceFile
		if err := rows.Scan(&file.ID, &file.Name, &file.Category, &file.Path, &file.Status, &file.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan evidence file: %w", err)
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

func (s *PostgresStore) UpdateEvidenceStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE evidence_files SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update evidence status: %w", err)
	}
	return nil
}

// DeleteEvidenceFile removes the file record and, via cascade, its
// processed content.
func (s *PostgresStore) DeleteEvidenceFile(ctx context.Context, id uuid.UUID) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM evidence_files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete evidence file: %w", err)
	}
	return nil
}

// UpsertProcessedContent replaces the sanitized transcription of a file
// wholesale; ProcessedContent is never patched in place.
func (s *PostgresStore) UpsertProcessedContent(ctx context.Context, content transcript.ProcessedContent) error {
	segmentsJSON, err := json.Marshal(content.Segments)
	if err != nil {
		return fmt.Errorf("failed to marshal segments: %w", err)
	}
	query := `
        INSERT INTO processed_content (file_id, file_name, segments, full_text, processed_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (file_id) DO UPDATE SET
            file_name = EXCLUDED.file_name,
            segments = EXCLUDED.segments,
            full_text = EXCLUDED.full_text,
            processed_at = EXCLUDED.processed_at
    `
	_, err = s.DB.ExecContext(ctx, query,
		content.FileID, content.FileName, segmentsJSON, content.FullText, content.ProcessedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert processed content: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetProcessedContent(ctx context.Context, fileID uuid.UUID) (transcript.ProcessedContent, error) {
	query := `
        SELECT file_id, file_name, segments, full_text, processed_at
        FROM processed_content WHERE file_id = $1
    `
	content, err := scanProcessedContent(s.DB.QueryRowContext(ctx, query, fileID))
	if err == sql.ErrNoRows {
		return transcript.ProcessedContent{}, apperrors.ErrNotFound
	}
	if err != nil {
		return transcript.ProcessedContent{}, fmt.Errorf("failed to get processed content: %w", err)
	}
	return content, nil
}

// ListProcessedContent returns the whole processed corpus in upload order,
// the order citation resolution walks for first-match file lookup.
func (s *PostgresStore) ListProcessedContent(ctx context.Context) ([]transcript.ProcessedContent, error) {
	query := `
        SELECT pc.file_id, pc.file_name, pc.segments, pc.full_text, pc.processed_at
        FROM processed_content pc
        JOIN evidence_files ef ON ef.id = pc.file_id
        ORDER BY ef.uploaded_at
    `
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list processed content: %w", err)
	}
	defer rows.Close()

	var corpus []transcript.ProcessedContent
	for rows.Next() {
		content, err := scanProcessedContent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan processed content: %w", err)
		}
		corpus = append(corpus, content)
	}
	return corpus, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProcessedContent(row rowScanner) (transcript.ProcessedContent, error) {
	var content transcript.ProcessedContent
	var segmentsJSON []byte
	var processedAt time.Time
	if err := row.Scan(&content.FileID, &content.FileName, &segmentsJSON, &content.FullText, &processedAt); err != nil {
		return transcript.ProcessedContent{}, err
	}
	content.ProcessedAt = processedAt
	if err := json.Unmarshal(segmentsJSON, &content.Segments); err != nil {
		return transcript.ProcessedContent{}, fmt.Errorf("failed to unmarshal segments: %w", err)
	}
	return content, nil
}
