package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"evidence-agent/analysis"
	apperrors "evidence-agent/errors"

	"github.com/google/uuid"
)

// SaveReport appends a completed analysis report. Reports are append-only;
// they are only ever removed by an explicit delete.
func (s *PostgresStore) SaveReport(ctx context.Context, report analysis.AnalysisReport) error {
	resultsJSON, err := json.Marshal(report.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal report results: %w", err)
	}
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO reports (id, name, general_conclusion, results, generated_at)
         VALUES ($1, $2, $3, $4, $5)`,
		report.ID, report.Name, report.GeneralConclusion, resultsJSON, report.GeneratedAt)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetReport(ctx context.Context, id uuid.UUID) (analysis.AnalysisReport, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, name, general_conclusion, results, generated_at FROM reports WHERE id = $1`, id)
	report, err := scanReport(row)
	if err == sql.ErrNoRows {
		return analysis.AnalysisReport{}, apperrors.ErrNotFound
	}
	if err != nil {
		return analysis.AnalysisReport{}, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

func (s *PostgresStore) ListReports(ctx context.Context) ([]analysis.AnalysisReport, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, general_conclusion, results, generated_at
         FROM reports ORDER BY generated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []analysis.AnalysisReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// RenameReport changes only the user-visible name.
func (s *PostgresStore) RenameReport(ctx context.Context, id uuid.UUID, name string) error {
	res, err := s.DB.ExecContext(ctx, `UPDATE reports SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		return fmt.Errorf("failed to rename report: %w", err)
	}
	return ensureRowAffected(res)
}

// UpdateReportConclusion applies a user edit to the general conclusion.
func (s *PostgresStore) UpdateReportConclusion(ctx context.Context, id uuid.UUID, conclusion string) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE reports SET general_conclusion = $2 WHERE id = $1`, id, conclusion)
	if err != nil {
		return fmt.Errorf("failed to update report conclusion: %w", err)
	}
	return ensureRowAffected(res)
}

// UpdateReportResults applies a user edit to the per-fact results.
func (s *PostgresStore) UpdateReportResults(ctx context.Context, id uuid.UUID, results []analysis.FactAnalysis) error {
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal report results: %w", err)
	}
	res, err := s.DB.ExecContext(ctx, `UPDATE reports SET results = $2 WHERE id = $1`, id, resultsJSON)
	if err != nil {
		return fmt.Errorf("failed to update report results: %w", err)
	}
	return ensureRowAffected(res)
}

func (s *PostgresStore) DeleteReport(ctx context.Context, id uuid.UUID) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return nil
}

func scanReport(row rowScanner) (analysis.AnalysisReport, error) {
	var report analysis.AnalysisReport
	var resultsJSON []byte
	if err := row.Scan(&report.ID, &report.Name, &report.GeneralConclusion, &resultsJSON, &report.GeneratedAt); err != nil {
		return analysis.AnalysisReport{}, err
	}
	if err := json.Unmarshal(resultsJSON, &report.Results); err != nil {
		return analysis.AnalysisReport{}, fmt.Errorf("failed to unmarshal report results: %w", err)
	}
	return report, nil
}
