package docextract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// Extractor produces page-marked raw text from document evidence. Its output
// feeds the transcript sanitizer, which expects "[Pág N]"-style markers at
// line starts.
type Extractor struct {
	logger *zap.Logger
}

func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract dispatches on the file extension: PDFs are read page by page,
// anything else is treated as plain text.
func (e *Extractor) Extract(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return e.ExtractPDF(path)
	}
	return e.ExtractPlainText(path)
}

// ExtractPDF extracts all text content from a PDF file, one marked block per
// page. Unreadable pages are skipped, not fatal.
func (e *Extractor) ExtractPDF(pdfPath string) (string, error) {
	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var fullText strings.Builder
	totalPages := r.NumPage()

	e.logger.Debug("Extracting text from PDF",
		zap.String("path", pdfPath),
		zap.Int("pages", totalPages))

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			e.logger.Warn("Skipping null page", zap.Int("page", pageNum))
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Warn("Failed to extract text from page",
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}

		fullText.WriteString(fmt.Sprintf("[Pág %d] ", pageNum))
		fullText.WriteString(strings.TrimSpace(text))
		fullText.WriteString("\n")
	}

	extracted := fullText.String()
	e.logger.Info("PDF text extraction completed",
		zap.String("path", pdfPath),
		zap.Int("pages", totalPages),
		zap.Int("characters", len(extracted)))

	return extracted, nil
}

// ExtractPlainText reads a text file as-is. If the text already carries page
// or timestamp markers they pass straight through to the sanitizer;
// otherwise the sanitizer's paragraph fallback takes over.
func (e *Extractor) ExtractPlainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read text file: %w", err)
	}
	return string(data), nil
}
