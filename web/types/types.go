package types

import (
	"time"

	"github.com/google/uuid"
)

// Evidence file categories. Testimony is audio to transcribe; documents are
// extracted page by page.
const (
	CategoryTestimony = "testimony"
	CategoryDocument  = "document"
)

// Processing status values for an evidence file.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusProcessed  = "processed"
	StatusFailed     = "failed"
)

// EvidenceFile is one uploaded piece of evidence, stored in the DB.
type EvidenceFile struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	Path       string    `json:"path"`
	Status     string    `json:"status"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// IsDocument reports whether the file's positions are page numbers rather
// than seconds.
func (f EvidenceFile) IsDocument() bool {
	return f.Category == CategoryDocument
}
