package transcript

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Segment is one utterance of a transcribed deposition or one chunk of an
// extracted document. Seconds holds the playback position for audio and the
// page number for documents; the two are not comparable across kinds.
type Segment struct {
	Timestamp string `json:"timestamp"`
	Seconds   int    `json:"seconds"`
	Text      string `json:"text"`
}

// ProcessedContent is the sanitized transcription of one evidence file.
// These shapes are written verbatim into project export files, so field
// names must stay stable.
type ProcessedContent struct {
	FileID      uuid.UUID `json:"fileId"`
	FileName    string    `json:"fileName"`
	Segments    []Segment `json:"segments"`
	FullText    string    `json:"fullText"`
	ProcessedAt time.Time `json:"processedAt"`
}

// NewProcessedContent builds a ProcessedContent with the derived FullText.
func NewProcessedContent(fileID uuid.UUID, fileName string, segments []Segment) ProcessedContent {
	return ProcessedContent{
		FileID:      fileID,
		FileName:    fileName,
		Segments:    segments,
		FullText:    JoinSegments(segments),
		ProcessedAt: time.Now(),
	}
}

// JoinSegments renders segments as "[timestamp] text" lines, one per segment.
func JoinSegments(segments []Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("[%s] %s", seg.Timestamp, seg.Text))
	}
	return b.String()
}
