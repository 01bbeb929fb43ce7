package transcript

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"
)

// maxFallbackChars caps the size of a synthesized segment so a wall of
// unstructured text still yields citable units.
const maxFallbackChars = 1200

var paragraphSplitPattern = regexp.MustCompile(`\n\s*\n`)

// FallbackSegments is the structureless last resort when Sanitize found no
// markers at all: blank-line-delimited paragraphs become segments with
// synthesized ordinal positions. Oversized paragraphs are re-split at
// sentence boundaries.
func FallbackSegments(raw string, logger *zap.Logger) []Segment {
	var chunks []string
	for _, para := range paragraphSplitPattern.Split(raw, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(para) <= maxFallbackChars {
			chunks = append(chunks, para)
			continue
		}
		chunks = append(chunks, splitAtSentences(para, logger)...)
	}

	segments := make([]Segment, 0, len(chunks))
	for _, chunk := range chunks {
		cleaned := Clean(chunk)
		if cleaned == "" {
			continue
		}
		ordinal := len(segments) + 1
		segments = append(segments, Segment{
			Timestamp: fmt.Sprintf("Parte %d", ordinal),
			Seconds:   ordinal,
			Text:      cleaned,
		})
	}
	if len(segments) == 0 {
		return nil
	}
	return segments
}

// splitAtSentences groups sentences into chunks under maxFallbackChars. On
// tokenizer failure the paragraph is kept whole rather than cut mid-word.
func splitAtSentences(para string, logger *zap.Logger) []string {
	doc, err := prose.NewDocument(para)
	if err != nil {
		if logger != nil {
			logger.Warn("Sentence segmentation failed, keeping paragraph whole", zap.Error(err))
		}
		return []string{para}
	}
	sentences := doc.Sentences()
	if len(sentences) == 0 {
		return []string{para}
	}

	var chunks []string
	var current strings.Builder
	for _, sent := range sentences {
		if current.Len() > 0 && current.Len()+len(sent.Text)+1 > maxFallbackChars {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sent.Text)
	}
	if strings.TrimSpace(current.String()) != "" {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}
	if len(chunks) == 0 {
		return []string{para}
	}
	return chunks
}
