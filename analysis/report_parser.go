package analysis

import (
	"regexp"
	"strings"

	apperrors "evidence-agent/errors"
)

// Tag vocabulary the fact-analysis prompt instructs the model to emit.
const (
	factTag = "[[FACT]]"

	// Fallbacks when a block is absent; the fact is never silently dropped.
	defaultConclusion = "Conclusão geral não fornecida pela análise."
	defaultSummary    = "Sem resumo disponível."
	missingFactText   = "Fato não encontrado no projeto."
)

var (
	conclusionPattern = regexp.MustCompile(`(?s)\[\[CONCLUSION\]\](.*?)\[\[END_CONCLUSION\]\]`)
	statusPattern     = regexp.MustCompile(`(?s)\[\[STATUS\]\](.*?)\[\[END_STATUS\]\]`)
	summaryPattern    = regexp.MustCompile(`(?s)\[\[SUMMARY\]\](.*?)\[\[END_SUMMARY\]\]`)
	evidencesPattern  = regexp.MustCompile(`(?s)\[\[EVIDENCES\]\](.*?)\[\[END_EVIDENCES\]\]`)
	factIDPattern     = regexp.MustCompile(`ID:\s*([^\n\[]+)`)

	// citationMarkerPattern matches "[fileRef @ t1, t2, ...]" markers.
	citationMarkerPattern = regexp.MustCompile(`\[([^\[\]@]+?)\s*@\s*([^\[\]]+?)\]`)
)

// CitationMarker is one "[fileRef @ timestamps]" reference found in text.
type CitationMarker struct {
	FileRef    string
	Timestamps []string
}

// ExtractCitationMarkers finds every citation marker in text, splitting the
// comma-separated timestamp list. Shared by the report parser and the chat
// layer, which cites with the same syntax.
func ExtractCitationMarkers(text string) []CitationMarker {
	var markers []CitationMarker
	for _, m := range citationMarkerPattern.FindAllStringSubmatch(text, -1) {
		var timestamps []string
		for _, ts := range strings.Split(m[2], ",") {
			ts = strings.TrimSpace(ts)
			if ts != "" {
				timestamps = append(timestamps, ts)
			}
		}
		if len(timestamps) == 0 {
			continue
		}
		markers = append(markers, CitationMarker{
			FileRef:    strings.TrimSpace(m[1]),
			Timestamps: timestamps,
		})
	}
	return markers
}

// ParseReport parses the fact-analyzer's tagged response into per-fact
// results plus a general conclusion. Citation markers inside each
// [[EVIDENCES]] block are resolved through resolve, one citation per listed
// timestamp. A non-empty response that yields zero fact blocks is a hard
// error: the model ignored the format contract and the run must not produce
// a silently empty report.
func ParseReport(raw string, facts []Fact, resolve ResolveFunc) (string, []FactAnalysis, error) {
	conclusion := defaultConclusion
	if m := conclusionPattern.FindStringSubmatch(raw); m != nil {
		if c := strings.TrimSpace(m[1]); c != "" {
			conclusion = c
		}
	}

	factText := make(map[string]string, len(facts))
	for _, f := range facts {
		factText[f.ID] = f.Text
	}

	var results []FactAnalysis
	blocks := strings.Split(raw, factTag)
	for _, block := range blocks[1:] {
		if end := strings.Index(block, "[[END_FACT]]"); end >= 0 {
			block = block[:end]
		}

		idMatch := factIDPattern.FindStringSubmatch(block)
		if idMatch == nil {
			continue
		}
		factID := strings.TrimSpace(idMatch[1])
		if factID == "" {
			continue
		}

		status := StatusInconclusive
		if m := statusPattern.FindStringSubmatch(block); m != nil {
			status = NormalizeStatus(m[1])
		}

		summary := defaultSummary
		if m := summaryPattern.FindStringSubmatch(block); m != nil {
			if s := strings.TrimSpace(m[1]); s != "" {
				summary = s
			}
		}

		var citations []Citation
		if m := evidencesPattern.FindStringSubmatch(block); m != nil {
			for _, marker := range ExtractCitationMarkers(m[1]) {
				citations = append(citations, resolve(marker.FileRef, marker.Timestamps)...)
			}
		}

		text, ok := factText[factID]
		if !ok {
			// The fact may have been deleted after the analysis started;
			// the report keeps a snapshot placeholder.
			text = missingFactText
		}

		results = append(results, FactAnalysis{
			FactID:    factID,
			FactText:  text,
			Status:    status,
			Summary:   summary,
			Citations: citations,
		})
	}

	if len(results) == 0 && strings.TrimSpace(raw) != "" {
		return "", nil, apperrors.ErrReportFormat
	}

	return conclusion, results, nil
}
