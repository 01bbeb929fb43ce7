package analysis

import (
	"strings"
	"time"

	"evidence-agent/transcript"

	"github.com/google/uuid"
)

// FactStatus is the verdict the analyzer reaches for one fact. The canonical
// values are the Portuguese wire vocabulary the analysis prompt asks the
// model to use; English spellings are normalized onto them.
type FactStatus string

const (
	StatusConfirmed    FactStatus = "Confirmado"
	StatusDenied       FactStatus = "Negado"
	StatusInconclusive FactStatus = "Inconclusivo"
	StatusNotMentioned FactStatus = "Não Mencionado"
)

// NormalizeStatus maps a raw status string from the model onto the canonical
// vocabulary. Anything unrecognized becomes StatusInconclusive rather than
// dropping the fact.
func NormalizeStatus(raw string) FactStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "confirmado", "confirmed", "confirmada":
		return StatusConfirmed
	case "negado", "denied", "negada", "refutado":
		return StatusDenied
	case "inconclusivo", "inconclusive", "contraditório", "contraditorio", "contradictory":
		return StatusInconclusive
	case "não mencionado", "nao mencionado", "not mentioned", "não encontrado":
		return StatusNotMentioned
	default:
		return StatusInconclusive
	}
}

// Fact is a user-authored assertion to verify against the evidence corpus.
type Fact struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Citation is a resolved pointer from analysis or chat output back to a
// concrete stretch of evidence. Derived from segment data at resolution
// time; only persisted as part of the report that contains it.
type Citation struct {
	FileID    uuid.UUID `json:"fileId"`
	FileName  string    `json:"fileName"`
	Timestamp string    `json:"timestamp"`
	Seconds   int       `json:"seconds"`
	Text      string    `json:"text"`
}

// FactAnalysis is the analyzer's verdict on one fact in one run.
type FactAnalysis struct {
	FactID    string     `json:"factId"`
	FactText  string     `json:"factText"`
	Status    FactStatus `json:"status"`
	Summary   string     `json:"summary"`
	Citations []Citation `json:"citations"`
}

// AnalysisReport is one completed analysis run. Reports are append-only at
// the project level; the user may rename them or edit the conclusion and
// results, and deletion is always explicit.
type AnalysisReport struct {
	ID                uuid.UUID      `json:"id"`
	Name              string         `json:"name"`
	GeneratedAt       time.Time      `json:"generatedAt"`
	GeneralConclusion string         `json:"generalConclusion"`
	Results           []FactAnalysis `json:"results"`
}

// ResolveFunc resolves one citation marker (a file reference plus its listed
// timestamps) into zero or more citations, all against the same file.
type ResolveFunc func(fileRef string, timestamps []string) []Citation

// Corpus is the set of processed evidence the resolver works against.
type Corpus = []transcript.ProcessedContent
