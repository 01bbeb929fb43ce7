package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"evidence-agent/analysis"
	"evidence-agent/config"
	"evidence-agent/database"
	apperrors "evidence-agent/errors"
	"evidence-agent/llmclient"
	"evidence-agent/prompts"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// analysisTemperature keeps the fact analyzer close to the transcripts
// instead of paraphrasing freely.
var analysisTemperature = 0.2

// AnalysisService runs the fact-verification pass: corpus plus facts go to
// the LLM, the tagged response is parsed back into a report with resolved
// citations.
type AnalysisService struct {
	cfg      *config.Config
	store    *database.PostgresStore
	llm      *llmclient.Client
	resolver *analysis.Resolver
	logger   *zap.Logger
}

func NewAnalysisService(
	cfg *config.Config,
	store *database.PostgresStore,
	llm *llmclient.Client,
	resolver *analysis.Resolver,
	logger *zap.Logger,
) *AnalysisService {
	return &AnalysisService{
		cfg:      cfg,
		store:    store,
		llm:      llm,
		resolver: resolver,
		logger:   logger,
	}
}

// Run executes one analysis over all facts and the whole processed corpus
// and persists the resulting report. A response the parser cannot extract
// any fact from fails the run; no report is saved in that case.
func (as *AnalysisService) Run(ctx context.Context, name string) (analysis.AnalysisReport, error) {
	facts, err := as.store.ListFacts(ctx)
	if err != nil {
		return analysis.AnalysisReport{}, apperrors.WrapError(err, "list facts")
	}
	if len(facts) == 0 {
		return analysis.AnalysisReport{}, apperrors.WrapError(apperrors.ErrInvalidInput, "no facts to analyze")
	}

	corpus, documentFiles, err := as.loadCorpus(ctx)
	if err != nil {
		return analysis.AnalysisReport{}, err
	}
	if len(corpus) == 0 {
		return analysis.AnalysisReport{}, apperrors.WrapError(apperrors.ErrInvalidInput, "no processed evidence to analyze against")
	}

	messages := []llmclient.Message{
		{Role: "system", Content: prompts.FactAnalysis()},
		{Role: "user", Content: buildAnalysisInput(facts, corpus)},
	}
	response, err := as.llm.Chat(ctx, messages, &analysisTemperature)
	if err != nil {
		return analysis.AnalysisReport{}, apperrors.WrapError(apperrors.ErrLLMCommunication, err.Error())
	}

	resolve := as.resolveFunc(corpus, documentFiles)
	conclusion, results, err := analysis.ParseReport(response, facts, resolve)
	if err != nil {
		as.logger.Error("Analysis response could not be parsed",
			zap.Int("response_length", len(response)),
			zap.Error(err))
		return analysis.AnalysisReport{}, err
	}

	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("Análise de %s", time.Now().Format("02/01/2006 15:04"))
	}
	report := analysis.AnalysisReport{
		ID:                uuid.New(),
		Name:              name,
		GeneratedAt:       time.Now(),
		GeneralConclusion: conclusion,
		Results:           results,
	}
	if err := as.store.SaveReport(ctx, report); err != nil {
		return analysis.AnalysisReport{}, apperrors.WrapError(err, "save report")
	}

	as.logger.Info("Analysis report generated",
		zap.String("report", report.Name),
		zap.Int("facts", len(results)))
	return report, nil
}

// loadCorpus returns the processed corpus plus the set of file IDs whose
// positions are page numbers.
func (as *AnalysisService) loadCorpus(ctx context.Context) (analysis.Corpus, map[uuid.UUID]bool, error) {
	corpus, err := as.store.ListProcessedContent(ctx)
	if err != nil {
		return nil, nil, apperrors.WrapError(err, "list processed content")
	}
	files, err := as.store.ListEvidenceFiles(ctx)
	if err != nil {
		return nil, nil, apperrors.WrapError(err, "list evidence files")
	}
	documentFiles := make(map[uuid.UUID]bool, len(files))
	for _, f := range files {
		documentFiles[f.ID] = f.IsDocument()
	}
	return corpus, documentFiles, nil
}

// resolveFunc builds the citation-resolution closure handed to the report
// parser: the file is matched first so its category can pick the excerpt
// policy (context window for testimony, single page for documents).
func (as *AnalysisService) resolveFunc(corpus analysis.Corpus, documentFiles map[uuid.UUID]bool) analysis.ResolveFunc {
	return func(fileRef string, timestamps []string) []analysis.Citation {
		content := analysis.MatchFile(fileRef, corpus)
		if content == nil {
			return nil
		}
		return as.resolver.ResolveAll(fileRef, timestamps, corpus, documentFiles[content.FileID])
	}
}

func buildAnalysisInput(facts []analysis.Fact, corpus analysis.Corpus) string {
	var b strings.Builder
	b.WriteString("FATOS A VERIFICAR:\n")
	for _, f := range facts {
		fmt.Fprintf(&b, "- ID: %s | %s\n", f.ID, f.Text)
	}
	b.WriteString("\nPROVAS:\n")
	for _, content := range corpus {
		fmt.Fprintf(&b, "\n=== %s ===\n%s\n", content.FileName, content.FullText)
	}
	return b.String()
}
