package services

import (
	"context"
	"fmt"
	"strings"

	"evidence-agent/analysis"
	"evidence-agent/config"
	"evidence-agent/database"
	apperrors "evidence-agent/errors"
	"evidence-agent/llmclient"
	"evidence-agent/prompts"
	"evidence-agent/transcript"
	"evidence-agent/web/format"

	"go.uber.org/zap"
)

// ChatService answers user questions grounded on the processed evidence.
// Replies may carry inline "[arquivo @ MM:SS]" markers; those are resolved
// into citations so the client can offer seek/open actions.
type ChatService struct {
	cfg      *config.Config
	store    *database.PostgresStore
	llm      *llmclient.Client
	resolver *analysis.Resolver
	logger   *zap.Logger
}

// ChatReply is one assistant answer plus its resolved citations.
type ChatReply struct {
	Answer    string              `json:"answer"`
	Citations []analysis.Citation `json:"citations"`
}

func NewChatService(
	cfg *config.Config,
	store *database.PostgresStore,
	llm *llmclient.Client,
	resolver *analysis.Resolver,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		cfg:      cfg,
		store:    store,
		llm:      llm,
		resolver: resolver,
		logger:   logger,
	}
}

// Ask sends the question with the full evidence context and prior turns,
// cleans the answer and resolves every citation marker it contains.
// Unresolvable markers stay in the text but produce no citation entry.
func (cs *ChatService) Ask(ctx context.Context, history []llmclient.Message, question string) (ChatReply, error) {
	if strings.TrimSpace(question) == "" {
		return ChatReply{}, apperrors.WrapError(apperrors.ErrInvalidInput, "empty question")
	}

	corpus, err := cs.store.ListProcessedContent(ctx)
	if err != nil {
		return ChatReply{}, apperrors.WrapError(err, "list processed content")
	}
	if len(corpus) == 0 {
		return ChatReply{}, apperrors.WrapError(apperrors.ErrInvalidInput, "no processed evidence to chat about")
	}

	files, err := cs.store.ListEvidenceFiles(ctx)
	if err != nil {
		return ChatReply{}, apperrors.WrapError(err, "list evidence files")
	}
	documentNames := make(map[string]bool, len(files))
	for _, f := range files {
		if f.IsDocument() {
			documentNames[f.Name] = true
		}
	}

	var system strings.Builder
	system.WriteString(prompts.ChatSystem())
	system.WriteString("\n\nPROVAS:\n")
	for _, content := range corpus {
		fmt.Fprintf(&system, "\n=== %s ===\n%s\n", content.FileName, content.FullText)
	}

	messages := make([]llmclient.Message, 0, len(history)+2)
	messages = append(messages, llmclient.Message{Role: "system", Content: system.String()})
	messages = append(messages, history...)
	messages = append(messages, llmclient.Message{Role: "user", Content: question})

	response, err := cs.llm.Chat(ctx, messages, nil)
	if err != nil {
		return ChatReply{}, apperrors.WrapError(apperrors.ErrLLMCommunication, err.Error())
	}

	answer := format.NormalizeAssistantText(transcript.Clean(response))

	var citations []analysis.Citation
	for _, marker := range analysis.ExtractCitationMarkers(answer) {
		content := analysis.MatchFile(marker.FileRef, corpus)
		if content == nil {
			cs.logger.Debug("Chat citation references unknown file",
				zap.String("file_ref", marker.FileRef))
			continue
		}
		citations = append(citations,
			cs.resolver.ResolveAll(marker.FileRef, marker.Timestamps, corpus, documentNames[content.FileName])...)
	}

	return ChatReply{Answer: answer, Citations: citations}, nil
}
