package pipeline

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"

	"evidence-agent/config"
	apperrors "evidence-agent/errors"
	"evidence-agent/transcript"
	"evidence-agent/web/types"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// Transcriber produces raw transcription text for an audio file. The LLM
// call behind it is opaque to the pipeline.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Extractor produces raw marked text for a document file.
type Extractor interface {
	Extract(path string) (string, error)
}

// ContentStore is the slice of persistence the processor needs.
type ContentStore interface {
	GetEvidenceFile(ctx context.Context, id uuid.UUID) (types.EvidenceFile, error)
	UpdateEvidenceStatus(ctx context.Context, id uuid.UUID, status string) error
	UpsertProcessedContent(ctx context.Context, content transcript.ProcessedContent) error
}

// Processor drives evidence files through transcription/extraction and
// sanitization, one at a time. The queue and the stop flag are the explicit
// orchestration state; the parsing underneath is stateless and always runs
// to completion on whatever text it is given — stopping takes effect
// between files, never mid-parse.
type Processor struct {
	cfg         *config.Config
	store       ContentStore
	transcriber Transcriber
	extractor   Extractor
	sanitizer   *transcript.Sanitizer
	logger      *zap.Logger

	mu      sync.Mutex
	queue   []uuid.UUID
	running bool
	stopped bool

	// segmentCache maps a raw-text hash to its sanitized segments, so
	// reprocessing an unchanged file skips the sanitize pass.
	segmentCache *lru.Cache
}

func NewProcessor(
	cfg *config.Config,
	store ContentStore,
	transcriber Transcriber,
	extractor Extractor,
	sanitizer *transcript.Sanitizer,
	logger *zap.Logger,
) (*Processor, error) {
	size := cfg.ProcessedContentCacheSize
	if size <= 0 {
		size = 64
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create segment cache: %w", err)
	}
	return &Processor{
		cfg:          cfg,
		store:        store,
		transcriber:  transcriber,
		extractor:    extractor,
		sanitizer:    sanitizer,
		logger:       logger,
		segmentCache: cache,
	}, nil
}

// Enqueue appends file IDs to the pending queue.
func (p *Processor) Enqueue(ids ...uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = append(p.queue, ids...)
	p.stopped = false
}

// Stop requests that processing halt after the file currently in flight.
// Files still queued get ErrProcessingStopped status handling by Run.
func (p *Processor) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
}

// Pending returns the number of queued files.
func (p *Processor) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Run drains the queue sequentially. Only one Run loop is active at a time;
// a second call returns immediately while the first keeps draining.
func (p *Processor) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	for {
		p.mu.Lock()
		if p.stopped || len(p.queue) == 0 {
			remaining := len(p.queue)
			p.queue = nil
			stopped := p.stopped
			p.mu.Unlock()
			if stopped && remaining > 0 {
				p.logger.Info("Processing stopped with files still queued",
					zap.Int("remaining", remaining))
				return apperrors.ErrProcessingStopped
			}
			return nil
		}
		id := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		if err := ctx.Err(); err != nil {
			return err
		}

		if err := p.processFile(ctx, id); err != nil {
			p.logger.Error("Failed to process evidence file",
				zap.String("file_id", id.String()),
				zap.Error(err))
			if statusErr := p.store.UpdateEvidenceStatus(ctx, id, types.StatusFailed); statusErr != nil {
				p.logger.Warn("Failed to mark evidence as failed", zap.Error(statusErr))
			}
		}
	}
}

func (p *Processor) processFile(ctx context.Context, id uuid.UUID) error {
	file, err := p.store.GetEvidenceFile(ctx, id)
	if err != nil {
		return apperrors.WrapError(err, "load evidence file")
	}

	if err := p.store.UpdateEvidenceStatus(ctx, id, types.StatusProcessing); err != nil {
		p.logger.Warn("Failed to mark evidence as processing", zap.Error(err))
	}

	var raw string
	if file.IsDocument() {
		raw, err = p.extractor.Extract(file.Path)
	} else {
		raw, err = p.transcriber.Transcribe(ctx, file.Path)
	}
	if err != nil {
		return apperrors.WrapError(err, "obtain raw text")
	}

	segments := p.sanitizeCached(raw)
	if len(segments) == 0 {
		// No recognizable structure at all; fall back to paragraph
		// segments so the file remains searchable and citable.
		p.logger.Warn("No markers found in raw text, using paragraph fallback",
			zap.String("file", file.Name))
		segments = transcript.FallbackSegments(raw, p.logger)
	}

	content := transcript.NewProcessedContent(file.ID, file.Name, segments)
	if err := p.store.UpsertProcessedContent(ctx, content); err != nil {
		return apperrors.WrapError(err, "persist processed content")
	}
	if err := p.store.UpdateEvidenceStatus(ctx, id, types.StatusProcessed); err != nil {
		p.logger.Warn("Failed to mark evidence as processed", zap.Error(err))
	}

	p.logger.Info("Evidence file processed",
		zap.String("file", file.Name),
		zap.Int("segments", len(segments)))
	return nil
}

func (p *Processor) sanitizeCached(raw string) []transcript.Segment {
	key := fmt.Sprintf("%x", sha256.Sum256([]byte(raw)))
	if cached, ok := p.segmentCache.Get(key); ok {
		if segments, ok := cached.([]transcript.Segment); ok {
			return segments
		}
	}
	segments := p.sanitizer.Sanitize(raw)
	p.segmentCache.Add(key, segments)
	return segments
}
