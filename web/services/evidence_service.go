package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"evidence-agent/config"
	"evidence-agent/database"
	apperrors "evidence-agent/errors"
	"evidence-agent/pipeline"
	"evidence-agent/utils"
	"evidence-agent/web/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var audioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".m4a": true, ".ogg": true, ".opus": true, ".flac": true,
}

var documentExtensions = map[string]bool{
	".pdf": true, ".txt": true, ".md": true,
}

// EvidenceService handles evidence uploads and drives the processing
// pipeline.
type EvidenceService struct {
	cfg       *config.Config
	store     *database.PostgresStore
	processor *pipeline.Processor
	logger    *zap.Logger
}

func NewEvidenceService(
	cfg *config.Config,
	store *database.PostgresStore,
	processor *pipeline.Processor,
	logger *zap.Logger,
) *EvidenceService {
	return &EvidenceService{
		cfg:       cfg,
		store:     store,
		processor: processor,
		logger:    logger,
	}
}

// Upload validates, saves and registers one uploaded evidence file. The
// category follows from the extension: audio becomes testimony, the rest
// documents.
func (es *EvidenceService) Upload(ctx context.Context, file *multipart.FileHeader) (types.EvidenceFile, error) {
	name := utils.SanitizeFilename(file.Filename)
	if name == "" {
		return types.EvidenceFile{}, apperrors.WrapError(apperrors.ErrInvalidInput, "invalid or unsafe filename")
	}

	ext := strings.ToLower(filepath.Ext(name))
	var category string
	switch {
	case audioExtensions[ext]:
		category = types.CategoryTestimony
	case documentExtensions[ext]:
		category = types.CategoryDocument
	default:
		return types.EvidenceFile{}, apperrors.WrapErrorf(apperrors.ErrInvalidInput,
			"unsupported file type %q", ext)
	}

	maxBytes := int64(es.cfg.MaxUploadSizeMB) * 1024 * 1024
	if maxBytes > 0 && file.Size > maxBytes {
		return types.EvidenceFile{}, apperrors.WrapErrorf(apperrors.ErrInvalidInput,
			"file too large, maximum is %dMB", es.cfg.MaxUploadSizeMB)
	}

	id := uuid.New()
	path, err := es.saveFile(file, id, name)
	if err != nil {
		return types.EvidenceFile{}, err
	}

	record := types.EvidenceFile{
		ID:         id,
		Name:       name,
		Category:   category,
		Path:       path,
		Status:     types.StatusPending,
		UploadedAt: time.Now(),
	}
	if err := es.store.CreateEvidenceFile(ctx, record); err != nil {
		return types.EvidenceFile{}, apperrors.WrapError(err, "register evidence file")
	}

	es.logger.Info("Evidence file uploaded",
		zap.String("file", name),
		zap.String("category", category))
	return record, nil
}

func (es *EvidenceService) saveFile(file *multipart.FileHeader, id uuid.UUID, name string) (string, error) {
	dir := filepath.Join(es.cfg.WorkspaceDir, id.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create workspace directory: %w", err)
	}
	dst := filepath.Join(dir, name)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return "", fmt.Errorf("failed to write uploaded file: %w", err)
	}
	return dst, nil
}

// StartProcessing queues the given files (or every pending file when none
// are specified) and kicks off the processing loop in the background.
func (es *EvidenceService) StartProcessing(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		files, err := es.store.ListEvidenceFiles(ctx)
		if err != nil {
			return 0, apperrors.WrapError(err, "list evidence files")
		}
		for _, f := range files {
			if f.Status == types.StatusPending || f.Status == types.StatusFailed {
				ids = append(ids, f.ID)
			}
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	for _, id := range ids {
		if !utils.VerifyFileExists(pathForLog(ctx, es.store, id)) {
			es.logger.Warn("Queued evidence file missing on disk", zap.String("file_id", id.String()))
		}
	}

	es.processor.Enqueue(ids...)
	go func() {
		if err := es.processor.Run(context.Background()); err != nil {
			es.logger.Warn("Processing loop ended early", zap.Error(err))
		}
	}()
	return len(ids), nil
}

// StopProcessing halts the loop after the file currently in flight.
func (es *EvidenceService) StopProcessing() {
	es.processor.Stop()
}

func pathForLog(ctx context.Context, store *database.PostgresStore, id uuid.UUID) string {
	file, err := store.GetEvidenceFile(ctx, id)
	if err != nil {
		return ""
	}
	return file.Path
}
