package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"evidence-agent/config"
	apperrors "evidence-agent/errors"
	"evidence-agent/transcript"
	"evidence-agent/web/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakeStore struct {
	mu       sync.Mutex
	files    map[uuid.UUID]types.EvidenceFile
	statuses map[uuid.UUID][]string
	content  map[uuid.UUID]transcript.ProcessedContent
}

func newFakeStore(files ...types.EvidenceFile) *fakeStore {
	s := &fakeStore{
		files:    make(map[uuid.UUID]types.EvidenceFile),
		statuses: make(map[uuid.UUID][]string),
		content:  make(map[uuid.UUID]transcript.ProcessedContent),
	}
	for _, f := range files {
		s.files[f.ID] = f
	}
	return s
}

func (s *fakeStore) GetEvidenceFile(_ context.Context, id uuid.UUID) (types.EvidenceFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok {
		return types.EvidenceFile{}, apperrors.ErrNotFound
	}
	return f, nil
}

func (s *fakeStore) UpdateEvidenceStatus(_ context.Context, id uuid.UUID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[id] = append(s.statuses[id], status)
	return nil
}

func (s *fakeStore) UpsertProcessedContent(_ context.Context, content transcript.ProcessedContent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content[content.FileID] = content
	return nil
}

func (s *fakeStore) lastStatus(id uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.statuses[id]
	if len(history) == 0 {
		return ""
	}
	return history[len(history)-1]
}

type fakeTranscriber struct {
	mu    sync.Mutex
	texts map[string]string
	calls int
}

func (t *fakeTranscriber) Transcribe(_ context.Context, audioPath string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	text, ok := t.texts[audioPath]
	if !ok {
		return "", errors.New("transcription backend unavailable")
	}
	return text, nil
}

type fakeExtractor struct {
	texts map[string]string
}

func (e *fakeExtractor) Extract(path string) (string, error) {
	text, ok := e.texts[path]
	if !ok {
		return "", errors.New("unreadable document")
	}
	return text, nil
}

func newTestProcessor(t *testing.T, store *fakeStore, tr *fakeTranscriber, ex *fakeExtractor) *Processor {
	t.Helper()
	cfg := &config.Config{ProcessedContentCacheSize: 8}
	sanitizer := transcript.NewSanitizer(zap.NewNop(), false)
	p, err := NewProcessor(cfg, store, tr, ex, sanitizer, zap.NewNop())
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	return p
}

func TestRunProcessesQueue(t *testing.T) {
	audio := types.EvidenceFile{ID: uuid.New(), Name: "depoimento1.mp3", Category: types.CategoryTestimony, Path: "/evidence/depoimento1.mp3", Status: types.StatusPending}
	doc := types.EvidenceFile{ID: uuid.New(), Name: "contrato.pdf", Category: types.CategoryDocument, Path: "/evidence/contrato.pdf", Status: types.StatusPending}
	store := newFakeStore(audio, doc)
	tr := &fakeTranscriber{texts: map[string]string{
		audio.Path: "[00:01] Bom dia.\n[00:05] Eu estava presente.",
	}}
	ex := &fakeExtractor{texts: map[string]string{
		doc.Path: "[Pág 1] Contrato celebrado entre as partes.",
	}}

	p := newTestProcessor(t, store, tr, ex)
	p.Enqueue(audio.ID, doc.ID)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := store.lastStatus(audio.ID); got != types.StatusProcessed {
		t.Errorf("audio status = %q, want %q", got, types.StatusProcessed)
	}
	if got := store.lastStatus(doc.ID); got != types.StatusProcessed {
		t.Errorf("document status = %q, want %q", got, types.StatusProcessed)
	}

	audioContent := store.content[audio.ID]
	if len(audioContent.Segments) != 2 {
		t.Fatalf("audio segments = %+v", audioContent.Segments)
	}
	if audioContent.Segments[1].Seconds != 5 {
		t.Errorf("second audio segment = %+v", audioContent.Segments[1])
	}
	docContent := store.content[doc.ID]
	if len(docContent.Segments) != 1 || docContent.Segments[0].Timestamp != "Pág 1" {
		t.Errorf("document segments = %+v", docContent.Segments)
	}
	if docContent.FullText == "" {
		t.Error("document full text not derived")
	}
	if p.Pending() != 0 {
		t.Errorf("pending after run = %d", p.Pending())
	}
}

func TestRunMarksFailuresAndContinues(t *testing.T) {
	broken := types.EvidenceFile{ID: uuid.New(), Name: "corrompido.mp3", Category: types.CategoryTestimony, Path: "/evidence/corrompido.mp3", Status: types.StatusPending}
	good := types.EvidenceFile{ID: uuid.New(), Name: "depoimento2.mp3", Category: types.CategoryTestimony, Path: "/evidence/depoimento2.mp3", Status: types.StatusPending}
	store := newFakeStore(broken, good)
	tr := &fakeTranscriber{texts: map[string]string{
		good.Path: "[00:02] Confirmo o horário.",
	}}

	p := newTestProcessor(t, store, tr, &fakeExtractor{})
	p.Enqueue(broken.ID, good.ID)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := store.lastStatus(broken.ID); got != types.StatusFailed {
		t.Errorf("broken file status = %q, want %q", got, types.StatusFailed)
	}
	if got := store.lastStatus(good.ID); got != types.StatusProcessed {
		t.Errorf("good file status = %q, want %q", got, types.StatusProcessed)
	}
}

func TestStopBeforeRunReturnsProcessingStopped(t *testing.T) {
	file := types.EvidenceFile{ID: uuid.New(), Name: "depoimento.mp3", Category: types.CategoryTestimony, Path: "/evidence/depoimento.mp3", Status: types.StatusPending}
	store := newFakeStore(file)
	p := newTestProcessor(t, store, &fakeTranscriber{}, &fakeExtractor{})

	p.Enqueue(file.ID)
	p.Stop()

	err := p.Run(context.Background())
	if !errors.Is(err, apperrors.ErrProcessingStopped) {
		t.Fatalf("expected ErrProcessingStopped, got %v", err)
	}
	if p.Pending() != 0 {
		t.Errorf("queue not cleared after stop: %d pending", p.Pending())
	}
	if got := store.lastStatus(file.ID); got != "" {
		t.Errorf("stopped file should not change status, got %q", got)
	}
}

func TestProcessFallsBackOnUnmarkedText(t *testing.T) {
	file := types.EvidenceFile{ID: uuid.New(), Name: "anotacoes.txt", Category: types.CategoryDocument, Path: "/evidence/anotacoes.txt", Status: types.StatusPending}
	store := newFakeStore(file)
	ex := &fakeExtractor{texts: map[string]string{
		file.Path: "Anotações soltas sem marcação alguma.\n\nSegundo bloco de observações.",
	}}

	p := newTestProcessor(t, store, &fakeTranscriber{}, ex)
	p.Enqueue(file.ID)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	content := store.content[file.ID]
	if len(content.Segments) != 2 {
		t.Fatalf("segments = %+v", content.Segments)
	}
	if content.Segments[0].Timestamp != "Parte 1" || content.Segments[1].Timestamp != "Parte 2" {
		t.Errorf("fallback labels = %q, %q", content.Segments[0].Timestamp, content.Segments[1].Timestamp)
	}
}

func TestSanitizeCachedReusesSegments(t *testing.T) {
	store := newFakeStore()
	p := newTestProcessor(t, store, &fakeTranscriber{}, &fakeExtractor{})

	raw := "[00:01] Bom dia."
	first := p.sanitizeCached(raw)
	second := p.sanitizeCached(raw)
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("segments = %+v / %+v", first, second)
	}
	if &first[0] != &second[0] {
		t.Error("expected cached slice to be returned on the second call")
	}
}
