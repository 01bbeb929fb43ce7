package transcript

import (
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestFallbackSegmentsParagraphs(t *testing.T) {
	logger := zap.NewNop()
	raw := "Primeiro parágrafo do laudo pericial.\n\nSegundo parágrafo com outras observações.\n\n\nTerceiro parágrafo final."

	segments := FallbackSegments(raw, logger)
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d: %+v", len(segments), segments)
	}
	for i, seg := range segments {
		wantLabel := fmt.Sprintf("Parte %d", i+1)
		if seg.Timestamp != wantLabel {
			t.Errorf("segment %d timestamp = %q, want %q", i, seg.Timestamp, wantLabel)
		}
		if seg.Seconds != i+1 {
			t.Errorf("segment %d seconds = %d, want %d", i, seg.Seconds, i+1)
		}
	}
	if segments[1].Text != "Segundo parágrafo com outras observações." {
		t.Errorf("second segment text = %q", segments[1].Text)
	}
}

func TestFallbackSegmentsEmptyInput(t *testing.T) {
	if got := FallbackSegments("", zap.NewNop()); got != nil {
		t.Errorf("expected nil for empty input, got %+v", got)
	}
	if got := FallbackSegments("\n\n  \n\n", zap.NewNop()); got != nil {
		t.Errorf("expected nil for whitespace input, got %+v", got)
	}
}

func TestFallbackSegmentsSplitsOversizedParagraph(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "A testemunha descreveu o evento de número %d com uma série de detalhes adicionais relevantes para a perícia. ", i)
	}
	raw := strings.TrimSpace(b.String())

	segments := FallbackSegments(raw, zap.NewNop())
	if len(segments) < 2 {
		t.Fatalf("expected oversized paragraph to split into multiple segments, got %d", len(segments))
	}
	for i, seg := range segments {
		if seg.Seconds != i+1 {
			t.Errorf("segment %d seconds = %d, want %d", i, seg.Seconds, i+1)
		}
		if len(seg.Text) > maxFallbackChars+200 {
			t.Errorf("segment %d length %d far exceeds cap", i, len(seg.Text))
		}
	}
}
