package analysis

import (
	"strings"
	"testing"

	"evidence-agent/transcript"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func testimonyCorpus() Corpus {
	return Corpus{
		{
			FileID:   uuid.New(),
			FileName: "deposito1.mp3",
			Segments: []transcript.Segment{
				{Timestamp: "00:10", Seconds: 10, Text: "Cheguei ao local pela manhã."},
				{Timestamp: "00:20", Seconds: 20, Text: "Vi o carro estacionado."},
				{Timestamp: "00:30", Seconds: 30, Text: "O réu saiu do prédio."},
				{Timestamp: "00:40", Seconds: 40, Text: "Ele carregava uma sacola."},
			},
		},
		{
			FileID:   uuid.New(),
			FileName: "contrato-aluguel.pdf",
			Segments: []transcript.Segment{
				{Timestamp: "Pág 1", Seconds: 1, Text: "Contrato de locação celebrado entre as partes."},
				{Timestamp: "Pág 2", Seconds: 2, Text: "O valor mensal é de dois mil reais."},
			},
		},
	}
}

func TestMatchFile(t *testing.T) {
	corpus := testimonyCorpus()

	tests := []struct {
		name    string
		ref     string
		want    string
		wantNil bool
	}{
		{name: "exact", ref: "deposito1.mp3", want: "deposito1.mp3"},
		{name: "substring", ref: "deposito1", want: "deposito1.mp3"},
		{name: "case_insensitive", ref: "DEPOSITO1.MP3", want: "deposito1.mp3"},
		{name: "ref_contains_name", ref: "arquivo deposito1.mp3 anexo", want: "deposito1.mp3"},
		{name: "shorthand_subsequence", ref: "dep1", want: "deposito1.mp3"},
		{name: "document_partial", ref: "contrato-aluguel", want: "contrato-aluguel.pdf"},
		{name: "unknown", ref: "sentenca.pdf", wantNil: true},
		{name: "empty", ref: "  ", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchFile(tt.ref, corpus)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("MatchFile(%q) = %q, want nil", tt.ref, got.FileName)
				}
				return
			}
			if got == nil {
				t.Fatalf("MatchFile(%q) = nil, want %q", tt.ref, tt.want)
			}
			if got.FileName != tt.want {
				t.Errorf("MatchFile(%q) = %q, want %q", tt.ref, got.FileName, tt.want)
			}
		})
	}
}

func TestResolveTestimonyWindow(t *testing.T) {
	corpus := testimonyCorpus()
	r := NewResolver(zap.NewNop(), 2)

	c := r.Resolve("deposito1.mp3", "00:29", corpus, false)
	if c == nil {
		t.Fatal("expected a citation")
	}
	if c.FileName != "deposito1.mp3" {
		t.Errorf("file name = %q", c.FileName)
	}
	if c.Seconds != 29 || c.Timestamp != "00:29" {
		t.Errorf("position = %d / %q", c.Seconds, c.Timestamp)
	}
	for _, part := range []string{"Vi o carro estacionado.", "O réu saiu do prédio.", "Ele carregava uma sacola."} {
		if !strings.Contains(c.Text, part) {
			t.Errorf("window text missing %q: %q", part, c.Text)
		}
	}
	if strings.Contains(c.Text, "Cheguei ao local") {
		t.Errorf("window text reaches too far back: %q", c.Text)
	}
}

func TestResolveTestimonyOutOfToleranceFallsBackToNearest(t *testing.T) {
	corpus := testimonyCorpus()
	r := NewResolver(zap.NewNop(), 2)

	c := r.Resolve("deposito1.mp3", "00:55", corpus, false)
	if c == nil {
		t.Fatal("expected a citation")
	}
	if c.Text != "Ele carregava uma sacola." {
		t.Errorf("text = %q, want nearest single segment", c.Text)
	}
	if c.Seconds != 55 {
		t.Errorf("seconds = %d, want the cited position", c.Seconds)
	}
}

func TestResolveDocumentSingleSegment(t *testing.T) {
	corpus := testimonyCorpus()
	r := NewResolver(zap.NewNop(), 2)

	c := r.Resolve("contrato-aluguel.pdf", "Pág 2", corpus, true)
	if c == nil {
		t.Fatal("expected a citation")
	}
	if c.Text != "O valor mensal é de dois mil reais." {
		t.Errorf("text = %q, want the page text alone", c.Text)
	}
	if c.Timestamp != "Pág 2" || c.Seconds != 2 {
		t.Errorf("position = %q / %d", c.Timestamp, c.Seconds)
	}
}

func TestResolveUnknownFileDropsCitation(t *testing.T) {
	r := NewResolver(zap.NewNop(), 2)
	if c := r.Resolve("laudo-inexistente.pdf", "00:10", testimonyCorpus(), false); c != nil {
		t.Errorf("expected nil citation, got %+v", c)
	}
}

func TestResolveAll(t *testing.T) {
	corpus := testimonyCorpus()
	r := NewResolver(zap.NewNop(), 2)

	citations := r.ResolveAll("deposito1.mp3", []string{"00:10", "00:40"}, corpus, false)
	if len(citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(citations))
	}
	if citations[0].Seconds != 10 || citations[1].Seconds != 40 {
		t.Errorf("citation positions = %d, %d", citations[0].Seconds, citations[1].Seconds)
	}

	if got := r.ResolveAll("desconhecido.mp3", []string{"00:10"}, corpus, false); len(got) != 0 {
		t.Errorf("expected no citations for unknown file, got %+v", got)
	}
}
