package format

import (
	"strings"
	"testing"
	"time"

	"evidence-agent/analysis"

	"github.com/google/uuid"
)

func sampleReport() analysis.AnalysisReport {
	return analysis.AnalysisReport{
		ID:                uuid.New(),
		Name:              "Análise de 2026-08-27",
		GeneratedAt:       time.Date(2026, 8, 27, 14, 30, 0, 0, time.UTC),
		GeneralConclusion: "Os fatos foram parcialmente confirmados.",
		Results: []analysis.FactAnalysis{
			{
				FactID:   "f1",
				FactText: "O réu estava no local.",
				Status:   analysis.StatusConfirmed,
				Summary:  "A testemunha confirma a presença.",
				Citations: []analysis.Citation{
					{FileName: "depoimento1.mp3", Timestamp: "00:30", Seconds: 30, Text: "O réu saiu do prédio."},
				},
			},
		},
	}
}

func TestReportMarkdown(t *testing.T) {
	md := ReportMarkdown(sampleReport())

	for _, want := range []string{
		"# Análise de 2026-08-27",
		"Gerado em 27/08/2026 14:30",
		"## Conclusão Geral",
		"### 1. O réu estava no local.",
		"**Status:** Confirmado",
		"- [depoimento1.mp3 @ 00:30] O réu saiu do prédio.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestReportMarkdownOmitsEmptyCitations(t *testing.T) {
	report := sampleReport()
	report.Results[0].Citations = nil
	md := ReportMarkdown(report)
	if strings.Contains(md, "Evidências") {
		t.Errorf("citation heading present without citations:\n%s", md)
	}
}

func TestReportHTML(t *testing.T) {
	out := ReportHTML(sampleReport())
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "Conclusão Geral") {
		t.Errorf("unexpected HTML output:\n%s", out)
	}
}

func TestNormalizeAssistantText(t *testing.T) {
	in := "Ele disse “sim” e depois ‘não’."
	want := "Ele disse \"sim\" e depois 'não'."
	if got := NormalizeAssistantText(in); got != want {
		t.Errorf("NormalizeAssistantText = %q, want %q", got, want)
	}
	if got := NormalizeAssistantText(""); got != "" {
		t.Errorf("empty input = %q", got)
	}
}
