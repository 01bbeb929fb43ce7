package format

import (
	"fmt"
	"strings"

	"evidence-agent/analysis"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// ReportMarkdown renders an analysis report as a Markdown document for
// export.
func ReportMarkdown(report analysis.AnalysisReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", report.Name)
	fmt.Fprintf(&b, "*Gerado em %s*\n\n", report.GeneratedAt.Format("02/01/2006 15:04"))

	b.WriteString("## Conclusão Geral\n\n")
	b.WriteString(report.GeneralConclusion)
	b.WriteString("\n\n## Fatos Analisados\n\n")

	for i, result := range report.Results {
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, result.FactText)
		fmt.Fprintf(&b, "**Status:** %s\n\n", result.Status)
		fmt.Fprintf(&b, "%s\n\n", result.Summary)
		if len(result.Citations) > 0 {
			b.WriteString("**Evidências:**\n\n")
			for _, c := range result.Citations {
				fmt.Fprintf(&b, "- [%s @ %s] %s\n", c.FileName, c.Timestamp, c.Text)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// ReportHTML renders the report's Markdown export as standalone HTML.
func ReportHTML(report analysis.AnalysisReport) string {
	md := ReportMarkdown(report)
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(markdown.ToHTML([]byte(md), p, renderer))
}

// NormalizeAssistantText performs basic cleanup on LLM output before it is
// returned to clients.
func NormalizeAssistantText(text string) string {
	if text == "" {
		return text
	}

	// Replace curly quotes (helps readability)
	return strings.NewReplacer(
		"“", "\"",
		"”", "\"",
		"‘", "'",
		"’", "'",
	).Replace(text)
}
