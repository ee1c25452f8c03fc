package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/taxlens/internal/llm"
	"github.com/ppiankov/taxlens/internal/model"
)

// Renderer writes reports as JSON, Markdown and a terminal summary
type Renderer struct {
	includeFooter bool
	includeGuide  bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter, includeGuide bool) *Renderer {
	return &Renderer{includeFooter: includeFooter, includeGuide: includeGuide}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// RenderMarkdown writes the report as Markdown
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return os.WriteFile(path, []byte(r.Markdown(report)), 0644)
}

// RenderLLMMarkdown writes the LLM summary to its own file
func (r *Renderer) RenderLLMMarkdown(report *model.Report, path string) error {
	return os.WriteFile(path, []byte(llm.RenderSeparateMarkdown(report.LLM)), 0644)
}

var kindTitles = []struct {
	kind  model.Kind
	title string
}{
	{model.KindRedFlag, "Red Flags"},
	{model.KindWarning, "Warnings"},
	{model.KindSuggestion, "Suggestions"},
}

// Markdown renders the report. Red flags come first; the annotation order
// within each section is preserved.
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Document Review: %s\n\n", displayName(report))
	fmt.Fprintf(&b, "- **File ID:** %s\n", report.FileID)
	if report.Source != "" && report.Source != report.FileID {
		fmt.Fprintf(&b, "- **Source:** %s\n", report.Source)
	}
	fmt.Fprintf(&b, "- **Tax type:** %s\n", report.TaxType)
	fmt.Fprintf(&b, "- **Account type:** %s\n", report.AccountType)
	fmt.Fprintf(&b, "- **Pages:** %d\n", report.Pages)
	fmt.Fprintf(&b, "- **Analyzed:** %s\n\n", report.AnalyzedAt.Format("2006-01-02 15:04 MST"))

	fmt.Fprintf(&b, "## Readiness: %d/100 (%s confidence)\n\n", report.Score.Index, report.Score.Confidence)
	if len(report.Score.Signals) > 0 {
		b.WriteString("| Signal | Severity | Detail |\n|---|---|---|\n")
		for _, s := range report.Score.Signals {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", s.Type, s.Severity, s.Description)
		}
		b.WriteString("\n")
	}

	for _, section := range kindTitles {
		var items []model.Annotation
		for _, a := range report.Annotations {
			if a.Kind == section.kind {
				items = append(items, a)
			}
		}
		fmt.Fprintf(&b, "## %s (%d)\n\n", section.title, len(items))
		if len(items) == 0 {
			b.WriteString("_None._\n\n")
			continue
		}
		for _, a := range items {
			fmt.Fprintf(&b, "- %s _(page %d, %s)_\n", a.Message, a.Page, a.Rule)
		}
		b.WriteString("\n")
	}

	if len(report.Hints) > 0 {
		b.WriteString("## Input Hints\n\n")
		for _, h := range report.Hints {
			fmt.Fprintf(&b, "- %s\n", h)
		}
		b.WriteString("\n")
	}

	if r.includeGuide && !report.Guideline.IsEmpty() {
		fmt.Fprintf(&b, "## Review Guide: %s\n\n", guideTitle(report.TaxType))
		writeList(&b, "What to look for", report.Guideline.WhatToLookFor)
		writeList(&b, "Key fields", report.Guideline.KeyFields)
		writeList(&b, "Analysis focus", report.Guideline.AnalysisFocus)
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("_Generated by taxlens. Findings come from keyword and pattern rules over the extracted text; highlight positions are approximate. This is not tax advice._\n")
	}

	return b.String()
}

// RenderSummary prints a short plain-text summary
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	_, _ = fmt.Fprintf(w, "\n%s (%s)\n", displayName(report), report.TaxType)
	_, _ = fmt.Fprintf(w, "  Readiness:   %d/100 (%s)\n", report.Score.Index, report.Score.Confidence)
	_, _ = fmt.Fprintf(w, "  Red flags:   %d\n", report.Counts.RedFlags)
	_, _ = fmt.Fprintf(w, "  Warnings:    %d\n", report.Counts.Warnings)
	_, _ = fmt.Fprintf(w, "  Suggestions: %d\n", report.Counts.Suggestions)

	for _, a := range report.Annotations {
		if a.Kind == model.KindRedFlag {
			_, _ = fmt.Fprintf(w, "  ! %s\n", a.Message)
		}
	}
	for _, h := range report.Hints {
		_, _ = fmt.Fprintf(w, "  hint: %s\n", h)
	}
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s**\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

// guideTitle names the guideline shown; unknown types fall back to income
func guideTitle(t model.TaxType) string {
	if t == model.TaxTypeUnknown {
		return model.TaxTypeIncome.String() + " (default)"
	}
	return t.String()
}

func displayName(report *model.Report) string {
	if report.File.Name != "" {
		return report.File.Name
	}
	return report.FileID
}
