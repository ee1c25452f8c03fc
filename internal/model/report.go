package model

import "time"

// Report is the complete taxlens review of one document
type Report struct {
	FileID      string           `json:"file_id"`
	File        FileMeta         `json:"file"`
	Source      string           `json:"source,omitempty"` // Path or URL the text came from
	TaxType     TaxType          `json:"tax_type"`
	AccountType AccountType      `json:"account_type"`
	Pages       int              `json:"pages"`
	AnalyzedAt  time.Time        `json:"analyzed_at"`
	Guideline   TaxTypeGuideline `json:"guideline"` // Review guide for the tax type (income when unknown)

	Annotations []Annotation `json:"annotations"` // Ordered: suggestions, warnings, red flags
	Counts      Counts       `json:"counts"`

	Score Score    `json:"score"`           // Readiness index, never affects annotations
	Hints []string `json:"hints,omitempty"` // Input problems worth fixing (e.g., misspelled tax type)

	LLM *LLMSummary `json:"llm,omitempty"` // Optional narrative summary
}

// Score is the transparent readiness breakdown
type Score struct {
	Index      int      `json:"index"`      // 0-100
	Confidence string   `json:"confidence"` // "low", "medium", "high"
	Signals    []Signal `json:"signals"`
}

// Signal is one scoring factor with the data behind it
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies a scoring signal
type SignalType string

const (
	SignalWarnings      SignalType = "warnings"      // Missing information penalty
	SignalRedFlags      SignalType = "red_flags"     // Red flag penalty
	SignalOpportunities SignalType = "opportunities" // Suggestions found (no penalty)
	SignalEmptyText     SignalType = "empty_text"    // No text could be extracted
	SignalUnknownType   SignalType = "unknown_type"  // Tax type not recognized
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// LLMSummary is an optional narrative produced after the rule passes
type LLMSummary struct {
	Enabled   bool     `json:"enabled"`
	Provider  string   `json:"provider,omitempty"`
	Model     string   `json:"model,omitempty"`
	SummaryMD string   `json:"summary_md,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}
