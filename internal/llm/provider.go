package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/taxlens/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends a single prompt and returns the model's reply
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest is one prompt for the provider
type CompletionRequest struct {
	// System sets the assistant's role
	System string

	// Prompt is the user message
	Prompt string

	// Model overrides the configured model
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// JSON asks the provider to return a single JSON object
	JSON bool
}

// CompletionResponse is the provider's reply
type CompletionResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (OpenAI-compatible gateways, Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxTokens: 1000,
	}
}

// ConfigFromModel converts the application configuration; unset limits
// keep their defaults
func ConfigFromModel(cfg model.LLMConfig, http model.HTTPConfig) Config {
	c := DefaultConfig()
	c.Provider = cfg.Provider
	c.Model = cfg.Model
	c.APIKey = cfg.APIKey
	c.BaseURL = cfg.BaseURL
	if cfg.Timeout > 0 {
		c.Timeout = cfg.Timeout
	}
	if cfg.MaxTokens > 0 {
		c.MaxTokens = cfg.MaxTokens
	}
	c.HTTPProxy = http.HTTPProxy
	c.HTTPSProxy = http.HTTPSProxy
	c.NoProxy = http.NoProxy
	return c
}

const summarySystem = "You summarize tax document reviews. You never give legal or tax advice; you only restate the findings you are given."

// BuildSummaryPrompt constructs the prompt for a narrative report summary
func BuildSummaryPrompt(report model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, `Summarize this tax document review for the filer in 3-4 sentences.

RULES:
1. Only mention findings listed below. Do not invent new issues.
2. Put red flags first, then missing information, then opportunities.
3. Do not state amounts, deadlines or legal conclusions that are not listed.

Document: %s
Tax type: %s
Account type: %s
Readiness index: %d/100 (%s confidence)

Findings:
`, displayName(report), report.TaxType, report.AccountType, report.Score.Index, report.Score.Confidence)

	if len(report.Annotations) == 0 {
		b.WriteString("(No findings)\n")
	}
	for i, a := range report.Annotations {
		if i >= 30 {
			fmt.Fprintf(&b, "... and %d more findings\n", len(report.Annotations)-30)
			break
		}
		fmt.Fprintf(&b, "- [%s] %s\n", a.Kind, a.Message)
	}

	return b.String()
}

func displayName(report model.Report) string {
	if report.File.Name != "" {
		return report.File.Name
	}
	return report.FileID
}
