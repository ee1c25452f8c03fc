package redflag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/taxlens/internal/llm"
	"github.com/ppiankov/taxlens/internal/model"
)

// maxPromptText bounds how much document text is sent to the model
const maxPromptText = 12000

const reviewSystem = "You review tax documents for audit risk. Reply with JSON only."

// Waiter throttles outbound calls; worker.Limiter satisfies it
type Waiter interface {
	Wait(ctx context.Context, key string) error
}

// LLMDetector asks an LLM provider to list red flags
type LLMDetector struct {
	provider llm.Provider
	limiter  Waiter
	maxFlags int
}

// NewLLMDetector creates an LLM-backed detector. limiter may be nil.
func NewLLMDetector(provider llm.Provider, limiter Waiter) *LLMDetector {
	return &LLMDetector{
		provider: provider,
		limiter:  limiter,
		maxFlags: 10,
	}
}

type llmFlags struct {
	Flags []struct {
		Message string `json:"message"`
		Page    int    `json:"page"`
	} `json:"flags"`
}

// Detect sends the document text to the provider and parses its JSON reply
func (d *LLMDetector) Detect(ctx context.Context, text string, file model.FileMeta, taxType model.TaxType) ([]Flag, error) {
	if d.provider == nil {
		return nil, fmt.Errorf("no LLM provider configured")
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx, d.provider.Name()); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	resp, err := d.provider.Complete(ctx, llm.CompletionRequest{
		System: reviewSystem,
		Prompt: buildReviewPrompt(text, file, taxType, d.maxFlags),
		JSON:   true,
	})
	if err != nil {
		return nil, err
	}

	return parseFlags(resp.Text, d.maxFlags)
}

func buildReviewPrompt(text string, file model.FileMeta, taxType model.TaxType, maxFlags int) string {
	if len(text) > maxPromptText {
		cut := maxPromptText
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	return fmt.Sprintf(`List at most %d audit red flags in this %s tax document.
Only report issues supported by the text. If there are none, return an empty list.

Respond with exactly this JSON shape:
{"flags": [{"message": "short description", "page": 1}]}

File name: %s

Document text:
"""
%s
"""`, maxFlags, taxType, file.Name, text)
}

// parseFlags decodes the model's reply, tolerating Markdown code fences
func parseFlags(raw string, maxFlags int) ([]Flag, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var parsed llmFlags
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("parse LLM flags: %w", err)
	}

	var flags []Flag
	for _, f := range parsed.Flags {
		msg := strings.TrimSpace(f.Message)
		if msg == "" {
			continue
		}
		page := f.Page
		if page < 1 {
			page = 1
		}
		flags = append(flags, Flag{
			Message: msg,
			Page:    page,
			Rule:    "redflag:llm",
		})
		if len(flags) >= maxFlags {
			break
		}
	}

	return flags, nil
}
