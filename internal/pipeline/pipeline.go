// Package pipeline wires document loading, analysis, scoring and rendering.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/ppiankov/taxlens/internal/cache"
	"github.com/ppiankov/taxlens/internal/catalogue"
	"github.com/ppiankov/taxlens/internal/extract"
	"github.com/ppiankov/taxlens/internal/highlight"
	"github.com/ppiankov/taxlens/internal/llm"
	"github.com/ppiankov/taxlens/internal/logger"
	"github.com/ppiankov/taxlens/internal/model"
	"github.com/ppiankov/taxlens/internal/redflag"
	"github.com/ppiankov/taxlens/internal/registry"
	"github.com/ppiankov/taxlens/internal/score"
	"github.com/ppiankov/taxlens/internal/validate"
	"github.com/ppiankov/taxlens/internal/worker"
	"github.com/sirupsen/logrus"
)

// Request is one document to analyze
type Request struct {
	Source      string // Local path or http(s) URL; ignored when Text is set
	Text        string // Already extracted text
	Name        string // Display name when Text is set
	FileID      string // Defaults to Source
	TaxType     string
	AccountType string
	NoCache     bool
}

// Pipeline orchestrates the complete analysis
type Pipeline struct {
	loader     *Loader
	catalogue  *catalogue.Catalogue
	engine     *highlight.Engine
	registry   *registry.Memory
	scorer     *score.Scorer
	validator  *validate.Validator
	renderer   *Renderer
	summarizer *llm.Summarizer // Disabled when no provider is configured
	limiter    *worker.Limiter
	cache      cache.Cache // nil when disabled
	config     *model.Config

	provider llm.Provider
	newID    func() string
}

// Option customizes a pipeline
type Option func(*Pipeline)

// WithRegistry shares a file registry across pipelines
func WithRegistry(r *registry.Memory) Option {
	return func(p *Pipeline) { p.registry = r }
}

// WithCache replaces the configured cache; nil disables caching
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// WithProvider replaces the configured LLM provider
func WithProvider(provider llm.Provider) Option {
	return func(p *Pipeline) { p.provider = provider }
}

// WithIDGenerator makes annotation ids deterministic
func WithIDGenerator(gen func() string) Option {
	return func(p *Pipeline) { p.newID = gen }
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, opts ...Option) (*Pipeline, error) {
	cat := catalogue.Default()
	if cfg.Catalogue.Path != "" {
		loaded, err := catalogue.Load(cfg.Catalogue.Path)
		if err != nil {
			return nil, fmt.Errorf("load catalogue: %w", err)
		}
		cat = loaded
	}

	llmConfig := llm.ConfigFromModel(cfg.LLM, cfg.HTTP)

	// The provider is only built when something will call it
	var provider llm.Provider
	if cfg.LLM.Provider != "" && (cfg.Detector.LLM || cfg.LLM.Summary) {
		p, err := llm.NewProvider(llmConfig)
		if err != nil {
			return nil, fmt.Errorf("init LLM provider: %w", err)
		}
		provider = p
	}

	var reportCache cache.Cache
	if cfg.Cache.Enabled {
		reportCache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	fetcher := NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes, limiter,
		cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)

	p := &Pipeline{
		loader:    NewLoader(fetcher, extract.NewRegistry()),
		catalogue: cat,
		registry:  registry.NewMemory(),
		scorer:    score.NewScorer(),
		validator: validate.NewValidator(),
		renderer:  NewRenderer(cfg.Output.IncludeFooter, cfg.Output.IncludeGuide),
		limiter:   limiter,
		cache:     reportCache,
		config:    cfg,
		provider:  provider,
	}
	for _, opt := range opts {
		opt(p)
	}

	// Local models are not throttled
	if p.provider != nil && p.provider.Name() == "ollama" {
		limiter.SetRate(p.provider.Name(), math.Inf(1), 0)
	}

	var engineOpts []highlight.Option
	if p.newID != nil {
		engineOpts = append(engineOpts, highlight.WithIDGenerator(p.newID))
	}
	p.engine = highlight.NewEngine(buildDetector(cfg, p.provider, limiter), engineOpts...)
	p.summarizer = llm.NewSummarizerWithProvider(p.provider, llmConfig)

	return p, nil
}

// buildDetector assembles the red flag detectors enabled in cfg
func buildDetector(cfg *model.Config, provider llm.Provider, limiter *worker.Limiter) redflag.Detector {
	var detectors []redflag.Detector
	if cfg.Detector.Rules {
		detectors = append(detectors, redflag.NewRuleDetector(cfg.Detector.CashThreshold, cfg.Detector.RoundAmountsMin))
	}
	if cfg.Detector.LLM {
		if provider == nil {
			logger.Warn("LLM red flag review enabled but no LLM provider configured")
		} else {
			detectors = append(detectors, redflag.NewLLMDetector(provider, limiter))
		}
	}
	if len(detectors) == 0 {
		return nil
	}
	multi := redflag.NewMulti(detectors...)
	logger.WithField("detectors", multi.Len()).Debug("red flag detectors ready")
	return multi
}

// Registry returns the file registry used by the pipeline
func (p *Pipeline) Registry() *registry.Memory {
	return p.registry
}

// Analyze loads, annotates and scores one document
func (p *Pipeline) Analyze(ctx context.Context, req Request) (*model.Report, error) {
	doc, err := p.load(ctx, req)
	if err != nil {
		return nil, err
	}

	fileID := req.FileID
	if fileID == "" {
		fileID = doc.Source
	}
	if fileID == "" {
		fileID = doc.File.Name
	}

	log := logger.WithFields(logrus.Fields{
		"file_id":  fileID,
		"tax_type": req.TaxType,
	})

	// A file already in the registry keeps its metadata, including the analyzed flag
	meta, _ := p.registry.LookupOrRegister(fileID, doc.File)

	var key string
	if p.cache != nil && !req.NoCache {
		key = cache.CacheKey(fileID, doc.Text, req.TaxType, req.AccountType, meta.Analyzed)
		if report, ok := p.cached(key); ok {
			log.Debug("report served from cache")
			_ = p.registry.MarkAnalyzed(fileID)
			return report, nil
		}
	}

	annotations := p.engine.AnalyzeFile(ctx, p.registry, fileID, doc.Text, req.TaxType, req.AccountType)
	if err := p.registry.MarkAnalyzed(fileID); err != nil {
		return nil, fmt.Errorf("mark analyzed: %w", err)
	}

	taxType := model.ParseTaxType(req.TaxType)
	issues := p.validator.Validate(validate.Request{
		FileID:      fileID,
		TaxType:     req.TaxType,
		AccountType: req.AccountType,
		Text:        doc.Text,
	})

	report := &model.Report{
		FileID:      fileID,
		File:        meta,
		Source:      doc.Source,
		TaxType:     taxType,
		AccountType: model.ParseAccountType(req.AccountType),
		Pages:       extract.Pages(doc.Text),
		AnalyzedAt:  time.Now().UTC(),
		Guideline:   p.catalogue.Lookup(taxType),
		Annotations: annotations,
		Counts:      model.CountByKind(annotations),
		Hints:       validate.Hints(issues),
	}

	// Score after annotating; scoring never changes the annotations
	report.Score = p.scorer.Calculate(score.Input{
		Annotations: annotations,
		EmptyText:   strings.TrimSpace(doc.Text) == "",
		TaxType:     taxType,
	})

	if p.config.LLM.Summary && p.summarizer.IsEnabled() {
		p.summarize(ctx, report, log)
	}

	log.WithFields(logrus.Fields{
		"suggestions": report.Counts.Suggestions,
		"warnings":    report.Counts.Warnings,
		"red_flags":   report.Counts.RedFlags,
		"index":       report.Score.Index,
	}).Info("analysis complete")

	if key != "" {
		p.store(key, report)
	}

	return report, nil
}

// summarize attaches the optional narrative; failures only cost the summary
func (p *Pipeline) summarize(ctx context.Context, report *model.Report, log *logrus.Entry) {
	if err := p.limiter.Wait(ctx, p.summarizer.ProviderName()); err != nil {
		log.WithError(err).Warn("LLM summary skipped")
		return
	}
	summary, err := p.summarizer.GenerateSummary(ctx, *report)
	if err != nil {
		log.WithError(err).Warn("LLM summary generation failed")
		return
	}
	report.LLM = summary
}

// AnalyzeEntry analyzes one batch manifest entry
func (p *Pipeline) AnalyzeEntry(ctx context.Context, entry registry.Entry) (*model.Report, error) {
	return p.Analyze(ctx, Request{
		Source:      entry.Path,
		FileID:      entry.ID,
		TaxType:     entry.TaxType,
		AccountType: entry.AccountType,
	})
}

func (p *Pipeline) load(ctx context.Context, req Request) (*Document, error) {
	if req.Text != "" || req.Source == "" {
		name := req.Name
		if name == "" {
			name = req.FileID
		}
		return &Document{
			Source: req.Source,
			Text:   req.Text,
			File:   model.FileMeta{Name: name, Size: int64(len(req.Text))},
		}, nil
	}
	return p.loader.Load(ctx, req.Source)
}

func (p *Pipeline) cached(key string) (*model.Report, bool) {
	data, ok := p.cache.Get(key)
	if !ok {
		return nil, false
	}
	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		logger.WithError(err).Warn("discarding unreadable cached report")
		_ = p.cache.Delete(key)
		return nil, false
	}
	for _, a := range report.Annotations {
		if !a.Kind.Valid() {
			logger.WithField("kind", a.Kind).Warn("discarding cached report with unknown annotation kind")
			_ = p.cache.Delete(key)
			return nil, false
		}
	}
	return &report, true
}

func (p *Pipeline) store(key string, report *model.Report) {
	data, err := json.Marshal(report)
	if err != nil {
		logger.WithError(err).Warn("encode report for cache")
		return
	}
	if err := p.cache.Set(key, data, p.config.Cache.DiskTTL); err != nil {
		logger.WithError(err).Warn("cache report")
	}
}

// RenderReport renders the report to the specified outputs and prints a
// summary to w
func (p *Pipeline) RenderReport(w io.Writer, report *model.Report, jsonPath string, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			_, _ = fmt.Fprintf(w, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			_, _ = fmt.Fprintf(w, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	// LLM summary goes to its own file so it is never mistaken for rule output
	if report.LLM != nil && report.LLM.Enabled && mdPath != "" {
		llmMdPath := strings.TrimSuffix(mdPath, ".md") + ".llm.md"
		if err := p.renderer.RenderLLMMarkdown(report, llmMdPath); err != nil {
			logger.WithError(err).Warn("failed to write LLM summary")
		} else if verbose {
			_, _ = fmt.Fprintf(w, "✓ Wrote LLM Summary: %s\n", llmMdPath)
		}
	}

	p.renderer.RenderSummary(w, report)

	return nil
}
