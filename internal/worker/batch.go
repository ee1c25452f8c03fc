package worker

import (
	"context"
	"fmt"

	"github.com/ppiankov/taxlens/internal/logger"
	"github.com/ppiankov/taxlens/internal/model"
	"github.com/ppiankov/taxlens/internal/registry"
	"github.com/sirupsen/logrus"
)

// Analyzer analyzes one manifest entry
type Analyzer interface {
	AnalyzeEntry(ctx context.Context, entry registry.Entry) (*model.Report, error)
}

// AnalyzeJob analyzes one manifest entry
type AnalyzeJob struct {
	Index    int
	Entry    registry.Entry
	Analyzer Analyzer
}

// Execute executes the analysis job. A panicking analyzer fails only its own entry.
func (j *AnalyzeJob) Execute(ctx context.Context) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = &AnalyzeResult{Index: j.Index, Entry: j.Entry, Error: fmt.Errorf("analyzer panicked: %v", r)}
		}
	}()

	report, err := j.Analyzer.AnalyzeEntry(ctx, j.Entry)
	return &AnalyzeResult{
		Index:  j.Index,
		Entry:  j.Entry,
		Report: report,
		Error:  err,
	}
}

// AnalyzeResult is the outcome for one manifest entry
type AnalyzeResult struct {
	Index  int
	Entry  registry.Entry
	Report *model.Report
	Error  error
}

// GetError returns the error from the analysis result
func (r *AnalyzeResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes manifest entries concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	progress    func(done, total int, result *AnalyzeResult)
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// OnProgress registers fn to be called as each entry finishes, in completion
// order. Calls are never concurrent.
func (b *BatchProcessor) OnProgress(fn func(done, total int, result *AnalyzeResult)) *BatchProcessor {
	b.progress = fn
	return b
}

// Process analyzes every entry and returns results in manifest order.
// Entries that never ran because ctx was cancelled carry ctx's error.
func (b *BatchProcessor) Process(ctx context.Context, entries []registry.Entry) []*AnalyzeResult {
	if len(entries) == 0 {
		return []*AnalyzeResult{}
	}

	var opts []PoolOption
	if b.progress != nil {
		done := 0
		opts = append(opts, WithResultHook(func(r Result) {
			done++
			b.progress(done, len(entries), r.(*AnalyzeResult))
		}))
	}

	pool := NewPoolContext(ctx, b.concurrency, opts...)
	pool.Start()

	for i, entry := range entries {
		pool.Submit(&AnalyzeJob{
			Index:    i,
			Entry:    entry,
			Analyzer: b.analyzer,
		})
	}

	ordered := make([]*AnalyzeResult, len(entries))
	for _, result := range pool.Wait() {
		r := result.(*AnalyzeResult)
		ordered[r.Index] = r
	}

	failed := 0
	for i, r := range ordered {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = fmt.Errorf("entry %s was not processed", entries[i].ID)
			}
			ordered[i] = &AnalyzeResult{Index: i, Entry: entries[i], Error: err}
		}
		if ordered[i].Error != nil {
			failed++
		}
	}

	logger.WithFields(logrus.Fields{
		"entries": len(entries),
		"failed":  failed,
		"workers": b.concurrency,
	}).Info("batch complete")

	return ordered
}

// ProcessManifest loads a manifest and analyzes its entries
func (b *BatchProcessor) ProcessManifest(ctx context.Context, path string) ([]*AnalyzeResult, error) {
	manifest, err := registry.LoadManifest(path)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}

	return b.Process(ctx, manifest.Documents), nil
}
