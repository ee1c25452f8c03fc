package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/taxlens/internal/model"
	"github.com/ppiankov/taxlens/internal/pipeline"
	"github.com/ppiankov/taxlens/internal/registry"
	"github.com/ppiankov/taxlens/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	// noCache, noFooter and the LLM flags are defined in analyze.go and shared here
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <manifest.yaml>",
	Short: "Analyze every document in a manifest in parallel",
	Long: `Batch processes a manifest of documents concurrently:
- Read documents (path or URL, tax type, account type) from a YAML manifest
- Analyze documents in parallel with a configurable worker count
- Generate a JSON and Markdown report for each document

Manifest format:
  documents:
    - id: w2-2024
      path: docs/w2.txt
      tax_type: income
      account_type: individual
    - path: https://example.com/bill.html
      tax_type: property
      analyzed: true   # uploaded before; flagged as a possible duplicate

Example:
  taxlens batch manifest.yaml
  taxlens batch manifest.yaml --concurrency 8 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./taxlens-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh analysis)")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	addLLMFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}
	workers := max(cfg.Concurrency.Workers, 1)

	stderr := cmd.ErrOrStderr()
	printBanner(stderr, "taxlens Batch Processing")
	_, _ = fmt.Fprintf(stderr, "  Manifest:     %s\n", file)
	_, _ = fmt.Fprintf(stderr, "  Workers:      %d\n", workers)
	_, _ = fmt.Fprintf(stderr, "  Output dir:   %s\n", outputDir)
	_, _ = fmt.Fprintf(stderr, "  Timeout:      %v\n", batchTimeout)
	if cfg.Detector.LLM || cfg.LLM.Summary {
		_, _ = fmt.Fprintf(stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}
	_, _ = fmt.Fprintf(stderr, "\n")

	manifest, err := registry.LoadManifest(file)
	if err != nil {
		return err
	}

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	// Manifest metadata (including the analyzed flag) seeds the registry
	manifest.Register(p.Registry())

	_, _ = fmt.Fprintf(stderr, "⚙️  Analyzing %d documents with %d workers...\n\n", len(manifest.Documents), workers)
	processor := worker.NewBatchProcessor(p, workers)
	if cfg.Output.Verbose {
		processor.OnProgress(func(done, total int, r *worker.AnalyzeResult) {
			status := "done"
			if r.Error != nil {
				status = "failed"
			}
			_, _ = fmt.Fprintf(stderr, "  [%d/%d] %s %s\n", done, total, r.Entry.ID, status)
		})
	}
	results := processor.Process(ctx, manifest.Documents)

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter, cfg.Output.IncludeGuide)
	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			_, _ = fmt.Fprintf(stderr, "✗ %s: %v\n", result.Entry.ID, result.Error)
			continue
		}

		base := filepath.Join(outputDir, reportBaseName(result.Index, result.Entry.ID))
		if err := writeReports(renderer, result.Report, base); err != nil {
			failureCount++
			_, _ = fmt.Fprintf(stderr, "✗ %s: %v\n", result.Entry.ID, err)
			continue
		}

		successCount++
		_, _ = fmt.Fprintf(stderr, "✓ %s (readiness: %d/100, red flags: %d)\n",
			result.Entry.ID, result.Report.Score.Index, result.Report.Counts.RedFlags)
	}

	// Summary
	_, _ = fmt.Fprintf(stderr, "\n")
	printBanner(stderr, "Batch Complete")
	_, _ = fmt.Fprintf(stderr, "  Total:     %d documents\n", len(results))
	_, _ = fmt.Fprintf(stderr, "  Success:   %d\n", successCount)
	_, _ = fmt.Fprintf(stderr, "  Failures:  %d\n", failureCount)
	_, _ = fmt.Fprintf(stderr, "  Output:    %s\n", outputDir)
	_, _ = fmt.Fprintf(stderr, "\n")

	if failureCount > 0 && successCount == 0 {
		return fmt.Errorf("all %d documents failed", failureCount)
	}
	return nil
}

// writeReports writes base.json, base.md and, when present, base.llm.md
func writeReports(renderer *pipeline.Renderer, report *model.Report, base string) error {
	if err := renderer.RenderJSON(report, base+".json"); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	if err := renderer.RenderMarkdown(report, base+".md"); err != nil {
		return fmt.Errorf("write Markdown: %w", err)
	}
	if report.LLM != nil && report.LLM.Enabled {
		if err := renderer.RenderLLMMarkdown(report, base+".llm.md"); err != nil {
			return fmt.Errorf("write LLM summary: %w", err)
		}
	}
	return nil
}

func printBanner(w io.Writer, title string) {
	_, _ = fmt.Fprintf(w, "\n")
	_, _ = fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	_, _ = fmt.Fprintf(w, "  %s\n", title)
	_, _ = fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	_, _ = fmt.Fprintf(w, "\n")
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "-",
)

// reportBaseName builds a unique, filesystem-safe report name for a manifest entry
func reportBaseName(index int, id string) string {
	name := strings.TrimSuffix(filepath.Base(id), filepath.Ext(id))
	name = filenameReplacer.Replace(name)

	// Limit length
	if len(name) > 100 {
		name = name[:100]
	}
	if name == "" || name == "." {
		name = "document"
	}

	return fmt.Sprintf("%03d-%s", index+1, name)
}
