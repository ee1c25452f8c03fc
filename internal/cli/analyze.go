package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ppiankov/taxlens/internal/model"
	"github.com/ppiankov/taxlens/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	taxType     string
	accountType string
	fileID      string
	outJSON     string
	outMD       string
	timeout     time.Duration
	noCache     bool
	noFooter    bool
	llmReview   bool
	llmSummary  bool
	llmProvider string
	llmModel    string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <path|url|->",
	Short: "Analyze a single tax document and generate highlights",
	Long: `Analyze reviews one document to:
- Suggest deductions and credits that may apply
- Warn about missing or unreadable information
- Flag patterns that commonly draw audit attention
- Score how ready the document looks for filing

Plain text, Markdown and HTML are read directly. Other formats are analyzed
as empty text. Use "-" to read text from stdin.

Example:
  taxlens analyze w2.txt --tax-type income --account-type individual
  taxlens analyze bill.html --tax-type property --json report.json --md report.md
  taxlens analyze https://example.com/return.txt --tax-type sales --llm --summary`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Document flags
	analyzeCmd.Flags().StringVarP(&taxType, "tax-type", "t", "", "tax category (income, property, business, sales, estate)")
	analyzeCmd.Flags().StringVarP(&accountType, "account-type", "a", "", "filer type (individual, business)")
	analyzeCmd.Flags().StringVar(&fileID, "file-id", "", "registry id for the document (default: the path)")

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", `output JSON path ("-" for stdout)`)
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh analysis)")

	addLLMFlags(analyzeCmd)
}

// addLLMFlags registers the LLM flags shared by analyze and batch
func addLLMFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&llmReview, "llm", false, "add an LLM reviewer to the red flag detectors")
	cmd.Flags().BoolVar(&llmSummary, "summary", false, "generate an LLM summary (written next to the Markdown report)")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, ollama; default from config or openai)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

// applyFlags layers command line flags over the loaded configuration
func applyFlags(cmd *cobra.Command, cfg *model.Config) error {
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	cfg.Output.Verbose = cfg.Output.Verbose || verbose

	if cmd.Flags().Changed("llm-provider") {
		cfg.LLM.Provider = llmProvider
	}
	if cmd.Flags().Changed("llm-model") {
		cfg.LLM.Model = llmModel
	}
	if llmReview {
		cfg.Detector.LLM = true
	}
	if llmSummary {
		cfg.LLM.Summary = true
	}

	if !cfg.Detector.LLM && !cfg.LLM.Summary {
		return nil
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}

	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
		if cfg.LLM.Model == "" {
			cfg.LLM.Model = "gpt-4o-mini"
		}
	case "ollama":
		if cfg.LLM.Model == "" {
			cfg.LLM.Model = "llama3.1"
		}
	default:
		return fmt.Errorf("unsupported LLM provider: %s (supported: openai, ollama)", cfg.LLM.Provider)
	}
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	source := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	if cfg.Output.Verbose {
		_, _ = fmt.Fprintf(stderr, "Analyzing: %s\n", source)
		_, _ = fmt.Fprintf(stderr, "Tax type: %s\n", displayOrDefault(taxType, "(none)"))
		_, _ = fmt.Fprintf(stderr, "Cache: %v\n", cfg.Cache.Enabled)
		_, _ = fmt.Fprintln(stderr)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	req := pipeline.Request{
		Source:      source,
		FileID:      fileID,
		TaxType:     taxType,
		AccountType: accountType,
		NoCache:     noCache,
	}
	if source == "-" {
		text, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		req.Source = ""
		req.Text = string(text)
		req.Name = "stdin"
		if req.FileID == "" {
			req.FileID = "stdin"
		}
	}

	report, err := p.Analyze(ctx, req)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if cfg.Output.Verbose {
		_, _ = fmt.Fprintf(stderr, "✓ Found %d annotations\n", len(report.Annotations))
		_, _ = fmt.Fprintf(stderr, "✓ Calculated readiness index: %d/100\n", report.Score.Index)
		if report.LLM != nil && report.LLM.Enabled {
			_, _ = fmt.Fprintf(stderr, "✓ Generated LLM summary using %s/%s\n", report.LLM.Provider, report.LLM.Model)
		}
		_, _ = fmt.Fprintln(stderr)
	}

	jsonPath := outJSON
	if jsonPath == "-" {
		jsonPath = ""
		if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	}

	// With JSON on stdout the summary goes to stderr
	summaryOut := cmd.OutOrStdout()
	if outJSON == "-" {
		summaryOut = stderr
	}
	if err := p.RenderReport(summaryOut, report, jsonPath, outMD, cfg.Output.Verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

func writeJSON(w io.Writer, report *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

func displayOrDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
