package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/taxlens/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// resetFlags restores every flag to its default so commands can run repeatedly
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// execute runs the CLI with args and returns stdout and stderr
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	viper.Reset()
	resetFlags(rootCmd)

	// Keep the user's config file out of the test
	args = append([]string{"--config=" + filepath.Join(t.TempDir(), "none.yaml")}, args...)

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const w2Text = "Form W-2 Wage and Tax Statement\nSSN 123-45-6789\nWages $52,000.00\nMortgage interest paid\nSigned 01/31/2024"

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "", "version")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(stdout) != "taxlens v0.1.0" {
		t.Errorf("unexpected version output: %q", stdout)
	}
}

func TestAnalyze_WritesReports(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "w2.txt", w2Text)
	jsonPath := filepath.Join(dir, "report.json")
	mdPath := filepath.Join(dir, "report.md")

	stdout, _, err := execute(t, "", "analyze", doc,
		"--tax-type", "income", "--account-type", "individual",
		"--json", jsonPath, "--md", mdPath, "--no-cache")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	if !strings.Contains(stdout, "Readiness:   100/100 (high)") {
		t.Errorf("unexpected summary:\n%s", stdout)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("invalid JSON report: %v", err)
	}
	if report.FileID != doc || report.Counts.Suggestions != 2 {
		t.Errorf("unexpected report: %+v", report)
	}

	md, err := os.ReadFile(mdPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(md), "# Document Review: w2.txt") {
		t.Errorf("unexpected Markdown:\n%s", md)
	}
}

func TestAnalyze_StdinToStdoutJSON(t *testing.T) {
	stdout, stderr, err := execute(t, "Cash received $12,500.00 on 03/01/2024, signed",
		"analyze", "-", "--tax-type", "business", "--json", "-", "--no-cache", "--no-footer")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("stdout should hold only the JSON report: %v\n%s", err, stdout)
	}
	if report.FileID != "stdin" || report.TaxType != model.TaxTypeBusiness {
		t.Errorf("unexpected report: %+v", report)
	}
	if report.Counts.RedFlags != 1 {
		t.Errorf("expected the large cash red flag, got %+v", report.Counts)
	}
	if !strings.Contains(stderr, "Red flags:   1") {
		t.Errorf("expected summary on stderr, got:\n%s", stderr)
	}
}

func TestAnalyze_LLMFlagErrors(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("TAXLENS_LLM_API_KEY", "")
	doc := writeFile(t, t.TempDir(), "w2.txt", w2Text)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"summary without key", []string{"--summary"}, "OPENAI_API_KEY"},
		{"review without key", []string{"--llm"}, "OPENAI_API_KEY"},
		{"unknown provider", []string{"--llm", "--llm-provider", "bogus"}, "unsupported LLM provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"analyze", doc, "--no-cache"}, tt.args...)
			_, _, err := execute(t, "", args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestAnalyze_MissingFile(t *testing.T) {
	_, _, err := execute(t, "", "analyze", filepath.Join(t.TempDir(), "missing.txt"), "--no-cache")
	if err == nil || !strings.Contains(err.Error(), "analysis failed") {
		t.Errorf("expected analysis error, got %v", err)
	}
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "w2.txt", w2Text)
	writeFile(t, dir, "bill.txt", "Property tax bill. Signed 2024-02-01")
	manifest := writeFile(t, dir, "manifest.yaml", `documents:
  - id: w2
    path: w2.txt
    tax_type: income
    account_type: individual
  - id: bill
    path: bill.txt
    tax_type: property
    analyzed: true
  - id: gone
    path: gone.txt
    tax_type: income
`)
	outDir := filepath.Join(dir, "reports")

	_, stderr, err := execute(t, "", "batch", manifest, "--output-dir", outDir, "--concurrency", "2", "--no-cache", "-v")
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}

	for _, name := range []string{"001-w2.json", "001-w2.md", "002-bill.json", "002-bill.md"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, "003-gone.json")); err == nil {
		t.Error("failed entries should not produce reports")
	}

	bill, err := os.ReadFile(filepath.Join(outDir, "002-bill.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(bill), `"rule": "redflag:duplicate"`) {
		t.Errorf("manifest analyzed flag should raise a duplicate red flag:\n%s", bill)
	}

	for _, want := range []string{"Success:   2", "Failures:  1", "✗ gone", "[3/3]"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("expected %q in batch output:\n%s", want, stderr)
		}
	}
}

func TestBatch_AllFailed(t *testing.T) {
	dir := t.TempDir()
	manifest := writeFile(t, dir, "manifest.yaml", "documents:\n  - path: missing.txt\n")

	_, _, err := execute(t, "", "batch", manifest, "--output-dir", filepath.Join(dir, "out"), "--no-cache")
	if err == nil || !strings.Contains(err.Error(), "all 1 documents failed") {
		t.Errorf("expected failure, got %v", err)
	}
}

func TestCatalogue(t *testing.T) {
	stdout, _, err := execute(t, "", "catalogue")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"income", "property", "business", "sales", "estate"} {
		if !strings.Contains(stdout, name) {
			t.Errorf("expected %s in category list:\n%s", name, stdout)
		}
	}

	stdout, _, err = execute(t, "", "catalogue", "Property")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "Review guide: property") || !strings.Contains(stdout, "Parcel Number") {
		t.Errorf("unexpected guide:\n%s", stdout)
	}

	_, _, err = execute(t, "", "catalogue", "incme")
	if err == nil || !strings.Contains(err.Error(), `did you mean "income"?`) {
		t.Errorf("expected suggestion, got %v", err)
	}
}

func TestCatalogue_YAMLOverride(t *testing.T) {
	dir := t.TempDir()
	override := writeFile(t, dir, "catalogue.yaml", `estate:
  key_fields: [Decedent Name, Date of Death]
`)

	stdout, _, err := execute(t, "", "catalogue", "estate", "--catalogue", override, "--yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "estate:") || !strings.Contains(stdout, "- Date of Death") {
		t.Errorf("unexpected YAML:\n%s", stdout)
	}

	if _, _, err := execute(t, "", "catalogue", "--catalogue", filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing catalogue file")
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxlens", "config.yaml")

	stdout, _, err := execute(t, "", "config", "init", "--config", path)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(stdout, "Created default configuration") {
		t.Errorf("unexpected output: %s", stdout)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"# taxlens configuration file", "cash_threshold: 10000", "OPENAI_API_KEY"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("expected %q in config file", want)
		}
	}

	if _, _, err := execute(t, "", "config", "init", "--config", path); err == nil {
		t.Error("expected error when config already exists")
	}

	t.Setenv("TAXLENS_LLM_MODEL", "llama3.2")
	stdout, stderr, err := execute(t, "", "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(stderr, "Configuration file: "+path) {
		t.Errorf("expected config file path, got:\n%s", stderr)
	}
	if !strings.Contains(stdout, "model: llama3.2") {
		t.Errorf("expected env override in config:\n%s", stdout)
	}
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "detector:\n  cash_threshold: 5000\ncache:\n  enabled: false\n")

	stdout, _, err := execute(t, "", "config", "show", "--config", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "cash_threshold: 5000") {
		t.Errorf("expected file value:\n%s", stdout)
	}
	// Keys absent from the file keep their defaults
	if !strings.Contains(stdout, "round_amounts_min: 3") {
		t.Errorf("expected default value:\n%s", stdout)
	}
}

func TestReportBaseName(t *testing.T) {
	tests := []struct {
		index int
		id    string
		want  string
	}{
		{0, "w2-2024", "001-w2-2024"},
		{1, "/data/docs/bill.txt", "002-bill"},
		{2, "https://example.com/q1 return.html", "003-q1-return"},
		{9, "", "010-document"},
		{3, "a:b*c", "004-a_b_c"},
	}

	for _, tt := range tests {
		if got := reportBaseName(tt.index, tt.id); got != tt.want {
			t.Errorf("reportBaseName(%d, %q) = %q, want %q", tt.index, tt.id, got, tt.want)
		}
	}
}
