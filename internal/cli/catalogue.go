package cli

import (
	"fmt"
	"io"

	"github.com/ppiankov/taxlens/internal/catalogue"
	"github.com/ppiankov/taxlens/internal/model"
	"github.com/ppiankov/taxlens/internal/validate"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	cataloguePath string
	catalogueYAML bool
)

// catalogueCmd represents the catalogue command
var catalogueCmd = &cobra.Command{
	Use:   "catalogue [tax-type]",
	Short: "Show the review guide for a tax category",
	Long: `Catalogue lists the supported tax categories, or shows what to look for,
the key fields, and the analysis focus for one category.

Guidelines can be overridden per category with a YAML file (--catalogue or
catalogue.path in the config file).

Example:
  taxlens catalogue
  taxlens catalogue property
  taxlens catalogue income --yaml > catalogue.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCatalogue,
}

func init() {
	rootCmd.AddCommand(catalogueCmd)

	catalogueCmd.Flags().StringVar(&cataloguePath, "catalogue", "", "guideline override file (YAML)")
	catalogueCmd.Flags().BoolVar(&catalogueYAML, "yaml", false, "print the guideline as YAML")
}

func runCatalogue(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cataloguePath != "" {
		cfg.Catalogue.Path = cataloguePath
	}

	cat := catalogue.Default()
	if cfg.Catalogue.Path != "" {
		if cat, err = catalogue.Load(cfg.Catalogue.Path); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if len(args) == 0 {
		_, _ = fmt.Fprintln(out, "Supported tax types:")
		for _, t := range cat.Categories() {
			g := cat.Lookup(t)
			_, _ = fmt.Fprintf(out, "  %-9s %d key fields\n", t, len(g.KeyFields))
		}
		return nil
	}

	t := model.ParseTaxType(args[0])
	if t == model.TaxTypeUnknown {
		names := make([]string, 0, len(model.TaxTypes))
		for _, known := range model.TaxTypes {
			names = append(names, known.String())
		}
		if s := validate.Closest(args[0], names); s != "" {
			return fmt.Errorf("unknown tax type %q (did you mean %q?)", args[0], s)
		}
		return fmt.Errorf("unknown tax type %q", args[0])
	}

	g := cat.Lookup(t)
	if catalogueYAML {
		data, err := yaml.Marshal(map[string]model.TaxTypeGuideline{t.String(): g})
		if err != nil {
			return fmt.Errorf("error marshaling guideline: %w", err)
		}
		_, _ = out.Write(data)
		return nil
	}

	printGuideline(out, t, g)
	return nil
}

func printGuideline(w io.Writer, t model.TaxType, g model.TaxTypeGuideline) {
	_, _ = fmt.Fprintf(w, "Review guide: %s\n", t)
	sections := []struct {
		title string
		items []string
	}{
		{"What to look for", g.WhatToLookFor},
		{"Key fields", g.KeyFields},
		{"Analysis focus", g.AnalysisFocus},
	}
	for _, s := range sections {
		_, _ = fmt.Fprintf(w, "\n%s:\n", s.title)
		for _, item := range s.items {
			_, _ = fmt.Fprintf(w, "  - %s\n", item)
		}
	}
}
