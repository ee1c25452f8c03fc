package extract

import "strings"

// PageBreak separates pages in extracted text (form feed)
const PageBreak = "\f"

// SplitPages splits text on page breaks. Empty text has no pages.
func SplitPages(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, PageBreak)
}

// Pages returns the page count of extracted text
func Pages(text string) int {
	return len(SplitPages(text))
}
