package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractVisibleText reduces raw HTML to readable plain text: non-visible
// elements are dropped, each line is trimmed, large intra-line gaps are split
// so concatenated headings land on their own lines, and blank lines are
// removed. A document that cannot be parsed yields "" instead of an error.
func ExtractVisibleText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript").Remove()

	var chunks []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		for _, phrase := range strings.Split(strings.TrimSpace(line), "  ") {
			phrase = strings.TrimSpace(phrase)
			if phrase != "" {
				chunks = append(chunks, phrase)
			}
		}
	}
	return strings.Join(chunks, "\n")
}
