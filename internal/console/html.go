package console

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// htmlTitle returns the <title> of an HTML document, or "" for anything else.
func htmlTitle(body string) string {
	lower := strings.ToLower(body)
	if !strings.Contains(lower, "<html") && !strings.Contains(lower, "<title") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
