// Package htmlutil extracts normalized links from HTML documents.
package htmlutil

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lorien/weblib/logutil"
	"github.com/lorien/weblib/urlutil"
)

// DefaultSelector matches every anchor with an href attribute.
const DefaultSelector = "a[href]"

// ExtractLinks returns the normalized, deduplicated absolute http(s) links
// found in the href attributes of elements matching selector, in document
// order. Relative links are skipped since they need a base URL to resolve.
// An empty selector means DefaultSelector.
func ExtractLinks(r io.Reader, selector string) ([]string, error) {
	if selector == "" {
		selector = DefaultSelector
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	var (
		hrefs   []string
		skipped int
	)
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists {
			return
		}
		href = strings.TrimSpace(href)
		if !isAbsoluteHTTP(href) {
			skipped++
			return
		}
		hrefs = append(hrefs, href)
	})
	logutil.Debug("extracted links", "found", len(hrefs), "skipped", skipped)

	return urlutil.Dedupe(hrefs)
}

func isAbsoluteHTTP(href string) bool {
	lower := strings.ToLower(href)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
