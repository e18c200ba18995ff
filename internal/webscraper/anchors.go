package webscraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/yingtu35/link-verifier/pkg/domain"
)

// DocumentAnchors extracts <a href> elements with goquery.
type DocumentAnchors struct{}

// Anchors returns every anchor carrying an href, in document order. Hrefs are
// resolved against the document's <base href> when present, else baseURL.
func (DocumentAnchors) Anchors(document, baseURL string) ([]LinkCandidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	base := baseURL
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if resolved, err := domain.Resolve(baseURL, href); err == nil {
			base = resolved
		}
	}

	var links []LinkCandidate
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		link := LinkCandidate{
			Text:    strings.TrimSpace(s.Text()),
			RawHref: href,
		}
		if abs, err := domain.Resolve(base, href); err == nil {
			link.AbsoluteURL = abs
		}
		links = append(links, link)
	})
	return links, nil
}
