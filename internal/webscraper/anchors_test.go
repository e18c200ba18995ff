package webscraper

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDocumentAnchors(t *testing.T) {
	tests := []struct {
		name     string
		document string
		baseURL  string
		want     []LinkCandidate
	}{
		{
			name:     "no anchors",
			document: `<html><body><p>plain</p><a name="x">no href</a></body></html>`,
			baseURL:  "https://site.test/",
		},
		{
			name: "relative and absolute",
			document: `<html><body>
				<a href="/about">  About us </a>
				<a href="docs/intro">Intro</a>
				<a href="https://other.test/x">Other</a>
				<a href="#top">Top</a>
			</body></html>`,
			baseURL: "https://site.test/guide/",
			want: []LinkCandidate{
				{Text: "About us", RawHref: "/about", AbsoluteURL: "https://site.test/about"},
				{Text: "Intro", RawHref: "docs/intro", AbsoluteURL: "https://site.test/guide/docs/intro"},
				{Text: "Other", RawHref: "https://other.test/x", AbsoluteURL: "https://other.test/x"},
				{Text: "Top", RawHref: "#top", AbsoluteURL: "https://site.test/guide/#top"},
			},
		},
		{
			name:     "base href",
			document: `<html><head><base href="https://cdn.test/v2/"></head><body><a href="page">Page</a></body></html>`,
			baseURL:  "https://site.test/",
			want: []LinkCandidate{
				{Text: "Page", RawHref: "page", AbsoluteURL: "https://cdn.test/v2/page"},
			},
		},
		{
			name:     "unresolvable href",
			document: `<html><body><a href="http://[::1">Bad</a></body></html>`,
			baseURL:  "https://site.test/",
			want: []LinkCandidate{
				{Text: "Bad", RawHref: "http://[::1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DocumentAnchors{}.Anchors(tt.document, tt.baseURL)
			if err != nil {
				t.Fatalf("Anchors err: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("anchors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
