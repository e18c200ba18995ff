package webscraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/mo"
)

// Session is a single browser tab owned by one run. Only one navigation may be
// in flight at a time.
type Session interface {
	// Navigate loads url and returns the URL the tab shows afterwards.
	Navigate(ctx context.Context, url string) (string, error)
	// WaitFor blocks until selector is present in the current document.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	// Source returns the rendered document of the current page.
	Source(ctx context.Context) (string, error)
	Close() error
}

// StatusChecker issues a HEAD request without following redirects.
type StatusChecker interface {
	HeadStatus(ctx context.Context, url string) (int, error)
}

// AnchorExtractor lists the anchors of a rendered document in document order.
type AnchorExtractor interface {
	Anchors(document, baseURL string) ([]LinkCandidate, error)
}

// Reporter receives one Outcome per classified link.
type Reporter interface {
	Report(o Outcome)
}

// Policy decides which links are reported and followed.
type Policy int

const (
	// PolicyHealthy reports every link and follows healthy ones, each
	// followed link starting a new branch.
	PolicyHealthy Policy = iota
	// PolicyUnhealthy reports only unhealthy links and follows them,
	// keeping the branch of the page they were found on.
	PolicyUnhealthy
)

func (p Policy) String() string {
	switch p {
	case PolicyHealthy:
		return "healthy"
	case PolicyUnhealthy:
		return "unhealthy"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "healthy":
		return PolicyHealthy, nil
	case "unhealthy":
		return PolicyUnhealthy, nil
	}
	return PolicyHealthy, fmt.Errorf("unknown policy %q", s)
}

// CrawlContext is one unit of work: a page to visit within a branch.
type CrawlContext struct {
	PageURL     string
	OriginalURL string // root of the branch this page belongs to
	Depth       int    // descents since the branch root
	MaxDepth    int
}

// LinkCandidate is an anchor found on a page.
type LinkCandidate struct {
	Text        string
	RawHref     string
	AbsoluteURL string // empty when the href cannot be resolved
}

// ResolvedLink is a candidate after the browser followed it. FinalURL is
// absent when navigation failed.
type ResolvedLink struct {
	LinkCandidate
	FinalURL mo.Option[string]
}

// StatusOutcome is an HTTP status code with its reason phrase.
type StatusOutcome struct {
	StatusCode  int
	Description string
}

// Outcome is what the reporter receives for a classified link.
type Outcome struct {
	PageURL     string
	BranchURL   string
	LinkURL     string
	LinkText    string
	FinalURL    string
	StatusCode  int
	Description string
	Healthy     bool
	Depth       int
}

func (o Outcome) String() string {
	return fmt.Sprintf("Link: %s | Text: %s | Final URL: %s | Status Code: %d (%s)",
		o.LinkURL, o.LinkText, o.FinalURL, o.StatusCode, o.Description)
}
