package webscraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/mo"

	"github.com/yingtu35/link-verifier/pkg/domain"
)

// Options tunes a Hunter.
type Options struct {
	MaxDepth      int
	Policy        Policy
	Dedupe        bool // skip pages already visited in this run
	ReadyTimeout  time.Duration
	IframeTimeout time.Duration
}

// Summary counts what a run did.
type Summary struct {
	RunID        string
	PagesVisited int
	PageFailures int
	LinksChecked int
	Healthy      int
	Unhealthy    int
	Skipped      int
}

// Hunter walks a site page by page with a single browser session and
// classifies every link it finds.
type Hunter struct {
	session   Session
	checker   StatusChecker
	extractor AnchorExtractor
	reporter  Reporter
	logger    zerolog.Logger
	opts      Options

	visited mapset.Set[string]
	summary Summary
}

func NewHunter(session Session, checker StatusChecker, reporter Reporter, logger zerolog.Logger, opts Options) *Hunter {
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = DefaultReadyTimeout
	}
	if opts.IframeTimeout <= 0 {
		opts.IframeTimeout = DefaultIframeTimeout
	}
	return &Hunter{
		session:   session,
		checker:   checker,
		extractor: DocumentAnchors{},
		reporter:  reporter,
		logger:    logger,
		opts:      opts,
	}
}

// SetExtractor replaces the default goquery extractor.
func (h *Hunter) SetExtractor(e AnchorExtractor) {
	h.extractor = e
}

// Hunt checks every link reachable from siteURL within the depth bound.
func (h *Hunter) Hunt(ctx context.Context, siteURL string) Summary {
	runID := uuid.NewString()
	h.logger = h.logger.With().Str("run_id", runID).Logger()
	h.logger.Info().
		Str("site", siteURL).
		Int("max_depth", h.opts.MaxDepth).
		Stringer("policy", h.opts.Policy).
		Msgf("%s ... checking links, max depth %d", siteURL, h.opts.MaxDepth)

	summary := h.Traverse(ctx, CrawlContext{PageURL: siteURL, MaxDepth: h.opts.MaxDepth})
	summary.RunID = runID
	return summary
}

// Traverse processes start and every page it leads to. Work is kept on an
// explicit stack; children are pushed in reverse so they are visited in
// document order.
func (h *Hunter) Traverse(ctx context.Context, start CrawlContext) Summary {
	h.summary = Summary{}
	h.visited = mapset.NewThreadUnsafeSet[string]()

	stack := []CrawlContext{start}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			h.logger.Warn().Err(err).Int("pending", len(stack)).Msg("traversal interrupted")
			break
		}
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children := h.visit(ctx, current)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return h.summary
}

// visit checks the links of one page and returns the pages to descend into.
// Failures never escape: they are logged and end the page.
func (h *Hunter) visit(ctx context.Context, c CrawlContext) (children []CrawlContext) {
	if c.OriginalURL == "" {
		c.OriginalURL = c.PageURL
	}
	if c.Depth > c.MaxDepth {
		return nil
	}
	if h.opts.Dedupe {
		if h.visited.Contains(c.PageURL) {
			h.logger.Debug().Str("page", c.PageURL).Msg("page already visited")
			return nil
		}
		h.visited.Add(c.PageURL)
	}

	defer func() {
		if r := recover(); r != nil {
			h.pageFailed(c, fmt.Errorf("panic: %v", r))
		}
	}()

	h.summary.PagesVisited++
	links, err := h.loadPage(ctx, c.PageURL)
	if err != nil {
		h.pageFailed(c, err)
		return nil
	}
	h.logger.Info().
		Str("page", c.PageURL).
		Int("depth", c.Depth).
		Int("links", len(links)).
		Msgf("...DEPTH %d....%d links checking", c.Depth, len(links))

	for i, link := range links {
		if ctx.Err() != nil {
			return children
		}
		if !h.navigable(c, link) {
			continue
		}

		resolved := h.resolve(ctx, c, link)
		finalURL, ok := resolved.FinalURL.Get()
		h.logger.Info().Msgf("%d. %s %s", i+1, link.Text, resolved.FinalURL.OrElse("None"))
		if !ok {
			h.summary.Skipped++
			continue
		}

		code, err := h.checker.HeadStatus(ctx, finalURL)
		if err != nil {
			switch kind := Classify(err); kind {
			case KindTLS, KindTimeout:
				h.summary.Skipped++
				h.logger.Error().
					Str("page", c.PageURL).
					Str("final_url", finalURL).
					Stringer("kind", kind).
					Str("error", truncateErr(err)).
					Msgf("%s error checking %s", kind, finalURL)
				continue
			default:
				h.pageFailed(c, err)
				return children
			}
		}

		outcome := h.classify(c, resolved, finalURL, code)
		h.summary.LinksChecked++
		if outcome.Healthy {
			h.summary.Healthy++
		} else {
			h.summary.Unhealthy++
		}

		if h.opts.Policy == PolicyHealthy || !outcome.Healthy {
			h.reporter.Report(outcome)
		}
		if next, ok := h.next(c, outcome); ok {
			children = append(children, next)
		}
	}
	return children
}

func (h *Hunter) loadPage(ctx context.Context, pageURL string) ([]LinkCandidate, error) {
	current, err := h.session.Navigate(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("load page: %w", err)
	}
	if err := h.session.WaitFor(ctx, readySelector, h.opts.ReadyTimeout); err != nil {
		h.logger.Debug().Str("page", pageURL).Str("error", truncateErr(err)).Msg("page not ready, continuing")
	}
	// frames are optional
	_ = h.session.WaitFor(ctx, iframeSelector, h.opts.IframeTimeout)

	document, err := h.session.Source(ctx)
	if err != nil {
		return nil, fmt.Errorf("read page source: %w", err)
	}
	if current == "" {
		current = pageURL
	}
	return h.extractor.Anchors(document, current)
}

// navigable filters out anchors a browser would not load as a page.
func (h *Hunter) navigable(c CrawlContext, link LinkCandidate) bool {
	href := strings.TrimSpace(link.RawHref)
	switch {
	case href == "", strings.HasPrefix(href, "#"):
	case link.AbsoluteURL == "":
	case !domain.IsNavigable(link.AbsoluteURL):
	default:
		return true
	}
	h.logger.Debug().Str("page", c.PageURL).Str("href", link.RawHref).Msg("skipping non-navigable link")
	return false
}

// resolve follows the link in the browser to observe client-side redirects.
func (h *Hunter) resolve(ctx context.Context, c CrawlContext, link LinkCandidate) ResolvedLink {
	resolved := ResolvedLink{LinkCandidate: link, FinalURL: mo.None[string]()}
	finalURL, err := h.session.Navigate(ctx, link.AbsoluteURL)
	if err != nil {
		err = &NavigationError{URL: link.AbsoluteURL, Err: err}
		h.logger.Error().
			Str("page", c.PageURL).
			Str("branch", c.OriginalURL).
			Str("link", link.AbsoluteURL).
			Stringer("kind", Classify(err)).
			Str("error", truncateErr(err)).
			Msgf("Exception retrieving final URL for %s", link.AbsoluteURL)
		return resolved
	}
	resolved.FinalURL = mo.Some(finalURL)
	return resolved
}

func (h *Hunter) classify(c CrawlContext, link ResolvedLink, finalURL string, code int) Outcome {
	status, known := Describe(code)
	if !known {
		h.logger.Debug().Int("status", code).Str("final_url", finalURL).Msg("non-standard HTTP status code")
	}
	return Outcome{
		PageURL:     c.PageURL,
		BranchURL:   c.OriginalURL,
		LinkURL:     link.AbsoluteURL,
		LinkText:    link.Text,
		FinalURL:    finalURL,
		StatusCode:  status.StatusCode,
		Description: status.Description,
		Healthy:     IsHealthy(code, finalURL),
		Depth:       c.Depth,
	}
}

// next returns the page to descend into for outcome, if the policy follows it
// and the branch has depth left. Depth grows by one per descent and is never
// reset.
func (h *Hunter) next(c CrawlContext, o Outcome) (CrawlContext, bool) {
	if c.Depth+1 > c.MaxDepth {
		return CrawlContext{}, false
	}
	switch h.opts.Policy {
	case PolicyHealthy:
		if !o.Healthy {
			return CrawlContext{}, false
		}
		return CrawlContext{PageURL: o.FinalURL, OriginalURL: o.FinalURL, Depth: c.Depth + 1, MaxDepth: c.MaxDepth}, true
	case PolicyUnhealthy:
		if o.Healthy {
			return CrawlContext{}, false
		}
		return CrawlContext{PageURL: o.FinalURL, OriginalURL: c.OriginalURL, Depth: c.Depth + 1, MaxDepth: c.MaxDepth}, true
	}
	return CrawlContext{}, false
}

func (h *Hunter) pageFailed(c CrawlContext, err error) {
	h.summary.PageFailures++
	kind := Classify(err)
	var msg string
	switch kind {
	case KindDNS:
		msg = "Name resolution error for " + c.PageURL
	case KindRetryExhausted:
		msg = "Max retries exceeded for " + c.PageURL
	default:
		msg = "An unexpected error occurred on " + c.PageURL
	}
	h.logger.Error().
		Str("page", c.PageURL).
		Str("branch", c.OriginalURL).
		Int("depth", c.Depth).
		Stringer("kind", kind).
		Str("error", truncateErr(err)).
		Msg(msg)
}
