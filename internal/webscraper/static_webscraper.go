package webscraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// StaticSession "navigates" with plain GET requests. It follows HTTP
// redirects but runs no JavaScript, so client-side redirects go unnoticed.
// Useful where no browser is installed.
type StaticSession struct {
	client    *http.Client
	userAgent string
	current   string
	body      string
}

func NewStaticSession(opts SessionOptions) *StaticSession {
	timeout := opts.PageLoadTimeout
	if timeout <= 0 {
		timeout = DefaultPageLoadTimeout
	}
	return &StaticSession{
		client:    &http.Client{Timeout: timeout},
		userAgent: opts.UserAgent,
	}
}

func (s *StaticSession) Navigate(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, MaxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body of %s: %w", url, err)
	}

	s.current = res.Request.URL.String()
	s.body = string(body)
	return s.current, nil
}

// WaitFor checks the fetched document once; there is nothing to wait for.
func (s *StaticSession) WaitFor(_ context.Context, selector string, _ time.Duration) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s.body))
	if err != nil {
		return err
	}
	if doc.Find(selector).Length() == 0 {
		return fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return nil
}

func (s *StaticSession) Source(context.Context) (string, error) {
	return s.body, nil
}

func (s *StaticSession) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
