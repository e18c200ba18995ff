package webscraper

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromedpSession drives one Chrome tab over the DevTools protocol.
type ChromedpSession struct {
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
	timeout     time.Duration
}

func NewChromedpSession(opts SessionOptions) (*ChromedpSession, error) {
	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
	)
	if opts.UserAgent != "" {
		execOpts = append(execOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), execOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// starts the browser and opens the tab
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	return &ChromedpSession{
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
		timeout:     opts.PageLoadTimeout,
	}, nil
}

// bound derives a context for one action on the tab that ends after d or when
// ctx is done. Cancelling it leaves the tab open.
func (s *ChromedpSession) bound(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(s.tabCtx, d)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (s *ChromedpSession) Navigate(ctx context.Context, url string) (string, error) {
	runCtx, cancel := s.bound(ctx, s.timeout)
	defer cancel()

	var location string
	if err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.Location(&location),
	); err != nil {
		return "", err
	}
	return location, nil
}

func (s *ChromedpSession) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	runCtx, cancel := s.bound(ctx, timeout)
	defer cancel()
	return chromedp.Run(runCtx, chromedp.WaitReady(selector, chromedp.ByQuery))
}

func (s *ChromedpSession) Source(ctx context.Context) (string, error) {
	runCtx, cancel := s.bound(ctx, s.timeout)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Close shuts the browser down gracefully, then releases the allocator.
func (s *ChromedpSession) Close() error {
	err := chromedp.Cancel(s.tabCtx)
	s.tabCancel()
	s.allocCancel()
	return err
}
