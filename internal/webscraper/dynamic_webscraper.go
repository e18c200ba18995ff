package webscraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightSession drives one Chromium tab through Playwright.
type PlaywrightSession struct {
	pwClient *playwright.Playwright // The Playwright client to use
	browser  playwright.Browser     // The Playwright browser to use
	context  playwright.BrowserContext
	page     playwright.Page // The single tab of the run
	timeout  time.Duration   // page load timeout
}

func NewPlaywrightSession(opts SessionOptions) (*PlaywrightSession, error) {
	pw, err := playwright.Run(&playwright.RunOptions{
		SkipInstallBrowsers: true,
	})
	if err != nil {
		return nil, fmt.Errorf("start Playwright: %w", err)
	}
	s := &PlaywrightSession{pwClient: pw, timeout: opts.PageLoadTimeout}

	s.browser, err = pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("launch Playwright browser: %w", err), s.Close())
	}

	contextOpts := playwright.BrowserNewContextOptions{}
	if opts.UserAgent != "" {
		contextOpts.UserAgent = playwright.String(opts.UserAgent)
	}
	s.context, err = s.browser.NewContext(contextOpts)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create browser context: %w", err), s.Close())
	}
	s.context.SetDefaultNavigationTimeout(milliseconds(opts.PageLoadTimeout))

	s.page, err = s.context.NewPage()
	if err != nil {
		return nil, errors.Join(fmt.Errorf("open page: %w", err), s.Close())
	}
	return s, nil
}

func (s *PlaywrightSession) Navigate(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := s.page.Goto(url, playwright.PageGotoOptions{
		Timeout: playwright.Float(milliseconds(s.timeout)),
	}); err != nil {
		return "", err
	}
	return s.page.URL(), nil
}

func (s *PlaywrightSession) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(milliseconds(timeout)),
	})
}

func (s *PlaywrightSession) Source(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.page.Content()
}

// Close releases the tab, the browser and the Playwright driver. It is safe
// to call on a partially constructed session.
func (s *PlaywrightSession) Close() error {
	var errs []error
	if s.context != nil {
		if err := s.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser context: %w", err))
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
	}
	if s.pwClient != nil {
		if err := s.pwClient.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop Playwright client: %w", err))
		}
	}
	return errors.Join(errs...)
}

func milliseconds(d time.Duration) float64 {
	return float64(d.Milliseconds())
}
