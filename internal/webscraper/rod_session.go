package webscraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodSession drives one Chrome tab through rod.
type RodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	timeout  time.Duration
}

func NewRodSession(opts SessionOptions) (*RodSession, error) {
	l := launcher.New().Headless(opts.Headless)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}
	s := &RodSession{launcher: l, browser: browser, timeout: opts.PageLoadTimeout}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("open page: %w", err), s.Close())
	}
	if opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			return nil, errors.Join(fmt.Errorf("set user agent: %w", err), s.Close())
		}
	}
	s.page = page
	return s, nil
}

func (s *RodSession) Navigate(ctx context.Context, url string) (string, error) {
	p := s.page.Context(ctx).Timeout(s.timeout)
	defer p.CancelTimeout()

	if err := p.Navigate(url); err != nil {
		return "", err
	}
	if err := p.WaitLoad(); err != nil {
		return "", err
	}
	info, err := p.Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (s *RodSession) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	p := s.page.Context(ctx).Timeout(timeout)
	defer p.CancelTimeout()
	_, err := p.Element(selector)
	return err
}

func (s *RodSession) Source(ctx context.Context) (string, error) {
	p := s.page.Context(ctx).Timeout(s.timeout)
	defer p.CancelTimeout()
	return p.HTML()
}

// Close closes the browser and removes the launcher's profile directory.
func (s *RodSession) Close() error {
	err := s.browser.Close()
	s.launcher.Cleanup()
	return err
}
