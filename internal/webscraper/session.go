package webscraper

import (
	"fmt"
	"strings"
	"time"
)

// SessionOptions configures a browser session.
type SessionOptions struct {
	Headless        bool
	PageLoadTimeout time.Duration
	UserAgent       string
}

// Drivers lists the accepted values of the driver setting.
var Drivers = []string{"playwright", "chromedp", "rod", "static"}

// OpenSession starts the browser backend named by driver. The caller owns the
// session and must Close it.
func OpenSession(driver string, opts SessionOptions) (Session, error) {
	if opts.PageLoadTimeout <= 0 {
		opts.PageLoadTimeout = DefaultPageLoadTimeout
	}
	var (
		session Session
		err     error
	)
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "playwright":
		session, err = asSession(NewPlaywrightSession(opts))
	case "chromedp":
		session, err = asSession(NewChromedpSession(opts))
	case "rod":
		session, err = asSession(NewRodSession(opts))
	case "static":
		session = NewStaticSession(opts)
	default:
		return nil, fmt.Errorf("%w %q (want one of %s)", ErrUnsupportedDriver, driver, strings.Join(Drivers, ", "))
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// asSession keeps a failed constructor's typed nil out of the interface.
func asSession[S Session](s S, err error) (Session, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
