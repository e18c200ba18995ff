package webscraper

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"strings"

	"github.com/playwright-community/playwright-go"
	"github.com/samber/lo"
)

var (
	// ErrRetryExhausted is returned when every connection attempt to a host failed
	ErrRetryExhausted = errors.New("max retries exceeded")

	// ErrUnsupportedDriver is returned when no browser backend matches the configured driver
	ErrUnsupportedDriver = errors.New("unsupported browser driver")

	// ErrElementNotFound is returned by WaitFor when the selector never matched
	ErrElementNotFound = errors.New("element not found")
)

// ErrorKind is the closed set of failure categories the hunter handles.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNavigation
	KindDNS
	KindRetryExhausted
	KindTLS
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindNavigation:
		return "navigation"
	case KindDNS:
		return "dns"
	case KindRetryExhausted:
		return "retry_exhausted"
	case KindTLS:
		return "tls"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// NavigationError marks a failure of the browser to load a link target.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return "navigate to " + e.URL + ": " + e.Err.Error()
}

func (e *NavigationError) Unwrap() error { return e.Err }

// Browser engines report network failures as text; these are the Chromium
// net error names mapped onto our kinds.
var browserErrorKinds = []lo.Tuple2[string, ErrorKind]{
	{A: "ERR_NAME_NOT_RESOLVED", B: KindDNS},
	{A: "ERR_NAME_RESOLUTION_FAILED", B: KindDNS},
	{A: "ERR_CERT_", B: KindTLS},
	{A: "ERR_SSL_", B: KindTLS},
	{A: "ERR_TIMED_OUT", B: KindTimeout},
	{A: "ERR_CONNECTION_TIMED_OUT", B: KindTimeout},
}

// Classify maps an error onto an ErrorKind. Causes are checked before the
// NavigationError wrapper, so a navigation that failed on DNS is KindDNS.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, ErrRetryExhausted) {
		return KindRetryExhausted
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindDNS
	}

	var (
		verifyErr    *tls.CertificateVerificationError
		authorityErr x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		invalidErr   x509.CertificateInvalidError
		recordErr    tls.RecordHeaderError
	)
	if errors.As(err, &verifyErr) || errors.As(err, &authorityErr) || errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidErr) || errors.As(err, &recordErr) {
		return KindTLS
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, playwright.ErrTimeout) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	msg := err.Error()
	for _, entry := range browserErrorKinds {
		if strings.Contains(msg, entry.A) {
			return entry.B
		}
	}

	var navErr *NavigationError
	if errors.As(err, &navErr) {
		return KindNavigation
	}
	return KindUnknown
}

// Truncate shortens an error message to MaxErrorMsg characters.
func Truncate(msg string) string {
	return lo.Substring(msg, 0, MaxErrorMsg)
}

func truncateErr(err error) string {
	if err == nil {
		return ""
	}
	return Truncate(err.Error())
}
