package domain

import (
	"errors"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

var errParse = errors.New("error parsing URL")

// GetProtocol returns the protocol of a given URL
func GetProtocol(u string) (string, error) {
	parsedUrl, err := url.Parse(u)
	if err != nil {
		return "", errParse
	}
	return parsedUrl.Scheme, nil
}

// GetDomain returns the host of a given URL without a leading "www."
func GetDomain(u string) (string, error) {
	parsedUrl, err := url.Parse(u)
	if err != nil {
		return "", errParse
	}
	hostname := parsedUrl.Hostname()
	if hostname == "" {
		// no scheme, e.g. "example.com/path"
		hostname, _, _ = strings.Cut(u, "/")
	}
	return strings.TrimPrefix(hostname, "www."), nil
}

func IsSameDomain(domain string, u string) bool {
	d, err := GetDomain(u)
	return err == nil && domain == d
}

// Resolve resolves href against base the way a browser resolves an anchor.
func Resolve(base, href string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", errParse
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", errParse
	}
	return b.ResolveReference(ref).String(), nil
}

// IsNavigable reports whether u is an http(s) URL a browser can load.
func IsNavigable(u string) bool {
	p, err := GetProtocol(u)
	return err == nil && (p == "http" || p == "https")
}

// Slug turns a site URL into a file-name friendly string:
// the scheme is dropped, the host is IDNA encoded and "/" becomes "_".
func Slug(site string) string {
	rest := site
	for _, prefix := range []string{"https://", "http://"} {
		rest = strings.TrimPrefix(rest, prefix)
	}
	host, path, found := strings.Cut(rest, "/")
	if ascii, err := idna.ToASCII(host); err == nil {
		host = ascii
	}
	if !found {
		return host
	}
	return host + "_" + strings.ReplaceAll(path, "/", "_")
}
