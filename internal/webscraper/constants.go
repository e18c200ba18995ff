package webscraper

import "time"

const (
	MaxDepth               = 2                // default limit on descents within one branch
	MaxErrorMsg            = 128              // characters of an error message kept in logs
	DefaultPageLoadTimeout = 10 * time.Second // browser navigation
	DefaultReadyTimeout    = 10 * time.Second // wait for <body>
	DefaultIframeTimeout   = 3 * time.Second  // best-effort wait for an <iframe>
	DefaultRequestTimeout  = 5 * time.Second  // HEAD status check
	MaxBodyBytes           = 5 * 1024 * 1024  // static session response cap

	UnknownStatusDescription = "Unknown status"

	readySelector  = "body"
	iframeSelector = "iframe"
	notFoundMarker = "404"
)
