package webscraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		code      int
		want      string
		wantKnown bool
	}{
		{200, "OK", true},
		{301, "Moved Permanently", true},
		{404, "Not Found", true},
		{503, "Service Unavailable", true},
		{218, UnknownStatusDescription, false},
		{999, UnknownStatusDescription, false},
	}
	for _, tt := range tests {
		got, known := Describe(tt.code)
		if got.Description != tt.want || got.StatusCode != tt.code || known != tt.wantKnown {
			t.Errorf("Describe(%d) = %+v, %t; want %q, %t", tt.code, got, known, tt.want, tt.wantKnown)
		}
	}
}

func TestIsHealthy(t *testing.T) {
	tests := []struct {
		code     int
		finalURL string
		want     bool
	}{
		{200, "https://site.test/about", true},
		{200, "https://site.test/404", false},
		{200, "https://site.test/errors/404.html", false},
		{301, "https://site.test/about", false},
		{404, "https://site.test/missing", false},
		{500, "https://site.test/", false},
	}
	for _, tt := range tests {
		if got := IsHealthy(tt.code, tt.finalURL); got != tt.want {
			t.Errorf("IsHealthy(%d, %q) = %t, want %t", tt.code, tt.finalURL, got, tt.want)
		}
	}
}

func TestHeadStatusDoesNotFollowRedirects(t *testing.T) {
	var (
		mu      sync.Mutex
		methods []string
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method)
		mu.Unlock()
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusMovedPermanently)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	checker := NewHTTPStatusChecker(StatusCheckerOptions{Timeout: 2 * time.Second})
	code, err := checker.HeadStatus(context.Background(), ts.URL+"/old")
	if err != nil {
		t.Fatalf("HeadStatus err: %v", err)
	}
	if code != http.StatusMovedPermanently {
		t.Errorf("code = %d, want %d", code, http.StatusMovedPermanently)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(methods) != 1 || methods[0] != http.MethodHead {
		t.Errorf("requests = %v, want a single HEAD", methods)
	}
}

func TestHeadStatusSendsUserAgent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.UserAgent() != "link-verifier-test" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusTeapot)
	}))
	defer ts.Close()

	checker := NewHTTPStatusChecker(StatusCheckerOptions{UserAgent: "link-verifier-test"})
	code, err := checker.HeadStatus(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("HeadStatus err: %v", err)
	}
	if code != http.StatusTeapot {
		t.Errorf("code = %d, want %d (user agent not sent)", code, http.StatusTeapot)
	}
}

func TestHeadStatusRetryExhausted(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	checker := NewHTTPStatusChecker(StatusCheckerOptions{
		Timeout:       time.Second,
		RetryAttempts: 2,
		RetryBackoff:  time.Millisecond,
	})
	_, err := checker.HeadStatus(context.Background(), url)
	if !errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("err = %v, want ErrRetryExhausted", err)
	}
	if kind := Classify(err); kind != KindRetryExhausted {
		t.Errorf("Classify = %s, want %s", kind, KindRetryExhausted)
	}
}

func TestHeadStatusTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	checker := NewHTTPStatusChecker(StatusCheckerOptions{Timeout: 50 * time.Millisecond, RetryAttempts: 2})
	_, err := checker.HeadStatus(context.Background(), ts.URL)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if kind := Classify(err); kind != KindTimeout {
		t.Errorf("Classify(%v) = %s, want %s", err, kind, KindTimeout)
	}
}

func TestHeadStatusRateLimit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer ts.Close()

	checker := NewHTTPStatusChecker(StatusCheckerOptions{RequestRate: 20})
	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := checker.HeadStatus(context.Background(), ts.URL); err != nil {
			t.Fatalf("HeadStatus err: %v", err)
		}
	}
	// burst of one: the second and third requests wait 50ms each
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("3 requests at 20/s took %s", elapsed)
	}
}
