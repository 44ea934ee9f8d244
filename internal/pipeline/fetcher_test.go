package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sean-public/ackshually/internal/cache"
	"github.com/sean-public/ackshually/internal/model"
	"github.com/sean-public/ackshually/internal/util"
)

func testHTTPConfig() model.HTTPConfig {
	return model.HTTPConfig{
		Timeout:      5 * time.Second,
		UserAgent:    "test-agent/1.0",
		MaxBodyBytes: 1_000_000,
	}
}

func TestFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "test-agent/1.0" {
			t.Errorf("unexpected User-Agent: %q", got)
		}
		_, _ = w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer server.Close()

	fetcher := NewFetcher(testHTTPConfig())

	result, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if result.HTML != "<html><body>hello</body></html>" {
		t.Errorf("unexpected HTML: %q", result.HTML)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("unexpected status: %d", result.StatusCode)
	}
	if result.FinalURL != server.URL {
		t.Errorf("unexpected final URL: %q", result.FinalURL)
	}
}

func TestFetcher_FetchFollowsRedirect(t *testing.T) {
	var finalURL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/random":
			http.Redirect(w, r, "/wiki/Concrete_Article", http.StatusFound)
		default:
			_, _ = w.Write([]byte("<html>article</html>"))
		}
	}))
	defer server.Close()
	finalURL = server.URL + "/wiki/Concrete_Article"

	fetcher := NewFetcher(testHTTPConfig())

	result, err := fetcher.Fetch(context.Background(), server.URL+"/random")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.FinalURL != finalURL {
		t.Errorf("expected redirect target %q, got %q", finalURL, result.FinalURL)
	}
}

func TestFetcher_FetchNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	fetcher := NewFetcher(testHTTPConfig())

	_, err := fetcher.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for 404")
	}

	var se *statusError
	if !errors.As(err, &se) {
		t.Fatalf("expected statusError, got %T: %v", err, err)
	}
	if se.code != http.StatusNotFound {
		t.Errorf("unexpected code: %d", se.code)
	}
	if !strings.Contains(err.Error(), "unexpected status: 404") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestFetcher_BodySizeCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 500)))
	}))
	defer server.Close()

	cfg := testHTTPConfig()
	cfg.MaxBodyBytes = 100
	fetcher := NewFetcher(cfg)

	result, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(result.HTML) != 100 {
		t.Errorf("expected body capped at 100 bytes, got %d", len(result.HTML))
	}
}

func TestFetcher_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	fetcher := NewFetcher(testHTTPConfig())

	_, err := fetcher.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for empty body")
	}
}

func TestFetcher_CacheHit(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte("<html>cached page</html>"))
	}))
	defer server.Close()

	fetcher := NewFetcher(testHTTPConfig()).WithCache(cache.NewMemoryCache(time.Minute, 5*time.Minute), time.Minute)

	first, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("expected 1 server hit, got %d", hits)
	}
	if first.HTML != second.HTML || first.FinalURL != second.FinalURL {
		t.Error("cached result does not match original")
	}
}

func TestFetcher_RobotsDisallowed(t *testing.T) {
	var fetchedBlocked int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /blocked\n"))
		case "/blocked":
			atomic.AddInt32(&fetchedBlocked, 1)
			_, _ = w.Write([]byte("<html>secret</html>"))
		default:
			_, _ = w.Write([]byte("<html>open</html>"))
		}
	}))
	defer server.Close()

	robots := util.NewRobotsChecker("test-agent/1.0", 5*time.Second)
	fetcher := NewFetcher(testHTTPConfig()).WithRobots(robots)

	_, err := fetcher.Fetch(context.Background(), server.URL+"/blocked")
	if !errors.Is(err, ErrRobotsDisallowed) {
		t.Fatalf("expected ErrRobotsDisallowed, got %v", err)
	}
	if atomic.LoadInt32(&fetchedBlocked) != 0 {
		t.Error("disallowed page must not be fetched")
	}

	if _, err := fetcher.Fetch(context.Background(), server.URL+"/open"); err != nil {
		t.Errorf("allowed page: %v", err)
	}
}

func TestFetchWithRetry_TransientThenSuccess(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("<html>finally</html>"))
	}))
	defer server.Close()

	var slept []time.Duration
	origSleep := fetchSleepFunc
	fetchSleepFunc = func(d time.Duration) { slept = append(slept, d) }
	defer func() { fetchSleepFunc = origSleep }()

	fetcher := NewFetcher(testHTTPConfig())

	result, err := fetcher.FetchWithRetry(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchWithRetry: %v", err)
	}
	if result.HTML != "<html>finally</html>" {
		t.Errorf("unexpected HTML: %q", result.HTML)
	}
	if atomic.LoadInt32(&requests) != 3 {
		t.Errorf("expected 3 requests, got %d", requests)
	}
	if len(slept) != 2 || slept[0] != time.Second || slept[1] != 2*time.Second {
		t.Errorf("unexpected backoff schedule: %v", slept)
	}
}

func TestFetchWithRetry_PermanentFailureNoRetry(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	origSleep := fetchSleepFunc
	fetchSleepFunc = func(time.Duration) {}
	defer func() { fetchSleepFunc = origSleep }()

	fetcher := NewFetcher(testHTTPConfig())

	_, err := fetcher.FetchWithRetry(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error")
	}
	if atomic.LoadInt32(&requests) != 1 {
		t.Errorf("404 must not be retried, got %d requests", requests)
	}
}

func TestFetchWithRetry_Exhausted(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	origSleep := fetchSleepFunc
	fetchSleepFunc = func(time.Duration) {}
	defer func() { fetchSleepFunc = origSleep }()

	fetcher := NewFetcher(testHTTPConfig())

	_, err := fetcher.FetchWithRetry(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if atomic.LoadInt32(&requests) != int32(fetchMaxRetries) {
		t.Errorf("expected %d requests, got %d", fetchMaxRetries, requests)
	}
}
