package pipeline

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sean-public/ackshually/internal/cache"
	"github.com/sean-public/ackshually/internal/model"
	"github.com/sean-public/ackshually/internal/util"
)

const fetchMaxRetries = 3

// fetchSleepFunc is the sleep function used between retries (injectable for tests)
var fetchSleepFunc = time.Sleep

// Fetcher fetches HTML content from URLs. All network access in the
// pipeline goes through it: article selection, article pages, and citation
// pages share one politeness policy (rate limit, robots, size cap).
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64

	pageCache cache.Cache
	cacheTTL  time.Duration
	robots    *util.RobotsChecker
	limiter   *util.Limiter
}

// NewFetcher creates a new Fetcher with the given HTTP configuration.
func NewFetcher(cfg model.HTTPConfig) *Fetcher {
	transport := &http.Transport{
		Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
	}
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("stopped after 5 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
	}
}

// WithCache enables the fetched-page cache.
func (f *Fetcher) WithCache(c cache.Cache, ttl time.Duration) *Fetcher {
	f.pageCache = c
	f.cacheTTL = ttl
	return f
}

// WithRobots enables robots.txt checking before each fetch.
func (f *Fetcher) WithRobots(r *util.RobotsChecker) *Fetcher {
	f.robots = r
	return f
}

// WithLimiter enables per-domain rate limiting.
func (f *Fetcher) WithLimiter(l *util.Limiter) *Fetcher {
	f.limiter = l
	return f
}

// FetchResult contains the fetched HTML and metadata.
type FetchResult struct {
	HTML       string `json:"html"`
	FinalURL   string `json:"final_url"`
	StatusCode int    `json:"status_code"`
}

// Fetch retrieves HTML content from the given URL, honoring the cache,
// robots.txt, and the per-domain rate limit.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if f.pageCache != nil {
		if data, found := f.pageCache.Get(cache.Key(rawURL)); found {
			var cached FetchResult
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	var crawlDelay time.Duration
	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrRobotsDisallowed)
		}
		crawlDelay = delay
	}

	if f.limiter != nil {
		if err := f.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	result, err := f.fetchOnce(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if f.pageCache != nil {
		if data, err := json.Marshal(result); err == nil {
			_ = f.pageCache.Set(cache.Key(rawURL), data, f.cacheTTL)
		}
	}

	return result, nil
}

// FetchWithRetry retries transient failures (5xx, 429, timeouts) with
// exponential backoff. Permanent failures return immediately.
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var result *FetchResult
	var err error

	for attempt := 0; attempt < fetchMaxRetries; attempt++ {
		result, err = f.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		if !isRetryableFetchError(err) {
			return nil, err
		}
		if attempt < fetchMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			fetchSleepFunc(backoff)
		}
	}
	return nil, err
}

// fetchOnce performs a single GET.
func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{code: resp.StatusCode, status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty body from %s", rawURL)
	}

	return &FetchResult{
		HTML:       string(body),
		FinalURL:   resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
	}, nil
}

// statusError is a non-2xx response.
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.code, e.status)
}

// isRetryableFetchError reports whether an error is worth another attempt.
func isRetryableFetchError(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || (se.code >= 500 && se.code < 600)
	}
	if errors.Is(err, ErrRobotsDisallowed) || errors.Is(err, context.Canceled) {
		return false
	}
	// Network-level errors (timeout, reset, refused) arrive wrapped from
	// the http client; treat them as transient.
	return true
}
