package inara

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/andybalholm/brotli"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"arrow-trader/internal/logger"
)

const (
	// DefaultBaseURL is the public Inara site.
	DefaultBaseURL = "https://inara.cz"
	defaultUA      = "arrow-trader/1.0 (github.com)"
	// pageTTL is how long a fetched page is reused within a run.
	pageTTL = 5 * time.Minute
	// maxErrorBody caps how much of a failed response is kept in a FetchError.
	maxErrorBody = 512
)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL     string
	UserAgent   string
	Timeout     time.Duration
	MinInterval time.Duration // minimum spacing between requests; 0 = unlimited
	HTTPClient  *http.Client
}

// Client fetches Inara pages. Requests are spaced by a rate limiter,
// identical in-flight requests are coalesced and pages are cached for a
// few minutes so repeated lookups in one run cost nothing.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
	pages     *gocache.Cache
	group     singleflight.Group
}

// NewClient creates an Inara client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUA
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}
	return &Client{
		http:      hc,
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		limiter:   rate.NewLimiter(limit, 1),
		pages:     gocache.New(pageTTL, 2*pageTTL),
	}
}

// BaseURL returns the site root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// HealthCheck reports whether the site answers.
func (c *Client) HealthCheck(ctx context.Context) bool {
	req, err := c.newRequest(ctx, c.baseURL+"/")
	if err != nil {
		return false
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// GetPage fetches url and returns the decoded body.
// Failures are returned as *FetchError.
func (c *Client) GetPage(ctx context.Context, url string) (string, error) {
	if v, ok := c.pages.Get(url); ok {
		logger.Debug("INARA", "page cache HIT "+url)
		return v.(string), nil
	}

	v, err, _ := c.group.Do(url, func() (interface{}, error) {
		body, err := c.fetch(ctx, url)
		if err != nil {
			return "", err
		}
		c.pages.SetDefault(url, body)
		return body, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) fetch(ctx context.Context, url string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	req, err := c.newRequest(ctx, url)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := decodeBody(resp)
	if err != nil {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := truncate(strings.TrimSpace(string(data)), maxErrorBody)
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode, Body: snippet}
	}

	logger.Debug("INARA", fmt.Sprintf("GET %s %d (%d bytes, %dms)", url, resp.StatusCode, len(data), time.Since(start).Milliseconds()))
	return string(data), nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// newRequest creates a GET request with the common headers.
func (c *Client) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Encoding", "gzip, br")
	return req, nil
}

type brotliReadCloser struct {
	br *brotli.Reader
	rc io.ReadCloser
}

func (b *brotliReadCloser) Read(p []byte) (int, error) { return b.br.Read(p) }

func (b *brotliReadCloser) Close() error { return b.rc.Close() }

// decodeBody unwraps the response body according to Content-Encoding.
// Setting Accept-Encoding by hand disables net/http's transparent gzip, so
// both encodings are handled here.
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return zr, nil
	case "br":
		return &brotliReadCloser{br: brotli.NewReader(resp.Body), rc: resp.Body}, nil
	default:
		return io.NopCloser(resp.Body), nil
	}
}
