// Package apiclient talks to the catalog API on behalf of the storefront.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/absign/storefront/internal/platform/cache"
	"github.com/absign/storefront/internal/platform/observability"
	"github.com/absign/storefront/internal/platform/requestctx"
	"github.com/absign/storefront/internal/seo"
)

const (
	defaultTimeout  = 8 * time.Second
	defaultCacheTTL = 5 * time.Minute
	meterName       = "github.com/absign/storefront/internal/storefront/apiclient"
	maxErrorBody    = 256
	companyCacheKey = "company"
	seoCachePrefix  = "seo:"
)

var (
	// ErrNotFound is returned when the API answers 404 for a resource.
	ErrNotFound = errors.New("apiclient: not found")
	// ErrNotConfigured is returned when the client has no base URL.
	ErrNotConfigured = errors.New("apiclient: base url not configured")
)

// StatusError reports an unexpected API response status.
type StatusError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("apiclient: %s status %d: %s", e.Endpoint, e.Status, e.Body)
}

// Client fetches catalog data. Company and SEO lookups are cached; it implements seo.EntrySource.
type Client struct {
	baseURL string
	http    *http.Client
	cache   cache.Cache
	ttl     time.Duration

	latency metric.Float64Histogram
	lookups metric.Int64Counter
}

// Option customises a Client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	timeout    time.Duration
	cache      cache.Cache
	ttl        time.Duration
	meter      metric.Meter
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithCache stores company and SEO responses in c for ttl. A zero ttl keeps the default.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(o *clientOptions) {
		o.cache = c
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithMeter injects the meter used for request latency and cache lookups.
func WithMeter(m metric.Meter) Option {
	return func(o *clientOptions) { o.meter = m }
}

// New constructs a Client for the API rooted at baseURL (for example http://api:8080/api).
func New(baseURL string, opts ...Option) *Client {
	options := clientOptions{timeout: defaultTimeout, ttl: defaultCacheTTL}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if options.httpClient == nil {
		options.httpClient = &http.Client{Timeout: options.timeout}
	}
	if options.cache == nil {
		options.cache = cache.NewMemory()
	}
	if options.meter == nil {
		options.meter = otel.GetMeterProvider().Meter(meterName)
	}

	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    options.httpClient,
		cache:   options.cache,
		ttl:     options.ttl,
	}
	if h, err := options.meter.Float64Histogram(
		"storefront.api.request.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Catalog API request latency"),
	); err == nil {
		c.latency = h
	}
	if counter, err := options.meter.Int64Counter(
		"storefront.api.cache.lookups",
		metric.WithDescription("Cached catalog API lookups by result"),
	); err == nil {
		c.lookups = counter
	}
	return c
}

// Company returns the site identity the SEO defaults need. A missing company yields (nil, nil).
func (c *Client) Company(ctx context.Context) (*seo.Company, error) {
	info, err := c.CompanyInfo(ctx)
	if err != nil || info == nil {
		return nil, err
	}
	return &seo.Company{SiteName: info.SiteName, LogoURL: info.LogoURL}, nil
}

// CompanyInfo returns the full company payload, or (nil, nil) when it is not configured.
func (c *Client) CompanyInfo(ctx context.Context) (*CompanyInfo, error) {
	var info CompanyInfo
	found, err := c.cachedJSON(ctx, companyCacheKey, "company", &info)
	if err != nil || !found {
		return nil, err
	}
	return &info, nil
}

// SeoEntry returns the stored entry for slug. A 404 or a null body yields (nil, nil).
func (c *Client) SeoEntry(ctx context.Context, slug string) (*seo.Entry, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	var entry *seo.Entry
	found, err := c.cachedJSON(ctx, seoCachePrefix+slug, "seo/"+slug, &entry)
	if err != nil || !found {
		return nil, err
	}
	return entry, nil
}

// InvalidateSeoEntry drops the cached entry for slug.
func (c *Client) InvalidateSeoEntry(ctx context.Context, slug string) error {
	return c.cache.Delete(ctx, seoCachePrefix+strings.TrimSpace(slug))
}

// cachedJSON decodes the body of path into out, serving it from the cache when possible.
// It reports false when the API answered 404.
func (c *Client) cachedJSON(ctx context.Context, key, path string, out any) (bool, error) {
	logger := requestctx.Logger(ctx)
	body, hit, err := c.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("api cache read failed", zap.String("key", key), zap.Error(err))
	}
	c.recordLookup(ctx, hit && err == nil)

	if !hit || err != nil {
		body, err = c.get(ctx, path, nil)
		if errors.Is(err, ErrNotFound) {
			body = []byte("null")
		} else if err != nil {
			return false, err
		}
		if setErr := c.cache.Set(ctx, key, body, c.ttl); setErr != nil {
			logger.Warn("api cache write failed", zap.String("key", key), zap.Error(setErr))
		}
	}

	if isNullBody(body) {
		return false, nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("apiclient: decode %s: %w", path, err)
	}
	return true, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	if c == nil || c.baseURL == "" {
		return nil, ErrNotConfigured
	}
	endpoint, err := url.JoinPath(c.baseURL, strings.Split(path, "/")...)
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	observability.InjectTrace(req)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.recordLatency(ctx, method, path, 0, started)
		return nil, err
	}
	defer resp.Body.Close()
	c.recordLatency(ctx, method, path, resp.StatusCode, started)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, decodeValidationError(body)
	case resp.StatusCode >= 400:
		return nil, &StatusError{Endpoint: path, Status: resp.StatusCode, Body: truncate(body)}
	}
	return body, nil
}

func (c *Client) recordLatency(ctx context.Context, method, path string, status int, started time.Time) {
	if c.latency == nil {
		return
	}
	endpoint, _, _ := strings.Cut(path, "/")
	c.latency.Record(ctx, float64(time.Since(started).Microseconds())/1000,
		metric.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("api.endpoint", endpoint),
			attribute.String("http.status_code", strconv.Itoa(status)),
		),
	)
}

func (c *Client) recordLookup(ctx context.Context, hit bool) {
	if c.lookups == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.lookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func isNullBody(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func truncate(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	return s
}
