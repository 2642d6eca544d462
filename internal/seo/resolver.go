package seo

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/absign/storefront/internal/platform/requestctx"
)

const metricNamespace = "github.com/absign/storefront/internal/seo"

// ErrNotFound is returned by an EntrySource when no entry exists for a slug.
var ErrNotFound = errors.New("seo: entry not found")

// EntrySource loads the inputs the resolver needs from the catalog API.
// SeoEntry returns (nil, nil) or ErrNotFound when no entry exists.
type EntrySource interface {
	Company(ctx context.Context) (*Company, error)
	SeoEntry(ctx context.Context, slug string) (*Entry, error)
}

// Resolver opens page-scoped metadata sessions. It is safe for concurrent use.
type Resolver struct {
	site      Site
	source    EntrySource
	fallbacks metric.Int64Counter
}

// Option customises a Resolver.
type Option func(*resolverOptions)

type resolverOptions struct {
	meter metric.Meter
}

// WithMeter injects the meter used for fallback counters.
func WithMeter(m metric.Meter) Option {
	return func(o *resolverOptions) {
		o.meter = m
	}
}

// NewResolver constructs a Resolver. A nil source resolves every page from defaults and overrides.
func NewResolver(site Site, source EntrySource, opts ...Option) *Resolver {
	options := resolverOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if options.meter == nil {
		options.meter = otel.GetMeterProvider().Meter(metricNamespace)
	}

	r := &Resolver{site: site, source: source}
	counter, err := options.meter.Int64Counter(
		"seo.resolver.fallbacks",
		metric.WithDescription("Pages resolved without a stored entry or company info"),
	)
	if err == nil {
		r.fallbacks = counter
	}
	return r
}

// Site returns the configured site identity.
func (r *Resolver) Site() Site { return r.site }

// Page opens a metadata session for one render of requestURL. The company info and the entry
// for slug (when non-empty) are fetched before Page returns; failures degrade to defaults.
func (r *Resolver) Page(ctx context.Context, requestURL *url.URL, slug string, overrides ...Partial) *Page {
	if requestURL == nil {
		requestURL = &url.URL{Path: "/"}
	}
	p := &Page{
		resolver:   r,
		requestURL: requestURL,
		origin:     SiteOrigin(r.site.URL, requestURL),
	}
	p.defaults = DefaultLayer(r.site, r.company(ctx), requestURL)
	for _, o := range overrides {
		p.overrides = p.overrides.Merge(normalizeOverride(o))
	}
	p.SetSlug(ctx, slug)
	return p
}

func (r *Resolver) company(ctx context.Context) *Company {
	if r.source == nil {
		return nil
	}
	company, err := r.source.Company(ctx)
	if err != nil {
		r.fallback(ctx, "company", "", err)
		return nil
	}
	return company
}

func (r *Resolver) entry(ctx context.Context, slug string) *Entry {
	if r.source == nil {
		return nil
	}
	entry, err := r.source.SeoEntry(ctx, slug)
	switch {
	case errors.Is(err, ErrNotFound) || (err == nil && entry == nil):
		r.fallback(ctx, "not_found", slug, nil)
		return nil
	case err != nil:
		r.fallback(ctx, "error", slug, err)
		return nil
	}
	return entry
}

func (r *Resolver) fallback(ctx context.Context, reason, slug string, err error) {
	if r.fallbacks != nil {
		r.fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
	if err == nil {
		return
	}
	requestctx.Logger(ctx).Warn("seo: falling back to default metadata",
		zap.String("reason", reason),
		zap.String("slug", slug),
		zap.Error(err),
	)
}

// Page is the metadata session of a single page. State is recomputed from its three layers
// on every call; methods are safe for concurrent use.
type Page struct {
	resolver   *Resolver
	requestURL *url.URL
	origin     string

	mu         sync.Mutex
	defaults   Partial
	backend    Partial
	generation uint64
	overrides  Partial
}

// ApplyOption customises Apply.
type ApplyOption func(*applyOptions)

type applyOptions struct {
	replace bool
}

// WithReplace makes Apply swap the whole override layer instead of merging into it.
func WithReplace() ApplyOption {
	return func(o *applyOptions) { o.replace = true }
}

// Apply adds overrides to the page. By default they merge into the existing overrides using the
// layer merge rule, so applying the same overrides twice has no further effect. WithReplace
// discards previous overrides first.
func (p *Page) Apply(overrides Partial, opts ...ApplyOption) {
	var options applyOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	normalized := normalizeOverride(overrides)

	p.mu.Lock()
	defer p.mu.Unlock()
	if options.replace {
		p.overrides = normalized
		return
	}
	p.overrides = p.overrides.Merge(normalized)
}

// Reset clears all overrides.
func (p *Page) Reset() {
	p.mu.Lock()
	p.overrides = Partial{}
	p.mu.Unlock()
}

// SetSlug switches the stored entry backing the page. An empty slug removes the entry layer.
// When calls overlap, only the result for the most recent slug is kept.
func (p *Page) SetSlug(ctx context.Context, slug string) {
	slug = strings.TrimSpace(slug)

	p.mu.Lock()
	p.generation++
	gen := p.generation
	if slug == "" {
		p.backend = Partial{}
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	layer := EntryLayer(p.resolver.entry(ctx, slug))

	p.mu.Lock()
	if p.generation == gen {
		p.backend = layer
	}
	p.mu.Unlock()
}

// State merges defaults, the stored entry and the overrides, then canonicalizes the URL and
// settles the Twitter card.
func (p *Page) State() State {
	p.mu.Lock()
	defaults, backend, overrides := p.defaults, p.backend, p.overrides
	p.mu.Unlock()

	return Finalize(Merge(defaults, backend, overrides), p.origin, p.requestURL)
}

// Origin returns the origin used to absolutize URLs on this page.
func (p *Page) Origin() string { return p.origin }

// Head returns the head elements for the current state.
func (p *Page) Head() Head {
	return BuildHead(p.State(), p.origin, p.requestURL)
}

// Finalize canonicalizes the merged canonical URL and derives the Twitter card.
func Finalize(s State, siteOrigin string, requestURL *url.URL) State {
	s.CanonicalURL = CanonicalURL(s.CanonicalURL, siteOrigin, requestURL)
	s.Twitter.Card = TwitterCard(s)
	return s
}

// normalizeOverride trims caller-supplied strings (blank becomes null) and drops invalid tags.
func normalizeOverride(o Partial) Partial {
	o.Title = normalizeText(o.Title)
	o.Description = normalizeText(o.Description)
	o.CanonicalURL = normalizeText(o.CanonicalURL)
	o.OpenGraph.Title = normalizeText(o.OpenGraph.Title)
	o.OpenGraph.Description = normalizeText(o.OpenGraph.Description)
	o.OpenGraph.ImageURL = normalizeText(o.OpenGraph.ImageURL)
	o.Twitter.Title = normalizeText(o.Twitter.Title)
	o.Twitter.Description = normalizeText(o.Twitter.Description)
	o.Twitter.ImageURL = normalizeText(o.Twitter.ImageURL)
	o.Twitter.Card = normalizeText(o.Twitter.Card)
	if tags, ok := o.ExtraMeta.Get(); ok {
		o.ExtraMeta = Value(NormalizeMetaTags(tags))
	}
	return o
}
