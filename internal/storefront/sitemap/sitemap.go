// Package sitemap renders robots.txt and sitemap.xml for the storefront.
package sitemap

import (
	"context"
	"encoding/xml"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/absign/storefront/internal/storefront/apiclient"
)

const (
	// CacheControl is sent with both robots.txt and sitemap.xml.
	CacheControl = "public, max-age=300, s-maxage=900"

	xmlns           = "http://www.sitemaps.org/schemas/sitemap/0.9"
	productsPerPage = 50
)

// StaticPaths are listed ahead of catalog pages.
var StaticPaths = []string{"/", "/about", "/products", "/our-companies", "/contact", "/privacy"}

// Source lists the catalog pages to include.
type Source interface {
	Products(ctx context.Context, q apiclient.ProductQuery) (apiclient.ProductPage, error)
	CompanyProfiles(ctx context.Context) ([]apiclient.CompanySummary, error)
}

// URL is one <url> element.
type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// URLSet is the sitemap document.
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// Robots returns the robots.txt body pointing crawlers at siteURL's sitemap.
func Robots(siteURL string) string {
	site := strings.TrimRight(strings.TrimSpace(siteURL), "/")
	return "User-agent: *\nAllow: /\n\nSitemap: " + site + "/sitemap.xml\n"
}

// Builder assembles the sitemap from static paths and the catalog API.
type Builder struct {
	source Source
	logger *zap.Logger
}

// NewBuilder constructs a Builder. A nil source yields only the static paths.
func NewBuilder(source Source, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{source: source, logger: logger.Named("sitemap")}
}

// Build lists every page under siteURL. API failures are logged and the affected section is
// skipped, so Build itself only fails when ctx is done.
func (b *Builder) Build(ctx context.Context, siteURL string) (URLSet, error) {
	site := strings.TrimRight(strings.TrimSpace(siteURL), "/")
	set := URLSet{Xmlns: xmlns}
	seen := map[string]struct{}{}
	add := func(u URL) {
		if u.Loc == "" {
			return
		}
		if _, dup := seen[u.Loc]; dup {
			return
		}
		seen[u.Loc] = struct{}{}
		set.URLs = append(set.URLs, u)
	}

	for _, path := range StaticPaths {
		u := URL{Loc: pageURL(site, path), ChangeFreq: "weekly"}
		if path == "/" {
			u.ChangeFreq = "daily"
			u.Priority = "1.0"
		}
		add(u)
	}
	if b.source == nil {
		return set, nil
	}

	var (
		products  []apiclient.Product
		companies []apiclient.CompanySummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		products = b.allProducts(gctx)
		return nil
	})
	g.Go(func() error {
		list, err := b.source.CompanyProfiles(gctx)
		if err != nil {
			b.logger.Warn("unable to load company profiles", zap.Error(err))
			return nil
		}
		companies = list
		return nil
	})
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return URLSet{}, err
	}

	for _, p := range products {
		add(URL{
			Loc:        pageURL(site, "/products/"+url.PathEscape(p.ID)),
			LastMod:    formatLastMod(p.LastModified()),
			ChangeFreq: "weekly",
		})
	}
	for _, c := range companies {
		if strings.TrimSpace(c.Slug) == "" {
			continue
		}
		add(URL{
			Loc:        pageURL(site, "/our-companies/"+url.PathEscape(c.Slug)),
			LastMod:    formatLastMod(c.UpdatedAt),
			ChangeFreq: "monthly",
		})
	}
	return set, nil
}

// allProducts walks every product page. A failing page ends the walk but keeps what was read.
func (b *Builder) allProducts(ctx context.Context) []apiclient.Product {
	var out []apiclient.Product
	for page, last := 1, 1; page <= last; page++ {
		resp, err := b.source.Products(ctx, apiclient.ProductQuery{Page: page, PerPage: productsPerPage})
		if err != nil {
			b.logger.Warn("unable to load products", zap.Int("page", page), zap.Error(err))
			return out
		}
		out = append(out, resp.Data...)
		if resp.Meta.LastPage > 0 {
			last = resp.Meta.LastPage
		}
	}
	return out
}

// Render builds the sitemap and encodes it as XML.
func (b *Builder) Render(ctx context.Context, siteURL string) ([]byte, error) {
	set, err := b.Build(ctx, siteURL)
	if err != nil {
		return nil, err
	}
	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

func pageURL(site, path string) string {
	if path == "/" {
		return site + "/"
	}
	return site + "/" + strings.Trim(path, "/")
}

func formatLastMod(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
