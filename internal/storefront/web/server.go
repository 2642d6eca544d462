// Package web serves the public storefront pages.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/absign/storefront/internal/seo"
	"github.com/absign/storefront/internal/storefront/apiclient"
	"github.com/absign/storefront/internal/storefront/sitemap"
)

const (
	defaultTimeout        = 30 * time.Second
	featuredProductsLimit = 6
	productsPerPage       = 12
)

// Catalog is the subset of the catalog API the pages read.
type Catalog interface {
	CompanyInfo(ctx context.Context) (*apiclient.CompanyInfo, error)
	Products(ctx context.Context, q apiclient.ProductQuery) (apiclient.ProductPage, error)
	Product(ctx context.Context, id string) (apiclient.Product, error)
	Categories(ctx context.Context) ([]apiclient.Category, error)
	CompanyProfiles(ctx context.Context) ([]apiclient.CompanySummary, error)
	CompanyProfile(ctx context.Context, slug string) (apiclient.CompanyProfile, error)
	SubmitContact(ctx context.Context, form apiclient.ContactForm) (apiclient.ContactReceipt, error)
}

// Deps wires the storefront server.
type Deps struct {
	Catalog  Catalog
	Resolver *seo.Resolver
	Sitemap  *sitemap.Builder
	Logger   *zap.Logger
}

// Server renders storefront pages.
type Server struct {
	catalog  Catalog
	resolver *seo.Resolver
	sitemap  *sitemap.Builder
	logger   *zap.Logger
	views    *views
}

var (
	// ErrCatalogMissing signals that no catalog client was supplied.
	ErrCatalogMissing = errors.New("web: catalog dependency is required")
	// ErrResolverMissing signals that no SEO resolver was supplied.
	ErrResolverMissing = errors.New("web: seo resolver is required")
)

// New constructs a Server and parses the embedded templates.
func New(deps Deps) (*Server, error) {
	if deps.Catalog == nil {
		return nil, ErrCatalogMissing
	}
	if deps.Resolver == nil {
		return nil, ErrResolverMissing
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	builder := deps.Sitemap
	if builder == nil {
		builder = sitemap.NewBuilder(deps.Catalog, logger)
	}
	v, err := newViews()
	if err != nil {
		return nil, err
	}
	return &Server{
		catalog:  deps.Catalog,
		resolver: deps.Resolver,
		sitemap:  builder,
		logger:   logger.Named("web"),
		views:    v,
	}, nil
}

// Routes returns the storefront router. Extra middleware runs after the defaults.
func (s *Server) Routes(mw ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	for _, m := range mw {
		if m != nil {
			r.Use(m)
		}
	}
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(defaultTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/robots.txt", s.robots)
	r.Get("/sitemap.xml", s.sitemapXML)

	r.Get("/", s.home)
	r.Get("/about", s.about)
	r.Get("/products", s.products)
	r.Get("/products/{id}", s.product)
	r.Get("/our-companies", s.companies)
	r.Get("/our-companies/{slug}", s.company)
	r.Get("/contact", s.contactForm)
	r.Post("/contact", s.contactSubmit)
	r.Get("/privacy", s.privacy)
	r.NotFound(s.notFound)
	return r
}

func (s *Server) robots(w http.ResponseWriter, r *http.Request) {
	origin := seo.SiteOrigin(s.resolver.Site().URL, seo.RequestURL(r))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", sitemap.CacheControl)
	_, _ = w.Write([]byte(sitemap.Robots(origin)))
}

func (s *Server) sitemapXML(w http.ResponseWriter, r *http.Request) {
	origin := seo.SiteOrigin(s.resolver.Site().URL, seo.RequestURL(r))
	body, err := s.sitemap.Render(r.Context(), origin)
	if err != nil {
		s.logger.Error("sitemap render failed", zap.Error(err))
		http.Error(w, "sitemap unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Cache-Control", sitemap.CacheControl)
	_, _ = w.Write(body)
}
