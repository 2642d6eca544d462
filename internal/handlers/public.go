package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	domain "github.com/absign/storefront/internal/domain"
	"github.com/absign/storefront/internal/platform/httpx"
	"github.com/absign/storefront/internal/platform/pagination"
	"github.com/absign/storefront/internal/platform/requestctx"
	"github.com/absign/storefront/internal/seo"
	"github.com/absign/storefront/internal/services"
)

const (
	defaultProfileLogoURL = "/images/logo.svg"
	contactThanksMessage  = "Thank you for reaching out. We will respond shortly."
	maxContactBodyBytes   = 64 << 10
	catalogCacheControl   = "public, max-age=300"
)

var (
	descriptionHTMLPolicy = newDescriptionHTMLPolicy()
	plainTextPolicy       = bluemonday.StrictPolicy()
)

// PublicHandlers exposes the unauthenticated catalog, company, SEO and contact endpoints.
type PublicHandlers struct {
	catalog        services.CatalogService
	company        services.CompanyService
	seoEntries     services.SeoEntryService
	contact        services.ContactService
	assets         AssetURLResolver
	defaultLogoURL string
}

// PublicOption customises construction of PublicHandlers.
type PublicOption func(*PublicHandlers)

// WithPublicCatalogService injects the catalog service dependency.
func WithPublicCatalogService(svc services.CatalogService) PublicOption {
	return func(h *PublicHandlers) { h.catalog = svc }
}

// WithPublicCompanyService injects the company service dependency.
func WithPublicCompanyService(svc services.CompanyService) PublicOption {
	return func(h *PublicHandlers) { h.company = svc }
}

// WithPublicSeoEntryService injects the SEO entry service dependency.
func WithPublicSeoEntryService(svc services.SeoEntryService) PublicOption {
	return func(h *PublicHandlers) { h.seoEntries = svc }
}

// WithPublicContactService injects the contact service dependency.
func WithPublicContactService(svc services.ContactService) PublicOption {
	return func(h *PublicHandlers) { h.contact = svc }
}

// WithPublicAssetResolver sets the resolver used for stored image paths.
func WithPublicAssetResolver(resolver AssetURLResolver) PublicOption {
	return func(h *PublicHandlers) {
		if resolver != nil {
			h.assets = resolver
		}
	}
}

// WithPublicDefaultLogoURL overrides the logo shown for company profiles without one.
func WithPublicDefaultLogoURL(u string) PublicOption {
	return func(h *PublicHandlers) {
		if strings.TrimSpace(u) != "" {
			h.defaultLogoURL = strings.TrimSpace(u)
		}
	}
}

// NewPublicHandlers constructs handlers for the public API.
func NewPublicHandlers(opts ...PublicOption) *PublicHandlers {
	h := &PublicHandlers{
		assets: AssetURLResolverFunc(func(_ context.Context, path string) (string, error) {
			return path, nil
		}),
		defaultLogoURL: defaultProfileLogoURL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes registers public endpoints against the provided router.
func (h *PublicHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/products", h.listProducts)
	r.Get("/products/{productID}", h.getProduct)
	r.Get("/categories", h.listCategories)
	r.Get("/company", h.getCompany)
	r.Get("/company-profiles", h.listCompanyProfiles)
	r.Get("/company-profiles/{slug}", h.getCompanyProfile)
	r.Get("/seo/{slug}", h.getSeoEntry)
	r.Post("/contact", h.submitContact)
}

type productPayload struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	SKU             string `json:"sku"`
	Description     string `json:"description"`
	DescriptionHTML string `json:"description_html"`
	CategoryID      string `json:"category_id,omitempty"`
	CategoryName    string `json:"category_name,omitempty"`
	SupplierName    string `json:"supplier_name,omitempty"`
	ImageURL        string `json:"image_url,omitempty"`
	IsActive        bool   `json:"is_active"`
	IsFeatured      bool   `json:"is_featured"`
	CreatedAt       string `json:"created_at,omitempty"`
	UpdatedAt       string `json:"updated_at,omitempty"`
}

type pageLinks struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

type productListResponse struct {
	Data  []productPayload `json:"data"`
	Meta  pagination.Meta  `json:"meta"`
	Links pageLinks        `json:"links"`
}

func (h *PublicHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeUnavailable(r.Context(), w, "catalog")
		return
	}

	values := r.URL.Query()
	params, err := pagination.Parse(values, pagination.Options{})
	if err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_pagination", err.Error(), http.StatusBadRequest))
		return
	}
	query := services.ProductQuery{
		Search: strings.TrimSpace(values.Get("search")),
		Sort:   services.ProductSort(strings.TrimSpace(values.Get("sort"))),
		Page:   params,
	}
	if values.Has("featured") {
		featured := queryBool(values.Get("featured"))
		query.Featured = &featured
	}

	page, err := h.catalog.ListProducts(r.Context(), query)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	items := make([]productPayload, 0, len(page.Items))
	for _, product := range page.Items {
		payload, err := h.productPayload(r.Context(), product)
		if err != nil {
			writeAssetError(r.Context(), w, err)
			return
		}
		items = append(items, payload)
	}

	w.Header().Set("Cache-Control", catalogCacheControl)
	httpx.WriteJSON(w, http.StatusOK, productListResponse{
		Data:  items,
		Meta:  page.Meta,
		Links: paginationLinks(r.URL, page.Meta),
	})
}

func (h *PublicHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeUnavailable(r.Context(), w, "catalog")
		return
	}
	productID := strings.TrimSpace(chi.URLParam(r, "productID"))
	if productID == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_product_id", "product id is required", http.StatusBadRequest))
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	payload, err := h.productPayload(r.Context(), product)
	if err != nil {
		writeAssetError(r.Context(), w, err)
		return
	}
	w.Header().Set("Cache-Control", catalogCacheControl)
	httpx.WriteJSON(w, http.StatusOK, payload)
}

func (h *PublicHandlers) productPayload(ctx context.Context, product services.ProductDetail) (productPayload, error) {
	imageURL, err := resolveAsset(ctx, h.assets, product.ImagePath)
	if err != nil {
		return productPayload{}, err
	}
	return productPayload{
		ID:              product.ID,
		Name:            product.Name,
		SKU:             product.SKU,
		Description:     plainText(product.Description),
		DescriptionHTML: descriptionHTMLPolicy.Sanitize(product.Description),
		CategoryID:      product.CategoryID,
		CategoryName:    product.CategoryName,
		SupplierName:    product.SupplierName,
		ImageURL:        imageURL,
		IsActive:        product.IsActive,
		IsFeatured:      product.IsFeatured,
		CreatedAt:       formatTimestamp(product.CreatedAt),
		UpdatedAt:       formatTimestamp(product.UpdatedAt),
	}, nil
}

type categoryPayload struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	Description   string `json:"description,omitempty"`
	ProductsCount int    `json:"products_count"`
}

func (h *PublicHandlers) listCategories(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeUnavailable(r.Context(), w, "catalog")
		return
	}
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	data := make([]categoryPayload, 0, len(categories))
	for _, c := range categories {
		data = append(data, categoryPayload{
			ID:            c.ID,
			Name:          c.Name,
			Slug:          c.Slug,
			Description:   c.Description,
			ProductsCount: c.ProductsCount,
		})
	}
	w.Header().Set("Cache-Control", catalogCacheControl)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"data": data})
}

type ctaPayload struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type heroStatPayload struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type heroPayload struct {
	Headline     string            `json:"headline"`
	Subheadline  string            `json:"subheadline"`
	PrimaryCTA   ctaPayload        `json:"primary_cta"`
	SecondaryCTA ctaPayload        `json:"secondary_cta"`
	Stats        []heroStatPayload `json:"stats"`
}

type companyInfoPayload struct {
	SiteName       string      `json:"site_name"`
	Tagline        string      `json:"tagline"`
	LogoURL        string      `json:"logo_url"`
	AboutUs        string      `json:"about_us"`
	ContactEmail   string      `json:"contact_email"`
	ContactPhone   string      `json:"contact_phone"`
	Address        string      `json:"address"`
	GoogleMapEmbed string      `json:"google_map_embed"`
	Hero           heroPayload `json:"hero"`
	UpdatedAt      string      `json:"updated_at,omitempty"`
}

func (h *PublicHandlers) getCompany(w http.ResponseWriter, r *http.Request) {
	if h.company == nil {
		writeUnavailable(r.Context(), w, "company")
		return
	}
	info, err := h.company.Info(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	logoURL, err := resolveAsset(r.Context(), h.assets, info.LogoPath)
	if err != nil {
		writeAssetError(r.Context(), w, err)
		return
	}

	stats := make([]heroStatPayload, 0, len(info.Stats))
	for _, stat := range info.Stats {
		stats = append(stats, heroStatPayload{Label: stat.Label, Value: stat.Value})
	}
	httpx.WriteJSON(w, http.StatusOK, companyInfoPayload{
		SiteName:       info.SiteName,
		Tagline:        info.Tagline,
		LogoURL:        logoURL,
		AboutUs:        info.AboutUs,
		ContactEmail:   info.ContactEmail,
		ContactPhone:   info.ContactPhone,
		Address:        info.Address,
		GoogleMapEmbed: info.GoogleMapEmbed,
		Hero: heroPayload{
			Headline:     info.HeroHeadline,
			Subheadline:  info.HeroSubheadline,
			PrimaryCTA:   ctaPayload{Label: info.PrimaryCTA.Label, URL: info.PrimaryCTA.URL},
			SecondaryCTA: ctaPayload{Label: info.SecondaryCTA.Label, URL: info.SecondaryCTA.URL},
			Stats:        stats,
		},
		UpdatedAt: formatTimestamp(info.UpdatedAt),
	})
}

type companySummaryPayload struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Tagline   string `json:"tagline"`
	Summary   string `json:"summary"`
	LogoURL   string `json:"logo_url"`
	SortOrder int    `json:"sort_order"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type companyContactPayload struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Website string `json:"website"`
}

type companyServicePayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type companyProfilePayload struct {
	companySummaryPayload
	Overview string                  `json:"overview"`
	Contact  companyContactPayload   `json:"contact"`
	Services []companyServicePayload `json:"services"`
}

func (h *PublicHandlers) listCompanyProfiles(w http.ResponseWriter, r *http.Request) {
	if h.company == nil {
		writeUnavailable(r.Context(), w, "company")
		return
	}
	companies, err := h.company.ListProfiles(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	data := make([]companySummaryPayload, 0, len(companies))
	for _, company := range companies {
		summary, err := h.companySummary(r.Context(), company)
		if err != nil {
			writeAssetError(r.Context(), w, err)
			return
		}
		data = append(data, summary)
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"data": data})
}

func (h *PublicHandlers) getCompanyProfile(w http.ResponseWriter, r *http.Request) {
	if h.company == nil {
		writeUnavailable(r.Context(), w, "company")
		return
	}
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	company, err := h.company.GetProfile(r.Context(), slug)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	summary, err := h.companySummary(r.Context(), company)
	if err != nil {
		writeAssetError(r.Context(), w, err)
		return
	}

	offered := make([]companyServicePayload, 0, len(company.Services))
	for _, svc := range company.Services {
		offered = append(offered, companyServicePayload{Title: svc.Title, Description: svc.Description})
	}
	httpx.WriteJSON(w, http.StatusOK, companyProfilePayload{
		companySummaryPayload: summary,
		Overview:              company.Overview,
		Contact: companyContactPayload{
			Email:   company.Email,
			Phone:   company.Phone,
			Address: company.Address,
			Website: company.Website,
		},
		Services: offered,
	})
}

func (h *PublicHandlers) companySummary(ctx context.Context, company domain.Company) (companySummaryPayload, error) {
	logoURL := h.defaultLogoURL
	if strings.TrimSpace(company.LogoPath) != "" {
		resolved, err := resolveAsset(ctx, h.assets, company.LogoPath)
		if err != nil {
			return companySummaryPayload{}, err
		}
		logoURL = resolved
	}
	return companySummaryPayload{
		Slug:      company.Slug,
		Name:      company.Name,
		Tagline:   company.Tagline,
		Summary:   company.Summary,
		LogoURL:   logoURL,
		SortOrder: company.SortOrder,
		UpdatedAt: formatTimestamp(company.UpdatedAt),
	}, nil
}

// getSeoEntry answers 200 with JSON null when no live entry exists so the storefront can fall
// back to its defaults without treating the miss as an error.
func (h *PublicHandlers) getSeoEntry(w http.ResponseWriter, r *http.Request) {
	if h.seoEntries == nil {
		writeUnavailable(r.Context(), w, "seo")
		return
	}
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	entry, err := h.seoEntries.GetBySlug(r.Context(), slug)
	if errors.Is(err, services.ErrSeoEntryNotFound) {
		httpx.WriteJSON(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	payload, err := h.seoEntryPayload(r.Context(), entry)
	if err != nil {
		writeAssetError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, payload)
}

func (h *PublicHandlers) seoEntryPayload(ctx context.Context, entry domain.SeoEntry) (seo.Entry, error) {
	ogImage, err := resolveAsset(ctx, h.assets, entry.OGImagePath)
	if err != nil {
		return seo.Entry{}, err
	}
	twitterImage, err := resolveAsset(ctx, h.assets, entry.TwitterImagePath)
	if err != nil {
		return seo.Entry{}, err
	}

	meta := make([]seo.EntryMeta, 0, len(entry.ExtraMeta))
	for _, tag := range entry.ExtraMeta {
		if strings.TrimSpace(tag.Content) == "" {
			continue
		}
		if tag.Name == "" && tag.Property == "" && tag.HTTPEquiv == "" {
			continue
		}
		meta = append(meta, seo.EntryMeta{
			Name:      nullable(tag.Name),
			Property:  nullable(tag.Property),
			HTTPEquiv: nullable(tag.HTTPEquiv),
			Content:   nullable(tag.Content),
		})
	}

	return seo.Entry{
		Slug:         entry.Slug,
		Title:        nullable(entry.Title),
		Description:  nullable(entry.Description),
		CanonicalURL: nullable(entry.CanonicalURL),
		Meta:         meta,
		OpenGraph: seo.EntrySocial{
			Title:       nullable(entry.OGTitle),
			Description: nullable(entry.OGDescription),
			ImageURL:    nullable(ogImage),
		},
		Twitter: seo.EntrySocial{
			Title:       nullable(entry.TwitterTitle),
			Description: nullable(entry.TwitterDescription),
			ImageURL:    nullable(twitterImage),
		},
	}, nil
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Product string `json:"product"`
	Message string `json:"message"`
}

func (h *PublicHandlers) submitContact(w http.ResponseWriter, r *http.Request) {
	if h.contact == nil {
		writeUnavailable(r.Context(), w, "contact")
		return
	}

	var req contactRequest
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxContactBodyBytes))
	if err := decoder.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_json", "request body must be a JSON object", http.StatusBadRequest))
		return
	}

	msg, err := h.contact.Submit(r.Context(), services.ContactCommand{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Product: req.Product,
		Message: req.Message,
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	requestctx.Logger(r.Context()).Info("contact message received", zap.String("contactId", msg.ID))
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": contactThanksMessage,
		"data":    map[string]string{"id": msg.ID},
	})
}

// writeServiceError maps service sentinels onto HTTP responses.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	var validation *services.ValidationError
	switch {
	case errors.As(err, &validation):
		httpx.WriteValidationError(w, validation.Fields(), validation.Order())
	case errors.Is(err, services.ErrProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCompanyInfoNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("company_not_found", "company information has not been configured", http.StatusNotFound))
	case errors.Is(err, services.ErrCompanyNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("company_not_found", "company not found", http.StatusNotFound))
	case errors.Is(err, services.ErrSeoEntryNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("seo_entry_not_found", "seo entry not found", http.StatusNotFound))
	case errors.Is(err, services.ErrSeoEntryConflict):
		httpx.WriteError(ctx, w, httpx.NewError("seo_entry_conflict", "slug is already taken", http.StatusConflict))
	case errors.Is(err, services.ErrSeoEntryInvalidInput),
		errors.Is(err, services.ErrCompanyInvalidInput),
		errors.Is(err, services.ErrContactInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, context.Canceled):
		httpx.WriteError(ctx, w, httpx.NewError("request_cancelled", "request cancelled", 499))
	case errors.Is(err, context.DeadlineExceeded):
		httpx.WriteError(ctx, w, httpx.NewError("timeout", "request timed out", http.StatusGatewayTimeout))
	default:
		requestctx.Logger(ctx).Error("request failed", zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "an unexpected error occurred", http.StatusInternalServerError))
	}
}

func writeUnavailable(ctx context.Context, w http.ResponseWriter, what string) {
	httpx.WriteError(ctx, w, httpx.NewError(what+"_unavailable", what+" service is unavailable", http.StatusServiceUnavailable))
}

func writeAssetError(ctx context.Context, w http.ResponseWriter, err error) {
	httpx.WriteError(ctx, w, httpx.NewError("asset_resolution_failed", err.Error(), http.StatusInternalServerError))
}

func newDescriptionHTMLPolicy() *bluemonday.Policy {
	policy := bluemonday.NewPolicy()
	policy.AllowElements("p", "br", "strong", "em", "ul", "ol", "li")
	policy.AllowAttrs("href").OnElements("a")
	policy.AllowStandardURLs()
	policy.RequireNoFollowOnLinks(true)
	return policy
}

func plainText(value string) string {
	stripped := html.UnescapeString(plainTextPolicy.Sanitize(value))
	return strings.Join(strings.Fields(stripped), " ")
}

// queryBool follows the form-style truthy values: 1, true, on and yes.
func queryBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func paginationLinks(u *url.URL, meta pagination.Meta) pageLinks {
	pageURL := func(page int) string {
		values := u.Query()
		values.Set("page", strconv.Itoa(page))
		out := *u
		out.RawQuery = values.Encode()
		return out.RequestURI()
	}
	last := max(meta.LastPage, 1)
	links := pageLinks{First: pageURL(1), Last: pageURL(last)}
	if meta.CurrentPage > 1 {
		prev := pageURL(min(meta.CurrentPage-1, last))
		links.Prev = &prev
	}
	if meta.CurrentPage < meta.LastPage {
		next := pageURL(meta.CurrentPage + 1)
		links.Next = &next
	}
	return links
}

func nullable(v string) *string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}
