package web

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/absign/storefront/internal/platform/requestctx"
	"github.com/absign/storefront/internal/platform/textutil"
	"github.com/absign/storefront/internal/seo"
	"github.com/absign/storefront/internal/storefront/apiclient"
)

const (
	metaDescriptionLimit = 160
	defaultSiteName      = "AB Sign Supplies"
	contactThanks        = "Thank you for reaching out. We will respond shortly."
)

// Page slugs used to look up stored SEO entries.
const (
	slugHome          = "homepage"
	slugAbout         = "about"
	slugProducts      = "products"
	slugCompanies     = "our-companies"
	slugContact       = "contact"
	slugPrivacy       = "privacy"
	slugProductDetail = "product"
	slugCompanyDetail = "company"
)

type homeView struct {
	Company  *apiclient.CompanyInfo
	Featured []apiclient.Product
}

type productsView struct {
	Products   []apiclient.Product
	Categories []apiclient.Category
	Meta       apiclient.PageMeta
	Search     string
	PrevURL    string
	NextURL    string
}

type contactView struct {
	Company *apiclient.CompanyInfo
	Form    apiclient.ContactForm
	Errors  map[string]string
	Notice  string
	Sent    bool
}

// pageContext opens the SEO session for the request.
func (s *Server) pageContext(r *http.Request, slug string, overrides ...seo.Partial) *seo.Page {
	return s.resolver.Page(r.Context(), seo.RequestURL(r), slug, overrides...)
}

func (s *Server) pageData(r *http.Request, page *seo.Page, content any, jsonld ...map[string]any) PageData {
	data := PageData{
		Head:     template.HTML(page.Head().HTML()),
		SiteName: s.siteName(s.companyInfo(r)),
		Content:  content,
	}
	for _, doc := range jsonld {
		if js := seo.JSONLD(doc); js != "" {
			data.JSONLD = append(data.JSONLD, js)
		}
	}
	return data
}

func (s *Server) siteName(company *apiclient.CompanyInfo) string {
	var name string
	if company != nil {
		name = company.SiteName
	}
	return textutil.FirstNonEmpty(name, s.resolver.Site().DefaultTitle, defaultSiteName)
}

func (s *Server) companyInfo(r *http.Request) *apiclient.CompanyInfo {
	info, err := s.catalog.CompanyInfo(r.Context())
	if err != nil {
		requestctx.Logger(r.Context()).Warn("company info unavailable", zap.Error(err))
		return nil
	}
	return info
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	company := s.companyInfo(r)
	featured := true
	page, err := s.catalog.Products(ctx, apiclient.ProductQuery{Featured: &featured, PerPage: featuredProductsLimit})
	if err != nil {
		requestctx.Logger(ctx).Warn("featured products unavailable", zap.Error(err))
	}

	seoPage := s.pageContext(r, slugHome)
	origin := seoPage.Origin()
	name, logo := s.siteName(company), ""
	if company != nil {
		logo = company.LogoURL
	}
	data := s.pageData(r, seoPage, homeView{Company: company, Featured: page.Data},
		seo.Organization(name, origin+"/", logo),
		seo.WebSite(name, origin+"/", origin+"/products?search={search_term_string}"),
	)
	s.views.render(w, r, http.StatusOK, "home", data)
}

func (s *Server) about(w http.ResponseWriter, r *http.Request) {
	company := s.companyInfo(r)
	page := s.pageContext(r, slugAbout)
	s.views.render(w, r, http.StatusOK, "about", s.pageData(r, page, company))
}

func (s *Server) products(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	pageNum, _ := strconv.Atoi(query.Get("page"))
	if pageNum < 1 {
		pageNum = 1
	}
	search := strings.TrimSpace(query.Get("search"))

	view := productsView{Search: search}
	listing, err := s.catalog.Products(ctx, apiclient.ProductQuery{Page: pageNum, PerPage: productsPerPage, Search: search})
	if err != nil {
		requestctx.Logger(ctx).Warn("products unavailable", zap.Error(err))
	} else {
		view.Products, view.Meta = listing.Data, listing.Meta
	}
	if cats, err := s.catalog.Categories(ctx); err == nil {
		view.Categories = cats
	}
	if view.Meta.CurrentPage > 1 {
		view.PrevURL = listingURL(search, view.Meta.CurrentPage-1)
	}
	if view.Meta.CurrentPage < view.Meta.LastPage {
		view.NextURL = listingURL(search, view.Meta.CurrentPage+1)
	}

	page := s.pageContext(r, slugProducts)
	s.views.render(w, r, http.StatusOK, "products", s.pageData(r, page, view))
}

func listingURL(search string, page int) string {
	values := url.Values{}
	if search != "" {
		values.Set("search", search)
	}
	values.Set("page", strconv.Itoa(page))
	return "/products?" + values.Encode()
}

func (s *Server) product(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	product, err := s.catalog.Product(ctx, id)
	if errors.Is(err, apiclient.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		s.unavailable(w, r, err)
		return
	}

	overrides := seo.Partial{
		Title:       seo.Optional(product.Name),
		Description: seo.Optional(textutil.Truncate(product.Description, metaDescriptionLimit)),
	}
	if product.ImageURL != "" {
		overrides.OpenGraph.ImageURL = seo.Value(product.ImageURL)
		overrides.Twitter.Card = seo.Value(seo.CardSummaryLargeImage)
	}
	page := s.pageContext(r, detailSlug(slugProductDetail, product.ID), overrides)
	origin := page.Origin()
	pageURL := canonicalOrPath(page, r)
	data := s.pageData(r, page, product,
		seo.Product(product.Name, product.Description, pageURL, product.ImageURL, product.SKU, product.SupplierName),
		seo.BreadcrumbList([]seo.BreadcrumbItem{
			{Name: "Home", Item: origin + "/"},
			{Name: "Products", Item: origin + "/products"},
			{Name: product.Name, Item: pageURL},
		}),
	)
	s.views.render(w, r, http.StatusOK, "product", data)
}

func (s *Server) companies(w http.ResponseWriter, r *http.Request) {
	list, err := s.catalog.CompanyProfiles(r.Context())
	if err != nil {
		requestctx.Logger(r.Context()).Warn("company profiles unavailable", zap.Error(err))
	}
	page := s.pageContext(r, slugCompanies)
	s.views.render(w, r, http.StatusOK, "companies", s.pageData(r, page, list))
}

func (s *Server) company(w http.ResponseWriter, r *http.Request) {
	profile, err := s.catalog.CompanyProfile(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, apiclient.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		s.unavailable(w, r, err)
		return
	}

	overrides := seo.Partial{
		Title:       seo.Optional(profile.Name),
		Description: seo.Optional(textutil.Truncate(textutil.FirstNonEmpty(profile.Summary, profile.Tagline), metaDescriptionLimit)),
	}
	if profile.LogoURL != "" {
		overrides.OpenGraph.ImageURL = seo.Value(profile.LogoURL)
	}
	page := s.pageContext(r, detailSlug(slugCompanyDetail, profile.Slug), overrides)
	origin := page.Origin()
	pageURL := canonicalOrPath(page, r)
	data := s.pageData(r, page, profile,
		seo.LocalBusiness(profile.Name, pageURL, profile.LogoURL, profile.Contact.Email, profile.Contact.Phone, profile.Contact.Address),
		seo.BreadcrumbList([]seo.BreadcrumbItem{
			{Name: "Home", Item: origin + "/"},
			{Name: "Our Companies", Item: origin + "/our-companies"},
			{Name: profile.Name, Item: pageURL},
		}),
	)
	s.views.render(w, r, http.StatusOK, "company", data)
}

func (s *Server) contactForm(w http.ResponseWriter, r *http.Request) {
	view := contactView{Company: s.companyInfo(r)}
	if r.URL.Query().Get("sent") == "1" {
		view.Sent = true
		view.Notice = contactThanks
	}
	view.Form.Product = strings.TrimSpace(r.URL.Query().Get("product"))
	page := s.pageContext(r, slugContact)
	s.views.render(w, r, http.StatusOK, "contact", s.pageData(r, page, view))
}

// contactSubmit posts the form to the API. Field errors re-render the form with a 422 so the
// visitor keeps their input; success redirects back with a confirmation.
func (s *Server) contactSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := apiclient.ContactForm{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Phone:   r.PostForm.Get("phone"),
		Product: r.PostForm.Get("product"),
		Message: r.PostForm.Get("message"),
	}

	receipt, err := s.catalog.SubmitContact(r.Context(), form)
	if err == nil {
		requestctx.Logger(r.Context()).Info("contact form submitted", zap.String("contactId", receipt.ID))
		http.Redirect(w, r, "/contact?sent=1", http.StatusSeeOther)
		return
	}

	view := contactView{Company: s.companyInfo(r), Form: form}
	status := http.StatusUnprocessableEntity
	if verr, ok := apiclient.IsValidation(err); ok {
		view.Errors = map[string]string{}
		for _, field := range []string{"name", "email", "phone", "product", "message"} {
			if msg := verr.First(field); msg != "" {
				view.Errors[field] = msg
			}
		}
		view.Notice = verr.Message
	} else {
		requestctx.Logger(r.Context()).Error("contact submission failed", zap.Error(err))
		status = http.StatusBadGateway
		view.Notice = "We could not send your message right now. Please try again shortly."
	}
	page := s.pageContext(r, slugContact)
	s.views.render(w, r, status, "contact", s.pageData(r, page, view))
}

func (s *Server) privacy(w http.ResponseWriter, r *http.Request) {
	company := s.companyInfo(r)
	page := s.pageContext(r, slugPrivacy)
	s.views.render(w, r, http.StatusOK, "privacy", s.pageData(r, page, company))
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	page := s.pageContext(r, "", seo.Partial{Title: seo.Value("Page not found")})
	s.views.render(w, r, http.StatusNotFound, "not_found", s.pageData(r, page, nil))
}

func (s *Server) unavailable(w http.ResponseWriter, r *http.Request, err error) {
	requestctx.Logger(r.Context()).Error("catalog api unavailable", zap.Error(err))
	http.Error(w, "The catalog is temporarily unavailable.", http.StatusBadGateway)
}

// detailSlug keys the stored entry of a detail page, e.g. product-01m4ywgesq7t0q49krnrk7yenp.
// Entry slugs are lowercase and slash-free so they double as Firestore document IDs.
func detailSlug(kind, key string) string {
	return kind + "-" + strings.ToLower(strings.TrimSpace(key))
}

// canonicalOrPath is the page URL for structured data; an entry may clear the canonical link.
func canonicalOrPath(page *seo.Page, r *http.Request) string {
	return textutil.FirstNonEmpty(page.State().CanonicalURL, page.Origin()+r.URL.Path)
}
